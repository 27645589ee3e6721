package sio

import "log"

// Gate receives the CPU's output and passes printable characters of the
// serial data port to the display.
type Gate struct {
	Display Display
	Ports   Ports
	Device  byte
}

// NewGate returns a Gate on the serial data port.
func NewGate(d Display, p Ports) *Gate {
	return &Gate{Display: d, Ports: p, Device: DataPort}
}

// Out handles an OUT instruction. Characters are reduced to 7 bits; those
// in ' '..'}', CR and LF are displayed at once and the status port set
// ready. Anything else, including output to other devices, is dropped.
func (g *Gate) Out(device, value byte) {
	if device != g.Device {
		return
	}
	c := value & 0x7f
	if !printable(c) {
		return
	}
	if err := g.Display.WriteByte(c); err != nil {
		log.Printf("display: %v", err)
	} else if err := g.Display.Flush(); err != nil {
		log.Printf("display: %v", err)
	}
	g.Ports.SetInput(StatusPort, ready)
}

func printable(c byte) bool {
	return c >= ' ' && c <= '}' || c == '\n' || c == '\r'
}
