package altair

import (
	"fmt"
	"sync/atomic"
)

// MemSize is the size of the 8080 address space.
const MemSize = 0x10000

// Range is an inclusive span of addresses.
type Range struct {
	Start uint16 `yaml:"start"`
	End   uint16 `yaml:"end"`
}

func (r Range) contains(addr uint16) bool { return addr >= r.Start && addr <= r.End }

// OutputFunc is called for every OUT instruction executed by the CPU.
type OutputFunc func(device, value byte)

// Bus connects the CPU to memory and to the I/O ports.
// Input ports are registers that the CPU reads with IN and that the host
// sets from any goroutine.
type Bus struct {
	mem [MemSize]byte
	rom []Range
	in  [0x100]atomic.Uint32
	out OutputFunc
}

// NewBus returns a bus with the given address ranges write protected.
func NewBus(rom ...Range) *Bus {
	return &Bus{rom: rom}
}

// Get implements the CPU memory interface.
func (b *Bus) Get(addr uint16) uint8 { return b.mem[addr] }

// Set implements the CPU memory interface. Writes to ROM are ignored.
func (b *Bus) Set(addr uint16, v uint8) {
	for _, r := range b.rom {
		if r.contains(addr) {
			return
		}
	}
	b.mem[addr] = v
}

// In implements the CPU I/O interface.
func (b *Bus) In(port uint8) uint8 { return uint8(b.in[port].Load()) }

// Out implements the CPU I/O interface.
func (b *Bus) Out(port, v uint8) {
	if b.out != nil {
		b.out(port, v)
	}
}

// SetInput sets the value the CPU reads from port.
func (b *Bus) SetInput(port, v byte) { b.in[port].Store(uint32(v)) }

// Input returns the value the CPU would read from port.
func (b *Bus) Input(port byte) byte { return byte(b.in[port].Load()) }

// load copies image into memory at base, ignoring write protection.
func (b *Bus) load(image []byte, base uint16) error {
	if end := int(base) + len(image); end > MemSize {
		return fmt.Errorf("image of %d bytes at %.4x overflows memory by %d bytes",
			len(image), base, end-MemSize)
	}
	copy(b.mem[base:], image)
	return nil
}

func (b *Bus) clear() { b.mem = [MemSize]byte{} }
