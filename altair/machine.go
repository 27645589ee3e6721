// Package altair provides an Altair 8800 style machine: an 8080 compatible
// CPU, 64K of memory with optional write protected ranges, and 256 I/O ports.
//
// The instruction set is executed by github.com/koron-go/z80; 8080 code
// runs unmodified on it.
package altair

import (
	"fmt"
	"os"

	"github.com/koron-go/z80"
)

// DefaultSlice is the number of instructions executed by ExecuteSlice
// when Options.Slice is zero.
const DefaultSlice = 1000

// Options configures a Machine.
type Options struct {
	Base  uint16  // address that Reload loads images at
	Slice int     // instructions per ExecuteSlice
	ROM   []Range // write protected memory
}

// Machine is an 8080 CPU attached to a Bus.
type Machine struct {
	Bus *Bus

	cpu   z80.CPU
	base  uint16
	slice int

	stop     uint16
	stopping bool
}

// New returns a machine with cleared memory and the CPU at address 0.
func New(o Options) *Machine {
	m := &Machine{
		Bus:   NewBus(o.ROM...),
		base:  o.Base,
		slice: o.Slice,
	}
	if m.slice <= 0 {
		m.slice = DefaultSlice
	}
	m.resetCPU()
	return m
}

func (m *Machine) resetCPU() {
	m.cpu = z80.CPU{
		Memory: m.Bus,
		IO:     m.Bus,
	}
}

// Reset clears memory and returns the CPU to its power-on state.
// Input port values are kept.
func (m *Machine) Reset() {
	m.Bus.clear()
	m.resetCPU()
}

// LoadImage copies the contents of the named file into memory at base.
func (m *Machine) LoadImage(name string, base uint16) error {
	image, err := os.ReadFile(name)
	if err != nil {
		return err
	}
	if err := m.Load(image, base); err != nil {
		return fmt.Errorf("loading %s: %w", name, err)
	}
	return nil
}

// Load copies image into memory at base.
func (m *Machine) Load(image []byte, base uint16) error {
	return m.Bus.load(image, base)
}

// Reload resets the machine and loads image at the configured base.
func (m *Machine) Reload(image []byte) error {
	m.Reset()
	return m.Load(image, m.base)
}

// SetInput sets the value the program reads from port.
func (m *Machine) SetInput(port, v byte) { m.Bus.SetInput(port, v) }

// Input returns the value the program reads from port.
func (m *Machine) Input(port byte) byte { return m.Bus.Input(port) }

// OnOutput installs fn as the handler for OUT instructions.
func (m *Machine) OnOutput(fn OutputFunc) { m.Bus.out = fn }

// StopAt makes ExecuteSlice return as soon as the CPU reaches pc, so that
// callers checking the program counter between slices see it.
func (m *Machine) StopAt(pc uint16) { m.stop, m.stopping = pc, true }

// ExecuteSlice executes a fixed number of instructions and returns.
func (m *Machine) ExecuteSlice() {
	for i := 0; i < m.slice; i++ {
		m.cpu.Step()
		if m.stopping && m.cpu.PC == m.stop {
			return
		}
	}
}

// PC returns the program counter.
func (m *Machine) PC() uint16 { return m.cpu.PC }
