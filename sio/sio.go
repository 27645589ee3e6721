// Package sio connects an operator's terminal to an emulated 88-SIO serial
// board.
//
// Keys read by a Capture goroutine are queued and handed to the CPU one per
// execution slice by the Dispatcher; characters the CPU writes to the data
// port pass through a Gate on their way to the terminal. An escape key
// opens a Menu from which the operator can quit, interrupt the program or
// type in a text file at teletype speed.
package sio

import (
	"github.com/gdamore/tcell/v2"

	"github.com/nicolasbauw/teletype/term"
)

// Ports of the serial board.
const (
	StatusPort = 0x00
	DataPort   = 0x01
)

// Values of the status port. The flag is active low: busy means a byte has
// been placed on the data port and not yet answered.
const (
	busy  = 0
	ready = 1
)

const (
	CR  = 0x0d
	ETX = 0x03 // Ctrl-C
)

// Keyboard delivers keys one at a time, without line buffering.
type Keyboard interface {
	ReadKey() (*tcell.EventKey, error)
}

// Display shows characters written by the machine.
type Display interface {
	WriteByte(c byte) error
	Flush() error
}

// Terminal is the operator's terminal: a keyboard and an overlay on which
// the menu is drawn.
type Terminal interface {
	Keyboard
	ReadLine(prompt string) (string, error)
	OpenOverlay() error
	CloseOverlay() error
	MoveCursor(x, y int) error
	ShowMenu(items []term.MenuItem) error
	Message(text string) error
}

// Ports sets the values the CPU reads with IN.
type Ports interface {
	SetInput(port, value byte)
}

// CPU is the machine driven by a Dispatcher.
type CPU interface {
	Ports
	// ExecuteSlice runs a bounded number of instructions and returns.
	ExecuteSlice()
	PC() uint16
	// Reload resets the machine and loads image in place of the
	// running program.
	Reload(image []byte) error
}
