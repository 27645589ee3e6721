package sio

import (
	"context"
	"log"
)

// DefaultHaltPC is the address at which a program is considered finished.
const DefaultHaltPC = 0xffff

// Dispatcher runs the CPU, delivering queued bytes to the serial board.
type Dispatcher struct {
	CPU    CPU
	Queue  *Queue
	HaltPC uint16
	// Reload receives images that replace the running program.
	Reload <-chan []byte
}

// Run executes the CPU a slice at a time until the program counter reaches
// HaltPC, when it returns nil, or ctx is done. After each slice at most one
// queued byte is placed on the data port, with the status port set busy.
// Run never waits for the program to take the byte.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		d.CPU.ExecuteSlice()
		if d.CPU.PC() == d.HaltPC {
			return nil
		}
		if b, ok := d.Queue.TryRecv(); ok {
			d.CPU.SetInput(StatusPort, busy)
			d.CPU.SetInput(DataPort, b)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case image := <-d.Reload:
			if err := d.CPU.Reload(image); err != nil {
				log.Printf("reload: %v", err)
				break
			}
			log.Printf("reloaded %d bytes", len(image))
		default:
		}
	}
}
