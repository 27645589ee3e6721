package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/nicolasbauw/teletype/altair"
	"github.com/nicolasbauw/teletype/sio"
)

// terminal is what the system needs from the operator's terminal.
type terminal interface {
	sio.Terminal
	sio.Display
	Close() error
}

var errQuit = errors.New("quit")

// system is a machine with its serial console attached to a terminal.
type system struct {
	machine    *altair.Machine
	queue      *sio.Queue
	capture    *sio.Capture
	dispatcher *sio.Dispatcher
}

// newSystem loads image into a new machine and connects it to t.
func newSystem(cfg *config, image []byte, t terminal) (*system, error) {
	keys, err := cfg.Keys.keys()
	if err != nil {
		return nil, err
	}
	m := altair.New(altair.Options{
		Base:  cfg.Base,
		Slice: cfg.Slice,
		ROM:   cfg.ROM,
	})
	if err := m.Load(image, cfg.Base); err != nil {
		return nil, fmt.Errorf("loading image: %w", err)
	}
	m.StopAt(cfg.HaltPC)
	m.SetInput(cfg.SenseSwitch.Port, cfg.SenseSwitch.Value)

	gate := sio.NewGate(t, m)
	gate.Device = cfg.Output
	m.OnOutput(gate.Out)

	q := new(sio.Queue)
	return &system{
		machine: m,
		queue:   q,
		capture: &sio.Capture{
			Terminal: t,
			Queue:    q,
			Menu: &sio.Menu{
				Terminal:  t,
				Queue:     q,
				Keys:      keys,
				CharDelay: cfg.CharDelay,
			},
		},
		dispatcher: &sio.Dispatcher{
			CPU:    m,
			Queue:  q,
			HaltPC: cfg.HaltPC,
		},
	}, nil
}

// run runs the program until it halts, the operator quits or ctx is done.
// Keys are captured on a goroutine that is left blocked on the terminal
// when run returns; closing the terminal releases it.
func (s *system) run(ctx context.Context) error {
	ctx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	s.capture.Quit = func() { cancel(errQuit) }
	go func() {
		if err := s.capture.Run(ctx); err != nil {
			cancel(err)
		}
	}()

	err := s.dispatcher.Run(ctx)
	s.queue.Close()
	if err == nil {
		return nil
	}
	if cause := context.Cause(ctx); cause != nil {
		err = cause
	}
	if errors.Is(err, errQuit) {
		return nil
	}
	return err
}
