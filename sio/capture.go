package sio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/gdamore/tcell/v2"
)

// Translate returns the byte the serial board receives for a key. Keys
// with no ASCII equivalent, such as the arrows, report false.
func Translate(ev *tcell.EventKey) (byte, bool) {
	switch k := ev.Key(); {
	case k == tcell.KeyRune:
		if r := ev.Rune(); r < 0x100 {
			return byte(r), true
		}
	case k == tcell.KeyEnter:
		return CR, true
	case k < ' ', k == tcell.KeyDEL:
		return byte(k), true
	}
	return 0, false
}

// Capture reads keys from the terminal and queues them for the CPU. The
// menu's trigger key runs the Menu on the capturing goroutine.
type Capture struct {
	Terminal Terminal
	Queue    *Queue
	Menu     *Menu
	// Quit is called when the operator chooses quit from the menu.
	Quit func()
}

// Run captures keys until the terminal reaches end of input, the operator
// quits or ctx is done. It returns an error only if reading the terminal
// fails.
func (c *Capture) Run(ctx context.Context) error {
	for ctx.Err() == nil {
		ev, err := c.Terminal.ReadKey()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading keyboard: %w", err)
		}
		if ev.Key() == c.Menu.Keys.Trigger {
			if !c.menu() {
				return nil
			}
			continue
		}
		b, ok := Translate(ev)
		if !ok {
			continue
		}
		if err := c.Queue.Send(b); err != nil {
			return nil
		}
	}
	return nil
}

// menu runs the menu and reports whether capturing should go on.
func (c *Capture) menu() bool {
	st, err := c.Menu.Run()
	switch {
	case errors.Is(err, io.EOF), errors.Is(err, ErrClosed):
		return false
	case err != nil:
		log.Printf("menu: %v", err)
		if err := c.Terminal.Message(err.Error()); err != nil {
			log.Printf("menu: %v", err)
		}
	case st == Quit:
		if c.Quit != nil {
			c.Quit()
		}
		return false
	}
	return true
}
