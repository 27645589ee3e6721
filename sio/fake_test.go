package sio

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/nicolasbauw/teletype/term"
)

func key(k tcell.Key) *tcell.EventKey { return tcell.NewEventKey(k, 0, tcell.ModNone) }

func runes(s string) []*tcell.EventKey {
	var evs []*tcell.EventKey
	for _, r := range s {
		evs = append(evs, tcell.NewEventKey(tcell.KeyRune, r, tcell.ModNone))
	}
	return evs
}

func keys(groups ...[]*tcell.EventKey) []*tcell.EventKey {
	var evs []*tcell.EventKey
	for _, g := range groups {
		evs = append(evs, g...)
	}
	return evs
}

func esc() []*tcell.EventKey { return []*tcell.EventKey{key(tcell.KeyEscape)} }

// fakeTerminal plays back keys and records what is done to it.
type fakeTerminal struct {
	keys  []*tcell.EventKey
	lines []string // answers to ReadLine; "\x1b" cancels
	calls []string

	moveErr error
	out     strings.Builder

	// menu, if set, has its state recorded at every ReadKey.
	menu   *Menu
	states []State
}

func (t *fakeTerminal) ReadKey() (*tcell.EventKey, error) {
	if t.menu != nil {
		t.states = append(t.states, t.menu.State())
	}
	if len(t.keys) == 0 {
		return nil, io.EOF
	}
	ev := t.keys[0]
	t.keys = t.keys[1:]
	return ev, nil
}

func (t *fakeTerminal) ReadLine(prompt string) (string, error) {
	t.calls = append(t.calls, "prompt "+prompt)
	if len(t.lines) == 0 {
		return "", io.EOF
	}
	l := t.lines[0]
	t.lines = t.lines[1:]
	if l == "\x1b" {
		return "", term.ErrCanceled
	}
	return l, nil
}

func (t *fakeTerminal) OpenOverlay() error {
	t.calls = append(t.calls, "open")
	return nil
}

func (t *fakeTerminal) CloseOverlay() error {
	t.calls = append(t.calls, "close")
	return nil
}

func (t *fakeTerminal) MoveCursor(x, y int) error {
	t.calls = append(t.calls, fmt.Sprintf("move %d,%d", x, y))
	return t.moveErr
}

func (t *fakeTerminal) ShowMenu(items []term.MenuItem) error {
	var s []string
	for _, it := range items {
		s = append(s, "["+string(it.Key)+"]"+it.Label)
	}
	t.calls = append(t.calls, "menu "+strings.Join(s, " "))
	return nil
}

func (t *fakeTerminal) Message(text string) error {
	t.calls = append(t.calls, "message "+text)
	return nil
}

func (t *fakeTerminal) WriteByte(c byte) error { return t.out.WriteByte(c) }

func (t *fakeTerminal) Flush() error {
	t.calls = append(t.calls, "flush")
	return nil
}

type fakeClock struct {
	slept []time.Duration
}

func (c *fakeClock) Sleep(d time.Duration) { c.slept = append(c.slept, d) }

func (c *fakeClock) total() time.Duration {
	var t time.Duration
	for _, d := range c.slept {
		t += d
	}
	return t
}

type portWrite struct{ port, value byte }

// fakeCPU counts slices and records port writes. Its PC is the number of
// slices run, until halt slices have run, after which it is 0xffff.
type fakeCPU struct {
	slices  int
	halt    int
	inputs  []portWrite
	reloads [][]byte

	// slice, if set, is called at every slice.
	slice func(n int)
}

func (c *fakeCPU) ExecuteSlice() {
	c.slices++
	if c.slice != nil {
		c.slice(c.slices)
	}
}

func (c *fakeCPU) PC() uint16 {
	if c.halt > 0 && c.slices >= c.halt {
		return 0xffff
	}
	return uint16(c.slices)
}

func (c *fakeCPU) SetInput(port, value byte) {
	c.inputs = append(c.inputs, portWrite{port, value})
}

func (c *fakeCPU) Reload(image []byte) error {
	if len(image) == 0 {
		return fmt.Errorf("empty image")
	}
	c.reloads = append(c.reloads, image)
	return nil
}

// data returns the bytes written to the data port.
func (c *fakeCPU) data() []byte {
	var b []byte
	for _, w := range c.inputs {
		if w.port == DataPort {
			b = append(b, w.value)
		}
	}
	return b
}
