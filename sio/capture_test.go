package sio

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTranslate(t *testing.T) {
	for _, c := range []struct {
		ev   *tcell.EventKey
		want byte
		ok   bool
	}{
		{tcell.NewEventKey(tcell.KeyRune, 'a', tcell.ModNone), 'a', true},
		{tcell.NewEventKey(tcell.KeyRune, 'Z', tcell.ModNone), 'Z', true},
		{tcell.NewEventKey(tcell.KeyRune, '~', tcell.ModNone), '~', true},
		{tcell.NewEventKey(tcell.KeyRune, 'é', tcell.ModNone), 0xe9, true},
		{tcell.NewEventKey(tcell.KeyRune, '€', tcell.ModNone), 0, false},
		{key(tcell.KeyEnter), CR, true},
		{key(tcell.KeyCtrlC), ETX, true},
		{key(tcell.KeyBackspace), 0x08, true},
		{key(tcell.KeyBackspace2), 0x7f, true},
		{key(tcell.KeyTab), '\t', true},
		{key(tcell.KeyEscape), 0x1b, true},
		{key(tcell.KeyUp), 0, false},
		{key(tcell.KeyF1), 0, false},
	} {
		got, ok := Translate(c.ev)
		assert.Equal(t, c.ok, ok, c.ev.Name())
		assert.Equal(t, c.want, got, c.ev.Name())
	}
}

func newTestCapture(t *fakeTerminal) (*Capture, *Queue, *int) {
	m, q, _ := newTestMenu(t)
	quits := new(int)
	return &Capture{
		Terminal: t,
		Queue:    q,
		Menu:     m,
		Quit:     func() { *quits++ },
	}, q, quits
}

func TestCapture(t *testing.T) {
	term := &fakeTerminal{keys: keys(
		runes("ab"),
		[]*tcell.EventKey{key(tcell.KeyEnter), key(tcell.KeyUp)},
		esc(), runes("C"), esc(),
		runes("c"),
	)}
	c, q, quits := newTestCapture(term)
	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, []byte{'a', 'b', CR, ETX, 'c'}, drain(q))
	assert.Equal(t, 0, *quits)
}

func TestCaptureQuit(t *testing.T) {
	term := &fakeTerminal{keys: keys(runes("a"), esc(), runes("Q"), runes("b"))}
	c, q, quits := newTestCapture(term)
	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, 1, *quits)
	assert.Equal(t, []byte("a"), drain(q))
	assert.Len(t, term.keys, 1, "capture stops after quit")
}

func TestCaptureMenuError(t *testing.T) {
	term := &fakeTerminal{
		keys:  keys(esc(), runes("L"), runes("x")),
		lines: []string{"missing.bas"},
	}
	c, q, _ := newTestCapture(term)
	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, []byte("x"), drain(q), "capture resumes after the error")
	assert.Contains(t, term.calls, "message load: open missing.bas: file does not exist")
}

func TestCaptureLoad(t *testing.T) {
	term := &fakeTerminal{
		keys:  keys(runes("1"), esc(), runes("L"), runes("2")),
		lines: []string{"hello.bas"},
	}
	c, q, _ := newTestCapture(term)
	require.NoError(t, c.Run(context.Background()))
	assert.Equal(t, "110 PRINT \"HELLO\"\r20 END\rRUN\r2", string(drain(q)))
}

type errKeyboard struct{ fakeTerminal }

var errBroken = errors.New("broken tty")

func (errKeyboard) ReadKey() (*tcell.EventKey, error) { return nil, errBroken }

func TestCaptureReadError(t *testing.T) {
	term := &errKeyboard{}
	m, q, _ := newTestMenu(&term.fakeTerminal)
	c := &Capture{Terminal: term, Queue: q, Menu: m}
	assert.ErrorIs(t, c.Run(context.Background()), errBroken)
}

func TestCaptureStops(t *testing.T) {
	t.Run("canceled", func(t *testing.T) {
		term := &fakeTerminal{keys: runes("abc")}
		c, q, _ := newTestCapture(term)
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		require.NoError(t, c.Run(ctx))
		assert.Equal(t, 0, q.Len())
	})
	t.Run("closed", func(t *testing.T) {
		term := &fakeTerminal{keys: runes("abc")}
		c, q, _ := newTestCapture(term)
		q.Close()
		require.NoError(t, c.Run(context.Background()))
		assert.Len(t, term.keys, 2)
	})
}

// Keys typed and keys loaded from a file reach the CPU in the order they
// were captured, one per slice.
func TestCaptureToDispatcher(t *testing.T) {
	term := &fakeTerminal{
		keys:  keys(runes("RUN"), []*tcell.EventKey{key(tcell.KeyEnter)}, esc(), runes("L"), runes("!")),
		lines: []string{"hello.bas"},
	}
	c, q, _ := newTestCapture(term)

	done := make(chan error, 1)
	go func() { done <- c.Run(context.Background()) }()
	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("capture did not finish")
	}

	want := "RUN\r10 PRINT \"HELLO\"\r20 END\rRUN\r!"
	cpu := &fakeCPU{halt: len(want) + 5}
	d := &Dispatcher{CPU: cpu, Queue: q, HaltPC: DefaultHaltPC}
	require.NoError(t, d.Run(context.Background()))
	assert.Equal(t, want, string(cpu.data()))
}
