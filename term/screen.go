package term

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

var (
	consoleStyle = tcell.StyleDefault
	menuKeyColor = "fuchsia"
)

// Screen is a full-screen terminal. Output from the machine goes to a
// console grid; the menu draws on an overlay that hides the console until
// it is closed, at which point the console is redrawn unchanged.
//
// ReadKey and ReadLine may be called from one goroutine while another
// writes console output.
type Screen struct {
	s tcell.Screen

	mu      sync.Mutex
	con     *grid
	overlay bool
	ox, oy  int // overlay cursor

	closeOnce sync.Once
}

// OpenScreen takes over the process's terminal.
func OpenScreen() (*Screen, error) {
	s, err := tcell.NewScreen()
	if err != nil {
		return nil, err
	}
	return NewScreen(s)
}

// NewScreen initialises s and returns a Screen drawing on it.
func NewScreen(s tcell.Screen) (*Screen, error) {
	if err := s.Init(); err != nil {
		return nil, err
	}
	w, h := s.Size()
	sc := &Screen{s: s, con: newGrid(w, h)}
	sc.s.Clear()
	sc.s.Show()
	return sc, nil
}

// Close restores the terminal. It is safe to call more than once.
func (s *Screen) Close() error {
	s.closeOnce.Do(s.s.Fini)
	return nil
}

// ReadKey blocks until a key is pressed. It returns io.EOF once the screen
// has been closed.
func (s *Screen) ReadKey() (*tcell.EventKey, error) {
	for {
		switch ev := s.s.PollEvent().(type) {
		case nil:
			return nil, io.EOF
		case *tcell.EventKey:
			return ev, nil
		case *tcell.EventResize:
			s.resize()
		}
	}
}

func (s *Screen) resize() {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, h := s.s.Size()
	s.con.resize(w, h)
	if !s.overlay {
		s.drawConsole()
	}
	s.s.Sync()
}

// WriteByte puts c on the console at the cursor.
func (s *Screen) WriteByte(c byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	scrolled := s.con.put(c)
	if s.overlay {
		return nil
	}
	switch {
	case scrolled:
		s.drawConsole()
	case c >= ' ':
		y := s.con.y
		x := s.con.x - 1
		s.s.SetContent(x, y, s.con.cells[y][x], nil, consoleStyle)
	}
	return nil
}

// Flush makes console output visible.
func (s *Screen) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.overlay {
		s.s.ShowCursor(s.con.cursor())
		s.s.Show()
	}
	return nil
}

// drawConsole paints the whole console grid. Callers hold s.mu.
func (s *Screen) drawConsole() {
	for y, row := range s.con.cells {
		for x, r := range row {
			s.s.SetContent(x, y, r, nil, consoleStyle)
		}
	}
	s.s.ShowCursor(s.con.cursor())
}

// OpenOverlay clears the screen for the menu. Console output continues
// to be recorded while the overlay is open.
func (s *Screen) OpenOverlay() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = true
	s.ox, s.oy = 0, 0
	s.s.Clear()
	s.s.HideCursor()
	s.s.Show()
	return nil
}

// CloseOverlay removes the overlay and redraws the console.
func (s *Screen) CloseOverlay() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.overlay = false
	s.s.Clear()
	s.drawConsole()
	s.s.Show()
	return nil
}

// MoveCursor sets the position at which the overlay draws next.
func (s *Screen) MoveCursor(x, y int) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	w, h := s.s.Size()
	if x < 0 || y < 0 || x >= w || y >= h {
		return fmt.Errorf("cursor position %d,%d outside %dx%d screen", x, y, w, h)
	}
	s.ox, s.oy = x, y
	return nil
}

// ShowMenu draws items on one line of the overlay with their keys
// highlighted.
func (s *Screen) ShowMenu(items []MenuItem) error {
	var b strings.Builder
	for i, it := range items {
		if i > 0 {
			b.WriteString("  ")
		}
		fmt.Fprintf(&b, "[%s]%s[-]%s", menuKeyColor, tview.Escape("["+string(it.Key)+"]"), tview.Escape(it.Label))
	}
	s.drawText(b.String(), true)
	return nil
}

// Message shows text to the operator: on the overlay if it is open,
// otherwise as a line of console output.
func (s *Screen) Message(text string) error {
	s.mu.Lock()
	overlay := s.overlay
	s.mu.Unlock()
	if overlay {
		s.drawText(tview.Escape(text), true)
		return nil
	}
	for _, c := range []byte(text + "\r\n") {
		s.WriteByte(c)
	}
	return s.Flush()
}

func (s *Screen) drawText(text string, dynamic bool) {
	lines := strings.Count(text, "\n") + 1
	v := tview.NewTextView().
		SetDynamicColors(dynamic).
		SetWrap(false).
		SetText(text)
	v.SetBackgroundColor(tcell.ColorDefault)

	s.mu.Lock()
	defer s.mu.Unlock()
	w, _ := s.s.Size()
	v.SetRect(s.ox, s.oy, w-s.ox, lines)
	v.Draw(s.s)
	s.ox, s.oy = 0, s.oy+lines
	s.s.Show()
}

// ReadLine prompts for a line of text on the overlay. It returns
// ErrCanceled if the operator leaves the prompt with anything but Enter.
func (s *Screen) ReadLine(prompt string) (string, error) {
	var (
		done bool
		key  tcell.Key
		noop = func(tview.Primitive) {}
	)
	field := tview.NewInputField().
		SetLabel(prompt).
		SetFieldBackgroundColor(tcell.ColorDefault).
		SetDoneFunc(func(k tcell.Key) { done, key = true, k })

	s.mu.Lock()
	w, _ := s.s.Size()
	field.SetRect(s.ox, s.oy, w-s.ox, 1)
	s.mu.Unlock()
	field.Focus(noop)

	handle := field.InputHandler()
	for {
		s.drawField(field)
		if done {
			break
		}
		ev, err := s.ReadKey()
		if err != nil {
			return "", err
		}
		handle(ev, noop)
	}

	s.mu.Lock()
	s.oy++
	s.s.HideCursor()
	s.mu.Unlock()
	if key != tcell.KeyEnter {
		return "", ErrCanceled
	}
	return field.GetText(), nil
}

func (s *Screen) drawField(f *tview.InputField) {
	s.mu.Lock()
	defer s.mu.Unlock()
	f.Draw(s.s)
	s.s.Show()
}

// contents returns the console grid as text, one line per row.
func (s *Screen) contents() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.con.String()
}
