package sio

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"github.com/gdamore/tcell/v2"

	"github.com/nicolasbauw/teletype/term"
)

// State is the state of a Menu.
type State int

const (
	Idle State = iota
	MenuDisplayed
	LoadPrompt
	Quit
	ExitMenu
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case MenuDisplayed:
		return "menu"
	case LoadPrompt:
		return "load"
	case Quit:
		return "quit"
	case ExitMenu:
		return "exit"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Keys selects the keys that operate the menu. Menu keys are matched
// exactly, so 'Q' is not 'q'.
type Keys struct {
	Trigger   tcell.Key
	Quit      rune
	Load      rune
	Interrupt rune
}

// DefaultKeys opens the menu with Escape.
var DefaultKeys = Keys{
	Trigger:   tcell.KeyEscape,
	Quit:      'Q',
	Load:      'L',
	Interrupt: 'C',
}

// DefaultCharDelay is the time given to the program to read each
// character of a loaded file.
const DefaultCharDelay = 20 * time.Millisecond

const loadPrompt = "File ? "

// Menu is the control menu. While it runs it owns the terminal and is the
// only sender on the queue.
type Menu struct {
	Terminal  Terminal
	Queue     *Queue
	Keys      Keys
	CharDelay time.Duration

	// Clock paces loaded files; nil means RealClock.
	Clock Clock
	// ReadFile reads files to load; nil means os.ReadFile.
	ReadFile func(name string) ([]byte, error)

	state   State
	overlay bool
}

// State returns the menu's current state.
func (m *Menu) State() State { return m.state }

// Run displays the menu and handles keys until the operator leaves it. It
// returns Quit if the operator asked to quit and ExitMenu otherwise. The
// overlay is closed on return unless the result is Quit.
func (m *Menu) Run() (State, error) {
	m.state = MenuDisplayed
	m.openOverlay()
	if err := m.Terminal.MoveCursor(0, 0); err != nil {
		return m.exit(fmt.Errorf("positioning cursor: %w", err))
	}
	if err := m.Terminal.ShowMenu(m.items()); err != nil {
		return m.exit(err)
	}
	for {
		ev, err := m.Terminal.ReadKey()
		if err != nil {
			return m.exit(err)
		}
		switch {
		case ev.Key() == m.Keys.Trigger:
			return m.exit(nil)
		case ev.Key() != tcell.KeyRune:
		case ev.Rune() == m.Keys.Quit:
			m.state = Quit
			return Quit, nil
		case ev.Rune() == m.Keys.Load:
			return m.exit(m.load())
		case ev.Rune() == m.Keys.Interrupt:
			if err := m.Queue.Send(ETX); err != nil {
				return m.exit(err)
			}
		}
	}
}

func (m *Menu) exit(err error) (State, error) {
	m.state = ExitMenu
	m.closeOverlay()
	return ExitMenu, err
}

// openOverlay clears the terminal for the menu. A terminal that cannot be
// cleared is still usable, so errors are only logged.
func (m *Menu) openOverlay() {
	m.overlay = true
	if err := m.Terminal.OpenOverlay(); err != nil {
		log.Printf("menu: clearing screen: %v", err)
	}
}

func (m *Menu) closeOverlay() {
	if !m.overlay {
		return
	}
	m.overlay = false
	if err := m.Terminal.CloseOverlay(); err != nil {
		log.Printf("menu: restoring screen: %v", err)
	}
}

func (m *Menu) items() []term.MenuItem {
	return []term.MenuItem{
		menuItem(m.Keys.Quit, "Quit"),
		menuItem(m.Keys.Load, "Load"),
	}
}

// menuItem labels key with name, folding the key into the name if it is
// the first letter: "[Q]uit".
func menuItem(key rune, name string) term.MenuItem {
	first, n := utf8.DecodeRuneInString(name)
	if unicode.ToUpper(key) == first {
		return term.MenuItem{Key: key, Label: name[n:]}
	}
	return term.MenuItem{Key: key, Label: " " + name}
}

// load prompts for a file name and types the file in. The whole file is
// read and checked before anything is sent.
func (m *Menu) load() error {
	m.state = LoadPrompt
	m.openOverlay()
	name, err := m.Terminal.ReadLine(loadPrompt)
	if errors.Is(err, term.ErrCanceled) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading file name: %w", err)
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil
	}

	readFile := m.ReadFile
	if readFile == nil {
		readFile = os.ReadFile
	}
	data, err := readFile(name)
	if err != nil {
		return fmt.Errorf("load: %w", err)
	}
	if !utf8.Valid(data) {
		return fmt.Errorf("load %s: not UTF-8 text", name)
	}

	// Let the operator watch the file being typed in.
	m.closeOverlay()
	if err := m.play(NewScript(string(data), m.CharDelay)); err != nil {
		return fmt.Errorf("load %s: %w", name, err)
	}
	log.Printf("loaded %s (%d bytes)", name, len(data))
	return nil
}

func (m *Menu) play(s *Script) error {
	clock := m.Clock
	if clock == nil {
		clock = RealClock
	}
	for {
		st, ok := s.Next()
		if !ok {
			return nil
		}
		if err := m.Queue.Send(st.Byte); err != nil {
			return err
		}
		clock.Sleep(st.Delay)
	}
}
