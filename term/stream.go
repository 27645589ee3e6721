package term

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/term"
)

const (
	ansiClear   = "\x1b[H\x1b[2J"
	ansiMagenta = "\x1b[35m"
	ansiReset   = "\x1b[0m"
)

// Stream is a terminal on plain byte streams. When its input is a tty it
// is switched to raw mode so that keys arrive unbuffered and unechoed;
// when its output is a tty, ANSI sequences are used to clear the screen
// and position the cursor. Pipes get neither.
type Stream struct {
	in     *bufio.Reader
	lastCR bool

	mu   sync.Mutex
	out  *bufio.Writer
	ansi bool
	echo bool

	fd    int
	saved *term.State
}

// NewStream returns a Stream reading keys from r and writing to w.
// No terminal modes are changed.
func NewStream(r io.Reader, w io.Writer) *Stream {
	return &Stream{
		in:  bufio.NewReader(r),
		out: bufio.NewWriter(w),
	}
}

// OpenStream returns a Stream on the given files, putting in into raw mode
// if it is a terminal. Close restores it.
func OpenStream(in, out *os.File) (*Stream, error) {
	s := NewStream(in, out)
	s.ansi = term.IsTerminal(int(out.Fd()))
	if fd := int(in.Fd()); term.IsTerminal(fd) {
		saved, err := term.MakeRaw(fd)
		if err != nil {
			return nil, fmt.Errorf("setting raw mode: %w", err)
		}
		s.fd, s.saved, s.echo = fd, saved, true
	}
	return s, nil
}

// Close flushes output and restores the input terminal's mode.
func (s *Stream) Close() error {
	s.Flush()
	if s.saved == nil {
		return nil
	}
	err := term.Restore(s.fd, s.saved)
	s.saved = nil
	return err
}

// ReadKey reads one byte and reports it as a key. Line feeds are read as
// Enter, and a CR LF pair as a single Enter.
func (s *Stream) ReadKey() (*tcell.EventKey, error) {
	for {
		b, err := s.in.ReadByte()
		if err != nil {
			return nil, err
		}
		cr := s.lastCR
		s.lastCR = b == '\r'
		if b == '\n' {
			if cr {
				continue
			}
			b = '\r'
		}
		return tcell.NewEventKey(tcell.KeyRune, rune(b), tcell.ModNone), nil
	}
}

// ReadLine writes prompt and reads a line, handling backspace. Escape
// cancels the prompt.
func (s *Stream) ReadLine(prompt string) (string, error) {
	s.write(prompt)
	var line []byte
	for {
		ev, err := s.ReadKey()
		if err == io.EOF && len(line) > 0 {
			return string(line), nil
		}
		if err != nil {
			return "", err
		}
		switch ev.Key() {
		case tcell.KeyEnter:
			s.write("\r\n")
			return string(line), nil
		case tcell.KeyEscape:
			s.write("\r\n")
			return "", ErrCanceled
		case tcell.KeyBackspace, tcell.KeyBackspace2:
			if len(line) > 0 {
				line = line[:len(line)-1]
				if s.echo {
					s.write("\b \b")
				}
			}
		case tcell.KeyRune:
			line = append(line, byte(ev.Rune()))
			if s.echo {
				s.write(string(ev.Rune()))
			}
		}
	}
}

func (s *Stream) write(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.out.WriteString(text)
	return s.out.Flush()
}

// WriteByte writes c to the output.
func (s *Stream) WriteByte(c byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.WriteByte(c)
}

// Flush flushes buffered output.
func (s *Stream) Flush() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.out.Flush()
}

// OpenOverlay clears the screen if the output is a terminal.
func (s *Stream) OpenOverlay() error { return s.clear() }

// CloseOverlay clears the screen if the output is a terminal. What was on
// the screen before the overlay is not restored.
func (s *Stream) CloseOverlay() error { return s.clear() }

func (s *Stream) clear() error {
	if !s.ansi {
		return nil
	}
	return s.write(ansiClear)
}

// MoveCursor positions the cursor if the output is a terminal.
func (s *Stream) MoveCursor(x, y int) error {
	if x < 0 || y < 0 {
		return fmt.Errorf("invalid cursor position %d,%d", x, y)
	}
	if !s.ansi {
		return nil
	}
	return s.write(fmt.Sprintf("\x1b[%d;%dH", y+1, x+1))
}

// ShowMenu writes items on one line.
func (s *Stream) ShowMenu(items []MenuItem) error {
	var line []byte
	for i, it := range items {
		if i > 0 {
			line = append(line, '\t')
		}
		key := "[" + string(it.Key) + "]"
		if s.ansi {
			key = ansiMagenta + key + ansiReset
		}
		line = append(line, key+it.Label...)
	}
	return s.write(string(line) + "\r\n")
}

// Message writes text on a line of its own.
func (s *Stream) Message(text string) error {
	return s.write(text + "\r\n")
}
