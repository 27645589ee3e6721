package term

import (
	"bytes"
	"io"
	"strings"
	"testing"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStreamReadKey(t *testing.T) {
	s := NewStream(strings.NewReader("a\r\nb\nc\x03\x1b\x7f"), io.Discard)
	var got []tcell.Key
	var runes []rune
	for {
		ev, err := s.ReadKey()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		got = append(got, ev.Key())
		runes = append(runes, ev.Rune())
	}
	assert.Equal(t, []tcell.Key{
		tcell.KeyRune, tcell.KeyEnter,
		tcell.KeyRune, tcell.KeyEnter,
		tcell.KeyRune, tcell.KeyCtrlC, tcell.KeyEscape, tcell.KeyBackspace2,
	}, got)
	assert.Equal(t, []rune{'a', 'b', 'c'}, []rune{runes[0], runes[2], runes[4]})
}

func TestStreamReadLine(t *testing.T) {
	for _, c := range []struct {
		name string
		in   string
		want string
		err  error
	}{
		{"cr", "go.bas\r", "go.bas", nil},
		{"lf", "go.bas\nmore", "go.bas", nil},
		{"backspace", "gx\x7fo\r", "go", nil},
		{"escape", "go\x1b", "", ErrCanceled},
		{"eof", "go", "go", nil},
		{"empty eof", "", "", io.EOF},
	} {
		t.Run(c.name, func(t *testing.T) {
			var out bytes.Buffer
			s := NewStream(strings.NewReader(c.in), &out)
			got, err := s.ReadLine("File: ")
			assert.Equal(t, c.err, err)
			assert.Equal(t, c.want, got)
			assert.True(t, strings.HasPrefix(out.String(), "File: "))
		})
	}
}

func TestStreamOutput(t *testing.T) {
	var out bytes.Buffer
	s := NewStream(strings.NewReader(""), &out)

	for _, c := range []byte("OK\r\n") {
		require.NoError(t, s.WriteByte(c))
	}
	assert.Empty(t, out.String(), "buffered until flushed")
	require.NoError(t, s.Flush())

	require.NoError(t, s.OpenOverlay())
	require.NoError(t, s.MoveCursor(0, 0))
	require.NoError(t, s.ShowMenu([]MenuItem{{'Q', "uit"}, {'L', "oad"}}))
	require.NoError(t, s.Message("bad file"))
	require.NoError(t, s.CloseOverlay())
	assert.Error(t, s.MoveCursor(-1, 0))

	assert.Equal(t, "OK\r\n[Q]uit\t[L]oad\r\nbad file\r\n", out.String())
}

func TestStreamANSI(t *testing.T) {
	var out bytes.Buffer
	s := NewStream(strings.NewReader(""), &out)
	s.ansi = true

	require.NoError(t, s.OpenOverlay())
	require.NoError(t, s.MoveCursor(4, 2))
	require.NoError(t, s.ShowMenu([]MenuItem{{'Q', "uit"}}))
	assert.Equal(t, ansiClear+"\x1b[3;5H"+ansiMagenta+"[Q]"+ansiReset+"uit\r\n", out.String())
}
