package sio

import (
	"strings"
	"time"
	"unicode/utf8"
)

// LineDelayFactor is how many character delays follow the end of a line,
// giving the program time to process it.
const LineDelayFactor = 10

// Stroke is one key of a Script and how long to wait after typing it.
type Stroke struct {
	Byte  byte
	Delay time.Duration
}

// Script types out text a line at a time, ending each line with a carriage
// return. It is consumed as it is played and cannot be rewound.
type Script struct {
	rest      string
	line      string
	eol       bool
	charDelay time.Duration
}

// NewScript returns a Script for text. Lines are separated by "\n" with
// an optional preceding "\r"; a final newline does not start another line.
func NewScript(text string, charDelay time.Duration) *Script {
	return &Script{rest: text, charDelay: charDelay}
}

// Next returns the next stroke, or false when the script is finished.
// Characters outside Latin-1 are truncated to their low 8 bits.
func (s *Script) Next() (Stroke, bool) {
	for {
		if s.line != "" {
			r, n := utf8.DecodeRuneInString(s.line)
			s.line = s.line[n:]
			return Stroke{byte(r), s.charDelay}, true
		}
		if s.eol {
			s.eol = false
			return Stroke{CR, s.charDelay * LineDelayFactor}, true
		}
		if s.rest == "" {
			return Stroke{}, false
		}
		line, rest, _ := strings.Cut(s.rest, "\n")
		s.line, s.rest, s.eol = strings.TrimSuffix(line, "\r"), rest, true
	}
}

// Clock sleeps. Tests substitute one that only records durations.
type Clock interface {
	Sleep(d time.Duration)
}

type realClock struct{}

func (realClock) Sleep(d time.Duration) { time.Sleep(d) }

// RealClock sleeps using the time package.
var RealClock Clock = realClock{}
