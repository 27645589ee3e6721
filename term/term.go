// Package term implements the operator's side of the serial console:
// a full-screen terminal built on tcell and tview, and a plain stream
// terminal for pipes and dumb terminals.
//
// Both report keys as *tcell.EventKey.
package term

import "errors"

// ErrCanceled is returned by ReadLine when the operator abandons the prompt.
var ErrCanceled = errors.New("canceled")

// MenuItem is one option of an overlay menu, displayed as "[K]label".
type MenuItem struct {
	Key   rune
	Label string
}
