package main

import (
	"fmt"
	"io"
	"sync"
)

// backlog holds the most recent log output while the terminal is in use,
// to be written out once it has been given back.
type backlog struct {
	mu      sync.Mutex
	entries []string
	n       int
	dropped int
}

const maxBacklog = 100

func (b *backlog) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.n < len(b.entries) {
		b.entries[b.n] = string(p)
		b.dropped++
	} else {
		b.entries = append(b.entries, string(p))
	}
	b.n = (b.n + 1) % maxBacklog
	return len(p), nil
}

// Emit writes the held entries to w, oldest first, and empties the backlog.
func (b *backlog) Emit(w io.Writer) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if len(b.entries) == 0 {
		return
	}
	if b.dropped > 0 {
		fmt.Fprintf(w, "(%d earlier log lines dropped)\n", b.dropped)
	}
	for i := b.n; ; i++ {
		i %= len(b.entries)
		io.WriteString(w, b.entries[i])
		if (i+1)%maxBacklog == b.n {
			break
		}
	}
	b.entries = b.entries[:0]
	b.n, b.dropped = 0, 0
}
