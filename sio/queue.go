package sio

import (
	"errors"
	"sync"
	"sync/atomic"
)

// ErrClosed is returned by Send once the queue has been closed.
var ErrClosed = errors.New("sio: queue closed")

// Queue is an unbounded FIFO of bytes with any number of senders and a
// single receiver. Neither end ever blocks.
type Queue struct {
	n atomic.Int32 // len(buf), read without the lock

	mu     sync.Mutex
	buf    []byte
	closed bool
}

// Send appends b to the queue.
func (q *Queue) Send(b byte) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return ErrClosed
	}
	q.buf = append(q.buf, b)
	q.n.Add(1)
	return nil
}

// TryRecv removes and returns the oldest byte, or reports false if the
// queue is empty.
func (q *Queue) TryRecv() (byte, bool) {
	if q.n.Load() == 0 {
		return 0, false
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.buf) == 0 {
		return 0, false
	}
	b := q.buf[0]
	q.buf = q.buf[1:]
	if len(q.buf) == 0 {
		q.buf = nil
	}
	q.n.Add(-1)
	return b, true
}

// Close stops the queue accepting bytes. Bytes already queued can still be
// received.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.mu.Unlock()
}

// Len returns the number of bytes waiting.
func (q *Queue) Len() int { return int(q.n.Load()) }
