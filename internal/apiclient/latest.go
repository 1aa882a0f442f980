package apiclient

import (
	"context"
	"sync"
)

// Latest tracks the most recent fetch of one resource. Starting a new fetch
// cancels the previous one, and only the newest ticket may commit its result.
type Latest struct {
	mu     sync.Mutex
	seq    uint64
	cancel context.CancelFunc
}

// Ticket identifies one fetch started through Latest
type Ticket struct {
	seq uint64
}

// Begin cancels any in-flight fetch and returns the context and ticket for a new one
func (l *Latest) Begin(parent context.Context) (context.Context, Ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.cancel != nil {
		l.cancel()
	}
	ctx, cancel := context.WithCancel(parent)
	l.seq++
	l.cancel = cancel
	return ctx, Ticket{seq: l.seq}
}

// Current reports whether t belongs to the newest fetch
func (l *Latest) Current(t Ticket) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	return t.seq == l.seq && t.seq != 0
}

// Finish releases the context of t if it is still the newest fetch
func (l *Latest) Finish(t Ticket) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if t.seq == l.seq && l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
}

// Cancel aborts the in-flight fetch, if any, and invalidates its ticket
func (l *Latest) Cancel() {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.cancel != nil {
		l.cancel()
		l.cancel = nil
	}
	l.seq++
}
