package search

import (
	"context"
	"sync"
	"sync/atomic"
)

// Sequencer hands out increasing request numbers so a caller can tell whether
// a finished search is still the latest one it issued.
type Sequencer struct {
	last atomic.Uint64
}

func (s *Sequencer) Next() uint64 {
	return s.last.Add(1)
}

func (s *Sequencer) IsCurrent(n uint64) bool {
	return s.last.Load() == n
}

// Ticket identifies one in-flight search of a client.
type Ticket struct {
	Key string
	Seq uint64
}

type inflight struct {
	seq    uint64
	cancel context.CancelFunc
}

// Tracker keeps the newest in-flight search per client key. Starting a search
// cancels the one it supersedes.
type Tracker struct {
	seq Sequencer

	mu      sync.Mutex
	pending map[string]inflight
}

func NewTracker() *Tracker {
	return &Tracker{pending: make(map[string]inflight)}
}

// Begin registers a new search for key and returns a context that is
// cancelled as soon as a newer search for the same key begins.
func (t *Tracker) Begin(parent context.Context, key string) (context.Context, Ticket) {
	ctx, cancel := context.WithCancel(parent)
	ticket := Ticket{Key: key, Seq: t.seq.Next()}

	t.mu.Lock()
	if prev, ok := t.pending[key]; ok {
		prev.cancel()
	}
	t.pending[key] = inflight{seq: ticket.Seq, cancel: cancel}
	t.mu.Unlock()

	return ctx, ticket
}

// IsCurrent reports whether ticket is still the newest search for its key.
func (t *Tracker) IsCurrent(ticket Ticket) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	cur, ok := t.pending[ticket.Key]
	return ok && cur.seq == ticket.Seq
}

// Finish releases the ticket's context. A superseded ticket was already
// cancelled by its successor.
func (t *Tracker) Finish(ticket Ticket) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if cur, ok := t.pending[ticket.Key]; ok && cur.seq == ticket.Seq {
		cur.cancel()
		delete(t.pending, ticket.Key)
	}
}
