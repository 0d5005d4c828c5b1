package cart

import (
	"context"
	"sync"

	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"
)

// DefaultCapacity is how many session carts a Registry keeps open.
const DefaultCapacity = 10000

type RegistryOption func(*Registry)

// WithCapacity bounds the number of open stores; the least recently used
// one is closed first. Values below one are ignored.
func WithCapacity(n int) RegistryOption {
	return func(r *Registry) {
		if n > 0 {
			r.capacity = n
		}
	}
}

// Registry hands out the Store of each session, opening it from the
// persister on first use. Idle stores are evicted; every mutation is written
// through, so an evicted cart reopens from its persisted blob.
type Registry struct {
	persister  Persister
	dispatcher Dispatcher
	logger     *zap.Logger
	capacity   int

	mu     sync.Mutex
	stores *lru.Cache[string, *Store]
}

func NewRegistry(persister Persister, dispatcher Dispatcher, logger *zap.Logger, opts ...RegistryOption) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Registry{
		persister:  persister,
		dispatcher: dispatcher,
		logger:     logger,
		capacity:   DefaultCapacity,
	}
	for _, opt := range opts {
		opt(r)
	}
	// only fails for a non-positive size, which WithCapacity rules out
	r.stores, _ = lru.New[string, *Store](r.capacity)
	return r
}

func (r *Registry) Get(ctx context.Context, session string) *Store {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.stores.Get(session); ok {
		return s
	}
	s := Open(ctx, session, r.persister, r.dispatcher, r.logger)
	if r.stores.Add(session, s) {
		r.logger.Debug("evicted idle cart", zap.Int("open", r.stores.Len()))
	}
	return s
}

// Lookup returns the already-open store of session, if any.
func (r *Registry) Lookup(session string) (*Store, bool) {
	return r.stores.Peek(session)
}

// Len reports how many stores are currently held in memory.
func (r *Registry) Len() int {
	return r.stores.Len()
}

// Forget drops the in-memory store of session. The persisted blob stays.
func (r *Registry) Forget(session string) {
	r.stores.Remove(session)
}
