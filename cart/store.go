package cart

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/junaidrashid-git/storefront-api/models"
)

// Store is the cart of one session. Every mutation is persisted before it
// returns and then announced through the dispatcher. Persistence failures
// are logged and the cart keeps working from memory.
type Store struct {
	session    string
	persister  Persister
	dispatcher Dispatcher
	logger     *zap.Logger
	now        func() time.Time

	mu    sync.Mutex
	lines []Line
}

// NewStore returns an empty cart for session.
func NewStore(session string, persister Persister, dispatcher Dispatcher, logger *zap.Logger) *Store {
	if persister == nil {
		persister = NewMemoryPersister()
	}
	if dispatcher == nil {
		dispatcher = noopDispatcher{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Store{
		session:    session,
		persister:  persister,
		dispatcher: dispatcher,
		logger:     logger.With(zap.String("session", session)),
		now:        time.Now,
		lines:      []Line{},
	}
}

// Open rehydrates the cart of session from persister. A missing, unreadable
// or corrupted blob yields an empty cart.
func Open(ctx context.Context, session string, persister Persister, dispatcher Dispatcher, logger *zap.Logger) *Store {
	s := NewStore(session, persister, dispatcher, logger)

	data, err := s.persister.Load(ctx, session)
	if err != nil {
		s.logger.Warn("cart load failed, starting empty", zap.Error(err))
		return s
	}
	if len(data) == 0 {
		return s
	}
	lines, err := decodeLines(data)
	if err != nil {
		s.logger.Warn("corrupted cart snapshot discarded", zap.Error(err))
		return s
	}
	s.lines = lines
	return s
}

func (s *Store) Session() string {
	return s.session
}

// Add puts one unit of the product variant in the cart. An existing line
// with the same key is incremented; otherwise a line is created with the
// product's current price.
func (s *Store) Add(ctx context.Context, p models.Product, size, color string) Snapshot {
	key := NewKey(p.ID, size, color)

	s.mu.Lock()
	if i := s.find(key); i >= 0 {
		s.lines[i].Quantity++
	} else {
		s.lines = append(s.lines, Line{
			ProductID: key.ProductID,
			Name:      p.Name,
			Slug:      p.Slug,
			Image:     p.PrimaryImage(),
			SKU:       p.SKU,
			Size:      key.Size,
			Color:     key.Color,
			UnitPrice: p.Price,
			Quantity:  1,
			AddedAt:   s.now(),
		})
	}
	snap := s.commit(ctx)
	s.mu.Unlock()

	s.announce(OpAdd, snap)
	return snap
}

// Remove deletes the line with the given key. It reports false, and changes
// nothing, when no such line exists.
func (s *Store) Remove(ctx context.Context, productID, size, color string) bool {
	key := NewKey(productID, size, color)

	s.mu.Lock()
	i := s.find(key)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.lines = append(s.lines[:i], s.lines[i+1:]...)
	snap := s.commit(ctx)
	s.mu.Unlock()

	s.announce(OpRemove, snap)
	return true
}

// UpdateQuantity sets the quantity of an existing line, never below one.
// It never creates a line; an unknown key reports false.
func (s *Store) UpdateQuantity(ctx context.Context, productID string, quantity int, size, color string) bool {
	key := NewKey(productID, size, color)
	if quantity < 1 {
		quantity = 1
	}

	s.mu.Lock()
	i := s.find(key)
	if i < 0 {
		s.mu.Unlock()
		return false
	}
	s.lines[i].Quantity = quantity
	snap := s.commit(ctx)
	s.mu.Unlock()

	s.announce(OpUpdate, snap)
	return true
}

// Clear empties the cart. Clearing an empty cart is allowed and still
// persisted and announced.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.lines = []Line{}
	snap := s.commit(ctx)
	s.mu.Unlock()

	s.announce(OpClear, snap)
}

func (s *Store) Lines() []Line {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Line(nil), s.lines...)
}

func (s *Store) TotalItems() int {
	return s.Snapshot().TotalItems
}

func (s *Store) TotalPrice() float64 {
	return s.Snapshot().TotalPrice
}

func (s *Store) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Store) snapshotLocked() Snapshot {
	items, price := totals(s.lines)
	return Snapshot{
		SessionID:  s.session,
		Lines:      append([]Line{}, s.lines...),
		TotalItems: items,
		TotalPrice: price,
	}
}

func (s *Store) find(key Key) int {
	for i, l := range s.lines {
		if l.Key() == key {
			return i
		}
	}
	return -1
}

// commit writes the current lines through to the persister. Must be called
// with s.mu held.
func (s *Store) commit(ctx context.Context) Snapshot {
	snap := s.snapshotLocked()
	data, err := encodeLines(snap.Lines)
	if err == nil {
		err = s.persister.Save(ctx, s.session, data)
	}
	if err != nil {
		s.logger.Warn("cart persistence failed, keeping in-memory state", zap.Error(err))
	}
	return snap
}

func (s *Store) announce(op Operation, snap Snapshot) {
	err := s.dispatcher.Dispatch(Changed{
		Session:    s.session,
		Operation:  op,
		TotalItems: snap.TotalItems,
		TotalPrice: snap.TotalPrice,
		At:         s.now(),
	})
	if err != nil {
		s.logger.Warn("cart event dispatch failed", zap.String("operation", string(op)), zap.Error(err))
	}
}
