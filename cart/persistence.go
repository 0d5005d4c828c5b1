package cart

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/pkg/errors"
	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/junaidrashid-git/storefront-api/models"
)

// Persister is the durable slot behind a cart. Load returns nil data when
// nothing was saved for the session yet.
type Persister interface {
	Load(ctx context.Context, session string) ([]byte, error)
	Save(ctx context.Context, session string, data []byte) error
}

type storedCart struct {
	Lines []Line `json:"lines"`
}

func encodeLines(lines []Line) ([]byte, error) {
	return json.Marshal(storedCart{Lines: lines})
}

// decodeLines parses a persisted blob. Duplicate keys are merged and
// quantities below one are raised to one.
func decodeLines(data []byte) ([]Line, error) {
	var stored storedCart
	if err := json.Unmarshal(data, &stored); err != nil {
		return nil, err
	}
	lines := make([]Line, 0, len(stored.Lines))
	index := make(map[Key]int, len(stored.Lines))
	for _, l := range stored.Lines {
		if l.Quantity < 1 {
			l.Quantity = 1
		}
		if i, ok := index[l.Key()]; ok {
			lines[i].Quantity += l.Quantity
			continue
		}
		index[l.Key()] = len(lines)
		lines = append(lines, l)
	}
	return lines, nil
}

// MemoryPersister keeps blobs in a map. Used by tests and when no database
// is configured.
type MemoryPersister struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func NewMemoryPersister() *MemoryPersister {
	return &MemoryPersister{blobs: make(map[string][]byte)}
}

func (m *MemoryPersister) Load(_ context.Context, session string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.blobs[session]
	if !ok {
		return nil, nil
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryPersister) Save(_ context.Context, session string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.blobs[session] = append([]byte(nil), data...)
	return nil
}

// GormPersister stores one row per session in cart_snapshots.
type GormPersister struct {
	db *gorm.DB
}

func NewGormPersister(db *gorm.DB) *GormPersister {
	return &GormPersister{db: db}
}

func (p *GormPersister) Load(ctx context.Context, session string) ([]byte, error) {
	var row models.CartSnapshot
	err := p.db.WithContext(ctx).First(&row, "session_id = ?", session).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, errors.Wrap(err, "load cart snapshot")
	}
	return []byte(row.Data), nil
}

func (p *GormPersister) Save(ctx context.Context, session string, data []byte) error {
	row := models.CartSnapshot{
		SessionID: session,
		Data:      datatypes.JSON(data),
		UpdatedAt: time.Now(),
	}
	err := p.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "session_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
	return errors.Wrap(err, "save cart snapshot")
}
