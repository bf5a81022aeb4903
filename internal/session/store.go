package session

import (
	"context"
	"sync"
	"time"

	"github.com/kapu/influencer-insight-go/internal/constants"
	apperrors "github.com/kapu/influencer-insight-go/pkg/errors"
	"go.uber.org/zap"
)

// Store persists session states between requests. Get returns a
// *errors.NotFoundError for unknown or expired ids.
type Store interface {
	Get(ctx context.Context, id string) (*State, error)
	Save(ctx context.Context, state *State) error
	Delete(ctx context.Context, id string) error
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type memoryItem struct {
	state     *State
	expiresAt time.Time
}

// MemoryStore keeps sessions in process memory; each Save extends the TTL.
type MemoryStore struct {
	mu     sync.RWMutex
	items  map[string]memoryItem
	ttl    time.Duration
	now    func() time.Time
	logger *zap.Logger
}

func NewMemoryStore(ttl time.Duration, logger *zap.Logger) *MemoryStore {
	if ttl <= 0 {
		ttl = constants.CacheTTL.Session
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &MemoryStore{
		items:  make(map[string]memoryItem),
		ttl:    ttl,
		now:    time.Now,
		logger: logger,
	}
}

func (m *MemoryStore) Get(_ context.Context, id string) (*State, error) {
	m.mu.RLock()
	item, ok := m.items[id]
	m.mu.RUnlock()

	if !ok || !m.now().Before(item.expiresAt) {
		return nil, apperrors.NewNotFoundError("session", id)
	}
	return item.state.Clone(), nil
}

func (m *MemoryStore) Save(_ context.Context, state *State) error {
	m.mu.Lock()
	m.items[state.ID] = memoryItem{
		state:     state.Clone(),
		expiresAt: m.now().Add(m.ttl),
	}
	m.mu.Unlock()
	return nil
}

func (m *MemoryStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	delete(m.items, id)
	m.mu.Unlock()
	return nil
}

// Sweep removes expired sessions.
func (m *MemoryStore) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for id, item := range m.items {
		if !now.Before(item.expiresAt) {
			delete(m.items, id)
			removed++
		}
	}
	return removed
}

// RunJanitor sweeps on every tick until ctx is done.
func (m *MemoryStore) RunJanitor(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := m.Sweep(); removed > 0 {
				m.logger.Debug("Expired sessions removed", zap.Int("count", removed))
			}
		}
	}
}
