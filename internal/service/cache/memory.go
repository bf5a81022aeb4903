package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/kapu/influencer-insight-go/pkg/errors"
)

type memoryEntry struct {
	data      []byte
	expiresAt time.Time
}

func (e memoryEntry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

// MemoryService keeps encoded values in process memory. Values are stored as
// JSON so callers get the same copy semantics as with Redis.
type MemoryService struct {
	mu      sync.Mutex
	entries map[string]memoryEntry
	now     func() time.Time
}

func NewMemoryService() *MemoryService {
	return &MemoryService{
		entries: make(map[string]memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryService) Get(_ context.Context, key string, dest any) (bool, error) {
	m.mu.Lock()
	entry, ok := m.entries[key]
	if ok && entry.expired(m.now()) {
		delete(m.entries, key)
		ok = false
	}
	m.mu.Unlock()

	if !ok {
		return false, nil
	}
	if dest != nil {
		if err := json.Unmarshal(entry.data, dest); err != nil {
			return false, errors.NewCacheError("unmarshal failed", "get", key, err)
		}
	}
	return true, nil
}

func (m *MemoryService) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	data, err := json.Marshal(value)
	if err != nil {
		return errors.NewCacheError("marshal failed", "set", key, err)
	}

	entry := memoryEntry{data: data}
	if ttl > 0 {
		entry.expiresAt = m.now().Add(ttl)
	}

	m.mu.Lock()
	m.entries[key] = entry
	m.mu.Unlock()
	return nil
}

func (m *MemoryService) Del(_ context.Context, key string) error {
	m.mu.Lock()
	delete(m.entries, key)
	m.mu.Unlock()
	return nil
}

// Sweep drops expired entries and returns how many were removed.
func (m *MemoryService) Sweep() int {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	removed := 0
	for key, entry := range m.entries {
		if entry.expired(now) {
			delete(m.entries, key)
			removed++
		}
	}
	return removed
}

func (m *MemoryService) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
