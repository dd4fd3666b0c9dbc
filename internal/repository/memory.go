package repository

import (
	"context"
	"sync"
	"time"

	"odolzhi/internal/models"
)

type memoryEntry struct {
	item      models.Item
	expiresAt time.Time
}

// MemoryItemCache — резервный кэш вещей в памяти процесса.
type MemoryItemCache struct {
	mu      sync.RWMutex
	entries map[int64]memoryEntry
	ttl     time.Duration
}

func NewMemoryItemCache(ttl time.Duration) *MemoryItemCache {
	return &MemoryItemCache{
		entries: make(map[int64]memoryEntry),
		ttl:     ttl,
	}
}

func (m *MemoryItemCache) Get(_ context.Context, itemID int64) (*models.Item, error) {
	m.mu.RLock()
	entry, ok := m.entries[itemID]
	m.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	if m.ttl > 0 && time.Now().After(entry.expiresAt) {
		m.mu.Lock()
		delete(m.entries, itemID)
		m.mu.Unlock()
		return nil, nil
	}

	item := entry.item
	return &item, nil
}

func (m *MemoryItemCache) Set(_ context.Context, item *models.Item) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[item.ID] = memoryEntry{
		item:      *item,
		expiresAt: time.Now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryItemCache) Invalidate(_ context.Context, itemID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, itemID)
	return nil
}
