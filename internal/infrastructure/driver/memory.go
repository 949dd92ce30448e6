package driver

import (
	"context"
	"sync"
	"time"
)

// MemoryKV process local KeyValueDB, used when no redis host is configured
type MemoryKV struct {
	mu    sync.Mutex
	items map[string]memoryItem
	now   func() time.Time
}

type memoryItem struct {
	value    string
	deadline time.Time
}

var _ KeyValueDB = (*MemoryKV)(nil)

func NewMemoryKV() *MemoryKV {
	return &MemoryKV{items: make(map[string]memoryItem), now: time.Now}
}

func (m *MemoryKV) SetEX(ctx context.Context, key string, value string, expiration time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	item := memoryItem{value: value}
	if expiration > 0 {
		item.deadline = m.now().Add(expiration)
	}
	m.items[key] = item
	return nil
}

func (m *MemoryKV) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	item, ok := m.lookup(key)
	if !ok {
		return "", ErrKeyNotFound
	}
	return item.value, nil
}

func (m *MemoryKV) Exists(ctx context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.lookup(key)
	return ok, nil
}

// lookup must be called with mu held
func (m *MemoryKV) lookup(key string) (memoryItem, bool) {
	item, ok := m.items[key]
	if !ok {
		return item, false
	}
	if !item.deadline.IsZero() && !m.now().Before(item.deadline) {
		delete(m.items, key)
		return item, false
	}
	return item, true
}

func (m *MemoryKV) Ping() error {
	return nil
}

func (m *MemoryKV) Close() error {
	return nil
}
