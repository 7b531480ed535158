package cache

import (
	"context"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/andrewpaige1/workbook-api/models"
)

// Stats are simple counters for cache behavior.
type Stats struct {
	Hits          int64 `json:"hits"`
	Misses        int64 `json:"misses"`
	Sets          int64 `json:"sets"`
	Invalidations int64 `json:"invalidations"`
	Evictions     int64 `json:"evictions"`
	Size          int   `json:"size"`
}

type Memory struct {
	mu      sync.RWMutex
	entries map[string]*memoryEntry
	ttl     time.Duration
	maxSize int
	now     func() time.Time

	hits          int64
	misses        int64
	sets          int64
	invalidations int64
	evictions     int64
}

type memoryEntry struct {
	items    []models.Item
	cachedAt time.Time
}

func NewMemory(c Config) *Memory {
	if c.TTL == 0 {
		c.TTL = 5 * time.Minute
	}
	if c.MaxSize == 0 {
		c.MaxSize = 500
	}
	return &Memory{
		entries: make(map[string]*memoryEntry),
		ttl:     c.TTL,
		maxSize: c.MaxSize,
		now:     time.Now,
	}
}

func (m *Memory) Get(_ context.Context, key Key) ([]models.Item, bool) {
	k := key.String()

	m.mu.RLock()
	entry, ok := m.entries[k]
	m.mu.RUnlock()

	if !ok {
		atomic.AddInt64(&m.misses, 1)
		return nil, false
	}
	if m.now().Sub(entry.cachedAt) > m.ttl {
		m.mu.Lock()
		// Set may have stored a fresh entry since the read lock was dropped.
		if cur, ok := m.entries[k]; ok && cur == entry {
			delete(m.entries, k)
		}
		m.mu.Unlock()
		atomic.AddInt64(&m.misses, 1)
		return nil, false
	}

	atomic.AddInt64(&m.hits, 1)
	out := make([]models.Item, len(entry.items))
	copy(out, entry.items)
	return out, true
}

func (m *Memory) Set(_ context.Context, key Key, items []models.Item) {
	stored := make([]models.Item, len(items))
	copy(stored, items)

	m.mu.Lock()
	defer m.mu.Unlock()

	k := key.String()
	if _, exists := m.entries[k]; !exists && len(m.entries) >= m.maxSize {
		// Simple eviction if full
		for victim := range m.entries {
			delete(m.entries, victim)
			atomic.AddInt64(&m.evictions, 1)
			break
		}
	}
	m.entries[k] = &memoryEntry{items: stored, cachedAt: m.now()}
	atomic.AddInt64(&m.sets, 1)
}

func (m *Memory) Invalidate(_ context.Context, keys ...Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, key := range keys {
		if _, ok := m.entries[key.String()]; ok {
			delete(m.entries, key.String())
			atomic.AddInt64(&m.invalidations, 1)
		}
	}
}

func (m *Memory) InvalidateOwner(_ context.Context, ownerID string) {
	prefix := ownerPrefix(ownerID)

	m.mu.Lock()
	defer m.mu.Unlock()
	for k := range m.entries {
		if strings.HasPrefix(k, prefix) {
			delete(m.entries, k)
			atomic.AddInt64(&m.invalidations, 1)
		}
	}
}

func (m *Memory) Stats() Stats {
	m.mu.RLock()
	size := len(m.entries)
	m.mu.RUnlock()
	return Stats{
		Hits:          atomic.LoadInt64(&m.hits),
		Misses:        atomic.LoadInt64(&m.misses),
		Sets:          atomic.LoadInt64(&m.sets),
		Invalidations: atomic.LoadInt64(&m.invalidations),
		Evictions:     atomic.LoadInt64(&m.evictions),
		Size:          size,
	}
}
