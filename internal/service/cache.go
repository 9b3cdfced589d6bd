package service

import (
	"sync"
	"time"

	"dantechat/internal/model"
)

// ResultCache memoizes query results keyed by the canonical filter
// serialization. Entries expire after the TTL but are never evicted
// otherwise; Clear drops everything at once.
type ResultCache struct {
	mu      sync.Mutex
	entries map[string]cacheEntry
	ttl     time.Duration
	now     func() time.Time
}

type cacheEntry struct {
	results   []model.Property
	createdAt time.Time
}

// NewResultCache creates a cache with the given time-to-live
func NewResultCache(ttl time.Duration) *ResultCache {
	return &ResultCache{
		entries: make(map[string]cacheEntry),
		ttl:     ttl,
		now:     time.Now,
	}
}

// Get returns the cached result set for a filter key if present and unexpired.
func (c *ResultCache) Get(key string) ([]model.Property, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	if c.now().Sub(entry.createdAt) >= c.ttl {
		return nil, false
	}
	return entry.results, true
}

// Put stores a result set under a filter key with the current timestamp.
func (c *ResultCache) Put(key string, results []model.Property) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = cacheEntry{results: results, createdAt: c.now()}
}

// Clear drops all entries.
func (c *ResultCache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]cacheEntry)
}

// Len returns the number of stored entries, expired ones included.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
