// In-memory TTL cache for client name → ID lookups.
// Key: trimmed client name → resolved master client ID
package services

import (
	"strings"
	"sync"
	"time"
)

type clientCacheEntry struct {
	ID       uint
	CachedAt time.Time
}

type clientCache struct {
	mu      sync.RWMutex
	entries map[string]clientCacheEntry
	ttl     time.Duration
	now     func() time.Time
}

func newClientCache(ttl time.Duration) *clientCache {
	return &clientCache{entries: map[string]clientCacheEntry{}, ttl: ttl, now: time.Now}
}

func clientCacheKey(name string) string {
	return strings.TrimSpace(name)
}

// get returns a cached ID if still fresh. A zero TTL disables caching.
func (c *clientCache) get(name string) (uint, bool) {
	if c.ttl <= 0 {
		return 0, false
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[clientCacheKey(name)]
	if !ok || c.now().Sub(e.CachedAt) > c.ttl {
		return 0, false
	}
	return e.ID, true
}

// set stores a resolved ID. Misses are never cached so a newly created
// client resolves on the next call.
func (c *clientCache) set(name string, id uint) {
	if c.ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[clientCacheKey(name)] = clientCacheEntry{ID: id, CachedAt: c.now()}
}
