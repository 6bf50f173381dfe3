// Package cache implements a small in-process key/value cache with
// per-entry expiry. Instances are constructed explicitly and handed to the
// components that need them; there is no package-level singleton. Writes
// are last-writer-wins and no cross-process consistency is offered.
package cache

import (
	"sync"
	"time"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Cache is safe for concurrent use. Expired entries are dropped lazily on
// read and swept opportunistically on write, so memory is bounded by the
// working set rather than by everything ever stored.
type Cache struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time // injectable clock for tests
}

// New returns an empty cache.
func New() *Cache {
	return &Cache{entries: make(map[string]entry), now: time.Now}
}

// Set stores value under key for the given TTL, replacing any previous
// entry. A non-positive ttl is a no-op.
func (c *Cache) Set(key, value string, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	now := c.now()
	// Opportunistic sweep: evict anything already expired.
	for k, e := range c.entries {
		if now.After(e.expiresAt) {
			delete(c.entries, k)
		}
	}
	c.entries[key] = entry{value: value, expiresAt: now.Add(ttl)}
}

// Get returns the value for key, or false if absent or expired.
func (c *Cache) Get(key string) (string, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if !ok {
		return "", false
	}
	if c.now().After(e.expiresAt) {
		delete(c.entries, key)
		return "", false
	}
	return e.value, true
}

// Delete removes key if present.
func (c *Cache) Delete(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Len reports the number of stored entries, counting ones that have
// expired but not yet been swept.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}
