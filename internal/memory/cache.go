package memory

import (
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

type entry[V any] struct {
	value    V
	storedAt time.Time
}

// Cache holds lookup results in memory, keyed by domain, for a fixed TTL
type Cache[V any] struct {
	name    string
	ttl     time.Duration
	entries map[string]entry[V]
	hits    int
	misses  int
	now     func() time.Time
	mu      sync.RWMutex
}

// NewCache creates a cache; a non-positive ttl disables storage entirely
func NewCache[V any](name string, ttl time.Duration) *Cache[V] {
	return &Cache[V]{
		name:    name,
		ttl:     ttl,
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// Enabled reports whether the cache stores anything
func (c *Cache[V]) Enabled() bool {
	return c != nil && c.ttl > 0
}

// Get returns the cached value for a domain if present and not expired
func (c *Cache[V]) Get(domain string) (V, bool) {
	var zero V
	if !c.Enabled() {
		return zero, false
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	e, exists := c.entries[domain]
	if !exists {
		c.misses++
		return zero, false
	}

	if c.now().Sub(e.storedAt) >= c.ttl {
		delete(c.entries, domain)
		c.misses++
		return zero, false
	}

	c.hits++
	return e.value, true
}

// Put stores a value for a domain
func (c *Cache[V]) Put(domain string, value V) {
	if !c.Enabled() {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[domain] = entry[V]{value: value, storedAt: c.now()}
}

// GetStats returns entry count, hits and misses
func (c *Cache[V]) GetStats() (size, hits, misses int) {
	if c == nil {
		return 0, 0, 0
	}
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries), c.hits, c.misses
}

// Prune drops expired entries and returns how many were removed
func (c *Cache[V]) Prune() int {
	if !c.Enabled() {
		return 0
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	removed := 0
	now := c.now()
	for domain, e := range c.entries {
		if now.Sub(e.storedAt) >= c.ttl {
			delete(c.entries, domain)
			removed++
		}
	}

	if removed > 0 {
		logrus.Debugf("Cache %s: pruned %d expired entries, %d remain", c.name, removed, len(c.entries))
	}
	return removed
}

// SetClock replaces the time source (used by tests)
func (c *Cache[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}
