// Package cache memoizes evaluation results so repeated expressions skip
// the engine. Entries are keyed by an xxhash of the expression text,
// expire after a TTL and are bounded in number.
package cache

import (
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/codefionn/rechenwerk/internal/engine"
)

// DefaultTTL is how long entries stay fresh when no TTL is configured.
const DefaultTTL = 5 * time.Minute

// DefaultMaxEntries bounds the cache when no size is configured.
const DefaultMaxEntries = 100

type entry struct {
	expression string
	result     engine.Result
	addedAt    time.Time
}

// Cache is a TTL-bounded memo of evaluation results, safe for concurrent
// use.
type Cache struct {
	mu         sync.RWMutex
	entries    map[uint64]entry
	ttl        time.Duration
	maxEntries int
}

// New returns a Cache holding at most maxEntries results for ttl each.
// Non-positive arguments fall back to the defaults.
func New(ttl time.Duration, maxEntries int) *Cache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if maxEntries < 1 {
		maxEntries = DefaultMaxEntries
	}
	return &Cache{
		entries:    make(map[uint64]entry),
		ttl:        ttl,
		maxEntries: maxEntries,
	}
}

// Get returns the cached result for expr if present and fresh.
func (c *Cache) Get(expr string) (engine.Result, bool) {
	key := xxhash.Sum64String(expr)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	// The stored expression guards against a hash collision.
	if !ok || e.expression != expr {
		return engine.Result{}, false
	}
	if time.Since(e.addedAt) > c.ttl {
		return engine.Result{}, false
	}
	return e.result, true
}

// Put stores the result for expr, evicting expired entries and, if still
// at capacity, the oldest one.
func (c *Cache) Put(expr string, res engine.Result) {
	key := xxhash.Sum64String(expr)

	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.maxEntries {
		c.evictLocked()
	}
	c.entries[key] = entry{expression: expr, result: res, addedAt: time.Now()}
}

// Purge empties the cache.
func (c *Cache) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[uint64]entry)
}

// Len returns the number of cached entries, counting expired ones not yet
// evicted.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

// evictLocked drops expired entries, or the oldest entry when none have
// expired. Callers hold the write lock.
func (c *Cache) evictLocked() {
	now := time.Now()
	for k, e := range c.entries {
		if now.Sub(e.addedAt) > c.ttl {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxEntries {
		return
	}

	var oldestKey uint64
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.addedAt.Before(oldestAt) {
			oldestKey = k
			oldestAt = e.addedAt
			first = false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
	}
}
