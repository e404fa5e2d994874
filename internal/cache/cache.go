// Package cache provides an in-process TTL cache for live market data.
package cache

import (
	"context"
	"fmt"
	"hash/fnv"
	"sort"
	"strings"
	"sync"
	"time"
)

// Producer computes a value on a cache miss.
type Producer[V any] func(ctx context.Context) (V, error)

type entry[V any] struct {
	value     V
	expiresAt time.Time
}

// Stats is a snapshot of cache activity.
type Stats struct {
	Hits    int64 `json:"hits"`
	Misses  int64 `json:"misses"`
	Errors  int64 `json:"errors"`
	Entries int   `json:"entries"`
}

// Cache is a key/value store whose entries expire after a per-call TTL.
// The lock guards only the map: concurrent misses on one key each run the
// producer and the last result stored wins. Failed producers store nothing.
type Cache[V any] struct {
	mu      sync.Mutex
	entries map[string]entry[V]
	hits    int64
	misses  int64
	errors  int64
	now     func() time.Time
}

// New creates an empty cache.
func New[V any]() *Cache[V] {
	return &Cache[V]{
		entries: make(map[string]entry[V]),
		now:     time.Now,
	}
}

// SetClock replaces the time source, for tests.
func (c *Cache[V]) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Get returns a live entry. Expired entries are evicted and reported absent.
func (c *Cache[V]) Get(key string) (V, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lookup(key)
}

func (c *Cache[V]) lookup(key string) (V, bool) {
	e, ok := c.entries[key]
	if !ok {
		var zero V
		return zero, false
	}
	if !c.now().Before(e.expiresAt) {
		delete(c.entries, key)
		var zero V
		return zero, false
	}
	return e.value, true
}

// Set stores value for ttl. A non-positive ttl stores nothing.
func (c *Cache[V]) Set(key string, value V, ttl time.Duration) {
	if ttl <= 0 {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries[key] = entry[V]{value: value, expiresAt: c.now().Add(ttl)}
}

// GetOrCompute returns the cached value for key or runs produce and caches
// its result for ttl. The boolean reports whether the value came from cache.
func (c *Cache[V]) GetOrCompute(ctx context.Context, key string, ttl time.Duration, produce Producer[V]) (V, bool, error) {
	c.mu.Lock()
	if v, ok := c.lookup(key); ok {
		c.hits++
		c.mu.Unlock()
		return v, true, nil
	}
	c.misses++
	c.mu.Unlock()

	v, err := produce(ctx)
	if err != nil {
		c.mu.Lock()
		c.errors++
		c.mu.Unlock()
		var zero V
		return zero, false, err
	}

	c.Set(key, v, ttl)
	return v, false, nil
}

// Expire drops one key.
func (c *Cache[V]) Expire(key string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, key)
}

// Purge drops every entry. Counters are kept.
func (c *Cache[V]) Purge() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]entry[V])
}

// Stats returns hit, miss and error counts with the live entry count.
func (c *Cache[V]) Stats() Stats {
	c.mu.Lock()
	defer c.mu.Unlock()
	live := 0
	now := c.now()
	for _, e := range c.entries {
		if now.Before(e.expiresAt) {
			live++
		}
	}
	return Stats{Hits: c.hits, Misses: c.misses, Errors: c.errors, Entries: live}
}

// Key joins the parts that affect a result into a cache key.
func Key(parts ...string) string {
	return strings.Join(parts, "|")
}

// Signature condenses a set of identifiers into a short order-independent
// key part, for results that depend on a whole universe of symbols.
func Signature(items []string) string {
	sorted := append([]string(nil), items...)
	sort.Strings(sorted)
	h := fnv.New64a()
	for _, s := range sorted {
		h.Write([]byte(s))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%d:%x", len(sorted), h.Sum64())
}
