// Package cache memoizes resolved (message, args, locale, isolating) →
// (string, errors) lookups behind a FIFO-eviction, stat-counting map,
// generalized from the teacher's single-entry-clear validator cache
// (core/types/validation_cache.go) into ordered eviction with hit/miss/
// eviction counters.
package cache

import (
	"sync"

	"github.com/resoltico/FTLLexEngine-sub005/diag"
)

// DefaultMaxSize matches spec.md's "on the order of 500-2000" guidance.
const DefaultMaxSize = 1000

// Entry is a memoized resolution result.
type Entry struct {
	Value  string
	Errors []diag.FluentError
}

// Stats is a snapshot of a Cache's lifetime counters. Flushing (Clear) does
// not reset these.
type Stats struct {
	Size               int
	MaxSize            int
	Hits               int64
	Misses             int64
	UnhashableSkips    int64
	CorpusEntriesAdded int64
	CorpusEvictions    int64
}

// HitRate returns Hits/(Hits+Misses) rounded to two decimals, or 0 if
// there have been no lookups yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	rate := float64(s.Hits) / float64(total)
	return float64(int(rate*100+0.5)) / 100
}

// Option configures a Cache at construction.
type Option func(*Cache)

// WithMaxSize overrides DefaultMaxSize. Values below 1 are clamped to 1.
func WithMaxSize(n int) Option {
	return func(c *Cache) {
		if n < 1 {
			n = 1
		}
		c.maxSize = n
	}
}

// Cache is a bounded FIFO memoization table guarded by its own RWMutex —
// independent of rwlock.RWMutex, since Cache has no reentrancy or
// downgrade requirement; a plain sync.RWMutex is the grounded choice here,
// matching the teacher's validatorCache.
type Cache struct {
	mu      sync.RWMutex
	maxSize int
	entries map[string]Entry
	order   []string // FIFO insertion order, oldest first
	stats   Stats
}

// New constructs an empty Cache.
func New(opts ...Option) *Cache {
	c := &Cache{
		maxSize: DefaultMaxSize,
		entries: make(map[string]Entry),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Get looks up key, recording a hit or miss.
func (c *Cache) Get(key string) (Entry, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e, ok := c.entries[key]
	if ok {
		c.stats.Hits++
	} else {
		c.stats.Misses++
	}
	return e, ok
}

// Put inserts key → entry. If key already exists the entry is overwritten
// in place and its insertion order is left unchanged (idempotent merge:
// whichever caller's computation "wins" is acceptable, per spec.md §5).
// If the cache is full and key is new, the oldest entry is evicted first.
func (c *Cache) Put(key string, entry Entry) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, exists := c.entries[key]; exists {
		c.entries[key] = entry
		return
	}

	if len(c.entries) >= c.maxSize {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
		c.stats.CorpusEvictions++
	}

	c.entries[key] = entry
	c.order = append(c.order, key)
	c.stats.CorpusEntriesAdded++
}

// RecordUnhashable increments the unhashable-skip counter for a call whose
// arguments failed canonicalization and therefore bypassed the cache.
func (c *Cache) RecordUnhashable() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stats.UnhashableSkips++
}

// Clear empties the cache without resetting hit/miss/eviction counters,
// matching spec.md's invalidation contract (add_resource, add_function,
// explicit clear_cache all flush the table, never the stats).
func (c *Cache) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = make(map[string]Entry)
	c.order = nil
}

// Stats returns a snapshot of the cache's current size and lifetime
// counters.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	s := c.stats
	s.Size = len(c.entries)
	s.MaxSize = c.maxSize
	return s
}
