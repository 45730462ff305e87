// Package cache holds the three write-through, in-memory lookup caches
// (verbs, conjugations, API keys) that sit in front of internal/store.
// Every mutation originates from a storage-layer commit; workers never infer
// cache state on their own.
package cache

import "sync"

// Stats reports cache effectiveness since creation.
type Stats struct {
	Entries int
	Hits    int64
	Misses  int64
}

// HitRate is 0 when there have been no lookups yet.
func (s Stats) HitRate() float64 {
	total := s.Hits + s.Misses
	if total == 0 {
		return 0
	}
	return float64(s.Hits) / float64(total)
}

// counter is embedded by each cache to track hits/misses under its own lock.
type counter struct {
	mu     sync.Mutex
	hits   int64
	misses int64
}

func (c *counter) hit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
}

func (c *counter) miss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
}

func (c *counter) snapshot() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
