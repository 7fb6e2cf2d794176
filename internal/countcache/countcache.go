// Package countcache caches per-user unread notification counts. Entries
// are populated lazily on read and cleared by explicit invalidation, never
// by TTL.
package countcache

import (
	"context"
	"sync"

	"usernotify/internal/metrics"
)

// CountFunc computes the authoritative unread count for one user.
type CountFunc func(ctx context.Context, userID int64) (int64, error)

type entry struct {
	value int64
	valid bool
	// gen is bumped by Invalidate. A recompute only stores its result if
	// the generation is unchanged, so an invalidation racing an in-flight
	// recompute is never lost: the stale result is discarded and the next
	// read recomputes.
	gen uint64
}

type shard struct {
	mu      sync.Mutex
	entries map[int64]*entry
}

// Cache is sharded by user ID; no global lock is held across a recompute.
type Cache struct {
	count  CountFunc
	shards []*shard
}

func New(count CountFunc, shardCount int) *Cache {
	if shardCount <= 0 {
		shardCount = 32
	}
	shards := make([]*shard, shardCount)
	for i := range shards {
		shards[i] = &shard{entries: make(map[int64]*entry)}
	}
	return &Cache{count: count, shards: shards}
}

func (c *Cache) shardFor(userID int64) *shard {
	return c.shards[uint64(userID)%uint64(len(c.shards))]
}

// Get returns the cached count, recomputing on miss. A recompute that
// started before a concurrent Invalidate may return a stale value once; the
// invalidation itself is never lost.
func (c *Cache) Get(ctx context.Context, userID int64) (int64, error) {
	s := c.shardFor(userID)

	s.mu.Lock()
	e, ok := s.entries[userID]
	if !ok {
		e = &entry{}
		s.entries[userID] = e
	}
	if e.valid {
		value := e.value
		s.mu.Unlock()
		metrics.CountCacheHits.Inc()
		return value, nil
	}
	gen := e.gen
	s.mu.Unlock()

	metrics.CountCacheMisses.Inc()
	value, err := c.count(ctx, userID)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	if e2, ok := s.entries[userID]; ok && e2.gen == gen {
		e2.value = value
		e2.valid = true
	}
	s.mu.Unlock()

	return value, nil
}

// Invalidate clears the user's cached value; the next Get recomputes.
func (c *Cache) Invalidate(userID int64) {
	s := c.shardFor(userID)
	s.mu.Lock()
	e, ok := s.entries[userID]
	if !ok {
		e = &entry{}
		s.entries[userID] = e
	}
	e.gen++
	e.valid = false
	s.mu.Unlock()
}

// InvalidateAll clears the cached value of every given user.
func (c *Cache) InvalidateAll(userIDs []int64) {
	for _, userID := range userIDs {
		c.Invalidate(userID)
	}
}
