package cache

import (
	"sync"
	"sync/atomic"
)

const shardCount = 16

// Hasher maps a key to a shard index. Use StringHasher or IntHasher for the
// common key types, or supply your own for a custom K.
type Hasher[K comparable] func(key K) uint64

// StringHasher is an FNV-1a hash suitable for sharding string keys.
func StringHasher(s string) uint64 {
	var h uint64 = 14695981039346656037
	for i := 0; i < len(s); i++ {
		h ^= uint64(s[i])
		h *= 1099511628211
	}
	return h
}

// IntHasher applies the splitmix64 finalizer to spread small or sequential
// integer keys evenly across shards.
func IntHasher(i int) uint64 {
	u := uint64(i) //nolint:gosec // hash mixing, not a security boundary
	u = (u ^ (u >> 30)) * 0xbf58476d1ce4e5b9
	u = (u ^ (u >> 27)) * 0x94d049bb133111eb
	u ^= u >> 31
	return u
}

// Uint64Hasher applies the splitmix64 finalizer directly to a uint64 key.
func Uint64Hasher(u uint64) uint64 {
	u = (u ^ (u >> 30)) * 0xbf58476d1ce4e5b9
	u = (u ^ (u >> 27)) * 0x94d049bb133111eb
	u ^= u >> 31
	return u
}

type shardEntry[K comparable, V any] struct {
	value V
	node  *lruNode[K]
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*shardEntry[K, V]
	order   *lruList[K]
	limit   int
}

// ShardedCache is a high-concurrency LRU cache split into fixed shards to
// reduce lock contention under heavy parallel access. Unlike Cache, which
// evicts by a coarse access-tick comparison, each shard keeps exact
// recency order via lruList, so eviction always drops the true least
// recently used entry within that shard.
//
// Capacity is per-shard: NewSharded(perShardLimit, ...) holds up to
// perShardLimit entries per shard, shardCount shards total.
type ShardedCache[K comparable, V any] struct {
	shards [shardCount]*shard[K, V]
	hash   Hasher[K]

	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
}

// NewSharded creates a sharded cache with the given per-shard soft limit.
func NewSharded[K comparable, V any](perShardLimit int, hash Hasher[K]) *ShardedCache[K, V] {
	c := &ShardedCache[K, V]{hash: hash}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{
			entries: make(map[K]*shardEntry[K, V]),
			order:   newLRUList[K](),
			limit:   perShardLimit,
		}
	}
	return c
}

func (c *ShardedCache[K, V]) shardFor(key K) *shard[K, V] {
	return c.shards[c.hash(key)%shardCount]
}

// Get retrieves a value, promoting it to most-recently-used on hit.
func (c *ShardedCache[K, V]) Get(key K) (V, bool) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.order.MoveToFront(e.node)
	c.hits.Add(1)
	return e.value, true
}

// Set stores a value, evicting the shard's least recently used entry if
// the per-shard limit is exceeded.
func (c *ShardedCache[K, V]) Set(key K, value V) {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()
	c.setLocked(s, key, value)
}

// GetOrCreate returns the cached value for key, calling create and storing
// its result under the shard lock if absent.
func (c *ShardedCache[K, V]) GetOrCreate(key K, create func() V) V {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	if e, ok := s.entries[key]; ok {
		s.order.MoveToFront(e.node)
		c.hits.Add(1)
		return e.value
	}
	c.misses.Add(1)
	value := create()
	c.setLocked(s, key, value)
	return value
}

func (c *ShardedCache[K, V]) setLocked(s *shard[K, V], key K, value V) {
	if e, ok := s.entries[key]; ok {
		e.value = value
		s.order.MoveToFront(e.node)
		return
	}
	node := s.order.PushFront(key)
	s.entries[key] = &shardEntry[K, V]{value: value, node: node}
	if s.limit > 0 && s.order.Len() > s.limit {
		if oldest, ok := s.order.RemoveOldest(); ok {
			delete(s.entries, oldest)
			c.evictions.Add(1)
		}
	}
}

// Delete removes an entry, reporting whether it was present.
func (c *ShardedCache[K, V]) Delete(key K) bool {
	s := c.shardFor(key)
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.order.Remove(e.node)
	delete(s.entries, key)
	return true
}

// Len returns the total number of entries across all shards.
func (c *ShardedCache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Stats returns aggregate hit/miss/eviction counters and capacity info.
func (c *ShardedCache[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()
	var rate float64
	if total := hits + misses; total > 0 {
		rate = float64(hits) / float64(total)
	}
	totalCap := 0
	for _, s := range c.shards {
		totalCap += s.limit
	}
	return Stats{
		Len:           c.Len(),
		Capacity:      c.shards[0].limit,
		TotalCapacity: totalCap,
		Hits:          hits,
		Misses:        misses,
		HitRate:       rate,
		Evictions:     c.evictions.Load(),
	}
}
