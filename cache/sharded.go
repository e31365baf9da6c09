package cache

import (
	"hash/fnv"
	"sync"
	"sync/atomic"
)

const (
	// DefaultShardCount is the number of shards. It must be a power of 2.
	DefaultShardCount = 16

	shardMask = DefaultShardCount - 1
)

// Hasher computes the hash used for shard selection.
type Hasher[K any] func(K) uint64

// Coster returns the cost of a value, usually its size in bytes.
type Coster[V any] func(V) int64

// StringHasher computes the FNV-1a hash of a string key.
func StringHasher(s string) uint64 {
	h := fnv.New64a()
	_, _ = h.Write([]byte(s)) // fnv.Write never returns an error
	return h.Sum64()
}

// Uint64Hasher returns the key itself.
func Uint64Hasher(u uint64) uint64 {
	return u
}

// Stats is a snapshot of cache counters.
type Stats struct {
	// Len is the current number of entries.
	Len int
	// Cost is the summed cost of the cached entries.
	Cost int64
	// Budget is the cost limit; 0 means unlimited.
	Budget int64

	Hits      uint64
	Misses    uint64
	Evictions uint64

	// Rejected counts values that were too expensive to cache at all.
	Rejected uint64

	// HitRate is Hits / (Hits + Misses), 0 when nothing was looked up.
	HitRate float64
}

// ShardedCache is a thread-safe, sharded, cost-bounded LRU cache.
type ShardedCache[K comparable, V any] struct {
	shards [DefaultShardCount]*shard[K, V]
	hasher Hasher[K]
	coster Coster[V]
	budget int64

	cost      atomic.Int64
	hits      atomic.Uint64
	misses    atomic.Uint64
	evictions atomic.Uint64
	rejected  atomic.Uint64
}

type shard[K comparable, V any] struct {
	mu      sync.Mutex
	entries map[K]*entry[K, V]
	lru     lruList[K]
}

type entry[K comparable, V any] struct {
	value V
	cost  int64
	node  *lruNode[K]
}

// NewSharded creates a cache whose entries may cost at most budget in total.
// A budget <= 0 means unlimited. A nil coster gives every entry cost 1, which
// turns the budget into an entry count.
func NewSharded[K comparable, V any](budget int64, hasher Hasher[K], coster Coster[V]) *ShardedCache[K, V] {
	if coster == nil {
		coster = func(V) int64 { return 1 }
	}

	c := &ShardedCache[K, V]{
		hasher: hasher,
		coster: coster,
		budget: max(budget, 0),
	}
	for i := range c.shards {
		c.shards[i] = &shard[K, V]{entries: make(map[K]*entry[K, V])}
	}
	return c
}

func (c *ShardedCache[K, V]) shardIndex(key K) int {
	return int(c.hasher(key) & shardMask)
}

// Get returns the cached value for key and marks it as recently used.
func (c *ShardedCache[K, V]) Get(key K) (V, bool) {
	s := c.shards[c.shardIndex(key)]

	s.mu.Lock()
	e, ok := s.entries[key]
	if !ok {
		s.mu.Unlock()
		c.misses.Add(1)
		var zero V
		return zero, false
	}
	s.lru.MoveToFront(e.node)
	value := e.value
	s.mu.Unlock()

	c.hits.Add(1)
	return value, true
}

// Set stores value under key and evicts old entries until the cache is back
// within budget. A value costing more than the whole budget is not cached
// and Set returns false; any previous value for key is dropped in that case.
func (c *ShardedCache[K, V]) Set(key K, value V) bool {
	cost := c.coster(value)
	idx := c.shardIndex(key)
	s := c.shards[idx]

	if c.budget > 0 && cost > c.budget {
		c.rejected.Add(1)
		c.Delete(key)
		return false
	}

	s.mu.Lock()
	if e, ok := s.entries[key]; ok {
		c.cost.Add(cost - e.cost)
		e.value = value
		e.cost = cost
		s.lru.MoveToFront(e.node)
	} else {
		s.entries[key] = &entry[K, V]{
			value: value,
			cost:  cost,
			node:  s.lru.PushFront(key),
		}
		c.cost.Add(cost)
	}
	s.mu.Unlock()

	c.evict(idx)
	return true
}

// evict removes least recently used entries until the total cost fits the
// budget. It visits the other shards before the shard at idx so that the
// entry just inserted there goes last. Only one shard lock is held at a
// time.
func (c *ShardedCache[K, V]) evict(idx int) {
	if c.budget <= 0 {
		return
	}
	for i := 1; i <= DefaultShardCount && c.cost.Load() > c.budget; {
		s := c.shards[(idx+i)&shardMask]

		s.mu.Lock()
		key, ok := s.lru.RemoveOldest()
		if ok {
			c.cost.Add(-s.entries[key].cost)
			delete(s.entries, key)
		}
		s.mu.Unlock()

		if ok {
			c.evictions.Add(1)
		} else {
			i++
		}
	}
}

// Delete removes key and reports whether it was present.
func (c *ShardedCache[K, V]) Delete(key K) bool {
	s := c.shards[c.shardIndex(key)]

	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key]
	if !ok {
		return false
	}
	s.lru.Remove(e.node)
	delete(s.entries, key)
	c.cost.Add(-e.cost)
	return true
}

// Clear removes all entries. Counters are kept.
func (c *ShardedCache[K, V]) Clear() {
	for _, s := range c.shards {
		s.mu.Lock()
		for _, e := range s.entries {
			c.cost.Add(-e.cost)
		}
		s.entries = make(map[K]*entry[K, V])
		s.lru.Clear()
		s.mu.Unlock()
	}
}

// Len returns the number of entries across all shards.
func (c *ShardedCache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		s.mu.Lock()
		total += len(s.entries)
		s.mu.Unlock()
	}
	return total
}

// Cost returns the summed cost of the cached entries.
func (c *ShardedCache[K, V]) Cost() int64 {
	return c.cost.Load()
}

// Budget returns the cost limit, 0 when unlimited.
func (c *ShardedCache[K, V]) Budget() int64 {
	return c.budget
}

// ShardLen returns the number of entries in each shard.
func (c *ShardedCache[K, V]) ShardLen() [DefaultShardCount]int {
	var lens [DefaultShardCount]int
	for i, s := range c.shards {
		s.mu.Lock()
		lens[i] = len(s.entries)
		s.mu.Unlock()
	}
	return lens
}

// Stats returns a snapshot of the counters.
func (c *ShardedCache[K, V]) Stats() Stats {
	hits := c.hits.Load()
	misses := c.misses.Load()

	var hitRate float64
	if total := hits + misses; total > 0 {
		hitRate = float64(hits) / float64(total)
	}

	return Stats{
		Len:       c.Len(),
		Cost:      c.cost.Load(),
		Budget:    c.budget,
		Hits:      hits,
		Misses:    misses,
		Evictions: c.evictions.Load(),
		Rejected:  c.rejected.Load(),
		HitRate:   hitRate,
	}
}

// ResetStats zeroes the hit, miss, eviction and rejection counters.
func (c *ShardedCache[K, V]) ResetStats() {
	c.hits.Store(0)
	c.misses.Store(0)
	c.evictions.Store(0)
	c.rejected.Store(0)
}
