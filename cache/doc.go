// Package cache provides a sharded LRU cache bounded by the total cost of
// its entries.
//
// Entries are spread over 16 shards, each with its own lock and LRU list,
// to reduce contention. The cost budget is global: when an insertion pushes
// the total over budget, the least recently used entries of the other
// shards are evicted first, then those of the inserting shard. Recency is
// therefore exact within a shard and approximate across shards.
//
//	c := cache.NewSharded[uint64, []byte](64<<20, cache.Uint64Hasher,
//		func(b []byte) int64 { return int64(len(b)) })
//	c.Set(42, data)
//	data, ok := c.Get(42)
//
// # Thread Safety
//
// All methods are safe for concurrent use. Values are stored as is; callers
// must not modify a value after caching it.
package cache
