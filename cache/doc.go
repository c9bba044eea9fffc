// Package cache provides a fast, generic, sharded in-memory cache bounded by
// entry count and tagged with a time-to-live, trading exact eviction timing
// for throughput.
//
// Design
//
//   - Concurrency: the cache is split into shards, each guarded by its own
//     sync.RWMutex. Reads take the read lock only. There are no background goroutines: all work runs
//     inside Insert/Get/Remove.
//
//   - Storage: each shard keeps a dense slice of entries plus a map from key
//     to slot. Removal swaps the last slot into the hole, so all operations
//     are O(1) expected.
//
//   - Capacity: the total entry count never exceeds Options.Capacity. A new
//     key that would exceed it evicts one entry chosen by sampling: the
//     policy inspects a handful of slots and evicts the oldest write among
//     them (approximate LRU by write time, see package policy). If the
//     inserting shard is empty the victim comes from another shard.
//
//   - TTL: expiration is lazy and advisory. Get returns stale values as well
//     and View.IsExpired tells the caller. Expired entries are not deleted on
//     read; they leave through overwrite, Remove, or capacity pressure, where
//     their old timestamps make them the preferred victims.
//
//   - Clock: timestamps come from the monotonic clock on every operation.
//     clock.NewCoarse amortizes reads across calls for hot paths that
//     tolerate call-bounded staleness; clock.NewManual serves tests.
//
//   - GetOrLoad: coalesces concurrent loads of an absent key using
//     singleflight. If Loader is nil, GetOrLoad returns ErrNoLoader.
//
//   - Metrics: Options.Metrics receives Hit/StaleHit/Miss/Evict/Size signals.
//     By default NoopMetrics is used; plug metrics/prom to export them.
//
// Basic usage
//
//	c := cache.MustNew[string, []byte](cache.Options[string, []byte]{
//	    Capacity: 10_000,
//	    TTL:      30 * time.Second,
//	})
//	c.Insert("a", []byte("1"))
//	if v, ok := c.Get("a"); ok && !v.IsExpired() {
//	    _ = v.Value() // fresh
//	}
//	c.Remove("a")
//
// Serving stale values
//
//	v, ok := c.Get(key)
//	switch {
//	case !ok:
//	    // miss: fetch and Insert
//	case v.IsExpired():
//	    // stale: serve v.Value() and refresh in the background, or refetch
//	default:
//	    // fresh
//	}
//
// Thread-safety & complexity
//
// All methods on Cache are safe for concurrent use. Insert, Get and Remove
// cost one map access under a shard lock; eviction adds O(sample size)
// timestamp comparisons. Len and Stats visit every shard.
package cache
