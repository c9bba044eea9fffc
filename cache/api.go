package cache

import "context"

// Cache is a sharded, in-memory key/value cache bounded by entry count and
// tagged with a time-to-live. All methods are safe for concurrent use by
// multiple goroutines.
//
// Expiration is advisory: Get returns stale values too and lets the caller
// decide through View.IsExpired. Entries leave the cache only through
// Remove, overwrite, or capacity eviction.
type Cache[K comparable, V any] interface {
	// Insert stores k→v stamped with the current time. An existing value is
	// replaced unconditionally and its timestamp refreshed. Inserting a new
	// key into a full cache evicts one sampled entry first.
	Insert(k K, v V)

	// Get returns a view of the value for k and whether k is resident.
	// The view is returned even when the value is expired.
	Get(k K) (View[V], bool)

	// Remove deletes k if present and returns a view of the removed value.
	Remove(k K) (View[V], bool)

	// GetOrLoad returns the view for k, loading it via Options.Loader when
	// k is absent. A stale resident value is returned as is, not reloaded.
	// Concurrent loads for the same key are coalesced; an Insert racing a
	// load may be overwritten by it. Returns ErrNoLoader without a Loader.
	GetOrLoad(ctx context.Context, k K) (View[V], error)

	// Len returns the number of resident entries, including expired ones.
	// Under concurrent mutation the result is approximate: shards are
	// counted one at a time.
	Len() int

	// Capacity returns the configured total capacity.
	Capacity() int

	// Stats returns cumulative counters. Like Len, it is not an atomic
	// snapshot across shards.
	Stats() Stats
}

// Stats holds cumulative cache counters.
type Stats struct {
	Hits      uint64 // Get found a fresh value
	StaleHits uint64 // Get found an expired value
	Misses    uint64 // Get found nothing
	Evictions uint64 // entries removed to respect capacity

	// SharedLoads counts GetOrLoad calls whose load result was handed to
	// more than one caller.
	SharedLoads uint64
}
