// Package policy defines how a shard picks an eviction victim.
//
// Shards keep their entries in a dense slice and never record anything on
// reads, so policies work from insertion timestamps alone: they inspect a
// small sample of slots and return the oldest one. This bounds eviction to
// O(sample size) regardless of shard size, at the price of sometimes evicting
// an entry that is not the globally oldest.
package policy

// Table is a read-only view of a shard's dense entry slice.
//
// Concurrency: a Table is only valid while the shard lock is held, which is
// the case for every call into a ShardPolicy.
type Table interface {
	// Len returns the number of resident entries (slots 0..Len()-1).
	Len() int
	// WrittenAt returns the insertion/refresh time of slot i in UnixNano.
	WrittenAt(i int) int64
}

// ShardPolicy is a per-shard eviction policy instance.
type ShardPolicy interface {
	// Victim returns the slot to evict, or -1 if the table is empty.
	Victim(t Table) int
}

// Policy is a factory that creates shard-local policy instances.
type Policy interface {
	New() ShardPolicy
}

// DefaultSampleSize is used when a policy is constructed with a
// non-positive sample size.
const DefaultSampleSize = 5

// Oldest scans every slot and returns the one with the smallest timestamp.
// It is the exact fallback used by sampling policies on small tables.
func Oldest(t Table) int {
	best := -1
	var bestAt int64
	for i, n := 0, t.Len(); i < n; i++ {
		if at := t.WrittenAt(i); best < 0 || at < bestAt {
			best, bestAt = i, at
		}
	}
	return best
}
