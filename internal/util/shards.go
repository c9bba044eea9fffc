package util

import "runtime"

// MaxShards caps the automatic shard count.
const MaxShards = 256

// ReasonableShardCount picks a practical default shard count based on CPU
// parallelism. Heuristic: nextPow2(2*GOMAXPROCS), clamped to [1..MaxShards].
func ReasonableShardCount() int {
	p := runtime.GOMAXPROCS(0)
	if p < 1 {
		p = 1
	}
	n := int(NextPow2(uint64(p * 2)))
	if n > MaxShards {
		n = MaxShards
	}
	return n
}

// ShardCount normalizes a requested shard count: non-positive picks
// ReasonableShardCount, the result is rounded up to a power of two and then
// capped at the largest power of two not above capacity, so a cache never
// has more shards than entries.
func ShardCount(requested, capacity int) int {
	n := requested
	if n <= 0 {
		n = ReasonableShardCount()
	}
	n = int(NextPow2(uint64(n)))
	if capacity < 1 {
		return 1
	}
	if limit := int(PrevPow2(uint64(capacity))); n > limit {
		n = limit
	}
	return n
}

// ShardIndex maps a 64-bit hash to a shard index.
// Assumes shard count is a power of two for the fast mask path,
// but remains correct for arbitrary shard counts (uses modulo).
func ShardIndex(hash uint64, shards int) int {
	if shards <= 1 {
		return 0
	}
	if IsPowerOfTwo(uint64(shards)) {
		return int(hash & uint64(shards-1))
	}
	return int(hash % uint64(shards))
}
