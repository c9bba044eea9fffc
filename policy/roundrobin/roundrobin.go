// Package roundrobin implements sampled eviction over a rotating window.
package roundrobin

import "github.com/IvanBrykalov/shardttl/policy"

type rrPolicy struct{ n int }

// New returns a Policy that inspects sampleSize consecutive slots starting at
// a per-shard cursor, evicts the oldest of them and advances the cursor past
// the window. sampleSize <= 0 selects policy.DefaultSampleSize.
//
// Compared to random sampling it needs no RNG and every slot is visited once
// per Len()/sampleSize evictions, but the window follows slot order, which
// shifts as swap-removals move entries around.
func New(sampleSize int) policy.Policy {
	if sampleSize <= 0 {
		sampleSize = policy.DefaultSampleSize
	}
	return rrPolicy{n: sampleSize}
}

func (p rrPolicy) New() policy.ShardPolicy { return &window{n: p.n} }

// window is mutated under the owning shard's lock only.
type window struct {
	n      int
	cursor int
}

func (w *window) Victim(t policy.Table) int {
	size := t.Len()
	if size <= w.n {
		return policy.Oldest(t)
	}
	start := w.cursor % size
	best := -1
	var bestAt int64
	for i := 0; i < w.n; i++ {
		j := (start + i) % size
		if at := t.WrittenAt(j); best < 0 || at < bestAt {
			best, bestAt = j, at
		}
	}
	w.cursor = (start + w.n) % size
	return best
}
