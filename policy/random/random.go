// Package random implements sampled eviction with uniformly random slots.
package random

import (
	"math/rand/v2"

	"github.com/IvanBrykalov/shardttl/policy"
)

type randomPolicy struct{ n int }

// New returns a Policy that draws sampleSize random slots and evicts the
// oldest of them. Tables no larger than the sample are scanned exactly.
// sampleSize <= 0 selects policy.DefaultSampleSize.
func New(sampleSize int) policy.Policy {
	if sampleSize <= 0 {
		sampleSize = policy.DefaultSampleSize
	}
	return randomPolicy{n: sampleSize}
}

// New implements policy.Policy. The instance is stateless, so all shards
// could share one; a fresh value keeps the contract uniform.
func (p randomPolicy) New() policy.ShardPolicy { return &sampler{n: p.n} }

type sampler struct{ n int }

// Victim draws with replacement; duplicates only shrink the effective sample.
func (s *sampler) Victim(t policy.Table) int {
	size := t.Len()
	if size <= s.n {
		return policy.Oldest(t)
	}
	best := -1
	var bestAt int64
	for i := 0; i < s.n; i++ {
		//nolint:gosec // non-crypto randomness is fine for eviction sampling
		j := rand.IntN(size)
		if at := t.WrittenAt(j); best < 0 || at < bestAt {
			best, bestAt = j, at
		}
	}
	return best
}
