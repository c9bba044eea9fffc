package cache

import (
	"context"
	"errors"
	"time"

	"github.com/IvanBrykalov/shardttl/clock"
	"github.com/IvanBrykalov/shardttl/policy"
)

var (
	// ErrInvalidCapacity is returned by New when Capacity is not positive.
	ErrInvalidCapacity = errors.New("cache: capacity must be > 0")
	// ErrInvalidTTL is returned by New when TTL is negative.
	ErrInvalidTTL = errors.New("cache: ttl must be >= 0")
	// ErrNoLoader is returned by GetOrLoad when no Loader was configured in Options.
	ErrNoLoader = errors.New("cache: no Loader provided")
)

// EvictReason explains why an entry was removed by the cache itself.
// Explicit Remove and overwrites are not evictions.
type EvictReason int

const (
	// EvictCapacity: the inserting shard gave up its sampled victim to stay
	// within the total capacity.
	EvictCapacity EvictReason = iota
	// EvictOverflow: the inserting shard was empty, so a victim was taken
	// from another shard.
	EvictOverflow
)

// String returns a stable lowercase label.
func (r EvictReason) String() string {
	switch r {
	case EvictCapacity:
		return "capacity"
	case EvictOverflow:
		return "overflow"
	default:
		return "unknown"
	}
}

// Metrics exposes cache-level observability hooks.
// A NoopMetrics implementation is provided and used by default.
// Implementations must be safe for concurrent use; Evict is called under a
// shard lock.
type Metrics interface {
	Hit()
	// StaleHit reports a Get that found the key but its value was expired.
	StaleHit()
	Miss()
	Evict(reason EvictReason)
	// Size reports the number of resident entries after a mutation.
	Size(entries int)
}

// NoopMetrics is a drop-in Metrics implementation that does nothing.
type NoopMetrics struct{}

func (NoopMetrics) Hit()              {}
func (NoopMetrics) StaleHit()         {}
func (NoopMetrics) Miss()             {}
func (NoopMetrics) Evict(EvictReason) {}
func (NoopMetrics) Size(int)          {}

var _ Metrics = NoopMetrics{}

// Options configures the cache. Zero values are safe except Capacity;
// defaults are applied in New():
//   - Shards <= 0  => auto (≈ 2*GOMAXPROCS, power of two, at most Capacity)
//   - nil Policy   => random sampling of policy.DefaultSampleSize slots
//   - nil Clock    => clock.NewSystem()
//   - nil Hasher   => xxhash for strings, splitmix for integers, maphash otherwise
//   - nil Metrics  => NoopMetrics
type Options[K comparable, V any] struct {
	// Capacity is the hard limit on resident entries across all shards.
	Capacity int

	// TTL is the age after which an entry reports IsExpired. Zero makes every
	// entry stale as soon as it is written. Expired entries are not removed
	// proactively; see the package doc.
	TTL time.Duration

	// Shards defines the number of shards, rounded up to a power of two.
	Shards int

	// Policy picks eviction victims inside a shard.
	Policy policy.Policy

	// Clock is the time source for insertion stamps and staleness checks.
	// clock.Coarse trades read cost for a tolerance counted in calls, not
	// time: on an idle cache its readings can lag arbitrarily.
	Clock clock.Clock

	// Hasher maps a key to a 64-bit hash used for shard routing.
	// It must be deterministic for the lifetime of the cache.
	Hasher func(K) uint64

	// Loader fetches a value on cache miss. Used by GetOrLoad.
	Loader func(ctx context.Context, k K) (V, error)

	// OnEvict is called on eviction under the shard lock; keep callbacks
	// lightweight and do not call back into the cache.
	OnEvict func(k K, v V, reason EvictReason)

	Metrics Metrics
}
