package cache

import (
	"context"
	"fmt"
	"math/rand/v2"
	"time"

	"github.com/IvanBrykalov/shardttl/clock"
	"github.com/IvanBrykalov/shardttl/internal/singleflight"
	"github.com/IvanBrykalov/shardttl/internal/util"
	"github.com/IvanBrykalov/shardttl/policy/random"
)

// budget tracks resident entries against the total capacity.
// It is the only state shared between shards.
type budget struct {
	live  util.PaddedAtomicInt64
	limit int64
}

// charge reserves one slot and reports whether the limit is now exceeded.
func (b *budget) charge() bool { return b.live.Add(1) > b.limit }

func (b *budget) refund() { b.live.Add(-1) }

func (b *budget) over() bool { return b.live.Load() > b.limit }

func (b *budget) count() int { return int(b.live.Load()) }

// cache is the sharded implementation of Cache.
type cache[K comparable, V any] struct {
	shards []*shard[K, V]
	hash   func(K) uint64
	clk    clock.Clock
	ttl    time.Duration
	live   budget

	opt Options[K, V]

	// singleflight group for coalescing concurrent loads in GetOrLoad.
	sf singleflight.Group[K, View[V]]
}

// New constructs a cache with the provided Options.
// It returns ErrInvalidCapacity or ErrInvalidTTL on misuse; see Options for
// the defaults applied to zero-valued fields.
func New[K comparable, V any](opt Options[K, V]) (Cache[K, V], error) {
	if opt.Capacity <= 0 {
		return nil, fmt.Errorf("%w: got %d", ErrInvalidCapacity, opt.Capacity)
	}
	if opt.TTL < 0 {
		return nil, fmt.Errorf("%w: got %v", ErrInvalidTTL, opt.TTL)
	}
	if opt.Metrics == nil {
		opt.Metrics = NoopMetrics{}
	}
	if opt.Policy == nil {
		opt.Policy = random.New(0)
	}
	if opt.Clock == nil {
		opt.Clock = clock.NewSystem()
	}
	if opt.Hasher == nil {
		opt.Hasher = util.NewHasher[K]()
	}

	n := util.ShardCount(opt.Shards, opt.Capacity)
	opt.Shards = n

	c := &cache[K, V]{
		shards: make([]*shard[K, V], n),
		hash:   opt.Hasher,
		clk:    opt.Clock,
		ttl:    opt.TTL,
		opt:    opt,
	}
	c.live.limit = int64(opt.Capacity)

	hint := (opt.Capacity + n - 1) / n // even split (ceil) as a size hint only
	for i := range c.shards {
		c.shards[i] = newShard[K, V](hint, &c.opt)
	}
	return c, nil
}

// MustNew is like New but panics on invalid Options.
func MustNew[K comparable, V any](opt Options[K, V]) Cache[K, V] {
	c, err := New(opt)
	if err != nil {
		panic(err)
	}
	return c
}

// ---- Cache[K,V] implementation ----

// Insert stores k→v, overwriting and refreshing any existing entry.
func (c *cache[K, V]) Insert(k K, v V) {
	c.insert(k, v)
}

// Get returns a view of the value for k, fresh or stale.
func (c *cache[K, V]) Get(k K) (View[V], bool) {
	s := c.getShard(k)
	e, ok := s.get(k)
	if !ok {
		s.misses.Add(1)
		c.opt.Metrics.Miss()
		return View[V]{}, false
	}
	if expired(e.at, c.ttl, c.clk.NowUnixNano()) {
		s.stale.Add(1)
		c.opt.Metrics.StaleHit()
	} else {
		s.hits.Add(1)
		c.opt.Metrics.Hit()
	}
	return c.view(e.val, e.at), true
}

// Remove deletes k if present and returns a view of what was removed.
func (c *cache[K, V]) Remove(k K) (View[V], bool) {
	e, ok := c.getShard(k).remove(k)
	if !ok {
		return View[V]{}, false
	}
	c.live.refund()
	c.opt.Metrics.Size(c.live.count())
	return c.view(e.val, e.at), true
}

// GetOrLoad returns the view for k; on absence it loads via Options.Loader,
// coalescing concurrent loads for the same key (singleflight).
func (c *cache[K, V]) GetOrLoad(ctx context.Context, k K) (View[V], error) {
	// fast path
	if v, ok := c.Get(k); ok {
		return v, nil
	}
	if c.opt.Loader == nil {
		return View[V]{}, ErrNoLoader
	}

	v, err, shared := c.sf.Do(ctx, k, func() (View[V], error) {
		// double-check after flight join; no metrics, the miss was counted
		if e, ok := c.getShard(k).get(k); ok {
			return c.view(e.val, e.at), nil
		}
		val, err := c.opt.Loader(ctx, k)
		if err != nil {
			return View[V]{}, fmt.Errorf("cache: load: %w", err)
		}
		return c.insert(k, val), nil
	})
	if shared {
		c.getShard(k).shared.Add(1)
	}
	return v, err
}

// Len returns the total number of resident entries across all shards.
func (c *cache[K, V]) Len() int {
	total := 0
	for _, s := range c.shards {
		total += s.size()
	}
	return total
}

// Capacity returns the configured total capacity.
func (c *cache[K, V]) Capacity() int { return c.opt.Capacity }

// Stats sums the per-shard counters.
func (c *cache[K, V]) Stats() Stats {
	var st Stats
	for _, s := range c.shards {
		st.Hits += s.hits.Load()
		st.StaleHits += s.stale.Load()
		st.Misses += s.misses.Load()
		st.Evictions += s.evicts.Load()
		st.SharedLoads += s.shared.Load()
	}
	return st
}

// ---- helpers ----

// insert stores k→v and returns the view of what was written.
func (c *cache[K, V]) insert(k K, v V) View[V] {
	now := c.clk.NowUnixNano()
	s := c.getShard(k)
	added, overflow := s.insert(k, v, now, &c.live)
	if overflow {
		c.spill(s)
	}
	if added {
		c.opt.Metrics.Size(c.live.count())
	}
	return c.view(v, now)
}

// spill evicts from shards other than from while the budget is overdrawn.
// It runs without holding any shard lock, visiting shards once from a
// random offset; if concurrent inserts keep the budget overdrawn, later
// inserts settle the difference. from is skipped so that the key that
// caused the overflow is never its own victim.
func (c *cache[K, V]) spill(from *shard[K, V]) {
	n := len(c.shards)
	//nolint:gosec // non-crypto randomness is fine for victim shard selection
	start := rand.IntN(n)
	for i := 0; i < n && c.live.over(); i++ {
		s := c.shards[(start+i)%n]
		if s != from && s.evictOne(EvictOverflow) {
			c.live.refund()
		}
	}
}

// getShard picks a shard by hashing the key and masking with len-1.
// len(c.shards) is guaranteed to be a power of two.
func (c *cache[K, V]) getShard(k K) *shard[K, V] {
	return c.shards[util.ShardIndex(c.hash(k), len(c.shards))]
}

func (c *cache[K, V]) view(v V, at int64) View[V] {
	return View[V]{val: v, at: at, ttl: c.ttl, clk: c.clk}
}
