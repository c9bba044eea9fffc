package cache

import (
	"math"
	"time"

	"github.com/IvanBrykalov/shardttl/clock"
)

// entry is a stored record owned by exactly one shard.
type entry[K comparable, V any] struct {
	key K
	val V
	// Insertion or last overwrite time in UnixNano.
	at int64
}

// expired reports whether an entry written at `at` is stale at `now`.
// The age saturates at zero, so a clock reading older than the stamp counts
// as a fresh entry, except with a zero ttl where everything is stale.
func expired(at int64, ttl time.Duration, now int64) bool {
	age := now - at
	if age < 0 {
		age = 0
	}
	return age >= int64(ttl)
}

// View is a read-only snapshot of a value returned by Get, Remove and
// GetOrLoad. It does not pin the entry: the cache may evict or overwrite the
// key afterwards without affecting the view.
//
// The zero View (returned alongside ok == false) reports IsExpired true.
type View[V any] struct {
	val V
	at  int64
	ttl time.Duration
	clk clock.Clock
}

// Value returns the stored value.
func (v View[V]) Value() V { return v.val }

// IsExpired reports whether the value is older than the cache TTL at the
// moment of the call. It reads the clock on every call, so two calls may
// disagree; callers needing a consistent answer should call it once.
func (v View[V]) IsExpired() bool {
	if v.clk == nil {
		return true
	}
	return expired(v.at, v.ttl, v.clk.NowUnixNano())
}

// WrittenAt returns when the value was inserted or last overwritten.
func (v View[V]) WrittenAt() time.Time { return time.Unix(0, v.at) }

// ExpiresAt returns the moment the value becomes stale, saturating at the
// largest representable UnixNano for very long TTLs.
func (v View[V]) ExpiresAt() time.Time {
	if v.at > 0 && int64(v.ttl) > math.MaxInt64-v.at {
		return time.Unix(0, math.MaxInt64)
	}
	return time.Unix(0, v.at+int64(v.ttl))
}
