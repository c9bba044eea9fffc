// Package clock provides cheap, monotonic UnixNano time sources for the cache.
//
// All clocks are safe for concurrent use. Readings never decrease, even if the
// wall clock is stepped backwards, because they are anchored to Go's monotonic
// clock at construction time.
package clock

import (
	"sync/atomic"
	"time"
)

// DefaultStride is the number of Coarse reads served from the cached value
// between two real clock reads.
const DefaultStride = 32

// Clock provides time in UnixNano.
type Clock interface{ NowUnixNano() int64 }

// anchor pins a wall-clock origin to a monotonic reading.
type anchor struct {
	base time.Time
	unix int64
}

func newAnchor() anchor {
	now := time.Now()
	return anchor{base: now, unix: now.UnixNano()}
}

// read returns the wall-clock origin advanced by monotonic elapsed time.
func (a anchor) read() int64 { return a.unix + int64(time.Since(a.base)) }

// System reads the monotonic clock on every call.
type System struct{ a anchor }

// NewSystem returns a precise clock.
func NewSystem() *System { return &System{a: newAnchor()} }

// NowUnixNano implements Clock.
func (s *System) NowUnixNano() int64 { return s.a.read() }

// Coarse amortizes clock reads across calls: only every stride-th call reads
// real time, the rest return the last published reading.
//
// Staleness is bounded by call count, not by elapsed time: after an idle
// period readings can lag real time by the whole idle span until the next
// stride boundary. Call Refresh when an exact reading matters.
type Coarse struct {
	a      anchor
	stride uint32
	calls  atomic.Uint32
	now    atomic.Int64
}

// NewCoarse returns a coarse clock that re-reads time every stride calls.
// stride <= 1 degenerates to a precise clock.
func NewCoarse(stride int) *Coarse {
	if stride < 1 {
		stride = 1
	}
	c := &Coarse{a: newAnchor(), stride: uint32(stride)}
	c.now.Store(c.a.unix)
	return c
}

// NowUnixNano implements Clock.
func (c *Coarse) NowUnixNano() int64 {
	if c.calls.Add(1)%c.stride == 0 {
		return c.Refresh()
	}
	return c.now.Load()
}

// Refresh reads real time, publishes it and returns the published value.
func (c *Coarse) Refresh() int64 {
	t := c.a.read()
	for {
		cur := c.now.Load()
		if t <= cur {
			return cur
		}
		if c.now.CompareAndSwap(cur, t) {
			return t
		}
	}
}

// Manual is a clock that only moves when told to. Intended for tests.
type Manual struct{ t atomic.Int64 }

// NewManual returns a manual clock starting at start.
func NewManual(start time.Time) *Manual {
	m := &Manual{}
	m.t.Store(start.UnixNano())
	return m
}

// NowUnixNano implements Clock.
func (m *Manual) NowUnixNano() int64 { return m.t.Load() }

// Advance moves the clock forward by d. Negative durations are ignored.
func (m *Manual) Advance(d time.Duration) {
	if d > 0 {
		m.t.Add(int64(d))
	}
}

// Set moves the clock to t if t is not before the current reading.
func (m *Manual) Set(t time.Time) {
	v := t.UnixNano()
	for {
		cur := m.t.Load()
		if v <= cur || m.t.CompareAndSwap(cur, v) {
			return
		}
	}
}

var (
	_ Clock = (*System)(nil)
	_ Clock = (*Coarse)(nil)
	_ Clock = (*Manual)(nil)
)
