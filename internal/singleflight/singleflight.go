// Package singleflight coalesces concurrent calls that share a key.
package singleflight

import (
	"context"
	"errors"
	"fmt"
	"sync"
)

// Group coalesces concurrent function calls for the same key K so that
// the supplied fn is executed at most once at a time per key. Other
// concurrent callers wait for the shared result.
//
// Concurrency notes:
//   - The first caller for a given key becomes the leader and runs fn.
//   - Followers wait on c.done. Publishing (val, err) happens-before
//     close(c.done), so reads after <-done observe the final values.
//   - Cancelling ctx in a follower unblocks only that follower; it does
//     NOT cancel the leader's fn.
//   - A panic in fn is recovered and delivered to every waiter as an error
//     wrapping ErrPanicked, so followers never hang.
//
// The zero Group is ready to use.
type Group[K comparable, V any] struct {
	mu sync.Mutex
	m  map[K]*call[V]
}

// ErrPanicked is wrapped by the error returned when fn panicked.
var ErrPanicked = errors.New("singleflight: function panicked")

type call[V any] struct {
	done chan struct{} // closed when val/err are published
	val  V
	err  error
	dups int // followers that joined; guarded by Group.mu
}

// Do runs fn once for the given key. Concurrent calls with the same key
// wait for the shared result; shared reports whether the result was handed
// to more than one caller. If ctx is cancelled in a follower, that follower
// returns ctx.Err() while the leader continues to run fn.
func (g *Group[K, V]) Do(ctx context.Context, key K, fn func() (V, error)) (v V, err error, shared bool) {
	g.mu.Lock()
	if g.m == nil {
		g.m = make(map[K]*call[V])
	}
	if c, ok := g.m[key]; ok {
		c.dups++
		g.mu.Unlock()

		select {
		case <-c.done:
			return c.val, c.err, true
		case <-ctx.Done():
			var zero V
			return zero, ctx.Err(), true
		}
	}

	// We are the leader for this key.
	c := &call[V]{done: make(chan struct{})}
	g.m[key] = c
	g.mu.Unlock()

	g.run(c, fn)

	g.mu.Lock()
	delete(g.m, key)
	shared = c.dups > 0
	g.mu.Unlock()

	return c.val, c.err, shared
}

// run executes fn outside the lock and always publishes a result.
func (g *Group[K, V]) run(c *call[V], fn func() (V, error)) {
	defer close(c.done)
	defer func() {
		if r := recover(); r != nil {
			var zero V
			c.val, c.err = zero, fmt.Errorf("%w: %v", ErrPanicked, r)
		}
	}()
	c.val, c.err = fn()
}
