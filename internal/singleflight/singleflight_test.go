package singleflight

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"golang.org/x/sync/errgroup"
)

func TestDo_CoalescesConcurrentCalls(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	var calls atomic.Int32
	release := make(chan struct{})

	var eg errgroup.Group
	for i := 0; i < 16; i++ {
		eg.Go(func() error {
			v, err, _ := g.Do(context.Background(), "k", func() (int, error) {
				calls.Add(1)
				<-release
				return 42, nil
			})
			if err != nil {
				return err
			}
			if v != 42 {
				return errors.New("unexpected value")
			}
			return nil
		})
	}
	time.Sleep(20 * time.Millisecond) // let followers join the flight
	close(release)

	if err := eg.Wait(); err != nil {
		t.Fatal(err)
	}
	// Late arrivals may start a second flight, but never one per caller.
	if got := calls.Load(); got < 1 || got >= 16 {
		t.Fatalf("unexpected call count %d", got)
	}
}

func TestDo_FollowerCancellation(t *testing.T) {
	t.Parallel()

	var g Group[string, int]
	started := make(chan struct{})
	release := make(chan struct{})
	defer close(release)

	go func() {
		_, _, _ = g.Do(context.Background(), "k", func() (int, error) {
			close(started)
			<-release
			return 1, nil
		})
	}()
	<-started

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err, shared := g.Do(ctx, "k", func() (int, error) {
		t.Error("follower must not run fn")
		return 0, nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("want context.Canceled, got %v", err)
	}
	if !shared {
		t.Fatal("follower result must be marked shared")
	}
}

func TestDo_PanicBecomesError(t *testing.T) {
	t.Parallel()

	var g Group[int, string]
	_, err, _ := g.Do(context.Background(), 1, func() (string, error) {
		panic("boom")
	})
	if !errors.Is(err, ErrPanicked) {
		t.Fatalf("want ErrPanicked, got %v", err)
	}

	// The key must be usable again after a panic.
	v, err, _ := g.Do(context.Background(), 1, func() (string, error) { return "ok", nil })
	if err != nil || v != "ok" {
		t.Fatalf("second Do: v=%q err=%v", v, err)
	}
}
