package prom

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/IvanBrykalov/shardttl/cache"
	"github.com/IvanBrykalov/shardttl/clock"
)

func TestAdapter_WiredIntoCache(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	m := New(reg, "shardttl", "test", prometheus.Labels{"app": "unit"})

	clk := clock.NewManual(time.Unix(0, 0))
	c := cache.MustNew[string, int](cache.Options[string, int]{
		Capacity: 2,
		TTL:      time.Second,
		Shards:   1,
		Clock:    clk,
		Metrics:  m,
	})

	c.Insert("a", 1)
	c.Get("a")
	c.Get("nope")
	clk.Advance(time.Second)
	c.Get("a")
	c.Insert("b", 2)
	c.Insert("c", 3)

	checks := []struct {
		name string
		got  float64
		want float64
	}{
		{"hit", testutil.ToFloat64(m.hits), 1},
		{"stale", testutil.ToFloat64(m.stale), 1},
		{"miss", testutil.ToFloat64(m.misses), 1},
		{"evict capacity", testutil.ToFloat64(m.evicts.WithLabelValues("capacity")), 1},
		{"entries", testutil.ToFloat64(m.entries), 2},
	}
	for _, ch := range checks {
		if ch.got != ch.want {
			t.Errorf("%s: want %v, got %v", ch.name, ch.want, ch.got)
		}
	}

	if n := testutil.CollectAndCount(m.lookups, "shardttl_test_lookups_total"); n != 3 {
		t.Fatalf("want 3 lookup series, got %d", n)
	}
}

func TestAdapter_DuplicateRegistrationPanics(t *testing.T) {
	t.Parallel()

	reg := prometheus.NewRegistry()
	New(reg, "dup", "x", nil)

	defer func() {
		if recover() == nil {
			t.Fatal("second registration on the same registry must panic")
		}
	}()
	New(reg, "dup", "x", nil)
}
