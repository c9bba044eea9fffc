package util

import (
	"math"
	"testing"
)

func TestNextPow2(t *testing.T) {
	t.Parallel()

	cases := map[uint64]uint64{0: 1, 1: 1, 2: 2, 3: 4, 5: 8, 64: 64, 65: 128, 1<<63 + 1: 1 << 63}
	for in, want := range cases {
		if got := NextPow2(in); got != want {
			t.Errorf("NextPow2(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestPrevPow2(t *testing.T) {
	t.Parallel()

	cases := map[uint64]uint64{0: 0, 1: 1, 2: 2, 3: 2, 100: 64, 1 << 40: 1 << 40}
	for in, want := range cases {
		if got := PrevPow2(in); got != want {
			t.Errorf("PrevPow2(%d) = %d, want %d", in, got, want)
		}
	}
}

func TestShardCount(t *testing.T) {
	t.Parallel()

	cases := []struct{ req, capacity, want int }{
		{req: 16, capacity: 1_000, want: 16},
		{req: 10, capacity: 1_000, want: 16},
		{req: 16, capacity: 3, want: 2},
		{req: 16, capacity: 1, want: 1},
		{req: 1, capacity: 1_000, want: 1},
	}
	for _, c := range cases {
		if got := ShardCount(c.req, c.capacity); got != c.want {
			t.Errorf("ShardCount(%d, %d) = %d, want %d", c.req, c.capacity, got, c.want)
		}
	}

	if got := ShardCount(0, 1<<20); !IsPowerOfTwo(uint64(got)) || got > MaxShards {
		t.Errorf("auto shard count must be a power of two <= %d, got %d", MaxShards, got)
	}
}

func TestShardIndex(t *testing.T) {
	t.Parallel()

	if got := ShardIndex(12345, 1); got != 0 {
		t.Fatalf("single shard must map to 0, got %d", got)
	}
	if got := ShardIndex(0b1011, 4); got != 0b11 {
		t.Fatalf("pow2 mask: want 3, got %d", got)
	}
	if got := ShardIndex(10, 3); got != 1 {
		t.Fatalf("modulo path: want 1, got %d", got)
	}
}

func TestHasher_SpreadsSequentialInts(t *testing.T) {
	t.Parallel()

	const shards = 16
	h := NewHasher[int]()
	var counts [shards]int
	for i := 0; i < 16_000; i++ {
		counts[ShardIndex(h(i), shards)]++
	}
	for i, c := range counts {
		if c < 500 || c > 1_500 {
			t.Fatalf("shard %d got %d of 16000 sequential keys; distribution is skewed", i, c)
		}
	}
}

func TestHasher_Deterministic(t *testing.T) {
	t.Parallel()

	hs := NewHasher[string]()
	if hs("rpc:/users/1") != hs("rpc:/users/1") {
		t.Fatal("string hash must be deterministic")
	}
	if hs("a") == hs("b") {
		t.Fatal("distinct short strings should not collide")
	}
	hi := NewHasher[int64]()
	if hi(7) != hi(7) {
		t.Fatal("int hash must be deterministic")
	}
}

func TestHasher_SignedZero(t *testing.T) {
	t.Parallel()

	h := NewHasher[float64]()
	negZero := math.Copysign(0, -1)
	if h(negZero) != h(0) {
		t.Fatal("-0 and +0 compare equal and must hash equally")
	}
}

type point struct{ x, y int }

type tenant string

// Keys outside the fast paths hash through maphash and agree with ==.
func TestHasher_AnyComparableKey(t *testing.T) {
	t.Parallel()

	hp := NewHasher[point]()
	if hp(point{1, 2}) != hp(point{1, 2}) {
		t.Fatal("equal struct keys must hash equally")
	}
	if hp(point{1, 2}) == hp(point{2, 1}) {
		t.Fatal("distinct struct keys should not collide")
	}

	p := &point{1, 2}
	hptr := NewHasher[*point]()
	before := hptr(p)
	p.x = 9 // same pointer, same key
	if hptr(p) != before {
		t.Fatal("pointer hash must not depend on the pointee")
	}

	ht := NewHasher[tenant]()
	if ht("acme") != ht("acme") {
		t.Fatal("named string keys must hash deterministically")
	}

	ha := NewHasher[[3]uint16]()
	if ha([3]uint16{1, 2, 3}) != ha([3]uint16{1, 2, 3}) {
		t.Fatal("array keys must hash deterministically")
	}
}
