package random

import (
	"testing"

	"github.com/IvanBrykalov/shardttl/policy"
)

// --- test doubles ---

type countingTable struct {
	at    []int64
	reads int
}

func (c *countingTable) Len() int { return len(c.at) }
func (c *countingTable) WrittenAt(i int) int64 {
	c.reads++
	return c.at[i]
}

func ascending(n int) *countingTable {
	at := make([]int64, n)
	for i := range at {
		at[i] = int64(i)
	}
	return &countingTable{at: at}
}

// --- tests ---

func TestRandom_EmptyTable(t *testing.T) {
	t.Parallel()

	p := New(5).New()
	if got := p.Victim(&countingTable{}); got != -1 {
		t.Fatalf("empty table must yield -1, got %d", got)
	}
}

// Tables no larger than the sample are scanned, so the choice is exact.
func TestRandom_SmallTableIsExact(t *testing.T) {
	t.Parallel()

	p := New(5).New()
	tbl := &countingTable{at: []int64{50, 20, 40, 10, 30}}
	if got := p.Victim(tbl); got != 3 {
		t.Fatalf("want slot 3 (oldest), got %d", got)
	}
}

// Large tables: exactly sampleSize reads, and the victim is the oldest slot
// among the ones read, which can never be newer than every slot.
func TestRandom_SamplesBoundedReads(t *testing.T) {
	t.Parallel()

	p := New(4).New()
	for round := 0; round < 100; round++ {
		tbl := ascending(1_000)
		v := p.Victim(tbl)
		if v < 0 || v >= 1_000 {
			t.Fatalf("victim out of range: %d", v)
		}
		if tbl.reads != 4 {
			t.Fatalf("want 4 timestamp reads, got %d", tbl.reads)
		}
	}
}

func TestRandom_DefaultSampleSize(t *testing.T) {
	t.Parallel()

	p := New(0).New().(*sampler)
	if p.n != policy.DefaultSampleSize {
		t.Fatalf("want default sample size %d, got %d", policy.DefaultSampleSize, p.n)
	}
}
