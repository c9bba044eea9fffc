package cache

import (
	"sync"

	"github.com/IvanBrykalov/shardttl/internal/util"
	"github.com/IvanBrykalov/shardttl/policy"
)

// shard is an independent partition of the cache with its own lock.
// Entries live in a dense slice so that eviction policies can sample slots
// by index; index maps each key to its slot.
type shard[K comparable, V any] struct {
	// ---- guarded by mu ----
	mu    sync.RWMutex
	index map[K]int
	slots []entry[K, V]
	pol   policy.ShardPolicy

	opt *Options[K, V] // Metrics and OnEvict; read-only after New

	// ---- hot counters (separate cache lines to avoid false sharing) ----
	_      util.CacheLinePad
	hits   util.PaddedAtomicUint64
	stale  util.PaddedAtomicUint64
	misses util.PaddedAtomicUint64
	evicts util.PaddedAtomicUint64
	shared util.PaddedAtomicUint64
}

func newShard[K comparable, V any](sizeHint int, opt *Options[K, V]) *shard[K, V] {
	return &shard[K, V]{
		index: make(map[K]int, sizeHint),
		slots: make([]entry[K, V], 0, sizeHint),
		pol:   opt.Policy.New(),
		opt:   opt,
	}
}

// get returns a copy of the entry for k regardless of its age.
// Reads never touch eviction state, so a read lock suffices.
func (s *shard[K, V]) get(k K) (entry[K, V], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	i, ok := s.index[k]
	if !ok {
		return entry[K, V]{}, false
	}
	return s.slots[i], true
}

// insert stores k→v stamped at now. Overwrites replace the value in place.
// A new key charges one unit to b; if that overdraws the budget, a victim
// from this shard is evicted before the key is appended. overflow reports
// that the budget is still overdrawn because this shard had nothing to evict.
func (s *shard[K, V]) insert(k K, v V, now int64, b *budget) (added, overflow bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if i, ok := s.index[k]; ok {
		s.slots[i].val = v
		s.slots[i].at = now
		return false, false
	}

	if b.charge() {
		if s.evictLocked(EvictCapacity) {
			b.refund()
		} else {
			overflow = true
		}
	}
	s.index[k] = len(s.slots)
	s.slots = append(s.slots, entry[K, V]{key: k, val: v, at: now})
	return true, overflow
}

// remove deletes k and returns the removed entry.
func (s *shard[K, V]) remove(k K) (entry[K, V], bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[k]
	if !ok {
		return entry[K, V]{}, false
	}
	e := s.slots[i]
	s.removeAt(i)
	return e, true
}

// evictOne evicts a single policy-chosen victim. Returns false if empty.
func (s *shard[K, V]) evictOne(reason EvictReason) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.evictLocked(reason)
}

// size returns the number of resident entries in this shard.
func (s *shard[K, V]) size() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.slots)
}

// -------------------- internals (mu held) --------------------

// Len implements policy.Table.
func (s *shard[K, V]) Len() int { return len(s.slots) }

// WrittenAt implements policy.Table.
func (s *shard[K, V]) WrittenAt(i int) int64 { return s.slots[i].at }

// removeAt drops slot i by moving the last slot into its place.
func (s *shard[K, V]) removeAt(i int) {
	last := len(s.slots) - 1
	delete(s.index, s.slots[i].key)
	if i != last {
		s.slots[i] = s.slots[last]
		s.index[s.slots[i].key] = i
	}
	s.slots[last] = entry[K, V]{} // release references for GC
	s.slots = s.slots[:last]
}

// evictLocked removes the policy's victim, updates counters and calls OnEvict.
func (s *shard[K, V]) evictLocked(reason EvictReason) bool {
	i := s.pol.Victim(s)
	if i < 0 {
		return false
	}
	e := s.slots[i]
	s.removeAt(i)
	s.evicts.Add(1)
	s.opt.Metrics.Evict(reason)
	if cb := s.opt.OnEvict; cb != nil {
		cb(e.key, e.val, reason)
	}
	return true
}

var _ policy.Table = (*shard[string, int])(nil)
