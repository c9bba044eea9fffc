package cache

import (
	"strings"
	"testing"
	"time"
)

// Fuzz basic Insert/Get/Remove semantics under arbitrary string inputs.
// Guards against panics and ensures core invariants hold.
// NOTE: We cap key/value lengths to avoid pathological memory usage
// during fuzzing (this does not weaken the invariants we check).
func FuzzCache_InsertGetRemove(f *testing.F) {
	f.Add("", "")
	f.Add("a", "1")
	f.Add("αβγ", "δ")
	f.Add("emoji🙂", "🙂🙂")
	f.Add("long", strings.Repeat("x", 1024))

	f.Fuzz(func(t *testing.T, k, v string) {
		const limit = 1 << 12
		if len(k) > limit {
			k = k[:limit]
		}
		if len(v) > limit {
			v = v[:limit]
		}

		c := MustNew(Options[string, string]{Capacity: 16, TTL: time.Hour})

		c.Insert(k, v)
		got, ok := c.Get(k)
		if !ok || got.Value() != v {
			t.Fatalf("after Insert/Get: want %q, got %q ok=%v", v, got.Value(), ok)
		}

		// Overwrite replaces without merging.
		c.Insert(k, v+"!")
		if got, ok := c.Get(k); !ok || got.Value() != v+"!" {
			t.Fatalf("after overwrite: want %q, got %q ok=%v", v+"!", got.Value(), ok)
		}
		if c.Len() != 1 {
			t.Fatalf("overwrite must not grow the cache, Len=%d", c.Len())
		}

		if _, ok := c.Remove(k); !ok {
			t.Fatalf("Remove must report presence")
		}
		if _, ok := c.Get(k); ok {
			t.Fatalf("key must be absent after Remove")
		}
	})
}
