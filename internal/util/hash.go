// Package util contains internal helpers (hashing, sharding, padding).
//revive:disable:var-naming  // allow 'util' as an internal helpers package name
package util

import (
	"hash/maphash"
	"math"

	"github.com/cespare/xxhash/v2"
)

// NewHasher returns the routing hash for K.
// Strings and byte arrays go through xxhash; integer-like keys are mixed with
// a 64-bit finalizer so that sequential ids still spread across shards.
// Any other comparable key (structs, pointers, arrays, named types) goes
// through maphash.Comparable with a seed fixed for the lifetime of the
// returned func. Keys equal under == always hash equally.
func NewHasher[K comparable]() func(K) uint64 {
	seed := maphash.MakeSeed()
	return func(k K) uint64 {
		if h, ok := fastHash(k); ok {
			return h
		}
		return maphash.Comparable(seed, k)
	}
}

// fastHash covers the common key types without reflection.
func fastHash[K comparable](k K) (uint64, bool) {
	switch v := any(k).(type) {
	case string:
		return xxhash.Sum64String(v), true
	case [16]byte:
		return xxhash.Sum64(v[:]), true
	case [32]byte:
		return xxhash.Sum64(v[:]), true
	case [64]byte:
		return xxhash.Sum64(v[:]), true

	case uint8:
		return mix64(uint64(v)), true
	case uint16:
		return mix64(uint64(v)), true
	case uint32:
		return mix64(uint64(v)), true
	case uint64:
		return mix64(v), true
	case uint:
		return mix64(uint64(v)), true
	case uintptr:
		return mix64(uint64(v)), true
	case int8:
		return mix64(uint64(uint8(v))), true
	case int16:
		return mix64(uint64(uint16(v))), true
	case int32:
		return mix64(uint64(uint32(v))), true
	case int64:
		return mix64(uint64(v)), true
	case int:
		return mix64(uint64(v)), true
	case float32:
		if v == 0 {
			v = 0 // -0 == +0
		}
		return mix64(uint64(math.Float32bits(v))), true
	case float64:
		if v == 0 {
			v = 0
		}
		return mix64(math.Float64bits(v)), true
	case bool:
		if v {
			return mix64(1), true
		}
		return mix64(0), true
	}
	return 0, false
}

// mix64 is the splitmix64 finalizer.
func mix64(x uint64) uint64 {
	x ^= x >> 30
	x *= 0xbf58476d1ce4e5b9
	x ^= x >> 27
	x *= 0x94d049bb133111eb
	x ^= x >> 31
	return x
}
