package analyze

import (
	"sort"

	"locktrace/internal/maps"
	"locktrace/internal/wire"
)

// pairKey is an unordered lock pair, normalized so (A,B) and (B,A) collide.
type pairKey struct {
	a, b uint64
}

func makePairKey(a, b uint64) pairKey {
	if a > b {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// CooccurrencePair is one ranked lock pair in the correlation report (spec
// §4.2.8).
type CooccurrencePair struct {
	A, B      uint64
	PairCount uint64
	Closeness float64
}

// Cooccurrence runs the opt-in lock co-occurrence pass (spec §4.2.8). It
// is declared "slow" in the spec (O(h²) per event where h = |holders|)
// and is gated behind -C at the CLI.
//
// holders and seenCount are kept in the generic concurrent-map
// abstraction even though this pass runs on a single goroutine today —
// pair counting over a sharded structure is the one place in this module
// where the concurrent variants are worth exercising directly (see
// DESIGN.md).
func Cooccurrence(s *Stream, topK int) []CooccurrencePair {
	holders := maps.NewConcurrentMap[uint64, int]()
	seenCount := maps.NewConcurrentMap[uint64, uint64]()
	pairCount := make(map[pairKey]uint64)

	currentlyHeld := func() []uint64 {
		var locks []uint64
		holders.Range(func(lock uint64, count int) bool {
			if count > 0 {
				locks = append(locks, lock)
			}
			return true
		})
		return locks
	}

	bumpPairs := func() {
		held := currentlyHeld()
		for i := 0; i < len(held); i++ {
			for j := i + 1; j < len(held); j++ {
				pairCount[makePairKey(held[i], held[j])]++
			}
		}
	}

	s.EachSuccess(func(_ int, rec *wire.Record) {
		switch rec.Action {
		case wire.ActionMutexLock, wire.ActionRWReadLock, wire.ActionRWWriteLock:
			holders.Update(rec.Lock, func(v int, exists bool) (int, bool) {
				return v + 1, true
			})
			seenCount.Update(rec.Lock, func(v uint64, exists bool) (uint64, bool) {
				return v + 1, true
			})
			bumpPairs()

		case wire.ActionMutexUnlock, wire.ActionRWUnlock:
			holders.Update(rec.Lock, func(v int, exists bool) (int, bool) {
				if v > 0 {
					v--
				}
				return v, true
			})
			bumpPairs()
		}
	})

	pairs := make([]CooccurrencePair, 0, len(pairCount))
	for k, count := range pairCount {
		seenA, _ := seenCount.Load(k.a)
		seenB, _ := seenCount.Load(k.b)
		denom := seenA
		if seenB > denom {
			denom = seenB
		}
		var closeness float64
		if denom > 0 {
			closeness = float64(count) / float64(denom)
		}
		pairs = append(pairs, CooccurrencePair{A: k.a, B: k.b, PairCount: count, Closeness: closeness})
	}

	sort.Slice(pairs, func(i, j int) bool {
		return pairs[i].PairCount > pairs[j].PairCount
	})
	if topK > 0 && len(pairs) > topK {
		pairs = pairs[:topK]
	}
	return pairs
}
