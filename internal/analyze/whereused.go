package analyze

import (
	"locktrace/internal/hash"
	"locktrace/internal/maps"
	"locktrace/internal/wire"
)

// WhereUsed maps each lock to one example record index per distinct
// call-site (spec §4.2.7).
func WhereUsed(s *Stream) map[uint64]map[uint64]int {
	sites := maps.NewConcurrentMap[uint64, map[uint64]int]()

	s.EachSuccess(func(i int, rec *wire.Record) {
		switch rec.Action {
		case wire.ActionMutexLock, wire.ActionRWReadLock, wire.ActionRWWriteLock:
		default:
			return
		}

		byHash := sites.LoadOrStore(rec.Lock, func() map[uint64]int { return make(map[uint64]int) })
		h := hash.StackHash(rec.CallerPrefix())
		if _, ok := byHash[h]; !ok {
			byHash[h] = i
		}
	})

	out := make(map[uint64]map[uint64]int)
	sites.Range(func(lock uint64, byHash map[uint64]int) bool {
		out[lock] = byHash
		return true
	})
	return out
}
