package analyze

import (
	"locktrace/internal/maps"
	"locktrace/internal/wire"
)

// mutexState is the per-live-mutex bookkeeping for §4.2.2: stored as a set
// even though a correctly-used non-recursive mutex never holds more than
// one tid, so that recursive or buggy usage is tracked uniformly.
type mutexState struct {
	tids map[uint32]bool
}

// MutexMisuse runs the mutex mis-use detection pass (spec §4.2.2).
func MutexMisuse(s *Stream) []MisuseGroup {
	live := maps.NewConcurrentMap[uint64, *mutexState]()
	acc := newMisuseAccumulator()

	s.EachSuccess(func(i int, rec *wire.Record) {
		if !rec.Action.IsMutex() {
			return
		}
		lock := rec.Lock
		tid := rec.Tid

		switch rec.Action {
		case wire.ActionMutexLock:
			st, ok := live.Load(lock)
			if !ok {
				live.Store(lock, &mutexState{tids: map[uint32]bool{tid: true}})
				return
			}
			if st.tids[tid] {
				acc.record(lock, AlreadyLocked, i, tid, rec.CallerPrefix())
				return
			}
			st.tids[tid] = true

		case wire.ActionMutexUnlock:
			st, ok := live.Load(lock)
			if !ok {
				acc.record(lock, NotLocked, i, tid, rec.CallerPrefix())
				return
			}
			if !st.tids[tid] {
				acc.record(lock, NotOwner, i, tid, rec.CallerPrefix())
				return
			}
			delete(st.tids, tid)
			if len(st.tids) == 0 {
				live.Delete(lock)
			}
		}
	})

	return acc.result()
}
