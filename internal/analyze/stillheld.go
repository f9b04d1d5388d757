package analyze

import (
	"locktrace/internal/maps"
	"locktrace/internal/wire"
)

// holdState tracks the hold-count and acquiring indices for one lock,
// shared by the mutex (§4.2.3) and rw-lock (§4.2.5) still-held passes.
type holdState struct {
	count   int
	indices []int
}

// StillHeldGroup is one lock that was still held when the stream ended.
type StillHeldGroup struct {
	Lock    uint64
	Indices []int
}

func toStillHeldGroups(live maps.ConcurrentMap[uint64, *holdState]) []StillHeldGroup {
	var out []StillHeldGroup
	live.Range(func(lock uint64, st *holdState) bool {
		out = append(out, StillHeldGroup{Lock: lock, Indices: st.indices})
		return true
	})
	return out
}

// StillHeldMutexes runs the mutex still-locked-at-exit pass (spec §4.2.3).
func StillHeldMutexes(s *Stream) []StillHeldGroup {
	live := maps.NewConcurrentMap[uint64, *holdState]()

	s.EachSuccess(func(i int, rec *wire.Record) {
		if !rec.Action.IsMutex() {
			return
		}
		lock := rec.Lock

		switch rec.Action {
		case wire.ActionMutexLock:
			st, ok := live.Load(lock)
			if !ok {
				live.Store(lock, &holdState{count: 1, indices: []int{i}})
				return
			}
			st.count++
			st.indices = append(st.indices, i)

		case wire.ActionMutexUnlock:
			st, ok := live.Load(lock)
			if !ok {
				return
			}
			if st.count > 0 {
				st.count--
			}
			if st.count == 0 {
				live.Delete(lock)
			}
		}
	})

	return toStillHeldGroups(live)
}

// StillHeldRWLocks runs the rw-lock still-locked-at-exit pass (spec
// §4.2.5): the hold-count is incremented for both read and write
// acquisitions, and RW_UNLOCK's decrement does not distinguish which kind
// is being released.
func StillHeldRWLocks(s *Stream) []StillHeldGroup {
	live := maps.NewConcurrentMap[uint64, *holdState]()

	s.EachSuccess(func(i int, rec *wire.Record) {
		if !rec.Action.IsRWLock() {
			return
		}
		lock := rec.Lock

		switch rec.Action {
		case wire.ActionRWReadLock, wire.ActionRWWriteLock:
			st, ok := live.Load(lock)
			if !ok {
				live.Store(lock, &holdState{count: 1, indices: []int{i}})
				return
			}
			st.count++
			st.indices = append(st.indices, i)

		case wire.ActionRWUnlock:
			st, ok := live.Load(lock)
			if !ok {
				return
			}
			if st.count > 0 {
				st.count--
			}
			if st.count == 0 {
				live.Delete(lock)
			}
		}
	})

	return toStillHeldGroups(live)
}
