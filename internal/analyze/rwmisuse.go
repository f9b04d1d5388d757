package analyze

import (
	"locktrace/internal/maps"
	"locktrace/internal/wire"
)

// rwlockState is the per-live-rwlock bookkeeping for §4.2.4.
type rwlockState struct {
	readers map[uint32]bool
	writers map[uint32]bool
}

// RWMisuse runs the rw-lock mis-use detection pass (spec §4.2.4).
func RWMisuse(s *Stream) []MisuseGroup {
	live := maps.NewConcurrentMap[uint64, *rwlockState]()
	acc := newMisuseAccumulator()

	getOrInit := func(lock uint64) *rwlockState {
		st, ok := live.Load(lock)
		if ok {
			return st
		}
		st = &rwlockState{readers: map[uint32]bool{}, writers: map[uint32]bool{}}
		live.Store(lock, st)
		return st
	}

	s.EachSuccess(func(i int, rec *wire.Record) {
		if !rec.Action.IsRWLock() {
			return
		}
		lock := rec.Lock
		tid := rec.Tid

		switch rec.Action {
		case wire.ActionRWReadLock:
			st := getOrInit(lock)
			if st.readers[tid] {
				acc.record(lock, AlreadyLocked, i, tid, rec.CallerPrefix())
				return
			}
			st.readers[tid] = true

		case wire.ActionRWWriteLock:
			st := getOrInit(lock)
			if st.writers[tid] {
				acc.record(lock, AlreadyLocked, i, tid, rec.CallerPrefix())
				return
			}
			st.writers[tid] = true

		case wire.ActionRWUnlock:
			st, ok := live.Load(lock)
			if !ok {
				acc.record(lock, NotLocked, i, tid, rec.CallerPrefix())
				return
			}
			switch {
			case st.writers[tid]:
				delete(st.writers, tid)
				if len(st.writers) == 0 && len(st.readers) == 0 {
					live.Delete(lock)
				}
			case st.readers[tid]:
				delete(st.readers, tid)
				if len(st.writers) == 0 && len(st.readers) == 0 {
					live.Delete(lock)
				}
			case len(st.writers) == 0 && len(st.readers) == 0:
				acc.record(lock, NotLocked, i, tid, rec.CallerPrefix())
			default:
				acc.record(lock, NotOwner, i, tid, rec.CallerPrefix())
			}
		}
	})

	return acc.result()
}
