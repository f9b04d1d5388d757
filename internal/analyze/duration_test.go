package analyze

import (
	"testing"

	"locktrace/internal/wire"
)

func TestDurationsMutexAcquisitionAndHold(t *testing.T) {
	lockRec := rec(1, 1, wire.ActionMutexLock, 0)
	lockRec.Took = 100
	lockRec.Timestamp = 1000

	unlockRec := rec(1, 1, wire.ActionMutexUnlock, 0)
	unlockRec.Timestamp = 1500

	s := NewStream([]wire.Record{lockRec, unlockRec})
	reports := Durations(s)

	mutex := reports[CategoryMutex]
	if mutex.Acquisition.Count != 1 || mutex.Acquisition.Mean != 100 {
		t.Fatalf("unexpected acquisition stats: %+v", mutex.Acquisition)
	}
	if mutex.Hold.Count != 1 || mutex.Hold.Mean != 500 {
		t.Fatalf("unexpected hold stats: %+v", mutex.Hold)
	}

	ld, ok := mutex.PerLock[1]
	if !ok {
		t.Fatalf("expected per-lock stats for lock 1")
	}
	if ld.Hold.Mean != 500 {
		t.Errorf("expected per-lock hold mean 500, got %v", ld.Hold.Mean)
	}
}

func TestDurationsRWWritePairingUsesCurrentWriter(t *testing.T) {
	write := rec(1, 7, wire.ActionRWWriteLock, 0)
	write.Took = 10
	write.Timestamp = 100
	write.RWLockInnardsSet(wire.RWLockInnards{CurWriter: 7})

	unlock := rec(1, 7, wire.ActionRWUnlock, 0)
	unlock.Timestamp = 300

	s := NewStream([]wire.Record{write, unlock})
	reports := Durations(s)

	rw := reports[CategoryRWWrite]
	if rw.Hold.Count != 1 || rw.Hold.Mean != 200 {
		t.Fatalf("expected write-hold pairing via current_writer, got %+v", rw.Hold)
	}
	if reports[CategoryRWRead].Hold.Count != 0 {
		t.Errorf("expected no read-hold attributed, got %+v", reports[CategoryRWRead].Hold)
	}
}

func TestStatsStddevNeverNegative(t *testing.T) {
	a := aggregate{sum: 10, sumSq: 10, count: 5}
	st := a.stats()
	if st.Stddev < 0 {
		t.Errorf("stddev must never be negative, got %v", st.Stddev)
	}
}
