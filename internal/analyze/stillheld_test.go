package analyze

import (
	"testing"

	"locktrace/internal/wire"
)

func TestStillHeldMutexesDetectsLeak(t *testing.T) {
	s := NewStream([]wire.Record{
		rec(1, 1, wire.ActionMutexLock, 0),
		rec(2, 1, wire.ActionMutexLock, 0),
		rec(2, 1, wire.ActionMutexUnlock, 0),
	})

	groups := StillHeldMutexes(s)
	if len(groups) != 1 || groups[0].Lock != 1 {
		t.Fatalf("expected only lock 1 still held, got %+v", groups)
	}
}

func TestStillHeldMutexesEmptyWhenAllReleased(t *testing.T) {
	s := NewStream([]wire.Record{
		rec(1, 1, wire.ActionMutexLock, 0),
		rec(1, 1, wire.ActionMutexUnlock, 0),
	})

	if groups := StillHeldMutexes(s); len(groups) != 0 {
		t.Fatalf("expected no still-held locks, got %+v", groups)
	}
}

func TestStillHeldRWLocksMergesReadAndWrite(t *testing.T) {
	s := NewStream([]wire.Record{
		rec(1, 1, wire.ActionRWReadLock, 0),
		rec(1, 2, wire.ActionRWWriteLock, 0),
		rec(1, 1, wire.ActionRWUnlock, 0),
	})

	groups := StillHeldRWLocks(s)
	if len(groups) != 1 || groups[0].Lock != 1 {
		t.Fatalf("expected lock 1 still held, got %+v", groups)
	}
	// Indices accumulates every acquisition that incremented the
	// hold-count, not just the ones still outstanding (spec §4.2.3).
	if len(groups[0].Indices) != 2 {
		t.Fatalf("expected both acquisitions recorded, got %+v", groups[0].Indices)
	}
}
