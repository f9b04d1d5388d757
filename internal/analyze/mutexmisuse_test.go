package analyze

import (
	"testing"

	"locktrace/internal/wire"
)

func rec(lock uint64, tid uint32, action wire.Action, rc int32) wire.Record {
	return wire.Record{Lock: lock, Tid: tid, Action: action, Rc: rc}
}

func TestMutexMisuseAlreadyLocked(t *testing.T) {
	s := NewStream([]wire.Record{
		rec(100, 1, wire.ActionMutexLock, 0),
		rec(100, 1, wire.ActionMutexLock, 0),
	})

	groups := MutexMisuse(s)
	if len(groups) != 1 {
		t.Fatalf("expected 1 misuse group, got %d", len(groups))
	}
	if groups[0].Kind != AlreadyLocked {
		t.Errorf("expected AlreadyLocked, got %v", groups[0].Kind)
	}
	if groups[0].Lock != 100 {
		t.Errorf("expected lock 100, got %d", groups[0].Lock)
	}
}

func TestMutexMisuseNotLocked(t *testing.T) {
	s := NewStream([]wire.Record{
		rec(200, 1, wire.ActionMutexUnlock, 0),
	})

	groups := MutexMisuse(s)
	if len(groups) != 1 || groups[0].Kind != NotLocked {
		t.Fatalf("expected single NotLocked group, got %+v", groups)
	}
}

func TestMutexMisuseNotOwner(t *testing.T) {
	s := NewStream([]wire.Record{
		rec(300, 1, wire.ActionMutexLock, 0),
		rec(300, 2, wire.ActionMutexUnlock, 0),
	})

	groups := MutexMisuse(s)
	if len(groups) != 1 || groups[0].Kind != NotOwner {
		t.Fatalf("expected single NotOwner group, got %+v", groups)
	}
}

func TestMutexMisuseCleanLockUnlockNoErrors(t *testing.T) {
	s := NewStream([]wire.Record{
		rec(400, 1, wire.ActionMutexLock, 0),
		rec(400, 1, wire.ActionMutexUnlock, 0),
		rec(400, 2, wire.ActionMutexLock, 0),
		rec(400, 2, wire.ActionMutexUnlock, 0),
	})

	if groups := MutexMisuse(s); len(groups) != 0 {
		t.Fatalf("expected no misuse groups, got %+v", groups)
	}
}

func TestMutexMisuseIgnoresFailedCalls(t *testing.T) {
	s := NewStream([]wire.Record{
		rec(500, 1, wire.ActionMutexLock, 0),
		rec(500, 1, wire.ActionMutexLock, 16), // EBUSY, failed: must not count as double-lock
	})

	if groups := MutexMisuse(s); len(groups) != 0 {
		t.Fatalf("expected failed call to be ignored, got %+v", groups)
	}
}
