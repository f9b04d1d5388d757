package analyze

import (
	"testing"

	"locktrace/internal/wire"
)

func TestRWMisuseAlreadyLockedRead(t *testing.T) {
	s := NewStream([]wire.Record{
		rec(1, 1, wire.ActionRWReadLock, 0),
		rec(1, 1, wire.ActionRWReadLock, 0),
	})

	groups := RWMisuse(s)
	if len(groups) != 1 || groups[0].Kind != AlreadyLocked {
		t.Fatalf("expected single AlreadyLocked group, got %+v", groups)
	}
}

func TestRWMisuseConcurrentReadersNoError(t *testing.T) {
	s := NewStream([]wire.Record{
		rec(2, 1, wire.ActionRWReadLock, 0),
		rec(2, 2, wire.ActionRWReadLock, 0),
		rec(2, 1, wire.ActionRWUnlock, 0),
		rec(2, 2, wire.ActionRWUnlock, 0),
	})

	if groups := RWMisuse(s); len(groups) != 0 {
		t.Fatalf("expected no misuse for two distinct readers, got %+v", groups)
	}
}

func TestRWMisuseNotOwnerUnlock(t *testing.T) {
	s := NewStream([]wire.Record{
		rec(3, 1, wire.ActionRWWriteLock, 0),
		rec(3, 2, wire.ActionRWUnlock, 0),
	})

	groups := RWMisuse(s)
	if len(groups) != 1 || groups[0].Kind != NotOwner {
		t.Fatalf("expected single NotOwner group, got %+v", groups)
	}
}

func TestRWMisuseNotLockedUnlock(t *testing.T) {
	s := NewStream([]wire.Record{
		rec(4, 1, wire.ActionRWUnlock, 0),
	})

	groups := RWMisuse(s)
	if len(groups) != 1 || groups[0].Kind != NotLocked {
		t.Fatalf("expected single NotLocked group, got %+v", groups)
	}
}
