package analyze

import (
	"testing"

	"locktrace/internal/wire"
)

func TestListErrorsGroupsByRcThenStack(t *testing.T) {
	r1 := rec(1, 1, wire.ActionMutexLock, 16)
	r1.Caller[0] = 0xdead

	r2 := rec(1, 2, wire.ActionMutexLock, 16)
	r2.Caller[0] = 0xdead // same call-site -> folds into r1's site

	r3 := rec(2, 1, wire.ActionMutexUnlock, 22)
	r3.Caller[0] = 0xbeef

	s := NewStream([]wire.Record{r1, r2, r3})
	groups := ListErrors(s)

	if len(groups) != 2 {
		t.Fatalf("expected 2 distinct rc groups, got %d", len(groups))
	}
	if groups[0].Rc != 16 {
		t.Errorf("expected first group rc=16, got %d", groups[0].Rc)
	}
	if len(groups[0].Stes) != 1 {
		t.Fatalf("expected the two rc=16 records to fold into one site, got %d", len(groups[0].Stes))
	}
	if groups[0].Stes[0].Count != 2 {
		t.Errorf("expected site count 2, got %d", groups[0].Stes[0].Count)
	}
	if groups[0].Stes[0].First != 0 {
		t.Errorf("expected first occurrence index 0, got %d", groups[0].Stes[0].First)
	}
}

func TestListErrorsIgnoresSuccess(t *testing.T) {
	s := NewStream([]wire.Record{rec(1, 1, wire.ActionMutexLock, 0)})
	if groups := ListErrors(s); len(groups) != 0 {
		t.Fatalf("expected no groups for an all-success stream, got %+v", groups)
	}
}
