package analyze

import (
	"testing"

	"locktrace/internal/wire"
)

func TestWhereUsedOneSitePerDistinctStack(t *testing.T) {
	a := rec(1, 1, wire.ActionMutexLock, 0)
	a.Caller[0] = 0x1000

	b := rec(1, 2, wire.ActionMutexLock, 0)
	b.Caller[0] = 0x1000 // same site

	c := rec(1, 3, wire.ActionMutexLock, 0)
	c.Caller[0] = 0x2000 // distinct site

	s := NewStream([]wire.Record{a, b, c})
	sites := WhereUsed(s)

	byHash, ok := sites[1]
	if !ok {
		t.Fatalf("expected lock 1 in result")
	}
	if len(byHash) != 2 {
		t.Fatalf("expected 2 distinct call-sites, got %d", len(byHash))
	}
}
