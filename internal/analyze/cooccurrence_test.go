package analyze

import (
	"testing"

	"locktrace/internal/wire"
)

func TestCooccurrenceCountsOverlap(t *testing.T) {
	s := NewStream([]wire.Record{
		rec(1, 1, wire.ActionMutexLock, 0),
		rec(2, 1, wire.ActionMutexLock, 0), // 1 and 2 now both held -> pair bumped
		rec(1, 1, wire.ActionMutexUnlock, 0),
		rec(2, 1, wire.ActionMutexUnlock, 0),
	})

	pairs := Cooccurrence(s, 10)
	if len(pairs) != 1 {
		t.Fatalf("expected exactly 1 pair, got %+v", pairs)
	}
	p := pairs[0]
	if p.PairCount == 0 {
		t.Errorf("expected nonzero pair count, got %+v", p)
	}
	if p.Closeness <= 0 || p.Closeness > 1 {
		t.Errorf("closeness out of expected range: %v", p.Closeness)
	}
}

func TestCooccurrenceTopKCaps(t *testing.T) {
	s := NewStream([]wire.Record{
		rec(1, 1, wire.ActionMutexLock, 0),
		rec(2, 1, wire.ActionMutexLock, 0),
		rec(3, 1, wire.ActionMutexLock, 0),
	})

	pairs := Cooccurrence(s, 1)
	if len(pairs) != 1 {
		t.Fatalf("expected topK=1 to cap result to 1 pair, got %d", len(pairs))
	}
}
