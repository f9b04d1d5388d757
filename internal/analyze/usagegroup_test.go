package analyze

import (
	"testing"

	"locktrace/internal/wire"
)

func TestUsageGroupSummaryCountsPerTid(t *testing.T) {
	var a, b wire.UsageRecord
	a.Lock, a.Tid = 1, 10
	a.SetThreadName("worker-a")
	b.Lock, b.Tid = 1, 10
	b.SetThreadName("worker-a")

	var c wire.UsageRecord
	c.Lock, c.Tid = 1, 20
	c.SetThreadName("worker-b")

	summary := UsageGroupSummary([]wire.UsageRecord{a, b, c})
	contenders, ok := summary[1]
	if !ok || len(contenders) != 2 {
		t.Fatalf("expected 2 distinct contenders for lock 1, got %+v", contenders)
	}

	for _, ct := range contenders {
		if ct.Tid == 10 && ct.AttemptCount != 2 {
			t.Errorf("expected tid 10 to have 2 attempts, got %d", ct.AttemptCount)
		}
		if ct.Tid == 20 && ct.AttemptCount != 1 {
			t.Errorf("expected tid 20 to have 1 attempt, got %d", ct.AttemptCount)
		}
	}
}
