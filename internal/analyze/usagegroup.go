package analyze

import (
	"locktrace/internal/maps"
	"locktrace/internal/wire"
)

// Contender is one thread observed attempting to acquire a lock, as seen
// on the lighter usage-group trail (spec §3 "Usage-group record",
// SPEC_FULL.md's "who is contending" supplement).
type Contender struct {
	Tid          uint32
	ThreadName   string
	AttemptCount uint64
}

// UsageGroupSummary reports, per lock, which threads were observed trying
// to acquire it and how often — the "which instances are contending" view
// the usage-group trail exists for. It is built entirely from the
// lighter secondary log, independent of the main event stream.
func UsageGroupSummary(records []wire.UsageRecord) map[uint64][]Contender {
	counts := maps.NewConcurrentMap[uint64, map[uint32]*Contender]()

	for i := range records {
		rec := &records[i]
		byTid := counts.LoadOrStore(rec.Lock, func() map[uint32]*Contender { return make(map[uint32]*Contender) })
		c, ok := byTid[rec.Tid]
		if !ok {
			c = &Contender{Tid: rec.Tid, ThreadName: rec.ThreadNameString()}
			byTid[rec.Tid] = c
		}
		c.AttemptCount++
	}

	out := make(map[uint64][]Contender)
	counts.Range(func(lock uint64, byTid map[uint32]*Contender) bool {
		list := make([]Contender, 0, len(byTid))
		for _, c := range byTid {
			list = append(list, *c)
		}
		out[lock] = list
		return true
	})
	return out
}
