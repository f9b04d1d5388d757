package analyze

import (
	"math"

	"locktrace/internal/maps"
	"locktrace/internal/wire"
)

// Category groups records for the duration-statistics pass (spec §4.2.6).
type Category int

const (
	CategoryMutex Category = iota
	CategoryRWRead
	CategoryRWWrite
)

func (c Category) String() string {
	switch c {
	case CategoryMutex:
		return "mutex"
	case CategoryRWRead:
		return "rw-read"
	case CategoryRWWrite:
		return "rw-write"
	default:
		return "unknown"
	}
}

// aggregate accumulates sum, sum-of-squares, count and max over a stream
// of nanosecond durations (spec §4.2.6).
type aggregate struct {
	sum, sumSq float64
	count      uint64
	max        uint64
}

func (a *aggregate) add(v uint64) {
	a.sum += float64(v)
	a.sumSq += float64(v) * float64(v)
	a.count++
	if v > a.max {
		a.max = v
	}
}

// Stats is the rendered form of an aggregate: mean, stddev, max (spec
// §4.2.6: "mean = sum/count, stddev = sqrt(max(0, sum²/count − mean²))").
type Stats struct {
	Mean   float64
	Stddev float64
	Max    uint64
	Count  uint64
}

func (a aggregate) stats() Stats {
	if a.count == 0 {
		return Stats{}
	}
	mean := a.sum / float64(a.count)
	variance := a.sumSq/float64(a.count) - mean*mean
	if variance < 0 {
		variance = 0
	}
	return Stats{Mean: mean, Stddev: math.Sqrt(variance), Max: a.max, Count: a.count}
}

// DurationReport is the global (all-locks) and per-lock duration
// statistics for one category.
type DurationReport struct {
	Category    Category
	Acquisition Stats
	Hold        Stats
	PerLock     map[uint64]LockDurationStats
}

// LockDurationStats is one lock's acquisition/hold statistics.
type LockDurationStats struct {
	Acquisition Stats
	Hold        Stats
}

// rwHoldTimestamps is the per-lock timestamp pairing state for rw-locks
// (spec §4.2.6: "a per-lock struct holding independent read and write
// acquisition timestamps").
type rwHoldTimestamps struct {
	readTs        uint64
	writeTs       uint64
	currentWriter int32
}

// Durations runs the duration-statistics pass (spec §4.2.6) over the whole
// stream and returns one DurationReport per category.
func Durations(s *Stream) map[Category]*DurationReport {
	reports := map[Category]*DurationReport{
		CategoryMutex:   {Category: CategoryMutex, PerLock: make(map[uint64]LockDurationStats)},
		CategoryRWRead:  {Category: CategoryRWRead, PerLock: make(map[uint64]LockDurationStats)},
		CategoryRWWrite: {Category: CategoryRWWrite, PerLock: make(map[uint64]LockDurationStats)},
	}

	globalAcq := map[Category]*aggregate{
		CategoryMutex:   {},
		CategoryRWRead:  {},
		CategoryRWWrite: {},
	}
	globalHold := map[Category]*aggregate{
		CategoryMutex:   {},
		CategoryRWRead:  {},
		CategoryRWWrite: {},
	}
	perLockAcq := map[Category]maps.ConcurrentMap[uint64, *aggregate]{
		CategoryMutex:   maps.NewConcurrentMap[uint64, *aggregate](),
		CategoryRWRead:  maps.NewConcurrentMap[uint64, *aggregate](),
		CategoryRWWrite: maps.NewConcurrentMap[uint64, *aggregate](),
	}
	perLockHold := map[Category]maps.ConcurrentMap[uint64, *aggregate]{
		CategoryMutex:   maps.NewConcurrentMap[uint64, *aggregate](),
		CategoryRWRead:  maps.NewConcurrentMap[uint64, *aggregate](),
		CategoryRWWrite: maps.NewConcurrentMap[uint64, *aggregate](),
	}

	acqFor := func(cat Category, lock uint64) *aggregate {
		pl := perLockAcq[cat]
		return pl.LoadOrStore(lock, func() *aggregate { return &aggregate{} })
	}
	holdFor := func(cat Category, lock uint64) *aggregate {
		pl := perLockHold[cat]
		return pl.LoadOrStore(lock, func() *aggregate { return &aggregate{} })
	}

	mutexAcquireTs := maps.NewConcurrentMap[uint64, uint64]()
	rwTs := maps.NewConcurrentMap[uint64, *rwHoldTimestamps]()

	s.EachSuccess(func(i int, rec *wire.Record) {
		switch rec.Action {
		case wire.ActionMutexLock:
			globalAcq[CategoryMutex].add(rec.Took)
			acqFor(CategoryMutex, rec.Lock).add(rec.Took)
			mutexAcquireTs.Store(rec.Lock, rec.Timestamp)

		case wire.ActionMutexUnlock:
			if acqTs, ok := mutexAcquireTs.LoadAndDelete(rec.Lock); ok {
				held := rec.Timestamp - acqTs
				globalHold[CategoryMutex].add(held)
				holdFor(CategoryMutex, rec.Lock).add(held)
			}

		case wire.ActionRWReadLock:
			globalAcq[CategoryRWRead].add(rec.Took)
			acqFor(CategoryRWRead, rec.Lock).add(rec.Took)
			ts := rwTs.LoadOrStore(rec.Lock, func() *rwHoldTimestamps { return &rwHoldTimestamps{} })
			ts.readTs = rec.Timestamp

		case wire.ActionRWWriteLock:
			globalAcq[CategoryRWWrite].add(rec.Took)
			acqFor(CategoryRWWrite, rec.Lock).add(rec.Took)
			ts := rwTs.LoadOrStore(rec.Lock, func() *rwHoldTimestamps { return &rwHoldTimestamps{} })
			ts.writeTs = rec.Timestamp
			ts.currentWriter = rec.RWLockInnardsGet().CurWriter

		case wire.ActionRWUnlock:
			ts, ok := rwTs.Load(rec.Lock)
			if !ok {
				return
			}
			// spec §4.2.6: "the release picks write if tid == current_writer
			// and write-ts > 0, else read".
			if int32(rec.Tid) == ts.currentWriter && ts.writeTs > 0 {
				held := rec.Timestamp - ts.writeTs
				globalHold[CategoryRWWrite].add(held)
				holdFor(CategoryRWWrite, rec.Lock).add(held)
				ts.writeTs = 0
			} else if ts.readTs > 0 {
				held := rec.Timestamp - ts.readTs
				globalHold[CategoryRWRead].add(held)
				holdFor(CategoryRWRead, rec.Lock).add(held)
				ts.readTs = 0
			}
		}
	})

	for cat, rep := range reports {
		rep.Acquisition = globalAcq[cat].stats()
		rep.Hold = globalHold[cat].stats()

		perLockAcq[cat].Range(func(lock uint64, agg *aggregate) bool {
			ld := rep.PerLock[lock]
			ld.Acquisition = agg.stats()
			rep.PerLock[lock] = ld
			return true
		})
		perLockHold[cat].Range(func(lock uint64, agg *aggregate) bool {
			ld := rep.PerLock[lock]
			ld.Hold = agg.stats()
			rep.PerLock[lock] = ld
			return true
		})
	}

	return reports
}
