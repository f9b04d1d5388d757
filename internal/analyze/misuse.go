package analyze

import "locktrace/internal/hash"

// MisuseKind enumerates the lock-discipline violations the mutex (§4.2.2)
// and rw-lock (§4.2.4) mis-use passes detect.
type MisuseKind int

const (
	AlreadyLocked MisuseKind = iota
	NotLocked
	NotOwner
)

func (k MisuseKind) String() string {
	switch k {
	case AlreadyLocked:
		return "ALREADY_LOCKED"
	case NotLocked:
		return "NOT_LOCKED"
	case NotOwner:
		return "NOT_OWNER"
	default:
		return "UNKNOWN"
	}
}

// MisuseSite is one distinct call-stack hash among the occurrences of a
// (lock, kind) violation — the first occurrence kept in full, later ones
// folded into a count (spec §4.2.2 "first-plus-next grouping").
type MisuseSite struct {
	StackHash uint64
	First     int
	Tid       uint32
	Count     int
}

// MisuseGroup is one (lock, kind) pair and its de-duplicated sites.
type MisuseGroup struct {
	Lock  uint64
	Kind  MisuseKind
	Sites []MisuseSite
}

// misuseAccumulator groups (lock, kind) violations by call-stack hash in
// first-seen order, shared by the mutex and rw-lock mis-use passes.
type misuseAccumulator struct {
	groups map[uint64]map[MisuseKind]*MisuseGroup
	order  []uint64
}

func newMisuseAccumulator() *misuseAccumulator {
	return &misuseAccumulator{groups: make(map[uint64]map[MisuseKind]*MisuseGroup)}
}

func (a *misuseAccumulator) record(lock uint64, kind MisuseKind, idx int, tid uint32, callers []uint64) {
	byKind, ok := a.groups[lock]
	if !ok {
		byKind = make(map[MisuseKind]*MisuseGroup)
		a.groups[lock] = byKind
		a.order = append(a.order, lock)
	}
	g, ok := byKind[kind]
	if !ok {
		g = &MisuseGroup{Lock: lock, Kind: kind}
		byKind[kind] = g
	}

	h := hash.StackHash(callers)
	for i := range g.Sites {
		if g.Sites[i].StackHash == h {
			g.Sites[i].Count++
			return
		}
	}
	g.Sites = append(g.Sites, MisuseSite{StackHash: h, First: idx, Tid: tid, Count: 1})
}

func (a *misuseAccumulator) result() []MisuseGroup {
	out := make([]MisuseGroup, 0, len(a.order))
	for _, lock := range a.order {
		byKind := a.groups[lock]
		for _, kind := range []MisuseKind{AlreadyLocked, NotLocked, NotOwner} {
			if g, ok := byKind[kind]; ok {
				out = append(out, *g)
			}
		}
	}
	return out
}
