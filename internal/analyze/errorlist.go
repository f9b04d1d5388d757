package analyze

import "locktrace/internal/hash"

// ErrorGroup is one distinct rc value, broken down by call-stack hash so
// that repeated failures at the same site collapse to one representative
// (spec §4.2.1: "one group per distinct rc, showing a representative per
// distinct call-stack hash").
type ErrorGroup struct {
	Rc   int32
	Stes []ErrorSite
}

// ErrorSite is one distinct call-stack hash within an ErrorGroup.
type ErrorSite struct {
	StackHash uint64
	// First is the index of the first record seen at this site.
	First int
	// Count is the total number of records seen at this site, including
	// First.
	Count int
}

// ListErrors runs the error-listing pass (spec §4.2.1). Unlike every other
// pass, this one does NOT skip non-zero-rc records — they are its entire
// subject.
func ListErrors(s *Stream) []ErrorGroup {
	type key struct {
		rc   int32
		hash uint64
	}
	sites := make(map[key]*ErrorSite)
	order := make([]int32, 0)
	seenRc := make(map[int32]bool)
	siteOrder := make(map[int32][]uint64)

	for i := range s.Records {
		rec := &s.Records[i]
		if rec.Rc == 0 {
			continue
		}
		if !seenRc[rec.Rc] {
			seenRc[rec.Rc] = true
			order = append(order, rec.Rc)
		}

		h := hash.StackHash(rec.CallerPrefix())
		k := key{rc: rec.Rc, hash: h}
		if site, ok := sites[k]; ok {
			site.Count++
			continue
		}
		sites[k] = &ErrorSite{StackHash: h, First: i, Count: 1}
		siteOrder[rec.Rc] = append(siteOrder[rec.Rc], h)
	}

	groups := make([]ErrorGroup, 0, len(order))
	for _, rc := range order {
		g := ErrorGroup{Rc: rc}
		for _, h := range siteOrder[rc] {
			g.Stes = append(g.Stes, *sites[key{rc: rc, hash: h}])
		}
		groups = append(groups, g)
	}
	return groups
}
