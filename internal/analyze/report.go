package analyze

import (
	"time"

	"locktrace/internal/config"
	"locktrace/internal/wire"
)

// Report is the fully-assembled result of running every pass over one
// trace (spec §4.2.10): "metadata summary, duration tables, error
// listings, mutex/rw-lock mis-use lists, still-held lists, per-lock-site
// listings, and an optional correlation picture." Rendering it to
// ASCII/HTML/DOT is delegated to internal/reportrender.
type Report struct {
	Sidecar *wire.Sidecar

	Errors []ErrorGroup

	MutexMisuse []MisuseGroup
	RWMisuse    []MisuseGroup

	StillHeldMutexes []StillHeldGroup
	StillHeldRWLocks []StillHeldGroup

	Durations map[Category]*DurationReport

	WhereUsed map[uint64]map[uint64]int

	Cooccurrence []CooccurrencePair

	UsageGroup map[uint64][]Contender

	DroppedRecords uint64
	RecordCount    int

	// Symbols maps a stack hash (as seen in ErrorSite/MisuseSite) to the
	// resolved name of its top call-stack frame. Populated by
	// ResolveSymbols; nil unless the caller asked for resolution.
	Symbols map[uint64]string
}

// Run executes the passes of spec §4.2.1–§4.2.8 over stream, assembling a
// Report; symbol resolution (§4.2.9) is left to ResolveSymbols. The opt-in
// co-occurrence section runs only when cfg.Cooccurrence.Enabled is set, and
// the usage-group section only when cfg.UsageGroup is set and ugRecords is
// non-nil (spec §6.3 "-C", "-Q").
func Run(stream *Stream, sidecar *wire.Sidecar, cfg config.AnalyzerConfig, ugRecords []wire.UsageRecord) *Report {
	r := &Report{
		Sidecar:          sidecar,
		Errors:           ListErrors(stream),
		MutexMisuse:      MutexMisuse(stream),
		RWMisuse:         RWMisuse(stream),
		StillHeldMutexes: StillHeldMutexes(stream),
		StillHeldRWLocks: StillHeldRWLocks(stream),
		Durations:        Durations(stream),
		WhereUsed:        WhereUsed(stream),
		RecordCount:      stream.Len(),
	}
	if sidecar != nil {
		r.DroppedRecords = sidecar.DroppedRecords()
	}

	if cfg.Cooccurrence.Enabled {
		r.Cooccurrence = Cooccurrence(stream, cfg.Cooccurrence.TopK)
	}
	if cfg.UsageGroup && ugRecords != nil {
		r.UsageGroup = UsageGroupSummary(ugRecords)
	}

	return r
}

// ResolveSymbols resolves the top call-stack frame of every error and
// mis-use site into a human-readable name via resolver, caching results in
// r.Symbols. This is the only place analyze talks to the external symbol
// resolver process (spec §4.2.9); it is opt-in because spawning a
// subprocess per distinct stack hash is expensive.
func (r *Report) ResolveSymbols(stream *Stream, resolver *SymbolResolver) {
	if resolver == nil || stream == nil {
		return
	}
	r.Symbols = make(map[uint64]string)

	resolveSite := func(hash uint64, first int) {
		if _, ok := r.Symbols[hash]; ok {
			return
		}
		if first < 0 || first >= stream.Len() {
			return
		}
		callers := stream.Records[first].CallerPrefix()
		if len(callers) == 0 {
			return
		}
		r.Symbols[hash] = resolver.Resolve(callers[0])
	}

	for _, g := range r.Errors {
		for _, site := range g.Stes {
			resolveSite(site.StackHash, site.First)
		}
	}
	for _, groups := range [][]MisuseGroup{r.MutexMisuse, r.RWMisuse} {
		for _, g := range groups {
			for _, site := range g.Sites {
				resolveSite(site.StackHash, site.First)
			}
		}
	}
}

// Duration returns the wall-clock span the trace covers.
func (r *Report) Duration() time.Duration {
	if r.Sidecar == nil {
		return 0
	}
	return time.Duration(r.Sidecar.EndTs-r.Sidecar.StartTs) * time.Nanosecond
}
