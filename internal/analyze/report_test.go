package analyze

import (
	"testing"

	"locktrace/internal/config"
	"locktrace/internal/wire"
)

func TestRunAssemblesEveryPass(t *testing.T) {
	stream := NewStream([]wire.Record{
		rec(0x1000, 1, wire.ActionMutexLock, 0),
		rec(0x1000, 1, wire.ActionMutexLock, 0),
		rec(0x1000, 1, wire.ActionMutexUnlock, 0),
	})

	report := Run(stream, nil, config.AnalyzerConfig{}, nil)

	if report.RecordCount != stream.Len() {
		t.Errorf("RecordCount = %d, want %d", report.RecordCount, stream.Len())
	}
	if len(report.MutexMisuse) != 1 {
		t.Fatalf("expected one mutex mis-use group, got %d", len(report.MutexMisuse))
	}
	if report.Cooccurrence != nil {
		t.Error("expected co-occurrence to stay nil when disabled")
	}
	if report.UsageGroup != nil {
		t.Error("expected usage-group summary to stay nil without a trail")
	}
}

func TestResolveSymbolsSkipsNullCaller(t *testing.T) {
	// A record whose caller array is entirely zero has an empty
	// CallerPrefix (spec §3's sentinel rule), so resolveSite has nothing
	// to resolve and leaves the hash unset.
	stream := NewStream([]wire.Record{
		rec(0x1000, 1, wire.ActionMutexLock, 0),
		rec(0x1000, 1, wire.ActionMutexLock, 0),
	})
	report := &Report{MutexMisuse: MutexMisuse(stream)}

	resolver := NewSymbolResolver("", "", "", 0)
	report.ResolveSymbols(stream, resolver)

	if report.Symbols == nil {
		t.Fatal("expected Symbols to be initialized")
	}
	for _, g := range report.MutexMisuse {
		for _, site := range g.Sites {
			if _, ok := report.Symbols[site.StackHash]; ok {
				t.Errorf("did not expect a resolved symbol for a null call-stack, got one for hash %x", site.StackHash)
			}
		}
	}
}

func TestResolveSymbolsNoopWithoutResolver(t *testing.T) {
	stream := NewStream(nil)
	report := &Report{}
	report.ResolveSymbols(stream, nil)
	if report.Symbols != nil {
		t.Error("expected Symbols to stay nil when no resolver is given")
	}
}
