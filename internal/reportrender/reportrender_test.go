package reportrender

import (
	"bytes"
	"testing"

	"locktrace/internal/analyze"
	"locktrace/internal/wire"
)

func sampleReport() *analyze.Report {
	return &analyze.Report{
		Sidecar: &wire.Sidecar{ExeName: "demo", PID: 1234},
		Errors: []analyze.ErrorGroup{
			{Rc: 16, Stes: []analyze.ErrorSite{{StackHash: 0xdead, First: 0, Count: 2}}},
		},
		MutexMisuse: []analyze.MisuseGroup{
			{Lock: 0x1000, Kind: analyze.AlreadyLocked, Sites: []analyze.MisuseSite{{Tid: 1, First: 0, Count: 1}}},
		},
		Durations: map[analyze.Category]*analyze.DurationReport{
			analyze.CategoryMutex: {Category: analyze.CategoryMutex, PerLock: map[uint64]analyze.LockDurationStats{}},
		},
		RecordCount: 2,
	}
}

func TestRenderASCIIContainsSections(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleReport(), FormatASCII); err != nil {
		t.Fatalf("RenderASCII: %v", err)
	}
	out := buf.String()
	for _, want := range []string{"FUNCTION CALL ERRORS", "MUTEX MIS-USE", "DURATIONS"} {
		if !bytes.Contains([]byte(out), []byte(want)) {
			t.Errorf("expected ASCII output to contain %q", want)
		}
	}
}

func TestRenderHTMLWellFormedish(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleReport(), FormatHTML); err != nil {
		t.Fatalf("RenderHTML: %v", err)
	}
	out := buf.String()
	if !bytes.HasPrefix([]byte(out), []byte("<!DOCTYPE html>")) {
		t.Errorf("expected HTML output to start with doctype")
	}
	if !bytes.Contains([]byte(out), []byte("</html>")) {
		t.Errorf("expected HTML output to be closed")
	}
}

func TestRenderUnknownFormat(t *testing.T) {
	var buf bytes.Buffer
	if err := Render(&buf, sampleReport(), Format("yaml")); err == nil {
		t.Fatal("expected an error for an unknown format")
	}
}

func TestDOTEmitsOneEdgePerPair(t *testing.T) {
	pairs := []analyze.CooccurrencePair{
		{A: 1, B: 2, PairCount: 5, Closeness: 0.5},
	}
	out := DOT(pairs)
	if !bytes.Contains([]byte(out), []byte("0x1")) || !bytes.Contains([]byte(out), []byte("0x2")) {
		t.Errorf("expected DOT output to reference both lock addresses, got %q", out)
	}
}
