package wire

import (
	"os"
	"path/filepath"
	"testing"
)

func TestMutexInnardsRoundTrip(t *testing.T) {
	var r Record
	want := MutexInnards{Count: 3, Owner: 1234, Kind: 1, Spins: 5, Elision: -1}
	r.MutexInnardsSet(want)
	got := r.MutexInnardsGet()
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestRWLockInnardsRoundTrip(t *testing.T) {
	var r Record
	want := RWLockInnards{Readers: 2, Writers: 0, CurWriter: -1}
	r.RWLockInnardsSet(want)
	got := r.RWLockInnardsGet()
	if got != want {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, want)
	}
}

func TestThreadNameRoundTrip(t *testing.T) {
	var r Record
	r.SetThreadName("worker-thread-very-long-name")
	got := r.ThreadNameString()
	if len(got) != ThreadNameLen-1 {
		t.Fatalf("expected truncation to %d bytes, got %q (%d bytes)", ThreadNameLen-1, got, len(got))
	}

	r.SetThreadName("io")
	if got := r.ThreadNameString(); got != "io" {
		t.Fatalf("got %q, want %q", got, "io")
	}
}

func TestCallerPrefixStopsAtSentinel(t *testing.T) {
	var r Record
	r.Caller[0] = 0x1000
	r.Caller[1] = 0x2000
	// r.Caller[2..] remain zero (the null sentinel).

	prefix := r.CallerPrefix()
	if len(prefix) != 2 {
		t.Fatalf("expected prefix length 2, got %d", len(prefix))
	}
	if prefix[0] != 0x1000 || prefix[1] != 0x2000 {
		t.Fatalf("unexpected prefix contents: %v", prefix)
	}
}

func TestCallerPrefixFullDepth(t *testing.T) {
	var r Record
	for i := range r.Caller {
		r.Caller[i] = uint64(i + 1)
	}
	if got := len(r.CallerPrefix()); got != MaxCallers {
		t.Fatalf("expected full depth %d, got %d", MaxCallers, got)
	}
}

func TestSidecarRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.dat.123")

	s := &Sidecar{
		Hostname:    "host1",
		ExeName:     "/usr/bin/target",
		PID:         123,
		Scheduler:   SchedOther,
		NProcs:      4,
		ForkWarning: true,
		StartTs:     1000,
		EndTs:       2000,
		Measurements:   "measurements-123.dat",
		UGMeasurements: "ug-measurements-123.dat",
		NRecords:    100,
		NRecordsMax: 80,
	}
	if err := s.Write(path); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := LoadSidecar(path)
	if err != nil {
		t.Fatalf("LoadSidecar: %v", err)
	}
	if got.Hostname != s.Hostname || got.PID != s.PID || got.ForkWarning != s.ForkWarning {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, s)
	}
	if got.DroppedRecords() != 20 {
		t.Fatalf("DroppedRecords() = %d, want 20", got.DroppedRecords())
	}
}

func TestLoadSidecarMissingMeasurements(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "dump.dat.999")
	if err := os.WriteFile(path, []byte("pid = 1\n"), 0644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if _, err := LoadSidecar(path); err == nil {
		t.Fatal("expected error for sidecar missing measurements key")
	}
}
