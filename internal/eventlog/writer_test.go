//go:build linux

package eventlog

import (
	"path/filepath"
	"testing"

	"locktrace/internal/wire"
)

func TestWriterAppendAndReaderRoundTrip(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "measurements-1.dat")

	w, err := OpenWriter(path, 4, false)
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}

	rec := wire.Record{Lock: 0xdead, Tid: 42, Action: wire.ActionMutexLock}
	rec.SetThreadName("worker")
	if ok := w.Append(&rec); !ok {
		t.Fatal("expected Append to succeed within capacity")
	}

	if n := w.Inserted(); n != 1 {
		t.Fatalf("Inserted() = %d, want 1", n)
	}

	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	r, err := OpenReader(path, 1)
	if err != nil {
		t.Fatalf("OpenReader: %v", err)
	}
	defer r.Close()

	recs := r.Records()
	if len(recs) != 1 {
		t.Fatalf("len(Records()) = %d, want 1", len(recs))
	}
	if recs[0].Lock != 0xdead || recs[0].Tid != 42 {
		t.Fatalf("round-tripped record mismatch: %+v", recs[0])
	}
	if got := recs[0].ThreadNameString(); got != "worker" {
		t.Fatalf("ThreadNameString() = %q, want %q", got, "worker")
	}
}

func TestWriterOverrunDropsSilently(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "measurements-2.dat")

	w, err := OpenWriter(path, 2, false)
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}
	defer w.Close()

	var rec wire.Record
	for i := 0; i < 5; i++ {
		w.Append(&rec)
	}

	if n := w.Inserted(); n != 5 {
		t.Fatalf("Inserted() = %d, want 5", n)
	}
	if w.Capacity() != 2 {
		t.Fatalf("Capacity() = %d, want 2", w.Capacity())
	}
}

func TestWriterSealStopsFutureAppends(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "measurements-3.dat")

	w, err := OpenWriter(path, 4, false)
	if err != nil {
		t.Fatalf("OpenWriter: %v", err)
	}
	defer w.Close()

	w.Seal()

	var rec wire.Record
	if ok := w.Append(&rec); ok {
		t.Fatal("expected Append after Seal to be a no-op")
	}
}
