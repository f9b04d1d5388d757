//go:build linux

// Package eventlog implements the mmap'd, fixed-size-record event buffer
// shared between the capture side and the analyze side (spec §3, §4.1.3,
// §4.1.9). The writer half is driven entirely from cgo-exported wrapper
// code in cmd/locktrace-capture; the reader half is driven by
// internal/analyze.
package eventlog

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"locktrace/internal/wire"
)

// Writer is a process-lifetime singleton backing the event file. It must
// be created once at interposer init and torn down once at exit (spec
// §4.1.7, §4.1.8). It is safe for concurrent use by many writer threads;
// the only shared mutable state is the atomic idx ticket (spec §5).
type Writer struct {
	file     *os.File
	data     []byte
	records  []wire.Record
	capacity uint64
	idx      atomic.Uint64
}

// OpenWriter creates (or truncates) path, sizes it to hold capacity
// records, memory-maps it read/write-shared, advises sequential access,
// and, when populate is set, requests eager population (spec §4.1.7).
func OpenWriter(path string, capacity uint64, populate bool) (*Writer, error) {
	size := int64(capacity) * int64(wire.RecordSize)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("locktrace: create event file %s: %w", path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("locktrace: size event file %s: %w", path, err)
	}

	flags := unix.MAP_SHARED
	if populate {
		flags |= unix.MAP_POPULATE
	}
	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, flags)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("locktrace: mmap event file %s: %w", path, err)
	}
	if err := unix.Madvise(data, unix.MADV_SEQUENTIAL); err != nil {
		// Advisory only; not fatal.
		_ = err
	}

	w := &Writer{
		file:     f,
		data:     data,
		capacity: capacity,
	}
	if size > 0 {
		w.records = unsafe.Slice((*wire.Record)(unsafe.Pointer(&data[0])), capacity)
	}
	return w, nil
}

// Append claims the next ticket and writes rec into the slot at that
// index if it falls within capacity (spec §4.1.3, §4.1.9). It reports
// whether the write happened; a false return with no error means the
// buffer is full and the record was silently dropped, matching the
// spec's overrun policy.
func (w *Writer) Append(rec *wire.Record) (wrote bool) {
	i := w.idx.Add(1) - 1
	if i >= w.capacity {
		return false
	}
	w.records[i] = *rec
	return true
}

// Inserted returns the number of append attempts so far, which may
// exceed Capacity once the buffer has overrun (spec §4.1.9).
func (w *Writer) Inserted() uint64 {
	return w.idx.Load()
}

// Capacity returns the number of record slots the buffer was sized for.
func (w *Writer) Capacity() uint64 {
	return w.capacity
}

// Seal stops accepting new writers by advancing idx past capacity, so
// that any further Append call observes an out-of-range index and
// becomes a no-op (spec §4.1.8 step 1). In-flight appends that already
// claimed a valid ticket are allowed to finish; this is a documented,
// benign race.
func (w *Writer) Seal() {
	for {
		cur := w.idx.Load()
		if cur >= w.capacity {
			return
		}
		if w.idx.CompareAndSwap(cur, w.capacity) {
			return
		}
	}
}

// Close flushes the mapping synchronously, unmaps it, and closes the
// backing file (spec §4.1.8 step 2). Flush failures are reported but do
// not prevent teardown from completing (spec §7: "best-effort").
func (w *Writer) Close() error {
	var errs []error
	if len(w.data) > 0 {
		if err := unix.Msync(w.data, unix.MS_SYNC); err != nil {
			errs = append(errs, fmt.Errorf("msync: %w", err))
		}
		if err := unix.Munmap(w.data); err != nil {
			errs = append(errs, fmt.Errorf("munmap: %w", err))
		}
	}
	if err := w.file.Close(); err != nil {
		errs = append(errs, fmt.Errorf("close: %w", err))
	}
	if len(errs) > 0 {
		return fmt.Errorf("locktrace: event file teardown: %v", errs)
	}
	return nil
}
