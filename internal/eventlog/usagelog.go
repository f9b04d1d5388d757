//go:build linux

package eventlog

import (
	"fmt"
	"os"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/unix"

	"locktrace/internal/wire"
)

// UsageWriter backs the optional, compile-time-switchable usage-group
// trail (spec §3 "Usage-group record", SPEC_FULL.md supplement). It is
// structurally identical to Writer but over the smaller UsageRecord
// type, so it is kept as a separate small type rather than made generic
// over the record type: the two logs have different lifecycle knobs
// (the usage-group log is optional and can be nil).
type UsageWriter struct {
	file     *os.File
	data     []byte
	records  []wire.UsageRecord
	capacity uint64
	idx      atomic.Uint64
}

// OpenUsageWriter mirrors OpenWriter for the usage-group blob.
func OpenUsageWriter(path string, capacity uint64) (*UsageWriter, error) {
	size := int64(capacity) * int64(wire.UsageRecordSize)

	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("locktrace: create usage-group file %s: %w", path, err)
	}
	if err := f.Truncate(size); err != nil {
		f.Close()
		return nil, fmt.Errorf("locktrace: size usage-group file %s: %w", path, err)
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("locktrace: mmap usage-group file %s: %w", path, err)
	}

	w := &UsageWriter{file: f, data: data, capacity: capacity}
	if size > 0 {
		w.records = unsafe.Slice((*wire.UsageRecord)(unsafe.Pointer(&data[0])), capacity)
	}
	return w, nil
}

// Append behaves like Writer.Append, over UsageRecord.
func (w *UsageWriter) Append(rec *wire.UsageRecord) bool {
	i := w.idx.Add(1) - 1
	if i >= w.capacity {
		return false
	}
	w.records[i] = *rec
	return true
}

// Inserted returns the number of append attempts so far.
func (w *UsageWriter) Inserted() uint64 {
	return w.idx.Load()
}

// Close flushes and unmaps the usage-group blob.
func (w *UsageWriter) Close() error {
	var errs []error
	if len(w.data) > 0 {
		if err := unix.Msync(w.data, unix.MS_SYNC); err != nil {
			errs = append(errs, err)
		}
		if err := unix.Munmap(w.data); err != nil {
			errs = append(errs, err)
		}
	}
	if err := w.file.Close(); err != nil {
		errs = append(errs, err)
	}
	if len(errs) > 0 {
		return fmt.Errorf("locktrace: usage-group file teardown: %v", errs)
	}
	return nil
}

// UsageReader is the analyzer-side read-only view of a usage-group blob.
type UsageReader struct {
	file    *os.File
	data    []byte
	records []wire.UsageRecord
}

// OpenUsageReader maps path and bounds the view to nRecords.
func OpenUsageReader(path string, nRecords uint64) (*UsageReader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("locktrace: open usage-group file %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("locktrace: stat usage-group file %s: %w", path, err)
	}
	size := st.Size()
	if size == 0 {
		return &UsageReader{file: f}, nil
	}

	maxRecords := uint64(size) / uint64(wire.UsageRecordSize)
	if nRecords > maxRecords {
		nRecords = maxRecords
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("locktrace: mmap usage-group file %s: %w", path, err)
	}

	r := &UsageReader{file: f, data: data}
	all := unsafe.Slice((*wire.UsageRecord)(unsafe.Pointer(&data[0])), maxRecords)
	r.records = all[:nRecords]
	return r, nil
}

// Records returns the mapped, bounded view in insertion order.
func (r *UsageReader) Records() []wire.UsageRecord {
	return r.records
}

// Close unmaps the file and closes the descriptor.
func (r *UsageReader) Close() error {
	var errs []error
	if len(r.data) > 0 {
		if err := unix.Munmap(r.data); err != nil {
			errs = append(errs, err)
		}
	}
	if r.file != nil {
		if err := r.file.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return fmt.Errorf("locktrace: usage-group file teardown: %v", errs)
	}
	return nil
}
