//go:build linux

package eventlog

import (
	"fmt"
	"os"
	"unsafe"

	"golang.org/x/sys/unix"

	"locktrace/internal/wire"
)

// Reader memory-maps an event file read-only for the analyzer (spec
// §4.2, §5 "Analyzer side"). It is single-threaded: the analyzer never
// runs two passes over the same Reader concurrently.
type Reader struct {
	file    *os.File
	data    []byte
	records []wire.Record
}

// OpenReader maps the event file at path and exposes it as a slice of
// wire.Record. nRecords bounds the view to the sidecar's reported
// insertion count so stale trailing slots from a larger buffer are not
// iterated (spec §4.1.9: n_records_recorded may be less than
// n_records_max).
func OpenReader(path string, nRecords uint64) (*Reader, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("locktrace: open event file %s: %w", path, err)
	}
	st, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("locktrace: stat event file %s: %w", path, err)
	}
	size := st.Size()
	if size == 0 {
		return &Reader{file: f}, nil
	}

	maxRecords := uint64(size) / uint64(wire.RecordSize)
	if nRecords > maxRecords {
		nRecords = maxRecords
	}

	data, err := unix.Mmap(int(f.Fd()), 0, int(size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("locktrace: mmap event file %s: %w", path, err)
	}
	if err := unix.Madvise(data, unix.MADV_SEQUENTIAL); err != nil {
		_ = err
	}

	r := &Reader{
		file: f,
		data: data,
	}
	all := unsafe.Slice((*wire.Record)(unsafe.Pointer(&data[0])), maxRecords)
	r.records = all[:nRecords]
	return r, nil
}

// Records returns the mapped, bounded view of the event stream in
// insertion order (spec §3 "Invariants": insertion order, not timestamp
// order).
func (r *Reader) Records() []wire.Record {
	return r.records
}

// Len returns the number of records exposed by this reader.
func (r *Reader) Len() int {
	return len(r.records)
}

// Close unmaps the file and closes the descriptor.
func (r *Reader) Close() error {
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
		return fmt.Errorf("locktrace: event file teardown: %v", errs)
	}
	return nil
}
