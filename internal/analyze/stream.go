// Package analyze implements the offline passes that turn an event stream
// plus its sidecar into a diagnostic report (spec §4.2): error listing,
// mutex/rw-lock mis-use detection, still-held-at-exit detection, duration
// statistics, "where used", and lock co-occurrence. Every pass shares the
// same stream and the same "ignore non-zero rc" rule.
package analyze

import "locktrace/internal/wire"

// Stream is the ordered event sequence every pass iterates over, as loaded
// from the mmap'd event file (spec §4.2, opening paragraph: "ordering along
// the event stream as written").
type Stream struct {
	Records []wire.Record
}

// NewStream wraps an already-loaded record slice (typically
// (*eventlog.Reader).Records()).
func NewStream(records []wire.Record) *Stream {
	return &Stream{Records: records}
}

// Len returns the number of records in the stream.
func (s *Stream) Len() int { return len(s.Records) }

// EachSuccess calls fn with the index and record for every event whose rc
// is zero, in stream order. Passes that build state machines from
// successful calls (§4.2.2–§4.2.8) iterate this way; passes that need the
// failures too (§4.2.1) iterate s.Records directly.
func (s *Stream) EachSuccess(fn func(i int, rec *wire.Record)) {
	for i := range s.Records {
		rec := &s.Records[i]
		if rec.Rc != 0 {
			continue
		}
		fn(i, rec)
	}
}
