// Package hash provides the call-stack fingerprint used to de-duplicate
// repeated misuse reports (spec §4.2.1, "first-plus-next" reporting).
package hash

import (
	"encoding/binary"

	"github.com/cespare/xxhash/v2"
)

// StackHash returns a 64-bit fingerprint of a call-stack prefix. Two
// reports with the same fingerprint are treated as the same call site for
// de-duplication purposes, regardless of lock address or timestamp.
//
// The hash is computed over the raw little-endian bytes of the addresses,
// not their string form, so it costs nothing beyond the copy.
func StackHash(callers []uint64) uint64 {
	if len(callers) == 0 {
		return 0
	}
	buf := make([]byte, 8*len(callers))
	for i, addr := range callers {
		binary.LittleEndian.PutUint64(buf[i*8:i*8+8], addr)
	}
	return xxhash.Sum64(buf)
}

// Digest accumulates a stack hash incrementally, for callers that already
// walk the caller array frame by frame (e.g. while also building a report
// string) and would rather not allocate an intermediate buffer.
type Digest struct {
	d *xxhash.Digest
}

// NewDigest returns an empty incremental stack-hash digest.
func NewDigest() *Digest {
	return &Digest{d: xxhash.New()}
}

// WriteAddr feeds one instruction address into the digest.
func (h *Digest) WriteAddr(addr uint64) {
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], addr)
	h.d.Write(b[:])
}

// Sum64 returns the current digest value.
func (h *Digest) Sum64() uint64 {
	return h.d.Sum64()
}
