// Package wire defines the on-disk event record and sidecar layouts shared
// by the capture side (internal/capture) and the analyze side
// (internal/analyze). Changing either layout is a compatibility break, per
// spec §6.1.
package wire

import (
	"encoding/binary"
	"unsafe"
)

// MaxCallers is D from spec §3: the number of instruction-address slots in
// a call-stack sample, youngest frame first, null-terminated.
const MaxCallers = 8

// ThreadNameLen is the fixed, null-padded thread-name field width. Linux
// pthread_setname_np caps names at 16 bytes including the terminator.
const ThreadNameLen = 16

// Action tags one event record. The numeric values are part of the wire
// format; do not reorder.
type Action uint32

const (
	ActionMutexLock Action = iota
	ActionMutexUnlock
	ActionRWReadLock
	ActionRWWriteLock
	ActionRWUnlock
	ActionMutexInit
	ActionMutexDestroy
	ActionRWInit
	ActionRWDestroy
	ActionThreadExit
)

func (a Action) String() string {
	switch a {
	case ActionMutexLock:
		return "MUTEX_LOCK"
	case ActionMutexUnlock:
		return "MUTEX_UNLOCK"
	case ActionRWReadLock:
		return "RW_READ_LOCK"
	case ActionRWWriteLock:
		return "RW_WRITE_LOCK"
	case ActionRWUnlock:
		return "RW_UNLOCK"
	case ActionMutexInit:
		return "MUTEX_INIT"
	case ActionMutexDestroy:
		return "MUTEX_DESTROY"
	case ActionRWInit:
		return "RW_INIT"
	case ActionRWDestroy:
		return "RW_DESTROY"
	case ActionThreadExit:
		return "THREAD_EXIT"
	default:
		return "UNKNOWN"
	}
}

// IsMutex reports whether the action operates on a plain mutex.
func (a Action) IsMutex() bool {
	switch a {
	case ActionMutexLock, ActionMutexUnlock, ActionMutexInit, ActionMutexDestroy:
		return true
	default:
		return false
	}
}

// IsRWLock reports whether the action operates on a reader/writer lock.
func (a Action) IsRWLock() bool {
	switch a {
	case ActionRWReadLock, ActionRWWriteLock, ActionRWUnlock, ActionRWInit, ActionRWDestroy:
		return true
	default:
		return false
	}
}

// KindSpecificSize is the byte width of the tagged-union payload (spec §3).
// It holds either arm: the mutex innards use 16 bytes, the rwlock innards
// 12, and the remaining bytes stay zero.
const KindSpecificSize = 24

// MutexInnards mirrors glibc's pthread_mutex_t internal counters as
// captured advisorily at event time (spec §3: "these fields are advisory;
// they read concurrently-mutated fields and are not required to be
// consistent").
type MutexInnards struct {
	Count   uint32
	Owner   int32
	Kind    int32
	Spins   int16
	Elision int16
}

// RWLockInnards mirrors glibc's pthread_rwlock_t internal counters.
type RWLockInnards struct {
	Readers   uint32
	Writers   uint32
	CurWriter int32
}

// Record is one fixed-size, naturally-aligned event record (spec §3, §6.1).
// Field order matches lock_trace_item_t in
// _examples/original_source/lock_tracer.h, with Go-native types substituted
// for the C union.
type Record struct {
	Caller      [MaxCallers]uint64
	Lock        uint64
	Tid         uint32
	Action      Action
	Timestamp   uint64
	Took        uint64
	ThreadName  [ThreadNameLen]byte
	KindSpecific [KindSpecificSize]byte
	Rc          int32
	_           [4]byte // pad to 8-byte alignment
}

// RecordSize is the on-disk size of one Record. It must match
// unsafe.Sizeof(Record{}) exactly; a mismatch means the struct definition
// above and this constant have drifted, which is itself a compatibility
// break per spec §6.1.
const RecordSize = int(unsafe.Sizeof(Record{}))

// MutexInnardsGet decodes the KindSpecific payload as mutex counters.
func (r *Record) MutexInnardsGet() MutexInnards {
	var m MutexInnards
	b := r.KindSpecific[:]
	m.Count = binary.LittleEndian.Uint32(b[0:4])
	m.Owner = int32(binary.LittleEndian.Uint32(b[4:8]))
	m.Kind = int32(binary.LittleEndian.Uint32(b[8:12]))
	m.Spins = int16(binary.LittleEndian.Uint16(b[12:14]))
	m.Elision = int16(binary.LittleEndian.Uint16(b[14:16]))
	return m
}

// MutexInnardsSet encodes mutex counters into the KindSpecific payload.
func (r *Record) MutexInnardsSet(m MutexInnards) {
	b := r.KindSpecific[:]
	binary.LittleEndian.PutUint32(b[0:4], m.Count)
	binary.LittleEndian.PutUint32(b[4:8], uint32(m.Owner))
	binary.LittleEndian.PutUint32(b[8:12], uint32(m.Kind))
	binary.LittleEndian.PutUint16(b[12:14], uint16(m.Spins))
	binary.LittleEndian.PutUint16(b[14:16], uint16(m.Elision))
}

// RWLockInnardsGet decodes the KindSpecific payload as rwlock counters.
func (r *Record) RWLockInnardsGet() RWLockInnards {
	var w RWLockInnards
	b := r.KindSpecific[:]
	w.Readers = binary.LittleEndian.Uint32(b[0:4])
	w.Writers = binary.LittleEndian.Uint32(b[4:8])
	w.CurWriter = int32(binary.LittleEndian.Uint32(b[8:12]))
	return w
}

// RWLockInnardsSet encodes rwlock counters into the KindSpecific payload.
func (r *Record) RWLockInnardsSet(w RWLockInnards) {
	b := r.KindSpecific[:]
	binary.LittleEndian.PutUint32(b[0:4], w.Readers)
	binary.LittleEndian.PutUint32(b[4:8], w.Writers)
	binary.LittleEndian.PutUint32(b[8:12], uint32(w.CurWriter))
}

// ThreadNameString returns the null-terminated thread name as a Go string.
func (r *Record) ThreadNameString() string {
	n := 0
	for n < len(r.ThreadName) && r.ThreadName[n] != 0 {
		n++
	}
	return string(r.ThreadName[:n])
}

// SetThreadName copies name into ThreadName, truncating and null-padding
// to ThreadNameLen-1 usable bytes.
func (r *Record) SetThreadName(name string) {
	for i := range r.ThreadName {
		r.ThreadName[i] = 0
	}
	n := len(name)
	if n > ThreadNameLen-1 {
		n = ThreadNameLen - 1
	}
	copy(r.ThreadName[:n], name[:n])
}

// CallerPrefix returns the meaningful (non-null) prefix of the caller
// array, per spec §3 ("the sentinel terminates the meaningful prefix").
func (r *Record) CallerPrefix() []uint64 {
	for i, addr := range r.Caller {
		if addr == 0 {
			return r.Caller[:i]
		}
	}
	return r.Caller[:]
}

// UsageRecord is the optional, lighter secondary event (spec §3), used by
// the "who is contending" usage-group trail (SPEC_FULL.md "Supplemented
// features").
type UsageRecord struct {
	Timestamp  uint64
	Lock       uint64
	Tid        uint32
	ThreadName [ThreadNameLen]byte
	Action     Action
	Caller     uint64
}

// UsageRecordSize is the on-disk size of one UsageRecord.
const UsageRecordSize = int(unsafe.Sizeof(UsageRecord{}))

// ThreadNameString returns the null-terminated thread name as a Go string.
func (u *UsageRecord) ThreadNameString() string {
	n := 0
	for n < len(u.ThreadName) && u.ThreadName[n] != 0 {
		n++
	}
	return string(u.ThreadName[:n])
}

// SetThreadName copies name into ThreadName, truncating and null-padding
// to ThreadNameLen-1 usable bytes.
func (u *UsageRecord) SetThreadName(name string) {
	for i := range u.ThreadName {
		u.ThreadName[i] = 0
	}
	n := len(name)
	if n > ThreadNameLen-1 {
		n = ThreadNameLen - 1
	}
	copy(u.ThreadName[:n], name[:n])
}
