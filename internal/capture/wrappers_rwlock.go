//go:build linux

package capture

/*
#include <pthread.h>
#include <time.h>
#include "capture.h"
*/
import "C"

import (
	"unsafe"

	"locktrace/internal/wire"
)

func rwlockInnards(rw *C.pthread_rwlock_t) wire.RWLockInnards {
	return wire.RWLockInnards{
		Readers:   uint32(C.locktrace_rwlock_readers(rw)),
		Writers:   uint32(C.locktrace_rwlock_writers(rw)),
		CurWriter: int32(C.locktrace_rwlock_cur_writer(rw)),
	}
}

func logRWEvent(rw *C.pthread_rwlock_t, action wire.Action, took uint64, rc int32, callerPC uintptr) {
	rec := newRecord(uintptr(unsafe.Pointer(rw)), action, took, rc)
	captureStack(&rec, callerPC)
	rec.RWLockInnardsSet(rwlockInnards(rw))
	appendRecord(&rec)
}

// RWReadLock implements pthread_rwlock_rdlock.
func RWReadLock(rwPtr unsafe.Pointer, callerPC uintptr) int32 {
	rw := (*C.pthread_rwlock_t)(rwPtr)
	rwlockSanityCheck(rw, callerPC)
	preLogUsage(uintptr(rwPtr), wire.ActionRWReadLock, callerPC)

	fn := origFns.rwlockRdlock.resolve()
	start := nowMonotonicNs()
	rc := int32(C.locktrace_call_rwlock_lock(C.locktrace_rwlock_lock_fn(fn), rw))
	took := nowMonotonicNs() - start

	logRWEvent(rw, wire.ActionRWReadLock, took, rc, callerPC)
	return rc
}

// RWTryReadLock implements pthread_rwlock_tryrdlock.
func RWTryReadLock(rwPtr unsafe.Pointer, callerPC uintptr) int32 {
	rw := (*C.pthread_rwlock_t)(rwPtr)
	global.cntRWLockTryRdlock.Add(1)

	fn := origFns.rwlockTryrdlock.resolve()
	rc := int32(C.locktrace_call_rwlock_lock(C.locktrace_rwlock_lock_fn(fn), rw))

	logRWEvent(rw, wire.ActionRWReadLock, 0, rc, callerPC)
	return rc
}

// RWTimedReadLock implements pthread_rwlock_timedrdlock. took reflects
// the actual wait including the timeout (spec §5 "Cancellation/timeouts").
func RWTimedReadLock(rwPtr, tsPtr unsafe.Pointer, callerPC uintptr) int32 {
	rw := (*C.pthread_rwlock_t)(rwPtr)
	ts := (*C.struct_timespec)(tsPtr)
	global.cntRWLockTryTimedRdlock.Add(1)

	fn := origFns.rwlockTimedrdlock.resolve()
	start := nowMonotonicNs()
	rc := int32(C.locktrace_call_rwlock_timedlock(C.locktrace_rwlock_timedlock_fn(fn), rw, ts))
	took := nowMonotonicNs() - start

	logRWEvent(rw, wire.ActionRWReadLock, took, rc, callerPC)
	return rc
}

// RWWriteLock implements pthread_rwlock_wrlock.
func RWWriteLock(rwPtr unsafe.Pointer, callerPC uintptr) int32 {
	rw := (*C.pthread_rwlock_t)(rwPtr)
	rwlockSanityCheck(rw, callerPC)
	preLogUsage(uintptr(rwPtr), wire.ActionRWWriteLock, callerPC)

	fn := origFns.rwlockWrlock.resolve()
	start := nowMonotonicNs()
	rc := int32(C.locktrace_call_rwlock_lock(C.locktrace_rwlock_lock_fn(fn), rw))
	took := nowMonotonicNs() - start

	logRWEvent(rw, wire.ActionRWWriteLock, took, rc, callerPC)
	return rc
}

// RWTryWriteLock implements pthread_rwlock_trywrlock.
func RWTryWriteLock(rwPtr unsafe.Pointer, callerPC uintptr) int32 {
	rw := (*C.pthread_rwlock_t)(rwPtr)
	global.cntRWLockTryWrlock.Add(1)

	fn := origFns.rwlockTrywrlock.resolve()
	rc := int32(C.locktrace_call_rwlock_lock(C.locktrace_rwlock_lock_fn(fn), rw))

	logRWEvent(rw, wire.ActionRWWriteLock, 0, rc, callerPC)
	return rc
}

// RWTimedWriteLock implements pthread_rwlock_timedwrlock.
func RWTimedWriteLock(rwPtr, tsPtr unsafe.Pointer, callerPC uintptr) int32 {
	rw := (*C.pthread_rwlock_t)(rwPtr)
	ts := (*C.struct_timespec)(tsPtr)
	global.cntRWLockTryTimedWrlock.Add(1)

	fn := origFns.rwlockTimedwrlock.resolve()
	start := nowMonotonicNs()
	rc := int32(C.locktrace_call_rwlock_timedlock(C.locktrace_rwlock_timedlock_fn(fn), rw, ts))
	took := nowMonotonicNs() - start

	logRWEvent(rw, wire.ActionRWWriteLock, took, rc, callerPC)
	return rc
}

// RWUnlock implements pthread_rwlock_unlock. The underlying primitive
// does not distinguish read from write release, so neither does the
// logged action (spec §3's RW_UNLOCK covers both).
func RWUnlock(rwPtr unsafe.Pointer, callerPC uintptr) int32 {
	rw := (*C.pthread_rwlock_t)(rwPtr)

	fn := origFns.rwlockUnlock.resolve()
	rc := int32(C.locktrace_call_rwlock_lock(C.locktrace_rwlock_lock_fn(fn), rw))

	logRWEvent(rw, wire.ActionRWUnlock, 0, rc, callerPC)
	return rc
}

// RWInit implements pthread_rwlock_init.
func RWInit(rwPtr, attrPtr unsafe.Pointer, callerPC uintptr) int32 {
	rw := (*C.pthread_rwlock_t)(rwPtr)
	a := (*C.pthread_rwlockattr_t)(attrPtr)

	fn := origFns.rwlockInit.resolve()
	rc := int32(C.locktrace_call_rwlock_init(C.locktrace_rwlock_init_fn(fn), rw, a))

	logRWEvent(rw, wire.ActionRWInit, 0, rc, callerPC)
	return rc
}

// RWDestroy implements pthread_rwlock_destroy.
func RWDestroy(rwPtr unsafe.Pointer, callerPC uintptr) int32 {
	rw := (*C.pthread_rwlock_t)(rwPtr)

	fn := origFns.rwlockDestroy.resolve()
	rc := int32(C.locktrace_call_rwlock_destroy(C.locktrace_rwlock_destroy_fn(fn), rw))

	logRWEvent(rw, wire.ActionRWDestroy, 0, rc, callerPC)
	return rc
}
