//go:build linux

package capture

/*
#include <pthread.h>
#include "capture.h"
*/
import "C"

import (
	"unsafe"

	"locktrace/internal/wire"
)

func init() {
	global.mutexTypeNormal = int32(C.PTHREAD_MUTEX_NORMAL)
	global.mutexTypeRecursive = int32(C.PTHREAD_MUTEX_RECURSIVE)
	global.mutexTypeErrorCheck = int32(C.PTHREAD_MUTEX_ERRORCHECK)
	global.mutexTypeAdaptive = int32(C.PTHREAD_MUTEX_ADAPTIVE_NP)
}

func mutexInnards(m *C.pthread_mutex_t) wire.MutexInnards {
	return wire.MutexInnards{
		Count:   uint32(C.locktrace_mutex_count(m)),
		Owner:   int32(C.locktrace_mutex_owner(m)),
		Kind:    int32(C.locktrace_mutex_kind(m)),
		Spins:   int16(C.locktrace_mutex_spins(m)),
		Elision: int16(C.locktrace_mutex_elision(m)),
	}
}

func logMutexEvent(m *C.pthread_mutex_t, action wire.Action, took uint64, rc int32, callerPC uintptr) {
	rec := newRecord(uintptr(unsafe.Pointer(m)), action, took, rc)
	captureStack(&rec, callerPC)
	rec.MutexInnardsSet(mutexInnards(m))
	appendRecord(&rec)
}

// MutexLock implements the pthread_mutex_lock wrapper (spec §4.1.1,
// §4.1.2). callerPC is the direct-caller return address as captured by
// the cgo export shim via __builtin_return_address(0), used verbatim
// in shallow-capture mode and as a fallback during re-entrant deep
// capture.
func MutexLock(mutexPtr unsafe.Pointer, callerPC uintptr) int32 {
	m := (*C.pthread_mutex_t)(mutexPtr)

	if global.env.EnforceErrChk {
		kind := int32(C.locktrace_mutex_kind(m))
		if kind == global.mutexTypeNormal || kind == global.mutexTypeAdaptive || kind == global.mutexTypeRecursive {
			C.locktrace_mutex_set_errorcheck(m)
		}
	}
	mutexSanityCheck(m, callerPC)
	preLogUsage(uintptr(mutexPtr), wire.ActionMutexLock, callerPC)

	fn := origFns.mutexLock.resolve()
	start := nowMonotonicNs()
	rc := int32(C.locktrace_call_mutex_lock(C.locktrace_mutex_lock_fn(fn), m))
	took := nowMonotonicNs() - start

	logMutexEvent(m, wire.ActionMutexLock, took, rc, callerPC)
	return rc
}

// MutexTrylock implements pthread_mutex_trylock. The spec marks
// trylock's took as 0 (it does not wait).
func MutexTrylock(mutexPtr unsafe.Pointer, callerPC uintptr) int32 {
	m := (*C.pthread_mutex_t)(mutexPtr)
	mutexSanityCheck(m, callerPC)

	global.cntMutexTrylock.Add(1)
	fn := origFns.mutexTrylock.resolve()
	rc := int32(C.locktrace_call_mutex_lock(C.locktrace_mutex_lock_fn(fn), m))

	logMutexEvent(m, wire.ActionMutexLock, 0, rc, callerPC)
	return rc
}

// MutexUnlock implements pthread_mutex_unlock.
func MutexUnlock(mutexPtr unsafe.Pointer, callerPC uintptr) int32 {
	m := (*C.pthread_mutex_t)(mutexPtr)

	fn := origFns.mutexUnlock.resolve()
	rc := int32(C.locktrace_call_mutex_lock(C.locktrace_mutex_lock_fn(fn), m))

	logMutexEvent(m, wire.ActionMutexUnlock, 0, rc, callerPC)
	return rc
}

// MutexInit implements pthread_mutex_init.
func MutexInit(mutexPtr, attrPtr unsafe.Pointer, callerPC uintptr) int32 {
	m := (*C.pthread_mutex_t)(mutexPtr)
	a := (*C.pthread_mutexattr_t)(attrPtr)

	fn := origFns.mutexInit.resolve()
	rc := int32(C.locktrace_call_mutex_init(C.locktrace_mutex_init_fn(fn), m, a))

	logMutexEvent(m, wire.ActionMutexInit, 0, rc, callerPC)
	return rc
}

// MutexDestroy implements pthread_mutex_destroy.
func MutexDestroy(mutexPtr unsafe.Pointer, callerPC uintptr) int32 {
	m := (*C.pthread_mutex_t)(mutexPtr)

	fn := origFns.mutexDestroy.resolve()
	rc := int32(C.locktrace_call_mutex_destroy(C.locktrace_mutex_destroy_fn(fn), m))

	logMutexEvent(m, wire.ActionMutexDestroy, 0, rc, callerPC)
	return rc
}
