//go:build linux

package capture

/*
#include <pthread.h>
#include "capture.h"
*/
import "C"

// mutexKindValid mirrors the legal glibc mutex kind range (spec
// §4.1.5 "the lock's kind tag is cross-checked against the enumerated
// legal kinds").
func mutexKindValid(kind int32) bool {
	return kind >= int32(C.PTHREAD_MUTEX_NORMAL) && kind <= int32(C.PTHREAD_MUTEX_ADAPTIVE_NP)
}

// mutexSanityCheck performs the §4.1.5 mutex checks. Violations are
// diagnostics only; they never change control flow.
func mutexSanityCheck(m *C.pthread_mutex_t, caller uintptr) {
	kind := int32(C.locktrace_mutex_kind(m))
	if !mutexKindValid(kind) {
		warnf("locktrace: mutex %p has unknown kind %d (caller=0x%x)", m, kind, caller)
	}

	count := uint32(C.locktrace_mutex_count(m))
	owner := int32(C.locktrace_mutex_owner(m))
	if count != 0 && owner == 0 {
		warnf("locktrace: mutex %p has count=%d with owner=0 (caller=0x%x)", m, count, caller)
	}
}

// rwlockSanityCheck performs the §4.1.5 rw-lock checks.
func rwlockSanityCheck(rw *C.pthread_rwlock_t, caller uintptr) {
	readers := int32(C.locktrace_rwlock_readers(rw))
	writers := int32(C.locktrace_rwlock_writers(rw))
	if readers < 0 {
		warnf("locktrace: rwlock %p has suspicious readers=%d (caller=0x%x)", rw, readers, caller)
	}
	if writers < 0 || writers > 1 {
		warnf("locktrace: rwlock %p has suspicious writers=%d (caller=0x%x)", rw, writers, caller)
	}
}
