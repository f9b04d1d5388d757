//go:build linux

package main

/*
#include <pthread.h>
#include <time.h>
*/
import "C"

import (
	"unsafe"

	"locktrace/internal/capture"
)

//export goRWReadLock
func goRWReadLock(rw *C.pthread_rwlock_t, caller unsafe.Pointer) C.int {
	return C.int(capture.RWReadLock(unsafe.Pointer(rw), uintptr(caller)))
}

//export goRWTryReadLock
func goRWTryReadLock(rw *C.pthread_rwlock_t, caller unsafe.Pointer) C.int {
	return C.int(capture.RWTryReadLock(unsafe.Pointer(rw), uintptr(caller)))
}

//export goRWTimedReadLock
func goRWTimedReadLock(rw *C.pthread_rwlock_t, ts *C.struct_timespec, caller unsafe.Pointer) C.int {
	return C.int(capture.RWTimedReadLock(unsafe.Pointer(rw), unsafe.Pointer(ts), uintptr(caller)))
}

//export goRWWriteLock
func goRWWriteLock(rw *C.pthread_rwlock_t, caller unsafe.Pointer) C.int {
	return C.int(capture.RWWriteLock(unsafe.Pointer(rw), uintptr(caller)))
}

//export goRWTryWriteLock
func goRWTryWriteLock(rw *C.pthread_rwlock_t, caller unsafe.Pointer) C.int {
	return C.int(capture.RWTryWriteLock(unsafe.Pointer(rw), uintptr(caller)))
}

//export goRWTimedWriteLock
func goRWTimedWriteLock(rw *C.pthread_rwlock_t, ts *C.struct_timespec, caller unsafe.Pointer) C.int {
	return C.int(capture.RWTimedWriteLock(unsafe.Pointer(rw), unsafe.Pointer(ts), uintptr(caller)))
}

//export goRWUnlock
func goRWUnlock(rw *C.pthread_rwlock_t, caller unsafe.Pointer) C.int {
	return C.int(capture.RWUnlock(unsafe.Pointer(rw), uintptr(caller)))
}

//export goRWInit
func goRWInit(rw *C.pthread_rwlock_t, attr *C.pthread_rwlockattr_t, caller unsafe.Pointer) C.int {
	return C.int(capture.RWInit(unsafe.Pointer(rw), unsafe.Pointer(attr), uintptr(caller)))
}

//export goRWDestroy
func goRWDestroy(rw *C.pthread_rwlock_t, caller unsafe.Pointer) C.int {
	return C.int(capture.RWDestroy(unsafe.Pointer(rw), uintptr(caller)))
}
