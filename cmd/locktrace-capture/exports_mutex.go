//go:build linux

package main

/*
#include <pthread.h>
*/
import "C"

import (
	"unsafe"

	"locktrace/internal/capture"
)

//export goMutexLock
func goMutexLock(mutex *C.pthread_mutex_t, caller unsafe.Pointer) C.int {
	return C.int(capture.MutexLock(unsafe.Pointer(mutex), uintptr(caller)))
}

//export goMutexTrylock
func goMutexTrylock(mutex *C.pthread_mutex_t, caller unsafe.Pointer) C.int {
	return C.int(capture.MutexTrylock(unsafe.Pointer(mutex), uintptr(caller)))
}

//export goMutexUnlock
func goMutexUnlock(mutex *C.pthread_mutex_t, caller unsafe.Pointer) C.int {
	return C.int(capture.MutexUnlock(unsafe.Pointer(mutex), uintptr(caller)))
}

//export goMutexInit
func goMutexInit(mutex *C.pthread_mutex_t, attr *C.pthread_mutexattr_t, caller unsafe.Pointer) C.int {
	return C.int(capture.MutexInit(unsafe.Pointer(mutex), unsafe.Pointer(attr), uintptr(caller)))
}

//export goMutexDestroy
func goMutexDestroy(mutex *C.pthread_mutex_t, caller unsafe.Pointer) C.int {
	return C.int(capture.MutexDestroy(unsafe.Pointer(mutex), uintptr(caller)))
}
