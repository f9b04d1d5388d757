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

//export goThreadExiting
func goThreadExiting() {
	capture.ThreadExiting()
}

//export goSetName
func goSetName(thread *C.pthread_t, name *C.char, caller unsafe.Pointer) C.int {
	return C.int(capture.SetName(unsafe.Pointer(thread), C.GoString(name), uintptr(caller)))
}

//export goForkObserved
func goForkObserved() {
	capture.ForkObserved()
}

//export goCaptureExit
func goCaptureExit() {
	capture.Exit()
}
