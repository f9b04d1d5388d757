//go:build linux

package capture

/*
#cgo LDFLAGS: -ldl
#include <execinfo.h>
#include <stdlib.h>
#include "capture.h"

static int locktrace_backtrace(void **buf, int depth) {
	return backtrace(buf, depth);
}
*/
import "C"

import (
	"unsafe"

	"locktrace/internal/wire"
)

// deepBacktrace is a build-time choice (spec §4.1.4): compile with deep
// stack walking via libc backtrace(), or fall back to the shallow
// single-frame mode. This module is built deep by default; set to
// false to match the "shallow" build variant without touching callers.
const deepBacktrace = true

func gettid() int32 {
	return int32(C.locktrace_gettid())
}

func nowMonotonicNs() uint64 {
	return uint64(C.locktrace_monotonic_ns())
}

// captureStack fills rec.Caller with up to wire.MaxCallers return
// addresses (spec §4.1.4). shallowCaller is the direct caller address
// as captured by the wrapper itself via __builtin_return_address,
// passed in because Go cannot express that builtin; wrappers obtain it
// through callerPC.
func captureStack(rec *wire.Record, shallowCaller uintptr) {
	if !deepBacktrace {
		rec.Caller[0] = uint64(shallowCaller)
		return
	}

	if C.locktrace_guard_enter() == 0 {
		// Already walking a stack on this OS thread (spec §5
		// "Re-entrance"): some backtrace implementations themselves take
		// locks that route back through this interposer. Fall back to the
		// shallow caller rather than recursing.
		rec.Caller[0] = uint64(shallowCaller)
		return
	}
	defer C.locktrace_guard_exit()

	var buf [wire.MaxCallers]unsafe.Pointer
	n := int(C.locktrace_backtrace((*unsafe.Pointer)(unsafe.Pointer(&buf[0])), C.int(wire.MaxCallers)))
	for i := 0; i < wire.MaxCallers; i++ {
		if i < n {
			rec.Caller[i] = uint64(uintptr(buf[i]))
		} else {
			rec.Caller[i] = 0
		}
	}
}
