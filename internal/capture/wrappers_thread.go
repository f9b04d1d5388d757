//go:build linux

package capture

/*
#include <pthread.h>
#include <stdlib.h>
#include "capture.h"
*/
import "C"

import (
	"unsafe"

	"locktrace/internal/wire"
)

// ThreadExiting records the THREAD_EXIT event and prunes the tid-name
// table (spec §4.1.1, §4.1.6 "THREAD_EXIT removes one"). It does the
// bookkeeping but not the delegation: pthread_exit never returns to its
// caller, so the actual call-through happens in the cgo export shim
// immediately after this returns, matching spec §4.1.2's wrapper
// lifecycle as closely as a non-returning primitive allows.
func ThreadExiting() {
	tid := gettid()
	rec := newRecord(0, wire.ActionThreadExit, 0, 0)
	appendRecord(&rec)
	global.names.remove(tid)
}

// SetName delegates to the original set-name function and, when that
// succeeds, records the label in the tid-name table (spec §4.1.6
// "set-name wrappers add an entry"). The entry is keyed by the calling
// thread's tid, even when thread names a different thread.
func SetName(threadPtr unsafe.Pointer, name string, callerPC uintptr) int32 {
	t := *(*C.pthread_t)(threadPtr)

	fn := origFns.setname.resolve()
	cname := C.CString(name)
	defer C.free(unsafe.Pointer(cname))
	rc := int32(C.locktrace_call_setname(C.locktrace_setname_fn(fn), t, cname))

	if rc == 0 {
		// Best-effort: the tid of an arbitrary pthread_t is not directly
		// obtainable portably without pthread_getthreadid_np, which is not
		// available on Linux. We key the table by the calling thread's tid,
		// matching the common case of a thread naming itself, which the
		// spec's own §6.1 wire format implies by storing the name inline on
		// the event record at capture time rather than joining it later.
		global.names.set(gettid(), name)
	}
	return rc
}
