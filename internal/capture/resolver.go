//go:build linux

package capture

/*
#cgo LDFLAGS: -ldl
#define _GNU_SOURCE
#include <dlfcn.h>
#include <stdlib.h>
#include "capture.h"
*/
import "C"

import (
	"sync/atomic"
	"unsafe"
)

// symbolCache lazily resolves one libc/libpthread symbol via
// dlsym(RTLD_NEXT, ...) and caches the result (spec §4.1.2 step 1,
// §5 "once-written function-pointer caches"). The cached value is the
// raw address of C code in an already-loaded shared library, not a Go
// heap pointer, so round-tripping it through uintptr between calls is
// safe; a plain atomic load/store is all the spec requires ("no locking
// is required because pointer-width stores are atomic on the intended
// targets").
type symbolCache struct {
	addr atomic.Uintptr
	name string
}

// resolve returns the cached address, resolving it on first use. Two
// threads racing to resolve the same symbol both call dlsym and both
// store the (identical) result; the race is benign.
func (c *symbolCache) resolve() unsafe.Pointer {
	if a := c.addr.Load(); a != 0 {
		return unsafe.Pointer(a)
	}
	cname := C.CString(c.name)
	defer C.free(unsafe.Pointer(cname))
	p := C.dlsym(C.RTLD_NEXT, cname)
	if p == nil {
		fatalf("locktrace: could not resolve original symbol %q: %s", c.name, C.GoString(C.dlerror()))
	}
	c.addr.Store(uintptr(p))
	return p
}

func newSymbolCache(name string) *symbolCache {
	return &symbolCache{name: name}
}

// origFns holds one symbolCache per interposed entry point (spec
// §4.1.1). Each is resolved independently and lazily on first call from
// the target program, never eagerly at init, since the interposer has
// no guarantee any given primitive is ever used.
var origFns = struct {
	mutexLock     *symbolCache
	mutexTrylock  *symbolCache
	mutexUnlock   *symbolCache
	mutexInit     *symbolCache
	mutexDestroy  *symbolCache

	rwlockRdlock      *symbolCache
	rwlockTryrdlock   *symbolCache
	rwlockTimedrdlock *symbolCache
	rwlockWrlock      *symbolCache
	rwlockTrywrlock   *symbolCache
	rwlockTimedwrlock *symbolCache
	rwlockUnlock      *symbolCache
	rwlockInit        *symbolCache
	rwlockDestroy     *symbolCache

	threadExit *symbolCache
	setname    *symbolCache
	fork       *symbolCache
}{
	mutexLock:    newSymbolCache("pthread_mutex_lock"),
	mutexTrylock: newSymbolCache("pthread_mutex_trylock"),
	mutexUnlock:  newSymbolCache("pthread_mutex_unlock"),
	mutexInit:    newSymbolCache("pthread_mutex_init"),
	mutexDestroy: newSymbolCache("pthread_mutex_destroy"),

	rwlockRdlock:      newSymbolCache("pthread_rwlock_rdlock"),
	rwlockTryrdlock:   newSymbolCache("pthread_rwlock_tryrdlock"),
	rwlockTimedrdlock: newSymbolCache("pthread_rwlock_timedrdlock"),
	rwlockWrlock:      newSymbolCache("pthread_rwlock_wrlock"),
	rwlockTrywrlock:   newSymbolCache("pthread_rwlock_trywrlock"),
	rwlockTimedwrlock: newSymbolCache("pthread_rwlock_timedwrlock"),
	rwlockUnlock:      newSymbolCache("pthread_rwlock_unlock"),
	rwlockInit:        newSymbolCache("pthread_rwlock_init"),
	rwlockDestroy:     newSymbolCache("pthread_rwlock_destroy"),

	threadExit: newSymbolCache("pthread_exit"),
	setname:    newSymbolCache("pthread_setname_np"),
	fork:       newSymbolCache("fork"),
}
