//go:build linux

// Command locktrace-capture is the interposer: a C shared object built
// with `go build -buildmode=c-shared` and loaded into a target process
// via LD_PRELOAD (spec §9 "implement as a dynamically-loadable library
// preloaded into the target process"). It replaces the synchronization
// entry points enumerated in spec §4.1.1 with wrappers that delegate to
// the originals and log events into the mmap'd buffer in
// internal/eventlog.
//
// The real C-ABI symbols (pthread_mutex_lock and friends) live in
// interpose.c, where __builtin_return_address(0) can be taken at the
// true call site; they delegate immediately to the exported Go
// functions in this package, which in turn call into internal/capture.
package main

/*
#include <stdlib.h>
*/
import "C"

import (
	"locktrace/internal/capture"
)

func init() {
	// Go's c-shared runtime startup runs package init() functions before
	// the preloading dynamic linker hands control to the target's own
	// entry point, satisfying spec §4.1.7's "Init runs before target's
	// main".
	capture.Init()
	capture.InstallSignalHandler()
}

// main is required for package main but is never invoked: a c-shared
// object has no process entry point of its own.
func main() {}
