//go:build linux

package capture

// ForkObserved marks fork_warning (spec §4.1.1 "Process | fork | — (only
// sets fork_warning) | —", §4.1.7 "Fork"). The actual fork() call-through
// happens in the cgo export shim; parent and child keep writing into the
// same mapping, which is the spec's documented hazard, not a bug to fix
// here.
func ForkObserved() {
	if global.forkWarning.CompareAndSwap(false, true) {
		warnf("locktrace: fork() observed; parent and child share the event buffer (spec-documented hazard)")
	}
}
