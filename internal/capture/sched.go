//go:build linux

package capture

import (
	"golang.org/x/sys/unix"

	"locktrace/internal/wire"
)

// schedulerClass reports this process's scheduling policy for the
// sidecar's scheduler key (spec §6.2).
func schedulerClass() wire.Scheduler {
	policy, err := unix.SchedGetscheduler(0)
	if err != nil {
		return wire.SchedUnknown
	}
	switch policy {
	case unix.SCHED_OTHER:
		return wire.SchedOther
	case unix.SCHED_BATCH:
		return wire.SchedBatch
	case unix.SCHED_IDLE:
		return wire.SchedIdle
	case unix.SCHED_FIFO:
		return wire.SchedFIFO
	case unix.SCHED_RR:
		return wire.SchedRR
	default:
		return wire.SchedUnknown
	}
}
