//go:build linux

package capture

import (
	"fmt"
	"os"
	"sync"
	"sync/atomic"

	"locktrace/internal/eventlog"
	"locktrace/internal/wire"
)

// state is the process-lifetime singleton holding every piece of
// genuinely global mutable state the interposer needs (spec §9 "Global
// mutable state... Model them as process-lifetime singletons with
// explicit init/teardown. Do NOT thread them through function
// arguments; the interposer has no caller under its control.").
type state struct {
	once sync.Once

	writer  *eventlog.Writer
	ugWriter *eventlog.UsageWriter

	names *threadNameTable

	env EnvConfig

	startTs uint64
	pid     int

	forkWarning atomic.Bool
	exited      atomic.Bool

	cntMutexTrylock         atomic.Uint64
	cntRWLockTryRdlock      atomic.Uint64
	cntRWLockTryTimedRdlock atomic.Uint64
	cntRWLockTryWrlock      atomic.Uint64
	cntRWLockTryTimedWrlock atomic.Uint64

	mutexTypeNormal     int32
	mutexTypeRecursive  int32
	mutexTypeErrorCheck int32
	mutexTypeAdaptive   int32

	bufferFullWarned atomic.Bool

	eventPath string
	ugPath    string
	sidecarPath string
}

var global state

// measurementsPath and friends follow spec §6.5's fixed naming scheme.
func measurementsPath(pid int) string { return fmt.Sprintf("measurements-%d.dat", pid) }
func ugMeasurementsPath(pid int) string { return fmt.Sprintf("ug-measurements-%d.dat", pid) }
func sidecarPath(pid int) string        { return fmt.Sprintf("dump.dat.%d", pid) }

// Init runs the interposer's startup sequence (spec §4.1.7). It must be
// invoked exactly once, before the target's own main; the generated
// cgo constructor in cmd/locktrace-capture arranges that.
func Init() {
	global.once.Do(func() {
		global.env = LoadEnvConfig()
		setVerbose(global.env.Verbose)

		global.pid = os.Getpid()
		global.startTs = uint64(monotonicNowNs())

		global.eventPath = measurementsPath(global.pid)
		global.ugPath = ugMeasurementsPath(global.pid)
		global.sidecarPath = sidecarPath(global.pid)

		w, err := eventlog.OpenWriter(global.eventPath, global.env.NRecords, false)
		if err != nil {
			fatalf("locktrace: failed to initialize event buffer: %v", err)
		}
		global.writer = w

		global.names = newThreadNameTable()
		openUsageWriterIfEnabled()

		debugf("locktrace interposer active, pid=%d capacity=%d", global.pid, global.env.NRecords)
	})
}

func monotonicNowNs() uint64 {
	return uint64(nowMonotonicNs())
}

// Writer exposes the process-wide event buffer to the wrapper functions.
func Writer() *eventlog.Writer { return global.writer }

// Names exposes the tid->name table to the wrapper functions.
func Names() *threadNameTable { return global.names }

// Env exposes the loaded environment configuration.
func Env() EnvConfig { return global.env }

// MarkForkObserved sets the fork_warning flag (spec §4.1.7 "Fork").
func MarkForkObserved() {
	global.forkWarning.Store(true)
}

func newRecord(lock uintptr, action wire.Action, took uint64, rc int32) wire.Record {
	var rec wire.Record
	rec.Lock = uint64(lock)
	rec.Tid = uint32(gettid())
	rec.Action = action
	rec.Timestamp = monotonicNowNs()
	rec.Took = took
	rec.Rc = rc
	if name, ok := global.names.lookup(int32(rec.Tid)); ok {
		rec.SetThreadName(name)
	}
	return rec
}

// appendRecord writes rec through the global buffer, warning once on
// overrun (spec §4.1.9, §7 "Buffer exhaustion").
func appendRecord(rec *wire.Record) {
	if global.writer == nil {
		// A constructor in some other preloaded library invoked a hooked
		// primitive before Init ran.
		warnOnce(&initMissingWarned, "locktrace: synchronization call observed before interposer init; dropping event")
		return
	}
	if ok := global.writer.Append(rec); !ok {
		if global.bufferFullWarned.CompareAndSwap(false, true) {
			warnf("locktrace: event buffer full (capacity=%d); further events are dropped silently", global.env.NRecords)
		}
	}
}

var initMissingWarned atomic.Bool

func warnOnce(flag *atomic.Bool, msg string) {
	if flag.CompareAndSwap(false, true) {
		warnf(msg)
	}
}
