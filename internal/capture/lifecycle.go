//go:build linux

package capture

import (
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"

	"locktrace/internal/wire"
)

// Exit runs the interposer's shutdown sequence exactly once (spec
// §4.1.8). It is safe to call from both the cgo destructor and a signal
// handler; the second caller is a no-op.
var exitOnce sync.Once

func Exit() {
	exitOnce.Do(func() {
		global.exited.Store(true)

		var inserted, capacity uint64
		if global.writer != nil {
			// Step 1: read the insertion count, then stop new writers.
			inserted = global.writer.Inserted()
			global.writer.Seal()
			capacity = global.writer.Capacity()

			// Step 2: flush, unmap, close.
			if err := global.writer.Close(); err != nil {
				warnf("locktrace: %v", err)
			}
		}

		var ugInserted uint64
		ugPath := ""
		if global.ugWriter != nil {
			ugInserted = global.ugWriter.Inserted()
			ugPath = global.ugPath
			if err := global.ugWriter.Close(); err != nil {
				warnf("locktrace: %v", err)
			}
		}

		// Step 3: write the sidecar.
		sc := buildSidecar(inserted, capacity, ugInserted, ugPath)
		if err := sc.Write(global.sidecarPath); err != nil {
			warnf("locktrace: failed to write sidecar: %v", err)
		}

		// Step 4: tear down the tid-name table. There is no explicit Go
		// object to free; dropping the reference lets it be collected.
		global.names = nil
	})
}

func buildSidecar(inserted, capacity, ugInserted uint64, ugPath string) *wire.Sidecar {
	hostname, _ := os.Hostname()

	sc := &wire.Sidecar{
		Hostname:    hostname,
		ExeName:     exeName(),
		PID:         global.pid,
		Scheduler:   schedulerClass(),
		NProcs:      runtime.NumCPU(),
		ForkWarning: global.forkWarning.Load(),
		StartTs:     global.startTs,
		EndTs:       nowMonotonicNs(),

		Measurements:   global.eventPath,
		UGMeasurements: ugPath,

		MutexTypeNormal:     global.mutexTypeNormal,
		MutexTypeRecursive:  global.mutexTypeRecursive,
		MutexTypeErrorCheck: global.mutexTypeErrorCheck,
		MutexTypeAdaptive:   global.mutexTypeAdaptive,

		NRecords:    inserted,
		NRecordsMax: capacity,
		UGNRecords:  ugInserted,

		CntMutexTrylock:         global.cntMutexTrylock.Load(),
		CntRWLockTryRdlock:      global.cntRWLockTryRdlock.Load(),
		CntRWLockTryTimedRdlock: global.cntRWLockTryTimedRdlock.Load(),
		CntRWLockTryWrlock:      global.cntRWLockTryWrlock.Load(),
		CntRWLockTryTimedWrlock: global.cntRWLockTryTimedWrlock.Load(),

		PthreadMutexLockAddr:    uint64(origFns.mutexLock.addr.Load()),
		PthreadRWLockRdlockAddr: uint64(origFns.rwlockRdlock.addr.Load()),
		PthreadRWLockWrlockAddr: uint64(origFns.rwlockWrlock.addr.Load()),
	}
	return sc
}

func exeName() string {
	exe, err := os.Executable()
	if err != nil {
		return ""
	}
	return exe
}

// InstallSignalHandler arranges for Exit to run before SIGTERM's default
// action when CAPTURE_SIGTERM is set (spec §4.1.7 "Termination signal").
func InstallSignalHandler() {
	if !global.env.CaptureSIGTERM {
		return
	}
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGTERM)
	go func() {
		<-sigCh
		Exit()
		os.Exit(143) // 128 + SIGTERM, conventional.
	}()
}
