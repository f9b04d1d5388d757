package wire

import (
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

// Scheduler enumerates the scheduling classes the sidecar may report
// (spec §6.2).
type Scheduler string

const (
	SchedOther   Scheduler = "sched-other"
	SchedBatch   Scheduler = "sched-batch"
	SchedIdle    Scheduler = "sched-idle"
	SchedFIFO    Scheduler = "sched-fifo"
	SchedRR      Scheduler = "sched-rr"
	SchedUnknown Scheduler = "unknown"
)

// Sidecar is the metadata document written once at capture exit and read
// once by the analyzer (spec §3 "Sidecar", §6.2). Required keys are
// enumerated in spec §6.2; this struct carries all of them plus the
// try-variant counters needed for SPEC_FULL.md's "try-variant counters in
// the report" supplement.
type Sidecar struct {
	Hostname     string    `toml:"hostname"`
	ExeName      string    `toml:"exe_name"`
	PID          int       `toml:"pid"`
	Scheduler    Scheduler `toml:"scheduler"`
	NProcs       int       `toml:"n_procs"`
	ForkWarning  bool      `toml:"fork_warning"`
	StartTs      uint64    `toml:"start_ts"`
	EndTs        uint64    `toml:"end_ts"`

	Measurements   string `toml:"measurements"`
	UGMeasurements string `toml:"ug_measurements"`

	MutexTypeNormal     int32 `toml:"mutex_type_normal"`
	MutexTypeRecursive  int32 `toml:"mutex_type_recursive"`
	MutexTypeErrorCheck int32 `toml:"mutex_type_errorcheck"`
	MutexTypeAdaptive   int32 `toml:"mutex_type_adaptive"`

	NRecords    uint64 `toml:"n_records"`
	NRecordsMax uint64 `toml:"n_records_max"`
	UGNRecords  uint64 `toml:"ug_n_records"`

	CntMutexTrylock          uint64 `toml:"cnt_mutex_trylock"`
	CntRWLockTryRdlock       uint64 `toml:"cnt_rwlock_try_rdlock"`
	CntRWLockTryTimedRdlock  uint64 `toml:"cnt_rwlock_try_timedrdlock"`
	CntRWLockTryWrlock       uint64 `toml:"cnt_rwlock_try_wrlock"`
	CntRWLockTryTimedWrlock  uint64 `toml:"cnt_rwlock_try_timedwrlock"`

	PthreadMutexLockAddr   uint64 `toml:"pthread_mutex_lock"`
	PthreadRWLockRdlockAddr uint64 `toml:"pthread_rwlock_rdlock"`
	PthreadRWLockWrlockAddr uint64 `toml:"pthread_rwlock_wrlock"`
}

// Write serializes the sidecar as TOML to path (spec §6.2: "any equivalent
// [to JSON] is acceptable provided all of the enumerated keys are
// present" — see SPEC_FULL.md for why TOML was chosen here).
func (s *Sidecar) Write(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("locktrace: create sidecar %s: %w", path, err)
	}
	defer f.Close()

	enc := toml.NewEncoder(f)
	if err := enc.Encode(s); err != nil {
		return fmt.Errorf("locktrace: encode sidecar %s: %w", path, err)
	}
	return nil
}

// LoadSidecar reads and parses the sidecar document at path.
func LoadSidecar(path string) (*Sidecar, error) {
	var s Sidecar
	if _, err := toml.DecodeFile(path, &s); err != nil {
		return nil, fmt.Errorf("locktrace: malformed sidecar %s: %w", path, err)
	}
	if s.Measurements == "" {
		return nil, fmt.Errorf("locktrace: sidecar %s missing required key measurements", path)
	}
	return &s, nil
}

// DroppedRecords is the count of appends that lost the race against
// capacity (spec §4.1.9).
func (s *Sidecar) DroppedRecords() uint64 {
	if s.NRecords <= s.NRecordsMax {
		return 0
	}
	return s.NRecords - s.NRecordsMax
}
