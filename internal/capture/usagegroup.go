//go:build linux

package capture

import "locktrace/internal/wire"

// preLogUsage records intent-to-acquire on the lighter usage-group
// trail, when built in (spec §4.1.2 step 3 "Optional usage-group
// pre-log for read/write/lock acquisitions"). It is a no-op unless
// built with `-tags usagegroup`.
func preLogUsage(lock uintptr, action wire.Action, callerPC uintptr) {
	if !usageGroupEnabled || global.ugWriter == nil {
		return
	}
	var rec wire.UsageRecord
	rec.Timestamp = monotonicNowNs()
	rec.Lock = uint64(lock)
	rec.Tid = uint32(gettid())
	rec.Action = action
	rec.Caller = uint64(callerPC)
	if name, ok := global.names.lookup(int32(rec.Tid)); ok {
		rec.SetThreadName(name)
	}
	global.ugWriter.Append(&rec)
}
