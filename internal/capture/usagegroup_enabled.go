//go:build linux && usagegroup

package capture

import "locktrace/internal/eventlog"

// usageGroupEnabled is a compile-time switch (spec §3 "Usage-group
// record... optional, compile-time-switchable"). Build with
// `-tags usagegroup` to include the lighter contention trail.
const usageGroupEnabled = true

func openUsageWriterIfEnabled() {
	w, err := eventlog.OpenUsageWriter(global.ugPath, global.env.NRecords)
	if err != nil {
		warnf("locktrace: failed to open usage-group buffer: %v", err)
		return
	}
	global.ugWriter = w
}
