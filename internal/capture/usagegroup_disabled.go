//go:build linux && !usagegroup

package capture

const usageGroupEnabled = false

func openUsageWriterIfEnabled() {}
