package reportrender

import (
	"fmt"
	"io"

	"locktrace/internal/analyze"
)

// RenderASCII writes a plain-text rendering of report, grounded on the
// section order of _examples/original_source/analyze.py's HTML table of
// contents (meta, errors, mis-use, still-held, durations, where-used).
func RenderASCII(w io.Writer, report *analyze.Report) error {
	fmt.Fprintln(w, "LOCK TRACE REPORT")
	fmt.Fprintln(w, "=================")

	if report.Sidecar != nil {
		s := report.Sidecar
		fmt.Fprintf(w, "\nexecutable: %s\n", s.ExeName)
		fmt.Fprintf(w, "pid: %d\n", s.PID)
		fmt.Fprintf(w, "hostname: %s\n", s.Hostname)
		fmt.Fprintf(w, "scheduler: %s\n", s.Scheduler)
		fmt.Fprintf(w, "fork warning: %v\n", s.ForkWarning)
		fmt.Fprintf(w, "records: %d / %d (dropped %d)\n", report.RecordCount, s.NRecordsMax, report.DroppedRecords)
	}

	fmt.Fprintf(w, "\nFUNCTION CALL ERRORS (%d)\n", len(report.Errors))
	for _, g := range report.Errors {
		fmt.Fprintf(w, "  rc=%d:\n", g.Rc)
		for _, site := range g.Stes {
			fmt.Fprintf(w, "    stack=%016x%s first=%d count=%d\n", site.StackHash, symbolSuffix(report, site.StackHash), site.First, site.Count)
		}
	}

	fmt.Fprintf(w, "\nMUTEX MIS-USE (%d)\n", len(report.MutexMisuse))
	renderMisuse(w, report, report.MutexMisuse)

	fmt.Fprintf(w, "\nRW-LOCK MIS-USE (%d)\n", len(report.RWMisuse))
	renderMisuse(w, report, report.RWMisuse)

	fmt.Fprintf(w, "\nSTILL HELD MUTEXES (%d)\n", len(report.StillHeldMutexes))
	for _, g := range report.StillHeldMutexes {
		fmt.Fprintf(w, "  lock=0x%x indices=%v\n", g.Lock, g.Indices)
	}

	fmt.Fprintf(w, "\nSTILL HELD RW-LOCKS (%d)\n", len(report.StillHeldRWLocks))
	for _, g := range report.StillHeldRWLocks {
		fmt.Fprintf(w, "  lock=0x%x indices=%v\n", g.Lock, g.Indices)
	}

	fmt.Fprintln(w, "\nDURATIONS")
	for cat, rep := range report.Durations {
		fmt.Fprintf(w, "  %s: acquire mean=%.0fns stddev=%.0fns max=%dns (n=%d)\n",
			cat, rep.Acquisition.Mean, rep.Acquisition.Stddev, rep.Acquisition.Max, rep.Acquisition.Count)
		fmt.Fprintf(w, "  %s: hold    mean=%.0fns stddev=%.0fns max=%dns (n=%d)\n",
			cat, rep.Hold.Mean, rep.Hold.Stddev, rep.Hold.Max, rep.Hold.Count)
	}

	fmt.Fprintf(w, "\nWHERE USED (%d locks)\n", len(report.WhereUsed))
	for lock, sites := range report.WhereUsed {
		fmt.Fprintf(w, "  lock=0x%x: %d distinct call-sites\n", lock, len(sites))
	}

	if report.Cooccurrence != nil {
		fmt.Fprintf(w, "\nCO-OCCURRENCE (top %d pairs)\n", len(report.Cooccurrence))
		for _, p := range report.Cooccurrence {
			fmt.Fprintf(w, "  0x%x <-> 0x%x: count=%d closeness=%.3f\n", p.A, p.B, p.PairCount, p.Closeness)
		}
	}

	if report.UsageGroup != nil {
		fmt.Fprintf(w, "\nUSAGE GROUP (%d locks)\n", len(report.UsageGroup))
		for lock, contenders := range report.UsageGroup {
			fmt.Fprintf(w, "  lock=0x%x:\n", lock)
			for _, c := range contenders {
				fmt.Fprintf(w, "    tid=%d name=%q attempts=%d\n", c.Tid, c.ThreadName, c.AttemptCount)
			}
		}
	}

	return nil
}

func renderMisuse(w io.Writer, report *analyze.Report, groups []analyze.MisuseGroup) {
	for _, g := range groups {
		fmt.Fprintf(w, "  lock=0x%x kind=%s:\n", g.Lock, g.Kind)
		for _, site := range g.Sites {
			fmt.Fprintf(w, "    stack=%016x%s first=%d tid=%d count=%d\n", site.StackHash, symbolSuffix(report, site.StackHash), site.First, site.Tid, site.Count)
		}
	}
}

// symbolSuffix renders " (symbol)" when report carries a resolved name for
// hash, or "" when symbol resolution was not requested or failed.
func symbolSuffix(report *analyze.Report, hash uint64) string {
	if report.Symbols == nil {
		return ""
	}
	name, ok := report.Symbols[hash]
	if !ok || name == "" {
		return ""
	}
	return fmt.Sprintf(" (%s)", name)
}
