package reportrender

import (
	"fmt"
	"io"

	"locktrace/internal/analyze"
)

// RenderHTML writes an HTML rendering of report, grounded directly on
// _examples/original_source/analyzer.cpp's table-based layout
// (put_html_header/put_mutex_details/put_html_tail) and extended to cover
// every pass SPEC_FULL.md adds beyond the original's error/double-lock/
// still-locked sections.
func RenderHTML(w io.Writer, report *analyze.Report) error {
	fmt.Fprint(w, "<!DOCTYPE html>\n<html><head>\n")
	fmt.Fprint(w, `<style>table{font-size:16px;font-family:"Trebuchet MS",Arial,Helvetica,sans-serif;border-collapse:collapse;border-spacing:0;width:100%}td,th{border:1px solid #ddd;text-align:left;padding:8px}tr:nth-child(even){background-color:#f2f2f2}th{padding-top:11px;padding-bottom:11px;background-color:#04aa6d;color:#fff}h1,h2,h3{font-family:monospace;margin-top:2.2em;}</style>`)
	fmt.Fprint(w, "\n<title>lock trace</title></head><body>\n<h1>LOCK TRACE</h1>\n")

	if report.Sidecar != nil {
		s := report.Sidecar
		fmt.Fprint(w, "<h2 id=\"meta\">META DATA</h2>\n<table>\n")
		fmt.Fprintf(w, "<tr><td>executable:</td><td>%s</td></tr>\n", s.ExeName)
		fmt.Fprintf(w, "<tr><td>PID:</td><td>%d</td></tr>\n", s.PID)
		fmt.Fprintf(w, "<tr><td>hostname:</td><td>%s</td></tr>\n", s.Hostname)
		fmt.Fprintf(w, "<tr><td>scheduler:</td><td>%s</td></tr>\n", s.Scheduler)
		fmt.Fprintf(w, "<tr><td>fork warning:</td><td>%v</td></tr>\n", s.ForkWarning)
		fmt.Fprintf(w, "<tr><td># records:</td><td>%d / %d (dropped %d)</td></tr>\n", report.RecordCount, s.NRecordsMax, report.DroppedRecords)
		fmt.Fprint(w, "</table>\n")
	}

	fmt.Fprintf(w, "<h2 id=\"errors\">function call errors</h2>\n<p>Count: %d</p>\n", len(report.Errors))
	for _, g := range report.Errors {
		fmt.Fprintf(w, "<h3>rc=%d</h3>\n<table>\n", g.Rc)
		for _, site := range g.Stes {
			fmt.Fprintf(w, "<tr><td>stack</td><td>%016x%s</td><td>first</td><td>%d</td><td>count</td><td>%d</td></tr>\n", site.StackHash, symbolSuffix(report, site.StackHash), site.First, site.Count)
		}
		fmt.Fprint(w, "</table>\n")
	}

	renderMisuseHTML(w, report, "doublem", "mutex lock/unlock mistakes", report.MutexMisuse)
	renderMisuseHTML(w, report, "doublerw", "rw-lock lock/unlock mistakes", report.RWMisuse)

	fmt.Fprintf(w, "<h2 id=\"stillm\">still locked mutexes</h2>\n<p>Count: %d</p>\n", len(report.StillHeldMutexes))
	for _, g := range report.StillHeldMutexes {
		fmt.Fprintf(w, "<h3>mutex 0x%x</h3><p>indices: %v</p>\n", g.Lock, g.Indices)
	}

	fmt.Fprintf(w, "<h2 id=\"stillrw\">still locked rw-locks</h2>\n<p>Count: %d</p>\n", len(report.StillHeldRWLocks))
	for _, g := range report.StillHeldRWLocks {
		fmt.Fprintf(w, "<h3>rwlock 0x%x</h3><p>indices: %v</p>\n", g.Lock, g.Indices)
	}

	fmt.Fprint(w, "<h2 id=\"durations\">locking durations</h2>\n<table>\n")
	fmt.Fprint(w, "<tr><th>category</th><th>acquire mean</th><th>acquire stddev</th><th>acquire max</th><th>hold mean</th><th>hold stddev</th><th>hold max</th></tr>\n")
	for cat, rep := range report.Durations {
		fmt.Fprintf(w, "<tr><td>%s</td><td>%.0f</td><td>%.0f</td><td>%d</td><td>%.0f</td><td>%.0f</td><td>%d</td></tr>\n",
			cat, rep.Acquisition.Mean, rep.Acquisition.Stddev, rep.Acquisition.Max, rep.Hold.Mean, rep.Hold.Stddev, rep.Hold.Max)
	}
	fmt.Fprint(w, "</table>\n")

	fmt.Fprintf(w, "<h2 id=\"lastmutexuse\">where locks were used</h2>\n<p>Locks: %d</p>\n", len(report.WhereUsed))
	for lock, sites := range report.WhereUsed {
		fmt.Fprintf(w, "<h3>lock 0x%x</h3><p>%d distinct call-sites</p>\n", lock, len(sites))
	}

	if report.Cooccurrence != nil {
		fmt.Fprintf(w, "<h2 id=\"cooccur\">lock co-occurrence</h2>\n<p>Pairs: %d</p>\n<table>\n", len(report.Cooccurrence))
		for _, p := range report.Cooccurrence {
			fmt.Fprintf(w, "<tr><td>0x%x</td><td>0x%x</td><td>%d</td><td>%.3f</td></tr>\n", p.A, p.B, p.PairCount, p.Closeness)
		}
		fmt.Fprint(w, "</table>\n")
	}

	if report.UsageGroup != nil {
		fmt.Fprintf(w, "<h2 id=\"usagegroup\">usage group</h2>\n<p>Locks: %d</p>\n", len(report.UsageGroup))
		for lock, contenders := range report.UsageGroup {
			fmt.Fprintf(w, "<h3>lock 0x%x</h3>\n<table>\n", lock)
			for _, c := range contenders {
				fmt.Fprintf(w, "<tr><td>tid</td><td>%d</td><td>name</td><td>%s</td><td>attempts</td><td>%d</td></tr>\n", c.Tid, c.ThreadName, c.AttemptCount)
			}
			fmt.Fprint(w, "</table>\n")
		}
	}

	fmt.Fprint(w, "</body></html>\n")
	return nil
}

func renderMisuseHTML(w io.Writer, report *analyze.Report, anchor, title string, groups []analyze.MisuseGroup) {
	fmt.Fprintf(w, "<h2 id=\"%s\">%s</h2>\n<p>Count: %d</p>\n", anchor, title, len(groups))
	for _, g := range groups {
		fmt.Fprintf(w, "<h3>lock 0x%x, kind \"%s\"</h3>\n<table>\n", g.Lock, g.Kind)
		for _, site := range g.Sites {
			fmt.Fprintf(w, "<tr><td>tid</td><td>%d</td><td>stack</td><td>%016x%s</td><td>first</td><td>%d</td><td>count</td><td>%d</td></tr>\n",
				site.Tid, site.StackHash, symbolSuffix(report, site.StackHash), site.First, site.Count)
		}
		fmt.Fprint(w, "</table>\n")
	}
}
