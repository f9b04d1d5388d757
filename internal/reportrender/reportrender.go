// Package reportrender turns an analyze.Report into the two cosmetic
// output formats the CLI supports (spec §6.3 "-T html|ascii") plus the
// co-occurrence DOT/SVG picture. Rendering itself is explicitly out of
// scope (spec §1, "specified only at the interface"); this package exists
// only so -T has something to call.
package reportrender

import (
	"fmt"
	"io"

	"locktrace/internal/analyze"
)

// Format selects how the statistics report is rendered (spec §6.3
// "-T html|ascii"). Neither format emits a per-event trace.
type Format string

const (
	FormatASCII Format = "ascii"
	FormatHTML  Format = "html"
)

// Render writes report to w in the requested format.
func Render(w io.Writer, report *analyze.Report, format Format) error {
	switch format {
	case FormatASCII:
		return RenderASCII(w, report)
	case FormatHTML:
		return RenderHTML(w, report)
	default:
		return fmt.Errorf("reportrender: unknown format %q", format)
	}
}
