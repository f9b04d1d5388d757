package reportrender

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"time"

	"locktrace/internal/analyze"
)

// DOT renders the co-occurrence pairs (spec §4.2.8) as a Graphviz DOT
// description: one undirected edge per pair, coloured by normalized
// closeness. Producing the description is this module's job; turning it
// into SVG is not (spec §1, "an external layout engine consumes a DOT
// description and returns SVG").
func DOT(pairs []analyze.CooccurrencePair) string {
	var b bytes.Buffer
	b.WriteString("graph cooccurrence {\n")
	for _, p := range pairs {
		weight := closenessColor(p.Closeness)
		fmt.Fprintf(&b, "  \"0x%x\" -- \"0x%x\" [label=\"%d\", color=\"%s\"];\n", p.A, p.B, p.PairCount, weight)
	}
	b.WriteString("}\n")
	return b.String()
}

// closenessColor maps a [0,1] closeness value to a grayscale edge color,
// darker meaning closer.
func closenessColor(closeness float64) string {
	if closeness < 0 {
		closeness = 0
	}
	if closeness > 1 {
		closeness = 1
	}
	gray := int(255 - closeness*255)
	return fmt.Sprintf("#%02x%02x%02x", gray, gray, gray)
}

// RenderSVG shells out to an external layout engine (Graphviz's `dot` by
// default) to turn a DOT description into SVG, exactly as spec §1
// specifies: never reimplemented in Go.
func RenderSVG(ctx context.Context, layoutEnginePath, dot string) ([]byte, error) {
	if layoutEnginePath == "" {
		layoutEnginePath = "dot"
	}

	cmd := exec.CommandContext(ctx, layoutEnginePath, "-Tsvg")
	cmd.Stdin = bytes.NewReader([]byte(dot))

	out, err := cmd.Output()
	if err != nil {
		return nil, fmt.Errorf("reportrender: layout engine %q failed: %w", layoutEnginePath, err)
	}
	return out, nil
}

// DefaultLayoutTimeout bounds how long the layout-engine subprocess may
// run before RenderSVG's caller should give up.
const DefaultLayoutTimeout = 30 * time.Second
