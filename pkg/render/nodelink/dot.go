package nodelink

import (
	"bytes"
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/goccy/go-graphviz"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"

	"github.com/matzehuels/stacktree/pkg/render"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// Orientation selects the layout direction.
type Orientation string

const (
	// Horizontal lays the tree out root-left to leaves-right.
	Horizontal Orientation = "horizontal"
	// Vertical lays the tree out root-top to leaves-bottom.
	Vertical Orientation = "vertical"
)

// ValidOrientations is the set of supported orientations.
var ValidOrientations = map[Orientation]bool{
	Horizontal: true,
	Vertical:   true,
}

// Options configures node-link diagram rendering.
type Options struct {
	// Orientation defaults to Horizontal.
	Orientation Orientation
	// Depth limits drawn levels below the super-root. Zero draws all.
	Depth int
	// Detailed prefixes values with the measure name.
	Detailed bool
	// Locale selects digit grouping. The zero value means English.
	Locale language.Tag
}

type nodeClass int

const (
	classRoot nodeClass = iota
	classBranch
	classLeaf
)

var classAttrs = map[nodeClass]string{
	classRoot:   `fillcolor="#2d3748", fontcolor=white, penwidth=0`,
	classBranch: `fillcolor="#e2e8f0", fontcolor="#1a202c"`,
	classLeaf:   `fillcolor=white, fontcolor="#1a202c", penwidth=0.5`,
}

// ToDOT converts a tree to Graphviz DOT format.
// The resulting DOT string can be rendered using [RenderSVG], [RenderPDF], or [RenderPNG].
//
// Nodes are given positional ids ("n0", "n1", ...) because names repeat
// across parents.
func ToDOT(root *tree.Root, opts Options) string {
	w := &dotWriter{
		printer:  newPrinter(opts.Locale),
		detailed: opts.Detailed,
		measure:  root.Measure,
	}
	w.buf.WriteString("digraph G {\n")
	fmt.Fprintf(&w.buf, "  rankdir=%s;\n", rankdir(opts.Orientation))
	w.buf.WriteString("  bgcolor=\"transparent\";\n")
	w.buf.WriteString("  node [shape=box, style=\"rounded,filled\", fontname=\"Helvetica\", fontsize=14, margin=\"0.2,0.1\"];\n")
	w.buf.WriteString("  edge [color=\"#a0aec0\", arrowhead=none];\n")
	w.buf.WriteString("  ranksep=0.5;\n")
	w.buf.WriteString("  nodesep=0.3;\n")
	w.buf.WriteString("\n")

	top := w.node(root.Name, classRoot)
	for _, c := range tree.Prune(root.Children, opts.Depth) {
		w.subtree(top, c)
	}

	w.buf.WriteString("}\n")
	return w.buf.String()
}

func rankdir(o Orientation) string {
	if o == Vertical {
		return "TB"
	}
	return "LR"
}

type dotWriter struct {
	buf      bytes.Buffer
	printer  *message.Printer
	detailed bool
	measure  string
	next     int
}

func (w *dotWriter) node(label string, class nodeClass) string {
	id := "n" + strconv.Itoa(w.next)
	w.next++
	fmt.Fprintf(&w.buf, "  %s [label=%s, %s];\n", id, quote(label), classAttrs[class])
	return id
}

var dotEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`, "\n", `\n`)

// quote returns s as a DOT string literal. DOT has no \u escapes, so
// non-ASCII text is written as is.
func quote(s string) string {
	return `"` + dotEscaper.Replace(s) + `"`
}

func (w *dotWriter) subtree(parent string, n *tree.Node) {
	class := classBranch
	if n.IsLeaf() {
		class = classLeaf
	}
	id := w.node(w.label(n), class)
	fmt.Fprintf(&w.buf, "  %s -> %s;\n", parent, id)
	for _, c := range n.Children {
		w.subtree(id, c)
	}
}

func (w *dotWriter) label(n *tree.Node) string {
	v := w.printer.Sprint(number.Decimal(n.Value))
	if w.detailed && w.measure != "" {
		v = w.measure + ": " + v
	}
	return n.Name + "\n" + v
}

func newPrinter(tag language.Tag) *message.Printer {
	if tag == language.Und {
		tag = language.English
	}
	return message.NewPrinter(tag)
}

// FormatValue formats v with the digit grouping of tag, as used in labels.
func FormatValue(v float64, tag language.Tag) string {
	return newPrinter(tag).Sprint(number.Decimal(v))
}

// RenderSVG renders a DOT graph to SVG using Graphviz.
// Returns the SVG bytes ready for display or further conversion with [render.ToPDF] or [render.ToPNG].
func RenderSVG(ctx context.Context, dot string) ([]byte, error) {
	gv, err := graphviz.New(ctx)
	if err != nil {
		return nil, fmt.Errorf("init graphviz: %w", err)
	}
	defer gv.Close()

	g, err := graphviz.ParseBytes([]byte(dot))
	if err != nil {
		return nil, fmt.Errorf("parse DOT: %w", err)
	}
	defer g.Close()

	var buf bytes.Buffer
	if err := gv.Render(ctx, g, graphviz.SVG, &buf); err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	return normalizeViewBox(buf.Bytes()), nil
}

var (
	svgTagRe  = regexp.MustCompile(`<svg[^>]*>`)
	viewBoxRe = regexp.MustCompile(`viewBox="([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)\s+([0-9.]+)"`)
)

func normalizeViewBox(svg []byte) []byte {
	match := viewBoxRe.FindSubmatch(svg)
	if match == nil {
		return svg
	}

	w, _ := strconv.ParseFloat(string(match[3]), 64)
	h, _ := strconv.ParseFloat(string(match[4]), 64)
	if w == 0 || h == 0 {
		return svg
	}

	tag := fmt.Sprintf(`<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 %.2f %.2f" width="%.0f" height="%.0f">`,
		w, h, w, h)
	return svgTagRe.ReplaceAll(svg, []byte(tag))
}

// RenderPDF renders a DOT graph as PDF via SVG conversion.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPDF(ctx context.Context, dot string) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPDF(ctx, svg)
}

// RenderPNG renders a DOT graph as PNG via SVG conversion at the given scale.
//
// Requires librsvg: brew install librsvg (macOS), apt install librsvg2-bin (Linux).
func RenderPNG(ctx context.Context, dot string, scale float64) ([]byte, error) {
	svg, err := RenderSVG(ctx, dot)
	if err != nil {
		return nil, err
	}
	return render.ToPNG(ctx, svg, scale)
}
