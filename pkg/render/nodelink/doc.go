// Package nodelink renders aggregated trees as node-link diagrams.
//
// # Overview
//
// The synthetic super-root, branch nodes and leaf nodes are drawn as boxes
// connected by edges from parent to child. Each label shows the node name
// and its summed value with locale-aware digit grouping ("2,000").
//
// # Usage
//
// Convert a tree to DOT format, then render to SVG:
//
//	dot := nodelink.ToDOT(root, nodelink.Options{})
//	svg, err := nodelink.RenderSVG(ctx, dot)
//
// For PDF or PNG output:
//
//	pdf, err := nodelink.RenderPDF(ctx, dot)
//	png, err := nodelink.RenderPNG(ctx, dot, 2.0)  // 2x scale
//
// # Options
//
//   - Orientation: [Horizontal] (default) lays the tree out left to right
//     (rankdir=LR); [Vertical] lays it out top to bottom (rankdir=TB).
//   - Depth: limits the drawn levels below the super-root.
//   - Detailed: labels values with the measure name.
//   - Locale: language used for number formatting (English by default).
//
// # Styling
//
// Node classes follow the tree shape: the super-root is filled dark, branch
// nodes light, and leaves white with a thin outline.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering and [golang.org/x/text/message] for number formatting. PDF and
// PNG conversion requires librsvg (rsvg-convert).
package nodelink
