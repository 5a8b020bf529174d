// Package render provides format conversion for tree visualizations.
//
// # Overview
//
// The [nodelink] subpackage turns an aggregated tree into Graphviz DOT and
// renders it to SVG in-process. This package converts that SVG to other
// formats using the external rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(ctx, dot)
//	pdf, err := render.ToPDF(ctx, svg)
//	png, err := render.ToPNG(ctx, svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/stacktree/pkg/render/nodelink
package render
