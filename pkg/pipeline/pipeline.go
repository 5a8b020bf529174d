// Package pipeline provides the load → aggregate → render pipeline shared by
// the CLI and the HTTP API.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Resolve a dataset id to a table through a [source.Source]
//  2. Aggregate: Group the table by dimensions and sum the measure
//  3. Render: Produce artifacts (JSON, DOT, SVG, PNG, PDF) from the tree
//
// Aggregation results are cached by table content hash, so the same data
// loaded from a file or a database shares cache entries. Artifacts are
// cached by tree hash and render options.
//
// # Usage
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Source:     "population",
//	    Dimensions: []string{"continent", "country"},
//	    Measure:    "pop",
//	    Formats:    []string{"svg"},
//	}
//	result, err := runner.Execute(ctx, src, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svg := result.Artifacts["svg"]
//
// # Empty Results
//
// Missing dimensions, a missing measure or a table without rows is not an
// error. The pipeline returns an empty super-root, sets [Result.Empty] and
// still renders it, which gives front ends a neutral placeholder.
//
// [source.Source]: github.com/matzehuels/stacktree/pkg/source.Source
package pipeline

import (
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacktree/pkg/cache"
	"github.com/matzehuels/stacktree/pkg/errors"
	"github.com/matzehuels/stacktree/pkg/render/nodelink"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// =============================================================================
// Default Values - Single Source of Truth for CLI and API
// =============================================================================

const (
	// DefaultOrientation is the default layout direction.
	DefaultOrientation = string(nodelink.Horizontal)

	// DefaultOrder keeps first-seen sibling order.
	DefaultOrder = string(tree.OrderFirstSeen)

	// DefaultScale is the PNG scale factor.
	DefaultScale = 2.0
)

// Format constants for output formats.
const (
	FormatJSON = "json"
	FormatDOT  = "dot"
	FormatSVG  = "svg"
	FormatPNG  = "png"
	FormatPDF  = "pdf"
)

// ValidFormats is the set of supported output formats.
var ValidFormats = map[string]bool{
	FormatJSON: true,
	FormatDOT:  true,
	FormatSVG:  true,
	FormatPNG:  true,
	FormatPDF:  true,
}

// ContentTypes maps formats to MIME types.
var ContentTypes = map[string]string{
	FormatJSON: "application/json",
	FormatDOT:  "text/vnd.graphviz; charset=utf-8",
	FormatSVG:  "image/svg+xml",
	FormatPNG:  "image/png",
	FormatPDF:  "application/pdf",
}

// =============================================================================
// Options - Pipeline Configuration
// =============================================================================

// Options contains all configuration for the pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Load options
	Source  string `json:"source,omitempty"` // dataset id
	Refresh bool   `json:"refresh,omitempty"`

	// Aggregate options
	Dimensions []string `json:"dimensions"`
	Measure    string   `json:"measure"`
	RootName   string   `json:"root_name,omitempty"`

	// Render options
	Formats     []string `json:"formats,omitempty"`
	Orientation string   `json:"orientation,omitempty"`
	Depth       int      `json:"depth,omitempty"`
	Order       string   `json:"order,omitempty"`
	Scale       float64  `json:"scale,omitempty"`
	Detailed    bool     `json:"detailed,omitempty"`

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// Tree is the aggregated tree in first-seen order.
	Tree *tree.Root

	// TableHash is the content hash of the input table.
	TableHash string

	// TreeHash is the content hash of the tree.
	TreeHash string

	// Artifacts contains rendered outputs keyed by format.
	Artifacts map[string][]byte

	// Empty reports that aggregation had nothing to group.
	Empty bool

	// Stats contains timing and size information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	Rows          int
	Columns       int
	Tree          tree.Stats
	LoadTime      time.Duration
	AggregateTime time.Duration
	RenderTime    time.Duration
}

// CacheInfo tracks cache hits for each pipeline stage.
type CacheInfo struct {
	TreeHit   bool // Whether the tree came from cache
	RenderHit bool // Whether all artifacts came from cache
}

// =============================================================================
// Validation Functions
// =============================================================================

// ValidateFormat checks that a format is valid.
func ValidateFormat(format string) error {
	if !ValidFormats[format] {
		return errors.New(errors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, dot, svg, png, pdf)", format)
	}
	return nil
}

// ValidateFormats checks that all formats are valid.
func ValidateFormats(formats []string) error {
	for _, f := range formats {
		if err := ValidateFormat(f); err != nil {
			return err
		}
	}
	return nil
}

// ValidateOrientation checks that an orientation is valid.
func ValidateOrientation(o string) error {
	if !nodelink.ValidOrientations[nodelink.Orientation(o)] {
		return errors.New(errors.ErrCodeInvalidOrientation, "invalid orientation: %q (must be one of: horizontal, vertical)", o)
	}
	return nil
}

// ValidateOrder checks that a sibling order is valid.
func ValidateOrder(o string) error {
	if !tree.ValidOrders[tree.Order(o)] {
		return errors.New(errors.ErrCodeInvalidOrder, "invalid order: %q (must be one of: first-seen, value, name)", o)
	}
	return nil
}

// =============================================================================
// Options Methods
// =============================================================================

// ValidateForAggregate checks the aggregation selection. Empty dimensions
// and an empty measure are valid and produce an empty tree.
func (o *Options) ValidateForAggregate() error {
	if err := errors.ValidateDimensions(o.Dimensions); err != nil {
		return err
	}
	if err := errors.ValidateMeasure(o.Measure); err != nil {
		return err
	}
	if err := errors.ValidateRootName(o.RootName); err != nil {
		return err
	}
	return nil
}

// SetRenderDefaults sets default values for rendering.
func (o *Options) SetRenderDefaults() {
	if len(o.Formats) == 0 {
		o.Formats = []string{FormatJSON}
	}
	if o.Orientation == "" {
		o.Orientation = DefaultOrientation
	}
	if o.Order == "" {
		o.Order = DefaultOrder
	}
	if o.Scale <= 0 {
		o.Scale = DefaultScale
	}
}

// ValidateForRender validates and sets defaults for rendering.
func (o *Options) ValidateForRender() error {
	o.SetRenderDefaults()
	if err := ValidateFormats(o.Formats); err != nil {
		return err
	}
	if err := ValidateOrientation(o.Orientation); err != nil {
		return err
	}
	if err := ValidateOrder(o.Order); err != nil {
		return err
	}
	if o.Depth < 0 {
		return errors.New(errors.ErrCodeInvalidInput, "depth must not be negative")
	}
	return nil
}

// ValidateAndSetDefaults checks every stage's options and applies defaults.
func (o *Options) ValidateAndSetDefaults() error {
	if err := o.ValidateForAggregate(); err != nil {
		return err
	}
	return o.ValidateForRender()
}

// TreeKeyOpts returns cache key options for aggregation.
func (o *Options) TreeKeyOpts() cache.TreeKeyOpts {
	return cache.TreeKeyOpts{
		Dimensions: o.Dimensions,
		Measure:    o.Measure,
		RootName:   o.RootName,
	}
}

// ArtifactKeyOpts returns cache key options for artifact rendering.
// Options that do not affect a format are left out of its key.
func (o *Options) ArtifactKeyOpts(format string) cache.ArtifactKeyOpts {
	k := cache.ArtifactKeyOpts{
		Format: format,
		Depth:  o.Depth,
		Order:  o.Order,
	}
	if format != FormatJSON {
		k.Orientation = o.Orientation
	}
	if format == FormatPNG {
		k.Scale = o.Scale
	}
	if o.Detailed && format != FormatJSON {
		k.Format += "+detailed"
	}
	return k
}

// NodelinkOptions converts render options for [nodelink.ToDOT].
func (o *Options) NodelinkOptions() nodelink.Options {
	return nodelink.Options{
		Orientation: nodelink.Orientation(o.Orientation),
		Depth:       o.Depth,
		Detailed:    o.Detailed,
	}
}
