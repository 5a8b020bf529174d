package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktree/pkg/errors"
	stio "github.com/matzehuels/stacktree/pkg/io"
	"github.com/matzehuels/stacktree/pkg/pipeline"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	selection
	output      string   // output file (single format) or base path
	formats     []string // output formats: "svg", "png", "pdf", "dot", "json"
	orientation string   // "horizontal" or "vertical"
	depth       int      // levels to draw below the super-root
	order       string   // sibling order
	detailed    bool     // prefix values with the measure name
	scale       float64  // PNG scale factor
	noCache     bool     // bypass the cache
}

// renderCommand creates the render command for generating visualizations.
// The input is either a table (CSV, TSV, JSON) or a tree exported by
// aggregate.
func (c *CLI) renderCommand() *cobra.Command {
	var formatsStr string
	opts := renderOpts{scale: pipeline.DefaultScale}

	cmd := &cobra.Command{
		Use:   "render [table|tree.json]",
		Short: "Render a table or exported tree as a node-link diagram",
		Example: `  stacktree render population.csv -d continent,country -m pop
  stacktree render tree.json -f svg,png --orientation vertical`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.formats = parseFormats(formatsStr)
			if err := pipeline.ValidateFormats(opts.formats); err != nil {
				return err
			}
			return c.runRender(cmd, args, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().StringVarP(&formatsStr, "format", "f", "", "output format(s): svg (default), png, pdf, dot, json (comma-separated)")
	cmd.Flags().StringVar(&opts.orientation, "orientation", "", "layout direction: horizontal (default), vertical")
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "levels to draw below the root (0 = all)")
	cmd.Flags().StringVar(&opts.order, "order", "", "sibling order: first-seen (default), value, name")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "label values with the measure name")
	cmd.Flags().Float64Var(&opts.scale, "scale", opts.scale, "PNG scale factor")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, opts *renderOpts) error {
	ctx := cmd.Context()
	logger := loggerFromContext(ctx)
	cfg, err := c.loadConfig()
	if err != nil {
		return err
	}
	runner, err := c.newRunner(ctx, cfg, opts.noCache)
	if err != nil {
		return err
	}
	defer runner.Close()

	popts := pipeline.Options{
		Formats:     opts.formats,
		Orientation: opts.orientation,
		Depth:       opts.depth,
		Order:       opts.order,
		Detailed:    opts.detailed,
		Scale:       opts.scale,
	}
	if popts.Orientation == "" {
		popts.Orientation = cfg.Render.Orientation
	}
	if !cmd.Flags().Changed("depth") {
		popts.Depth = cfg.Render.Depth
	}
	if popts.Order == "" {
		popts.Order = cfg.Render.Order
	}
	opts.apply(cmd, cfg, &popts)

	sp := newSpinner(ctx, os.Stderr, "Rendering "+strings.Join(opts.formats, ", ")+"...")
	var (
		artifacts map[string][]byte
		stats     tree.Stats
		cached    bool
	)
	if len(args) > 0 && isTreeFile(args[0]) {
		root, err := stio.ImportTree(args[0])
		if err != nil {
			return errors.Classify(err)
		}
		logger.Infof("Loaded tree from %s", args[0])
		sp.start()
		artifacts, cached, err = runner.RenderWithCacheInfo(ctx, root, popts)
		sp.stop()
		if err != nil {
			return err
		}
		stats = root.Stats()
	} else {
		t, err := c.loadTable(ctx, runner, cfg, args)
		if err != nil {
			return err
		}
		sp.start()
		result, err := runner.ExecuteTable(ctx, t, popts)
		sp.stop()
		if err != nil {
			return err
		}
		artifacts, stats, cached = result.Artifacts, result.Stats.Tree, result.CacheInfo.RenderHit
		if result.Empty {
			printWarning("Nothing to aggregate: set --dimension and --measure")
		}
	}

	input := "stacktree"
	if len(args) > 0 {
		input = args[0]
	}
	paths := outputPaths(opts.output, input, opts.formats)
	printSuccess("Rendered %s", strings.Join(opts.formats, ", "))
	printTreeStats(stats, cached)
	for _, format := range opts.formats {
		path := paths[format]
		if path == input {
			return errors.New(errors.ErrCodeInvalidInput, "refusing to overwrite input %s; pass --output", input)
		}
		if err := os.WriteFile(path, artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
		logger.Debugf("Generated %s: %d bytes", format, len(artifacts[format]))
		printFile(path)
	}
	return nil
}

// isTreeFile reports whether path holds a tree exported by aggregate rather
// than a column table: a JSON object with "name" and without "data".
func isTreeFile(path string) bool {
	if !strings.EqualFold(filepath.Ext(path), ".json") {
		return false
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return false
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(data, &keys); err != nil {
		return false
	}
	_, hasName := keys["name"]
	_, hasData := keys["data"]
	return hasName && !hasData
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.svg, .pdf, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPaths maps each format to its output file. A single format with an
// explicit output writes exactly there.
func outputPaths(output, input string, formats []string) map[string]string {
	paths := make(map[string]string, len(formats))
	if len(formats) == 1 && output != "" {
		paths[formats[0]] = output
		return paths
	}
	base := basePath(output, input)
	for _, f := range formats {
		paths[f] = base + "." + f
	}
	return paths
}
