package cli

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktree/pkg/config"
	"github.com/matzehuels/stacktree/pkg/errors"
	stio "github.com/matzehuels/stacktree/pkg/io"
	"github.com/matzehuels/stacktree/pkg/pipeline"
	"github.com/matzehuels/stacktree/pkg/table"
)

// aggregateOpts holds the command-line flags for the aggregate command.
type aggregateOpts struct {
	selection
	output  string // output file; stdout when empty
	depth   int    // levels to keep below the super-root
	order   string // sibling order
	noCache bool   // bypass the cache
}

// aggregateCommand creates the aggregate command.
func (c *CLI) aggregateCommand() *cobra.Command {
	var opts aggregateOpts

	cmd := &cobra.Command{
		Use:   "aggregate [table]",
		Short: "Aggregate a table into a summed tree (JSON)",
		Long: `Aggregate groups the rows of a CSV, TSV or JSON table by the given
dimension columns and sums the measure column at every level.

Without a file argument the dataset named by "source" in the config file is
loaded from the configured data directory or MongoDB database.`,
		Example: `  stacktree aggregate population.csv -d continent -d country -m pop
  stacktree aggregate sales.json -d region,store -m revenue -o tree.json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runAggregate(cmd, args, &opts)
		},
	}

	opts.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().IntVar(&opts.depth, "depth", 0, "levels to keep below the root (0 = all)")
	cmd.Flags().StringVar(&opts.order, "order", "", "sibling order: first-seen (default), value, name")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable caching")

	return cmd
}

func (c *CLI) runAggregate(cmd *cobra.Command, args []string, opts *aggregateOpts) error {
	ctx := cmd.Context()
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
		Formats: []string{pipeline.FormatJSON},
		Depth:   opts.depth,
		Order:   opts.order,
		Refresh: opts.noCache,
	}
	opts.apply(cmd, cfg, &popts)
	if err := popts.ValidateAndSetDefaults(); err != nil {
		return err
	}

	t, err := c.loadTable(ctx, runner, cfg, args)
	if err != nil {
		return err
	}
	root, cached, err := runner.AggregateWithCacheInfo(ctx, t, popts)
	if err != nil {
		return err
	}
	if root.IsEmpty() {
		c.Logger.Warn("nothing to aggregate: set --dimension and --measure")
	}

	view := pipeline.Arrange(root, popts)
	if opts.output == "" {
		return stio.WriteTree(c.out, view, stio.WriteOptions{})
	}
	if err := stio.ExportTree(opts.output, view, stio.WriteOptions{}); err != nil {
		return err
	}
	printSuccess("Aggregated %d rows", t.Rows())
	printTreeStats(view.Stats(), cached)
	printFile(opts.output)
	printNextStep("Render it", "stacktree render "+opts.output)
	return nil
}

// loadTable reads the file named by args[0], or the configured dataset when
// no file is given.
func (c *CLI) loadTable(ctx context.Context, runner *pipeline.Runner, cfg config.Config, args []string) (*table.Table, error) {
	if len(args) > 0 {
		prog := newProgress(c.Logger)
		t, err := stio.ReadTable(args[0])
		if err != nil {
			return nil, errors.Classify(err)
		}
		prog.done(fmt.Sprintf("Loaded %d rows from %s", t.Rows(), args[0]))
		return t, nil
	}
	if cfg.Source == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput, "no input: pass a table file or set source in %s", configFile)
	}
	src, err := c.openSource(ctx, cfg, runner.Cache)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	t, _, err := runner.Load(ctx, src, cfg.Source)
	return t, err
}
