// Package cli implements the stacktree command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/stacktree/pkg/buildinfo"
	"github.com/matzehuels/stacktree/pkg/cache"
	"github.com/matzehuels/stacktree/pkg/config"
	"github.com/matzehuels/stacktree/pkg/pipeline"
	"github.com/matzehuels/stacktree/pkg/source"
	"github.com/matzehuels/stacktree/pkg/source/local"
	"github.com/matzehuels/stacktree/pkg/source/mongodb"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "stacktree"

	// configFile is looked up in the working directory when --config is unset.
	configFile = "stacktree.toml"

	// cacheScope namespaces cache keys; bump it when cached encodings change.
	cacheScope = "v1"
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	out        io.Writer
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		out:    os.Stdout,
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Stacktree aggregates flat tables into summed hierarchies",
		Long:         `Stacktree groups the rows of a table by an ordered list of dimension columns and sums a measure column at every level, producing the nested tree that sunburst, treemap and node-link views draw.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default ./"+configFile+" if present)")

	// Register all subcommands
	root.AddCommand(c.aggregateCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.printCommand())
	root.AddCommand(c.datasetsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads --config, or ./stacktree.toml when it exists, or the
// built-in defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		if _, err := os.Stat(configFile); err != nil {
			return config.Default(), nil
		}
		path = configFile
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("loaded config", "path", path)
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Runner, error) {
	ch, err := c.openCache(ctx, cfg, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cacheScope)
	return pipeline.NewRunner(ch, keyer, c.Logger), nil
}

// openCache opens the configured backend. A file cache that cannot be
// created degrades to no caching.
func (c *CLI) openCache(ctx context.Context, cfg config.Config, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	ch, err := cache.Open(ctx, cfg.CacheOptions())
	if err != nil {
		if cfg.Cache.Backend == cache.BackendFile {
			c.Logger.Warn("cache disabled", "error", err)
			return cache.NewNullCache(), nil
		}
		return nil, fmt.Errorf("open cache: %w", err)
	}
	return ch, nil
}

// openSource connects to MongoDB when data.mongo_uri is set and reads the
// data directory otherwise. Tables from MongoDB are cached in ch when it
// is not nil.
func (c *CLI) openSource(ctx context.Context, cfg config.Config, ch cache.Cache) (source.Source, error) {
	if cfg.Data.MongoURI == "" {
		c.Logger.Debug("using local datasets", "dir", cfg.Data.Dir)
		return local.New(cfg.Data.Dir), nil
	}
	src, err := mongodb.New(ctx, mongodb.Config{URI: cfg.Data.MongoURI, Database: cfg.Data.Database})
	if err != nil {
		return nil, fmt.Errorf("connect mongodb: %w", err)
	}
	c.Logger.Debug("using mongodb datasets", "database", cfg.Data.Database)
	if ch == nil {
		return src, nil
	}
	keyer := cache.NewScopedKeyer(cache.NewDefaultKeyer(), cacheScope)
	return source.Cached(src, ch, keyer, cfg.Cache.TTL.Duration, c.Logger), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// selection holds the flags shared by commands that aggregate a table.
type selection struct {
	dimensions []string
	measure    string
	rootName   string
}

func (s *selection) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVarP(&s.dimensions, "dimension", "d", nil, "dimension column, coarsest first (repeatable or comma-separated)")
	cmd.Flags().StringVarP(&s.measure, "measure", "m", "", "measure column to sum")
	cmd.Flags().StringVar(&s.rootName, "root-name", "", "name of the super-root (default \"world\")")
}

// apply fills opts from flags, falling back to the config file for flags
// that were not set.
func (s *selection) apply(cmd *cobra.Command, cfg config.Config, opts *pipeline.Options) {
	opts.Dimensions = cfg.Dimension
	if cmd.Flags().Changed("dimension") {
		opts.Dimensions = s.dimensions
	}
	opts.Measure = cfg.Measure
	if cmd.Flags().Changed("measure") {
		opts.Measure = s.measure
	}
	opts.RootName = cfg.RootName
	if cmd.Flags().Changed("root-name") {
		opts.RootName = s.rootName
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	return strings.Split(s, ",")
}
