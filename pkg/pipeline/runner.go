package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacktree/pkg/cache"
	"github.com/matzehuels/stacktree/pkg/errors"
	stio "github.com/matzehuels/stacktree/pkg/io"
	"github.com/matzehuels/stacktree/pkg/observability"
	"github.com/matzehuels/stacktree/pkg/source"
	"github.com/matzehuels/stacktree/pkg/table"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache and logger - it doesn't
// store pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Logger: logger,
	}
}

// Execute runs the complete load → aggregate → render pipeline with caching.
// With opts.Refresh set, a source implementing [source.Invalidator] drops
// its copy of the dataset before loading.
func (r *Runner) Execute(ctx context.Context, src source.Source, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	// Stage 1: Load
	if inv, ok := src.(source.Invalidator); ok && opts.Refresh {
		if err := inv.Invalidate(ctx, opts.Source); err != nil {
			opts.Logger.Warn("dataset invalidation failed", "dataset", opts.Source, "error", err)
		}
	}
	t, loadTime, err := r.Load(ctx, src, opts.Source)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	result, err := r.ExecuteTable(ctx, t, opts)
	if err != nil {
		return nil, err
	}
	result.Stats.LoadTime = loadTime
	return result, nil
}

// ExecuteTable runs the aggregate → render stages on a table that is
// already in memory.
func (r *Runner) ExecuteTable(ctx context.Context, t *table.Table, opts Options) (*Result, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, err
	}
	r.applyLogger(&opts)

	result := &Result{
		TableHash: t.Hash(),
		Artifacts: make(map[string][]byte),
	}
	result.Stats.Rows = t.Rows()
	result.Stats.Columns = t.NumColumns()

	// Stage 2: Aggregate
	aggStart := time.Now()
	root, treeHit, err := r.AggregateWithCacheInfo(ctx, t, opts)
	if err != nil {
		return nil, fmt.Errorf("aggregate: %w", err)
	}
	result.Tree = root
	result.Empty = root.IsEmpty()
	result.Stats.Tree = root.Stats()
	result.Stats.AggregateTime = time.Since(aggStart)
	result.CacheInfo.TreeHit = treeHit

	r.Logger.Info("aggregated table",
		"rows", result.Stats.Rows,
		"nodes", result.Stats.Tree.Nodes,
		"depth", result.Stats.Tree.Depth,
		"duration", result.Stats.AggregateTime)
	if result.Empty {
		r.Logger.Warn("aggregation produced no nodes", "dimensions", len(opts.Dimensions), "measure", opts.Measure)
	}

	// Stage 3: Render
	renderStart := time.Now()
	artifacts, renderHit, err := r.RenderWithCacheInfo(ctx, root, opts)
	if err != nil {
		return nil, fmt.Errorf("render: %w", err)
	}
	result.Artifacts = artifacts
	result.TreeHash, _ = TreeHash(root)
	result.Stats.RenderTime = time.Since(renderStart)
	result.CacheInfo.RenderHit = renderHit

	r.Logger.Info("rendered artifacts", "formats", opts.Formats, "duration", result.Stats.RenderTime)
	return result, nil
}

// Load reads dataset from src and reports how long it took.
func (r *Runner) Load(ctx context.Context, src source.Source, dataset string) (*table.Table, time.Duration, error) {
	if err := source.ValidateDataset(dataset); err != nil {
		return nil, 0, errors.Classify(err)
	}
	hooks := observability.Pipeline()
	hooks.OnLoadStart(ctx, src.Name(), dataset)

	start := time.Now()
	t, err := src.Load(ctx, dataset)
	elapsed := time.Since(start)
	if err != nil {
		hooks.OnLoadComplete(ctx, src.Name(), dataset, 0, elapsed, err)
		return nil, elapsed, errors.Classify(err)
	}
	hooks.OnLoadComplete(ctx, src.Name(), dataset, t.Rows(), elapsed, nil)

	r.Logger.Info("loaded dataset",
		"source", src.Name(),
		"dataset", dataset,
		"rows", t.Rows(),
		"columns", t.NumColumns(),
		"duration", elapsed)
	return t, elapsed, nil
}

// Aggregate groups t by the options' dimensions and sums the measure.
func (r *Runner) Aggregate(ctx context.Context, t *table.Table, opts Options) (*tree.Root, error) {
	root, _, err := r.AggregateWithCacheInfo(ctx, t, opts)
	return root, err
}

// AggregateWithCacheInfo aggregates t and reports whether the tree came from
// the cache. Trees are cached by table content hash and selection.
func (r *Runner) AggregateWithCacheInfo(ctx context.Context, t *table.Table, opts Options) (*tree.Root, bool, error) {
	if err := opts.ValidateForAggregate(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	cacheKey := r.Keyer.TreeKey(t.Hash(), opts.TreeKeyOpts())
	if !opts.Refresh {
		if root, ok := r.cachedTree(ctx, cacheKey); ok {
			observability.Cache().OnCacheHit(ctx, "tree")
			opts.Logger.Debug("tree cache hit", "key", cacheKey)
			return root, true, nil
		}
		observability.Cache().OnCacheMiss(ctx, "tree")
	}

	hooks := observability.Pipeline()
	hooks.OnAggregateStart(ctx, opts.Dimensions, opts.Measure, t.Rows())
	start := time.Now()
	root, err := tree.Build(t, opts.Dimensions, opts.Measure, opts.RootName)
	if err != nil {
		hooks.OnAggregateComplete(ctx, 0, time.Since(start), err)
		return nil, false, errors.Classify(err)
	}
	hooks.OnAggregateComplete(ctx, root.Stats().Nodes, time.Since(start), nil)

	if data, err := marshalCachedTree(root); err == nil {
		if err := r.Cache.Set(ctx, cacheKey, data, cache.TreeTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "tree", len(data))
		} else {
			opts.Logger.Warn("tree cache write failed", "error", err)
		}
	}
	return root, false, nil
}

// Close releases resources held by the runner.
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

func (r *Runner) cachedTree(ctx context.Context, key string) (*tree.Root, bool) {
	data, ok, err := r.Cache.Get(ctx, key)
	if err != nil || !ok {
		return nil, false
	}
	root, err := unmarshalCachedTree(data)
	if err != nil {
		r.Logger.Warn("discarding corrupt cached tree", "key", key, "error", err)
		return nil, false
	}
	return root, true
}

// cachedTree keeps the root metadata the JSON tree shape drops.
type cachedTree struct {
	Levels  []string        `json:"levels,omitempty"`
	Measure string          `json:"measure,omitempty"`
	Tree    json.RawMessage `json:"tree"`
}

func marshalCachedTree(root *tree.Root) ([]byte, error) {
	data, err := stio.MarshalTree(root)
	if err != nil {
		return nil, err
	}
	return json.Marshal(cachedTree{Levels: root.Levels, Measure: root.Measure, Tree: data})
}

func unmarshalCachedTree(data []byte) (*tree.Root, error) {
	var c cachedTree
	if err := json.Unmarshal(data, &c); err != nil {
		return nil, err
	}
	root, err := stio.UnmarshalTree(c.Tree)
	if err != nil {
		return nil, err
	}
	root.Levels = c.Levels
	root.Measure = c.Measure
	return root, nil
}

// TreeHash returns the content hash of root, including its metadata.
func TreeHash(root *tree.Root) (string, error) {
	data, err := marshalCachedTree(root)
	if err != nil {
		return "", err
	}
	return cache.Hash(data), nil
}
