package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/matzehuels/stacktree/pkg/cache"
	"github.com/matzehuels/stacktree/pkg/errors"
	stio "github.com/matzehuels/stacktree/pkg/io"
	"github.com/matzehuels/stacktree/pkg/observability"
	"github.com/matzehuels/stacktree/pkg/render"
	"github.com/matzehuels/stacktree/pkg/render/nodelink"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// Render generates output artifacts for root in the requested formats.
// Siblings are ordered by opts.Order and cut at opts.Depth before any
// format is produced. SVG is rendered at most once and shared by the PNG
// and PDF conversions.
func Render(ctx context.Context, root *tree.Root, opts Options) (map[string][]byte, error) {
	view := Arrange(root, opts)
	dot := nodelink.ToDOT(view, opts.NodelinkOptions())
	svg := sync.OnceValues(func() ([]byte, error) {
		return nodelink.RenderSVG(ctx, dot)
	})

	var (
		mu        sync.Mutex
		artifacts = make(map[string][]byte, len(opts.Formats))
	)
	g, ctx := errgroup.WithContext(ctx)
	for _, format := range opts.Formats {
		g.Go(func() error {
			data, err := renderFormat(ctx, format, view, dot, svg, opts)
			if err != nil {
				return fmt.Errorf("render %s: %w", format, err)
			}
			mu.Lock()
			artifacts[format] = data
			mu.Unlock()
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return artifacts, nil
}

func renderFormat(ctx context.Context, format string, view *tree.Root, dot string, svg func() ([]byte, error), opts Options) ([]byte, error) {
	switch format {
	case FormatJSON:
		var buf bytes.Buffer
		if err := stio.WriteTree(&buf, view, stio.WriteOptions{}); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	case FormatDOT:
		return []byte(dot), nil
	case FormatSVG:
		return svg()
	case FormatPNG:
		data, err := svg()
		if err != nil {
			return nil, err
		}
		return render.ToPNG(ctx, data, opts.Scale)
	case FormatPDF:
		data, err := svg()
		if err != nil {
			return nil, err
		}
		return render.ToPDF(ctx, data)
	default:
		return nil, errors.New(errors.ErrCodeUnsupported, "unsupported format: %s", format)
	}
}

// Arrange returns a copy of root with opts.Order applied to every level and
// opts.Depth levels kept. Every format renders the arranged view.
func Arrange(root *tree.Root, opts Options) *tree.Root {
	view := *root
	view.Children = tree.Prune(tree.Sort(root.Children, tree.Order(opts.Order)), opts.Depth)
	return &view
}

// RenderWithCache renders root, reusing cached artifacts per format.
func (r *Runner) RenderWithCache(ctx context.Context, root *tree.Root, opts Options) (map[string][]byte, error) {
	artifacts, _, err := r.RenderWithCacheInfo(ctx, root, opts)
	return artifacts, err
}

// RenderWithCacheInfo renders root and reports whether every requested
// artifact came from the cache. Only the formats missing from the cache
// are rendered.
func (r *Runner) RenderWithCacheInfo(ctx context.Context, root *tree.Root, opts Options) (map[string][]byte, bool, error) {
	if err := opts.ValidateForRender(); err != nil {
		return nil, false, err
	}
	r.applyLogger(&opts)

	treeHash, err := TreeHash(root)
	if err != nil {
		return nil, false, fmt.Errorf("serialize tree for cache key: %w", err)
	}

	artifacts := make(map[string][]byte, len(opts.Formats))
	keys := make(map[string]string, len(opts.Formats))
	var missing []string
	for _, format := range opts.Formats {
		key := r.Keyer.ArtifactKey(treeHash, opts.ArtifactKeyOpts(format))
		keys[format] = key
		if !opts.Refresh {
			if data, ok, err := r.Cache.Get(ctx, key); err == nil && ok {
				observability.Cache().OnCacheHit(ctx, "artifact")
				artifacts[format] = data
				continue
			}
			observability.Cache().OnCacheMiss(ctx, "artifact")
		}
		missing = append(missing, format)
	}
	if len(missing) == 0 {
		opts.Logger.Debug("artifact cache hit", "formats", opts.Formats)
		return artifacts, true, nil
	}

	hooks := observability.Pipeline()
	hooks.OnRenderStart(ctx, missing)
	start := time.Now()

	renderOpts := opts
	renderOpts.Formats = missing
	rendered, err := Render(ctx, root, renderOpts)
	hooks.OnRenderComplete(ctx, missing, time.Since(start), err)
	if err != nil {
		return nil, false, errors.Classify(err)
	}

	for format, data := range rendered {
		artifacts[format] = data
		if err := r.Cache.Set(ctx, keys[format], data, cache.ArtifactTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "artifact", len(data))
		} else {
			opts.Logger.Warn("artifact cache write failed", "format", format, "error", err)
		}
	}
	return artifacts, false, nil
}
