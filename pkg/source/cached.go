package source

import (
	"bytes"
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/stacktree/pkg/cache"
	"github.com/matzehuels/stacktree/pkg/table"
)

// CachedSource serves tables from a cache before asking the wrapped source.
type CachedSource struct {
	src    Source
	cache  cache.Cache
	keyer  cache.Keyer
	ttl    time.Duration
	logger *log.Logger
}

// Cached wraps src with c. A nil keyer uses [cache.NewDefaultKeyer] and a
// zero ttl uses [cache.TableTTL].
func Cached(src Source, c cache.Cache, keyer cache.Keyer, ttl time.Duration, logger *log.Logger) *CachedSource {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if ttl == 0 {
		ttl = cache.TableTTL
	}
	if logger == nil {
		logger = log.New(io.Discard)
	}
	return &CachedSource{src: src, cache: c, keyer: keyer, ttl: ttl, logger: logger}
}

// Name returns the wrapped source name.
func (s *CachedSource) Name() string { return s.src.Name() }

// Load returns the cached table for dataset or loads and stores it. Cache
// failures are logged and never fail the load.
func (s *CachedSource) Load(ctx context.Context, dataset string) (*table.Table, error) {
	key := s.keyer.TableKey(s.src.Name(), dataset)
	if data, ok, err := s.cache.Get(ctx, key); err != nil {
		s.logger.Warn("table cache read failed", "dataset", dataset, "error", err)
	} else if ok {
		t, err := table.ReadJSON(bytes.NewReader(data))
		if err == nil {
			s.logger.Debug("table cache hit", "dataset", dataset)
			return t, nil
		}
		s.logger.Warn("discarding corrupt cached table", "dataset", dataset, "error", err)
	}

	t, err := s.src.Load(ctx, dataset)
	if err != nil {
		return nil, err
	}
	if data, err := t.MarshalJSON(); err == nil {
		if err := s.cache.Set(ctx, key, data, s.ttl); err != nil {
			s.logger.Warn("table cache write failed", "dataset", dataset, "error", err)
		}
	}
	return t, nil
}

// Invalidate drops the cached copy of dataset.
func (s *CachedSource) Invalidate(ctx context.Context, dataset string) error {
	return s.cache.Delete(ctx, s.keyer.TableKey(s.src.Name(), dataset))
}

// List delegates to the wrapped source.
func (s *CachedSource) List(ctx context.Context) ([]string, error) { return s.src.List(ctx) }

// Close closes the wrapped source. The cache is owned by the caller.
func (s *CachedSource) Close() error { return s.src.Close() }

var (
	_ Source      = (*CachedSource)(nil)
	_ Invalidator = (*CachedSource)(nil)
)
