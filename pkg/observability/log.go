package observability

import (
	"context"
	"time"

	"github.com/charmbracelet/log"
)

// LogHooks reports every event as a debug log line.
type LogHooks struct {
	logger *log.Logger
}

// NewLogHooks returns hooks that log to logger.
func NewLogHooks(logger *log.Logger) *LogHooks {
	return &LogHooks{logger: logger}
}

func (h *LogHooks) OnLoadStart(_ context.Context, source, dataset string) {
	h.logger.Debug("load start", "source", source, "dataset", dataset)
}

func (h *LogHooks) OnLoadComplete(_ context.Context, source, dataset string, rows int, d time.Duration, err error) {
	h.logger.Debug("load done", "source", source, "dataset", dataset, "rows", rows, "took", d, "error", err)
}

func (h *LogHooks) OnAggregateStart(_ context.Context, dimensions []string, measure string, rows int) {
	h.logger.Debug("aggregate start", "dimensions", dimensions, "measure", measure, "rows", rows)
}

func (h *LogHooks) OnAggregateComplete(_ context.Context, nodes int, d time.Duration, err error) {
	h.logger.Debug("aggregate done", "nodes", nodes, "took", d, "error", err)
}

func (h *LogHooks) OnRenderStart(_ context.Context, formats []string) {
	h.logger.Debug("render start", "formats", formats)
}

func (h *LogHooks) OnRenderComplete(_ context.Context, formats []string, d time.Duration, err error) {
	h.logger.Debug("render done", "formats", formats, "took", d, "error", err)
}

func (h *LogHooks) OnCacheHit(_ context.Context, keyType string) {
	h.logger.Debug("cache hit", "type", keyType)
}

func (h *LogHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.logger.Debug("cache miss", "type", keyType)
}

func (h *LogHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.logger.Debug("cache set", "type", keyType, "bytes", size)
}

var (
	_ PipelineHooks = (*LogHooks)(nil)
	_ CacheHooks    = (*LogHooks)(nil)
)
