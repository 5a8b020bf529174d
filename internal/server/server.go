// Package server exposes the aggregation pipeline over HTTP.
//
// Routes:
//
//	GET  /healthz
//	GET  /v1/datasets
//	GET  /v1/datasets/{dataset}/tree
//	GET  /v1/datasets/{dataset}/render.{format}
//	POST /v1/aggregate
//
// The GET routes read the selection from the query string:
// dimension (repeatable) or dimensions (comma separated), measure, root, depth, order, orientation,
// detailed and refresh. Errors are JSON objects with a machine-readable
// code and a message.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/stacktree/pkg/pipeline"
	"github.com/matzehuels/stacktree/pkg/source"
)

const (
	// DefaultAddr is the listen address used when Config.Addr is empty.
	DefaultAddr = ":8080"

	// maxBodyBytes caps POST /v1/aggregate request bodies.
	maxBodyBytes = 32 << 20

	shutdownTimeout = 10 * time.Second
)

// Config wires a Server.
type Config struct {
	Addr    string
	Source  source.Source
	Runner  *pipeline.Runner
	Logger  *log.Logger
	Timeout time.Duration // per-request; zero disables
}

// Server serves the HTTP API.
type Server struct {
	addr    string
	src     source.Source
	runner  *pipeline.Runner
	logger  *log.Logger
	timeout time.Duration
	router  chi.Router
}

// New builds a server. A nil Runner gets an uncached runner and a nil
// Logger the default logger.
func New(cfg Config) *Server {
	if cfg.Addr == "" {
		cfg.Addr = DefaultAddr
	}
	if cfg.Logger == nil {
		cfg.Logger = log.Default()
	}
	if cfg.Runner == nil {
		cfg.Runner = pipeline.NewRunner(nil, nil, cfg.Logger)
	}
	s := &Server{
		addr:    cfg.Addr,
		src:     cfg.Source,
		runner:  cfg.Runner,
		logger:  cfg.Logger,
		timeout: cfg.Timeout,
	}
	s.router = s.routes()
	return s
}

// Handler returns the root HTTP handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestID)
	r.Use(s.requestLogger)
	if s.timeout > 0 {
		r.Use(middleware.Timeout(s.timeout))
	}

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Post("/aggregate", s.handleAggregate)
		r.Get("/datasets", s.handleListDatasets)
		r.Get("/datasets/{dataset}/tree", s.handleTree)
		r.Get("/datasets/{dataset}/render.{format}", s.handleRender)
	})
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, errNotFound(r.URL.Path))
	})
	return r
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("listening", "addr", s.addr)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	s.logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
