package server

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/stacktree/pkg/errors"
	"github.com/matzehuels/stacktree/pkg/pipeline"
	"github.com/matzehuels/stacktree/pkg/table"
)

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleListDatasets(w http.ResponseWriter, r *http.Request) {
	if s.src == nil {
		writeError(w, r, errors.New(errors.ErrCodeUnavailable, "no data source configured"))
		return
	}
	ids, err := s.src.List(r.Context())
	if err != nil {
		writeError(w, r, err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"source": s.src.Name(), "datasets": ids})
}

// handleTree serves the aggregated tree of a dataset as nested JSON.
func (s *Server) handleTree(w http.ResponseWriter, r *http.Request) {
	opts, err := optionsFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = []string{pipeline.FormatJSON}
	s.serveArtifact(w, r, opts)
}

// handleRender serves one rendered artifact of a dataset.
func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	format := chi.URLParam(r, "format")
	if err := pipeline.ValidateFormat(format); err != nil {
		writeError(w, r, err)
		return
	}
	opts, err := optionsFromQuery(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return
	}
	opts.Formats = []string{format}
	s.serveArtifact(w, r, opts)
}

func (s *Server) serveArtifact(w http.ResponseWriter, r *http.Request, opts pipeline.Options) {
	if s.src == nil {
		writeError(w, r, errors.New(errors.ErrCodeUnavailable, "no data source configured"))
		return
	}
	opts.Source = chi.URLParam(r, "dataset")
	opts.Logger = loggerFrom(r, s.logger)

	result, err := s.runner.Execute(r.Context(), s.src, opts)
	if err != nil {
		writeError(w, r, err)
		return
	}
	format := opts.Formats[0]
	w.Header().Set("Content-Type", pipeline.ContentTypes[format])
	w.Header().Set("ETag", strconv.Quote(result.TreeHash+"-"+format))
	if result.Empty {
		w.Header().Set("X-Stacktree-Empty", "true")
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Artifacts[format])
}

// aggregateRequest is the body of POST /v1/aggregate. Either Source names
// a dataset or Table carries the data inline.
type aggregateRequest struct {
	pipeline.Options
	Table *table.Table `json:"table,omitempty"`
}

type aggregateResponse struct {
	Tree      json.RawMessage `json:"tree"`
	Levels    []string        `json:"levels,omitempty"`
	Measure   string          `json:"measure,omitempty"`
	Empty     bool            `json:"empty"`
	TableHash string          `json:"table_hash"`
	TreeHash  string          `json:"tree_hash"`
	Cached    bool            `json:"cached"`
	Stats     responseStats   `json:"stats"`
}

type responseStats struct {
	Rows   int     `json:"rows"`
	Nodes  int     `json:"nodes"`
	Leaves int     `json:"leaves"`
	Depth  int     `json:"depth"`
	Total  float64 `json:"total"`
}

func (s *Server) handleAggregate(w http.ResponseWriter, r *http.Request) {
	var req aggregateRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		writeError(w, r, errors.Wrap(errors.ErrCodeInvalidInput, err, "invalid request body: %v", err))
		return
	}

	opts := req.Options
	opts.Formats = []string{pipeline.FormatJSON}
	opts.Logger = loggerFrom(r, s.logger)

	var (
		result *pipeline.Result
		err    error
	)
	switch {
	case req.Table != nil && opts.Source != "":
		err = errors.New(errors.ErrCodeInvalidInput, "set either source or table, not both")
	case req.Table != nil:
		result, err = s.runner.ExecuteTable(r.Context(), req.Table, opts)
	case s.src == nil:
		err = errors.New(errors.ErrCodeUnavailable, "no data source configured")
	case opts.Source == "":
		err = errors.New(errors.ErrCodeInvalidInput, "source or table is required")
	default:
		result, err = s.runner.Execute(r.Context(), s.src, opts)
	}
	if err != nil {
		writeError(w, r, err)
		return
	}

	st := result.Stats.Tree
	writeJSON(w, http.StatusOK, aggregateResponse{
		Tree:      result.Artifacts[pipeline.FormatJSON],
		Levels:    result.Tree.Levels,
		Measure:   result.Tree.Measure,
		Empty:     result.Empty,
		TableHash: result.TableHash,
		TreeHash:  result.TreeHash,
		Cached:    result.CacheInfo.TreeHit,
		Stats: responseStats{
			Rows:   result.Stats.Rows,
			Nodes:  st.Nodes,
			Leaves: st.Leaves,
			Depth:  st.Depth,
			Total:  st.Total,
		},
	})
}

// optionsFromQuery reads render and aggregate options from query parameters.
func optionsFromQuery(q url.Values) (pipeline.Options, error) {
	opts := pipeline.Options{
		Measure:     q.Get("measure"),
		RootName:    q.Get("root"),
		Order:       q.Get("order"),
		Orientation: q.Get("orientation"),
	}
	opts.Dimensions = append(opts.Dimensions, q["dimension"]...)
	if d := q.Get("dimensions"); d != "" {
		opts.Dimensions = append(opts.Dimensions, strings.Split(d, ",")...)
	}
	var err error
	if opts.Depth, err = intParam(q, "depth"); err != nil {
		return opts, err
	}
	if opts.Detailed, err = boolParam(q, "detailed"); err != nil {
		return opts, err
	}
	if opts.Refresh, err = boolParam(q, "refresh"); err != nil {
		return opts, err
	}
	if v := q.Get("scale"); v != "" {
		if opts.Scale, err = strconv.ParseFloat(v, 64); err != nil {
			return opts, errors.New(errors.ErrCodeInvalidInput, "invalid scale: %q", v)
		}
	}
	return opts, nil
}

func intParam(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", name, v)
	}
	return n, nil
}

func boolParam(q url.Values, name string) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "invalid %s: %q", name, v)
	}
	return b, nil
}

func errNotFound(path string) error {
	return errors.New(errors.ErrCodeNotFound, "no route for %s", path)
}

type errorResponse struct {
	Code      errors.Code `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"request_id,omitempty"`
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	err = errors.Classify(err)
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		loggerFrom(r, nil).Error("request failed", "error", err)
	}
	writeJSON(w, status, errorResponse{
		Code:      errors.GetCode(err),
		Message:   errors.UserMessage(err),
		RequestID: RequestIDFromContext(r.Context()),
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		http.Error(w, fmt.Sprintf("encode response: %v", err), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(data, '\n'))
}
