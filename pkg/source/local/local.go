// Package local serves datasets from CSV, TSV and JSON files in a directory.
//
// A dataset id maps to "<dir>/<id>.csv", "<dir>/<id>.tsv" or
// "<dir>/<id>.json", tried in that order.
package local

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"

	stio "github.com/matzehuels/stacktree/pkg/io"
	"github.com/matzehuels/stacktree/pkg/source"
	"github.com/matzehuels/stacktree/pkg/table"
)

// Name is the source name used in cache keys.
const Name = "local"

var extensions = []string{".csv", ".tsv", ".json"}

// Source reads datasets from a directory.
type Source struct {
	dir string
}

// New returns a source rooted at dir.
func New(dir string) *Source {
	return &Source{dir: dir}
}

// Name returns "local".
func (s *Source) Name() string { return Name }

// Load reads the first matching file for dataset.
func (s *Source) Load(ctx context.Context, dataset string) (*table.Table, error) {
	if err := source.ValidateDataset(dataset); err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	for _, ext := range extensions {
		path := filepath.Join(s.dir, dataset+ext)
		if _, err := os.Stat(path); errors.Is(err, fs.ErrNotExist) {
			continue
		}
		t, err := stio.ReadTable(path)
		if err != nil {
			return nil, fmt.Errorf("dataset %s: %w", dataset, err)
		}
		return t, nil
	}
	return nil, fmt.Errorf("%w: %s in %s", source.ErrDatasetNotFound, dataset, s.dir)
}

// List returns the ids of all readable files in the directory.
func (s *Source) List(ctx context.Context) ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", s.dir, err)
	}
	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !slices.Contains(extensions, ext) {
			continue
		}
		id := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if source.ValidateDataset(id) == nil && !slices.Contains(ids, id) {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)
	return ids, nil
}

// Close does nothing.
func (s *Source) Close() error { return nil }

var _ source.Source = (*Source)(nil)
