// Package source loads tables from named datasets.
//
// A [Source] resolves a dataset identifier to a [table.Table]. Two backends
// are provided: [local] reads CSV and JSON files from a directory, and
// [mongodb] reads documents from MongoDB collections. [Cached] wraps any
// source with a content cache.
//
// [local]: github.com/matzehuels/stacktree/pkg/source/local
// [mongodb]: github.com/matzehuels/stacktree/pkg/source/mongodb
package source

import (
	"context"
	"errors"
	"fmt"
	"regexp"

	"github.com/matzehuels/stacktree/pkg/table"
)

var (
	// ErrDatasetNotFound is returned when a dataset does not exist.
	ErrDatasetNotFound = errors.New("dataset not found")

	// ErrInvalidDataset is returned for dataset ids that cannot name a
	// file or collection.
	ErrInvalidDataset = errors.New("invalid dataset id")
)

// Source resolves datasets to tables.
type Source interface {
	// Name identifies the backend in cache keys and logs.
	Name() string
	// Load reads the whole dataset.
	Load(ctx context.Context, dataset string) (*table.Table, error)
	// List returns the available dataset ids in sorted order.
	List(ctx context.Context) ([]string, error)
	// Close releases connections held by the source.
	Close() error
}

// Invalidator is implemented by sources that keep copies of loaded
// datasets. [CachedSource] implements it.
type Invalidator interface {
	Invalidate(ctx context.Context, dataset string) error
}

var datasetRe = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.-]*$`)

// ValidateDataset checks that id is a plain identifier: letters, digits,
// '_', '-' and '.', not starting with a separator and without "..".
func ValidateDataset(id string) error {
	if !datasetRe.MatchString(id) || containsDotDot(id) {
		return fmt.Errorf("%w: %q", ErrInvalidDataset, id)
	}
	return nil
}

func containsDotDot(s string) bool {
	for i := 0; i+1 < len(s); i++ {
		if s[i] == '.' && s[i+1] == '.' {
			return true
		}
	}
	return false
}
