// Package cache stores aggregated trees and rendered artifacts keyed by the
// content they were derived from.
//
// Three backends implement [Cache]: [NullCache] disables caching,
// [FileCache] keeps entries on local disk for CLI use, and [RedisCache]
// shares entries between server instances. Keys are derived by a [Keyer]:
// a tree key hashes the table content hash with the dimension and measure
// selection, and an artifact key hashes the tree hash with render options.
// Equal inputs therefore hit the same entry no matter where the table came
// from.
package cache

import (
	"context"
	"time"
)

// Default entry lifetimes.
const (
	TableTTL    = 10 * time.Minute
	TreeTTL     = 24 * time.Hour
	ArtifactTTL = 7 * 24 * time.Hour
)

// Cache is a byte store with per-entry expiry.
//
// Get reports a miss with ok == false and a nil error. A ttl of zero or less
// stores the entry without expiry.
type Cache interface {
	Get(ctx context.Context, key string) (data []byte, ok bool, err error)
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Clearer is implemented by caches that can drop all of their entries.
// Clear returns the number of entries removed.
type Clearer interface {
	Clear(ctx context.Context) (int, error)
}

// TreeKeyOpts selects the aggregation a tree key identifies.
type TreeKeyOpts struct {
	Dimensions []string `json:"dimensions"`
	Measure    string   `json:"measure"`
	RootName   string   `json:"root_name,omitempty"`
}

// ArtifactKeyOpts selects the rendering an artifact key identifies.
type ArtifactKeyOpts struct {
	Format      string  `json:"format"`
	Orientation string  `json:"orientation,omitempty"`
	Depth       int     `json:"depth,omitempty"`
	Order       string  `json:"order,omitempty"`
	Scale       float64 `json:"scale,omitempty"`
}

// Keyer derives cache keys.
type Keyer interface {
	// TableKey identifies a dataset loaded from a named source.
	TableKey(source, dataset string) string
	// TreeKey identifies an aggregation of the table with the given hash.
	TreeKey(tableHash string, opts TreeKeyOpts) string
	// ArtifactKey identifies a rendering of the tree with the given hash.
	ArtifactKey(treeHash string, opts ArtifactKeyOpts) string
}

// DefaultKeyer produces unscoped keys.
type DefaultKeyer struct{}

// NewDefaultKeyer returns a [DefaultKeyer].
func NewDefaultKeyer() Keyer {
	return DefaultKeyer{}
}

// TableKey returns "table:<source>:<dataset>".
func (DefaultKeyer) TableKey(source, dataset string) string {
	return "table:" + source + ":" + dataset
}

// TreeKey returns "tree:" followed by a hash of the table hash and opts.
func (DefaultKeyer) TreeKey(tableHash string, opts TreeKeyOpts) string {
	return hashKey("tree", tableHash, opts)
}

// ArtifactKey returns "artifact:" followed by a hash of the tree hash and opts.
func (DefaultKeyer) ArtifactKey(treeHash string, opts ArtifactKeyOpts) string {
	return hashKey("artifact", treeHash, opts)
}
