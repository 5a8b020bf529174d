// Package config loads stacktree settings from a TOML file.
//
// The top-level keys select what to aggregate: the dataset ("source"), the
// dimension columns from coarsest to finest ("dimension") and the measure
// column ("measure"). Tables configure where datasets live, how results
// are cached, how the HTTP server listens and how trees are drawn:
//
//	source    = "population"
//	dimension = ["continent", "country"]
//	measure   = "pop"
//
//	[data]
//	dir = "./data"
//
//	[cache]
//	backend = "file"
//	ttl     = "24h"
//
// [Load] rejects unknown keys so that typos surface instead of silently
// falling back to defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/stacktree/pkg/cache"
	"github.com/matzehuels/stacktree/pkg/render/nodelink"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// ErrInvalid is wrapped by every validation failure.
var ErrInvalid = errors.New("invalid config")

// DefaultAddr is the HTTP listen address when none is configured.
const DefaultAddr = ":8080"

// Config is the decoded configuration file.
type Config struct {
	Source    string   `toml:"source"`
	Dimension []string `toml:"dimension"`
	Measure   string   `toml:"measure"`
	RootName  string   `toml:"root_name"`

	Data   Data   `toml:"data"`
	Cache  Cache  `toml:"cache"`
	Server Server `toml:"server"`
	Render Render `toml:"render"`
}

// Data locates datasets. MongoURI takes precedence over Dir when set.
type Data struct {
	Dir      string `toml:"dir"`
	MongoURI string `toml:"mongo_uri"`
	Database string `toml:"database"`
}

// Cache selects the cache backend.
type Cache struct {
	Backend       string   `toml:"backend"`
	Dir           string   `toml:"dir"`
	RedisAddr     string   `toml:"redis_addr"`
	RedisPassword string   `toml:"redis_password"`
	RedisDB       int      `toml:"redis_db"`
	KeyPrefix     string   `toml:"key_prefix"`
	TTL           Duration `toml:"ttl"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Render holds drawing defaults.
type Render struct {
	Orientation string `toml:"orientation"`
	Depth       int    `toml:"depth"`
	Order       string `toml:"order"`
}

// Duration decodes TOML strings such as "90s" or "24h".
type Duration struct {
	time.Duration
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText implements encoding.TextMarshaler.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

// Default returns the configuration used when no file is given.
func Default() Config {
	return Config{
		RootName: tree.DefaultRootName,
		Data:     Data{Dir: ".", Database: "stacktree"},
		Cache: Cache{
			Backend:   cache.BackendFile,
			Dir:       DefaultCacheDir(),
			RedisAddr: "localhost:6379",
			TTL:       Duration{cache.TreeTTL},
		},
		Server: Server{Addr: DefaultAddr},
		Render: Render{
			Orientation: string(nodelink.Horizontal),
			Order:       string(tree.OrderFirstSeen),
		},
	}
}

// DefaultCacheDir returns the per-user cache directory for stacktree.
func DefaultCacheDir() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, "stacktree")
}

// Load reads path over [Default] and validates the result. Relative data
// and cache directories are resolved against the file's directory.
func Load(path string) (Config, error) {
	cfg := Default()
	md, err := toml.DecodeFile(path, &cfg)
	if err != nil {
		return Config{}, fmt.Errorf("decode %s: %w", path, err)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, fmt.Errorf("%w: %s: unknown keys: %s", ErrInvalid, path, strings.Join(keys, ", "))
	}

	base := filepath.Dir(path)
	if md.IsDefined("data", "dir") && !filepath.IsAbs(cfg.Data.Dir) {
		cfg.Data.Dir = filepath.Join(base, cfg.Data.Dir)
	}
	if md.IsDefined("cache", "dir") && cfg.Cache.Dir != "" && !filepath.IsAbs(cfg.Cache.Dir) {
		cfg.Cache.Dir = filepath.Join(base, cfg.Cache.Dir)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Validate checks enumerations and value ranges.
func (c Config) Validate() error {
	switch c.Cache.Backend {
	case cache.BackendNone, cache.BackendFile, cache.BackendRedis:
	default:
		return fmt.Errorf("%w: cache.backend %q (want none, file or redis)", ErrInvalid, c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return fmt.Errorf("%w: cache.ttl must not be negative", ErrInvalid)
	}
	if c.Render.Orientation != "" && !nodelink.ValidOrientations[nodelink.Orientation(c.Render.Orientation)] {
		return fmt.Errorf("%w: render.orientation %q (want horizontal or vertical)", ErrInvalid, c.Render.Orientation)
	}
	if c.Render.Order != "" && !tree.ValidOrders[tree.Order(c.Render.Order)] {
		return fmt.Errorf("%w: render.order %q", ErrInvalid, c.Render.Order)
	}
	if c.Render.Depth < 0 {
		return fmt.Errorf("%w: render.depth must not be negative", ErrInvalid)
	}
	if slices.Contains(c.Dimension, "") {
		return fmt.Errorf("%w: dimension entries must not be empty", ErrInvalid)
	}
	if c.Data.MongoURI != "" && c.Data.Database == "" {
		return fmt.Errorf("%w: data.database is required with data.mongo_uri", ErrInvalid)
	}
	return nil
}

// CacheOptions converts the cache table for [cache.Open].
func (c Config) CacheOptions() cache.Options {
	return cache.Options{
		Backend: c.Cache.Backend,
		Dir:     c.Cache.Dir,
		Redis: cache.RedisOptions{
			Addr:     c.Cache.RedisAddr,
			Password: c.Cache.RedisPassword,
			DB:       c.Cache.RedisDB,
			Prefix:   c.Cache.KeyPrefix,
		},
	}
}
