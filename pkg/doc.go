// Package pkg provides the core libraries for stacktree hierarchical
// aggregation.
//
// # Overview
//
// Stacktree turns flat tables into nested trees of summed values for
// sunburst, treemap and node-link views. The pkg directory is organized into
// four main areas:
//
//  1. [table] and [tree] - Domain logic (column tables, aggregation)
//  2. [source] and [cache] - Infrastructure (datasets, caching)
//  3. [io] and [render] - Serialization and visualization
//  4. [pipeline] - Orchestration (load → aggregate → render)
//
// # Architecture
//
// The typical data flow through stacktree:
//
//	CSV / JSON file, MongoDB collection
//	         ↓
//	    [source] package (resolve dataset to table)
//	         ↓
//	    [tree] package (group by dimensions, sum measure)
//	         ↓
//	    [io], [render/nodelink] packages
//	         ↓
//	    JSON/DOT/SVG/PNG/PDF output
//
// # Quick Start
//
// Aggregate a CSV file and print the tree as JSON:
//
//	import (
//	    "os"
//	    stio "github.com/matzehuels/stacktree/pkg/io"
//	    "github.com/matzehuels/stacktree/pkg/tree"
//	)
//
//	// 1. Load the table
//	t, _ := stio.ReadTable("population.csv")
//
//	// 2. Aggregate by continent, then country
//	root, _ := tree.Build(t, []string{"continent", "country"}, "pop", "")
//
//	// 3. Export
//	_ = stio.WriteTree(os.Stdout, root, stio.WriteOptions{})
//
// # Main Packages
//
// [table] - Column-oriented tables of typed cells with CSV and JSON codecs.
//
// [tree] - The aggregator, plus sum checks, sorting and depth pruning.
//
// [io] - Nested JSON tree export and import, table loading by extension.
//
// [render/nodelink] - Graphviz node-link diagrams with localized labels.
//
// [source] - Dataset backends: local directories and MongoDB.
//
// [cache] - File and Redis caches with content-addressed keys.
//
// [config] - TOML configuration for the CLI and server.
//
// [errors] - Coded errors shared by the CLI and the HTTP API.
//
// [observability] - Hooks for metrics and tracing.
//
// [pipeline] - The cached load → aggregate → render pipeline.
//
// [buildinfo] - Version information injected at build time.
//
// [table]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/table
// [tree]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/tree
// [io]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/io
// [render]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/render
// [render/nodelink]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/render/nodelink
// [source]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/source
// [cache]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/config
// [errors]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/errors
// [observability]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/observability
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/pipeline
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/stacktree/pkg/buildinfo
package pkg
