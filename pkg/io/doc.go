// Package io provides JSON import and export for aggregated trees, and a
// file-extension dispatcher for loading tables.
//
// # JSON Format
//
// Trees are written in the nested shape consumed by react-d3-tree and
// similar node-link drawing libraries:
//
//	{
//	  "name": "world",
//	  "children": [
//	    {
//	      "name": "NA",
//	      "value": 410,
//	      "attributes": {"Pop": 410},
//	      "children": [
//	        {"name": "USA", "value": 310, "attributes": {"Pop": 310}},
//	        {"name": "Mexico", "value": 100, "attributes": {"Pop": 100}}
//	      ]
//	    }
//	  ]
//	}
//
// The super-root carries only a name and children. Every aggregation node
// carries its summed value, repeated under "attributes" keyed by the display
// name of the measure column so that tooltips can label it; a tree without
// a measure name omits "attributes". Leaves omit "children". A null
// dimension cell is written as an empty name.
//
// # Import
//
// Use [ImportTree] to read a tree from a file path, or [ReadTree] to read
// from any io.Reader. The measure display name is recovered from the first
// attributes object found; dimension level names are not part of the format.
//
// # Export
//
// Use [ExportTree] to write a tree to a file, or [WriteTree] to write to any
// io.Writer. [WriteOptions] can limit the exported depth.
//
// # Tables
//
// [ReadTable] loads a .csv or .json file into a [table.Table].
//
// [table.Table]: github.com/matzehuels/stacktree/pkg/table.Table
package io
