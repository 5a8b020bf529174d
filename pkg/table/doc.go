// Package table provides the column-oriented tabular model consumed by the
// tree aggregator.
//
// # Overview
//
// A [Table] stores one slice of cells per column, all slices row-aligned by
// index. This mirrors how BI plugin hosts hand data to visualizations: a map
// from column id to an array of values, plus a companion map of column
// metadata carrying at least a display name.
//
//	t := table.New()
//	t.AddColumn("c1", "Continent", []table.Value{table.String("NA"), table.String("Asia")})
//	t.AddColumn("c2", "Pop", []table.Value{table.Number(410), table.Number(2000)})
//	if err := t.Validate(); err != nil {
//	    return err
//	}
//
// # Cell Values
//
// A cell is a [Value], a small variant over null, number and string. Values
// used as grouping keys are compared with [Value.Key], which keeps the kind:
// the string "1" and the number 1 are different keys. [Value.String] gives the
// display form.
//
// # Decoding
//
// [ReadCSV] reads a header row followed by records. [ReadJSON] reads the
// column-oriented JSON shape:
//
//	{
//	  "columns": {"c1": {"name": "Continent"}, "c2": {"name": "Pop"}},
//	  "order":   ["c1", "c2"],
//	  "data":    {"c1": ["NA", "Asia"], "c2": [410, 2000]}
//	}
//
// # Concurrency
//
// A Table is not safe for concurrent mutation. Once built, it may be read from
// multiple goroutines.
package table
