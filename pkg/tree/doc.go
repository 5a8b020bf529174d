// Package tree aggregates column-oriented tabular data into a nested tree of
// summed nodes for hierarchical visualization.
//
// # Overview
//
// Given an ordered list of dimension columns (coarsest first) and one measure
// column, [Aggregate] groups rows level by level: every distinct value of the
// first dimension becomes a root-level [Node], every distinct value of the
// second dimension under that root becomes a child, and so on down to the
// finest dimension. Each node's Value is the sum of the measure over all rows
// that pass through it.
//
//	roots, err := tree.Aggregate(t, []string{"continent", "country"}, "pop")
//	if err != nil {
//	    return err
//	}
//	if roots == nil {
//	    // nothing configured yet; render an empty state
//	}
//	root := tree.Wrap("world", roots)
//
// # Grouping
//
// Siblings are keyed by the raw cell value within their parent. Two rows with
// the same value at a level collapse into one node only when they share the
// whole chain of coarser values; "Springfield" under two different states
// remains two nodes. Sibling order is first-seen order of a single scan over
// the rows.
//
// # No Result
//
// An empty dimension list, an empty measure, or a table with no columns or no
// rows yields nil roots and a nil error. This is the normal state of a
// visualization that has not been configured, not a failure. [Build] wraps
// such results in an empty [Root].
//
// # Invariants
//
// For every non-leaf node, Value equals the sum of its children's values, and
// the sum over all root-level nodes equals the sum of the measure column.
// [Check] verifies the first property on any tree.
package tree
