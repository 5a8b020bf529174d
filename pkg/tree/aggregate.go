package tree

import (
	"errors"
	"fmt"

	"github.com/matzehuels/stacktree/pkg/table"
)

var (
	// ErrUnknownColumn is returned by [Aggregate] when a dimension or the
	// measure names a column that is not in the table.
	ErrUnknownColumn = errors.New("unknown column")

	// ErrNonNumericMeasure is returned by [Aggregate] when a measure cell is
	// a string. Use errors.As with *[MeasureError] for the offending row.
	ErrNonNumericMeasure = errors.New("measure value is not numeric")
)

// MeasureError reports a non-numeric measure cell.
type MeasureError struct {
	Column string      // measure column id
	Row    int         // zero-based row index
	Value  table.Value // offending cell
}

func (e *MeasureError) Error() string {
	return fmt.Sprintf("%s: column %q row %d: %q", ErrNonNumericMeasure, e.Column, e.Row, e.Value.String())
}

// Unwrap returns [ErrNonNumericMeasure].
func (e *MeasureError) Unwrap() error { return ErrNonNumericMeasure }

// Aggregate groups the rows of t by dimensions (coarsest first) and sums the
// measure column over every group, returning the root-level nodes in
// first-seen order.
//
// When dimensions is empty, measure is empty, or t has no columns or no rows,
// Aggregate returns nil, nil: there is nothing to render yet.
//
// A null measure cell contributes 0 but still places its row in the tree.
// A string measure cell fails with a *[MeasureError]. Unknown columns fail
// with [ErrUnknownColumn] and ragged tables with [table.ErrRaggedColumns].
//
// Aggregate does not modify t, and repeated calls with equal inputs return
// deep-equal trees.
func Aggregate(t *table.Table, dimensions []string, measure string) ([]*Node, error) {
	if len(dimensions) == 0 || measure == "" || t.NumColumns() == 0 || t.Rows() == 0 {
		return nil, nil
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}

	cols := make([][]table.Value, len(dimensions))
	for j, id := range dimensions {
		col, ok := t.Column(id)
		if !ok {
			return nil, fmt.Errorf("%w: dimension %q", ErrUnknownColumn, id)
		}
		cols[j] = col
	}
	values, ok := t.Column(measure)
	if !ok {
		return nil, fmt.Errorf("%w: measure %q", ErrUnknownColumn, measure)
	}

	top := newGroup(&Node{})
	finest := len(cols) - 1
	for i := range t.Rows() {
		m, err := measureAt(values, i, measure)
		if err != nil {
			return nil, err
		}
		g := top
		for j, col := range cols {
			g = g.child(col[i], j == finest)
			g.node.Value += m
		}
	}
	return top.node.Children, nil
}

// Build aggregates t and wraps the result under a super-root named rootName.
// The root records the display names of the dimension and measure columns.
// A "no result" aggregation yields an empty root, never nil.
func Build(t *table.Table, dimensions []string, measure, rootName string) (*Root, error) {
	roots, err := Aggregate(t, dimensions, measure)
	if err != nil {
		return nil, err
	}
	r := Wrap(rootName, roots)
	if len(dimensions) > 0 && measure != "" {
		r.Levels = Levels(t, dimensions)
		r.Measure = t.DisplayName(measure)
	}
	return r, nil
}

// Levels returns the display name of each dimension column, falling back to
// the column id when no metadata is recorded.
func Levels(t *table.Table, dimensions []string) []string {
	names := make([]string, len(dimensions))
	for j, id := range dimensions {
		names[j] = t.DisplayName(id)
	}
	return names
}

func measureAt(values []table.Value, row int, column string) (float64, error) {
	v := values[row]
	if f, ok := v.Float(); ok {
		return f, nil
	}
	if v.IsNull() {
		return 0, nil
	}
	return 0, &MeasureError{Column: column, Row: row, Value: v}
}

// group couples a node with the index of its children by cell key.
// The index scopes keys to a single parent.
type group struct {
	node *Node
	kids map[table.Key]*group
}

func newGroup(n *Node) *group {
	return &group{node: n, kids: make(map[table.Key]*group)}
}

// child returns the child group for v, creating and appending it on first
// sight. Leaf groups carry no index and their nodes keep nil Children.
func (g *group) child(v table.Value, leaf bool) *group {
	k := v.Key()
	if c, ok := g.kids[k]; ok {
		return c
	}
	c := &group{node: &Node{Name: v.String()}}
	if !leaf {
		c.kids = make(map[table.Key]*group)
	}
	g.kids[k] = c
	g.node.Children = append(g.node.Children, c.node)
	return c
}
