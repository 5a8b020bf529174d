package table

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
)

var (
	// ErrRaggedColumns is returned by [Table.Validate] when columns have
	// different lengths. Every column must hold exactly one cell per row.
	ErrRaggedColumns = errors.New("columns have different lengths")

	// ErrDuplicateColumn is returned by [Table.AddColumn] when the id is
	// already present.
	ErrDuplicateColumn = errors.New("duplicate column id")

	// ErrInvalidColumnID is returned by [Table.AddColumn] for an empty id.
	ErrInvalidColumnID = errors.New("column id must not be empty")

	// ErrUnknownOrder is returned by [Table.Validate] when Order lists an
	// id that has no column.
	ErrUnknownOrder = errors.New("unknown column in order")

	// ErrUnsupportedCell is returned when decoding a cell that is not null,
	// a number, a string or a boolean.
	ErrUnsupportedCell = errors.New("unsupported cell value")
)

// ColumnMeta describes a column. Name is the display name shown to users and
// used to label tree levels.
type ColumnMeta struct {
	Name string `json:"name" bson:"name"`
}

// Table is column-oriented tabular data. Columns maps a column id to its
// row-aligned cells and Meta maps a column id to its metadata. Order lists
// column ids in source order.
//
// Use [New] and [Table.AddColumn] to build a consistent table. A Table
// assembled by hand should be checked with [Table.Validate].
type Table struct {
	Columns map[string][]Value
	Meta    map[string]ColumnMeta
	Order   []string
}

// New creates an empty table.
func New() *Table {
	return &Table{
		Columns: make(map[string][]Value),
		Meta:    make(map[string]ColumnMeta),
	}
}

// AddColumn appends a column. An empty name falls back to the id.
func (t *Table) AddColumn(id, name string, values []Value) error {
	if id == "" {
		return ErrInvalidColumnID
	}
	if _, ok := t.Columns[id]; ok {
		return fmt.Errorf("%w: %s", ErrDuplicateColumn, id)
	}
	if t.Columns == nil {
		t.Columns = make(map[string][]Value)
	}
	if t.Meta == nil {
		t.Meta = make(map[string]ColumnMeta)
	}
	if name == "" {
		name = id
	}
	t.Columns[id] = values
	t.Meta[id] = ColumnMeta{Name: name}
	t.Order = append(t.Order, id)
	return nil
}

// Column returns the cells of a column and whether it exists.
func (t *Table) Column(id string) ([]Value, bool) {
	if t == nil {
		return nil, false
	}
	v, ok := t.Columns[id]
	return v, ok
}

// HasColumn reports whether the column exists.
func (t *Table) HasColumn(id string) bool {
	_, ok := t.Column(id)
	return ok
}

// NumColumns returns the number of columns.
func (t *Table) NumColumns() int {
	if t == nil {
		return 0
	}
	return len(t.Columns)
}

// Rows returns the number of rows, taken from the longest column.
// It is 0 for a table without columns.
func (t *Table) Rows() int {
	if t == nil {
		return 0
	}
	n := 0
	for _, col := range t.Columns {
		n = max(n, len(col))
	}
	return n
}

// DisplayName returns the display name of a column, or the id itself when
// no metadata (or an empty name) is recorded.
func (t *Table) DisplayName(id string) string {
	if t != nil {
		if m, ok := t.Meta[id]; ok && m.Name != "" {
			return m.Name
		}
	}
	return id
}

// ColumnIDs returns column ids in source order. Columns missing from Order
// follow in sorted order.
func (t *Table) ColumnIDs() []string {
	if t == nil {
		return nil
	}
	ids := make([]string, 0, len(t.Columns))
	seen := make(map[string]bool, len(t.Columns))
	for _, id := range t.Order {
		if _, ok := t.Columns[id]; ok && !seen[id] {
			ids = append(ids, id)
			seen[id] = true
		}
	}
	var rest []string
	for id := range t.Columns {
		if !seen[id] {
			rest = append(rest, id)
		}
	}
	slices.Sort(rest)
	return append(ids, rest...)
}

// Validate checks that every column has the same length and that Order
// names only existing columns.
func (t *Table) Validate() error {
	if t == nil {
		return nil
	}
	for _, id := range t.Order {
		if _, ok := t.Columns[id]; !ok {
			return fmt.Errorf("%w: order names missing column %q", ErrUnknownOrder, id)
		}
	}
	n := -1
	for _, id := range t.ColumnIDs() {
		l := len(t.Columns[id])
		if n == -1 {
			n = l
			continue
		}
		if l != n {
			return fmt.Errorf("%w: column %q has %d rows, want %d", ErrRaggedColumns, id, l, n)
		}
	}
	return nil
}

// Hash returns a stable SHA-256 hex digest of the table's ids, display names
// and cells. Equal tables hash equally regardless of map iteration order.
func (t *Table) Hash() string {
	h := sha256.New()
	enc := json.NewEncoder(h)
	for _, id := range t.ColumnIDs() {
		// Encoding errors are impossible for finite cells; non-finite numbers
		// are written by their display text instead.
		_ = enc.Encode([]string{id, t.DisplayName(id)})
		for _, v := range t.Columns[id] {
			if err := enc.Encode(v); err != nil {
				_ = enc.Encode(v.Kind().String() + ":" + v.String())
			}
		}
	}
	return hex.EncodeToString(h.Sum(nil))
}
