package table

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"slices"
)

// document is the column-oriented JSON encoding of a Table.
type document struct {
	Columns map[string]ColumnMeta `json:"columns,omitempty"`
	Order   []string              `json:"order,omitempty"`
	Data    map[string][]Value    `json:"data"`
}

// ReadJSON decodes a column-oriented JSON table from r.
//
// "data" maps column ids to cell arrays; "columns" maps column ids to
// metadata; the optional "order" fixes column order (otherwise ids are
// sorted). Columns listed only in "columns" are ignored. ReadJSON validates
// that all columns have equal length.
func ReadJSON(r io.Reader) (*Table, error) {
	var doc document
	if err := json.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	order := doc.Order
	if len(order) == 0 {
		order = make([]string, 0, len(doc.Data))
		for id := range doc.Data {
			order = append(order, id)
		}
		slices.Sort(order)
	}

	t := New()
	for _, id := range order {
		values, ok := doc.Data[id]
		if !ok {
			return nil, fmt.Errorf("%w: %q", ErrUnknownOrder, id)
		}
		if err := t.AddColumn(id, doc.Columns[id].Name, values); err != nil {
			return nil, err
		}
	}
	for id := range doc.Data {
		if !t.HasColumn(id) {
			return nil, fmt.Errorf("column %q missing from order", id)
		}
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return t, nil
}

// ReadJSONFile opens path and decodes it with [ReadJSON].
func ReadJSONFile(path string) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadJSON(f)
}

// WriteJSON encodes t in the column-oriented JSON shape read by [ReadJSON].
func WriteJSON(t *Table, w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(t.document()); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// MarshalJSON encodes t in the column-oriented JSON shape.
func (t *Table) MarshalJSON() ([]byte, error) {
	return json.Marshal(t.document())
}

// UnmarshalJSON decodes the column-oriented JSON shape into t.
func (t *Table) UnmarshalJSON(data []byte) error {
	decoded, err := ReadJSON(bytes.NewReader(data))
	if err != nil {
		return err
	}
	*t = *decoded
	return nil
}

func (t *Table) document() document {
	ids := t.ColumnIDs()
	doc := document{
		Columns: make(map[string]ColumnMeta, len(ids)),
		Order:   ids,
		Data:    make(map[string][]Value, len(ids)),
	}
	for _, id := range ids {
		doc.Columns[id] = ColumnMeta{Name: t.DisplayName(id)}
		doc.Data[id] = t.Columns[id]
	}
	return doc
}
