package table

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVOptions configures [ReadCSV].
type CSVOptions struct {
	// Delimiter separates fields. Zero means ','.
	Delimiter rune

	// InferNumbers converts numeric-looking cells in every column to numbers.
	InferNumbers bool

	// NumericColumns lists column ids whose cells are always parsed as numbers
	// when possible, regardless of InferNumbers. Measure columns go here.
	NumericColumns []string
}

// ReadCSV decodes a CSV table. The header row supplies both the column ids
// and their display names. Empty cells become null.
//
// Duplicate header names are disambiguated by appending "_2", "_3", ... to
// the id while keeping the original display name.
func ReadCSV(r io.Reader, opts CSVOptions) (*Table, error) {
	reader := csv.NewReader(r)
	if opts.Delimiter != 0 {
		reader.Comma = opts.Delimiter
	}
	reader.FieldsPerRecord = -1

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return New(), nil
	}
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	ids := make([]string, len(header))
	used := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if i == 0 {
			name = strings.TrimPrefix(name, "\ufeff")
		}
		if name == "" {
			name = fmt.Sprintf("column_%d", i+1)
		}
		id := name
		if n := used[name]; n > 0 {
			id = fmt.Sprintf("%s_%d", name, n+1)
		}
		used[name]++
		ids[i] = id
		header[i] = name
	}

	numeric := make(map[string]bool, len(opts.NumericColumns))
	for _, id := range opts.NumericColumns {
		numeric[id] = true
	}

	cols := make([][]Value, len(ids))
	line := 1
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read record: %w", err)
		}
		line++
		if len(record) > len(ids) {
			return nil, fmt.Errorf("line %d: %d fields, header has %d", line, len(record), len(ids))
		}
		for i := range ids {
			var raw string
			if i < len(record) {
				raw = strings.TrimSpace(record[i])
			}
			cols[i] = append(cols[i], Parse(raw, opts.InferNumbers || numeric[ids[i]]))
		}
	}

	t := New()
	for i, id := range ids {
		if err := t.AddColumn(id, header[i], cols[i]); err != nil {
			return nil, err
		}
	}
	return t, nil
}

// ReadCSVFile opens path and decodes it with [ReadCSV].
func ReadCSVFile(path string, opts CSVOptions) (*Table, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadCSV(f, opts)
}

// WriteCSV encodes t as CSV with a header row of display names.
func WriteCSV(t *Table, w io.Writer) error {
	cw := csv.NewWriter(w)
	ids := t.ColumnIDs()

	header := make([]string, len(ids))
	for i, id := range ids {
		header[i] = t.DisplayName(id)
	}
	if err := cw.Write(header); err != nil {
		return err
	}

	record := make([]string, len(ids))
	for row := range t.Rows() {
		for i, id := range ids {
			record[i] = ""
			if col := t.Columns[id]; row < len(col) {
				record[i] = col[row].String()
			}
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
