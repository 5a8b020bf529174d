package io

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/matzehuels/stacktree/pkg/table"
	"github.com/matzehuels/stacktree/pkg/tree"
)

// ErrUnsupportedExtension is returned by [ReadTable] for files that are
// neither CSV nor JSON.
var ErrUnsupportedExtension = errors.New("unsupported file extension")

// ReadTree decodes a nested JSON tree from r.
//
// The top-level object becomes the super-root; its value and attributes,
// if present, are ignored. A node without "value" takes the sum of its
// children. An empty name is kept as is; it is how a null dimension cell
// is displayed. ReadTree returns an error only if the JSON is malformed.
//
// ReadTree does not close r.
func ReadTree(r io.Reader) (*tree.Root, error) {
	var data node
	if err := json.NewDecoder(r).Decode(&data); err != nil {
		return nil, fmt.Errorf("decode: %w", err)
	}

	root := tree.Wrap(data.Name, nil)
	root.Children = toNodes(data.Children, &root.Measure)
	return root, nil
}

// ImportTree reads a JSON file at path and returns the decoded tree.
func ImportTree(path string) (*tree.Root, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return ReadTree(f)
}

// UnmarshalTree decodes data with [ReadTree].
func UnmarshalTree(data []byte) (*tree.Root, error) {
	return ReadTree(bytes.NewReader(data))
}

func toNodes(in []node, measure *string) []*tree.Node {
	if len(in) == 0 {
		return nil
	}
	out := make([]*tree.Node, len(in))
	for i, n := range in {
		if *measure == "" && len(n.Attributes) == 1 {
			for k := range n.Attributes {
				*measure = k
			}
		}
		children := toNodes(n.Children, measure)
		tn := &tree.Node{Name: n.Name, Children: children}
		if n.Value != nil {
			tn.Value = *n.Value
		} else {
			tn.Value = tree.Total(children)
		}
		out[i] = tn
	}
	return out
}

// ReadTable loads a table from path, choosing the decoder by extension:
// .csv and .tsv use [table.ReadCSV] with numeric inference, .json uses
// [table.ReadJSON].
func ReadTable(path string) (*table.Table, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".csv":
		return table.ReadCSVFile(path, table.CSVOptions{InferNumbers: true})
	case ".tsv":
		return table.ReadCSVFile(path, table.CSVOptions{Delimiter: '\t', InferNumbers: true})
	case ".json":
		return table.ReadJSONFile(path)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedExtension, ext)
	}
}
