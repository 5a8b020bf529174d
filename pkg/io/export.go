package io

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/matzehuels/stacktree/pkg/tree"
)

type node struct {
	Name       string             `json:"name"`
	Value      *float64           `json:"value,omitempty"`
	Attributes map[string]float64 `json:"attributes,omitempty"`
	Children   []node             `json:"children,omitempty"`
}

// WriteOptions controls tree export.
type WriteOptions struct {
	// Depth limits the exported levels below the super-root. Zero exports
	// the whole tree.
	Depth int
	// Compact disables indentation.
	Compact bool
}

// WriteTree encodes root as nested JSON and writes it to w.
// The output can be re-imported with [ReadTree].
func WriteTree(w io.Writer, root *tree.Root, opts WriteOptions) error {
	enc := json.NewEncoder(w)
	if !opts.Compact {
		enc.SetIndent("", "  ")
	}
	if err := enc.Encode(fromRoot(root, opts.Depth)); err != nil {
		return fmt.Errorf("encode: %w", err)
	}
	return nil
}

// ExportTree writes root to a JSON file at path.
func ExportTree(path string, root *tree.Root, opts WriteOptions) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	defer f.Close()
	return WriteTree(f, root, opts)
}

// MarshalTree returns the compact JSON encoding of root.
func MarshalTree(root *tree.Root) ([]byte, error) {
	return json.Marshal(fromRoot(root, 0))
}

func fromRoot(root *tree.Root, depth int) node {
	return node{
		Name:     root.Name,
		Children: fromNodes(tree.Prune(root.Children, depth), root.Measure),
	}
}

// fromNodes converts nodes, labelling values under attr. An empty attr
// omits attributes.
func fromNodes(nodes []*tree.Node, attr string) []node {
	if len(nodes) == 0 {
		return nil
	}
	out := make([]node, len(nodes))
	for i, n := range nodes {
		v := n.Value
		out[i] = node{
			Name:     n.Name,
			Value:    &v,
			Children: fromNodes(n.Children, attr),
		}
		if attr != "" {
			out[i].Attributes = map[string]float64{attr: v}
		}
	}
	return out
}
