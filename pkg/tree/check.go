package tree

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"
)

// ErrSumMismatch is returned by [Check] when a node's value differs from the
// sum of its children's values.
var ErrSumMismatch = errors.New("node value does not match sum of children")

// sumTolerance is the relative tolerance for comparing accumulated sums.
const sumTolerance = 1e-9

// Check verifies that every non-leaf node's value equals the sum of its
// children's values. The error names the path to the first offending node.
func Check(nodes []*Node) error {
	for _, n := range nodes {
		if err := check(n, []string{n.Name}); err != nil {
			return err
		}
	}
	return nil
}

func check(n *Node, path []string) error {
	if n.IsLeaf() {
		return nil
	}
	sum := Total(n.Children)
	if !approxEqual(n.Value, sum) {
		return fmt.Errorf("%w: %s: value %v, children sum %v", ErrSumMismatch, strings.Join(path, " / "), n.Value, sum)
	}
	for _, c := range n.Children {
		if err := check(c, append(path, c.Name)); err != nil {
			return err
		}
	}
	return nil
}

func approxEqual(a, b float64) bool {
	if a == b {
		return true
	}
	scale := math.Max(math.Abs(a), math.Abs(b))
	return math.Abs(a-b) <= sumTolerance*math.Max(scale, 1)
}

// Prune returns a deep copy of nodes limited to depth levels. Nodes at the
// cut keep their value but lose their children. A depth of zero or less
// copies the whole tree.
func Prune(nodes []*Node, depth int) []*Node {
	if depth <= 0 {
		return cloneAll(nodes)
	}
	return prune(nodes, depth)
}

func prune(nodes []*Node, depth int) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		c := &Node{Name: n.Name, Value: n.Value}
		if depth > 1 {
			c.Children = prune(n.Children, depth-1)
		}
		out[i] = c
	}
	return out
}

// Order selects a sibling ordering for [Sort].
type Order string

const (
	// OrderFirstSeen keeps the scan order produced by [Aggregate].
	OrderFirstSeen Order = "first-seen"
	// OrderValue sorts siblings by descending value.
	OrderValue Order = "value"
	// OrderName sorts siblings by ascending name.
	OrderName Order = "name"
)

// ValidOrders is the set of supported sibling orderings.
var ValidOrders = map[Order]bool{
	OrderFirstSeen: true,
	OrderValue:     true,
	OrderName:      true,
}

// Sort returns a deep copy of nodes with siblings at every level ordered by
// o. Ties keep first-seen order. An empty order behaves like [OrderFirstSeen].
func Sort(nodes []*Node, o Order) []*Node {
	out := cloneAll(nodes)
	if o == "" || o == OrderFirstSeen {
		return out
	}
	sortLevel(out, o)
	return out
}

func sortLevel(nodes []*Node, o Order) {
	switch o {
	case OrderValue:
		slices.SortStableFunc(nodes, func(a, b *Node) int { return cmp.Compare(b.Value, a.Value) })
	case OrderName:
		slices.SortStableFunc(nodes, func(a, b *Node) int { return strings.Compare(a.Name, b.Name) })
	}
	for _, n := range nodes {
		sortLevel(n.Children, o)
	}
}
