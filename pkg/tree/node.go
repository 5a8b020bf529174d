package tree

// DefaultRootName is the name given to the synthetic super-root when none is
// supplied.
const DefaultRootName = "world"

// Node is one aggregation node: the display value of its dimension level, the
// sum of the measure over its subtree, and its children in first-seen order.
// Children is nil for nodes at the finest dimension level.
type Node struct {
	Name     string
	Value    float64
	Children []*Node
}

// IsLeaf reports whether n has no children.
func (n *Node) IsLeaf() bool { return len(n.Children) == 0 }

// Walk visits n and its descendants depth-first in order, passing each node's
// depth relative to n (n itself is depth 0). Returning false from fn skips the
// node's children.
func (n *Node) Walk(fn func(n *Node, depth int) bool) {
	walk(n, 0, fn)
}

func walk(n *Node, depth int, fn func(*Node, int) bool) {
	if !fn(n, depth) {
		return
	}
	for _, c := range n.Children {
		walk(c, depth+1, fn)
	}
}

// Clone returns a deep copy of n.
func (n *Node) Clone() *Node {
	c := &Node{Name: n.Name, Value: n.Value}
	if n.Children != nil {
		c.Children = cloneAll(n.Children)
	}
	return c
}

func cloneAll(nodes []*Node) []*Node {
	if nodes == nil {
		return nil
	}
	out := make([]*Node, len(nodes))
	for i, n := range nodes {
		out[i] = n.Clone()
	}
	return out
}

// Root is the synthetic super-root the presentation layer expects: a fixed
// name, no value, and the aggregator's output as children.
//
// Levels holds the display names of the dimension columns from coarsest to
// finest and Measure the display name of the measure column. Both are empty
// for a root built by hand with [Wrap].
type Root struct {
	Name     string
	Levels   []string
	Measure  string
	Children []*Node
}

// Wrap puts roots under a super-root named name, or [DefaultRootName] when
// name is empty. A nil roots slice produces an empty root.
func Wrap(name string, roots []*Node) *Root {
	if name == "" {
		name = DefaultRootName
	}
	return &Root{Name: name, Children: roots}
}

// IsEmpty reports whether the root has no children.
func (r *Root) IsEmpty() bool { return len(r.Children) == 0 }

// Walk visits every aggregation node under r depth-first. Root-level nodes
// have depth 1; the super-root itself is not visited.
func (r *Root) Walk(fn func(n *Node, depth int) bool) {
	for _, c := range r.Children {
		walk(c, 1, fn)
	}
}

// Total returns the sum of the root-level values.
func (r *Root) Total() float64 { return Total(r.Children) }

// Total returns the sum of values of nodes.
func Total(nodes []*Node) float64 {
	var sum float64
	for _, n := range nodes {
		sum += n.Value
	}
	return sum
}

// Stats summarizes the shape of a tree.
type Stats struct {
	Nodes  int     // aggregation nodes, excluding the super-root
	Leaves int     // nodes without children
	Depth  int     // deepest level; 0 for an empty root
	Total  float64 // sum of root-level values
}

// Stats computes node, leaf and depth counts for r.
func (r *Root) Stats() Stats {
	s := Stats{Total: r.Total()}
	r.Walk(func(n *Node, depth int) bool {
		s.Nodes++
		if n.IsLeaf() {
			s.Leaves++
		}
		s.Depth = max(s.Depth, depth)
		return true
	})
	return s
}
