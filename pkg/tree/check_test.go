package tree

import (
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"
)

func dump(nodes []*Node) string {
	var b strings.Builder
	for i, n := range nodes {
		if i > 0 {
			b.WriteString(" ")
		}
		fmt.Fprintf(&b, "%s=%v", n.Name, n.Value)
		if n.Children != nil {
			b.WriteString("[" + dump(n.Children) + "]")
		}
	}
	return b.String()
}

func sample() []*Node {
	return []*Node{
		{Name: "b", Value: 3, Children: []*Node{
			{Name: "y", Value: 1},
			{Name: "x", Value: 2},
		}},
		{Name: "a", Value: 5, Children: []*Node{
			{Name: "z", Value: 5},
		}},
	}
}

func TestCheck(t *testing.T) {
	if err := Check(sample()); err != nil {
		t.Fatalf("Check() = %v, want nil", err)
	}
	if err := Check(nil); err != nil {
		t.Fatalf("Check(nil) = %v, want nil", err)
	}

	bad := sample()
	bad[0].Children[1].Value = 7
	err := Check(bad)
	if !errors.Is(err, ErrSumMismatch) {
		t.Fatalf("Check() = %v, want ErrSumMismatch", err)
	}
	if !strings.Contains(err.Error(), "b") {
		t.Errorf("error %q should name the offending node", err)
	}
}

func TestCheck_Tolerance(t *testing.T) {
	nodes := []*Node{{Name: "r", Value: 0.3, Children: []*Node{
		{Name: "a", Value: 0.1},
		{Name: "b", Value: 0.2},
	}}}
	if err := Check(nodes); err != nil {
		t.Errorf("Check() = %v, want nil for rounding noise", err)
	}
}

func TestPrune(t *testing.T) {
	tests := []struct {
		depth int
		want  string
	}{
		{0, "b=3[y=1 x=2] a=5[z=5]"},
		{1, "b=3 a=5"},
		{2, "b=3[y=1 x=2] a=5[z=5]"},
		{5, "b=3[y=1 x=2] a=5[z=5]"},
	}
	for _, tt := range tests {
		t.Run(fmt.Sprint(tt.depth), func(t *testing.T) {
			src := sample()
			got := Prune(src, tt.depth)
			if s := dump(got); s != tt.want {
				t.Errorf("Prune(%d) = %s, want %s", tt.depth, s, tt.want)
			}
			if !reflect.DeepEqual(src, sample()) {
				t.Error("Prune modified its input")
			}
		})
	}
}

func TestSort(t *testing.T) {
	tests := []struct {
		order Order
		want  string
	}{
		{"", "b=3[y=1 x=2] a=5[z=5]"},
		{OrderFirstSeen, "b=3[y=1 x=2] a=5[z=5]"},
		{OrderValue, "a=5[z=5] b=3[x=2 y=1]"},
		{OrderName, "a=5[z=5] b=3[x=2 y=1]"},
	}
	for _, tt := range tests {
		t.Run(string(tt.order), func(t *testing.T) {
			src := sample()
			got := Sort(src, tt.order)
			if s := dump(got); s != tt.want {
				t.Errorf("Sort(%q) = %s, want %s", tt.order, s, tt.want)
			}
			if !reflect.DeepEqual(src, sample()) {
				t.Error("Sort modified its input")
			}
		})
	}
}

func TestSort_StableTies(t *testing.T) {
	nodes := []*Node{{Name: "p", Value: 1}, {Name: "q", Value: 2}, {Name: "r", Value: 1}}
	if s := dump(Sort(nodes, OrderValue)); s != "q=2 p=1 r=1" {
		t.Errorf("Sort() = %s, want q=2 p=1 r=1", s)
	}
}

func TestRootStats(t *testing.T) {
	r := Wrap("", sample())
	got := r.Stats()
	want := Stats{Nodes: 5, Leaves: 3, Depth: 2, Total: 8}
	if got != want {
		t.Errorf("Stats() = %+v, want %+v", got, want)
	}

	empty := Wrap("top", nil)
	if !empty.IsEmpty() {
		t.Error("IsEmpty() = false for nil roots")
	}
	if s := empty.Stats(); s != (Stats{}) {
		t.Errorf("Stats() = %+v, want zero", s)
	}
}

func TestNodeWalk(t *testing.T) {
	var visited []string
	n := &Node{Name: "top", Children: sample()}
	n.Walk(func(n *Node, depth int) bool {
		visited = append(visited, fmt.Sprintf("%s:%d", n.Name, depth))
		return n.Name != "b"
	})
	want := []string{"top:0", "b:1", "a:1", "z:2"}
	if !reflect.DeepEqual(visited, want) {
		t.Errorf("Walk visited %v, want %v", visited, want)
	}
}

func TestClone(t *testing.T) {
	src := sample()[0]
	c := src.Clone()
	c.Children[0].Value = 99
	if src.Children[0].Value != 1 {
		t.Error("Clone shares children with the original")
	}
	if leaf := (&Node{Name: "l"}).Clone(); leaf.Children != nil {
		t.Error("Clone of a leaf should keep nil Children")
	}
}
