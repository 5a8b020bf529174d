package cli

import (
	"strings"
	"testing"

	"golang.org/x/text/language"

	"github.com/matzehuels/stacktree/pkg/tree"
)

func sampleRoot() *tree.Root {
	return tree.Wrap("world", []*tree.Node{
		{Name: "NA", Value: 1410, Children: []*tree.Node{
			{Name: "USA", Value: 1310},
			{Name: "Mexico", Value: 100},
		}},
		{Name: "Asia", Value: 2000, Children: []*tree.Node{
			{Name: "India", Value: 2000},
		}},
	})
}

func TestTerminalTree(t *testing.T) {
	out := terminalTree(sampleRoot(), 0, tree.OrderFirstSeen, language.English)

	for _, want := range []string{"world", "3,410", "NA", "1,410", "USA", "1,310", "Mexico", "India", "╰──"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if strings.Index(out, "NA") > strings.Index(out, "Asia") {
		t.Errorf("first-seen order not kept:\n%s", out)
	}
}

func TestTerminalTree_OrderAndDepth(t *testing.T) {
	out := terminalTree(sampleRoot(), 1, tree.OrderValue, language.English)

	if strings.Contains(out, "USA") || strings.Contains(out, "India") {
		t.Errorf("depth 1 should hide countries:\n%s", out)
	}
	if strings.Index(out, "Asia") > strings.Index(out, "NA") {
		t.Errorf("value order should put Asia first:\n%s", out)
	}
}

func TestTerminalTree_Locale(t *testing.T) {
	out := terminalTree(sampleRoot(), 1, "", language.German)
	if !strings.Contains(out, "3.410") {
		t.Errorf("german grouping missing:\n%s", out)
	}
}

func TestTerminalTree_Empty(t *testing.T) {
	out := terminalTree(tree.Wrap("", nil), 0, "", language.English)
	if strings.TrimSpace(out) != "world" {
		t.Errorf("empty tree = %q, want just the root name", out)
	}
}

func TestPrintCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "population.csv", populationCSV)
	cfg := writeFile(t, dir, "stacktree.toml", "[cache]\nbackend = \"none\"\n")

	out, err := runCLI(t, "--config", cfg, "print", input, "-d", "continent,country", "-m", "pop")
	if err != nil {
		t.Fatalf("print: %v", err)
	}
	for _, want := range []string{"world", "2,410", "Mexico"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}

	if _, err := runCLI(t, "--config", cfg, "print", input, "--locale", "!!"); err == nil {
		t.Error("invalid locale should fail")
	}
}
