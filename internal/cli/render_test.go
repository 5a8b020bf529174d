package cli

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	stio "github.com/matzehuels/stacktree/pkg/io"
	"github.com/matzehuels/stacktree/pkg/pipeline"
)

func TestParseFormats(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  []string
	}{
		{"empty defaults to svg", "", []string{"svg"}},
		{"single format", "svg", []string{"svg"}},
		{"multiple formats", "svg,pdf,png", []string{"svg", "pdf", "png"}},
		{"dot only", "dot", []string{"dot"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := parseFormats(tt.input)
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("parseFormats(%q) = %v, want %v", tt.input, got, tt.want)
			}
		})
	}
}

func TestValidateFormats(t *testing.T) {
	tests := []struct {
		name    string
		formats []string
		wantErr bool
	}{
		{"valid svg", []string{"svg"}, false},
		{"valid dot", []string{"dot"}, false},
		{"valid all", []string{"svg", "pdf", "png", "json", "dot"}, false},
		{"invalid format", []string{"invalid"}, true},
		{"mixed valid invalid", []string{"svg", "invalid"}, true},
		{"empty slice", []string{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := pipeline.ValidateFormats(tt.formats)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateFormats(%v) error = %v, wantErr %v", tt.formats, err, tt.wantErr)
			}
		})
	}
}

func TestBasePath(t *testing.T) {
	tests := []struct {
		output, input, want string
	}{
		{"", "data/population.csv", "data/population"},
		{"out/tree.svg", "population.csv", "out/tree"},
		{"out/tree", "population.csv", "out/tree"},
		{"out/tree.v2", "population.csv", "out/tree.v2"},
	}
	for _, tt := range tests {
		if got := basePath(tt.output, tt.input); got != tt.want {
			t.Errorf("basePath(%q, %q) = %q, want %q", tt.output, tt.input, got, tt.want)
		}
	}
}

func TestOutputPaths(t *testing.T) {
	got := outputPaths("chart.png", "population.csv", []string{"png"})
	if got["png"] != "chart.png" {
		t.Errorf("single format path = %q, want chart.png", got["png"])
	}

	got = outputPaths("", "population.csv", []string{"svg", "dot"})
	want := map[string]string{"svg": "population.svg", "dot": "population.dot"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("outputPaths = %v, want %v", got, want)
	}
}

func TestIsTreeFile(t *testing.T) {
	dir := t.TempDir()
	tests := []struct {
		name, file, content string
		want                bool
	}{
		{"tree", "tree.json", `{"name":"world","children":[]}`, true},
		{"table", "table.json", `{"data":{"a":[1]}}`, false},
		{"csv", "table.csv", "name\nx\n", false},
		{"malformed", "bad.json", `{`, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeFile(t, dir, tt.file, tt.content)
			if got := isTreeFile(path); got != tt.want {
				t.Errorf("isTreeFile(%s) = %v, want %v", tt.file, got, tt.want)
			}
		})
	}
	if isTreeFile(filepath.Join(dir, "missing.json")) {
		t.Error("missing file should not be a tree")
	}
}

func TestRenderCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "population.csv", populationCSV)
	base := filepath.Join(dir, "out", "population")
	if err := os.MkdirAll(filepath.Dir(base), 0o755); err != nil {
		t.Fatal(err)
	}

	_, err := runCLI(t, "render", input, "-d", "continent,country", "-m", "pop",
		"-f", "dot,json", "-o", base, "--orientation", "vertical", "--order", "value", "--no-cache")
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	dot, err := os.ReadFile(base + ".dot")
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), "rankdir=TB") {
		t.Errorf("dot missing rankdir=TB:\n%s", dot)
	}

	root, err := stio.ImportTree(base + ".json")
	if err != nil {
		t.Fatal(err)
	}
	if root.Children[0].Name != "Asia" {
		t.Errorf("first child = %q, want Asia under value order", root.Children[0].Name)
	}
}

func TestRenderCommand_TreeInput(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "tree.json", `{"name":"world","children":[{"name":"a","value":2},{"name":"b","value":3}]}`)
	output := filepath.Join(dir, "tree.dot")

	if _, err := runCLI(t, "render", input, "-f", "dot", "-o", output, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	dot, err := os.ReadFile(output)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(dot), `"a\n2"`) {
		t.Errorf("dot missing leaf label:\n%s", dot)
	}
}

func TestRenderCommand_AggregatedBlankCells(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "regions.csv", "region,pop\nNA,1\n,2\n")
	treePath := filepath.Join(dir, "tree.json")

	if _, err := runCLI(t, "aggregate", input, "-d", "region", "-m", "pop", "--order", "value", "-o", treePath, "--no-cache"); err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	root, err := stio.ImportTree(treePath)
	if err != nil {
		t.Fatalf("ImportTree: %v", err)
	}
	if len(root.Children) != 2 || root.Children[0].Name != "" || root.Children[0].Value != 2 {
		t.Fatalf("children = %+v, want blank region first under value order", root.Children)
	}

	output := filepath.Join(dir, "tree.dot")
	if _, err := runCLI(t, "render", treePath, "-f", "dot", "-o", output, "--no-cache"); err != nil {
		t.Fatalf("render: %v", err)
	}
	if _, err := os.Stat(output); err != nil {
		t.Errorf("render output missing: %v", err)
	}
}

func TestRenderCommand_RefusesOverwrite(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "tree.json", `{"name":"world","children":[{"name":"a","value":2}]}`)

	_, err := runCLI(t, "render", input, "-f", "json", "--no-cache")
	if err == nil || !strings.Contains(err.Error(), "overwrite") {
		t.Errorf("error = %v, want refusal to overwrite input", err)
	}
}

func TestRenderCommand_InvalidFormat(t *testing.T) {
	_, err := runCLI(t, "render", "x.csv", "-f", "gif")
	if err == nil || !strings.Contains(err.Error(), "invalid format") {
		t.Errorf("error = %v, want invalid format", err)
	}
}
