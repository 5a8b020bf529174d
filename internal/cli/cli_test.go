package cli

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	stio "github.com/matzehuels/stacktree/pkg/io"
)

const populationCSV = `continent,country,pop
NA,USA,310
NA,Mexico,100
Asia,India,2000
`

// runCLI executes the root command with args and returns what it wrote to
// the command output.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	c := New(io.Discard, LogInfo)
	c.out = &out
	root := c.RootCommand()
	root.SetArgs(args)
	root.SetOut(io.Discard)
	root.SetErr(io.Discard)
	err := root.ExecuteContext(context.Background())
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestAggregateCommand(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "population.csv", populationCSV)

	out, err := runCLI(t, "aggregate", input, "-d", "continent", "-d", "country", "-m", "pop", "--no-cache")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}

	root, err := stio.UnmarshalTree([]byte(out))
	if err != nil {
		t.Fatalf("output is not a tree: %v\n%s", err, out)
	}
	if root.Name != "world" || root.Total() != 2410 || root.Measure != "pop" {
		t.Errorf("root = %s total %v measure %q", root.Name, root.Total(), root.Measure)
	}
	if len(root.Children) != 2 || len(root.Children[0].Children) != 2 {
		t.Errorf("unexpected shape: %+v", root.Children)
	}
}

func TestAggregateCommand_CommaDimensions(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "population.csv", populationCSV)
	output := filepath.Join(dir, "tree.json")

	if _, err := runCLI(t, "aggregate", input, "-d", "continent,country", "-m", "pop", "--root-name", "earth", "-o", output, "--no-cache"); err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	root, err := stio.ImportTree(output)
	if err != nil {
		t.Fatal(err)
	}
	if root.Name != "earth" {
		t.Errorf("root name = %q, want earth", root.Name)
	}
}

func TestAggregateCommand_Config(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "population.csv", populationCSV)
	cfg := writeFile(t, dir, "stacktree.toml", `
source    = "population"
dimension = ["continent"]
measure   = "pop"

[data]
dir = "."

[cache]
backend = "none"
`)

	out, err := runCLI(t, "--config", cfg, "aggregate")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	root, err := stio.UnmarshalTree([]byte(out))
	if err != nil {
		t.Fatal(err)
	}
	if len(root.Children) != 2 || root.Children[0].Name != "NA" || root.Children[0].Value != 410 {
		t.Errorf("children = %+v", root.Children)
	}
}

func TestAggregateCommand_Empty(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "population.csv", populationCSV)

	out, err := runCLI(t, "aggregate", input, "--no-cache")
	if err != nil {
		t.Fatalf("aggregate: %v", err)
	}
	if got := strings.TrimSpace(out); got != "{\n  \"name\": \"world\"\n}" {
		t.Errorf("output = %q, want empty world", got)
	}
}

func TestAggregateCommand_Errors(t *testing.T) {
	dir := t.TempDir()
	input := writeFile(t, dir, "population.csv", populationCSV)

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"unknown column", []string{"aggregate", input, "-d", "planet", "-m", "pop", "--no-cache"}, "unknown column"},
		{"string measure", []string{"aggregate", input, "-d", "continent", "-m", "country", "--no-cache"}, "not numeric"},
		{"missing file", []string{"aggregate", filepath.Join(dir, "nope.csv"), "-d", "continent", "-m", "pop", "--no-cache"}, "nope.csv"},
		{"no input", []string{"--config", writeFile(t, dir, "empty.toml", "[cache]\nbackend = \"none\"\n"), "aggregate"}, "no input"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want containing %q", err, tt.want)
			}
		})
	}
}

func TestDatasetsCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "population.csv", populationCSV)
	writeFile(t, dir, "sales.json", `{"data":{"a":[1]}}`)
	cfg := writeFile(t, dir, "stacktree.toml", "[data]\ndir = \".\"\n")

	out, err := runCLI(t, "--config", cfg, "datasets")
	if err != nil {
		t.Fatalf("datasets: %v", err)
	}
	if got := strings.Fields(out); len(got) != 2 || got[0] != "population" || got[1] != "sales" {
		t.Errorf("datasets = %q", got)
	}
}

func TestDatasetsExportCommand(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "population.csv", populationCSV)
	cfg := writeFile(t, dir, "stacktree.toml", "[data]\ndir = \".\"\n")

	out, err := runCLI(t, "--config", cfg, "datasets", "export", "population")
	if err != nil {
		t.Fatalf("datasets export: %v", err)
	}
	if out != populationCSV {
		t.Errorf("csv export = %q, want %q", out, populationCSV)
	}

	output := filepath.Join(dir, "population.json")
	if _, err := runCLI(t, "--config", cfg, "datasets", "export", "population", "-o", output); err != nil {
		t.Fatalf("datasets export -o: %v", err)
	}
	tb, err := stio.ReadTable(output)
	if err != nil {
		t.Fatalf("ReadTable: %v", err)
	}
	if tb.Rows() != 3 || tb.DisplayName("pop") != "pop" {
		t.Errorf("json export rows = %d", tb.Rows())
	}

	tests := []struct {
		name string
		args []string
		want string
	}{
		{"missing dataset", []string{"--config", cfg, "datasets", "export", "nope"}, "nope"},
		{"bad format", []string{"--config", cfg, "datasets", "export", "population", "-f", "xml"}, "invalid table format"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := runCLI(t, tt.args...)
			if err == nil || !strings.Contains(err.Error(), tt.want) {
				t.Errorf("error = %v, want %q", err, tt.want)
			}
		})
	}
}
