package cli

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/matzehuels/stacktree/pkg/cache"
)

func TestCachePathCommand(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stacktree.toml", "[cache]\ndir = \"cache\"\n")

	out, err := runCLI(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if got, want := strings.TrimSpace(out), filepath.Join(dir, "cache"); got != want {
		t.Errorf("cache path = %q, want %q", got, want)
	}
}

func TestCachePathCommand_Default(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stacktree.toml", "")

	out, err := runCLI(t, "--config", cfg, "cache", "path")
	if err != nil {
		t.Fatalf("cache path: %v", err)
	}
	if !strings.HasSuffix(strings.TrimSpace(out), appName) {
		t.Errorf("default cache path %q should end with %q", out, appName)
	}
}

func TestCacheClearCommand(t *testing.T) {
	dir := t.TempDir()
	cacheDir := filepath.Join(dir, "cache")
	cfg := writeFile(t, dir, "stacktree.toml", "[cache]\nbackend = \"file\"\ndir = \"cache\"\n")

	ctx := context.Background()
	fc, err := cache.NewFileCache(cacheDir)
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"tree:a", "artifact:b"} {
		if err := fc.Set(ctx, key, []byte("x"), 0); err != nil {
			t.Fatal(err)
		}
	}

	if _, err := runCLI(t, "--config", cfg, "cache", "clear"); err != nil {
		t.Fatalf("cache clear: %v", err)
	}
	if _, ok, _ := fc.Get(ctx, "tree:a"); ok {
		t.Error("entry survived cache clear")
	}
}

func TestCacheClearCommand_Disabled(t *testing.T) {
	dir := t.TempDir()
	cfg := writeFile(t, dir, "stacktree.toml", "[cache]\nbackend = \"none\"\n")
	if _, err := runCLI(t, "--config", cfg, "cache", "clear"); err != nil {
		t.Errorf("cache clear with caching disabled: %v", err)
	}
}
