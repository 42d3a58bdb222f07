package cli

import (
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/postframe/postframe/internal/config"
)

func testCLI(t *testing.T) *CLI {
	t.Helper()
	c := New(io.Discard, LogInfo)
	cfg := config.Default()
	c.cfg = &cfg
	return c
}

func TestCacheDir(t *testing.T) {
	t.Setenv("XDG_CACHE_HOME", "")

	c := testCLI(t)
	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}

	home, _ := os.UserHomeDir()
	want := filepath.Join(home, ".cache", "postframe")
	if dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirXDG(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("XDG_CACHE_HOME", tmp)

	c := testCLI(t)
	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if want := filepath.Join(tmp, "postframe"); dir != want {
		t.Errorf("cacheDir() = %q, want %q", dir, want)
	}
}

func TestCacheDirConfigOverride(t *testing.T) {
	c := testCLI(t)
	c.cfg.CacheDir = "/srv/postframe-cache"

	dir, err := c.cacheDir()
	if err != nil {
		t.Fatalf("cacheDir() error: %v", err)
	}
	if dir != "/srv/postframe-cache" {
		t.Errorf("cacheDir() = %q, want config value", dir)
	}
}

func TestCacheUsage(t *testing.T) {
	dir := t.TempDir()
	sub := filepath.Join(dir, "ab")
	if err := os.MkdirAll(sub, 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(sub, "one"), []byte("12345"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "two"), []byte("123"), 0o644); err != nil {
		t.Fatal(err)
	}

	entries, size := cacheUsage(dir)
	if entries != 2 {
		t.Errorf("entries = %d, want 2", entries)
	}
	if size != 8 {
		t.Errorf("size = %d, want 8", size)
	}
}

func TestFormatBytes(t *testing.T) {
	tests := []struct {
		n    int64
		want string
	}{
		{0, "0 B"},
		{512, "512 B"},
		{2048, "2.0 KB"},
		{5 * 1024 * 1024, "5.0 MB"},
	}
	for _, tt := range tests {
		if got := formatBytes(tt.n); got != tt.want {
			t.Errorf("formatBytes(%d) = %q, want %q", tt.n, got, tt.want)
		}
	}
}

func TestRootCommandRegistersSubcommands(t *testing.T) {
	c := testCLI(t)
	root := c.RootCommand()

	want := []string{"compose", "caption", "background", "studio", "serve", "cache", "completion"}
	for _, name := range want {
		found := false
		for _, sub := range root.Commands() {
			if sub.Name() == name {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}
}

func TestResolveText(t *testing.T) {
	path := filepath.Join(t.TempDir(), "caption.txt")
	if err := os.WriteFile(path, []byte("  from a file\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	got, err := resolveText(&composeOpts{textFile: path})
	if err != nil {
		t.Fatalf("resolveText() error: %v", err)
	}
	if got != "from a file" {
		t.Errorf("resolveText() = %q, want trimmed file contents", got)
	}

	got, err = resolveText(&composeOpts{text: "inline"})
	if err != nil {
		t.Fatalf("resolveText() error: %v", err)
	}
	if got != "inline" {
		t.Errorf("resolveText() = %q, want inline", got)
	}

	_, err = resolveText(&composeOpts{text: "a", textFile: path})
	if err == nil || !strings.Contains(err.Error(), "mutually exclusive") {
		t.Errorf("resolveText() error = %v, want mention of mutually exclusive", err)
	}
}
