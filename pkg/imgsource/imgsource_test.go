package imgsource

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/postframe/postframe/pkg/cache"
)

func testPNG(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.Set(x, y, color.NRGBA{R: uint8(x * 7), G: uint8(y * 7), B: 90, A: 255})
		}
	}
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestIsURL(t *testing.T) {
	tests := []struct {
		ref  string
		want bool
	}{
		{"http://example.com/a.png", true},
		{"https://example.com/a.png", true},
		{"ftp://example.com/a.png", false},
		{"/tmp/a.png", false},
		{"a.png", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := IsURL(tt.ref); got != tt.want {
			t.Errorf("IsURL(%q) = %v, want %v", tt.ref, got, tt.want)
		}
	}
}

func TestBaseName(t *testing.T) {
	tests := []struct {
		ref  string
		want string
	}{
		{"/photos/sunset.jpg", "sunset"},
		{"sunset.jpeg", "sunset"},
		{"archive.tar.gz", "archive.tar"},
		{"https://cdn.example.com/img/beach.png?w=960", "beach"},
		{"https://cdn.example.com/img/beach.png#frag", "beach"},
		{"https://example.com/", "image"},
		{"", "image"},
		{"noext", "noext"},
	}

	for _, tt := range tests {
		if got := BaseName(tt.ref); got != tt.want {
			t.Errorf("BaseName(%q) = %q, want %q", tt.ref, got, tt.want)
		}
	}
}

func TestLoadFile(t *testing.T) {
	dir := t.TempDir()
	data := testPNG(t, 8, 6)
	p := filepath.Join(dir, "shot.png")
	if err := os.WriteFile(p, data, 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	loader := NewLoader(nil, nil)
	src, err := loader.Load(context.Background(), p)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if src.Image.Bounds().Dx() != 8 || src.Image.Bounds().Dy() != 6 {
		t.Errorf("bounds = %v, want 8x6", src.Image.Bounds())
	}
	if src.Name != "shot" {
		t.Errorf("Name = %q, want %q", src.Name, "shot")
	}
	if src.Hash != cache.Hash(data) {
		t.Errorf("Hash = %q, want hash of raw bytes", src.Hash)
	}
	if src.FromCache {
		t.Error("file load reported FromCache = true")
	}
}

func TestLoadFileMissing(t *testing.T) {
	loader := NewLoader(nil, nil)
	_, err := loader.Load(context.Background(), filepath.Join(t.TempDir(), "nope.png"))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestLoadEmptyRef(t *testing.T) {
	loader := NewLoader(nil, nil)
	if _, err := loader.Load(context.Background(), "  "); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestLoadDecodeError(t *testing.T) {
	dir := t.TempDir()
	p := filepath.Join(dir, "garbage.png")
	if err := os.WriteFile(p, []byte("not an image"), 0o644); err != nil {
		t.Fatalf("write file: %v", err)
	}

	loader := NewLoader(nil, nil)
	if _, err := loader.Load(context.Background(), p); !errors.Is(err, ErrDecode) {
		t.Errorf("error = %v, want ErrDecode", err)
	}
}

func TestLoadURLCaching(t *testing.T) {
	data := testPNG(t, 10, 4)
	var hits int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.Header().Set("Content-Type", "image/png")
		w.Write(data)
	}))
	defer server.Close()

	fc, err := cache.NewFileCache(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileCache() error = %v", err)
	}
	loader := NewLoader(fc, nil)
	url := server.URL + "/beach.png"

	first, err := loader.Load(context.Background(), url)
	if err != nil {
		t.Fatalf("first Load() error = %v", err)
	}
	if first.FromCache {
		t.Error("first load reported FromCache = true")
	}
	if first.Name != "beach" {
		t.Errorf("Name = %q, want %q", first.Name, "beach")
	}

	second, err := loader.Load(context.Background(), url)
	if err != nil {
		t.Fatalf("second Load() error = %v", err)
	}
	if !second.FromCache {
		t.Error("second load reported FromCache = false")
	}
	if hits != 1 {
		t.Errorf("server hits = %d, want 1", hits)
	}
	if second.Hash != first.Hash {
		t.Errorf("cached hash %q differs from original %q", second.Hash, first.Hash)
	}
}

func TestLoadURLNotFound(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	loader := NewLoader(nil, nil)
	if _, err := loader.Load(context.Background(), server.URL+"/gone.png"); !errors.Is(err, ErrNotFound) {
		t.Errorf("error = %v, want ErrNotFound", err)
	}
}

func TestLoadURLServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	loader := NewLoader(nil, nil)
	if _, err := loader.Load(context.Background(), server.URL+"/a.png"); !errors.Is(err, ErrFetch) {
		t.Errorf("error = %v, want ErrFetch", err)
	}
}
