// Package imgsource loads background and logo images from local files
// or URLs. After decode both origins are treated identically; the rest
// of the system only ever sees a decoded bitmap plus its content hash.
//
// URL fetches go through the cache so repeated composes of the same
// remote photo hit the network once. File reads are never cached.
package imgsource

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"io"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"strings"
	"time"

	"github.com/disintegration/imaging"

	"github.com/postframe/postframe/pkg/cache"
	"github.com/postframe/postframe/pkg/observability"
)

// Sentinel errors. Callers that want graceful degradation (fallback
// background, omitted logo) match on these; nothing here retries.
var (
	ErrNotFound = errors.New("image not found")
	ErrFetch    = errors.New("image fetch failed")
	ErrDecode   = errors.New("image decode failed")
)

const fetchTimeout = 30 * time.Second

// Source is a loaded image with the metadata callers need: the decoded
// bitmap, the raw bytes, their hash (the tone-cache key), and a base
// name for deriving output file names.
type Source struct {
	Image     image.Image
	Bytes     []byte
	Hash      string
	Name      string
	FromCache bool
}

// Loader loads images uniformly from files and URLs.
type Loader struct {
	http  *http.Client
	cache cache.Cache
	keyer cache.Keyer
}

// NewLoader creates a loader. A nil cache disables URL caching.
func NewLoader(c cache.Cache, k cache.Keyer) *Loader {
	if c == nil {
		c = cache.NewNullCache()
	}
	if k == nil {
		k = cache.NewDefaultKeyer()
	}
	return &Loader{
		http:  &http.Client{Timeout: fetchTimeout},
		cache: c,
		keyer: k,
	}
}

// Load reads and decodes ref, which is a local path or an http(s) URL.
// EXIF orientation is applied during decode so phone photos come out
// upright.
func (l *Loader) Load(ctx context.Context, ref string) (*Source, error) {
	if strings.TrimSpace(ref) == "" {
		return nil, ErrNotFound
	}

	var (
		data      []byte
		fromCache bool
		err       error
	)
	if IsURL(ref) {
		data, fromCache, err = l.fetch(ctx, ref)
	} else {
		data, err = readFile(ref)
	}
	if err != nil {
		return nil, err
	}

	img, err := imaging.Decode(bytes.NewReader(data), imaging.AutoOrientation(true))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrDecode, ref, err)
	}

	return &Source{
		Image:     img,
		Bytes:     data,
		Hash:      cache.Hash(data),
		Name:      BaseName(ref),
		FromCache: fromCache,
	}, nil
}

func readFile(ref string) ([]byte, error) {
	data, err := os.ReadFile(ref)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, ref)
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", ref, err)
	}
	return data, nil
}

// fetch downloads a URL, consulting the cache first. Failures are not
// retried; a failed fetch degrades at the caller.
func (l *Loader) fetch(ctx context.Context, url string) (data []byte, fromCache bool, err error) {
	key := l.keyer.HTTPKey("imgsource", url)
	if cached, ok, _ := l.cache.Get(ctx, key); ok {
		observability.Cache().OnCacheHit(ctx, "source")
		return cached, true, nil
	}
	observability.Cache().OnCacheMiss(ctx, "source")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	start := time.Now()
	observability.HTTP().OnRequest(ctx, req.Method, req.URL.Host, req.URL.Path)

	resp, err := l.http.Do(req)
	if err != nil {
		observability.HTTP().OnError(ctx, req.Method, req.URL.Host, req.URL.Path, err)
		return nil, false, fmt.Errorf("%w: %v", ErrFetch, err)
	}
	defer resp.Body.Close()
	observability.HTTP().OnResponse(ctx, req.Method, req.URL.Host, req.URL.Path, resp.StatusCode, time.Since(start))

	switch {
	case resp.StatusCode == http.StatusOK:
	case resp.StatusCode == http.StatusNotFound:
		return nil, false, fmt.Errorf("%w: %s", ErrNotFound, url)
	default:
		return nil, false, fmt.Errorf("%w: status %d", ErrFetch, resp.StatusCode)
	}

	data, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrFetch, err)
	}

	_ = l.cache.Set(ctx, key, data, cache.TTLSource)
	observability.Cache().OnCacheSet(ctx, "source", len(data))
	return data, false, nil
}

// IsURL reports whether ref is an http(s) URL rather than a file path.
func IsURL(ref string) bool {
	return strings.HasPrefix(ref, "http://") || strings.HasPrefix(ref, "https://")
}

// BaseName extracts a file-name stem from a path or URL for use in
// derived output names. Empty or unusable refs come back as "image".
func BaseName(ref string) string {
	name := ref
	if IsURL(ref) {
		if i := strings.IndexAny(ref, "?#"); i >= 0 {
			name = ref[:i]
		}
		name = path.Base(name)
	} else {
		name = filepath.Base(name)
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	if name == "" || name == "." || name == "/" {
		return "image"
	}
	return name
}
