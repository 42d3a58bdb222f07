// Package imagegen calls the remote background-generation service. The
// service takes a text prompt and returns a finished image as a data
// URL; this package decodes it to raw bytes for the compose pipeline.
package imagegen

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/postframe/postframe/pkg/cache"
	"github.com/postframe/postframe/pkg/integrations"
)

// Default output dimensions, matching the compose canvas.
const (
	DefaultWidth  = 960
	DefaultHeight = 1200
)

// Request describes one generation call. Zero Width/Height take the
// canvas defaults; Seed passes through to the service for reproducible
// output.
type Request struct {
	Prompt string
	Width  int
	Height int
	Seed   int64
}

// Client provides access to the background-generation collaborator.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	keyer    cache.Keyer
	endpoint string
	apiKey   string
}

// NewClient creates a generation client. The API key is required at call
// time, not here, so an unconfigured client can still be constructed and
// report the missing credential cleanly.
func NewClient(backend cache.Cache, keyer cache.Keyer, endpoint, apiKey string, cacheTTL time.Duration) *Client {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	var headers map[string]string
	if apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + apiKey}
	}
	return &Client{
		Client:   integrations.NewClient(backend, cacheTTL, headers),
		keyer:    keyer,
		endpoint: endpoint,
		apiKey:   apiKey,
	}
}

// Generate requests a background image and returns its decoded bytes.
// Identical requests are served from cache; refresh bypasses it.
//
// Returns:
//   - [integrations.ErrMissingCredential] if no API key is set (no network attempt)
//   - [integrations.ErrNotConfigured] if no endpoint is set (no network attempt)
//   - an [integrations.UpstreamError] carrying the service's own message verbatim
//   - [integrations.ErrNetwork] for transport failures
func (c *Client) Generate(ctx context.Context, req Request, refresh bool) ([]byte, error) {
	if c.apiKey == "" {
		return nil, integrations.ErrMissingCredential
	}
	if c.endpoint == "" {
		return nil, fmt.Errorf("%w: generation endpoint", integrations.ErrNotConfigured)
	}
	if strings.TrimSpace(req.Prompt) == "" {
		return nil, errors.New("generation prompt is empty")
	}
	if req.Width <= 0 {
		req.Width = DefaultWidth
	}
	if req.Height <= 0 {
		req.Height = DefaultHeight
	}

	key := c.keyer.ArtKey(req.Prompt, cache.ArtKeyOpts{Width: req.Width, Height: req.Height, Seed: req.Seed})

	var resp apiResponse
	err := c.Cached(ctx, key, refresh, &resp, func() error {
		return c.PostJSON(ctx, c.endpoint, apiRequest{
			Prompt: req.Prompt,
			Width:  req.Width,
			Height: req.Height,
			Seed:   req.Seed,
		}, &resp)
	})
	if err != nil {
		return nil, err
	}
	return decodeDataURL(resp.Image)
}

// decodeDataURL extracts the raw bytes from a base64 data URL like
// "data:image/png;base64,....".
func decodeDataURL(s string) ([]byte, error) {
	if !strings.HasPrefix(s, "data:") {
		return nil, fmt.Errorf("malformed data URL")
	}
	i := strings.IndexByte(s, ',')
	if i < 0 {
		return nil, fmt.Errorf("malformed data URL")
	}
	meta, payload := s[len("data:"):i], s[i+1:]
	if !strings.HasSuffix(meta, ";base64") {
		return nil, fmt.Errorf("unsupported data URL encoding %q", meta)
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, fmt.Errorf("decode data URL: %w", err)
	}
	return data, nil
}

type apiRequest struct {
	Prompt string `json:"prompt"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Seed   int64  `json:"seed"`
}

type apiResponse struct {
	Image string `json:"image"`
}
