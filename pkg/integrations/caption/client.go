// Package caption calls the remote caption-rewrite service. The service
// is opaque text-in/text-out: it takes the user's draft and returns a
// polished caption, or its own error message which is surfaced to the
// caller unchanged.
package caption

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/postframe/postframe/pkg/cache"
	"github.com/postframe/postframe/pkg/integrations"
)

// Client provides access to the caption-rewrite collaborator.
//
// All methods are safe for concurrent use by multiple goroutines.
type Client struct {
	*integrations.Client
	keyer    cache.Keyer
	endpoint string
}

// NewClient creates a caption client. Pass nil for backend to disable
// response caching and nil for keyer to use the default key format.
func NewClient(backend cache.Cache, keyer cache.Keyer, endpoint string, cacheTTL time.Duration) *Client {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Client{
		Client:   integrations.NewClient(backend, cacheTTL, nil),
		keyer:    keyer,
		endpoint: endpoint,
	}
}

// Rewrite sends text to the rewrite service and returns the polished
// caption. Identical inputs are served from cache; refresh bypasses it.
//
// Returns:
//   - [integrations.ErrNotConfigured] if no endpoint is set (no network attempt)
//   - an [integrations.UpstreamError] carrying the service's own message verbatim
//   - [integrations.ErrNetwork] for transport failures
func (c *Client) Rewrite(ctx context.Context, text string, refresh bool) (string, error) {
	if c.endpoint == "" {
		return "", fmt.Errorf("%w: caption endpoint", integrations.ErrNotConfigured)
	}
	if strings.TrimSpace(text) == "" {
		return "", errors.New("caption text is empty")
	}

	key := c.keyer.CaptionKey(text, cache.CaptionKeyOpts{})

	var resp apiResponse
	err := c.Cached(ctx, key, refresh, &resp, func() error {
		return c.PostJSON(ctx, c.endpoint, apiRequest{Text: text}, &resp)
	})
	if err != nil {
		return "", err
	}
	return resp.Caption, nil
}

type apiRequest struct {
	Text string `json:"text"`
}

type apiResponse struct {
	Caption string `json:"caption"`
}
