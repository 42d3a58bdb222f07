package integrations

import (
	"errors"
	"net/http"
	"time"
)

const httpTimeout = 30 * time.Second

var (
	// ErrNotFound is returned when a collaborator endpoint doesn't exist.
	ErrNotFound = errors.New("resource not found")

	// ErrNetwork is returned for HTTP failures (timeouts, connection errors,
	// unexpected statuses). Nothing here retries; the caller decides.
	ErrNetwork = errors.New("network error")

	// ErrUpstream is the base of collaborator-reported failures. Match with
	// errors.Is; the concrete [UpstreamError] carries the service's message.
	ErrUpstream = errors.New("upstream error")

	// ErrNotConfigured is returned when a collaborator endpoint is unset.
	// Reported before any network attempt.
	ErrNotConfigured = errors.New("collaborator not configured")

	// ErrMissingCredential is returned when a collaborator requires an API
	// key and none is configured. Reported before any network attempt.
	ErrMissingCredential = errors.New("missing credential")
)

// UpstreamError is a failure the collaborator reported about itself,
// decoded from its {"error": ...} response body. Message is shown to the
// user unchanged and never alters image state.
type UpstreamError struct {
	StatusCode int
	Message    string
}

func (e *UpstreamError) Error() string { return e.Message }

func (e *UpstreamError) Unwrap() error { return ErrUpstream }

// NewHTTPClient creates an HTTP client with the standard collaborator
// timeout. Generation endpoints can take tens of seconds to respond.
func NewHTTPClient() *http.Client {
	return &http.Client{Timeout: httpTimeout}
}
