package integrations

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/postframe/postframe/pkg/cache"
)

func TestNewClient(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	headers := map[string]string{"Authorization": "Bearer token"}
	client := NewClient(c, time.Hour, headers)

	if client == nil {
		t.Fatal("NewClient() returned nil")
	}
	if client.http == nil {
		t.Error("NewClient() http client is nil")
	}
	if client.cache != c {
		t.Error("NewClient() cache not set correctly")
	}
	if client.headers["Authorization"] != "Bearer token" {
		t.Error("NewClient() headers not set correctly")
	}
}

func TestNewClientNilBackend(t *testing.T) {
	client := NewClient(nil, time.Hour, nil)
	if client.cache == nil {
		t.Error("NewClient() should substitute a null cache for nil backend")
	}
}

func TestClientPostJSON(t *testing.T) {
	type request struct {
		Text string `json:"text"`
	}
	type response struct {
		Message string `json:"message"`
	}

	var got request
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if ct := r.Header.Get("Content-Type"); ct != "application/json" {
			t.Errorf("Content-Type = %q, want %q", ct, "application/json")
		}
		json.NewDecoder(r.Body).Decode(&got)
		json.NewEncoder(w).Encode(response{Message: "hello"})
	}))
	defer server.Close()

	client := NewClient(nil, time.Hour, nil)
	client.http = server.Client()

	var resp response
	if err := client.PostJSON(context.Background(), server.URL, request{Text: "hi"}, &resp); err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if got.Text != "hi" {
		t.Errorf("server received text %q, want %q", got.Text, "hi")
	}
	if resp.Message != "hello" {
		t.Errorf("PostJSON() message = %q, want %q", resp.Message, "hello")
	}
}

func TestClientPostJSONDefaultHeaders(t *testing.T) {
	var receivedHeader string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		receivedHeader = r.Header.Get("Authorization")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}))
	defer server.Close()

	client := NewClient(nil, time.Hour, map[string]string{"Authorization": "Bearer secret"})
	client.http = server.Client()

	var resp map[string]string
	if err := client.PostJSON(context.Background(), server.URL, nil, &resp); err != nil {
		t.Fatalf("PostJSON() error: %v", err)
	}
	if receivedHeader != "Bearer secret" {
		t.Errorf("Authorization header = %q, want %q", receivedHeader, "Bearer secret")
	}
}

func TestClientPostJSONUpstreamError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
		json.NewEncoder(w).Encode(map[string]string{"error": "model overloaded"})
	}))
	defer server.Close()

	client := NewClient(nil, time.Hour, nil)
	client.http = server.Client()

	err := client.PostJSON(context.Background(), server.URL, nil, nil)
	if !errors.Is(err, ErrUpstream) {
		t.Fatalf("PostJSON() error = %v, want ErrUpstream", err)
	}

	var upstream *UpstreamError
	if !errors.As(err, &upstream) {
		t.Fatalf("PostJSON() error type = %T, want *UpstreamError", err)
	}
	if upstream.Message != "model overloaded" {
		t.Errorf("Message = %q, want the upstream text verbatim", upstream.Message)
	}
	if upstream.StatusCode != http.StatusBadGateway {
		t.Errorf("StatusCode = %d, want %d", upstream.StatusCode, http.StatusBadGateway)
	}
	if err.Error() != "model overloaded" {
		t.Errorf("Error() = %q, want the upstream text alone", err.Error())
	}
}

func TestClientPostJSON404(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	client := NewClient(nil, time.Hour, nil)
	client.http = server.Client()

	if err := client.PostJSON(context.Background(), server.URL, nil, nil); !errors.Is(err, ErrNotFound) {
		t.Errorf("PostJSON() error = %v, want ErrNotFound", err)
	}
}

func TestClientPostJSON500(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer server.Close()

	client := NewClient(nil, time.Hour, nil)
	client.http = server.Client()

	if err := client.PostJSON(context.Background(), server.URL, nil, nil); !errors.Is(err, ErrNetwork) {
		t.Errorf("PostJSON() error = %v, want ErrNetwork", err)
	}
}

func TestClientCached(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, time.Hour, nil)

	type testData struct {
		Value string `json:"value"`
	}

	fetchCount := 0
	fetch := func(v *testData) func() error {
		return func() error {
			fetchCount++
			*v = testData{Value: "fetched"}
			return nil
		}
	}

	var first testData
	if err := client.Cached(context.Background(), "test:key", false, &first, fetch(&first)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 {
		t.Fatalf("fetch count = %d, want 1", fetchCount)
	}

	var second testData
	if err := client.Cached(context.Background(), "test:key", false, &second, fetch(&second)); err != nil {
		t.Fatalf("Cached() error: %v", err)
	}
	if fetchCount != 1 {
		t.Errorf("fetch count after cached call = %d, want 1", fetchCount)
	}
	if second.Value != "fetched" {
		t.Errorf("cached value = %q, want %q", second.Value, "fetched")
	}
}

func TestClientCachedRefresh(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, time.Hour, nil)

	fetchCount := 0
	var value string
	fetch := func() error {
		fetchCount++
		value = "fetched"
		return nil
	}

	for i := 0; i < 2; i++ {
		if err := client.Cached(context.Background(), "test:key", true, &value, fetch); err != nil {
			t.Fatalf("Cached() error: %v", err)
		}
	}
	if fetchCount != 2 {
		t.Errorf("fetch count = %d, want 2 with refresh", fetchCount)
	}
}

func TestClientCachedFetchError(t *testing.T) {
	c, _ := cache.NewFileCache(t.TempDir())
	defer c.Close()

	client := NewClient(c, time.Hour, nil)

	var value string
	fetchCount := 0
	fetch := func() error {
		fetchCount++
		return ErrNotFound
	}

	if err := client.Cached(context.Background(), "test:errkey", false, &value, fetch); !errors.Is(err, ErrNotFound) {
		t.Errorf("Cached() error = %v, want ErrNotFound", err)
	}

	// A failed fetch must not populate the cache.
	if err := client.Cached(context.Background(), "test:errkey", false, &value, fetch); err == nil {
		t.Error("Cached() should call fetch again after a failure")
	}
	if fetchCount != 2 {
		t.Errorf("fetch count = %d, want 2", fetchCount)
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		name     string
		code     int
		body     string
		wantType error
		wantMsg  string
	}{
		{
			name:     "404 without body",
			code:     404,
			wantType: ErrNotFound,
		},
		{
			name:     "500 with plain body",
			code:     500,
			body:     "Internal Server Error",
			wantType: ErrNetwork,
		},
		{
			name:     "400 with upstream message",
			code:     400,
			body:     `{"error":"prompt rejected"}`,
			wantType: ErrUpstream,
			wantMsg:  "prompt rejected",
		},
		{
			name:     "503 with upstream message",
			code:     503,
			body:     `{"error":"try again later"}`,
			wantType: ErrUpstream,
			wantMsg:  "try again later",
		},
		{
			name:     "404 with upstream message wins over sentinel",
			code:     404,
			body:     `{"error":"unknown model"}`,
			wantType: ErrUpstream,
			wantMsg:  "unknown model",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := statusError(tt.code, []byte(tt.body))
			if !errors.Is(err, tt.wantType) {
				t.Fatalf("statusError() error = %v, want %v", err, tt.wantType)
			}
			if tt.wantMsg != "" && err.Error() != tt.wantMsg {
				t.Errorf("Error() = %q, want %q", err.Error(), tt.wantMsg)
			}
		})
	}
}

func TestKeyNamespace(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"caption:abc123", "caption"},
		{"art:def456", "art"},
		{"http:imgsource:https://x", "http"},
		{"plainkey", "plainkey"},
	}

	for _, tt := range tests {
		if got := keyNamespace(tt.key); got != tt.want {
			t.Errorf("keyNamespace(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestNewHTTPClient(t *testing.T) {
	client := NewHTTPClient()
	if client == nil {
		t.Fatal("NewHTTPClient() returned nil")
	}
	if client.Timeout != httpTimeout {
		t.Errorf("Timeout = %v, want %v", client.Timeout, httpTimeout)
	}
}
