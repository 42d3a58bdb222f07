// Package cache provides caching for expensive composition inputs.
//
// Cached data falls into three groups: downloaded source images, color tone
// analyses keyed by image content hash, and collaborator responses (captions,
// generated art). Layout and render output are never cached; they are cheap
// to recompute and depend on too many style inputs to key reliably.
//
// Two backends are provided: FileCache for CLI usage and RedisCache for the
// HTTP service. NullCache disables caching entirely.
package cache

import (
	"context"
	"time"
)

// Cache is the interface all cache backends implement.
// Implementations must be safe for concurrent use.
type Cache interface {
	// Get retrieves a value. The second return value reports whether the
	// key was present and unexpired.
	Get(ctx context.Context, key string) ([]byte, bool, error)

	// Set stores a value with a TTL. A zero TTL means no expiration.
	Set(ctx context.Context, key string, data []byte, ttl time.Duration) error

	// Delete removes a value. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any resources held by the cache.
	Close() error
}

// Default TTLs per data group. Source bytes and tone analyses are immutable
// for a given image, so they get long TTLs; collaborator responses drift as
// upstream models change.
const (
	// TTLSource applies to downloaded source image bytes.
	TTLSource = 24 * time.Hour

	// TTLTone applies to tone analyses. Keyed by content hash, so a long
	// TTL is safe.
	TTLTone = 7 * 24 * time.Hour

	// TTLCollaborator applies to caption and art generation responses.
	TTLCollaborator = time.Hour
)
