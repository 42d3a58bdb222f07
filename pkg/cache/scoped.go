package cache

// ScopedKeyer wraps a Keyer with a prefix for multi-tenant isolation.
// The HTTP service uses this to keep per-user collaborator responses
// separate while sharing globally keyed tone analyses is handled by
// simply not scoping those callers.
//
// Example usage:
//
//	// User-specific keys for authenticated requests
//	userKeyer := NewScopedKeyer(NewDefaultKeyer(), "user:abc123:")
//
//	// Global keys for anonymous requests
//	globalKeyer := NewDefaultKeyer()
type ScopedKeyer struct {
	inner  Keyer
	prefix string
}

// NewScopedKeyer creates a keyer with a prefix.
// The prefix is prepended to all generated keys.
func NewScopedKeyer(inner Keyer, prefix string) Keyer {
	if inner == nil {
		inner = NewDefaultKeyer()
	}
	return &ScopedKeyer{
		inner:  inner,
		prefix: prefix,
	}
}

// HTTPKey generates a prefixed key for HTTP response caching.
func (k *ScopedKeyer) HTTPKey(namespace, key string) string {
	return k.prefix + k.inner.HTTPKey(namespace, key)
}

// ToneKey generates a prefixed key for tone analysis caching.
func (k *ScopedKeyer) ToneKey(imageHash string, opts ToneKeyOpts) string {
	return k.prefix + k.inner.ToneKey(imageHash, opts)
}

// CaptionKey generates a prefixed key for caption response caching.
func (k *ScopedKeyer) CaptionKey(topic string, opts CaptionKeyOpts) string {
	return k.prefix + k.inner.CaptionKey(topic, opts)
}

// ArtKey generates a prefixed key for generated art caching.
func (k *ScopedKeyer) ArtKey(prompt string, opts ArtKeyOpts) string {
	return k.prefix + k.inner.ArtKey(prompt, opts)
}
