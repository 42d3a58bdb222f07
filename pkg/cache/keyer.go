package cache

// Keyer generates cache keys for the different data groups.
// Using an interface lets the service wrap keys with tenant prefixes
// (see ScopedKeyer) without touching call sites.
type Keyer interface {
	// HTTPKey generates a key for a downloaded HTTP resource.
	// The namespace identifies the fetcher (e.g. "imgsource:").
	HTTPKey(namespace, key string) string

	// ToneKey generates a key for a tone analysis result.
	// imageHash is the content hash of the source image bytes.
	ToneKey(imageHash string, opts ToneKeyOpts) string

	// CaptionKey generates a key for a caption suggestion response.
	CaptionKey(topic string, opts CaptionKeyOpts) string

	// ArtKey generates a key for generated background art.
	ArtKey(prompt string, opts ArtKeyOpts) string
}

// ToneKeyOpts are the analysis parameters that affect a tone result.
type ToneKeyOpts struct {
	SampleSize int `json:"sample_size"`
}

// CaptionKeyOpts are the request parameters that affect a caption response.
type CaptionKeyOpts struct {
	Model string `json:"model"`
	Lang  string `json:"lang"`
	Count int    `json:"count"`
}

// ArtKeyOpts are the request parameters that affect generated art.
type ArtKeyOpts struct {
	Model  string `json:"model"`
	Width  int    `json:"width"`
	Height int    `json:"height"`
	Seed   int64  `json:"seed"`
}

// DefaultKeyer generates deterministic keys by hashing the inputs.
type DefaultKeyer struct{}

// NewDefaultKeyer creates the standard keyer.
func NewDefaultKeyer() Keyer {
	return &DefaultKeyer{}
}

// HTTPKey generates a key for HTTP response caching.
// Format: http:namespace:key (no hashing, keys are already bounded).
func (k *DefaultKeyer) HTTPKey(namespace, key string) string {
	return "http:" + namespace + ":" + key
}

// ToneKey generates a key for tone analysis caching.
func (k *DefaultKeyer) ToneKey(imageHash string, opts ToneKeyOpts) string {
	return hashKey("tone", imageHash, opts)
}

// CaptionKey generates a key for caption response caching.
func (k *DefaultKeyer) CaptionKey(topic string, opts CaptionKeyOpts) string {
	return hashKey("caption", topic, opts)
}

// ArtKey generates a key for generated art caching.
func (k *DefaultKeyer) ArtKey(prompt string, opts ArtKeyOpts) string {
	return hashKey("art", prompt, opts)
}

// Ensure DefaultKeyer implements Keyer.
var _ Keyer = (*DefaultKeyer)(nil)
