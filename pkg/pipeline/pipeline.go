// Package pipeline provides the core composition pipeline for postframe.
//
// This package implements the complete load → analyze → compose pipeline
// that can be used by CLI, API, and studio components. By centralizing
// this logic, we ensure consistent behavior across all entry points and
// avoid code duplication.
//
// # Architecture
//
// The pipeline consists of three stages:
//
//  1. Load: Read the background photo and logo from files or URLs
//  2. Analyze: Derive the photo's color tone (adaptive preset only)
//  3. Compose: Pick styling, lay out the caption, render the canvas
//
// Loads of remote images and tone analyses are cached. Compose output
// never is: layout depends on live style state and rendering is cheap
// next to a network fetch, so caching would only risk staleness.
//
// # Usage
//
// Create a Runner and execute the pipeline:
//
//	runner := pipeline.NewRunner(cache, nil, logger)
//	opts := pipeline.Options{
//	    Text:       "golden hour",
//	    Background: "beach.jpg",
//	    Preset:     "adaptive",
//	}
//	result, err := runner.Execute(ctx, opts)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	os.WriteFile(result.Filename, result.PNG, 0o644)
package pipeline

import (
	"fmt"
	"io"
	"math/rand/v2"
	"time"

	"github.com/charmbracelet/log"

	"github.com/postframe/postframe/pkg/compose"
)

// Defaults shared by CLI, API, and studio.
const (
	// DefaultPreset is the preset used when none is requested.
	DefaultPreset = "adaptive"

	// DefaultFontWeight is the caption weight used when none is requested.
	DefaultFontWeight = 700
)

// validWeights is the set of supported font weights.
var validWeights = map[int]bool{400: true, 500: true, 700: true}

// Options contains all configuration for the composition pipeline.
// This struct supports JSON serialization for API requests.
type Options struct {
	// Content options
	Text       string `json:"text"`
	Background string `json:"background,omitempty"` // path or URL; empty composes on the fallback gradient
	Logo       string `json:"logo,omitempty"`       // path or URL; empty omits the logo

	// Style options
	Preset       string  `json:"preset,omitempty"`
	FontFamily   string  `json:"font_family,omitempty"`
	FamilyPinned bool    `json:"family_pinned,omitempty"` // keep FontFamily through adaptive restyling
	FontWeight   int     `json:"font_weight,omitempty"`
	FontSize     float64 `json:"font_size,omitempty"` // starting size in px, clamped to the supported range
	Seed         uint64  `json:"seed,omitempty"`      // 0 picks a random seed
	LogoWidth    int     `json:"logo_width,omitempty"`
	LogoPadding  int     `json:"logo_padding,omitempty"`
	LogoBlur     float64 `json:"logo_blur,omitempty"`
	LogoOpacity  float64 `json:"logo_opacity,omitempty"`

	Refresh bool `json:"refresh,omitempty"` // bypass caches for this run

	// Runtime options (not serialized)
	Logger *log.Logger `json:"-"`

	// preset is the parsed form of Preset, set during validation.
	preset compose.Preset

	// validated tracks whether ValidateAndSetDefaults has been called.
	validated bool `json:"-"`
}

// Result contains the outputs of a pipeline run.
type Result struct {
	// PNG is the encoded 960x1200 canvas.
	PNG []byte

	// Tone is the background analysis, nil when none was performed.
	Tone *compose.ImageTone

	// Style is the effective text style after adaptive derivation.
	Style compose.TextStyle

	// Layout is the fitted caption layout; zero when no text was drawn.
	Layout compose.Layout

	// TextDrawn reports whether a caption ended up on the canvas.
	TextDrawn bool

	// Preset is the parsed preset the run used.
	Preset compose.Preset

	// Filename is a suggested output name derived from the source.
	Filename string

	// Stats contains timing information.
	Stats Stats

	// CacheInfo tracks which stages hit the cache.
	CacheInfo CacheInfo
}

// Stats contains pipeline execution statistics.
type Stats struct {
	LoadTime    time.Duration
	AnalyzeTime time.Duration
	ComposeTime time.Duration
}

// CacheInfo tracks cache hits for the cacheable pipeline stages.
type CacheInfo struct {
	SourceHit bool // Whether the background bytes came from cache
	ToneHit   bool // Whether the tone analysis came from cache
}

// ValidateAndSetDefaults checks fields and applies defaults for the full
// pipeline. This method is idempotent - calling it multiple times has
// the same effect as calling it once.
func (o *Options) ValidateAndSetDefaults() error {
	if o.validated {
		return nil
	}

	if o.Preset == "" {
		o.Preset = DefaultPreset
	}
	preset, err := compose.ParsePreset(o.Preset)
	if err != nil {
		return err
	}
	o.preset = preset

	if o.FontWeight == 0 {
		o.FontWeight = DefaultFontWeight
	}
	if !validWeights[o.FontWeight] {
		return fmt.Errorf("invalid font weight: %d (must be one of: 400, 500, 700)", o.FontWeight)
	}

	if o.LogoOpacity < 0 || o.LogoOpacity > 1 {
		return fmt.Errorf("invalid logo opacity: %v (must be within [0, 1])", o.LogoOpacity)
	}

	if o.FontSize < 0 {
		return fmt.Errorf("invalid font size: %v (must be positive)", o.FontSize)
	}

	// Seed 0 means "surprise me". Explicit seeds reproduce a run exactly.
	if o.Seed == 0 {
		o.Seed = rand.Uint64()
	}

	if o.Logger == nil {
		o.Logger = log.NewWithOptions(io.Discard, log.Options{})
	}

	o.validated = true
	return nil
}

// ParsedPreset returns the parsed preset. Valid after
// ValidateAndSetDefaults.
func (o *Options) ParsedPreset() compose.Preset {
	return o.preset
}

// IsAdaptive reports whether this run uses tone-driven styling.
func (o *Options) IsAdaptive() bool {
	return o.preset == compose.PresetAdaptive
}
