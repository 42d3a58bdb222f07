package pipeline

import (
	"context"
	"encoding/json"
	"fmt"
	"image"
	"time"

	"github.com/charmbracelet/log"

	"github.com/postframe/postframe/pkg/cache"
	"github.com/postframe/postframe/pkg/compose"
	"github.com/postframe/postframe/pkg/fontcatalog"
	"github.com/postframe/postframe/pkg/imgsource"
	"github.com/postframe/postframe/pkg/observability"
)

// Runner encapsulates pipeline execution with caching.
// Both CLI and API can use this to avoid duplicating caching logic.
//
// The Runner is stateless except for the cache, loader and font catalog.
// It doesn't store pipeline results, so multiple goroutines can safely
// use the same Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Logger *log.Logger

	Loader   *imgsource.Loader
	Renderer *compose.Renderer
}

// NewRunner creates a runner with the given cache and keyer.
// If keyer is nil, a DefaultKeyer is used.
// If cache is nil, a NullCache is used (caching disabled).
func NewRunner(c cache.Cache, keyer cache.Keyer, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:    c,
		Keyer:    keyer,
		Logger:   logger,
		Loader:   imgsource.NewLoader(c, keyer),
		Renderer: compose.NewRenderer(fontcatalog.New()),
	}
}

// Execute runs the complete load → analyze → compose pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{Preset: opts.preset}

	// Stage 1: Load
	loadStart := time.Now()
	bg := r.loadImage(ctx, opts.Background, "background", opts.Logger)
	logo := r.loadImage(ctx, opts.Logo, "logo", opts.Logger)
	result.Stats.LoadTime = time.Since(loadStart)
	if bg != nil {
		result.CacheInfo.SourceHit = bg.FromCache
		opts.Logger.Info("loaded background",
			"name", bg.Name,
			"cached", bg.FromCache,
			"duration", result.Stats.LoadTime)
	}

	style := BuildStyle(opts)

	// Stage 2: Analyze (adaptive preset only, and only with a photo)
	if opts.IsAdaptive() && bg != nil {
		analyzeStart := time.Now()
		observability.Compose().OnAnalyzeStart(ctx, opts.Background)
		tone, toneHit, err := r.AnalyzeWithCacheInfo(ctx, bg.Image, bg.Hash, opts.Refresh)
		result.Stats.AnalyzeTime = time.Since(analyzeStart)
		observability.Compose().OnAnalyzeComplete(ctx, opts.Background, tone.Dark, result.Stats.AnalyzeTime, err)

		if err != nil {
			opts.Logger.Warn("tone analysis failed, keeping default style", "error", err)
		} else {
			compose.ApplyDerived(&style, compose.NewPicker(opts.Seed).Derive(tone))
			result.Tone = &tone
			result.CacheInfo.ToneHit = toneHit
			opts.Logger.Info("analyzed tone",
				"dark", tone.Dark,
				"accent", tone.Accent.Hex(),
				"cached", toneHit,
				"duration", result.Stats.AnalyzeTime)
		}
	}
	result.Style = style

	// Stage 3: Compose. Never cached: output depends on live style state
	// and rendering is cheap next to a fetch.
	composeStart := time.Now()
	observability.Compose().OnLayoutStart(ctx, len(opts.Text))
	observability.Compose().OnRenderStart(ctx, opts.preset.String())

	in := compose.Input{
		Text:        opts.Text,
		Style:       style,
		Preset:      opts.preset,
		LogoWidth:   opts.LogoWidth,
		LogoPadding: opts.LogoPadding,
		LogoOpacity: opts.LogoOpacity,
		LogoBlur:    opts.LogoBlur,
	}
	if bg != nil {
		in.Background = bg.Image
	}
	if logo != nil {
		in.Logo = logo.Image
	}

	out, err := r.Renderer.Compose(in)
	result.Stats.ComposeTime = time.Since(composeStart)
	observability.Compose().OnRenderComplete(ctx, opts.preset.String(), result.Stats.ComposeTime, err)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}
	observability.Compose().OnLayoutComplete(ctx, len(out.Layout.Lines), out.Layout.FontSize, result.Stats.ComposeTime, nil)

	png, err := compose.EncodePNG(out.Image)
	if err != nil {
		return nil, fmt.Errorf("compose: %w", err)
	}

	result.PNG = png
	result.Layout = out.Layout
	result.TextDrawn = out.TextDrawn
	result.Filename = OutputFilename(opts.Background)

	opts.Logger.Info("composed canvas",
		"preset", opts.preset,
		"lines", len(out.Layout.Lines),
		"font_size", out.Layout.FontSize,
		"bytes", len(png),
		"duration", result.Stats.ComposeTime)

	return result, nil
}

// AnalyzeWithCacheInfo derives the image tone with caching and returns
// cache hit info. hash keys the analysis, so identical bytes are never
// analyzed twice even when loaded from different refs.
func (r *Runner) AnalyzeWithCacheInfo(ctx context.Context, img image.Image, hash string, refresh bool) (compose.ImageTone, bool, error) {
	key := r.Keyer.ToneKey(hash, cache.ToneKeyOpts{SampleSize: compose.SampleGrid})

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var tone compose.ImageTone
			if err := json.Unmarshal(data, &tone); err == nil {
				observability.Cache().OnCacheHit(ctx, "tone")
				return tone, true, nil
			}
		}
		observability.Cache().OnCacheMiss(ctx, "tone")
	}

	tone, err := compose.AnalyzeTone(img)
	if err != nil {
		return compose.ImageTone{}, false, err
	}

	if data, err := json.Marshal(tone); err == nil {
		_ = r.Cache.Set(ctx, key, data, cache.TTLTone)
		observability.Cache().OnCacheSet(ctx, "tone", len(data))
	}

	return tone, false, nil
}

// Analyze is a convenience wrapper that calls AnalyzeWithCacheInfo and
// discards the cache hit info.
func (r *Runner) Analyze(ctx context.Context, img image.Image, hash string, refresh bool) (compose.ImageTone, error) {
	tone, _, err := r.AnalyzeWithCacheInfo(ctx, img, hash, refresh)
	return tone, err
}

// loadImage loads one image ref, degrading to nil on any failure. A
// broken background or logo never aborts the pass; the renderer
// substitutes the fallback gradient or omits the logo layer.
func (r *Runner) loadImage(ctx context.Context, ref, role string, logger *log.Logger) *imgsource.Source {
	if ref == "" {
		return nil
	}
	src, err := r.Loader.Load(ctx, ref)
	if err != nil {
		logger.Warn("image load failed, degrading", "role", role, "ref", ref, "error", err)
		return nil
	}
	return src
}

// BuildStyle constructs the effective base style for a run: defaults,
// then the user's font selections, normalized.
func BuildStyle(opts Options) compose.TextStyle {
	style := compose.DefaultStyle()
	if opts.FontFamily != "" {
		style.Family = opts.FontFamily
	}
	style.FamilyPinned = opts.FamilyPinned
	if opts.FontWeight != 0 {
		style.Weight = opts.FontWeight
	}
	if opts.FontSize > 0 {
		style.SizePx = opts.FontSize
	}
	style.Normalize()
	return style
}

// OutputFilename suggests a PNG file name for a composition of ref.
// An empty ref (fallback background) yields "image-960x1200.png".
func OutputFilename(ref string) string {
	return fmt.Sprintf("%s-%dx%d.png", imgsource.BaseName(ref), compose.CanvasWidth, compose.CanvasHeight)
}

// Close releases resources held by the runner (primarily the cache).
func (r *Runner) Close() error {
	if r.Cache != nil {
		return r.Cache.Close()
	}
	return nil
}

// applyLogger sets the runner's logger on options if not already set.
func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}
