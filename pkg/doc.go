// Package pkg provides the core libraries for Postframe image composition.
//
// # Overview
//
// Postframe turns a background image and a caption into a share-ready
// 960x1200 social-media frame. The image's color tone drives the text
// styling, so captions stay readable on any background. The pkg directory
// is organized into four main areas:
//
//  1. [compose] - Domain logic (tone analysis, layout, styling, rendering)
//  2. [imgsource] / [fontcatalog] - Asset loading (images, typefaces)
//  3. [integrations] - External API clients (caption rewrite, background generation)
//  4. [pipeline] - Orchestration (load → analyze → compose → encode)
//
// # Architecture
//
// The typical data flow through Postframe:
//
//	Image file or URL
//	         ↓
//	    [imgsource] package (fetch + decode)
//	         ↓
//	    [compose] tone analysis (average, accent, dark/light)
//	         ↓
//	    [compose] layout + render (wrap, shrink, draw)
//	         ↓
//	    PNG output
//
// # Quick Start
//
// Compose a frame from an image and a caption:
//
//	import (
//	    "context"
//	    "github.com/postframe/postframe/pkg/cache"
//	    "github.com/postframe/postframe/pkg/pipeline"
//	)
//
//	runner := pipeline.NewRunner(cache.NewNullCache(), nil, nil)
//	defer runner.Close()
//
//	result, _ := runner.Execute(context.Background(), pipeline.Options{
//	    Text:       "Big announcement coming Friday",
//	    Background: "sunset.jpg",
//	    Preset:     "adaptive",
//	})
//	os.WriteFile(result.Filename, result.PNG, 0o644)
//
// # Main Packages
//
// ## Core Domain Logic
//
// [compose] - The composition engine. Analyzes image tone, wraps and shrinks
// caption text to fit the canvas, applies one of four presets (adaptive,
// gold, strike, banner), and renders the finished frame. Also provides
// [compose.Session] for interactive editing with stale-analysis discard.
//
// [imgsource] - Background and logo loading from local files and HTTP(S)
// URLs. Decode failures degrade to generated fallbacks rather than
// aborting the composition.
//
// [fontcatalog] - Typeface discovery and loading. Resolves family names
// against the host's installed fonts and falls back to the bundled set.
//
// ## External Integrations
//
// [integrations] - Shared HTTP client plumbing with response caching and
// a uniform error contract. Upstream {"error": ...} messages surface
// verbatim; nothing retries.
//
// [integrations/caption] - Caption-rewrite collaborator (text in, polished
// text out).
//
// [integrations/imagegen] - Background-generation collaborator (prompt in,
// PNG out). Requires an API key, checked before any network attempt.
//
// ## Infrastructure
//
// [pipeline] - Complete composition pipeline (load → analyze → compose →
// encode) used by CLI, API, and studio. Ensures consistent behavior across
// all entry points. Source bytes and tone analyses are cached; layout and
// rendering always run fresh.
//
// [cache] - Cache backends keyed by content hash: FileCache for the CLI
// (filesystem), RedisCache for the server, NullCache for tests and
// --no-cache runs.
//
// [prefs] - Persisted user preferences (default preset, font, logo) stored
// as TOML under the user config directory.
//
// [observability] - Process-wide hooks for cache, HTTP, and compose events.
// No-ops unless installed.
//
// [buildinfo] - Version metadata stamped at build time.
//
// # Common Workflows
//
// Analyze a background without rendering:
//
//	src, _ := loader.Load(ctx, "sunset.jpg")
//	tone, _ := runner.Analyze(ctx, src.Image, src.Hash, false)
//	fmt.Println(tone.Dark, tone.Average.Hex())
//
// Derive a style from a tone:
//
//	picker := compose.NewPicker(seed)
//	derived := picker.Derive(tone)
//	style := compose.DefaultStyle()
//	compose.ApplyDerived(&style, derived)
//
// Rewrite a caption through the collaborator:
//
//	client := caption.NewClient(backend, nil, endpoint, cache.TTLCollaborator)
//	polished, _ := client.Rewrite(ctx, "my rough draft", false)
//
// # Testing
//
// Run tests:
//
//	go test ./pkg/...               # All tests
//	go test ./pkg/compose/...      # Specific package
//	go test -run Example            # Examples only
//
// [compose]: https://pkg.go.dev/github.com/postframe/postframe/pkg/compose
// [compose.Session]: https://pkg.go.dev/github.com/postframe/postframe/pkg/compose#Session
// [imgsource]: https://pkg.go.dev/github.com/postframe/postframe/pkg/imgsource
// [fontcatalog]: https://pkg.go.dev/github.com/postframe/postframe/pkg/fontcatalog
// [integrations]: https://pkg.go.dev/github.com/postframe/postframe/pkg/integrations
// [integrations/caption]: https://pkg.go.dev/github.com/postframe/postframe/pkg/integrations/caption
// [integrations/imagegen]: https://pkg.go.dev/github.com/postframe/postframe/pkg/integrations/imagegen
// [pipeline]: https://pkg.go.dev/github.com/postframe/postframe/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/postframe/postframe/pkg/cache
// [prefs]: https://pkg.go.dev/github.com/postframe/postframe/pkg/prefs
// [observability]: https://pkg.go.dev/github.com/postframe/postframe/pkg/observability
// [buildinfo]: https://pkg.go.dev/github.com/postframe/postframe/pkg/buildinfo
package pkg
