// Package compose implements the image-composition core: color-tone
// analysis of a background photo, adaptive text-style derivation, text
// wrapping with automatic font-size reduction, and the preset-driven
// renderer that layers background, readability plate, logo, and text
// into a fixed 960x1200 raster.
//
// The package is deliberately free of I/O. Images arrive decoded, fonts
// arrive through the FaceSource capability, and randomness arrives
// through a seeded Picker, so every stage is deterministic and testable
// in isolation. Loading files or URLs lives in pkg/imgsource, font
// resolution in pkg/fontcatalog, and orchestration in pkg/pipeline.
//
// A typical composition:
//
//	tone, err := compose.AnalyzeTone(bg)
//	picker := compose.NewPicker(seed)
//	style := compose.DefaultStyle()
//	compose.ApplyDerived(&style, picker.Derive(tone))
//
//	r := compose.NewRenderer(faces)
//	png, err := r.RenderPNG(compose.Input{
//		Background: bg,
//		Text:       caption,
//		Style:      style,
//		Preset:     compose.PresetAdaptive,
//	})
package compose
