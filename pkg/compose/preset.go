package compose

import (
	"fmt"
	"image/color"
	"strings"
)

// Preset selects one of the fixed rendering recipes. Adaptive is the
// only preset that triggers tone-driven restyling; the others ignore
// the derived colors entirely.
type Preset int

const (
	PresetAdaptive Preset = iota
	PresetGold
	PresetStrike
	PresetBanner
)

var presetNames = map[Preset]string{
	PresetAdaptive: "adaptive",
	PresetGold:     "gold",
	PresetStrike:   "strike",
	PresetBanner:   "banner",
}

// String returns the preset's lowercase name.
func (p Preset) String() string {
	if name, ok := presetNames[p]; ok {
		return name
	}
	return fmt.Sprintf("preset(%d)", int(p))
}

// ParsePreset converts a name into a Preset, case-insensitively.
func ParsePreset(s string) (Preset, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "adaptive", "":
		return PresetAdaptive, nil
	case "gold":
		return PresetGold, nil
	case "strike":
		return PresetStrike, nil
	case "banner":
		return PresetBanner, nil
	}
	return PresetAdaptive, fmt.Errorf("unknown preset %q (want adaptive, gold, strike or banner)", s)
}

// AllPresets lists every preset in catalog order.
func AllPresets() []Preset {
	return []Preset{PresetAdaptive, PresetGold, PresetStrike, PresetBanner}
}

// Stop is one color stop of a gradient fill.
type Stop struct {
	Pos   float64
	Color color.NRGBA
}

// Gradient is a multi-stop linear gradient spanning the text block:
// top to bottom when vertical, left to right when horizontal.
type Gradient struct {
	Horizontal bool
	Stops      []Stop
}

// FillPaint is either a solid color or a gradient. Gradient takes
// precedence when non-nil.
type FillPaint struct {
	Solid    color.NRGBA
	Gradient *Gradient
}

// Recipe bundles the shadow, stroke and fill treatment for one preset.
type Recipe struct {
	ShadowColor   color.NRGBA
	ShadowBlur    float64
	ShadowOffsetY float64

	StrokeColor color.NRGBA
	strokeScale float64
	strokeMin   float64

	Fill FillPaint
}

// StrokeWidth returns the stroke width for the given font size:
// max(scale*size, min). Presets with a fixed width use scale 0.
func (r Recipe) StrokeWidth(fontSize float64) float64 {
	w := r.strokeScale * fontSize
	if w < r.strokeMin {
		w = r.strokeMin
	}
	return w
}

// Gradient stop positions shared by all gradient presets. The tight
// 0.45/0.55 middle pair produces a visible seam, the metallic look.
var gradientStops = [4]float64{0, 0.45, 0.55, 1.0}

func fourStops(g *Gradient, c0, c1, c2, c3 color.NRGBA) *Gradient {
	g.Stops = []Stop{
		{Pos: gradientStops[0], Color: c0},
		{Pos: gradientStops[1], Color: c1},
		{Pos: gradientStops[2], Color: c2},
		{Pos: gradientStops[3], Color: c3},
	}
	return g
}

// RecipeFor returns the recipe for a preset. Adaptive pulls every value
// from the style; the fixed presets ignore the style's colors and only
// use its font size through StrokeWidth.
func RecipeFor(p Preset, style TextStyle) Recipe {
	switch p {
	case PresetGold:
		return Recipe{
			ShadowColor:   color.NRGBA{A: 128},
			ShadowBlur:    18,
			ShadowOffsetY: 8,
			StrokeColor:   mustHex("#3b2500"),
			strokeScale:   0.08,
			strokeMin:     4.8,
			Fill: FillPaint{Gradient: fourStops(&Gradient{},
				mustHex("#fff3c4"),
				mustHex("#ffd75e"),
				mustHex("#e3a82b"),
				mustHex("#9a6b0f"),
			)},
		}
	case PresetStrike:
		return Recipe{
			ShadowColor:   color.NRGBA{A: 140},
			ShadowBlur:    22,
			ShadowOffsetY: 10,
			StrokeColor:   mustHex("#0c0f1a"),
			strokeScale:   0.06,
			strokeMin:     4.5,
			Fill: FillPaint{Gradient: fourStops(&Gradient{},
				mustHex("#ffffff"),
				mustHex("#f5f5f5"),
				mustHex("#e03131"),
				mustHex("#8f1111"),
			)},
		}
	case PresetBanner:
		return Recipe{
			ShadowColor:   color.NRGBA{A: 128},
			ShadowBlur:    20,
			ShadowOffsetY: 12,
			StrokeColor:   mustHex("#0a0a0a"),
			strokeScale:   0.05,
			strokeMin:     4.2,
			Fill: FillPaint{Gradient: fourStops(&Gradient{Horizontal: true},
				mustHex("#ffffff"),
				mustHex("#fdf6e3"),
				mustHex("#ffd75e"),
				mustHex("#c8921a"),
			)},
		}
	default:
		return Recipe{
			ShadowColor:   style.Shadow,
			ShadowBlur:    style.ShadowBlur,
			ShadowOffsetY: style.ShadowOffsetY,
			StrokeColor:   style.Stroke.NRGBA(255),
			strokeMin:     style.StrokeWidth,
			Fill:          FillPaint{Solid: style.Fill.NRGBA(255)},
		}
	}
}
