package compose

import (
	"image/color"
	"math/rand/v2"
)

// Font size bounds. Callers clamp configured sizes into this range and
// the layout fit loop never goes below the floor.
const (
	MinFontSize = 34
	MaxFontSize = 120
)

// Families is the catalog of display families the adaptive picker
// chooses from. All eight render Thai as well as Latin text. Font file
// resolution, including per-family fallbacks, is pkg/fontcatalog's job;
// the core only deals in names.
var Families = []string{
	"Kanit",
	"Prompt",
	"Mitr",
	"Chonburi",
	"Pattaya",
	"Sriracha",
	"Itim",
	"Mali",
}

// TextStyle is the full set of text styling knobs. User-editable fields
// coexist with fields the adaptive picker overwrites; ApplyDerived
// performs that selective merge.
type TextStyle struct {
	SizePx     float64 // clamped to [MinFontSize, MaxFontSize]
	LineHeight float64 // ratio of font size
	PaddingX   float64 // horizontal inset of the text block
	PaddingY   float64 // inset of the block anchor from the bottom edge
	Weight     int     // 400, 500 or 700

	Family       string
	FamilyPinned bool // pinned families survive adaptive restyling

	Fill        Color
	Stroke      Color
	StrokeWidth float64

	Shadow        color.NRGBA
	ShadowBlur    float64
	ShadowOffsetY float64
}

// DefaultStyle returns the style used before any adaptive derivation:
// white text with a dark outline, bold, bottom-anchored.
func DefaultStyle() TextStyle {
	return TextStyle{
		SizePx:        56,
		LineHeight:    1.2,
		PaddingX:      64,
		PaddingY:      88,
		Weight:        700,
		Family:        Families[0],
		Fill:          Color{R: 255, G: 255, B: 255},
		Stroke:        Color{R: 17, G: 17, B: 17},
		StrokeWidth:   3.2,
		Shadow:        color.NRGBA{A: 115},
		ShadowBlur:    16,
		ShadowOffsetY: 6,
	}
}

// Normalize clamps SizePx into [MinFontSize, MaxFontSize] and forces
// StrokeWidth nonnegative.
func (s *TextStyle) Normalize() {
	if s.SizePx < MinFontSize {
		s.SizePx = MinFontSize
	}
	if s.SizePx > MaxFontSize {
		s.SizePx = MaxFontSize
	}
	if s.StrokeWidth < 0 {
		s.StrokeWidth = 0
	}
}

// DerivedStyle is the subset of TextStyle the adaptive picker produces
// from an ImageTone. Weight is never derived, so it is absent here.
type DerivedStyle struct {
	Fill        Color
	Stroke      Color
	StrokeWidth float64

	Shadow        color.NRGBA
	ShadowBlur    float64
	ShadowOffsetY float64

	SizePx     float64
	LineHeight float64
	PaddingY   float64
	Family     string
}

// ApplyDerived merges a derived style into dst. It overwrites the
// derived fields but preserves the user's Weight, and preserves Family
// when the user pinned one. This is an explicit field-list merge, so
// adding a field to DerivedStyle means deciding its merge rule here.
func ApplyDerived(dst *TextStyle, d DerivedStyle) {
	dst.Fill = d.Fill
	dst.Stroke = d.Stroke
	dst.StrokeWidth = d.StrokeWidth
	dst.Shadow = d.Shadow
	dst.ShadowBlur = d.ShadowBlur
	dst.ShadowOffsetY = d.ShadowOffsetY
	dst.SizePx = d.SizePx
	dst.LineHeight = d.LineHeight
	dst.PaddingY = d.PaddingY
	if !dst.FamilyPinned {
		dst.Family = d.Family
	}
}

// Adaptive shadow geometry. The tone only decides the shadow's alpha;
// blur and offset are fixed.
const (
	adaptiveShadowBlur    = 16
	adaptiveShadowOffsetY = 6
)

// Picker derives text styles from image tones with seeded randomness.
// Treating the random source as an injected capability keeps every pick
// reproducible under a fixed seed.
type Picker struct {
	rng *rand.Rand
}

// NewPicker creates a picker seeded deterministically.
func NewPicker(seed uint64) *Picker {
	return &Picker{rng: rand.New(rand.NewPCG(seed, seed^0xdeadbeef))}
}

// NewPickerFrom creates a picker using the provided random source.
func NewPickerFrom(rng *rand.Rand) *Picker {
	return &Picker{rng: rng}
}

// Derive turns a tone into a concrete candidate style.
//
// Dark backgrounds get a fill lightened from the average color and a
// stroke darkened from the accent; light backgrounds the reverse. The
// shadow is denser over dark backgrounds where text needs more lift.
// Size, bottom padding, line height and family are jittered uniformly
// so repeated composes of the same photo do not all look identical.
func (p *Picker) Derive(tone ImageTone) DerivedStyle {
	d := DerivedStyle{
		SizePx:        p.uniform(50, 60),
		PaddingY:      p.uniform(78, 96),
		LineHeight:    p.uniform(1.18, 1.25),
		Family:        Families[p.rng.IntN(len(Families))],
		ShadowBlur:    adaptiveShadowBlur,
		ShadowOffsetY: adaptiveShadowOffsetY,
	}

	if tone.Dark {
		d.Fill = tone.Average.Shift(65)
		d.Stroke = tone.Accent.Shift(-40)
		d.StrokeWidth = 3.6
		d.Shadow = color.NRGBA{A: 140} // rgba(0,0,0,0.55)
	} else {
		d.Fill = tone.Average.Shift(-80)
		d.Stroke = tone.Accent.Shift(50)
		d.StrokeWidth = 3.2
		d.Shadow = color.NRGBA{A: 97} // rgba(0,0,0,0.38)
	}

	return d
}

func (p *Picker) uniform(lo, hi float64) float64 {
	return lo + p.rng.Float64()*(hi-lo)
}
