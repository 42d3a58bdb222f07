package compose

import (
	"bytes"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"

	"github.com/golang/freetype/truetype"
	"golang.org/x/image/font"
	"golang.org/x/image/font/gofont/goregular"
)

// testFaces serves Go Regular for every family, so render tests need
// no installed fonts.
type testFaces struct {
	font *truetype.Font
}

func newTestFaces(t *testing.T) *testFaces {
	t.Helper()
	f, err := truetype.Parse(goregular.TTF)
	if err != nil {
		t.Fatalf("parse test font: %v", err)
	}
	return &testFaces{font: f}
}

func (tf *testFaces) Face(family string, weight int, sizePx float64) (font.Face, error) {
	return truetype.NewFace(tf.font, &truetype.Options{
		Size:    sizePx,
		DPI:     72,
		Hinting: font.HintingFull,
	}), nil
}

func solidImage(w, h int, c color.NRGBA) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, c)
		}
	}
	return img
}

func pixelAt(img image.Image, x, y int) color.NRGBA {
	r, g, b, a := img.At(x, y).RGBA()
	return color.NRGBA{R: uint8(r >> 8), G: uint8(g >> 8), B: uint8(b >> 8), A: uint8(a >> 8)}
}

func channelsWithin(got, want color.NRGBA, tol int) bool {
	diff := func(a, b uint8) int {
		d := int(a) - int(b)
		if d < 0 {
			d = -d
		}
		return d
	}
	return diff(got.R, want.R) <= tol && diff(got.G, want.G) <= tol && diff(got.B, want.B) <= tol
}

func TestRenderPNGDimensions(t *testing.T) {
	r := NewRenderer(newTestFaces(t))

	data, err := r.RenderPNG(Input{Text: "hello world", Style: DefaultStyle()})
	if err != nil {
		t.Fatalf("RenderPNG error: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("decode output: %v", err)
	}
	b := img.Bounds()
	if b.Dx() != CanvasWidth || b.Dy() != CanvasHeight {
		t.Errorf("output %dx%d, want %dx%d", b.Dx(), b.Dy(), CanvasWidth, CanvasHeight)
	}
}

func TestRenderFallbackGradient(t *testing.T) {
	r := NewRenderer(newTestFaces(t))

	img, err := r.Render(Input{Style: DefaultStyle()})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	// Top corners show the first gradient stop untouched.
	top := color.NRGBA{R: 16, G: 16, B: 20, A: 255} // #101014
	for _, x := range []int{0, CanvasWidth - 1} {
		if got := pixelAt(img, x, 0); !channelsWithin(got, top, 3) {
			t.Errorf("top corner (%d,0) = %v, want ~%v", x, got, top)
		}
	}

	// Bottom corners show the second stop through the readability
	// plate: bottom = stop * (1 - 199/255).
	bottom := color.NRGBA{R: 15, G: 27, B: 51} // #0f1b33
	factor := 1 - float64(plateBottomAlpha)/255
	want := color.NRGBA{
		R: uint8(float64(bottom.R)*factor + 0.5),
		G: uint8(float64(bottom.G)*factor + 0.5),
		B: uint8(float64(bottom.B)*factor + 0.5),
	}
	for _, x := range []int{0, CanvasWidth - 1} {
		if got := pixelAt(img, x, CanvasHeight-1); !channelsWithin(got, want, 4) {
			t.Errorf("bottom corner (%d,%d) = %v, want ~%v", x, CanvasHeight-1, got, want)
		}
	}
}

func TestRenderBackgroundCoverFit(t *testing.T) {
	r := NewRenderer(newTestFaces(t))
	bg := solidImage(2000, 1000, color.NRGBA{R: 180, G: 60, B: 40, A: 255})

	img, err := r.Render(Input{Background: bg, Style: DefaultStyle()})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	// A uniform source stays uniform through crop and resize; probe
	// well above the plate.
	want := color.NRGBA{R: 180, G: 60, B: 40, A: 255}
	for _, p := range []image.Point{{X: 10, Y: 10}, {X: 480, Y: 400}, {X: 940, Y: 200}} {
		if got := pixelAt(img, p.X, p.Y); !channelsWithin(got, want, 2) {
			t.Errorf("pixel %v = %v, want ~%v", p, got, want)
		}
	}
}

func TestRenderDeterministic(t *testing.T) {
	r := NewRenderer(newTestFaces(t))
	in := Input{
		Text:   "same in, same out",
		Style:  DefaultStyle(),
		Preset: PresetGold,
	}

	a, err := r.RenderPNG(in)
	if err != nil {
		t.Fatalf("first render: %v", err)
	}
	b, err := r.RenderPNG(in)
	if err != nil {
		t.Fatalf("second render: %v", err)
	}
	if !bytes.Equal(a, b) {
		t.Error("identical inputs should produce byte-identical PNGs")
	}
}

func TestRenderSkipsEmptyText(t *testing.T) {
	r := NewRenderer(newTestFaces(t))

	blank, err := r.Compose(Input{Text: "  \n\t ", Style: DefaultStyle()})
	if err != nil {
		t.Fatalf("Compose error: %v", err)
	}
	if blank.TextDrawn {
		t.Error("whitespace-only text should skip the text pass")
	}

	none, err := r.RenderPNG(Input{Style: DefaultStyle()})
	if err != nil {
		t.Fatalf("RenderPNG error: %v", err)
	}
	ws, err := r.RenderPNG(Input{Text: "  \n\t ", Style: DefaultStyle()})
	if err != nil {
		t.Fatalf("RenderPNG error: %v", err)
	}
	if !bytes.Equal(none, ws) {
		t.Error("whitespace-only text should render identically to no text")
	}
}

func TestRenderTextChangesCanvas(t *testing.T) {
	r := NewRenderer(newTestFaces(t))

	without, err := r.RenderPNG(Input{Style: DefaultStyle()})
	if err != nil {
		t.Fatalf("RenderPNG error: %v", err)
	}
	with, err := r.RenderPNG(Input{Text: "POSTFRAME", Style: DefaultStyle()})
	if err != nil {
		t.Fatalf("RenderPNG error: %v", err)
	}
	if bytes.Equal(without, with) {
		t.Error("text should change the output")
	}

	out, err := r.Compose(Input{Text: "POSTFRAME", Style: DefaultStyle()})
	if err != nil {
		t.Fatalf("Compose error: %v", err)
	}
	if !out.TextDrawn {
		t.Error("TextDrawn should be set")
	}
	if len(out.Layout.Lines) == 0 {
		t.Error("layout should carry the fitted lines")
	}
}

func TestRenderGradientPresets(t *testing.T) {
	r := NewRenderer(newTestFaces(t))
	for _, p := range []Preset{PresetGold, PresetStrike, PresetBanner} {
		t.Run(p.String(), func(t *testing.T) {
			out, err := r.Compose(Input{Text: "SALE", Style: DefaultStyle(), Preset: p})
			if err != nil {
				t.Fatalf("Compose error: %v", err)
			}
			if !out.TextDrawn {
				t.Error("TextDrawn should be set")
			}
		})
	}
}

func TestRenderLogoPlacement(t *testing.T) {
	r := NewRenderer(newTestFaces(t))
	bg := solidImage(960, 1200, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	logo := solidImage(100, 100, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	img, err := r.Render(Input{
		Background:  bg,
		Logo:        logo,
		LogoWidth:   160,
		LogoPadding: 28,
		LogoOpacity: 0.85,
		Style:       DefaultStyle(),
	})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	// Logo occupies (772,28)-(932,188); its center should read much
	// brighter than the background.
	center := pixelAt(img, 852, 108)
	if center.R < 180 {
		t.Errorf("logo center = %v, want bright", center)
	}

	// Far from the logo the background is untouched.
	corner := pixelAt(img, 100, 600)
	if !channelsWithin(corner, color.NRGBA{R: 10, G: 10, B: 10}, 2) {
		t.Errorf("background pixel = %v, want ~10,10,10", corner)
	}
}

func TestRenderLogoDoesNotLeakState(t *testing.T) {
	r := NewRenderer(newTestFaces(t))
	bg := solidImage(960, 1200, color.NRGBA{R: 10, G: 10, B: 10, A: 255})
	logo := solidImage(100, 100, color.NRGBA{R: 255, G: 255, B: 255, A: 255})

	// With and without a logo, pixels outside the logo rectangle match
	// exactly, including the text region.
	with, err := r.Render(Input{Background: bg, Logo: logo, Text: "X", Style: DefaultStyle()})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}
	without, err := r.Render(Input{Background: bg, Text: "X", Style: DefaultStyle()})
	if err != nil {
		t.Fatalf("Render error: %v", err)
	}

	probes := []image.Point{{X: 480, Y: 1100}, {X: 50, Y: 50}, {X: 480, Y: 600}}
	for _, p := range probes {
		a, b := pixelAt(with, p.X, p.Y), pixelAt(without, p.X, p.Y)
		if a != b {
			t.Errorf("pixel %v differs with logo present: %v vs %v", p, a, b)
		}
	}
}

func TestRenderNoSurface(t *testing.T) {
	var r Renderer // zero value has no canvas
	if _, err := r.Compose(Input{}); !errors.Is(err, ErrNoSurface) {
		t.Errorf("Compose on zero renderer = %v, want ErrNoSurface", err)
	}
}
