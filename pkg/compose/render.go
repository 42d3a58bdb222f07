package compose

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/png"
	"math"
	"strings"

	"github.com/disintegration/imaging"
	"github.com/fogleman/gg"
	"golang.org/x/image/font"
)

// Canvas dimensions. Every composition is exactly this size regardless
// of source image resolution; all geometry is expressed in this space.
const (
	CanvasWidth  = 960
	CanvasHeight = 1200
)

// Readability plate geometry: a vertical gradient band over the bottom
// of the canvas that keeps text legible on any photo.
const (
	plateHeight      = 320
	plateMidPos      = 0.35
	plateMidAlpha    = 64  // ~0.25
	plateBottomAlpha = 199 // ~0.78
)

// Logo defaults, used when the corresponding Input fields are zero.
const (
	DefaultLogoWidth   = 160
	DefaultLogoPadding = 28
	DefaultLogoOpacity = 0.85
)

// Fallback background gradient, drawn when no usable photo is present.
var (
	fallbackTop    = mustHex("#101014")
	fallbackBottom = mustHex("#0f1b33")
)

// ErrNoSurface is returned when the render target is unusable. The
// failed pass produces no partial output.
var ErrNoSurface = errors.New("render target unavailable")

// FaceSource provides font faces by family, weight and pixel size.
// pkg/fontcatalog implements it against installed system fonts with an
// embedded fallback; tests supply fixed faces.
type FaceSource interface {
	Face(family string, weight int, sizePx float64) (font.Face, error)
}

// Input is everything one render pass needs. The pass reads it and
// owns its canvas exclusively; nothing in Input is mutated.
type Input struct {
	Background image.Image // nil draws the fallback gradient
	Text       string
	Style      TextStyle
	Preset     Preset

	Logo        image.Image // nil skips the logo layer
	LogoWidth   int         // target width, aspect preserved
	LogoPadding int         // inset from the top-right corner
	LogoOpacity float64     // 0 < opacity <= 1
	LogoBlur    float64     // gaussian blur sigma, 0 for sharp
}

// Output is the result of one composition pass.
type Output struct {
	Image     image.Image
	Layout    Layout // zero value when no text was drawn
	TextDrawn bool
}

// Renderer composes canvases. It is stateless apart from its font
// source, so one Renderer serves concurrent passes.
type Renderer struct {
	faces  FaceSource
	width  int
	height int
}

// NewRenderer creates a renderer targeting the fixed 960x1200 canvas.
func NewRenderer(faces FaceSource) *Renderer {
	return &Renderer{faces: faces, width: CanvasWidth, height: CanvasHeight}
}

// Compose runs one full pass: background, readability plate, optional
// logo, then text. The returned buffer is fully rewritten on each call;
// there is no incremental update.
func (r *Renderer) Compose(in Input) (*Output, error) {
	if r.width <= 0 || r.height <= 0 {
		return nil, ErrNoSurface
	}

	dc := gg.NewContext(r.width, r.height)

	r.drawBackground(dc, in.Background)
	r.drawPlate(dc)

	if in.Logo != nil {
		rgba, ok := dc.Image().(*image.RGBA)
		if !ok {
			return nil, ErrNoSurface
		}
		r.drawLogo(rgba, in)
	}

	out := &Output{}
	if strings.TrimSpace(in.Text) != "" {
		layout, err := r.drawText(dc, in)
		if err != nil {
			return nil, err
		}
		out.Layout = layout
		out.TextDrawn = true
	}

	out.Image = dc.Image()
	return out, nil
}

// Render is Compose without the layout details.
func (r *Renderer) Render(in Input) (image.Image, error) {
	out, err := r.Compose(in)
	if err != nil {
		return nil, err
	}
	return out.Image, nil
}

// RenderPNG composes and encodes the canvas as PNG bytes.
func (r *Renderer) RenderPNG(in Input) ([]byte, error) {
	out, err := r.Compose(in)
	if err != nil {
		return nil, err
	}
	return EncodePNG(out.Image)
}

// EncodePNG encodes a composed canvas as PNG bytes.
func EncodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBackground cover-fits the photo onto the canvas, or draws the
// fallback gradient when there is no usable photo. Decode failures
// never reach this point as images; absence is the degraded path.
func (r *Renderer) drawBackground(dc *gg.Context, bg image.Image) {
	if bg == nil {
		r.drawFallback(dc)
		return
	}
	b := bg.Bounds()
	rect := CoverRect(b.Dx(), b.Dy(), r.width, r.height)
	if rect.Empty() {
		r.drawFallback(dc)
		return
	}
	cropped := imaging.Crop(bg, rect.Add(b.Min))
	fitted := imaging.Resize(cropped, r.width, r.height, imaging.Lanczos)
	dc.DrawImage(fitted, 0, 0)
}

func (r *Renderer) drawFallback(dc *gg.Context) {
	grad := gg.NewLinearGradient(0, 0, 0, float64(r.height))
	grad.AddColorStop(0, fallbackTop)
	grad.AddColorStop(1, fallbackBottom)
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	dc.Fill()
}

func (r *Renderer) drawPlate(dc *gg.Context) {
	top := float64(r.height - plateHeight)
	grad := gg.NewLinearGradient(0, top, 0, float64(r.height))
	grad.AddColorStop(0, color.NRGBA{})
	grad.AddColorStop(plateMidPos, color.NRGBA{A: plateMidAlpha})
	grad.AddColorStop(1, color.NRGBA{A: plateBottomAlpha})
	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, top, float64(r.width), plateHeight)
	dc.Fill()
}

// drawLogo scales, blurs and composites the logo inset from the
// top-right corner. It writes pixels directly, leaving the drawing
// context's compositing state untouched.
func (r *Renderer) drawLogo(dst *image.RGBA, in Input) {
	width := in.LogoWidth
	if width <= 0 {
		width = DefaultLogoWidth
	}
	pad := in.LogoPadding
	if pad <= 0 {
		pad = DefaultLogoPadding
	}
	opacity := in.LogoOpacity
	if opacity <= 0 {
		opacity = DefaultLogoOpacity
	}
	if opacity > 1 {
		opacity = 1
	}

	scaled := imaging.Resize(in.Logo, width, 0, imaging.Lanczos)
	if in.LogoBlur > 0 {
		scaled = imaging.Blur(scaled, in.LogoBlur)
	}

	lb := scaled.Bounds()
	x := r.width - pad - lb.Dx()
	y := pad
	rect := image.Rect(x, y, x+lb.Dx(), y+lb.Dy())
	alpha := image.NewUniform(color.Alpha{A: uint8(opacity*255 + 0.5)})
	draw.DrawMask(dst, rect, scaled, lb.Min, alpha, image.Point{}, draw.Over)
}

// drawText lays the text out, then draws it in preset order: shadow
// layer first, then the stroke pass for every line, then the fill pass
// for every line. Stroke-under-fill is applied preset-wide rather than
// per line so overlapping lines cannot bleed stroke into fill.
func (r *Renderer) drawText(dc *gg.Context, in Input) (Layout, error) {
	st := in.Style

	face, err := r.faces.Face(st.Family, st.Weight, st.SizePx)
	if err != nil {
		return Layout{}, fmt.Errorf("resolve font %q: %w", st.Family, err)
	}

	measure := func(s string, sizePx float64) float64 {
		f, ferr := r.faces.Face(st.Family, st.Weight, sizePx)
		if ferr != nil {
			f = face
		}
		return float64(font.MeasureString(f, s)) / 64
	}

	layout := FitText(in.Text, FitOptions{
		MaxWidth:   float64(r.width) - 2*st.PaddingX,
		SizePx:     st.SizePx,
		LineHeight: st.LineHeight,
	}, measure)

	if layout.FontSize != st.SizePx {
		face, err = r.faces.Face(st.Family, st.Weight, layout.FontSize)
		if err != nil {
			return Layout{}, fmt.Errorf("resolve font %q: %w", st.Family, err)
		}
	}

	// The block's vertical center sits at height - paddingY - totalH/2,
	// so the block grows upward from a fixed anchor near the bottom.
	blockTop := float64(r.height) - st.PaddingY - layout.TotalHeight
	cx := float64(r.width) / 2
	centers := make([]float64, len(layout.Lines))
	for i := range layout.Lines {
		centers[i] = blockTop + (float64(i)+0.5)*layout.LineHeight
	}

	recipe := RecipeFor(in.Preset, st)

	if recipe.ShadowColor.A > 0 {
		r.drawShadow(dc, face, layout.Lines, cx, centers, recipe)
	}

	dc.SetFontFace(face)

	if sw := recipe.StrokeWidth(layout.FontSize); sw > 0 {
		dc.SetColor(recipe.StrokeColor)
		for i, line := range layout.Lines {
			strokeTextLine(dc, line, cx, centers[i], sw)
		}
	}

	if g := recipe.Fill.Gradient; g != nil {
		if err := r.fillGradientText(dc, face, layout, g, st.PaddingX, blockTop, cx, centers); err != nil {
			return Layout{}, err
		}
	} else {
		dc.SetColor(recipe.Fill.Solid)
		drawLines(dc, layout.Lines, cx, centers)
	}

	return layout, nil
}

// drawShadow renders the text into an offscreen layer in the shadow
// color, blurs it, and composites it shifted down by the offset.
func (r *Renderer) drawShadow(dc *gg.Context, face font.Face, lines []string, cx float64, centers []float64, recipe Recipe) {
	layer := gg.NewContext(r.width, r.height)
	layer.SetFontFace(face)
	layer.SetColor(recipe.ShadowColor)
	drawLines(layer, lines, cx, centers)

	img := image.Image(layer.Image())
	if recipe.ShadowBlur > 0 {
		// CSS-style blur radius maps to roughly twice the gaussian sigma.
		img = imaging.Blur(img, recipe.ShadowBlur/2)
	}

	rgba, ok := dc.Image().(*image.RGBA)
	if !ok {
		return
	}
	off := int(math.Round(recipe.ShadowOffsetY))
	b := img.Bounds()
	draw.Draw(rgba, b.Add(image.Pt(0, off)), img, b.Min, draw.Over)
}

// fillGradientText fills the glyphs with a gradient by drawing them
// into an offscreen alpha mask, then gradient-filling the whole canvas
// through that mask. The mask is scoped with push/pop so later draw
// operations are unaffected.
func (r *Renderer) fillGradientText(dc *gg.Context, face font.Face, layout Layout, g *Gradient, padX, blockTop, cx float64, centers []float64) error {
	maskCtx := gg.NewContext(r.width, r.height)
	maskCtx.SetFontFace(face)
	maskCtx.SetRGB(1, 1, 1)
	drawLines(maskCtx, layout.Lines, cx, centers)

	dc.Push()
	defer dc.Pop()
	if err := dc.SetMask(maskCtx.AsMask()); err != nil {
		return fmt.Errorf("set text mask: %w", err)
	}

	var grad gg.Gradient
	if g.Horizontal {
		grad = gg.NewLinearGradient(padX, 0, float64(r.width)-padX, 0)
	} else {
		grad = gg.NewLinearGradient(0, blockTop, 0, blockTop+layout.TotalHeight)
	}
	for _, s := range g.Stops {
		grad.AddColorStop(s.Pos, s.Color)
	}

	dc.SetFillStyle(grad)
	dc.DrawRectangle(0, 0, float64(r.width), float64(r.height))
	dc.Fill()
	return nil
}

func drawLines(dc *gg.Context, lines []string, cx float64, centers []float64) {
	for i, line := range lines {
		if line == "" {
			continue
		}
		dc.DrawStringAnchored(line, cx, centers[i], 0.5, 0.5)
	}
}

// strokeTextLine draws the line repeatedly around a circle of radius
// width/2, producing an outline that extends half the stroke width
// beyond the glyph edges, the same footprint a centered stroke has.
func strokeTextLine(dc *gg.Context, s string, x, y, width float64) {
	if s == "" || width <= 0 {
		return
	}
	radius := width / 2
	n := int(width * 3)
	if n < 8 {
		n = 8
	}
	for i := 0; i < n; i++ {
		theta := 2 * math.Pi * float64(i) / float64(n)
		dc.DrawStringAnchored(s, x+radius*math.Cos(theta), y+radius*math.Sin(theta), 0.5, 0.5)
	}
}
