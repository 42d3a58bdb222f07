package compose

import (
	"errors"
	"image"

	"github.com/disintegration/imaging"
)

// ErrNoImage is returned when tone analysis has nothing to sample.
var ErrNoImage = errors.New("no image to analyze")

// SampleGrid is the side length of the analysis grid. The source is
// resampled down to SampleGrid x SampleGrid before any statistics are
// taken, so analysis cost is independent of source resolution. Cache
// keys for tone results include this value.
const SampleGrid = 64

// ImageTone is the aggregate color description of a background image:
// the average color, the most salient accent color, and a light/dark
// classification. It is immutable once built.
type ImageTone struct {
	Average Color
	Accent  Color
	Dark    bool
}

// darkThreshold splits light from dark backgrounds. The boundary value
// itself classifies as not-dark.
const darkThreshold = 115

// AnalyzeTone samples img on a 64x64 grid and derives its tone.
//
// The average is the per-channel arithmetic mean over all grid pixels.
// The accent is the single grid pixel with the highest salience score
// 0.6*saturation + 0.4*contrast, where saturation is (max-min)/max over
// the channels and contrast is |luminance-128|/128. Ties keep the first
// pixel in scan order.
func AnalyzeTone(img image.Image) (ImageTone, error) {
	if img == nil {
		return ImageTone{}, ErrNoImage
	}
	b := img.Bounds()
	if b.Dx() <= 0 || b.Dy() <= 0 {
		return ImageTone{}, ErrNoImage
	}

	// The resampling filter is not load-bearing, only the grid size is.
	// Nearest neighbor keeps it cheap.
	grid := imaging.Resize(img, SampleGrid, SampleGrid, imaging.NearestNeighbor)

	var sumR, sumG, sumB uint64
	var best Color
	bestScore := -1.0

	for y := 0; y < SampleGrid; y++ {
		for x := 0; x < SampleGrid; x++ {
			i := grid.PixOffset(x, y)
			r := grid.Pix[i]
			g := grid.Pix[i+1]
			b := grid.Pix[i+2]

			sumR += uint64(r)
			sumG += uint64(g)
			sumB += uint64(b)

			if score := salience(r, g, b); score > bestScore {
				bestScore = score
				best = Color{R: r, G: g, B: b}
			}
		}
	}

	const n = SampleGrid * SampleGrid
	avg := Color{
		R: uint8((sumR + n/2) / n),
		G: uint8((sumG + n/2) / n),
		B: uint8((sumB + n/2) / n),
	}

	return ImageTone{
		Average: avg,
		Accent:  best,
		Dark:    avg.Luminance() < darkThreshold,
	}, nil
}

// salience scores a pixel for accent selection: saturated colors far
// from mid-gray stand out most.
func salience(r, g, b uint8) float64 {
	maxC := max3(r, g, b)
	minC := min3(r, g, b)

	sat := 0.0
	if maxC > 0 {
		sat = float64(maxC-minC) / float64(maxC)
	}

	lum := Color{R: r, G: g, B: b}.Luminance()
	contrast := lum - 128
	if contrast < 0 {
		contrast = -contrast
	}
	contrast /= 128

	return 0.6*sat + 0.4*contrast
}

func max3(a, b, c uint8) uint8 {
	m := a
	if b > m {
		m = b
	}
	if c > m {
		m = c
	}
	return m
}

func min3(a, b, c uint8) uint8 {
	m := a
	if b < m {
		m = b
	}
	if c < m {
		m = c
	}
	return m
}
