package compose

import (
	"image"
	"math"
)

// CoverRect computes the centered crop rectangle in source coordinates
// that matches the destination aspect ratio. Cropping the source to
// this rectangle and scaling to dstW x dstH fills the destination
// exactly while preserving aspect ratio (cover fit). The excess axis is
// cropped symmetrically; the result matches the target aspect within
// integer rounding.
func CoverRect(srcW, srcH, dstW, dstH int) image.Rectangle {
	if srcW <= 0 || srcH <= 0 || dstW <= 0 || dstH <= 0 {
		return image.Rectangle{}
	}

	srcAspect := float64(srcW) / float64(srcH)
	dstAspect := float64(dstW) / float64(dstH)

	if srcAspect > dstAspect {
		// Source is wider than the target: crop left and right.
		w := int(math.Round(float64(srcH) * dstAspect))
		x0 := (srcW - w) / 2
		return image.Rect(x0, 0, x0+w, srcH)
	}

	// Source is taller than (or equal to) the target: crop top and bottom.
	h := int(math.Round(float64(srcW) / dstAspect))
	y0 := (srcH - h) / 2
	return image.Rect(0, y0, srcW, y0+h)
}
