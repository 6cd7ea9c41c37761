// Package trace provides edge extraction, Canny edge detection and vector
// contour tracing of binary rasters.
package trace

import (
	lpimage "laser-prep/internal/image"
	"laser-prep/pkg/colorutil"
)

// ExtractContours marks the outline of every dark region. A pixel is an edge
// when its composited gray value is below threshold and at least one of its
// four neighbors is not. Border pixels are never edges. The result is black
// edges on an opaque white background.
func ExtractContours(src *lpimage.Buffer, threshold float64) *lpimage.Buffer {
	src.MustValidate()

	w, h := src.Width, src.Height
	on := src.Binarize(threshold)
	out := lpimage.NewFilled(w, h, colorutil.White)

	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			p := y*w + x
			if !on[p] {
				continue
			}
			if !on[p-1] || !on[p+1] || !on[p-w] || !on[p+w] {
				out.SetGray(p, 0)
			}
		}
	}
	return out
}
