package trace

import (
	lpimage "laser-prep/internal/image"
)

// maxOffset bounds the contour offset radius in pixels.
const maxOffset = 50

// dilateMask grows the "on" region by radius using a square structuring
// element. The element is separable, so rows and columns are processed in
// two passes.
func dilateMask(on []bool, w, h, radius int) []bool {
	return morph1D(morph1D(on, w, h, radius, true, true), w, h, radius, false, true)
}

// erodeMask shrinks the "on" region by radius. Only in-bounds neighbors are
// considered, so regions touching the border are not eaten from outside.
func erodeMask(on []bool, w, h, radius int) []bool {
	return morph1D(morph1D(on, w, h, radius, true, false), w, h, radius, false, false)
}

// morph1D runs a 1D max (grow) or min (shrink) filter along rows or columns.
func morph1D(in []bool, w, h, radius int, horizontal, grow bool) []bool {
	out := make([]bool, len(in))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			var lo, hi int
			if horizontal {
				lo, hi = max(0, x-radius), min(w-1, x+radius)
			} else {
				lo, hi = max(0, y-radius), min(h-1, y+radius)
			}

			v := !grow
			for k := lo; k <= hi; k++ {
				var q int
				if horizontal {
					q = y*w + k
				} else {
					q = k*w + x
				}
				if in[q] == grow {
					v = grow
					break
				}
			}
			out[y*w+x] = v
		}
	}
	return out
}

// offsetMask dilates for positive offsets and erodes for negative ones.
func offsetMask(on []bool, w, h, offset int) []bool {
	r := min(maxOffset, abs(offset))
	switch {
	case r == 0:
		return on
	case offset > 0:
		return dilateMask(on, w, h, r)
	default:
		return erodeMask(on, w, h, r)
	}
}

// isInk reports whether a rendered pixel counts as black.
func isInk(b *lpimage.Buffer, p int) bool {
	return b.Data[p*4] < 128
}

// DilateContour thickens black lines in a rendered black-on-white image: a
// pixel becomes black if any pixel within radius (square window) is black.
func DilateContour(src *lpimage.Buffer, radius int) *lpimage.Buffer {
	return morphRendered(src, radius, true)
}

// ErodeContour thins black lines: a pixel stays black only if every in-bounds
// pixel within radius is black.
func ErodeContour(src *lpimage.Buffer, radius int) *lpimage.Buffer {
	return morphRendered(src, radius, false)
}

func morphRendered(src *lpimage.Buffer, radius int, grow bool) *lpimage.Buffer {
	src.MustValidate()
	out := src.Clone()
	if radius <= 0 {
		return out
	}

	w, h := src.Width, src.Height
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := y*w + x
			ink := isInk(src, p)
			if ink == grow {
				continue
			}

			// A white pixel turns black when growing and a black pixel turns
			// white when shrinking, both on finding the opposite value nearby.
			flip := false
			for ny := max(0, y-radius); ny <= min(h-1, y+radius) && !flip; ny++ {
				for nx := max(0, x-radius); nx <= min(w-1, x+radius); nx++ {
					if isInk(src, ny*w+nx) == grow {
						flip = true
						break
					}
				}
			}
			if flip {
				if grow {
					out.SetGray(p, 0)
				} else {
					out.SetGray(p, 255)
				}
			}
		}
	}
	return out
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
