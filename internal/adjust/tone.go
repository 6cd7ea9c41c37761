// Package adjust implements the tonal adjustments applied before dithering:
// brightness, contrast, gamma, levels, sharpening, denoising and the
// laser-specific shadow and highlight correction.
//
// Every function returns a new buffer of the same size, leaves alpha
// untouched and clamps each channel to [0,255].
package adjust

import (
	"math"

	lpimage "laser-prep/internal/image"
	"laser-prep/pkg/colorutil"

	"gonum.org/v1/gonum/floats"
)

// mapRGB applies fn to the R, G and B channels of every pixel.
func mapRGB(src *lpimage.Buffer, fn func(v uint8) uint8) *lpimage.Buffer {
	src.MustValidate()
	out := src.Clone()
	for i := 0; i < len(out.Data); i += 4 {
		out.Data[i] = fn(out.Data[i])
		out.Data[i+1] = fn(out.Data[i+1])
		out.Data[i+2] = fn(out.Data[i+2])
	}
	return out
}

// mapLUT applies a 256-entry lookup table to the R, G and B channels.
func mapLUT(src *lpimage.Buffer, lut *[256]uint8) *lpimage.Buffer {
	return mapRGB(src, func(v uint8) uint8 { return lut[v] })
}

// Brightness adds amount (-255..255) to every channel.
func Brightness(src *lpimage.Buffer, amount int) *lpimage.Buffer {
	amount = max(-255, min(255, amount))
	var lut [256]uint8
	for i := range lut {
		lut[i] = colorutil.Clamp8(float64(i + amount))
	}
	return mapLUT(src, &lut)
}

// Contrast scales channels around mid-gray. amount ranges from -100 to 100;
// 0 leaves the image unchanged.
func Contrast(src *lpimage.Buffer, amount float64) *lpimage.Buffer {
	amount = math.Max(-100, math.Min(100, amount))
	factor := 259 * (amount + 255) / (255 * (259 - amount))

	var lut [256]uint8
	for i := range lut {
		v := (float64(i)/255-0.5)*factor + 0.5
		lut[i] = colorutil.Clamp8(v * 255)
	}
	return mapLUT(src, &lut)
}

// Gamma applies pow(v, 1/gamma). Callers should skip gamma 1.0; it is
// handled as a plain copy here as well.
func Gamma(src *lpimage.Buffer, gamma float64) *lpimage.Buffer {
	if gamma <= 0 || gamma == 1 {
		src.MustValidate()
		return src.Clone()
	}
	gamma = math.Min(gamma, 10)

	var lut [256]uint8
	for i := range lut {
		lut[i] = colorutil.Clamp8(math.Pow(float64(i)/255, 1/gamma) * 255)
	}
	return mapLUT(src, &lut)
}

// Levels stretches [black, white] to the full [0,255] range. The two points
// may be given in either order.
func Levels(src *lpimage.Buffer, black, white int) *lpimage.Buffer {
	lo, hi := min(black, white), max(black, white)
	lo = max(0, lo)
	hi = min(255, hi)
	if lo == 0 && hi == 255 {
		src.MustValidate()
		return src.Clone()
	}
	span := float64(hi - lo)
	if span == 0 {
		span = 1
	}

	var lut [256]uint8
	for i := range lut {
		lut[i] = colorutil.Clamp8(float64(i-lo) * 255 / span)
	}
	return mapLUT(src, &lut)
}

// Threshold binarizes on the red channel. The input should already be gray.
func Threshold(src *lpimage.Buffer, t int) *lpimage.Buffer {
	src.MustValidate()
	out := src.Clone()
	for i := 0; i < len(out.Data); i += 4 {
		v := uint8(0)
		if int(out.Data[i]) >= t {
			v = 255
		}
		out.Data[i] = v
		out.Data[i+1] = v
		out.Data[i+2] = v
	}
	return out
}

// Invert replaces every channel value v with 255-v.
func Invert(src *lpimage.Buffer) *lpimage.Buffer {
	return mapRGB(src, func(v uint8) uint8 { return 255 - v })
}

// Grayscale replaces R, G and B with their weighted luminance. Alpha is kept
// as is; gray-dependent stages composite it onto white later.
func Grayscale(src *lpimage.Buffer) *lpimage.Buffer {
	src.MustValidate()
	out := src.Clone()
	for i := 0; i < len(out.Data); i += 4 {
		g := colorutil.Clamp8(colorutil.Luma(float64(out.Data[i]), float64(out.Data[i+1]), float64(out.Data[i+2])))
		out.Data[i] = g
		out.Data[i+1] = g
		out.Data[i+2] = g
	}
	return out
}

// autoClip is the fraction of pixels clipped from each end of the histogram.
const autoClip = 0.005

// AutoAdjust stretches the luminance histogram so that 0.5% of the pixels
// saturate at each end.
func AutoAdjust(src *lpimage.Buffer) *lpimage.Buffer {
	src.MustValidate()
	if src.Empty() {
		return src.Clone()
	}

	hist := make([]float64, 256)
	for _, g := range src.Gray() {
		hist[colorutil.Clamp8(g)]++
	}
	black, white := histogramBounds(hist, autoClip)
	if black >= white {
		return src.Clone()
	}
	return Levels(src, black, white)
}

// histogramBounds finds the first and last bins whose cumulative count from
// each end exceeds clip*total.
func histogramBounds(hist []float64, clip float64) (int, int) {
	total := floats.Sum(hist)
	limit := math.Floor(total * clip)

	cum := make([]float64, len(hist))
	floats.CumSum(cum, hist)

	black := 0
	for i, c := range cum {
		if c > limit {
			black = i
			break
		}
	}

	white := len(hist) - 1
	for i := len(hist) - 1; i >= 0; i-- {
		above := total - cum[i] + hist[i]
		if above > limit {
			white = i
			break
		}
	}
	return black, white
}

// Shadow and highlight pivots used by ColorCorrection.
const (
	shadowPivot    = 50
	highlightPivot = 230
)

// ColorCorrection compensates for how lasers burn: values below 50 are lifted
// toward 50 by shadowLift percent, values above 230 are pulled toward 230 by
// highlightCompress percent.
func ColorCorrection(src *lpimage.Buffer, shadowLift, highlightCompress float64) *lpimage.Buffer {
	lift := math.Max(0, math.Min(100, shadowLift)) / 100
	compress := math.Max(0, math.Min(100, highlightCompress)) / 100

	var lut [256]uint8
	for i := range lut {
		v := float64(i)
		switch {
		case i < shadowPivot:
			v += (shadowPivot - v) * lift
		case i > highlightPivot:
			v -= (v - highlightPivot) * compress
		}
		lut[i] = colorutil.Clamp8(v)
	}
	return mapLUT(src, &lut)
}
