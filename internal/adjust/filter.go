package adjust

import (
	"math"

	lpimage "laser-prep/internal/image"
	"laser-prep/pkg/colorutil"
)

// BoxBlur applies a separable box filter of the given radius to R, G and B.
// Pixels near the border average only their in-bounds neighbors.
func BoxBlur(src *lpimage.Buffer, radius int) *lpimage.Buffer {
	src.MustValidate()
	if radius <= 0 || src.Empty() {
		return src.Clone()
	}

	w, h := src.Width, src.Height
	tmp := make([]float64, w*h*3)
	out := src.Clone()

	// Horizontal pass
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			x0, x1 := max(0, x-radius), min(w-1, x+radius)
			var r, g, b float64
			for k := x0; k <= x1; k++ {
				i := src.Index(k, y)
				r += float64(src.Data[i])
				g += float64(src.Data[i+1])
				b += float64(src.Data[i+2])
			}
			n := float64(x1 - x0 + 1)
			t := (y*w + x) * 3
			tmp[t] = r / n
			tmp[t+1] = g / n
			tmp[t+2] = b / n
		}
	}

	// Vertical pass
	for y := 0; y < h; y++ {
		y0, y1 := max(0, y-radius), min(h-1, y+radius)
		for x := 0; x < w; x++ {
			var r, g, b float64
			for k := y0; k <= y1; k++ {
				t := (k*w + x) * 3
				r += tmp[t]
				g += tmp[t+1]
				b += tmp[t+2]
			}
			n := float64(y1 - y0 + 1)
			i := out.Index(x, y)
			out.Data[i] = colorutil.Clamp8(r / n)
			out.Data[i+1] = colorutil.Clamp8(g / n)
			out.Data[i+2] = colorutil.Clamp8(b / n)
		}
	}
	return out
}

// UnsharpMask sharpens by adding back the difference between the image and a
// box-blurred copy, scaled by amount percent. Differences smaller than
// threshold are left alone so flat areas do not gain noise.
func UnsharpMask(src *lpimage.Buffer, radius int, amount, threshold float64) *lpimage.Buffer {
	src.MustValidate()
	if amount == 0 || radius <= 0 {
		return src.Clone()
	}

	blurred := BoxBlur(src, radius)
	out := src.Clone()
	scale := amount / 100
	for i := 0; i < len(out.Data); i += 4 {
		for c := 0; c < 3; c++ {
			orig := float64(src.Data[i+c])
			diff := orig - float64(blurred.Data[i+c])
			if math.Abs(diff) >= threshold {
				out.Data[i+c] = colorutil.Clamp8(orig + diff*scale)
			}
		}
	}
	return out
}

// EdgeEnhance adds a scaled Laplacian to each pixel. The one pixel border is
// copied unchanged.
func EdgeEnhance(src *lpimage.Buffer, strength float64) *lpimage.Buffer {
	src.MustValidate()
	out := src.Clone()
	if strength == 0 {
		return out
	}

	w, h := src.Width, src.Height
	scale := strength * 0.5
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			i := src.Index(x, y)
			up, down := i-w*4, i+w*4
			for c := 0; c < 3; c++ {
				lap := 4*float64(src.Data[i+c]) -
					float64(src.Data[up+c]) - float64(src.Data[down+c]) -
					float64(src.Data[i-4+c]) - float64(src.Data[i+4+c])
				out.Data[i+c] = colorutil.Clamp8(float64(src.Data[i+c]) + lap*scale)
			}
		}
	}
	return out
}

// Denoise performs edge-preserving smoothing: each channel is replaced by the
// mean of the neighbors within the window whose value differs from the
// center by less than strength*2. A margin of one radius is left unchanged.
func Denoise(src *lpimage.Buffer, strength float64) *lpimage.Buffer {
	src.MustValidate()
	out := src.Clone()
	if strength <= 0 {
		return out
	}
	strength = math.Min(strength, 100)

	radius := max(1, int(strength/20))
	limit := strength * 2
	w, h := src.Width, src.Height

	for y := radius; y < h-radius; y++ {
		for x := radius; x < w-radius; x++ {
			i := src.Index(x, y)
			for c := 0; c < 3; c++ {
				center := float64(src.Data[i+c])
				var sum, n float64
				for dy := -radius; dy <= radius; dy++ {
					row := (y + dy) * w
					for dx := -radius; dx <= radius; dx++ {
						v := float64(src.Data[(row+x+dx)*4+c])
						if math.Abs(v-center) < limit {
							sum += v
							n++
						}
					}
				}
				out.Data[i+c] = colorutil.Clamp8(sum / n)
			}
		}
	}
	return out
}

// sketchBlurRadius is the blur radius used for the pencil sketch dodge layer.
const sketchBlurRadius = 5

// SketchEffect turns a photo into a pencil-sketch style gray image by color
// dodging the grayscale image with its blurred negative.
func SketchEffect(src *lpimage.Buffer) *lpimage.Buffer {
	gray := Grayscale(src)
	blurred := BoxBlur(Invert(gray), sketchBlurRadius)
	return lpimage.Blend(gray, blurred, lpimage.BlendColorDodge)
}
