package trace

import (
	"math"

	lpimage "laser-prep/internal/image"
	"laser-prep/pkg/colorutil"

	"gonum.org/v1/gonum/floats"
)

// Edge classes produced by the double threshold.
const (
	edgeNone   = 0
	edgeWeak   = 1
	edgeStrong = 2
)

// minMagnitude filters out gradients that are only floating point noise from
// blurring a flat area.
const minMagnitude = 1e-6

// gaussian3 is the 3x3 Gaussian kernel [1,2,1,2,4,2,1,2,1]/16.
var gaussian3 = func() []float64 {
	k := []float64{1, 2, 1, 2, 4, 2, 1, 2, 1}
	floats.Scale(1/floats.Sum(k), k)
	return k
}()

var (
	sobelX = [9]float64{-1, 0, 1, -2, 0, 2, -1, 0, 1}
	sobelY = [9]float64{-1, -2, -1, 0, 0, 0, 1, 2, 1}
)

// CannyEdgeDetection finds edges with the Canny pipeline: Gaussian blur, Sobel
// gradients, non-maximum suppression, double threshold and hysteresis.
// Strong edges are black, everything else white; the output is opaque.
func CannyEdgeDetection(src *lpimage.Buffer, low, high float64) *lpimage.Buffer {
	src.MustValidate()

	w, h := src.Width, src.Height
	out := lpimage.NewFilled(w, h, colorutil.White)
	if w < 3 || h < 3 {
		return out
	}

	blurred := convolve3(src.Gray(), w, h, gaussian3)
	mag, dir := sobel(blurred, w, h)
	thin := suppressNonMaxima(mag, dir, w, h)
	class := doubleThreshold(thin, low, high)
	hysteresis(class, w, h)

	for p, c := range class {
		if c == edgeStrong {
			out.SetGray(p, 0)
		}
	}
	return out
}

// convolve3 applies a 3x3 kernel to the interior; border values are copied.
func convolve3(in []float64, w, h int, k []float64) []float64 {
	out := make([]float64, len(in))
	copy(out, in)
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var sum float64
			for ky := -1; ky <= 1; ky++ {
				row := (y + ky) * w
				for kx := -1; kx <= 1; kx++ {
					sum += in[row+x+kx] * k[(ky+1)*3+kx+1]
				}
			}
			out[y*w+x] = sum
		}
	}
	return out
}

// sobel returns gradient magnitude and direction (radians) for interior pixels.
func sobel(in []float64, w, h int) ([]float64, []float64) {
	mag := make([]float64, len(in))
	dir := make([]float64, len(in))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			var gx, gy float64
			for ky := -1; ky <= 1; ky++ {
				row := (y + ky) * w
				for kx := -1; kx <= 1; kx++ {
					v := in[row+x+kx]
					gx += v * sobelX[(ky+1)*3+kx+1]
					gy += v * sobelY[(ky+1)*3+kx+1]
				}
			}
			p := y*w + x
			mag[p] = math.Sqrt(gx*gx + gy*gy)
			dir[p] = math.Atan2(gy, gx)
		}
	}
	return mag, dir
}

// suppressNonMaxima keeps a pixel only if its magnitude is at least that of
// both neighbors along the gradient direction, binned into 0, 45, 90 and 135
// degrees.
func suppressNonMaxima(mag, dir []float64, w, h int) []float64 {
	out := make([]float64, len(mag))
	for y := 1; y < h-1; y++ {
		for x := 1; x < w-1; x++ {
			p := y*w + x
			m := mag[p]
			if m == 0 {
				continue
			}

			angle := dir[p] * 180 / math.Pi
			if angle < 0 {
				angle += 180
			}

			var n1, n2 float64
			switch {
			case angle < 22.5 || angle >= 157.5:
				n1, n2 = mag[p-1], mag[p+1]
			case angle < 67.5:
				// Y grows downward, so a 45 degree gradient points down-right.
				n1, n2 = mag[p-w-1], mag[p+w+1]
			case angle < 112.5:
				n1, n2 = mag[p-w], mag[p+w]
			default:
				n1, n2 = mag[p-w+1], mag[p+w-1]
			}

			if m >= n1 && m >= n2 {
				out[p] = m
			}
		}
	}
	return out
}

// doubleThreshold classifies suppressed magnitudes as strong (>= high) or
// weak (>= low). Flat areas are never edges, whatever the thresholds.
func doubleThreshold(thin []float64, low, high float64) []uint8 {
	class := make([]uint8, len(thin))
	for p, m := range thin {
		switch {
		case m < minMagnitude:
		case m >= high:
			class[p] = edgeStrong
		case m >= low:
			class[p] = edgeWeak
		}
	}
	return class
}

// hysteresis promotes weak pixels touching a strong pixel until a full pass
// makes no change.
func hysteresis(class []uint8, w, h int) {
	for changed := true; changed; {
		changed = false
		for y := 1; y < h-1; y++ {
			for x := 1; x < w-1; x++ {
				p := y*w + x
				if class[p] != edgeWeak {
					continue
				}
				if hasStrongNeighbor(class, p, w) {
					class[p] = edgeStrong
					changed = true
				}
			}
		}
	}
}

func hasStrongNeighbor(class []uint8, p, w int) bool {
	for dy := -1; dy <= 1; dy++ {
		for dx := -1; dx <= 1; dx++ {
			if (dx != 0 || dy != 0) && class[p+dy*w+dx] == edgeStrong {
				return true
			}
		}
	}
	return false
}
