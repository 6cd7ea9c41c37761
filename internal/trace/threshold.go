package trace

import (
	lpimage "laser-prep/internal/image"
	"laser-prep/pkg/colorutil"
)

// OtsuThreshold picks the gray level that best separates dark from light
// pixels by maximizing between-class variance. Pixels darker than the
// returned value form the foreground. Uniform images return 128.
func OtsuThreshold(src *lpimage.Buffer) float64 {
	var hist [256]int
	total := src.Width * src.Height
	for _, g := range src.Gray() {
		hist[colorutil.Clamp8(g)]++
	}
	if total == 0 {
		return 128
	}

	var sum float64
	for i := 0; i < 256; i++ {
		sum += float64(i) * float64(hist[i])
	}

	var sumB, maxVar float64
	var wB int
	best := -1
	for t := 0; t < 256; t++ {
		wB += hist[t]
		if wB == 0 {
			continue
		}
		wF := total - wB
		if wF == 0 {
			break
		}

		sumB += float64(t) * float64(hist[t])
		mB := sumB / float64(wB)
		mF := (sum - sumB) / float64(wF)

		variance := float64(wB) * float64(wF) * (mB - mF) * (mB - mF)
		if variance > maxVar {
			maxVar = variance
			best = t
		}
	}
	if best < 0 {
		return 128
	}
	// Levels up to best belong to the dark class.
	return float64(best) + 1
}
