package dither

import (
	"math"

	lpimage "laser-prep/internal/image"

	edm "github.com/makeworld-the-better-one/dither/v2"
)

// quantizeThreshold splits gray values into black and white.
const quantizeThreshold = 128

// Apply dithers src with the given algorithm. The gray value of each pixel is
// taken after compositing onto white; the output has R=G=B in {0,255} and
// keeps the source alpha.
func Apply(src *lpimage.Buffer, alg Algorithm) *lpimage.Buffer {
	src.MustValidate()

	if k, ok := kernels[alg]; ok {
		return diffuse(src, k)
	}
	switch alg {
	case Bayer8:
		return ordered(src, &bayer8)
	case Bayer4:
		return ordered(src, &bayer4)
	case Threshold:
		return threshold(src)
	default:
		panic("dither: unknown algorithm " + alg.ID())
	}
}

// kernel pairs a diffusion matrix with the common denominator of its
// weights. The matrices hold float32 fractions, so each weight is rebuilt as
// round(w*denominator)/denominator to restore the exact ratio.
type kernel struct {
	matrix      edm.ErrorDiffusionMatrix
	denominator float64
}

var kernels = map[Algorithm]kernel{
	FloydSteinberg:    {edm.FloydSteinberg, 16},
	JarvisJudiceNinke: {edm.JarvisJudiceNinke, 48},
	Stucki:            {edm.Stucki, 42},
	Atkinson:          {edm.Atkinson, 8},
	Sierra:            {edm.Sierra, 32},
	SierraTwoRow:      {edm.TwoRowSierra, 16},
	SierraLite:        {edm.SierraLite, 4},
	Burkes:            {edm.Burkes, 32},
}

// tap is one non-zero entry of a diffusion kernel relative to the current pixel.
type tap struct {
	dx, dy int
	weight float64
}

// kernelTaps flattens an error diffusion matrix. The current pixel is the
// right-most zero of the first row; everything before it has already been
// visited and carries no weight.
func kernelTaps(k kernel) []tap {
	m := k.matrix
	if len(m) == 0 {
		return nil
	}
	cur := 0
	for i, w := range m[0] {
		if w == 0 {
			cur = i
		}
	}

	var taps []tap
	for dy, row := range m {
		for col, w := range row {
			if w == 0 {
				continue
			}
			num := math.Round(float64(w) * k.denominator)
			taps = append(taps, tap{dx: col - cur, dy: dy, weight: num / k.denominator})
		}
	}
	return taps
}

// diffuse scans the gray field of src row by row, left to right, pushing each
// pixel's quantization error onto its unvisited neighbors.
func diffuse(src *lpimage.Buffer, k kernel) *lpimage.Buffer {
	w, h := src.Width, src.Height
	acc := src.Gray()
	taps := kernelTaps(k)
	out := src.Clone()

	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			p := y*w + x
			old := acc[p]
			var q float64
			if old >= quantizeThreshold {
				q = 255
			}
			out.SetGray(p, uint8(q))

			qe := old - q
			if qe == 0 {
				continue
			}
			for _, t := range taps {
				tx, ty := x+t.dx, y+t.dy
				if tx < 0 || tx >= w || ty >= h {
					continue
				}
				acc[ty*w+tx] += qe * t.weight
			}
		}
	}
	return out
}

// threshold is the plain 128 cut with no error carry.
func threshold(src *lpimage.Buffer) *lpimage.Buffer {
	out := src.Clone()
	for p, g := range src.Gray() {
		v := uint8(0)
		if g >= quantizeThreshold {
			v = 255
		}
		out.SetGray(p, v)
	}
	return out
}
