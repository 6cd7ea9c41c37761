package segment

import (
	"context"
	"image/color"
	"math"

	lpimage "laser-prep/internal/image"
)

// BorderSegmenter treats the average border colour as the background and
// removes every region of similar colour connected to the image edge.
// It suits product shots and scans on a plain backdrop.
type BorderSegmenter struct {
	Tolerance float64 // RGB distance that is always background
	Softness  float64 // Distance range over which opacity ramps up to 255
}

// NewBorderSegmenter returns a BorderSegmenter with defaults tuned for
// photos on a plain backdrop.
func NewBorderSegmenter() *BorderSegmenter {
	return &BorderSegmenter{
		Tolerance: 30,
		Softness:  30,
	}
}

// Segment implements Segmenter.
func (s *BorderSegmenter) Segment(ctx context.Context, buf *lpimage.Buffer, onProgress ProgressFunc) (*lpimage.Buffer, error) {
	buf.MustValidate()
	if onProgress == nil {
		onProgress = func(int) {}
	}

	w, h := buf.Width, buf.Height
	out := lpimage.NewFilled(w, h, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	if w == 0 || h == 0 {
		onProgress(100)
		return out, nil
	}

	bg := BackgroundColor(buf)
	limit := s.Tolerance + s.Softness

	dist := make([]float64, w*h)
	for p := range dist {
		c := buf.Data[p*4 : p*4+3]
		dr := float64(c[0]) - float64(bg.R)
		dg := float64(c[1]) - float64(bg.G)
		db := float64(c[2]) - float64(bg.B)
		dist[p] = math.Sqrt(dr*dr + dg*dg + db*db)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	onProgress(30)

	// Flood fill from every border pixel through background-like pixels.
	seen := make([]bool, w*h)
	var queue []int
	push := func(p int) {
		if !seen[p] && dist[p] < limit {
			seen[p] = true
			queue = append(queue, p)
		}
	}
	for x := 0; x < w; x++ {
		push(x)
		push((h-1)*w + x)
	}
	for y := 0; y < h; y++ {
		push(y * w)
		push(y*w + w - 1)
	}

	for n := 0; len(queue) > 0; n++ {
		if n%(w*16) == 0 {
			if err := ctx.Err(); err != nil {
				return nil, err
			}
		}

		p := queue[0]
		queue = queue[1:]
		out.SetGray(p, s.opacity(dist[p]))

		x, y := p%w, p/w
		if x > 0 {
			push(p - 1)
		}
		if x < w-1 {
			push(p + 1)
		}
		if y > 0 {
			push(p - w)
		}
		if y < h-1 {
			push(p + w)
		}
	}

	onProgress(100)
	return out, nil
}

// opacity maps a colour distance to mask opacity.
func (s *BorderSegmenter) opacity(d float64) uint8 {
	switch {
	case d <= s.Tolerance:
		return 0
	case s.Softness <= 0:
		return 255
	default:
		return uint8(math.Round(math.Min(1, (d-s.Tolerance)/s.Softness) * 255))
	}
}

// BackgroundColor samples the border pixels of buf and returns their
// average colour.
func BackgroundColor(buf *lpimage.Buffer) color.RGBA {
	w, h := buf.Width, buf.Height
	if w == 0 || h == 0 {
		return color.RGBA{A: 255}
	}
	var r, g, b, count uint64

	add := func(x, y int) {
		i := buf.Index(x, y)
		r += uint64(buf.Data[i])
		g += uint64(buf.Data[i+1])
		b += uint64(buf.Data[i+2])
		count++
	}
	for x := 0; x < w; x++ {
		add(x, 0)
		add(x, h-1)
	}
	for y := 0; y < h; y++ {
		add(0, y)
		add(w-1, y)
	}

	return color.RGBA{
		R: uint8(r / count),
		G: uint8(g / count),
		B: uint8(b / count),
		A: 255,
	}
}
