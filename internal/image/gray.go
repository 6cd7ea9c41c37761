package image

import (
	"laser-prep/pkg/colorutil"
)

// Gray returns the luminance of every pixel after compositing onto white.
// This is the gray value used by every threshold and dithering stage.
func (b *Buffer) Gray() []float64 {
	gray := make([]float64, b.Len())
	for p := range gray {
		i := p * 4
		gray[p] = colorutil.Luminance(b.Data[i], b.Data[i+1], b.Data[i+2], b.Data[i+3])
	}
	return gray
}

// GrayAt returns the composited luminance of a single pixel.
func (b *Buffer) GrayAt(x, y int) float64 {
	i := b.Index(x, y)
	return colorutil.Luminance(b.Data[i], b.Data[i+1], b.Data[i+2], b.Data[i+3])
}

// FromGray builds an opaque gray buffer from a luminance field.
func FromGray(width, height int, gray []float64) *Buffer {
	b := New(width, height)
	for p, v := range gray {
		g := colorutil.Clamp8(v)
		i := p * 4
		b.Data[i] = g
		b.Data[i+1] = g
		b.Data[i+2] = g
		b.Data[i+3] = 255
	}
	return b
}

// Binarize returns a per-pixel flag that is true where the composited gray
// value is strictly below threshold.
func (b *Buffer) Binarize(threshold float64) []bool {
	on := make([]bool, b.Len())
	for p := range on {
		i := p * 4
		on[p] = colorutil.Luminance(b.Data[i], b.Data[i+1], b.Data[i+2], b.Data[i+3]) < threshold
	}
	return on
}
