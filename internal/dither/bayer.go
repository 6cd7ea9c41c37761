package dither

import (
	lpimage "laser-prep/internal/image"
)

// bayerMatrix holds an n x n ordered dither index matrix.
type bayerMatrix struct {
	n     int
	index []int
}

var bayer4 = bayerMatrix{
	n: 4,
	index: []int{
		0, 8, 2, 10,
		12, 4, 14, 6,
		3, 11, 1, 9,
		15, 7, 13, 5,
	},
}

var bayer8 = bayerMatrix{
	n: 8,
	index: []int{
		0, 32, 8, 40, 2, 34, 10, 42,
		48, 16, 56, 24, 50, 18, 58, 26,
		12, 44, 4, 36, 14, 46, 6, 38,
		60, 28, 52, 20, 62, 30, 54, 22,
		3, 35, 11, 43, 1, 33, 9, 41,
		51, 19, 59, 27, 49, 17, 57, 25,
		15, 47, 7, 39, 13, 45, 5, 37,
		63, 31, 55, 23, 61, 29, 53, 21,
	},
}

// thresholdAt returns the gray threshold for pixel (x, y); the matrix is tiled
// across the image.
func (m *bayerMatrix) thresholdAt(x, y int) float64 {
	idx := m.index[(y%m.n)*m.n+x%m.n]
	return (float64(idx) + 0.5) * 255 / float64(m.n*m.n)
}

// ordered compares every pixel against its tiled Bayer threshold.
func ordered(src *lpimage.Buffer, m *bayerMatrix) *lpimage.Buffer {
	w := src.Width
	out := src.Clone()
	for p, g := range src.Gray() {
		v := uint8(0)
		if g > m.thresholdAt(p%w, p/w) {
			v = 255
		}
		out.SetGray(p, v)
	}
	return out
}
