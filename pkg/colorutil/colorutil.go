// Package colorutil provides shared color utilities for the laser-prep pipeline.
package colorutil

import (
	"image/color"
)

// Common colors used throughout the application.
var (
	Black       = color.RGBA{R: 0, G: 0, B: 0, A: 255}
	White       = color.RGBA{R: 255, G: 255, B: 255, A: 255}
	Transparent = color.RGBA{}
)

// Luminance weights (ITU-R BT.601).
const (
	WeightR = 0.299
	WeightG = 0.587
	WeightB = 0.114
)

// Luma returns the weighted luminance of an opaque RGB triple.
func Luma(r, g, b float64) float64 {
	return WeightR*r + WeightG*g + WeightB*b
}

// Luminance returns the gray value of a non-premultiplied RGBA pixel after
// compositing it onto a white background. A fully transparent pixel is
// always 255.
func Luminance(r, g, b, a uint8) float64 {
	if a == 255 {
		return Luma(float64(r), float64(g), float64(b))
	}
	af := float64(a) / 255.0
	bg := 255.0 * (1 - af)
	return Luma(float64(r)*af+bg, float64(g)*af+bg, float64(b)*af+bg)
}

// Clamp8 rounds v to the nearest integer and clamps it to [0,255].
func Clamp8(v float64) uint8 {
	if v <= 0 {
		return 0
	}
	if v >= 255 {
		return 255
	}
	return uint8(v + 0.5)
}
