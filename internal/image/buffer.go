// Package image provides the RGBA pixel buffer shared by every processing
// stage, along with image loading, saving and blending helpers.
package image

import (
	"errors"
	"fmt"
	"image"
	"image/color"

	"golang.org/x/image/draw"
)

// ErrBadBuffer is returned when a buffer's data does not match its dimensions.
var ErrBadBuffer = errors.New("malformed pixel buffer")

// Buffer is a width x height RGBA image stored as interleaved, non-premultiplied
// 8-bit channels. Alpha 255 is fully opaque.
type Buffer struct {
	Width  int
	Height int
	Data   []uint8
}

// New allocates a transparent black buffer.
func New(width, height int) *Buffer {
	if width < 0 {
		width = 0
	}
	if height < 0 {
		height = 0
	}
	return &Buffer{
		Width:  width,
		Height: height,
		Data:   make([]uint8, width*height*4),
	}
}

// NewFilled allocates a buffer with every pixel set to c.
func NewFilled(width, height int, c color.RGBA) *Buffer {
	b := New(width, height)
	for i := 0; i < len(b.Data); i += 4 {
		b.Data[i] = c.R
		b.Data[i+1] = c.G
		b.Data[i+2] = c.B
		b.Data[i+3] = c.A
	}
	return b
}

// Wrap builds a buffer around existing data after validating its length.
func Wrap(width, height int, data []uint8) (*Buffer, error) {
	b := &Buffer{Width: width, Height: height, Data: data}
	if err := b.Validate(); err != nil {
		return nil, err
	}
	return b, nil
}

// Validate reports whether the buffer's data length matches its dimensions.
func (b *Buffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrBadBuffer)
	}
	if b.Width < 0 || b.Height < 0 {
		return fmt.Errorf("%w: negative size %dx%d", ErrBadBuffer, b.Width, b.Height)
	}
	if want := b.Width * b.Height * 4; len(b.Data) != want {
		return fmt.Errorf("%w: %dx%d needs %d bytes, have %d", ErrBadBuffer, b.Width, b.Height, want, len(b.Data))
	}
	return nil
}

// MustValidate panics if the buffer is malformed. Processing functions call it
// on entry so that bad input fails before any pixel is read.
func (b *Buffer) MustValidate() {
	if err := b.Validate(); err != nil {
		panic(err)
	}
}

// Clone returns a deep copy of the buffer.
func (b *Buffer) Clone() *Buffer {
	data := make([]uint8, len(b.Data))
	copy(data, b.Data)
	return &Buffer{Width: b.Width, Height: b.Height, Data: data}
}

// Blank returns a new transparent buffer of the same size.
func (b *Buffer) Blank() *Buffer {
	return New(b.Width, b.Height)
}

// Len returns the number of pixels.
func (b *Buffer) Len() int {
	return b.Width * b.Height
}

// Empty reports whether the buffer has no pixels.
func (b *Buffer) Empty() bool {
	return b.Width == 0 || b.Height == 0
}

// Index returns the byte offset of pixel (x, y).
func (b *Buffer) Index(x, y int) int {
	return (y*b.Width + x) * 4
}

// In reports whether (x, y) lies inside the buffer.
func (b *Buffer) In(x, y int) bool {
	return x >= 0 && x < b.Width && y >= 0 && y < b.Height
}

// At returns the pixel at (x, y). Out of range coordinates give transparent black.
func (b *Buffer) At(x, y int) color.RGBA {
	if !b.In(x, y) {
		return color.RGBA{}
	}
	i := b.Index(x, y)
	return color.RGBA{R: b.Data[i], G: b.Data[i+1], B: b.Data[i+2], A: b.Data[i+3]}
}

// Set writes the pixel at (x, y). Out of range coordinates are ignored.
func (b *Buffer) Set(x, y int, c color.RGBA) {
	if !b.In(x, y) {
		return
	}
	i := b.Index(x, y)
	b.Data[i] = c.R
	b.Data[i+1] = c.G
	b.Data[i+2] = c.B
	b.Data[i+3] = c.A
}

// SetGray writes v to the R, G and B channels of pixel index p (pixel, not
// byte, index) and leaves alpha alone.
func (b *Buffer) SetGray(p int, v uint8) {
	i := p * 4
	b.Data[i] = v
	b.Data[i+1] = v
	b.Data[i+2] = v
}

// Alpha returns the alpha channel as a separate slice.
func (b *Buffer) Alpha() []uint8 {
	out := make([]uint8, b.Len())
	for p := range out {
		out[p] = b.Data[p*4+3]
	}
	return out
}

// Bounds returns the buffer bounds as an image.Rectangle.
func (b *Buffer) Bounds() image.Rectangle {
	return image.Rect(0, 0, b.Width, b.Height)
}

// FromImage converts any image into a new buffer. The result is independent
// of img.
func FromImage(img image.Image) *Buffer {
	bounds := img.Bounds()
	dst := image.NewNRGBA(image.Rect(0, 0, bounds.Dx(), bounds.Dy()))
	draw.Draw(dst, dst.Bounds(), img, bounds.Min, draw.Src)

	b := New(bounds.Dx(), bounds.Dy())
	for y := 0; y < b.Height; y++ {
		copy(b.Data[y*b.Width*4:(y+1)*b.Width*4], dst.Pix[y*dst.Stride:y*dst.Stride+b.Width*4])
	}
	return b
}

// ToNRGBA returns a copy of the buffer as an *image.NRGBA.
func (b *Buffer) ToNRGBA() *image.NRGBA {
	img := image.NewNRGBA(b.Bounds())
	copy(img.Pix, b.Data)
	return img
}
