package mask

import (
	"fmt"
	"math"

	"laser-prep/internal/adjust"
	lpimage "laser-prep/internal/image"
)

// ShapeOptions controls how a built-in shape is applied.
type ShapeOptions struct {
	Feather int  `json:"feather"` // Edge softening radius in pixels
	Invert  bool `json:"invert"`  // Keep the outside of the shape instead
}

// Placement positions a mask relative to the image center.
type Placement struct {
	X     float64 `json:"x"`     // Horizontal offset of the mask center in pixels
	Y     float64 `json:"y"`     // Vertical offset of the mask center in pixels
	Scale float64 `json:"scale"` // Mask pixels per image pixel, <= 0 means 1
}

// ApplyShapeMask cuts buf to the built-in shape id. Unknown ids use a circle.
// The existing alpha is scaled, so masks compose.
func ApplyShapeMask(buf *lpimage.Buffer, id string, opts ShapeOptions) *lpimage.Buffer {
	buf.MustValidate()

	m := GenerateShapeMask(id, buf.Width, buf.Height)
	if opts.Invert {
		m = InvertMask(m)
	}
	if opts.Feather > 0 {
		m = FeatherMask(m, opts.Feather)
	}
	return multiplyAlpha(buf, m)
}

// ApplyMask scales the alpha of buf by the red channel of mask. The mask is
// centred on the image, shifted and scaled by pl; image pixels that map
// outside the mask become fully transparent.
func ApplyMask(buf, mask *lpimage.Buffer, pl Placement) *lpimage.Buffer {
	buf.MustValidate()
	mask.MustValidate()

	scale := pl.Scale
	if scale <= 0 {
		scale = 1
	}

	w, h := buf.Width, buf.Height
	icx, icy := float64(w)/2+pl.X, float64(h)/2+pl.Y
	mcx, mcy := float64(mask.Width)/2, float64(mask.Height)/2

	out := buf.Clone()
	for y := 0; y < h; y++ {
		my := int(math.Floor((float64(y)-icy)/scale + mcy))
		for x := 0; x < w; x++ {
			mx := int(math.Floor((float64(x)-icx)/scale + mcx))

			var v uint8
			if mask.In(mx, my) {
				v = mask.Data[mask.Index(mx, my)]
			}
			i := out.Index(x, y) + 3
			out.Data[i] = scaleAlpha(out.Data[i], v)
		}
	}
	return out
}

// multiplyAlpha scales alpha by a mask of the same size.
func multiplyAlpha(buf, mask *lpimage.Buffer) *lpimage.Buffer {
	out := buf.Clone()
	for i := 3; i < len(out.Data); i += 4 {
		out.Data[i] = scaleAlpha(out.Data[i], mask.Data[i-3])
	}
	return out
}

func scaleAlpha(a, m uint8) uint8 {
	return uint8((int(a)*int(m) + 127) / 255)
}

// InvertMask inverts R, G and B. Alpha is left alone.
func InvertMask(mask *lpimage.Buffer) *lpimage.Buffer {
	return adjust.Invert(mask)
}

// FeatherMask softens mask edges by averaging each pixel over the in-bounds
// square of the given radius.
func FeatherMask(mask *lpimage.Buffer, radius int) *lpimage.Buffer {
	return adjust.BoxBlur(mask, radius)
}

// CreateMaskFromImage turns any image into an opaque gray opacity mask.
// Transparent areas count as white and therefore keep the masked image.
func CreateMaskFromImage(src *lpimage.Buffer) *lpimage.Buffer {
	src.MustValidate()
	return lpimage.FromGray(src.Width, src.Height, src.Gray())
}

// LoadMask reads an image file and converts it into a mask.
func LoadMask(path string) (*lpimage.Buffer, error) {
	src, err := lpimage.Load(path)
	if err != nil {
		return nil, fmt.Errorf("failed to load mask: %w", err)
	}
	return CreateMaskFromImage(src.Buffer), nil
}
