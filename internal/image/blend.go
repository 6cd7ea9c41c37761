package image

import (
	"image/color"
)

// BlendMode specifies how two gray or color channels are combined.
type BlendMode int

const (
	BlendNormal BlendMode = iota
	BlendMultiply
	BlendScreen
	BlendColorDodge
	BlendDifference
)

func (m BlendMode) String() string {
	switch m {
	case BlendNormal:
		return "Normal"
	case BlendMultiply:
		return "Multiply"
	case BlendScreen:
		return "Screen"
	case BlendColorDodge:
		return "ColorDodge"
	case BlendDifference:
		return "Difference"
	default:
		return "Unknown"
	}
}

// BlendChannel combines a base and a blend channel value (both 0-255).
func BlendChannel(mode BlendMode, base, blend uint8) uint8 {
	b, s := int(base), int(blend)
	switch mode {
	case BlendMultiply:
		return uint8((b*s + 127) / 255)
	case BlendScreen:
		return uint8(255 - ((255-b)*(255-s)+127)/255)
	case BlendColorDodge:
		if s == 255 {
			return 255
		}
		v := b * 255 / (255 - s)
		if v > 255 {
			v = 255
		}
		return uint8(v)
	case BlendDifference:
		if b > s {
			return uint8(b - s)
		}
		return uint8(s - b)
	default:
		return blend
	}
}

// Blend combines the RGB channels of base and top with the given mode. The
// result keeps the alpha of base. Both buffers must have the same size.
func Blend(base, top *Buffer, mode BlendMode) *Buffer {
	base.MustValidate()
	top.MustValidate()
	if base.Width != top.Width || base.Height != top.Height {
		panic("image: Blend of buffers with different sizes")
	}

	out := base.Clone()
	for i := 0; i < len(out.Data); i += 4 {
		out.Data[i] = BlendChannel(mode, base.Data[i], top.Data[i])
		out.Data[i+1] = BlendChannel(mode, base.Data[i+1], top.Data[i+1])
		out.Data[i+2] = BlendChannel(mode, base.Data[i+2], top.Data[i+2])
	}
	return out
}

// Flatten composites the buffer onto an opaque background color and returns
// a fully opaque buffer. Engraving exports use a white background so that
// transparent areas are left unburnt.
func Flatten(src *Buffer, bg color.RGBA) *Buffer {
	src.MustValidate()

	out := New(src.Width, src.Height)
	for i := 0; i < len(src.Data); i += 4 {
		a := float64(src.Data[i+3]) / 255.0
		out.Data[i] = mix(src.Data[i], bg.R, a)
		out.Data[i+1] = mix(src.Data[i+1], bg.G, a)
		out.Data[i+2] = mix(src.Data[i+2], bg.B, a)
		out.Data[i+3] = 255
	}
	return out
}

func mix(fg, bg uint8, alpha float64) uint8 {
	v := float64(fg)*alpha + float64(bg)*(1-alpha)
	return uint8(clamp(v, 0, 255) + 0.5)
}

func clamp(x, min, max float64) float64 {
	if x < min {
		return min
	}
	if x > max {
		return max
	}
	return x
}
