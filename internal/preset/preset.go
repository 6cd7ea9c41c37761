// Package preset composes adjustments and dithering into named engraving
// profiles for common materials.
package preset

import (
	"errors"
	"fmt"

	"laser-prep/internal/adjust"
	"laser-prep/internal/dither"
	lpimage "laser-prep/internal/image"
)

// ErrUnknownPreset is returned for a preset id that is not in the catalogue.
var ErrUnknownPreset = errors.New("unknown preset")

// Adjustments lists the optional tonal steps of a preset. Zero values skip
// the step, except Gamma where both 0 and 1 mean "unchanged".
type Adjustments struct {
	Brightness        int     `json:"brightness,omitempty"`         // -255..255
	Contrast          float64 `json:"contrast,omitempty"`           // -100..100
	Gamma             float64 `json:"gamma,omitempty"`              // 0..10
	SharpenAmount     float64 `json:"sharpen_amount,omitempty"`     // Percent
	SharpenRadius     int     `json:"sharpen_radius,omitempty"`     // Pixels, defaults to 1
	Denoise           float64 `json:"denoise,omitempty"`            // 0..100
	AutoAdjust        bool    `json:"auto_adjust,omitempty"`        // Histogram stretch
	ColorCorrection   bool    `json:"color_correction,omitempty"`   // Enables ShadowLift and HighlightCompress
	ShadowLift        float64 `json:"shadow_lift,omitempty"`        // Percent
	HighlightCompress float64 `json:"highlight_compress,omitempty"` // Percent
	EdgeEnhance       float64 `json:"edge_enhance,omitempty"`       // Laplacian strength
	Sketch            bool    `json:"sketch,omitempty"`             // Pencil sketch conversion first
}

// Config is a complete processing profile.
type Config struct {
	ID          string           `json:"id"`
	Name        string           `json:"name"`
	Description string           `json:"description"`
	Adjustments Adjustments      `json:"adjustments"`
	Dithering   dither.Algorithm `json:"dithering"`
}

// Validate checks that all parameters are in range.
func (c Config) Validate() error {
	a := c.Adjustments
	if a.Brightness < -255 || a.Brightness > 255 {
		return fmt.Errorf("brightness %d out of range [-255, 255]", a.Brightness)
	}
	if a.Contrast < -100 || a.Contrast > 100 {
		return fmt.Errorf("contrast %g out of range [-100, 100]", a.Contrast)
	}
	if a.Gamma < 0 || a.Gamma > 10 {
		return fmt.Errorf("gamma %g out of range (0, 10]", a.Gamma)
	}
	if a.Denoise < 0 || a.Denoise > 100 {
		return fmt.Errorf("denoise %g out of range [0, 100]", a.Denoise)
	}
	if a.SharpenAmount < 0 || a.SharpenRadius < 0 {
		return fmt.Errorf("sharpening must not be negative")
	}
	if c.Dithering.ID() == "unknown" {
		return fmt.Errorf("%w: %d", dither.ErrUnknownAlgorithm, int(c.Dithering))
	}
	return nil
}

// Lookup returns the preset with the given id.
func Lookup(id string) (Config, error) {
	switch id {
	case "photoRealism":
		return PhotoRealism(), nil
	case "trueTone":
		return TrueTone(), nil
	case "deepBurn":
		return DeepBurn(), nil
	case "softDetail":
		return SoftDetail(), nil
	case "stoneSlate":
		return StoneSlate(), nil
	case "glassAcrylic":
		return GlassAcrylic(), nil
	case "forgiving":
		return Forgiving(), nil
	case "edgePop":
		return EdgePop(), nil
	case "highContrast":
		return HighContrast(), nil
	case "pencilSketch":
		return PencilSketch(), nil
	default:
		return Config{}, fmt.Errorf("%w: %q", ErrUnknownPreset, id)
	}
}

// All returns the catalogue in display order.
func All() []Config {
	return []Config{
		PhotoRealism(),
		TrueTone(),
		DeepBurn(),
		SoftDetail(),
		StoneSlate(),
		GlassAcrylic(),
		Forgiving(),
		EdgePop(),
		HighContrast(),
		PencilSketch(),
	}
}

// IDs returns the ids of every preset in display order.
func IDs() []string {
	all := All()
	ids := make([]string, len(all))
	for i, c := range all {
		ids[i] = c.ID
	}
	return ids
}

// Apply runs the preset id on buf.
func Apply(buf *lpimage.Buffer, id string) (*lpimage.Buffer, error) {
	cfg, err := Lookup(id)
	if err != nil {
		return nil, err
	}
	return Run(buf, cfg), nil
}

// Run executes cfg on buf. Steps always run in the same order: sketch, auto
// adjust, brightness, contrast, gamma, color correction, denoise, sharpen,
// edge enhance and finally dithering.
func Run(buf *lpimage.Buffer, cfg Config) *lpimage.Buffer {
	buf.MustValidate()

	a := cfg.Adjustments
	out := buf
	if a.Sketch {
		out = adjust.SketchEffect(out)
	}
	if a.AutoAdjust {
		out = adjust.AutoAdjust(out)
	}
	if a.Brightness != 0 {
		out = adjust.Brightness(out, a.Brightness)
	}
	if a.Contrast != 0 {
		out = adjust.Contrast(out, a.Contrast)
	}
	if a.Gamma > 0 && a.Gamma != 1 {
		out = adjust.Gamma(out, a.Gamma)
	}
	if a.ColorCorrection {
		out = adjust.ColorCorrection(out, a.ShadowLift, a.HighlightCompress)
	}
	if a.Denoise > 0 {
		out = adjust.Denoise(out, a.Denoise)
	}
	if a.SharpenAmount > 0 {
		out = adjust.UnsharpMask(out, max(1, a.SharpenRadius), a.SharpenAmount, 0)
	}
	if a.EdgeEnhance > 0 {
		out = adjust.EdgeEnhance(out, a.EdgeEnhance)
	}
	return dither.Apply(out, cfg.Dithering)
}
