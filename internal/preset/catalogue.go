package preset

import "laser-prep/internal/dither"

// PhotoRealism returns the preset for detailed photographs on wood.
func PhotoRealism() Config {
	return Config{
		ID:          "photoRealism",
		Name:        "Photo Realism",
		Description: "Balanced tones and fine grain for portraits and photos on wood",
		Adjustments: Adjustments{
			AutoAdjust:        true,
			Contrast:          10,
			Gamma:             1.1,
			SharpenAmount:     50,
			SharpenRadius:     1,
			ColorCorrection:   true,
			ShadowLift:        15, // Deep shadows burn to char
			HighlightCompress: 20,
		},
		Dithering: dither.JarvisJudiceNinke,
	}
}

// TrueTone returns the preset that keeps the tonal balance of the source.
func TrueTone() Config {
	return Config{
		ID:          "trueTone",
		Name:        "True Tone",
		Description: "Minimal processing, faithful to the original tones",
		Adjustments: Adjustments{
			AutoAdjust:        true,
			ColorCorrection:   true,
			ShadowLift:        10,
			HighlightCompress: 10,
		},
		Dithering: dither.FloydSteinberg,
	}
}

// DeepBurn returns the preset for dark, high-power engraving.
func DeepBurn() Config {
	return Config{
		ID:          "deepBurn",
		Name:        "Deep Burn",
		Description: "Darker midtones and strong sharpening for deep engraving",
		Adjustments: Adjustments{
			Brightness:    -10,
			Contrast:      30,
			Gamma:         0.8,
			SharpenAmount: 80,
			SharpenRadius: 1,
		},
		Dithering: dither.Stucki,
	}
}

// SoftDetail returns the preset for gentle images with smooth gradients.
func SoftDetail() Config {
	return Config{
		ID:          "softDetail",
		Name:        "Soft Detail",
		Description: "Noise reduction and light sharpening for smooth gradients",
		Adjustments: Adjustments{
			Denoise:       20,
			Gamma:         1.2,
			SharpenAmount: 30,
			SharpenRadius: 2,
		},
		Dithering: dither.Atkinson,
	}
}

// StoneSlate returns the preset for slate, granite and tile.
func StoneSlate() Config {
	return Config{
		ID:          "stoneSlate",
		Name:        "Stone & Slate",
		Description: "Bright, punchy output for light marks on dark stone",
		Adjustments: Adjustments{
			AutoAdjust:        true,
			Brightness:        15,
			Contrast:          40,
			Gamma:             1.3,
			SharpenAmount:     100,
			SharpenRadius:     1,
			ColorCorrection:   true,
			ShadowLift:        25,
			HighlightCompress: 10,
		},
		Dithering: dither.Sierra,
	}
}

// GlassAcrylic returns the preset for frosting glass and acrylic.
func GlassAcrylic() Config {
	return Config{
		ID:          "glassAcrylic",
		Name:        "Glass & Acrylic",
		Description: "Even ordered pattern that frosts cleanly without cracking",
		Adjustments: Adjustments{
			Brightness: 20,
			Contrast:   20,
		},
		Dithering: dither.Bayer8,
	}
}

// Forgiving returns the preset for low quality or noisy sources.
func Forgiving() Config {
	return Config{
		ID:          "forgiving",
		Name:        "Forgiving",
		Description: "Cleans up phone photos and scans with heavy noise",
		Adjustments: Adjustments{
			Denoise:           30,
			Contrast:          15,
			ColorCorrection:   true,
			ShadowLift:        20,
			HighlightCompress: 20,
		},
		Dithering: dither.SierraTwoRow,
	}
}

// EdgePop returns the preset that emphasizes outlines.
func EdgePop() Config {
	return Config{
		ID:          "edgePop",
		Name:        "Edge Pop",
		Description: "Strong sharpening and edge enhancement for crisp outlines",
		Adjustments: Adjustments{
			Contrast:      20,
			SharpenAmount: 120,
			SharpenRadius: 2,
			EdgeEnhance:   1.0,
		},
		Dithering: dither.Burkes,
	}
}

// HighContrast returns the preset for logos and line art.
func HighContrast() Config {
	return Config{
		ID:          "highContrast",
		Name:        "High Contrast",
		Description: "Hard black and white for logos, text and line art",
		Adjustments: Adjustments{
			AutoAdjust: true,
			Contrast:   60,
		},
		Dithering: dither.Threshold,
	}
}

// PencilSketch returns the preset that turns photos into line drawings.
func PencilSketch() Config {
	return Config{
		ID:          "pencilSketch",
		Name:        "Pencil Sketch",
		Description: "Converts the image to a pencil drawing before engraving",
		Adjustments: Adjustments{
			Sketch:   true,
			Contrast: 20,
		},
		Dithering: dither.SierraLite,
	}
}
