// Package dither converts gray images into pure black and white using error
// diffusion or ordered (Bayer) dithering.
package dither

import (
	"errors"
	"fmt"
)

// ErrUnknownAlgorithm is returned by ParseAlgorithm for an unrecognized id.
var ErrUnknownAlgorithm = errors.New("unknown dithering algorithm")

// Algorithm identifies one of the supported dithering algorithms.
type Algorithm int

const (
	FloydSteinberg Algorithm = iota
	JarvisJudiceNinke
	Stucki
	Atkinson
	Sierra
	SierraTwoRow
	SierraLite
	Burkes
	Bayer8
	Bayer4
	Threshold
)

// Algorithms returns every algorithm in display order.
func Algorithms() []Algorithm {
	return []Algorithm{
		FloydSteinberg, JarvisJudiceNinke, Stucki, Atkinson, Sierra,
		SierraTwoRow, SierraLite, Burkes, Bayer8, Bayer4, Threshold,
	}
}

// ID returns the identifier used in presets and job files.
func (a Algorithm) ID() string {
	switch a {
	case FloydSteinberg:
		return "floydSteinberg"
	case JarvisJudiceNinke:
		return "jarvisJudiceNinke"
	case Stucki:
		return "stucki"
	case Atkinson:
		return "atkinson"
	case Sierra:
		return "sierra"
	case SierraTwoRow:
		return "sierra2"
	case SierraLite:
		return "sierraLite"
	case Burkes:
		return "burkes"
	case Bayer8:
		return "bayer"
	case Bayer4:
		return "bayer4"
	case Threshold:
		return "threshold"
	default:
		return "unknown"
	}
}

func (a Algorithm) String() string {
	switch a {
	case FloydSteinberg:
		return "Floyd-Steinberg"
	case JarvisJudiceNinke:
		return "Jarvis-Judice-Ninke"
	case Stucki:
		return "Stucki"
	case Atkinson:
		return "Atkinson"
	case Sierra:
		return "Sierra"
	case SierraTwoRow:
		return "Sierra 2-row"
	case SierraLite:
		return "Sierra Lite"
	case Burkes:
		return "Burkes"
	case Bayer8:
		return "Bayer 8x8"
	case Bayer4:
		return "Bayer 4x4"
	case Threshold:
		return "Threshold"
	default:
		return "Unknown"
	}
}

// ErrorDiffusion reports whether the algorithm carries quantization error.
func (a Algorithm) ErrorDiffusion() bool {
	switch a {
	case Bayer8, Bayer4, Threshold:
		return false
	default:
		return true
	}
}

// ParseAlgorithm maps an identifier back to its Algorithm.
func ParseAlgorithm(id string) (Algorithm, error) {
	for _, a := range Algorithms() {
		if a.ID() == id {
			return a, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownAlgorithm, id)
}

// MarshalText implements encoding.TextMarshaler so algorithms serialize by id.
func (a Algorithm) MarshalText() ([]byte, error) {
	if a.ID() == "unknown" {
		return nil, fmt.Errorf("%w: %d", ErrUnknownAlgorithm, int(a))
	}
	return []byte(a.ID()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Algorithm) UnmarshalText(text []byte) error {
	parsed, err := ParseAlgorithm(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}
