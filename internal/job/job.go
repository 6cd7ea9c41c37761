// Package job provides job file handling: the JSON description of one
// processing run, from the input image to the engraving output.
package job

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"laser-prep/internal/dither"
	lpimage "laser-prep/internal/image"
	"laser-prep/internal/mask"
	"laser-prep/internal/preset"
	"laser-prep/internal/trace"
)

// CurrentVersion is the job file format version written by Save.
const CurrentVersion = 1

// Background removal methods.
const (
	BackgroundNone    = ""
	BackgroundBorder  = "border"
	BackgroundGrabCut = "grabcut"
)

// Contour output modes.
const (
	ContourSVG   = "svg"   // Vector outline written to SVGOutput
	ContourEdges = "edges" // Raster outline of dark regions
	ContourCanny = "canny" // Raster Canny edges
)

// File represents a laser-prep job file (.lpjob).
type File struct {
	Version     int       `json:"version"`
	Name        string    `json:"name"`
	Created     time.Time `json:"created"`
	Modified    time.Time `json:"modified"`
	Description string    `json:"description,omitempty"`

	// Image paths (relative to job file)
	Input     string `json:"input"`
	Output    string `json:"output,omitempty"`
	SVGOutput string `json:"svg_output,omitempty"`

	// Physical setup
	DPI     int `json:"dpi,omitempty"`
	MaxSize int `json:"max_size,omitempty"` // Longest side in pixels, 0 keeps the source size

	// Processing. Preset takes precedence over Custom.
	Preset    string              `json:"preset,omitempty"`
	Custom    *preset.Adjustments `json:"custom,omitempty"`
	Dithering string              `json:"dithering,omitempty"`

	RemoveBackground string           `json:"remove_background,omitempty"`
	Mask             *MaskSettings    `json:"mask,omitempty"`
	Contour          *ContourSettings `json:"contour,omitempty"`
}

// MaskSettings selects a built-in shape or a mask image.
type MaskSettings struct {
	Shape   string  `json:"shape,omitempty"`
	File    string  `json:"file,omitempty"` // Relative to job file, overrides Shape
	Feather int     `json:"feather,omitempty"`
	Invert  bool    `json:"invert,omitempty"`
	X       float64 `json:"x,omitempty"`
	Y       float64 `json:"y,omitempty"`
	Scale   float64 `json:"scale,omitempty"`
}

// ContourSettings configures edge and outline output.
type ContourSettings struct {
	Mode             string   `json:"mode"`
	Threshold        float64  `json:"threshold,omitempty"`
	AutoThreshold    bool     `json:"auto_threshold,omitempty"` // Otsu, overrides Threshold
	Low              float64  `json:"low,omitempty"`
	High             float64  `json:"high,omitempty"`
	SimplifyEpsilon  *float64 `json:"simplify_epsilon,omitempty"` // Unset uses the tracer default
	SmoothIterations *int     `json:"smooth_iterations,omitempty"`
	MinPathLength    *float64 `json:"min_path_length,omitempty"`
	OffsetPx         int      `json:"offset_px,omitempty"`
	LineWeight       int      `json:"line_weight,omitempty"` // Dilate (>0) or erode (<0) raster edges
}

// New creates a new job for an input image with default settings.
func New(name, input string) *File {
	now := time.Now()
	return &File{
		Version:  CurrentVersion,
		Name:     name,
		Created:  now,
		Modified: now,
		Input:    input,
		DPI:      254,
		Preset:   "photoRealism",
	}
}

// Validate checks that the job is complete and every id it names exists.
func (f *File) Validate() error {
	if f.Version <= 0 || f.Version > CurrentVersion {
		return fmt.Errorf("unsupported job version %d", f.Version)
	}
	if f.Input == "" {
		return fmt.Errorf("job input image is required")
	}
	if f.DPI < 0 || f.MaxSize < 0 {
		return fmt.Errorf("dpi and max_size must not be negative")
	}
	if _, err := f.ProcessConfig(); err != nil {
		return err
	}

	switch f.RemoveBackground {
	case BackgroundNone, BackgroundBorder, BackgroundGrabCut:
	default:
		return fmt.Errorf("unknown background removal method %q", f.RemoveBackground)
	}

	if m := f.Mask; m != nil {
		if m.File == "" && m.Shape == "" {
			return fmt.Errorf("mask needs a shape or a file")
		}
		if m.Feather < 0 || m.Scale < 0 {
			return fmt.Errorf("mask feather and scale must not be negative")
		}
	}

	if c := f.Contour; c != nil {
		switch c.Mode {
		case ContourSVG:
			if f.SVGOutput == "" {
				return fmt.Errorf("svg contour mode needs svg_output")
			}
		case ContourEdges, ContourCanny:
		default:
			return fmt.Errorf("unknown contour mode %q", c.Mode)
		}
		opts := c.Options()
		if opts.SimplifyEpsilon < 0 || opts.SmoothIterations < 0 || opts.MinPathLength < 0 {
			return fmt.Errorf("contour simplify_epsilon, smooth_iterations and min_path_length must not be negative")
		}
		if c.Mode == ContourCanny && c.Low > c.High {
			return fmt.Errorf("canny low threshold %g above high %g", c.Low, c.High)
		}
	}
	return nil
}

// ProcessConfig returns the preset, or the custom adjustments with the
// job's dithering algorithm when no preset is named.
func (f *File) ProcessConfig() (preset.Config, error) {
	if f.Preset != "" {
		return preset.Lookup(f.Preset)
	}

	cfg := preset.Config{ID: "custom", Name: "Custom"}
	if f.Custom != nil {
		cfg.Adjustments = *f.Custom
	}
	if f.Dithering != "" {
		alg, err := dither.ParseAlgorithm(f.Dithering)
		if err != nil {
			return preset.Config{}, err
		}
		cfg.Dithering = alg
	}
	if err := cfg.Validate(); err != nil {
		return preset.Config{}, fmt.Errorf("invalid custom adjustments: %w", err)
	}
	return cfg, nil
}

// ShapeOptions returns the mask options for a built-in shape.
func (m *MaskSettings) ShapeOptions() mask.ShapeOptions {
	return mask.ShapeOptions{Feather: m.Feather, Invert: m.Invert}
}

// Placement returns the mask placement relative to the image center.
func (m *MaskSettings) Placement() mask.Placement {
	return mask.Placement{X: m.X, Y: m.Y, Scale: m.Scale}
}

// Options returns tracer options. Fields left out of the job take the
// tracer defaults; explicit zeros are kept.
func (c *ContourSettings) Options() trace.ContourOptions {
	opts := trace.DefaultContourOptions()
	if c.SimplifyEpsilon != nil {
		opts.SimplifyEpsilon = *c.SimplifyEpsilon
	}
	if c.SmoothIterations != nil {
		opts.SmoothIterations = *c.SmoothIterations
	}
	if c.MinPathLength != nil {
		opts.MinPathLength = *c.MinPathLength
	}
	opts.OffsetPx = c.OffsetPx
	return opts
}

// ThresholdOrDefault returns the binarization threshold, 128 when unset.
func (c *ContourSettings) ThresholdOrDefault() float64 {
	if c.Threshold <= 0 {
		return 128
	}
	return c.Threshold
}

// ThresholdFor resolves the threshold for a particular image.
func (c *ContourSettings) ThresholdFor(b *lpimage.Buffer) float64 {
	if c.AutoThreshold {
		return trace.OtsuThreshold(b)
	}
	return c.ThresholdOrDefault()
}

// Load loads and validates a job from a .lpjob file.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse job: %w", err)
	}

	if err := f.Validate(); err != nil {
		return nil, fmt.Errorf("invalid job: %w", err)
	}
	return &f, nil
}

// Save saves the job to a file.
func (f *File) Save(path string) error {
	f.Modified = time.Now()

	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// SetInput sets the input image path (relative to job).
func (f *File) SetInput(jobPath, imagePath string) {
	f.Input = relativeTo(jobPath, imagePath)
	f.Modified = time.Now()
}

// SetOutput sets the output image path (relative to job).
func (f *File) SetOutput(jobPath, imagePath string) {
	f.Output = relativeTo(jobPath, imagePath)
	f.Modified = time.Now()
}

// InputPath returns the absolute path to the input image.
func (f *File) InputPath(jobPath string) string {
	return resolve(jobPath, f.Input)
}

// OutputPath returns the path of the engraving image. Without an explicit
// output it defaults to jobname_out.png next to the job file.
func (f *File) OutputPath(jobPath string) string {
	if f.Output == "" {
		base := jobPath[:len(jobPath)-len(filepath.Ext(jobPath))]
		return base + "_out.png"
	}
	return resolve(jobPath, f.Output)
}

// SVGOutputPath returns the path of the contour SVG, or "" if none.
func (f *File) SVGOutputPath(jobPath string) string {
	return resolve(jobPath, f.SVGOutput)
}

// MaskPath returns the path of the mask image, or "" if the mask is a shape.
func (f *File) MaskPath(jobPath string) string {
	if f.Mask == nil {
		return ""
	}
	return resolve(jobPath, f.Mask.File)
}

func relativeTo(jobPath, p string) string {
	rel, err := filepath.Rel(filepath.Dir(jobPath), p)
	if err != nil {
		return p
	}
	return rel
}

func resolve(jobPath, p string) string {
	if p == "" {
		return ""
	}
	if filepath.IsAbs(p) {
		return p
	}
	return filepath.Join(filepath.Dir(jobPath), p)
}
