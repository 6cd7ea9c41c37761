// Package main provides the laser-prep command: it turns photos and artwork
// into engraving-ready black and white images and SVG outlines.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"laser-prep/internal/app"
	"laser-prep/internal/dither"
	"laser-prep/internal/job"
	"laser-prep/internal/laser"
	"laser-prep/internal/mask"
	"laser-prep/internal/prefs"
	"laser-prep/internal/preset"
	"laser-prep/internal/segment"
	"laser-prep/internal/segment/grabcut"
	"laser-prep/internal/trace"
	"laser-prep/internal/version"
)

const appTitle = "laser-prep"

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)

	jobPath := flag.String("job", "", "Job file (.lpjob); other processing flags are ignored")
	input := flag.String("in", "", "Input image (PNG, JPEG, TIFF, BMP, WebP)")
	output := flag.String("out", "", "Output PNG (default <input>_out.png, or output_dir from preferences)")
	presetID := flag.String("preset", "", "Preset id, see -list")
	dithering := flag.String("dither", "", "Dithering algorithm when no preset is given")
	shape := flag.String("mask", "", "Mask shape: circle, heart, star, hexagon, oval, diamond, rounded-rect, triangle")
	maskFile := flag.String("mask-file", "", "Mask image, white keeps and black removes")
	feather := flag.Int("feather", 0, "Mask feather radius in pixels")
	invertMask := flag.Bool("invert-mask", false, "Keep the outside of the mask")
	svgOut := flag.String("svg", "", "Also trace contours into this SVG file")
	threshold := flag.Float64("threshold", 128, "Gray threshold for contour tracing")
	autoThreshold := flag.Bool("auto-threshold", false, "Pick the contour threshold with Otsu's method")
	defaults := trace.DefaultContourOptions()
	epsilon := flag.Float64("epsilon", defaults.SimplifyEpsilon, "Contour simplification tolerance in pixels, 0 keeps every corner")
	smooth := flag.Int("smooth", defaults.SmoothIterations, "Chaikin smoothing passes for contours, 0 disables")
	minLength := flag.Float64("min-length", defaults.MinPathLength, "Drop contours shorter than this many pixels")
	removeBG := flag.String("remove-bg", "", "Background removal: border or grabcut")
	dpi := flag.Int("dpi", 0, "Engraving resolution in DPI (default from preferences)")
	maxSize := flag.Int("max", 0, "Downsample so the longest side is at most this many pixels")
	saveJob := flag.String("save-job", "", "Write the settings from the flags to this job file")
	savePreset := flag.String("save-preset", "", "Store the tonal settings of this run as a user preset")
	watch := flag.Bool("watch", false, "Keep running and reprocess when the job or input changes")
	list := flag.Bool("list", false, "List presets, dithering algorithms, mask shapes and resolutions")
	showVersion := flag.Bool("version", false, "Print version and exit")
	flag.Parse()

	if *showVersion {
		fmt.Printf("%s %s (commit %s, built %s)\n", appTitle, version.Version, version.GitCommit, version.BuildTime)
		return
	}

	p, err := prefs.Load()
	if err != nil {
		log.Printf("Ignoring preferences: %v", err)
	}

	libPath, err := preset.LibraryPath()
	if err != nil {
		log.Printf("User presets unavailable: %v", err)
	}
	lib := preset.NewLibrary()
	if libPath != "" {
		if lib, err = preset.LoadLibrary(libPath); err != nil {
			log.Printf("Failed to load user presets: %v", err)
		}
	}

	if *list {
		printCatalogue(lib)
		return
	}

	session := app.NewSession()
	session.SetSegmenter(job.BackgroundGrabCut, segment.NewHandle(grabcut.Open))
	defer session.Close()

	if *jobPath != "" {
		if err := session.LoadJob(*jobPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load job: %v\n", err)
			os.Exit(1)
		}
	} else {
		if *input == "" {
			fmt.Println("Usage: laser-prep -in <image> [-preset id] [-out out.png] [-svg out.svg]")
			fmt.Println("       laser-prep -job <file.lpjob> [-watch]")
			os.Exit(1)
		}

		abs := mustAbs(*input)
		path := strings.TrimSuffix(abs, filepath.Ext(abs)) + ".lpjob"
		if *saveJob != "" {
			path = mustAbs(*saveJob)
		}

		f := job.New(strings.TrimSuffix(filepath.Base(abs), filepath.Ext(abs)), abs)
		f.DPI = p.DPIOr(f.DPI)
		f.MaxSize = p.MaxSize
		if *dpi > 0 {
			f.DPI = *dpi
		}
		if *maxSize > 0 {
			f.MaxSize = *maxSize
		}

		switch {
		case *presetID != "":
			f.Preset = *presetID
		case *dithering != "":
			f.Preset = ""
			f.Dithering = *dithering
		default:
			f.Preset = p.PresetOr(f.Preset)
		}
		if cfg, ok := lib.Get(f.Preset); ok {
			f.Preset = ""
			f.Custom = &cfg.Adjustments
			f.Dithering = cfg.Dithering.ID()
		}

		if *output != "" {
			f.Output = mustAbs(*output)
		} else if p.OutputDir != "" {
			f.Output = filepath.Join(p.OutputDir, f.Name+"_out.png")
		}
		if *svgOut != "" {
			f.SVGOutput = mustAbs(*svgOut)
			f.Contour = &job.ContourSettings{
				Mode:             job.ContourSVG,
				Threshold:        *threshold,
				AutoThreshold:    *autoThreshold,
				SimplifyEpsilon:  epsilon,
				SmoothIterations: smooth,
				MinPathLength:    minLength,
			}
		}
		f.RemoveBackground = *removeBG

		if *shape != "" || *maskFile != "" {
			f.Mask = &job.MaskSettings{Shape: *shape, Feather: *feather, Invert: *invertMask}
			if *maskFile != "" {
				f.Mask.File = mustAbs(*maskFile)
			}
		}

		if err := f.Validate(); err != nil {
			fmt.Fprintf(os.Stderr, "Invalid settings: %v\n", err)
			os.Exit(1)
		}
		if *saveJob != "" {
			f.SetInput(path, abs)
			if f.Output != "" {
				f.SetOutput(path, f.Output)
			}
			if err := f.Save(path); err != nil {
				fmt.Fprintf(os.Stderr, "Failed to save job: %v\n", err)
				os.Exit(1)
			}
			log.Printf("Saved job %s", path)
		}

		session.SetJob(path, f)
		if err := session.LoadSource(abs); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	session.On(app.EventProgress, func(data interface{}) {
		log.Printf("Background removal: %d%%", data.(int))
	})

	start := time.Now()
	res, err := session.Process(ctx)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Processing failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Processed with %s (%s) in %v\n", res.Config.Name, res.Config.Dithering, time.Since(start).Round(time.Millisecond))
	fmt.Printf("Output: %dx%d pixels, %s\n", res.Image.Width, res.Image.Height, res.Size)
	if res.SVG != "" {
		fmt.Printf("Contours: %d paths\n", len(res.Paths))
	}

	if err := session.SaveResult(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to save: %v\n", err)
		os.Exit(1)
	}

	if *savePreset != "" && libPath != "" {
		cfg := res.Config
		cfg.ID, cfg.Name, cfg.Description = *savePreset, *savePreset, ""
		if err := lib.Add(cfg); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to store preset: %v\n", err)
		} else if err := lib.Save(libPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save presets: %v\n", err)
		} else {
			log.Printf("Saved preset %s to %s", *savePreset, libPath)
		}
	}

	if f := session.Job; f != nil {
		if f.Preset != "" {
			p.LastPreset = f.Preset
		} else if *presetID != "" {
			if _, ok := lib.Get(*presetID); ok {
				p.LastPreset = *presetID
			}
		}
		if f.DPI > 0 {
			p.DPI = f.DPI
		}
		if err := p.Save(); err != nil {
			log.Printf("Failed to save preferences: %v", err)
		}
	}

	if *watch {
		if err := session.Watch(ctx, time.Second); err != nil && ctx.Err() == nil {
			fmt.Fprintf(os.Stderr, "Watch failed: %v\n", err)
			os.Exit(1)
		}
	}
}

// mustAbs resolves a path given on the command line, exiting on failure.
func mustAbs(path string) string {
	abs, err := filepath.Abs(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Invalid path %q: %v\n", path, err)
		os.Exit(1)
	}
	return abs
}

// printCatalogue lists everything that can be selected by id.
func printCatalogue(lib *preset.Library) {
	fmt.Println("Presets:")
	for _, c := range preset.All() {
		fmt.Printf("  %-14s %-16s %s\n", c.ID, c.Name, c.Description)
	}
	if len(lib.Presets) > 0 {
		fmt.Println("\nUser presets:")
		for _, c := range lib.Presets {
			fmt.Printf("  %-14s %-16s %s\n", c.ID, c.Name, c.Dithering)
		}
	}

	fmt.Println("\nDithering algorithms:")
	for _, a := range dither.Algorithms() {
		fmt.Printf("  %-18s %s\n", a.ID(), a)
	}

	fmt.Println("\nMask shapes:")
	for _, s := range mask.Shapes() {
		fmt.Printf("  %-14s %s\n", s.ID(), s.Name())
	}

	fmt.Println("\nResolutions:")
	for _, r := range laser.Resolutions() {
		fmt.Printf("  %4d DPI  %.4f mm\n", r.DPI, r.DotSizeMM)
	}
}
