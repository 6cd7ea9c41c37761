// Command contourtest traces contours in an image and reports the paths.
package main

import (
	"flag"
	"fmt"
	"os"
	"sort"
	"time"

	lpimage "laser-prep/internal/image"
	"laser-prep/internal/trace"
)

func main() {
	imagePath := flag.String("image", "", "Path to image (PNG, JPEG, TIFF, BMP, WebP)")
	threshold := flag.Float64("threshold", 128, "Gray threshold, pixels darker than this are inside")
	epsilon := flag.Float64("epsilon", 1, "Douglas-Peucker tolerance in pixels")
	smooth := flag.Int("smooth", 2, "Chaikin smoothing iterations")
	minLen := flag.Float64("min", 10, "Drop paths shorter than this many pixels")
	offset := flag.Int("offset", 0, "Grow (positive) or shrink (negative) shapes before tracing")
	svgPath := flag.String("svg", "", "Write the traced paths to this SVG file")
	edgesPath := flag.String("edges", "", "Write the raster edge image to this PNG file")
	cannyLow := flag.Float64("canny-low", 0, "Use Canny edges for -edges with this low threshold")
	cannyHigh := flag.Float64("canny-high", 0, "Canny high threshold")
	top := flag.Int("top", 10, "Number of largest paths to list")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: contourtest -image <path> [-threshold 128] [-epsilon 1] [-smooth 2] [-svg out.svg]")
		os.Exit(1)
	}

	src, err := lpimage.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	buf := src.Buffer
	fmt.Printf("Loaded %s: %dx%d pixels\n", *imagePath, buf.Width, buf.Height)

	opts := trace.ContourOptions{
		SimplifyEpsilon:  *epsilon,
		SmoothIterations: *smooth,
		MinPathLength:    *minLen,
		OffsetPx:         *offset,
	}
	fmt.Printf("\nTrace parameters:\n")
	fmt.Printf("  Threshold: %.0f\n", *threshold)
	fmt.Printf("  Simplify: %.2f px, smooth %d, min length %.1f px, offset %d px\n",
		opts.SimplifyEpsilon, opts.SmoothIterations, opts.MinPathLength, opts.OffsetPx)

	start := time.Now()
	paths := trace.TraceContours(buf, *threshold, opts)
	elapsed := time.Since(start)

	closed, vertices := 0, 0
	for _, p := range paths {
		if p.Closed {
			closed++
		}
		vertices += len(p.Points)
	}
	fmt.Printf("\nTraced %d paths (%d closed, %d open), %d vertices in %v\n",
		len(paths), closed, len(paths)-closed, vertices, elapsed.Round(time.Millisecond))

	sorted := make([]trace.Path, len(paths))
	copy(sorted, paths)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].Length() > sorted[j].Length() })
	if len(sorted) > *top {
		sorted = sorted[:*top]
	}
	if len(sorted) > 0 {
		fmt.Printf("\n%-4s %8s %10s %10s %6s  %s\n", "#", "Points", "Length", "Area", "Closed", "Bounds")
		for i, p := range sorted {
			b := p.Bounds()
			fmt.Printf("%-4d %8d %10.1f %10.1f %6v  (%.1f,%.1f)-(%.1f,%.1f)\n",
				i+1, len(p.Points), p.Length(), p.Area(), p.Closed, b.X, b.Y, b.X+b.Width, b.Y+b.Height)
		}
	}

	if *svgPath != "" {
		svg := trace.PathsToSVG(paths, buf.Width, buf.Height)
		if err := os.WriteFile(*svgPath, []byte(svg), 0644); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write SVG: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("\nWrote %s\n", *svgPath)
	}

	if *edgesPath != "" {
		var edges *lpimage.Buffer
		if *cannyHigh > 0 {
			edges = trace.CannyEdgeDetection(buf, *cannyLow, *cannyHigh)
		} else {
			edges = trace.ExtractContours(buf, *threshold)
		}
		if err := lpimage.Save(edges, *edgesPath); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to write edges: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Wrote %s\n", *edgesPath)
	}
}
