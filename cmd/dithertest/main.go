// Command dithertest renders an image with every dithering algorithm so the
// results can be compared side by side.
package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"laser-prep/internal/dither"
	lpimage "laser-prep/internal/image"
)

func main() {
	imagePath := flag.String("image", "", "Path to image (PNG, JPEG, TIFF, BMP, WebP)")
	outDir := flag.String("out", "dithertest", "Output directory")
	maxSize := flag.Int("max", 1024, "Downsample so the longest side is at most this many pixels (0 keeps size)")
	only := flag.String("alg", "", "Render only this algorithm")
	flag.Parse()

	if *imagePath == "" {
		fmt.Println("Usage: dithertest -image <path> [-out dir] [-max 1024] [-alg id]")
		os.Exit(1)
	}

	src, err := lpimage.Load(*imagePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load image: %v\n", err)
		os.Exit(1)
	}
	buf := lpimage.Fit(src.Buffer, *maxSize)
	fmt.Printf("Loaded %s: %dx%d pixels", *imagePath, src.Buffer.Width, src.Buffer.Height)
	if buf.Width != src.Buffer.Width || buf.Height != src.Buffer.Height {
		fmt.Printf(" (working at %dx%d)", buf.Width, buf.Height)
	}
	fmt.Println()

	algs := dither.Algorithms()
	if *only != "" {
		alg, err := dither.ParseAlgorithm(*only)
		if err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			os.Exit(1)
		}
		algs = []dither.Algorithm{alg}
	}

	if err := os.MkdirAll(*outDir, 0755); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create output directory: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("\n%-20s %10s %8s  %s\n", "Algorithm", "Time", "Black", "File")
	for _, alg := range algs {
		start := time.Now()
		out := dither.Apply(buf, alg)
		elapsed := time.Since(start)

		path := filepath.Join(*outDir, alg.ID()+".png")
		if err := lpimage.Save(out, path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to save %s: %v\n", path, err)
			os.Exit(1)
		}
		fmt.Printf("%-20s %10v %7.1f%%  %s\n", alg, elapsed.Round(time.Microsecond), 100*blackRatio(out), path)
	}
}

// blackRatio returns the fraction of opaque pixels that burn.
func blackRatio(b *lpimage.Buffer) float64 {
	var black, opaque int
	for p := 0; p < len(b.Data); p += 4 {
		if b.Data[p+3] == 0 {
			continue
		}
		opaque++
		if b.Data[p] == 0 {
			black++
		}
	}
	if opaque == 0 {
		return 0
	}
	return float64(black) / float64(opaque)
}
