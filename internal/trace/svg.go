package trace

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	lpimage "laser-prep/internal/image"
)

// ContourToSVG traces src and renders the contours as a single stroked SVG
// path sized to the image. An image with no contours yields an empty path.
func ContourToSVG(src *lpimage.Buffer, threshold float64, opts ContourOptions) string {
	paths := TraceContours(src, threshold, opts)
	return PathsToSVG(paths, src.Width, src.Height)
}

// PathsToSVG renders paths as an SVG document of the given pixel size.
func PathsToSVG(paths []Path, width, height int) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">`,
		width, height, width, height)
	sb.WriteString("\n")
	fmt.Fprintf(&sb, `  <path d="%s" fill="none" stroke="black" stroke-width="1"/>`, PathData(paths))
	sb.WriteString("\n</svg>\n")
	return sb.String()
}

// PathData returns the SVG path data for paths: one M/L run per path, with
// Z closing closed paths.
func PathData(paths []Path) string {
	var parts []string
	for _, p := range paths {
		if len(p.Points) == 0 {
			continue
		}
		var sb strings.Builder
		for i, pt := range p.Points {
			if i == 0 {
				sb.WriteString("M")
			} else {
				sb.WriteString(" L")
			}
			sb.WriteString(formatCoord(pt.X))
			sb.WriteString(" ")
			sb.WriteString(formatCoord(pt.Y))
		}
		if p.Closed {
			sb.WriteString(" Z")
		}
		parts = append(parts, sb.String())
	}
	return strings.Join(parts, " ")
}

// formatCoord prints v with at most two decimals and no trailing zeros.
func formatCoord(v float64) string {
	r := math.Round(v*100) / 100
	if r == 0 {
		return "0"
	}
	return strconv.FormatFloat(r, 'f', -1, 64)
}
