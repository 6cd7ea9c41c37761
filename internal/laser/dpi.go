// Package laser converts between image pixels and physical engraving size.
package laser

import (
	"fmt"
	"math"
)

// MMPerInch is the number of millimetres in an inch.
const MMPerInch = 25.4

// Resolution is one entry of the engraving resolution table.
type Resolution struct {
	DPI       int
	DotSizeMM float64 // Distance between dot centres
}

// resolutions lists the line densities offered by common diode and CO2
// machines. 254 and 508 DPI are exactly 0.1 and 0.05 mm.
var resolutions = []Resolution{
	{DPI: 100, DotSizeMM: 0.254},
	{DPI: 150, DotSizeMM: 0.1693},
	{DPI: 200, DotSizeMM: 0.127},
	{DPI: 254, DotSizeMM: 0.1},
	{DPI: 300, DotSizeMM: 0.0847},
	{DPI: 318, DotSizeMM: 0.0799},
	{DPI: 400, DotSizeMM: 0.0635},
	{DPI: 500, DotSizeMM: 0.0508},
	{DPI: 508, DotSizeMM: 0.05},
	{DPI: 600, DotSizeMM: 0.0423},
}

// Resolutions returns a copy of the resolution table in ascending order.
func Resolutions() []Resolution {
	out := make([]Resolution, len(resolutions))
	copy(out, resolutions)
	return out
}

// DotSizeMM returns the dot size for a DPI in the table.
func DotSizeMM(dpi int) (float64, bool) {
	for _, r := range resolutions {
		if r.DPI == dpi {
			return r.DotSizeMM, true
		}
	}
	return 0, false
}

// Size is a physical size in millimetres.
type Size struct {
	WidthMM  float64
	HeightMM float64
}

func (s Size) String() string {
	return fmt.Sprintf("%.1f x %.1f mm", s.WidthMM, s.HeightMM)
}

// PhysicalSize returns the engraved size of a w x h pixel image at dpi.
func PhysicalSize(w, h, dpi int) Size {
	if dpi <= 0 {
		return Size{}
	}
	return Size{
		WidthMM:  float64(w) * MMPerInch / float64(dpi),
		HeightMM: float64(h) * MMPerInch / float64(dpi),
	}
}

// PixelsFor returns the pixel count needed to cover mm millimetres at dpi.
func PixelsFor(mm float64, dpi int) int {
	if dpi <= 0 || mm <= 0 {
		return 0
	}
	return int(math.Round(mm * float64(dpi) / MMPerInch))
}
