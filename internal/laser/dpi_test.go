package laser

import (
	"math"
	"testing"
)

func TestResolutionTable(t *testing.T) {
	table := Resolutions()
	if len(table) != 10 {
		t.Fatalf("expected 10 entries, got %d", len(table))
	}
	for i, r := range table {
		if i > 0 && r.DPI <= table[i-1].DPI {
			t.Errorf("table not ascending at %d", r.DPI)
		}
		if want := MMPerInch / float64(r.DPI); math.Abs(r.DotSizeMM-want) > 5e-5 {
			t.Errorf("%d DPI: dot size %v, want %v", r.DPI, r.DotSizeMM, want)
		}
	}

	table[0].DPI = 1
	if Resolutions()[0].DPI != 100 {
		t.Error("Resolutions must return a copy")
	}
}

func TestDotSizeMM(t *testing.T) {
	if d, ok := DotSizeMM(254); !ok || d != 0.1 {
		t.Errorf("DotSizeMM(254) = %v, %v", d, ok)
	}
	if _, ok := DotSizeMM(123); ok {
		t.Error("123 DPI is not in the table")
	}
}

func TestPhysicalSize(t *testing.T) {
	s := PhysicalSize(1000, 500, 254)
	if math.Abs(s.WidthMM-100) > 1e-9 || math.Abs(s.HeightMM-50) > 1e-9 {
		t.Errorf("got %v", s)
	}
	if s.String() != "100.0 x 50.0 mm" {
		t.Errorf("String() = %q", s.String())
	}
	if PhysicalSize(10, 10, 0) != (Size{}) {
		t.Error("zero DPI should give zero size")
	}
}

func TestPixelsFor(t *testing.T) {
	tests := []struct {
		mm   float64
		dpi  int
		want int
	}{
		{100, 254, 1000},
		{25.4, 300, 300},
		{10, 0, 0},
		{-5, 300, 0},
	}
	for _, tc := range tests {
		if got := PixelsFor(tc.mm, tc.dpi); got != tc.want {
			t.Errorf("PixelsFor(%v, %d) = %d, want %d", tc.mm, tc.dpi, got, tc.want)
		}
	}
}
