package mask

import (
	"image/color"
	"path/filepath"
	"testing"

	lpimage "laser-prep/internal/image"
	"laser-prep/pkg/colorutil"
)

func red(b *lpimage.Buffer, x, y int) uint8 {
	return b.Data[b.Index(x, y)]
}

func TestParseShape(t *testing.T) {
	for _, s := range Shapes() {
		got, ok := ParseShape(s.ID())
		if !ok || got != s {
			t.Errorf("ParseShape(%q) = %v, %v", s.ID(), got, ok)
		}
	}
	if s, ok := ParseShape("blob"); ok || s != Circle {
		t.Errorf("unknown id should fall back to circle, got %v, %v", s, ok)
	}
}

func TestRenderShapes(t *testing.T) {
	for _, s := range Shapes() {
		t.Run(s.ID(), func(t *testing.T) {
			m := Render(s, 64, 48)
			if m.Width != 64 || m.Height != 48 {
				t.Fatalf("size = %dx%d", m.Width, m.Height)
			}
			if v := red(m, 32, 24); v != 255 {
				t.Errorf("center = %d, want 255", v)
			}
			for _, c := range [][2]int{{0, 0}, {63, 0}, {0, 47}, {63, 47}} {
				if v := red(m, c[0], c[1]); v != 0 {
					t.Errorf("corner %v = %d, want 0", c, v)
				}
			}
			for i := 0; i < len(m.Data); i += 4 {
				if m.Data[i+3] != 255 || m.Data[i] != m.Data[i+1] || m.Data[i] != m.Data[i+2] {
					t.Fatal("mask must be opaque gray")
				}
			}
		})
	}
}

func TestCircleSize(t *testing.T) {
	// Radius is 0.45 * 100 = 45 around (50, 50).
	m := GenerateShapeMask("circle", 100, 100)
	if red(m, 50, 8) != 255 || red(m, 50, 3) != 0 {
		t.Error("circle top edge misplaced")
	}
	if red(m, 92, 50) != 255 || red(m, 97, 50) != 0 {
		t.Error("circle right edge misplaced")
	}
}

func TestUnknownShapeIsCircle(t *testing.T) {
	a := GenerateShapeMask("nope", 40, 40)
	b := GenerateShapeMask("circle", 40, 40)
	for i := range a.Data {
		if a.Data[i] != b.Data[i] {
			t.Fatal("unknown shape should render a circle")
		}
	}
}

func TestApplyShapeMaskMultiplies(t *testing.T) {
	src := lpimage.NewFilled(20, 20, color.RGBA{R: 10, G: 20, B: 30, A: 200})
	out := ApplyShapeMask(src, "circle", ShapeOptions{})

	center := out.At(10, 10)
	if center.A != 200 || center.R != 10 || center.G != 20 || center.B != 30 {
		t.Errorf("center = %+v, want color kept and alpha 200", center)
	}
	if a := out.At(0, 0).A; a != 0 {
		t.Errorf("corner alpha = %d, want 0", a)
	}

	inv := ApplyShapeMask(src, "circle", ShapeOptions{Invert: true})
	if inv.At(10, 10).A != 0 || inv.At(0, 0).A != 200 {
		t.Errorf("inverted: center %d corner %d", inv.At(10, 10).A, inv.At(0, 0).A)
	}

	// Applying twice composes: the border fringe only gets more transparent.
	twice := ApplyShapeMask(out, "circle", ShapeOptions{})
	for i := 3; i < len(out.Data); i += 4 {
		if twice.Data[i] > out.Data[i] {
			t.Fatal("masking must never raise alpha")
		}
	}
}

func TestApplyShapeMaskFeather(t *testing.T) {
	src := lpimage.NewFilled(60, 60, colorutil.Black)
	hard := ApplyShapeMask(src, "diamond", ShapeOptions{})
	soft := ApplyShapeMask(src, "diamond", ShapeOptions{Feather: 3})

	partial := func(b *lpimage.Buffer) int {
		n := 0
		for i := 3; i < len(b.Data); i += 4 {
			if b.Data[i] > 0 && b.Data[i] < 255 {
				n++
			}
		}
		return n
	}
	if partial(soft) <= partial(hard) {
		t.Errorf("feathering should widen the soft edge: %d vs %d", partial(soft), partial(hard))
	}
}

func TestApplyMaskWhiteAndBlack(t *testing.T) {
	src := lpimage.NewFilled(8, 6, color.RGBA{R: 1, G: 2, B: 3, A: 180})

	tests := []struct {
		name  string
		mask  *lpimage.Buffer
		alpha uint8
	}{
		{"white keeps alpha", lpimage.NewFilled(8, 6, colorutil.White), 180},
		{"black clears alpha", lpimage.NewFilled(8, 6, colorutil.Black), 0},
		{"gray halves", lpimage.NewFilled(8, 6, color.RGBA{R: 128, G: 128, B: 128, A: 255}), 90},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			out := ApplyMask(src, tc.mask, Placement{Scale: 1})
			for i := 0; i < len(out.Data); i += 4 {
				if out.Data[i+3] != tc.alpha {
					t.Fatalf("alpha = %d, want %d", out.Data[i+3], tc.alpha)
				}
				if out.Data[i] != 1 || out.Data[i+1] != 2 || out.Data[i+2] != 3 {
					t.Fatal("color must be untouched")
				}
			}
		})
	}
}

func TestApplyMaskPlacement(t *testing.T) {
	src := lpimage.NewFilled(10, 10, colorutil.Black)
	small := lpimage.NewFilled(4, 4, colorutil.White)

	// A 4x4 mask centred on a 10x10 image covers pixels 3..6.
	out := ApplyMask(src, small, Placement{})
	for y := 0; y < 10; y++ {
		for x := 0; x < 10; x++ {
			want := uint8(0)
			if x >= 3 && x <= 6 && y >= 3 && y <= 6 {
				want = 255
			}
			if a := out.At(x, y).A; a != want {
				t.Fatalf("(%d,%d) alpha = %d, want %d", x, y, a, want)
			}
		}
	}

	shifted := ApplyMask(src, small, Placement{X: 2, Scale: 1})
	if shifted.At(3, 5).A != 0 || shifted.At(8, 5).A != 255 {
		t.Error("offset should move the mask right")
	}

	scaled := ApplyMask(src, small, Placement{Scale: 2})
	if scaled.At(1, 5).A != 255 || scaled.At(0, 5).A != 0 {
		t.Error("scale 2 should cover pixels 1..8")
	}
}

func TestInvertMask(t *testing.T) {
	m := lpimage.NewFilled(2, 1, color.RGBA{R: 10, G: 20, B: 30, A: 40})
	got := InvertMask(m).At(0, 0)
	want := color.RGBA{R: 245, G: 235, B: 225, A: 40}
	if got != want {
		t.Errorf("got %+v, want %+v", got, want)
	}
}

func TestCreateMaskFromImage(t *testing.T) {
	src := lpimage.New(3, 1)
	src.Set(0, 0, color.RGBA{R: 255, A: 255})
	src.Set(1, 0, color.RGBA{A: 0})
	src.Set(2, 0, color.RGBA{A: 255})

	m := CreateMaskFromImage(src)
	want := []uint8{76, 255, 0}
	for x, w := range want {
		c := m.At(x, 0)
		if c.R != w || c.G != w || c.B != w || c.A != 255 {
			t.Errorf("pixel %d = %+v, want gray %d", x, c, w)
		}
	}
}

func TestLoadMask(t *testing.T) {
	path := filepath.Join(t.TempDir(), "mask.png")
	if err := lpimage.Save(lpimage.NewFilled(4, 4, colorutil.White), path); err != nil {
		t.Fatal(err)
	}
	m, err := LoadMask(path)
	if err != nil {
		t.Fatal(err)
	}
	if m.Width != 4 || red(m, 1, 1) != 255 {
		t.Errorf("unexpected mask %dx%d", m.Width, m.Height)
	}

	if _, err := LoadMask(filepath.Join(t.TempDir(), "missing.png")); err == nil {
		t.Error("expected error for a missing file")
	}
}
