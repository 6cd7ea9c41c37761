package trace

import (
	"math"
	"strings"
	"testing"

	lpimage "laser-prep/internal/image"
	"laser-prep/pkg/colorutil"
	"laser-prep/pkg/geometry"
)

// binaryImage renders a black-on-white image where ink(x, y) is black.
func binaryImage(w, h int, ink func(x, y int) bool) *lpimage.Buffer {
	b := lpimage.NewFilled(w, h, colorutil.White)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if ink(x, y) {
				b.SetGray(b.Index(x, y)/4, 0)
			}
		}
	}
	return b
}

func square(x0, y0, size int) func(x, y int) bool {
	return func(x, y int) bool {
		return x >= x0 && x < x0+size && y >= y0 && y < y0+size
	}
}

func isBlack(b *lpimage.Buffer, x, y int) bool {
	return b.Data[b.Index(x, y)] == 0
}

func TestExtractContours(t *testing.T) {
	src := binaryImage(8, 8, square(2, 2, 4))
	out := ExtractContours(src, 128)

	tests := []struct {
		x, y int
		edge bool
	}{
		{2, 2, true},
		{5, 3, true},
		{3, 5, true},
		{3, 3, false}, // interior
		{4, 4, false},
		{0, 0, false}, // background
		{1, 3, false},
	}
	for _, tc := range tests {
		if got := isBlack(out, tc.x, tc.y); got != tc.edge {
			t.Errorf("pixel (%d,%d): edge=%v, want %v", tc.x, tc.y, got, tc.edge)
		}
	}
	for p := 3; p < len(out.Data); p += 4 {
		if out.Data[p] != 255 {
			t.Fatal("output must be opaque")
		}
	}
}

func TestExtractContoursIgnoresBorder(t *testing.T) {
	src := binaryImage(4, 4, func(x, y int) bool { return true })
	out := ExtractContours(src, 128)
	for y := 0; y < 4; y++ {
		for x := 0; x < 4; x++ {
			if isBlack(out, x, y) {
				t.Fatalf("pixel (%d,%d) should not be an edge", x, y)
			}
		}
	}
}

func TestCannyBlankImage(t *testing.T) {
	for _, c := range []struct{ low, high float64 }{{50, 150}, {0, 0}} {
		out := CannyEdgeDetection(lpimage.NewFilled(16, 16, colorutil.White), c.low, c.high)
		for y := 0; y < 16; y++ {
			for x := 0; x < 16; x++ {
				if isBlack(out, x, y) {
					t.Fatalf("thresholds %v: unexpected edge at (%d,%d)", c, x, y)
				}
			}
		}
	}
}

func TestCannyVerticalStep(t *testing.T) {
	src := binaryImage(10, 10, func(x, y int) bool { return x < 5 })
	out := CannyEdgeDetection(src, 50, 150)

	for y := 1; y < 9; y++ {
		if !isBlack(out, 4, y) || !isBlack(out, 5, y) {
			t.Errorf("row %d: expected edge at columns 4 and 5", y)
		}
		for _, x := range []int{1, 2, 3, 6, 7, 8} {
			if isBlack(out, x, y) {
				t.Errorf("row %d: unexpected edge at column %d", y, x)
			}
		}
	}
	for x := 0; x < 10; x++ {
		if isBlack(out, x, 0) {
			t.Errorf("border pixel (%d,0) marked as edge", x)
		}
	}
}

func TestCannyTinyImage(t *testing.T) {
	out := CannyEdgeDetection(binaryImage(2, 2, func(x, y int) bool { return x == 0 }), 10, 20)
	for p := 0; p < 4; p++ {
		if out.Data[p*4] != 255 {
			t.Fatal("images smaller than 3x3 have no edges")
		}
	}
}

func TestTraceSquare(t *testing.T) {
	src := binaryImage(8, 8, square(2, 2, 4))
	opts := ContourOptions{}

	paths := TraceContours(src, 128, opts)
	if len(paths) != 1 {
		t.Fatalf("expected 1 path, got %d", len(paths))
	}
	p := paths[0]
	if !p.Closed {
		t.Fatal("square outline should be closed")
	}

	want := []geometry.Point2D{
		{X: 2, Y: 2.5}, {X: 2.5, Y: 2}, {X: 5.5, Y: 2}, {X: 6, Y: 2.5},
		{X: 6, Y: 5.5}, {X: 5.5, Y: 6}, {X: 2.5, Y: 6}, {X: 2, Y: 5.5},
	}
	if len(p.Points) != len(want) {
		t.Fatalf("expected %d vertices, got %d: %v", len(want), len(p.Points), p.Points)
	}
	for i := range want {
		if p.Points[i] != want[i] {
			t.Errorf("vertex %d = %v, want %v", i, p.Points[i], want[i])
		}
	}

	for _, c := range []geometry.Point2D{{X: 2, Y: 2}, {X: 6, Y: 2}, {X: 6, Y: 6}, {X: 2, Y: 6}} {
		near := false
		for _, v := range p.Points {
			if v.Distance(c) <= 0.5+1e-9 {
				near = true
			}
		}
		if !near {
			t.Errorf("no vertex within half a pixel of corner %v", c)
		}
	}

	if got := p.Area(); math.Abs(got-15.5) > 1e-9 {
		t.Errorf("area = %v, want 15.5", got)
	}
	if got, want := p.Length(), 12+4*math.Sqrt(0.5); math.Abs(got-want) > 1e-9 {
		t.Errorf("length = %v, want %v", got, want)
	}
}

func TestTraceSquareCorners(t *testing.T) {
	tests := []struct {
		name     string
		size     int
		minSide  float64
		maxShift float64
	}{
		{"4px", 4, 3, 0.25},
		{"12px", 12, 11, 0.25},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			dim := tc.size + 4
			src := binaryImage(dim, dim, square(2, 2, tc.size))
			paths := TraceContours(src, 128, DefaultContourOptions())
			if len(paths) != 1 || !paths[0].Closed {
				t.Fatalf("expected one closed path, got %+v", paths)
			}

			hi := float64(2 + tc.size)
			for _, pt := range paths[0].Points {
				if pt.X < 2-1e-9 || pt.X > hi+1e-9 || pt.Y < 2-1e-9 || pt.Y > hi+1e-9 {
					t.Errorf("point %v outside the square", pt)
				}
			}
			if len(paths[0].Points) < 4 {
				t.Errorf("outline reduced to %d points", len(paths[0].Points))
			}

			b := paths[0].Bounds()
			if b.Width < tc.minSide || b.Height < tc.minSide {
				t.Errorf("smoothed outline collapsed: %+v", b)
			}
			mid := 2 + float64(tc.size)/2
			if c := b.Center(); math.Abs(c.X-mid) > tc.maxShift || math.Abs(c.Y-mid) > tc.maxShift {
				t.Errorf("outline center %v, want near (%v,%v)", c, mid, mid)
			}
		})
	}
}

func TestTraceOpenPathAtBorder(t *testing.T) {
	src := binaryImage(6, 6, func(x, y int) bool { return x < 3 })

	if paths := TraceContours(src, 128, DefaultContourOptions()); len(paths) != 0 {
		t.Fatalf("short path should be filtered, got %d paths", len(paths))
	}

	paths := TraceContours(src, 128, ContourOptions{SimplifyEpsilon: 1})
	if len(paths) != 1 {
		t.Fatalf("expected 1 path, got %d", len(paths))
	}
	p := paths[0]
	if p.Closed {
		t.Error("boundary touching the image edge should be open")
	}
	want := []geometry.Point2D{{X: 3, Y: 0.5}, {X: 3, Y: 5.5}}
	if len(p.Points) != 2 || p.Points[0] != want[0] || p.Points[1] != want[1] {
		t.Errorf("points = %v, want %v", p.Points, want)
	}
}

func TestTraceSaddle(t *testing.T) {
	src := binaryImage(2, 2, func(x, y int) bool { return x == y })
	paths := TraceContours(src, 128, ContourOptions{})
	if len(paths) != 2 {
		t.Fatalf("expected 2 paths, got %d", len(paths))
	}

	// The two dark corners stay connected, so each segment cuts off a light one.
	want := [][2]geometry.Point2D{
		{{X: 1, Y: 0.5}, {X: 1.5, Y: 1}},
		{{X: 0.5, Y: 1}, {X: 1, Y: 1.5}},
	}
	for i, p := range paths {
		if p.Closed || len(p.Points) != 2 {
			t.Fatalf("path %d: %+v", i, p)
		}
		if p.Points[0] != want[i][0] || p.Points[1] != want[i][1] {
			t.Errorf("path %d = %v, want %v", i, p.Points, want[i])
		}
	}
}

func TestTraceEmpty(t *testing.T) {
	tests := []struct {
		name string
		src  *lpimage.Buffer
	}{
		{"white", lpimage.NewFilled(10, 10, colorutil.White)},
		{"black", binaryImage(10, 10, func(x, y int) bool { return true })},
		{"single row", binaryImage(10, 1, func(x, y int) bool { return x < 5 })},
		{"zero size", lpimage.New(0, 0)},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if paths := TraceContours(tc.src, 128, ContourOptions{}); len(paths) != 0 {
				t.Fatalf("expected no paths, got %d", len(paths))
			}
		})
	}
}

func TestTraceOffset(t *testing.T) {
	src := binaryImage(12, 12, square(4, 4, 4))

	grown := TraceContours(src, 128, ContourOptions{SimplifyEpsilon: 0.1, OffsetPx: 1})
	if len(grown) != 1 {
		t.Fatalf("expected 1 grown path, got %d", len(grown))
	}
	if b := grown[0].Bounds(); b.X != 3 || b.Y != 3 || b.Width != 6 || b.Height != 6 {
		t.Errorf("grown bounds = %+v", b)
	}

	shrunk := TraceContours(src, 128, ContourOptions{SimplifyEpsilon: 0.1, OffsetPx: -1})
	if len(shrunk) != 1 {
		t.Fatalf("expected 1 shrunk path, got %d", len(shrunk))
	}
	if b := shrunk[0].Bounds(); b.X != 5 || b.Width != 2 {
		t.Errorf("shrunk bounds = %+v", b)
	}

	if gone := TraceContours(src, 128, ContourOptions{OffsetPx: -2}); len(gone) != 0 {
		t.Errorf("eroding by the half width should remove the square, got %d paths", len(gone))
	}
}

func TestSimplifyPath(t *testing.T) {
	line := []geometry.Point2D{{X: 0, Y: 0}, {X: 1, Y: 0.1}, {X: 2, Y: 0}, {X: 3, Y: 0}}
	if got := simplifyPath(line, 0.5); len(got) != 2 {
		t.Errorf("near-straight line should reduce to endpoints, got %v", got)
	}
	if got := simplifyPath(line, 0.05); len(got) != 3 {
		t.Errorf("expected the bump to survive, got %v", got)
	}
}

func TestChaikin(t *testing.T) {
	open := []geometry.Point2D{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}}
	got := chaikin(open, false)
	if got[0] != open[0] || got[len(got)-1] != open[2] {
		t.Errorf("open path endpoints moved: %v", got)
	}
	for _, pt := range got {
		if pt == open[1] {
			t.Error("corner should be cut")
		}
	}

	ring := []geometry.Point2D{{X: 0, Y: 0}, {X: 4, Y: 0}, {X: 4, Y: 4}, {X: 0, Y: 4}}
	if got := chaikin(ring, true); len(got) != 8 {
		t.Errorf("closed ring: got %d points, want 8", len(got))
	}
}

func TestSimplifyRingIgnoresStart(t *testing.T) {
	src := binaryImage(8, 8, square(2, 2, 4))
	raw := buildContourGraph(src.Binarize(128), 8, 8).trace()
	if len(raw) != 1 || !raw[0].Closed {
		t.Fatalf("expected one closed raw ring, got %+v", raw)
	}
	ring := raw[0].Points[:len(raw[0].Points)-1]

	for k := range ring {
		rotated := append(append([]geometry.Point2D{}, ring[k:]...), ring[:k]...)
		got := simplifyRing(rotated, 1)
		if len(got) != 4 {
			t.Errorf("start %d: got %d vertices, want 4: %v", k, len(got), got)
			continue
		}
		if b := geometry.BoundingBox(got); b.Width != 4 || b.Height != 4 {
			t.Errorf("start %d: bounds %+v, want the full 4x4 square", k, b)
		}
	}

	for k := range ring {
		rotated := append(append([]geometry.Point2D{}, ring[k:]...), ring[:k]...)
		if got := simplifyRing(rotated, 0); len(got) != 8 {
			t.Errorf("start %d: exact outline has %d vertices, want 8", k, len(got))
		}
	}
}

func TestContourToSVG(t *testing.T) {
	src := binaryImage(8, 8, square(2, 2, 4))
	svg := ContourToSVG(src, 128, ContourOptions{SimplifyEpsilon: 0.1})

	for _, want := range []string{
		`<svg xmlns="http://www.w3.org/2000/svg" width="8" height="8" viewBox="0 0 8 8">`,
		`d="M2 2.5 L2.5 2 L5.5 2 L6 2.5 L6 5.5 L5.5 6 L2.5 6 L2 5.5 Z"`,
		`fill="none" stroke="black"`,
		`</svg>`,
	} {
		if !strings.Contains(svg, want) {
			t.Errorf("svg missing %q:\n%s", want, svg)
		}
	}
}

func TestContourToSVGEmpty(t *testing.T) {
	svg := ContourToSVG(lpimage.NewFilled(5, 3, colorutil.White), 128, DefaultContourOptions())
	if !strings.Contains(svg, `width="5" height="3"`) || !strings.Contains(svg, `d=""`) {
		t.Errorf("unexpected svg:\n%s", svg)
	}
}

func TestFormatCoord(t *testing.T) {
	tests := map[float64]string{
		0:        "0",
		-0.001:   "0",
		1.5:      "1.5",
		2:        "2",
		3.14159:  "3.14",
		-1.005:   "-1",
		12.346:   "12.35",
		100.1000: "100.1",
	}
	for in, want := range tests {
		if got := formatCoord(in); got != want {
			t.Errorf("formatCoord(%v) = %q, want %q", in, got, want)
		}
	}
}

func TestMorphology(t *testing.T) {
	dot := binaryImage(5, 5, func(x, y int) bool { return x == 2 && y == 2 })

	grown := DilateContour(dot, 1)
	for y := 0; y < 5; y++ {
		for x := 0; x < 5; x++ {
			want := x >= 1 && x <= 3 && y >= 1 && y <= 3
			if isBlack(grown, x, y) != want {
				t.Errorf("dilate (%d,%d): got %v, want %v", x, y, !want, want)
			}
		}
	}

	if back := ErodeContour(grown, 1); !isBlack(back, 2, 2) || isBlack(back, 1, 1) {
		t.Error("erode should undo dilate for a 3x3 block")
	}
	if gone := ErodeContour(dot, 1); isBlack(gone, 2, 2) {
		t.Error("single pixel should be eroded away")
	}
	if same := DilateContour(dot, 0); !isBlack(same, 2, 2) || isBlack(same, 1, 2) {
		t.Error("radius 0 should copy the input")
	}
}

func TestOtsuThreshold(t *testing.T) {
	twoLevel := lpimage.FromGray(4, 2, []float64{50, 50, 50, 50, 200, 200, 200, 200})
	if got := OtsuThreshold(twoLevel); got <= 50 || got > 200 {
		t.Errorf("two-level threshold = %v, want in (50, 200]", got)
	}

	uniform := lpimage.NewFilled(3, 3, colorutil.White)
	if got := OtsuThreshold(uniform); got != 128 {
		t.Errorf("uniform threshold = %v, want 128", got)
	}

	src := binaryImage(8, 8, square(2, 2, 4))
	auto := TraceContours(src, OtsuThreshold(src), ContourOptions{})
	fixed := TraceContours(src, 128, ContourOptions{})
	if len(auto) != 1 || len(fixed) != 1 || auto[0].Area() != fixed[0].Area() {
		t.Errorf("auto threshold traced %d paths, want the same single square as 128", len(auto))
	}
}
