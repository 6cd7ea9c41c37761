package mask

import (
	"image"
	"image/draw"
	"math"

	lpimage "laser-prep/internal/image"
	"laser-prep/pkg/geometry"

	"golang.org/x/image/vector"
)

// shapeScale is the nominal shape size as a fraction of the smaller side.
const shapeScale = 0.45

// circleSegments is the polygon resolution used for circles and ovals.
const circleSegments = 128

// kappa places cubic control points for a quarter circle.
const kappa = 0.5522847498

// GenerateShapeMask renders the shape named id centred on a w x h canvas,
// white on an opaque black field. Unknown ids render a circle.
func GenerateShapeMask(id string, w, h int) *lpimage.Buffer {
	s, _ := ParseShape(id)
	return Render(s, w, h)
}

// Render draws shape s centred on a w x h canvas with anti-aliased edges.
func Render(s Shape, w, h int) *lpimage.Buffer {
	out := lpimage.New(w, h)
	if w <= 0 || h <= 0 {
		return out
	}

	r := vector.NewRasterizer(w, h)
	r.DrawOp = draw.Src
	outline(r, s, float64(w)/2, float64(h)/2, shapeScale*float64(min(w, h)))

	cov := image.NewAlpha(image.Rect(0, 0, w, h))
	r.Draw(cov, cov.Bounds(), image.Opaque, image.Point{})

	for p, a := range cov.Pix {
		out.SetGray(p, a)
		out.Data[p*4+3] = 255
	}
	return out
}

// outline adds the path of shape s with nominal radius size to r.
func outline(r *vector.Rasterizer, s Shape, cx, cy, size float64) {
	switch s {
	case Heart:
		heart(r, cx, cy, size)
	case Star:
		polygon(r, geometry.GenerateStarPoints(cx, cy, size, size*0.4, 5, -math.Pi/2))
	case Hexagon:
		polygon(r, geometry.GenerateCirclePoints(cx, cy, size, 6, 0))
	case Oval:
		pts := geometry.GenerateCirclePoints(0, 0, size, circleSegments, 0)
		for i := range pts {
			pts[i] = geometry.Point2D{X: cx + pts[i].X*0.75, Y: cy + pts[i].Y}
		}
		polygon(r, pts)
	case Diamond:
		polygon(r, []geometry.Point2D{
			{X: cx, Y: cy - size},
			{X: cx + size*0.75, Y: cy},
			{X: cx, Y: cy + size},
			{X: cx - size*0.75, Y: cy},
		})
	case RoundedRect:
		roundedRect(r, cx, cy, size, size*0.2)
	case Triangle:
		polygon(r, geometry.GenerateCirclePoints(cx, cy, size, 3, -math.Pi/2))
	default:
		polygon(r, geometry.GenerateCirclePoints(cx, cy, size, circleSegments, 0))
	}
}

func polygon(r *vector.Rasterizer, pts []geometry.Point2D) {
	if len(pts) < 3 {
		return
	}
	r.MoveTo(float32(pts[0].X), float32(pts[0].Y))
	for _, p := range pts[1:] {
		r.LineTo(float32(p.X), float32(p.Y))
	}
	r.ClosePath()
}

// heart draws four cubic lobes scaled from a unit heart whose point sits at
// the bottom of the nominal box.
func heart(r *vector.Rasterizer, cx, cy, size float64) {
	pt := func(x, y float64) (float32, float32) {
		return float32(cx + x*size), float32(cy + y*size)
	}
	cubic := func(x1, y1, x2, y2, x3, y3 float64) {
		ax, ay := pt(x1, y1)
		bx, by := pt(x2, y2)
		tx, ty := pt(x3, y3)
		r.CubeTo(ax, ay, bx, by, tx, ty)
	}

	r.MoveTo(pt(0, -0.5))
	cubic(0, -0.9, -1, -0.9, -1, -0.3)
	cubic(-1, 0.2, -0.4, 0.5, 0, 1)
	cubic(0.4, 0.5, 1, 0.2, 1, -0.3)
	cubic(1, -0.9, 0, -0.9, 0, -0.5)
	r.ClosePath()
}

// roundedRect draws a square of half side size with corner radius rad.
func roundedRect(r *vector.Rasterizer, cx, cy, size, rad float64) {
	x0, y0 := float32(cx-size), float32(cy-size)
	x1, y1 := float32(cx+size), float32(cy+size)
	rr := float32(rad)
	k := float32(rad * (1 - kappa))

	r.MoveTo(x0+rr, y0)
	r.LineTo(x1-rr, y0)
	r.CubeTo(x1-k, y0, x1, y0+k, x1, y0+rr)
	r.LineTo(x1, y1-rr)
	r.CubeTo(x1, y1-k, x1-k, y1, x1-rr, y1)
	r.LineTo(x0+rr, y1)
	r.CubeTo(x0+k, y1, x0, y1-k, x0, y1-rr)
	r.LineTo(x0, y0+rr)
	r.CubeTo(x0, y0+k, x0+k, y0, x0+rr, y0)
	r.ClosePath()
}
