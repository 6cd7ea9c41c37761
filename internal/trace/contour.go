package trace

import (
	lpimage "laser-prep/internal/image"
	"laser-prep/pkg/geometry"
)

// ContourOptions configures contour tracing.
type ContourOptions struct {
	SimplifyEpsilon  float64 // Douglas-Peucker tolerance in pixels
	SmoothIterations int     // Chaikin corner-cutting passes, 0 = none
	MinPathLength    float64 // Paths shorter than this (pixels) are dropped
	OffsetPx         int     // Grow (>0) or shrink (<0) the shape before tracing
}

// DefaultContourOptions returns sensible defaults for engraving outlines.
func DefaultContourOptions() ContourOptions {
	return ContourOptions{
		SimplifyEpsilon:  1.0, // Sub-pixel wobble is invisible on the material
		SmoothIterations: 2,
		MinPathLength:    10, // Ignore specks
		OffsetPx:         0,
	}
}

// Path is a traced polyline in pixel coordinates. Closed paths do not repeat
// their first point.
type Path struct {
	Points []geometry.Point2D
	Closed bool
}

// Length returns the length of the path including the closing segment.
func (p Path) Length() float64 {
	n := geometry.PathLength(p.Points)
	if p.Closed && len(p.Points) > 1 {
		n += p.Points[len(p.Points)-1].Distance(p.Points[0])
	}
	return n
}

// Bounds returns the bounding box of the path.
func (p Path) Bounds() geometry.Rect {
	return geometry.BoundingBox(p.Points)
}

// Area returns the enclosed area of a closed path, 0 for open paths.
func (p Path) Area() float64 {
	if !p.Closed {
		return 0
	}
	return geometry.Area(p.Points)
}

// TraceContours extracts the outlines of every region darker than threshold
// as polylines. Boundaries are found with marching squares, joined into
// paths, filtered by length, simplified and optionally smoothed.
func TraceContours(src *lpimage.Buffer, threshold float64, opts ContourOptions) []Path {
	src.MustValidate()

	w, h := src.Width, src.Height
	on := offsetMask(src.Binarize(threshold), w, h, opts.OffsetPx)

	g := buildContourGraph(on, w, h)
	raw := g.trace()

	var paths []Path
	for _, r := range raw {
		if geometry.PathLength(r.Points) < opts.MinPathLength {
			continue
		}
		paths = append(paths, refinePath(r, opts))
	}
	return paths
}

// Marching squares cell edges.
const (
	edgeTop = iota
	edgeRight
	edgeBottom
	edgeLeft
)

// segmentTable lists the boundary segments for each 2x2 cell configuration.
// Bits are top-left=8, top-right=4, bottom-right=2, bottom-left=1. The saddle
// cases 5 and 10 always join the two "on" corners diagonally.
var segmentTable = [16][][2]int{
	0:  nil,
	1:  {{edgeLeft, edgeBottom}},
	2:  {{edgeBottom, edgeRight}},
	3:  {{edgeLeft, edgeRight}},
	4:  {{edgeTop, edgeRight}},
	5:  {{edgeLeft, edgeTop}, {edgeBottom, edgeRight}},
	6:  {{edgeTop, edgeBottom}},
	7:  {{edgeLeft, edgeTop}},
	8:  {{edgeLeft, edgeTop}},
	9:  {{edgeTop, edgeBottom}},
	10: {{edgeTop, edgeRight}, {edgeLeft, edgeBottom}},
	11: {{edgeTop, edgeRight}},
	12: {{edgeLeft, edgeRight}},
	13: {{edgeBottom, edgeRight}},
	14: {{edgeLeft, edgeBottom}},
	15: nil,
}

// contourGraph stores marching squares segments as an undirected graph over
// cell-edge midpoints. Nodes live on a doubled grid so that midpoints have
// integer coordinates; node id = y2*stride + x2. A midpoint is shared by at
// most two cells, so every node has at most two incident edges.
type contourGraph struct {
	stride int
	deg    []uint8
	adj    [][2]int32
	edges  [][2]int32
	used   []bool
}

func buildContourGraph(on []bool, w, h int) *contourGraph {
	g := &contourGraph{}
	if w < 2 || h < 2 {
		return g
	}

	g.stride = 2*w - 1
	nodes := g.stride * (2*h - 1)
	g.deg = make([]uint8, nodes)
	g.adj = make([][2]int32, nodes)

	for y := 0; y < h-1; y++ {
		for x := 0; x < w-1; x++ {
			p := y*w + x
			cfg := 0
			if on[p] {
				cfg |= 8
			}
			if on[p+1] {
				cfg |= 4
			}
			if on[p+w+1] {
				cfg |= 2
			}
			if on[p+w] {
				cfg |= 1
			}
			for _, seg := range segmentTable[cfg] {
				g.addEdge(g.midpoint(x, y, seg[0]), g.midpoint(x, y, seg[1]))
			}
		}
	}
	g.used = make([]bool, len(g.edges))
	return g
}

// midpoint returns the node id of a cell edge midpoint on the doubled grid.
func (g *contourGraph) midpoint(x, y, edge int) int32 {
	var x2, y2 int
	switch edge {
	case edgeTop:
		x2, y2 = 2*x+1, 2*y
	case edgeRight:
		x2, y2 = 2*x+2, 2*y+1
	case edgeBottom:
		x2, y2 = 2*x+1, 2*y+2
	default:
		x2, y2 = 2*x, 2*y+1
	}
	return int32(y2*g.stride + x2)
}

func (g *contourGraph) addEdge(a, b int32) {
	e := int32(len(g.edges))
	g.edges = append(g.edges, [2]int32{a, b})
	g.adj[a][g.deg[a]] = e
	g.deg[a]++
	g.adj[b][g.deg[b]] = e
	g.deg[b]++
}

// point converts a node id to pixel coordinates. Pixel (x, y) has its center
// at (x+0.5, y+0.5), so boundary points fall on pixel edges.
func (g *contourGraph) point(n int32) geometry.Point2D {
	x2, y2 := int(n)%g.stride, int(n)/g.stride
	return geometry.Point2D{X: float64(x2)/2 + 0.5, Y: float64(y2)/2 + 0.5}
}

// trace walks every edge exactly once. Open paths are collected first by
// starting at nodes whose degree is not two, so that they are never folded
// into a loop; the remaining unused edges then form closed loops.
func (g *contourGraph) trace() []Path {
	var paths []Path
	for n := range g.deg {
		if g.deg[n] == 0 || g.deg[n] == 2 {
			continue
		}
		for g.hasUnused(int32(n)) {
			paths = append(paths, g.walk(int32(n)))
		}
	}
	for e := range g.edges {
		if !g.used[e] {
			paths = append(paths, g.walk(g.edges[e][0]))
		}
	}
	return paths
}

func (g *contourGraph) hasUnused(n int32) bool {
	for k := 0; k < int(g.deg[n]); k++ {
		if !g.used[g.adj[n][k]] {
			return true
		}
	}
	return false
}

// walk follows unused edges from start until it gets stuck or returns to
// start. A closed result repeats start as its last point.
func (g *contourGraph) walk(start int32) Path {
	pts := []geometry.Point2D{g.point(start)}
	cur, prev := start, int32(-1)

	for {
		next := int32(-1)
		for k := 0; k < int(g.deg[cur]); k++ {
			e := g.adj[cur][k]
			if !g.used[e] && e != prev {
				next = e
				break
			}
		}
		if next < 0 {
			return Path{Points: pts}
		}

		g.used[next] = true
		other := g.edges[next][0]
		if other == cur {
			other = g.edges[next][1]
		}
		pts = append(pts, g.point(other))
		prev, cur = next, other

		if cur == start {
			return Path{Points: pts, Closed: true}
		}
	}
}
