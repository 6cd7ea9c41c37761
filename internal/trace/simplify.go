package trace

import (
	"laser-prep/pkg/geometry"
)

// simplifyPath reduces vertex count with the Douglas-Peucker algorithm.
func simplifyPath(path []geometry.Point2D, epsilon float64) []geometry.Point2D {
	if len(path) <= 2 {
		return path
	}

	// Find point with maximum distance from line between first and last points
	dmax := 0.0
	index := 0
	end := len(path) - 1

	for i := 1; i < end; i++ {
		d := geometry.PerpendicularDistance(path[i], path[0], path[end])
		if d > dmax {
			dmax = d
			index = i
		}
	}

	if dmax > epsilon {
		left := simplifyPath(path[:index+1], epsilon)
		right := simplifyPath(path[index:], epsilon)

		// Avoid duplicating the split point
		result := make([]geometry.Point2D, 0, len(left)+len(right)-1)
		result = append(result, left[:len(left)-1]...)
		result = append(result, right...)
		return result
	}

	return []geometry.Point2D{path[0], path[end]}
}

// chaikin performs one pass of Chaikin corner cutting. Open paths keep their
// endpoints; closed rings (without a repeated last point) wrap around.
func chaikin(path []geometry.Point2D, closed bool) []geometry.Point2D {
	n := len(path)
	if n < 3 {
		return path
	}

	segs := n - 1
	if closed {
		segs = n
	}

	out := make([]geometry.Point2D, 0, 2*segs+2)
	if !closed {
		out = append(out, path[0])
	}
	for i := 0; i < segs; i++ {
		a, b := path[i], path[(i+1)%n]
		out = append(out, a.Lerp(b, 0.25), a.Lerp(b, 0.75))
	}
	if !closed {
		out = append(out, path[n-1])
	}
	return out
}

// simplifyRing runs Douglas-Peucker on a closed ring stored without its
// repeated start point. The ring is split at two extreme vertices, the one
// farthest from the centroid and the one farthest from that, so the result
// does not depend on where tracing began and both split points are corners.
func simplifyRing(ring []geometry.Point2D, epsilon float64) []geometry.Point2D {
	n := len(ring)
	if n < 4 {
		return ring
	}

	var c geometry.Point2D
	for _, p := range ring {
		c.X += p.X
		c.Y += p.Y
	}
	c.X /= float64(n)
	c.Y /= float64(n)

	a := farthest(ring, c)
	b := farthest(ring, ring[a])
	if ring[a] == ring[b] {
		return ring
	}

	first := arc(ring, a, b)
	second := arc(ring, b, a)
	left := simplifyPath(first, epsilon)
	right := simplifyPath(second, epsilon)

	out := make([]geometry.Point2D, 0, len(left)+len(right)-2)
	out = append(out, left[:len(left)-1]...)
	out = append(out, right[:len(right)-1]...)
	return out
}

// farthest returns the index of the first ring vertex farthest from p.
func farthest(ring []geometry.Point2D, p geometry.Point2D) int {
	best, dmax := 0, -1.0
	for i, q := range ring {
		dx, dy := q.X-p.X, q.Y-p.Y
		if d := dx*dx + dy*dy; d > dmax {
			best, dmax = i, d
		}
	}
	return best
}

// arc copies the ring vertices from index i to j inclusive, wrapping around.
func arc(ring []geometry.Point2D, i, j int) []geometry.Point2D {
	n := len(ring)
	out := make([]geometry.Point2D, 0, (j-i+n)%n+1)
	for k := i; ; k = (k + 1) % n {
		out = append(out, ring[k])
		if k == j {
			return out
		}
	}
}

// refinePath simplifies and smooths a raw traced path. Closed paths arrive
// with their first point repeated at the end and leave without it. After
// smoothing the path is simplified again at a quarter of the tolerance, which
// trims the vertices Chaikin adds without flattening the rounded corners.
func refinePath(r Path, opts ContourOptions) Path {
	resimplify := opts.SimplifyEpsilon / 4

	if !r.Closed {
		pts := simplifyPath(r.Points, opts.SimplifyEpsilon)
		for i := 0; i < opts.SmoothIterations; i++ {
			pts = chaikin(pts, false)
		}
		if opts.SmoothIterations > 0 {
			pts = simplifyPath(pts, resimplify)
		}
		return Path{Points: pts}
	}

	ring := r.Points
	if len(ring) > 1 && ring[0] == ring[len(ring)-1] {
		ring = ring[:len(ring)-1]
	}
	ring = simplifyRing(ring, opts.SimplifyEpsilon)
	for i := 0; i < opts.SmoothIterations; i++ {
		ring = chaikin(ring, true)
	}
	if opts.SmoothIterations > 0 {
		ring = simplifyRing(ring, resimplify)
	}
	return Path{Points: ring, Closed: true}
}
