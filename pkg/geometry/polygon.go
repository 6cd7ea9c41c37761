package geometry

import "math"

// SignedArea returns the shoelace area of a closed polygon. The sign is
// positive for clockwise vertex order in image coordinates (Y down).
// The closing edge is implied; a repeated first point is harmless.
func SignedArea(polygon []Point2D) float64 {
	n := len(polygon)
	if n < 3 {
		return 0
	}

	var sum float64
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += crossProduct(Point2D{}, polygon[i], polygon[j])
	}
	return sum / 2
}

// Area returns the absolute area of a closed polygon.
func Area(polygon []Point2D) float64 {
	return math.Abs(SignedArea(polygon))
}

// PerpendicularDistance calculates the perpendicular distance from point p to
// the line through a and b. When a and b coincide it returns the distance to a.
func PerpendicularDistance(p, a, b Point2D) float64 {
	dx := b.X - a.X
	dy := b.Y - a.Y

	if dx == 0 && dy == 0 {
		return p.Distance(a)
	}

	num := math.Abs(dy*p.X - dx*p.Y + b.X*a.Y - b.Y*a.X)
	den := math.Sqrt(dx*dx + dy*dy)
	return num / den
}

// crossProduct computes the cross product of vectors OA and OB.
func crossProduct(o, a, b Point2D) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}
