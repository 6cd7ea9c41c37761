// Package mask cuts images to shapes by scaling their alpha channel with a
// grayscale opacity mask.
package mask

// Shape identifies one of the built-in mask outlines.
type Shape int

const (
	Circle Shape = iota
	Heart
	Star
	Hexagon
	Oval
	Diamond
	RoundedRect
	Triangle
)

// Shapes returns every built-in shape in display order.
func Shapes() []Shape {
	return []Shape{Circle, Heart, Star, Hexagon, Oval, Diamond, RoundedRect, Triangle}
}

// ID returns the identifier used in job files.
func (s Shape) ID() string {
	switch s {
	case Circle:
		return "circle"
	case Heart:
		return "heart"
	case Star:
		return "star"
	case Hexagon:
		return "hexagon"
	case Oval:
		return "oval"
	case Diamond:
		return "diamond"
	case RoundedRect:
		return "rounded-rect"
	case Triangle:
		return "triangle"
	default:
		return "unknown"
	}
}

// Name returns a human readable name.
func (s Shape) Name() string {
	switch s {
	case Circle:
		return "Circle"
	case Heart:
		return "Heart"
	case Star:
		return "Star"
	case Hexagon:
		return "Hexagon"
	case Oval:
		return "Oval"
	case Diamond:
		return "Diamond"
	case RoundedRect:
		return "Rounded Rectangle"
	case Triangle:
		return "Triangle"
	default:
		return "Unknown"
	}
}

func (s Shape) String() string { return s.ID() }

// ParseShape looks up a shape by id. Unknown ids return Circle and false.
func ParseShape(id string) (Shape, bool) {
	for _, s := range Shapes() {
		if s.ID() == id {
			return s, true
		}
	}
	return Circle, false
}
