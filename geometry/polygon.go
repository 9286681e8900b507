package geometry

import "math"

// cross returns the z-component of the cross product (o->a) x (o->b).
func cross(o, a, b Point) float64 {
	return (a.X-o.X)*(b.Y-o.Y) - (a.Y-o.Y)*(b.X-o.X)
}

// isInside reports whether point p lies on the inside half-plane of the
// directed clip edge a->b, using the counter-clockwise convention. A zero
// cross product (the point lies exactly on the edge) counts as inside.
func isInside(a, b, p Point) bool {
	return cross(a, b, p) >= 0
}

// lineIntersection returns the intersection of segment (s1,s2) with the
// infinite line through the clip edge (a,b).
func lineIntersection(a, b, s1, s2 Point) Point {
	a1 := b.Y - a.Y
	b1 := a.X - b.X
	c1 := a1*a.X + b1*a.Y

	a2 := s2.Y - s1.Y
	b2 := s1.X - s2.X
	c2 := a2*s1.X + b2*s1.Y

	det := a1*b2 - a2*b1
	if det == 0 {
		// Parallel lines; degenerate case, return the subject endpoint.
		return s2
	}
	return Point{
		X: (b2*c1 - b1*c2) / det,
		Y: (a1*c2 - a2*c1) / det,
	}
}

// ClipPolygon clips the subject polygon against the convex clip polygon
// using the Sutherland-Hodgman algorithm. The clip polygon's vertices must
// be in a consistent winding order (CCW, matching Vertices()). Returns the
// (possibly empty) clipped polygon.
func ClipPolygon(subject, clip []Point) []Point {
	output := subject
	if len(output) == 0 || len(clip) == 0 {
		return nil
	}

	clipLen := len(clip)
	for i := 0; i < clipLen; i++ {
		if len(output) == 0 {
			break
		}
		a := clip[i]
		b := clip[(i+1)%clipLen]

		input := output
		output = output[:0:0]

		n := len(input)
		for j := 0; j < n; j++ {
			curr := input[j]
			prev := input[(j-1+n)%n]

			currInside := isInside(a, b, curr)
			prevInside := isInside(a, b, prev)

			if currInside {
				if !prevInside {
					output = append(output, lineIntersection(a, b, prev, curr))
				}
				output = append(output, curr)
			} else if prevInside {
				output = append(output, lineIntersection(a, b, prev, curr))
			}
		}
	}
	return output
}

// PolygonArea computes the unsigned area of a (possibly non-convex, simple)
// polygon via the shoelace formula.
func PolygonArea(poly []Point) float64 {
	if len(poly) < 3 {
		return 0
	}
	var sum float64
	n := len(poly)
	for i := 0; i < n; i++ {
		j := (i + 1) % n
		sum += poly[i].X*poly[j].Y - poly[j].X*poly[i].Y
	}
	return math.Abs(sum) / 2
}
