package geometry

import "math"

// Intersection returns the area of overlap between two boxes. Axis-aligned
// pairs use the fast min/max rectangle formula; any oriented pair falls
// back to Sutherland-Hodgman clipping of a's vertices against b's.
func Intersection(a, b *Universal2DBox) float64 {
	if a.IsAxisAligned() && b.IsAxisAligned() {
		return axisAlignedIntersection(a, b)
	}
	clipped := ClipPolygon(a.Vertices(), b.Vertices())
	return PolygonArea(clipped)
}

func axisAlignedIntersection(a, b *Universal2DBox) float64 {
	aw, ah := a.Width(), a.Height
	bw, bh := b.Width(), b.Height

	aMinX, aMaxX := a.XC-aw/2, a.XC+aw/2
	aMinY, aMaxY := a.YC-ah/2, a.YC+ah/2
	bMinX, bMaxX := b.XC-bw/2, b.XC+bw/2
	bMinY, bMaxY := b.YC-bh/2, b.YC+bh/2

	xMin := math.Max(aMinX, bMinX)
	yMin := math.Max(aMinY, bMinY)
	xMax := math.Min(aMaxX, bMaxX)
	yMax := math.Min(aMaxY, bMaxY)

	if xMax <= xMin || yMax <= yMin {
		return 0
	}
	return (xMax - xMin) * (yMax - yMin)
}

// IoU returns intersection-over-union of a and b and whether the pair
// overlaps at all. The second value is false when the intersection area is
// zero, in which case callers should treat the pair as incomparable rather
// than trust the returned 0.
func IoU(a, b *Universal2DBox) (float64, bool) {
	inter := Intersection(a, b)
	if inter == 0 {
		return 0, false
	}
	union := a.Area() + b.Area() - inter
	if union <= 0 {
		return 0, false
	}
	return inter / union, true
}

// radius returns half the diagonal of the box, used by TooFar as a cheap
// bounding circle.
func radius(b *Universal2DBox) float64 {
	w, h := b.Width(), b.Height
	return 0.5 * math.Hypot(w, h)
}

// TooFar is a cheap early-out: if the distance between box centers exceeds
// the sum of their bounding-circle radii, the pair is declared incomparable
// without ever computing a polygon intersection.
func TooFar(a, b *Universal2DBox) bool {
	dist := math.Hypot(a.XC-b.XC, a.YC-b.YC)
	return dist > radius(a)+radius(b)
}
