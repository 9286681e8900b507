// Package geometry provides the oriented-box and polygon primitives that
// back the tracker metrics: vertex computation, Sutherland-Hodgman clipping,
// IoU, the too-far early-out, greedy NMS, and exclusive-area shares.
package geometry

import "math"

// Point is a 2-D coordinate.
type Point struct {
	X, Y float64
}

// Universal2DBox is an oriented bounding box in center/aspect/height form.
// Angle is nil for an axis-aligned box. Vertices are computed lazily and
// cached on first use (e.g. by IoU).
type Universal2DBox struct {
	XC, YC     float64
	Angle      *float64
	Aspect     float64
	Height     float64
	Confidence float64

	vertices []Point
}

// NewUniversal2DBox constructs an axis-aligned box.
func NewUniversal2DBox(xc, yc, aspect, height, confidence float64) *Universal2DBox {
	return &Universal2DBox{XC: xc, YC: yc, Aspect: aspect, Height: height, Confidence: confidence}
}

// NewOrientedUniversal2DBox constructs an oriented box with the given angle
// in radians.
func NewOrientedUniversal2DBox(xc, yc, angle, aspect, height, confidence float64) *Universal2DBox {
	a := angle
	return &Universal2DBox{XC: xc, YC: yc, Angle: &a, Aspect: aspect, Height: height, Confidence: confidence}
}

// Width returns aspect*height.
func (b *Universal2DBox) Width() float64 {
	return b.Aspect * b.Height
}

// Area returns aspect*height^2.
func (b *Universal2DBox) Area() float64 {
	return b.Aspect * b.Height * b.Height
}

// IsAxisAligned reports whether the box carries no rotation.
func (b *Universal2DBox) IsAxisAligned() bool {
	return b.Angle == nil
}

// invalidateVertices clears the lazily cached vertex list. Call after any
// in-place mutation of the box's geometry.
func (b *Universal2DBox) invalidateVertices() {
	b.vertices = nil
}

// Vertices returns the four corners of the box, computing and caching them
// on first call. For an axis-aligned box they are the plain corners; for an
// oriented box they are rotated around (XC, YC) by Angle.
func (b *Universal2DBox) Vertices() []Point {
	if b.vertices != nil {
		return b.vertices
	}
	hw, hh := b.Width()/2, b.Height/2
	corners := [4]Point{
		{-hw, -hh},
		{hw, -hh},
		{hw, hh},
		{-hw, hh},
	}
	out := make([]Point, 4)
	if b.Angle == nil || *b.Angle == 0 {
		for i, c := range corners {
			out[i] = Point{b.XC + c.X, b.YC + c.Y}
		}
	} else {
		sin, cos := math.Sincos(*b.Angle)
		for i, c := range corners {
			out[i] = Point{
				X: b.XC + c.X*cos - c.Y*sin,
				Y: b.YC + c.X*sin + c.Y*cos,
			}
		}
	}
	b.vertices = out
	return out
}

// BoundingBox is a top-left/width/height view of a box, convertible in both
// directions with Universal2DBox. It never carries rotation.
type BoundingBox struct {
	X, Y, W, H, Confidence float64
}

// NewBoundingBox constructs a BoundingBox.
func NewBoundingBox(x, y, w, h float64) BoundingBox {
	return BoundingBox{X: x, Y: y, W: w, H: h, Confidence: 1.0}
}

// ToUniversal2DBox converts to an axis-aligned Universal2DBox.
func (bb BoundingBox) ToUniversal2DBox() *Universal2DBox {
	aspect := 0.0
	if bb.H != 0 {
		aspect = bb.W / bb.H
	}
	conf := bb.Confidence
	if conf == 0 {
		conf = 1.0
	}
	return NewUniversal2DBox(bb.X+bb.W/2, bb.Y+bb.H/2, aspect, bb.H, conf)
}

// ToBoundingBox converts a Universal2DBox to its top-left-width-height view.
// Rotation, if any, is discarded (the caller is expected to only call this
// on axis-aligned boxes).
func (b *Universal2DBox) ToBoundingBox() BoundingBox {
	w := b.Width()
	return BoundingBox{
		X:          b.XC - w/2,
		Y:          b.YC - b.Height/2,
		W:          w,
		H:          b.Height,
		Confidence: b.Confidence,
	}
}
