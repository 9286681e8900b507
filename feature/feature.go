// Package feature implements the appearance-embedding vector used by the
// visual tracker metric: a lazily lane-batched sequence of single-precision
// floats, plus the distance functions the visual voting stage needs.
//
// No teacher package models appearance features directly; the lane-batched
// layout follows the "sequence of SIMD lanes of 8" data model, and the
// distance functions are grounded on the reference tracker's scipy.spatial
// .distance.cdist port (internal/scipy/distance.go), narrowed from a full
// pairwise matrix to the single-vector distances the metric calls for.
package feature

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// LaneWidth is the width of one SIMD-style lane.
const LaneWidth = 8

// Feature is a fixed-length appearance embedding, logically an ordered
// sequence of float32 values laid out in lanes of LaneWidth. The trailing
// lane is zero-padded when Len is not a multiple of LaneWidth; padding never
// participates in distance computation.
type Feature struct {
	lanes [][LaneWidth]float32
	length int
}

// New builds a Feature from a flat slice of values, splitting it into lanes
// and zero-padding the final lane as needed.
func New(values []float32) Feature {
	n := len(values)
	numLanes := (n + LaneWidth - 1) / LaneWidth
	lanes := make([][LaneWidth]float32, numLanes)
	for i, v := range values {
		lanes[i/LaneWidth][i%LaneWidth] = v
	}
	return Feature{lanes: lanes, length: n}
}

// Len returns the logical (unpadded) length of the feature vector.
func (f Feature) Len() int {
	return f.length
}

// At returns the value at logical index i.
func (f Feature) At(i int) float32 {
	if i < 0 || i >= f.length {
		panic(fmt.Sprintf("feature: index %d out of range [0,%d)", i, f.length))
	}
	return f.lanes[i/LaneWidth][i%LaneWidth]
}

// Values flattens the feature back into a plain slice (padding excluded).
func (f Feature) Values() []float32 {
	out := make([]float32, f.length)
	for i := range out {
		out[i] = f.At(i)
	}
	return out
}

func toFloat64(f Feature) []float64 {
	out := make([]float64, f.length)
	for i := 0; i < f.length; i++ {
		out[i] = float64(f.At(i))
	}
	return out
}

// EuclideanDistance returns the Euclidean distance between two features of
// equal length.
func EuclideanDistance(a, b Feature) float64 {
	if a.Len() != b.Len() {
		panic(fmt.Sprintf("feature: length mismatch %d vs %d", a.Len(), b.Len()))
	}
	av, bv := toFloat64(a), toFloat64(b)
	diff := make([]float64, len(av))
	floats.SubTo(diff, av, bv)
	return math.Sqrt(floats.Dot(diff, diff))
}

// CosineDistance returns 1 - cosine_similarity(a, b). A zero-norm vector is
// treated as maximally distant (1.0) from everything, matching the
// reference cdist port's convention.
func CosineDistance(a, b Feature) float64 {
	if a.Len() != b.Len() {
		panic(fmt.Sprintf("feature: length mismatch %d vs %d", a.Len(), b.Len()))
	}
	av, bv := toFloat64(a), toFloat64(b)
	normA := math.Sqrt(floats.Dot(av, av))
	normB := math.Sqrt(floats.Dot(bv, bv))
	if normA == 0 || normB == 0 {
		return 1.0
	}
	return 1.0 - floats.Dot(av, bv)/(normA*normB)
}
