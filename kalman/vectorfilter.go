package kalman

import "fmt"

// VectorFilter applies a PointFilter independently to each point of a fixed-
// length sequence, e.g. a set of tracked keypoints. Lengths of state and
// observation sequences must always agree; Update and Distance panic
// otherwise, since a length mismatch indicates a caller bug rather than a
// recoverable runtime condition.
type VectorFilter struct {
	point *PointFilter
}

// NewVectorFilter builds a vector-of-points filter backed by the given
// per-point filter.
func NewVectorFilter(point *PointFilter) *VectorFilter {
	return &VectorFilter{point: point}
}

// Initiate seeds one state per input point.
func (f *VectorFilter) Initiate(points [][2]float64) []State {
	states := make([]State, len(points))
	for i, p := range points {
		states[i] = f.point.Initiate(p[0], p[1])
	}
	return states
}

// Predict advances every state in the sequence by one step.
func (f *VectorFilter) Predict(states []State) []State {
	out := make([]State, len(states))
	for i, s := range states {
		out[i] = f.point.Predict(s)
	}
	return out
}

// Update incorporates one measurement per state.
func (f *VectorFilter) Update(states []State, points [][2]float64) []State {
	if len(states) != len(points) {
		panic(fmt.Sprintf("kalman: vector filter length mismatch: %d states, %d points", len(states), len(points)))
	}
	out := make([]State, len(states))
	for i, s := range states {
		out[i] = f.point.Update(s, points[i][0], points[i][1])
	}
	return out
}

// Distance sums the per-point squared Mahalanobis distances.
func (f *VectorFilter) Distance(states []State, points [][2]float64) float64 {
	if len(states) != len(points) {
		panic(fmt.Sprintf("kalman: vector filter length mismatch: %d states, %d points", len(states), len(points)))
	}
	var total float64
	for i, s := range states {
		total += f.point.Distance(s, points[i][0], points[i][1])
	}
	return total
}
