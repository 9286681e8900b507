// Package kalman implements the constant-velocity Kalman filter family used
// by the tracker metrics: a 5-dimensional oriented-box filter, a
// 2-dimensional point filter, and an element-wise vector-of-points filter.
//
// This generalizes the full-matrix filter the reference tracker ported from
// filterpy to the dimension- and
// height-scaled-noise variant the tracking metrics require, and replaces
// its manual matrix inverse with a Cholesky-factored solve for both the
// Kalman gain and the Mahalanobis gating distance.
package kalman

import (
	"gonum.org/v1/gonum/mat"

	"github.com/kestrel-vision/trackcore/geometry"
)

const (
	boxDim    = 5
	boxDimX2  = boxDim * 2
	aspectIdx = 3
	heightIdx = 4
)

// DefaultPositionWeight and DefaultVelocityWeight are the filter's default
// noise scaling weights.
const (
	DefaultPositionWeight = 1.0 / 20.0
	DefaultVelocityWeight = 1.0 / 160.0
)

// BoxFilter is a constant-velocity Kalman filter over a 10-dimensional state
// (xc, yc, angle, aspect, height, plus their velocities), tracking an
// oriented Universal2DBox. Process and measurement noise scale with the
// box's height, except for the aspect component which uses a fixed small
// constant regardless of size.
type BoxFilter struct {
	motion       *mat.Dense // 10x10
	update       *mat.Dense // 5x10
	posWeight    float64
	velWeight    float64
}

// NewBoxFilter constructs a BoxFilter with the given position/velocity noise
// weights.
func NewBoxFilter(posWeight, velWeight float64) *BoxFilter {
	motion := mat.NewDense(boxDimX2, boxDimX2, nil)
	for i := 0; i < boxDimX2; i++ {
		motion.Set(i, i, 1)
	}
	for i := 0; i < boxDim; i++ {
		motion.Set(i, boxDim+i, 1) // dt=1 coupling of position to velocity
	}

	update := mat.NewDense(boxDim, boxDimX2, nil)
	for i := 0; i < boxDim; i++ {
		update.Set(i, i, 1)
	}

	return &BoxFilter{motion: motion, update: update, posWeight: posWeight, velWeight: velWeight}
}

// NewDefaultBoxFilter constructs a BoxFilter using DefaultPositionWeight and
// DefaultVelocityWeight.
func NewDefaultBoxFilter() *BoxFilter {
	return NewBoxFilter(DefaultPositionWeight, DefaultVelocityWeight)
}

// stdPosition returns the per-dimension position standard deviation for
// [xc, yc, angle, aspect, height]; aspect uses the fixed constant cnst while
// the rest scale with height.
func (f *BoxFilter) stdPosition(k, cnst, height float64) []float64 {
	w := k * f.posWeight * height
	std := []float64{w, w, w, w, w}
	std[aspectIdx] = cnst
	return std
}

func (f *BoxFilter) stdVelocity(k, cnst, height float64) []float64 {
	w := k * f.velWeight * height
	std := []float64{w, w, w, w, w}
	std[aspectIdx] = cnst
	return std
}

// boxToVector returns [xc, yc, angle, aspect, height].
func boxToVector(b *geometry.Universal2DBox) []float64 {
	angle := 0.0
	if b.Angle != nil {
		angle = *b.Angle
	}
	return []float64{b.XC, b.YC, angle, b.Aspect, b.Height}
}

// Initiate seeds a new state from the first observation: zero initial
// velocity, and position/velocity covariance scaled by the observation's
// height per DefaultPositionWeight/DefaultVelocityWeight semantics.
func (f *BoxFilter) Initiate(b *geometry.Universal2DBox) State {
	pos := boxToVector(b)
	mean := mat.NewVecDense(boxDimX2, nil)
	for i, v := range pos {
		mean.SetVec(i, v)
	}

	std := append(f.stdPosition(2.0, 1e-2, b.Height), f.stdVelocity(10.0, 1e-5, b.Height)...)
	return State{Mean: mean, Cov: diagSquared(std)}
}

// Predict advances the state by one time step.
func (f *BoxFilter) Predict(s State) State {
	height := s.Mean.AtVec(heightIdx)
	std := append(f.stdPosition(1.0, 1e-2, height), f.stdVelocity(1.0, 1e-5, height)...)
	motionCov := diagSquared(std)

	mean := mat.NewVecDense(boxDimX2, nil)
	mean.MulVec(f.motion, s.Mean)

	var fp mat.Dense
	fp.Mul(f.motion, s.Cov)
	var cov mat.Dense
	cov.Mul(&fp, f.motion.T())
	cov.Add(&cov, motionCov)

	covDense := mat.NewDense(boxDimX2, boxDimX2, nil)
	covDense.Copy(&cov)
	return State{Mean: mean, Cov: covDense}
}

// project maps the full state onto the measurement space.
func (f *BoxFilter) project(mean *mat.VecDense, cov *mat.Dense) (*mat.VecDense, *mat.Dense) {
	height := mean.AtVec(heightIdx)
	std := f.stdPosition(1.0, 1e-1, height)
	innovationCov := diagSquared(std)

	projMean := mat.NewVecDense(boxDim, nil)
	projMean.MulVec(f.update, mean)

	var hp mat.Dense
	hp.Mul(f.update, cov)
	var projCov mat.Dense
	projCov.Mul(&hp, f.update.T())
	projCov.Add(&projCov, innovationCov)

	out := mat.NewDense(boxDim, boxDim, nil)
	out.Copy(&projCov)
	return projMean, out
}

// Update incorporates a measurement into the state, solving for the Kalman
// gain via the Cholesky factorization of the projected covariance. If the
// projected covariance is not positive definite (should not happen for a
// valid box), the predicted state is returned unchanged.
func (f *BoxFilter) Update(s State, measurement *geometry.Universal2DBox) State {
	projMean, projCov := f.project(s.Mean, s.Cov)

	var hp mat.Dense // H*P, shape boxDim x boxDimX2
	hp.Mul(f.update, s.Cov)

	var chol mat.Cholesky
	if ok := chol.Factorize(projCov); !ok {
		return cloneState(s)
	}

	var gain mat.Dense // solves projCov * gain = hp  =>  gain == K^T
	if err := chol.SolveTo(&gain, &hp); err != nil {
		return cloneState(s)
	}

	innovation := mat.NewVecDense(boxDim, nil)
	for i, v := range boxToVector(measurement) {
		innovation.SetVec(i, v-projMean.AtVec(i))
	}

	var meanDelta mat.VecDense
	meanDelta.MulVec(gain.T(), innovation)
	newMean := mat.NewVecDense(boxDimX2, nil)
	newMean.AddVec(s.Mean, &meanDelta)

	var gtS mat.Dense
	gtS.Mul(gain.T(), projCov)
	var gtSg mat.Dense
	gtSg.Mul(&gtS, &gain)

	newCov := mat.NewDense(boxDimX2, boxDimX2, nil)
	newCov.Sub(s.Cov, &gtSg)

	return State{Mean: newMean, Cov: newCov}
}

// Distance returns the squared Mahalanobis distance of measurement against
// the projected state, computed via Cholesky decomposition of the projected
// covariance followed by a forward triangular solve.
func (f *BoxFilter) Distance(s State, measurement *geometry.Universal2DBox) float64 {
	projMean, projCov := f.project(s.Mean, s.Cov)

	diff := mat.NewVecDense(boxDim, nil)
	for i, v := range boxToVector(measurement) {
		diff.SetVec(i, v-projMean.AtVec(i))
	}

	var chol mat.Cholesky
	if ok := chol.Factorize(projCov); !ok {
		return CHI2UpperBound
	}
	var l mat.TriDense
	chol.LTo(&l)

	var y mat.VecDense
	if err := l.SolveVecTo(&y, false, diff); err != nil {
		return CHI2UpperBound
	}

	var sumSq float64
	for i := 0; i < y.Len(); i++ {
		sumSq += y.AtVec(i) * y.AtVec(i)
	}
	return sumSq
}

// CalculateCost maps a squared Mahalanobis distance to an assignment cost.
// Distances beyond the chi-square(0.95, 5 dof) gate map to CHI2UpperBound.
// When inverted is true, the cost is flipped into a reward suitable for
// Hungarian maximization: max(0, CHI2UpperBound - d).
func CalculateCost(d float64, inverted bool) float64 {
	gate := Chi2Inv95(boxDim)
	if d > gate {
		d = CHI2UpperBound
	}
	if inverted {
		reward := CHI2UpperBound - d
		if reward < 0 {
			reward = 0
		}
		return reward
	}
	return d
}
