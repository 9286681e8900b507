package kalman

import "gonum.org/v1/gonum/mat"

const (
	pointDim   = 2
	pointDimX2 = pointDim * 2
)

// PointFilter is a constant-velocity Kalman filter over a 4-dimensional
// state (x, y, vx, vy) tracking a 2-D point. Unlike BoxFilter, its noise
// weights are flat constants rather than scaled by object size.
type PointFilter struct {
	motion *mat.Dense // 4x4
	update *mat.Dense // 2x4
	posStd float64
	velStd float64
}

// NewPointFilter constructs a PointFilter with fixed position/velocity
// measurement and process noise standard deviations.
func NewPointFilter(posStd, velStd float64) *PointFilter {
	motion := mat.NewDense(pointDimX2, pointDimX2, nil)
	for i := 0; i < pointDimX2; i++ {
		motion.Set(i, i, 1)
	}
	for i := 0; i < pointDim; i++ {
		motion.Set(i, pointDim+i, 1)
	}

	update := mat.NewDense(pointDim, pointDimX2, nil)
	for i := 0; i < pointDim; i++ {
		update.Set(i, i, 1)
	}

	return &PointFilter{motion: motion, update: update, posStd: posStd, velStd: velStd}
}

// Initiate seeds a state from the first observed point.
func (f *PointFilter) Initiate(x, y float64) State {
	mean := mat.NewVecDense(pointDimX2, nil)
	mean.SetVec(0, x)
	mean.SetVec(1, y)
	std := []float64{f.posStd, f.posStd, f.velStd, f.velStd}
	return State{Mean: mean, Cov: diagSquared(std)}
}

// Predict advances the state by one time step.
func (f *PointFilter) Predict(s State) State {
	motionCov := diagSquared([]float64{f.posStd, f.posStd, f.velStd, f.velStd})

	mean := mat.NewVecDense(pointDimX2, nil)
	mean.MulVec(f.motion, s.Mean)

	var fp mat.Dense
	fp.Mul(f.motion, s.Cov)
	var cov mat.Dense
	cov.Mul(&fp, f.motion.T())
	cov.Add(&cov, motionCov)

	covDense := mat.NewDense(pointDimX2, pointDimX2, nil)
	covDense.Copy(&cov)
	return State{Mean: mean, Cov: covDense}
}

func (f *PointFilter) project(mean *mat.VecDense, cov *mat.Dense) (*mat.VecDense, *mat.Dense) {
	innovationCov := diagSquared([]float64{f.posStd, f.posStd})

	projMean := mat.NewVecDense(pointDim, nil)
	projMean.MulVec(f.update, mean)

	var hp mat.Dense
	hp.Mul(f.update, cov)
	var projCov mat.Dense
	projCov.Mul(&hp, f.update.T())
	projCov.Add(&projCov, innovationCov)

	out := mat.NewDense(pointDim, pointDim, nil)
	out.Copy(&projCov)
	return projMean, out
}

// Update incorporates an (x,y) measurement via a Cholesky-factored gain
// solve, mirroring BoxFilter.Update.
func (f *PointFilter) Update(s State, x, y float64) State {
	projMean, projCov := f.project(s.Mean, s.Cov)

	var hp mat.Dense
	hp.Mul(f.update, s.Cov)

	var chol mat.Cholesky
	if ok := chol.Factorize(projCov); !ok {
		return cloneState(s)
	}
	var gain mat.Dense
	if err := chol.SolveTo(&gain, &hp); err != nil {
		return cloneState(s)
	}

	innovation := mat.NewVecDense(pointDim, nil)
	innovation.SetVec(0, x-projMean.AtVec(0))
	innovation.SetVec(1, y-projMean.AtVec(1))

	var meanDelta mat.VecDense
	meanDelta.MulVec(gain.T(), innovation)
	newMean := mat.NewVecDense(pointDimX2, nil)
	newMean.AddVec(s.Mean, &meanDelta)

	var gtS mat.Dense
	gtS.Mul(gain.T(), projCov)
	var gtSg mat.Dense
	gtSg.Mul(&gtS, &gain)

	newCov := mat.NewDense(pointDimX2, pointDimX2, nil)
	newCov.Sub(s.Cov, &gtSg)

	return State{Mean: newMean, Cov: newCov}
}

// Distance returns the squared Mahalanobis distance of (x,y) against the
// projected state via Cholesky + forward triangular solve.
func (f *PointFilter) Distance(s State, x, y float64) float64 {
	projMean, projCov := f.project(s.Mean, s.Cov)

	diff := mat.NewVecDense(pointDim, nil)
	diff.SetVec(0, x-projMean.AtVec(0))
	diff.SetVec(1, y-projMean.AtVec(1))

	var chol mat.Cholesky
	if ok := chol.Factorize(projCov); !ok {
		return CHI2UpperBound
	}
	var l mat.TriDense
	chol.LTo(&l)

	var yv mat.VecDense
	if err := l.SolveVecTo(&yv, false, diff); err != nil {
		return CHI2UpperBound
	}
	return yv.AtVec(0)*yv.AtVec(0) + yv.AtVec(1)*yv.AtVec(1)
}

// Position2D returns the filter's current (x, y) estimate.
func (s State) Position2D() (float64, float64) {
	return s.Mean.AtVec(0), s.Mean.AtVec(1)
}
