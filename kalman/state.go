package kalman

import "gonum.org/v1/gonum/mat"

// State is a Kalman filter's belief: a mean vector and its covariance,
// which must remain symmetric positive semi-definite throughout predict and
// update.
type State struct {
	Mean *mat.VecDense
	Cov  *mat.Dense
}

func cloneState(s State) State {
	mean := mat.NewVecDense(s.Mean.Len(), nil)
	mean.CopyVec(s.Mean)
	r, c := s.Cov.Dims()
	cov := mat.NewDense(r, c, nil)
	cov.Copy(s.Cov)
	return State{Mean: mean, Cov: cov}
}

// diagSquared builds a square diagonal matrix whose entries are the
// elementwise square of std.
func diagSquared(std []float64) *mat.Dense {
	n := len(std)
	d := mat.NewDense(n, n, nil)
	for i, v := range std {
		d.Set(i, i, v*v)
	}
	return d
}
