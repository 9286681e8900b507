package kalman

// chi2inv95 is the inverse CDF of the chi-square distribution at the 0.95
// quantile, indexed by degrees of freedom minus one. Reproduced verbatim
// from the reference tracker's gating table.
var chi2inv95 = [9]float64{
	3.8415, 5.9915, 7.8147, 9.4877, 11.070, 12.592, 14.067, 15.507, 16.919,
}

// Chi2Inv95 returns the 0.95-quantile chi-square value for the given
// degrees of freedom (1-based). Panics if dof is outside [1,9]; the filter
// family defined in this package never gates on more than 5 degrees of
// freedom.
func Chi2Inv95(dof int) float64 {
	return chi2inv95[dof-1]
}

// CHI2UpperBound is the cost assigned to any observation that fails the
// chi-square gate — effectively "infinitely far", short of actual infinity
// so it still participates cleanly in min/max cost-matrix arithmetic.
const CHI2UpperBound = 1e9
