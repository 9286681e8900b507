// Package voting implements the reduction from pairwise observation
// distances to a candidate -> winning-track assignment: TopN (vote
// counting), BestFit (weight-sum greedy assignment), SortVoting
// (Hungarian/Kuhn-Munkres maximization), and VisualVoting (a two-stage
// visual-then-positional cascade).
//
// SortVoting is grounded directly on the reference tracker's
// internal/scipy.LinearSumAssignment wrapper around go-hungarian
// (internal/assignment in this module); TopN, BestFit, and VisualVoting have
// no teacher analogue and are grounded on the Similari crate's voting module
// layout (iou/maha/visual engines over a shared cost-matrix abstraction).
package voting

import trackcore "github.com/kestrel-vision/trackcore"

// VotingType values reported in Result.VotingType by VisualVoting.
const (
	Positional = "Positional"
	Visual     = "Visual"
)

// featureFiltered returns the subset of results with a defined feature
// distance no greater than maxDistance.
func featureFiltered(results []trackcore.ObservationMetricOk, maxDistance float64) []trackcore.ObservationMetricOk {
	out := make([]trackcore.ObservationMetricOk, 0, len(results))
	for _, r := range results {
		if r.FeatureDistance == nil {
			continue
		}
		if *r.FeatureDistance <= maxDistance {
			out = append(out, r)
		}
	}
	return out
}

type pairKey struct {
	from, to uint64
}

// sortedUint64 returns the distinct values of s, ascending.
func sortedUint64(s map[uint64]struct{}) []uint64 {
	out := make([]uint64, 0, len(s))
	for v := range s {
		out = append(out, v)
	}
	for i := 1; i < len(out); i++ {
		for j := i; j > 0 && out[j-1] > out[j]; j-- {
			out[j-1], out[j] = out[j], out[j-1]
		}
	}
	return out
}
