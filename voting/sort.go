package voting

import (
	"math"

	"github.com/kestrel-vision/trackcore/internal/assignment"

	trackcore "github.com/kestrel-vision/trackcore"
)

// SortVoting solves a single Hungarian maximization over a [candidates x
// (candidates + tracks)] reward matrix. Each candidate's own column in the
// left candidate-sized block is pre-filled with threshold scaled the same
// way as the real cells, giving every candidate a "spawn a new track"
// option that competes on equal footing with matching an existing track; a
// candidate assigned to its own column wins nothing. Off-diagonal cells in
// the candidate block are left unusable (a candidate may only ever "match"
// itself there, never another candidate).
func SortVoting(results []trackcore.ObservationMetricOk, threshold float64) map[uint64]uint64 {
	candidateSet := make(map[uint64]struct{})
	trackSet := make(map[uint64]struct{})
	best := make(map[pairKey]float64)
	for _, r := range results {
		if r.AttributeMetric == nil {
			continue
		}
		candidateSet[r.From] = struct{}{}
		trackSet[r.To] = struct{}{}
		k := pairKey{r.From, r.To}
		if v, ok := best[k]; !ok || *r.AttributeMetric > v {
			best[k] = *r.AttributeMetric
		}
	}
	if len(candidateSet) == 0 {
		return nil
	}

	candidates := sortedUint64(candidateSet)
	tracks := sortedUint64(trackSet)
	numC, numT := len(candidates), len(tracks)

	const scale = 1e6
	const unusable = -math.MaxFloat64 / 2

	matrix := make([][]float64, numC)
	for i := range matrix {
		row := make([]float64, numC+numT)
		for j := 0; j < numC; j++ {
			if j == i {
				row[j] = math.Trunc(threshold * scale)
			} else {
				row[j] = unusable
			}
		}
		for k, trackID := range tracks {
			if v, ok := best[pairKey{candidates[i], trackID}]; ok {
				row[numC+k] = math.Trunc(v * scale)
			}
		}
		matrix[i] = row
	}

	assignments := assignment.MaximizeAssignment(matrix)
	winners := make(map[uint64]uint64)
	for _, a := range assignments {
		if a.Row >= numC || a.Col < numC {
			continue
		}
		winners[candidates[a.Row]] = tracks[a.Col-numC]
	}
	return winners
}
