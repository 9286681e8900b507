package voting

import trackcore "github.com/kestrel-vision/trackcore"

// Result is one candidate's resolved winner together with the stage that
// produced it, as returned by VisualVoting.
type Result struct {
	TrackID    uint64
	VotingType string
}

// VisualVoting runs the two-stage cascade: first BestFit over the
// visual/feature-distance pairs (visualMaxDistance), marking winners
// Visual; candidates and tracks already resolved there are then excluded
// from a second SortVoting pass over the remaining positional/attribute
// pairs (positionalThreshold), marking its winners Positional. The union of
// both stages is returned.
func VisualVoting(results []trackcore.ObservationMetricOk, visualMaxDistance, positionalThreshold float64) map[uint64]Result {
	visualWinners := BestFit(results, visualMaxDistance)

	claimedTracks := make(map[uint64]struct{}, len(visualWinners))
	for _, trackID := range visualWinners {
		claimedTracks[trackID] = struct{}{}
	}

	remaining := make([]trackcore.ObservationMetricOk, 0, len(results))
	for _, r := range results {
		if _, done := visualWinners[r.From]; done {
			continue
		}
		if _, taken := claimedTracks[r.To]; taken {
			continue
		}
		remaining = append(remaining, r)
	}

	positionalWinners := SortVoting(remaining, positionalThreshold)

	out := make(map[uint64]Result, len(visualWinners)+len(positionalWinners))
	for candidate, trackID := range visualWinners {
		out[candidate] = Result{TrackID: trackID, VotingType: Visual}
	}
	for candidate, trackID := range positionalWinners {
		out[candidate] = Result{TrackID: trackID, VotingType: Positional}
	}
	return out
}
