package voting

import trackcore "github.com/kestrel-vision/trackcore"

// BestFit filters to results with a defined feature distance no greater than
// maxDistance, computes weight = sum(maxDistance - distance) for every
// (candidate, track) pair, then assigns each candidate's
// highest-weight pairing in descending weight order. A candidate whose
// highest-weight track has already been claimed by an earlier, heavier
// candidate is left without a winner (it is not retried against its next
// best option; the caller starts a new track for it instead).
func BestFit(results []trackcore.ObservationMetricOk, maxDistance float64) map[uint64]uint64 {
	filtered := featureFiltered(results, maxDistance)

	weights := make(map[pairKey]float64)
	for _, r := range filtered {
		weights[pairKey{r.From, r.To}] += maxDistance - *r.FeatureDistance
	}

	type pairWeight struct {
		from, to uint64
		weight   float64
	}
	pairs := make([]pairWeight, 0, len(weights))
	for k, w := range weights {
		pairs = append(pairs, pairWeight{from: k.from, to: k.to, weight: w})
	}
	for i := 1; i < len(pairs); i++ {
		for j := i; j > 0; j-- {
			a, b := pairs[j-1], pairs[j]
			if a.weight > b.weight || (a.weight == b.weight && a.from <= b.from) {
				break
			}
			pairs[j-1], pairs[j] = pairs[j], pairs[j-1]
		}
	}

	decided := make(map[uint64]struct{})
	takenTracks := make(map[uint64]struct{})
	winners := make(map[uint64]uint64)
	for _, p := range pairs {
		if _, done := decided[p.from]; done {
			continue
		}
		decided[p.from] = struct{}{}
		if _, taken := takenTracks[p.to]; taken {
			continue
		}
		winners[p.from] = p.to
		takenTracks[p.to] = struct{}{}
	}
	return winners
}
