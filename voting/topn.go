package voting

import trackcore "github.com/kestrel-vision/trackcore"

// TopN groups results by (candidate, track), counts votes (observation pairs
// with a feature distance no greater than maxDistance), and for every
// candidate with at least one track meeting minVotes keeps up to n winners
// ordered by vote count descending, ties broken by ascending track id.
func TopN(results []trackcore.ObservationMetricOk, maxDistance float64, minVotes, n int) map[uint64][]uint64 {
	filtered := featureFiltered(results, maxDistance)

	counts := make(map[pairKey]int)
	for _, r := range filtered {
		counts[pairKey{r.From, r.To}]++
	}

	type tally struct {
		track uint64
		votes int
	}
	byCandidate := make(map[uint64][]tally)
	for k, c := range counts {
		if c < minVotes {
			continue
		}
		byCandidate[k.from] = append(byCandidate[k.from], tally{track: k.to, votes: c})
	}

	out := make(map[uint64][]uint64, len(byCandidate))
	for candidate, tallies := range byCandidate {
		for i := 1; i < len(tallies); i++ {
			for j := i; j > 0; j-- {
				a, b := tallies[j-1], tallies[j]
				if a.votes > b.votes || (a.votes == b.votes && a.track <= b.track) {
					break
				}
				tallies[j-1], tallies[j] = tallies[j], tallies[j-1]
			}
		}
		if n > 0 && len(tallies) > n {
			tallies = tallies[:n]
		}
		winners := make([]uint64, len(tallies))
		for i, t := range tallies {
			winners[i] = t.track
		}
		out[candidate] = winners
	}
	return out
}
