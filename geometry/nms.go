package geometry

import (
	"math"
	"sort"

	"golang.org/x/sync/errgroup"
)

// Candidate is one detection offered to NMS: a box, an optional score
// (falling back to box height when absent), and the index the caller used
// to identify it.
type Candidate struct {
	Box   *Universal2DBox
	Score *float64
	Index int
}

func (c Candidate) rank() float64 {
	if c.Score != nil {
		return *c.Score
	}
	return c.Box.Height
}

// NMS runs classical greedy non-maximum suppression. Candidates are
// filtered to score > scoreThreshold (when a score is present) and
// height > 0, aspect > 0, then sorted by rank descending. Each remaining
// candidate is accepted in turn and later candidates overlapping it by more
// than nmsThreshold (intersection over the later candidate's own area) are
// discarded. Suppression checks against already-accepted boxes are explored
// concurrently; the accepted order itself remains the deterministic,
// score-sorted order.
func NMS(candidates []Candidate, nmsThreshold, scoreThreshold float64) []Candidate {
	filtered := make([]Candidate, 0, len(candidates))
	for _, c := range candidates {
		if c.Box.Height <= 0 || c.Box.Aspect <= 0 {
			continue
		}
		if c.Score != nil && *c.Score <= scoreThreshold {
			continue
		}
		filtered = append(filtered, c)
	}
	sort.SliceStable(filtered, func(i, j int) bool {
		return filtered[i].rank() > filtered[j].rank()
	})

	suppressed := make([]bool, len(filtered))
	var accepted []Candidate

	for i := range filtered {
		if suppressed[i] {
			continue
		}
		accepted = append(accepted, filtered[i])

		remaining := filtered[i+1:]
		remainingSuppressed := suppressed[i+1:]
		var g errgroup.Group
		for j := range remaining {
			j := j
			if remainingSuppressed[j] {
				continue
			}
			g.Go(func() error {
				other := remaining[j].Box
				inter := Intersection(filtered[i].Box, other)
				if inter <= 0 {
					return nil
				}
				share := inter / math.Max(other.Area(), 1e-12)
				if share > nmsThreshold {
					remainingSuppressed[j] = true
				}
				return nil
			})
		}
		_ = g.Wait()
	}
	return accepted
}
