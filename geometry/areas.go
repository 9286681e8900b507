package geometry

const ownedAreaEpsilon = 1e-9

// ExclusivelyOwnedAreas returns, for each box, the portion of its area not
// covered by any other box in the batch. The union of overlaps with every
// other box is approximated as the sum of pairwise intersections capped at
// the box's own area; this avoids full multi-polygon boolean union (which
// the occlusion heuristic does not need to be exact, only monotonic) while
// remaining exact whenever a box overlaps at most one other box at a time.
func ExclusivelyOwnedAreas(boxes []*Universal2DBox) []float64 {
	owned := make([]float64, len(boxes))
	for i, b := range boxes {
		var overlap float64
		for j, other := range boxes {
			if i == j {
				continue
			}
			if TooFar(b, other) {
				continue
			}
			overlap += Intersection(b, other)
		}
		area := b.Area()
		if overlap > area {
			overlap = area
		}
		owned[i] = area - overlap
	}
	return owned
}

// ExclusivelyOwnedAreaShares normalizes ExclusivelyOwnedAreas by each box's
// own area, clamped to [0,1]. A share near 1 means the box is essentially
// unoccluded; near 0 means it is almost entirely covered by neighbors.
func ExclusivelyOwnedAreaShares(boxes []*Universal2DBox) []float64 {
	owned := ExclusivelyOwnedAreas(boxes)
	shares := make([]float64, len(boxes))
	for i, b := range boxes {
		share := owned[i] / (b.Area() + ownedAreaEpsilon)
		if share < 0 {
			share = 0
		}
		if share > 1 {
			share = 1
		}
		shares[i] = share
	}
	return shares
}
