package assignment

import "testing"

func TestMaximizeAssignmentPicksBestPairing(t *testing.T) {
	reward := [][]float64{
		{10, 1},
		{1, 10},
	}
	got := MaximizeAssignment(reward)
	seen := map[int]int{}
	for _, a := range got {
		seen[a.Row] = a.Col
	}
	if seen[0] != 0 || seen[1] != 1 {
		t.Fatalf("expected diagonal assignment, got %v", seen)
	}
}

func TestMaximizeAssignmentRectangular(t *testing.T) {
	reward := [][]float64{
		{5, 0, 0},
	}
	got := MaximizeAssignment(reward)
	if len(got) != 1 || got[0].Row != 0 || got[0].Col != 0 {
		t.Fatalf("unexpected rectangular assignment: %v", got)
	}
}

func TestMaximizeAssignmentEmpty(t *testing.T) {
	if got := MaximizeAssignment(nil); got != nil {
		t.Fatalf("expected nil for empty matrix, got %v", got)
	}
}
