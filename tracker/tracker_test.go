package tracker

import (
	"testing"

	"github.com/kestrel-vision/trackcore/epoch"
	"github.com/kestrel-vision/trackcore/feature"
	"github.com/kestrel-vision/trackcore/geometry"
	"github.com/kestrel-vision/trackcore/voting"
)

func box(xc, yc float64) *geometry.Universal2DBox {
	return geometry.NewUniversal2DBox(xc, yc, 1.0, 10.0, 1.0)
}

func TestSortTrackerStationaryObjectKeepsID(t *testing.T) {
	tr := NewSortTracker(1, 10, 10, IoU(0.3), DefaultMinConfidence, nil, 1.0/20, 1.0/160)

	f1, err := tr.Predict([]SortDetection{{Box: box(100, 100)}})
	if err != nil {
		t.Fatalf("frame 1: %v", err)
	}
	f2, err := tr.Predict([]SortDetection{{Box: box(101, 100)}})
	if err != nil {
		t.Fatalf("frame 2: %v", err)
	}

	if len(f1) != 1 || len(f2) != 1 {
		t.Fatalf("expected one track per frame, got %d and %d", len(f1), len(f2))
	}
	if f1[0].ID != f2[0].ID {
		t.Fatalf("expected stable id, got %d then %d", f1[0].ID, f2[0].ID)
	}
	if f2[0].Length != 2 {
		t.Fatalf("expected track length 2, got %d", f2[0].Length)
	}
	if f2[0].Epoch != 2 {
		t.Fatalf("expected epoch 2, got %d", f2[0].Epoch)
	}
}

func TestSortTrackerDisjointBoxSpawnsNewTrack(t *testing.T) {
	tr := NewSortTracker(1, 10, 10, IoU(0.3), DefaultMinConfidence, nil, 1.0/20, 1.0/160)

	f1, err := tr.Predict([]SortDetection{{Box: box(100, 100)}})
	if err != nil {
		t.Fatalf("frame 1: %v", err)
	}
	f2, err := tr.Predict([]SortDetection{{Box: box(900, 900)}})
	if err != nil {
		t.Fatalf("frame 2: %v", err)
	}

	if f1[0].ID == f2[0].ID {
		t.Fatalf("expected a distinct id for a disjoint box, got %d for both", f1[0].ID)
	}
}

func TestSortTrackerWastedAfterIdleBudget(t *testing.T) {
	tr := NewSortTracker(1, 10, 2, IoU(0.3), DefaultMinConfidence, nil, 1.0/20, 1.0/160)

	if _, err := tr.Predict([]SortDetection{{Box: box(50, 50)}}); err != nil {
		t.Fatalf("frame 1: %v", err)
	}

	tr.SkipEpochsForScene(0, 5)

	wasted := tr.Wasted()
	if len(wasted) != 1 {
		t.Fatalf("expected one wasted track after idle budget exceeded, got %d", len(wasted))
	}
}

func TestSortTrackerIsolatesScenes(t *testing.T) {
	tr := NewSortTracker(1, 10, 10, IoU(0.3), DefaultMinConfidence, nil, 1.0/20, 1.0/160)

	a, err := tr.PredictWithScene(1, []SortDetection{{Box: box(10, 10)}})
	if err != nil {
		t.Fatalf("scene 1: %v", err)
	}
	b, err := tr.PredictWithScene(2, []SortDetection{{Box: box(10, 10)}})
	if err != nil {
		t.Fatalf("scene 2: %v", err)
	}

	if a[0].ID == b[0].ID {
		t.Fatalf("expected distinct ids across isolated scenes, got %d for both", a[0].ID)
	}
}

func TestSortTrackerHungarianExcludesDoubleAssignment(t *testing.T) {
	tr := NewSortTracker(1, 10, 10, IoU(0.3), DefaultMinConfidence, nil, 1.0/20, 1.0/160)

	seed, err := tr.Predict([]SortDetection{{Box: box(100, 100)}, {Box: box(300, 300)}})
	if err != nil {
		t.Fatalf("seed frame: %v", err)
	}

	next, err := tr.Predict([]SortDetection{{Box: box(101, 100)}, {Box: box(301, 300)}})
	if err != nil {
		t.Fatalf("next frame: %v", err)
	}

	if next[0].ID == next[1].ID {
		t.Fatalf("expected two distinct resident ids, got the same id %d for both", next[0].ID)
	}
	seen := map[uint64]bool{seed[0].ID: true, seed[1].ID: true}
	if !seen[next[0].ID] || !seen[next[1].ID] {
		t.Fatalf("expected both matches to resolve to the seeded ids %v, got %d and %d", seed, next[0].ID, next[1].ID)
	}
}

func featOf(vals ...float32) *feature.Feature {
	f := feature.New(vals)
	return &f
}

func TestVisualSortTrackerVisualMatchWinsOverPositional(t *testing.T) {
	o := NewVisualSortOptions(1)
	o.VisualMetric = Euclidean(0.5)
	o.PositionalMetric = IoU(0.3)
	o.VisualMinimalTrackLength = 0
	tr := NewVisualSortTracker(o)

	if _, err := tr.Predict([]VisualDetection{
		{Box: box(100, 100), Feature: featOf(1, 0, 0), Quality: 1, CustomObjectID: nil},
		{Box: box(300, 300), Feature: featOf(0, 1, 0), Quality: 1, CustomObjectID: nil},
	}); err != nil {
		t.Fatalf("seed frame: %v", err)
	}

	out, err := tr.Predict([]VisualDetection{
		{Box: box(300, 300), Feature: featOf(1, 0, 0), Quality: 1, CustomObjectID: nil},
	})
	if err != nil {
		t.Fatalf("visual frame: %v", err)
	}
	if out[0].VotingType != voting.Visual {
		t.Fatalf("expected a visual-stage win despite the box sitting on the other track, got %q", out[0].VotingType)
	}
}

func TestVisualSortTrackerFallsBackToPositionalWithoutFeature(t *testing.T) {
	o := NewVisualSortOptions(1)
	o.VisualMetric = Euclidean(0.5)
	o.PositionalMetric = IoU(0.3)
	tr := NewVisualSortTracker(o)

	seed, err := tr.Predict([]VisualDetection{{Box: box(100, 100), Quality: 1}})
	if err != nil {
		t.Fatalf("seed frame: %v", err)
	}
	out, err := tr.Predict([]VisualDetection{{Box: box(101, 100), Quality: 1}})
	if err != nil {
		t.Fatalf("follow-up frame: %v", err)
	}
	if out[0].ID != seed[0].ID {
		t.Fatalf("expected positional match to keep id %d, got %d", seed[0].ID, out[0].ID)
	}
	if out[0].VotingType != voting.Positional {
		t.Fatalf("expected a positional-stage win, got %q", out[0].VotingType)
	}
}

func TestSortTrackerRespectsSpatioTemporalConstraints(t *testing.T) {
	constraints := []epoch.Constraint{{EpochDelta: 1, MaxAllowedDistance: 5}}
	tr := NewSortTracker(1, 10, 10, IoU(0.0), DefaultMinConfidence, constraints, 1.0/20, 1.0/160)

	seed, err := tr.Predict([]SortDetection{{Box: box(100, 100)}})
	if err != nil {
		t.Fatalf("seed frame: %v", err)
	}
	// A 6-unit shift still overlaps (IoU 0.25 >= 0.0), so only the
	// constraint's 5-unit limit can reject the match.
	out, err := tr.Predict([]SortDetection{{Box: box(106, 100)}})
	if err != nil {
		t.Fatalf("next frame: %v", err)
	}
	if out[0].ID == seed[0].ID {
		t.Fatalf("expected the constraint to reject a jump beyond max allowed distance")
	}
}
