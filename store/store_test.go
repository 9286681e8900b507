package store

import (
	"testing"

	trackcore "github.com/kestrel-vision/trackcore"
)

type testAttrs struct {
	scene uint64
}

func (a *testAttrs) Compatible(other trackcore.TrackAttributes) bool {
	o, ok := other.(*testAttrs)
	return ok && o.scene == a.scene
}

func (a *testAttrs) Merge(trackcore.TrackAttributes) error { return nil }

func (a *testAttrs) Baked(map[uint64][]trackcore.Observation) (trackcore.TrackStatus, error) {
	return trackcore.StatusReady, nil
}

type testMetric struct{}

func (testMetric) Metric(q trackcore.MetricQuery) *trackcore.ObservationMetricOk {
	v := 1.0
	return &trackcore.ObservationMetricOk{AttributeMetric: &v}
}

func (testMetric) Optimize(uint64, []uint64, trackcore.TrackAttributes, *[]trackcore.Observation, int, bool) error {
	return nil
}

func (testMetric) PostprocessDistances(r []trackcore.ObservationMetricOk) []trackcore.ObservationMetricOk {
	return r
}

func newTestStore(numShards int) *Store {
	return New(numShards, func() trackcore.TrackAttributes { return &testAttrs{} }, testMetric{}, nil)
}

func TestAddCreatesAndAppends(t *testing.T) {
	s := newTestStore(4)
	obs := trackcore.NewObservation(nil, nil)
	if err := s.Add(1, 0, obs, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	if err := s.Add(1, 0, obs, nil); err != nil {
		t.Fatalf("second add: %v", err)
	}
	tr, ok := s.Get(1)
	if !ok {
		t.Fatalf("expected track 1 to be resident")
	}
	if len(tr.Observations[0]) != 2 {
		t.Fatalf("expected 2 observations, got %d", len(tr.Observations[0]))
	}
}

func TestAddTrackRejectsDuplicate(t *testing.T) {
	s := newTestStore(4)
	tr, err := s.NewTrackBuilder().ID(5).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := s.AddTrack(tr); err != nil {
		t.Fatalf("first add: %v", err)
	}
	dup, _ := s.NewTrackBuilder().ID(5).Build()
	if err := s.AddTrack(dup); err == nil {
		t.Fatalf("expected duplicate id error")
	}
}

func TestForeignTrackDistancesAcrossShards(t *testing.T) {
	s := newTestStore(4)
	obs := trackcore.NewObservation(nil, nil)
	for _, id := range []uint64{1, 2, 3} {
		if err := s.Add(id, 0, obs, nil); err != nil {
			t.Fatalf("add %d: %v", id, err)
		}
	}

	candidate, err := trackcore.NewTrackBuilder().
		ID(999).
		Attributes(&testAttrs{}).
		Metric(testMetric{}).
		Observation(0, obs, nil).
		Build()
	if err != nil {
		t.Fatalf("candidate build: %v", err)
	}

	oks, errs := s.ForeignTrackDistances([]*trackcore.Track{candidate}, 0, false)
	if len(errs) != 0 {
		t.Fatalf("unexpected errors: %v", errs)
	}
	if len(oks) != 3 {
		t.Fatalf("expected 3 distance results (one per resident), got %d", len(oks))
	}
}

func TestMergeExternal(t *testing.T) {
	s := newTestStore(4)
	obs := trackcore.NewObservation(nil, nil)
	if err := s.Add(1, 0, obs, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	source, err := trackcore.NewTrackBuilder().
		ID(2).
		Attributes(&testAttrs{}).
		Metric(testMetric{}).
		Observation(0, obs, nil).
		Build()
	if err != nil {
		t.Fatalf("source build: %v", err)
	}
	if err := s.MergeExternal(1, source, []uint64{0}); err != nil {
		t.Fatalf("merge external: %v", err)
	}
	tr, _ := s.Get(1)
	if len(tr.Observations[0]) != 2 {
		t.Fatalf("expected merged observations, got %d", len(tr.Observations[0]))
	}
}

func TestFindUsableReturnsReadyTrack(t *testing.T) {
	s := newTestStore(2)
	obs := trackcore.NewObservation(nil, nil)
	if err := s.Add(1, 0, obs, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	usable := s.FindUsable()
	if len(usable) != 1 || usable[0].Status != trackcore.StatusReady {
		t.Fatalf("expected one ready track, got %+v", usable)
	}
}

func TestFetchTracksRemoves(t *testing.T) {
	s := newTestStore(2)
	obs := trackcore.NewObservation(nil, nil)
	if err := s.Add(1, 0, obs, nil); err != nil {
		t.Fatalf("add: %v", err)
	}
	fetched := s.FetchTracks([]uint64{1})
	if len(fetched) != 1 {
		t.Fatalf("expected 1 fetched track, got %d", len(fetched))
	}
	if _, ok := s.Get(1); ok {
		t.Fatalf("track should have been removed by fetch")
	}
}

func TestShardStatsAndClear(t *testing.T) {
	s := newTestStore(4)
	obs := trackcore.NewObservation(nil, nil)
	for _, id := range []uint64{1, 2, 3, 4} {
		if err := s.Add(id, 0, obs, nil); err != nil {
			t.Fatalf("add %d: %v", id, err)
		}
	}
	total := 0
	for _, c := range s.ShardStats() {
		total += c
	}
	if total != 4 {
		t.Fatalf("expected 4 total residents, got %d", total)
	}
	s.Clear()
	total = 0
	for _, c := range s.ShardStats() {
		total += c
	}
	if total != 0 {
		t.Fatalf("expected 0 residents after clear, got %d", total)
	}
}
