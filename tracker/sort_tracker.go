package tracker

import (
	"github.com/kestrel-vision/trackcore/epoch"
	"github.com/kestrel-vision/trackcore/geometry"
	"github.com/kestrel-vision/trackcore/store"
	"github.com/kestrel-vision/trackcore/voting"

	trackcore "github.com/kestrel-vision/trackcore"
)

const sortClass = 0

// SortDetection is one frame's input to SortTracker.Predict: a detection
// box and an optional caller-supplied object id threaded through unchanged.
type SortDetection struct {
	Box            *geometry.Universal2DBox
	CustomObjectID *int64
}

// SortTracker is the pure-positional SORT product.
type SortTracker struct {
	*engine
	opts   *TrackOptions
	metric *SortMetric
}

// NewSortTracker builds a SortTracker. constraints may be nil.
func NewSortTracker(shards, bboxHistory int, maxIdleEpochs uint64, positional PositionalMetricType, minConfidence float64, constraints []epoch.Constraint, kalmanPositionWeight, kalmanVelocityWeight float64) *SortTracker {
	e := newEngine(DefaultAutoWastePeriod)
	opts := &TrackOptions{
		HistoryLength:        bboxHistory,
		MaxIdleEpochs:        maxIdleEpochs,
		KalmanPositionWeight: kalmanPositionWeight,
		KalmanVelocityWeight: kalmanVelocityWeight,
		EpochDB:              e.epochDB,
	}
	if len(constraints) > 0 {
		opts.Constraints = epoch.NewConstraints(constraints)
	}
	metric := NewSortMetric(opts, positional, minConfidence)

	attributesFactory := func() trackcore.TrackAttributes { return NewSortAttributes(opts) }
	e.active = store.New(shards, attributesFactory, metric, nil)
	e.wasted = store.New(shards, attributesFactory, metric, nil)

	return &SortTracker{engine: e, opts: opts, metric: metric}
}

// Predict runs predict_with_scene against the default (zero) scene.
func (t *SortTracker) Predict(detections []SortDetection) ([]OnlineTrack, error) {
	return t.PredictWithScene(0, detections)
}

// PredictWithScene builds one candidate track per detection, merges or
// promotes each against the active store, and returns a per-detection
// snapshot preserving input order.
func (t *SortTracker) PredictWithScene(scene uint64, detections []SortDetection) ([]OnlineTrack, error) {
	t.maybeSweep()
	epochNow := t.epochDB.NextEpoch(scene)

	candidates := make([]*trackcore.Track, len(detections))
	for i, d := range detections {
		attrs := NewSortAttributes(t.opts)
		update := SortAttributesUpdate{Epoch: epochNow, Scene: scene, CustomObjectID: d.CustomObjectID}
		cand, err := trackcore.NewTrackBuilder().
			Attributes(attrs).
			Metric(t.metric).
			Observation(sortClass, trackcore.NewObservation(d.Box, nil), update).
			Build()
		if err != nil {
			return nil, err
		}
		candidates[i] = cand
	}

	oks, _ := t.active.ForeignTrackDistances(candidates, sortClass, false)
	winners := voting.SortVoting(oks, t.metric.positional.Threshold)

	residentIDs := make([]uint64, len(candidates))
	for i, cand := range candidates {
		if winnerID, ok := winners[cand.ID]; ok {
			if err := t.active.MergeExternal(winnerID, cand, []uint64{sortClass}); err != nil {
				return nil, err
			}
			residentIDs[i] = winnerID
			continue
		}
		cand.ID = t.nextID()
		if err := t.active.AddTrack(cand); err != nil {
			return nil, err
		}
		residentIDs[i] = cand.ID
	}

	out := make([]OnlineTrack, len(detections))
	for i, id := range residentIDs {
		resident, ok := t.active.Get(id)
		if !ok {
			continue
		}
		out[i] = snapshotSort(resident)
	}
	return out, nil
}

func snapshotSort(resident *trackcore.Track) OnlineTrack {
	attrs := resident.Attributes.(*SortAttributes)
	var observed, predicted *geometry.Universal2DBox
	if n := len(attrs.ObservedBoxes); n > 0 {
		observed = attrs.ObservedBoxes[n-1]
	}
	if n := len(attrs.PredictedBoxes); n > 0 {
		predicted = attrs.PredictedBoxes[n-1]
	}
	return OnlineTrack{
		ID:             resident.ID,
		CustomObjectID: attrs.CustomObjectID,
		VotingType:     attrs.VotingType,
		Epoch:          attrs.LastUpdatedEpoch,
		SceneID:        attrs.SceneID,
		ObservedBBox:   observed,
		PredictedBBox:  predicted,
		Length:         attrs.TrackLength,
	}
}

// Wasted runs a final sweep and drains the wasted store.
func (t *SortTracker) Wasted() []*trackcore.Track {
	return t.drainWasted()
}

// IdleTracksWithScene returns residents in scene not updated this frame.
func (t *SortTracker) IdleTracksWithScene(scene uint64) []OnlineTrack {
	current := t.epochDB.CurrentEpoch(scene)
	ids := t.active.Lookup(func(attrs trackcore.TrackAttributes, _ map[uint64][]trackcore.Observation, _ []uint64) bool {
		a, ok := attrs.(*SortAttributes)
		return ok && a.SceneID == scene && a.LastUpdatedEpoch < current
	})
	out := make([]OnlineTrack, 0, len(ids))
	for _, id := range ids {
		if resident, ok := t.active.Get(id); ok {
			out = append(out, snapshotSort(resident))
		}
	}
	return out
}

// SkipEpochsForScene advances scene's epoch by n and triggers a sweep.
func (t *SortTracker) SkipEpochsForScene(scene, n uint64) {
	t.skipEpochsForScene(scene, n)
}

// ClearWasted drops every resident from the wasted store.
func (t *SortTracker) ClearWasted() { t.clearWasted() }

// ActiveShardStats returns the active store's per-shard resident counts.
func (t *SortTracker) ActiveShardStats() []int { return t.activeShardStats() }

// WastedShardStats returns the wasted store's per-shard resident counts.
func (t *SortTracker) WastedShardStats() []int { return t.wastedShardStats() }
