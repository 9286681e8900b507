package tracker

import (
	"github.com/kestrel-vision/trackcore/epoch"
	"github.com/kestrel-vision/trackcore/feature"
	"github.com/kestrel-vision/trackcore/geometry"
	"github.com/kestrel-vision/trackcore/store"
	"github.com/kestrel-vision/trackcore/voting"

	trackcore "github.com/kestrel-vision/trackcore"
)

// VisualDetection is one frame's input to VisualSortTracker.Predict.
type VisualDetection struct {
	Feature        *feature.Feature
	Quality        float64
	Box            *geometry.Universal2DBox
	CustomObjectID *int64
}

// VisualSortTracker fuses positional SORT voting with an appearance-feature
// cascade.
type VisualSortTracker struct {
	*engine
	opts   *TrackOptions
	metric *VisualMetric
	o      *VisualSortOptions
}

// NewVisualSortTracker builds a VisualSortTracker from a VisualSortOptions
// bundle (see NewVisualSortOptions for defaults).
func NewVisualSortTracker(o *VisualSortOptions) *VisualSortTracker {
	e := newEngine(o.AutoWastePeriod)
	opts := &TrackOptions{
		HistoryLength:        o.KeptHistoryLength,
		MaxIdleEpochs:        o.MaxIdleEpochs,
		KalmanPositionWeight: o.KalmanPositionWeight,
		KalmanVelocityWeight: o.KalmanVelocityWeight,
		EpochDB:              e.epochDB,
	}
	if len(o.SpatioTemporalConstraints) > 0 {
		opts.Constraints = epoch.NewConstraints(o.SpatioTemporalConstraints)
	}
	metric := NewVisualMetric(opts, o)

	attributesFactory := func() trackcore.TrackAttributes { return NewVisualAttributes(opts) }
	e.active = store.New(o.Shards, attributesFactory, metric, nil)
	e.wasted = store.New(o.Shards, attributesFactory, metric, nil)

	return &VisualSortTracker{engine: e, opts: opts, metric: metric, o: o}
}

// Predict runs predict_with_scene against the default (zero) scene.
func (t *VisualSortTracker) Predict(detections []VisualDetection) ([]OnlineTrack, error) {
	return t.PredictWithScene(0, detections)
}

// PredictWithScene builds one candidate per detection (computing exclusive
// owned-area shares across the batch), merges or promotes each against the
// active store via the two-stage visual voting cascade, and returns a
// per-detection snapshot preserving input order.
func (t *VisualSortTracker) PredictWithScene(scene uint64, detections []VisualDetection) ([]OnlineTrack, error) {
	t.maybeSweep()
	epochNow := t.epochDB.NextEpoch(scene)

	boxes := make([]*geometry.Universal2DBox, len(detections))
	for i, d := range detections {
		boxes[i] = d.Box
	}
	shares := geometry.ExclusivelyOwnedAreaShares(boxes)

	candidates := make([]*trackcore.Track, len(detections))
	for i, d := range detections {
		attrs := NewVisualAttributes(t.opts)
		update := SortAttributesUpdate{Epoch: epochNow, Scene: scene, CustomObjectID: d.CustomObjectID}
		obsAttrs := &VisualObservationAttributes{Box: d.Box, Quality: d.Quality, OwnedAreaShare: shares[i]}
		cand, err := trackcore.NewTrackBuilder().
			Attributes(attrs).
			Metric(t.metric).
			Observation(sortClass, trackcore.NewObservation(obsAttrs, d.Feature), update).
			Build()
		if err != nil {
			return nil, err
		}
		candidates[i] = cand
	}

	oks, _ := t.active.ForeignTrackDistances(candidates, sortClass, false)
	winners := voting.VisualVoting(oks, t.metric.visual.Threshold, t.metric.positional.Threshold)

	residentIDs := make([]uint64, len(candidates))
	for i, cand := range candidates {
		if res, ok := winners[cand.ID]; ok {
			cand.Attributes.(*VisualAttributes).VotingType = res.VotingType
			if err := t.active.MergeExternal(res.TrackID, cand, []uint64{sortClass}); err != nil {
				return nil, err
			}
			residentIDs[i] = res.TrackID
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
		out[i] = snapshotVisual(resident)
	}
	return out, nil
}

func snapshotVisual(resident *trackcore.Track) OnlineTrack {
	attrs := resident.Attributes.(*VisualAttributes)
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
func (t *VisualSortTracker) Wasted() []*trackcore.Track {
	return t.drainWasted()
}

// IdleTracksWithScene returns residents in scene not updated this frame.
func (t *VisualSortTracker) IdleTracksWithScene(scene uint64) []OnlineTrack {
	current := t.epochDB.CurrentEpoch(scene)
	ids := t.active.Lookup(func(attrs trackcore.TrackAttributes, _ map[uint64][]trackcore.Observation, _ []uint64) bool {
		a, ok := attrs.(*VisualAttributes)
		return ok && a.SceneID == scene && a.LastUpdatedEpoch < current
	})
	out := make([]OnlineTrack, 0, len(ids))
	for _, id := range ids {
		if resident, ok := t.active.Get(id); ok {
			out = append(out, snapshotVisual(resident))
		}
	}
	return out
}

// SkipEpochsForScene advances scene's epoch by n and triggers a sweep.
func (t *VisualSortTracker) SkipEpochsForScene(scene, n uint64) {
	t.skipEpochsForScene(scene, n)
}

// ClearWasted drops every resident from the wasted store.
func (t *VisualSortTracker) ClearWasted() { t.clearWasted() }

// ActiveShardStats returns the active store's per-shard resident counts.
func (t *VisualSortTracker) ActiveShardStats() []int { return t.activeShardStats() }

// WastedShardStats returns the wasted store's per-shard resident counts.
func (t *VisualSortTracker) WastedShardStats() []int { return t.wastedShardStats() }
