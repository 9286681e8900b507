package tracker

import (
	"fmt"
	"sort"

	"github.com/kestrel-vision/trackcore/epoch"
	"github.com/kestrel-vision/trackcore/feature"
	"github.com/kestrel-vision/trackcore/geometry"
	"github.com/kestrel-vision/trackcore/kalman"

	trackcore "github.com/kestrel-vision/trackcore"
)

// SortAttributes is the per-track state the SORT product keeps: Kalman
// state, bounded observed/predicted box history, and the epoch/scene
// bookkeeping the store and tracker use to age and snapshot a track.
type SortAttributes struct {
	opts *TrackOptions

	hasState    bool
	KalmanState kalman.State

	ObservedBoxes  []*geometry.Universal2DBox
	PredictedBoxes []*geometry.Universal2DBox

	SceneID          uint64
	LastUpdatedEpoch uint64
	TrackLength      uint64
	CustomObjectID   *int64
	VotingType       string
}

// NewSortAttributes constructs a fresh, un-observed SortAttributes sharing
// opts with every other track the same tracker produces.
func NewSortAttributes(opts *TrackOptions) *SortAttributes {
	return &SortAttributes{opts: opts}
}

// Compatible requires both sides to be SortAttributes in the same scene.
func (a *SortAttributes) Compatible(other trackcore.TrackAttributes) bool {
	o, ok := other.(*SortAttributes)
	return ok && o.SceneID == a.SceneID
}

// Merge pulls the freshly seeded epoch/scene/custom-id/voting-type from
// other (always the short-lived per-frame candidate) into the receiver (the
// long-lived resident).
func (a *SortAttributes) Merge(other trackcore.TrackAttributes) error {
	o, ok := other.(*SortAttributes)
	if !ok {
		return fmt.Errorf("tracker: cannot merge %T into SortAttributes", other)
	}
	a.LastUpdatedEpoch = o.LastUpdatedEpoch
	a.CustomObjectID = o.CustomObjectID
	if o.VotingType != "" {
		a.VotingType = o.VotingType
	}
	return nil
}

// Baked reports Ready when no epoch DB is configured, else delegates to the
// epoch DB's idle-budget rule.
func (a *SortAttributes) Baked(map[uint64][]trackcore.Observation) (trackcore.TrackStatus, error) {
	if a.opts == nil || a.opts.EpochDB == nil {
		return trackcore.StatusReady, nil
	}
	switch a.opts.EpochDB.Baked(a.SceneID, a.LastUpdatedEpoch, a.opts.MaxIdleEpochs) {
	case epoch.Wasted:
		return trackcore.StatusWasted, nil
	default:
		return trackcore.StatusPending, nil
	}
}

func pushCapped(slice []*geometry.Universal2DBox, v *geometry.Universal2DBox, limit int) []*geometry.Universal2DBox {
	slice = append(slice, v)
	if limit > 0 && len(slice) > limit {
		slice = slice[len(slice)-limit:]
	}
	return slice
}

// SortAttributesUpdate seeds a freshly built candidate's epoch/scene/custom
// id, applied by Track.AddObservation before SortMetric.Optimize runs.
type SortAttributesUpdate struct {
	Epoch          uint64
	Scene          uint64
	CustomObjectID *int64
}

// Apply implements trackcore.TrackAttributesUpdate.
func (u SortAttributesUpdate) Apply(attrs trackcore.TrackAttributes) error {
	switch a := attrs.(type) {
	case *SortAttributes:
		a.SceneID, a.LastUpdatedEpoch, a.CustomObjectID = u.Scene, u.Epoch, u.CustomObjectID
	case *VisualAttributes:
		a.SceneID, a.LastUpdatedEpoch, a.CustomObjectID = u.Scene, u.Epoch, u.CustomObjectID
	default:
		return fmt.Errorf("tracker: SortAttributesUpdate applied to unsupported attributes type %T", attrs)
	}
	return nil
}

// VisualObservationAttributes is the ObservationAttributes payload
// VisualSort observations carry: the detection box plus the per-detection
// quality and (once computed by the tracker) exclusively-owned area share
// the visual metric gates feature use/collection on.
type VisualObservationAttributes struct {
	Box            *geometry.Universal2DBox
	Quality        float64
	OwnedAreaShare float64
}

// featureEntry pairs a stored feature with the quality it was collected at,
// so pruning to VisualMaxObservations can keep the highest-quality entries.
type featureEntry struct {
	feature feature.Feature
	quality float64
}

// VisualAttributes extends SortAttributes with a bounded, quality-ranked
// feature history used by the visual voting stage.
type VisualAttributes struct {
	SortAttributes

	features []featureEntry
}

// NewVisualAttributes constructs a fresh, un-observed VisualAttributes.
func NewVisualAttributes(opts *TrackOptions) *VisualAttributes {
	return &VisualAttributes{SortAttributes: SortAttributes{opts: opts}}
}

// Compatible requires both sides to be VisualAttributes in the same scene.
func (a *VisualAttributes) Compatible(other trackcore.TrackAttributes) bool {
	o, ok := other.(*VisualAttributes)
	return ok && o.SceneID == a.SceneID
}

// Merge folds the positional bookkeeping the same way SortAttributes does;
// feature history is left to VisualMetric.Optimize, which runs immediately
// after and owns pruning.
func (a *VisualAttributes) Merge(other trackcore.TrackAttributes) error {
	o, ok := other.(*VisualAttributes)
	if !ok {
		return fmt.Errorf("tracker: cannot merge %T into VisualAttributes", other)
	}
	return a.SortAttributes.Merge(&o.SortAttributes)
}

// FeatureCount returns how many features are currently retained.
func (a *VisualAttributes) FeatureCount() int {
	return len(a.features)
}

// BestFeatureDistance returns the smallest distance between candidate and
// any retained feature, per the configured visual metric kind.
func (a *VisualAttributes) BestFeatureDistance(candidate feature.Feature, kind VisualMetricType) (float64, bool) {
	if len(a.features) == 0 {
		return 0, false
	}
	best := 0.0
	for i, entry := range a.features {
		var d float64
		if kind.Kind == VisualCosine {
			d = feature.CosineDistance(candidate, entry.feature)
		} else {
			d = feature.EuclideanDistance(candidate, entry.feature)
		}
		if i == 0 || d < best {
			best = d
		}
	}
	return best, true
}

// appendFeature records a newly collected feature/quality pair, then prunes
// to maxObservations by dropping the lowest-quality entries.
func (a *VisualAttributes) appendFeature(f feature.Feature, quality float64, maxObservations int) {
	a.features = append(a.features, featureEntry{feature: f, quality: quality})
	if maxObservations <= 0 || len(a.features) <= maxObservations {
		return
	}
	sort.SliceStable(a.features, func(i, j int) bool { return a.features[i].quality > a.features[j].quality })
	a.features = a.features[:maxObservations]
}
