package tracker

import (
	"fmt"

	"github.com/kestrel-vision/trackcore/epoch"
	"github.com/kestrel-vision/trackcore/geometry"
	"github.com/kestrel-vision/trackcore/kalman"

	trackcore "github.com/kestrel-vision/trackcore"
)

// VisualMetric is the VisualSort product's ObservationMetric: the same
// positional scoring as SortMetric, plus an appearance-feature distance
// gated by track length, detection quality/area, and exclusively-owned
// area share. A pair rejected by the spatio-temporal constraints is dropped;
// otherwise it may carry a positional metric, a feature distance, or both,
// and is dropped only when neither is available. Boxes that are TooFar apart
// get no positional metric but may still carry a feature distance.
type VisualMetric struct {
	filter        *kalman.BoxFilter
	positional    PositionalMetricType
	visual        VisualMetricType
	minConfidence float64
	constraints   *epoch.Constraints
	historyLength int

	visualMinimalTrackLength              int
	visualMinimalArea                     float64
	visualMinimalQualityUse               float64
	visualMinimalQualityCollect           float64
	visualMaxObservations                 int
	visualMinimalOwnAreaPercentageUse     float64
	visualMinimalOwnAreaPercentageCollect float64
}

// NewVisualMetric builds a VisualMetric from opts and the visual-specific
// thresholds in o.
func NewVisualMetric(opts *TrackOptions, o *VisualSortOptions) *VisualMetric {
	return &VisualMetric{
		filter:        opts.BoxFilter(),
		positional:    o.PositionalMetric,
		visual:        o.VisualMetric,
		minConfidence: o.PositionalMinConfidence,
		constraints:   opts.Constraints,
		historyLength: opts.HistoryLength,

		visualMinimalTrackLength:              o.VisualMinimalTrackLength,
		visualMinimalArea:                     o.VisualMinimalArea,
		visualMinimalQualityUse:               o.VisualMinimalQualityUse,
		visualMinimalQualityCollect:           o.VisualMinimalQualityCollect,
		visualMaxObservations:                 o.VisualMaxObservations,
		visualMinimalOwnAreaPercentageUse:     o.VisualMinimalOwnAreaPercentageUse,
		visualMinimalOwnAreaPercentageCollect: o.VisualMinimalOwnAreaPercentageCollect,
	}
}

// Metric implements trackcore.ObservationMetric.
func (m *VisualMetric) Metric(q trackcore.MetricQuery) *trackcore.ObservationMetricOk {
	candAttr, ok := q.CandidateObs.Attributes.(*VisualObservationAttributes)
	if !ok {
		return nil
	}
	trackAttr, ok := q.TrackObs.Attributes.(*VisualObservationAttributes)
	if !ok {
		return nil
	}
	candBox, trackBox := candAttr.Box, trackAttr.Box

	candVis, _ := q.CandidateAttrs.(*VisualAttributes)
	trackVis, _ := q.TrackAttrs.(*VisualAttributes)
	if m.constraints != nil && candVis != nil && trackVis != nil {
		delta := epochDelta(candVis.LastUpdatedEpoch, trackVis.LastUpdatedEpoch)
		if !m.constraints.Validate(delta, centerDistance(candBox, trackBox)) {
			return nil
		}
	}

	confidence := clampConfidence(candBox.Confidence, m.minConfidence)

	var attributeMetric *float64
	switch {
	case geometry.TooFar(candBox, trackBox):
	case m.positional.Kind == PositionalMahalanobis:
		if trackVis != nil && trackVis.hasState {
			d := m.filter.Distance(trackVis.KalmanState, candBox)
			cost := kalman.CalculateCost(d, true) / confidence
			attributeMetric = &cost
		}
	default:
		if iouVal, ok := geometry.IoU(candBox, trackBox); ok {
			v := iouVal * confidence
			if v >= m.positional.Threshold {
				attributeMetric = &v
			}
		}
	}

	var featureDistance *float64
	if trackVis != nil && q.CandidateObs.Feature != nil &&
		trackVis.FeatureCount() >= m.visualMinimalTrackLength &&
		candAttr.Quality >= m.visualMinimalQualityUse &&
		candBox.Area() >= m.visualMinimalArea &&
		candAttr.OwnedAreaShare >= m.visualMinimalOwnAreaPercentageUse {
		if d, ok := trackVis.BestFeatureDistance(*q.CandidateObs.Feature, m.visual); ok && d <= m.visual.Threshold {
			featureDistance = &d
		}
	}

	if attributeMetric == nil && featureDistance == nil {
		return nil
	}
	return &trackcore.ObservationMetricOk{AttributeMetric: attributeMetric, FeatureDistance: featureDistance}
}

// Optimize runs the same Kalman bookkeeping as SortMetric.Optimize over the
// box half of VisualObservationAttributes, then decides whether each new
// observation's feature is worth keeping: it is discarded unless the
// stricter collect thresholds are met, and the retained history is pruned
// to visualMaxObservations by quality.
func (m *VisualMetric) Optimize(class uint64, mergeHistory []uint64, attrs trackcore.TrackAttributes, observations *[]trackcore.Observation, prevLen int, isMerge bool) error {
	visAttrs, ok := attrs.(*VisualAttributes)
	if !ok {
		return fmt.Errorf("tracker: VisualMetric.Optimize requires *VisualAttributes, got %T", attrs)
	}
	list := *observations
	for idx := prevLen; idx < len(list); idx++ {
		obsAttr, ok := list[idx].Attributes.(*VisualObservationAttributes)
		if !ok {
			continue
		}
		obsBox := obsAttr.Box

		var state kalman.State
		if !visAttrs.hasState {
			state = m.filter.Initiate(obsBox)
			visAttrs.hasState = true
		} else {
			predicted := m.filter.Predict(visAttrs.KalmanState)
			state = m.filter.Update(predicted, obsBox)
		}
		visAttrs.KalmanState = state

		forecast := m.filter.Predict(state)
		predictedBox := boxFromState(forecast, obsBox.IsAxisAligned(), obsBox.Confidence)

		visAttrs.ObservedBoxes = pushCapped(visAttrs.ObservedBoxes, obsBox, m.historyLength)
		visAttrs.PredictedBoxes = pushCapped(visAttrs.PredictedBoxes, predictedBox, m.historyLength)
		list[idx].Attributes = &VisualObservationAttributes{Box: predictedBox, Quality: obsAttr.Quality, OwnedAreaShare: obsAttr.OwnedAreaShare}
		visAttrs.TrackLength++

		collectOK := obsAttr.Quality >= m.visualMinimalQualityCollect &&
			obsBox.Area() >= m.visualMinimalArea &&
			obsAttr.OwnedAreaShare >= m.visualMinimalOwnAreaPercentageCollect
		if !collectOK {
			list[idx].Feature = nil
		} else if list[idx].Feature != nil {
			visAttrs.appendFeature(*list[idx].Feature, obsAttr.Quality, m.visualMaxObservations)
		}
	}
	*observations = list
	return nil
}

// PostprocessDistances is a no-op: Metric already drops rows with neither
// metric available.
func (m *VisualMetric) PostprocessDistances(results []trackcore.ObservationMetricOk) []trackcore.ObservationMetricOk {
	return results
}
