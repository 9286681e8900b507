package tracker

import (
	"fmt"
	"math"

	"github.com/kestrel-vision/trackcore/epoch"
	"github.com/kestrel-vision/trackcore/geometry"
	"github.com/kestrel-vision/trackcore/kalman"

	trackcore "github.com/kestrel-vision/trackcore"
)

// SortMetric is the SORT product's ObservationMetric: IoU or Mahalanobis
// positional scoring against a Kalman-filtered track state, with the box
// swapped for its one-step forecast after every observation so the next
// frame's distance is computed against the prediction rather than the raw
// detection.
type SortMetric struct {
	filter        *kalman.BoxFilter
	positional    PositionalMetricType
	minConfidence float64
	constraints   *epoch.Constraints
	historyLength int
}

// NewSortMetric builds a SortMetric sharing opts' Kalman weights, history
// length, and spatio-temporal constraints.
func NewSortMetric(opts *TrackOptions, positional PositionalMetricType, minConfidence float64) *SortMetric {
	return &SortMetric{
		filter:        opts.BoxFilter(),
		positional:    positional,
		minConfidence: minConfidence,
		constraints:   opts.Constraints,
		historyLength: opts.HistoryLength,
	}
}

func epochDelta(a, b uint64) uint64 {
	if a > b {
		return a - b
	}
	return b - a
}

func centerDistance(a, b *geometry.Universal2DBox) float64 {
	dx, dy := a.XC-b.XC, a.YC-b.YC
	return math.Hypot(dx, dy)
}

func clampConfidence(confidence, min float64) float64 {
	if confidence < min {
		return min
	}
	return confidence
}

// boxFromState reconstructs a box from a Kalman mean vector [xc, yc, angle,
// aspect, height], preserving axisAligned and carrying confidence through
// (the filter itself does not model confidence).
func boxFromState(s kalman.State, axisAligned bool, confidence float64) *geometry.Universal2DBox {
	xc, yc, angle, aspect, height := s.Mean.AtVec(0), s.Mean.AtVec(1), s.Mean.AtVec(2), s.Mean.AtVec(3), s.Mean.AtVec(4)
	if axisAligned {
		return geometry.NewUniversal2DBox(xc, yc, aspect, height, confidence)
	}
	return geometry.NewOrientedUniversal2DBox(xc, yc, angle, aspect, height, confidence)
}

// Metric implements trackcore.ObservationMetric.
func (m *SortMetric) Metric(q trackcore.MetricQuery) *trackcore.ObservationMetricOk {
	candBox, ok := q.CandidateObs.Attributes.(*geometry.Universal2DBox)
	if !ok {
		return nil
	}
	trackBox, ok := q.TrackObs.Attributes.(*geometry.Universal2DBox)
	if !ok {
		return nil
	}
	if geometry.TooFar(candBox, trackBox) {
		return nil
	}

	if m.constraints != nil {
		if candAttrs, ok := q.CandidateAttrs.(*SortAttributes); ok {
			if trackAttrs, ok := q.TrackAttrs.(*SortAttributes); ok {
				delta := epochDelta(candAttrs.LastUpdatedEpoch, trackAttrs.LastUpdatedEpoch)
				if !m.constraints.Validate(delta, centerDistance(candBox, trackBox)) {
					return nil
				}
			}
		}
	}

	confidence := clampConfidence(candBox.Confidence, m.minConfidence)

	if m.positional.Kind == PositionalMahalanobis {
		trackAttrs, ok := q.TrackAttrs.(*SortAttributes)
		if !ok || !trackAttrs.hasState {
			return nil
		}
		d := m.filter.Distance(trackAttrs.KalmanState, candBox)
		cost := kalman.CalculateCost(d, true) / confidence
		return &trackcore.ObservationMetricOk{AttributeMetric: &cost}
	}

	iouVal, ok := geometry.IoU(candBox, trackBox)
	if !ok {
		return nil
	}
	v := iouVal * confidence
	if v < m.positional.Threshold {
		return nil
	}
	return &trackcore.ObservationMetricOk{AttributeMetric: &v}
}

// Optimize runs the Kalman predict/update cycle for every newly appended
// observation, then swaps its stored box for the one-step forecast.
func (m *SortMetric) Optimize(class uint64, mergeHistory []uint64, attrs trackcore.TrackAttributes, observations *[]trackcore.Observation, prevLen int, isMerge bool) error {
	sortAttrs, ok := attrs.(*SortAttributes)
	if !ok {
		return fmt.Errorf("tracker: SortMetric.Optimize requires *SortAttributes, got %T", attrs)
	}
	list := *observations
	for idx := prevLen; idx < len(list); idx++ {
		obsBox, ok := list[idx].Attributes.(*geometry.Universal2DBox)
		if !ok {
			continue
		}
		var state kalman.State
		if !sortAttrs.hasState {
			state = m.filter.Initiate(obsBox)
			sortAttrs.hasState = true
		} else {
			predicted := m.filter.Predict(sortAttrs.KalmanState)
			state = m.filter.Update(predicted, obsBox)
		}
		sortAttrs.KalmanState = state

		forecast := m.filter.Predict(state)
		predictedBox := boxFromState(forecast, obsBox.IsAxisAligned(), obsBox.Confidence)

		sortAttrs.ObservedBoxes = pushCapped(sortAttrs.ObservedBoxes, obsBox, m.historyLength)
		sortAttrs.PredictedBoxes = pushCapped(sortAttrs.PredictedBoxes, predictedBox, m.historyLength)
		list[idx].Attributes = predictedBox
		sortAttrs.TrackLength++
	}
	*observations = list
	return nil
}

// PostprocessDistances is a no-op: rows with no attribute metric are never
// appended in the first place, since Metric returns nil for them.
func (m *SortMetric) PostprocessDistances(results []trackcore.ObservationMetricOk) []trackcore.ObservationMetricOk {
	return results
}
