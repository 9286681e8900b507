// Package tracker implements the two concrete products built on the track
// engine: SortTracker (pure positional SORT) and VisualSortTracker (SORT
// fused with appearance-feature voting). Both wire the store, Kalman filter
// family, voting engines, and epoch bookkeeping from the sibling packages
// into a single predict-per-frame life cycle.
//
// Grounded on the reference tracker's norfairgo.Tracker life cycle
// (predict/update loop, id generation) and tracker_factory.go's id-counter
// pattern, generalized to the epoch-based aging and multi-metric voting this
// spec's tracker products require.
package tracker

import (
	"math"

	"github.com/kestrel-vision/trackcore/epoch"
	"github.com/kestrel-vision/trackcore/kalman"
)

// Package-level defaults, per the construction surface's documented
// defaults.
const (
	DefaultSortIoUThreshold    = 0.3
	DefaultMinConfidence       = 0.05
	DefaultVisualIoUThreshold  = 0.3
	DefaultAutoWastePeriod     = 8
)

// DefaultEuclideanThreshold mirrors the reference spec's f32::MAX sentinel:
// "accept any euclidean distance" absent an explicit threshold.
var DefaultEuclideanThreshold = float64(math.MaxFloat32)

// PositionalKind selects the positional distance SortMetric/VisualMetric
// compute.
type PositionalKind int

const (
	PositionalIoU PositionalKind = iota
	PositionalMahalanobis
)

// PositionalMetricType is IoU(threshold) or Mahalanobis(threshold). Threshold
// doubles as the per-pair acceptance gate (IoU mode) and as the SORT voting
// engine's self-diagonal "spawn a new track" reward scale, so both modes
// carry one regardless of whether the per-pair gate uses it directly.
type PositionalMetricType struct {
	Kind      PositionalKind
	Threshold float64
}

// IoU builds a PositionalMetricType that gates on IoU*confidence >= threshold.
func IoU(threshold float64) PositionalMetricType {
	return PositionalMetricType{Kind: PositionalIoU, Threshold: threshold}
}

// Mahalanobis builds a PositionalMetricType that scores via the Kalman
// filter's gated squared-distance cost, using threshold as the SORT voting
// self-diagonal reward scale.
func Mahalanobis(threshold float64) PositionalMetricType {
	return PositionalMetricType{Kind: PositionalMahalanobis, Threshold: threshold}
}

// VisualKind selects the appearance-feature distance function.
type VisualKind int

const (
	VisualEuclidean VisualKind = iota
	VisualCosine
)

// VisualMetricType is Euclidean(threshold) or Cosine(threshold).
type VisualMetricType struct {
	Kind      VisualKind
	Threshold float64
}

// Euclidean builds a VisualMetricType using feature.EuclideanDistance.
func Euclidean(threshold float64) VisualMetricType {
	return VisualMetricType{Kind: VisualEuclidean, Threshold: threshold}
}

// Cosine builds a VisualMetricType using feature.CosineDistance.
func Cosine(threshold float64) VisualMetricType {
	return VisualMetricType{Kind: VisualCosine, Threshold: threshold}
}

// TrackOptions is the options bundle SortAttributes/VisualAttributes hold a
// shared pointer to: history length, idle budget, spatio-temporal
// constraints, Kalman noise weights, and the per-scene epoch map.
type TrackOptions struct {
	HistoryLength         int
	MaxIdleEpochs         uint64
	Constraints           *epoch.Constraints
	KalmanPositionWeight  float64
	KalmanVelocityWeight  float64
	EpochDB               *epoch.DB
}

// BoxFilter builds the Kalman filter these options describe.
func (o *TrackOptions) BoxFilter() *kalman.BoxFilter {
	return kalman.NewBoxFilter(o.KalmanPositionWeight, o.KalmanVelocityWeight)
}

// VisualSortOptions is the recognized-option builder for
// VisualSortTracker.New, mirroring the construction surface's named fields.
type VisualSortOptions struct {
	Shards      int
	MaxIdleEpochs                           uint64
	KeptHistoryLength                       int
	VisualMetric                            VisualMetricType
	PositionalMetric                        PositionalMetricType
	VisualMinimalTrackLength                int
	VisualMinimalArea                       float64
	VisualMinimalQualityUse                 float64
	VisualMinimalQualityCollect             float64
	VisualMaxObservations                   int
	VisualMinVotes                          int
	VisualMinimalOwnAreaPercentageUse        float64
	VisualMinimalOwnAreaPercentageCollect     float64
	PositionalMinConfidence                 float64
	SpatioTemporalConstraints                []epoch.Constraint
	KalmanPositionWeight                    float64
	KalmanVelocityWeight                    float64
	AutoWastePeriod                         int
}

// NewVisualSortOptions returns a VisualSortOptions populated with the
// construction surface's documented defaults.
func NewVisualSortOptions(shards int) *VisualSortOptions {
	return &VisualSortOptions{
		Shards:                   shards,
		MaxIdleEpochs:            10,
		KeptHistoryLength:        10,
		VisualMetric:             Euclidean(DefaultEuclideanThreshold),
		PositionalMetric:         IoU(DefaultVisualIoUThreshold),
		VisualMinimalTrackLength: 3,
		VisualMinimalArea:        0,
		VisualMinimalQualityUse:  0,
		VisualMinimalQualityCollect: 0,
		VisualMaxObservations:    25,
		VisualMinVotes:           1,
		VisualMinimalOwnAreaPercentageUse:    0,
		VisualMinimalOwnAreaPercentageCollect: 0,
		PositionalMinConfidence:  DefaultMinConfidence,
		KalmanPositionWeight:     kalman.DefaultPositionWeight,
		KalmanVelocityWeight:     kalman.DefaultVelocityWeight,
		AutoWastePeriod:          DefaultAutoWastePeriod,
	}
}
