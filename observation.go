package trackcore

import "github.com/kestrel-vision/trackcore/feature"

// Observation is one detection's contribution to a track: an optional
// positional/domain attribute and an optional appearance feature. At least
// one should be meaningful, but a fully empty observation is accepted —
// metrics are expected to ignore it.
type Observation struct {
	Attributes ObservationAttributes
	Feature    *feature.Feature
}

// NewObservation builds an Observation from an optional attribute value and
// an optional feature.
func NewObservation(attrs ObservationAttributes, feat *feature.Feature) Observation {
	return Observation{Attributes: attrs, Feature: feat}
}
