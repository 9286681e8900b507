package trackcore

import (
	"fmt"
	"math/rand/v2"
)

// TrackBuilder constructs a Track, mirroring the reference tracker's
// builder-style TrackedObject construction. Unset fields fall back to
// sensible defaults (a no-op notifier, a random id).
type TrackBuilder struct {
	id           *uint64
	attributes   TrackAttributes
	metric       ObservationMetric
	notifier     ChangeNotifier
	observations []builderObservation
}

type builderObservation struct {
	class  uint64
	obs    Observation
	update TrackAttributesUpdate
}

// NewTrackBuilder starts a builder. Call Attributes and Metric (at minimum)
// before Build.
func NewTrackBuilder() *TrackBuilder {
	return &TrackBuilder{}
}

// ID sets an explicit track id. If never called, Build draws a random one.
func (b *TrackBuilder) ID(id uint64) *TrackBuilder {
	b.id = &id
	return b
}

// Attributes sets the track's attributes.
func (b *TrackBuilder) Attributes(attrs TrackAttributes) *TrackBuilder {
	b.attributes = attrs
	return b
}

// Metric sets the track's metric.
func (b *TrackBuilder) Metric(metric ObservationMetric) *TrackBuilder {
	b.metric = metric
	return b
}

// Notifier sets the track's change notifier; defaults to NoopNotifier.
func (b *TrackBuilder) Notifier(notifier ChangeNotifier) *TrackBuilder {
	b.notifier = notifier
	return b
}

// Observation queues an initial observation to be added once the track is
// constructed.
func (b *TrackBuilder) Observation(class uint64, obs Observation, update TrackAttributesUpdate) *TrackBuilder {
	b.observations = append(b.observations, builderObservation{class: class, obs: obs, update: update})
	return b
}

// Build constructs the track and applies any queued observations in order.
func (b *TrackBuilder) Build() (*Track, error) {
	if b.attributes == nil {
		return nil, fmt.Errorf("trackcore: track builder requires attributes")
	}
	if b.metric == nil {
		return nil, fmt.Errorf("trackcore: track builder requires a metric")
	}

	id := b.id
	var resolvedID uint64
	if id == nil {
		resolvedID = rand.Uint64()
	} else {
		resolvedID = *id
	}

	notifier := b.notifier
	if notifier == nil {
		notifier = NoopNotifier{}
	}

	t := &Track{
		ID:           resolvedID,
		Attributes:   b.attributes,
		Observations: make(map[uint64][]Observation),
		Metric:       b.metric,
		MergeHistory: []uint64{resolvedID},
		Notifier:     notifier,
	}

	for _, o := range b.observations {
		if err := t.AddObservation(o.class, o.obs, o.update); err != nil {
			return nil, err
		}
	}
	return t, nil
}
