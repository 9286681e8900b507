package trackcore

import "fmt"

// Track is a temporally coherent identity: a stable id, pluggable
// attributes, per-class observation lists, a pluggable metric, and the
// history of ids merged into it. It generalizes the reference tracker's
// TrackedObject (hit counters, Kalman state, per-frame step) into the
// attribute/metric plugin points SortAttributes/SortMetric and
// VisualAttributes/VisualMetric implement in the tracker package.
type Track struct {
	ID           uint64
	Attributes   TrackAttributes
	Observations map[uint64][]Observation
	Metric       ObservationMetric
	MergeHistory []uint64
	Notifier     ChangeNotifier
}

// AddObservation appends obs to the class's observation list, applies
// update to the track's attributes, then invokes the metric's Optimize
// hook. Either step may reject the call; on attribute rejection the
// observation is not appended.
func (t *Track) AddObservation(class uint64, obs Observation, update TrackAttributesUpdate) error {
	if update != nil {
		if err := update.Apply(t.Attributes); err != nil {
			return fmt.Errorf("%w: %v", ErrAttributeUpdateRejected, err)
		}
	}

	list := t.Observations[class]
	prevLen := len(list)
	list = append(list, obs)
	t.Observations[class] = list

	ptr := observationsPtr(t.Observations, class)
	if err := t.Metric.Optimize(class, t.MergeHistory, t.Attributes, ptr, prevLen, false); err != nil {
		return err
	}
	commitObservations(t.Observations, class, ptr)
	if t.Notifier != nil {
		t.Notifier.Notify("add_observation", t.ID)
	}
	return nil
}

func observationsPtr(m map[uint64][]Observation, class uint64) *[]Observation {
	list := m[class]
	ptr := &list
	return ptr
}

// commitObservations writes back a (possibly reordered/truncated) slice
// obtained from observationsPtr into the map it was derived from.
func commitObservations(m map[uint64][]Observation, class uint64, list *[]Observation) {
	m[class] = *list
}

// Merge folds other into the receiver: other's attributes must be
// compatible; on success other's observations for each requested class are
// appended and the metric's Optimize hook runs with isMerge=true. other is
// consumed — the caller must not use it after a successful merge.
func (t *Track) Merge(other *Track, classes []uint64) error {
	if !t.Attributes.Compatible(other.Attributes) {
		return ErrIncompatibleAttributes
	}
	if err := t.Attributes.Merge(other.Attributes); err != nil {
		return fmt.Errorf("%w: %v", ErrIncompatibleAttributes, err)
	}

	for _, class := range classes {
		list := t.Observations[class]
		prevLen := len(list)
		list = append(list, other.Observations[class]...)
		t.Observations[class] = list

		ptr := &list
		if err := t.Metric.Optimize(class, t.MergeHistory, t.Attributes, ptr, prevLen, true); err != nil {
			return err
		}
		commitObservations(t.Observations, class, ptr)
	}

	t.MergeHistory = append(t.MergeHistory, other.MergeHistory...)
	if t.Notifier != nil {
		t.Notifier.Notify("merge", t.ID)
	}
	return nil
}

// Distances computes the cartesian product of the receiver's and other's
// observations for class, scoring each pair via the receiver's metric, then
// applies the metric's batch postprocessing. Returns ErrIncompatibleAttributes
// if the two tracks' attributes reject each other outright.
func (t *Track) Distances(other *Track, class uint64) ([]ObservationMetricOk, error) {
	if !t.Attributes.Compatible(other.Attributes) {
		return nil, ErrIncompatibleAttributes
	}

	mine := t.Observations[class]
	theirs := other.Observations[class]

	results := make([]ObservationMetricOk, 0, len(mine)*len(theirs))
	for _, m := range mine {
		for _, o := range theirs {
			q := MetricQuery{
				Class:          class,
				CandidateAttrs: t.Attributes,
				CandidateObs:   m,
				TrackAttrs:     other.Attributes,
				TrackObs:       o,
			}
			if r := t.Metric.Metric(q); r != nil {
				r.From = t.ID
				r.To = other.ID
				results = append(results, *r)
			}
		}
	}
	return t.Metric.PostprocessDistances(results), nil
}

// Lookup evaluates pred against the track's current attributes,
// observations, and merge history.
func (t *Track) Lookup(pred LookupPredicate) bool {
	return pred(t.Attributes, t.Observations, t.MergeHistory)
}
