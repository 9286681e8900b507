// Package trackcore implements a generic, multi-object track engine: a
// polymorphic track entity, a sharded concurrent store, a family of Kalman
// filters, voting engines, and the two tracker products (SORT and
// Visual-SORT) built on top of them.
//
// Error handling follows the reference tracker's constructor style
// (fmt.Errorf-wrapped sentinel errors, checked with errors.Is) rather than a
// dynamic error type: every error kind named here is a package-level
// sentinel.
package trackcore

import "errors"

// Sentinel error kinds. Pairwise errors (ErrIncompatibleAttributes,
// ErrMissingObservation) are meant to flow through a side channel so batch
// operations keep going; whole-operation errors (ErrDuplicateTrackID,
// ErrMissingTrack) are meant to fail their caller immediately. See the
// store package for how each is actually propagated.
var (
	// ErrIncompatibleAttributes is returned when a merge or distance
	// computation is rejected because the two tracks' attributes are not
	// compatible (e.g. different scene ids).
	ErrIncompatibleAttributes = errors.New("trackcore: incompatible track attributes")

	// ErrDuplicateTrackID is returned by AddTrack when the id is already
	// resident in the store.
	ErrDuplicateTrackID = errors.New("trackcore: duplicate track id")

	// ErrMissingTrack is returned by operations referencing a non-resident
	// track id.
	ErrMissingTrack = errors.New("trackcore: missing track")

	// ErrMissingObservation names a distance request against a class absent
	// from one of the two tracks. Track.Distances does not return it: a
	// missing class yields an empty result.
	ErrMissingObservation = errors.New("trackcore: missing observation class")

	// ErrSelfDistanceCalculation indicates a foreign distance was requested
	// against the track itself; treated as a programming error.
	ErrSelfDistanceCalculation = errors.New("trackcore: self distance calculation")

	// ErrAttributeUpdateRejected is returned when a TrackAttributesUpdate's
	// Apply rejects an update (e.g. inconsistent timestamps).
	ErrAttributeUpdateRejected = errors.New("trackcore: attribute update rejected")
)
