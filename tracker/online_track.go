package tracker

import "github.com/kestrel-vision/trackcore/geometry"

// OnlineTrack is one resident's per-frame snapshot, returned by predict in
// the same order as the input observations.
type OnlineTrack struct {
	ID             uint64
	CustomObjectID *int64
	VotingType     string
	Epoch          uint64
	SceneID        uint64
	ObservedBBox   *geometry.Universal2DBox
	PredictedBBox  *geometry.Universal2DBox
	Length         uint64
}

// WastedTrack is a harvested track's snapshot, additionally carrying its
// observed/predicted box histories. It has no feature history field.
type WastedTrack struct {
	OnlineTrack
	ObservedHistory  []*geometry.Universal2DBox
	PredictedHistory []*geometry.Universal2DBox
}
