package tracker

import (
	"sync/atomic"

	"github.com/kestrel-vision/trackcore/epoch"
	"github.com/kestrel-vision/trackcore/store"

	trackcore "github.com/kestrel-vision/trackcore"
)

// engine is the life cycle machinery shared by SortTracker and
// VisualSortTracker: the active/wasted store pair, the epoch database, the
// auto-waste counter, and the monotonic id generator handed out on
// promotion. It owns nothing specific to either tracker's metric.
type engine struct {
	active *store.Store
	wasted *store.Store

	epochDB *epoch.DB

	autoWastePeriod  int
	autoWasteCounter int

	idCounter atomic.Uint64
}

// newEngine builds the epoch database and waste-sweep bookkeeping. Callers
// set active/wasted once their metric (which needs the engine's epoch.DB)
// has been constructed.
func newEngine(autoWastePeriod int) *engine {
	if autoWastePeriod < 1 {
		autoWastePeriod = 1
	}
	return &engine{
		epochDB:         epoch.NewDB(),
		autoWastePeriod: autoWastePeriod,
	}
}

// nextID hands out the next monotonic track id for a promoted candidate.
func (e *engine) nextID() uint64 {
	return e.idCounter.Add(1)
}

// maybeSweep runs the wasted-sweep when the auto-waste counter reaches
// zero, otherwise just decrements it.
func (e *engine) maybeSweep() {
	if e.autoWasteCounter <= 0 {
		e.sweep()
		e.autoWasteCounter = e.autoWastePeriod
		return
	}
	e.autoWasteCounter--
}

// sweep moves every active track whose attributes report Wasted into the
// wasted store.
func (e *engine) sweep() {
	wastedIDs := make([]uint64, 0)
	for _, u := range e.active.FindUsable() {
		if u.Status == trackcore.StatusWasted {
			wastedIDs = append(wastedIDs, u.ID)
		}
	}
	if len(wastedIDs) == 0 {
		return
	}
	for _, t := range e.active.FetchTracks(wastedIDs) {
		_ = e.wasted.AddTrack(t)
	}
}

// drainWasted runs a final sweep, then removes and returns every track
// currently in the wasted store.
func (e *engine) drainWasted() []*trackcore.Track {
	e.sweep()
	ids := e.wasted.Lookup(func(trackcore.TrackAttributes, map[uint64][]trackcore.Observation, []uint64) bool { return true })
	return e.wasted.FetchTracks(ids)
}

func (e *engine) clearWasted() {
	e.wasted.Clear()
}

func (e *engine) activeShardStats() []int {
	return e.active.ShardStats()
}

func (e *engine) wastedShardStats() []int {
	return e.wasted.ShardStats()
}

func (e *engine) skipEpochsForScene(scene, n uint64) {
	e.epochDB.SkipEpochs(scene, n)
	e.sweep()
}
