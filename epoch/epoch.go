// Package epoch implements the per-scene logical clock (the "Epoch DB") and
// the spatio-temporal constraint table the VisualSort tracker uses to reject
// stale-looking matches.
//
// Grounded on the reference tracker's sync.RWMutex-guarded counter pattern
// (camera_motion.go's frame counter, adapted rather than copied since the
// reference tracker never sharded its clock per scene).
package epoch

import "sync"

// DB is a per-scene monotonic counter, created implicitly on first access to
// a scene and never destroyed within a process.
type DB struct {
	mu     sync.RWMutex
	epochs map[uint64]uint64
}

// NewDB returns an empty epoch database.
func NewDB() *DB {
	return &DB{epochs: make(map[uint64]uint64)}
}

// NextEpoch advances scene's epoch by one and returns the new value.
func (d *DB) NextEpoch(scene uint64) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.epochs[scene]++
	return d.epochs[scene]
}

// CurrentEpoch returns scene's epoch without advancing it. An unseen scene
// reports 0.
func (d *DB) CurrentEpoch(scene uint64) uint64 {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.epochs[scene]
}

// SkipEpochs advances scene's epoch by n (used to drain a tracker at stream
// end without feeding it empty frames one at a time).
func (d *DB) SkipEpochs(scene uint64, n uint64) uint64 {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.epochs[scene] += n
	return d.epochs[scene]
}

// Baked applies the standard idle-budget lifecycle rule: Wasted if the track
// has gone silent for more than maxIdleEpochs, Pending otherwise.
func (d *DB) Baked(scene uint64, lastUpdatedEpoch, maxIdleEpochs uint64) BakedStatus {
	if lastUpdatedEpoch+maxIdleEpochs < d.CurrentEpoch(scene) {
		return Wasted
	}
	return Pending
}

// BakedStatus is the epoch-driven half of a track's lifecycle decision.
type BakedStatus int

const (
	Pending BakedStatus = iota
	Wasted
)
