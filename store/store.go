package store

import (
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"

	trackcore "github.com/kestrel-vision/trackcore"
)

// DistanceError pairs a pairwise distance failure (such as
// ErrIncompatibleAttributes) with the candidate/resident ids involved, so batch
// distance computation can report it without aborting the rest of the batch.
type DistanceError struct {
	CandidateID uint64
	ResidentID  uint64
	Err         error
}

func (e DistanceError) Error() string {
	return fmt.Sprintf("store: candidate %d vs resident %d: %v", e.CandidateID, e.ResidentID, e.Err)
}

// UsableEntry is one result of Store.FindUsable or Store.Lookup.
type UsableEntry struct {
	ID     uint64
	Status trackcore.TrackStatus
	Err    error
}

// Store owns K independently locked shards of tracks, plus the defaults new
// tracks are constructed with.
type Store struct {
	shards            []*shard
	numShards         int
	attributesFactory func() trackcore.TrackAttributes
	metric            trackcore.ObservationMetric
	notifier          trackcore.ChangeNotifier
}

// New constructs a Store with numShards shards (defaulting to GOMAXPROCS
// when <= 0), using attributesFactory/metric/notifier as defaults for
// tracks created via Add or the NewTrack* builders.
func New(numShards int, attributesFactory func() trackcore.TrackAttributes, metric trackcore.ObservationMetric, notifier trackcore.ChangeNotifier) *Store {
	if numShards <= 0 {
		numShards = runtime.GOMAXPROCS(0)
	}
	if notifier == nil {
		notifier = trackcore.NoopNotifier{}
	}
	shards := make([]*shard, numShards)
	for i := range shards {
		shards[i] = newShard()
	}
	return &Store{shards: shards, numShards: numShards, attributesFactory: attributesFactory, metric: metric, notifier: notifier}
}

func (s *Store) shardFor(id uint64) *shard {
	return s.shards[shardIndex(id, s.numShards)]
}

// NewTrackBuilder returns a builder pre-populated with the store's default
// attributes, metric, and notifier.
func (s *Store) NewTrackBuilder() *trackcore.TrackBuilder {
	return trackcore.NewTrackBuilder().
		Attributes(s.attributesFactory()).
		Metric(s.metric).
		Notifier(s.notifier)
}

// Add inserts a new observation. If id is unknown a new track is
// constructed with the store's defaults and inserted; otherwise the
// observation is forwarded to the existing track's AddObservation. Either
// way the target shard's write lock is held for the duration.
func (s *Store) Add(id uint64, class uint64, obs trackcore.Observation, update trackcore.TrackAttributesUpdate) error {
	sh := s.shardFor(id)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	if existing, ok := sh.tracks[id]; ok {
		return existing.AddObservation(class, obs, update)
	}

	t, err := s.NewTrackBuilder().ID(id).Observation(class, obs, update).Build()
	if err != nil {
		return err
	}
	sh.tracks[id] = t
	return nil
}

// AddTrack inserts a fully built track, failing with ErrDuplicateTrackID if
// its id is already resident.
func (s *Store) AddTrack(t *trackcore.Track) error {
	sh := s.shardFor(t.ID)
	sh.mu.Lock()
	defer sh.mu.Unlock()
	if _, exists := sh.tracks[t.ID]; exists {
		return trackcore.ErrDuplicateTrackID
	}
	sh.tracks[t.ID] = t
	return nil
}

func mergeHistoryOverlaps(a, b []uint64) bool {
	set := make(map[uint64]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; ok {
			return true
		}
	}
	return false
}

// ForeignTrackDistances computes distances between every candidate (not
// itself resident) and every resident track, fanned out across shards in
// parallel. When onlyOwned is true, only residents whose merge history
// overlaps the candidate's are compared (used to compute self-similarity
// for baking).
func (s *Store) ForeignTrackDistances(candidates []*trackcore.Track, class uint64, onlyOwned bool) ([]trackcore.ObservationMetricOk, []DistanceError) {
	okCh := make(chan trackcore.ObservationMetricOk, 256)
	errCh := make(chan DistanceError, 64)

	var g errgroup.Group
	for _, sh := range s.shards {
		sh := sh
		g.Go(func() error {
			sh.mu.RLock()
			defer sh.mu.RUnlock()
			for _, resident := range sh.tracks {
				for _, candidate := range candidates {
					if onlyOwned && !mergeHistoryOverlaps(candidate.MergeHistory, resident.MergeHistory) {
						continue
					}
					results, err := candidate.Distances(resident, class)
					if err != nil {
						errCh <- DistanceError{CandidateID: candidate.ID, ResidentID: resident.ID, Err: err}
						continue
					}
					for _, r := range results {
						okCh <- r
					}
				}
			}
			return nil
		})
	}

	go func() {
		_ = g.Wait()
		close(okCh)
		close(errCh)
	}()

	var oks []trackcore.ObservationMetricOk
	var errs []DistanceError
	okOpen, errOpen := true, true
	for okOpen || errOpen {
		select {
		case r, ok := <-okCh:
			if !ok {
				okOpen = false
				okCh = nil
				continue
			}
			oks = append(oks, r)
		case e, ok := <-errCh:
			if !ok {
				errOpen = false
				errCh = nil
				continue
			}
			errs = append(errs, e)
		}
	}
	return oks, errs
}

// OwnedTrackDistances computes distances between every pair drawn from ids
// where both sides are resident, skipping self-pairs.
func (s *Store) OwnedTrackDistances(ids []uint64, class uint64, onlyOwned bool) ([]trackcore.ObservationMetricOk, []DistanceError) {
	residents := make([]*trackcore.Track, 0, len(ids))
	for _, id := range ids {
		sh := s.shardFor(id)
		sh.mu.RLock()
		t, ok := sh.tracks[id]
		sh.mu.RUnlock()
		if ok {
			residents = append(residents, t)
		}
	}

	var oks []trackcore.ObservationMetricOk
	var errs []DistanceError
	for i, a := range residents {
		for j, b := range residents {
			if i == j {
				continue
			}
			if onlyOwned && !mergeHistoryOverlaps(a.MergeHistory, b.MergeHistory) {
				continue
			}
			results, err := a.Distances(b, class)
			if err != nil {
				errs = append(errs, DistanceError{CandidateID: a.ID, ResidentID: b.ID, Err: err})
				continue
			}
			oks = append(oks, results...)
		}
	}
	return oks, errs
}

// MergeExternal locks dest's shard and merges source into it. source is not
// store-resident; it is consumed by a successful merge.
func (s *Store) MergeExternal(destID uint64, source *trackcore.Track, classes []uint64) error {
	sh := s.shardFor(destID)
	sh.mu.Lock()
	defer sh.mu.Unlock()

	dest, ok := sh.tracks[destID]
	if !ok {
		return trackcore.ErrMissingTrack
	}
	return dest.Merge(source, classes)
}

// MergeOwned merges src into dst, both resident. If removeSrc is true, src
// is additionally removed from the store and returned.
func (s *Store) MergeOwned(dstID, srcID uint64, classes []uint64, removeSrc bool) (*trackcore.Track, error) {
	first, second := dstID, srcID
	if first > second {
		first, second = second, first
	}
	shFirst := s.shardFor(first)
	shFirst.mu.Lock()
	defer shFirst.mu.Unlock()

	var shSecond *shard
	if shSecond = s.shardFor(second); shSecond != shFirst {
		shSecond.mu.Lock()
		defer shSecond.mu.Unlock()
	}

	dstShard := s.shardFor(dstID)
	srcShard := s.shardFor(srcID)

	dst, ok := dstShard.tracks[dstID]
	if !ok {
		return nil, trackcore.ErrMissingTrack
	}
	src, ok := srcShard.tracks[srcID]
	if !ok {
		return nil, trackcore.ErrMissingTrack
	}

	if err := dst.Merge(src, classes); err != nil {
		return nil, err
	}

	if removeSrc {
		delete(srcShard.tracks, srcID)
		return src, nil
	}
	return nil, nil
}

// FindUsable asks every resident track's attributes for their Baked status,
// in parallel across shards, and returns the Ready and Wasted entries
// (Pending tracks are omitted).
func (s *Store) FindUsable() []UsableEntry {
	results := make(chan UsableEntry, 256)
	var g errgroup.Group
	for _, sh := range s.shards {
		sh := sh
		g.Go(func() error {
			sh.mu.RLock()
			defer sh.mu.RUnlock()
			for id, t := range sh.tracks {
				status, err := t.Attributes.Baked(t.Observations)
				if err != nil {
					results <- UsableEntry{ID: id, Err: err}
					continue
				}
				if status == trackcore.StatusPending {
					continue
				}
				results <- UsableEntry{ID: id, Status: status}
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	var out []UsableEntry
	for r := range results {
		out = append(out, r)
	}
	return out
}

// FetchTracks removes and returns the tracks for the given ids. Unknown ids
// are silently skipped.
func (s *Store) FetchTracks(ids []uint64) []*trackcore.Track {
	out := make([]*trackcore.Track, 0, len(ids))
	for _, id := range ids {
		sh := s.shardFor(id)
		sh.mu.Lock()
		if t, ok := sh.tracks[id]; ok {
			out = append(out, t)
			delete(sh.tracks, id)
		}
		sh.mu.Unlock()
	}
	return out
}

// Lookup runs pred against every resident track in parallel, returning the
// ids for which it matched.
func (s *Store) Lookup(pred trackcore.LookupPredicate) []uint64 {
	results := make(chan uint64, 256)
	var g errgroup.Group
	for _, sh := range s.shards {
		sh := sh
		g.Go(func() error {
			sh.mu.RLock()
			defer sh.mu.RUnlock()
			for id, t := range sh.tracks {
				if t.Lookup(pred) {
					results <- id
				}
			}
			return nil
		})
	}
	go func() {
		_ = g.Wait()
		close(results)
	}()

	var out []uint64
	for id := range results {
		out = append(out, id)
	}
	return out
}

// ShardStats returns the resident count of each shard.
func (s *Store) ShardStats() []int {
	stats := make([]int, s.numShards)
	for i, sh := range s.shards {
		sh.mu.RLock()
		stats[i] = len(sh.tracks)
		sh.mu.RUnlock()
	}
	return stats
}

// Clear drops every resident track from every shard.
func (s *Store) Clear() {
	for _, sh := range s.shards {
		sh.mu.Lock()
		sh.tracks = make(map[uint64]*trackcore.Track)
		sh.mu.Unlock()
	}
}

// Get returns the resident track for id, if any.
func (s *Store) Get(id uint64) (*trackcore.Track, bool) {
	sh := s.shardFor(id)
	sh.mu.RLock()
	defer sh.mu.RUnlock()
	t, ok := sh.tracks[id]
	return t, ok
}
