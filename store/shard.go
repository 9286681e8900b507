// Package store implements the sharded, concurrent track store: tracks
// bucketed by id hash, each shard independently read/write locked, with
// parallel N×M distance computation fanned out across shards.
//
// Generalized from the reference tracker's sync.Mutex-guarded id counters
// (tracker_factory.go) and sync.Map warn-cache (utils.go) into an array of
// independently locked shards, using golang.org/x/sync/errgroup (as used
// elsewhere in the retrieval pack) for the fan-out.
package store

import (
	"sync"

	trackcore "github.com/kestrel-vision/trackcore"
)

type shard struct {
	mu     sync.RWMutex
	tracks map[uint64]*trackcore.Track
}

func newShard() *shard {
	return &shard{tracks: make(map[uint64]*trackcore.Track)}
}

func shardIndex(id uint64, numShards int) int {
	return int(id % uint64(numShards))
}
