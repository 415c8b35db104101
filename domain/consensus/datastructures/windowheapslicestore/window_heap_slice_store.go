package windowheapslicestore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/database"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/lrucachewindowheapslice"
	"github.com/pkg/errors"
)

const shardName = "WindowHeapSliceStore"

// windowHeapSliceStore caches block window heap slices in memory. It
// doesn't touch the database at all since the slices it holds can always
// be rebuilt from GHOSTDAG data.
type windowHeapSliceStore struct {
	cache *lrucachewindowheapslice.LRUCache
}

// New instantiates a new WindowHeapSliceStore
func New(cacheSize int) model.WindowHeapSliceStore {
	return &windowHeapSliceStore{
		cache: lrucachewindowheapslice.New(cacheSize),
	}
}

// Stage stages the given pairs for the given blockHash and windowSize
func (whss *windowHeapSliceStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	windowSize int, pairs []*model.BlockGHOSTDAGDataHashPair) {

	stagingShard := whss.stagingShard(stagingArea)
	stagingShard.toAdd[newShardKey(blockHash, windowSize)] = pairs
}

func (whss *windowHeapSliceStore) IsStaged(stagingArea *model.StagingArea) bool {
	return whss.stagingShard(stagingArea).isStaged()
}

// Get gets the window heap slice associated with the given blockHash and windowSize
func (whss *windowHeapSliceStore) Get(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	windowSize int) ([]*model.BlockGHOSTDAGDataHashPair, error) {

	stagingShard := whss.stagingShard(stagingArea)

	if pairs, ok := stagingShard.toAdd[newShardKey(blockHash, windowSize)]; ok {
		return pairs, nil
	}

	if pairs, ok := whss.cache.Get(blockHash, windowSize); ok {
		return pairs, nil
	}

	return nil, errors.Wrap(database.ErrNotFound, "window heap slice not found")
}
