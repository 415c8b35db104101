package windowheapslicestore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

type shardKey struct {
	hash       externalapi.DomainHash
	windowSize int
}

type windowHeapSliceStagingShard struct {
	store *windowHeapSliceStore
	toAdd map[shardKey][]*model.BlockGHOSTDAGDataHashPair
}

func (whss *windowHeapSliceStore) stagingShard(stagingArea *model.StagingArea) *windowHeapSliceStagingShard {
	return stagingArea.GetOrCreateShard(shardName, func() model.StagingShard {
		return &windowHeapSliceStagingShard{
			store: whss,
			toAdd: make(map[shardKey][]*model.BlockGHOSTDAGDataHashPair),
		}
	}).(*windowHeapSliceStagingShard)
}

func newShardKey(hash *externalapi.DomainHash, windowSize int) shardKey {
	return shardKey{
		hash:       *hash,
		windowSize: windowSize,
	}
}

func (whsss *windowHeapSliceStagingShard) Commit(_ model.DBTransaction) error {
	for shardKey, pairs := range whsss.toAdd {
		whsss.store.cache.Add(&shardKey.hash, shardKey.windowSize, pairs)
	}

	return nil
}

func (whsss *windowHeapSliceStagingShard) isStaged() bool {
	return len(whsss.toAdd) != 0
}
