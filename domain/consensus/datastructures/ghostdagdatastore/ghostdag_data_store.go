package ghostdagdatastore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/database/binaryserialization"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/lrucache"
)

const shardName = "GHOSTDAGDataStore"

var ghostdagDataBucketName = []byte("block-ghostdag-data")

// ghostdagDataStore represents a store of BlockGHOSTDAGData
type ghostdagDataStore struct {
	cache  *lrucache.LRUCache
	bucket model.DBBucket
}

// New instantiates a new GHOSTDAGDataStore
func New(prefixBucket model.DBBucket, cacheSize int) model.GHOSTDAGDataStore {
	return &ghostdagDataStore{
		cache:  lrucache.New(cacheSize),
		bucket: prefixBucket.Bucket(ghostdagDataBucketName),
	}
}

// Stage stages the given blockGHOSTDAGData for the given blockHash
func (gds *ghostdagDataStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	blockGHOSTDAGData *model.BlockGHOSTDAGData) {

	stagingShard := gds.stagingShard(stagingArea)
	stagingShard.toAdd[*blockHash] = blockGHOSTDAGData
}

func (gds *ghostdagDataStore) IsStaged(stagingArea *model.StagingArea) bool {
	return gds.stagingShard(stagingArea).isStaged()
}

// Get gets the blockGHOSTDAGData associated with the given blockHash
func (gds *ghostdagDataStore) Get(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*model.BlockGHOSTDAGData, error) {

	stagingShard := gds.stagingShard(stagingArea)

	if blockGHOSTDAGData, ok := stagingShard.toAdd[*blockHash]; ok {
		return blockGHOSTDAGData, nil
	}

	if blockGHOSTDAGData, ok := gds.cache.Get(blockHash); ok {
		return blockGHOSTDAGData.(*model.BlockGHOSTDAGData), nil
	}

	blockGHOSTDAGDataBytes, err := dbContext.Get(gds.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	blockGHOSTDAGData, err := binaryserialization.DeserializeGHOSTDAGData(blockGHOSTDAGDataBytes)
	if err != nil {
		return nil, err
	}
	gds.cache.Add(blockHash, blockGHOSTDAGData)
	return blockGHOSTDAGData, nil
}

func (gds *ghostdagDataStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return gds.bucket.Key(hash.ByteSlice())
}
