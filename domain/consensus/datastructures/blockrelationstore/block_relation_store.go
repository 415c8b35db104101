package blockrelationstore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/database/binaryserialization"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/lrucache"
)

const shardName = "BlockRelationStore"

var blockRelationBucketName = []byte("block-relations")

// blockRelationStore represents a store of BlockRelations
type blockRelationStore struct {
	cache  *lrucache.LRUCache
	bucket model.DBBucket
}

// New instantiates a new BlockRelationStore
func New(prefixBucket model.DBBucket, cacheSize int) model.BlockRelationStore {
	return &blockRelationStore{
		cache:  lrucache.New(cacheSize),
		bucket: prefixBucket.Bucket(blockRelationBucketName),
	}
}

// StageBlockRelation stages the given blockRelations for the given blockHash
func (brs *blockRelationStore) StageBlockRelation(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, blockRelations *model.BlockRelations) {

	stagingShard := brs.stagingShard(stagingArea)
	stagingShard.toAdd[*blockHash] = blockRelations.Clone()
}

func (brs *blockRelationStore) IsStaged(stagingArea *model.StagingArea) bool {
	return brs.stagingShard(stagingArea).isStaged()
}

// BlockRelation returns the BlockRelations associated with the given blockHash
func (brs *blockRelationStore) BlockRelation(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*model.BlockRelations, error) {

	stagingShard := brs.stagingShard(stagingArea)

	if blockRelations, ok := stagingShard.toAdd[*blockHash]; ok {
		return blockRelations.Clone(), nil
	}

	if blockRelations, ok := brs.cache.Get(blockHash); ok {
		return blockRelations.(*model.BlockRelations).Clone(), nil
	}

	blockRelationsBytes, err := dbContext.Get(brs.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	blockRelations, err := binaryserialization.DeserializeBlockRelations(blockRelationsBytes)
	if err != nil {
		return nil, err
	}
	brs.cache.Add(blockHash, blockRelations)
	return blockRelations.Clone(), nil
}

// Has returns whether the given blockHash has BlockRelations in the store
func (brs *blockRelationStore) Has(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (bool, error) {

	stagingShard := brs.stagingShard(stagingArea)

	if _, ok := stagingShard.toAdd[*blockHash]; ok {
		return true, nil
	}

	if brs.cache.Has(blockHash) {
		return true, nil
	}

	return dbContext.Has(brs.hashAsKey(blockHash))
}

func (brs *blockRelationStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return brs.bucket.Key(hash.ByteSlice())
}
