package finalitystore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/database/binaryserialization"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/lrucache"
)

const shardName = "FinalityStore"

var finalityPointsBucketName = []byte("finality-points")

type finalityStore struct {
	cache  *lrucache.LRUCache
	bucket model.DBBucket
}

// New instantiates a new FinalityStore
func New(prefixBucket model.DBBucket, cacheSize int) model.FinalityStore {
	return &finalityStore{
		cache:  lrucache.New(cacheSize),
		bucket: prefixBucket.Bucket(finalityPointsBucketName),
	}
}

func (fs *finalityStore) StageFinalityPoint(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, finalityPointHash *externalapi.DomainHash) {
	stagingShard := fs.stagingShard(stagingArea)

	stagingShard.toAdd[*blockHash] = finalityPointHash
}

func (fs *finalityStore) FinalityPoint(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	stagingShard := fs.stagingShard(stagingArea)

	if finalityPointHash, ok := stagingShard.toAdd[*blockHash]; ok {
		return finalityPointHash, nil
	}

	if finalityPointHash, ok := fs.cache.Get(blockHash); ok {
		return finalityPointHash.(*externalapi.DomainHash), nil
	}

	finalityPointHashBytes, err := dbContext.Get(fs.hashAsKey(blockHash))
	if err != nil {
		return nil, err
	}
	finalityPointHash, err := binaryserialization.DeserializeHash(finalityPointHashBytes)
	if err != nil {
		return nil, err
	}

	fs.cache.Add(blockHash, finalityPointHash)
	return finalityPointHash, nil
}

func (fs *finalityStore) IsStaged(stagingArea *model.StagingArea) bool {
	return fs.stagingShard(stagingArea).isStaged()
}

func (fs *finalityStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return fs.bucket.Key(hash.ByteSlice())
}
