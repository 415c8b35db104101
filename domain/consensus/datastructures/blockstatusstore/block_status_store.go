package blockstatusstore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/lrucache"
	"github.com/pkg/errors"
)

const shardName = "BlockStatusStore"

var blockStatusesBucketName = []byte("block-statuses")

// blockStatusStore represents a store of BlockStatuses
type blockStatusStore struct {
	cache  *lrucache.LRUCache
	bucket model.DBBucket
}

// New instantiates a new BlockStatusStore
func New(prefixBucket model.DBBucket, cacheSize int) model.BlockStatusStore {
	return &blockStatusStore{
		cache:  lrucache.New(cacheSize),
		bucket: prefixBucket.Bucket(blockStatusesBucketName),
	}
}

// Stage stages the given blockStatus for the given blockHash
func (bss *blockStatusStore) Stage(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash, blockStatus externalapi.BlockStatus) {
	stagingShard := bss.stagingShard(stagingArea)
	stagingShard.toAdd[*blockHash] = blockStatus.Clone()
}

func (bss *blockStatusStore) IsStaged(stagingArea *model.StagingArea) bool {
	return bss.stagingShard(stagingArea).isStaged()
}

// Get gets the blockStatus associated with the given blockHash
func (bss *blockStatusStore) Get(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (externalapi.BlockStatus, error) {
	stagingShard := bss.stagingShard(stagingArea)

	if status, ok := stagingShard.toAdd[*blockHash]; ok {
		return status.Clone(), nil
	}

	if status, ok := bss.cache.Get(blockHash); ok {
		return status.(externalapi.BlockStatus).Clone(), nil
	}

	statusBytes, err := dbContext.Get(bss.hashAsKey(blockHash))
	if err != nil {
		return 0, err
	}

	status, err := deserializeBlockStatus(statusBytes)
	if err != nil {
		return 0, err
	}
	bss.cache.Add(blockHash, status)
	return status.Clone(), nil
}

// Exists returns true if the blockStatus for the given blockHash exists
func (bss *blockStatusStore) Exists(dbContext model.DBReader, stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	stagingShard := bss.stagingShard(stagingArea)

	if _, ok := stagingShard.toAdd[*blockHash]; ok {
		return true, nil
	}

	if bss.cache.Has(blockHash) {
		return true, nil
	}

	exists, err := dbContext.Has(bss.hashAsKey(blockHash))
	if err != nil {
		return false, err
	}

	return exists, nil
}

func serializeBlockStatus(status externalapi.BlockStatus) []byte {
	return []byte{byte(status)}
}

func deserializeBlockStatus(statusBytes []byte) (externalapi.BlockStatus, error) {
	if len(statusBytes) != 1 {
		return 0, errors.Errorf("unexpected block status length: %d", len(statusBytes))
	}
	return externalapi.BlockStatus(statusBytes[0]), nil
}

func (bss *blockStatusStore) hashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return bss.bucket.Key(hash.ByteSlice())
}
