package reachabilitydatastore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/database/binaryserialization"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/lrucache"
)

const shardName = "ReachabilityDataStore"

var reachabilityDataBucketName = []byte("reachability-data")
var reachabilityReindexRootKeyName = []byte("reachability-reindex-root")

// reachabilityDataStore represents a store of ReachabilityData
type reachabilityDataStore struct {
	reachabilityDataCache        *lrucache.LRUCache
	reachabilityReindexRootCache *externalapi.DomainHash

	reachabilityDataBucket     model.DBBucket
	reachabilityReindexRootKey model.DBKey
}

// New instantiates a new ReachabilityDataStore
func New(prefixBucket model.DBBucket, cacheSize int) model.ReachabilityDataStore {
	return &reachabilityDataStore{
		reachabilityDataCache:      lrucache.New(cacheSize),
		reachabilityDataBucket:     prefixBucket.Bucket(reachabilityDataBucketName),
		reachabilityReindexRootKey: prefixBucket.Key(reachabilityReindexRootKeyName),
	}
}

// StageReachabilityData stages the given reachabilityData for the given blockHash
func (rds *reachabilityDataStore) StageReachabilityData(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, reachabilityData model.ReachabilityData) {

	stagingShard := rds.stagingShard(stagingArea)
	stagingShard.reachabilityData[*blockHash] = reachabilityData
}

// StageReachabilityReindexRoot stages the given reachabilityReindexRoot
func (rds *reachabilityDataStore) StageReachabilityReindexRoot(stagingArea *model.StagingArea,
	reachabilityReindexRoot *externalapi.DomainHash) {

	stagingShard := rds.stagingShard(stagingArea)
	stagingShard.reachabilityReindexRoot = reachabilityReindexRoot
}

func (rds *reachabilityDataStore) IsStaged(stagingArea *model.StagingArea) bool {
	return rds.stagingShard(stagingArea).isStaged()
}

// ReachabilityData returns the reachabilityData associated with the given blockHash
func (rds *reachabilityDataStore) ReachabilityData(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (model.ReachabilityData, error) {

	stagingShard := rds.stagingShard(stagingArea)

	if reachabilityData, ok := stagingShard.reachabilityData[*blockHash]; ok {
		return reachabilityData, nil
	}

	if reachabilityData, ok := rds.reachabilityDataCache.Get(blockHash); ok {
		return reachabilityData.(model.ReachabilityData), nil
	}

	reachabilityDataBytes, err := dbContext.Get(rds.reachabilityDataBlockHashAsKey(blockHash))
	if err != nil {
		return nil, err
	}

	reachabilityData, err := binaryserialization.DeserializeReachabilityData(reachabilityDataBytes)
	if err != nil {
		return nil, err
	}
	rds.reachabilityDataCache.Add(blockHash, reachabilityData)
	return reachabilityData, nil
}

// HasReachabilityData returns whether the given blockHash has reachabilityData in the store
func (rds *reachabilityDataStore) HasReachabilityData(dbContext model.DBReader, stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (bool, error) {

	stagingShard := rds.stagingShard(stagingArea)

	if _, ok := stagingShard.reachabilityData[*blockHash]; ok {
		return true, nil
	}

	if rds.reachabilityDataCache.Has(blockHash) {
		return true, nil
	}

	return dbContext.Has(rds.reachabilityDataBlockHashAsKey(blockHash))
}

// ReachabilityReindexRoot returns the current reachability reindex root
func (rds *reachabilityDataStore) ReachabilityReindexRoot(dbContext model.DBReader,
	stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {

	stagingShard := rds.stagingShard(stagingArea)

	if stagingShard.reachabilityReindexRoot != nil {
		return stagingShard.reachabilityReindexRoot, nil
	}

	if rds.reachabilityReindexRootCache != nil {
		return rds.reachabilityReindexRootCache, nil
	}

	reindexRootBytes, err := dbContext.Get(rds.reachabilityReindexRootKey)
	if err != nil {
		return nil, err
	}

	reindexRoot, err := binaryserialization.DeserializeHash(reindexRootBytes)
	if err != nil {
		return nil, err
	}
	rds.reachabilityReindexRootCache = reindexRoot
	return reindexRoot, nil
}

func (rds *reachabilityDataStore) reachabilityDataBlockHashAsKey(hash *externalapi.DomainHash) model.DBKey {
	return rds.reachabilityDataBucket.Key(hash.ByteSlice())
}
