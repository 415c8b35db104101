package reachabilitydatastore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/database/binaryserialization"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

type reachabilityDataStagingShard struct {
	store                   *reachabilityDataStore
	reachabilityData        map[externalapi.DomainHash]model.ReachabilityData
	reachabilityReindexRoot *externalapi.DomainHash
}

func (rds *reachabilityDataStore) stagingShard(stagingArea *model.StagingArea) *reachabilityDataStagingShard {
	return stagingArea.GetOrCreateShard(shardName, func() model.StagingShard {
		return &reachabilityDataStagingShard{
			store:                   rds,
			reachabilityData:        make(map[externalapi.DomainHash]model.ReachabilityData),
			reachabilityReindexRoot: nil,
		}
	}).(*reachabilityDataStagingShard)
}

func (rdss *reachabilityDataStagingShard) Commit(dbTx model.DBTransaction) error {
	if rdss.reachabilityReindexRoot != nil {
		reindexRootBytes := binaryserialization.SerializeHash(rdss.reachabilityReindexRoot)
		err := dbTx.Put(rdss.store.reachabilityReindexRootKey, reindexRootBytes)
		if err != nil {
			return err
		}
		rdss.store.reachabilityReindexRootCache = rdss.reachabilityReindexRoot
	}
	for hash, reachabilityData := range rdss.reachabilityData {
		serialized, err := binaryserialization.SerializeReachabilityData(reachabilityData)
		if err != nil {
			return err
		}
		err = dbTx.Put(rdss.store.reachabilityDataBlockHashAsKey(&hash), serialized)
		if err != nil {
			return err
		}
		rdss.store.reachabilityDataCache.Add(&hash, reachabilityData)
	}

	return nil
}

func (rdss *reachabilityDataStagingShard) isStaged() bool {
	return len(rdss.reachabilityData) != 0 || rdss.reachabilityReindexRoot != nil
}
