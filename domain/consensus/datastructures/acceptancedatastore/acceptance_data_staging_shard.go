package acceptancedatastore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/database/binaryserialization"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

type acceptanceDataStagingShard struct {
	store    *acceptanceDataStore
	toAdd    map[externalapi.DomainHash]externalapi.AcceptanceData
	toDelete map[externalapi.DomainHash]struct{}
}

func (ads *acceptanceDataStore) stagingShard(stagingArea *model.StagingArea) *acceptanceDataStagingShard {
	return stagingArea.GetOrCreateShard(shardName, func() model.StagingShard {
		return &acceptanceDataStagingShard{
			store:    ads,
			toAdd:    make(map[externalapi.DomainHash]externalapi.AcceptanceData),
			toDelete: make(map[externalapi.DomainHash]struct{}),
		}
	}).(*acceptanceDataStagingShard)
}

func (adss *acceptanceDataStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, acceptanceData := range adss.toAdd {
		acceptanceDataBytes, err := binaryserialization.SerializeAcceptanceData(acceptanceData)
		if err != nil {
			return err
		}
		err = dbTx.Put(adss.store.hashAsKey(&hash), acceptanceDataBytes)
		if err != nil {
			return err
		}
		adss.store.cache.Add(&hash, acceptanceData)
	}

	for hash := range adss.toDelete {
		err := dbTx.Delete(adss.store.hashAsKey(&hash))
		if err != nil {
			return err
		}
		adss.store.cache.Remove(&hash)
	}

	return nil
}

func (adss *acceptanceDataStagingShard) isStaged() bool {
	return len(adss.toAdd) != 0 || len(adss.toDelete) != 0
}
