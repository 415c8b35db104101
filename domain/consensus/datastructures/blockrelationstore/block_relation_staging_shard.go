package blockrelationstore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/database/binaryserialization"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

type blockRelationStagingShard struct {
	store *blockRelationStore
	toAdd map[externalapi.DomainHash]*model.BlockRelations
}

func (brs *blockRelationStore) stagingShard(stagingArea *model.StagingArea) *blockRelationStagingShard {
	return stagingArea.GetOrCreateShard(shardName, func() model.StagingShard {
		return &blockRelationStagingShard{
			store: brs,
			toAdd: make(map[externalapi.DomainHash]*model.BlockRelations),
		}
	}).(*blockRelationStagingShard)
}

func (brss *blockRelationStagingShard) Commit(dbTx model.DBTransaction) error {
	for hash, blockRelations := range brss.toAdd {
		serialized, err := binaryserialization.SerializeBlockRelations(blockRelations)
		if err != nil {
			return err
		}
		err = dbTx.Put(brss.store.hashAsKey(&hash), serialized)
		if err != nil {
			return err
		}
		brss.store.cache.Add(&hash, blockRelations)
	}

	return nil
}

func (brss *blockRelationStagingShard) isStaged() bool {
	return len(brss.toAdd) != 0
}
