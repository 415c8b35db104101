package consensusstatestore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/database"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/utxo"
	"github.com/pkg/errors"
)

var utxoSetBucketName = []byte("virtual-utxo-set")

func (css *consensusStateStore) utxoKey(outpoint *externalapi.DomainOutpoint) (model.DBKey, error) {
	serializedOutpoint, err := utxo.SerializeOutpoint(outpoint)
	if err != nil {
		return nil, err
	}

	return css.utxoSetBucket.Key(serializedOutpoint), nil
}

func (css *consensusStateStore) StageVirtualUTXODiff(stagingArea *model.StagingArea, virtualUTXODiff externalapi.UTXODiff) {
	stagingShard := css.stagingShard(stagingArea)

	stagingShard.virtualUTXODiffStaging = virtualUTXODiff
}

func (csss *consensusStateStagingShard) commitVirtualUTXODiff(dbTx model.DBTransaction) error {
	if csss.virtualUTXODiffStaging == nil {
		return nil
	}

	toRemoveIterator := csss.virtualUTXODiffStaging.ToRemove().Iterator()
	defer toRemoveIterator.Close()
	for ok := toRemoveIterator.First(); ok; ok = toRemoveIterator.Next() {
		toRemoveOutpoint, _, err := toRemoveIterator.Get()
		if err != nil {
			return err
		}

		csss.store.virtualUTXOSetCache.Remove(toRemoveOutpoint)

		dbKey, err := csss.store.utxoKey(toRemoveOutpoint)
		if err != nil {
			return err
		}
		err = dbTx.Delete(dbKey)
		if err != nil {
			return err
		}
	}

	toAddIterator := csss.virtualUTXODiffStaging.ToAdd().Iterator()
	defer toAddIterator.Close()
	for ok := toAddIterator.First(); ok; ok = toAddIterator.Next() {
		toAddOutpoint, toAddEntry, err := toAddIterator.Get()
		if err != nil {
			return err
		}

		csss.store.virtualUTXOSetCache.Add(toAddOutpoint, toAddEntry)

		dbKey, err := csss.store.utxoKey(toAddOutpoint)
		if err != nil {
			return err
		}
		serializedEntry, err := utxo.SerializeUTXOEntry(toAddEntry)
		if err != nil {
			return err
		}
		err = dbTx.Put(dbKey, serializedEntry)
		if err != nil {
			return err
		}
	}

	return nil
}

func (css *consensusStateStore) UTXOByOutpoint(dbContext model.DBReader, stagingArea *model.StagingArea,
	outpoint *externalapi.DomainOutpoint) (externalapi.UTXOEntry, error) {

	stagingShard := css.stagingShard(stagingArea)

	return css.utxoByOutpointFromStagedVirtualUTXODiff(dbContext, stagingShard, outpoint)
}

func (css *consensusStateStore) utxoByOutpointFromStagedVirtualUTXODiff(dbContext model.DBReader,
	stagingShard *consensusStateStagingShard, outpoint *externalapi.DomainOutpoint) (externalapi.UTXOEntry, error) {

	if stagingShard.virtualUTXODiffStaging != nil {
		if stagingShard.virtualUTXODiffStaging.ToRemove().Contains(outpoint) {
			return nil, errors.Wrapf(database.ErrNotFound, "outpoint %s was not found", outpoint)
		}
		if utxoEntry, ok := stagingShard.virtualUTXODiffStaging.ToAdd().Get(outpoint); ok {
			return utxoEntry, nil
		}
	}

	if entry, ok := css.virtualUTXOSetCache.Get(outpoint); ok {
		return entry, nil
	}

	key, err := css.utxoKey(outpoint)
	if err != nil {
		return nil, err
	}

	serializedUTXOEntry, err := dbContext.Get(key)
	if err != nil {
		return nil, err
	}

	entry, err := utxo.DeserializeUTXOEntry(serializedUTXOEntry)
	if err != nil {
		return nil, err
	}

	css.virtualUTXOSetCache.Add(outpoint, entry)
	return entry, nil
}

func (css *consensusStateStore) HasUTXOByOutpoint(dbContext model.DBReader, stagingArea *model.StagingArea,
	outpoint *externalapi.DomainOutpoint) (bool, error) {

	stagingShard := css.stagingShard(stagingArea)

	if stagingShard.virtualUTXODiffStaging != nil {
		if stagingShard.virtualUTXODiffStaging.ToRemove().Contains(outpoint) {
			return false, nil
		}
		if _, ok := stagingShard.virtualUTXODiffStaging.ToAdd().Get(outpoint); ok {
			return true, nil
		}
	}

	if css.virtualUTXOSetCache.Has(outpoint) {
		return true, nil
	}

	key, err := css.utxoKey(outpoint)
	if err != nil {
		return false, err
	}

	return dbContext.Has(key)
}

func (css *consensusStateStore) VirtualUTXOSetIterator(dbContext model.DBReader, stagingArea *model.StagingArea) (
	externalapi.ReadOnlyUTXOSetIterator, error) {

	stagingShard := css.stagingShard(stagingArea)

	cursor, err := dbContext.Cursor(css.utxoSetBucket)
	if err != nil {
		return nil, err
	}

	mainIterator := newCursorUTXOSetIterator(cursor)
	if stagingShard.virtualUTXODiffStaging != nil {
		return utxo.IteratorWithDiff(mainIterator, stagingShard.virtualUTXODiffStaging)
	}

	return mainIterator, nil
}
