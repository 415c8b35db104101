package pruningstore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/database/binaryserialization"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

type pruningStagingShard struct {
	store *pruningStore

	pruningPointByIndex              map[uint64]*externalapi.DomainHash
	currentPruningPointIndex         *uint64
	newPruningPointCandidate         *externalapi.DomainHash
	previousPruningPoint             *externalapi.DomainHash
	startUpdatingPruningPointUTXOSet bool
}

func (ps *pruningStore) stagingShard(stagingArea *model.StagingArea) *pruningStagingShard {
	return stagingArea.GetOrCreateShard(shardName, func() model.StagingShard {
		return &pruningStagingShard{
			store:               ps,
			pruningPointByIndex: make(map[uint64]*externalapi.DomainHash),
		}
	}).(*pruningStagingShard)
}

func (pss *pruningStagingShard) Commit(dbTx model.DBTransaction) error {
	for index, hash := range pss.pruningPointByIndex {
		hashCopy := hash
		err := dbTx.Put(pss.store.indexAsKey(index), binaryserialization.SerializeHash(hash))
		if err != nil {
			return err
		}
		pss.store.pruningPointByIndexCache.Add(index, hashCopy)
	}

	if pss.currentPruningPointIndex != nil {
		indexBytes := binaryserialization.SerializeUint64(*pss.currentPruningPointIndex)
		err := dbTx.Put(pss.store.currentPruningPointIndexKey, indexBytes)
		if err != nil {
			return err
		}

		if pss.store.currentPruningPointIndexCache == nil {
			pss.store.currentPruningPointIndexCache = new(uint64)
		}
		*pss.store.currentPruningPointIndexCache = *pss.currentPruningPointIndex
	}

	if pss.newPruningPointCandidate != nil {
		candidateBytes := binaryserialization.SerializeHash(pss.newPruningPointCandidate)
		err := dbTx.Put(pss.store.candidatePruningPointHashKey, candidateBytes)
		if err != nil {
			return err
		}
		pss.store.pruningPointCandidateCache = pss.newPruningPointCandidate
	}

	if pss.previousPruningPoint != nil {
		previousPruningPointBytes := binaryserialization.SerializeHash(pss.previousPruningPoint)
		err := dbTx.Put(pss.store.previousPruningPointKey, previousPruningPointBytes)
		if err != nil {
			return err
		}
		pss.store.previousPruningPointCache = pss.previousPruningPoint
	}

	if pss.startUpdatingPruningPointUTXOSet {
		err := dbTx.Put(pss.store.updatingPruningPointUTXOSetKey, []byte{0})
		if err != nil {
			return err
		}
	}

	return nil
}

func (pss *pruningStagingShard) isStaged() bool {
	return len(pss.pruningPointByIndex) != 0 ||
		pss.currentPruningPointIndex != nil ||
		pss.newPruningPointCandidate != nil ||
		pss.previousPruningPoint != nil ||
		pss.startUpdatingPruningPointUTXOSet
}
