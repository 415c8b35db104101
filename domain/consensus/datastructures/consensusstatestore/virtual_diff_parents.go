package consensusstatestore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/database/binaryserialization"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

var virtualDiffParentsKeyName = []byte("virtual-diff-parents")

func (css *consensusStateStore) VirtualDiffParents(dbContext model.DBReader, stagingArea *model.StagingArea) ([]*externalapi.DomainHash, error) {
	stagingShard := css.stagingShard(stagingArea)

	if stagingShard.virtualDiffParentsStaging != nil {
		return externalapi.CloneHashes(stagingShard.virtualDiffParentsStaging), nil
	}

	if css.virtualDiffParentsCache != nil {
		return externalapi.CloneHashes(css.virtualDiffParentsCache), nil
	}

	virtualDiffParentsBytes, err := dbContext.Get(css.virtualDiffParentsKey)
	if err != nil {
		return nil, err
	}

	virtualDiffParents, err := binaryserialization.DeserializeHashes(virtualDiffParentsBytes)
	if err != nil {
		return nil, err
	}
	css.virtualDiffParentsCache = virtualDiffParents
	return externalapi.CloneHashes(virtualDiffParents), nil
}

func (css *consensusStateStore) StageVirtualDiffParents(stagingArea *model.StagingArea, virtualDiffParents []*externalapi.DomainHash) {
	stagingShard := css.stagingShard(stagingArea)

	stagingShard.virtualDiffParentsStaging = externalapi.CloneHashes(virtualDiffParents)
}

func (csss *consensusStateStagingShard) commitVirtualDiffParents(dbTx model.DBTransaction) error {
	if csss.virtualDiffParentsStaging == nil {
		return nil
	}

	virtualDiffParentsBytes := binaryserialization.SerializeHashes(csss.virtualDiffParentsStaging)
	err := dbTx.Put(csss.store.virtualDiffParentsKey, virtualDiffParentsBytes)
	if err != nil {
		return err
	}

	csss.store.virtualDiffParentsCache = csss.virtualDiffParentsStaging
	return nil
}
