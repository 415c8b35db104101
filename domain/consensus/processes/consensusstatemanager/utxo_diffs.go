package consensusstatemanager

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

// stageDiff stages the given utxoDiff and utxoDiffChild for the given block and
// maintains the virtual diff parents set accordingly: a block with no diff child
// holds its diff against the virtual UTXO set directly, and is therefore a
// virtual diff parent.
func (csm *consensusStateManager) stageDiff(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	utxoDiff externalapi.UTXODiff, utxoDiffChild *externalapi.DomainHash) error {

	log.Tracef("stageDiff start for block %s", blockHash)
	defer log.Tracef("stageDiff end for block %s", blockHash)

	log.Tracef("Staging block %s as the diff child of %s", utxoDiffChild, blockHash)
	csm.utxoDiffStore.Stage(stagingArea, blockHash, utxoDiff, utxoDiffChild)

	if utxoDiffChild == nil {
		log.Tracef("Adding block %s to the virtual diff parents", blockHash)
		return csm.addToVirtualDiffParents(stagingArea, blockHash)
	}

	log.Tracef("Removing block %s from the virtual diff parents", blockHash)
	return csm.removeFromVirtualDiffParents(stagingArea, blockHash)
}

func (csm *consensusStateManager) addToVirtualDiffParents(
	stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {

	log.Tracef("addToVirtualDiffParents start for block %s", blockHash)
	defer log.Tracef("addToVirtualDiffParents end for block %s", blockHash)

	// The virtual diff parents collection is not yet initialized when the
	// genesis is resolved
	var oldVirtualDiffParents []*externalapi.DomainHash
	if !blockHash.Equal(csm.genesisHash) {
		var err error
		oldVirtualDiffParents, err = csm.consensusStateStore.VirtualDiffParents(csm.databaseContext, stagingArea)
		if err != nil {
			return err
		}
	}

	for _, virtualDiffParent := range oldVirtualDiffParents {
		if virtualDiffParent.Equal(blockHash) {
			log.Tracef("Block %s is already a virtual diff parent, so there's no need to add it", blockHash)
			return nil
		}
	}

	newVirtualDiffParents := append([]*externalapi.DomainHash{blockHash}, oldVirtualDiffParents...)
	csm.consensusStateStore.StageVirtualDiffParents(stagingArea, newVirtualDiffParents)
	return nil
}

func (csm *consensusStateManager) removeFromVirtualDiffParents(
	stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {

	log.Tracef("removeFromVirtualDiffParents start for block %s", blockHash)
	defer log.Tracef("removeFromVirtualDiffParents end for block %s", blockHash)

	oldVirtualDiffParents, err := csm.consensusStateStore.VirtualDiffParents(csm.databaseContext, stagingArea)
	if err != nil {
		return err
	}

	// Note that blockHash is not guaranteed to be among the old virtual diff
	// parents. Blocks resolved for the first time receive a diff child right
	// away without ever having held a diff against the virtual.
	newVirtualDiffParents := make([]*externalapi.DomainHash, 0, len(oldVirtualDiffParents))
	for _, virtualDiffParent := range oldVirtualDiffParents {
		if !virtualDiffParent.Equal(blockHash) {
			newVirtualDiffParents = append(newVirtualDiffParents, virtualDiffParent)
		}
	}

	csm.consensusStateStore.StageVirtualDiffParents(stagingArea, newVirtualDiffParents)
	return nil
}
