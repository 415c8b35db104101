package consensusstatemanager

import (
	"fmt"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
	"github.com/pkg/errors"
)

// resolveBlockStatus resolves the status of the given block and all of its
// not-yet-resolved selected parent chain ancestors, from the earliest ancestor
// towards the given block. A block whose UTXO verification fails is marked
// StatusDisqualifiedFromChain, and so are all the chain blocks above it.
func (csm *consensusStateManager) resolveBlockStatus(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (externalapi.BlockStatus, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, fmt.Sprintf("resolveBlockStatus for %s", blockHash))
	defer onEnd()

	log.Tracef("Getting a list of all blocks in the selected "+
		"parent chain of %s that have not yet resolved their status", blockHash)
	unverifiedBlocks, err := csm.getUnverifiedChainBlocks(stagingArea, blockHash)
	if err != nil {
		return 0, err
	}
	log.Tracef("Got %d unverified blocks in the selected parent "+
		"chain of %s: %s", len(unverifiedBlocks), blockHash, unverifiedBlocks)

	// If there are no unverified blocks, the status of the given block is
	// already resolved
	if len(unverifiedBlocks) == 0 {
		log.Tracef("There are no unverified blocks in the selected parent chain of %s. "+
			"This means its status is already resolved, so it is simply returned", blockHash)
		return csm.blockStatusStore.Get(csm.databaseContext, stagingArea, blockHash)
	}

	selectedParentStatus, err := csm.findSelectedParentStatus(stagingArea, unverifiedBlocks)
	if err != nil {
		return 0, err
	}

	// Resolve the unverified blocks in opposite order: from the earliest
	// chain ancestor towards the given block
	var blockStatus externalapi.BlockStatus
	for i := len(unverifiedBlocks) - 1; i >= 0; i-- {
		unverifiedBlockHash := unverifiedBlocks[i]

		if selectedParentStatus == externalapi.StatusDisqualifiedFromChain {
			blockStatus = externalapi.StatusDisqualifiedFromChain
		} else {
			isResolveTip := i == 0
			blockStatus, err = csm.resolveSingleBlockStatus(stagingArea, unverifiedBlockHash, isResolveTip)
			if err != nil {
				return 0, err
			}
		}

		csm.blockStatusStore.Stage(stagingArea, unverifiedBlockHash, blockStatus)
		selectedParentStatus = blockStatus
		log.Debugf("Block %s status resolved to `%s`", unverifiedBlockHash, blockStatus)
	}

	return blockStatus, nil
}

// findSelectedParentStatus returns the status of the selected parent of the
// earliest block in the given unverifiedBlocks chain
func (csm *consensusStateManager) findSelectedParentStatus(stagingArea *model.StagingArea,
	unverifiedBlocks []*externalapi.DomainHash) (externalapi.BlockStatus, error) {

	lastUnverifiedBlock := unverifiedBlocks[len(unverifiedBlocks)-1]
	if lastUnverifiedBlock.Equal(csm.genesisHash) {
		log.Tracef("The earliest unverified block is the genesis, "+
			"which by definition has a UTXO valid selected parent. Returning %s", externalapi.StatusUTXOValid)
		return externalapi.StatusUTXOValid, nil
	}

	lastUnverifiedBlockGHOSTDAGData, err := csm.ghostdagDataStore.Get(csm.databaseContext, stagingArea, lastUnverifiedBlock)
	if err != nil {
		return 0, err
	}
	return csm.blockStatusStore.Get(csm.databaseContext, stagingArea, lastUnverifiedBlockGHOSTDAGData.SelectedParent())
}

// getUnverifiedChainBlocks returns all the blocks in the selected parent chain of
// the given block whose status is still pending verification, ordered from the
// given block down towards its earliest such ancestor
func (csm *consensusStateManager) getUnverifiedChainBlocks(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	log.Tracef("getUnverifiedChainBlocks start for block %s", blockHash)
	defer log.Tracef("getUnverifiedChainBlocks end for block %s", blockHash)

	var unverifiedBlocks []*externalapi.DomainHash
	currentHash := blockHash
	for {
		currentBlockStatus, err := csm.blockStatusStore.Get(csm.databaseContext, stagingArea, currentHash)
		if err != nil {
			return nil, err
		}
		if currentBlockStatus != externalapi.StatusUTXOPendingVerification {
			log.Tracef("Block %s has status %s. Returning all the unverified blocks prior to it",
				currentHash, currentBlockStatus)
			return unverifiedBlocks, nil
		}

		unverifiedBlocks = append(unverifiedBlocks, currentHash)

		if currentHash.Equal(csm.genesisHash) {
			log.Tracef("Reached the genesis. Returning all the unverified blocks")
			return unverifiedBlocks, nil
		}

		currentBlockGHOSTDAGData, err := csm.ghostdagDataStore.Get(csm.databaseContext, stagingArea, currentHash)
		if err != nil {
			return nil, err
		}

		currentHash = currentBlockGHOSTDAGData.SelectedParent()
	}
}

func (csm *consensusStateManager) resolveSingleBlockStatus(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, isResolveTip bool) (externalapi.BlockStatus, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, fmt.Sprintf("resolveSingleBlockStatus for %s", blockHash))
	defer onEnd()

	log.Tracef("Calculating pastUTXO, acceptance data, and multiset for block %s", blockHash)
	pastUTXODiff, acceptanceData, multiset, err := csm.CalculatePastUTXOAndAcceptanceData(stagingArea, blockHash)
	if err != nil {
		return 0, err
	}

	log.Tracef("Staging the calculated acceptance data of block %s", blockHash)
	csm.acceptanceDataStore.Stage(stagingArea, blockHash, acceptanceData)

	block, err := csm.blockStore.Block(csm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return 0, err
	}

	log.Tracef("Verifying the UTXO of block %s", blockHash)
	err = csm.verifyUTXO(stagingArea, block, blockHash, pastUTXODiff, acceptanceData, multiset)
	if err != nil {
		if errors.As(err, &(ruleerrors.RuleError{})) {
			log.Debugf("UTXO verification for block %s failed: %s", blockHash, err)
			return externalapi.StatusDisqualifiedFromChain, nil
		}
		return 0, err
	}
	log.Debugf("UTXO verification for block %s passed", blockHash)

	log.Tracef("Staging the multiset of block %s", blockHash)
	csm.multisetStore.Stage(stagingArea, blockHash, multiset)

	if blockHash.Equal(csm.genesisHash) {
		log.Tracef("Staging the diff of the genesis, held directly against the virtual")
		err = csm.stageDiff(stagingArea, blockHash, pastUTXODiff, nil)
		if err != nil {
			return 0, err
		}
		return externalapi.StatusUTXOValid, nil
	}

	if isResolveTip {
		err = csm.stageTipDiff(stagingArea, blockHash, pastUTXODiff)
	} else {
		err = csm.stageChainBlockDiff(stagingArea, blockHash, pastUTXODiff)
	}
	if err != nil {
		return 0, err
	}

	return externalapi.StatusUTXOValid, nil
}

// stageTipDiff stages the UTXO diff of a newly resolved chain tip. If the tip is
// about to become the new virtual selected parent, it takes over holding its diff
// directly against the virtual, and the old selected tip is re-staged relative to
// it. Otherwise the tip is staged relative to the current selected tip.
func (csm *consensusStateManager) stageTipDiff(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, pastUTXODiff externalapi.UTXODiff) error {

	oldSelectedTip, err := csm.virtualSelectedParent(stagingArea)
	if err != nil {
		return err
	}

	newSelectedTip, err := csm.ghostdagManager.ChooseSelectedParent(stagingArea, blockHash, oldSelectedTip)
	if err != nil {
		return err
	}
	isNewSelectedTip := blockHash.Equal(newSelectedTip)

	oldSelectedTipUTXODiff, err := csm.restorePastUTXO(stagingArea, oldSelectedTip)
	if err != nil {
		return err
	}

	if isNewSelectedTip {
		log.Debugf("Block %s is the new selected tip, so the old selected tip %s is re-staged relative to it",
			blockHash, oldSelectedTip)
		oldSelectedTipDiff, err := pastUTXODiff.DiffFrom(oldSelectedTipUTXODiff)
		if err != nil {
			return err
		}
		err = csm.stageDiff(stagingArea, oldSelectedTip, oldSelectedTipDiff, blockHash)
		if err != nil {
			return err
		}

		return csm.stageDiff(stagingArea, blockHash, pastUTXODiff, nil)
	}

	log.Debugf("Block %s is not the new selected tip, so it is staged relative to the selected tip %s",
		blockHash, oldSelectedTip)
	diffFromOldSelectedTip, err := oldSelectedTipUTXODiff.DiffFrom(pastUTXODiff)
	if err != nil {
		return err
	}
	return csm.stageDiff(stagingArea, blockHash, diffFromOldSelectedTip, oldSelectedTip)
}

// stageChainBlockDiff stages the UTXO diff of a resolved chain block that is not
// the tip of the resolved chain, relative to its selected parent.
func (csm *consensusStateManager) stageChainBlockDiff(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, pastUTXODiff externalapi.UTXODiff) error {

	blockGHOSTDAGData, err := csm.ghostdagDataStore.Get(csm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}
	selectedParent := blockGHOSTDAGData.SelectedParent()

	selectedParentPastUTXODiff, err := csm.restorePastUTXO(stagingArea, selectedParent)
	if err != nil {
		return err
	}
	diffFromSelectedParent, err := selectedParentPastUTXODiff.DiffFrom(pastUTXODiff)
	if err != nil {
		return err
	}
	return csm.stageDiff(stagingArea, blockHash, diffFromSelectedParent, selectedParent)
}
