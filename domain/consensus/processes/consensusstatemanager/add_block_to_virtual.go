package consensusstatemanager

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
)

// AddBlock submits the given block to be added to the
// current virtual. This process may result in a new virtual block
// getting created
func (csm *consensusStateManager) AddBlock(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	updateVirtual bool) (*externalapi.SelectedChainPath, externalapi.UTXODiff, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "csm.AddBlock")
	defer onEnd()

	log.Debugf("Resolving whether the block %s is the next virtual selected parent", blockHash)
	isCandidateToBeNextVirtualSelectedParent, err := csm.isCandidateToBeNextVirtualSelectedParent(stagingArea, blockHash)
	if err != nil {
		return nil, nil, err
	}

	if isCandidateToBeNextVirtualSelectedParent {
		// It's important to check for finality violation before resolving the block status, because
		// in such a case the block status should stay StatusUTXOPendingVerification and the block
		// should never be a chain block
		isViolatingFinality, shouldNotify, err := csm.isViolatingFinality(stagingArea, blockHash)
		if err != nil {
			return nil, nil, err
		}

		if isViolatingFinality {
			if shouldNotify {
				log.Warnf("Finality Violation Detected! Block %s violates finality!", blockHash)
			}
		} else {
			log.Debugf("Block %s is a candidate to be the next virtual selected parent. Resolving its status", blockHash)
			blockStatus, err := csm.resolveBlockStatus(stagingArea, blockHash)
			if err != nil {
				return nil, nil, err
			}
			log.Debugf("Block %s resolved to status `%s`", blockHash, blockStatus)
		}
	} else {
		log.Debugf("Block %s is not the next virtual selected parent, "+
			"therefore its status remains `%s`", blockHash, externalapi.StatusUTXOPendingVerification)
	}

	log.Debugf("Adding block %s to the DAG tips", blockHash)
	newTips, err := csm.addTip(stagingArea, blockHash)
	if err != nil {
		return nil, nil, err
	}
	log.Debugf("After adding %s, the new tips are %s", blockHash, newTips)

	if !updateVirtual {
		log.Debugf("The virtual is not updated after adding block %s", blockHash)
		return nil, nil, nil
	}

	log.Debugf("Updating the virtual with the new tips")
	return csm.updateVirtual(stagingArea, blockHash, newTips)
}

func (csm *consensusStateManager) isCandidateToBeNextVirtualSelectedParent(
	stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {

	if blockHash.Equal(csm.genesisHash) {
		// Genesis is the only candidate when it's the only block in the DAG
		return true, nil
	}

	virtualSelectedParent, err := csm.virtualSelectedParent(stagingArea)
	if err != nil {
		return false, err
	}

	nextVirtualSelectedParent, err := csm.ghostdagManager.ChooseSelectedParent(
		stagingArea, blockHash, virtualSelectedParent)
	if err != nil {
		return false, err
	}

	return blockHash.Equal(nextVirtualSelectedParent), nil
}

func (csm *consensusStateManager) addTip(stagingArea *model.StagingArea, newTipHash *externalapi.DomainHash) (
	newTips []*externalapi.DomainHash, err error) {

	log.Debugf("addTip start for new tip %s", newTipHash)
	defer log.Debugf("addTip end for new tip %s", newTipHash)

	newTips, err = csm.calculateNewTips(stagingArea, newTipHash)
	if err != nil {
		return nil, err
	}

	csm.consensusStateStore.StageTips(stagingArea, newTips)
	log.Debugf("Staged the new tips %s", newTips)

	return newTips, nil
}

func (csm *consensusStateManager) calculateNewTips(
	stagingArea *model.StagingArea, newTipHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {

	log.Debugf("calculateNewTips start for new tip %s", newTipHash)
	defer log.Debugf("calculateNewTips end for new tip %s", newTipHash)

	if newTipHash.Equal(csm.genesisHash) {
		log.Debugf("The new tip is the genesis block, therefore it is the only tip by definition")
		return []*externalapi.DomainHash{newTipHash}, nil
	}

	currentTips, err := csm.consensusStateStore.Tips(stagingArea, csm.databaseContext)
	if err != nil {
		return nil, err
	}
	log.Debugf("The current tips are: %s", currentTips)

	newTipParents, err := csm.dagTopologyManager.Parents(stagingArea, newTipHash)
	if err != nil {
		return nil, err
	}
	log.Debugf("The parents of the new tip are: %s", newTipParents)

	newTips := []*externalapi.DomainHash{newTipHash}

	for _, currentTip := range currentTips {
		isCurrentTipInNewTipParents := false
		for _, newTipParent := range newTipParents {
			if currentTip.Equal(newTipParent) {
				isCurrentTipInNewTipParents = true
				break
			}
		}
		if !isCurrentTipInNewTipParents {
			newTips = append(newTips, currentTip)
		}
	}
	log.Debugf("The calculated new tips are: %s", newTips)

	return newTips, nil
}
