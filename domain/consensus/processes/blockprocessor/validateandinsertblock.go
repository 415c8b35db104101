package blockprocessor

import (
	"fmt"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/blockprocessor/blocklogger"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/staging"
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
)

func (bp *blockProcessor) validateAndInsertBlock(stagingArea *model.StagingArea, block *externalapi.DomainBlock,
	updateVirtual bool) (*externalapi.VirtualChangeSet, error) {

	blockHash := consensushashing.BlockHash(block)
	err := bp.validateBlock(stagingArea, block)
	if err != nil {
		return nil, err
	}

	bp.blockStatusStore.Stage(stagingArea, blockHash, externalapi.StatusUTXOPendingVerification)

	// Block validations passed, save whatever DAG data was
	// collected so far
	err = staging.CommitAllChanges(bp.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	insertStagingArea := model.NewStagingArea()

	// Attempt to add the block to the virtual
	selectedParentChainChanges, virtualUTXODiff, err :=
		bp.consensusStateManager.AddBlock(insertStagingArea, blockHash, updateVirtual)
	if err != nil {
		return nil, err
	}

	if updateVirtual {
		err = bp.updateReachabilityReindexRoot(insertStagingArea)
		if err != nil {
			return nil, err
		}

		// Trigger pruning, which will check if the pruning point changed
		// and move it if needed
		err = bp.pruningManager.UpdatePruningPointByVirtual(insertStagingArea)
		if err != nil {
			return nil, err
		}
	}

	err = staging.CommitAllChanges(bp.databaseContext, insertStagingArea)
	if err != nil {
		return nil, err
	}

	blocklogger.LogBlock(block)

	log.Debugf("Block %s validated and inserted", blockHash)

	if !updateVirtual {
		return nil, nil
	}

	virtualParents, err := bp.dagTopologyManager.Parents(model.NewStagingArea(), model.VirtualBlockHash)
	if err != nil {
		return nil, err
	}

	var logClosureErr error
	log.Debug(logger.NewLogClosure(func() string {
		virtualGhostDAGData, err := bp.ghostdagDataStore.Get(bp.databaseContext, model.NewStagingArea(), model.VirtualBlockHash)
		if err != nil {
			logClosureErr = err
			return fmt.Sprintf("Failed to get virtual GHOSTDAG data: %s", err)
		}
		return fmt.Sprintf("New virtual's blue score: %d. Virtual parents: %s",
			virtualGhostDAGData.BlueScore(), virtualParents)
	}))
	if logClosureErr != nil {
		return nil, logClosureErr
	}

	return &externalapi.VirtualChangeSet{
		VirtualSelectedParentChainChanges: selectedParentChainChanges,
		VirtualUTXODiff:                   virtualUTXODiff,
		VirtualParents:                    virtualParents,
	}, nil
}

func (bp *blockProcessor) updateReachabilityReindexRoot(stagingArea *model.StagingArea) error {
	virtualGHOSTDAGData, err := bp.ghostdagDataStore.Get(bp.databaseContext, stagingArea, model.VirtualBlockHash)
	if err != nil {
		return err
	}

	return bp.reachabilityManager.UpdateReindexRoot(stagingArea, virtualGHOSTDAGData.SelectedParent())
}
