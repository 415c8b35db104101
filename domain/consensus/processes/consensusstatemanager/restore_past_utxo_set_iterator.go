package consensusstatemanager

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/utxo"
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
)

// RestorePastUTXOSetIterator restores the given block's UTXO set and returns an
// iterator over it. Note that the block must be a UTXO-valid chain block, since
// the UTXO set of other blocks is never fully resolved
func (csm *consensusStateManager) RestorePastUTXOSetIterator(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (externalapi.ReadOnlyUTXOSetIterator, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, fmt.Sprintf("RestorePastUTXOSetIterator for %s", blockHash))
	defer onEnd()

	blockStatus, err := csm.blockStatusStore.Get(csm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	if blockStatus != externalapi.StatusUTXOValid {
		return nil, errors.Errorf(
			"block %s has status '%s', and therefore its UTXO set cannot be restored. "+
				"Only blocks with status '%s' can be restored", blockHash, blockStatus, externalapi.StatusUTXOValid)
	}

	log.Tracef("Calculating UTXO diff for block %s", blockHash)
	blockDiff, err := csm.restorePastUTXO(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}

	virtualUTXOSetIterator, err := csm.consensusStateStore.VirtualUTXOSetIterator(csm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	return utxo.IteratorWithDiff(virtualUTXOSetIterator, blockDiff)
}
