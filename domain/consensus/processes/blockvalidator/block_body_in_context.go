package blockvalidator

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
	"github.com/pkg/errors"
)

// ValidateBodyInContext validates block bodies in the context of the current
// consensus state
func (v *blockValidator) ValidateBodyInContext(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateBodyInContext")
	defer onEnd()

	err := v.checkParentBlockBodiesExist(stagingArea, blockHash)
	if err != nil {
		return err
	}

	err = v.checkBlockTransactionsFinalized(stagingArea, blockHash)
	if err != nil {
		return err
	}

	return nil
}

func (v *blockValidator) checkParentBlockBodiesExist(
	stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {

	header, err := v.blockHeaderStore.BlockHeader(v.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}

	for _, parent := range header.DirectParents() {
		hasBlock, err := v.blockStore.HasBlock(v.databaseContext, stagingArea, parent)
		if err != nil {
			return err
		}

		// A parent with a missing body must have been pruned, since
		// blocks are only ever inserted whole.
		if !hasBlock {
			return errors.Wrapf(ruleerrors.ErrPrunedBlock, "block %s points to pruned block %s",
				blockHash, parent)
		}
	}

	return nil
}

func (v *blockValidator) checkBlockTransactionsFinalized(
	stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {

	block, err := v.blockStore.Block(v.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}

	for _, transaction := range block.Transactions {
		err = v.transactionValidator.ValidateTransactionInContextIgnoringUTXO(stagingArea, transaction, blockHash)
		if err != nil {
			return err
		}
	}

	return nil
}
