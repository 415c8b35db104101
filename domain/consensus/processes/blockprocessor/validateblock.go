package blockprocessor

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/staging"
	"github.com/pkg/errors"
)

func (bp *blockProcessor) validateBlock(stagingArea *model.StagingArea, block *externalapi.DomainBlock) error {
	blockHash := consensushashing.BlockHash(block)
	log.Debugf("Validating block %s", blockHash)

	err := bp.checkBlockStatus(stagingArea, block)
	if err != nil {
		return err
	}

	bp.blockHeaderStore.Stage(stagingArea, blockHash, block.Header)

	// If any validation until (included) proof-of-work fails, simply
	// return an error without writing anything in the database.
	// This is to prevent spamming attacks.
	err = bp.blockValidator.ValidateHeaderInIsolation(stagingArea, blockHash)
	if err != nil {
		return err
	}

	err = bp.blockValidator.ValidatePruningPointViolationAndProofOfWorkAndDifficulty(stagingArea, blockHash)
	if err != nil {
		return err
	}

	// If in-context validations fail, save the block with status
	// StatusInvalid and discard all other changes.
	err = bp.validatePostProofOfWork(stagingArea, block)
	if err != nil {
		if errors.As(err, &ruleerrors.RuleError{}) {
			// We mark invalid blocks with status externalapi.StatusInvalid except in the
			// case of the following errors:
			// ErrMissingParents - If we got ErrMissingParents the block shouldn't be
			// considered as invalid because it could be added later on when its
			// parents are present.
			// ErrBadMerkleRoot - if we get ErrBadMerkleRoot we shouldn't mark the
			// block as invalid because later on we can get the block with
			// transactions that fits the merkle root.
			// ErrPrunedBlock - ErrPrunedBlock is an error that rejects a block body and
			// not the block as a whole, so we shouldn't mark it as invalid.
			if !errors.As(err, &ruleerrors.ErrMissingParents{}) &&
				!errors.Is(err, ruleerrors.ErrBadMerkleRoot) &&
				!errors.Is(err, ruleerrors.ErrPrunedBlock) {

				invalidStagingArea := model.NewStagingArea()
				bp.blockStatusStore.Stage(invalidStagingArea, blockHash, externalapi.StatusInvalid)
				commitErr := staging.CommitAllChanges(bp.databaseContext, invalidStagingArea)
				if commitErr != nil {
					return commitErr
				}
			}
		}
		return err
	}

	return nil
}

func (bp *blockProcessor) validatePostProofOfWork(stagingArea *model.StagingArea, block *externalapi.DomainBlock) error {
	blockHash := consensushashing.BlockHash(block)

	bp.blockStore.Stage(stagingArea, blockHash, block)
	err := bp.blockValidator.ValidateBodyInIsolation(stagingArea, blockHash)
	if err != nil {
		return err
	}

	err = bp.blockValidator.ValidateHeaderInContext(stagingArea, blockHash)
	if err != nil {
		return err
	}

	err = bp.blockValidator.ValidateBodyInContext(stagingArea, blockHash)
	if err != nil {
		return err
	}

	return nil
}

func (bp *blockProcessor) checkBlockStatus(stagingArea *model.StagingArea, block *externalapi.DomainBlock) error {
	hash := consensushashing.BlockHash(block)
	exists, err := bp.blockStatusStore.Exists(bp.databaseContext, stagingArea, hash)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}

	status, err := bp.blockStatusStore.Get(bp.databaseContext, stagingArea, hash)
	if err != nil {
		return err
	}

	if status == externalapi.StatusInvalid {
		return errors.Wrapf(ruleerrors.ErrKnownInvalid, "block %s is a known invalid block", hash)
	}

	return errors.Wrapf(ruleerrors.ErrDuplicateBlock, "block %s already exists", hash)
}
