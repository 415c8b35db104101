package blockvalidator

import (
	"math/big"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
	"github.com/cobaltnet/cobaltd/util/difficulty"
	"github.com/pkg/errors"
)

// ValidatePruningPointViolationAndProofOfWorkAndDifficulty validates the block pruning point, proof of work and
// its difficulty. As a side effect it stages the block's parent relations, GHOSTDAG data and DAA window data,
// which the difficulty calculation requires.
func (v *blockValidator) ValidatePruningPointViolationAndProofOfWorkAndDifficulty(
	stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {

	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidatePruningPointViolationAndProofOfWorkAndDifficulty")
	defer onEnd()

	header, err := v.blockHeaderStore.BlockHeader(v.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}

	err = v.checkParentHeadersExist(stagingArea, header)
	if err != nil {
		return err
	}

	err = v.dagTopologyManager.SetParents(stagingArea, blockHash, header.DirectParents())
	if err != nil {
		return err
	}

	err = v.validateDifficulty(stagingArea, blockHash)
	if err != nil {
		return err
	}

	err = v.checkPruningPointViolation(stagingArea, header)
	if err != nil {
		return err
	}

	err = v.checkProofOfWork(header)
	if err != nil {
		return err
	}

	return nil
}

func (v *blockValidator) checkParentHeadersExist(stagingArea *model.StagingArea, header externalapi.BlockHeader) error {
	missingParentHashes := []*externalapi.DomainHash{}
	for _, parent := range header.DirectParents() {
		parentExists, err := v.blockStatusStore.Exists(v.databaseContext, stagingArea, parent)
		if err != nil {
			return err
		}
		if !parentExists {
			missingParentHashes = append(missingParentHashes, parent)
			continue
		}

		parentStatus, err := v.blockStatusStore.Get(v.databaseContext, stagingArea, parent)
		if err != nil {
			return err
		}
		if parentStatus == externalapi.StatusInvalid {
			return errors.Wrapf(ruleerrors.ErrInvalidAncestorBlock, "parent %s is invalid", parent)
		}
	}

	if len(missingParentHashes) > 0 {
		return ruleerrors.NewErrMissingParents(missingParentHashes)
	}

	return nil
}

func (v *blockValidator) validateDifficulty(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {
	// We need to calculate GHOSTDAG for the block in order to check its difficulty and blue work
	err := v.ghostdagManager.GHOSTDAG(stagingArea, blockHash)
	if err != nil {
		return err
	}

	// Ensure the difficulty specified in the block header matches
	// the calculated difficulty based on the previous block and
	// difficulty retarget rules.
	expectedBits, err := v.difficultyManager.StageDAADataAndReturnRequiredDifficulty(stagingArea, blockHash)
	if err != nil {
		return err
	}

	header, err := v.blockHeaderStore.BlockHeader(v.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}
	if header.Bits() != expectedBits {
		return errors.Wrapf(ruleerrors.ErrUnexpectedDifficulty, "block difficulty of %d is not the expected value of %d",
			header.Bits(), expectedBits)
	}

	return nil
}

func (v *blockValidator) checkPruningPointViolation(stagingArea *model.StagingArea, header externalapi.BlockHeader) error {
	// check if the pruning point is on past of at least one parent of the header's parents.
	hasPruningPoint, err := v.pruningStore.HasPruningPoint(v.databaseContext, stagingArea)
	if err != nil {
		return err
	}

	// If hasPruningPoint has a false value, it means that it's the genesis - so no violation can exist.
	if !hasPruningPoint {
		return nil
	}

	pruningPoint, err := v.pruningStore.PruningPoint(v.databaseContext, stagingArea)
	if err != nil {
		return err
	}

	isAncestorOfAny, err := v.dagTopologyManager.IsAncestorOfAny(stagingArea, pruningPoint, header.DirectParents())
	if err != nil {
		return err
	}
	if !isAncestorOfAny {
		return errors.Wrapf(ruleerrors.ErrPruningPointViolation,
			"expected pruning point %s to be in block past", pruningPoint)
	}
	return nil
}

func (v *blockValidator) checkProofOfWork(header externalapi.BlockHeader) error {
	// The target difficulty must be larger than zero.
	target := difficulty.CompactToBig(header.Bits())
	if target.Sign() <= 0 {
		return errors.Wrapf(ruleerrors.ErrNegativeTarget, "block target difficulty of %064x is too low",
			target)
	}

	// The target difficulty must be less than the maximum allowed.
	if target.Cmp(v.powMax) > 0 {
		return errors.Wrapf(ruleerrors.ErrTargetTooHigh, "block target difficulty of %064x is "+
			"higher than max of %064x", target, v.powMax)
	}

	// The block hash must be less than the claimed target.
	if !v.skipPoW {
		valid := checkProofOfWorkWithTarget(header, target)
		if !valid {
			return errors.Wrap(ruleerrors.ErrInvalidPoW, "block has invalid proof of work")
		}
	}
	return nil
}

// checkProofOfWorkWithTarget check if the block has a valid PoW according to the provided target
// it does not check if the difficulty itself is valid or less than the maximum for the appropriate network
func checkProofOfWorkWithTarget(header externalapi.BlockHeader, target *big.Int) bool {
	// The block hash must be less than the claimed target.
	hash := consensushashing.HeaderHash(header)
	hashNum := difficulty.HashToBig(hash)
	return hashNum.Cmp(target) <= 0
}
