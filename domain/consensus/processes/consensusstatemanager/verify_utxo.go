package consensusstatemanager

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/merkle"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/transactionhelper"
	"github.com/pkg/errors"
)

// verifyUTXO verifies that the given block's header commitments match the UTXO
// state its past resolves to, and that its own transactions are valid against
// that state.
func (csm *consensusStateManager) verifyUTXO(stagingArea *model.StagingArea, block *externalapi.DomainBlock,
	blockHash *externalapi.DomainHash, pastUTXODiff externalapi.UTXODiff, acceptanceData externalapi.AcceptanceData,
	multiset model.Multiset) error {

	log.Tracef("verifyUTXO start for block %s", blockHash)
	defer log.Tracef("verifyUTXO end for block %s", blockHash)

	log.Tracef("Validating UTXO commitment for block %s", blockHash)
	err := csm.validateUTXOCommitment(block, blockHash, multiset)
	if err != nil {
		return err
	}
	log.Tracef("UTXO commitment validation passed for block %s", blockHash)

	log.Tracef("Validating acceptedIDMerkleRoot for block %s", blockHash)
	err = csm.validateAcceptedIDMerkleRoot(stagingArea, block, blockHash, acceptanceData)
	if err != nil {
		return err
	}
	log.Tracef("AcceptedIDMerkleRoot validation passed for block %s", blockHash)

	coinbaseTransaction := block.Transactions[transactionhelper.CoinbaseTransactionIndex]
	log.Tracef("Validating coinbase transaction %s for block %s",
		consensushashing.TransactionID(coinbaseTransaction), blockHash)
	err = csm.validateCoinbaseTransaction(stagingArea, blockHash, coinbaseTransaction)
	if err != nil {
		return err
	}
	log.Tracef("Coinbase transaction validation passed for block %s", blockHash)

	log.Tracef("Validating transactions of block %s against its past UTXO", blockHash)
	err = csm.validateBlockTransactionsAgainstPastUTXO(stagingArea, block, blockHash, pastUTXODiff)
	if err != nil {
		return err
	}
	log.Tracef("Transactions of block %s against its past UTXO passed validation", blockHash)

	return nil
}

func (csm *consensusStateManager) validateUTXOCommitment(
	block *externalapi.DomainBlock, blockHash *externalapi.DomainHash, multiset model.Multiset) error {

	multisetHash := multiset.Hash()
	if !block.Header.UTXOCommitment().Equal(multisetHash) {
		return errors.Wrapf(ruleerrors.ErrBadUTXOCommitment, "block %s UTXO commitment is invalid - block "+
			"header indicates %s, but calculated value is %s", blockHash, block.Header.UTXOCommitment(), multisetHash)
	}

	return nil
}

func (csm *consensusStateManager) validateAcceptedIDMerkleRoot(stagingArea *model.StagingArea,
	block *externalapi.DomainBlock, blockHash *externalapi.DomainHash, acceptanceData externalapi.AcceptanceData) error {

	calculatedAcceptedIDMerkleRoot, err := csm.calculateAcceptedIDMerkleRoot(stagingArea, blockHash, acceptanceData)
	if err != nil {
		return err
	}
	if !block.Header.AcceptedIDMerkleRoot().Equal(calculatedAcceptedIDMerkleRoot) {
		return errors.Wrapf(ruleerrors.ErrBadAcceptedIDMerkleRoot, "block %s accepted ID merkle root is invalid - "+
			"block header indicates %s, but calculated value is %s",
			blockHash, block.Header.AcceptedIDMerkleRoot(), calculatedAcceptedIDMerkleRoot)
	}

	return nil
}

// calculateAcceptedIDMerkleRoot builds, for the given block, the merkle root of
// the IDs of all transactions it accepts, in acceptance order, folded together
// with the accepted ID merkle root of the block's selected parent. The genesis
// has no selected parent, so its root covers its own (empty) acceptance only.
func (csm *consensusStateManager) calculateAcceptedIDMerkleRoot(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, acceptanceData externalapi.AcceptanceData) (*externalapi.DomainHash, error) {

	var acceptedTransactions []*externalapi.DomainTransaction
	for _, blockAcceptanceData := range acceptanceData {
		for _, transactionAcceptance := range blockAcceptanceData.TransactionAcceptanceData {
			if !transactionAcceptance.IsAccepted {
				continue
			}
			acceptedTransactions = append(acceptedTransactions, transactionAcceptance.Transaction)
		}
	}

	if blockHash.Equal(csm.genesisHash) {
		return merkle.CalculateIDMerkleRoot(acceptedTransactions), nil
	}

	blockGHOSTDAGData, err := csm.ghostdagDataStore.Get(csm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	selectedParentHeader, err := csm.blockHeaderStore.BlockHeader(
		csm.databaseContext, stagingArea, blockGHOSTDAGData.SelectedParent())
	if err != nil {
		return nil, err
	}

	return merkle.CalculateAcceptedIDMerkleRoot(selectedParentHeader.AcceptedIDMerkleRoot(), acceptedTransactions), nil
}

func (csm *consensusStateManager) validateCoinbaseTransaction(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, coinbaseTransaction *externalapi.DomainTransaction) error {

	log.Tracef("validateCoinbaseTransaction start for block %s", blockHash)
	defer log.Tracef("validateCoinbaseTransaction end for block %s", blockHash)

	log.Tracef("Extracting coinbase data for coinbase transaction %s in block %s",
		consensushashing.TransactionID(coinbaseTransaction), blockHash)
	_, coinbaseData, err := csm.coinbaseManager.ExtractCoinbaseDataAndBlueScore(coinbaseTransaction)
	if err != nil {
		return err
	}

	log.Tracef("Calculating the expected coinbase transaction for the given coinbase data and block %s", blockHash)
	expectedCoinbaseTransaction, err := csm.coinbaseManager.ExpectedCoinbaseTransaction(stagingArea, blockHash, coinbaseData)
	if err != nil {
		return err
	}

	coinbaseTransactionHash := consensushashing.TransactionHash(coinbaseTransaction)
	expectedCoinbaseTransactionHash := consensushashing.TransactionHash(expectedCoinbaseTransaction)
	log.Tracef("given coinbase hash: %s, expected coinbase hash: %s",
		coinbaseTransactionHash, expectedCoinbaseTransactionHash)

	if !coinbaseTransactionHash.Equal(expectedCoinbaseTransactionHash) {
		return errors.Wrap(ruleerrors.ErrBadCoinbaseTransaction, "coinbase transaction is not built as expected")
	}

	return nil
}

// validateBlockTransactionsAgainstPastUTXO validates the block's own non-coinbase
// transactions against the UTXO state of the block's past.
func (csm *consensusStateManager) validateBlockTransactionsAgainstPastUTXO(stagingArea *model.StagingArea,
	block *externalapi.DomainBlock, blockHash *externalapi.DomainHash, pastUTXODiff externalapi.UTXODiff) error {

	log.Tracef("validateBlockTransactionsAgainstPastUTXO start for block %s", blockHash)
	defer log.Tracef("validateBlockTransactionsAgainstPastUTXO end for block %s", blockHash)

	selectedParentMedianTime, err := csm.pastMedianTimeManager.PastMedianTime(stagingArea, blockHash)
	if err != nil {
		return err
	}

	validationErrors, err := csm.validateTransactionsInParallel(
		stagingArea, block.Transactions, blockHash, pastUTXODiff, selectedParentMedianTime)
	if err != nil {
		return err
	}

	invalidTransactionCount := 0
	for i, validationError := range validationErrors {
		if validationError == nil {
			continue
		}
		invalidTransactionCount++
		log.Debugf("Transaction %s is invalid in the UTXO context of block %s: %s",
			consensushashing.TransactionID(block.Transactions[i]), blockHash, validationError)
	}
	if invalidTransactionCount > 0 {
		return errors.Wrapf(ruleerrors.ErrInvalidTransactionsInUtxoContext,
			"%d out of %d block transactions are invalid in the UTXO context of block %s",
			invalidTransactionCount, len(block.Transactions)-1, blockHash)
	}

	return nil
}
