package consensusstatemanager

import (
	"fmt"
	"runtime"
	"sort"
	"sync"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/multiset"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/transactionhelper"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/utxo"
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
	"github.com/pkg/errors"
)

// CalculatePastUTXOAndAcceptanceData calculates the UTXO of the given block's past, as well
// as its acceptance data and multiset. The returned UTXO diff is the given block's UTXO
// expressed as a diff from the current virtual's UTXO set.
func (csm *consensusStateManager) CalculatePastUTXOAndAcceptanceData(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (externalapi.UTXODiff, externalapi.AcceptanceData, model.Multiset, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, fmt.Sprintf("CalculatePastUTXOAndAcceptanceData for block %s", blockHash))
	defer onEnd()

	if blockHash.Equal(csm.genesisHash) {
		log.Tracef("Block %s is the genesis. By definition, "+
			"it has an empty UTXO diff, empty acceptance data, and a blank multiset", blockHash)
		return utxo.NewUTXODiff(), externalapi.AcceptanceData{}, multiset.New(), nil
	}

	blockGHOSTDAGData, err := csm.ghostdagDataStore.Get(csm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, nil, nil, err
	}

	log.Tracef("Restoring the past UTXO of block %s with selectedParent %s",
		blockHash, blockGHOSTDAGData.SelectedParent())
	selectedParentPastUTXO, err := csm.restorePastUTXO(stagingArea, blockGHOSTDAGData.SelectedParent())
	if err != nil {
		return nil, nil, nil, err
	}

	daaScore, err := csm.daaBlocksStore.DAAScore(csm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, nil, nil, err
	}

	log.Tracef("Applying the merge set of block %s to the past UTXO of its selected parent", blockHash)
	acceptanceData, utxoDiff, err := csm.applyMergeSetBlocks(
		stagingArea, blockHash, selectedParentPastUTXO, blockGHOSTDAGData, daaScore)
	if err != nil {
		return nil, nil, nil, err
	}

	log.Tracef("Calculating the multiset of block %s", blockHash)
	multiset, err := csm.calculateMultiset(stagingArea, blockHash, acceptanceData, blockGHOSTDAGData, daaScore)
	if err != nil {
		return nil, nil, nil, err
	}
	log.Tracef("The multiset of block %s resolved to: %s", blockHash, multiset.Hash())

	return utxoDiff.ToImmutable(), acceptanceData, multiset, nil
}

// restorePastUTXO restores the UTXO of the given block, expressed as a diff from
// the current virtual's UTXO set. It does so by walking down the block's UTXO diff
// child chain until a block whose diff is held against the virtual directly, then
// applying the collected diffs in reverse.
func (csm *consensusStateManager) restorePastUTXO(
	stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (externalapi.UTXODiff, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, fmt.Sprintf("restorePastUTXO for block %s", blockHash))
	defer onEnd()

	log.Tracef("Collecting UTXO diffs for block %s", blockHash)
	var utxoDiffs []externalapi.UTXODiff
	nextBlockHash := blockHash
	for {
		log.Tracef("Collecting UTXO diff for block %s", nextBlockHash)
		utxoDiff, err := csm.utxoDiffStore.UTXODiff(csm.databaseContext, stagingArea, nextBlockHash)
		if err != nil {
			return nil, err
		}
		utxoDiffs = append(utxoDiffs, utxoDiff)

		exists, err := csm.utxoDiffStore.HasUTXODiffChild(csm.databaseContext, stagingArea, nextBlockHash)
		if err != nil {
			return nil, err
		}
		if !exists {
			log.Tracef("Block %s does not have a UTXO diff child, meaning its diff is "+
				"held against the virtual. All diffs are collected", nextBlockHash)
			break
		}

		nextBlockHash, err = csm.utxoDiffStore.UTXODiffChild(csm.databaseContext, stagingArea, nextBlockHash)
		if err != nil {
			return nil, err
		}
	}

	// The diffs are applied in reverse order: from the diff held against the
	// virtual back up to the given block
	log.Tracef("Applying the collected UTXO diffs for block %s in reverse order", blockHash)
	accumulatedDiff := utxo.NewMutableUTXODiff()
	for i := len(utxoDiffs) - 1; i >= 0; i-- {
		err := accumulatedDiff.WithDiffInPlace(utxoDiffs[i])
		if err != nil {
			return nil, err
		}
	}

	return accumulatedDiff.ToImmutable(), nil
}

// mergeSetInConsensusOrder returns the merge set of the given GHOSTDAG data in
// consensus order: the selected parent first, followed by the rest of the merge
// set sorted by blue work, with the block hash as a tie breaker. Since any block
// in the past of another has strictly smaller blue work, this is a topological
// order, so transactions of a merge set block may spend outputs created by any
// merge set block that precedes it.
func (csm *consensusStateManager) mergeSetInConsensusOrder(stagingArea *model.StagingArea,
	ghostdagData *model.BlockGHOSTDAGData) ([]*externalapi.DomainHash, error) {

	mergeSet := ghostdagData.MergeSet()
	selectedParent := ghostdagData.SelectedParent()

	restOfMergeSet := make([]*externalapi.DomainHash, 0, len(mergeSet)-1)
	for _, blockHash := range mergeSet {
		if blockHash.Equal(selectedParent) {
			continue
		}
		restOfMergeSet = append(restOfMergeSet, blockHash)
	}

	restOfMergeSetGHOSTDAGData := make(map[externalapi.DomainHash]*model.BlockGHOSTDAGData, len(restOfMergeSet))
	for _, blockHash := range restOfMergeSet {
		blockGHOSTDAGData, err := csm.ghostdagDataStore.Get(csm.databaseContext, stagingArea, blockHash)
		if err != nil {
			return nil, err
		}
		restOfMergeSetGHOSTDAGData[*blockHash] = blockGHOSTDAGData
	}

	sort.Slice(restOfMergeSet, func(i, j int) bool {
		blockHashI, blockHashJ := restOfMergeSet[i], restOfMergeSet[j]
		return csm.ghostdagManager.Less(blockHashI, restOfMergeSetGHOSTDAGData[*blockHashI],
			blockHashJ, restOfMergeSetGHOSTDAGData[*blockHashJ])
	})

	return append([]*externalapi.DomainHash{selectedParent}, restOfMergeSet...), nil
}

// applyMergeSetBlocks applies all transactions in the given block's merge set, in
// consensus order, on top of the given selected parent past UTXO diff. It returns
// the block's acceptance data and its past UTXO diff.
func (csm *consensusStateManager) applyMergeSetBlocks(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash, selectedParentPastUTXODiff externalapi.UTXODiff,
	ghostdagData *model.BlockGHOSTDAGData, daaScore uint64) (
	externalapi.AcceptanceData, externalapi.MutableUTXODiff, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, fmt.Sprintf("applyMergeSetBlocks for block %s", blockHash))
	defer onEnd()

	mergeSetHashes, err := csm.mergeSetInConsensusOrder(stagingArea, ghostdagData)
	if err != nil {
		return nil, nil, err
	}

	mergeSetBlocks, err := csm.blockStore.Blocks(csm.databaseContext, stagingArea, mergeSetHashes)
	if err != nil {
		return nil, nil, err
	}

	selectedParentMedianTime, err := csm.pastMedianTimeManager.PastMedianTime(stagingArea, blockHash)
	if err != nil {
		return nil, nil, err
	}
	log.Tracef("The past median time of block %s is: %d", blockHash, selectedParentMedianTime)

	multiblockAcceptanceData := make(externalapi.AcceptanceData, len(mergeSetBlocks))
	accumulatedUTXODiff := selectedParentPastUTXODiff.CloneMutable()
	accumulatedMass := uint64(0)

	for i, mergeSetBlock := range mergeSetBlocks {
		mergeSetBlockHash := mergeSetHashes[i]
		log.Tracef("Applying merge set block %s", mergeSetBlockHash)
		blockAcceptanceData := &externalapi.BlockAcceptanceData{
			BlockHash:                 mergeSetBlockHash,
			TransactionAcceptanceData: make([]*externalapi.TransactionAcceptanceData, len(mergeSetBlock.Transactions)),
		}
		isSelectedParent := i == 0
		log.Tracef("Is merge set block %s the selected parent: %t", mergeSetBlockHash, isSelectedParent)

		// All of the block's transactions are resolved and validated against
		// the UTXO view as it stands before this merge set block. Block body
		// validation has already rejected double spends within a block, so
		// transactions of the same block never depend on each other and may
		// be checked concurrently.
		validationErrors, err := csm.validateTransactionsInParallel(stagingArea, mergeSetBlock.Transactions,
			blockHash, accumulatedUTXODiff.ToImmutable(), selectedParentMedianTime)
		if err != nil {
			return nil, nil, err
		}

		for j, transaction := range mergeSetBlock.Transactions {
			var isAccepted bool

			transactionID := consensushashing.TransactionID(transaction)
			log.Tracef("Attempting to accept transaction %s in block %s", transactionID, mergeSetBlockHash)

			isAccepted, accumulatedMass, err = csm.maybeAcceptTransaction(
				transaction, validationErrors[j], isSelectedParent, accumulatedUTXODiff, accumulatedMass, daaScore)
			if err != nil {
				return nil, nil, err
			}
			log.Tracef("Transaction %s in block %s isAccepted: %t", transactionID, mergeSetBlockHash, isAccepted)

			var transactionInputUTXOEntries []externalapi.UTXOEntry
			if isAccepted {
				transactionInputUTXOEntries = make([]externalapi.UTXOEntry, len(transaction.Inputs))
				for k, input := range transaction.Inputs {
					transactionInputUTXOEntries[k] = input.UTXOEntry
				}
			} else {
				transactionInputUTXOEntries = []externalapi.UTXOEntry{}
			}

			blockAcceptanceData.TransactionAcceptanceData[j] = &externalapi.TransactionAcceptanceData{
				Transaction:                 transaction,
				Fee:                         transaction.Fee,
				IsAccepted:                  isAccepted,
				TransactionInputUTXOEntries: transactionInputUTXOEntries,
			}
		}
		multiblockAcceptanceData[i] = blockAcceptanceData
	}

	return multiblockAcceptanceData, accumulatedUTXODiff, nil
}

// validateTransactionsInParallel fans the given transactions out to a pool of
// worker goroutines, where each transaction is populated with UTXO entries from
// the given UTXO diff and validated against it. The returned slice holds, for
// every transaction, the rule error its validation produced, or nil if it is
// valid in the given UTXO context. The coinbase transaction is skipped, as it
// is never validated against the UTXO context.
func (csm *consensusStateManager) validateTransactionsInParallel(stagingArea *model.StagingArea,
	transactions []*externalapi.DomainTransaction, povBlockHash *externalapi.DomainHash,
	utxoDiff externalapi.UTXODiff, selectedParentMedianTime int64) ([]error, error) {

	validationErrors := make([]error, len(transactions))
	if len(transactions) <= transactionhelper.CoinbaseTransactionIndex+1 {
		return validationErrors, nil
	}

	transactionIndexChan := make(chan int, len(transactions))
	for i := transactionhelper.CoinbaseTransactionIndex + 1; i < len(transactions); i++ {
		transactionIndexChan <- i
	}
	close(transactionIndexChan)

	var wg sync.WaitGroup
	var fatalErrorMutex sync.Mutex
	var fatalError error

	workerCount := runtime.NumCPU()
	for worker := 0; worker < workerCount; worker++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for transactionIndex := range transactionIndexChan {
				err := csm.populateAndValidateTransaction(stagingArea, transactions[transactionIndex],
					povBlockHash, utxoDiff, selectedParentMedianTime)
				if err == nil {
					continue
				}
				if !errors.As(err, &(ruleerrors.RuleError{})) {
					fatalErrorMutex.Lock()
					if fatalError == nil {
						fatalError = err
					}
					fatalErrorMutex.Unlock()
					return
				}
				validationErrors[transactionIndex] = err
			}
		}()
	}
	wg.Wait()

	if fatalError != nil {
		return nil, fatalError
	}
	return validationErrors, nil
}

func (csm *consensusStateManager) populateAndValidateTransaction(stagingArea *model.StagingArea,
	transaction *externalapi.DomainTransaction, povBlockHash *externalapi.DomainHash,
	utxoDiff externalapi.UTXODiff, selectedParentMedianTime int64) error {

	err := csm.populateTransactionWithUTXOEntriesFromVirtualOrDiff(stagingArea, transaction, utxoDiff)
	if err != nil {
		return err
	}

	return csm.transactionValidator.ValidateTransactionInContextAndPopulateMassAndFee(
		stagingArea, transaction, povBlockHash, selectedParentMedianTime)
}

// maybeAcceptTransaction adds the given transaction to the accumulated UTXO diff
// if it is accepted: a coinbase transaction is accepted if and only if its block
// is the selected parent, and any other transaction is accepted if it validated
// cleanly against the UTXO context and fits within the accepted mass limit.
func (csm *consensusStateManager) maybeAcceptTransaction(transaction *externalapi.DomainTransaction,
	validationError error, isSelectedParent bool, accumulatedUTXODiff externalapi.MutableUTXODiff,
	accumulatedMassBefore uint64, blockDAAScore uint64) (isAccepted bool, accumulatedMassAfter uint64, err error) {

	accumulatedMassAfter = accumulatedMassBefore

	if transactionhelper.IsCoinBase(transaction) {
		// A coinbase is accepted only where its block is the selected parent.
		// The rewards it carries are paid by the merging block instead.
		if !isSelectedParent {
			return false, accumulatedMassBefore, nil
		}
	} else {
		if validationError != nil {
			log.Tracef("Validation failed for transaction %s: %s",
				consensushashing.TransactionID(transaction), validationError)
			return false, accumulatedMassBefore, nil
		}

		isAccepted, accumulatedMassAfter = csm.checkTransactionMass(transaction, accumulatedMassBefore)
		if !isAccepted {
			log.Tracef("Transaction %s would overflow the accepted mass limit, so it is not accepted",
				consensushashing.TransactionID(transaction))
			return false, accumulatedMassBefore, nil
		}
	}

	err = accumulatedUTXODiff.AddTransaction(transaction, blockDAAScore)
	if err != nil {
		return false, 0, err
	}

	return true, accumulatedMassAfter, nil
}

func (csm *consensusStateManager) checkTransactionMass(transaction *externalapi.DomainTransaction,
	accumulatedMassBefore uint64) (isAccepted bool, accumulatedMassAfter uint64) {

	accumulatedMassAfter = accumulatedMassBefore + transaction.Mass

	// The accumulated mass may overflow if the transaction mass is
	// high enough
	if accumulatedMassAfter < accumulatedMassBefore || accumulatedMassAfter > csm.maxBlockMass {
		return false, 0
	}

	return true, accumulatedMassAfter
}
