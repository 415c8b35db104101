package consensusstatemanager

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
)

// PopulateTransactionWithUTXOEntries populates the transaction UTXO entries with data from the virtual's UTXO set.
func (csm *consensusStateManager) PopulateTransactionWithUTXOEntries(
	stagingArea *model.StagingArea, transaction *externalapi.DomainTransaction) error {

	return csm.populateTransactionWithUTXOEntriesFromVirtualOrDiff(stagingArea, transaction, nil)
}

// populateTransactionWithUTXOEntriesFromVirtualOrDiff populates the transaction UTXO entries with data
// from the virtual's UTXO set combined with the given utxoDiff.
// If utxoDiff == nil UTXO entries are taken from the virtual's UTXO set only.
func (csm *consensusStateManager) populateTransactionWithUTXOEntriesFromVirtualOrDiff(stagingArea *model.StagingArea,
	transaction *externalapi.DomainTransaction, utxoDiff externalapi.UTXODiff) error {

	transactionID := consensushashing.TransactionID(transaction)
	log.Tracef("populateTransactionWithUTXOEntriesFromVirtualOrDiff start for transaction %s", transactionID)
	defer log.Tracef("populateTransactionWithUTXOEntriesFromVirtualOrDiff end for transaction %s", transactionID)

	var missingOutpoints []*externalapi.DomainOutpoint
	for _, transactionInput := range transaction.Inputs {
		// Skip inputs that already have a UTXO entry attached
		if transactionInput.UTXOEntry != nil {
			continue
		}

		// Check if the UTXO diff has anything to say about the input's outpoint
		if utxoDiff != nil {
			if utxoEntry, ok := utxoDiff.ToAdd().Get(&transactionInput.PreviousOutpoint); ok {
				log.Tracef("Populating outpoint %s from the given UTXO diff", &transactionInput.PreviousOutpoint)
				transactionInput.UTXOEntry = utxoEntry
				continue
			}

			if utxoDiff.ToRemove().Contains(&transactionInput.PreviousOutpoint) {
				log.Tracef("Outpoint %s is spent in the given UTXO diff", &transactionInput.PreviousOutpoint)
				missingOutpoints = append(missingOutpoints, &transactionInput.PreviousOutpoint)
				continue
			}
		}

		// Fall back to the virtual's UTXO set
		hasUTXOEntry, err := csm.consensusStateStore.HasUTXOByOutpoint(
			csm.databaseContext, stagingArea, &transactionInput.PreviousOutpoint)
		if err != nil {
			return err
		}
		if !hasUTXOEntry {
			log.Tracef("Outpoint %s is missing in the virtual UTXO set", &transactionInput.PreviousOutpoint)
			missingOutpoints = append(missingOutpoints, &transactionInput.PreviousOutpoint)
			continue
		}

		log.Tracef("Populating outpoint %s from the virtual UTXO set", &transactionInput.PreviousOutpoint)
		utxoEntry, err := csm.consensusStateStore.UTXOByOutpoint(
			csm.databaseContext, stagingArea, &transactionInput.PreviousOutpoint)
		if err != nil {
			return err
		}
		transactionInput.UTXOEntry = utxoEntry
	}

	if len(missingOutpoints) > 0 {
		return ruleerrors.NewErrMissingTxOut(missingOutpoints)
	}

	return nil
}
