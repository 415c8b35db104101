package transactionvalidator

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/transactionhelper"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/txscript"
	"github.com/cobaltnet/cobaltd/util/txmass"
)

// transactionValidator exposes a set of validation classes, after which
// it's possible to determine whether either a transaction is valid
type transactionValidator struct {
	blockCoinbaseMaturity      uint64
	databaseContext            model.DBReader
	pastMedianTimeManager      model.PastMedianTimeManager
	daaBlocksStore             model.DAABlocksStore
	enableNonNativeSubnetworks bool
	maxCoinbasePayloadLength   uint64
	sigCache                   *txscript.SigCache
	txMassCalculator           *txmass.Calculator
}

// New instantiates a new TransactionValidator
func New(blockCoinbaseMaturity uint64,
	enableNonNativeSubnetworks bool,
	maxCoinbasePayloadLength uint64,
	databaseContext model.DBReader,
	pastMedianTimeManager model.PastMedianTimeManager,
	daaBlocksStore model.DAABlocksStore,
	sigCache *txscript.SigCache,
	txMassCalculator *txmass.Calculator) model.TransactionValidator {

	return &transactionValidator{
		blockCoinbaseMaturity:      blockCoinbaseMaturity,
		enableNonNativeSubnetworks: enableNonNativeSubnetworks,
		maxCoinbasePayloadLength:   maxCoinbasePayloadLength,
		databaseContext:            databaseContext,
		pastMedianTimeManager:      pastMedianTimeManager,
		daaBlocksStore:             daaBlocksStore,
		sigCache:                   sigCache,
		txMassCalculator:           txMassCalculator,
	}
}

func (v *transactionValidator) transactionMass(transaction *externalapi.DomainTransaction) (uint64, error) {
	if transactionhelper.IsCoinBase(transaction) {
		return 0, nil
	}

	standaloneMass := v.txMassCalculator.CalculateTransactionStandaloneMass(transaction)

	// calculate mass for SigOps
	var missingOutpoints []*externalapi.DomainOutpoint
	totalSigOpCount := uint64(0)
	for _, input := range transaction.Inputs {
		utxoEntry := input.UTXOEntry
		if utxoEntry == nil {
			missingOutpoints = append(missingOutpoints, &input.PreviousOutpoint)
			continue
		}

		isP2SH := txscript.IsPayToScriptHash(utxoEntry.ScriptPublicKey())
		sigOpCount := txscript.GetPreciseSigOpCount(input.SignatureScript, utxoEntry.ScriptPublicKey(), isP2SH)
		totalSigOpCount += uint64(sigOpCount)
	}
	if len(missingOutpoints) > 0 {
		return 0, ruleerrors.NewErrMissingTxOut(missingOutpoints)
	}
	massForSigOps := totalSigOpCount * v.txMassCalculator.MassPerSigOp()

	return standaloneMass + massForSigOps, nil
}
