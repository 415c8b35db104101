package transactionvalidator_test

import (
	"testing"

	"github.com/kaspanet/go-secp256k1"
	"github.com/pkg/errors"

	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/constants"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/subnetworks"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/testutils"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/txscript"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/utxo"
)

type mocPastMedianTimeManager struct {
	pastMedianTimeForTest int64
}

// PastMedianTime returns the past median time for the test.
func (mdf *mocPastMedianTimeManager) PastMedianTime(*model.StagingArea, *externalapi.DomainHash) (int64, error) {
	return mdf.pastMedianTimeForTest, nil
}

func TestValidateTransactionInContextAndPopulateMassAndFee(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, tearDown, err := factory.NewTestConsensus(consensusConfig,
			"TestValidateTransactionInContextAndPopulateMassAndFee")
		if err != nil {
			t.Fatalf("Failed create a NewTestConsensus: %s", err)
		}
		defer tearDown(false)

		privateKey, err := secp256k1.GenerateSchnorrKeyPair()
		if err != nil {
			t.Fatalf("Failed to generate a private key: %v", err)
		}
		publicKey, err := privateKey.SchnorrPublicKey()
		if err != nil {
			t.Fatalf("Failed to generate a public key: %v", err)
		}
		publicKeySerialized, err := publicKey.Serialize()
		if err != nil {
			t.Fatalf("Failed to serialize public key: %v", err)
		}
		scriptPublicKey, err := txscript.PayToPublicKeyScript(publicKeySerialized[:])
		if err != nil {
			t.Fatalf("PayToPublicKeyScript: unexpected error: %v", err)
		}
		prevOutTxID := &externalapi.DomainTransactionID{}
		prevOutPoint := externalapi.DomainOutpoint{TransactionID: *prevOutTxID, Index: 1}

		txInput := externalapi.DomainTransactionInput{
			PreviousOutpoint: prevOutPoint,
			SignatureScript:  []byte{},
			Sequence:         constants.MaxTxInSequenceNum,
			UTXOEntry: utxo.NewUTXOEntry(
				100_000_000, // 1 CBT
				scriptPublicKey,
				true,
				uint64(5)),
		}
		txInputWithLargeAmount := externalapi.DomainTransactionInput{
			PreviousOutpoint: prevOutPoint,
			SignatureScript:  []byte{},
			Sequence:         constants.MaxTxInSequenceNum,
			UTXOEntry: utxo.NewUTXOEntry(
				constants.MaxAtom,
				scriptPublicKey,
				true,
				uint64(5)),
		}
		// A relative lock far past the staged virtual DAA score.
		txInputWithSequenceLock := externalapi.DomainTransactionInput{
			PreviousOutpoint: prevOutPoint,
			SignatureScript:  []byte{},
			Sequence:         consensusConfig.BlockCoinbaseMaturity + 1000,
			UTXOEntry: utxo.NewUTXOEntry(
				100_000_000, // 1 CBT
				scriptPublicKey,
				true,
				uint64(5)),
		}

		txOut := externalapi.DomainTransactionOutput{
			Value:           100_000_000, // 1 CBT
			ScriptPublicKey: scriptPublicKey,
		}
		txOutBigValue := externalapi.DomainTransactionOutput{
			Value:           200_000_000, // 2 CBT
			ScriptPublicKey: scriptPublicKey,
		}

		txInputSigned := txInput
		validTx := externalapi.DomainTransaction{
			Version:      constants.MaxTransactionVersion,
			Inputs:       []*externalapi.DomainTransactionInput{&txInputSigned},
			Outputs:      []*externalapi.DomainTransactionOutput{&txOut},
			SubnetworkID: subnetworks.SubnetworkIDNative,
			Gas:          0,
			LockTime:     0}
		txWithImmatureCoinbase := externalapi.DomainTransaction{
			Version:      constants.MaxTransactionVersion,
			Inputs:       []*externalapi.DomainTransactionInput{&txInput},
			Outputs:      []*externalapi.DomainTransactionOutput{&txOut},
			SubnetworkID: subnetworks.SubnetworkIDNative,
			Gas:          0,
			LockTime:     0}
		txWithLargeAmount := externalapi.DomainTransaction{
			Version:      constants.MaxTransactionVersion,
			Inputs:       []*externalapi.DomainTransactionInput{&txInput, &txInputWithLargeAmount},
			Outputs:      []*externalapi.DomainTransactionOutput{&txOut},
			SubnetworkID: subnetworks.SubnetworkIDNative,
			Gas:          0,
			LockTime:     0}
		txWithBigValue := externalapi.DomainTransaction{
			Version:      constants.MaxTransactionVersion,
			Inputs:       []*externalapi.DomainTransactionInput{&txInput},
			Outputs:      []*externalapi.DomainTransactionOutput{&txOutBigValue},
			SubnetworkID: subnetworks.SubnetworkIDNative,
			Gas:          0,
			LockTime:     0}
		txWithSequenceLock := externalapi.DomainTransaction{
			Version:      constants.MaxTransactionVersion,
			Inputs:       []*externalapi.DomainTransactionInput{&txInputWithSequenceLock},
			Outputs:      []*externalapi.DomainTransactionOutput{&txOut},
			SubnetworkID: subnetworks.SubnetworkIDNative,
			Gas:          0,
			LockTime:     0}
		txWithInvalidSignature := externalapi.DomainTransaction{
			Version:      constants.MaxTransactionVersion,
			Inputs:       []*externalapi.DomainTransactionInput{&txInput},
			Outputs:      []*externalapi.DomainTransactionOutput{&txOut},
			SubnetworkID: subnetworks.SubnetworkIDNative,
			Gas:          0,
			LockTime:     0}

		for i, input := range validTx.Inputs {
			signatureScript, err := txscript.SignatureScript(&validTx, i, scriptPublicKey,
				consensushashing.SigHashAll, privateKey)
			if err != nil {
				t.Fatalf("Failed to create a sigScript: %v", err)
			}
			input.SignatureScript = signatureScript
		}

		povBlockHash := externalapi.NewDomainHashFromByteArray(&[32]byte{0x01})

		// The virtual pov is far enough from the input coinbase to spend it,
		// while povBlockHash is still too close to it.
		stagingArea := model.NewStagingArea()
		tc.DAABlocksStore().StageDAAScore(stagingArea, model.VirtualBlockHash,
			consensusConfig.BlockCoinbaseMaturity+txInput.UTXOEntry.BlockDAAScore())
		tc.DAABlocksStore().StageDAAScore(stagingArea, povBlockHash, 10)

		tests := []struct {
			name                     string
			tx                       *externalapi.DomainTransaction
			povBlockHash             *externalapi.DomainHash
			selectedParentMedianTime int64
			isValid                  bool
			expectedError            error
		}{
			{
				name:                     "Valid transaction",
				tx:                       &validTx,
				povBlockHash:             model.VirtualBlockHash,
				selectedParentMedianTime: 1,
				isValid:                  true,
				expectedError:            nil,
			},
			{ // The povBlockHash DAA score is 10 and the UTXO DAA score is 5, hence the subtraction between
				// them will yield a smaller result than the required BlockCoinbaseMaturity.
				name:                     "checkTransactionCoinbaseMaturity",
				tx:                       &txWithImmatureCoinbase,
				povBlockHash:             povBlockHash,
				selectedParentMedianTime: 1,
				isValid:                  false,
				expectedError:            ruleerrors.ErrImmatureSpend,
			},
			{ // The total inputs amount is bigger than the allowed maximum (constants.MaxAtom)
				name:                     "checkTransactionInputAmounts",
				tx:                       &txWithLargeAmount,
				povBlockHash:             model.VirtualBlockHash,
				selectedParentMedianTime: 1,
				isValid:                  false,
				expectedError:            ruleerrors.ErrBadTxOutValue,
			},
			{ // The total AtomIn (sum of inputs amount) is smaller than the total AtomOut (sum of outputs value) and hence invalid.
				name:                     "checkTransactionOutputAmounts",
				tx:                       &txWithBigValue,
				povBlockHash:             model.VirtualBlockHash,
				selectedParentMedianTime: 1,
				isValid:                  false,
				expectedError:            ruleerrors.ErrSpendTooHigh,
			},
			{ // The input relative lock converts to a DAA score far past the virtual one and hence invalid.
				name:                     "checkTransactionSequenceLock",
				tx:                       &txWithSequenceLock,
				povBlockHash:             model.VirtualBlockHash,
				selectedParentMedianTime: 1,
				isValid:                  false,
				expectedError:            ruleerrors.ErrUnfinalizedTx,
			},
			{ // The SignatureScript (in the txInput) is empty and hence invalid.
				name:                     "checkTransactionScripts",
				tx:                       &txWithInvalidSignature,
				povBlockHash:             model.VirtualBlockHash,
				selectedParentMedianTime: 1,
				isValid:                  false,
				expectedError:            ruleerrors.ErrScriptValidation,
			},
		}

		for _, test := range tests {
			err := tc.TransactionValidator().ValidateTransactionInContextAndPopulateMassAndFee(stagingArea,
				test.tx, test.povBlockHash, test.selectedParentMedianTime)

			if test.isValid {
				if err != nil {
					t.Fatalf("Unexpected error on TestValidateTransactionInContextAndPopulateMassAndFee"+
						" on test %v: %v", test.name, err)
				}
			} else {
				if err == nil || !errors.Is(err, test.expectedError) {
					t.Fatalf("TestValidateTransactionInContextAndPopulateMassAndFee: test %v:"+
						" Unexpected error: Expected to: %v, but got : %v", test.name, test.expectedError, err)
				}
			}
		}
	})
}

func TestValidateTransactionInContextIgnoringUTXO(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		pastMedianManager := &mocPastMedianTimeManager{}
		factory.SetTestPastMedianTimeManager(func(int, model.DBReader, model.DAGTraversalManager,
			model.BlockHeaderStore, model.GHOSTDAGDataStore, *externalapi.DomainHash) model.PastMedianTimeManager {
			return pastMedianManager
		})
		tc, tearDown, err := factory.NewTestConsensus(consensusConfig,
			"TestValidateTransactionInContextIgnoringUTXO")
		if err != nil {
			t.Fatalf("Failed create a NewTestConsensus: %s", err)
		}
		defer tearDown(false)

		pastMedianManager.pastMedianTimeForTest = 1

		stagingArea := model.NewStagingArea()
		tc.DAABlocksStore().StageDAAScore(stagingArea, model.VirtualBlockHash, 10)

		tests := []struct {
			name     string
			lockTime uint64
			sequence uint64
			isValid  bool
		}{
			{"zero lock time", 0, 0, true},
			{"DAA score lock in the past", 5, 0, true},
			{"DAA score lock in the future", 500, 0, false},
			{"DAA score lock in the future with max sequence", 500, constants.MaxTxInSequenceNum, true},
			{"timestamp lock ahead of the past median time", constants.LockTimeThreshold + 500, 0, false},
		}

		for _, test := range tests {
			tx := &externalapi.DomainTransaction{
				Version: constants.MaxTransactionVersion,
				Inputs: []*externalapi.DomainTransactionInput{{
					PreviousOutpoint: externalapi.DomainOutpoint{
						TransactionID: externalapi.DomainTransactionID{},
						Index:         0,
					},
					SignatureScript: []byte{},
					Sequence:        test.sequence,
				}},
				Outputs:      []*externalapi.DomainTransactionOutput{},
				SubnetworkID: subnetworks.SubnetworkIDNative,
				LockTime:     test.lockTime,
			}

			err := tc.TransactionValidator().ValidateTransactionInContextIgnoringUTXO(stagingArea, tx, model.VirtualBlockHash)
			if test.isValid {
				if err != nil {
					t.Errorf("%s: unexpected error: %+v", test.name, err)
				}
			} else if err == nil || !errors.Is(err, ruleerrors.ErrUnfinalizedTx) {
				t.Errorf("%s: expected error %v, but got %v", test.name, ruleerrors.ErrUnfinalizedTx, err)
			}
		}
	})
}
