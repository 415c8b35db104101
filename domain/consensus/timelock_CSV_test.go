package consensus_test

import (
	"encoding/binary"
	"testing"

	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/testapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/constants"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/testutils"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/transactionhelper"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/txscript"
)

// TestCheckSequenceVerifyConditionedByDAAScore verifies that an output locked by the CSV script is
// spendable only once the spending block's DAA score is far enough past the confirmation of the
// locked output. CSV - check sequence verify.
func TestCheckSequenceVerifyConditionedByDAAScore(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		consensusConfig.BlockCoinbaseMaturity = 0
		factory := consensus.NewFactory()
		testConsensus, teardown, err := factory.NewTestConsensus(consensusConfig,
			"TestCheckSequenceVerifyConditionedByDAAScore")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		relativeDAAScoreTarget := int64(10)
		redeemScriptCSV, err := createScriptCSV(relativeDAAScoreTarget)
		if err != nil {
			t.Fatalf("Failed to create a script using createScriptCSV: %v", err)
		}
		p2shScriptCSV, err := txscript.PayToScriptHashScript(redeemScriptCSV)
		if err != nil {
			t.Fatalf("Failed to create a pay-to-script-hash script : %v", err)
		}
		scriptPublicKeyCSV := externalapi.ScriptPublicKey{
			Version: constants.MaxScriptPublicKeyVersion,
			Script:  p2shScriptCSV,
		}
		blockEHash, transactionWithLockedOutput := addChainWithCSVLockedOutput(t, testConsensus, &scriptPublicKeyCSV)
		fees := uint64(1)
		transactionThatSpentTheLockedOutput, err := createTransactionThatSpentTheCSVLockedOutput(
			transactionWithLockedOutput, fees, redeemScriptCSV, uint64(relativeDAAScoreTarget))
		if err != nil {
			t.Fatalf("Error creating transactionThatSpentTheLockedOutput: %v", err)
		}

		// A block that spends the locked output before the relative lock matured is added without
		// an error, but it fails UTXO verification and must be disqualified from the chain.
		prematureSpendingBlockHash, _, err := testConsensus.AddBlock([]*externalapi.DomainHash{blockEHash}, nil,
			[]*externalapi.DomainTransaction{transactionThatSpentTheLockedOutput})
		if err != nil {
			t.Fatalf("Error creating the premature spending block: %v", err)
		}
		stagingArea := model.NewStagingArea()
		prematureSpendingBlockStatus, err := testConsensus.BlockStatusStore().Get(testConsensus.DatabaseContext(),
			stagingArea, prematureSpendingBlockHash)
		if err != nil {
			t.Fatalf("Failed getting the status for the premature spending block: %v", err)
		}
		if !prematureSpendingBlockStatus.Equal(externalapi.StatusDisqualifiedFromChain) {
			t.Fatalf("The status of the premature spending block should be: %s, but got: %s",
				externalapi.StatusDisqualifiedFromChain, prematureSpendingBlockStatus)
		}
		virtualSelectedParent, err := testConsensus.GetVirtualSelectedParent()
		if err != nil {
			t.Fatalf("Failed getting virtual selectedParent: %+v", err)
		}
		if !virtualSelectedParent.Equal(blockEHash) {
			t.Fatalf("The virtual selected parent should stay on the block holding the locked output")
		}

		// Age the locked output on a fresh chain on top of blockE until the relative lock matured.
		tipHash := blockEHash
		for i := int64(0); i < 2*relativeDAAScoreTarget; i++ {
			tipHash, _, err = testConsensus.AddBlock([]*externalapi.DomainHash{tipHash}, nil, nil)
			if err != nil {
				t.Fatalf("Error creating tip: %v", err)
			}
		}
		spendingBlockHash, _, err := testConsensus.AddBlock([]*externalapi.DomainHash{tipHash}, nil,
			[]*externalapi.DomainTransaction{transactionThatSpentTheLockedOutput})
		if err != nil {
			t.Fatalf("The block should be valid since the relative lock matured. but got an error: %v", err)
		}
		spendingBlockStatus, err := testConsensus.BlockStatusStore().Get(testConsensus.DatabaseContext(),
			stagingArea, spendingBlockHash)
		if err != nil {
			t.Fatalf("Failed getting the status for the spending block: %v", err)
		}
		if !spendingBlockStatus.Equal(externalapi.StatusUTXOValid) {
			t.Fatalf("The status of the spending block should be: %s, but got: %s",
				externalapi.StatusUTXOValid, spendingBlockStatus)
		}
	})
}

// TestCheckSequenceVerifyWithTooLowSequence verifies that a transaction whose input sequence is
// lower than the number the CSV script demands fails script validation, so the block carrying it
// gets disqualified from the chain even after the locked output aged enough.
func TestCheckSequenceVerifyWithTooLowSequence(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		consensusConfig.BlockCoinbaseMaturity = 0
		factory := consensus.NewFactory()
		testConsensus, teardown, err := factory.NewTestConsensus(consensusConfig,
			"TestCheckSequenceVerifyWithTooLowSequence")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		relativeDAAScoreTarget := int64(10)
		redeemScriptCSV, err := createScriptCSV(relativeDAAScoreTarget)
		if err != nil {
			t.Fatalf("Failed to create a script using createScriptCSV: %v", err)
		}
		p2shScriptCSV, err := txscript.PayToScriptHashScript(redeemScriptCSV)
		if err != nil {
			t.Fatalf("Failed to create a pay-to-script-hash script : %v", err)
		}
		scriptPublicKeyCSV := externalapi.ScriptPublicKey{
			Version: constants.MaxScriptPublicKeyVersion,
			Script:  p2shScriptCSV,
		}
		blockEHash, transactionWithLockedOutput := addChainWithCSVLockedOutput(t, testConsensus, &scriptPublicKeyCSV)

		// Age the locked output enough for the too-low sequence to satisfy the consensus lock, so
		// that only the script check can fail.
		tipHash := blockEHash
		for i := int64(0); i < 2*relativeDAAScoreTarget; i++ {
			tipHash, _, err = testConsensus.AddBlock([]*externalapi.DomainHash{tipHash}, nil, nil)
			if err != nil {
				t.Fatalf("Error creating tip: %v", err)
			}
		}

		fees := uint64(1)
		tooLowSequence := uint64(relativeDAAScoreTarget) - 1
		transactionWithTooLowSequence, err := createTransactionThatSpentTheCSVLockedOutput(
			transactionWithLockedOutput, fees, redeemScriptCSV, tooLowSequence)
		if err != nil {
			t.Fatalf("Error creating transactionWithTooLowSequence: %v", err)
		}
		blockWithTooLowSequenceHash, _, err := testConsensus.AddBlock([]*externalapi.DomainHash{tipHash}, nil,
			[]*externalapi.DomainTransaction{transactionWithTooLowSequence})
		if err != nil {
			t.Fatalf("The block should be added without an error: %v", err)
		}
		stagingArea := model.NewStagingArea()
		blockWithTooLowSequenceStatus, err := testConsensus.BlockStatusStore().Get(testConsensus.DatabaseContext(),
			stagingArea, blockWithTooLowSequenceHash)
		if err != nil {
			t.Fatalf("Failed getting the status for blockWithTooLowSequence: %v", err)
		}
		if !blockWithTooLowSequenceStatus.Equal(externalapi.StatusDisqualifiedFromChain) {
			t.Fatalf("The status of blockWithTooLowSequence should be: %s, but got: %s",
				externalapi.StatusDisqualifiedFromChain, blockWithTooLowSequenceStatus)
		}
	})
}

// TestCheckSequenceVerifyWithDisabledFlag verifies that both the CSV opcode and the consensus
// sequence lock treat a sequence carrying the disable flag as unrestricted, which makes the locked
// output spendable right away.
func TestCheckSequenceVerifyWithDisabledFlag(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		consensusConfig.BlockCoinbaseMaturity = 0
		factory := consensus.NewFactory()
		testConsensus, teardown, err := factory.NewTestConsensus(consensusConfig,
			"TestCheckSequenceVerifyWithDisabledFlag")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		relativeDAAScoreTarget := uint64(10)
		redeemScriptCSV, err := createScriptCSVWithDisabledFlag(relativeDAAScoreTarget)
		if err != nil {
			t.Fatalf("Failed to create a script using createScriptCSVWithDisabledFlag: %v", err)
		}
		p2shScriptCSV, err := txscript.PayToScriptHashScript(redeemScriptCSV)
		if err != nil {
			t.Fatalf("Failed to create a pay-to-script-hash script : %v", err)
		}
		scriptPublicKeyCSV := externalapi.ScriptPublicKey{
			Version: constants.MaxScriptPublicKeyVersion,
			Script:  p2shScriptCSV,
		}
		blockEHash, transactionWithLockedOutput := addChainWithCSVLockedOutput(t, testConsensus, &scriptPublicKeyCSV)

		fees := uint64(1)
		spendingTransaction, err := createTransactionThatSpentTheCSVLockedOutput(transactionWithLockedOutput,
			fees, redeemScriptCSV, relativeDAAScoreTarget|constants.SequenceLockTimeDisabled)
		if err != nil {
			t.Fatalf("Error creating spendingTransaction: %v", err)
		}
		spendingBlockHash, _, err := testConsensus.AddBlock([]*externalapi.DomainHash{blockEHash}, nil,
			[]*externalapi.DomainTransaction{spendingTransaction})
		if err != nil {
			t.Fatalf("The block should be valid since the sequence lock is disabled. but got an error: %v", err)
		}
		stagingArea := model.NewStagingArea()
		spendingBlockStatus, err := testConsensus.BlockStatusStore().Get(testConsensus.DatabaseContext(),
			stagingArea, spendingBlockHash)
		if err != nil {
			t.Fatalf("Failed getting the status for the spending block: %v", err)
		}
		if !spendingBlockStatus.Equal(externalapi.StatusUTXOValid) {
			t.Fatalf("The status of the spending block should be: %s, but got: %s",
				externalapi.StatusUTXOValid, spendingBlockStatus)
		}
		virtualSelectedParent, err := testConsensus.GetVirtualSelectedParent()
		if err != nil {
			t.Fatalf("Failed getting virtual selectedParent: %+v", err)
		}
		if !virtualSelectedParent.Equal(spendingBlockHash) {
			t.Fatalf("The spending block is expected to be the virtual selected parent")
		}
	})
}

// addChainWithCSVLockedOutput builds a short chain on top of genesis and appends a block holding
// a transaction whose output is locked by the given script. It returns the hash of that block and
// the locking transaction.
func addChainWithCSVLockedOutput(t *testing.T, tc testapi.TestConsensus,
	scriptPublicKeyCSV *externalapi.ScriptPublicKey) (*externalapi.DomainHash, *externalapi.DomainTransaction) {

	blockAHash, _, err := tc.AddBlock([]*externalapi.DomainHash{tc.DAGParams().GenesisHash}, nil, nil)
	if err != nil {
		t.Fatalf("Error creating blockA: %v", err)
	}
	blockBHash, _, err := tc.AddBlock([]*externalapi.DomainHash{blockAHash}, nil, nil)
	if err != nil {
		t.Fatalf("Error creating blockB: %v", err)
	}
	blockCHash, _, err := tc.AddBlock([]*externalapi.DomainHash{blockBHash}, nil, nil)
	if err != nil {
		t.Fatalf("Error creating blockC: %v", err)
	}
	blockDHash, _, err := tc.AddBlock([]*externalapi.DomainHash{blockCHash}, nil, nil)
	if err != nil {
		t.Fatalf("Error creating blockD: %v", err)
	}
	blockD, err := tc.GetBlock(blockDHash)
	if err != nil {
		t.Fatalf("Failed getting blockD: %v", err)
	}
	fees := uint64(1)
	transactionWithLockedOutput, err := createTransactionWithLockedOutput(
		blockD.Transactions[transactionhelper.CoinbaseTransactionIndex], fees, scriptPublicKeyCSV)
	if err != nil {
		t.Fatalf("Error in createTransactionWithLockedOutput: %v", err)
	}
	blockEHash, _, err := tc.AddBlock([]*externalapi.DomainHash{blockDHash}, nil,
		[]*externalapi.DomainTransaction{transactionWithLockedOutput})
	if err != nil {
		t.Fatalf("Error creating blockE: %v", err)
	}
	return blockEHash, transactionWithLockedOutput
}

func createScriptCSV(relativeDAAScoreTarget int64) ([]byte, error) {
	scriptBuilder := txscript.NewScriptBuilder()
	scriptBuilder.AddInt64(relativeDAAScoreTarget)
	scriptBuilder.AddOp(txscript.OpCheckSequenceVerify)
	scriptBuilder.AddOp(txscript.OpTrue)
	return scriptBuilder.Script()
}

func createScriptCSVWithDisabledFlag(relativeDAAScoreTarget uint64) ([]byte, error) {
	sequenceBytes := make([]byte, 8)
	binary.LittleEndian.PutUint64(sequenceBytes, relativeDAAScoreTarget|constants.SequenceLockTimeDisabled)
	scriptBuilder := txscript.NewScriptBuilder()
	scriptBuilder.AddData(sequenceBytes)
	scriptBuilder.AddOp(txscript.OpCheckSequenceVerify)
	scriptBuilder.AddOp(txscript.OpTrue)
	return scriptBuilder.Script()
}

func createTransactionThatSpentTheCSVLockedOutput(txToSpend *externalapi.DomainTransaction, fee uint64,
	redeemScript []byte, sequence uint64) (*externalapi.DomainTransaction, error) {

	signatureScript, err := txscript.PayToScriptHashSignatureScript(redeemScript, []byte{})
	if err != nil {
		return nil, err
	}
	scriptPublicKeyOutput, _ := testutils.OpTrueScript()
	input := &externalapi.DomainTransactionInput{
		PreviousOutpoint: externalapi.DomainOutpoint{
			TransactionID: *consensushashing.TransactionID(txToSpend),
			Index:         0,
		},
		SignatureScript: signatureScript,
		Sequence:        sequence,
	}
	output := &externalapi.DomainTransactionOutput{
		ScriptPublicKey: scriptPublicKeyOutput,
		Value:           txToSpend.Outputs[0].Value - fee,
	}
	return &externalapi.DomainTransaction{
		Version: constants.MaxTransactionVersion,
		Inputs:  []*externalapi.DomainTransactionInput{input},
		Outputs: []*externalapi.DomainTransactionOutput{output},
		Payload: []byte{},
	}, nil
}
