package consensusstatemanager_test

import (
	"errors"
	"testing"

	"github.com/cobaltnet/cobaltd/domain/consensus/utils/utxo"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"

	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"

	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"

	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/testutils"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/transactionhelper"
)

func TestDoubleSpends(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		stagingArea := model.NewStagingArea()

		consensusConfig.BlockCoinbaseMaturity = 0

		factory := consensus.NewFactory()

		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestDoubleSpends")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		// Mine a chain of two blocks to fund our double spend. The coinbase of
		// the second block rewards the miner of the first one, so its output is
		// locked by the default spendable script.
		firstBlockHash, _, err := tc.AddBlock([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("Error creating firstBlock: %+v", err)
		}
		fundingBlockHash, _, err := tc.AddBlock([]*externalapi.DomainHash{firstBlockHash}, nil, nil)
		if err != nil {
			t.Fatalf("Error creating fundingBlock: %+v", err)
		}
		fundingBlock, err := tc.GetBlock(fundingBlockHash)
		if err != nil {
			t.Fatalf("Error getting fundingBlock: %+v", err)
		}

		// Get funding transaction
		fundingTransaction := fundingBlock.Transactions[transactionhelper.CoinbaseTransactionIndex]

		// Create two transactions that spend the same output, but with different IDs
		spendingTransaction1, err := testutils.CreateTransaction(fundingTransaction, 1)
		if err != nil {
			t.Fatalf("Error creating spendingTransaction1: %+v", err)
		}
		spendingTransaction2, err := testutils.CreateTransaction(fundingTransaction, 1)
		if err != nil {
			t.Fatalf("Error creating spendingTransaction2: %+v", err)
		}
		spendingTransaction2.Outputs[0].Value-- // tweak the value to create a different ID
		spendingTransaction1ID := consensushashing.TransactionID(spendingTransaction1)
		spendingTransaction2ID := consensushashing.TransactionID(spendingTransaction2)
		if spendingTransaction1ID.Equal(spendingTransaction2ID) {
			t.Fatalf("spendingTransaction1 and spendingTransaction2 ids are equal")
		}

		// Mine a block with spendingTransaction1 and make sure that it's valid
		goodBlock1Hash, _, err := tc.AddBlock([]*externalapi.DomainHash{fundingBlockHash}, nil,
			[]*externalapi.DomainTransaction{spendingTransaction1})
		if err != nil {
			t.Fatalf("Error adding goodBlock1: %+v", err)
		}
		goodBlock1Status, err := tc.BlockStatusStore().Get(tc.DatabaseContext(), stagingArea, goodBlock1Hash)
		if err != nil {
			t.Fatalf("Error getting status of goodBlock1: %+v", err)
		}
		if goodBlock1Status != externalapi.StatusUTXOValid {
			t.Fatalf("goodBlock1 status expected to be '%s', but is '%s'", externalapi.StatusUTXOValid, goodBlock1Status)
		}

		// To check that a block containing the same transaction already in its past is disqualified:
		// Add a block on top of goodBlock1, containing spendingTransaction1, and make sure it's disqualified
		doubleSpendingBlock1Hash, _, err := tc.AddBlock([]*externalapi.DomainHash{goodBlock1Hash}, nil,
			[]*externalapi.DomainTransaction{spendingTransaction1})
		if err != nil {
			t.Fatalf("Error adding doubleSpendingBlock1: %+v", err)
		}
		doubleSpendingBlock1Status, err := tc.BlockStatusStore().Get(tc.DatabaseContext(), stagingArea,
			doubleSpendingBlock1Hash)
		if err != nil {
			t.Fatalf("Error getting status of doubleSpendingBlock1: %+v", err)
		}
		if doubleSpendingBlock1Status != externalapi.StatusDisqualifiedFromChain {
			t.Fatalf("doubleSpendingBlock1 status expected to be '%s', but is '%s'",
				externalapi.StatusDisqualifiedFromChain, doubleSpendingBlock1Status)
		}

		// To check that a block containing a transaction that double-spends a transaction that
		// is in its past is disqualified:
		// Add a block on top of goodBlock1, containing spendingTransaction2, and make sure it's disqualified
		doubleSpendingBlock2Hash, _, err := tc.AddBlock([]*externalapi.DomainHash{goodBlock1Hash}, nil,
			[]*externalapi.DomainTransaction{spendingTransaction2})
		if err != nil {
			t.Fatalf("Error adding doubleSpendingBlock2: %+v", err)
		}
		doubleSpendingBlock2Status, err := tc.BlockStatusStore().Get(tc.DatabaseContext(), stagingArea,
			doubleSpendingBlock2Hash)
		if err != nil {
			t.Fatalf("Error getting status of doubleSpendingBlock2: %+v", err)
		}
		if doubleSpendingBlock2Status != externalapi.StatusDisqualifiedFromChain {
			t.Fatalf("doubleSpendingBlock2 status expected to be '%s', but is '%s'",
				externalapi.StatusDisqualifiedFromChain, doubleSpendingBlock2Status)
		}

		// To make sure that a block double-spending itself is rejected:
		// Add a block on top of goodBlock1, containing both spendingTransaction1 and spendingTransaction2, and make
		// sure AddBlock returns a RuleError
		_, _, err = tc.AddBlock([]*externalapi.DomainHash{goodBlock1Hash}, nil,
			[]*externalapi.DomainTransaction{spendingTransaction1, spendingTransaction2})
		if err == nil {
			t.Fatalf("No error when adding a self-double-spending block")
		}
		if !errors.Is(err, ruleerrors.ErrDoubleSpendInSameBlock) {
			t.Fatalf("Adding self-double-spending block should have "+
				"returned ruleerrors.ErrDoubleSpendInSameBlock, but instead got: %+v", err)
		}

		// To make sure that a block containing the same transaction twice is rejected:
		// Add a block on top of goodBlock1, containing spendingTransaction1 twice, and make
		// sure AddBlock returns a RuleError
		_, _, err = tc.AddBlock([]*externalapi.DomainHash{goodBlock1Hash}, nil,
			[]*externalapi.DomainTransaction{spendingTransaction1, spendingTransaction1})
		if err == nil {
			t.Fatalf("No error when adding a block containing the same transaction twice")
		}
		if !errors.Is(err, ruleerrors.ErrDuplicateTx) {
			t.Fatalf("Adding block that contains the same transaction twice should have "+
				"returned ruleerrors.ErrDuplicateTx, but instead got: %+v", err)
		}

		// Check that a block will not get disqualified if it has a transaction that double spends
		// a transaction from its anticone.
		goodBlock2Hash, _, err := tc.AddBlock([]*externalapi.DomainHash{fundingBlockHash}, nil,
			[]*externalapi.DomainTransaction{spendingTransaction2})
		if err != nil {
			t.Fatalf("Error adding goodBlock2: %+v", err)
		}
		// Use ResolveBlockStatus, since goodBlock2 might not be the selected tip
		goodBlock2Status, err := tc.ConsensusStateManager().ResolveBlockStatus(stagingArea, goodBlock2Hash)
		if err != nil {
			t.Fatalf("Error getting status of goodBlock2: %+v", err)
		}
		if goodBlock2Status != externalapi.StatusUTXOValid {
			t.Fatalf("goodBlock2 status expected to be '%s', but is '%s'", externalapi.StatusUTXOValid, goodBlock2Status)
		}
	})
}

// TestTransactionAcceptance checks that block transactions are accepted correctly
// when the merge set is sorted topologically.
// DAG diagram:
// genesis <- blockA <- blockB <- blockC <- ..(chain of K blocks).. lastBlockInChain <- blockD <- blockE <- blockF <- blockG
//
//	^                                        ^                                          |
//	| redBlock <---------------------------- blueChildOfRedBlock <----------------------
func TestTransactionAcceptance(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		stagingArea := model.NewStagingArea()
		consensusConfig.BlockCoinbaseMaturity = 0
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestTransactionAcceptance")
		if err != nil {
			t.Fatalf("Error setting up testConsensus: %+v", err)
		}
		defer teardown(false)

		blockHashA, _, err := tc.AddBlock([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("Error creating blockA: %+v", err)
		}
		blockHashB, _, err := tc.AddBlock([]*externalapi.DomainHash{blockHashA}, nil, nil)
		if err != nil {
			t.Fatalf("Error creating blockB: %+v", err)
		}
		blockHashC, _, err := tc.AddBlock([]*externalapi.DomainHash{blockHashB}, nil, nil)
		if err != nil {
			t.Fatalf("Error creating blockC: %+v", err)
		}
		// Add a chain of K blocks above blockC so we'll
		// be able to mine a red block on top of it.
		chainTipHash := blockHashC
		for i := model.KType(0); i < consensusConfig.K; i++ {
			var err error
			chainTipHash, _, err = tc.AddBlock([]*externalapi.DomainHash{chainTipHash}, nil, nil)
			if err != nil {
				t.Fatalf("Error creating a block: %+v", err)
			}
		}
		lastBlockInChain := chainTipHash
		blockC, err := tc.GetBlock(blockHashC)
		if err != nil {
			t.Fatalf("Error getting blockC: %+v", err)
		}
		fees := uint64(1)
		transactionFromBlockC := blockC.Transactions[transactionhelper.CoinbaseTransactionIndex]
		// transactionFromRedBlock spends transactionFromBlockC.
		transactionFromRedBlock, err := testutils.CreateTransaction(transactionFromBlockC, fees)
		if err != nil {
			t.Fatalf("Error creating transactionFromRedBlock: %+v", err)
		}
		transactionFromRedBlockInput0UTXOEntry, err := tc.ConsensusStateStore().
			UTXOByOutpoint(tc.DatabaseContext(), stagingArea, &transactionFromRedBlock.Inputs[0].PreviousOutpoint)
		if err != nil {
			t.Fatalf("Error getting UTXOEntry for transactionFromRedBlockInput: %s", err)
		}
		redHash, _, err := tc.AddBlock([]*externalapi.DomainHash{blockHashC}, nil,
			[]*externalapi.DomainTransaction{transactionFromRedBlock})
		if err != nil {
			t.Fatalf("Error creating redBlock: %+v", err)
		}

		transactionFromBlueChildOfRedBlock, err := testutils.CreateTransaction(transactionFromRedBlock, fees)
		if err != nil {
			t.Fatalf("Error creating transactionFromBlueChildOfRedBlock: %+v", err)
		}
		transactionFromBlueChildOfRedBlockInput0UTXOEntry, err := tc.ConsensusStateStore().
			UTXOByOutpoint(tc.DatabaseContext(), stagingArea, &transactionFromBlueChildOfRedBlock.Inputs[0].PreviousOutpoint)
		if err != nil {
			t.Fatalf("Error getting UTXOEntry for transactionFromBlueChildOfRedBlockInput: %s", err)
		}
		blueChildOfRedBlockScriptPublicKey := &externalapi.ScriptPublicKey{Script: []byte{3}, Version: 0}
		// blueChildOfRedBlock contains a transaction that spends an output from the red block.
		hashBlueChildOfRedBlock, _, err := tc.AddBlock([]*externalapi.DomainHash{lastBlockInChain, redHash},
			&externalapi.DomainCoinbaseData{
				ScriptPublicKey: blueChildOfRedBlockScriptPublicKey,
				ExtraData:       nil,
			}, []*externalapi.DomainTransaction{transactionFromBlueChildOfRedBlock})
		if err != nil {
			t.Fatalf("Error creating blueChildOfRedBlock: %+v", err)
		}

		blockHashD, _, err := tc.AddBlock([]*externalapi.DomainHash{lastBlockInChain}, nil, nil)
		if err != nil {
			t.Fatalf("Error creating blockD: %+v", err)
		}
		blockHashE, _, err := tc.AddBlock([]*externalapi.DomainHash{blockHashD}, nil, nil)
		if err != nil {
			t.Fatalf("Error creating blockE: %+v", err)
		}
		blockFScriptPublicKey := &externalapi.ScriptPublicKey{Script: []byte{4}, Version: 0}
		blockHashF, _, err := tc.AddBlock([]*externalapi.DomainHash{blockHashE},
			&externalapi.DomainCoinbaseData{
				ScriptPublicKey: blockFScriptPublicKey,
				ExtraData:       nil,
			}, nil)
		if err != nil {
			t.Fatalf("Error creating blockF: %+v", err)
		}
		blockGScriptPublicKey := &externalapi.ScriptPublicKey{Script: []byte{5}, Version: 0}
		blockHashG, _, err := tc.AddBlock([]*externalapi.DomainHash{blockHashF, hashBlueChildOfRedBlock},
			&externalapi.DomainCoinbaseData{
				ScriptPublicKey: blockGScriptPublicKey,
				ExtraData:       nil,
			}, nil)
		if err != nil {
			t.Fatalf("Error creating blockG: %+v", err)
		}

		acceptanceData, err := tc.AcceptanceDataStore().Get(tc.DatabaseContext(), stagingArea, blockHashG)
		if err != nil {
			t.Fatalf("Error getting acceptance data: %+v", err)
		}
		blueChildOfRedBlock, err := tc.GetBlock(hashBlueChildOfRedBlock)
		if err != nil {
			t.Fatalf("Error getting blueChildOfRedBlock: %+v", err)
		}
		blockF, err := tc.GetBlock(blockHashF)
		if err != nil {
			t.Fatalf("Error getting blockF: %+v", err)
		}
		redBlock, err := tc.GetBlock(redHash)
		if err != nil {
			t.Fatalf("Error getting redBlock: %+v", err)
		}

		// The output of transactionFromRedBlock was created while accepting the merge
		// set of blockG, so its UTXO entry carries blockG's DAA score rather than the
		// score the virtual assigned when blueChildOfRedBlock was originally added.
		blockGDAAScore, err := tc.DAABlocksStore().DAAScore(tc.DatabaseContext(), stagingArea, blockHashG)
		if err != nil {
			t.Fatalf("Error getting DAA score of blockG: %+v", err)
		}

		// We expect the second transaction in blueChildOfRedBlock to be accepted because
		// the merge set is ordered topologically, so the red block is processed before
		// blueChildOfRedBlock and the spent output is already known in the UTXO set.
		expectedAcceptanceData := externalapi.AcceptanceData{
			{
				BlockHash: blockHashF,
				TransactionAcceptanceData: []*externalapi.TransactionAcceptanceData{
					{
						Transaction:                 blockF.Transactions[0],
						Fee:                         0,
						IsAccepted:                  true,
						TransactionInputUTXOEntries: []externalapi.UTXOEntry{},
					},
				},
			},
			{
				BlockHash: redHash,
				TransactionAcceptanceData: []*externalapi.TransactionAcceptanceData{
					{ // Coinbase transaction outputs are added to the UTXO set only if they are in the selected
						// parent chain, and this block isn't.
						Transaction:                 redBlock.Transactions[0],
						Fee:                         0,
						IsAccepted:                  false,
						TransactionInputUTXOEntries: []externalapi.UTXOEntry{},
					},
					{
						Transaction:                 redBlock.Transactions[1],
						Fee:                         fees,
						IsAccepted:                  true,
						TransactionInputUTXOEntries: []externalapi.UTXOEntry{transactionFromRedBlockInput0UTXOEntry},
					},
				},
			},
			{
				BlockHash: hashBlueChildOfRedBlock,
				TransactionAcceptanceData: []*externalapi.TransactionAcceptanceData{
					{ // Coinbase transaction outputs are added to the UTXO set only if they are in the selected
						// parent chain, and this block isn't.
						Transaction:                 blueChildOfRedBlock.Transactions[0],
						Fee:                         0,
						IsAccepted:                  false,
						TransactionInputUTXOEntries: []externalapi.UTXOEntry{},
					},
					{
						Transaction: blueChildOfRedBlock.Transactions[1],
						Fee:         fees,
						IsAccepted:  true,
						TransactionInputUTXOEntries: []externalapi.UTXOEntry{
							utxo.NewUTXOEntry(transactionFromBlueChildOfRedBlockInput0UTXOEntry.Amount(),
								transactionFromBlueChildOfRedBlockInput0UTXOEntry.ScriptPublicKey(),
								transactionFromBlueChildOfRedBlockInput0UTXOEntry.IsCoinbase(), blockGDAAScore)},
					},
				},
			},
		}
		if !acceptanceData.Equal(expectedAcceptanceData) {
			t.Fatalf("The acceptance data is not the expected acceptance data")
		}
	})
}

func TestResolveBlockStatusSanity(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		stagingArea := model.NewStagingArea()

		tc, teardown, err := consensus.NewFactory().NewTestConsensus(consensusConfig, "TestResolveBlockStatusSanity")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		genesisHash := consensusConfig.GenesisHash
		allHashes := []*externalapi.DomainHash{genesisHash}

		// Make sure that the status of genesisHash is valid
		genesisStatus, err := tc.BlockStatusStore().Get(tc.DatabaseContext(), stagingArea, genesisHash)
		if err != nil {
			t.Fatalf("error getting genesis status: %s", err)
		}
		if genesisStatus != externalapi.StatusUTXOValid {
			t.Fatalf("genesis is unexpectedly non-valid. Its status is: %s", genesisStatus)
		}

		chainLength := int(consensusConfig.K) + 1

		// Add a chain of blocks over the genesis and make sure all their
		// statuses are valid
		currentHash := genesisHash
		for i := 0; i < chainLength; i++ {
			addedBlockHash, _, err := tc.AddBlock([]*externalapi.DomainHash{currentHash}, nil, nil)
			if err != nil {
				t.Fatalf("error adding block %d: %s", i, err)
			}
			blockStatus, err := tc.BlockStatusStore().Get(tc.DatabaseContext(), stagingArea, addedBlockHash)
			if err != nil {
				t.Fatalf("error getting block %d (%s) status: %s", i, addedBlockHash, err)
			}
			if blockStatus != externalapi.StatusUTXOValid {
				t.Fatalf("block %d (%s) is unexpectedly non-valid. Its status is: %s", i, addedBlockHash, blockStatus)
			}
			currentHash = addedBlockHash
			allHashes = append(allHashes, addedBlockHash)
		}

		// Add another chain of blocks over the genesis that's shorter than the previous
		// chain by one. All its blocks should have a UTXOPendingVerification status
		currentHash = genesisHash
		for i := 0; i < chainLength-1; i++ {
			addedBlockHash, _, err := tc.AddBlock([]*externalapi.DomainHash{currentHash}, nil, nil)
			if err != nil {
				t.Fatalf("error adding block %d: %s", i, err)
			}
			blockStatus, err := tc.BlockStatusStore().Get(tc.DatabaseContext(), stagingArea, addedBlockHash)
			if err != nil {
				t.Fatalf("error getting block %d (%s) status: %s", i, addedBlockHash, err)
			}
			if blockStatus != externalapi.StatusUTXOPendingVerification {
				t.Fatalf("block %d (%s) has unexpected status. "+
					"Want: %s, got: %s", i, addedBlockHash, externalapi.StatusUTXOPendingVerification, blockStatus)
			}
			currentHash = addedBlockHash
			allHashes = append(allHashes, addedBlockHash)
		}

		// Add two more blocks to the second chain, so that it becomes the selected
		// chain. All the blocks in the DAG should have a valid status now
		for i := 0; i < 2; i++ {
			addedBlockHash, _, err := tc.AddBlock([]*externalapi.DomainHash{currentHash}, nil, nil)
			if err != nil {
				t.Fatalf("error adding block %d: %s", i, err)
			}
			currentHash = addedBlockHash
			allHashes = append(allHashes, addedBlockHash)
		}

		for _, hash := range allHashes {
			blockStatus, err := tc.BlockStatusStore().Get(tc.DatabaseContext(), stagingArea, hash)
			if err != nil {
				t.Fatalf("error getting block %s status: %s", hash, err)
			}
			if blockStatus != externalapi.StatusUTXOValid {
				t.Fatalf("block %s is unexpectedly non-valid. Its status is: %s", hash, blockStatus)
			}
		}
	})
}
