package consensusstatemanager_test

import (
	"testing"

	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/multiset"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/testutils"
)

func TestUTXOCommitment(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		consensusConfig.BlockCoinbaseMaturity = 0
		factory := consensus.NewFactory()

		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestUTXOCommitment")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		// Build the following DAG:
		// G <- A <- B <- C <- E
		//             <- D <-
		// Block C spends the coinbase of block B, so block E merges a
		// chain block and a sibling whose UTXO sets already diverged
		genesisHash := consensusConfig.GenesisHash

		// Block A:
		blockAHash, _, err := tc.AddBlock([]*externalapi.DomainHash{genesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("Error creating block A: %+v", err)
		}
		// Block B:
		blockBHash, _, err := tc.AddBlock([]*externalapi.DomainHash{blockAHash}, nil, nil)
		if err != nil {
			t.Fatalf("Error creating block B: %+v", err)
		}
		blockB, err := tc.GetBlock(blockBHash)
		if err != nil {
			t.Fatalf("Error getting block B: %+v", err)
		}
		// Block C:
		blockCTransaction, err := testutils.CreateTransaction(blockB.Transactions[0], 1000)
		if err != nil {
			t.Fatalf("Error creating transaction: %+v", err)
		}
		blockCHash, _, err := tc.AddBlock([]*externalapi.DomainHash{blockBHash}, nil,
			[]*externalapi.DomainTransaction{blockCTransaction})
		if err != nil {
			t.Fatalf("Error creating block C: %+v", err)
		}
		// Block D:
		blockDHash, _, err := tc.AddBlock([]*externalapi.DomainHash{blockBHash}, nil, nil)
		if err != nil {
			t.Fatalf("Error creating block D: %+v", err)
		}
		// Block E:
		blockEHash, _, err := tc.AddBlock([]*externalapi.DomainHash{blockCHash, blockDHash}, nil, nil)
		if err != nil {
			t.Fatalf("Error creating block E: %+v", err)
		}
		blockE, err := tc.GetBlock(blockEHash)
		if err != nil {
			t.Fatalf("Error getting block E: %+v", err)
		}

		stagingArea := model.NewStagingArea()

		// Get the past UTXO set of block E
		csm := tc.ConsensusStateManager()
		utxoSetIterator, err := csm.RestorePastUTXOSetIterator(stagingArea, blockEHash)
		if err != nil {
			t.Fatalf("Error restoring past UTXO of block E: %+v", err)
		}
		defer utxoSetIterator.Close()

		// Build a Multiset for block E
		ms := multiset.New()
		for ok := utxoSetIterator.First(); ok; ok = utxoSetIterator.Next() {
			outpoint, entry, err := utxoSetIterator.Get()
			if err != nil {
				t.Fatalf("Error getting from UTXOSet iterator: %+v", err)
			}
			err = csm.AddUTXOToMultiset(ms, entry, outpoint)
			if err != nil {
				t.Fatalf("Error adding utxo to multiset: %+v", err)
			}
		}

		// Turn the multiset into a UTXO commitment
		utxoCommitment := ms.Hash()

		// Make sure that the two commitments are equal
		if !utxoCommitment.Equal(blockE.Header.UTXOCommitment()) {
			t.Fatalf("TestUTXOCommitment: calculated UTXO commitment and "+
				"actual UTXO commitment don't match. Want: %s, got: %s",
				utxoCommitment, blockE.Header.UTXOCommitment())
		}
	})
}

func TestPastUTXOMultiset(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()

		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestPastUTXOMultiset")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		// Build a short chain
		currentHash := consensusConfig.GenesisHash
		for i := 0; i < 3; i++ {
			currentHash, _, err = tc.AddBlock([]*externalapi.DomainHash{currentHash}, nil, nil)
			if err != nil {
				t.Fatalf("Error creating block: %+v", err)
			}
		}

		// Save the current tip's hash to be used later
		testedBlockHash := currentHash

		stagingArea := model.NewStagingArea()

		// Take testedBlock's multiset and hash
		firstMultiset, err := tc.MultisetStore().Get(tc.DatabaseContext(), stagingArea, testedBlockHash)
		if err != nil {
			t.Fatalf("Error getting multiset of tested block: %+v", err)
		}
		firstMultisetHash := firstMultiset.Hash()

		// Add another block on top of testedBlock
		_, _, err = tc.AddBlock([]*externalapi.DomainHash{testedBlockHash}, nil, nil)
		if err != nil {
			t.Fatalf("Error creating block: %+v", err)
		}

		// Take testedBlock's multiset and hash again
		secondMultiset, err := tc.MultisetStore().Get(tc.DatabaseContext(), stagingArea, testedBlockHash)
		if err != nil {
			t.Fatalf("Error getting multiset of tested block: %+v", err)
		}
		secondMultisetHash := secondMultiset.Hash()

		// Make sure the multiset hasn't changed
		if !firstMultisetHash.Equal(secondMultisetHash) {
			t.Fatalf("TestPastUTXOMultiset: selectedParentMultiset appears to have changed!")
		}
	})
}
