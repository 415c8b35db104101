package blockvalidator_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/merkle"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/testutils"
)

func TestBlockHashMerkleRoot(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestBlockHashMerkleRoot")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		block, _, err := tc.BuildBlockWithParents([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("BuildBlockWithParents: %+v", err)
		}

		mutableHeader := block.Header.ToMutable()
		mutableHeader.SetHashMerkleRoot(externalapi.NewDomainHashFromByteArray(&[externalapi.DomainHashSize]byte{1}))
		block.Header = mutableHeader.ToImmutable()

		_, err = tc.ValidateAndInsertBlock(block, true)
		if !errors.Is(err, ruleerrors.ErrBadMerkleRoot) {
			t.Fatalf("Expected ErrBadMerkleRoot, got: %+v", err)
		}

		// A merkle root mismatch may be the sender's fault rather than the
		// block's, so the block must not be remembered as invalid.
		blockInfo, err := tc.GetBlockInfo(consensushashing.BlockHash(block))
		if err != nil {
			t.Fatalf("GetBlockInfo: %+v", err)
		}
		if blockInfo.Exists {
			t.Fatalf("Block with bad merkle root should not have been stored")
		}
	})
}

func TestFirstBlockTransactionIsCoinbase(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestFirstBlockTransactionIsCoinbase")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		fundingBlockHash, _, err := tc.AddBlock([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("AddBlock: %+v", err)
		}
		fundingBlock, err := tc.GetBlock(fundingBlockHash)
		if err != nil {
			t.Fatalf("GetBlock: %+v", err)
		}
		tx, err := testutils.CreateTransaction(fundingBlock.Transactions[0], 1000)
		if err != nil {
			t.Fatalf("CreateTransaction: %+v", err)
		}

		block, _, err := tc.BuildBlockWithParents(
			[]*externalapi.DomainHash{fundingBlockHash}, nil, []*externalapi.DomainTransaction{tx})
		if err != nil {
			t.Fatalf("BuildBlockWithParents: %+v", err)
		}

		block.Transactions = block.Transactions[1:]
		mutableHeader := block.Header.ToMutable()
		mutableHeader.SetHashMerkleRoot(merkle.CalculateHashMerkleRoot(block.Transactions))
		block.Header = mutableHeader.ToImmutable()

		_, err = tc.ValidateAndInsertBlock(block, true)
		if !errors.Is(err, ruleerrors.ErrFirstTxNotCoinbase) {
			t.Fatalf("Expected ErrFirstTxNotCoinbase, got: %+v", err)
		}
	})
}

func TestBlockContainsOnlyOneCoinbase(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestBlockContainsOnlyOneCoinbase")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		block, _, err := tc.BuildBlockWithParents([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("BuildBlockWithParents: %+v", err)
		}

		block.Transactions = append(block.Transactions, block.Transactions[0])
		mutableHeader := block.Header.ToMutable()
		mutableHeader.SetHashMerkleRoot(merkle.CalculateHashMerkleRoot(block.Transactions))
		block.Header = mutableHeader.ToImmutable()

		_, err = tc.ValidateAndInsertBlock(block, true)
		if !errors.Is(err, ruleerrors.ErrMultipleCoinbases) {
			t.Fatalf("Expected ErrMultipleCoinbases, got: %+v", err)
		}
	})
}

func TestBlockDoubleSpends(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestBlockDoubleSpends")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		fundingBlockHash, _, err := tc.AddBlock([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("AddBlock: %+v", err)
		}
		fundingBlock, err := tc.GetBlock(fundingBlockHash)
		if err != nil {
			t.Fatalf("GetBlock: %+v", err)
		}

		// Two distinct transactions spending the same coinbase output.
		txA, err := testutils.CreateTransaction(fundingBlock.Transactions[0], 1000)
		if err != nil {
			t.Fatalf("CreateTransaction: %+v", err)
		}
		txB, err := testutils.CreateTransaction(fundingBlock.Transactions[0], 2000)
		if err != nil {
			t.Fatalf("CreateTransaction: %+v", err)
		}

		block, _, err := tc.BuildBlockWithParents(
			[]*externalapi.DomainHash{fundingBlockHash}, nil, []*externalapi.DomainTransaction{txA, txB})
		if err != nil {
			t.Fatalf("BuildBlockWithParents: %+v", err)
		}

		_, err = tc.ValidateAndInsertBlock(block, true)
		if !errors.Is(err, ruleerrors.ErrDoubleSpendInSameBlock) {
			t.Fatalf("Expected ErrDoubleSpendInSameBlock, got: %+v", err)
		}
	})
}

func TestBlockHasNoChainedTransactions(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestBlockHasNoChainedTransactions")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		fundingBlockHash, _, err := tc.AddBlock([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("AddBlock: %+v", err)
		}
		fundingBlock, err := tc.GetBlock(fundingBlockHash)
		if err != nil {
			t.Fatalf("GetBlock: %+v", err)
		}

		txA, err := testutils.CreateTransaction(fundingBlock.Transactions[0], 1000)
		if err != nil {
			t.Fatalf("CreateTransaction: %+v", err)
		}
		txB, err := testutils.CreateTransaction(txA, 1000)
		if err != nil {
			t.Fatalf("CreateTransaction: %+v", err)
		}

		block, _, err := tc.BuildBlockWithParents(
			[]*externalapi.DomainHash{fundingBlockHash}, nil, []*externalapi.DomainTransaction{txA, txB})
		if err != nil {
			t.Fatalf("BuildBlockWithParents: %+v", err)
		}

		_, err = tc.ValidateAndInsertBlock(block, true)
		if !errors.Is(err, ruleerrors.ErrChainedTransactions) {
			t.Fatalf("Expected ErrChainedTransactions, got: %+v", err)
		}
	})
}
