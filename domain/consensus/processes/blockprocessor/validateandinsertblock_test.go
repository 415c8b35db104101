package blockprocessor_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/merkle"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/testutils"
)

func TestCheckBlockStatus(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestCheckBlockStatus")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		validBlock, _, err := tc.BuildBlockWithParents([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("BuildBlockWithParents: %+v", err)
		}
		_, err = tc.ValidateAndInsertBlock(validBlock, true)
		if err != nil {
			t.Fatalf("ValidateAndInsertBlock: %+v", err)
		}

		_, err = tc.ValidateAndInsertBlock(validBlock, true)
		if !errors.Is(err, ruleerrors.ErrDuplicateBlock) {
			t.Fatalf("Expected ErrDuplicateBlock, got: %+v", err)
		}

		// A block that fails a body rule is remembered as invalid, so a
		// second submission is rejected up front.
		invalidBlock, _, err := tc.BuildBlockWithParents([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("BuildBlockWithParents: %+v", err)
		}
		invalidBlock.Transactions = append(invalidBlock.Transactions, invalidBlock.Transactions[0])
		mutableHeader := invalidBlock.Header.ToMutable()
		mutableHeader.SetHashMerkleRoot(merkle.CalculateHashMerkleRoot(invalidBlock.Transactions))
		invalidBlock.Header = mutableHeader.ToImmutable()

		_, err = tc.ValidateAndInsertBlock(invalidBlock, true)
		if !errors.Is(err, ruleerrors.ErrMultipleCoinbases) {
			t.Fatalf("Expected ErrMultipleCoinbases, got: %+v", err)
		}

		_, err = tc.ValidateAndInsertBlock(invalidBlock, true)
		if !errors.Is(err, ruleerrors.ErrKnownInvalid) {
			t.Fatalf("Expected ErrKnownInvalid, got: %+v", err)
		}
	})
}
