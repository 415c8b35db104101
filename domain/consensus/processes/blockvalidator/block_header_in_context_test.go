package blockvalidator_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/testutils"
)

func TestCheckParentsIncest(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestCheckParentsIncest")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		a, _, err := tc.AddBlock([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("AddBlock: %+v", err)
		}
		b, _, err := tc.AddBlock([]*externalapi.DomainHash{a}, nil, nil)
		if err != nil {
			t.Fatalf("AddBlock: %+v", err)
		}

		// a is an ancestor of b, so no block may point at both.
		incestBlock, _, err := tc.BuildBlockWithParents([]*externalapi.DomainHash{a, b}, nil, nil)
		if err != nil {
			t.Fatalf("BuildBlockWithParents: %+v", err)
		}

		_, err = tc.ValidateAndInsertBlock(incestBlock, true)
		if !errors.Is(err, ruleerrors.ErrInvalidParentsRelation) {
			t.Fatalf("Expected ErrInvalidParentsRelation, got: %+v", err)
		}
	})
}

func TestCheckMergeSizeLimit(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		consensusConfig.MergeSetSizeLimit = 3

		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestCheckMergeSizeLimit")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		tips := make([]*externalapi.DomainHash, 0, consensusConfig.MergeSetSizeLimit+2)
		for i := uint64(0); i < consensusConfig.MergeSetSizeLimit+2; i++ {
			tip, _, err := tc.AddBlock([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
			if err != nil {
				t.Fatalf("AddBlock: %+v", err)
			}
			tips = append(tips, tip)
		}

		// The merge set of a block over all tips is every tip except the
		// selected parent, which exceeds the configured limit.
		mergingBlock, _, err := tc.BuildBlockWithParents(tips, nil, nil)
		if err != nil {
			t.Fatalf("BuildBlockWithParents: %+v", err)
		}

		_, err = tc.ValidateAndInsertBlock(mergingBlock, true)
		if !errors.Is(err, ruleerrors.ErrViolatingMergeLimit) {
			t.Fatalf("Expected ErrViolatingMergeLimit, got: %+v", err)
		}
	})
}
