package blockvalidator_test

import (
	"testing"

	"github.com/pkg/errors"

	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/ruleerrors"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/blockheader"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/constants"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/testutils"
	"github.com/cobaltnet/cobaltd/util/mstime"
)

func TestBlockVersion(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestBlockVersion")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		block, _, err := tc.BuildBlockWithParents([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("BuildBlockWithParents: %+v", err)
		}

		block.Header = blockheader.NewImmutableBlockHeader(
			constants.BlockVersion+1,
			block.Header.Parents(),
			block.Header.HashMerkleRoot(),
			block.Header.AcceptedIDMerkleRoot(),
			block.Header.UTXOCommitment(),
			block.Header.TimeInMilliseconds(),
			block.Header.Bits(),
			block.Header.Nonce(),
			block.Header.DAAScore(),
			block.Header.BlueScore(),
			block.Header.BlueWork(),
			block.Header.PruningPoint(),
		)

		_, err = tc.ValidateAndInsertBlock(block, true)
		if !errors.Is(err, ruleerrors.ErrWrongBlockVersion) {
			t.Fatalf("Expected ErrWrongBlockVersion, got: %+v", err)
		}
	})
}

func TestBlockTimestampInIsolation(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestBlockTimestampInIsolation")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		block, _, err := tc.BuildBlockWithParents([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("BuildBlockWithParents: %+v", err)
		}

		// A timestamp one minute past the allowed deviation window is in the
		// future no matter how slowly the test runs.
		maxAllowed := mstime.Now().UnixMilliseconds() +
			int64(consensusConfig.TimestampDeviationTolerance)*consensusConfig.TargetTimePerBlock.Milliseconds()
		mutableHeader := block.Header.ToMutable()
		mutableHeader.SetTimeInMilliseconds(maxAllowed + 60000)
		block.Header = mutableHeader.ToImmutable()

		_, err = tc.ValidateAndInsertBlock(block, true)
		if !errors.Is(err, ruleerrors.ErrTimeTooMuchInTheFuture) {
			t.Fatalf("Expected ErrTimeTooMuchInTheFuture, got: %+v", err)
		}
	})
}

func TestCheckParentsLimit(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, teardown, err := factory.NewTestConsensus(consensusConfig, "TestCheckParentsLimit")
		if err != nil {
			t.Fatalf("Error setting up consensus: %+v", err)
		}
		defer teardown(false)

		block, _, err := tc.BuildBlockWithParents([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
		if err != nil {
			t.Fatalf("BuildBlockWithParents: %+v", err)
		}

		block.Header = blockheader.NewImmutableBlockHeader(
			block.Header.Version(),
			[]externalapi.BlockLevelParents{},
			block.Header.HashMerkleRoot(),
			block.Header.AcceptedIDMerkleRoot(),
			block.Header.UTXOCommitment(),
			block.Header.TimeInMilliseconds(),
			block.Header.Bits(),
			block.Header.Nonce(),
			block.Header.DAAScore(),
			block.Header.BlueScore(),
			block.Header.BlueWork(),
			block.Header.PruningPoint(),
		)

		_, err = tc.ValidateAndInsertBlock(block, true)
		if !errors.Is(err, ruleerrors.ErrNoParents) {
			t.Fatalf("Expected ErrNoParents, got: %+v", err)
		}

		// An antichain one wider than the parents limit, all merged by a
		// single block.
		parents := make([]*externalapi.DomainHash, 0, int(consensusConfig.MaxBlockParents)+1)
		for i := 0; i < int(consensusConfig.MaxBlockParents)+1; i++ {
			parent, _, err := tc.AddBlock([]*externalapi.DomainHash{consensusConfig.GenesisHash}, nil, nil)
			if err != nil {
				t.Fatalf("AddBlock: %+v", err)
			}
			parents = append(parents, parent)
		}

		overfullBlock, _, err := tc.BuildBlockWithParents(parents, nil, nil)
		if err != nil {
			t.Fatalf("BuildBlockWithParents: %+v", err)
		}

		_, err = tc.ValidateAndInsertBlock(overfullBlock, true)
		if !errors.Is(err, ruleerrors.ErrTooManyParents) {
			t.Fatalf("Expected ErrTooManyParents, got: %+v", err)
		}
	})
}
