package dagtraversalmanager_test

import (
	"testing"

	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/testutils"
)

func hashesEqualIgnoringOrder(actual, expected []*externalapi.DomainHash) bool {
	if len(actual) != len(expected) {
		return false
	}
	for _, hash := range actual {
		found := false
		for _, expectedHash := range expected {
			if hash.Equal(expectedHash) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// TestBlockWindow builds a chain with a short side chain merged at the tip
// and checks that block windows stay within the requested size and contain
// exactly the highest-blue-work blocks in the past of the window's block.
func TestBlockWindow(t *testing.T) {
	testutils.ForAllNets(t, true, func(t *testing.T, consensusConfig *consensus.Config) {
		factory := consensus.NewFactory()
		tc, tearDown, err := factory.NewTestConsensus(consensusConfig, "TestBlockWindow")
		if err != nil {
			t.Fatalf("Failed creating a NewTestConsensus: %s", err)
		}
		defer tearDown(false)

		stagingArea := model.NewStagingArea()

		// chain[i] is the chain block of height i (chain[0] is genesis).
		chain := []*externalapi.DomainHash{consensusConfig.GenesisHash}
		tipHash := consensusConfig.GenesisHash
		for i := 0; i < 10; i++ {
			tipHash, _, err = tc.AddBlock([]*externalapi.DomainHash{tipHash}, nil, nil)
			if err != nil {
				t.Fatalf("AddBlock: %+v", err)
			}
			chain = append(chain, tipHash)
		}

		// The window of a chain tip is the run of chain blocks directly
		// below it, excluding genesis.
		window, err := tc.DAGTraversalManager().BlockWindow(stagingArea, tipHash, 5)
		if err != nil {
			t.Fatalf("BlockWindow: %+v", err)
		}
		if !hashesEqualIgnoringOrder(window, chain[5:10]) {
			t.Fatalf("Expected window %v but got %v", chain[5:10], window)
		}

		// A window bigger than the past shrinks to the available blocks.
		window, err = tc.DAGTraversalManager().BlockWindow(stagingArea, tipHash, 20)
		if err != nil {
			t.Fatalf("BlockWindow: %+v", err)
		}
		if !hashesEqualIgnoringOrder(window, chain[1:10]) {
			t.Fatalf("Expected window %v but got %v", chain[1:10], window)
		}

		// Merge a side block into the tip and check that it displaces the
		// lowest chain block from the bounded window rather than any of the
		// higher ones.
		sideBlockHash, _, err := tc.AddBlock([]*externalapi.DomainHash{chain[7]}, nil, nil)
		if err != nil {
			t.Fatalf("AddBlock: %+v", err)
		}
		mergingBlockHash, _, err := tc.AddBlock([]*externalapi.DomainHash{sideBlockHash, tipHash}, nil, nil)
		if err != nil {
			t.Fatalf("AddBlock: %+v", err)
		}

		window, err = tc.DAGTraversalManager().BlockWindow(stagingArea, mergingBlockHash, 5)
		if err != nil {
			t.Fatalf("BlockWindow: %+v", err)
		}
		expectedWindow := []*externalapi.DomainHash{
			chain[10], chain[9], chain[8], chain[7], sideBlockHash}
		if !hashesEqualIgnoringOrder(window, expectedWindow) {
			t.Fatalf("Expected window %v but got %v", expectedWindow, window)
		}

		// The window size never exceeds the requested size.
		for _, windowSize := range []int{0, 1, 3, 10, 50} {
			window, err := tc.DAGTraversalManager().BlockWindow(stagingArea, mergingBlockHash, windowSize)
			if err != nil {
				t.Fatalf("BlockWindow: %+v", err)
			}
			if len(window) > windowSize {
				t.Fatalf("Window of size %d contains %d blocks", windowSize, len(window))
			}
		}
	})
}
