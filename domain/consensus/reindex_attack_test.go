package consensus_test

import (
	"testing"

	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/dagconfig"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

// TestReindexDeepChainAttack simulates an attacker that repeatedly mines
// deep side chains forking far behind the reindex root while the honest
// chain keeps growing. With a small reindex window and slack this drives
// the reachability tree through its reindex machinery many times, both
// above and below the reindex root.
func TestReindexDeepChainAttack(t *testing.T) {
	consensusConfig := consensus.Config{Params: dagconfig.SimnetParams}
	consensusConfig.SkipProofOfWork = true

	factory := consensus.NewFactory()
	tc, teardown, err := factory.NewTestConsensus(&consensusConfig, "TestReindexDeepChainAttack")
	if err != nil {
		t.Fatalf("Error setting up consensus: %+v", err)
	}
	defer teardown(false)

	tc.ReachabilityManager().SetReachabilityReindexWindow(10)
	tc.ReachabilityManager().SetReachabilityReindexSlack(10)

	const honestChainLength = 120
	const attackChainLength = 80

	addChain := func(forkPoint *externalapi.DomainHash, length int) *externalapi.DomainHash {
		tipHash := forkPoint
		for i := 0; i < length; i++ {
			var err error
			tipHash, _, err = tc.AddBlock([]*externalapi.DomainHash{tipHash}, nil, nil)
			if err != nil {
				t.Fatalf("Error adding block: %+v", err)
			}
		}
		return tipHash
	}

	// Give the honest chain a head start so the reindex root advances
	// well past the attacker's fork points.
	honestChainTipHash := addChain(consensusConfig.GenesisHash, honestChainLength)

	// Each round the attacker extends its chain by a chunk that lands
	// entirely behind the current reindex root, and the honest chain
	// grows enough to keep the attacker out of the selected chain.
	attackChainTipHash := consensusConfig.GenesisHash
	for round := 0; round < 3; round++ {
		attackChainTipHash = addChain(attackChainTipHash, attackChainLength)
		honestChainTipHash = addChain(honestChainTipHash, honestChainLength/2)
	}

	virtualSelectedParent, err := tc.GetVirtualSelectedParent()
	if err != nil {
		t.Fatalf("Error getting virtual selected parent: %+v", err)
	}
	if !virtualSelectedParent.Equal(honestChainTipHash) {
		t.Fatalf("The honest chain tip is expected to be the virtual selected parent")
	}

	err = tc.ReachabilityManager().ValidateIntervals(consensusConfig.GenesisHash)
	if err != nil {
		t.Fatalf("Interval validation failed: %+v", err)
	}

	// One node per added block, plus genesis itself.
	expectedNodeAmount := 1 + honestChainLength + 3*(attackChainLength+honestChainLength/2)
	nodes, err := tc.ReachabilityManager().GetAllNodes(consensusConfig.GenesisHash)
	if err != nil {
		t.Fatalf("Error getting all reachability tree nodes: %+v", err)
	}
	if len(nodes) != expectedNodeAmount {
		t.Fatalf("Expected the reachability tree to have %d nodes, found %d",
			expectedNodeAmount, len(nodes))
	}
}

// TestReindexNoAttack checks that interval allocations stay valid under
// ordinary growth: a single chain long enough to move the reindex root
// many times over.
func TestReindexNoAttack(t *testing.T) {
	consensusConfig := consensus.Config{Params: dagconfig.SimnetParams}
	consensusConfig.SkipProofOfWork = true

	factory := consensus.NewFactory()
	tc, teardown, err := factory.NewTestConsensus(&consensusConfig, "TestReindexNoAttack")
	if err != nil {
		t.Fatalf("Error setting up consensus: %+v", err)
	}
	defer teardown(false)

	tc.ReachabilityManager().SetReachabilityReindexWindow(10)
	tc.ReachabilityManager().SetReachabilityReindexSlack(10)

	const chainLength = 300
	tipHash := consensusConfig.GenesisHash
	for i := 0; i < chainLength; i++ {
		tipHash, _, err = tc.AddBlock([]*externalapi.DomainHash{tipHash}, nil, nil)
		if err != nil {
			t.Fatalf("Error adding block: %+v", err)
		}
	}

	err = tc.ReachabilityManager().ValidateIntervals(consensusConfig.GenesisHash)
	if err != nil {
		t.Fatalf("Interval validation failed: %+v", err)
	}
}
