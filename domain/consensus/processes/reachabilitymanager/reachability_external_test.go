package reachabilitymanager_test

import (
	"math/rand"
	"testing"

	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/dagconfig"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/staging"
)

// TestIsDAGAncestorOfAgreesWithParentRelation builds a randomized DAG and compares every
// reachability answer against one derived by walking the parent relation directly.
func TestIsDAGAncestorOfAgreesWithParentRelation(t *testing.T) {
	consensusConfig := consensus.Config{Params: dagconfig.SimnetParams}
	consensusConfig.SkipProofOfWork = true

	factory := consensus.NewFactory()
	tc, teardown, err := factory.NewTestConsensus(&consensusConfig, "TestIsDAGAncestorOfAgreesWithParentRelation")
	if err != nil {
		t.Fatalf("Error setting up consensus: %+v", err)
	}
	defer teardown(false)

	rng := rand.New(rand.NewSource(42))

	blocks := []*externalapi.DomainHash{consensusConfig.GenesisHash}
	parentsOf := map[externalapi.DomainHash][]*externalapi.DomainHash{}

	// Parents are drawn from the current tip set, which always forms an
	// antichain. Leaving out some tips from time to time keeps the DAG wide.
	tips := []*externalapi.DomainHash{consensusConfig.GenesisHash}
	const blockAmount = 50
	for i := 0; i < blockAmount; i++ {
		parentAmount := 1 + rng.Intn(2)
		if parentAmount > len(tips) {
			parentAmount = len(tips)
		}
		shuffled := make([]*externalapi.DomainHash, len(tips))
		copy(shuffled, tips)
		rng.Shuffle(len(shuffled), func(i, j int) { shuffled[i], shuffled[j] = shuffled[j], shuffled[i] })
		parents := shuffled[:parentAmount]

		blockHash, _, err := tc.AddBlock(parents, nil, nil)
		if err != nil {
			t.Fatalf("Error adding block %d: %+v", i, err)
		}
		blocks = append(blocks, blockHash)
		parentsOf[*blockHash] = parents

		newTips := []*externalapi.DomainHash{blockHash}
		newTips = append(newTips, shuffled[parentAmount:]...)
		tips = newTips
	}

	isAncestorByParentRelation := func(a, b *externalapi.DomainHash) bool {
		if a.Equal(b) {
			return true
		}
		visited := map[externalapi.DomainHash]bool{}
		queue := []*externalapi.DomainHash{b}
		for len(queue) > 0 {
			current := queue[0]
			queue = queue[1:]
			for _, parent := range parentsOf[*current] {
				if parent.Equal(a) {
					return true
				}
				if !visited[*parent] {
					visited[*parent] = true
					queue = append(queue, parent)
				}
			}
		}
		return false
	}

	stagingArea := model.NewStagingArea()
	for _, a := range blocks {
		for _, b := range blocks {
			expected := isAncestorByParentRelation(a, b)
			actual, err := tc.ReachabilityManager().IsDAGAncestorOf(stagingArea, a, b)
			if err != nil {
				t.Fatalf("IsDAGAncestorOf(%s, %s) unexpectedly failed: %+v", a, b, err)
			}
			if actual != expected {
				t.Fatalf("IsDAGAncestorOf(%s, %s) returned %t while the parent relation says %t",
					a, b, actual, expected)
			}
		}
	}

	err = tc.ReachabilityManager().ValidateIntervals(consensusConfig.GenesisHash)
	if err != nil {
		t.Fatalf("Interval validation failed: %+v", err)
	}
}

// TestReachabilityInitIsIdempotent verifies that initializing the reachability structure on an
// already initialized consensus stages nothing that would alter the tree.
func TestReachabilityInitIsIdempotent(t *testing.T) {
	consensusConfig := consensus.Config{Params: dagconfig.SimnetParams}
	consensusConfig.SkipProofOfWork = true

	factory := consensus.NewFactory()
	tc, teardown, err := factory.NewTestConsensus(&consensusConfig, "TestReachabilityInitIsIdempotent")
	if err != nil {
		t.Fatalf("Error setting up consensus: %+v", err)
	}
	defer teardown(false)

	tipHash := consensusConfig.GenesisHash
	for i := 0; i < 10; i++ {
		tipHash, _, err = tc.AddBlock([]*externalapi.DomainHash{tipHash}, nil, nil)
		if err != nil {
			t.Fatalf("Error adding block: %+v", err)
		}
	}

	nodesBefore, err := tc.ReachabilityManager().GetAllNodes(consensusConfig.GenesisHash)
	if err != nil {
		t.Fatalf("Error getting all reachability tree nodes: %+v", err)
	}

	stagingArea := model.NewStagingArea()
	err = tc.ReachabilityManager().Init(stagingArea)
	if err != nil {
		t.Fatalf("Error initializing reachability a second time: %+v", err)
	}
	err = staging.CommitAllChanges(tc.DatabaseContext(), stagingArea)
	if err != nil {
		t.Fatalf("Error committing staged changes: %+v", err)
	}

	nodesAfter, err := tc.ReachabilityManager().GetAllNodes(consensusConfig.GenesisHash)
	if err != nil {
		t.Fatalf("Error getting all reachability tree nodes: %+v", err)
	}
	if len(nodesBefore) != len(nodesAfter) {
		t.Fatalf("Expected the reachability tree to still have %d nodes, found %d",
			len(nodesBefore), len(nodesAfter))
	}
	err = tc.ReachabilityManager().ValidateIntervals(consensusConfig.GenesisHash)
	if err != nil {
		t.Fatalf("Interval validation failed: %+v", err)
	}
}
