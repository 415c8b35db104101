package consensus

import (
	"math/rand"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/testapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/consensushashing"
	"github.com/cobaltnet/cobaltd/domain/dagconfig"
	infrastructuredatabase "github.com/cobaltnet/cobaltd/infrastructure/db/database"
	"github.com/cobaltnet/cobaltd/util/difficulty"
)

type testConsensus struct {
	*consensus
	dagParams *dagconfig.Params
	database  infrastructuredatabase.Database

	testBlockBuilder          testapi.TestBlockBuilder
	testReachabilityManager   testapi.TestReachabilityManager
	testConsensusStateManager testapi.TestConsensusStateManager
	testTransactionValidator  testapi.TestTransactionValidator
}

func (tc *testConsensus) DAGParams() *dagconfig.Params {
	return tc.dagParams
}

func (tc *testConsensus) DatabaseContext() model.DBManager {
	return tc.databaseContext
}

// BuildBlockWithParents builds a block over the given parents rather than over
// the current virtual, without inserting it.
func (tc *testConsensus) BuildBlockWithParents(parentHashes []*externalapi.DomainHash,
	coinbaseData *externalapi.DomainCoinbaseData, transactions []*externalapi.DomainTransaction) (
	*externalapi.DomainBlock, externalapi.UTXODiff, error) {

	// Require write lock because BuildBlockWithParents stages temporary data
	tc.lock.Lock()
	defer tc.lock.Unlock()

	return tc.testBlockBuilder.BuildBlockWithParents(parentHashes, coinbaseData, transactions)
}

// AddBlock builds a block over the given parents, solves it and submits it to
// the consensus. When coinbaseData is nil a payless coinbase is used, so that
// blocks built by different tests are deterministic apart from the nonce.
func (tc *testConsensus) AddBlock(parentHashes []*externalapi.DomainHash, coinbaseData *externalapi.DomainCoinbaseData,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainHash, *externalapi.VirtualChangeSet, error) {

	block, _, err := tc.BuildBlockWithParents(parentHashes, coinbaseData, transactions)
	if err != nil {
		return nil, nil, err
	}

	solveBlock(block)

	virtualChangeSet, err := tc.ValidateAndInsertBlock(block, true)
	if err != nil {
		return nil, nil, err
	}

	return consensushashing.BlockHash(block), virtualChangeSet, nil
}

// solveBlock increments the block's nonce until its hash satisfies the claimed
// target. The nonce starts at a random offset so that identical block bodies
// still produce distinct hashes across runs.
func solveBlock(block *externalapi.DomainBlock) {
	targetDifficulty := difficulty.CompactToBig(block.Header.Bits())
	headerForMining := block.Header.ToMutable()
	initialNonce := rand.Uint64()
	for i := initialNonce; i != initialNonce-1; i++ {
		headerForMining.SetNonce(i)

		hash := consensushashing.HeaderHash(headerForMining)
		if difficulty.HashToBig(hash).Cmp(targetDifficulty) <= 0 {
			block.Header = headerForMining.ToImmutable()
			return
		}
	}

	panic("went over all the nonce space and couldn't find a single one that gives a valid block")
}
