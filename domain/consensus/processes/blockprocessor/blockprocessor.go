package blockprocessor

import (
	"time"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
)

// blockProcessor is responsible for processing incoming blocks
// and creating blocks from the current state
type blockProcessor struct {
	genesisHash        *externalapi.DomainHash
	targetTimePerBlock time.Duration
	databaseContext    model.DBManager

	consensusStateManager model.ConsensusStateManager
	pruningManager        model.PruningManager
	blockValidator        model.BlockValidator
	dagTopologyManager    model.DAGTopologyManager
	reachabilityManager   model.ReachabilityManager
	difficultyManager     model.DifficultyManager
	pastMedianTimeManager model.PastMedianTimeManager
	coinbaseManager       model.CoinbaseManager

	acceptanceDataStore   model.AcceptanceDataStore
	blockStore            model.BlockStore
	blockStatusStore      model.BlockStatusStore
	blockRelationStore    model.BlockRelationStore
	multisetStore         model.MultisetStore
	ghostdagDataStore     model.GHOSTDAGDataStore
	consensusStateStore   model.ConsensusStateStore
	pruningStore          model.PruningStore
	reachabilityDataStore model.ReachabilityDataStore
	utxoDiffStore         model.UTXODiffStore
	blockHeaderStore      model.BlockHeaderStore
	finalityStore         model.FinalityStore
	daaBlocksStore        model.DAABlocksStore
}

// New instantiates a new BlockProcessor
func New(
	genesisHash *externalapi.DomainHash,
	targetTimePerBlock time.Duration,
	databaseContext model.DBManager,

	consensusStateManager model.ConsensusStateManager,
	pruningManager model.PruningManager,
	blockValidator model.BlockValidator,
	dagTopologyManager model.DAGTopologyManager,
	reachabilityManager model.ReachabilityManager,
	difficultyManager model.DifficultyManager,
	pastMedianTimeManager model.PastMedianTimeManager,
	coinbaseManager model.CoinbaseManager,

	acceptanceDataStore model.AcceptanceDataStore,
	blockStore model.BlockStore,
	blockStatusStore model.BlockStatusStore,
	blockRelationStore model.BlockRelationStore,
	multisetStore model.MultisetStore,
	ghostdagDataStore model.GHOSTDAGDataStore,
	consensusStateStore model.ConsensusStateStore,
	pruningStore model.PruningStore,
	reachabilityDataStore model.ReachabilityDataStore,
	utxoDiffStore model.UTXODiffStore,
	blockHeaderStore model.BlockHeaderStore,
	finalityStore model.FinalityStore,
	daaBlocksStore model.DAABlocksStore) model.BlockProcessor {

	return &blockProcessor{
		genesisHash:        genesisHash,
		targetTimePerBlock: targetTimePerBlock,
		databaseContext:    databaseContext,

		consensusStateManager: consensusStateManager,
		pruningManager:        pruningManager,
		blockValidator:        blockValidator,
		dagTopologyManager:    dagTopologyManager,
		reachabilityManager:   reachabilityManager,
		difficultyManager:     difficultyManager,
		pastMedianTimeManager: pastMedianTimeManager,
		coinbaseManager:       coinbaseManager,

		acceptanceDataStore:   acceptanceDataStore,
		blockStore:            blockStore,
		blockStatusStore:      blockStatusStore,
		blockRelationStore:    blockRelationStore,
		multisetStore:         multisetStore,
		ghostdagDataStore:     ghostdagDataStore,
		consensusStateStore:   consensusStateStore,
		pruningStore:          pruningStore,
		reachabilityDataStore: reachabilityDataStore,
		utxoDiffStore:         utxoDiffStore,
		blockHeaderStore:      blockHeaderStore,
		finalityStore:         finalityStore,
		daaBlocksStore:        daaBlocksStore,
	}
}

// ValidateAndInsertBlock validates the given block and, if valid, applies it
// to the current state
func (bp *blockProcessor) ValidateAndInsertBlock(block *externalapi.DomainBlock, updateVirtual bool) (
	*externalapi.VirtualChangeSet, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "ValidateAndInsertBlock")
	defer onEnd()

	stagingArea := model.NewStagingArea()
	return bp.validateAndInsertBlock(stagingArea, block, updateVirtual)
}
