package blockvalidator

import (
	"math/big"
	"time"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/util/txmass"
)

// blockValidator exposes a set of validation classes, after which
// it's possible to determine whether either a block is valid
type blockValidator struct {
	powMax                      *big.Int
	skipPoW                     bool
	genesisHash                 *externalapi.DomainHash
	maxBlockMass                uint64
	mergeSetSizeLimit           uint64
	maxBlockParents             model.KType
	timestampDeviationTolerance uint64
	targetTimePerBlock          time.Duration

	databaseContext       model.DBReader
	difficultyManager     model.DifficultyManager
	pastMedianTimeManager model.PastMedianTimeManager
	transactionValidator  model.TransactionValidator
	ghostdagManager       model.GHOSTDAGManager
	dagTopologyManager    model.DAGTopologyManager
	coinbaseManager       model.CoinbaseManager
	mergeDepthManager     model.MergeDepthManager
	reachabilityManager   model.ReachabilityManager
	pruningManager        model.PruningManager

	pruningStore          model.PruningStore
	blockStore            model.BlockStore
	ghostdagDataStore     model.GHOSTDAGDataStore
	blockHeaderStore      model.BlockHeaderStore
	blockStatusStore      model.BlockStatusStore
	reachabilityDataStore model.ReachabilityDataStore
	daaBlocksStore        model.DAABlocksStore

	txMassCalculator *txmass.Calculator
}

// New instantiates a new BlockValidator
func New(powMax *big.Int,
	skipPoW bool,
	genesisHash *externalapi.DomainHash,
	maxBlockMass uint64,
	mergeSetSizeLimit uint64,
	maxBlockParents model.KType,
	timestampDeviationTolerance uint64,
	targetTimePerBlock time.Duration,

	databaseContext model.DBReader,

	difficultyManager model.DifficultyManager,
	pastMedianTimeManager model.PastMedianTimeManager,
	transactionValidator model.TransactionValidator,
	ghostdagManager model.GHOSTDAGManager,
	dagTopologyManager model.DAGTopologyManager,
	coinbaseManager model.CoinbaseManager,
	mergeDepthManager model.MergeDepthManager,
	reachabilityManager model.ReachabilityManager,
	pruningManager model.PruningManager,

	pruningStore model.PruningStore,
	blockStore model.BlockStore,
	ghostdagDataStore model.GHOSTDAGDataStore,
	blockHeaderStore model.BlockHeaderStore,
	blockStatusStore model.BlockStatusStore,
	reachabilityDataStore model.ReachabilityDataStore,
	daaBlocksStore model.DAABlocksStore,

	txMassCalculator *txmass.Calculator,
) model.BlockValidator {

	return &blockValidator{
		powMax:                      powMax,
		skipPoW:                     skipPoW,
		genesisHash:                 genesisHash,
		maxBlockMass:                maxBlockMass,
		mergeSetSizeLimit:           mergeSetSizeLimit,
		maxBlockParents:             maxBlockParents,
		timestampDeviationTolerance: timestampDeviationTolerance,
		targetTimePerBlock:          targetTimePerBlock,

		databaseContext:       databaseContext,
		difficultyManager:     difficultyManager,
		pastMedianTimeManager: pastMedianTimeManager,
		transactionValidator:  transactionValidator,
		ghostdagManager:       ghostdagManager,
		dagTopologyManager:    dagTopologyManager,
		coinbaseManager:       coinbaseManager,
		mergeDepthManager:     mergeDepthManager,
		reachabilityManager:   reachabilityManager,
		pruningManager:        pruningManager,

		pruningStore:          pruningStore,
		blockStore:            blockStore,
		ghostdagDataStore:     ghostdagDataStore,
		blockHeaderStore:      blockHeaderStore,
		blockStatusStore:      blockStatusStore,
		reachabilityDataStore: reachabilityDataStore,
		daaBlocksStore:        daaBlocksStore,

		txMassCalculator: txMassCalculator,
	}
}
