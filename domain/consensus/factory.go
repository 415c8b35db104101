package consensus

import (
	"io/ioutil"
	"os"
	"sync"

	consensusdatabase "github.com/cobaltnet/cobaltd/domain/consensus/database"
	"github.com/cobaltnet/cobaltd/domain/consensus/datastructures/acceptancedatastore"
	"github.com/cobaltnet/cobaltd/domain/consensus/datastructures/blockheaderstore"
	"github.com/cobaltnet/cobaltd/domain/consensus/datastructures/blockrelationstore"
	"github.com/cobaltnet/cobaltd/domain/consensus/datastructures/blockstatusstore"
	"github.com/cobaltnet/cobaltd/domain/consensus/datastructures/blockstore"
	"github.com/cobaltnet/cobaltd/domain/consensus/datastructures/consensusstatestore"
	"github.com/cobaltnet/cobaltd/domain/consensus/datastructures/daablocksstore"
	"github.com/cobaltnet/cobaltd/domain/consensus/datastructures/finalitystore"
	"github.com/cobaltnet/cobaltd/domain/consensus/datastructures/ghostdagdatastore"
	"github.com/cobaltnet/cobaltd/domain/consensus/datastructures/multisetstore"
	"github.com/cobaltnet/cobaltd/domain/consensus/datastructures/pruningstore"
	"github.com/cobaltnet/cobaltd/domain/consensus/datastructures/reachabilitydatastore"
	"github.com/cobaltnet/cobaltd/domain/consensus/datastructures/utxodiffstore"
	"github.com/cobaltnet/cobaltd/domain/consensus/datastructures/windowheapslicestore"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/testapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/blockbuilder"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/blockprocessor"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/blockvalidator"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/coinbasemanager"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/consensusstatemanager"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/dagtopologymanager"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/dagtraversalmanager"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/difficultymanager"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/finalitymanager"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/ghostdagmanager"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/mergedepthmanager"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/pastmediantimemanager"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/pruningmanager"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/pruningprocessor"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/reachabilitymanager"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/transactionvalidator"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/txscript"
	"github.com/cobaltnet/cobaltd/domain/prefixmanager/prefix"
	infrastructuredatabase "github.com/cobaltnet/cobaltd/infrastructure/db/database"
	"github.com/cobaltnet/cobaltd/infrastructure/db/database/ldb"
	"github.com/cobaltnet/cobaltd/util/txmass"
)

const defaultTestLevelDBCacheSizeMiB = 8

// Factory instantiates new Consensuses
type Factory interface {
	// NewConsensus wires a full consensus over the given database. The
	// returned consensus is not yet usable: the caller must call Init on
	// it exactly once, and Shutdown when done with it.
	NewConsensus(config *Config, db infrastructuredatabase.Database, dbPrefix *prefix.Prefix,
		virtualChangeCallback externalapi.VirtualChangeCallback) (externalapi.Consensus, error)
	NewTestConsensus(config *Config, testName string) (
		tc testapi.TestConsensus, teardown func(keepDataDir bool), err error)

	SetTestGHOSTDAGManager(ghostdagConstructor GHOSTDAGManagerConstructor)
	SetTestDifficultyManager(difficultyConstructor DifficultyManagerConstructor)
	SetTestPastMedianTimeManager(medianTimeConstructor PastMedianTimeManagerConstructor)
	SetTestLevelDBCacheSize(cacheSizeMiB int)
}

type factory struct {
	ghostdagConstructor       GHOSTDAGManagerConstructor
	difficultyConstructor     DifficultyManagerConstructor
	pastMedianTimeConstructor PastMedianTimeManagerConstructor
	cacheSizeMiB              *int
}

// NewFactory creates a new Consensus factory
func NewFactory() Factory {
	return &factory{
		ghostdagConstructor:       ghostdagmanager.New,
		difficultyConstructor:     difficultymanager.New,
		pastMedianTimeConstructor: pastmediantimemanager.New,
	}
}

// NewConsensus instantiates a new Consensus
func (f *factory) NewConsensus(config *Config, db infrastructuredatabase.Database, dbPrefix *prefix.Prefix,
	virtualChangeCallback externalapi.VirtualChangeCallback) (externalapi.Consensus, error) {

	dbManager := consensusdatabase.New(db)
	prefixBucket := consensusdatabase.MakeBucket(dbPrefix.Serialize())

	// The GHOSTDAG and reachability caches hold an entry per block in the
	// pruning window, so that resolving the virtual never hits disk for
	// recent blocks.
	pruningWindowSizeForCaches := int(config.PruningDepth())
	if pruningWindowSizeForCaches < config.DifficultyAdjustmentWindowSize {
		pruningWindowSizeForCaches = config.DifficultyAdjustmentWindowSize
	}

	// Data Structures
	acceptanceDataStore := acceptancedatastore.New(prefixBucket, 200)
	blockStore, err := blockstore.New(dbManager, prefixBucket, 200)
	if err != nil {
		return nil, err
	}
	blockHeaderStore, err := blockheaderstore.New(dbManager, prefixBucket, 10_000)
	if err != nil {
		return nil, err
	}
	blockRelationStore := blockrelationstore.New(prefixBucket, 200)
	blockStatusStore := blockstatusstore.New(prefixBucket, 200)
	multisetStore := multisetstore.New(prefixBucket, 200)
	pruningStore := pruningstore.New(prefixBucket, 2)
	reachabilityDataStore := reachabilitydatastore.New(prefixBucket, pruningWindowSizeForCaches)
	utxoDiffStore := utxodiffstore.New(prefixBucket, 200)
	consensusStateStore := consensusstatestore.New(prefixBucket, 10_000)
	ghostdagDataStore := ghostdagdatastore.New(prefixBucket, pruningWindowSizeForCaches)
	daaBlocksStore := daablocksstore.New(prefixBucket, pruningWindowSizeForCaches, 200)
	finalityStore := finalitystore.New(prefixBucket, 200)
	windowHeapSliceStore := windowheapslicestore.New(2000)

	genesisBits := config.GenesisBlock.Header.Bits()
	sigCache := txscript.NewSigCache(10_000)
	txMassCalculator := txmass.NewCalculator(config.MassPerTxByte, config.MassPerScriptPubKeyByte, config.MassPerSigOp)

	// Processes
	reachabilityManager := reachabilitymanager.New(
		dbManager,
		ghostdagDataStore,
		reachabilityDataStore)
	dagTopologyManager := dagtopologymanager.New(
		dbManager,
		reachabilityManager,
		blockRelationStore,
		ghostdagDataStore)
	ghostdagManager := f.ghostdagConstructor(
		dbManager,
		dagTopologyManager,
		ghostdagDataStore,
		blockHeaderStore,
		config.K)
	dagTraversalManager := dagtraversalmanager.New(
		dbManager,
		dagTopologyManager,
		ghostdagDataStore,
		reachabilityDataStore,
		ghostdagManager,
		windowHeapSliceStore,
		config.GenesisHash,
		config.DifficultyAdjustmentWindowSize)
	difficultyManager := f.difficultyConstructor(
		dbManager,
		ghostdagDataStore,
		blockHeaderStore,
		daaBlocksStore,
		dagTraversalManager,
		config.PowMax,
		config.DifficultyAdjustmentWindowSize,
		config.DisableDifficultyAdjustment,
		config.TargetTimePerBlock,
		config.GenesisHash,
		genesisBits)
	pastMedianTimeManager := f.pastMedianTimeConstructor(
		int(config.TimestampDeviationTolerance),
		dbManager,
		dagTraversalManager,
		blockHeaderStore,
		ghostdagDataStore,
		config.GenesisHash)
	coinbaseManager := coinbasemanager.New(
		dbManager,
		config.BaseSubsidy,
		config.CoinbasePayloadScriptPublicKeyMaxLength,
		ghostdagDataStore,
		acceptanceDataStore)
	transactionValidator := transactionvalidator.New(
		config.BlockCoinbaseMaturity,
		config.EnableNonNativeSubnetworks,
		config.MaxCoinbasePayloadLength,
		dbManager,
		pastMedianTimeManager,
		daaBlocksStore,
		sigCache,
		txMassCalculator)
	finalityManager := finalitymanager.New(
		dbManager,
		dagTopologyManager,
		finalityStore,
		ghostdagDataStore,
		config.GenesisHash,
		config.FinalityDepth())
	mergeDepthManager := mergedepthmanager.New(
		dbManager,
		dagTopologyManager,
		finalityManager,
		ghostdagDataStore)
	consensusStateManager, err := consensusstatemanager.New(
		dbManager,
		config.MaxBlockParents,
		config.MergeSetSizeLimit,
		config.MaxBlockMass,
		config.GenesisHash,
		ghostdagManager,
		dagTopologyManager,
		dagTraversalManager,
		pastMedianTimeManager,
		transactionValidator,
		coinbaseManager,
		mergeDepthManager,
		finalityManager,
		difficultyManager,
		blockStatusStore,
		ghostdagDataStore,
		consensusStateStore,
		multisetStore,
		blockStore,
		utxoDiffStore,
		acceptanceDataStore,
		blockHeaderStore,
		pruningStore,
		daaBlocksStore)
	if err != nil {
		return nil, err
	}
	pruningManager := pruningmanager.New(
		dbManager,
		dagTraversalManager,
		dagTopologyManager,
		consensusStateStore,
		ghostdagDataStore,
		pruningStore,
		blockStatusStore,
		multisetStore,
		acceptanceDataStore,
		blockStore,
		blockHeaderStore,
		utxoDiffStore,
		daaBlocksStore,
		config.IsArchival,
		config.GenesisHash,
		config.FinalityDepth(),
		config.PruningDepth(),
		config.EnableSanityCheckPruningUTXOSet)
	blockValidator := blockvalidator.New(
		config.PowMax,
		config.SkipProofOfWork,
		config.GenesisHash,
		config.MaxBlockMass,
		config.MergeSetSizeLimit,
		config.MaxBlockParents,
		config.TimestampDeviationTolerance,
		config.TargetTimePerBlock,

		dbManager,
		difficultyManager,
		pastMedianTimeManager,
		transactionValidator,
		ghostdagManager,
		dagTopologyManager,
		coinbaseManager,
		mergeDepthManager,
		reachabilityManager,
		pruningManager,

		pruningStore,
		blockStore,
		ghostdagDataStore,
		blockHeaderStore,
		blockStatusStore,
		reachabilityDataStore,
		daaBlocksStore,

		txMassCalculator)
	blockBuilder := blockbuilder.New(
		dbManager,
		difficultyManager,
		pastMedianTimeManager,
		coinbaseManager,
		consensusStateManager,
		ghostdagManager,
		pruningManager,
		acceptanceDataStore,
		blockRelationStore,
		multisetStore,
		ghostdagDataStore,
		daaBlocksStore)
	blockProcessor := blockprocessor.New(
		config.GenesisHash,
		config.TargetTimePerBlock,
		dbManager,
		consensusStateManager,
		pruningManager,
		blockValidator,
		dagTopologyManager,
		reachabilityManager,
		difficultyManager,
		pastMedianTimeManager,
		coinbaseManager,
		acceptanceDataStore,
		blockStore,
		blockStatusStore,
		blockRelationStore,
		multisetStore,
		ghostdagDataStore,
		consensusStateStore,
		pruningStore,
		reachabilityDataStore,
		utxoDiffStore,
		blockHeaderStore,
		finalityStore,
		daaBlocksStore)

	lock := &sync.RWMutex{}
	pruningProcessor := pruningprocessor.New(
		lock,
		dbManager,
		pruningStore,
		pruningManager)

	return &consensus{
		lock:            lock,
		databaseContext: dbManager,

		genesisBlock: config.GenesisBlock,
		genesisHash:  config.GenesisHash,

		virtualChangeCallback: virtualChangeCallback,

		blockBuilder:          blockBuilder,
		blockProcessor:        blockProcessor,
		blockValidator:        blockValidator,
		consensusStateManager: consensusStateManager,
		transactionValidator:  transactionValidator,
		pruningManager:        pruningManager,
		dagTopologyManager:    dagTopologyManager,
		dagTraversalManager:   dagTraversalManager,
		pastMedianTimeManager: pastMedianTimeManager,
		difficultyManager:     difficultyManager,
		ghostdagManager:       ghostdagManager,
		coinbaseManager:       coinbaseManager,
		mergeDepthManager:     mergeDepthManager,
		finalityManager:       finalityManager,
		reachabilityManager:   reachabilityManager,

		pruningProcessor: pruningProcessor,

		acceptanceDataStore:   acceptanceDataStore,
		blockStore:            blockStore,
		blockHeaderStore:      blockHeaderStore,
		blockStatusStore:      blockStatusStore,
		blockRelationStore:    blockRelationStore,
		consensusStateStore:   consensusStateStore,
		ghostdagDataStore:     ghostdagDataStore,
		pruningStore:          pruningStore,
		reachabilityDataStore: reachabilityDataStore,
		utxoDiffStore:         utxoDiffStore,
		finalityStore:         finalityStore,
		multisetStore:         multisetStore,
		daaBlocksStore:        daaBlocksStore,
	}, nil
}

// NewTestConsensus creates a Consensus instance for testing purposes, backed
// by a LevelDB instance in a fresh temporary directory. Unlike NewConsensus,
// the returned consensus is already initialized.
func (f *factory) NewTestConsensus(config *Config, testName string) (
	tc testapi.TestConsensus, teardown func(keepDataDir bool), err error) {

	cacheSizeMiB := defaultTestLevelDBCacheSizeMiB
	if f.cacheSizeMiB != nil {
		cacheSizeMiB = *f.cacheSizeMiB
	}

	dataDir, err := ioutil.TempDir("", testName)
	if err != nil {
		return nil, nil, err
	}
	db, err := ldb.NewLevelDB(dataDir, cacheSizeMiB)
	if err != nil {
		return nil, nil, err
	}

	testConsensusDBPrefix := &prefix.Prefix{}
	consensusAsInterface, err := f.NewConsensus(config, db, testConsensusDBPrefix, nil)
	if err != nil {
		return nil, nil, err
	}

	consensusAsImplementation := consensusAsInterface.(*consensus)

	tstConsensus := &testConsensus{
		dagParams: &config.Params,
		database:  db,
		consensus: consensusAsImplementation,
		testBlockBuilder: blockbuilder.NewTestBlockBuilder(
			consensusAsImplementation.blockBuilder),
		testReachabilityManager: reachabilitymanager.NewTestReachabilityManager(
			consensusAsImplementation.reachabilityManager),
		testConsensusStateManager: consensusstatemanager.NewTestConsensusStateManager(
			consensusAsImplementation.consensusStateManager),
		testTransactionValidator: transactionvalidator.NewTestTransactionValidator(
			consensusAsImplementation.transactionValidator),
	}

	err = tstConsensus.Init()
	if err != nil {
		return nil, nil, err
	}

	teardown = func(keepDataDir bool) {
		tstConsensus.Shutdown()
		err := db.Close()
		if err != nil {
			log.Errorf("Error closing the database when tearing down test consensus: %s", err)
		}
		if !keepDataDir {
			err := os.RemoveAll(dataDir)
			if err != nil {
				log.Errorf("Error removing the data directory when tearing down test consensus: %s", err)
			}
		}
	}

	return tstConsensus, teardown, nil
}

func (f *factory) SetTestGHOSTDAGManager(ghostdagConstructor GHOSTDAGManagerConstructor) {
	f.ghostdagConstructor = ghostdagConstructor
}

func (f *factory) SetTestDifficultyManager(difficultyConstructor DifficultyManagerConstructor) {
	f.difficultyConstructor = difficultyConstructor
}

func (f *factory) SetTestPastMedianTimeManager(medianTimeConstructor PastMedianTimeManagerConstructor) {
	f.pastMedianTimeConstructor = medianTimeConstructor
}

func (f *factory) SetTestLevelDBCacheSize(cacheSizeMiB int) {
	f.cacheSizeMiB = &cacheSizeMiB
}
