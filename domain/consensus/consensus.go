package consensus

import (
	"sync"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/processes/pruningprocessor"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/staging"
	"github.com/pkg/errors"
)

type consensus struct {
	// lock guards the entire domain: every call observes a single
	// consistent virtual state. The pruning processor shares the lock
	// and takes the read half during its decision phase.
	lock            *sync.RWMutex
	databaseContext model.DBManager

	genesisBlock *externalapi.DomainBlock
	genesisHash  *externalapi.DomainHash

	virtualChangeCallback externalapi.VirtualChangeCallback

	blockBuilder          model.BlockBuilder
	blockProcessor        model.BlockProcessor
	blockValidator        model.BlockValidator
	consensusStateManager model.ConsensusStateManager
	transactionValidator  model.TransactionValidator
	pruningManager        model.PruningManager
	dagTopologyManager    model.DAGTopologyManager
	dagTraversalManager   model.DAGTraversalManager
	pastMedianTimeManager model.PastMedianTimeManager
	difficultyManager     model.DifficultyManager
	ghostdagManager       model.GHOSTDAGManager
	coinbaseManager       model.CoinbaseManager
	mergeDepthManager     model.MergeDepthManager
	finalityManager       model.FinalityManager
	reachabilityManager   model.ReachabilityManager

	pruningProcessor *pruningprocessor.PruningProcessor

	acceptanceDataStore   model.AcceptanceDataStore
	blockStore            model.BlockStore
	blockHeaderStore      model.BlockHeaderStore
	blockStatusStore      model.BlockStatusStore
	blockRelationStore    model.BlockRelationStore
	consensusStateStore   model.ConsensusStateStore
	ghostdagDataStore     model.GHOSTDAGDataStore
	pruningStore          model.PruningStore
	reachabilityDataStore model.ReachabilityDataStore
	utxoDiffStore         model.UTXODiffStore
	finalityStore         model.FinalityStore
	multisetStore         model.MultisetStore
	daaBlocksStore        model.DAABlocksStore
}

// Init initializes the consensus state: on a fresh database it inserts the
// genesis block, and it resumes any pruning point UTXO set update that a
// crash left half-done. It also starts the pruning processor goroutine.
func (s *consensus) Init() error {
	err := s.initWithLock()
	if err != nil {
		return err
	}

	s.pruningProcessor.Start()
	return nil
}

func (s *consensus) initWithLock() error {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()

	err := s.reachabilityManager.Init(stagingArea)
	if err != nil {
		return err
	}
	err = staging.CommitAllChanges(s.databaseContext, stagingArea)
	if err != nil {
		return err
	}

	stagingArea = model.NewStagingArea()
	exists, err := s.blockStatusStore.Exists(s.databaseContext, stagingArea, s.genesisHash)
	if err != nil {
		return err
	}
	if !exists {
		log.Infof("Inserting the genesis block %s", s.genesisHash)
		_, err = s.blockProcessor.ValidateAndInsertBlock(s.genesisBlock, true)
		if err != nil {
			return err
		}
	}

	return s.pruningManager.UpdatePruningPointUTXOSetIfRequired()
}

// Shutdown stops the pruning processor, waiting for any update that is
// currently in flight to finish.
func (s *consensus) Shutdown() {
	s.pruningProcessor.Shutdown()
}

// BuildBlock builds a block over the current state, with the given
// coinbaseData and the given transactions
func (s *consensus) BuildBlock(coinbaseData *externalapi.DomainCoinbaseData,
	transactions []*externalapi.DomainTransaction) (*externalapi.DomainBlock, error) {

	s.lock.Lock()
	defer s.lock.Unlock()

	return s.blockBuilder.BuildBlock(coinbaseData, transactions)
}

// ValidateAndInsertBlock validates the given block and, if valid, applies it
// to the current state
func (s *consensus) ValidateAndInsertBlock(block *externalapi.DomainBlock, updateVirtual bool) (
	*externalapi.VirtualChangeSet, error) {

	virtualChangeSet, err := s.validateAndInsertBlockWithLock(block, updateVirtual)
	if err != nil {
		return nil, err
	}

	if updateVirtual {
		s.pruningProcessor.NotifyVirtualChange()
		if s.virtualChangeCallback != nil {
			s.virtualChangeCallback(virtualChangeSet)
		}
	}

	return virtualChangeSet, nil
}

func (s *consensus) validateAndInsertBlockWithLock(block *externalapi.DomainBlock, updateVirtual bool) (
	*externalapi.VirtualChangeSet, error) {

	s.lock.Lock()
	defer s.lock.Unlock()

	return s.blockProcessor.ValidateAndInsertBlock(block, updateVirtual)
}

// ValidateTransactionAndPopulateWithConsensusData validates the given
// transaction and populates it with any missing consensus data
func (s *consensus) ValidateTransactionAndPopulateWithConsensusData(transaction *externalapi.DomainTransaction) error {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()

	err := s.transactionValidator.ValidateTransactionInIsolation(transaction)
	if err != nil {
		return err
	}

	err = s.consensusStateManager.PopulateTransactionWithUTXOEntries(stagingArea, transaction)
	if err != nil {
		return err
	}

	err = s.transactionValidator.ValidateTransactionInContextIgnoringUTXO(
		stagingArea, transaction, model.VirtualBlockHash)
	if err != nil {
		return err
	}

	virtualSelectedParentMedianTime, err := s.pastMedianTimeManager.PastMedianTime(stagingArea, model.VirtualBlockHash)
	if err != nil {
		return err
	}

	return s.transactionValidator.ValidateTransactionInContextAndPopulateMassAndFee(
		stagingArea, transaction, model.VirtualBlockHash, virtualSelectedParentMedianTime)
}

func (s *consensus) GetBlock(blockHash *externalapi.DomainHash) (*externalapi.DomainBlock, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.blockStore.Block(s.databaseContext, model.NewStagingArea(), blockHash)
}

func (s *consensus) GetBlockHeader(blockHash *externalapi.DomainHash) (externalapi.BlockHeader, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.blockHeaderStore.BlockHeader(s.databaseContext, model.NewStagingArea(), blockHash)
}

// GetBlockInfo returns the existence, status and GHOSTDAG data of the given
// block. It never errs on a missing block: Exists is false instead.
func (s *consensus) GetBlockInfo(blockHash *externalapi.DomainHash) (*externalapi.BlockInfo, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()

	blockInfo := &externalapi.BlockInfo{}

	exists, err := s.blockStatusStore.Exists(s.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	blockInfo.Exists = exists
	if !exists {
		return blockInfo, nil
	}

	blockStatus, err := s.blockStatusStore.Get(s.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}
	blockInfo.BlockStatus = blockStatus

	// Invalid blocks don't have GHOSTDAG data
	if blockStatus == externalapi.StatusInvalid {
		return blockInfo, nil
	}

	ghostdagData, err := s.ghostdagDataStore.Get(s.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}

	blockInfo.BlueScore = ghostdagData.BlueScore()
	blockInfo.BlueWork = ghostdagData.BlueWork()
	blockInfo.SelectedParent = ghostdagData.SelectedParent()
	blockInfo.MergeSetBlues = ghostdagData.MergeSetBlues()
	blockInfo.MergeSetReds = ghostdagData.MergeSetReds()

	return blockInfo, nil
}

func (s *consensus) GetBlockAcceptanceData(blockHash *externalapi.DomainHash) (externalapi.AcceptanceData, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()

	err := s.validateBlockHashExists(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}

	return s.acceptanceDataStore.Get(s.databaseContext, stagingArea, blockHash)
}

func (s *consensus) GetBlockRelations(blockHash *externalapi.DomainHash) (
	parents []*externalapi.DomainHash, children []*externalapi.DomainHash, err error) {

	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()

	parents, err = s.dagTopologyManager.Parents(stagingArea, blockHash)
	if err != nil {
		return nil, nil, err
	}

	children, err = s.dagTopologyManager.Children(stagingArea, blockHash)
	if err != nil {
		return nil, nil, err
	}

	return parents, children, nil
}

// BlockDAAWindowHashes returns the difficulty adjustment window of the given
// block, the same window that determined its DAA score.
func (s *consensus) BlockDAAWindowHashes(blockHash *externalapi.DomainHash) ([]*externalapi.DomainHash, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()

	err := s.validateBlockHashExists(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}

	return s.dagTraversalManager.DAABlockWindow(stagingArea, blockHash)
}

func (s *consensus) GetVirtualSelectedParent() (*externalapi.DomainHash, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()

	virtualGHOSTDAGData, err := s.ghostdagDataStore.Get(s.databaseContext, stagingArea, model.VirtualBlockHash)
	if err != nil {
		return nil, err
	}
	return virtualGHOSTDAGData.SelectedParent(), nil
}

func (s *consensus) GetVirtualSelectedParentChainFromBlock(blockHash *externalapi.DomainHash) (
	*externalapi.SelectedChainPath, error) {

	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()

	err := s.validateBlockHashExists(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}

	return s.consensusStateManager.GetVirtualSelectedParentChainFromBlock(stagingArea, blockHash)
}

func (s *consensus) GetVirtualInfo() (*externalapi.VirtualInfo, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()

	blockRelations, err := s.blockRelationStore.BlockRelation(s.databaseContext, stagingArea, model.VirtualBlockHash)
	if err != nil {
		return nil, err
	}
	bits, err := s.difficultyManager.RequiredDifficulty(stagingArea, model.VirtualBlockHash)
	if err != nil {
		return nil, err
	}
	pastMedianTime, err := s.pastMedianTimeManager.PastMedianTime(stagingArea, model.VirtualBlockHash)
	if err != nil {
		return nil, err
	}
	virtualGHOSTDAGData, err := s.ghostdagDataStore.Get(s.databaseContext, stagingArea, model.VirtualBlockHash)
	if err != nil {
		return nil, err
	}
	daaScore, err := s.daaBlocksStore.DAAScore(s.databaseContext, stagingArea, model.VirtualBlockHash)
	if err != nil {
		return nil, err
	}

	return &externalapi.VirtualInfo{
		ParentHashes:   blockRelations.Parents,
		Bits:           bits,
		PastMedianTime: pastMedianTime,
		BlueScore:      virtualGHOSTDAGData.BlueScore(),
		DAAScore:       daaScore,
	}, nil
}

func (s *consensus) GetVirtualDAAScore() (uint64, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.daaBlocksStore.DAAScore(s.databaseContext, model.NewStagingArea(), model.VirtualBlockHash)
}

func (s *consensus) Tips() ([]*externalapi.DomainHash, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.consensusStateStore.Tips(model.NewStagingArea(), s.databaseContext)
}

// IsChainBlock returns whether the given block is in the selected parent
// chain of the virtual
func (s *consensus) IsChainBlock(blockHash *externalapi.DomainHash) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()

	err := s.validateBlockHashExists(stagingArea, blockHash)
	if err != nil {
		return false, err
	}

	virtualGHOSTDAGData, err := s.ghostdagDataStore.Get(s.databaseContext, stagingArea, model.VirtualBlockHash)
	if err != nil {
		return false, err
	}

	return s.dagTopologyManager.IsInSelectedParentChainOf(stagingArea, blockHash, virtualGHOSTDAGData.SelectedParent())
}

func (s *consensus) IsInSelectedParentChainOf(blockHashA *externalapi.DomainHash, blockHashB *externalapi.DomainHash) (
	bool, error) {

	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()

	err := s.validateBlockHashExists(stagingArea, blockHashA)
	if err != nil {
		return false, err
	}
	err = s.validateBlockHashExists(stagingArea, blockHashB)
	if err != nil {
		return false, err
	}

	return s.dagTopologyManager.IsInSelectedParentChainOf(stagingArea, blockHashA, blockHashB)
}

func (s *consensus) PruningPoint() (*externalapi.DomainHash, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	return s.pruningStore.PruningPoint(s.databaseContext, model.NewStagingArea())
}

func (s *consensus) IsValidPruningPoint(blockHash *externalapi.DomainHash) (bool, error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	stagingArea := model.NewStagingArea()

	err := s.validateBlockHashExists(stagingArea, blockHash)
	if err != nil {
		return false, err
	}

	return s.pruningManager.IsValidPruningPoint(stagingArea, blockHash)
}

func (s *consensus) validateBlockHashExists(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) error {
	exists, err := s.blockStatusStore.Exists(s.databaseContext, stagingArea, blockHash)
	if err != nil {
		return err
	}
	if !exists {
		return errors.Errorf("block %s does not exist", blockHash)
	}
	return nil
}
