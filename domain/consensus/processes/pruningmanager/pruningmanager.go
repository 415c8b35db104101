package pruningmanager

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/multiset"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/staging"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/utxo"
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
	"github.com/pkg/errors"
)

// pruningManager resolves and manages the current pruning point
type pruningManager struct {
	databaseContext model.DBManager

	dagTraversalManager model.DAGTraversalManager
	dagTopologyManager  model.DAGTopologyManager

	consensusStateStore model.ConsensusStateStore
	ghostdagDataStore   model.GHOSTDAGDataStore
	pruningStore        model.PruningStore
	blockStatusStore    model.BlockStatusStore
	multiSetStore       model.MultisetStore
	acceptanceDataStore model.AcceptanceDataStore
	blocksStore         model.BlockStore
	blockHeaderStore    model.BlockHeaderStore
	utxoDiffStore       model.UTXODiffStore
	daaBlocksStore      model.DAABlocksStore

	isArchivalNode                  bool
	genesisHash                     *externalapi.DomainHash
	finalityInterval                uint64
	pruningDepth                    uint64
	shouldSanityCheckPruningUTXOSet bool
}

// New instantiates a new PruningManager
func New(
	databaseContext model.DBManager,

	dagTraversalManager model.DAGTraversalManager,
	dagTopologyManager model.DAGTopologyManager,

	consensusStateStore model.ConsensusStateStore,
	ghostdagDataStore model.GHOSTDAGDataStore,
	pruningStore model.PruningStore,
	blockStatusStore model.BlockStatusStore,
	multiSetStore model.MultisetStore,
	acceptanceDataStore model.AcceptanceDataStore,
	blocksStore model.BlockStore,
	blockHeaderStore model.BlockHeaderStore,
	utxoDiffStore model.UTXODiffStore,
	daaBlocksStore model.DAABlocksStore,

	isArchivalNode bool,
	genesisHash *externalapi.DomainHash,
	finalityInterval uint64,
	pruningDepth uint64,
	shouldSanityCheckPruningUTXOSet bool,
) model.PruningManager {

	return &pruningManager{
		databaseContext:     databaseContext,
		dagTraversalManager: dagTraversalManager,
		dagTopologyManager:  dagTopologyManager,
		consensusStateStore: consensusStateStore,
		ghostdagDataStore:   ghostdagDataStore,
		pruningStore:        pruningStore,
		blockStatusStore:    blockStatusStore,
		multiSetStore:       multiSetStore,
		acceptanceDataStore: acceptanceDataStore,
		blocksStore:         blocksStore,
		blockHeaderStore:    blockHeaderStore,
		utxoDiffStore:       utxoDiffStore,
		daaBlocksStore:      daaBlocksStore,

		isArchivalNode:                  isArchivalNode,
		genesisHash:                     genesisHash,
		finalityInterval:                finalityInterval,
		pruningDepth:                    pruningDepth,
		shouldSanityCheckPruningUTXOSet: shouldSanityCheckPruningUTXOSet,
	}
}

// UpdatePruningPointByVirtual examines the newly updated virtual and
// stages the next pruning point candidate and any pruning point moves
// it implies. The heavy lifting of actually updating the pruning point
// UTXO set and deleting pruned data is deferred to
// UpdatePruningPointUTXOSetIfRequired.
func (pm *pruningManager) UpdatePruningPointByVirtual(stagingArea *model.StagingArea) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "pruningManager.UpdatePruningPointByVirtual")
	defer onEnd()

	hasPruningPoint, err := pm.pruningStore.HasPruningPoint(pm.databaseContext, stagingArea)
	if err != nil {
		return err
	}

	if !hasPruningPoint {
		hasGenesis, err := pm.blocksStore.HasBlock(pm.databaseContext, stagingArea, pm.genesisHash)
		if err != nil {
			return err
		}

		if hasGenesis {
			err = pm.savePruningPoint(stagingArea, pm.genesisHash)
			if err != nil {
				return err
			}
		}

		return nil
	}

	newPruningPoints, newCandidate, err :=
		pm.nextPruningPointsAndCandidateByBlockHash(stagingArea, model.VirtualBlockHash, nil)
	if err != nil {
		return err
	}

	currentCandidate, err := pm.pruningPointCandidate(stagingArea)
	if err != nil {
		return err
	}

	if !newCandidate.Equal(currentCandidate) {
		log.Debugf("Staged a new pruning candidate, old: %s, new: %s", currentCandidate, newCandidate)
		pm.pruningStore.StagePruningPointCandidate(stagingArea, newCandidate)
	}

	if len(newPruningPoints) == 0 {
		return nil
	}

	currentPruningPoint, err := pm.pruningStore.PruningPoint(pm.databaseContext, stagingArea)
	if err != nil {
		return err
	}

	// The previous pruning point is the one the stored pruning point UTXO
	// set still reflects. If an earlier move was not materialized yet, the
	// previous pruning point it staged is still the right replay base, so
	// it must not be overwritten here.
	hadStartedUpdatingPruningPointUTXOSet, err := pm.pruningStore.HadStartedUpdatingPruningPointUTXOSet(pm.databaseContext)
	if err != nil {
		return err
	}

	if !hadStartedUpdatingPruningPointUTXOSet {
		pm.pruningStore.StagePreviousPruningPoint(stagingArea, currentPruningPoint)
	}

	previousPruningPoint := currentPruningPoint
	for _, newPruningPoint := range newPruningPoints {
		log.Debugf("Moving pruning point from %s to %s", previousPruningPoint, newPruningPoint)
		err = pm.savePruningPoint(stagingArea, newPruningPoint)
		if err != nil {
			return err
		}
		previousPruningPoint = newPruningPoint
	}

	return nil
}

// nextPruningPointsAndCandidateByBlockHash returns the pruning point moves
// implied by the given point of view block (which may be the virtual), in
// the order they occur on its selected chain, along with the new pruning
// point candidate.
//
// The walk starts at the current candidate, or at suggestedLowHash when it
// is further along the chain. A new pruning point is emitted whenever a
// chain block at depth of at least pm.pruningDepth crosses into a later
// finality window than the last emitted one.
func (pm *pruningManager) nextPruningPointsAndCandidateByBlockHash(stagingArea *model.StagingArea,
	blockHash, suggestedLowHash *externalapi.DomainHash) ([]*externalapi.DomainHash, *externalapi.DomainHash, error) {

	ghostdagData, err := pm.ghostdagDataStore.Get(pm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, nil, err
	}

	currentCandidate, err := pm.pruningPointCandidate(stagingArea)
	if err != nil {
		return nil, nil, err
	}

	currentPruningPoint, err := pm.pruningStore.PruningPoint(pm.databaseContext, stagingArea)
	if err != nil {
		return nil, nil, err
	}

	lowHash := currentCandidate
	if suggestedLowHash != nil {
		isSuggestedLowHashInCandidateChain, err := pm.dagTopologyManager.IsInSelectedParentChainOf(
			stagingArea, suggestedLowHash, currentCandidate)
		if err != nil {
			return nil, nil, err
		}

		if !isSuggestedLowHashInCandidateChain {
			lowHash = suggestedLowHash
		}
	}

	// The candidate is not protected by finality, so a reorg can leave it
	// outside the new selected chain. In that case fall back to the pruning
	// point, and if even the pruning point is not on the chain of blockHash
	// leave both the pruning point and the candidate untouched.
	isLowHashInSelectedParentChain, err := pm.dagTopologyManager.IsInSelectedParentChainOf(
		stagingArea, lowHash, ghostdagData.SelectedParent())
	if err != nil {
		return nil, nil, err
	}

	if !isLowHashInSelectedParentChain {
		isPruningPointInSelectedParentChain, err := pm.dagTopologyManager.IsInSelectedParentChainOf(
			stagingArea, currentPruningPoint, ghostdagData.SelectedParent())
		if err != nil {
			return nil, nil, err
		}

		if !isPruningPointInSelectedParentChain {
			return nil, currentCandidate, nil
		}

		lowHash = currentPruningPoint
	}

	currentPruningPointGHOSTDAGData, err := pm.ghostdagDataStore.Get(pm.databaseContext, stagingArea, currentPruningPoint)
	if err != nil {
		return nil, nil, err
	}

	iterator, err := pm.dagTraversalManager.SelectedChildIterator(
		stagingArea, ghostdagData.SelectedParent(), lowHash, true)
	if err != nil {
		return nil, nil, err
	}
	defer iterator.Close()

	// Note: Sometimes the current candidate is less than pm.pruningDepth
	// from the point of view block. This can happen only if the virtual
	// blue score got smaller, because virtual blue score is not guaranteed
	// to always increase (a block with higher blue work can have lower
	// blue score). In such cases we still keep the same candidate because
	// a block that was once in depth of pm.pruningDepth cannot be reorged
	// without causing a finality conflict first.
	var newPruningPoints []*externalapi.DomainHash
	newCandidate := currentCandidate
	latestPruningPointBlueScore := currentPruningPointGHOSTDAGData.BlueScore()

	for ok := iterator.First(); ok; ok = iterator.Next() {
		selectedChild, err := iterator.Get()
		if err != nil {
			return nil, nil, err
		}

		selectedChildGHOSTDAGData, err := pm.ghostdagDataStore.Get(pm.databaseContext, stagingArea, selectedChild)
		if err != nil {
			return nil, nil, err
		}

		if ghostdagData.BlueScore()-selectedChildGHOSTDAGData.BlueScore() < pm.pruningDepth {
			break
		}

		newCandidate = selectedChild

		// We move the pruning point every time the candidate's finality
		// score is bigger than the current pruning point finality score.
		if pm.finalityScore(selectedChildGHOSTDAGData.BlueScore()) > pm.finalityScore(latestPruningPointBlueScore) {
			newPruningPoints = append(newPruningPoints, selectedChild)
			latestPruningPointBlueScore = selectedChildGHOSTDAGData.BlueScore()
		}
	}

	return newPruningPoints, newCandidate, nil
}

func (pm *pruningManager) savePruningPoint(stagingArea *model.StagingArea, pruningPointHash *externalapi.DomainHash) error {
	err := pm.pruningStore.StagePruningPoint(pm.databaseContext, stagingArea, pruningPointHash)
	if err != nil {
		return err
	}
	pm.pruningStore.StageStartUpdatingPruningPointUTXOSet(stagingArea)

	return nil
}

func (pm *pruningManager) pruningPointCandidate(stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	hasPruningPointCandidate, err := pm.pruningStore.HasPruningPointCandidate(pm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	if !hasPruningPointCandidate {
		return pm.genesisHash, nil
	}

	return pm.pruningStore.PruningPointCandidate(pm.databaseContext, stagingArea)
}

// finalityScore is the number of finality intervals passed since
// the given block.
func (pm *pruningManager) finalityScore(blueScore uint64) uint64 {
	return blueScore / pm.finalityInterval
}

// IsValidPruningPoint returns whether the given block is a legitimate
// pruning point from the point of view of the current virtual, i.e. it
// is on the virtual selected chain at depth of at least pm.pruningDepth.
func (pm *pruningManager) IsValidPruningPoint(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (bool, error) {
	if *pm.genesisHash == *blockHash {
		return true, nil
	}

	virtualGHOSTDAGData, err := pm.ghostdagDataStore.Get(pm.databaseContext, stagingArea, model.VirtualBlockHash)
	if err != nil {
		return false, err
	}

	// The virtual has no reachability data, so chain membership is checked
	// against its selected parent.
	isInVirtualSelectedParentChain, err := pm.dagTopologyManager.IsInSelectedParentChainOf(
		stagingArea, blockHash, virtualGHOSTDAGData.SelectedParent())
	if err != nil {
		return false, err
	}

	if !isInVirtualSelectedParentChain {
		return false, nil
	}

	ghostdagData, err := pm.ghostdagDataStore.Get(pm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return false, err
	}

	// A pruning point has to be at depth of at least pm.pruningDepth
	if virtualGHOSTDAGData.BlueScore()-ghostdagData.BlueScore() < pm.pruningDepth {
		return false, nil
	}

	return true, nil
}

// ExpectedHeaderPruningPoint returns the pruning point a valid header of
// the given block is expected to commit to: the first of its chain blocks
// at depth of pm.pruningDepth whose finality score exceeds that of its
// selected parent's pruning point. When the pruning point the current
// state suggests is not deep enough from the block's point of view, older
// pruning points are tried in reverse index order.
func (pm *pruningManager) ExpectedHeaderPruningPoint(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (*externalapi.DomainHash, error) {
	if blockHash.Equal(pm.genesisHash) {
		// The genesis header commits to the zero hash, since no pruning
		// point predates it.
		return &externalapi.DomainHash{}, nil
	}

	ghostdagData, err := pm.ghostdagDataStore.Get(pm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return nil, err
	}

	if ghostdagData.SelectedParent().Equal(pm.genesisHash) {
		return pm.genesisHash, nil
	}

	currentPruningPoint, err := pm.pruningStore.PruningPoint(pm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	selectedParentHeader, err := pm.blockHeaderStore.BlockHeader(pm.databaseContext, stagingArea, ghostdagData.SelectedParent())
	if err != nil {
		return nil, err
	}

	selectedParentPruningPoint := selectedParentHeader.PruningPoint()
	selectedParentPruningPointHeader, err := pm.blockHeaderStore.BlockHeader(pm.databaseContext, stagingArea, selectedParentPruningPoint)
	if err != nil {
		return nil, err
	}

	// If the block doesn't have the pruning point in its selected chain we
	// know for sure that it can't trigger a pruning point change. The
	// selected parent is checked to take care of the case where the block
	// is the virtual, which doesn't have reachability data.
	hasPruningPointInItsSelectedChain, err := pm.dagTopologyManager.IsInSelectedParentChainOf(
		stagingArea, currentPruningPoint, ghostdagData.SelectedParent())
	if err != nil {
		return nil, err
	}

	// The pruning point from the point of view of the block is the first
	// block in its chain that is in depth of pm.pruningDepth and whose
	// finality score is greater than that of the selected parent's pruning
	// point. So if the diff between the end of that pruning point's
	// finality window and the block's blue score is less than
	// pm.pruningDepth, the block can't have triggered a pruning point
	// change.
	minRequiredBlueScoreForNextPruningPoint :=
		(pm.finalityScore(selectedParentPruningPointHeader.BlueScore()) + 1) * pm.finalityInterval

	nextOrCurrentPruningPoint := selectedParentPruningPoint
	if hasPruningPointInItsSelectedChain &&
		minRequiredBlueScoreForNextPruningPoint+pm.pruningDepth <= ghostdagData.BlueScore() {

		// If the selected parent pruning point is in the future of the
		// current pruning point, provide it as a suggestion to skip most
		// of the walk.
		var suggestedLowHash *externalapi.DomainHash
		isCurrentPruningPointInPastOfSelectedParentPruningPoint, err := pm.dagTopologyManager.IsAncestorOf(
			stagingArea, currentPruningPoint, selectedParentPruningPoint)
		if err != nil {
			return nil, err
		}

		if isCurrentPruningPointInPastOfSelectedParentPruningPoint {
			suggestedLowHash = selectedParentPruningPoint
		}

		newPruningPoints, _, err := pm.nextPruningPointsAndCandidateByBlockHash(stagingArea, blockHash, suggestedLowHash)
		if err != nil {
			return nil, err
		}

		if len(newPruningPoints) > 0 {
			nextOrCurrentPruningPoint = newPruningPoints[len(newPruningPoints)-1]
		} else {
			nextOrCurrentPruningPoint = currentPruningPoint
		}
	}

	isInPruningDepth, err := pm.isPruningPointInPruningDepth(stagingArea, ghostdagData.BlueScore(), nextOrCurrentPruningPoint)
	if err != nil {
		return nil, err
	}

	if isInPruningDepth {
		return nextOrCurrentPruningPoint, nil
	}

	// None of the above is deep enough from the block's point of view, so
	// walk the pruning point history backwards until one is.
	currentPruningPointIndex, err := pm.pruningStore.CurrentPruningPointIndex(pm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	for i := int64(currentPruningPointIndex); i >= 0; i-- {
		pastPruningPoint, err := pm.pruningStore.PruningPointByIndex(pm.databaseContext, stagingArea, uint64(i))
		if err != nil {
			return nil, err
		}

		isInPruningDepth, err := pm.isPruningPointInPruningDepth(stagingArea, ghostdagData.BlueScore(), pastPruningPoint)
		if err != nil {
			return nil, err
		}

		if isInPruningDepth {
			return pastPruningPoint, nil
		}
	}

	return pm.genesisHash, nil
}

func (pm *pruningManager) isPruningPointInPruningDepth(stagingArea *model.StagingArea,
	povBlueScore uint64, pruningPoint *externalapi.DomainHash) (bool, error) {

	pruningPointHeader, err := pm.blockHeaderStore.BlockHeader(pm.databaseContext, stagingArea, pruningPoint)
	if err != nil {
		return false, err
	}

	return povBlueScore >= pruningPointHeader.BlueScore()+pm.pruningDepth, nil
}

// UpdatePruningPointUTXOSetIfRequired checks whether the pruning point
// moved since the last time the pruning point UTXO set was updated, and
// if so rebuilds the UTXO set and deletes the data of all blocks it left
// behind. The check is against a flag that is committed atomically with
// every pruning point move, so an update that was interrupted midway is
// redone here on the next startup.
func (pm *pruningManager) UpdatePruningPointUTXOSetIfRequired() error {
	hadStartedUpdatingPruningPointUTXOSet, err := pm.pruningStore.HadStartedUpdatingPruningPointUTXOSet(pm.databaseContext)
	if err != nil {
		return err
	}

	if !hadStartedUpdatingPruningPointUTXOSet {
		return nil
	}

	log.Debugf("Pruning point UTXO set update is required")
	err = pm.updatePruningPointUTXOSet()
	if err != nil {
		return err
	}
	log.Debugf("Pruning point UTXO set updated")

	return nil
}

func (pm *pruningManager) updatePruningPointUTXOSet() error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "pruningManager.updatePruningPointUTXOSet")
	defer onEnd()

	stagingArea := model.NewStagingArea()
	log.Debugf("Getting the pruning point")
	pruningPoint, err := pm.pruningStore.PruningPoint(pm.databaseContext, stagingArea)
	if err != nil {
		return err
	}

	log.Debugf("Restoring the pruning point UTXO set")
	utxoSetDiff, err := pm.calculateDiffBetweenPreviousAndCurrentPruningPoints(stagingArea, pruningPoint)
	if err != nil {
		return err
	}

	log.Debugf("Updating the pruning point UTXO set")
	err = pm.pruningStore.UpdatePruningPointUTXOSet(pm.databaseContext, utxoSetDiff)
	if err != nil {
		return err
	}

	if pm.shouldSanityCheckPruningUTXOSet {
		err = pm.validateUTXOSetFitsCommitment(stagingArea, pruningPoint)
		if err != nil {
			return err
		}
	}

	err = pm.deletePastBlocks(stagingArea, pruningPoint)
	if err != nil {
		return err
	}

	err = staging.CommitAllChanges(pm.databaseContext, stagingArea)
	if err != nil {
		return err
	}

	log.Debugf("Finishing updating the pruning point UTXO set")
	return pm.pruningStore.FinishUpdatingPruningPointUTXOSet(pm.databaseContext)
}

// calculateDiffBetweenPreviousAndCurrentPruningPoints takes the previous
// and the current pruning points and traverses the UTXO diff child chain
// upwards from both until it finds a common descendant, at the worst case
// the current selected tip. It then composes the diffs along both walks
// and returns a single diff leading from the previous pruning point UTXO
// set to the current one. This is much faster than restoring the full
// UTXO set of the new pruning point from scratch.
func (pm *pruningManager) calculateDiffBetweenPreviousAndCurrentPruningPoints(stagingArea *model.StagingArea,
	currentPruningHash *externalapi.DomainHash) (externalapi.UTXODiff, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "pruningManager.calculateDiffBetweenPreviousAndCurrentPruningPoints")
	defer onEnd()

	if currentPruningHash.Equal(pm.genesisHash) {
		return utxo.NewUTXODiff(), nil
	}

	previousPruningHash, err := pm.pruningStore.PreviousPruningPoint(pm.databaseContext, stagingArea)
	if err != nil {
		return nil, err
	}

	currentPruningGhostDAG, err := pm.ghostdagDataStore.Get(pm.databaseContext, stagingArea, currentPruningHash)
	if err != nil {
		return nil, err
	}
	previousPruningGhostDAG, err := pm.ghostdagDataStore.Get(pm.databaseContext, stagingArea, previousPruningHash)
	if err != nil {
		return nil, err
	}

	currentPruningCurrentDiffChild := currentPruningHash
	previousPruningCurrentDiffChild := previousPruningHash
	// Blue work is the only measure that is monotonic in the whole DAG, so
	// it tells which of the two walks is currently lower. We keep climbing
	// from the lower one until both walks reach the exact same descendant.
	currentPruningCurrentDiffChildBlueWork := currentPruningGhostDAG.BlueWork()
	previousPruningCurrentDiffChildBlueWork := previousPruningGhostDAG.BlueWork()

	var diffsFromPrevious []externalapi.UTXODiff
	var diffsFromCurrent []externalapi.UTXODiff
	for {
		if currentPruningCurrentDiffChildBlueWork.Cmp(previousPruningCurrentDiffChildBlueWork) > 0 {
			utxoDiff, err := pm.utxoDiffStore.UTXODiff(pm.databaseContext, stagingArea, previousPruningCurrentDiffChild)
			if err != nil {
				return nil, err
			}
			diffsFromPrevious = append(diffsFromPrevious, utxoDiff)

			previousPruningCurrentDiffChild, err = pm.utxoDiffStore.UTXODiffChild(pm.databaseContext, stagingArea, previousPruningCurrentDiffChild)
			if err != nil {
				return nil, err
			}
			diffChildGhostDAG, err := pm.ghostdagDataStore.Get(pm.databaseContext, stagingArea, previousPruningCurrentDiffChild)
			if err != nil {
				return nil, err
			}
			previousPruningCurrentDiffChildBlueWork = diffChildGhostDAG.BlueWork()
		} else if currentPruningCurrentDiffChild.Equal(previousPruningCurrentDiffChild) {
			break
		} else {
			utxoDiff, err := pm.utxoDiffStore.UTXODiff(pm.databaseContext, stagingArea, currentPruningCurrentDiffChild)
			if err != nil {
				return nil, err
			}
			diffsFromCurrent = append(diffsFromCurrent, utxoDiff)

			currentPruningCurrentDiffChild, err = pm.utxoDiffStore.UTXODiffChild(pm.databaseContext, stagingArea, currentPruningCurrentDiffChild)
			if err != nil {
				return nil, err
			}
			diffChildGhostDAG, err := pm.ghostdagDataStore.Get(pm.databaseContext, stagingArea, currentPruningCurrentDiffChild)
			if err != nil {
				return nil, err
			}
			currentPruningCurrentDiffChildBlueWork = diffChildGhostDAG.BlueWork()
		}
	}

	// The diffs should be applied from the top of the diff child chain
	// downwards, but the walks collected them bottom to top, hence the
	// reverse order.
	oldDiff := utxo.NewMutableUTXODiff()
	for i := len(diffsFromPrevious) - 1; i >= 0; i-- {
		err = oldDiff.WithDiffInPlace(diffsFromPrevious[i])
		if err != nil {
			return nil, err
		}
	}
	newDiff := utxo.NewMutableUTXODiff()
	for i := len(diffsFromCurrent) - 1; i >= 0; i-- {
		err = newDiff.WithDiffInPlace(diffsFromCurrent[i])
		if err != nil {
			return nil, err
		}
	}

	return oldDiff.DiffFrom(newDiff.ToImmutable())
}

// validateUTXOSetFitsCommitment makes sure that the rebuilt UTXO set of
// the new pruning point fits the UTXO commitment in its header. This is a
// sanity test against storing, and subsequently serving, a wrong UTXO set.
func (pm *pruningManager) validateUTXOSetFitsCommitment(stagingArea *model.StagingArea,
	pruningPointHash *externalapi.DomainHash) error {

	onEnd := logger.LogAndMeasureExecutionTime(log, "pruningManager.validateUTXOSetFitsCommitment")
	defer onEnd()

	utxoSetIterator, err := pm.pruningStore.PruningPointUTXOIterator(pm.databaseContext)
	if err != nil {
		return err
	}
	defer utxoSetIterator.Close()

	utxoSetMultiset := multiset.New()
	for ok := utxoSetIterator.First(); ok; ok = utxoSetIterator.Next() {
		outpoint, entry, err := utxoSetIterator.Get()
		if err != nil {
			return err
		}
		serializedUTXO, err := utxo.SerializeUTXO(entry, outpoint)
		if err != nil {
			return err
		}
		utxoSetMultiset.Add(serializedUTXO)
	}
	utxoSetHash := utxoSetMultiset.Hash()

	header, err := pm.blockHeaderStore.BlockHeader(pm.databaseContext, stagingArea, pruningPointHash)
	if err != nil {
		return err
	}
	expectedUTXOCommitment := header.UTXOCommitment()

	if !expectedUTXOCommitment.Equal(utxoSetHash) {
		return errors.Errorf("calculated UTXO set for the new pruning point %s doesn't match its UTXO commitment. "+
			"Calculated UTXO set hash: %s. Commitment: %s",
			pruningPointHash, utxoSetHash, expectedUTXOCommitment)
	}

	log.Debugf("Validated the pruning point %s UTXO commitment: %s", pruningPointHash, utxoSetHash)

	return nil
}

func (pm *pruningManager) deletePastBlocks(stagingArea *model.StagingArea, pruningPoint *externalapi.DomainHash) error {
	onEnd := logger.LogAndMeasureExecutionTime(log, "pruningManager.deletePastBlocks")
	defer onEnd()

	// Go over all of the pruning point's past and anticone that is not in
	// the virtual's past.
	queue := pm.dagTraversalManager.NewDownHeap(stagingArea)
	virtualParents, err := pm.dagTopologyManager.Parents(stagingArea, model.VirtualBlockHash)
	if err != nil {
		return err
	}

	// Start the queue with all tips that are below the pruning point (and
	// on the way remove them from the tips list).
	prunedTips, err := pm.pruneTips(stagingArea, pruningPoint, virtualParents)
	if err != nil {
		return err
	}
	err = queue.PushSlice(prunedTips)
	if err != nil {
		return err
	}

	parents, err := pm.dagTopologyManager.Parents(stagingArea, pruningPoint)
	if err != nil {
		return err
	}

	isChildOfVirtualGenesis := len(parents) == 1 && parents[0].Equal(model.VirtualGenesisBlockHash)
	if !isChildOfVirtualGenesis {
		err = queue.PushSlice(parents)
		if err != nil {
			return err
		}
	}

	return pm.deleteBlocksDownward(stagingArea, queue)
}

func (pm *pruningManager) deleteBlocksDownward(stagingArea *model.StagingArea, queue model.BlockHeap) error {
	visited := map[externalapi.DomainHash]struct{}{}
	// Prune everything in the queue including its past
	for queue.Len() > 0 {
		current := queue.Pop()
		if _, ok := visited[*current]; ok {
			continue
		}
		visited[*current] = struct{}{}

		alreadyPruned, err := pm.deleteBlock(stagingArea, current)
		if err != nil {
			return err
		}

		if !alreadyPruned {
			parents, err := pm.dagTopologyManager.Parents(stagingArea, current)
			if err != nil {
				return err
			}

			isChildOfVirtualGenesis := len(parents) == 1 && parents[0].Equal(model.VirtualGenesisBlockHash)
			if !isChildOfVirtualGenesis {
				err = queue.PushSlice(parents)
				if err != nil {
					return err
				}
			}
		}
	}

	return nil
}

func (pm *pruningManager) pruneTips(stagingArea *model.StagingArea, pruningPoint *externalapi.DomainHash,
	virtualParents []*externalapi.DomainHash) (prunedTips []*externalapi.DomainHash, err error) {

	// Find the pruning point's anticone that is not in the virtual's past
	dagTips, err := pm.consensusStateStore.Tips(stagingArea, pm.databaseContext)
	if err != nil {
		return nil, err
	}
	newTips := make([]*externalapi.DomainHash, 0, len(dagTips))
	for _, tip := range dagTips {
		isInPruningFutureOrInVirtualPast, err :=
			pm.isInPruningFutureOrInVirtualPast(stagingArea, tip, pruningPoint, virtualParents)
		if err != nil {
			return nil, err
		}
		if !isInPruningFutureOrInVirtualPast {
			prunedTips = append(prunedTips, tip)
		} else {
			newTips = append(newTips, tip)
		}
	}
	pm.consensusStateStore.StageTips(stagingArea, newTips)

	return prunedTips, nil
}

func (pm *pruningManager) isInPruningFutureOrInVirtualPast(stagingArea *model.StagingArea, block *externalapi.DomainHash,
	pruningPoint *externalapi.DomainHash, virtualParents []*externalapi.DomainHash) (bool, error) {

	hasPruningPointInPast, err := pm.dagTopologyManager.IsAncestorOf(stagingArea, pruningPoint, block)
	if err != nil {
		return false, err
	}
	if hasPruningPointInPast {
		return true, nil
	}

	// Because the virtual doesn't have reachability data, checking whether
	// the block is in its past is done through its parents.
	isInVirtualPast, err := pm.dagTopologyManager.IsAncestorOfAny(stagingArea, block, virtualParents)
	if err != nil {
		return false, err
	}
	if isInVirtualPast {
		return true, nil
	}

	return false, nil
}

func (pm *pruningManager) deleteBlock(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) (
	alreadyPruned bool, err error) {

	status, err := pm.blockStatusStore.Get(pm.databaseContext, stagingArea, blockHash)
	if err != nil {
		return false, err
	}
	if status == externalapi.StatusHeaderOnly {
		return true, nil
	}

	pm.blockStatusStore.Stage(stagingArea, blockHash, externalapi.StatusHeaderOnly)
	if pm.isArchivalNode {
		return false, nil
	}

	pm.multiSetStore.Delete(stagingArea, blockHash)
	pm.acceptanceDataStore.Delete(stagingArea, blockHash)
	pm.blocksStore.Delete(stagingArea, blockHash)
	pm.utxoDiffStore.Delete(stagingArea, blockHash)
	pm.daaBlocksStore.Delete(stagingArea, blockHash)

	return false, nil
}
