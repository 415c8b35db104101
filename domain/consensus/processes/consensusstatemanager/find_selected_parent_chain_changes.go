package consensusstatemanager

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/infrastructure/logger"
)

// GetVirtualSelectedParentChainFromBlock returns the virtual selected parent chain from the
// given blockHash to the virtual's selected parent
func (csm *consensusStateManager) GetVirtualSelectedParentChainFromBlock(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*externalapi.SelectedChainPath, error) {

	onEnd := logger.LogAndMeasureExecutionTime(log, "GetVirtualSelectedParentChainFromBlock")
	defer onEnd()

	virtualSelectedParent, err := csm.virtualSelectedParent(stagingArea)
	if err != nil {
		return nil, err
	}

	return csm.dagTraversalManager.CalculateChainPath(stagingArea, blockHash, virtualSelectedParent)
}
