package reachabilitymanager

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

func (rt *reachabilityManager) stageData(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	data model.ReachabilityData) {

	rt.reachabilityDataStore.StageReachabilityData(stagingArea, blockHash, data)
}

func (rt *reachabilityManager) stageFutureCoveringSet(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash,
	set model.FutureCoveringTreeNodeSet) error {

	data, err := rt.data(stagingArea, blockHash)
	if err != nil {
		return err
	}

	mutableData := data.CloneMutable()
	mutableData.SetFutureCoveringSet(set)
	rt.stageData(stagingArea, blockHash, mutableData)

	return nil
}

func (rt *reachabilityManager) stageReindexRoot(stagingArea *model.StagingArea, blockHash *externalapi.DomainHash) {
	rt.reachabilityDataStore.StageReachabilityReindexRoot(stagingArea, blockHash)
}

func (rt *reachabilityManager) stageAddChild(stagingArea *model.StagingArea, node, child *externalapi.DomainHash) error {
	nodeData, err := rt.data(stagingArea, node)
	if err != nil {
		return err
	}

	mutableNodeData := nodeData.CloneMutable()
	mutableNodeData.AddChild(child)
	rt.stageData(stagingArea, node, mutableNodeData)

	return nil
}

func (rt *reachabilityManager) stageParent(stagingArea *model.StagingArea, node, parent *externalapi.DomainHash) error {
	nodeData, err := rt.data(stagingArea, node)
	if err != nil {
		return err
	}

	mutableNodeData := nodeData.CloneMutable()
	mutableNodeData.SetParent(parent)
	rt.stageData(stagingArea, node, mutableNodeData)

	return nil
}

func (rt *reachabilityManager) stageInterval(stagingArea *model.StagingArea, node *externalapi.DomainHash,
	interval *model.ReachabilityInterval) error {

	nodeData, err := rt.data(stagingArea, node)
	if err != nil {
		return err
	}

	mutableNodeData := nodeData.CloneMutable()
	mutableNodeData.SetInterval(interval)
	rt.stageData(stagingArea, node, mutableNodeData)

	return nil
}
