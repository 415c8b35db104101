package reachabilitydata

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

type reachabilityData struct {
	children          []*externalapi.DomainHash
	parent            *externalapi.DomainHash
	interval          *model.ReachabilityInterval
	futureCoveringSet model.FutureCoveringTreeNodeSet
}

// EmptyReachabilityData constructs an empty MutableReachabilityData object
func EmptyReachabilityData() model.MutableReachabilityData {
	return &reachabilityData{}
}

// New constructs a ReachabilityData object filled with given fields
func New(children []*externalapi.DomainHash,
	parent *externalapi.DomainHash,
	interval *model.ReachabilityInterval,
	futureCoveringSet model.FutureCoveringTreeNodeSet) model.ReachabilityData {

	return &reachabilityData{
		children:          children,
		parent:            parent,
		interval:          interval,
		futureCoveringSet: futureCoveringSet,
	}
}

func (rd *reachabilityData) AddChild(child *externalapi.DomainHash) {
	rd.children = append(rd.children, child)
}

func (rd *reachabilityData) SetParent(parent *externalapi.DomainHash) {
	rd.parent = parent
}

func (rd *reachabilityData) SetInterval(interval *model.ReachabilityInterval) {
	rd.interval = interval
}

func (rd *reachabilityData) SetFutureCoveringSet(futureCoveringSet model.FutureCoveringTreeNodeSet) {
	rd.futureCoveringSet = futureCoveringSet
}

func (rd *reachabilityData) Children() []*externalapi.DomainHash {
	return rd.children
}

func (rd *reachabilityData) Parent() *externalapi.DomainHash {
	return rd.parent
}

func (rd *reachabilityData) Interval() *model.ReachabilityInterval {
	return rd.interval
}

func (rd *reachabilityData) FutureCoveringSet() model.FutureCoveringTreeNodeSet {
	return rd.futureCoveringSet
}

func (rd *reachabilityData) CloneMutable() model.MutableReachabilityData {
	return &reachabilityData{
		children:          externalapi.CloneHashes(rd.children),
		parent:            rd.parent,
		interval:          rd.interval.Clone(),
		futureCoveringSet: rd.futureCoveringSet.Clone(),
	}
}

func (rd *reachabilityData) Equal(other model.ReachabilityData) bool {
	if rd == nil || other == nil {
		return model.ReachabilityData(rd) == other
	}

	// If only the underlying value of other is nil it'll
	// make `other == nil` return false, so we check it
	// explicitly.
	downcastedOther := other.(*reachabilityData)
	if downcastedOther == nil {
		return false
	}

	if !externalapi.HashesEqual(rd.children, downcastedOther.children) {
		return false
	}

	if !rd.parent.Equal(downcastedOther.parent) {
		return false
	}

	if rd.interval == nil || downcastedOther.interval == nil {
		if rd.interval != downcastedOther.interval {
			return false
		}
	} else if *rd.interval != *downcastedOther.interval {
		return false
	}

	if !rd.futureCoveringSet.Equal(downcastedOther.futureCoveringSet) {
		return false
	}

	return true
}
