package model

import (
	"fmt"
	"math"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

// ReachabilityData is a read-only version of a block's MutableReachabilityData
type ReachabilityData interface {
	Children() []*externalapi.DomainHash
	Parent() *externalapi.DomainHash
	Interval() *ReachabilityInterval
	FutureCoveringSet() FutureCoveringTreeNodeSet
	CloneMutable() MutableReachabilityData
	Equal(other ReachabilityData) bool
}

// MutableReachabilityData represents a block's MutableReachabilityData, containing
// its children, parent and more.
type MutableReachabilityData interface {
	ReachabilityData

	AddChild(child *externalapi.DomainHash)
	SetParent(parent *externalapi.DomainHash)
	SetInterval(interval *ReachabilityInterval)
	SetFutureCoveringSet(futureCoveringSet FutureCoveringTreeNodeSet)
}

// ReachabilityInterval is an interval to be used within the
// tree reachability algorithm. See ReachabilityTreeNode for further
// details.
type ReachabilityInterval struct {
	Start uint64
	End   uint64
}

// NewReachabilityInterval creates a new reachability interval with the given bounds
func NewReachabilityInterval(start uint64, end uint64) *ReachabilityInterval {
	return &ReachabilityInterval{Start: start, End: end}
}

// NewReachabilityTreeIntervalForReindexRoot returns a new reachability interval
// covering the whole space allotted to the reachability tree
func NewReachabilityTreeIntervalForReindexRoot() *ReachabilityInterval {
	// We subtract 1 from the capacity because we want to let the
	// virtual stretch up to the capacity, and start from 1 because
	// 0 is reserved to signify an empty interval
	return NewReachabilityInterval(1, math.MaxUint64-1)
}

// Clone returns a clone of ReachabilityInterval
func (ri *ReachabilityInterval) Clone() *ReachabilityInterval {
	return &ReachabilityInterval{
		Start: ri.Start,
		End:   ri.End,
	}
}

func (ri *ReachabilityInterval) String() string {
	return fmt.Sprintf("[%d,%d]", ri.Start, ri.End)
}

// FutureCoveringTreeNodeSet represents a collection of blocks in the future of
// a certain block. Once a block B is added to the DAG, every block A_i in
// B's selected parent anticone must be covered by one of the blocks in its
// future covering set. The set is ordered by interval, which makes it
// possible to answer reachability queries for blocks that are not on the
// direct tree path in logarithmic time via binary search.
type FutureCoveringTreeNodeSet []*externalapi.DomainHash

// Clone returns a clone of FutureCoveringTreeNodeSet
func (fctns FutureCoveringTreeNodeSet) Clone() FutureCoveringTreeNodeSet {
	return externalapi.CloneHashes(fctns)
}

// If this doesn't compile, it means the type definition has been changed, so it's
// an indication to update Equal and Clone accordingly.
var _ = FutureCoveringTreeNodeSet([]*externalapi.DomainHash{})

// Equal returns whether fctns equals to other
func (fctns FutureCoveringTreeNodeSet) Equal(other FutureCoveringTreeNodeSet) bool {
	return externalapi.HashesEqual(fctns, other)
}
