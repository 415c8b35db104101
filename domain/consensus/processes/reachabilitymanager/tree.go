package reachabilitymanager

import (
	"math"
	"strings"
	"time"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/pkg/errors"
)

var (
	// defaultReindexWindow is the default target window size for reachability
	// reindexes. Note that this is not a constant for testing purposes.
	defaultReindexWindow uint64 = 200

	// defaultReindexSlack is default the slack interval given to reachability
	// tree nodes not in the selected parent chain. Note that this is not
	// a constant for testing purposes.
	defaultReindexSlack uint64 = 1 << 12

	// slackReachabilityIntervalForReclaiming is the slack interval to
	// reclaim during reachability reindexes earlier than the reindex root.
	// See reclaimIntervalBeforeChosenChild for further details. Note that
	// this is not a constant for testing purposes.
	slackReachabilityIntervalForReclaiming uint64 = 1
)

// orderedTreeNodeSet is an ordered set of reachability tree nodes
// Note that this type does not validate order validity. It's the
// responsibility of the caller to construct instances of this type
// properly.
type orderedTreeNodeSet []*externalapi.DomainHash

// exponentialFractions returns a fraction of each size in sizes
// as follows:
//   fraction[i] = 2^size[i] / sum_j(2^size[j])
// In the code below the above equation is divided by 2^max(size)
// to avoid exploding numbers. Note that in 1 / 2^(max(size)-size[i])
// we divide 1 by potentially a very large number, which will
// result in loss of float precision. This is not a problem - all
// numbers close to 0 bear effectively the same weight.
func exponentialFractions(sizes []uint64) []float64 {
	maxSize := uint64(0)
	for _, size := range sizes {
		if size > maxSize {
			maxSize = size
		}
	}
	fractions := make([]float64, len(sizes))
	for i, size := range sizes {
		fractions[i] = 1 / math.Pow(2, float64(maxSize-size))
	}
	fractionsSum := float64(0)
	for _, fraction := range fractions {
		fractionsSum += fraction
	}
	for i, fraction := range fractions {
		fractions[i] = fraction / fractionsSum
	}
	return fractions
}

func (rt *reachabilityManager) intervalRangeForChildAllocation(stagingArea *model.StagingArea,
	blockHash *externalapi.DomainHash) (*model.ReachabilityInterval, error) {

	interval, err := rt.interval(stagingArea, blockHash)
	if err != nil {
		return nil, err
	}

	// We subtract 1 from the end of the range to prevent the node from allocating
	// the entire interval to its child, so its interval would *strictly* contain the interval of its child.
	return newReachabilityInterval(interval.Start, interval.End-1), nil
}

func (rt *reachabilityManager) remainingIntervalBefore(stagingArea *model.StagingArea,
	node *externalapi.DomainHash) (*model.ReachabilityInterval, error) {

	childRange, err := rt.intervalRangeForChildAllocation(stagingArea, node)
	if err != nil {
		return nil, err
	}

	children, err := rt.children(stagingArea, node)
	if err != nil {
		return nil, err
	}

	if len(children) == 0 {
		return childRange, nil
	}

	firstChildInterval, err := rt.interval(stagingArea, children[0])
	if err != nil {
		return nil, err
	}

	return newReachabilityInterval(childRange.Start, firstChildInterval.Start-1), nil
}

func (rt *reachabilityManager) remainingIntervalAfter(stagingArea *model.StagingArea,
	node *externalapi.DomainHash) (*model.ReachabilityInterval, error) {

	childRange, err := rt.intervalRangeForChildAllocation(stagingArea, node)
	if err != nil {
		return nil, err
	}

	children, err := rt.children(stagingArea, node)
	if err != nil {
		return nil, err
	}

	if len(children) == 0 {
		return childRange, nil
	}

	lastChildInterval, err := rt.interval(stagingArea, children[len(children)-1])
	if err != nil {
		return nil, err
	}

	return newReachabilityInterval(lastChildInterval.End+1, childRange.End), nil
}

func (rt *reachabilityManager) hasSlackIntervalBefore(stagingArea *model.StagingArea,
	node *externalapi.DomainHash) (bool, error) {

	interval, err := rt.remainingIntervalBefore(stagingArea, node)
	if err != nil {
		return false, err
	}

	return intervalSize(interval) > 0, nil
}

func (rt *reachabilityManager) hasSlackIntervalAfter(stagingArea *model.StagingArea,
	node *externalapi.DomainHash) (bool, error) {

	interval, err := rt.remainingIntervalAfter(stagingArea, node)
	if err != nil {
		return false, err
	}

	return intervalSize(interval) > 0, nil
}

// addChild adds child to this tree node. If this node has no
// remaining interval to allocate, a reindexing is triggered.
func (rt *reachabilityManager) addChild(stagingArea *model.StagingArea, node, child,
	reindexRoot *externalapi.DomainHash) error {

	remaining, err := rt.remainingIntervalAfter(stagingArea, node)
	if err != nil {
		return err
	}

	// Set the parent-child relationship
	err = rt.stageAddChild(stagingArea, node, child)
	if err != nil {
		return err
	}

	err = rt.stageParent(stagingArea, child, node)
	if err != nil {
		return err
	}

	// Temporarily set the child's interval to be empty, at
	// the start of node's remaining interval. This is done
	// so that child-of-node checks (e.g.
	// FindAncestorOfThisAmongChildrenOfOther) will not fail for node.
	err = rt.stageInterval(stagingArea, child, newReachabilityInterval(remaining.Start, remaining.Start-1))
	if err != nil {
		return err
	}

	// Handle node not being a descendant of the reindex root.
	// Note that we check node here instead of child because
	// at this point we don't yet know child's interval.
	isReindexRootAncestorOfNode, err := rt.IsReachabilityTreeAncestorOf(stagingArea, reindexRoot, node)
	if err != nil {
		return err
	}

	if !isReindexRootAncestorOfNode {
		reindexStartTime := time.Now()
		err := rt.reindexIntervalsEarlierThanReindexRoot(stagingArea, node, reindexRoot)
		if err != nil {
			return err
		}
		reindexTimeElapsed := time.Since(reindexStartTime)
		log.Debugf("Reachability reindex triggered for "+
			"block %s. This block is not a child of the current "+
			"reindex root %s. Took %dms.",
			node, reindexRoot, reindexTimeElapsed.Milliseconds())
		return nil
	}

	// No allocation space left -- reindex
	if intervalSize(remaining) == 0 {
		reindexStartTime := time.Now()
		err := rt.reindexIntervals(stagingArea, node)
		if err != nil {
			return err
		}
		reindexTimeElapsed := time.Since(reindexStartTime)
		log.Debugf("Reachability reindex triggered for "+
			"block %s. Took %dms.",
			node, reindexTimeElapsed.Milliseconds())
		return nil
	}

	// Allocate from the remaining space
	allocated, _, err := intervalSplitInHalf(remaining)
	if err != nil {
		return err
	}

	return rt.stageInterval(stagingArea, child, allocated)
}

// reindexIntervals traverses the reachability subtree that's
// defined by this node and reallocates reachability interval space
// such that another reindexing is unlikely to occur shortly
// thereafter. It does this by traversing down the reachability
// tree until it finds a node with a subtree size that's greater than
// its interval size. See propagateInterval for further details.
func (rt *reachabilityManager) reindexIntervals(stagingArea *model.StagingArea, node *externalapi.DomainHash) error {
	current := node

	// Initial interval and subtree sizes
	currentInterval, err := rt.interval(stagingArea, node)
	if err != nil {
		return err
	}

	size := intervalSize(currentInterval)
	subTreeSizeMap := make(map[externalapi.DomainHash]uint64)
	err = rt.countSubtrees(stagingArea, current, subTreeSizeMap)
	if err != nil {
		return err
	}

	currentSubtreeSize := subTreeSizeMap[*current]

	// Find the first ancestor that has sufficient interval space
	for size < currentSubtreeSize {
		currentParent, err := rt.parent(stagingArea, current)
		if err != nil {
			return err
		}

		if currentParent == nil {
			// If we ended up here it means that there are more
			// than 2^64 blocks, which shouldn't ever happen.
			return errors.Errorf("missing tree " +
				"parent during reindexing. Theoretically, this " +
				"should only ever happen if there are more " +
				"than 2^64 blocks in the DAG.")
		}
		current = currentParent
		currentInterval, err := rt.interval(stagingArea, current)
		if err != nil {
			return err
		}

		size = intervalSize(currentInterval)
		err = rt.countSubtrees(stagingArea, current, subTreeSizeMap)
		if err != nil {
			return err
		}

		currentSubtreeSize = subTreeSizeMap[*current]
	}

	// Propagate the interval to the subtree
	return rt.propagateInterval(stagingArea, current, subTreeSizeMap)
}

// countSubtrees counts the size of each subtree under this node,
// and populates the provided subTreeSizeMap with the results.
// It is equivalent to the following recursive implementation:
//
// func (rt *reachabilityManager) countSubtrees(node *externalapi.DomainHash) uint64 {
//     subtreeSize := uint64(0)
//     for _, child := range node.children {
//         subtreeSize += child.countSubtrees()
//     }
//     return subtreeSize + 1
// }
//
// However, we are expecting (linearly) deep trees, and so a
// recursive stack-based approach is inefficient and will hit
// recursion limits. Instead, the same logic was implemented
// using a (queue-based) BFS method. At a high level, the
// algorithm uses BFS for reaching all leaves and pushes
// intermediate updates from leaves via parent chains until all
// size information is gathered at the root of the operation
// (i.e. at node).
func (rt *reachabilityManager) countSubtrees(stagingArea *model.StagingArea, node *externalapi.DomainHash,
	subTreeSizeMap map[externalapi.DomainHash]uint64) error {

	queue := []*externalapi.DomainHash{node}
	calculatedChildrenCount := make(map[externalapi.DomainHash]uint64)
	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]
		currentChildren, err := rt.children(stagingArea, current)
		if err != nil {
			return err
		}

		if len(currentChildren) == 0 {
			// We reached a leaf
			subTreeSizeMap[*current] = 1
		} else if _, ok := subTreeSizeMap[*current]; !ok {
			// We haven't yet calculated the subtree size of
			// the current node. Add all its children to the
			// queue
			queue = append(queue, currentChildren...)
			continue
		}

		// We reached a leaf or a pre-calculated subtree.
		// Push information up
		for !current.Equal(node) {
			current, err = rt.parent(stagingArea, current)
			if err != nil {
				return err
			}

			// If the current is now nil, it means that the previous
			// `current` was the tree root -- the only block that
			// does not have a parent
			if current == nil {
				break
			}

			calculatedChildrenCount[*current]++

			currentChildren, err := rt.children(stagingArea, current)
			if err != nil {
				return err
			}

			if calculatedChildrenCount[*current] != uint64(len(currentChildren)) {
				// Not all subtrees of the current node are ready
				break
			}
			// All children of `current` have calculated their subtree size.
			// Sum them all together and add 1 to get the sub tree size of
			// `current`.
			childSubtreeSizeSum := uint64(0)
			for _, child := range currentChildren {
				childSubtreeSizeSum += subTreeSizeMap[*child]
			}
			subTreeSizeMap[*current] = childSubtreeSizeSum + 1
		}
	}

	return nil
}

// propagateInterval propagates the new interval using a BFS traversal.
// Subtree intervals are recursively allocated according to subtree sizes and
// the allocation rule in intervalSplitWithExponentialBias.
func (rt *reachabilityManager) propagateInterval(stagingArea *model.StagingArea, node *externalapi.DomainHash,
	subTreeSizeMap map[externalapi.DomainHash]uint64) error {

	queue := []*externalapi.DomainHash{node}
	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]

		currentChildren, err := rt.children(stagingArea, current)
		if err != nil {
			return err
		}

		if len(currentChildren) > 0 {
			sizes := make([]uint64, len(currentChildren))
			for i, child := range currentChildren {
				sizes[i] = subTreeSizeMap[*child]
			}

			interval, err := rt.intervalRangeForChildAllocation(stagingArea, current)
			if err != nil {
				return err
			}

			intervals, err := intervalSplitWithExponentialBias(interval, sizes)
			if err != nil {
				return err
			}
			for i, child := range currentChildren {
				childInterval := intervals[i]
				err = rt.stageInterval(stagingArea, child, childInterval)
				if err != nil {
					return err
				}
				queue = append(queue, child)
			}
		}
	}
	return nil
}

func (rt *reachabilityManager) reindexIntervalsEarlierThanReindexRoot(stagingArea *model.StagingArea,
	node, reindexRoot *externalapi.DomainHash) error {

	// Find the common ancestor for both node and the reindex root
	commonAncestor, err := rt.findCommonAncestorWithReindexRoot(stagingArea, node, reindexRoot)
	if err != nil {
		return err
	}

	// The chosen child is:
	// a. A reachability tree child of `commonAncestor`
	// b. A reachability tree ancestor of `reindexRoot`
	commonAncestorChosenChild, err := rt.FindAncestorOfThisAmongChildrenOfOther(stagingArea, reindexRoot, commonAncestor)
	if err != nil {
		return err
	}

	nodeInterval, err := rt.interval(stagingArea, node)
	if err != nil {
		return err
	}

	commonAncestorChosenChildInterval, err := rt.interval(stagingArea, commonAncestorChosenChild)
	if err != nil {
		return err
	}

	if nodeInterval.End < commonAncestorChosenChildInterval.Start {
		// node is in the subtree before the chosen child
		return rt.reclaimIntervalBeforeChosenChild(stagingArea, node, commonAncestor,
			commonAncestorChosenChild, reindexRoot)
	}

	// node is either:
	// * in the subtree after the chosen child
	// * the common ancestor
	// In both cases we reclaim from the "after" subtree. In the
	// latter case this is arbitrary
	return rt.reclaimIntervalAfterChosenChild(stagingArea, node, commonAncestor,
		commonAncestorChosenChild, reindexRoot)
}

func (rt *reachabilityManager) reclaimIntervalBeforeChosenChild(stagingArea *model.StagingArea,
	node, commonAncestor, commonAncestorChosenChild, reindexRoot *externalapi.DomainHash) error {

	current := commonAncestorChosenChild

	commonAncestorChosenChildHasSlackIntervalBefore, err := rt.hasSlackIntervalBefore(stagingArea, commonAncestorChosenChild)
	if err != nil {
		return err
	}

	if !commonAncestorChosenChildHasSlackIntervalBefore {
		// The common ancestor ran out of slack before its chosen child.
		// Climb up the reachability tree toward the reindex root until
		// we find a node that has enough slack.
		for {
			currentHasSlackIntervalBefore, err := rt.hasSlackIntervalBefore(stagingArea, current)
			if err != nil {
				return err
			}

			if currentHasSlackIntervalBefore || current.Equal(reindexRoot) {
				break
			}

			current, err = rt.FindAncestorOfThisAmongChildrenOfOther(stagingArea, reindexRoot, current)
			if err != nil {
				return err
			}
		}

		if current.Equal(reindexRoot) {
			// "Deallocate" an interval of slackReachabilityIntervalForReclaiming
			// from this node. This is the interval that we'll use for the new
			// node.
			originalInterval, err := rt.interval(stagingArea, current)
			if err != nil {
				return err
			}

			err = rt.stageInterval(stagingArea, current, newReachabilityInterval(
				originalInterval.Start+slackReachabilityIntervalForReclaiming,
				originalInterval.End,
			))
			if err != nil {
				return err
			}

			err = rt.countSubtreesAndPropagateInterval(stagingArea, current)
			if err != nil {
				return err
			}

			err = rt.stageInterval(stagingArea, current, originalInterval)
			if err != nil {
				return err
			}
		}
	}

	// Go down the reachability tree towards the common ancestor.
	// On every hop we reindex the reachability subtree before the
	// current node with an interval that is smaller by
	// slackReachabilityIntervalForReclaiming. This is to make room
	// for the new node.
	for !current.Equal(commonAncestor) {
		currentInterval, err := rt.interval(stagingArea, current)
		if err != nil {
			return err
		}

		err = rt.stageInterval(stagingArea, current, newReachabilityInterval(
			currentInterval.Start+slackReachabilityIntervalForReclaiming,
			currentInterval.End,
		))
		if err != nil {
			return err
		}

		currentParent, err := rt.parent(stagingArea, current)
		if err != nil {
			return err
		}

		err = rt.reindexIntervalsBeforeNode(stagingArea, currentParent, current)
		if err != nil {
			return err
		}

		current = currentParent
	}

	return nil
}

// reindexIntervalsBeforeNode applies a tight interval to the reachability
// subtree before `node`. Note that `node` itself is unaffected.
func (rt *reachabilityManager) reindexIntervalsBeforeNode(stagingArea *model.StagingArea,
	rtn, node *externalapi.DomainHash) error {

	childrenBeforeNode, _, err := rt.splitChildrenAroundChild(stagingArea, rtn, node)
	if err != nil {
		return err
	}

	childrenBeforeNodeSizes, childrenBeforeNodeSubtreeSizeMaps, childrenBeforeNodeSizesSum :=
		rt.calcReachabilityTreeNodeSizes(stagingArea, childrenBeforeNode)

	// Apply a tight interval
	nodeInterval, err := rt.interval(stagingArea, node)
	if err != nil {
		return err
	}

	newIntervalEnd := nodeInterval.Start - 1
	newInterval := newReachabilityInterval(newIntervalEnd-childrenBeforeNodeSizesSum+1, newIntervalEnd)
	intervals, err := intervalSplitExact(newInterval, childrenBeforeNodeSizes)
	if err != nil {
		return err
	}
	return rt.propagateIntervals(stagingArea, childrenBeforeNode, intervals, childrenBeforeNodeSubtreeSizeMaps)
}

func (rt *reachabilityManager) reclaimIntervalAfterChosenChild(stagingArea *model.StagingArea,
	node, commonAncestor, commonAncestorChosenChild, reindexRoot *externalapi.DomainHash) error {

	current := commonAncestorChosenChild
	commonAncestorChosenChildHasSlackIntervalAfter, err := rt.hasSlackIntervalAfter(stagingArea, commonAncestorChosenChild)
	if err != nil {
		return err
	}

	if !commonAncestorChosenChildHasSlackIntervalAfter {
		// The common ancestor ran out of slack after its chosen child.
		// Climb up the reachability tree toward the reindex root until
		// we find a node that has enough slack.
		for {
			currentHasSlackIntervalAfter, err := rt.hasSlackIntervalAfter(stagingArea, commonAncestorChosenChild)
			if err != nil {
				return err
			}

			if currentHasSlackIntervalAfter || current.Equal(reindexRoot) {
				break
			}

			current, err = rt.FindAncestorOfThisAmongChildrenOfOther(stagingArea, reindexRoot, current)
			if err != nil {
				return err
			}
		}

		if current.Equal(reindexRoot) {
			// "Deallocate" an interval of slackReachabilityIntervalForReclaiming
			// from this node. This is the interval that we'll use for the new
			// node.
			originalInterval, err := rt.interval(stagingArea, current)
			if err != nil {
				return err
			}

			err = rt.stageInterval(stagingArea, current, newReachabilityInterval(
				originalInterval.Start,
				originalInterval.End-slackReachabilityIntervalForReclaiming,
			))
			if err != nil {
				return err
			}

			err = rt.countSubtreesAndPropagateInterval(stagingArea, current)
			if err != nil {
				return err
			}

			err = rt.stageInterval(stagingArea, current, originalInterval)
			if err != nil {
				return err
			}
		}
	}

	// Go down the reachability tree towards the common ancestor.
	// On every hop we reindex the reachability subtree after the
	// current node with an interval that is smaller by
	// slackReachabilityIntervalForReclaiming. This is to make room
	// for the new node.
	for !current.Equal(commonAncestor) {
		currentInterval, err := rt.interval(stagingArea, current)
		if err != nil {
			return err
		}

		err = rt.stageInterval(stagingArea, current, newReachabilityInterval(
			currentInterval.Start,
			currentInterval.End-slackReachabilityIntervalForReclaiming,
		))
		if err != nil {
			return err
		}

		currentParent, err := rt.parent(stagingArea, current)
		if err != nil {
			return err
		}

		err = rt.reindexIntervalsAfterNode(stagingArea, currentParent, current)
		if err != nil {
			return err
		}

		current = currentParent
	}

	return nil
}

// reindexIntervalsAfterNode applies a tight interval to the reachability
// subtree after `node`. Note that `node` itself is unaffected.
func (rt *reachabilityManager) reindexIntervalsAfterNode(stagingArea *model.StagingArea,
	rtn, node *externalapi.DomainHash) error {

	_, childrenAfterNode, err := rt.splitChildrenAroundChild(stagingArea, rtn, node)
	if err != nil {
		return err
	}

	childrenAfterNodeSizes, childrenAfterNodeSubtreeSizeMaps, childrenAfterNodeSizesSum :=
		rt.calcReachabilityTreeNodeSizes(stagingArea, childrenAfterNode)

	// Apply a tight interval
	nodeInterval, err := rt.interval(stagingArea, node)
	if err != nil {
		return err
	}

	newIntervalStart := nodeInterval.End + 1
	newInterval := newReachabilityInterval(newIntervalStart, newIntervalStart+childrenAfterNodeSizesSum-1)
	intervals, err := intervalSplitExact(newInterval, childrenAfterNodeSizes)
	if err != nil {
		return err
	}
	return rt.propagateIntervals(stagingArea, childrenAfterNode, intervals, childrenAfterNodeSubtreeSizeMaps)
}

func (rt *reachabilityManager) propagateIntervals(stagingArea *model.StagingArea, nodes []*externalapi.DomainHash,
	intervals []*model.ReachabilityInterval, subtreeSizeMaps []map[externalapi.DomainHash]uint64) error {

	for i, node := range nodes {
		err := rt.stageInterval(stagingArea, node, intervals[i])
		if err != nil {
			return err
		}

		subtreeSizeMap := subtreeSizeMaps[i]
		err = rt.propagateInterval(stagingArea, node, subtreeSizeMap)
		if err != nil {
			return err
		}
	}

	return nil
}

// IsReachabilityTreeAncestorOf checks if this node is a reachability tree ancestor
// of the other node. Note that we use the graph theory convention
// here which defines that node is also an ancestor of itself.
func (rt *reachabilityManager) IsReachabilityTreeAncestorOf(stagingArea *model.StagingArea,
	node, other *externalapi.DomainHash) (bool, error) {

	nodeInterval, err := rt.interval(stagingArea, node)
	if err != nil {
		return false, err
	}

	otherInterval, err := rt.interval(stagingArea, other)
	if err != nil {
		return false, err
	}

	return intervalContains(nodeInterval, otherInterval), nil
}

// findCommonAncestorWithReindexRoot finds the most recent reachability
// tree ancestor common to both node and the given reindex root. Note
// that we assume that almost always the chain between the reindex root
// and the common ancestor is longer than the chain between node and the
// common ancestor.
func (rt *reachabilityManager) findCommonAncestorWithReindexRoot(stagingArea *model.StagingArea,
	node, reindexRoot *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	currentThis := node
	for {
		isAncestorOf, err := rt.IsReachabilityTreeAncestorOf(stagingArea, currentThis, reindexRoot)
		if err != nil {
			return nil, err
		}

		if isAncestorOf {
			return currentThis, nil
		}

		currentThis, err = rt.parent(stagingArea, currentThis)
		if err != nil {
			return nil, err
		}
	}
}

// String returns a string representation of a reachability tree node
// and its children.
func (rt *reachabilityManager) String(stagingArea *model.StagingArea, node *externalapi.DomainHash) (string, error) {
	queue := []*externalapi.DomainHash{node}
	nodeInterval, err := rt.interval(stagingArea, node)
	if err != nil {
		return "", err
	}

	lines := []string{nodeInterval.String()}
	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]
		currentChildren, err := rt.children(stagingArea, current)
		if err != nil {
			return "", err
		}

		if len(currentChildren) == 0 {
			continue
		}

		line := ""
		for _, child := range currentChildren {
			childInterval, err := rt.interval(stagingArea, child)
			if err != nil {
				return "", err
			}

			line += childInterval.String()
			queue = append(queue, child)
		}
		lines = append([]string{line}, lines...)
	}
	return strings.Join(lines, "\n"), nil
}

func (rt *reachabilityManager) updateReindexRoot(stagingArea *model.StagingArea,
	selectedTip *externalapi.DomainHash) error {

	nextReindexRoot, err := rt.reindexRoot(stagingArea)
	if err != nil {
		return err
	}

	for {
		candidateReindexRoot, found, err := rt.maybeMoveReindexRoot(stagingArea, nextReindexRoot, selectedTip)
		if err != nil {
			return err
		}
		if !found {
			break
		}
		nextReindexRoot = candidateReindexRoot
	}

	rt.stageReindexRoot(stagingArea, nextReindexRoot)
	return nil
}

func (rt *reachabilityManager) maybeMoveReindexRoot(stagingArea *model.StagingArea,
	reindexRoot, newTreeNode *externalapi.DomainHash) (newReindexRoot *externalapi.DomainHash, found bool, err error) {

	isAncestorOf, err := rt.IsReachabilityTreeAncestorOf(stagingArea, reindexRoot, newTreeNode)
	if err != nil {
		return nil, false, err
	}
	if !isAncestorOf {
		commonAncestor, err := rt.findCommonAncestorWithReindexRoot(stagingArea, newTreeNode, reindexRoot)
		if err != nil {
			return nil, false, err
		}

		return commonAncestor, true, nil
	}

	reindexRootChosenChild, err := rt.FindAncestorOfThisAmongChildrenOfOther(stagingArea, newTreeNode, reindexRoot)
	if err != nil {
		return nil, false, err
	}

	newTreeNodeGHOSTDAGData, err := rt.ghostdagDataStore.Get(rt.databaseContext, stagingArea, newTreeNode)
	if err != nil {
		return nil, false, err
	}

	reindexRootChosenChildGHOSTDAGData, err := rt.ghostdagDataStore.Get(rt.databaseContext, stagingArea, reindexRootChosenChild)
	if err != nil {
		return nil, false, err
	}

	if newTreeNodeGHOSTDAGData.BlueScore()-reindexRootChosenChildGHOSTDAGData.BlueScore() < rt.reindexWindow {
		return nil, false, nil
	}

	err = rt.concentrateIntervalAroundReindexRootChosenChild(stagingArea, reindexRoot, reindexRootChosenChild)
	if err != nil {
		return nil, false, err
	}

	return reindexRootChosenChild, true, nil
}

// FindAncestorOfThisAmongChildrenOfOther finds the reachability tree child
// of `other` that is the ancestor of `this`.
func (rt *reachabilityManager) FindAncestorOfThisAmongChildrenOfOther(stagingArea *model.StagingArea,
	this, other *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	otherChildren, err := rt.children(stagingArea, other)
	if err != nil {
		return nil, err
	}

	ancestor, ok := rt.findAncestorOfNode(stagingArea, otherChildren, this)
	if !ok {
		return nil, errors.Errorf("node is not an ancestor of this")
	}

	return ancestor, nil
}

func (rt *reachabilityManager) concentrateIntervalAroundReindexRootChosenChild(stagingArea *model.StagingArea,
	reindexRoot, reindexRootChosenChild *externalapi.DomainHash) error {

	reindexRootChildNodesBeforeChosen, reindexRootChildNodesAfterChosen, err :=
		rt.splitChildrenAroundChild(stagingArea, reindexRoot, reindexRootChosenChild)
	if err != nil {
		return err
	}

	reindexRootChildNodesBeforeChosenSizesSum, err :=
		rt.tightenIntervalsBeforeReindexRootChosenChild(stagingArea, reindexRoot, reindexRootChildNodesBeforeChosen)
	if err != nil {
		return err
	}

	reindexRootChildNodesAfterChosenSizesSum, err :=
		rt.tightenIntervalsAfterReindexRootChosenChild(stagingArea, reindexRoot, reindexRootChildNodesAfterChosen)
	if err != nil {
		return err
	}

	err = rt.expandIntervalInReindexRootChosenChild(stagingArea, reindexRoot, reindexRootChosenChild,
		reindexRootChildNodesBeforeChosenSizesSum, reindexRootChildNodesAfterChosenSizesSum)
	if err != nil {
		return err
	}

	return nil
}

// splitChildrenAroundChild splits `node` into two slices: the nodes that are before
// `child` and the nodes that are after.
func (rt *reachabilityManager) splitChildrenAroundChild(stagingArea *model.StagingArea,
	node, child *externalapi.DomainHash) (nodesBeforeChild, nodesAfterChild []*externalapi.DomainHash, err error) {

	nodeChildren, err := rt.children(stagingArea, node)
	if err != nil {
		return nil, nil, err
	}

	for i, candidateChild := range nodeChildren {
		if candidateChild.Equal(child) {
			return nodeChildren[:i], nodeChildren[i+1:], nil
		}
	}
	return nil, nil, errors.Errorf("child not a child of node")
}

func (rt *reachabilityManager) tightenIntervalsBeforeReindexRootChosenChild(stagingArea *model.StagingArea,
	reindexRoot *externalapi.DomainHash, reindexRootChildNodesBeforeChosen []*externalapi.DomainHash) (
	reindexRootChildNodesBeforeChosenSizesSum uint64, err error) {

	reindexRootChildNodesBeforeChosenSizes, reindexRootChildNodesBeforeChosenSubtreeSizeMaps, reindexRootChildNodesBeforeChosenSizesSum :=
		rt.calcReachabilityTreeNodeSizes(stagingArea, reindexRootChildNodesBeforeChosen)

	reindexRootInterval, err := rt.interval(stagingArea, reindexRoot)
	if err != nil {
		return 0, err
	}

	intervalBeforeReindexRootStart := newReachabilityInterval(
		reindexRootInterval.Start+rt.reindexSlack,
		reindexRootInterval.Start+rt.reindexSlack+reindexRootChildNodesBeforeChosenSizesSum-1,
	)

	err = rt.propagateChildIntervals(stagingArea, intervalBeforeReindexRootStart, reindexRootChildNodesBeforeChosen,
		reindexRootChildNodesBeforeChosenSizes, reindexRootChildNodesBeforeChosenSubtreeSizeMaps)
	if err != nil {
		return 0, err
	}
	return reindexRootChildNodesBeforeChosenSizesSum, nil
}

func (rt *reachabilityManager) tightenIntervalsAfterReindexRootChosenChild(stagingArea *model.StagingArea,
	reindexRoot *externalapi.DomainHash, reindexRootChildNodesAfterChosen []*externalapi.DomainHash) (
	reindexRootChildNodesAfterChosenSizesSum uint64, err error) {

	reindexRootChildNodesAfterChosenSizes, reindexRootChildNodesAfterChosenSubtreeSizeMaps,
		reindexRootChildNodesAfterChosenSizesSum :=
		rt.calcReachabilityTreeNodeSizes(stagingArea, reindexRootChildNodesAfterChosen)

	reindexRootInterval, err := rt.interval(stagingArea, reindexRoot)
	if err != nil {
		return 0, err
	}

	intervalAfterReindexRootEnd := newReachabilityInterval(
		reindexRootInterval.End-rt.reindexSlack-reindexRootChildNodesAfterChosenSizesSum,
		reindexRootInterval.End-rt.reindexSlack-1,
	)

	err = rt.propagateChildIntervals(stagingArea, intervalAfterReindexRootEnd, reindexRootChildNodesAfterChosen,
		reindexRootChildNodesAfterChosenSizes, reindexRootChildNodesAfterChosenSubtreeSizeMaps)
	if err != nil {
		return 0, err
	}
	return reindexRootChildNodesAfterChosenSizesSum, nil
}

func (rt *reachabilityManager) expandIntervalInReindexRootChosenChild(stagingArea *model.StagingArea,
	reindexRoot, reindexRootChosenChild *externalapi.DomainHash,
	reindexRootChildNodesBeforeChosenSizesSum uint64, reindexRootChildNodesAfterChosenSizesSum uint64) error {

	reindexRootInterval, err := rt.interval(stagingArea, reindexRoot)
	if err != nil {
		return err
	}

	newReindexRootChildInterval := newReachabilityInterval(
		reindexRootInterval.Start+reindexRootChildNodesBeforeChosenSizesSum+rt.reindexSlack,
		reindexRootInterval.End-reindexRootChildNodesAfterChosenSizesSum-rt.reindexSlack-1,
	)

	reindexRootChosenChildInterval, err := rt.interval(stagingArea, reindexRootChosenChild)
	if err != nil {
		return err
	}

	if !intervalContains(newReindexRootChildInterval, reindexRootChosenChildInterval) {
		// New interval doesn't contain the previous one, propagation is required

		// We assign slack on both sides as an optimization. Were we to
		// assign a tight interval, the next time the reindex root moves we
		// would need to propagate intervals again. That is to say, When we
		// DO allocate slack, next time
		// expandIntervalInReindexRootChosenChild is called (next time the
		// reindex root moves), newReindexRootChildInterval is likely to
		// contain reindexRootChosenChild.Interval.
		err := rt.stageInterval(stagingArea, reindexRootChosenChild, newReachabilityInterval(
			newReindexRootChildInterval.Start+rt.reindexSlack,
			newReindexRootChildInterval.End-rt.reindexSlack,
		))
		if err != nil {
			return err
		}

		err = rt.countSubtreesAndPropagateInterval(stagingArea, reindexRootChosenChild)
		if err != nil {
			return err
		}
	}

	err = rt.stageInterval(stagingArea, reindexRootChosenChild, newReindexRootChildInterval)
	if err != nil {
		return err
	}
	return nil
}

func (rt *reachabilityManager) countSubtreesAndPropagateInterval(stagingArea *model.StagingArea,
	node *externalapi.DomainHash) error {

	subtreeSizeMap := make(map[externalapi.DomainHash]uint64)
	err := rt.countSubtrees(stagingArea, node, subtreeSizeMap)
	if err != nil {
		return err
	}

	return rt.propagateInterval(stagingArea, node, subtreeSizeMap)
}

func (rt *reachabilityManager) calcReachabilityTreeNodeSizes(stagingArea *model.StagingArea,
	treeNodes []*externalapi.DomainHash) (
	sizes []uint64, subtreeSizeMaps []map[externalapi.DomainHash]uint64, sum uint64) {

	sizes = make([]uint64, len(treeNodes))
	subtreeSizeMaps = make([]map[externalapi.DomainHash]uint64, len(treeNodes))
	sum = 0
	for i, node := range treeNodes {
		subtreeSizeMap := make(map[externalapi.DomainHash]uint64)
		err := rt.countSubtrees(stagingArea, node, subtreeSizeMap)
		if err != nil {
			return nil, nil, 0
		}

		subtreeSize := subtreeSizeMap[*node]
		sizes[i] = subtreeSize
		subtreeSizeMaps[i] = subtreeSizeMap
		sum += subtreeSize
	}
	return sizes, subtreeSizeMaps, sum
}

func (rt *reachabilityManager) propagateChildIntervals(stagingArea *model.StagingArea,
	interval *model.ReachabilityInterval, childNodes []*externalapi.DomainHash, sizes []uint64,
	subtreeSizeMaps []map[externalapi.DomainHash]uint64) error {

	childIntervalSizes, err := intervalSplitExact(interval, sizes)
	if err != nil {
		return err
	}

	for i, child := range childNodes {
		childInterval := childIntervalSizes[i]
		err := rt.stageInterval(stagingArea, child, childInterval)
		if err != nil {
			return err
		}

		childSubtreeSizeMap := subtreeSizeMaps[i]
		err = rt.propagateInterval(stagingArea, child, childSubtreeSizeMap)
		if err != nil {
			return err
		}
	}

	return nil
}

// insertToFutureCoveringSet inserts the given futureNode into the
// futureCoveringSet of `node` while keeping the set ordered by interval.
// If a block B ∈ node.futureCoveringSet exists such that its interval
// contains futureNode's interval, futureNode need not be added. If
// futureNode's interval contains B's interval, it replaces it.
//
// Notes:
// * Intervals never intersect unless one contains the other
//   (this follows from the tree structure and the indexing rule).
// * Since node.futureCoveringSet is kept ordered, a binary search can be
//   used for insertion/queries.
// * Although reindexing may change a block's interval, the
//   is-superset relation will by definition be always preserved.
func (rt *reachabilityManager) insertToFutureCoveringSet(stagingArea *model.StagingArea,
	node, futureNode *externalapi.DomainHash) error {

	futureCoveringSet, err := rt.futureCoveringSet(stagingArea, node)
	if err != nil {
		return err
	}

	ancestorIndex, ok, err := rt.findAncestorIndexOfNode(stagingArea, orderedTreeNodeSet(futureCoveringSet), futureNode)
	if err != nil {
		return err
	}

	if !ok {
		newSet := append([]*externalapi.DomainHash{futureNode}, futureCoveringSet...)
		return rt.stageFutureCoveringSet(stagingArea, node, newSet)
	}

	candidate := futureCoveringSet[ancestorIndex]
	candidateIsAncestorOfFutureNode, err := rt.IsReachabilityTreeAncestorOf(stagingArea, candidate, futureNode)
	if err != nil {
		return err
	}

	if candidateIsAncestorOfFutureNode {
		// candidate is an ancestor of futureNode, no need to insert
		return nil
	}

	futureNodeIsAncestorOfCandidate, err := rt.IsReachabilityTreeAncestorOf(stagingArea, futureNode, candidate)
	if err != nil {
		return err
	}

	if futureNodeIsAncestorOfCandidate {
		// futureNode is an ancestor of candidate, and can thus replace it
		newSet := make([]*externalapi.DomainHash, len(futureCoveringSet))
		copy(newSet, futureCoveringSet)
		newSet[ancestorIndex] = futureNode
		return rt.stageFutureCoveringSet(stagingArea, node, newSet)
	}

	// Insert futureNode in the correct index to maintain the set as
	// a sorted-by-interval set.
	// Note that ancestorIndex might be equal to len(futureCoveringSet)
	left := futureCoveringSet[:ancestorIndex+1]
	right := append([]*externalapi.DomainHash{futureNode}, futureCoveringSet[ancestorIndex+1:]...)
	newSet := append(left, right...)
	return rt.stageFutureCoveringSet(stagingArea, node, newSet)
}

// futureCoveringSetHasAncestorOf resolves whether the given node `other` is
// in the subtree of any node in this.futureCoveringSet.
// See insertToFutureCoveringSet for further details.
func (rt *reachabilityManager) futureCoveringSetHasAncestorOf(stagingArea *model.StagingArea,
	this, other *externalapi.DomainHash) (bool, error) {

	futureCoveringSet, err := rt.futureCoveringSet(stagingArea, this)
	if err != nil {
		return false, err
	}

	potentialAncestorNode, ok := rt.findAncestorOfNode(stagingArea, orderedTreeNodeSet(futureCoveringSet), other)
	if !ok {
		// No candidate means this node is not in the future of any
		// node in futureCoveringSet
		return false, nil
	}

	return rt.IsReachabilityTreeAncestorOf(stagingArea, potentialAncestorNode, other)
}

// IsDAGAncestorOf returns true if this node is in the past of the other node
// in the DAG.
//
// Note: this method will return true if this == other
// The complexity of this method is O(log(|this.futureCoveringSet|))
func (rt *reachabilityManager) IsDAGAncestorOf(stagingArea *model.StagingArea,
	this, other *externalapi.DomainHash) (bool, error) {

	// First, check if this node is a reachability tree ancestor of the
	// other node
	isReachabilityTreeAncestor, err := rt.IsReachabilityTreeAncestorOf(stagingArea, this, other)
	if err != nil {
		return false, err
	}

	if isReachabilityTreeAncestor {
		return true, nil
	}

	// Otherwise, use previously registered future blocks to complete the
	// reachability test
	return rt.futureCoveringSetHasAncestorOf(stagingArea, this, other)
}

// UpdateReindexRoot tries to move the reindex root forward towards the
// given selected tip
func (rt *reachabilityManager) UpdateReindexRoot(stagingArea *model.StagingArea,
	selectedTip *externalapi.DomainHash) error {

	return rt.updateReindexRoot(stagingArea, selectedTip)
}

// findAncestorOfNode finds the reachability tree ancestor of `node`
// among the nodes in `tns`.
func (rt *reachabilityManager) findAncestorOfNode(stagingArea *model.StagingArea, tns orderedTreeNodeSet,
	node *externalapi.DomainHash) (*externalapi.DomainHash, bool) {

	ancestorIndex, ok, err := rt.findAncestorIndexOfNode(stagingArea, tns, node)
	if err != nil {
		return nil, false
	}

	if !ok {
		return nil, false
	}

	return tns[ancestorIndex], true
}

// findAncestorIndexOfNode finds the index of the reachability tree
// ancestor of `node` among the nodes in `tns`. It does so by finding
// the index of the block with the maximum start that is below the
// given block.
func (rt *reachabilityManager) findAncestorIndexOfNode(stagingArea *model.StagingArea, tns orderedTreeNodeSet,
	node *externalapi.DomainHash) (int, bool, error) {

	blockInterval, err := rt.interval(stagingArea, node)
	if err != nil {
		return 0, false, err
	}
	end := blockInterval.End

	low := 0
	high := len(tns)
	for low < high {
		middle := (low + high) / 2
		middleInterval, err := rt.interval(stagingArea, tns[middle])
		if err != nil {
			return 0, false, err
		}

		if end < middleInterval.Start {
			high = middle
		} else {
			low = middle + 1
		}
	}

	if low == 0 {
		return 0, false, nil
	}
	return low - 1, true, nil
}

// FindNextAncestor finds the reachability tree child
// of `ancestor` which is also an ancestor of `descendant`.
func (rt *reachabilityManager) FindNextAncestor(stagingArea *model.StagingArea,
	descendant, ancestor *externalapi.DomainHash) (*externalapi.DomainHash, error) {

	if descendant.Equal(ancestor) {
		return nil, errors.Errorf("ancestor is equal to descendant")
	}

	childrenOfAncestor, err := rt.children(stagingArea, ancestor)
	if err != nil {
		return nil, err
	}

	nextAncestor, ok := rt.findAncestorOfNode(stagingArea, childrenOfAncestor, descendant)
	if !ok {
		return nil, errors.Errorf("ancestor is not an ancestor of descendant")
	}

	return nextAncestor, nil
}

// validateIntervals checks the tree rooted at `root` for interval
// allocation correctness: every node must hold a non-empty interval,
// and the intervals of its children must be tightly packed within it,
// in order, leaving the node's own slot at the interval end.
func (rt *reachabilityManager) validateIntervals(stagingArea *model.StagingArea, root *externalapi.DomainHash) error {
	queue := []*externalapi.DomainHash{root}
	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]

		currentChildren, err := rt.children(stagingArea, current)
		if err != nil {
			return err
		}
		queue = append(queue, currentChildren...)

		currentInterval, err := rt.interval(stagingArea, current)
		if err != nil {
			return err
		}

		if currentInterval.Start > currentInterval.End {
			return errors.Errorf("node %s has an empty interval allocation", current)
		}

		for i, child := range currentChildren {
			childInterval, err := rt.interval(stagingArea, child)
			if err != nil {
				return err
			}

			if i > 0 {
				siblingInterval, err := rt.interval(stagingArea, currentChildren[i-1])
				if err != nil {
					return err
				}

				if siblingInterval.End+1 != childInterval.Start {
					return errors.Errorf("node %s: child intervals are not tightly packed", current)
				}
			}

			if childInterval.Start < currentInterval.Start {
				return errors.Errorf("node %s: child interval starts before parent interval", current)
			}

			if childInterval.End >= currentInterval.End {
				return errors.Errorf("node %s: child interval overlaps the slot reserved for the parent", current)
			}
		}
	}

	return nil
}

// getAllNodes returns all nodes of the tree rooted at `root`, in
// breadth-first order.
func (rt *reachabilityManager) getAllNodes(stagingArea *model.StagingArea, root *externalapi.DomainHash) (
	[]*externalapi.DomainHash, error) {

	queue := []*externalapi.DomainHash{root}
	nodes := []*externalapi.DomainHash{}
	for len(queue) > 0 {
		var current *externalapi.DomainHash
		current, queue = queue[0], queue[1:]
		nodes = append(nodes, current)

		currentChildren, err := rt.children(stagingArea, current)
		if err != nil {
			return nil, err
		}
		queue = append(queue, currentChildren...)
	}

	return nodes, nil
}
