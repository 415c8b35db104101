package model

import "github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"

// WindowHeapSliceStore caches the slices that are needed for the block window heap algorithm
type WindowHeapSliceStore interface {
	Store
	Stage(stagingArea *StagingArea, blockHash *externalapi.DomainHash, windowSize int, pairs []*BlockGHOSTDAGDataHashPair)
	IsStaged(stagingArea *StagingArea) bool
	Get(stagingArea *StagingArea, blockHash *externalapi.DomainHash, windowSize int) ([]*BlockGHOSTDAGDataHashPair, error)
}
