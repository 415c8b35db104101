package pruningstore

import (
	"encoding/binary"

	"github.com/cobaltnet/cobaltd/domain/consensus/database"
	"github.com/cobaltnet/cobaltd/domain/consensus/database/binaryserialization"
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/lrucacheuint64tohash"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/utxo"
	"github.com/pkg/errors"
)

const shardName = "PruningStore"

var currentPruningPointIndexKeyName = []byte("pruning-block-index")
var candidatePruningPointHashKeyName = []byte("candidate-pruning-point-hash")
var pruningPointByIndexBucketName = []byte("pruning-point-by-index")
var pruningPointUTXOSetBucketName = []byte("pruning-point-utxo-set")
var updatingPruningPointUTXOSetKeyName = []byte("updating-pruning-point-utxo-set")
var previousPruningPointKeyName = []byte("previous-pruning-point-hash")

// pruningStore represents a store for the current pruning state
type pruningStore struct {
	pruningPointByIndexCache      *lrucacheuint64tohash.LRUCache
	currentPruningPointIndexCache *uint64
	pruningPointCandidateCache    *externalapi.DomainHash
	previousPruningPointCache     *externalapi.DomainHash

	currentPruningPointIndexKey    model.DBKey
	candidatePruningPointHashKey   model.DBKey
	pruningPointByIndexBucket      model.DBBucket
	pruningPointUTXOSetBucket      model.DBBucket
	updatingPruningPointUTXOSetKey model.DBKey
	previousPruningPointKey        model.DBKey
}

// New instantiates a new PruningStore
func New(prefixBucket model.DBBucket, cacheSize int) model.PruningStore {
	return &pruningStore{
		pruningPointByIndexCache:       lrucacheuint64tohash.New(cacheSize),
		currentPruningPointIndexKey:    prefixBucket.Key(currentPruningPointIndexKeyName),
		candidatePruningPointHashKey:   prefixBucket.Key(candidatePruningPointHashKeyName),
		pruningPointByIndexBucket:      prefixBucket.Bucket(pruningPointByIndexBucketName),
		pruningPointUTXOSetBucket:      prefixBucket.Bucket(pruningPointUTXOSetBucketName),
		updatingPruningPointUTXOSetKey: prefixBucket.Key(updatingPruningPointUTXOSetKeyName),
		previousPruningPointKey:        prefixBucket.Key(previousPruningPointKeyName),
	}
}

func (ps *pruningStore) StagePruningPointCandidate(stagingArea *model.StagingArea, candidate *externalapi.DomainHash) {
	stagingShard := ps.stagingShard(stagingArea)

	stagingShard.newPruningPointCandidate = candidate
}

func (ps *pruningStore) PruningPointCandidate(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	stagingShard := ps.stagingShard(stagingArea)

	if stagingShard.newPruningPointCandidate != nil {
		return stagingShard.newPruningPointCandidate, nil
	}

	if ps.pruningPointCandidateCache != nil {
		return ps.pruningPointCandidateCache, nil
	}

	candidateBytes, err := dbContext.Get(ps.candidatePruningPointHashKey)
	if err != nil {
		return nil, err
	}

	candidate, err := binaryserialization.DeserializeHash(candidateBytes)
	if err != nil {
		return nil, err
	}
	ps.pruningPointCandidateCache = candidate
	return candidate, nil
}

func (ps *pruningStore) HasPruningPointCandidate(dbContext model.DBReader, stagingArea *model.StagingArea) (bool, error) {
	stagingShard := ps.stagingShard(stagingArea)

	if stagingShard.newPruningPointCandidate != nil {
		return true, nil
	}

	if ps.pruningPointCandidateCache != nil {
		return true, nil
	}

	return dbContext.Has(ps.candidatePruningPointHashKey)
}

// StagePruningPoint stages the pruning point with index one higher than the
// current one
func (ps *pruningStore) StagePruningPoint(dbContext model.DBWriter, stagingArea *model.StagingArea, pruningPointBlockHash *externalapi.DomainHash) error {
	newPruningPointIndex := uint64(0)
	pruningPointIndex, err := ps.CurrentPruningPointIndex(dbContext, stagingArea)
	if database.IsNotFoundError(err) {
		newPruningPointIndex = 0
	} else if err != nil {
		return err
	} else {
		newPruningPointIndex = pruningPointIndex + 1
	}

	return ps.StagePruningPointByIndex(dbContext, stagingArea, pruningPointBlockHash, newPruningPointIndex)
}

// StagePruningPointByIndex stages the given pruning point at the given index,
// and moves the current pruning point index forward if needed
func (ps *pruningStore) StagePruningPointByIndex(dbContext model.DBReader, stagingArea *model.StagingArea,
	pruningPointBlockHash *externalapi.DomainHash, index uint64) error {

	stagingShard := ps.stagingShard(stagingArea)
	_, exists := stagingShard.pruningPointByIndex[index]
	if exists {
		return errors.Errorf("pruning point with index %d is already staged", index)
	}

	hasPruningPointByIndex, err := ps.hasPruningPointByIndex(dbContext, stagingArea, index)
	if err != nil {
		return err
	}

	if hasPruningPointByIndex {
		return errors.Errorf("pruning point with index %d is already in the database", index)
	}

	stagingShard.pruningPointByIndex[index] = pruningPointBlockHash

	if stagingShard.currentPruningPointIndex == nil {
		stagingShard.currentPruningPointIndex = new(uint64)
	}

	if index > *stagingShard.currentPruningPointIndex {
		*stagingShard.currentPruningPointIndex = index
	}

	return nil
}

func (ps *pruningStore) IsStaged(stagingArea *model.StagingArea) bool {
	return ps.stagingShard(stagingArea).isStaged()
}

// UpdatePruningPointUTXOSet applies the given diff to the pruning point
// UTXO set in the database
func (ps *pruningStore) UpdatePruningPointUTXOSet(dbContext model.DBWriter, diff externalapi.UTXODiff) error {
	toRemoveIterator := diff.ToRemove().Iterator()
	defer toRemoveIterator.Close()
	for ok := toRemoveIterator.First(); ok; ok = toRemoveIterator.Next() {
		toRemoveOutpoint, _, err := toRemoveIterator.Get()
		if err != nil {
			return err
		}
		serializedOutpoint, err := utxo.SerializeOutpoint(toRemoveOutpoint)
		if err != nil {
			return err
		}
		err = dbContext.Delete(ps.pruningPointUTXOSetBucket.Key(serializedOutpoint))
		if err != nil {
			return err
		}
	}

	toAddIterator := diff.ToAdd().Iterator()
	defer toAddIterator.Close()
	for ok := toAddIterator.First(); ok; ok = toAddIterator.Next() {
		toAddOutpoint, entry, err := toAddIterator.Get()
		if err != nil {
			return err
		}
		serializedOutpoint, err := utxo.SerializeOutpoint(toAddOutpoint)
		if err != nil {
			return err
		}
		serializedUTXOEntry, err := utxo.SerializeUTXOEntry(entry)
		if err != nil {
			return err
		}
		err = dbContext.Put(ps.pruningPointUTXOSetBucket.Key(serializedOutpoint), serializedUTXOEntry)
		if err != nil {
			return err
		}
	}
	return nil
}

// PruningPoint gets the current pruning point
func (ps *pruningStore) PruningPoint(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	pruningPointIndex, err := ps.CurrentPruningPointIndex(dbContext, stagingArea)
	if err != nil {
		return nil, err
	}

	return ps.PruningPointByIndex(dbContext, stagingArea, pruningPointIndex)
}

// PruningPointByIndex gets the pruning point that was at the given index
func (ps *pruningStore) PruningPointByIndex(dbContext model.DBReader, stagingArea *model.StagingArea, index uint64) (*externalapi.DomainHash, error) {
	stagingShard := ps.stagingShard(stagingArea)

	if hash, exists := stagingShard.pruningPointByIndex[index]; exists {
		return hash, nil
	}

	if hash, exists := ps.pruningPointByIndexCache.Get(index); exists {
		return hash, nil
	}

	pruningPointBytes, err := dbContext.Get(ps.indexAsKey(index))
	if err != nil {
		return nil, err
	}

	pruningPoint, err := binaryserialization.DeserializeHash(pruningPointBytes)
	if err != nil {
		return nil, err
	}
	ps.pruningPointByIndexCache.Add(index, pruningPoint)
	return pruningPoint, nil
}

func (ps *pruningStore) hasPruningPointByIndex(dbContext model.DBReader, stagingArea *model.StagingArea, index uint64) (bool, error) {
	stagingShard := ps.stagingShard(stagingArea)

	if _, exists := stagingShard.pruningPointByIndex[index]; exists {
		return true, nil
	}

	if ps.pruningPointByIndexCache.Has(index) {
		return true, nil
	}

	return dbContext.Has(ps.indexAsKey(index))
}

// CurrentPruningPointIndex returns the index of the current pruning point
func (ps *pruningStore) CurrentPruningPointIndex(dbContext model.DBReader, stagingArea *model.StagingArea) (uint64, error) {
	stagingShard := ps.stagingShard(stagingArea)

	if stagingShard.currentPruningPointIndex != nil {
		return *stagingShard.currentPruningPointIndex, nil
	}

	if ps.currentPruningPointIndexCache != nil {
		return *ps.currentPruningPointIndexCache, nil
	}

	pruningPointIndexBytes, err := dbContext.Get(ps.currentPruningPointIndexKey)
	if err != nil {
		return 0, err
	}

	index, err := binaryserialization.DeserializeUint64(pruningPointIndexBytes)
	if err != nil {
		return 0, err
	}

	if ps.currentPruningPointIndexCache == nil {
		ps.currentPruningPointIndexCache = new(uint64)
	}

	*ps.currentPruningPointIndexCache = index
	return index, nil
}

func (ps *pruningStore) HasPruningPoint(dbContext model.DBReader, stagingArea *model.StagingArea) (bool, error) {
	stagingShard := ps.stagingShard(stagingArea)

	if stagingShard.currentPruningPointIndex != nil {
		return true, nil
	}

	if ps.currentPruningPointIndexCache != nil {
		return true, nil
	}

	return dbContext.Has(ps.currentPruningPointIndexKey)
}

// PruningPointUTXOIterator returns an iterator over the full pruning point
// UTXO set
func (ps *pruningStore) PruningPointUTXOIterator(dbContext model.DBReader) (externalapi.ReadOnlyUTXOSetIterator, error) {
	cursor, err := dbContext.Cursor(ps.pruningPointUTXOSetBucket)
	if err != nil {
		return nil, err
	}
	return ps.newCursorUTXOSetIterator(cursor), nil
}

// PruningPointUTXOs returns up to `limit` UTXOs from the pruning point UTXO
// set, starting right after the given fromOutpoint. A nil fromOutpoint
// returns UTXOs from the beginning of the set
func (ps *pruningStore) PruningPointUTXOs(dbContext model.DBReader,
	fromOutpoint *externalapi.DomainOutpoint, limit int) ([]*externalapi.OutpointAndUTXOEntryPair, error) {

	cursor, err := dbContext.Cursor(ps.pruningPointUTXOSetBucket)
	if err != nil {
		return nil, err
	}
	defer cursor.Close()

	if fromOutpoint != nil {
		serializedFromOutpoint, err := utxo.SerializeOutpoint(fromOutpoint)
		if err != nil {
			return nil, err
		}
		seekKey := ps.pruningPointUTXOSetBucket.Key(serializedFromOutpoint)
		err = cursor.Seek(seekKey)
		if err != nil {
			return nil, err
		}
	}

	pruningPointUTXOIterator := ps.newCursorUTXOSetIterator(cursor)
	defer pruningPointUTXOIterator.Close()

	outpointAndUTXOEntryPairs := make([]*externalapi.OutpointAndUTXOEntryPair, 0, limit)
	for len(outpointAndUTXOEntryPairs) < limit && pruningPointUTXOIterator.Next() {
		outpoint, utxoEntry, err := pruningPointUTXOIterator.Get()
		if err != nil {
			return nil, err
		}
		outpointAndUTXOEntryPairs = append(outpointAndUTXOEntryPairs, &externalapi.OutpointAndUTXOEntryPair{
			Outpoint:  outpoint,
			UTXOEntry: utxoEntry,
		})
	}
	return outpointAndUTXOEntryPairs, nil
}

func (ps *pruningStore) indexAsKey(index uint64) model.DBKey {
	var keyBytes [8]byte
	binary.BigEndian.PutUint64(keyBytes[:], index)
	return ps.pruningPointByIndexBucket.Key(keyBytes[:])
}

// StagePreviousPruningPoint stages the pruning point the pruning point
// UTXO set currently reflects. It is the base the next UTXO set update
// applies its replayed diff on top of
func (ps *pruningStore) StagePreviousPruningPoint(stagingArea *model.StagingArea, previousPruningPoint *externalapi.DomainHash) {
	stagingShard := ps.stagingShard(stagingArea)

	stagingShard.previousPruningPoint = previousPruningPoint
}

// PreviousPruningPoint returns the pruning point the pruning point UTXO
// set was last updated for
func (ps *pruningStore) PreviousPruningPoint(dbContext model.DBReader, stagingArea *model.StagingArea) (*externalapi.DomainHash, error) {
	stagingShard := ps.stagingShard(stagingArea)

	if stagingShard.previousPruningPoint != nil {
		return stagingShard.previousPruningPoint, nil
	}

	if ps.previousPruningPointCache != nil {
		return ps.previousPruningPointCache, nil
	}

	previousPruningPointBytes, err := dbContext.Get(ps.previousPruningPointKey)
	if err != nil {
		return nil, err
	}

	previousPruningPoint, err := binaryserialization.DeserializeHash(previousPruningPointBytes)
	if err != nil {
		return nil, err
	}
	ps.previousPruningPointCache = previousPruningPoint
	return previousPruningPoint, nil
}

// StageStartUpdatingPruningPointUTXOSet stages the start of an update of
// the pruning point UTXO set. The staged flag is committed atomically with
// the pruning point move, so that an interrupted update is detected and
// redone on the next call to UpdatePruningPointUTXOSetIfRequired
func (ps *pruningStore) StageStartUpdatingPruningPointUTXOSet(stagingArea *model.StagingArea) {
	stagingShard := ps.stagingShard(stagingArea)

	stagingShard.startUpdatingPruningPointUTXOSet = true
}

// HadStartedUpdatingPruningPointUTXOSet returns whether a pruning point
// UTXO set update was started and not yet finished
func (ps *pruningStore) HadStartedUpdatingPruningPointUTXOSet(dbContext model.DBWriter) (bool, error) {
	return dbContext.Has(ps.updatingPruningPointUTXOSetKey)
}

// FinishUpdatingPruningPointUTXOSet marks the pruning point UTXO set
// update as finished
func (ps *pruningStore) FinishUpdatingPruningPointUTXOSet(dbContext model.DBWriter) error {
	return dbContext.Delete(ps.updatingPruningPointUTXOSetKey)
}
