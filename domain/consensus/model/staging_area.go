package model

import (
	"sync"

	"github.com/pkg/errors"
)

// StagingShard is an interface that enables every store to have its own
// Commit logic. See StagingArea for more details.
type StagingShard interface {
	Commit(dbTx DBTransaction) error
}

// StagingArea is a single changeset inside the consensus database, similar to a transaction in a
// classic database. Each store configured with the StagingArea is responsible for providing it with
// a StagingShard, to which all of that store's changes are staged, and which knows how to commit
// them to the database once the StagingArea as a whole is committed.
//
// To enable maximum flexibility, a StagingArea is not attached to a database transaction - a new
// transaction is opened once Commit is called, so that the StagingArea can be discarded wholesale
// if its changes turn out to be unwanted.
//
// A StagingArea cannot be reused after it was committed.
type StagingArea struct {
	shards      map[string]StagingShard
	shardsMutex sync.Mutex
	isCommitted bool
}

// NewStagingArea creates a new StagingArea
func NewStagingArea() *StagingArea {
	return &StagingArea{
		shards:      make(map[string]StagingShard),
		isCommitted: false,
	}
}

// GetOrCreateShard attempts to retrieve the shard with the given name.
// If it does not exist - a new shard is created using `createFunc`.
//
// GetOrCreateShard is safe for concurrent use. Transaction validation reads
// through the staging area from multiple goroutines, and any read may lazily
// create the store's shard. The shards themselves are only ever written to
// from a single goroutine.
func (sa *StagingArea) GetOrCreateShard(shardName string, createFunc func() StagingShard) StagingShard {
	sa.shardsMutex.Lock()
	defer sa.shardsMutex.Unlock()

	if _, ok := sa.shards[shardName]; !ok {
		sa.shards[shardName] = createFunc()
	}

	return sa.shards[shardName]
}

// Commit goes over all the shards in the StagingArea and commits them, inside the
// provided database transaction.
// Note: the StagingArea cannot be used after it was committed.
func (sa *StagingArea) Commit(dbTx DBTransaction) error {
	if sa.isCommitted {
		return errors.New("Attempt to call Commit on an already committed stagingArea")
	}

	for _, shard := range sa.shards {
		err := shard.Commit(dbTx)
		if err != nil {
			return err
		}
	}

	sa.isCommitted = true
	return nil
}
