package pruningprocessor

import (
	"sync"

	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/util/panics"
)

type request int

const (
	requestCheckPruningPointUTXOSet request = iota
	requestShutdown
)

// PruningProcessor takes pruning point UTXO set updates off the block
// insertion path. Pruning point moves are staged and committed together
// with the block that triggered them, but materializing the new pruning
// point UTXO set and deleting the data of pruned blocks is expensive, so
// it runs on a dedicated goroutine that is nudged after every virtual
// change.
type PruningProcessor struct {
	lock            *sync.RWMutex
	databaseContext model.DBManager
	pruningStore    model.PruningStore
	pruningManager  model.PruningManager

	// requests has a capacity of one: a pending check already covers any
	// number of virtual changes, since the worker rereads the pruning
	// store when it wakes up.
	requests     chan request
	shutdownDone chan struct{}
}

// New instantiates a new PruningProcessor. The processor is inert until
// Start is called.
func New(
	lock *sync.RWMutex,
	databaseContext model.DBManager,
	pruningStore model.PruningStore,
	pruningManager model.PruningManager) *PruningProcessor {

	return &PruningProcessor{
		lock:            lock,
		databaseContext: databaseContext,
		pruningStore:    pruningStore,
		pruningManager:  pruningManager,

		requests:     make(chan request, 1),
		shutdownDone: make(chan struct{}),
	}
}

// Start spawns the worker goroutine.
func (pp *PruningProcessor) Start() {
	spawn := panics.GoroutineWrapperFunc(log)
	spawn(pp.processLoop)
}

// NotifyVirtualChange wakes the worker up so that it checks whether the
// pruning point moved. It never blocks: if a check is already pending the
// notification is redundant and gets dropped.
func (pp *PruningProcessor) NotifyVirtualChange() {
	select {
	case pp.requests <- requestCheckPruningPointUTXOSet:
	default:
	}
}

// Shutdown sends the worker a shutdown request and waits for any update
// that is currently in flight to finish.
func (pp *PruningProcessor) Shutdown() {
	pp.requests <- requestShutdown
	<-pp.shutdownDone
}

func (pp *PruningProcessor) processLoop() {
	for {
		receivedRequest := <-pp.requests
		if receivedRequest == requestShutdown {
			close(pp.shutdownDone)
			return
		}
		pp.checkAndUpdatePruningPointUTXOSet()
	}
}

func (pp *PruningProcessor) checkAndUpdatePruningPointUTXOSet() {
	// The decision is made under the read lock, since most virtual
	// changes don't move the pruning point and queries should not stall
	// behind the check.
	pp.lock.RLock()
	hadStartedUpdatingPruningPointUTXOSet, err := pp.pruningStore.HadStartedUpdatingPruningPointUTXOSet(pp.databaseContext)
	pp.lock.RUnlock()
	if err != nil {
		panic(err)
	}

	if !hadStartedUpdatingPruningPointUTXOSet {
		return
	}

	pp.lock.Lock()
	defer pp.lock.Unlock()

	// UpdatePruningPointUTXOSetIfRequired rereads the pruning store, so a
	// move that was already materialized between the two lock
	// acquisitions is not applied twice. An error here means the stored
	// state can no longer be trusted, so crash rather than continue.
	err = pp.pruningManager.UpdatePruningPointUTXOSetIfRequired()
	if err != nil {
		panic(err)
	}
}
