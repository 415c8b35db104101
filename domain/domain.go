package domain

import (
	"github.com/cobaltnet/cobaltd/domain/consensus"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/prefixmanager"
	"github.com/cobaltnet/cobaltd/domain/prefixmanager/prefix"
	infrastructuredatabase "github.com/cobaltnet/cobaltd/infrastructure/db/database"
)

// Domain owns the consensus instance and the database prefix it lives under.
type Domain interface {
	Consensus() externalapi.Consensus
	Shutdown()
}

type domain struct {
	consensus externalapi.Consensus
	db        infrastructuredatabase.Database
}

func (d *domain) Consensus() externalapi.Consensus {
	return d.consensus
}

// Shutdown stops the consensus. The database itself is owned by the caller
// and stays open.
func (d *domain) Shutdown() {
	d.consensus.Shutdown()
}

// New resolves the active database prefix (initializing it on first run),
// deletes any data a previous run left under the inactive prefix, and builds
// and initializes a consensus under the active prefix.
func New(consensusConfig *consensus.Config, db infrastructuredatabase.Database,
	virtualChangeCallback externalapi.VirtualChangeCallback) (Domain, error) {

	err := prefixmanager.DeleteInactivePrefix(db)
	if err != nil {
		return nil, err
	}

	activePrefix, exists, err := prefixmanager.ActivePrefix(db)
	if err != nil {
		return nil, err
	}

	if !exists {
		activePrefix = &prefix.Prefix{}
		err = prefixmanager.SetPrefixAsActive(db, activePrefix)
		if err != nil {
			return nil, err
		}
	}

	consensusFactory := consensus.NewFactory()
	consensusInstance, err := consensusFactory.NewConsensus(consensusConfig, db, activePrefix, virtualChangeCallback)
	if err != nil {
		return nil, err
	}

	err = consensusInstance.Init()
	if err != nil {
		return nil, err
	}

	return &domain{
		consensus: consensusInstance,
		db:        db,
	}, nil
}
