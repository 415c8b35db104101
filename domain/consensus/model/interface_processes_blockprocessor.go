package model

import "github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"

// BlockProcessor is responsible for processing incoming blocks
// and creating blocks from the current state
type BlockProcessor interface {
	ValidateAndInsertBlock(block *externalapi.DomainBlock, updateVirtual bool) (*externalapi.VirtualChangeSet, error)
}
