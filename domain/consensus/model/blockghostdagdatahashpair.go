package model

import "github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"

// BlockGHOSTDAGDataHashPair is a pair of a block hash and its GHOSTDAG data
type BlockGHOSTDAGDataHashPair struct {
	Hash         *externalapi.DomainHash
	GHOSTDAGData *BlockGHOSTDAGData
}
