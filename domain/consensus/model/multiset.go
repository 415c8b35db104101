package model

import "github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"

// Multiset represents a multiset
type Multiset interface {
	Add(data []byte)
	Remove(data []byte)
	Hash() *externalapi.DomainHash
	Serialize() []byte
	Clone() Multiset
}
