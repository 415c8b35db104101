package model

import "github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"

// BlockIterator is an iterator over blocks according to some order of the DAG
type BlockIterator interface {
	First() bool
	Next() bool
	Get() (*externalapi.DomainHash, error)
	Close() error
}
