package consensusstatestore

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
	"github.com/cobaltnet/cobaltd/domain/consensus/utils/utxolrucache"
)

const shardName = "ConsensusStateStore"

// consensusStateStore represents a store for the current consensus state
type consensusStateStore struct {
	virtualUTXOSetCache *utxolrucache.LRUCache
	tipsCache           []*externalapi.DomainHash
	virtualDiffParentsCache []*externalapi.DomainHash

	tipsKey               model.DBKey
	virtualDiffParentsKey model.DBKey
	utxoSetBucket         model.DBBucket
}

// New instantiates a new ConsensusStateStore
func New(prefixBucket model.DBBucket, utxoSetCacheSize int) model.ConsensusStateStore {
	return &consensusStateStore{
		virtualUTXOSetCache:   utxolrucache.New(utxoSetCacheSize),
		tipsKey:               prefixBucket.Key(tipsKeyName),
		virtualDiffParentsKey: prefixBucket.Key(virtualDiffParentsKeyName),
		utxoSetBucket:         prefixBucket.Bucket(utxoSetBucketName),
	}
}

func (css *consensusStateStore) IsStaged(stagingArea *model.StagingArea) bool {
	return css.stagingShard(stagingArea).isStaged()
}
