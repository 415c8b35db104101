package lrucachewindowheapslice

import (
	"github.com/cobaltnet/cobaltd/domain/consensus/model"
	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

type lruKey struct {
	blockHash  externalapi.DomainHash
	windowSize int
}

func newKey(blockHash *externalapi.DomainHash, windowSize int) lruKey {
	return lruKey{
		blockHash:  *blockHash,
		windowSize: windowSize,
	}
}

// LRUCache is a least-recently-used cache for window heap slices
// indexed by DomainHash and window size
type LRUCache struct {
	cache    map[lruKey][]*model.BlockGHOSTDAGDataHashPair
	capacity int
}

// New creates a new LRUCache
func New(capacity int) *LRUCache {
	return &LRUCache{
		cache:    make(map[lruKey][]*model.BlockGHOSTDAGDataHashPair, capacity+1),
		capacity: capacity,
	}
}

// Add adds an entry to the LRUCache
func (c *LRUCache) Add(blockHash *externalapi.DomainHash, windowSize int, value []*model.BlockGHOSTDAGDataHashPair) {
	c.cache[newKey(blockHash, windowSize)] = value

	if len(c.cache) > c.capacity {
		c.evictRandom()
	}
}

// Get returns the entry for the given key, or (nil, false) otherwise
func (c *LRUCache) Get(blockHash *externalapi.DomainHash, windowSize int) ([]*model.BlockGHOSTDAGDataHashPair, bool) {
	value, ok := c.cache[newKey(blockHash, windowSize)]
	if !ok {
		return nil, false
	}
	return value, true
}

// Has returns whether the LRUCache contains the given key
func (c *LRUCache) Has(blockHash *externalapi.DomainHash, windowSize int) bool {
	_, ok := c.cache[newKey(blockHash, windowSize)]
	return ok
}

// Remove removes the entry for the given key. Does nothing if
// the entry does not exist
func (c *LRUCache) Remove(blockHash *externalapi.DomainHash, windowSize int) {
	delete(c.cache, newKey(blockHash, windowSize))
}

func (c *LRUCache) evictRandom() {
	var keyToEvict lruKey
	for key := range c.cache {
		keyToEvict = key
		break
	}
	delete(c.cache, keyToEvict)
}
