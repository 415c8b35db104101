package lrucache

import (
	"sync"

	"github.com/cobaltnet/cobaltd/domain/consensus/model/externalapi"
)

// LRUCache is a least-recently-used cache for any type
// that's able to be indexed by DomainHash.
//
// LRUCache is safe for concurrent use. Stores serve reads from multiple
// goroutines during parallel transaction validation, and a read that misses
// the cache fills it.
type LRUCache struct {
	mutex    sync.Mutex
	cache    map[externalapi.DomainHash]interface{}
	capacity int
}

// New creates a new LRUCache
func New(capacity int) *LRUCache {
	return &LRUCache{
		cache:    make(map[externalapi.DomainHash]interface{}, capacity+1),
		capacity: capacity,
	}
}

// Add adds an entry to the LRUCache
func (c *LRUCache) Add(key *externalapi.DomainHash, value interface{}) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.cache[*key] = value

	if len(c.cache) > c.capacity {
		c.evictRandom()
	}
}

// Get returns the entry for the given key, or (nil, false) otherwise
func (c *LRUCache) Get(key *externalapi.DomainHash) (interface{}, bool) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	value, ok := c.cache[*key]
	if !ok {
		return nil, false
	}
	return value, true
}

// Has returns whether the LRUCache contains the given key
func (c *LRUCache) Has(key *externalapi.DomainHash) bool {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	_, ok := c.cache[*key]
	return ok
}

// Remove removes the entry for the the given key. Does nothing if
// the entry does not exist
func (c *LRUCache) Remove(key *externalapi.DomainHash) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	delete(c.cache, *key)
}

// Clear clears the cache
func (c *LRUCache) Clear() {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	for key := range c.cache {
		delete(c.cache, key)
	}
}

// evictRandom must be called with the mutex held.
func (c *LRUCache) evictRandom() {
	var keyToEvict externalapi.DomainHash
	for key := range c.cache {
		keyToEvict = key
		break
	}
	delete(c.cache, keyToEvict)
}
