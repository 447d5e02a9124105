package query

import (
	"container/list"
	"crypto/sha256"
	"fmt"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"

	"github.com/AshPopcorn/Group5-ASM2/internal/index"
)

// ResultCache is an in-process LRU cache of evaluated query results. Keys are
// canonical AST strings, so syntactic variants of the same expression share
// one slot. A singleflight group collapses concurrent evaluations of the same
// key into a single computation.
//
// Cached posting lists are shared without copying; callers must treat them as
// read-only, which they already must for posting lists served straight from
// an index.
type ResultCache struct {
	capacity int
	group    singleflight.Group
	hits     atomic.Int64
	misses   atomic.Int64

	mu      sync.Mutex
	order   *list.List
	entries map[string]*list.Element
}

type cacheEntry struct {
	key    string
	result index.PostingList
}

// NewResultCache creates a cache holding up to capacity results.
func NewResultCache(capacity int) *ResultCache {
	if capacity < 1 {
		capacity = 1
	}
	return &ResultCache{
		capacity: capacity,
		order:    list.New(),
		entries:  make(map[string]*list.Element),
	}
}

// GetOrCompute returns the cached result for key, or runs compute and caches
// its result. Concurrent callers with the same key block on one computation.
// Errors are not cached.
func (c *ResultCache) GetOrCompute(key string, compute func() (index.PostingList, error)) (index.PostingList, error) {
	key = cacheKey(key)
	if result, ok := c.get(key); ok {
		c.hits.Add(1)
		return result, nil
	}
	val, err, _ := c.group.Do(key, func() (any, error) {
		if result, ok := c.get(key); ok {
			return result, nil
		}
		c.misses.Add(1)
		result, err := compute()
		if err != nil {
			return nil, err
		}
		c.put(key, result)
		return result, nil
	})
	if err != nil {
		return nil, err
	}
	return val.(index.PostingList), nil
}

// Stats returns the cumulative hit and miss counts.
func (c *ResultCache) Stats() (hits, misses int64) {
	return c.hits.Load(), c.misses.Load()
}

// Len returns the number of cached results.
func (c *ResultCache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func (c *ResultCache) get(key string) (index.PostingList, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	elem, ok := c.entries[key]
	if !ok {
		return nil, false
	}
	c.order.MoveToFront(elem)
	return elem.Value.(*cacheEntry).result, true
}

func (c *ResultCache) put(key string, result index.PostingList) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if elem, ok := c.entries[key]; ok {
		c.order.MoveToFront(elem)
		elem.Value.(*cacheEntry).result = result
		return
	}
	c.entries[key] = c.order.PushFront(&cacheEntry{key: key, result: result})
	for len(c.entries) > c.capacity {
		oldest := c.order.Back()
		c.order.Remove(oldest)
		delete(c.entries, oldest.Value.(*cacheEntry).key)
	}
}

func cacheKey(canonical string) string {
	hash := sha256.Sum256([]byte(canonical))
	return fmt.Sprintf("%x", hash[:16])
}
