package face

import (
	"container/list"
	"context"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"
)

// CacheStats reports cache effectiveness for observability endpoints.
// Misses counts loads from the store, so concurrent misses that collapse
// into one read count once.
type CacheStats struct {
	Hits   uint64 `json:"hits"`
	Misses uint64 `json:"misses"`
	Size   int    `json:"size"`
}

// EncodingCache is a process-wide, invalidation-coherent cache of per-owner
// encoding pools. It is never authoritative: losing it costs a store reload,
// never correctness. Concurrent misses for the same owner collapse to a
// single store read.
type EncodingCache struct {
	store     EncodingStore
	maxOwners int // 0 = unbounded

	mu      sync.Mutex
	entries map[string]*cacheEntry
	lru     *list.List        // front = most recently used owner
	gens    map[string]uint64 // bumped on every invalidation

	group  singleflight.Group
	hits   atomic.Uint64
	misses atomic.Uint64
}

type cacheEntry struct {
	ownerID     string
	pool        []FaceVector
	refreshedAt time.Time
	elem        *list.Element
}

// NewEncodingCache creates a cache backed by store. maxOwners bounds the
// number of cached owner entries (least recently used owners are dropped);
// 0 means unbounded.
func NewEncodingCache(store EncodingStore, maxOwners int) *EncodingCache {
	return &EncodingCache{
		store:     store,
		maxOwners: maxOwners,
		entries:   make(map[string]*cacheEntry),
		lru:       list.New(),
		gens:      make(map[string]uint64),
	}
}

// Get returns the owner's encoding pool, loading it from the store on a miss.
// The returned slice is shared and must be treated as read-only.
func (c *EncodingCache) Get(ctx context.Context, ownerID string) ([]FaceVector, error) {
	c.mu.Lock()
	if e, ok := c.entries[ownerID]; ok {
		c.lru.MoveToFront(e.elem)
		c.mu.Unlock()
		c.hits.Add(1)
		return e.pool, nil
	}
	gen := c.gens[ownerID]
	c.mu.Unlock()

	v, err, _ := c.group.Do(ownerID, func() (any, error) {
		// Counted here so collapsed concurrent misses register as one:
		// Misses tracks actual store loads, not callers that waited.
		c.misses.Add(1)
		pool, err := c.store.GetAll(ctx, ownerID)
		if err != nil {
			return nil, err
		}
		SortVectors(pool)
		c.insert(ownerID, gen, pool)
		return pool, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]FaceVector), nil
}

// insert stores a freshly loaded pool unless the owner was invalidated while
// the load was in flight. A stale load must never shadow a committed write.
func (c *EncodingCache) insert(ownerID string, gen uint64, pool []FaceVector) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.gens[ownerID] != gen {
		return
	}
	if e, ok := c.entries[ownerID]; ok {
		e.pool = pool
		e.refreshedAt = time.Now()
		c.lru.MoveToFront(e.elem)
		return
	}

	e := &cacheEntry{ownerID: ownerID, pool: pool, refreshedAt: time.Now()}
	e.elem = c.lru.PushFront(e)
	c.entries[ownerID] = e

	if c.maxOwners > 0 && c.lru.Len() > c.maxOwners {
		if back := c.lru.Back(); back != nil {
			evicted := back.Value.(*cacheEntry)
			c.lru.Remove(back)
			delete(c.entries, evicted.ownerID)
		}
	}
}

// Invalidate drops the owner's cached pool. It is synchronous and purely
// in-memory, so mutation paths can always complete it, even when their
// context is already cancelled. The next Get reloads from the store.
func (c *EncodingCache) Invalidate(ownerID string) {
	c.mu.Lock()
	c.gens[ownerID]++
	if e, ok := c.entries[ownerID]; ok {
		c.lru.Remove(e.elem)
		delete(c.entries, ownerID)
	}
	c.mu.Unlock()

	// Drop any in-flight load so late joiners trigger a fresh read.
	c.group.Forget(ownerID)
}

// Stats returns hit/miss counters and the number of cached owner entries.
func (c *EncodingCache) Stats() CacheStats {
	c.mu.Lock()
	size := len(c.entries)
	c.mu.Unlock()

	return CacheStats{
		Hits:   c.hits.Load(),
		Misses: c.misses.Load(),
		Size:   size,
	}
}
