// Package cache implements the concurrent, keyed accessibility-tree
// cache described in spec.md §4.2 and §5: many readers, atomic
// modify-in-place by event handlers, and lazy insertion. Modifying an
// item holds only that item's latch; inserts, removes and lookups take
// a map-wide lock for the duration of the map access, so an insert
// briefly blocks lookups of other keys.
package cache

import (
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/openscreenreader/atspicache/internal/cacheitem"
	"github.com/openscreenreader/atspicache/internal/primitive"
)

type entry struct {
	mu   sync.Mutex
	item cacheitem.Item
}

// Cache is the shared, process-wide accessibility-tree mirror. The
// zero value is not usable; construct with New.
//
// Structural operations (Add, Remove, and friends) hold mu only long
// enough to touch the top-level map. Mutation of an individual item
// goes through that item's own entry.mu, acquired and released inside
// ModifyItem — never across a suspension point, and never while mu is
// held — so unrelated keys never contend with each other (spec.md §5).
type Cache struct {
	mu      sync.RWMutex
	byID    map[primitive.Primitive]*entry
	closed  atomic.Bool
	hydrate *group
}

// New creates an empty cache.
func New() *Cache {
	return &Cache{
		byID:    make(map[primitive.Primitive]*entry),
		hydrate: newGroup(),
	}
}

// Ref issues a weak back-reference to this cache, for embedding in a
// CacheItem (spec.md §3's `cache` field, I4).
func (c *Cache) Ref() cacheitem.WeakRef {
	return cacheitem.NewWeakRef(c, &c.closed)
}

// Shutdown flips the cache's closed flag so that any weak reference
// still outstanding resolves to cacheitem.ErrNotAvailable from here on
// (spec.md §5 Cancellation: "the cache itself is torn down last"). It
// does not clear the underlying map; callers that want the memory
// back should drop their last strong reference to the Cache after
// calling Shutdown.
func (c *Cache) Shutdown() {
	c.closed.Store(true)
}

// Add inserts item, overwriting any previous entry for item.Object
// (spec.md §4.2 add).
func (c *Cache) Add(item cacheitem.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.addLocked(item)
}

func (c *Cache) addLocked(item cacheitem.Item) {
	c.byID[item.Object] = &entry{item: item}
}

// AddAll inserts every item in items, per-item semantics of Add; there
// is no atomicity across the batch (spec.md §4.2 add_all).
func (c *Cache) AddAll(items []cacheitem.Item) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, item := range items {
		c.addLocked(item)
	}
}

// Remove deletes the entry for id if present; a no-op otherwise
// (spec.md §4.2 remove).
func (c *Cache) Remove(id primitive.Primitive) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.byID, id)
}

// RemoveAll deletes every id in ids, per-item semantics of Remove
// (spec.md §4.2 remove_all).
func (c *Cache) RemoveAll(ids []primitive.Primitive) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, id := range ids {
		delete(c.byID, id)
	}
}

// Get returns a detached copy of the item stored under id. Readers
// never hold a handle that could block a writer (spec.md §4.2 get).
func (c *Cache) Get(id primitive.Primitive) (cacheitem.Item, bool) {
	e := c.lookup(id)
	if e == nil {
		return cacheitem.Item{}, false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.item.Clone(), true
}

func (c *Cache) lookup(id primitive.Primitive) *entry {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.byID[id]
}

// GetAll returns a parallel sequence of optional copies for ids
// (spec.md §4.2 get_all).
func (c *Cache) GetAll(ids []primitive.Primitive) []cacheitem.ItemOrMiss {
	out := make([]cacheitem.ItemOrMiss, len(ids))
	for i, id := range ids {
		item, ok := c.Get(id)
		out[i] = cacheitem.ItemOrMiss{Item: item, Found: ok}
	}
	return out
}

// ModifyItem acquires exclusive access to the entry for id, invokes f
// on the live item, then releases. It returns whether the entry
// existed; an absent entry is not an error (spec.md §4.2 modify_item).
//
// f must be synchronous and must not perform I/O: the entry's latch is
// held for f's entire duration, and spec.md §5 forbids suspending
// while holding it.
func (c *Cache) ModifyItem(id primitive.Primitive, f func(*cacheitem.Item)) bool {
	e := c.lookup(id)
	if e == nil {
		slog.Debug("modify_item: no such entry", "id", id.String())
		return false
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	f(&e.item)
	return true
}

// Snapshot returns a detached copy of every item currently cached. It
// exists for the diagnostics dump (SPEC_FULL.md §4.12); it is not part
// of spec.md's own contract and is deliberately O(n) with a full
// read-then-clone pass, never called from a hot path.
func (c *Cache) Snapshot() []cacheitem.Item {
	c.mu.RLock()
	entries := make([]*entry, 0, len(c.byID))
	for _, e := range c.byID {
		entries = append(entries, e)
	}
	c.mu.RUnlock()

	out := make([]cacheitem.Item, len(entries))
	for i, e := range entries {
		e.mu.Lock()
		out[i] = e.item.Clone()
		e.mu.Unlock()
	}
	return out
}

// Len reports the number of cached items.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.byID)
}
