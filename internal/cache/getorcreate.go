package cache

import (
	"context"

	"golang.org/x/sync/singleflight"

	"github.com/openscreenreader/atspicache/internal/busclient"
	"github.com/openscreenreader/atspicache/internal/cacheitem"
	"github.com/openscreenreader/atspicache/internal/hydrator"
	"github.com/openscreenreader/atspicache/internal/primitive"
)

// group is a thin rename of singleflight.Group kept in its own file
// so Cache's zero-value story (New always sets it) stays obvious at
// the call site.
type group = singleflight.Group

func newGroup() *group { return new(group) }

// GetOrCreate returns a copy of the cached item for the identity
// extracted from proxy. If absent, it hydrates one via the hydrator
// package and inserts a copy before returning (spec.md §4.2
// get_or_create).
//
// Concurrent misses on the same identity share one hydration:
// singleflight.Group.Do runs hydrator.Hydrate with no cache lock held
// at all, which is what resolves spec.md §9's "get_or_create deadlock
// surface" Open Question — the original takes a read guard via Get
// and only releases it before the blocking hydration by construction
// of separate calls; here there is no guard to forget to release,
// because the fan-out key (the identity) is never looked up under a
// structural lock in the first place.
func (c *Cache) GetOrCreate(ctx context.Context, proxy busclient.Proxy) (cacheitem.Item, error) {
	id, err := primitive.FromProxy(proxy)
	if err != nil {
		return cacheitem.Item{}, err
	}

	if item, ok := c.Get(id); ok {
		return item, nil
	}

	v, err, _ := c.hydrate.Do(id.String(), func() (any, error) {
		// Re-check: another goroutine may have finished hydrating and
		// inserted while we were queued behind the singleflight call.
		if item, ok := c.Get(id); ok {
			return item, nil
		}
		item, err := hydrator.Hydrate(ctx, proxy, c.Ref())
		if err != nil {
			return cacheitem.Item{}, err
		}
		c.Add(item.Clone())
		return item, nil
	})
	if err != nil {
		return cacheitem.Item{}, err
	}
	return v.(cacheitem.Item), nil
}
