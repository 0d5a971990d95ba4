// Package childrenchanged applies ChildrenChanged bus events to the
// cache, per spec.md §4.6: "add" warms the cache for the new child
// (the resulting item itself is discarded — the point is the side
// effect of caching it), "remove" evicts it. Any other kind is logged
// and otherwise ignored.
package childrenchanged

import (
	"context"
	"log/slog"

	"github.com/openscreenreader/atspicache/internal/busclient"
	"github.com/openscreenreader/atspicache/internal/cacheitem"
	"github.com/openscreenreader/atspicache/internal/primitive"
)

// Cache is the subset of *cache.Cache this package needs. Defined
// locally, the same way cacheitem.Owner is, so this package never
// imports the cache package directly — it only needs to be handed one.
type Cache interface {
	GetOrCreate(ctx context.Context, proxy busclient.Proxy) (cacheitem.Item, error)
	Remove(id primitive.Primitive)
}

const (
	KindAdd    = "add"
	KindRemove = "remove"
)

// Apply dispatches a ChildrenChanged event of the given kind for the
// child identified by proxy (used only for "add", to hydrate) and id
// (used only for "remove", since a vanished child no longer has a live
// proxy to query).
func Apply(ctx context.Context, c Cache, kind string, proxy busclient.Proxy, id primitive.Primitive) error {
	switch kind {
	case KindAdd:
		_, err := c.GetOrCreate(ctx, proxy)
		return err
	case KindRemove:
		c.Remove(id)
		return nil
	default:
		slog.Debug("children_changed: unknown kind", "kind", kind)
		return nil
	}
}
