// Package hydrator builds a CacheItem from a live accessible proxy by
// fanning out the bus calls needed to fill it in parallel, per
// spec.md §4.3. Serial calls would cost tens of milliseconds per
// hydration; errgroup keeps one hydration bounded by a single round
// trip, the same concurrency primitive the teacher uses to start
// downstream processes and to run its dual HTTP+socket listeners.
package hydrator

import (
	"context"

	"golang.org/x/sync/errgroup"

	"github.com/openscreenreader/atspicache/internal/busclient"
	"github.com/openscreenreader/atspicache/internal/cacheitem"
	"github.com/openscreenreader/atspicache/internal/primitive"
)

// Hydrate assembles a CacheItem from proxy, attaching ref as the
// item's weak back-reference. The eight attribute calls and the
// text-facet read run concurrently; a failure in any of the eight
// aborts the hydration (the text facet alone tolerates the "object
// isn't a Text" case by falling back to its name, per spec.md §4.3).
func Hydrate(ctx context.Context, proxy busclient.Proxy, ref cacheitem.WeakRef) (cacheitem.Item, error) {
	object, err := primitive.FromProxy(proxy)
	if err != nil {
		return cacheitem.Item{}, err
	}

	var (
		app, parent               primitive.Primitive
		index, childCount         int
		interfaces                cacheitem.InterfaceSet
		role                      cacheitem.Role
		states                    cacheitem.StateSet
		children                  []primitive.Primitive
		text                      string
	)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) { app, err = proxy.GetApplication(gctx); return })
	g.Go(func() (err error) { parent, err = proxy.Parent(gctx); return })
	g.Go(func() (err error) { index, err = proxy.GetIndexInParent(gctx); return })
	g.Go(func() (err error) { childCount, err = proxy.ChildCount(gctx); return })
	g.Go(func() (err error) { interfaces, err = proxy.GetInterfaces(gctx); return })
	g.Go(func() (err error) { role, err = proxy.GetRole(gctx); return })
	g.Go(func() (err error) { states, err = proxy.GetState(gctx); return })
	g.Go(func() (err error) { children, err = proxy.GetChildren(gctx); return })
	g.Go(func() error {
		t, err := textFacet(gctx, proxy)
		if err != nil {
			return err
		}
		text = t
		return nil
	})

	if err := g.Wait(); err != nil {
		return cacheitem.Item{}, err
	}

	if childCount < 0 {
		childCount = 0
	}

	return cacheitem.Item{
		Object:      object,
		App:         app,
		Parent:      parent,
		Index:       index,
		ChildrenNum: childCount,
		Interfaces:  interfaces,
		Role:        role,
		States:      states,
		Text:        text,
		Children:    children,
		Cache:       ref,
	}, nil
}

// textFacet reads the object's text-interface content if it exposes
// one, otherwise falls back to its name (spec.md §4.3).
func textFacet(ctx context.Context, proxy busclient.Proxy) (string, error) {
	if textProxy, ok := proxy.ToText(ctx); ok {
		return textProxy.GetAllText(ctx)
	}
	return proxy.Name(ctx)
}
