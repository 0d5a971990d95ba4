// Package nav implements the tree-navigation façade described in
// spec.md §4.7: an accessible-like surface over a CacheItem that never
// owns the cache it navigates. Parent/child/application lookups
// resolve through the item's weak back-reference; everything else
// that isn't mirrored in the cache round-trips live to the bus.
package nav

import (
	"context"
	"errors"

	"github.com/openscreenreader/atspicache/internal/busclient"
	"github.com/openscreenreader/atspicache/internal/cacheitem"
	"github.com/openscreenreader/atspicache/internal/primitive"
)

// ErrNoItem is returned when a resolved identity isn't present in the
// cache (spec.md §4.7).
var ErrNoItem = errors.New("nav: item not in cache")

// ErrCacheUnavailable mirrors cacheitem.ErrNotAvailable under the name
// spec.md uses for this façade's own contract.
var ErrCacheUnavailable = cacheitem.ErrNotAvailable

// Relation is a resolved relation: each target identity has been
// looked up in the cache already.
type Relation struct {
	Type    string
	Targets []cacheitem.Item
}

// Facade wraps a cached item snapshot with navigation operations.
type Facade struct {
	item cacheitem.Item
	conn busclient.Connection
}

// New builds a façade over item, round-tripping to the bus through
// conn for the operations the cache doesn't mirror.
func New(item cacheitem.Item, conn busclient.Connection) *Facade {
	return &Facade{item: item, conn: conn}
}

// AccessibleID returns the identity this façade wraps.
func (f *Facade) AccessibleID() primitive.Primitive { return f.item.Object }

// ChildCount returns the cached child count; never fails.
func (f *Facade) ChildCount() int { return f.item.ChildrenNum }

// GetIndexInParent returns the cached sibling index; never fails.
func (f *Facade) GetIndexInParent() int { return f.item.Index }

// GetRole returns the cached role; never fails.
func (f *Facade) GetRole() cacheitem.Role { return f.item.Role }

// GetInterfaces returns the cached interface set; never fails.
func (f *Facade) GetInterfaces() cacheitem.InterfaceSet { return f.item.Interfaces }

// GetState returns the cached state set; never fails.
func (f *Facade) GetState() cacheitem.StateSet { return f.item.States }

// GetApplication resolves the owning application through the cache.
func (f *Facade) GetApplication(ctx context.Context) (cacheitem.Item, error) {
	return f.resolve(f.item.App)
}

// Parent resolves the parent through the cache.
func (f *Facade) Parent(ctx context.Context) (cacheitem.Item, error) {
	return f.resolve(f.item.Parent)
}

// GetChildren resolves every child through the cache, in order.
func (f *Facade) GetChildren(ctx context.Context) ([]cacheitem.Item, error) {
	owner, err := f.upgrade()
	if err != nil {
		return nil, err
	}
	results := owner.GetAll(f.item.Children)
	out := make([]cacheitem.Item, len(results))
	for i, r := range results {
		if !r.Found {
			return nil, ErrNoItem
		}
		out[i] = r.Item
	}
	return out, nil
}

// GetChildAtIndex resolves a single child by position.
func (f *Facade) GetChildAtIndex(ctx context.Context, i int) (cacheitem.Item, error) {
	if i < 0 || i >= len(f.item.Children) {
		return cacheitem.Item{}, ErrNoItem
	}
	return f.resolve(f.item.Children[i])
}

func (f *Facade) resolve(id primitive.Primitive) (cacheitem.Item, error) {
	owner, err := f.upgrade()
	if err != nil {
		return cacheitem.Item{}, err
	}
	item, ok := owner.Get(id)
	if !ok {
		return cacheitem.Item{}, ErrNoItem
	}
	return item, nil
}

func (f *Facade) upgrade() (cacheitem.Owner, error) {
	return f.item.Cache.Upgrade()
}

// proxy builds a fresh, uncached proxy for this façade's own identity
// (spec.md §4.1's reverse conversion, property caching disabled).
func (f *Facade) proxy(ctx context.Context) (busclient.Proxy, error) {
	return f.conn.BuildProxy(ctx, f.item.Object.Sender, f.item.Object.ID, false)
}

// Name round-trips to the bus; not mirrored in the cache.
func (f *Facade) Name(ctx context.Context) (string, error) {
	p, err := f.proxy(ctx)
	if err != nil {
		return "", err
	}
	return p.Name(ctx)
}

// Locale round-trips to the bus; not mirrored in the cache.
func (f *Facade) Locale(ctx context.Context) (string, error) {
	p, err := f.proxy(ctx)
	if err != nil {
		return "", err
	}
	return p.Locale(ctx)
}

// Description round-trips to the bus; not mirrored in the cache.
func (f *Facade) Description(ctx context.Context) (string, error) {
	p, err := f.proxy(ctx)
	if err != nil {
		return "", err
	}
	return p.Description(ctx)
}

// GetAttributes round-trips to the bus; not mirrored in the cache.
func (f *Facade) GetAttributes(ctx context.Context) (map[string]string, error) {
	p, err := f.proxy(ctx)
	if err != nil {
		return nil, err
	}
	return p.GetAttributes(ctx)
}

// GetRoleName round-trips to the bus; not mirrored in the cache.
func (f *Facade) GetRoleName(ctx context.Context) (string, error) {
	p, err := f.proxy(ctx)
	if err != nil {
		return "", err
	}
	return p.GetRoleName(ctx)
}

// GetLocalizedRoleName round-trips to the bus; not mirrored in the
// cache.
func (f *Facade) GetLocalizedRoleName(ctx context.Context) (string, error) {
	p, err := f.proxy(ctx)
	if err != nil {
		return "", err
	}
	return p.GetLocalizedRoleName(ctx)
}

// GetRelationSet round-trips for the raw relation list, then resolves
// every referenced identity through the cache synchronously, failing
// the whole call on the first unknown reference (spec.md §4.7).
func (f *Facade) GetRelationSet(ctx context.Context) ([]Relation, error) {
	p, err := f.proxy(ctx)
	if err != nil {
		return nil, err
	}
	raw, err := p.GetRelationSet(ctx)
	if err != nil {
		return nil, err
	}

	owner, err := f.upgrade()
	if err != nil {
		return nil, err
	}

	out := make([]Relation, len(raw))
	for i, rel := range raw {
		targets := make([]cacheitem.Item, len(rel.Targets))
		for j, t := range rel.Targets {
			item, ok := owner.Get(t)
			if !ok {
				return nil, ErrNoItem
			}
			targets[j] = item
		}
		out[i] = Relation{Type: rel.Type, Targets: targets}
	}
	return out, nil
}
