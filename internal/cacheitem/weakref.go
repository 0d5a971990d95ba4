package cacheitem

import (
	"errors"
	"sync/atomic"
)

// ErrNotAvailable is returned when a weak reference is dereferenced
// after its owning cache has been torn down, or when it was never
// attached in the first place (e.g. right after deserialization).
// Per spec.md I4, this is the defined outcome — never undefined
// behavior, never a panic.
var ErrNotAvailable = errors.New("cacheitem: cache is not available")

// Owner is the subset of Cache operations the tree-navigation façade
// needs to resolve parent/children/application lookups. It is defined
// here, rather than imported from the cache package, so that
// CacheItem (and its WeakRef) never import the cache package — the
// exact cycle a strong back-pointer would otherwise force, per
// spec.md §9's design note.
type Owner interface {
	Get(id Primitive) (Item, bool)
	GetAll(ids []Primitive) []ItemOrMiss
	ModifyItem(id Primitive, fn func(*Item)) bool
}

// ItemOrMiss is one slot of a GetAll result: either a hit with Found
// true, or a miss.
type ItemOrMiss struct {
	Item  Item
	Found bool
}

// WeakRef is a relation from a CacheItem back to its owning cache that
// resolves to a defined error once the cache has been shut down. It
// holds a plain pointer, so it does keep the Cache value reachable for
// the garbage collector. Unlike Go's GC-reachability-based `weak` package,
// this is explicit-teardown based: the owner is a plain pointer (via
// the Owner interface) and liveness is tracked by a shared flag the
// owner flips exactly once, on Shutdown. See DESIGN.md for why a
// GC-based weak pointer would not match spec.md's "torn down last,
// resolves cleanly" teardown sequencing.
type WeakRef struct {
	owner  Owner
	closed *atomic.Bool
}

// NewWeakRef builds a WeakRef pointing at owner, live as long as
// closed reads false. The cache that creates these should pass the
// same *atomic.Bool it flips in its own Shutdown.
func NewWeakRef(owner Owner, closed *atomic.Bool) WeakRef {
	return WeakRef{owner: owner, closed: closed}
}

// Upgrade attempts to resolve the weak reference. It fails with
// ErrNotAvailable if the reference was never attached (owner is nil —
// the state a freshly deserialized CacheItem is left in) or if the
// owning cache has since been shut down.
func (w WeakRef) Upgrade() (Owner, error) {
	if w.owner == nil || w.closed == nil {
		return nil, ErrNotAvailable
	}
	if w.closed.Load() {
		return nil, ErrNotAvailable
	}
	return w.owner, nil
}
