// Package busclient declares the interfaces the core depends on to
// talk to the accessibility bus. Per spec.md §1 and §6, the bus
// transport and proxy-object library are external collaborators: this
// package only specifies the shape the core needs, and carries no
// production D-Bus implementation. Tests implement these interfaces
// with in-memory fakes.
package busclient

import (
	"context"

	"github.com/openscreenreader/atspicache/internal/cacheitem"
	"github.com/openscreenreader/atspicache/internal/primitive"
)

// Connection builds proxies against a live bus connection.
type Connection interface {
	// BuildProxy configures a proxy for destination=sender,
	// path=/org/a11y/atspi/accessible/<id>. cacheProperties controls
	// whether the proxy may cache property reads; the tree-navigation
	// façade always builds with it disabled to force fresh reads
	// (spec.md §4.1's reverse conversion).
	BuildProxy(ctx context.Context, sender string, id primitive.ID, cacheProperties bool) (Proxy, error)
}

// Proxy is a remote handle to one accessible object, configured
// against a single sender and path. See spec.md §6 for the full
// method inventory this mirrors.
type Proxy interface {
	Destination() string
	ID() (primitive.ID, error)

	GetApplication(ctx context.Context) (primitive.Primitive, error)
	Parent(ctx context.Context) (primitive.Primitive, error)
	GetIndexInParent(ctx context.Context) (int, error)
	ChildCount(ctx context.Context) (int, error)
	GetInterfaces(ctx context.Context) (cacheitem.InterfaceSet, error)
	GetRole(ctx context.Context) (cacheitem.Role, error)
	GetState(ctx context.Context) (cacheitem.StateSet, error)
	GetChildren(ctx context.Context) ([]primitive.Primitive, error)
	GetAttributes(ctx context.Context) (map[string]string, error)
	Name(ctx context.Context) (string, error)
	Locale(ctx context.Context) (string, error)
	Description(ctx context.Context) (string, error)
	GetRoleName(ctx context.Context) (string, error)
	GetLocalizedRoleName(ctx context.Context) (string, error)
	GetRelationSet(ctx context.Context) ([]Relation, error)

	// ToText returns a TextProxy if this object implements the text
	// interface, or ok=false otherwise.
	ToText(ctx context.Context) (text TextProxy, ok bool)
}

// TextProxy is the text-interface facet of a Proxy.
type TextProxy interface {
	GetAllText(ctx context.Context) (string, error)
	GetStringAtOffset(ctx context.Context, pos int, granularity string) (string, error)
}

// Relation pairs a relation type with the objects it relates to, as
// returned by Proxy.GetRelationSet.
type Relation struct {
	Type    string
	Targets []primitive.Primitive
}

// Event is the common surface every bus event exposes (spec.md §6).
// Kind-specific payload accessors live on the concrete event types
// below, which all embed Event.
type Event interface {
	primitive.EventSource
	Kind() string
}

// TextChangedEvent carries a character-indexed text edit (spec.md
// §4.4). Kind is one of "insert", "insert/system", "delete",
// "delete/system".
type TextChangedEvent interface {
	Event
	StartPos() int
	Length() int
	Text() string
}

// StateChangedEvent carries a single state toggle (spec.md §4.5).
type StateChangedEvent interface {
	Event
	State() string
	Enabled() bool
}

// ChildrenChangedEvent carries a child add/remove notification
// (spec.md §4.6). Kind is one of "add", "add/system", "remove",
// "remove/system". ChildPath and ChildSender are only meaningful for
// add kinds.
type ChildrenChangedEvent interface {
	Event
	ChildPath() (path string, ok bool)
	ChildSender() string
}

// TextCaretMovedEvent carries a caret position change
// (SPEC_FULL.md §4.8).
type TextCaretMovedEvent interface {
	Event
	Position() int
}
