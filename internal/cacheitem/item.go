// Package cacheitem holds the denormalized per-object snapshot stored
// in the cache (CacheItem) and the weak back-reference type it uses
// to reach the owning cache without creating a reference cycle.
package cacheitem

import "github.com/openscreenreader/atspicache/internal/primitive"

// Item is a denormalized snapshot of one accessible object, per
// spec.md §3. All fields except Cache round-trip through JSON
// unchanged; Cache is always omitted on write and left unset on read
// (spec.md §6 Serialization).
type Item struct {
	Object Primitive `json:"object"`

	App    Primitive `json:"app"`
	Parent Primitive `json:"parent"`

	// Index is this item's position in its parent's child list, -1 if
	// unknown.
	Index int `json:"index"`

	// ChildrenNum is the reported child count; it may transiently
	// disagree with len(Children) per spec.md I5.
	ChildrenNum int `json:"children_num"`

	Interfaces InterfaceSet `json:"interfaces"`
	Role       Role         `json:"role"`
	States     StateSet     `json:"states"`

	// Text is the object's textual content if it implements the text
	// interface, else its name. Always a well-formed sequence of
	// Unicode scalars (spec.md I3); edit offsets are scalar indices.
	Text string `json:"text"`

	Children []Primitive `json:"children"`

	// Cache is the weak back-reference to the owning cache. It is
	// never serialized: the `json:"-"` tag omits it on json.Marshal and
	// leaves it as its zero value (unset) after json.Unmarshal, per
	// spec.md §6.
	Cache WeakRef `json:"-"`
}

// Primitive is a local alias so this package's exported surface reads
// in terms of cacheitem types without forcing every caller to import
// primitive directly for the common case.
type Primitive = primitive.Primitive

// Clone returns a detached copy of the item. Cache.Get and friends
// must always return clones: spec.md §8 requires that mutating a
// returned copy never affects the cache, and that readers never hold
// a handle that could block a writer.
func (it Item) Clone() Item {
	clone := it
	if it.Children != nil {
		clone.Children = make([]Primitive, len(it.Children))
		copy(clone.Children, it.Children)
	}
	return clone
}
