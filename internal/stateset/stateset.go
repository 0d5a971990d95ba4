// Package stateset applies state-changed events to a cached item's
// state bitset, per spec.md §4.5. The polarity of that application is
// one of spec.md §9's Open Questions: the original implementation
// inserts the state when active is false and removes it when active
// is true, the opposite of what a reader would expect from the event
// name. That behavior is preserved here, gated behind Options so a
// deployment can flip it once the question is actually resolved
// upstream.
package stateset

import (
	"errors"

	"github.com/openscreenreader/atspicache/internal/cacheitem"
	"github.com/openscreenreader/atspicache/internal/primitive"
)

// ErrUnknownState is returned when the event names a state outside
// the fixed AT-SPI2 enumeration.
var ErrUnknownState = errors.New("stateset: unknown state name")

// Options controls how Apply interprets the active flag.
type Options struct {
	// InvertedPolarity reproduces the original implementation's
	// behavior: active == false inserts the state, active == true
	// removes it. False gives the conventional reading. Defaults to
	// true (the inherited behavior) via Default.
	InvertedPolarity bool
}

// Default matches the original implementation's observed polarity.
func Default() Options { return Options{InvertedPolarity: true} }

// Apply toggles stateName on the cached item identified by id,
// through owner.ModifyItem. It returns false if the item is absent
// from the cache (per spec.md: events for unknown identities are
// logged and dropped, not errors), and ErrUnknownState if stateName
// isn't one of the fixed enumeration's names.
func Apply(owner cacheitem.Owner, id primitive.Primitive, stateName string, active bool, opts Options) (bool, error) {
	st, ok := cacheitem.ParseState(stateName)
	if !ok {
		return false, ErrUnknownState
	}

	insert := active
	if opts.InvertedPolarity {
		insert = !active
	}

	found := owner.ModifyItem(id, func(item *cacheitem.Item) {
		if insert {
			item.States = item.States.Insert(st)
		} else {
			item.States = item.States.Remove(st)
		}
	})
	return found, nil
}
