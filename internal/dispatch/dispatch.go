// Package dispatch implements the event dispatcher (SPEC_FULL.md
// §4.8): one consumer per object pulls bus events off a bounded
// channel, resolves or hydrates the cache item, applies the matching
// updater, and forwards any resulting announcement — never blocking
// the mutation path on speech.
package dispatch

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"github.com/google/uuid"

	"github.com/openscreenreader/atspicache/internal/announce"
	"github.com/openscreenreader/atspicache/internal/busclient"
	"github.com/openscreenreader/atspicache/internal/cacheitem"
	"github.com/openscreenreader/atspicache/internal/childrenchanged"
	"github.com/openscreenreader/atspicache/internal/primitive"
	"github.com/openscreenreader/atspicache/internal/stateset"
	"github.com/openscreenreader/atspicache/internal/textedit"
)

// ErrFull is returned by Submit when the event channel has no room
// left; per spec.md §5 this must never happen in steady state, a
// filled channel deadlocks the bus reader upstream.
var ErrFull = errors.New("dispatch: event channel full")

// Cache is the subset of *cache.Cache the dispatcher needs. Defined
// locally, as cacheitem.Owner is, to keep this package decoupled from
// the concrete cache implementation.
type Cache interface {
	cacheitem.Owner
	GetOrCreate(ctx context.Context, proxy busclient.Proxy) (cacheitem.Item, error)
	Remove(id primitive.Primitive)
}

// Dispatcher owns the bounded bus-event channel and the per-object
// dispatch logic.
type Dispatcher struct {
	cache               Cache
	conn                busclient.Connection
	bus                 *announce.Bus
	policy              *announce.Policy
	invertStatePolarity bool

	events chan busclient.Event

	caretMu    sync.Mutex
	lastCaret  map[primitive.Primitive]int
}

// New builds a Dispatcher with the given event-channel capacity
// (spec.md §5's default is 128). policy may be nil, meaning "always
// announce".
func New(cache Cache, conn busclient.Connection, bus *announce.Bus, policy *announce.Policy, capacity int, invertStatePolarity bool) *Dispatcher {
	return &Dispatcher{
		cache:               cache,
		conn:                conn,
		bus:                 bus,
		policy:              policy,
		invertStatePolarity: invertStatePolarity,
		events:              make(chan busclient.Event, capacity),
		lastCaret:           make(map[primitive.Primitive]int),
	}
}

// Submit enqueues ev without blocking. It returns ErrFull if the
// channel has no room.
func (d *Dispatcher) Submit(ev busclient.Event) error {
	select {
	case d.events <- ev:
		return nil
	default:
		return ErrFull
	}
}

// Run drains the event channel until ctx is canceled.
func (d *Dispatcher) Run(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-d.events:
			d.handle(ctx, ev)
		}
	}
}

func (d *Dispatcher) handle(ctx context.Context, ev busclient.Event) {
	correlationID := uuid.NewString()
	id, err := primitive.FromEvent(ev)
	if err != nil {
		slog.Debug("dispatch: could not extract identity", "correlation_id", correlationID, "error", err)
		return
	}

	switch e := ev.(type) {
	case busclient.TextChangedEvent:
		d.handleTextChanged(ctx, id, e, correlationID)
	case busclient.StateChangedEvent:
		d.handleStateChanged(id, e, correlationID)
	case busclient.ChildrenChangedEvent:
		d.handleChildrenChanged(ctx, id, e, correlationID)
	case busclient.TextCaretMovedEvent:
		d.handleCaretMoved(id, e, correlationID)
	default:
		slog.Debug("dispatch: unrecognized event kind", "correlation_id", correlationID, "kind", ev.Kind())
	}
}

func (d *Dispatcher) handleTextChanged(ctx context.Context, id primitive.Primitive, ev busclient.TextChangedEvent, correlationID string) {
	proxy, err := d.conn.BuildProxy(ctx, id.Sender, id.ID, false)
	if err != nil {
		slog.Debug("dispatch: text-changed proxy build failed", "correlation_id", correlationID, "error", err)
		return
	}
	if _, err := d.cache.GetOrCreate(ctx, proxy); err != nil {
		slog.Debug("dispatch: text-changed hydration failed", "correlation_id", correlationID, "error", err)
		return
	}

	edit := textedit.Event{Kind: mapTextKind(ev.Kind()), StartPos: ev.StartPos(), Length: ev.Length(), Text: ev.Text()}

	var applied bool
	var postEditText string
	var role cacheitem.Role
	found := d.cache.ModifyItem(id, func(item *cacheitem.Item) {
		next, ok := textedit.Apply(item.Text, edit)
		applied = ok
		if ok {
			item.Text = next
		}
		postEditText = item.Text
		role = item.Role
	})
	if !found || !applied || !edit.Kind.IsInsert() {
		return
	}

	attrs, err := proxy.GetAttributes(ctx)
	if err != nil {
		slog.Debug("dispatch: could not read attributes for announcement", "correlation_id", correlationID, "error", err)
		return
	}
	announcement, err := textedit.Announce(postEditText, edit, attrs)
	if err != nil {
		if errors.Is(err, textedit.ErrNoAttribute) {
			slog.Debug("dispatch: missing live/atomic attribute, skipping announcement", "correlation_id", correlationID)
		}
		return
	}

	if d.policy != nil && !d.policy.ShouldAnnounce(role.String(), announcement.Text, attrs["live"], attrs["atomic"] == "true") {
		return
	}
	if ok := d.bus.Publish(announce.Announcement{Priority: announcement.Priority, Text: announcement.Text, Source: id}); !ok {
		slog.Warn("dispatch: announcement dropped, bus full", "correlation_id", correlationID)
	}
}

func (d *Dispatcher) handleStateChanged(id primitive.Primitive, ev busclient.StateChangedEvent, correlationID string) {
	opts := stateset.Options{InvertedPolarity: d.invertStatePolarity}
	if _, err := stateset.Apply(d.cache, id, ev.State(), ev.Enabled(), opts); err != nil {
		slog.Debug("dispatch: state-changed applier error", "correlation_id", correlationID, "error", err)
	}
}

func (d *Dispatcher) handleChildrenChanged(ctx context.Context, id primitive.Primitive, ev busclient.ChildrenChangedEvent, correlationID string) {
	kind := childKind(ev.Kind())
	var proxy busclient.Proxy
	if kind == childrenchanged.KindAdd {
		path, ok := ev.ChildPath()
		if !ok {
			slog.Debug("dispatch: children-changed add with no child path", "correlation_id", correlationID)
			return
		}
		childID, err := primitive.FromSenderPath(ev.ChildSender(), path)
		if err != nil {
			slog.Debug("dispatch: children-changed child path parse failed", "correlation_id", correlationID, "error", err)
			return
		}
		p, err := d.conn.BuildProxy(ctx, childID.Sender, childID.ID, false)
		if err != nil {
			slog.Debug("dispatch: children-changed proxy build failed", "correlation_id", correlationID, "error", err)
			return
		}
		proxy = p
		id = childID
	}
	if err := childrenchanged.Apply(ctx, d.cache, kind, proxy, id); err != nil {
		slog.Debug("dispatch: children-changed applier error", "correlation_id", correlationID, "error", err)
	}
}

func (d *Dispatcher) handleCaretMoved(id primitive.Primitive, ev busclient.TextCaretMovedEvent, correlationID string) {
	newPos := ev.Position()

	d.caretMu.Lock()
	oldPos, seen := d.lastCaret[id]
	d.lastCaret[id] = newPos
	d.caretMu.Unlock()
	if !seen {
		// Nothing to announce on the first caret report for an object:
		// there is no real previous position, only the map's zero value.
		return
	}

	item, ok := d.cache.Get(id)
	if !ok {
		slog.Debug("dispatch: caret-moved for unknown item", "correlation_id", correlationID)
		return
	}

	text := caretSpan(item.Text, oldPos, newPos)
	if text == "" {
		return
	}
	if ok := d.bus.Publish(announce.Announcement{Priority: textedit.PriorityMessage, Text: text, Source: id}); !ok {
		slog.Warn("dispatch: announcement dropped, bus full", "correlation_id", correlationID)
	}
}

// caretSpan computes the announced text for a caret move from oldPos
// to newPos, per spec.md §8's worked scenarios: a move of exactly one
// character announces the character that sat at the old position; a
// longer move announces the whole span between the two positions.
func caretSpan(text string, oldPos, newPos int) string {
	runes := []rune(text)
	n := len(runes)
	if oldPos < 0 || oldPos > n || newPos < 0 || newPos > n || oldPos == newPos {
		return ""
	}
	if abs(newPos-oldPos) == 1 {
		return string(runes[oldPos])
	}
	lo, hi := oldPos, newPos
	if lo > hi {
		lo, hi = hi, lo
	}
	return string(runes[lo:hi])
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}

func mapTextKind(kind string) textedit.Kind {
	switch kind {
	case "insert":
		return textedit.KindInsert
	case "insert/system":
		return textedit.KindInsertSystem
	case "delete":
		return textedit.KindDelete
	default:
		return textedit.KindDeleteSystem
	}
}

func childKind(kind string) string {
	switch kind {
	case "add", "add/system":
		return childrenchanged.KindAdd
	case "remove", "remove/system":
		return childrenchanged.KindRemove
	default:
		return kind
	}
}
