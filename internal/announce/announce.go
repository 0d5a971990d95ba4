// Package announce implements the bounded announcement bus
// (SPEC_FULL.md §4.9): appliers push spoken text onto it without
// blocking, and a single dedicated consumer drains it toward the
// (external) speaker. It exists because spec.md §5's backpressure rule
// forbids the dispatch path from ever blocking on speech.
package announce

import (
	"context"
	"log/slog"

	"github.com/openscreenreader/atspicache/internal/primitive"
	"github.com/openscreenreader/atspicache/internal/textedit"
)

// Priority reuses the text editor's three-level priority model; an
// announcement's priority is decided at the point it's produced, not
// recomputed here.
type Priority = textedit.Priority

// Announcement is one unit of speech output.
type Announcement struct {
	Priority Priority
	Text     string
	Source   primitive.Primitive
}

// Bus is a bounded, single-consumer announcement channel.
type Bus struct {
	ch chan Announcement
}

// NewBus creates a bus with the given channel capacity.
func NewBus(capacity int) *Bus {
	return &Bus{ch: make(chan Announcement, capacity)}
}

// Publish attempts to enqueue a. It never blocks: if the bus is full,
// the announcement is dropped and a warning is logged, per spec.md
// §5's rule that the mutation path must never block on speech.
func (b *Bus) Publish(a Announcement) bool {
	select {
	case b.ch <- a:
		return true
	default:
		slog.Warn("announcement bus full, dropping", "text", a.Text, "source", a.Source.String())
		return false
	}
}

// Consume drains announcements, calling sink for each, until ctx is
// canceled. Intended to run as the bus's one dedicated consumer task.
func (b *Bus) Consume(ctx context.Context, sink func(Announcement)) {
	for {
		select {
		case <-ctx.Done():
			return
		case a := <-b.ch:
			sink(a)
		}
	}
}
