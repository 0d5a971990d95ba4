// Package textedit implements the character-indexed text-change
// applier described in spec.md §4.4 — the hard part of the cache:
// splicing an accessibility event's reported insert/delete into the
// cached text by Unicode scalar index, never by byte offset, with an
// idempotence guard against double-application.
package textedit

import (
	"errors"
)

// Kind discriminates the four text-changed event kinds spec.md §4.4
// recognizes. The "/system" variants carry identical semantics to
// their plain counterparts; only the insert/delete split matters here.
type Kind int

const (
	KindInsert Kind = iota
	KindInsertSystem
	KindDelete
	KindDeleteSystem
)

// IsInsert reports whether k is one of the two insert kinds.
func (k Kind) IsInsert() bool { return k == KindInsert || k == KindInsertSystem }

// Event is a text-changed event's payload, already decoded from the
// bus event into scalar-index terms (spec.md §4.4).
type Event struct {
	Kind     Kind
	StartPos int
	Length   int
	Text     string
}

// Priority mirrors spec.md §4.4's three announcement priorities.
type Priority int

const (
	PriorityMessage Priority = iota
	PriorityNotification
	PriorityImportant
)

// ErrNoAttribute is returned by Announce when the live or atomic
// attribute is missing. It is recoverable: it aborts the announcement
// step only, never the cache mutation (spec.md §4.4, §7).
var ErrNoAttribute = errors.New("textedit: missing attribute")

// Announcement is what should be forwarded to the speaker after an
// insert is applied.
type Announcement struct {
	Priority Priority
	Text     string
}

// Apply computes the edited text according to the insertion or deletion
// policy in spec.md §4.4, guarded by the idempotence check in the same
// section. It returns the new text and whether a mutation was
// actually applied (false means the edit was judged already applied
// and skipped).
func Apply(current string, ev Event) (next string, applied bool) {
	runes := []rune(current)
	selection := withinBounds(runes, ev.StartPos, ev.Length)

	if ev.Kind.IsInsert() {
		if selection == ev.Text {
			// Already applied; re-applying would duplicate it.
			return current, false
		}
		return applyInsert(runes, ev.StartPos, ev.Length, ev.Text), true
	}

	if selection != ev.Text {
		// The cache no longer holds what the event says it removed;
		// assume the delete already landed.
		return current, false
	}
	return applyDelete(runes, ev.StartPos, ev.Length), true
}

// applyInsert implements the four-way insertion policy: prepend,
// append, insert-and-append, or splice.
func applyInsert(current []rune, startPos, length int, updated string) string {
	n := len(current)
	switch {
	case startPos == 0:
		return updated + string(current)
	case startPos >= n:
		return string(current) + updated
	case startPos+length >= n:
		return string(current[:clamp(startPos, n)]) + updated
	default:
		start := clamp(startPos, n)
		end := clamp(startPos+length, n)
		return string(current[:start]) + updated + string(current[end:])
	}
}

// applyDelete removes the inclusive range [startPos, startPos+length]
// from current. The inclusive upper bound mirrors the original
// implementation and is preserved as-is per spec.md §9's Open
// Question — it is one wider than the typical half-open convention.
func applyDelete(current []rune, startPos, length int) string {
	var out []rune
	end := startPos + length
	for i, r := range current {
		if i < startPos || i > end {
			out = append(out, r)
		}
	}
	return string(out)
}

// withinBounds returns the substring of current covering the
// inclusive range [startPos, startPos+length], exactly the window the
// idempotence guard compares against the event's reported text.
// Indices outside current's length are silently excluded, matching
// the original's index-iteration behavior (an out-of-range window
// just yields fewer or no characters, never an error).
func withinBounds(current []rune, startPos, length int) string {
	end := startPos + length
	var out []rune
	for i, r := range current {
		if i >= startPos && i <= end {
			out = append(out, r)
		}
	}
	return string(out)
}

func clamp(i, n int) int {
	if i < 0 {
		return 0
	}
	if i > n {
		return n
	}
	return i
}

// Announce computes what should be spoken for an insert event, per
// spec.md §4.4. postEditText is the cache's text after Apply has run.
// attrs must carry "live" and "atomic" for a successful announcement;
// either missing yields ErrNoAttribute.
func Announce(postEditText string, ev Event, attrs map[string]string) (Announcement, error) {
	live, ok := attrs["live"]
	if !ok {
		return Announcement{}, ErrNoAttribute
	}
	atomicStr, ok := attrs["atomic"]
	if !ok {
		return Announcement{}, ErrNoAttribute
	}

	text := ev.Text
	if atomicStr == "true" {
		text = postEditText
	}

	return Announcement{Priority: priorityFor(live), Text: text}, nil
}

func priorityFor(live string) Priority {
	switch live {
	case "assertive":
		return PriorityImportant
	case "polite":
		return PriorityNotification
	default:
		return PriorityMessage
	}
}
