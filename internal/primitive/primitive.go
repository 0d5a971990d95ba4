// Package primitive defines the canonical identity for an accessible
// object mirrored in the cache: a (sender, id) pair cheap enough to
// hash, compare, and serialize without touching the bus.
package primitive

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
)

// Errors returned by the conversions below. Callers compare with
// errors.Is; PathParse wraps the underlying parse failure.
var (
	ErrNoSender  = errors.New("primitive: event carried no sender")
	ErrSender    = errors.New("primitive: failed to read event sender")
	ErrNoPathID  = errors.New("primitive: no object path / id available")
	ErrPathParse = errors.New("primitive: malformed accessible object path")
)

// accessiblePathPrefix is the fixed prefix every AT-SPI2 accessible
// object path carries; the trailing segment is the id.
const accessiblePathPrefix = "/org/a11y/atspi/accessible/"

// IDKind discriminates the tagged union an accessible id can take.
type IDKind int

const (
	IDRoot IDKind = iota
	IDNull
	IDNumber
	IDOther
)

func (k IDKind) String() string {
	switch k {
	case IDRoot:
		return "root"
	case IDNull:
		return "null"
	case IDNumber:
		return "number"
	case IDOther:
		return "other"
	default:
		return "unknown"
	}
}

// ID is the trailing segment of an accessible object path, parsed
// into one of four shapes: the well-known "root" and "null" sentinels,
// a numeric id, or an opaque string the bus assigned.
type ID struct {
	Kind   IDKind
	Number uint64
	Other  string
}

// RootID and NullID are the two well-known sentinel ids.
func RootID() ID { return ID{Kind: IDRoot} }
func NullID() ID { return ID{Kind: IDNull} }

// NumberID wraps a numeric accessible id.
func NumberID(n uint64) ID { return ID{Kind: IDNumber, Number: n} }

// OtherID wraps an opaque, non-numeric accessible id.
func OtherID(s string) ID { return ID{Kind: IDOther, Other: s} }

// ParseID parses the trailing path segment of
// "/org/a11y/atspi/accessible/<X>" into an ID.
func ParseID(segment string) (ID, error) {
	switch segment {
	case "":
		return ID{}, fmt.Errorf("%w: empty id segment", ErrPathParse)
	case "root":
		return RootID(), nil
	case "null":
		return NullID(), nil
	}
	if n, err := strconv.ParseUint(segment, 10, 64); err == nil {
		return NumberID(n), nil
	}
	return OtherID(segment), nil
}

// String renders the ID back into its path-segment form.
func (id ID) String() string {
	switch id.Kind {
	case IDRoot:
		return "root"
	case IDNull:
		return "null"
	case IDNumber:
		return strconv.FormatUint(id.Number, 10)
	default:
		return id.Other
	}
}

// Less gives IDs a total order: by kind first (root < null < number <
// other), then by value within a kind. Used so Primitive sorts
// lexicographically by (sender, id) as spec.md §3 requires.
func (id ID) Less(other ID) bool {
	if id.Kind != other.Kind {
		return id.Kind < other.Kind
	}
	switch id.Kind {
	case IDNumber:
		return id.Number < other.Number
	case IDOther:
		return id.Other < other.Other
	default:
		return false
	}
}

// idJSON is the wire shape for ID: a kind tag plus the one populated
// payload field, so Number and Other never collide under "value".
type idJSON struct {
	Kind   string `json:"kind"`
	Number uint64 `json:"number,omitempty"`
	Other  string `json:"other,omitempty"`
}

func (id ID) MarshalJSON() ([]byte, error) {
	return json.Marshal(idJSON{Kind: id.Kind.String(), Number: id.Number, Other: id.Other})
}

func (id *ID) UnmarshalJSON(data []byte) error {
	var raw idJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	switch raw.Kind {
	case "root":
		*id = RootID()
	case "null":
		*id = NullID()
	case "number":
		*id = NumberID(raw.Number)
	case "other":
		*id = OtherID(raw.Other)
	default:
		return fmt.Errorf("%w: unknown id kind %q", ErrPathParse, raw.Kind)
	}
	return nil
}

// Primitive is the sole cache key: a bus-assigned sender name paired
// with the id parsed from the object's path. Two primitives are equal
// iff both fields are equal, making it directly usable as a Go map key.
type Primitive struct {
	Sender string
	ID     ID
}

// Less orders primitives lexicographically by (sender, id).
func (p Primitive) Less(other Primitive) bool {
	if p.Sender != other.Sender {
		return p.Sender < other.Sender
	}
	return p.ID.Less(other.ID)
}

func (p Primitive) String() string {
	return p.Sender + accessiblePathPrefix + p.ID.String()
}

// EventSource is the minimal surface a bus event must expose for
// identity extraction; the concrete event types live in busclient.
type EventSource interface {
	// Sender returns the event's bus sender name. ok is false when the
	// bus did not supply one; err is non-nil only on a transport-level
	// failure to read it at all.
	Sender() (name string, ok bool, err error)
	// Path returns the event's object path, or ok=false if absent.
	Path() (path string, ok bool)
}

// FromEvent builds a Primitive from a bus event, per spec.md §4.1.1.
func FromEvent(ev EventSource) (Primitive, error) {
	sender, ok, err := ev.Sender()
	if err != nil {
		return Primitive{}, ErrSender
	}
	if !ok {
		return Primitive{}, ErrNoSender
	}
	path, ok := ev.Path()
	if !ok {
		return Primitive{}, ErrNoPathID
	}
	id, err := idFromPath(path)
	if err != nil {
		return Primitive{}, err
	}
	return Primitive{Sender: sender, ID: id}, nil
}

// FromSenderPath builds a Primitive from a raw (sender, path) tuple,
// per spec.md §4.1.2.
func FromSenderPath(sender, path string) (Primitive, error) {
	id, err := idFromPath(path)
	if err != nil {
		return Primitive{}, err
	}
	return Primitive{Sender: sender, ID: id}, nil
}

// LiveProxy is the subset of busclient.Proxy identity conversion needs:
// a destination (sender) and a proxy-reported id.
type LiveProxy interface {
	Destination() string
	ID() (ID, error)
}

// FromProxy builds a Primitive from a live accessible proxy, per
// spec.md §4.1.3. The proxy's own id lookup failing maps to NoPathID,
// matching the Rust original's treatment of that failure mode.
func FromProxy(p LiveProxy) (Primitive, error) {
	id, err := p.ID()
	if err != nil {
		return Primitive{}, ErrNoPathID
	}
	return Primitive{Sender: p.Destination(), ID: id}, nil
}

// FromCacheRecord builds a Primitive from the (sender, path) pair
// found in a raw bus cache-item record, per spec.md §4.1.4. It is a
// thin alias of FromSenderPath kept distinct so call sites read as
// "converting a cache record", matching the Rust original's separate
// TryFrom impl for the same shape.
func FromCacheRecord(sender, path string) (Primitive, error) {
	return FromSenderPath(sender, path)
}

// idFromPath extracts and parses the trailing segment of an accessible
// object path. Paths that don't carry the expected prefix still parse
// by trailing-segment, to tolerate proxies that normalize paths
// slightly differently than the canonical form.
func idFromPath(path string) (ID, error) {
	if path == "" {
		return ID{}, fmt.Errorf("%w: empty path", ErrPathParse)
	}
	segment := path
	if strings.HasPrefix(path, accessiblePathPrefix) {
		segment = strings.TrimPrefix(path, accessiblePathPrefix)
	} else if idx := strings.LastIndex(path, "/"); idx >= 0 {
		segment = path[idx+1:]
	}
	return ParseID(segment)
}
