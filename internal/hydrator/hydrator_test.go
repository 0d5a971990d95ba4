package hydrator

import (
	"context"
	"errors"
	"testing"

	"github.com/openscreenreader/atspicache/internal/busclient"
	"github.com/openscreenreader/atspicache/internal/cacheitem"
	"github.com/openscreenreader/atspicache/internal/primitive"
)

type fakeText struct{ text string }

func (f fakeText) GetAllText(ctx context.Context) (string, error) { return f.text, nil }
func (f fakeText) GetStringAtOffset(ctx context.Context, pos int, granularity string) (string, error) {
	return "", nil
}

type fakeProxy struct {
	dest       string
	id         primitive.ID
	idErr      error
	app        primitive.Primitive
	parent     primitive.Primitive
	index      int
	children   []primitive.Primitive
	interfaces cacheitem.InterfaceSet
	role       cacheitem.Role
	states     cacheitem.StateSet
	text       *fakeText
	name       string
	failCall   error
}

func (f *fakeProxy) Destination() string { return f.dest }
func (f *fakeProxy) ID() (primitive.ID, error) { return f.id, f.idErr }
func (f *fakeProxy) GetApplication(ctx context.Context) (primitive.Primitive, error) {
	return f.app, f.failCall
}
func (f *fakeProxy) Parent(ctx context.Context) (primitive.Primitive, error) {
	return f.parent, f.failCall
}
func (f *fakeProxy) GetIndexInParent(ctx context.Context) (int, error) { return f.index, f.failCall }
func (f *fakeProxy) ChildCount(ctx context.Context) (int, error)       { return len(f.children), f.failCall }
func (f *fakeProxy) GetInterfaces(ctx context.Context) (cacheitem.InterfaceSet, error) {
	return f.interfaces, f.failCall
}
func (f *fakeProxy) GetRole(ctx context.Context) (cacheitem.Role, error) { return f.role, f.failCall }
func (f *fakeProxy) GetState(ctx context.Context) (cacheitem.StateSet, error) {
	return f.states, f.failCall
}
func (f *fakeProxy) GetChildren(ctx context.Context) ([]primitive.Primitive, error) {
	return f.children, f.failCall
}
func (f *fakeProxy) GetAttributes(ctx context.Context) (map[string]string, error) {
	return nil, nil
}
func (f *fakeProxy) Name(ctx context.Context) (string, error)        { return f.name, nil }
func (f *fakeProxy) Locale(ctx context.Context) (string, error)      { return "", nil }
func (f *fakeProxy) Description(ctx context.Context) (string, error) { return "", nil }
func (f *fakeProxy) GetRoleName(ctx context.Context) (string, error) { return f.role.String(), nil }
func (f *fakeProxy) GetLocalizedRoleName(ctx context.Context) (string, error) {
	return f.role.String(), nil
}
func (f *fakeProxy) GetRelationSet(ctx context.Context) ([]busclient.Relation, error) {
	return nil, nil
}
func (f *fakeProxy) ToText(ctx context.Context) (busclient.TextProxy, bool) {
	if f.text == nil {
		return nil, false
	}
	return *f.text, true
}

func TestHydrate_WithTextInterface(t *testing.T) {
	p := &fakeProxy{
		dest:       ":1.1",
		id:         primitive.NumberID(5),
		app:        primitive.Primitive{Sender: ":1.1", ID: primitive.RootID()},
		parent:     primitive.Primitive{Sender: ":1.1", ID: primitive.NumberID(1)},
		index:      3,
		children:   []primitive.Primitive{{Sender: ":1.1", ID: primitive.NumberID(6)}},
		interfaces: cacheitem.InterfaceText,
		role:       cacheitem.RoleParagraph,
		states:     cacheitem.StateSet(0).Insert(cacheitem.StateShowing),
		text:       &fakeText{text: "hello world"},
		name:       "should not be used",
	}

	item, err := hydrateNoRef(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Text != "hello world" {
		t.Fatalf("expected text interface content, got %q", item.Text)
	}
	if item.Object.ID.Number != 5 {
		t.Fatalf("unexpected object id: %+v", item.Object)
	}
	if len(item.Children) != 1 {
		t.Fatalf("expected 1 child, got %d", len(item.Children))
	}
}

func TestHydrate_FallsBackToName(t *testing.T) {
	p := &fakeProxy{
		dest: ":1.1",
		id:   primitive.NumberID(7),
		name: "OK button",
		role: cacheitem.RolePushButton,
	}
	item, err := hydrateNoRef(t, p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Text != "OK button" {
		t.Fatalf("expected name fallback, got %q", item.Text)
	}
}

func TestHydrate_PropagatesFailure(t *testing.T) {
	p := &fakeProxy{
		dest:     ":1.1",
		id:       primitive.NumberID(1),
		failCall: errors.New("bus unreachable"),
	}
	_, err := hydrateNoRef(t, p)
	if err == nil {
		t.Fatal("expected error to propagate from a failed fan-out call")
	}
}

func hydrateNoRef(t *testing.T, p busclient.Proxy) (cacheitem.Item, error) {
	t.Helper()
	return Hydrate(context.Background(), p, cacheitem.WeakRef{})
}
