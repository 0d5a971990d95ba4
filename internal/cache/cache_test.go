package cache

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/openscreenreader/atspicache/internal/busclient"
	"github.com/openscreenreader/atspicache/internal/cacheitem"
	"github.com/openscreenreader/atspicache/internal/primitive"
)

func mkItem(sender string, id uint64) cacheitem.Item {
	return cacheitem.Item{Object: primitive.Primitive{Sender: sender, ID: primitive.NumberID(id)}}
}

func TestCache_AddGet(t *testing.T) {
	c := New()
	it := mkItem(":1.1", 1)
	c.Add(it)

	got, ok := c.Get(it.Object)
	if !ok {
		t.Fatal("expected hit")
	}
	if got.Object != it.Object {
		t.Fatalf("unexpected object: %+v", got.Object)
	}
}

// TestCache_I1_UniqueKey exercises spec.md I1: at most one item per
// identity, regardless of how many times Add overwrites it.
func TestCache_I1_UniqueKey(t *testing.T) {
	c := New()
	id := primitive.Primitive{Sender: ":1.1", ID: primitive.NumberID(9)}
	for i := 0; i < 5; i++ {
		c.Add(cacheitem.Item{Object: id, Text: "v"})
	}
	if c.Len() != 1 {
		t.Fatalf("expected exactly one entry, got %d", c.Len())
	}
}

// TestCache_I2_ObjectMatchesKey exercises spec.md I2.
func TestCache_I2_ObjectMatchesKey(t *testing.T) {
	c := New()
	id := primitive.Primitive{Sender: ":1.1", ID: primitive.NumberID(3)}
	c.Add(cacheitem.Item{Object: id})
	got, ok := c.Get(id)
	if !ok || got.Object != id {
		t.Fatalf("expected item.Object == key, got %+v", got.Object)
	}
}

func TestCache_GetDetached(t *testing.T) {
	c := New()
	id := primitive.Primitive{Sender: ":1.1", ID: primitive.NumberID(1)}
	c.Add(cacheitem.Item{Object: id, Text: "original"})

	got, _ := c.Get(id)
	got.Text = "mutated"

	reread, _ := c.Get(id)
	if reread.Text != "original" {
		t.Fatalf("mutating a Get copy leaked into the cache: %q", reread.Text)
	}
}

func TestCache_RemoveThenGet(t *testing.T) {
	c := New()
	id := primitive.Primitive{Sender: ":1.1", ID: primitive.NumberID(1)}
	c.Add(cacheitem.Item{Object: id})
	c.Remove(id)

	if _, ok := c.Get(id); ok {
		t.Fatal("expected miss after remove")
	}
	if ok := c.ModifyItem(id, func(*cacheitem.Item) {}); ok {
		t.Fatal("expected ModifyItem on removed id to return false")
	}
}

func TestCache_ModifyItem_AbsentReturnsFalse(t *testing.T) {
	c := New()
	called := false
	ok := c.ModifyItem(primitive.Primitive{Sender: "nobody"}, func(*cacheitem.Item) { called = true })
	if ok {
		t.Fatal("expected false for absent key")
	}
	if called {
		t.Fatal("mutator must not run for an absent key")
	}
}

func TestCache_ModifyItem_MutatesLiveEntry(t *testing.T) {
	c := New()
	id := primitive.Primitive{Sender: ":1.1", ID: primitive.NumberID(1)}
	c.Add(cacheitem.Item{Object: id, Text: "a"})

	ok := c.ModifyItem(id, func(it *cacheitem.Item) { it.Text = "b" })
	if !ok {
		t.Fatal("expected true for present key")
	}
	got, _ := c.Get(id)
	if got.Text != "b" {
		t.Fatalf("expected mutation to apply, got %q", got.Text)
	}
}

func TestCache_AddAllRemoveAll(t *testing.T) {
	c := New()
	items := []cacheitem.Item{mkItem(":1.1", 1), mkItem(":1.1", 2), mkItem(":1.1", 3)}
	c.AddAll(items)
	if c.Len() != 3 {
		t.Fatalf("expected 3 entries, got %d", c.Len())
	}

	c.RemoveAll([]primitive.Primitive{items[0].Object, items[1].Object})
	if c.Len() != 1 {
		t.Fatalf("expected 1 entry after bulk remove, got %d", c.Len())
	}
}

func TestCache_GetAll(t *testing.T) {
	c := New()
	present := mkItem(":1.1", 1)
	c.Add(present)
	absent := primitive.Primitive{Sender: ":1.1", ID: primitive.NumberID(99)}

	results := c.GetAll([]primitive.Primitive{present.Object, absent})
	if !results[0].Found || results[0].Item.Object != present.Object {
		t.Fatalf("expected first result to be found: %+v", results[0])
	}
	if results[1].Found {
		t.Fatal("expected second result to be a miss")
	}
}

// TestCache_ConcurrentDifferentKeys exercises spec.md §5(c): different
// keys proceed independently.
func TestCache_ConcurrentDifferentKeys(t *testing.T) {
	c := New()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i uint64) {
			defer wg.Done()
			id := primitive.Primitive{Sender: ":1.1", ID: primitive.NumberID(i)}
			c.Add(cacheitem.Item{Object: id})
			c.ModifyItem(id, func(it *cacheitem.Item) { it.Index = int(i) })
		}(uint64(i))
	}
	wg.Wait()
	if c.Len() != 50 {
		t.Fatalf("expected 50 entries, got %d", c.Len())
	}
}

// fakeHydrateProxy implements busclient.Proxy with static data, used
// to exercise GetOrCreate without a real bus.
type fakeHydrateProxy struct {
	dest string
	id   primitive.ID
}

func (f fakeHydrateProxy) Destination() string             { return f.dest }
func (f fakeHydrateProxy) ID() (primitive.ID, error)        { return f.id, nil }
func (f fakeHydrateProxy) GetApplication(ctx context.Context) (primitive.Primitive, error) {
	return primitive.Primitive{Sender: f.dest, ID: primitive.RootID()}, nil
}
func (f fakeHydrateProxy) Parent(ctx context.Context) (primitive.Primitive, error) {
	return primitive.Primitive{}, nil
}
func (f fakeHydrateProxy) GetIndexInParent(ctx context.Context) (int, error) { return -1, nil }
func (f fakeHydrateProxy) ChildCount(ctx context.Context) (int, error)       { return 0, nil }
func (f fakeHydrateProxy) GetInterfaces(ctx context.Context) (cacheitem.InterfaceSet, error) {
	return 0, nil
}
func (f fakeHydrateProxy) GetRole(ctx context.Context) (cacheitem.Role, error) {
	return cacheitem.RoleUnknown, nil
}
func (f fakeHydrateProxy) GetState(ctx context.Context) (cacheitem.StateSet, error) { return 0, nil }
func (f fakeHydrateProxy) GetChildren(ctx context.Context) ([]primitive.Primitive, error) {
	return nil, nil
}
func (f fakeHydrateProxy) GetAttributes(ctx context.Context) (map[string]string, error) {
	return nil, nil
}
func (f fakeHydrateProxy) Name(ctx context.Context) (string, error)        { return "name", nil }
func (f fakeHydrateProxy) Locale(ctx context.Context) (string, error)      { return "", nil }
func (f fakeHydrateProxy) Description(ctx context.Context) (string, error) { return "", nil }
func (f fakeHydrateProxy) GetRoleName(ctx context.Context) (string, error) { return "", nil }
func (f fakeHydrateProxy) GetLocalizedRoleName(ctx context.Context) (string, error) {
	return "", nil
}
func (f fakeHydrateProxy) GetRelationSet(ctx context.Context) ([]busclient.Relation, error) {
	return nil, nil
}
func (f fakeHydrateProxy) ToText(ctx context.Context) (busclient.TextProxy, bool) { return nil, false }

func TestCache_GetOrCreate_HydratesOnMiss(t *testing.T) {
	c := New()
	p := fakeHydrateProxy{dest: ":1.1", id: primitive.NumberID(42)}

	item, err := c.GetOrCreate(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantID, _ := primitive.FromProxy(p)
	if item.Object != wantID {
		t.Fatalf("expected hydrated item's identity to match the proxy's, got %+v", item.Object)
	}
	if c.Len() != 1 {
		t.Fatalf("expected exactly one entry inserted, got %d", c.Len())
	}
}

func TestCache_GetOrCreate_ReturnsExisting(t *testing.T) {
	c := New()
	p := fakeHydrateProxy{dest: ":1.1", id: primitive.NumberID(1)}
	id, _ := primitive.FromProxy(p)
	c.Add(cacheitem.Item{Object: id, Text: "already cached"})

	item, err := c.GetOrCreate(context.Background(), p)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if item.Text != "already cached" {
		t.Fatalf("expected cached item, got hydrated one: %+v", item)
	}
	if c.Len() != 1 {
		t.Fatalf("expected no duplicate insert, got %d entries", c.Len())
	}
}

func TestCache_Shutdown_WeakRefFailsAfter(t *testing.T) {
	c := New()
	ref := c.Ref()
	if _, err := ref.Upgrade(); err != nil {
		t.Fatalf("expected live cache to upgrade, got %v", err)
	}
	c.Shutdown()
	if _, err := ref.Upgrade(); !errors.Is(err, cacheitem.ErrNotAvailable) {
		t.Fatalf("expected ErrNotAvailable after shutdown, got %v", err)
	}
}
