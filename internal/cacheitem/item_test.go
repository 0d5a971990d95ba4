package cacheitem

import (
	"encoding/json"
	"testing"

	"github.com/openscreenreader/atspicache/internal/primitive"
)

func sampleItem() Item {
	return Item{
		Object:      primitive.Primitive{Sender: ":1.1", ID: primitive.NumberID(1)},
		App:         primitive.Primitive{Sender: ":1.1", ID: primitive.RootID()},
		Parent:      primitive.Primitive{Sender: ":1.1", ID: primitive.NumberID(0)},
		Index:       2,
		ChildrenNum: 1,
		Interfaces:  InterfaceAccessible.asSet().With(InterfaceText),
		Role:        RoleParagraph,
		States:      StateSet(0).Insert(StateEnabled).Insert(StateShowing),
		Text:        "hello",
		Children:    []primitive.Primitive{{Sender: ":1.1", ID: primitive.NumberID(2)}},
	}
}

// asSet lets the test build an InterfaceSet from a single Interface
// without exporting a constructor nobody else needs.
func (i Interface) asSet() InterfaceSet { return InterfaceSet(i) }

func TestItem_SerializeRoundTrip(t *testing.T) {
	it := sampleItem()
	data, err := json.Marshal(it)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	var got Item
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}

	got.Cache = WeakRef{}
	it.Cache = WeakRef{}
	if got.Object != it.Object || got.Text != it.Text || got.Role != it.Role {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, it)
	}
	if _, err := got.Cache.Upgrade(); err == nil {
		t.Fatal("expected unset weak ref to fail to upgrade")
	}
}

func TestItem_Clone_Detached(t *testing.T) {
	it := sampleItem()
	clone := it.Clone()
	clone.Children[0] = primitive.Primitive{Sender: "mutated"}
	clone.Text = "mutated"

	if it.Children[0] == clone.Children[0] {
		t.Fatal("expected clone's children slice to be detached from the original")
	}
	if it.Text == clone.Text {
		t.Fatal("expected clone mutation to not affect original")
	}
}
