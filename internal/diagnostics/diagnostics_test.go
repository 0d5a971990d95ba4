package diagnostics

import (
	"bytes"
	"encoding/json"
	"testing"

	"filippo.io/age"

	"github.com/openscreenreader/atspicache/internal/cacheitem"
	"github.com/openscreenreader/atspicache/internal/primitive"
)

type fakeSnapshotter struct{ items []cacheitem.Item }

func (f fakeSnapshotter) Snapshot() []cacheitem.Item { return f.items }

func TestDump_PlainWithoutRecipient(t *testing.T) {
	items := []cacheitem.Item{{Object: primitive.Primitive{Sender: ":1.1", ID: primitive.NumberID(1)}, Text: "hello"}}
	var buf bytes.Buffer
	if err := Dump(&buf, fakeSnapshotter{items: items}, ""); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var got []cacheitem.Item
	if err := json.Unmarshal(buf.Bytes(), &got); err != nil {
		t.Fatalf("expected plain JSON output, got unmarshal error: %v", err)
	}
	if len(got) != 1 || got[0].Text != "hello" {
		t.Fatalf("unexpected dump contents: %+v", got)
	}
}

func TestDump_EncryptedRoundTrip(t *testing.T) {
	identity, err := age.GenerateX25519Identity()
	if err != nil {
		t.Fatalf("unexpected error generating identity: %v", err)
	}

	items := []cacheitem.Item{{Object: primitive.Primitive{Sender: ":1.1", ID: primitive.NumberID(1)}, Text: "secret message"}}
	var buf bytes.Buffer
	if err := Dump(&buf, fakeSnapshotter{items: items}, identity.Recipient().String()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if bytes.Contains(buf.Bytes(), []byte("secret message")) {
		t.Fatal("expected ciphertext, found plaintext in the encrypted dump")
	}

	plaintext, err := Decrypt(buf.Bytes(), identity.String())
	if err != nil {
		t.Fatalf("unexpected decrypt error: %v", err)
	}
	var got []cacheitem.Item
	if err := json.Unmarshal(plaintext, &got); err != nil {
		t.Fatalf("unexpected error unmarshaling decrypted JSON: %v", err)
	}
	if len(got) != 1 || got[0].Text != "secret message" {
		t.Fatalf("unexpected round-tripped contents: %+v", got)
	}
}

func TestDump_InvalidRecipient(t *testing.T) {
	var buf bytes.Buffer
	if err := Dump(&buf, fakeSnapshotter{}, "not-a-real-recipient"); err == nil {
		t.Fatal("expected an error for a malformed recipient string")
	}
}
