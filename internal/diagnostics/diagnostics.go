// Package diagnostics implements the cache snapshot dump
// (SPEC_FULL.md §4.12): a point-in-time JSON export of every cached
// item, for attaching to bug reports. Screen-reader text content can
// carry sensitive data a misbehaving application mirrors into its
// accessible text (passwords, private messages), so the dump can
// optionally be encrypted to a configured age recipient before it
// ever touches disk.
package diagnostics

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"filippo.io/age"

	"github.com/openscreenreader/atspicache/internal/cacheitem"
)

// Snapshotter is the one operation diagnostics needs from the cache.
type Snapshotter interface {
	Snapshot() []cacheitem.Item
}

// Dump writes a JSON snapshot of c's current contents to w. If
// recipient is non-empty, the JSON is encrypted to that age recipient
// (an X25519 public key) before being written; an empty recipient
// writes plain JSON.
func Dump(w io.Writer, c Snapshotter, recipient string) error {
	data, err := json.MarshalIndent(c.Snapshot(), "", "  ")
	if err != nil {
		return fmt.Errorf("diagnostics: marshal snapshot: %w", err)
	}

	if recipient == "" {
		_, err := w.Write(data)
		return err
	}

	rec, err := age.ParseX25519Recipient(recipient)
	if err != nil {
		return fmt.Errorf("diagnostics: parse recipient: %w", err)
	}
	enc, err := age.Encrypt(w, rec)
	if err != nil {
		return fmt.Errorf("diagnostics: encrypt: %w", err)
	}
	if _, err := enc.Write(data); err != nil {
		enc.Close()
		return fmt.Errorf("diagnostics: write ciphertext: %w", err)
	}
	return enc.Close()
}

// Decrypt reverses an encrypted Dump, for tests and for operators
// reading back a bug report attachment. identity is an age X25519
// secret key.
func Decrypt(ciphertext []byte, identity string) ([]byte, error) {
	id, err := age.ParseX25519Identity(identity)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: parse identity: %w", err)
	}
	r, err := age.Decrypt(bytes.NewReader(ciphertext), id)
	if err != nil {
		return nil, fmt.Errorf("diagnostics: decrypt: %w", err)
	}
	return io.ReadAll(r)
}
