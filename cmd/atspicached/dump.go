package main

import (
	"fmt"
	"os"

	"github.com/openscreenreader/atspicache/internal/config"
	"github.com/openscreenreader/atspicache/internal/diagnostics"
)

// writeDump snapshots c and writes it to path, optionally encrypted to
// recipient (see diagnostics.Dump). Called by "serve" on SIGUSR1,
// where the live cache actually lives; there is no control socket in
// this repository for reaching a cache in a separate process.
func writeDump(c diagnostics.Snapshotter, path, recipient string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create dump file: %w", err)
	}
	defer f.Close()
	if err := diagnostics.Dump(f, c, recipient); err != nil {
		return fmt.Errorf("write dump: %w", err)
	}
	return nil
}

// cmdDump decrypts an age-encrypted diagnostics dump produced by a
// running daemon (written via SIGUSR1; see writeDump and serve.go).
// Producing the dump requires a live cache, which only exists inside
// a running atspicached; there is no control socket in this
// repository for reaching into a live process from the CLI, so this
// subcommand is scoped to the decrypt side, which an operator runs
// against a bug-report attachment after the fact.
//
// Usage: atspicached dump --decrypt <file>
func cmdDump(args []string) error {
	var path string
	for i, arg := range args {
		if arg == "--decrypt" && i+1 < len(args) {
			path = args[i+1]
		}
	}
	if path == "" {
		return fmt.Errorf("usage: atspicached dump --decrypt <file>")
	}

	cfg, err := config.Load(configPath(args))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if cfg.DiagnosticsIdentity == "" {
		return fmt.Errorf("ATSPICACHED_DIAGNOSTICS_IDENTITY must be set to decrypt a dump")
	}

	ciphertext, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read dump: %w", err)
	}

	plaintext, err := diagnostics.Decrypt(ciphertext, cfg.DiagnosticsIdentity)
	if err != nil {
		return fmt.Errorf("decrypt dump: %w", err)
	}

	_, err = os.Stdout.Write(plaintext)
	return err
}
