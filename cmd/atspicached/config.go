package main

import (
	"os"
	"path/filepath"
)

// defaultDataPath returns ~/.atspicached/<filename>, falling back to a
// CWD-relative path if the home directory can't be resolved.
func defaultDataPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filename
	}
	return filepath.Join(home, ".atspicached", filename)
}
