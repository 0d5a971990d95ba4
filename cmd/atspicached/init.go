package main

import (
	"fmt"
	"os"
	"path/filepath"
)

// cmdInit writes a default YAML config file if one does not already
// exist at the resolved config path.
func cmdInit(args []string) error {
	path := configPath(args)

	if _, err := os.Stat(path); err == nil {
		fmt.Printf("Config file already exists: %s\n", path)
		return nil
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	defaultCfg := `# atspicached configuration
# Non-empty values here override the ATSPICACHED_* env vars;
# see internal/config for the full list.

log_level: info
event_channel_capacity: 128
announcement_capacity: 64
policy_script: ""
inverted_polarity: true
history_db_path: ""
history_cap: 500
diagnostics_recipient: ""
diagnostics_dump_path: ""
`
	if err := os.WriteFile(path, []byte(defaultCfg), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Config file created: %s\n", path)
	return nil
}
