// Package config loads atspicached's configuration from environment
// variables with an optional YAML file overlay, following the same
// envOr/parseLogLevel shape used throughout this codebase's teacher
// lineage.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds application configuration loaded from environment
// variables and, optionally, a YAML file.
type Config struct {
	LogLevel slog.Level // slog level

	EventChannelCapacity int // busclient.Event buffer depth, internal/dispatch
	AnnouncementCapacity int // announce.Bus buffer depth

	PolicyScript     string // path to a goja announcement-policy script; empty disables filtering
	InvertedPolarity bool   // internal/stateset polarity feature flag

	HistoryDBPath string // sqlite file for internal/history
	HistoryCap    int    // max rows retained; non-positive disables trimming

	DiagnosticsRecipient string // age X25519 recipient for internal/diagnostics dumps; empty writes plain JSON
	DiagnosticsIdentity  string // age X25519 identity, for "atspicached dump --decrypt"
	DiagnosticsDumpPath  string // where "serve" writes a snapshot on SIGUSR1
}

// fileConfig is the shape of the optional YAML overlay.
type fileConfig struct {
	LogLevel             string `yaml:"log_level"`
	EventChannelCapacity int    `yaml:"event_channel_capacity"`
	AnnouncementCapacity int    `yaml:"announcement_capacity"`
	PolicyScript         string `yaml:"policy_script"`
	InvertedPolarity     *bool  `yaml:"inverted_polarity"`
	HistoryDBPath        string `yaml:"history_db_path"`
	HistoryCap           int    `yaml:"history_cap"`
	DiagnosticsRecipient string `yaml:"diagnostics_recipient"`
	DiagnosticsDumpPath  string `yaml:"diagnostics_dump_path"`
}

// defaultDataPath returns ~/.atspicached/<filename>, falling back to a
// CWD-relative path if the home directory can't be resolved.
func defaultDataPath(filename string) string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filename
	}
	return filepath.Join(home, ".atspicached", filename)
}

// Load reads configuration from environment variables, then overlays a
// YAML file at configPath if one exists. An empty configPath skips the
// overlay.
func Load(configPath string) (*Config, error) {
	cfg := &Config{
		LogLevel:             parseLogLevel(envOr("ATSPICACHED_LOG_LEVEL", "info")),
		EventChannelCapacity: envOrInt("ATSPICACHED_EVENT_CHANNEL_CAPACITY", 128),
		AnnouncementCapacity: envOrInt("ATSPICACHED_ANNOUNCEMENT_CAPACITY", 64),
		PolicyScript:         envOr("ATSPICACHED_POLICY_SCRIPT", ""),
		InvertedPolarity:     envOrBool("ATSPICACHED_INVERTED_POLARITY", true),
		HistoryDBPath:        envOr("ATSPICACHED_HISTORY_DB", defaultDataPath("history.db")),
		HistoryCap:           envOrInt("ATSPICACHED_HISTORY_CAP", 500),
		DiagnosticsRecipient: envOr("ATSPICACHED_DIAGNOSTICS_RECIPIENT", ""),
		DiagnosticsIdentity:  envOr("ATSPICACHED_DIAGNOSTICS_IDENTITY", ""),
		DiagnosticsDumpPath:  envOr("ATSPICACHED_DIAGNOSTICS_DUMP_PATH", defaultDataPath("dump.json")),
	}

	if configPath == "" {
		return cfg, nil
	}
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", configPath, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", configPath, err)
	}
	applyFile(cfg, &fc)
	return cfg, nil
}

// applyFile overlays non-zero fields of fc onto cfg. Unset YAML fields
// leave the environment-derived value in place.
func applyFile(cfg *Config, fc *fileConfig) {
	if fc.LogLevel != "" {
		cfg.LogLevel = parseLogLevel(fc.LogLevel)
	}
	if fc.EventChannelCapacity > 0 {
		cfg.EventChannelCapacity = fc.EventChannelCapacity
	}
	if fc.AnnouncementCapacity > 0 {
		cfg.AnnouncementCapacity = fc.AnnouncementCapacity
	}
	if fc.PolicyScript != "" {
		cfg.PolicyScript = fc.PolicyScript
	}
	if fc.InvertedPolarity != nil {
		cfg.InvertedPolarity = *fc.InvertedPolarity
	}
	if fc.HistoryDBPath != "" {
		cfg.HistoryDBPath = fc.HistoryDBPath
	}
	if fc.HistoryCap != 0 {
		cfg.HistoryCap = fc.HistoryCap
	}
	if fc.DiagnosticsRecipient != "" {
		cfg.DiagnosticsRecipient = fc.DiagnosticsRecipient
	}
	if fc.DiagnosticsDumpPath != "" {
		cfg.DiagnosticsDumpPath = fc.DiagnosticsDumpPath
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	var n int
	if _, err := fmt.Sscanf(v, "%d", &n); err != nil {
		return fallback
	}
	return n
}

func envOrBool(key string, fallback bool) bool {
	v := os.Getenv(key)
	switch v {
	case "true", "1":
		return true
	case "false", "0":
		return false
	default:
		return fallback
	}
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
