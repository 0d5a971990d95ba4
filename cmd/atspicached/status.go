package main

import (
	"context"
	"fmt"

	"github.com/openscreenreader/atspicache/internal/config"
	"github.com/openscreenreader/atspicache/internal/history"
)

// cmdStatus reports the resolved configuration and a summary of the
// durable history log. It does not require atspicached to be running:
// the history database is the one piece of daemon state that
// survives the process, so this is everything a stopped daemon can
// honestly report.
func cmdStatus(args []string) error {
	ctx := context.Background()

	cfg, err := config.Load(configPath(args))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	hist, err := history.Open(ctx, cfg.HistoryDBPath, cfg.HistoryCap)
	if err != nil {
		return fmt.Errorf("open history log: %w", err)
	}
	defer hist.Close()

	recs, err := hist.Recent(ctx, cfg.HistoryCap)
	if err != nil {
		return fmt.Errorf("list history: %w", err)
	}

	fmt.Printf("atspicached status (history db: %s)\n", cfg.HistoryDBPath)
	fmt.Printf("  Event channel capacity:        %d\n", cfg.EventChannelCapacity)
	fmt.Printf("  Announcement bus capacity:     %d\n", cfg.AnnouncementCapacity)
	fmt.Printf("  State-set inverted polarity:   %t\n", cfg.InvertedPolarity)
	fmt.Printf("  Announcement policy script:    %s\n", orNone(cfg.PolicyScript))
	fmt.Printf("  Diagnostics dump path:         %s\n", cfg.DiagnosticsDumpPath)
	fmt.Printf("  Diagnostics recipient:         %s\n", orNone(cfg.DiagnosticsRecipient))
	fmt.Printf("  History rows:                  %d (cap %d)\n", len(recs), cfg.HistoryCap)
	if len(recs) > 0 {
		last := recs[len(recs)-1]
		fmt.Printf("  Last announcement:             %q (%s)\n", last.Text, last.CreatedAt)
	}

	return nil
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
