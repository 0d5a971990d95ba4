package main

import (
	"context"
	"fmt"

	"github.com/openscreenreader/atspicache/internal/config"
	"github.com/openscreenreader/atspicache/internal/history"
)

// cmdHistory implements the "flat review" / "repeat last utterance"
// operations (SPEC_FULL.md §4.11) as a standalone CLI, reading
// directly from the durable history log rather than a running
// daemon's in-memory state.
//
// Usage: atspicached history [--last] [--n=<count>]
func cmdHistory(args []string) error {
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

	last := false
	n := 20
	for _, arg := range args {
		if arg == "--last" {
			last = true
		}
		if len(arg) > 4 && arg[:4] == "--n=" {
			fmt.Sscanf(arg[4:], "%d", &n)
		}
	}

	if last {
		rec, ok, err := hist.Last(ctx)
		if err != nil {
			return fmt.Errorf("last: %w", err)
		}
		if !ok {
			fmt.Println("(history is empty)")
			return nil
		}
		fmt.Printf("%s  %s\n", rec.CreatedAt, rec.Text)
		return nil
	}

	recs, err := hist.Recent(ctx, n)
	if err != nil {
		return fmt.Errorf("recent: %w", err)
	}
	for _, rec := range recs {
		fmt.Printf("%s  %s\n", rec.CreatedAt, rec.Text)
	}
	return nil
}
