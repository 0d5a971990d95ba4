package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/openscreenreader/atspicache/internal/announce"
	"github.com/openscreenreader/atspicache/internal/cache"
	"github.com/openscreenreader/atspicache/internal/config"
	"github.com/openscreenreader/atspicache/internal/dispatch"
	"github.com/openscreenreader/atspicache/internal/history"
)

// cmdServe wires the cache, announcement bus, policy, dispatcher, and
// history writer and runs them until interrupted. The daemon does not
// itself speak to the accessibility bus: per spec.md §1/§6 that
// transport is an external collaborator, supplied by whatever embeds
// this binary's packages against a real busclient.Connection and feeds
// bus signals into the dispatcher's Submit. Run with a nil connection,
// this process still stands up every owned service and exits cleanly
// on SIGINT/SIGTERM; nothing calls Submit, so it sits idle.
func cmdServe(args []string) error {
	ctx, cancel := signal.NotifyContext(
		context.Background(), syscall.SIGINT, syscall.SIGTERM,
	)
	defer cancel()

	cfg, err := config.Load(configPath(args))
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: cfg.LogLevel,
	}))
	slog.SetDefault(logger)

	var policy *announce.Policy
	if cfg.PolicyScript != "" {
		data, err := os.ReadFile(cfg.PolicyScript)
		if err != nil {
			return fmt.Errorf("read policy script: %w", err)
		}
		policy, err = announce.LoadPolicy(string(data))
		if err != nil {
			return fmt.Errorf("load policy: %w", err)
		}
	}

	hist, err := history.Open(ctx, cfg.HistoryDBPath, cfg.HistoryCap)
	if err != nil {
		return fmt.Errorf("open history log: %w", err)
	}
	defer hist.Close()

	c := cache.New()
	defer c.Shutdown()

	bus := announce.NewBus(cfg.AnnouncementCapacity)
	d := dispatch.New(c, nil, bus, policy, cfg.EventChannelCapacity, cfg.InvertedPolarity)

	logger.Info("atspicached starting",
		"event_channel_capacity", cfg.EventChannelCapacity,
		"announcement_capacity", cfg.AnnouncementCapacity,
		"policy_script", cfg.PolicyScript,
		"history_db", cfg.HistoryDBPath,
	)

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		return d.Run(gctx)
	})

	g.Go(func() error {
		bus.Consume(gctx, func(a announce.Announcement) {
			if err := hist.Append(context.Background(), a, time.Now()); err != nil {
				logger.Warn("failed to append history record", "error", err)
			}
		})
		return nil
	})

	// SIGUSR1 triggers a point-in-time diagnostics dump of the live
	// cache (SPEC_FULL.md §4.12) without requiring a control socket.
	dumpSig := make(chan os.Signal, 1)
	signal.Notify(dumpSig, syscall.SIGUSR1)
	defer signal.Stop(dumpSig)

	g.Go(func() error {
		for {
			select {
			case <-gctx.Done():
				return nil
			case <-dumpSig:
				if err := writeDump(c, cfg.DiagnosticsDumpPath, cfg.DiagnosticsRecipient); err != nil {
					logger.Warn("diagnostics dump failed", "error", err)
					continue
				}
				logger.Info("diagnostics dump written", "path", cfg.DiagnosticsDumpPath)
			}
		}
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("serve: %w", err)
	}
	logger.Info("atspicached stopped")
	return nil
}
