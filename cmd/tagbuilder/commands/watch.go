package commands

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"git.home.luguber.info/inful/tagbuilder/internal/config"
	foundationerrors "git.home.luguber.info/inful/tagbuilder/internal/foundation/errors"
	"git.home.luguber.info/inful/tagbuilder/internal/logfields"
	"git.home.luguber.info/inful/tagbuilder/internal/watch"
)

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	SourceFlags `embed:""`
	OutputFlags `embed:""`

	Schedule string        `help:"Also regenerate on this cron schedule, e.g. '*/15 * * * *'" placeholder:"CRON"`
	Debounce time.Duration `help:"Quiet period before regenerating after a change (default from config)"`
}

func (c *WatchCmd) Run(g *Global, root *CLI) error {
	cfg, logger, err := loadConfig(g, root, c.SourceFlags.apply, c.OutputFlags.apply, c.apply)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runWatch(ctx, cfg, logger)
}

func (c *WatchCmd) apply(cfg *config.Config) error {
	if c.Schedule != "" {
		cfg.Watch.Schedule = c.Schedule
	}
	if c.Debounce > 0 {
		cfg.Watch.Debounce = c.Debounce.String()
	}
	return nil
}

// runWatch generates once, then regenerates on post changes and on the
// configured schedule until ctx is done. Runs never overlap.
func runWatch(ctx context.Context, cfg *config.Config, logger *slog.Logger) error {
	gen := newGenerator(cfg, logger)

	var mu sync.Mutex
	regenerate := func(ctx context.Context, reason string) error {
		mu.Lock()
		defer mu.Unlock()
		logger.Debug("Regenerating tag pages", logfields.Reason(reason))
		_, err := gen.Run(ctx)
		return err
	}
	// Errors after startup are logged by the generator; the watch keeps going.
	trigger := func(ctx context.Context, reason string) { _ = regenerate(ctx, reason) }

	if err := regenerate(ctx, "startup"); err != nil {
		return err
	}

	if cfg.Watch.Schedule != "" {
		sched, err := watch.NewScheduler(logger)
		if err != nil {
			return foundationerrors.RuntimeError("cannot start scheduler").WithCause(err).Build()
		}
		if _, err := sched.ScheduleCron("regenerate", cfg.Watch.Schedule, func() { trigger(ctx, "schedule") }); err != nil {
			return foundationerrors.RuntimeError("cannot schedule regeneration").
				WithCause(err).
				WithContext("schedule", cfg.Watch.Schedule).
				Build()
		}
		sched.Start()
		defer func() {
			if err := sched.Stop(); err != nil {
				logger.Warn("Failed to stop scheduler", logfields.Error(err))
			}
		}()
	}

	w, err := watch.NewWatcher(cfg.PostsDir, watch.Options{
		Extensions: cfg.Extensions,
		Recursive:  cfg.Recursive,
		Debounce:   cfg.Watch.DebounceDuration(),
		Logger:     logger,
	}, func(ctx context.Context) { trigger(ctx, "change") })
	if err != nil {
		return foundationerrors.RuntimeError("cannot watch posts").WithCause(err).Build()
	}
	if err := w.Run(ctx); err != nil {
		return foundationerrors.RuntimeError("post watcher stopped").
			WithCause(err).
			WithContext("posts_dir", cfg.PostsDir).
			Build()
	}
	return nil
}

