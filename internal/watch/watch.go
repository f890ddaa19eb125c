// Package watch runs audits on a recurring cron schedule.
package watch

import (
	"context"
	"fmt"
	"log/slog"

	cronlib "github.com/robfig/cron/v3"

	"github.com/pagewatch/pagewatch/internal/config"
	"github.com/pagewatch/pagewatch/internal/history"
	"github.com/pagewatch/pagewatch/internal/logging"
	"github.com/pagewatch/pagewatch/internal/run"
)

// Watcher schedules recurring audit runs.
type Watcher struct {
	cfg    *config.Config
	runner *run.Runner
	store  *history.Store
	logger *slog.Logger
}

// New returns a watcher. store may be nil to skip history recording.
func New(cfg *config.Config, runner *run.Runner, store *history.Store) *Watcher {
	return &Watcher{
		cfg:    cfg,
		runner: runner,
		store:  store,
		logger: logging.Component("watch"),
	}
}

// Run audits once immediately, then on the configured schedule, until ctx is
// cancelled. A failing audit run is logged, never fatal; the next tick tries
// again.
func (w *Watcher) Run(ctx context.Context) error {
	scheduler := cronlib.New()
	if _, err := scheduler.AddFunc(w.cfg.Schedule, func() { w.tick(ctx) }); err != nil {
		return fmt.Errorf("invalid schedule %q: %w", w.cfg.Schedule, err)
	}

	w.tick(ctx)

	scheduler.Start()
	w.logger.Info("watch_started", "schedule", w.cfg.Schedule, "pages", len(w.cfg.Pages))

	<-ctx.Done()
	stopped := scheduler.Stop()
	<-stopped.Done()
	return nil
}

func (w *Watcher) tick(ctx context.Context) {
	if ctx.Err() != nil {
		return
	}

	result, err := w.runner.Run(ctx, w.cfg.Pages)
	if err != nil {
		w.logger.Error("scheduled_run_failed", "error", err)
		return
	}

	w.logger.Info("scheduled_run_finished", "run", result.ID, "passed", result.Passed)

	if w.store != nil {
		if err := w.store.RecordRun(result); err != nil {
			w.logger.Error("record_run_failed", "run", result.ID, "error", err)
		}
	}
}
