// Package daemon runs watch mode: a single-instance lock, a filesystem
// watcher feeding settled files, and a bounded worker pool handing each file
// to the job orchestrator.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/gofrs/flock"

	"winnow/internal/config"
	"winnow/internal/logging"
	"winnow/internal/registry"
	"winnow/internal/transcode"
	"winnow/internal/watcher"
)

// JobRunner is the slice of the orchestrator the daemon drives.
type JobRunner interface {
	Run(ctx context.Context, sourcePath string) (*transcode.Job, error)
	Kill(id registry.ID)
	Registry() *registry.Registry
}

// Daemon supervises watch mode until its context is cancelled.
type Daemon struct {
	cfg     *config.Config
	logger  *slog.Logger
	runner  JobRunner
	watcher *watcher.Watcher
}

// New constructs a daemon around an orchestrator and a watcher.
func New(cfg *config.Config, logger *slog.Logger, runner JobRunner, w *watcher.Watcher) *Daemon {
	return &Daemon{
		cfg:     cfg,
		logger:  logging.NewComponentLogger(logger, "daemon"),
		runner:  runner,
		watcher: w,
	}
}

// Run acquires the instance lock, starts the watcher, and processes files
// until ctx is cancelled. On shutdown every in-flight job is cancelled
// through the registry and the worker pool is drained before returning.
func (d *Daemon) Run(ctx context.Context) error {
	if err := d.cfg.EnsureDirectories(); err != nil {
		return fmt.Errorf("ensure directories: %w", err)
	}

	lock := flock.New(filepath.Join(d.cfg.Paths.LogDir, "winnow.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire instance lock: %w", err)
	}
	if !locked {
		return errors.New("another winnow instance is already running")
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			d.logger.Warn("release instance lock", logging.Error(err))
		}
	}()

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	if err := d.watcher.Start(runCtx); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}

	workers := d.cfg.Watch.MaxConcurrent
	if workers <= 0 {
		workers = 1
	}
	d.logger.Info("watch mode started",
		logging.Int("workers", workers),
		logging.Any("dirs", d.cfg.Watch.Dirs))

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d.work(runCtx)
		}()
	}

	<-runCtx.Done()

	// Cooperative shutdown: deregistering every active job makes each one
	// cancel its worker on the next progress tick.
	for _, id := range d.runner.Registry().Active() {
		d.runner.Kill(id)
	}
	wg.Wait()
	d.logger.Info("watch mode stopped")
	return nil
}

// work drains the watcher channel. A failed job never stops the pool; the
// outcome is logged and the worker moves on.
func (d *Daemon) work(ctx context.Context) {
	for path := range d.watcher.Files() {
		job, err := d.runner.Run(ctx, path)
		switch {
		case err != nil:
			d.logger.Error("job failed",
				logging.String(logging.FieldSource, path),
				logging.Error(err))
		case job.DestinationPath == "":
			d.logger.Info("job skipped",
				logging.String(logging.FieldSource, path))
		default:
			d.logger.Info("job finished",
				logging.String(logging.FieldSource, path),
				logging.String("destination", job.DestinationPath))
		}
	}
}
