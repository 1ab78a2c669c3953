// Package watcher emits media files appearing under the configured watch
// directories. Directories are watched recursively and a settle delay filters
// out files that are still being written.
package watcher

import (
	"context"
	"errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"winnow/internal/config"
	"winnow/internal/logging"
)

// Watcher surfaces settled media files through Files. One file is emitted at
// most once per settle window; a file that keeps growing keeps its timer
// pushed back.
type Watcher struct {
	dirs       []string
	extensions map[string]struct{}
	settle     time.Duration
	logger     *slog.Logger

	fsw     *fsnotify.Watcher
	settled chan string
	files   chan string
	done    chan struct{}

	mu      sync.Mutex
	pending map[string]*time.Timer
}

// New constructs a watcher from configuration. Start must be called before
// any files are emitted.
func New(cfg *config.Config, logger *slog.Logger) (*Watcher, error) {
	if len(cfg.Watch.Dirs) == 0 {
		return nil, errors.New("watch mode requires at least one watch directory")
	}

	extensions := make(map[string]struct{}, len(cfg.Watch.Extensions))
	for _, ext := range cfg.Watch.Extensions {
		extensions[strings.ToLower(ext)] = struct{}{}
	}

	settle := time.Duration(cfg.Watch.SettleSeconds) * time.Second
	if settle <= 0 {
		settle = 5 * time.Second
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		dirs:       cfg.Watch.Dirs,
		extensions: extensions,
		settle:     settle,
		logger:     logging.NewComponentLogger(logger, "watcher"),
		fsw:        fsw,
		settled:    make(chan string, 16),
		files:      make(chan string, 16),
		done:       make(chan struct{}),
		pending:    make(map[string]*time.Timer),
	}, nil
}

// Files yields settled file paths. The channel is closed when the watcher
// shuts down.
func (w *Watcher) Files() <-chan string {
	return w.files
}

// Start registers the watch directories, queues files already present, and
// begins processing filesystem events until the context is cancelled.
func (w *Watcher) Start(ctx context.Context) error {
	for _, dir := range w.dirs {
		if err := w.addRecursive(dir); err != nil {
			_ = w.fsw.Close()
			return err
		}
	}
	go w.loop(ctx)
	return nil
}

// addRecursive registers dir and every subdirectory, scheduling matching
// files encountered on the way so a directory dropped in whole is picked up.
func (w *Watcher) addRecursive(dir string) error {
	return filepath.WalkDir(dir, func(path string, entry fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if entry.IsDir() {
			if err := w.fsw.Add(path); err != nil {
				return err
			}
			w.logger.Debug("watching directory", logging.String("dir", path))
			return nil
		}
		if w.matches(path) {
			w.schedule(path)
		}
		return nil
	})
}

func (w *Watcher) matches(path string) bool {
	if len(w.extensions) == 0 {
		return true
	}
	_, ok := w.extensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

// schedule arms (or re-arms) the settle timer for path. The file is emitted
// only after a full settle window passes without further writes.
func (w *Watcher) schedule(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if timer, ok := w.pending[path]; ok {
		timer.Reset(w.settle)
		return
	}
	w.pending[path] = time.AfterFunc(w.settle, func() {
		w.emit(path)
	})
}

// emit hands a settled path to the loop. Timers never touch the files channel
// directly, so closing it on shutdown stays safe.
func (w *Watcher) emit(path string) {
	w.mu.Lock()
	delete(w.pending, path)
	w.mu.Unlock()

	// A file removed during the settle window is not emitted.
	if _, err := os.Stat(path); err != nil {
		return
	}
	select {
	case w.settled <- path:
	case <-w.done:
	}
}

func (w *Watcher) loop(ctx context.Context) {
	defer close(w.files)
	defer w.shutdown()

	for {
		select {
		case <-ctx.Done():
			return
		case path := <-w.settled:
			select {
			case w.files <- path:
				w.logger.Info("file settled", logging.String(logging.FieldSource, path))
			case <-ctx.Done():
				return
			}
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", logging.Error(err))
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	switch {
	case event.Op.Has(fsnotify.Create):
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := w.addRecursive(event.Name); err != nil {
				w.logger.Warn("failed to watch new directory",
					logging.String("dir", event.Name), logging.Error(err))
			}
			return
		}
		if w.matches(event.Name) {
			w.schedule(event.Name)
		}
	case event.Op.Has(fsnotify.Write):
		if w.matches(event.Name) {
			w.schedule(event.Name)
		}
	case event.Op.Has(fsnotify.Remove), event.Op.Has(fsnotify.Rename):
		w.cancelPending(event.Name)
	}
}

func (w *Watcher) cancelPending(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if timer, ok := w.pending[path]; ok {
		timer.Stop()
		delete(w.pending, path)
	}
}

func (w *Watcher) shutdown() {
	close(w.done)
	w.mu.Lock()
	for path, timer := range w.pending {
		timer.Stop()
		delete(w.pending, path)
	}
	w.mu.Unlock()
	_ = w.fsw.Close()
}
