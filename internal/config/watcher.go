package config

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/jonathan/favor-advisor/internal/analysis"
	"go.uber.org/zap"
)

// ErrWatcherStopped is returned by Start after Stop.
var ErrWatcherStopped = errors.New("exclusions watcher stopped")

// ExclusionWatcher reloads an exclusions file into an analysis.ExclusionStore
// whenever the file changes. Rapid successive writes are coalesced.
type ExclusionWatcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	path        string
	store       *analysis.ExclusionStore
	logger      *zap.Logger
	debounceDur time.Duration
	pendingAt   time.Time
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	closed      bool
	reloads     int
}

// NewExclusionWatcher creates a watcher for path. A nil logger discards logs.
func NewExclusionWatcher(path string, store *analysis.ExclusionStore, logger *zap.Logger) (*ExclusionWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create file watcher: %w", err)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		_ = watcher.Close()
		return nil, fmt.Errorf("failed to resolve %s: %w", path, err)
	}

	return &ExclusionWatcher{
		watcher:     watcher,
		path:        abs,
		store:       store,
		logger:      logger,
		debounceDur: 300 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}, nil
}

// WithDebounce sets how long the file must be quiet before reloading.
func (w *ExclusionWatcher) WithDebounce(d time.Duration) *ExclusionWatcher {
	w.debounceDur = d
	return w
}

// Start loads the file once and then watches it. Non-blocking.
// The parent directory is watched so editors that replace the file are seen.
func (w *ExclusionWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return ErrWatcherStopped
	}
	if w.running {
		w.mu.Unlock()
		return nil
	}
	w.running = true
	w.mu.Unlock()

	if err := w.Reload(); err != nil {
		w.logger.Warn("initial exclusions load failed", zap.String("path", w.path), zap.Error(err))
	}

	if err := w.watcher.Add(filepath.Dir(w.path)); err != nil {
		w.mu.Lock()
		w.running = false
		w.mu.Unlock()
		return fmt.Errorf("failed to watch %s: %w", w.path, err)
	}
	w.logger.Info("watching exclusions file", zap.String("path", w.path))

	go w.run(ctx)
	return nil
}

// Stop stops the event loop if it is running and releases the underlying
// file watcher. It is safe to call on a watcher that never started.
func (w *ExclusionWatcher) Stop() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		w.logger.Error("error closing exclusions watcher", zap.Error(err))
	}
}

// Reload reads the file and replaces the store contents.
func (w *ExclusionWatcher) Reload() error {
	names, err := LoadExclusionsFile(w.path)
	if err != nil {
		return err
	}
	w.store.Replace(names)

	w.mu.Lock()
	w.reloads++
	w.mu.Unlock()

	w.logger.Info("reloaded junk exclusions", zap.String("path", w.path), zap.Int("count", len(names)))
	return nil
}

// Reloads returns how many successful reloads have happened.
func (w *ExclusionWatcher) Reloads() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.reloads
}

func (w *ExclusionWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	interval := w.debounceDur / 3
	if interval <= 0 {
		interval = 10 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return

		case <-w.stopCh:
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Error("exclusions watcher error", zap.Error(err))

		case <-ticker.C:
			w.processPending()
		}
	}
}

func (w *ExclusionWatcher) handleEvent(event fsnotify.Event) {
	if filepath.Clean(event.Name) != w.path {
		return
	}
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) && !event.Has(fsnotify.Rename) {
		return
	}
	w.logger.Debug("exclusions file event", zap.String("op", event.Op.String()))

	w.mu.Lock()
	w.pendingAt = time.Now()
	w.mu.Unlock()
}

func (w *ExclusionWatcher) processPending() {
	w.mu.Lock()
	if w.pendingAt.IsZero() || time.Since(w.pendingAt) < w.debounceDur {
		w.mu.Unlock()
		return
	}
	w.pendingAt = time.Time{}
	w.mu.Unlock()

	// A failed reload keeps the previous exclusions.
	if err := w.Reload(); err != nil {
		w.logger.Warn("exclusions reload failed", zap.String("path", w.path), zap.Error(err))
	}
}
