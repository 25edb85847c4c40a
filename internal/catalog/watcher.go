package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher reloads a Store whenever its source file changes on disk.
// The parent directory is watched so that editors which replace the file
// (write to temp + rename) are still picked up.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	store       *Store
	path        string
	debounceDur time.Duration
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool
	log         *zap.Logger
}

func NewWatcher(store *Store, path string, log *zap.Logger) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create file watcher: %w", err)
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Watcher{
		watcher:     w,
		store:       store,
		path:        filepath.Clean(path),
		debounceDur: 250 * time.Millisecond,
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
		log:         log,
	}, nil
}

// Start begins watching in a goroutine. Calling Start twice is a no-op.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	dir := filepath.Dir(w.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	w.running = true
	w.log.Info("watching catalog file", zap.String("path", w.path))

	go w.run(ctx)
	return nil
}

// Stop ends the watch loop and waits for it to exit. Safe to call more than once.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		_ = w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		w.log.Warn("closing catalog watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != w.path {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounceDur)
			} else {
				timer.Reset(w.debounceDur)
			}
			timerCh = timer.C
		case <-timerCh:
			timerCh = nil
			_ = w.store.Reload(w.path)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.log.Warn("catalog watcher error", zap.Error(err))
		}
	}
}
