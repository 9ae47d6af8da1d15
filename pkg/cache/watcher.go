package cache

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

const (
	defaultDebounce = 100 * time.Millisecond
	minFlushEvery   = time.Millisecond
)

// WatcherOption customises a Watcher.
type WatcherOption func(*Watcher)

// WithDebounce sets how long a path must stay quiet before OnChange fires.
func WithDebounce(d time.Duration) WatcherOption {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithOnChange registers a callback invoked, after debouncing, with each
// changed file path.
func WithOnChange(fn func(path string)) WatcherOption {
	return func(w *Watcher) {
		w.onChange = fn
	}
}

// WithWatcherLogger injects a logger for watcher events.
func WithWatcherLogger(logger *zap.Logger) WatcherOption {
	return func(w *Watcher) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// Watcher invalidates cached file templates as soon as fsnotify reports a
// change in one of the watched directories.
type Watcher struct {
	cache    *Cache
	watcher  *fsnotify.Watcher
	logger   *zap.Logger
	debounce time.Duration
	onChange func(path string)

	mu      sync.Mutex
	pending map[string]time.Time
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewWatcher creates a watcher bound to cache.
func NewWatcher(cache *Cache, options ...WatcherOption) (*Watcher, error) {
	if cache == nil {
		return nil, errors.New("cache: watcher requires a cache")
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		cache:    cache,
		watcher:  fw,
		logger:   zap.NewNop(),
		debounce: defaultDebounce,
		pending:  make(map[string]time.Time),
	}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(w)
	}
	return w, nil
}

// Add starts watching dirs. Watching a file's directory rather than the file
// itself survives editors that replace files on save.
func (w *Watcher) Add(dirs ...string) error {
	for _, dir := range dirs {
		if err := w.watcher.Add(filepath.Clean(dir)); err != nil {
			return err
		}
		w.logger.Debug("watching directory", zap.String("dir", dir))
	}
	return nil
}

// Start begins processing events in a goroutine. It is a no-op when already
// running.
func (w *Watcher) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.stopCh = make(chan struct{})
	w.doneCh = make(chan struct{})
	w.mu.Unlock()

	go w.run(ctx)
}

// Stop halts event processing, waits for the goroutine to exit, and releases
// the fsnotify handle. The watcher cannot be restarted afterwards.
func (w *Watcher) Stop() {
	w.mu.Lock()
	running := w.running
	w.running = false
	w.mu.Unlock()

	if running {
		close(w.stopCh)
		<-w.doneCh
	}
	if err := w.watcher.Close(); err != nil {
		w.logger.Warn("closing watcher", zap.Error(err))
	}
}

func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(max(w.debounce/2, minFlushEvery))
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
			w.handle(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("watch error", zap.Error(err))
		case <-ticker.C:
			w.flush()
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}

	if w.cache.InvalidatePath(event.Name) {
		w.logger.Debug("invalidated template", zap.String("path", event.Name), zap.String("op", event.Op.String()))
	}

	w.mu.Lock()
	w.pending[event.Name] = time.Now()
	w.mu.Unlock()
}

func (w *Watcher) flush() {
	now := time.Now()

	w.mu.Lock()
	var ready []string
	for path, at := range w.pending {
		if now.Sub(at) >= w.debounce {
			ready = append(ready, path)
			delete(w.pending, path)
		}
	}
	w.mu.Unlock()

	if w.onChange == nil {
		return
	}
	for _, path := range ready {
		w.onChange(path)
	}
}
