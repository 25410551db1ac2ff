package vision

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"time"

	"forge/internal/logging"

	"github.com/fsnotify/fsnotify"
)

// Watcher monitors the vision document for external edits and delivers
// freshly parsed snapshots on a channel. The containing directory is
// watched rather than the file itself so atomic rename saves are seen.
type Watcher struct {
	mu          sync.RWMutex
	watcher     *fsnotify.Watcher
	manager     *Manager
	path        string
	dir         string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	snapshots   chan *Vision
	stopCh      chan struct{}
	doneCh      chan struct{}
	running     bool

	stats WatcherStats
}

// WatcherStats tracks watcher activity for debugging.
type WatcherStats struct {
	Changes       int
	Reloads       int
	Errors        int
	LastEventTime time.Time
	LastEventOp   string
}

// NewWatcher creates a Watcher for the manager's vision file.
func NewWatcher(manager *Manager) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	path := filepath.Clean(manager.Path())

	w := &Watcher{
		watcher:     fw,
		manager:     manager,
		path:        path,
		dir:         filepath.Dir(path),
		debounceMap: make(map[string]time.Time),
		debounceDur: 500 * time.Millisecond, // Debounce rapid saves
		snapshots:   make(chan *Vision, 1),
		stopCh:      make(chan struct{}),
		doneCh:      make(chan struct{}),
	}

	return w, nil
}

// Snapshots returns the channel on which reloaded visions are delivered.
// Only the latest snapshot is kept when the consumer falls behind.
func (w *Watcher) Snapshots() <-chan *Vision {
	return w.snapshots
}

// Start begins watching the vision directory for changes.
// Non-blocking; the event loop runs in a goroutine.
func (w *Watcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return nil // Already running
	}
	w.running = true
	w.mu.Unlock()

	// Ensure the directory exists so the watch can be established
	if err := os.MkdirAll(w.dir, 0755); err != nil {
		logging.Get(logging.CategoryWatcher).Warn("failed to create vision dir %s: %v (continuing anyway)", w.dir, err)
	}

	if err := w.watcher.Add(w.dir); err != nil {
		logging.Get(logging.CategoryWatcher).Warn("initial watch failed (dir may not exist): %v", err)
	} else {
		logging.Watcher("watching directory: %s", w.dir)
	}

	go w.run(ctx)

	return nil
}

// Stop stops the watcher and waits for the event loop to exit.
// Safe to call on a watcher that was never started.
func (w *Watcher) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		w.watcher.Close()
		return
	}
	w.running = false
	w.mu.Unlock()

	close(w.stopCh)
	<-w.doneCh

	if err := w.watcher.Close(); err != nil {
		logging.WatcherError("error closing watcher: %v", err)
	}
	close(w.snapshots)
	logging.Watcher("stopped")
}

// run is the main event loop.
func (w *Watcher) run(ctx context.Context) {
	defer close(w.doneCh)

	debounceTicker := time.NewTicker(100 * time.Millisecond)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.Watcher("context cancelled")
			return

		case <-w.stopCh:
			logging.Watcher("stop signal received")
			return

		case event, ok := <-w.watcher.Events:
			if !ok {
				logging.Watcher("event channel closed")
				return
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				logging.Watcher("error channel closed")
				return
			}
			logging.WatcherError("watch error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			w.processDebouncedEvents()
		}
	}
}

// handleEvent records a filesystem event for debounced processing.
func (w *Watcher) handleEvent(event fsnotify.Event) {
	// Only the vision file itself matters; sibling files (state.json,
	// logs, the .tmp from atomic saves) are ignored.
	if filepath.Clean(event.Name) != w.path {
		return
	}

	var op string
	switch {
	case event.Op&fsnotify.Create != 0:
		op = "create"
	case event.Op&fsnotify.Write != 0:
		op = "modify"
	case event.Op&fsnotify.Remove != 0:
		op = "delete"
	case event.Op&fsnotify.Rename != 0:
		op = "rename"
	default:
		return // Ignore chmod, etc.
	}

	logging.WatcherDebug("%s event for %s", op, event.Name)

	w.mu.Lock()
	w.stats.Changes++
	w.stats.LastEventTime = time.Now()
	w.stats.LastEventOp = op

	// Debounce: record the event for later processing
	w.debounceMap[event.Name] = time.Now()
	w.mu.Unlock()
}

// processDebouncedEvents reloads once events have settled past the
// debounce window.
func (w *Watcher) processDebouncedEvents() {
	w.mu.Lock()
	now := time.Now()
	settled := false

	for path, eventTime := range w.debounceMap {
		if now.Sub(eventTime) >= w.debounceDur {
			settled = true
			delete(w.debounceMap, path)
		}
	}
	w.mu.Unlock()

	if settled {
		w.reload()
	}
}

// reload parses the vision file and delivers a snapshot.
func (w *Watcher) reload() {
	v, err := w.manager.Load()
	if err != nil {
		if os.IsNotExist(err) {
			logging.WatcherDebug("vision file removed, skipping reload: %s", w.path)
			return
		}
		logging.WatcherError("failed to reload %s: %v", w.path, err)
		w.mu.Lock()
		w.stats.Errors++
		w.mu.Unlock()
		return
	}

	w.mu.Lock()
	w.stats.Reloads++
	w.mu.Unlock()

	logging.Watcher("vision reloaded: %s (%d goals)", w.path, len(v.Goals))
	logging.Audit().VisionChange(w.path)

	w.deliver(v)
}

// deliver publishes a snapshot without ever blocking. Latest wins: a
// stale undelivered snapshot is dropped when the consumer is behind.
func (w *Watcher) deliver(v *Vision) {
	for {
		select {
		case w.snapshots <- v:
			return
		default:
			select {
			case <-w.snapshots:
			default:
			}
		}
	}
}

// TriggerReload manually reloads the vision file and delivers a
// snapshot. Useful at startup before any filesystem event has fired.
// Must not be called after Stop.
func (w *Watcher) TriggerReload() error {
	v, err := w.manager.Load()
	if err != nil {
		return err
	}
	w.deliver(v)
	return nil
}

// IsWatching returns true if the watcher is currently running.
func (w *Watcher) IsWatching() bool {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.running
}

// GetStats returns the current watcher statistics.
func (w *Watcher) GetStats() WatcherStats {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return w.stats
}

// ResetStats resets the watcher statistics.
func (w *Watcher) ResetStats() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats = WatcherStats{}
}
