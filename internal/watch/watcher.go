// Package watch reports settled writes to a fixed set of files.
package watch

import (
	"context"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"

	"scales/internal/logging"
)

// Change is a settled modification of a watched file.
type Change struct {
	Path string
	Time time.Time
}

// Stats tracks watcher activity.
type Stats struct {
	Events        int
	Changes       int
	Errors        int
	LastEventPath string
	LastEventTime time.Time
}

// Watcher watches the parent directories of its files, so editors that
// save by writing a new file and renaming it over the old one are still seen.
type Watcher struct {
	mu          sync.Mutex
	watcher     *fsnotify.Watcher
	files       map[string]bool
	dirs        []string
	debounceMap map[string]time.Time
	debounceDur time.Duration
	changes     chan Change
	stats       Stats
}

// New creates a watcher for paths. A non-positive debounce means 300ms.
func New(paths []string, debounce time.Duration) (*Watcher, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("no files to watch")
	}
	if debounce <= 0 {
		debounce = 300 * time.Millisecond
	}

	w := &Watcher{
		files:       make(map[string]bool, len(paths)),
		debounceMap: make(map[string]time.Time),
		debounceDur: debounce,
		changes:     make(chan Change, 16),
	}
	seen := make(map[string]bool)
	for _, p := range paths {
		abs, err := filepath.Abs(p)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve %s: %w", p, err)
		}
		w.files[abs] = true
		if dir := filepath.Dir(abs); !seen[dir] {
			seen[dir] = true
			w.dirs = append(w.dirs, dir)
		}
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	for _, dir := range w.dirs {
		if err := fw.Add(dir); err != nil {
			fw.Close()
			return nil, fmt.Errorf("failed to watch %s: %w", dir, err)
		}
		logging.Watch("Watching directory: %s", dir)
	}
	w.watcher = fw
	return w, nil
}

// Changes delivers settled changes. It is closed when Run returns.
func (w *Watcher) Changes() <-chan Change {
	return w.changes
}

// Run is the event loop. It blocks until ctx is cancelled and always
// releases the underlying fsnotify watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer close(w.changes)
	defer func() {
		if err := w.watcher.Close(); err != nil {
			logging.Get(logging.CategoryWatch).Error("Error closing watcher: %v", err)
		}
		logging.Watch("Watcher stopped")
	}()

	tick := w.debounceDur / 3
	if tick < 10*time.Millisecond {
		tick = 10 * time.Millisecond
	}
	debounceTicker := time.NewTicker(tick)
	defer debounceTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			logging.WatchDebug("Context cancelled")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return nil
			}
			w.handleEvent(event)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return nil
			}
			logging.Get(logging.CategoryWatch).Error("Watcher error: %v", err)
			w.mu.Lock()
			w.stats.Errors++
			w.mu.Unlock()

		case <-debounceTicker.C:
			for _, c := range w.settled() {
				select {
				case w.changes <- c:
				case <-ctx.Done():
					return nil
				}
			}
		}
	}
}

func (w *Watcher) handleEvent(event fsnotify.Event) {
	path := filepath.Clean(event.Name)
	if !w.files[path] {
		return
	}
	// Removes and renames are followed by a create when an editor replaces the file.
	if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
		return
	}

	logging.WatchDebug("%s event for %s", event.Op, path)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.stats.Events++
	w.stats.LastEventPath = path
	w.stats.LastEventTime = time.Now()
	w.debounceMap[path] = time.Now()
}

// settled returns and forgets paths quiet for at least the debounce window.
func (w *Watcher) settled() []Change {
	w.mu.Lock()
	defer w.mu.Unlock()

	now := time.Now()
	var out []Change
	for path, last := range w.debounceMap {
		if now.Sub(last) >= w.debounceDur {
			out = append(out, Change{Path: path, Time: last})
			delete(w.debounceMap, path)
		}
	}
	w.stats.Changes += len(out)
	return out
}

// Stats returns the current watcher statistics.
func (w *Watcher) Stats() Stats {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.stats
}

// Dirs returns the watched directories.
func (w *Watcher) Dirs() []string {
	return append([]string(nil), w.dirs...)
}
