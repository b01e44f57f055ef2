package catalog

import (
	"context"
	"fmt"
	"path/filepath"
	"sort"
	"sync"

	"vintagefm/logger"

	"github.com/fsnotify/fsnotify"
)

// Watcher observes the music directory and records drift from the startup
// catalog. It only reports: the catalog itself stays fixed, and playback
// relies on the per-play existence check.
type Watcher struct {
	catalog *Catalog
	exts    []string

	mu      sync.RWMutex
	missing map[string]struct{}
	added   map[string]struct{}
}

// NewWatcher creates a drift watcher for c.
func NewWatcher(c *Catalog, exts []string) *Watcher {
	if len(exts) == 0 {
		exts = DefaultExtensions
	}
	return &Watcher{
		catalog: c,
		exts:    exts,
		missing: make(map[string]struct{}),
		added:   make(map[string]struct{}),
	}
}

// Run watches until ctx is done. It returns an error only if the watch
// could not be established.
func (w *Watcher) Run(ctx context.Context) error {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}
	defer fw.Close()

	if err := fw.Add(w.catalog.Dir()); err != nil {
		return fmt.Errorf("failed to watch %s: %w", w.catalog.Dir(), err)
	}
	logger.Info("watching music directory", logger.String("dir", w.catalog.Dir()))

	for {
		select {
		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			w.handle(event)
		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			logger.Warn("catalog watcher error", logger.ErrorField(err))
		case <-ctx.Done():
			return nil
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	path := filepath.Join(w.catalog.Dir(), filepath.Base(event.Name))
	if !hasExtension(path, w.exts) {
		return
	}

	switch {
	case event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename):
		w.markGone(path)
	case event.Has(fsnotify.Create):
		w.markPresent(path)
	}
}

func (w *Watcher) markGone(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.catalog.Contains(path) {
		w.missing[path] = struct{}{}
		logger.Warn("catalog file removed, it will be announced only", logger.String("path", path))
		return
	}
	delete(w.added, path)
}

func (w *Watcher) markPresent(path string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.catalog.Contains(path) {
		delete(w.missing, path)
		return
	}
	w.added[path] = struct{}{}
	logger.Info("new audio file will be picked up after restart", logger.String("path", path))
}

// Missing lists catalog entries that disappeared since startup.
func (w *Watcher) Missing() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return sortedKeys(w.missing)
}

// Added lists audio files that appeared after the catalog was scanned.
func (w *Watcher) Added() []string {
	w.mu.RLock()
	defer w.mu.RUnlock()
	return sortedKeys(w.added)
}

func sortedKeys(m map[string]struct{}) []string {
	out := make([]string, 0, len(m))
	for k := range m {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
