package file

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/alghazaly/partsync/internal/logger"
)

// DefaultDebounce coalesces the burst of events an editor save produces.
const DefaultDebounce = 100 * time.Millisecond

// Watcher reloads a ConfigStore when its file changes on disk.
// The directory is watched rather than the file so that editors which
// replace the file by rename are still seen.
type Watcher struct {
	store    *ConfigStore
	onChange func(*ConfigStore)
	debounce time.Duration
	log      *logger.Logger
}

// NewWatcher creates a watcher for the store. onChange runs after each successful reload.
func NewWatcher(store *ConfigStore, onChange func(*ConfigStore)) *Watcher {
	return &Watcher{
		store:    store,
		onChange: onChange,
		debounce: DefaultDebounce,
		log:      logger.With("config"),
	}
}

// Run watches until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer fsw.Close()

	if err := fsw.Add(filepath.Dir(w.store.Path())); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(w.store.Path()), err)
	}

	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-fsw.Events:
			if !ok {
				return nil
			}
			if w.relevant(event) {
				timer.Reset(w.debounce)
			}
		case err, ok := <-fsw.Errors:
			if !ok {
				return nil
			}
			w.log.Warn("watch error: %v", err)
		case <-timer.C:
			w.reload()
		}
	}
}

// relevant reports whether the event touches the config file with a content change.
func (w *Watcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != filepath.Clean(w.store.Path()) {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create)
}

func (w *Watcher) reload() {
	if err := w.store.Load(); err != nil {
		w.log.Warn("reload %s: %v", w.store.Path(), err)
		return
	}
	w.log.Debug("reloaded %s", w.store.Path())
	if w.onChange != nil {
		w.onChange(w.store)
	}
}
