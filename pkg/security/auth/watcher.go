package auth

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// defaultDebounce is how long the watcher waits after a change before
// reloading, coalescing editor write bursts into one reload.
const defaultDebounce = 100 * time.Millisecond

// KeyFileWatcher watches the API key registry file and reloads the store
// on change.
type KeyFileWatcher struct {
	store    *FileKeyStore
	watcher  *fsnotify.Watcher
	debounce time.Duration
	logger   *slog.Logger

	// onReload, if set, runs after every successful reload. The Manager
	// uses it to clear the validation cache.
	onReload func()
}

// NewKeyFileWatcher creates a watcher for the store's registry file.
func NewKeyFileWatcher(store *FileKeyStore, onReload func()) (*KeyFileWatcher, error) {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("failed to create fsnotify watcher: %w", err)
	}

	return &KeyFileWatcher{
		store:    store,
		watcher:  watcher,
		debounce: defaultDebounce,
		logger:   slog.Default().With("component", "auth.watcher"),
		onReload: onReload,
	}, nil
}

// Watch blocks, reloading the key store whenever the registry file
// changes, until the context is cancelled.
//
// The parent directory is watched rather than the file itself so that
// atomic rename-based rewrites are observed.
func (w *KeyFileWatcher) Watch(ctx context.Context) error {
	defer w.watcher.Close()

	dir := filepath.Dir(w.store.path)
	if err := w.watcher.Add(dir); err != nil {
		return fmt.Errorf("failed to watch %q: %w", dir, err)
	}

	w.logger.Info("key file watcher started",
		"path", w.store.path,
		"debounce_ms", w.debounce.Milliseconds(),
	)

	var pending *time.Timer
	var pendingC <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			w.logger.Info("key file watcher stopped")
			return nil

		case event, ok := <-w.watcher.Events:
			if !ok {
				return fmt.Errorf("watcher events channel closed")
			}
			if filepath.Clean(event.Name) != filepath.Clean(w.store.path) {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) && !event.Has(fsnotify.Rename) {
				continue
			}

			if pending == nil {
				pending = time.NewTimer(w.debounce)
				pendingC = pending.C
			} else {
				pending.Reset(w.debounce)
			}

		case <-pendingC:
			pending = nil
			pendingC = nil
			w.reload()

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher errors channel closed")
			}
			w.logger.Error("key file watcher error", "error", err)
		}
	}
}

// reload re-reads the registry and notifies the reload hook.
func (w *KeyFileWatcher) reload() {
	if err := w.store.Reload(); err != nil {
		// Keep serving the previous key set.
		w.logger.Error("key file reload failed", "error", err)
		return
	}

	if w.onReload != nil {
		w.onReload()
	}
}
