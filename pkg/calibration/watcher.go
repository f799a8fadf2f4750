package calibration

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"github.com/gazelink/go-gazelink/internal/log"
)

// Watcher reloads the persisted model when the store file changes on
// disk, so a calibration run in one process reaches a running sender
// without a restart. Updated models are delivered on Models.
type Watcher struct {
	store   *Store
	watcher *fsnotify.Watcher
	models  chan Model
}

// NewWatcher starts watching the store's directory. Watching the
// directory rather than the file survives the atomic rename Save does.
func NewWatcher(ctx context.Context, store *Store) (*Watcher, error) {
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	dir := filepath.Dir(store.FilePath)
	if dir == "" {
		dir = "."
	}
	if err := fw.Add(dir); err != nil {
		fw.Close()
		return nil, fmt.Errorf("watch %s: %w", dir, err)
	}

	w := &Watcher{store: store, watcher: fw, models: make(chan Model, 1)}
	go w.run(ctx)
	return w, nil
}

// Models returns the channel of reloaded models. Only the latest model
// is retained when the consumer lags.
func (w *Watcher) Models() <-chan Model { return w.models }

// Close stops the watcher.
func (w *Watcher) Close() error { return w.watcher.Close() }

func (w *Watcher) run(ctx context.Context) {
	defer close(w.models)

	target := filepath.Clean(w.store.FilePath)
	for {
		select {
		case <-ctx.Done():
			return

		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if !ev.Has(fsnotify.Write) && !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Rename) {
				continue
			}

			model, err := w.store.Load()
			if err != nil {
				log.Warn("calibration reload failed", "path", target, "error", err)
				continue
			}
			// Drop a stale pending model rather than block.
			select {
			case <-w.models:
			default:
			}
			w.models <- model

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			log.Warn("calibration watcher error", "error", err)
		}
	}
}
