package index

import (
	"context"
	"log/slog"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/starford/lexicon/internal/storage"
)

const debounce = 200 * time.Millisecond

// RecordCallback is called after the watcher archives a new snapshot.
type RecordCallback func(row SnapshotRow)

// Watch starts an fsnotify watcher on the directory holding the snapshot
// file and re-syncs the archive whenever the file changes, until ctx is
// cancelled. Bursts of events are debounced. cb (if non-nil) is called for
// every newly recorded snapshot.
//
// The directory is watched rather than the file so that atomic replacement
// (write temp, rename over) keeps being observed.
func Watch(ctx context.Context, db *DB, store storage.Provider, file string, logger *slog.Logger, cb RecordCallback) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	target := filepath.Join(store.Root(), filepath.Clean(file))
	if err := w.Add(filepath.Dir(target)); err != nil {
		return err
	}

	logger.Info("watcher: started", slog.String("file", target))

	var syncTimer *time.Timer
	var syncCh <-chan time.Time

	scheduleSync := func() {
		if syncTimer == nil {
			syncTimer = time.NewTimer(debounce)
			syncCh = syncTimer.C
		} else {
			syncTimer.Reset(debounce)
		}
	}

	for {
		select {
		case <-ctx.Done():
			if syncTimer != nil {
				syncTimer.Stop()
			}
			logger.Info("watcher: stopped")
			return nil

		case <-syncCh:
			row, syncErr := Sync(db, store, file, logger)
			if syncErr != nil {
				logger.Warn("watcher: sync failed", slog.String("error", syncErr.Error()))
				continue
			}
			if row != nil && cb != nil {
				cb(*row)
			}

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}

			switch {
			case ev.Op&(fsnotify.Create|fsnotify.Write) != 0:
				logger.Debug("watcher: snapshot changed", slog.String("op", ev.Op.String()))
				scheduleSync()
			case ev.Op&(fsnotify.Remove|fsnotify.Rename) != 0:
				// The archive keeps the last recorded snapshot; a replacement
				// arriving later shows up as Create.
				logger.Warn("watcher: snapshot file removed", slog.String("file", target))
			}

		case watchErr, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watcher: error", slog.String("error", watchErr.Error()))
		}
	}
}
