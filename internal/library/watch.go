package library

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"gearboy/internal/logging"
)

// Watch reconciles the catalog whenever ROM files in the managed directory
// change. Bursts of events are coalesced: a scan starts once the directory
// has been quiet for the debounce period. Watch returns nil when ctx is
// cancelled and an error when watching fails or a scan cannot persist.
func (m *Manager) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	defer watcher.Close()

	dir := m.store.DataDir()
	if err := watcher.Add(dir); err != nil {
		return fmt.Errorf("watch %s: %w", dir, err)
	}
	m.logger.Info("watching library",
		logging.String("dir", dir),
		logging.Duration("debounce", m.debounce),
		logging.String(logging.FieldEventType, "watch_started"),
	)

	timer := time.NewTimer(m.debounce)
	timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !m.relevant(event) {
				continue
			}
			m.logger.Debug("library change detected",
				logging.String("path", event.Name),
				logging.String("op", event.Op.String()),
			)
			timer.Reset(m.debounce)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logging.WarnWithContext(m.logger, "library watcher error", "watch_error",
				logging.Error(err),
				logging.String(logging.FieldImpact, "changes may be picked up late"),
				logging.String(logging.FieldErrorHint, "run gearboy sync if the list looks stale"),
			)
		case <-timer.C:
			_, err := m.Reconcile(ctx)
			switch {
			case err == nil:
			case errors.Is(err, ErrScanInProgress):
				timer.Reset(m.debounce)
			case ctx.Err() != nil:
				return nil
			default:
				return err
			}
		}
	}
}

func (m *Manager) relevant(event fsnotify.Event) bool {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return false
	}
	return m.matcher.Match(filepath.Base(event.Name))
}
