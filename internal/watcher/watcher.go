package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/channel-digest/internal/config"
	"github.com/nguyentantai21042004/channel-digest/internal/logger"
)

type implWatcher struct {
	path    string
	handler ChangeHandler
	logger  logger.Logger
	watcher *fsnotify.Watcher
	settle  time.Duration
}

// Start blocks until ctx is cancelled, re-reading the channel file after each
// burst of writes and passing its names to the handler.
func (w *implWatcher) Start(ctx context.Context) error {
	w.logger.Info(ctx, "Channel file watcher started. Monitoring: %s", w.path)

	// a burst of events collapses into one reload once settle has passed
	timer := time.NewTimer(time.Hour)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			w.logger.Info(ctx, "Channel file watcher stopped")
			return ctx.Err()

		case event, ok := <-w.watcher.Events:
			if !ok {
				return w.closed(ctx, "events")
			}
			if !w.relevant(event) {
				continue
			}
			w.logger.Debug(ctx, "Channel file event: %s", event)
			timer.Reset(w.settle)

		case <-timer.C:
			w.reload(ctx)

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return w.closed(ctx, "errors")
			}
			w.logger.Error(ctx, "Watcher error: %v", err)
		}
	}
}

// closed reports a closed fsnotify channel. Closing during shutdown is a
// normal exit.
func (w *implWatcher) closed(ctx context.Context, name string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return fmt.Errorf("watcher %s channel closed", name)
}

// Stop closes the file watcher
func (w *implWatcher) Stop() error {
	return w.watcher.Close()
}

func (w *implWatcher) relevant(event fsnotify.Event) bool {
	if filepath.Clean(event.Name) != w.path {
		return false
	}
	return event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename)
}

func (w *implWatcher) reload(ctx context.Context) {
	names, err := config.ReadChannelFile(w.path)
	if err != nil {
		w.logger.Warn(ctx, "Failed to re-read channel file: %v", err)
		return
	}
	w.logger.Info(ctx, "Channel file changed, %d names listed", len(names))
	if err := w.handler(ctx, names); err != nil {
		w.logger.Error(ctx, "Failed to apply channel file change: %v", err)
	}
}
