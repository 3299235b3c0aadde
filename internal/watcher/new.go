package watcher

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/nguyentantai21042004/channel-digest/internal/logger"
)

// defaultSettle is how long writes must stop before the file is re-read
const defaultSettle = 500 * time.Millisecond

// New creates a Watcher for the channel list at path. The parent directory is
// watched so editors that replace the file on save are still noticed.
func New(path string, handler ChangeHandler, log logger.Logger) (Watcher, error) {
	absPath, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("resolve channel file path: %w", err)
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("create watcher: %w", err)
	}

	if err := watcher.Add(filepath.Dir(absPath)); err != nil {
		watcher.Close()
		return nil, fmt.Errorf("add watch path: %w", err)
	}

	return &implWatcher{
		path:    absPath,
		handler: handler,
		logger:  log,
		watcher: watcher,
		settle:  defaultSettle,
	}, nil
}
