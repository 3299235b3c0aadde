package watcher

import "context"

// Watcher defines the interface for channel file monitoring
type Watcher interface {
	Start(ctx context.Context) error
	Stop() error
}

// ChangeHandler receives the channel names listed in the file after a change
type ChangeHandler func(ctx context.Context, names []string) error
