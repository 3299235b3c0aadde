package orchestrator

import (
	"context"
	"errors"
	"time"

	"github.com/nguyentantai21042004/channel-digest/internal/models"
)

// ErrNoChannels means none of the requested channel names resolved.
var ErrNoChannels = errors.New("no channel could be resolved")

// Directory resolves channel names to ids
type Directory interface {
	Resolve(ctx context.Context, name string) (models.ChannelRef, error)
}

// Subscriber subscribes the monitoring account to a channel
type Subscriber interface {
	Subscribe(ctx context.Context, channel models.ChannelRef) error
}

// Runner processes one item url into a pipeline result
type Runner interface {
	Run(ctx context.Context, itemURL string) models.PipelineResult
}

// ReportFunc archives a pipeline result as a file in dir and returns its path
type ReportFunc func(item models.Item, result models.PipelineResult, dir string) (string, error)

// Orchestrator sequences channel bootstrap, baseline seeding and monitoring.
type Orchestrator interface {
	// Bootstrap resolves names, dropping those that do not resolve. Only a
	// rejected credential is returned as an error.
	Bootstrap(ctx context.Context, names []string) ([]models.ChannelRef, error)
	// SubscribeAll subscribes the account to every channel. Failures are
	// logged per channel and never stop the run.
	SubscribeAll(ctx context.Context, channels []models.ChannelRef)
	// SeedAndNotifyInitial records the current latest item of every channel
	// as its baseline, notifying about it when initial notifications are on.
	SeedAndNotifyInitial(ctx context.Context, channels []models.ChannelRef, recipient string)
	// StartMonitoring polls channels until ctx is cancelled.
	StartMonitoring(ctx context.Context, channels []models.ChannelRef, recipient string, interval time.Duration) error
	// Run performs bootstrap, seeding and monitoring in order.
	Run(ctx context.Context, names []string, recipient string) error
	// AddChannels resolves names and adds them to the monitored set without
	// seeding them.
	AddChannels(ctx context.Context, names []string) []models.ChannelRef
	// HandleItem runs the pipeline for item and sends the notification.
	HandleItem(ctx context.Context, recipient string, channel models.ChannelRef, item models.Item)
}
