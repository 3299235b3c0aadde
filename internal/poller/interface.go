package poller

import (
	"context"
	"time"

	"github.com/nguyentantai21042004/channel-digest/internal/models"
)

// NewItemFunc handles an item whose id differs from the channel's baseline
type NewItemFunc func(ctx context.Context, channel models.ChannelRef, item models.Item)

// Source lists the most recent item of a channel
type Source interface {
	LatestItem(ctx context.Context, channelID string) (*models.Item, error)
}

// ChannelLister returns the channels to visit in the next cycle. It is
// consulted once per cycle so channels added mid-run are picked up.
type ChannelLister interface {
	Channels() []models.ChannelRef
}

// StaticChannels is a fixed ChannelLister
type StaticChannels []models.ChannelRef

func (s StaticChannels) Channels() []models.ChannelRef { return s }

// Sleeper waits between cycles. It returns early with ctx.Err() on cancellation.
type Sleeper interface {
	Sleep(ctx context.Context, d time.Duration) error
}

// CycleStats summarises one poll cycle
type CycleStats struct {
	Checked      int
	Empty        int
	FirstSeen    int
	Unchanged    int
	Changed      int
	SourceErrors int
	StoreErrors  int
}

// Poller detects new items across channels
type Poller interface {
	PollOnce(ctx context.Context, channels []models.ChannelRef, onNewItem NewItemFunc) CycleStats
	RunForever(ctx context.Context, channels ChannelLister, interval time.Duration, onNewItem NewItemFunc) error
}
