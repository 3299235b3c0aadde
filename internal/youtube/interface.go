package youtube

import (
	"context"
	"errors"

	"github.com/nguyentantai21042004/channel-digest/internal/models"
)

var (
	// ErrChannelNotFound means no channel matched the requested name.
	ErrChannelNotFound = errors.New("channel not found")
	// ErrSource wraps every failure listing a channel's latest item.
	ErrSource = errors.New("content source error")
	// ErrUnauthorized means the API rejected the configured credentials.
	ErrUnauthorized = errors.New("youtube api rejected credentials")
)

// Directory resolves human-readable channel names to stable channel ids
type Directory interface {
	Resolve(ctx context.Context, name string) (models.ChannelRef, error)
}

// Source lists the most recent item of a channel.
// A nil item with a nil error means the channel has no items.
type Source interface {
	LatestItem(ctx context.Context, channelID string) (*models.Item, error)
}
