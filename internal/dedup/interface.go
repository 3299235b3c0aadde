package dedup

import "context"

// Outcome is the result of comparing an observed item id with the stored baseline.
type Outcome int

const (
	// FirstSeen means the channel had no baseline; one has now been recorded.
	FirstSeen Outcome = iota
	// Unchanged means the observed id equals the baseline.
	Unchanged
	// Changed means the observed id differs; the baseline now holds it.
	Changed
)

func (o Outcome) String() string {
	switch o {
	case FirstSeen:
		return "first_seen"
	case Unchanged:
		return "unchanged"
	case Changed:
		return "changed"
	default:
		return "unknown"
	}
}

// Store holds the last-seen item id per channel.
//
// Entries for different channels are independent: implementations must be
// safe for concurrent calls on distinct keys.
type Store interface {
	// Seed records itemID as the baseline for channelID unconditionally.
	Seed(ctx context.Context, channelID, itemID string) error
	// CheckAndUpdate compares itemID with the baseline and updates it if needed.
	CheckAndUpdate(ctx context.Context, channelID, itemID string) (Outcome, error)
	// Close releases backend resources.
	Close() error
}
