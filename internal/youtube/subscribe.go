package youtube

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nguyentantai21042004/channel-digest/internal/models"
)

type subscriptionInsert struct {
	Snippet struct {
		ResourceID struct {
			Kind      string `json:"kind"`
			ChannelID string `json:"channelId"`
		} `json:"resourceId"`
	} `json:"snippet"`
}

// Subscribe subscribes the account behind the OAuth token to the channel.
// A subscription that already exists counts as success.
func (c *Client) Subscribe(ctx context.Context, ch models.ChannelRef) error {
	if c.oauthToken == "" {
		return fmt.Errorf("%w: no oauth token configured", ErrUnauthorized)
	}

	var body subscriptionInsert
	body.Snippet.ResourceID.Kind = "youtube#channel"
	body.Snippet.ResourceID.ChannelID = ch.ID
	payload, err := json.Marshal(body)
	if err != nil {
		return fmt.Errorf("encode subscription: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.apiBaseURL+"/subscriptions?part=snippet", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.oauthToken)
	req.Header.Set("Content-Type", "application/json")

	if _, err := c.do(ctx, req); err != nil {
		var se *statusError
		if errors.As(err, &se) && hasReason(apiErrorReasons(se.body), "subscriptionDuplicate") {
			c.logger.Debug(ctx, "Already subscribed to %s", ch.ID)
			return nil
		}
		return fmt.Errorf("subscribe to %s: %w", ch.ID, classifyAPIError(err))
	}
	return nil
}

func hasReason(reasons []string, want string) bool {
	for _, r := range reasons {
		if r == want {
			return true
		}
	}
	return false
}
