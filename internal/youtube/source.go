package youtube

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/mmcdole/gofeed"

	"github.com/nguyentantai21042004/channel-digest/internal/models"
)

type apiSource struct {
	client *Client
}

// LatestItem asks the Data API for the newest video of the channel
func (s *apiSource) LatestItem(ctx context.Context, channelID string) (*models.Item, error) {
	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("channelId", channelID)
	params.Set("order", "date")
	params.Set("type", "video")
	params.Set("maxResults", "1")

	var resp searchResponse
	if err := s.client.getJSON(ctx, "search", params, &resp); err != nil {
		return nil, fmt.Errorf("%w: latest video of %s: %w", ErrSource, channelID, err)
	}

	for _, it := range resp.Items {
		if it.ID.VideoID == "" {
			continue
		}
		item := &models.Item{
			ID:    it.ID.VideoID,
			Title: it.Snippet.Title,
			URL:   s.client.WatchURL(it.ID.VideoID),
		}
		if t, err := time.Parse(time.RFC3339, it.Snippet.PublishedAt); err == nil {
			item.PublishedAt = t
		}
		return item, nil
	}
	return nil, nil
}

type feedSource struct {
	client *Client
}

// LatestItem reads the channel's public Atom feed. It costs no API quota but
// only lists the most recent uploads.
func (s *feedSource) LatestItem(ctx context.Context, channelID string) (*models.Item, error) {
	feedURL := s.client.siteURL + "/feeds/videos.xml?channel_id=" + url.QueryEscape(channelID)

	body, err := s.client.get(ctx, feedURL)
	if err != nil {
		return nil, fmt.Errorf("%w: feed of %s: %w", ErrSource, channelID, err)
	}

	feed, err := gofeed.NewParser().Parse(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: parse feed of %s: %w", ErrSource, channelID, err)
	}

	var newest *gofeed.Item
	for _, it := range feed.Items {
		if it == nil || feedVideoID(it) == "" {
			continue
		}
		if newest == nil || publishedAfter(it, newest) {
			newest = it
		}
	}
	if newest == nil {
		return nil, nil
	}

	id := feedVideoID(newest)
	item := &models.Item{
		ID:    id,
		Title: strings.TrimSpace(newest.Title),
		URL:   newest.Link,
	}
	if item.URL == "" {
		item.URL = s.client.WatchURL(id)
	}
	if newest.PublishedParsed != nil {
		item.PublishedAt = *newest.PublishedParsed
	}
	return item, nil
}

func feedVideoID(it *gofeed.Item) string {
	if ids := it.Extensions["yt"]["videoId"]; len(ids) > 0 && ids[0].Value != "" {
		return ids[0].Value
	}
	if strings.HasPrefix(it.GUID, "yt:video:") {
		return strings.TrimPrefix(it.GUID, "yt:video:")
	}
	if u, err := url.Parse(it.Link); err == nil {
		return u.Query().Get("v")
	}
	return ""
}

func publishedAfter(a, b *gofeed.Item) bool {
	if a.PublishedParsed == nil || b.PublishedParsed == nil {
		return false
	}
	return a.PublishedParsed.After(*b.PublishedParsed)
}
