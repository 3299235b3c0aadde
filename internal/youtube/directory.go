package youtube

import (
	"bytes"
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/nguyentantai21042004/channel-digest/internal/models"
)

var reChannelID = regexp.MustCompile(`^UC[0-9A-Za-z_-]{22}$`)

type apiDirectory struct {
	client *Client
}

// Resolve searches channels by name and keeps the first whose title matches
// the name case-insensitively. Fuzzy matches are never accepted.
func (d *apiDirectory) Resolve(ctx context.Context, name string) (models.ChannelRef, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return models.ChannelRef{}, fmt.Errorf("%w: empty name", ErrChannelNotFound)
	}

	params := url.Values{}
	params.Set("part", "snippet")
	params.Set("q", name)
	params.Set("type", "channel")
	params.Set("maxResults", "5")

	var resp searchResponse
	if err := d.client.getJSON(ctx, "search", params, &resp); err != nil {
		return models.ChannelRef{}, fmt.Errorf("search channel %q: %w", name, err)
	}

	for _, item := range resp.Items {
		if !strings.EqualFold(strings.TrimSpace(item.Snippet.Title), name) {
			continue
		}
		id := item.Snippet.ChannelID
		if id == "" {
			id = item.ID.ChannelID
		}
		if id != "" {
			return models.ChannelRef{Name: name, ID: id}, nil
		}
	}

	return models.ChannelRef{}, fmt.Errorf("%w: %q", ErrChannelNotFound, name)
}

type pageDirectory struct {
	client *Client
}

// Resolve loads the channel's @handle page and reads the channel id from its
// metadata. Names that already are channel ids are returned as is.
func (d *pageDirectory) Resolve(ctx context.Context, name string) (models.ChannelRef, error) {
	name = strings.TrimSpace(name)
	if reChannelID.MatchString(name) {
		return models.ChannelRef{Name: name, ID: name}, nil
	}

	handle := strings.Join(strings.Fields(strings.TrimPrefix(name, "@")), "")
	if handle == "" {
		return models.ChannelRef{}, fmt.Errorf("%w: empty name", ErrChannelNotFound)
	}

	body, err := d.client.get(ctx, d.client.siteURL+"/@"+url.PathEscape(handle))
	if err != nil {
		return models.ChannelRef{}, fmt.Errorf("load channel page %q: %w", name, err)
	}

	id, err := channelIDFromPage(body)
	if err != nil {
		return models.ChannelRef{}, fmt.Errorf("%w: %q: %v", ErrChannelNotFound, name, err)
	}
	return models.ChannelRef{Name: name, ID: id}, nil
}

func channelIDFromPage(body []byte) (string, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("parse channel page: %w", err)
	}

	candidates := []string{
		doc.Find(`meta[itemprop="identifier"]`).AttrOr("content", ""),
		doc.Find(`meta[itemprop="channelId"]`).AttrOr("content", ""),
		lastPathSegment(doc.Find(`link[rel="canonical"]`).AttrOr("href", "")),
		lastPathSegment(doc.Find(`meta[property="og:url"]`).AttrOr("content", "")),
	}
	for _, c := range candidates {
		if reChannelID.MatchString(c) {
			return c, nil
		}
	}
	return "", fmt.Errorf("no channel id in page metadata")
}

func lastPathSegment(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || !strings.Contains(u.Path, "/channel/") {
		return ""
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	return parts[len(parts)-1]
}
