package youtube

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/nguyentantai21042004/channel-digest/internal/config"
	"github.com/nguyentantai21042004/channel-digest/internal/logger"
)

// Client holds the HTTP plumbing shared by the directory and source
// implementations. All requests go through one rate limiter so the Data API
// quota is spent evenly across resolution and polling.
type Client struct {
	apiKey     string
	oauthToken string
	apiBaseURL string
	siteURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     logger.Logger
}

// New creates a Client from the youtube config section
func New(cfg config.YouTubeConfig, log logger.Logger) *Client {
	rps := cfg.RequestsPerS
	if rps <= 0 {
		rps = 2
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 20 * time.Second
	}
	return &Client{
		apiKey:     cfg.APIKey,
		oauthToken: cfg.OAuthToken,
		apiBaseURL: strings.TrimRight(cfg.APIBaseURL, "/"),
		siteURL:    strings.TrimRight(cfg.SiteBaseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
		logger:     log,
	}
}

// Directory returns the Data API directory when an API key is configured and
// the channel page scraper otherwise.
func (c *Client) Directory() Directory {
	if c.apiKey != "" {
		return &apiDirectory{client: c}
	}
	return &pageDirectory{client: c}
}

// Source returns the Data API source when an API key is configured and the
// public Atom feed otherwise.
func (c *Client) Source() Source {
	if c.apiKey != "" {
		return &apiSource{client: c}
	}
	return &feedSource{client: c}
}

// WatchURL is the canonical page of a video
func (c *Client) WatchURL(videoID string) string {
	return c.siteURL + "/watch?v=" + videoID
}
