package youtube

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
)

// maxBody caps how much of a response is read
const maxBody = 8 << 20

// get performs a rate limited GET and returns the body of a 2xx response
func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept-Language", "en-US,en;q=0.8")
	return c.do(ctx, req)
}

// do sends req once the rate limiter allows it. A 404 maps to
// ErrChannelNotFound and any other non-2xx status to a *statusError.
func (c *Client) do(ctx context.Context, req *http.Request) ([]byte, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("wait for rate limiter: %w", err)
	}

	rawURL := req.URL.String()
	c.logger.Debug(ctx, "%s %s", req.Method, redact(rawURL))

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request %s: %w", redact(rawURL), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return nil, fmt.Errorf("%w: status 404 for %s", ErrChannelNotFound, redact(rawURL))
	case resp.StatusCode < 200 || resp.StatusCode > 299:
		return nil, &statusError{code: resp.StatusCode, url: redact(rawURL), body: body}
	}
	return body, nil
}

// statusError is a non-2xx response other than 404
type statusError struct {
	code int
	url  string
	body []byte
}

func (e *statusError) Error() string {
	return fmt.Sprintf("unexpected status %d from %s", e.code, e.url)
}

// authReasons are Data API error reasons that mean the key itself is unusable
var authReasons = map[string]bool{
	"keyInvalid":                      true,
	"keyExpired":                      true,
	"accessNotConfigured":             true,
	"ipRefererBlocked":                true,
	"authError":                       true,
	"API_KEY_INVALID":                 true,
	"API_KEY_SERVICE_BLOCKED":         true,
	"API_KEY_HTTP_REFERRER_BLOCKED":   true,
	"API_KEY_IP_ADDRESS_BLOCKED":      true,
	"API_KEY_ANDROID_APP_BLOCKED":     true,
	"API_KEY_IOS_APP_BLOCKED":         true,
	"SERVICE_DISABLED":                true,
	"CREDENTIALS_MISSING":             true,
	"ACCESS_TOKEN_SCOPE_INSUFFICIENT": true,
}

type apiErrorResponse struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Errors  []struct {
			Reason string `json:"reason"`
		} `json:"errors"`
		Details []struct {
			Reason string `json:"reason"`
		} `json:"details"`
	} `json:"error"`
}

// apiErrorReasons lists every reason named in a Data API error body
func apiErrorReasons(body []byte) []string {
	var resp apiErrorResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil
	}
	var reasons []string
	for _, e := range resp.Error.Errors {
		if e.Reason != "" {
			reasons = append(reasons, e.Reason)
		}
	}
	for _, d := range resp.Error.Details {
		if d.Reason != "" {
			reasons = append(reasons, d.Reason)
		}
	}
	return reasons
}

// classifyAPIError maps a Data API failure onto ErrUnauthorized when the key
// was rejected. Quota and per-request 403s stay ordinary errors.
func classifyAPIError(err error) error {
	var se *statusError
	if !errors.As(err, &se) {
		return err
	}
	reasons := apiErrorReasons(se.body)
	if se.code == http.StatusUnauthorized {
		return fmt.Errorf("%w: status 401", ErrUnauthorized)
	}
	for _, r := range reasons {
		if authReasons[r] {
			return fmt.Errorf("%w: status %d (%s)", ErrUnauthorized, se.code, r)
		}
	}
	if len(reasons) > 0 {
		return fmt.Errorf("%w (%s)", err, strings.Join(reasons, ", "))
	}
	return err
}

// getJSON calls a Data API endpoint with the configured key
func (c *Client) getJSON(ctx context.Context, endpoint string, params url.Values, out interface{}) error {
	params.Set("key", c.apiKey)
	body, err := c.get(ctx, c.apiBaseURL+"/"+endpoint+"?"+params.Encode())
	if err != nil {
		return classifyAPIError(err)
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("decode %s response: %w", endpoint, err)
	}
	return nil
}

// redact strips the api key from URLs that end up in logs and errors
func redact(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return rawURL
	}
	q := u.Query()
	if q.Has("key") {
		q.Set("key", "REDACTED")
		u.RawQuery = q.Encode()
	}
	return u.String()
}

type searchResponse struct {
	Items []searchItem `json:"items"`
}

type searchItem struct {
	ID struct {
		Kind      string `json:"kind"`
		VideoID   string `json:"videoId"`
		ChannelID string `json:"channelId"`
	} `json:"id"`
	Snippet struct {
		Title        string `json:"title"`
		ChannelID    string `json:"channelId"`
		ChannelTitle string `json:"channelTitle"`
		PublishedAt  string `json:"publishedAt"`
	} `json:"snippet"`
}
