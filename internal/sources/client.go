package sources

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/mrlokans/storyhub/internal/entities"
)

const (
	defaultTimeout     = 30 * time.Second
	defaultMaxRetries  = 3
	initialRetryDelay  = 1 * time.Second
	maxRetryDelay      = 30 * time.Second
	retryBackoffFactor = 2

	maxResponseBytes = 16 << 20
	userAgent        = "storyhub/1.0"
)

// Client talks to the JSON endpoints of content sources.
type Client struct {
	httpClient *http.Client
	maxRetries int
	retryDelay time.Duration
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = hc }
}

// WithMaxRetries sets the number of attempts per request. Values below 1 mean one attempt.
func WithMaxRetries(n int) ClientOption {
	return func(c *Client) {
		if n < 1 {
			n = 1
		}
		c.maxRetries = n
	}
}

// WithRetryDelay sets the delay before the first retry.
func WithRetryDelay(d time.Duration) ClientOption {
	return func(c *Client) { c.retryDelay = d }
}

// NewClient creates a content source client. A zero timeout uses the default.
func NewClient(timeout time.Duration, opts ...ClientOption) *Client {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	c := &Client{
		httpClient: &http.Client{Timeout: timeout},
		maxRetries: defaultMaxRetries,
		retryDelay: initialRetryDelay,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// FetchCategories fetches the raw category envelope of src.
func (c *Client) FetchCategories(ctx context.Context, src *entities.ContentSource) (any, error) {
	if src.BaseURL == "" {
		return nil, ErrNoEndpoint
	}
	return c.Fetch(ctx, joinURL(src.BaseURL, src.CategoryPath), nil)
}

// FetchList fetches one page of the item list of src. typeID 0 means all categories.
func (c *Client) FetchList(ctx context.Context, src *entities.ContentSource, page, typeID int) (any, error) {
	if src.BaseURL == "" {
		return nil, ErrNoEndpoint
	}
	if page < 1 {
		page = 1
	}
	query := url.Values{}
	query.Set("pg", strconv.Itoa(page))
	if typeID > 0 {
		query.Set("t", strconv.Itoa(typeID))
	}
	return c.Fetch(ctx, joinURL(src.BaseURL, src.ListPath), query)
}

// Fetch GETs rawURL with the extra query parameters and decodes the JSON body.
// Numbers are kept as json.Number.
func (c *Client) Fetch(ctx context.Context, rawURL string, query url.Values) (any, error) {
	u, err := url.Parse(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse URL: %w", err)
	}
	if len(query) > 0 {
		q := u.Query()
		for k, vs := range query {
			for _, v := range vs {
				q.Set(k, v)
			}
		}
		u.RawQuery = q.Encode()
	}

	var lastErr error
	for attempt := 0; attempt < c.maxRetries; attempt++ {
		if attempt > 0 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(c.calculateRetryDelay(attempt)):
			}
		}

		var body any
		body, lastErr = c.doGet(ctx, u.String())
		if lastErr == nil {
			return body, nil
		}
		if !isRetryableError(lastErr) {
			return nil, lastErr
		}
	}

	return nil, fmt.Errorf("max retries exceeded: %w", lastErr)
}

// PushConfig POSTs payload as JSON to rawURL. It is not retried.
func (c *Client) PushConfig(ctx context.Context, rawURL string, payload any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to encode payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(data))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return statusError(resp)
	}
	return nil
}

func (c *Client) doGet(ctx context.Context, rawURL string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, ErrRateLimited
	}
	if resp.StatusCode >= 500 {
		return nil, &ServerError{StatusCode: resp.StatusCode}
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	dec := json.NewDecoder(io.LimitReader(resp.Body, maxResponseBytes))
	dec.UseNumber()
	var body any
	if err := dec.Decode(&body); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return body, nil
}

func (c *Client) calculateRetryDelay(attempt int) time.Duration {
	delay := c.retryDelay
	for i := 1; i < attempt; i++ {
		delay *= time.Duration(retryBackoffFactor)
	}
	if delay > maxRetryDelay {
		delay = maxRetryDelay
	}
	return delay
}

func isRetryableError(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var serverErr *ServerError
	return errors.As(err, &serverErr)
}

func statusError(resp *http.Response) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	return &StatusError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(body))}
}

// joinURL appends path to base. An empty path returns base unchanged.
func joinURL(base, path string) string {
	if path == "" {
		return base
	}
	if strings.HasPrefix(path, "http://") || strings.HasPrefix(path, "https://") {
		return path
	}
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(path, "/")
}
