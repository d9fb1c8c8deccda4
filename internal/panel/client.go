package panel

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultRequestTimeout = 10 * time.Second

// Notification is the wire shape consumed from the feed endpoint.
type Notification struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Link      string    `json:"link"`
	CreatedAt time.Time `json:"created_at"`
	IsRead    bool      `json:"is_read"`
}

// Feed is the transient snapshot returned by a single fetch. It is
// recomputed wholesale on every successful fetch; the panel never merges.
type Feed struct {
	UnreadCount   int            `json:"unread_count"`
	Notifications []Notification `json:"notifications"`
}

// envelope mirrors the service's standard response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Client talks to the notification feed API on behalf of a single user.
type Client struct {
	httpClient *http.Client
	baseURL    string
	userID     string
}

// ClientOption customises the Client.
type ClientOption func(*Client)

// WithTimeout overrides the request timeout.
func WithTimeout(d time.Duration) ClientOption {
	return func(c *Client) {
		if d > 0 {
			c.httpClient.Timeout = d
		}
	}
}

// WithHTTPClient injects a preconfigured http.Client, primarily for testing.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		if hc != nil {
			c.httpClient = hc
		}
	}
}

// NewClient constructs a feed API client.
func NewClient(baseURL, userID string, opts ...ClientOption) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
		userID:     userID,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Fetch retrieves the current feed snapshot.
func (c *Client) Fetch(ctx context.Context) (*Feed, error) {
	body, err := c.do(ctx, http.MethodGet, "/api/notifications")
	if err != nil {
		return nil, err
	}

	var feed Feed
	if err := json.Unmarshal(body, &feed); err != nil {
		return nil, fmt.Errorf("panel client: decode feed: %w", err)
	}
	if feed.UnreadCount < 0 {
		return nil, fmt.Errorf("panel client: invalid unread count %d", feed.UnreadCount)
	}
	return &feed, nil
}

// MarkAllRead issues the mark-all-read command. Any 2xx response counts as
// success; callers reconcile with a fresh Fetch afterwards.
func (c *Client) MarkAllRead(ctx context.Context) error {
	_, err := c.do(ctx, http.MethodPost, "/api/notifications/mark-all-read")
	return err
}

func (c *Client) do(ctx context.Context, method, path string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("panel client: build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.userID != "" {
		req.Header.Set("X-User-ID", c.userID)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("panel client: %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return nil, fmt.Errorf("panel client: %s %s: status %d: %s", method, path, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var env envelope
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return nil, fmt.Errorf("panel client: decode response: %w", err)
	}
	if !env.Success {
		if env.Error != nil {
			return nil, fmt.Errorf("panel client: %s %s: %s: %s", method, path, env.Error.Code, env.Error.Message)
		}
		return nil, fmt.Errorf("panel client: %s %s: request failed", method, path)
	}

	return env.Data, nil
}
