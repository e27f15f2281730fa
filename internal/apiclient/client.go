// Package apiclient implements store.Store on top of the LuxeEstate REST
// API, so the CLI and other processes can share one running server.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apierrors "github.com/stwalsh4118/luxeestate/internal/errors"
	"github.com/stwalsh4118/luxeestate/internal/middleware"
	"github.com/stwalsh4118/luxeestate/internal/models"
	"github.com/stwalsh4118/luxeestate/internal/store"
)

// DefaultTimeout bounds each request when no HTTP client is supplied.
const DefaultTimeout = 30 * time.Second

// Client is a remote store.Store. It does not retry.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
}

// Option is a functional option for configuring the Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		c.httpClient = client
	}
}

// WithUserAgent sets a custom User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for the API rooted at baseURL, for example
// http://localhost:5000/api.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  "luxeestate-client/1.0",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root the client talks to.
func (c *Client) BaseURL() string { return c.baseURL }

// Properties returns the remote listing collection.
func (c *Client) Properties() store.PropertyStore { return &propertyClient{c: c} }

// Agents returns the remote agent collection.
func (c *Client) Agents() store.AgentStore { return &agentClient{c: c} }

// Users returns the remote account collection.
func (c *Client) Users() store.UserStore { return &userClient{c: c} }

// Leads returns the remote inquiry collection.
func (c *Client) Leads() store.LeadStore { return &leadClient{c: c} }

// Blog returns the remote blog collection.
func (c *Client) Blog() store.BlogStore { return &blogClient{c: c} }

// Mode reports remote mode.
func (c *Client) Mode() store.Mode { return store.ModeRemote }

// Stats fetches the dashboard aggregates.
func (c *Client) Stats(ctx context.Context) (models.DashboardStats, error) {
	var stats models.DashboardStats
	err := c.do(ctx, http.MethodGet, "/dashboard", nil, nil, &stats)
	return stats, err
}

// Ping checks that the API answers its liveness endpoint with a 2xx.
func (c *Client) Ping(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

// do sends one request and decodes a 2xx body into out when out is
// non-nil. Error responses are mapped back onto the store errors.
func (c *Client) do(ctx context.Context, method, path string, query url.Values, body, out interface{}) error {
	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if actor := models.ActorFrom(ctx); actor.ID != "" {
		req.Header.Set(middleware.ActorIDHeader, actor.ID)
		req.Header.Set(middleware.ActorRoleHeader, string(actor.Role))
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %s %s: %v", store.ErrUnreachable, method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeError(resp)
	}
	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode %s %s response: %w", method, path, err)
	}
	return nil
}

// decodeError turns an error envelope into the matching store error.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1<<20))

	var envelope apierrors.ErrorResponse
	if err := json.Unmarshal(raw, &envelope); err != nil || envelope.Error == "" {
		envelope.Error = strings.TrimSpace(string(raw))
		if envelope.Error == "" {
			envelope.Error = http.StatusText(resp.StatusCode)
		}
	}

	switch resp.StatusCode {
	case http.StatusBadRequest:
		if envelope.Code == apierrors.ErrValidation && len(envelope.Details) > 0 {
			fields := make(map[string]string, len(envelope.Details))
			for k, v := range envelope.Details {
				fields[k] = fmt.Sprint(v)
			}
			return &store.ValidationError{Fields: fields}
		}
		return fmt.Errorf("%w: %s", store.ErrValidation, envelope.Error)
	case http.StatusNotFound:
		return fmt.Errorf("%s: %w", envelope.Error, store.ErrNotFound)
	case http.StatusConflict:
		count := 0
		if n, ok := envelope.Details["count"].(float64); ok {
			count = int(n)
		}
		return &store.ConflictError{Message: envelope.Error, Count: count}
	case http.StatusInsufficientStorage:
		return fmt.Errorf("%s: %w", envelope.Error, store.ErrQuotaExceeded)
	}
	return &StatusError{StatusCode: resp.StatusCode, Code: envelope.Code, Message: envelope.Error}
}

// StatusError is an error response with no store-level meaning.
type StatusError struct {
	StatusCode int
	Code       string
	Message    string
}

func (e *StatusError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("api error %d (%s): %s", e.StatusCode, e.Code, e.Message)
	}
	return fmt.Sprintf("api error %d: %s", e.StatusCode, e.Message)
}

// escape encodes one path segment.
func escape(segment string) string {
	return url.PathEscape(segment)
}

// matchID guards lookups that go through the slug-or-id routes.
func matchID(id, got string) error {
	if got != id {
		return fmt.Errorf("%s: %w", id, store.ErrNotFound)
	}
	return nil
}
