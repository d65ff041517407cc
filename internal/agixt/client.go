package agixt

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rshade/agentview/internal/logging"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

// maxErrorBodyBytes caps how much body is kept on a StatusError.
const maxErrorBodyBytes = 512

// defaultUserAgent is sent unless WithUserAgent overrides it.
const defaultUserAgent = "agentview"

// Client errors.
var (
	ErrEmptyResponse = errors.New("agixt: empty response body")
	ErrInvalidJSON   = errors.New("agixt: response is not valid JSON")
	ErrTooLarge      = errors.New("agixt: response body too large")
)

// StatusError is returned for any non-2xx response.
type StatusError struct {
	StatusCode int
	Status     string
	URL        string
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("agixt: GET %s: %s", e.URL, e.Status)
	}
	return fmt.Sprintf("agixt: GET %s: %s: %s", e.URL, e.Status, e.Body)
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var se *StatusError
	return errors.As(err, &se) && se.StatusCode == http.StatusNotFound
}

// Client talks to one AGiXT API base URL.
type Client struct {
	BaseURL    string
	HTTPClient *http.Client
	UserAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.HTTPClient = hc
		}
	}
}

// WithTimeout sets the HTTP client timeout. Zero means no timeout. The
// client is copied first, so one passed to WithHTTPClient is not modified.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		hc := *c.HTTPClient
		hc.Timeout = d
		c.HTTPClient = &hc
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.UserAgent = ua
	}
}

// NewClient creates a client for baseURL.
func NewClient(baseURL string, opts ...Option) *Client {
	c := &Client{
		BaseURL:    baseURL,
		HTTPClient: &http.Client{},
		UserAgent:  defaultUserAgent,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// AgentURL returns base + "/api/agent/" + agent. The agent name is not
// escaped, so the URL is exactly what the backend route expects.
func AgentURL(base, agent string) string {
	return base + "/api/agent/" + agent
}

// GetAgent fetches the agent document for name.
func (c *Client) GetAgent(ctx context.Context, name string) (json.RawMessage, error) {
	return c.getJSON(ctx, AgentURL(c.BaseURL, name))
}

func (c *Client) getJSON(ctx context.Context, url string) (json.RawMessage, error) {
	logger := logging.FromContext(ctx)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("agixt: building request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.UserAgent != "" {
		req.Header.Set("User-Agent", c.UserAgent)
	}

	start := time.Now()
	resp, err := c.HTTPClient.Do(req)
	if err != nil {
		logger.Debug().Ctx(ctx).Str("component", "agixt").Str("url", url).Err(err).Msg("request failed")
		return nil, fmt.Errorf("agixt: GET %s: %w", url, err)
	}
	defer resp.Body.Close()

	logger.Debug().Ctx(ctx).
		Str("component", "agixt").
		Str("url", url).
		Int("status", resp.StatusCode).
		Dur("duration", time.Since(start)).
		Msg("request completed")

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes+1))
	if err != nil {
		return nil, fmt.Errorf("agixt: reading response: %w", err)
	}
	if len(body) > maxResponseBytes {
		return nil, fmt.Errorf("%w: more than %d bytes", ErrTooLarge, maxResponseBytes)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{
			StatusCode: resp.StatusCode,
			Status:     resp.Status,
			URL:        url,
			Body:       truncateBody(body),
		}
	}

	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return nil, ErrEmptyResponse
	}
	if !json.Valid(body) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidJSON, truncateBody(body))
	}
	return json.RawMessage(body), nil
}

func truncateBody(body []byte) string {
	s := string(bytes.TrimSpace(body))
	if len(s) <= maxErrorBodyBytes {
		return s
	}
	return s[:maxErrorBodyBytes] + "..."
}
