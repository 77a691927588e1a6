// Package apiclient is a small HTTP client for the quill posts API, used by
// the CLI subcommands.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dyluth/quill/pkg/posts"
)

// DefaultBaseURL is used when no server URL is configured.
const DefaultBaseURL = "http://localhost:3000"

// APIError is a non-2xx response from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("server returned %d: %s", e.Status, e.Message)
}

// Health mirrors the /api/health payload.
type Health struct {
	Status    string  `json:"status"`
	Uptime    float64 `json:"uptime"`
	Timestamp string  `json:"timestamp"`
}

// Client talks to one quill server.
type Client struct {
	baseURL string
	http    *http.Client
}

// New returns a client for baseURL. A nil httpClient gets a 10s timeout.
func New(baseURL string, httpClient *http.Client) (*Client, error) {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid server URL: %q", baseURL)
	}
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}, nil
}

// BaseURL returns the server root this client targets.
func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) List(ctx context.Context) ([]posts.Post, error) {
	var out []posts.Post
	if err := c.do(ctx, http.MethodGet, "/api/posts", nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *Client) Get(ctx context.Context, id string) (posts.Post, error) {
	var out posts.Post
	err := c.do(ctx, http.MethodGet, "/api/posts/"+url.PathEscape(id), nil, &out)
	return out, err
}

func (c *Client) Create(ctx context.Context, in posts.Input) (posts.Post, error) {
	var out posts.Post
	err := c.do(ctx, http.MethodPost, "/api/posts", in, &out)
	return out, err
}

func (c *Client) Update(ctx context.Context, id string, in posts.Input) (posts.Post, error) {
	var out posts.Post
	err := c.do(ctx, http.MethodPut, "/api/posts/"+url.PathEscape(id), in, &out)
	return out, err
}

func (c *Client) Patch(ctx context.Context, id string, patch posts.Patch) (posts.Post, error) {
	var out posts.Post
	err := c.do(ctx, http.MethodPatch, "/api/posts/"+url.PathEscape(id), patch, &out)
	return out, err
}

// Delete removes a post and returns the server's copy of it.
func (c *Client) Delete(ctx context.Context, id string) (posts.Post, error) {
	var out struct {
		OK      bool       `json:"ok"`
		Removed posts.Post `json:"removed"`
	}
	if err := c.do(ctx, http.MethodDelete, "/api/posts/"+url.PathEscape(id), nil, &out); err != nil {
		return posts.Post{}, err
	}
	return out.Removed, nil
}

// Health calls /api/health. A 503 still decodes into Health alongside the error.
func (c *Client) Health(ctx context.Context) (Health, error) {
	var out Health
	err := c.do(ctx, http.MethodGet, "/api/health", nil, &out)
	return out, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var rdr io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		rdr = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rdr)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach %s: %w", c.baseURL, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		var payload struct {
			Error string `json:"error"`
		}
		if json.Unmarshal(data, &payload) == nil && payload.Error != "" {
			apiErr.Message = payload.Error
		}
		if resp.StatusCode == http.StatusServiceUnavailable && out != nil {
			_ = json.Unmarshal(data, out)
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// IsNotFound reports whether err is a 404 from the server.
func IsNotFound(err error) bool {
	return statusOf(err) == http.StatusNotFound
}

// IsBadRequest reports whether err is a 400 from the server.
func IsBadRequest(err error) bool {
	return statusOf(err) == http.StatusBadRequest
}

func statusOf(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Status
	}
	return 0
}
