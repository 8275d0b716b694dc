// Package api is the REST client for the sandbox service.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"sync"
	"time"
)

const defaultTimeout = 15 * time.Second

// Client talks to the sandbox service. It is safe for concurrent use.
type Client struct {
	baseURL   string
	userAgent string
	http      *http.Client

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithUserAgent sets the User-Agent header.
func WithUserAgent(ua string) Option {
	return func(c *Client) {
		c.userAgent = ua
	}
}

// New creates a client for baseURL. An empty token makes anonymous requests.
func New(baseURL, token string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimRight(baseURL, "/"),
		token:     token,
		userAgent: "sbx",
		http:      &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// HasToken reports whether requests are authenticated.
func (c *Client) HasToken() bool {
	return c.bearer() != ""
}

// SetToken replaces the bearer token.
func (c *Client) SetToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.token = token
}

func (c *Client) bearer() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// CurrentUser returns the signed-in user.
func (c *Client) CurrentUser(ctx context.Context) (*User, error) {
	var u User
	if err := c.do(ctx, http.MethodGet, "/api/v1/users/current", nil, &u); err != nil {
		return nil, fmt.Errorf("get current user: %w", err)
	}
	return &u, nil
}

// ListSandboxes returns one page of the signed-in user's sandboxes.
func (c *Client) ListSandboxes(ctx context.Context, page, pageSize int) (*SandboxList, error) {
	q := url.Values{}
	q.Set("page", strconv.Itoa(max(page, 1)))
	if pageSize > 0 {
		q.Set("page_size", strconv.Itoa(pageSize))
	}

	var list SandboxList
	if err := c.do(ctx, http.MethodGet, "/api/v1/sandboxes?"+q.Encode(), nil, &list); err != nil {
		return nil, fmt.Errorf("list sandboxes: %w", err)
	}
	return &list, nil
}

// GetSandbox fetches a sandbox by ID.
func (c *Client) GetSandbox(ctx context.Context, id string) (*Sandbox, error) {
	var sb Sandbox
	if err := c.do(ctx, http.MethodGet, sandboxPath(id), nil, &sb); err != nil {
		return nil, fmt.Errorf("get sandbox %s: %w", id, err)
	}
	return &sb, nil
}

// ForkSandbox creates a copy owned by the signed-in user.
func (c *Client) ForkSandbox(ctx context.Context, id string) (*Sandbox, error) {
	var sb Sandbox
	if err := c.do(ctx, http.MethodPost, sandboxPath(id)+"/fork", nil, &sb); err != nil {
		return nil, fmt.Errorf("fork sandbox %s: %w", id, err)
	}
	return &sb, nil
}

// RenameSandbox changes a sandbox title.
func (c *Client) RenameSandbox(ctx context.Context, id, title string) (*Sandbox, error) {
	var sb Sandbox
	body := map[string]any{"title": title}
	if err := c.do(ctx, http.MethodPatch, sandboxPath(id), body, &sb); err != nil {
		return nil, fmt.Errorf("rename sandbox %s: %w", id, err)
	}
	return &sb, nil
}

// SetFrozen freezes or unfreezes a sandbox.
func (c *Client) SetFrozen(ctx context.Context, id string, frozen bool) (*Sandbox, error) {
	var sb Sandbox
	body := map[string]any{"is_frozen": frozen}
	if err := c.do(ctx, http.MethodPatch, sandboxPath(id), body, &sb); err != nil {
		return nil, fmt.Errorf("set frozen %s: %w", id, err)
	}
	return &sb, nil
}

// DeleteSandbox removes a sandbox.
func (c *Client) DeleteSandbox(ctx context.Context, id string) error {
	if err := c.do(ctx, http.MethodDelete, sandboxPath(id), nil, nil); err != nil {
		return fmt.Errorf("delete sandbox %s: %w", id, err)
	}
	return nil
}

// ImportGitHub creates a sandbox from a repository. importPath is the
// "github/owner/repo[/tree/branch/path]" form.
func (c *Client) ImportGitHub(ctx context.Context, importPath string) (*Sandbox, error) {
	var sb Sandbox
	if err := c.do(ctx, http.MethodPost, "/api/v1/import/"+strings.Trim(importPath, "/"), nil, &sb); err != nil {
		return nil, fmt.Errorf("import %s: %w", importPath, err)
	}
	return &sb, nil
}

func sandboxPath(id string) string {
	return "/api/v1/sandboxes/" + url.PathEscape(id)
}

// do sends a JSON request and decodes the "data" field of the response
// envelope into out (when non-nil).
func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := c.bearer(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	slog.Debug("api request", "method", method, "path", path, "status", resp.StatusCode, "dur", time.Since(start))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &Error{Status: resp.StatusCode}
		var env envelope[json.RawMessage]
		if json.Unmarshal(raw, &env) == nil && env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		return apiErr
	}

	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}

	var env envelope[json.RawMessage]
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	if len(env.Data) == 0 {
		return nil
	}
	if err := json.Unmarshal(env.Data, out); err != nil {
		return fmt.Errorf("decode data: %w", err)
	}
	return nil
}
