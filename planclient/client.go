// Package planclient talks to a termplan HTTP service.
package planclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"

	"github.com/cyp0633/termplan/export"
	"github.com/cyp0633/termplan/plan"
	"github.com/cyp0633/termplan/server"
)

// ErrNotFound is returned when the service does not know the plan.
var ErrNotFound = errors.New("plan not found")

// StatusError is returned for any other unexpected status.
type StatusError struct {
	Code    int
	Message string
}

func (e *StatusError) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("unexpected status code %d: %s", e.Code, e.Message)
	}
	return fmt.Sprintf("unexpected status code: %d", e.Code)
}

// Export is a downloaded export. When NotModified is set the caller's copy
// is current and Body is empty.
type Export struct {
	Body        []byte
	ContentType string
	ETag        string
	NotModified bool
}

// Client is a termplan service client. It is safe for concurrent use.
type Client struct {
	client  *http.Client
	baseURL url.URL
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client. Its transport is used
// as is.
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		if c != nil {
			cl.client = c
		}
	}
}

// WithLogger sets the logger for the client
func WithLogger(logger *slog.Logger) Option {
	return func(cl *Client) {
		if logger != nil {
			cl.logger = logger
		}
	}
}

// New creates a client for the service at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse base URL %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("base URL %q must be absolute", baseURL)
	}

	c := &Client{
		baseURL: *u,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.client == nil {
		c.client = &http.Client{Transport: NewLoggingTransport(nil, c.logger)}
	}
	return c, nil
}

// resolve joins path segments onto the base URL, escaping each one.
func (c *Client) resolve(segments ...string) string {
	return c.baseURL.JoinPath(segments...).String()
}

// ListPlans returns every plan the service holds.
func (c *Client) ListPlans(ctx context.Context) ([]server.PlanInfo, error) {
	var out []server.PlanInfo
	if err := c.getJSON(ctx, c.resolve("plans"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Plan returns the summary and catalog of a plan.
func (c *Client) Plan(ctx context.Context, id string) (*server.PlanResponse, error) {
	var out server.PlanResponse
	if err := c.getJSON(ctx, c.resolve("plans", id), &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// Weeks returns the week groups of a plan in ascending order.
func (c *Client) Weeks(ctx context.Context, id string) ([]server.WeekResponse, error) {
	var out []server.WeekResponse
	if err := c.getJSON(ctx, c.resolve("plans", id, "weeks"), &out); err != nil {
		return nil, err
	}
	return out, nil
}

// Export downloads a plan export. A non-empty etag is sent as
// If-None-Match.
func (c *Client) Export(ctx context.Context, id string, format export.Format, etag string) (*Export, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.resolve("plans", id, "export", string(format)), nil)
	if err != nil {
		return nil, err
	}
	if etag != "" {
		req.Header.Set("If-None-Match", etag)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusNotModified:
		return &Export{ETag: etag, NotModified: true}, nil
	case http.StatusOK:
	default:
		return nil, statusError(resp)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read export: %w", err)
	}
	c.logger.Debug("export downloaded", "id", id, "format", format, "bytes", len(body))
	return &Export{
		Body:        body,
		ContentType: resp.Header.Get("Content-Type"),
		ETag:        resp.Header.Get("ETag"),
	}, nil
}

// PutPlan uploads def under id and returns the new ETag.
func (c *Client) PutPlan(ctx context.Context, id string, def *plan.Definition) (string, error) {
	var buf bytes.Buffer
	if err := def.Encode(&buf); err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, c.resolve("plans", id), &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/yaml")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return "", statusError(resp)
	}
	return resp.Header.Get("ETag"), nil
}

// DeletePlan removes a plan.
func (c *Client) DeletePlan(ctx context.Context, id string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, c.resolve("plans", id), nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusNoContent {
		return statusError(resp)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, target string, v any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return statusError(resp)
	}
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return fmt.Errorf("failed to decode response from %s: %w", target, err)
	}
	return nil
}

// statusError reads the JSON error body the service sends, if any.
func statusError(resp *http.Response) error {
	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	var body struct {
		Error string `json:"error"`
	}
	_ = json.NewDecoder(io.LimitReader(resp.Body, 4096)).Decode(&body)
	return &StatusError{Code: resp.StatusCode, Message: body.Error}
}
