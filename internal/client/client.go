// Package client talks to the /api/bugs HTTP API.
package client

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

	"github.com/sumire/bugtracker/internal/domain"
)

// DefaultBaseURL points at a locally running server.
const DefaultBaseURL = "http://localhost:8080/api/bugs"

const (
	msgNoResponse = "No response from server. Please try again."
	msgFallback   = "Something went wrong"
)

// Error is the normalized form of every failed call. Message is suitable for
// showing to a user as-is.
type Error struct {
	// Status is the HTTP status, or 0 when no response was received.
	Status int
	// Message prefers the server's message, then a no-response notice, then a generic fallback.
	Message string
	// Fields holds field-level validation messages when the server sent them.
	Fields map[string]string
	Err    error
}

func (e *Error) Error() string { return e.Message }

func (e *Error) Unwrap() error { return e.Err }

// Client is an HTTP client for the bug API.
type Client struct {
	baseURL string
	http    *http.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.http = hc
	}
}

// New creates a Client for the API rooted at baseURL, e.g. http://localhost:8080/api/bugs.
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q must use http or https", baseURL)
	}

	c := &Client{
		baseURL: strings.TrimRight(u.String(), "/"),
		http:    &http.Client{Timeout: 15 * time.Second},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// List fetches every bug, newest first.
func (c *Client) List(ctx context.Context) ([]domain.Bug, error) {
	var bugs []domain.Bug
	if err := c.do(ctx, http.MethodGet, c.baseURL, nil, &bugs); err != nil {
		return nil, err
	}
	if bugs == nil {
		bugs = []domain.Bug{}
	}
	return bugs, nil
}

// Create submits a new bug and returns the stored record.
func (c *Client) Create(ctx context.Context, in domain.BugInput) (*domain.Bug, error) {
	var bug domain.Bug
	if err := c.do(ctx, http.MethodPost, c.baseURL, in, &bug); err != nil {
		return nil, err
	}
	return &bug, nil
}

// Update submits new values for the bug with the given id and returns the stored record.
func (c *Client) Update(ctx context.Context, id string, in domain.BugInput) (*domain.Bug, error) {
	var bug domain.Bug
	if err := c.do(ctx, http.MethodPut, c.bugURL(id), in, &bug); err != nil {
		return nil, err
	}
	return &bug, nil
}

// Delete removes the bug with the given id.
func (c *Client) Delete(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, c.bugURL(id), nil, nil)
}

func (c *Client) bugURL(id string) string {
	return c.baseURL + "/" + url.PathEscape(id)
}

func (c *Client) do(ctx context.Context, method, target string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return requestError(fmt.Errorf("encode request: %w", err))
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return requestError(err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Message: msgNoResponse, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: msgNoResponse, Err: fmt.Errorf("read response: %w", err)}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return responseError(resp.StatusCode, data)
	}

	if out == nil || len(data) == 0 {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &Error{Status: resp.StatusCode, Message: msgFallback, Err: fmt.Errorf("decode response: %w", err)}
	}
	return nil
}

func requestError(err error) *Error {
	msg := err.Error()
	if msg == "" {
		msg = msgFallback
	}
	return &Error{Message: msg, Err: err}
}

// responseError builds an Error from a non-2xx reply. The body may be
// {"message": ...}, {"errors": {...}} or a flat field map.
func responseError(status int, data []byte) *Error {
	e := &Error{
		Status:  status,
		Message: msgFallback,
		Err:     fmt.Errorf("unexpected status %d", status),
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return e
	}

	if m, ok := raw["message"]; ok {
		var msg string
		if json.Unmarshal(m, &msg) == nil && msg != "" {
			e.Message = msg
		}
		return e
	}

	if nested, ok := raw["errors"]; ok {
		var fields map[string]string
		if json.Unmarshal(nested, &fields) == nil {
			e.Fields = fields
		}
		return e
	}

	fields := make(map[string]string, len(raw))
	for k, v := range raw {
		var s string
		if json.Unmarshal(v, &s) != nil {
			return e
		}
		fields[k] = s
	}
	if len(fields) > 0 {
		e.Fields = fields
	}
	return e
}

// Message extracts the user-facing text from any error returned by Client.
func Message(err error) string {
	if err == nil {
		return ""
	}
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Message
	}
	if msg := err.Error(); msg != "" {
		return msg
	}
	return msgFallback
}
