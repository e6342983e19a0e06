// Package api is the typed HTTP client for the clinic booking backend. It
// owns the wire contract only; all scheduling decisions stay server-side.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"clinicdesk/internal/observability/metrics"
	"clinicdesk/pkg/logging"
)

const defaultTimeout = 20 * time.Second

// TokenSource supplies the bearer credential attached to every request.
// An empty token means the request goes out unauthenticated.
type TokenSource interface {
	Token() string
}

// TokenFunc adapts a function to a TokenSource.
type TokenFunc func() string

func (f TokenFunc) Token() string { return f() }

// StaticToken is a fixed-credential TokenSource, mostly for tests.
type StaticToken string

func (s StaticToken) Token() string { return string(s) }

// Error is a server-reported rejection: a non-2xx status whose body carried
// a message envelope.
type Error struct {
	StatusCode int
	Message    string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: status %d: %s", e.StatusCode, e.Message)
	}
	return fmt.Sprintf("api: status %d", e.StatusCode)
}

// Message returns the server's message verbatim when err carries one, and
// fallback otherwise. View-models use it to build user-visible strings.
func Message(err error, fallback string) string {
	var apiErr *Error
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	return fallback
}

// Client is the gateway to the clinic backend.
type Client struct {
	baseURL    string
	httpClient *http.Client
	tokens     TokenSource
	logger     *logging.Logger
	metrics    *metrics.RequestMetrics
}

// NewClient creates a gateway client rooted at baseURL (no trailing slash).
func NewClient(baseURL string, tokens TokenSource, logger *logging.Logger) *Client {
	if logger == nil {
		logger = logging.Default()
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		tokens: tokens,
		logger: logger.WithComponent("api"),
	}
}

// WithHTTPClient overrides the underlying HTTP client.
func (c *Client) WithHTTPClient(h *http.Client) *Client {
	if h != nil {
		c.httpClient = h
	}
	return c
}

// WithMetrics attaches a request recorder.
func (c *Client) WithMetrics(m *metrics.RequestMetrics) *Client {
	c.metrics = m
	return c
}

type messageEnvelope struct {
	Message string `json:"message"`
	Error   string `json:"error"`
}

// do executes one JSON request. op labels the call for metrics and logs;
// body and out may be nil.
func (c *Client) do(ctx context.Context, op, method, path string, body, out interface{}) error {
	raw, err := c.doRaw(ctx, op, method, path, body)
	if err != nil {
		return err
	}
	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api: %s: unmarshal response: %w", op, err)
	}
	return nil
}

// doList executes a GET for a collection, tolerating backends that wrap the
// array in an {items: []} or {data: []} envelope.
func (c *Client) doList(ctx context.Context, op, path string, out interface{}) error {
	raw, err := c.doRaw(ctx, op, http.MethodGet, path, nil)
	if err != nil {
		return err
	}
	return unmarshalList(op, raw, out)
}

func unmarshalList(op string, raw []byte, out interface{}) error {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || string(trimmed) == "null" {
		return nil
	}
	if trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, out); err != nil {
			return fmt.Errorf("api: %s: unmarshal list: %w", op, err)
		}
		return nil
	}
	var envelope struct {
		Items json.RawMessage `json:"items"`
		Data  json.RawMessage `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &envelope); err != nil {
		return fmt.Errorf("api: %s: unmarshal list envelope: %w", op, err)
	}
	inner := envelope.Items
	if len(inner) == 0 {
		inner = envelope.Data
	}
	if len(inner) == 0 {
		return nil
	}
	if err := json.Unmarshal(inner, out); err != nil {
		return fmt.Errorf("api: %s: unmarshal wrapped list: %w", op, err)
	}
	return nil
}

func (c *Client) doRaw(ctx context.Context, op, method, path string, body interface{}) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		encoded, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("api: %s: marshal request: %w", op, err)
		}
		reader = bytes.NewReader(encoded)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("api: %s: create request: %w", op, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")
	if c.tokens != nil {
		if token := c.tokens.Token(); token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	started := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.metrics.ObserveRequest(op, 0, time.Since(started).Seconds())
		return nil, fmt.Errorf("api: %s: http request: %w", op, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	c.metrics.ObserveRequest(op, resp.StatusCode, time.Since(started).Seconds())
	if err != nil {
		return nil, fmt.Errorf("api: %s: read response: %w", op, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, c.rejection(op, resp.StatusCode, respBody)
	}
	return respBody, nil
}

func (c *Client) rejection(op string, status int, body []byte) error {
	var envelope messageEnvelope
	_ = json.Unmarshal(body, &envelope)
	msg := envelope.Message
	if msg == "" {
		msg = envelope.Error
	}
	c.logger.Debug("request rejected", "operation", op, "status", status, "message", msg)
	return &Error{StatusCode: status, Message: msg}
}
