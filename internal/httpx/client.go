package httpx

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v5"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/branding"
)

// Response is a fully read HTTP response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// OK reports whether the status code is 2xx.
func (r *Response) OK() bool {
	return r.StatusCode >= 200 && r.StatusCode < 300
}

// JSON decodes the body into v.
func (r *Response) JSON(v any) error {
	if err := json.Unmarshal(r.Body, v); err != nil {
		return fmt.Errorf("parsing response JSON: %w", err)
	}
	return nil
}

// StatusError describes an unexpected HTTP status.
type StatusError struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:197] + "..."
	}
	if body == "" {
		return fmt.Sprintf("%s %s returned status %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s returned status %d: %s", e.Method, e.URL, e.StatusCode, body)
}

// NewStatusError builds a StatusError from a response.
func NewStatusError(method, url string, resp *Response) *StatusError {
	return &StatusError{Method: method, URL: url, StatusCode: resp.StatusCode, Body: string(resp.Body)}
}

// Client sends requests with a fixed User-Agent and bounded GET retries.
type Client struct {
	httpClient *http.Client
	retries    int
	initial    time.Duration
	userAgent  string
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpClient = c
	}
}

// WithTimeout sets the per-request timeout on the default HTTP client.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.httpClient = &http.Client{Timeout: d}
	}
}

// WithRetries sets the maximum number of attempts for a GET. Values below 1 mean 1.
func WithRetries(n int) Option {
	return func(cl *Client) {
		cl.retries = n
	}
}

// WithBackoff sets the initial retry interval.
func WithBackoff(initial time.Duration) Option {
	return func(cl *Client) {
		cl.initial = initial
	}
}

// New creates a Client.
func New(opts ...Option) *Client {
	c := &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		retries:    3,
		initial:    500 * time.Millisecond,
		userAgent:  branding.UserAgent(),
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.retries < 1 {
		c.retries = 1
	}
	return c
}

// errRetryableStatus marks a response worth retrying.
var errRetryableStatus = errors.New("retryable status")

func retryable(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

// Get issues a GET. Non-2xx responses are returned, not treated as errors,
// so callers can branch on the status. Transport failures, 429 and 5xx are
// retried; once attempts are exhausted the last response is returned.
func (c *Client) Get(ctx context.Context, url string, header http.Header) (*Response, error) {
	var last *Response
	attempt := 0

	op := func() (*Response, error) {
		attempt++
		resp, err := c.send(ctx, http.MethodGet, url, header, nil)
		if err != nil {
			if ctx.Err() != nil {
				return nil, backoff.Permanent(err)
			}
			slog.Debug("GET failed", "url", url, "attempt", attempt, "error", err)
			return nil, err
		}
		last = resp
		if retryable(resp.StatusCode) {
			slog.Debug("GET returned retryable status", "url", url, "status", resp.StatusCode, "attempt", attempt)
			return nil, errRetryableStatus
		}
		return resp, nil
	}

	b := backoff.NewExponentialBackOff()
	b.InitialInterval = c.initial

	resp, err := backoff.Retry(ctx, op,
		backoff.WithBackOff(b),
		backoff.WithMaxTries(uint(c.retries)),
	)
	if err != nil {
		if errors.Is(err, errRetryableStatus) && last != nil {
			return last, nil
		}
		return nil, err
	}
	return resp, nil
}

// GetJSON issues a GET and decodes a 2xx body into v. Other statuses
// yield a *StatusError.
func (c *Client) GetJSON(ctx context.Context, url string, header http.Header, v any) error {
	resp, err := c.Get(ctx, url, header)
	if err != nil {
		return err
	}
	if !resp.OK() {
		return NewStatusError(http.MethodGet, url, resp)
	}
	return resp.JSON(v)
}

// PostJSON marshals body and sends it once.
func (c *Client) PostJSON(ctx context.Context, url string, header http.Header, body any) (*Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("marshaling request body: %w", err)
	}
	h := header.Clone()
	if h == nil {
		h = http.Header{}
	}
	h.Set("Content-Type", "application/json")
	return c.send(ctx, http.MethodPost, url, h, data)
}

// Stream issues a single GET and returns the open response for the caller
// to consume. The caller must close the body.
func (c *Client) Stream(ctx context.Context, url string, header http.Header) (*http.Response, error) {
	req, err := c.newRequest(ctx, http.MethodGet, url, header, nil)
	if err != nil {
		return nil, err
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("GET %s: %w", url, err)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		resp.Body.Close()
		return nil, &StatusError{Method: http.MethodGet, URL: url, StatusCode: resp.StatusCode, Body: string(body)}
	}
	return resp, nil
}

func (c *Client) newRequest(ctx context.Context, method, url string, header http.Header, body []byte) (*http.Request, error) {
	var r io.Reader
	if body != nil {
		r = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, r)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "application/json")
	}
	req.Header.Set("User-Agent", c.userAgent)
	return req, nil
}

func (c *Client) send(ctx context.Context, method, url string, header http.Header, body []byte) (*Response, error) {
	req, err := c.newRequest(ctx, method, url, header, body)
	if err != nil {
		return nil, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	return &Response{StatusCode: resp.StatusCode, Header: resp.Header, Body: data}, nil
}
