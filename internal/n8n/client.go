package n8n

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/httpx"
)

// Header carrying the public API key.
const APIKeyHeader = "X-N8N-API-KEY"

// Status sentinels returned (wrapped) by typed calls.
var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
)

// Client talks to one n8n server.
type Client struct {
	baseURL string
	apiKey  string
	token   string

	httpOpts []httpx.Option
	http     *httpx.Client
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient sets a custom HTTP client (useful for testing).
func WithHTTPClient(c *http.Client) Option {
	return func(cl *Client) {
		cl.httpOpts = append(cl.httpOpts, httpx.WithHTTPClient(c))
	}
}

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(cl *Client) {
		cl.httpOpts = append(cl.httpOpts, httpx.WithTimeout(d))
	}
}

// WithRetries sets the maximum attempts for GET requests.
func WithRetries(n int) Option {
	return func(cl *Client) {
		cl.httpOpts = append(cl.httpOpts, httpx.WithRetries(n))
	}
}

// WithBackoff sets the initial retry interval.
func WithBackoff(d time.Duration) Option {
	return func(cl *Client) {
		cl.httpOpts = append(cl.httpOpts, httpx.WithBackoff(d))
	}
}

// WithAPIKey sends key in the X-N8N-API-KEY header.
func WithAPIKey(key string) Option {
	return func(cl *Client) {
		cl.apiKey = key
	}
}

// WithToken sends token as a bearer Authorization header.
func WithToken(token string) Option {
	return func(cl *Client) {
		cl.token = token
	}
}

// New creates a Client for the server at baseURL (e.g. "http://localhost:5678").
func New(baseURL string, opts ...Option) *Client {
	c := &Client{baseURL: strings.TrimRight(baseURL, "/")}
	for _, opt := range opts {
		opt(c)
	}
	c.http = httpx.New(c.httpOpts...)
	return c
}

// BaseURL returns the server base URL.
func (c *Client) BaseURL() string { return c.baseURL }

func (c *Client) url(path string) string {
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return c.baseURL + path
}

func (c *Client) headers() http.Header {
	h := http.Header{}
	if c.apiKey != "" {
		h.Set(APIKeyHeader, c.apiKey)
	}
	if c.token != "" {
		h.Set("Authorization", "Bearer "+c.token)
	}
	return h
}

// get issues a GET and maps auth and not-found statuses to sentinels.
func (c *Client) get(ctx context.Context, path string) (*httpx.Response, error) {
	url := c.url(path)
	resp, err := c.http.Get(ctx, url, c.headers())
	if err != nil {
		return nil, err
	}
	if err := statusErr(http.MethodGet, url, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

func statusErr(method, url string, resp *httpx.Response) error {
	if resp.OK() {
		return nil
	}
	se := httpx.NewStatusError(method, url, resp)
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		return fmt.Errorf("%w: %w", ErrUnauthorized, se)
	case http.StatusForbidden:
		return fmt.Errorf("%w: %w", ErrForbidden, se)
	case http.StatusNotFound:
		return fmt.Errorf("%w: %w", ErrNotFound, se)
	}
	return se
}

// NodeTypes returns the raw node-type descriptions installed on the server.
// Both a bare JSON array and a {"data": [...]} envelope are accepted.
func (c *Client) NodeTypes(ctx context.Context) ([]json.RawMessage, error) {
	resp, err := c.get(ctx, "/types/nodes.json")
	if err != nil {
		return nil, fmt.Errorf("fetching node types: %w", err)
	}
	return unwrapList(resp.Body)
}

// CountNodeTypes returns the number of node types installed on the server.
func (c *Client) CountNodeTypes(ctx context.Context) (int, error) {
	nodes, err := c.NodeTypes(ctx)
	if err != nil {
		return 0, err
	}
	return len(nodes), nil
}

func unwrapList(body []byte) ([]json.RawMessage, error) {
	if !gjson.ValidBytes(body) {
		return nil, fmt.Errorf("response is not valid JSON")
	}
	res := gjson.ParseBytes(body)
	if data := res.Get("data"); res.IsObject() && data.IsArray() {
		res = data
	}
	if !res.IsArray() {
		return nil, fmt.Errorf("expected a JSON array, got %s", shapeOf(res))
	}
	var items []json.RawMessage
	res.ForEach(func(_, v gjson.Result) bool {
		items = append(items, json.RawMessage(v.Raw))
		return true
	})
	return items, nil
}
