package npm

import (
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/branding"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/httpx"
)

// Client talks to an npm-compatible registry.
type Client struct {
	registry string
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

// WithRetries sets the maximum attempts for metadata requests.
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

// New creates a Client. An empty registryURL selects the public registry.
func New(registryURL string, opts ...Option) *Client {
	if registryURL == "" {
		registryURL = branding.RegistryURL()
	}
	c := &Client{registry: strings.TrimRight(registryURL, "/")}
	for _, opt := range opts {
		opt(c)
	}
	c.http = httpx.New(c.httpOpts...)
	return c
}

// packumentURL returns the metadata URL of a package. Scoped names keep
// their "@" and have the "/" escaped, as the registry expects.
func (c *Client) packumentURL(name string) string {
	return c.registry + "/" + url.PathEscape(name)
}

// SafeName turns a package name into a single directory name:
// "@n8n/n8n-nodes-langchain" becomes "n8n_n8n-nodes-langchain".
func SafeName(name string) string {
	return strings.ReplaceAll(strings.ReplaceAll(name, "/", "_"), "@", "")
}
