package n8n

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/httpx"
)

// Community package endpoints.
const (
	packagesPath       = "/rest/community-packages"
	packagesInstallAlt = "/rest/community-packages/install"
)

// InstalledNode is a node contributed by a community package.
type InstalledNode struct {
	Name string `json:"name"`
	Type string `json:"type"`
}

// InstalledPackage is a community package reported by the server.
type InstalledPackage struct {
	PackageName      string          `json:"packageName"`
	InstalledVersion string          `json:"installedVersion"`
	InstalledNodes   []InstalledNode `json:"installedNodes,omitempty"`
}

// InstallResult records which endpoint accepted an install request.
type InstallResult struct {
	Package    string `json:"package"`
	Endpoint   string `json:"endpoint"`
	StatusCode int    `json:"status"`
}

// InstalledPackages lists the community packages installed on the server.
func (c *Client) InstalledPackages(ctx context.Context) ([]InstalledPackage, error) {
	resp, err := c.get(ctx, packagesPath)
	if err != nil {
		return nil, fmt.Errorf("listing community packages: %w", err)
	}
	var env struct {
		Data []InstalledPackage `json:"data"`
	}
	if err := resp.JSON(&env); err != nil {
		return nil, err
	}
	return env.Data, nil
}

// InstallPackage asks the server to install the latest version of a
// community package. The primary endpoint is tried first; on a non-2xx
// answer the legacy install endpoint is tried. Requests are not retried.
func (c *Client) InstallPackage(ctx context.Context, name string) (*InstallResult, error) {
	if name == "" {
		return nil, errors.New("package name is required")
	}

	attempts := []struct {
		path string
		body any
	}{
		{packagesPath, map[string]string{"name": name, "version": "latest"}},
		{packagesInstallAlt, map[string]string{"packageName": name}},
	}

	var lastErr error
	for _, a := range attempts {
		url := c.url(a.path)
		resp, err := c.http.PostJSON(ctx, url, c.headers(), a.body)
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode == http.StatusOK || resp.StatusCode == http.StatusCreated {
			return &InstallResult{Package: name, Endpoint: a.path, StatusCode: resp.StatusCode}, nil
		}
		lastErr = statusErr(http.MethodPost, url, resp)
		// Credentials will not work on the fallback either.
		if errors.Is(lastErr, ErrUnauthorized) {
			break
		}
	}
	return nil, fmt.Errorf("installing %s: %w", name, lastErr)
}

// IsStatus reports whether err carries the given HTTP status.
func IsStatus(err error, code int) bool {
	var se *httpx.StatusError
	return errors.As(err, &se) && se.StatusCode == code
}
