package n8n

import (
	"context"
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// Probe outcomes.
const (
	OutcomeOK           = "ok"
	OutcomeUnauthorized = "unauthorized"
	OutcomeForbidden    = "forbidden"
	OutcomeNotFound     = "not_found"
	OutcomeOther        = "other"
	OutcomeError        = "error"
)

// DefaultProbePaths are the candidate endpoints checked for community
// package support.
var DefaultProbePaths = []string{
	"/rest/community-packages",
	"/rest/community-node-types",
	"/community-node-types",
	"/api/community-node-types",
	"/rest/settings",
	"/rest/node-types",
	"/types/nodes.json",
	"/healthz",
}

// ProbeResult describes one probed endpoint.
type ProbeResult struct {
	Path       string   `json:"path"`
	StatusCode int      `json:"status,omitempty"`
	Outcome    string   `json:"outcome"`
	Shape      string   `json:"shape,omitempty"`
	Mentions   []string `json:"mentions,omitempty"`
	Error      string   `json:"error,omitempty"`
}

// Probe GETs each path once and classifies the response. A failing probe
// never stops the others.
func (c *Client) Probe(ctx context.Context, paths []string) []ProbeResult {
	results := make([]ProbeResult, 0, len(paths))
	for _, p := range paths {
		results = append(results, c.probeOne(ctx, p))
	}
	return results
}

func (c *Client) probeOne(ctx context.Context, path string) ProbeResult {
	r := ProbeResult{Path: path}
	resp, err := c.http.Get(ctx, c.url(path), c.headers())
	if err != nil {
		r.Outcome = OutcomeError
		r.Error = err.Error()
		return r
	}
	r.StatusCode = resp.StatusCode
	r.Outcome = Classify(resp.StatusCode)
	if resp.StatusCode == http.StatusOK {
		r.Shape, r.Mentions = describeBody(resp.Body)
	}
	return r
}

// Classify maps an HTTP status code to a probe outcome.
func Classify(status int) string {
	switch status {
	case http.StatusOK:
		return OutcomeOK
	case http.StatusUnauthorized:
		return OutcomeUnauthorized
	case http.StatusForbidden:
		return OutcomeForbidden
	case http.StatusNotFound:
		return OutcomeNotFound
	}
	return OutcomeOther
}

// describeBody reports the JSON shape of a body and which keys mention
// community packages.
func describeBody(body []byte) (string, []string) {
	if !gjson.ValidBytes(body) {
		return fmt.Sprintf("text (%d bytes)", len(body)), nil
	}
	res := gjson.ParseBytes(body)
	shape := shapeOf(res)

	var mentions []string
	if res.IsObject() {
		res.ForEach(func(k, _ gjson.Result) bool {
			key := strings.ToLower(k.String())
			if strings.Contains(key, "community") || strings.Contains(key, "package") {
				mentions = append(mentions, k.String())
			}
			return true
		})
		sort.Strings(mentions)
	}
	return shape, mentions
}

func shapeOf(res gjson.Result) string {
	switch {
	case res.IsArray():
		return fmt.Sprintf("list (%d items)", len(res.Array()))
	case res.IsObject():
		var keys []string
		res.ForEach(func(k, _ gjson.Result) bool {
			keys = append(keys, k.String())
			return true
		})
		sort.Strings(keys)
		if len(keys) > 8 {
			keys = append(keys[:8], "...")
		}
		return fmt.Sprintf("object {%s}", strings.Join(keys, ", "))
	}
	return res.Type.String()
}

// ServerInfo is what the server reveals about itself without credentials.
type ServerInfo struct {
	Version      string `json:"version,omitempty"`
	HealthStatus int    `json:"healthStatus"`
	Health       string `json:"health,omitempty"`
}

// Healthy reports whether /healthz answered 200.
func (s *ServerInfo) Healthy() bool { return s.HealthStatus == http.StatusOK }

// versionPaths are checked in order for an x-n8n-version header.
var versionPaths = []string{"/healthz", "/rest/settings", "/"}

// ServerInfo reads /healthz and looks for the x-n8n-version header.
func (c *Client) ServerInfo(ctx context.Context) (*ServerInfo, error) {
	info := &ServerInfo{}
	for _, p := range versionPaths {
		resp, err := c.http.Get(ctx, c.url(p), c.headers())
		if err != nil {
			if p == "/healthz" {
				return nil, fmt.Errorf("checking health: %w", err)
			}
			continue
		}
		if p == "/healthz" {
			info.HealthStatus = resp.StatusCode
			info.Health = strings.TrimSpace(string(resp.Body))
			if len(info.Health) > maxSettingValue {
				info.Health = info.Health[:maxSettingValue-3] + "..."
			}
		}
		if v := resp.Header.Get("X-N8n-Version"); v != "" && info.Version == "" {
			info.Version = v
		}
		if p == "/rest/settings" && info.Version == "" && resp.OK() {
			info.Version = gjson.GetBytes(resp.Body, "data.versionCli").String()
		}
	}
	return info, nil
}
