package npm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/semver/v3"
)

var (
	// ErrNoTarball is returned when a version has no tarball URL.
	ErrNoTarball = errors.New("no tarball URL")
	// ErrVersionNotFound is returned when no version satisfies a request.
	ErrVersionNotFound = errors.New("version not found")
)

// Packument is the registry metadata document of a package.
type Packument struct {
	Name        string                 `json:"name"`
	Description string                 `json:"description"`
	DistTags    map[string]string      `json:"dist-tags"`
	Versions    map[string]VersionMeta `json:"versions"`
	Keywords    []string               `json:"keywords,omitempty"`
	Repository  json.RawMessage        `json:"repository,omitempty"`
}

// VersionMeta is the manifest of one published version.
type VersionMeta struct {
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
	Dist        Dist     `json:"dist"`
	N8n         *N8nMeta `json:"n8n,omitempty"`
}

// Dist locates and fingerprints a version tarball.
type Dist struct {
	Tarball   string `json:"tarball"`
	Shasum    string `json:"shasum"`
	Integrity string `json:"integrity"`
}

// N8nMeta is the "n8n" block of a community package manifest. It lists the
// compiled node and credential files the package registers.
type N8nMeta struct {
	APIVersion  int      `json:"n8nNodesApiVersion,omitempty"`
	Nodes       []string `json:"nodes,omitempty"`
	Credentials []string `json:"credentials,omitempty"`
}

// Packument fetches the metadata document of a package.
func (c *Client) Packument(ctx context.Context, name string) (*Packument, error) {
	var p Packument
	if err := c.http.GetJSON(ctx, c.packumentURL(name), nil, &p); err != nil {
		return nil, fmt.Errorf("fetching metadata for %s: %w", name, err)
	}
	return &p, nil
}

// ResolveVersion picks a version of p. An empty request or "latest" means
// the latest dist-tag; any other dist-tag name is honoured; otherwise the
// request is a semver constraint and the highest satisfying version wins.
func ResolveVersion(p *Packument, request string) (string, error) {
	if request == "" {
		request = "latest"
	}
	if v, ok := p.DistTags[request]; ok {
		if _, exists := p.Versions[v]; exists {
			return v, nil
		}
		return "", fmt.Errorf("%w: dist-tag %s points to missing %s", ErrVersionNotFound, request, v)
	}
	if _, ok := p.Versions[request]; ok {
		return request, nil
	}

	constraint, err := semver.NewConstraint(request)
	if err != nil {
		return "", fmt.Errorf("parsing version constraint %q: %w", request, err)
	}

	var best *semver.Version
	bestRaw := ""
	for raw := range p.Versions {
		v, err := semver.NewVersion(raw)
		if err != nil {
			continue
		}
		if !constraint.Check(v) {
			continue
		}
		if best == nil || v.GreaterThan(best) {
			best = v
			bestRaw = raw
		}
	}
	if best == nil {
		return "", fmt.Errorf("%w: %s@%s", ErrVersionNotFound, p.Name, request)
	}
	return bestRaw, nil
}
