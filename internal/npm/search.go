package npm

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"strconv"
	"strings"
)

// CommunityKeyword is the keyword n8n requires on community node packages.
const CommunityKeyword = "n8n-community-node-package"

// DefaultSearchTerms follow the naming conventions of community node packages.
var DefaultSearchTerms = []string{
	"keywords:" + CommunityKeyword,
	"n8n-nodes-",
	"n8n-community-",
	"@n8n/",
}

// DefaultSearchSize is the per-term result size.
const DefaultSearchSize = 100

// SearchResult is one package found in the registry.
type SearchResult struct {
	Name        string   `json:"name"`
	Version     string   `json:"version"`
	Description string   `json:"description"`
	Keywords    []string `json:"keywords,omitempty"`
	Homepage    string   `json:"homepage,omitempty"`
	Repository  string   `json:"repository,omitempty"`
	Publisher   string   `json:"publisher,omitempty"`
	Score       float64  `json:"score"`
}

type searchResponse struct {
	Objects []struct {
		Package struct {
			Name        string   `json:"name"`
			Version     string   `json:"version"`
			Description string   `json:"description"`
			Keywords    []string `json:"keywords"`
			Links       struct {
				Homepage   string `json:"homepage"`
				Repository string `json:"repository"`
			} `json:"links"`
			Publisher struct {
				Username string `json:"username"`
			} `json:"publisher"`
		} `json:"package"`
		SearchScore float64 `json:"searchScore"`
		Score       struct {
			Final float64 `json:"final"`
		} `json:"score"`
	} `json:"objects"`
	Total int `json:"total"`
}

// SearchOptions tune Search.
type SearchOptions struct {
	// Size is the number of results requested per term.
	Size int
	// All keeps packages that do not look like n8n node packages.
	All bool
}

// Search queries the registry once per term and merges the results. Each
// package name appears once; results are ordered by score, best first.
// A failing term is logged and skipped; Search fails only if every term does.
func (c *Client) Search(ctx context.Context, terms []string, opts SearchOptions) ([]SearchResult, error) {
	if len(terms) == 0 {
		terms = DefaultSearchTerms
	}
	if opts.Size <= 0 {
		opts.Size = DefaultSearchSize
	}

	var all []SearchResult
	failures := 0
	var lastErr error
	for _, term := range terms {
		results, err := c.searchTerm(ctx, term, opts.Size)
		if err != nil {
			slog.Warn("search term failed", "term", term, "error", err)
			failures++
			lastErr = err
			continue
		}
		slog.Debug("search term", "term", term, "results", len(results))
		all = append(all, results...)
	}
	if failures == len(terms) {
		return nil, fmt.Errorf("searching registry: %w", lastErr)
	}

	unique := Dedupe(all)
	if !opts.All {
		filtered := unique[:0]
		for _, r := range unique {
			if IsN8nPackage(r) {
				filtered = append(filtered, r)
			}
		}
		unique = filtered
	}
	SortByScore(unique)
	return unique, nil
}

func (c *Client) searchTerm(ctx context.Context, term string, size int) ([]SearchResult, error) {
	q := url.Values{}
	q.Set("text", term)
	q.Set("size", strconv.Itoa(size))
	q.Set("quality", "0.65")
	q.Set("popularity", "0.35")
	q.Set("maintenance", "0.35")

	var resp searchResponse
	if err := c.http.GetJSON(ctx, c.registry+"/-/v1/search?"+q.Encode(), nil, &resp); err != nil {
		return nil, err
	}

	results := make([]SearchResult, 0, len(resp.Objects))
	for _, o := range resp.Objects {
		score := o.SearchScore
		if score == 0 {
			score = o.Score.Final
		}
		results = append(results, SearchResult{
			Name:        o.Package.Name,
			Version:     o.Package.Version,
			Description: o.Package.Description,
			Keywords:    o.Package.Keywords,
			Homepage:    o.Package.Links.Homepage,
			Repository:  o.Package.Links.Repository,
			Publisher:   o.Package.Publisher.Username,
			Score:       score,
		})
	}
	return results, nil
}

// Dedupe keeps the first result for each package name.
func Dedupe(results []SearchResult) []SearchResult {
	seen := make(map[string]bool)
	var out []SearchResult
	for _, r := range results {
		if r.Name == "" || seen[r.Name] {
			continue
		}
		seen[r.Name] = true
		out = append(out, r)
	}
	return out
}

// IsN8nPackage reports whether a package looks like an n8n node package.
func IsN8nPackage(r SearchResult) bool {
	for _, k := range r.Keywords {
		if k == CommunityKeyword {
			return true
		}
	}
	return strings.Contains(r.Name, "n8n-nodes-") ||
		strings.Contains(r.Name, "n8n-community-") ||
		strings.HasPrefix(r.Name, "@n8n/") ||
		strings.Contains(strings.ToLower(r.Description), "n8n")
}

// SortByScore orders results by descending score, then by name.
func SortByScore(results []SearchResult) {
	sort.SliceStable(results, func(i, j int) bool {
		if results[i].Score != results[j].Score {
			return results[i].Score > results[j].Score
		}
		return results[i].Name < results[j].Name
	})
}
