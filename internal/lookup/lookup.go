// Package lookup resolves human-written node names, such as a display name
// suggested by an assistant, to the record files that describe them.
package lookup

import (
	"sort"
	"strings"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

// Match is a candidate record for a query.
type Match struct {
	File        string             `json:"file"`
	Name        string             `json:"name"`
	DisplayName string             `json:"displayName"`
	Exact       bool               `json:"exact"`
	Score       int                `json:"score"`
	Record      *nodeschema.Record `json:"-"`
}

// Resolve returns the records matching query, best first. A case-insensitive
// exact display-name match wins outright and is returned alone. Otherwise
// every record whose display name contains the query, or is contained in
// it, is a candidate; candidates are ranked by the number of words they
// share with the query, then by display name.
func Resolve(entries []nodeschema.Entry, query string) []Match {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	qWords := wordSet(q)

	var fuzzy []Match
	for _, e := range entries {
		display := e.Record.DisplayName
		if display == "" {
			continue
		}
		d := strings.ToLower(display)
		if d == q {
			return []Match{newMatch(e, true, len(qWords))}
		}
		if !strings.Contains(d, q) && !strings.Contains(q, d) {
			continue
		}
		fuzzy = append(fuzzy, newMatch(e, false, shared(qWords, wordSet(d))))
	}
	sort.SliceStable(fuzzy, func(i, j int) bool {
		if fuzzy[i].Score != fuzzy[j].Score {
			return fuzzy[i].Score > fuzzy[j].Score
		}
		return fuzzy[i].DisplayName < fuzzy[j].DisplayName
	})
	return fuzzy
}

// Best returns the top match for query.
func Best(entries []nodeschema.Entry, query string) (Match, bool) {
	matches := Resolve(entries, query)
	if len(matches) == 0 {
		return Match{}, false
	}
	return matches[0], true
}

// Search returns records whose name, display name or description contains
// query, case-insensitively, in entry order.
func Search(entries []nodeschema.Entry, query string) []Match {
	q := strings.ToLower(query)
	var out []Match
	for _, e := range entries {
		r := e.Record
		if q != "" &&
			!strings.Contains(strings.ToLower(r.Name), q) &&
			!strings.Contains(strings.ToLower(r.DisplayName), q) &&
			!strings.Contains(strings.ToLower(r.Description), q) {
			continue
		}
		out = append(out, newMatch(e, false, 0))
	}
	return out
}

func newMatch(e nodeschema.Entry, exact bool, score int) Match {
	return Match{
		File:        e.File,
		Name:        e.Record.Name,
		DisplayName: e.Record.DisplayName,
		Exact:       exact,
		Score:       score,
		Record:      e.Record,
	}
}

func wordSet(s string) map[string]bool {
	set := make(map[string]bool)
	for _, w := range strings.Fields(s) {
		set[w] = true
	}
	return set
}

func shared(a, b map[string]bool) int {
	n := 0
	for w := range a {
		if b[w] {
			n++
		}
	}
	return n
}
