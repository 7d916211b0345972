package reconcile

import (
	"log/slog"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

// Categories used to group nodes a new harvest adds.
const (
	CategoryTriggers  = "Triggers"
	CategoryCloud     = "Cloud Services"
	CategoryDatabases = "Databases"
	CategoryEmail     = "Email"
	CategoryOthers    = "Others"
)

var categoryKeywords = []struct {
	category string
	words    []string
}{
	{CategoryTriggers, []string{"trigger"}},
	{CategoryCloud, []string{"google", "microsoft", "aws", "azure"}},
	{CategoryDatabases, []string{"database", "mysql", "postgres", "mongo"}},
	{CategoryEmail, []string{"email", "mail", "smtp"}},
}

// Categorize assigns a node name to the first category whose keyword it
// contains.
func Categorize(name string) string {
	lower := strings.ToLower(name)
	for _, c := range categoryKeywords {
		for _, w := range c.words {
			if strings.Contains(lower, w) {
				return c.category
			}
		}
	}
	return CategoryOthers
}

// NodeFile ties a content name to the file that holds it.
type NodeFile struct {
	Node  string `json:"node"`
	FileA string `json:"fileA,omitempty"`
	FileB string `json:"fileB,omitempty"`
}

// OverlapReport compares two directories by the node names inside the
// records rather than by file name.
type OverlapReport struct {
	CountA         int                 `json:"countA"`
	CountB         int                 `json:"countB"`
	Duplicates     []NodeFile          `json:"duplicates"`
	OnlyA          []NodeFile          `json:"onlyA"`
	OnlyB          []NodeFile          `json:"onlyB"`
	OverlapRate    float64             `json:"overlapRate"`
	NewContentRate float64             `json:"newContentRate"`
	Categories     map[string][]string `json:"categories"`
}

// contentNames maps the folded node name of every readable record in dir
// to its file. The record name is preferred, then the display name.
func contentNames(dir string) (map[string]string, error) {
	names, err := nodeschema.ListJSON(dir)
	if err != nil {
		return nil, err
	}
	out := make(map[string]string, len(names))
	for _, file := range names {
		if strings.HasPrefix(file, ".") {
			continue
		}
		rec, err := nodeschema.ReadFile(filepath.Join(dir, file))
		if err != nil {
			slog.Warn("skipping unreadable record", "file", file, "error", err)
			continue
		}
		name := rec.Name
		if name == "" {
			name = rec.DisplayName
		}
		if name == "" {
			continue
		}
		key := nodeschema.ContentName(name)
		if _, ok := out[key]; !ok {
			out[key] = file
		}
	}
	return out, nil
}

// Overlap compares dirA with dirB. Rates are percentages of dirB's node
// count; Categories groups the nodes only dirB has.
func Overlap(dirA, dirB string) (*OverlapReport, error) {
	a, err := contentNames(dirA)
	if err != nil {
		return nil, err
	}
	b, err := contentNames(dirB)
	if err != nil {
		return nil, err
	}

	r := &OverlapReport{
		CountA:     len(a),
		CountB:     len(b),
		Duplicates: []NodeFile{},
		OnlyA:      []NodeFile{},
		OnlyB:      []NodeFile{},
		Categories: make(map[string][]string),
	}
	for node, fileA := range a {
		if fileB, ok := b[node]; ok {
			r.Duplicates = append(r.Duplicates, NodeFile{Node: node, FileA: fileA, FileB: fileB})
		} else {
			r.OnlyA = append(r.OnlyA, NodeFile{Node: node, FileA: fileA})
		}
	}
	for node, fileB := range b {
		if _, ok := a[node]; !ok {
			r.OnlyB = append(r.OnlyB, NodeFile{Node: node, FileB: fileB})
		}
	}
	for _, list := range [][]NodeFile{r.Duplicates, r.OnlyA, r.OnlyB} {
		sort.Slice(list, func(i, j int) bool { return list[i].Node < list[j].Node })
	}
	for _, nf := range r.OnlyB {
		cat := Categorize(nf.Node)
		r.Categories[cat] = append(r.Categories[cat], nf.Node)
	}
	if r.CountB > 0 {
		r.OverlapRate = float64(len(r.Duplicates)) / float64(r.CountB) * 100
		r.NewContentRate = float64(len(r.OnlyB)) / float64(r.CountB) * 100
	}
	return r, nil
}
