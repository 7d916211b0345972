package report

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/olekukonko/tablewriter"
	"go.yaml.in/yaml/v3"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

// Output formats for Write.
const (
	FormatJSON = "json"
	FormatYAML = "yaml"
)

// NodeSummary is the per-node line of a report.
type NodeSummary struct {
	File        string `json:"file" yaml:"file"`
	Name        string `json:"name" yaml:"name"`
	DisplayName string `json:"displayName" yaml:"displayName"`
	Class       string `json:"class" yaml:"class"`
	AI          bool   `json:"ai" yaml:"ai"`
	Tool        bool   `json:"tool" yaml:"tool"`
	Trigger     bool   `json:"trigger" yaml:"trigger"`
	Properties  int    `json:"properties" yaml:"properties"`
}

// Report summarises a set of node records.
type Report struct {
	RunID       string    `json:"runId" yaml:"runId"`
	GeneratedAt time.Time `json:"generatedAt" yaml:"generatedAt"`
	Source      string    `json:"source,omitempty" yaml:"source,omitempty"`

	Total     int `json:"total" yaml:"total"`
	Official  int `json:"official" yaml:"official"`
	LangChain int `json:"langchain" yaml:"langchain"`
	Community int `json:"community" yaml:"community"`
	AIRelated int `json:"aiRelated" yaml:"aiRelated"`
	Tools     int `json:"tools" yaml:"tools"`
	Triggers  int `json:"triggers" yaml:"triggers"`

	// LangChainBreakdown maps each LangChain subcategory to the sorted
	// display names in it. Empty subcategories are omitted.
	LangChainBreakdown map[string][]string `json:"langchainBreakdown" yaml:"langchainBreakdown"`
	Nodes              []NodeSummary       `json:"nodes" yaml:"nodes"`
}

// Analyze classifies every entry.
func Analyze(entries []nodeschema.Entry) *Report {
	r := &Report{
		RunID:              uuid.NewString(),
		GeneratedAt:        time.Now().UTC(),
		LangChainBreakdown: make(map[string][]string),
		Nodes:              make([]NodeSummary, 0, len(entries)),
	}
	for _, e := range entries {
		rec := e.Record
		ns := NodeSummary{
			File:        e.File,
			Name:        rec.Name,
			DisplayName: rec.DisplayName,
			Class:       Classify(e.File, rec),
			AI:          IsAIRelated(rec),
			Tool:        IsTool(e.File, rec),
			Trigger:     IsTrigger(e.File, rec),
			Properties:  len(rec.Properties),
		}
		r.Total++
		switch ns.Class {
		case ClassOfficial:
			r.Official++
		case ClassLangChain:
			r.LangChain++
			label := rec.DisplayName
			if label == "" {
				label = nodeschema.Stem(e.File)
			}
			cat := LangChainCategory(label)
			r.LangChainBreakdown[cat] = append(r.LangChainBreakdown[cat], label)
		default:
			r.Community++
		}
		if ns.AI {
			r.AIRelated++
		}
		if ns.Tool {
			r.Tools++
		}
		if ns.Trigger {
			r.Triggers++
		}
		r.Nodes = append(r.Nodes, ns)
	}
	for _, names := range r.LangChainBreakdown {
		sort.Strings(names)
	}
	return r
}

// AnalyzeDir loads the records in dir and analyses them.
func AnalyzeDir(dir string) (*Report, error) {
	entries, err := nodeschema.LoadDir(dir)
	if err != nil {
		return nil, err
	}
	r := Analyze(entries)
	r.Source = dir
	return r, nil
}

// Write stores the report at path in the given format.
func (r *Report) Write(path, format string) error {
	var (
		data []byte
		err  error
	)
	switch strings.ToLower(format) {
	case "", FormatJSON:
		data, err = nodeschema.Marshal(r)
	case FormatYAML, "yml":
		data, err = yaml.Marshal(r)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), nodeschema.DirPerm); err != nil {
		return fmt.Errorf("creating report directory: %w", err)
	}
	if err := os.WriteFile(path, data, nodeschema.FilePerm); err != nil {
		return fmt.Errorf("writing report: %w", err)
	}
	return nil
}

func percent(n, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return strconv.FormatFloat(float64(n)/float64(total)*100, 'f', 1, 64) + "%"
}

// Render prints the summary table and the LangChain breakdown.
func (r *Report) Render(w io.Writer) error {
	table := tablewriter.NewWriter(w)
	table.Header("Category", "Nodes", "Share")
	rows := [][]string{
		{"Total", strconv.Itoa(r.Total), percent(r.Total, r.Total)},
		{ClassOfficial, strconv.Itoa(r.Official), percent(r.Official, r.Total)},
		{ClassLangChain, strconv.Itoa(r.LangChain), percent(r.LangChain, r.Total)},
		{ClassCommunity, strconv.Itoa(r.Community), percent(r.Community, r.Total)},
		{"AI related", strconv.Itoa(r.AIRelated), percent(r.AIRelated, r.Total)},
		{"Tools", strconv.Itoa(r.Tools), percent(r.Tools, r.Total)},
		{"Triggers", strconv.Itoa(r.Triggers), percent(r.Triggers, r.Total)},
	}
	if err := table.Bulk(rows); err != nil {
		return err
	}
	if err := table.Render(); err != nil {
		return err
	}
	if len(r.LangChainBreakdown) == 0 {
		return nil
	}

	fmt.Fprintln(w)
	lc := tablewriter.NewWriter(w)
	lc.Header("LangChain", "Nodes", "Examples")
	var lcRows [][]string
	for _, cat := range LangChainCategories {
		names := r.LangChainBreakdown[cat]
		if len(names) == 0 {
			continue
		}
		examples := names
		if len(examples) > 5 {
			examples = examples[:5]
		}
		lcRows = append(lcRows, []string{cat, strconv.Itoa(len(names)), strings.Join(examples, ", ")})
	}
	if err := lc.Bulk(lcRows); err != nil {
		return err
	}
	return lc.Render()
}
