package harvest

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/tidwall/gjson"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

// DefaultDisplayName is written when a node has no display name.
const DefaultDisplayName = "unknown_node"

// NodeSource lists node-type descriptions. *n8n.Client satisfies it.
type NodeSource interface {
	NodeTypes(ctx context.Context) ([]json.RawMessage, error)
}

// fetchedNode is the record written for each node. Every key is always
// present so downstream tools can rely on it.
type fetchedNode struct {
	Name        string          `json:"name"`
	DisplayName string          `json:"displayName"`
	Description string          `json:"description"`
	Properties  json.RawMessage `json:"properties"`
	Source      string          `json:"source"`
}

// FetchFailure records a node whose record could not be written.
type FetchFailure struct {
	Node  string `json:"node"`
	File  string `json:"file"`
	Error string `json:"error"`
}

// FetchResult summarises one fetch run.
type FetchResult struct {
	Total   int            `json:"total"`
	Created int            `json:"created"`
	Updated int            `json:"updated"`
	Skipped []string       `json:"skipped,omitempty"`
	Failed  []FetchFailure `json:"failed,omitempty"`
	Files   []string       `json:"files"`
}

// Fetch downloads every node type from src and writes one record file per
// node into dir. Nodes without a name or with empty properties are skipped.
// A record that cannot be written is recorded in Failed and the rest are
// still written.
func Fetch(ctx context.Context, src NodeSource, dir string) (*FetchResult, error) {
	unlock, err := LockDir(dir)
	if err != nil {
		return nil, err
	}
	defer unlock()

	nodes, err := src.NodeTypes(ctx)
	if err != nil {
		return nil, err
	}

	result := &FetchResult{Total: len(nodes)}
	for i, raw := range nodes {
		node, ok := toFetchedNode(raw)
		if !ok {
			label := gjson.GetBytes(raw, "name").String()
			if label == "" {
				label = fmt.Sprintf("#%d", i)
			}
			slog.Debug("skipping node without name or properties", "node", label)
			result.Skipped = append(result.Skipped, label)
			continue
		}

		file := nodeschema.FileName(node.Name)
		path := filepath.Join(dir, file)
		_, statErr := os.Stat(path)
		exists := statErr == nil

		if err := nodeschema.WriteFile(path, node); err != nil {
			slog.Warn("saving record failed", "node", node.Name, "error", err)
			result.Failed = append(result.Failed, FetchFailure{Node: node.Name, File: file, Error: err.Error()})
			continue
		}
		if exists {
			result.Updated++
			slog.Debug("updated record", "file", file)
		} else {
			result.Created++
			slog.Debug("created record", "file", file)
		}
		result.Files = append(result.Files, file)
	}

	WriteFreshnessMarker(dir)
	return result, nil
}

func toFetchedNode(raw json.RawMessage) (*fetchedNode, bool) {
	res := gjson.ParseBytes(raw)
	name := res.Get("name")
	props := res.Get("properties")
	if name.Type != gjson.String || name.String() == "" || !truthy(props) {
		return nil, false
	}
	display := res.Get("displayName").String()
	if display == "" {
		display = DefaultDisplayName
	}
	return &fetchedNode{
		Name:        name.String(),
		DisplayName: display,
		Description: res.Get("description").String(),
		Properties:  json.RawMessage(props.Raw),
		Source:      nodeschema.SourceAPI,
	}, true
}

// truthy reports whether v is a non-empty value: a missing key, null,
// false, zero, "" and empty lists or objects are all empty.
func truthy(v gjson.Result) bool {
	switch v.Type {
	case gjson.True:
		return true
	case gjson.Number:
		return v.Float() != 0
	case gjson.String:
		return v.Str != ""
	case gjson.JSON:
		n := 0
		v.ForEach(func(_, _ gjson.Result) bool {
			n++
			return false
		})
		return n > 0
	}
	return false
}
