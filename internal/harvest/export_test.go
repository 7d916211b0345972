package harvest

import (
	"bytes"
	"encoding/csv"
	"path/filepath"
	"testing"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

func TestExportFallsBackToFileStem(t *testing.T) {
	dir := t.TempDir()
	nodeschema.WriteFile(filepath.Join(dir, "slack.json"), map[string]any{"name": "n8n-nodes-base.slack", "displayName": "Slack", "description": "Chat"})
	nodeschema.WriteFile(filepath.Join(dir, "mystery.json"), map[string]any{"name": "n8n-nodes-base.mystery", "displayName": DefaultDisplayName})

	infos, err := Export(dir)
	if err != nil {
		t.Fatalf("Export: %v", err)
	}
	if len(infos) != 2 {
		t.Fatalf("len(infos) = %d, want 2", len(infos))
	}
	byFile := map[string]NodeInfo{}
	for _, i := range infos {
		byFile[i.File] = i
	}
	if got := byFile["mystery.json"].DisplayName; got != "mystery" {
		t.Errorf("mystery displayName = %q, want %q", got, "mystery")
	}
	if got := byFile["slack.json"].Description; got != "Chat" {
		t.Errorf("slack description = %q, want %q", got, "Chat")
	}
}

func TestWriteCSV(t *testing.T) {
	var buf bytes.Buffer
	infos := []NodeInfo{{File: "a.json", Name: "n.a", DisplayName: "A, the first", Description: `say "hi"`}}
	if err := WriteCSV(&buf, infos); err != nil {
		t.Fatalf("WriteCSV: %v", err)
	}
	rows, err := csv.NewReader(&buf).ReadAll()
	if err != nil {
		t.Fatalf("reading CSV back: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(rows))
	}
	if rows[1][2] != "A, the first" || rows[1][3] != `say "hi"` {
		t.Errorf("row = %v", rows[1])
	}
}
