package nodeschema

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestPropertyPreservesUnknownKeys(t *testing.T) {
	in := `{"name":"resource","type":"options","displayOptions":{"show":{"x":[1]}},"options":[{"name":"Message","value":"message","action":"Send"}]}`

	var p Property
	if err := json.Unmarshal([]byte(in), &p); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if p.Name != "resource" || p.Type != "options" {
		t.Errorf("modelled fields = %q/%q", p.Name, p.Type)
	}
	if _, ok := p.Extra["displayOptions"]; !ok {
		t.Error("displayOptions not kept in Extra")
	}
	if len(p.Options) != 1 || p.Options[0].Value != "message" {
		t.Fatalf("Options = %+v", p.Options)
	}

	out, err := json.Marshal(p)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for _, want := range []string{`"displayOptions"`, `"action":"Send"`, `"value":"message"`} {
		if !strings.Contains(string(out), want) {
			t.Errorf("marshaled property missing %s: %s", want, out)
		}
	}
}

func TestWriteAndLoadDir(t *testing.T) {
	dir := t.TempDir()

	rec := &Record{Name: "n8n-nodes-base.slack", DisplayName: "Slack", Properties: []Property{{Name: "channel", Type: "string"}}}
	if err := WriteFile(filepath.Join(dir, FileName(rec.Name)), rec); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	os.WriteFile(filepath.Join(dir, "broken.json"), []byte("{not json"), 0644)
	os.WriteFile(filepath.Join(dir, "nameless.json"), []byte(`{"displayName":"X"}`), 0644)
	os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("ignored"), 0644)

	entries, err := LoadDir(dir)
	if err != nil {
		t.Fatalf("LoadDir: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("LoadDir returned %d entries, want 1", len(entries))
	}
	if entries[0].File != "slack.json" {
		t.Errorf("File = %q, want %q", entries[0].File, "slack.json")
	}
	if entries[0].Record.Label() != "Slack" {
		t.Errorf("Label = %q, want %q", entries[0].Record.Label(), "Slack")
	}
}

func TestListJSONMissingDir(t *testing.T) {
	names, err := ListJSON(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("ListJSON: %v", err)
	}
	if len(names) != 0 {
		t.Errorf("ListJSON = %v, want empty", names)
	}
}

func TestMarshalDoesNotEscapeHTML(t *testing.T) {
	data, err := Marshal(map[string]string{"d": "<b>&</b>"})
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "<b>&</b>") {
		t.Errorf("Marshal escaped HTML: %s", data)
	}
}
