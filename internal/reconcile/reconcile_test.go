package reconcile

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func writeFiles(t *testing.T, dir string, files map[string]string) {
	t.Helper()
	for name, content := range files {
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			t.Fatal(err)
		}
		if err := os.WriteFile(path, []byte(content), 0644); err != nil {
			t.Fatal(err)
		}
	}
}

func TestDuplicates(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFiles(t, a, map[string]string{
		"slack.json":   `{"name":"n8n-nodes-base.slack"}`,
		"Gmail.json":   `{"name":"n8n-nodes-base.gmail"}`,
		".hidden.json": `{}`,
	})
	writeFiles(t, b, map[string]string{
		"Slack_schema.json": `{"name":"slack"}`,
		"gmail.json":        `{"name":"gmail"}`,
		"notion.json":       `{"name":"notion"}`,
		".hidden.json":      `{}`,
	})

	got, err := Duplicates(a, b)
	if err != nil {
		t.Fatalf("Duplicates() error: %v", err)
	}
	want := []Duplicate{
		{Key: "gmail", FileA: "Gmail.json", FileB: "gmail.json"},
		{Key: "slack", FileA: "slack.json", FileB: "Slack_schema.json"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Duplicates() = %+v, want %+v", got, want)
	}
}

func TestRemoveDuplicatesOnlyTouchesSecondDir(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFiles(t, a, map[string]string{
		"slack.json": `{"name":"slack"}`,
		"gmail.json": `{"name":"gmail"}`,
	})
	writeFiles(t, b, map[string]string{
		"slack_schema.json": `{"name":"slack"}`,
		"notion.json":       `{"name":"notion"}`,
	})

	dry, err := RemoveDuplicates(a, b, true)
	if err != nil {
		t.Fatalf("RemoveDuplicates(dry) error: %v", err)
	}
	if len(dry.Duplicates) != 1 || len(dry.Removed) != 0 {
		t.Errorf("dry run = %+v, want one duplicate and no removals", dry)
	}
	if _, err := os.Stat(filepath.Join(b, "slack_schema.json")); err != nil {
		t.Errorf("dry run removed a file: %v", err)
	}

	res, err := RemoveDuplicates(a, b, false)
	if err != nil {
		t.Fatalf("RemoveDuplicates() error: %v", err)
	}
	if !reflect.DeepEqual(res.Removed, []string{"slack_schema.json"}) {
		t.Errorf("Removed = %v, want [slack_schema.json]", res.Removed)
	}
	if _, err := os.Stat(filepath.Join(b, "slack_schema.json")); !os.IsNotExist(err) {
		t.Error("duplicate still present in second directory")
	}
	if _, err := os.Stat(filepath.Join(b, "notion.json")); err != nil {
		t.Errorf("unique file removed: %v", err)
	}
	for _, name := range []string{"slack.json", "gmail.json"} {
		if _, err := os.Stat(filepath.Join(a, name)); err != nil {
			t.Errorf("first directory lost %s: %v", name, err)
		}
	}
}

func TestRemoveDuplicatesRemovesEveryVariant(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFiles(t, a, map[string]string{"slack.json": `{"name":"slack"}`})
	writeFiles(t, b, map[string]string{
		"Slack.json":        `{"name":"slack"}`,
		"slack_schema.json": `{"name":"slack"}`,
	})

	res, err := RemoveDuplicates(a, b, false)
	if err != nil {
		t.Fatalf("RemoveDuplicates() error: %v", err)
	}
	if len(res.Duplicates) != 2 {
		t.Errorf("Duplicates = %+v, want one per file in the second directory", res.Duplicates)
	}
	if !reflect.DeepEqual(res.Removed, []string{"Slack.json", "slack_schema.json"}) {
		t.Errorf("Removed = %v, want [Slack.json slack_schema.json]", res.Removed)
	}
	left, err := os.ReadDir(b)
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range left {
		if filepath.Ext(e.Name()) == ".json" {
			t.Errorf("%s left in second directory", e.Name())
		}
	}
	if _, err := os.Stat(filepath.Join(a, "slack.json")); err != nil {
		t.Errorf("first directory lost slack.json: %v", err)
	}
}

func TestRemoveDuplicatesRejectsSameDir(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"slack.json": `{"name":"slack"}`})
	if _, err := RemoveDuplicates(dir, dir, false); err == nil {
		t.Fatal("expected error when both directories are the same")
	}
	if _, err := os.Stat(filepath.Join(dir, "slack.json")); err != nil {
		t.Errorf("file removed: %v", err)
	}
}

func TestCategorize(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"gmailtrigger", CategoryTriggers},
		{"googlesheets", CategoryCloud},
		{"awss3", CategoryCloud},
		{"postgres", CategoryDatabases},
		{"sendemail", CategoryEmail},
		{"notion", CategoryOthers},
	}
	for _, tt := range tests {
		if got := Categorize(tt.name); got != tt.want {
			t.Errorf("Categorize(%q) = %q, want %q", tt.name, got, tt.want)
		}
	}
}

func TestOverlap(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFiles(t, a, map[string]string{
		"slack.json":  `{"name":"n8n-nodes-base.slack"}`,
		"legacy.json": `{"name":"n8n-nodes-base.legacy"}`,
	})
	writeFiles(t, b, map[string]string{
		"one.json":      `{"name":"Slack"}`,
		"two.json":      `{"displayName":"MySQL"}`,
		"three.json":    `{"name":"webhookTrigger"}`,
		"four.json":     `{"name":"notion"}`,
		"broken.json":   `{`,
		"nameless.json": `{"description":"x"}`,
	})

	r, err := Overlap(a, b)
	if err != nil {
		t.Fatalf("Overlap() error: %v", err)
	}
	if r.CountA != 2 || r.CountB != 4 {
		t.Errorf("counts = %d/%d, want 2/4", r.CountA, r.CountB)
	}
	if len(r.Duplicates) != 1 || r.Duplicates[0].Node != "slack" {
		t.Errorf("Duplicates = %+v, want slack", r.Duplicates)
	}
	if len(r.OnlyA) != 1 || r.OnlyA[0].Node != "legacy" {
		t.Errorf("OnlyA = %+v, want legacy", r.OnlyA)
	}
	if len(r.OnlyB) != 3 {
		t.Errorf("OnlyB = %+v, want 3 nodes", r.OnlyB)
	}
	if r.OverlapRate != 25 || r.NewContentRate != 75 {
		t.Errorf("rates = %v/%v, want 25/75", r.OverlapRate, r.NewContentRate)
	}
	wantCats := map[string][]string{
		CategoryDatabases: {"mysql"},
		CategoryOthers:    {"notion"},
		CategoryTriggers:  {"webhooktrigger"},
	}
	if !reflect.DeepEqual(r.Categories, wantCats) {
		t.Errorf("Categories = %v, want %v", r.Categories, wantCats)
	}
}

func TestOverlapEmptySecondDir(t *testing.T) {
	r, err := Overlap(t.TempDir(), filepath.Join(t.TempDir(), "missing"))
	if err != nil {
		t.Fatalf("Overlap() error: %v", err)
	}
	if r.OverlapRate != 0 || r.NewContentRate != 0 {
		t.Errorf("rates = %v/%v, want 0/0", r.OverlapRate, r.NewContentRate)
	}
}

func TestSurvey(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFiles(t, a, map[string]string{
		"slack.json":      `{"name":"slack"}`,
		"nested/bad.json": `{"name":`,
		"notes.txt":       "hello",
	})
	writeFiles(t, b, map[string]string{
		"slack.json": `{"name":"slack"}`,
	})

	r, err := Survey(a, b)
	if err != nil {
		t.Fatalf("Survey() error: %v", err)
	}
	if len(r.Dirs) != 2 {
		t.Fatalf("Dirs = %d, want 2", len(r.Dirs))
	}
	sa := r.Dirs[0]
	if sa.JSONFiles != 2 || sa.Valid != 1 || sa.Invalid != 1 || sa.OtherFiles != 1 {
		t.Errorf("stats for a = %+v", sa)
	}
	if paths := r.DuplicateNames["slack.json"]; len(paths) != 2 {
		t.Errorf("DuplicateNames[slack.json] = %v, want two paths", paths)
	}
	if _, ok := r.DuplicateNames["notes.txt"]; ok {
		t.Error("notes.txt reported as duplicate")
	}
}
