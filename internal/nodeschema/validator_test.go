package nodeschema

import (
	"os"
	"path/filepath"
	"testing"
)

func TestValidateValidRecords(t *testing.T) {
	valid := []string{
		`{"name":"n8n-nodes-base.slack"}`,
		`{"name":"a","displayName":"A","version":[1,2],"properties":[{"name":"x","type":"string"}]}`,
		`{"name":"a","version":2.1,"credentials":[{"name":"slackApi","required":true}],"source":"api"}`,
	}
	for _, doc := range valid {
		result, err := Validate([]byte(doc))
		if err != nil {
			t.Fatalf("Validate(%s) error: %v", doc, err)
		}
		if !result.Valid {
			t.Errorf("Validate(%s) invalid: %+v", doc, result.Issues)
		}
	}
}

func TestValidateInvalidRecords(t *testing.T) {
	tests := []struct {
		doc     string
		desc    string
		keyword string
	}{
		{`{"displayName":"x"}`, "missing name", "required"},
		{`{"name":""}`, "empty name", "minLength"},
		{`{"name":"a","properties":[{"type":"string"}]}`, "property without name", "required"},
		{`{"name":"a","properties":[{"name":"x"}]}`, "property without type", "required"},
		{`{"name":"a","source":"scraped"}`, "unknown source", "enum"},
	}
	for _, tt := range tests {
		t.Run(tt.desc, func(t *testing.T) {
			result, err := Validate([]byte(tt.doc))
			if err != nil {
				t.Fatalf("Validate error: %v", err)
			}
			if result.Valid {
				t.Fatalf("expected invalid for %s", tt.desc)
			}
			found := false
			for _, issue := range result.Issues {
				if issue.Keyword == tt.keyword {
					found = true
				}
			}
			if !found {
				t.Errorf("issues %+v lack keyword %q", result.Issues, tt.keyword)
			}
		})
	}
}

func TestValidateMalformedJSON(t *testing.T) {
	if _, err := Validate([]byte("{oops")); err == nil {
		t.Fatal("expected error for malformed JSON, got nil")
	}
}

func TestValidateFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "r.json")
	os.WriteFile(path, []byte(`{"name":"ok"}`), 0644)
	result, err := ValidateFile(path)
	if err != nil || !result.Valid {
		t.Fatalf("ValidateFile = %+v, %v", result, err)
	}
	if _, err := ValidateFile(filepath.Join(t.TempDir(), "missing.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
