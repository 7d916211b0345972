package nodeschema

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Permission constants for written files and directories.
const (
	DirPerm  os.FileMode = 0755
	FilePerm os.FileMode = 0644
)

// ReadFile parses a record file.
func ReadFile(path string) (*Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading file %s: %w", path, err)
	}
	var r Record
	if err := json.Unmarshal(data, &r); err != nil {
		return nil, fmt.Errorf("parsing record %s: %w", path, err)
	}
	return &r, nil
}

// WriteFile writes v as indented JSON, creating parent directories.
func WriteFile(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), DirPerm); err != nil {
		return fmt.Errorf("creating directory for %s: %w", path, err)
	}
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("marshaling %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, FilePerm); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}

// Marshal renders v as two-space indented JSON without HTML escaping.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// ListJSON returns the sorted names of the .json files directly inside dir.
// A missing directory yields an empty list.
func ListJSON(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading directory %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(e.Name(), ".json") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)
	return names, nil
}

// Entry is a record loaded from a directory.
type Entry struct {
	File   string
	Record *Record
}

// LoadDir reads every record file in dir. Files that cannot be parsed or
// have no name are skipped with a warning.
func LoadDir(dir string) ([]Entry, error) {
	names, err := ListJSON(dir)
	if err != nil {
		return nil, err
	}
	var entries []Entry
	for _, name := range names {
		rec, err := ReadFile(filepath.Join(dir, name))
		if err != nil {
			slog.Warn("skipping unreadable record", "file", name, "error", err)
			continue
		}
		if rec.Name == "" {
			slog.Warn("skipping record without name", "file", name)
			continue
		}
		entries = append(entries, Entry{File: name, Record: rec})
	}
	return entries, nil
}
