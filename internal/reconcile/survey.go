package reconcile

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/tidwall/gjson"
)

// DirStats counts the files under one directory.
type DirStats struct {
	Dir          string    `json:"dir"`
	JSONFiles    int       `json:"jsonFiles"`
	OtherFiles   int       `json:"otherFiles"`
	Valid        int       `json:"valid"`
	Invalid      int       `json:"invalid"`
	InvalidFiles []Failure `json:"invalidFiles,omitempty"`
}

// SurveyReport covers a set of directories.
type SurveyReport struct {
	Dirs []DirStats `json:"dirs"`
	// DuplicateNames lists file names that occur more than once across all
	// surveyed directories, with every path they occur at.
	DuplicateNames map[string][]string `json:"duplicateNames"`
}

// Survey walks each directory recursively, checks that every JSON file
// parses, and reports file names found in more than one place.
func Survey(dirs ...string) (*SurveyReport, error) {
	r := &SurveyReport{Dirs: []DirStats{}, DuplicateNames: make(map[string][]string)}
	seen := make(map[string][]string)

	for _, dir := range dirs {
		stats := DirStats{Dir: dir}
		err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() || strings.HasPrefix(d.Name(), ".") {
				return nil
			}
			seen[d.Name()] = append(seen[d.Name()], path)
			if !strings.HasSuffix(d.Name(), ".json") {
				stats.OtherFiles++
				return nil
			}
			stats.JSONFiles++
			data, err := os.ReadFile(path)
			if err != nil {
				stats.Invalid++
				stats.InvalidFiles = append(stats.InvalidFiles, Failure{File: path, Error: err.Error()})
				return nil
			}
			if !gjson.ValidBytes(data) {
				stats.Invalid++
				stats.InvalidFiles = append(stats.InvalidFiles, Failure{File: path, Error: "invalid JSON"})
				return nil
			}
			stats.Valid++
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("surveying %s: %w", dir, err)
		}
		r.Dirs = append(r.Dirs, stats)
	}

	for name, paths := range seen {
		if len(paths) > 1 {
			sort.Strings(paths)
			r.DuplicateNames[name] = paths
		}
	}
	return r, nil
}
