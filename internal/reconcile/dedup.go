package reconcile

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/harvest"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

// Duplicate pairs two files whose normalised names match.
type Duplicate struct {
	Key   string `json:"key"`
	FileA string `json:"fileA"`
	FileB string `json:"fileB"`
}

// Failure records a file that could not be removed.
type Failure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// RemoveResult reports what RemoveDuplicates did.
type RemoveResult struct {
	DryRun     bool        `json:"dryRun"`
	Duplicates []Duplicate `json:"duplicates"`
	Removed    []string    `json:"removed"`
	Failed     []Failure   `json:"failed"`
}

// indexByName maps normalised file names to every file carrying them, in
// sort order. Hidden files are ignored.
func indexByName(dir string) (map[string][]string, error) {
	names, err := nodeschema.ListJSON(dir)
	if err != nil {
		return nil, err
	}
	idx := make(map[string][]string, len(names))
	for _, name := range names {
		if strings.HasPrefix(name, ".") {
			continue
		}
		key := nodeschema.NormalizeFileName(name)
		idx[key] = append(idx[key], name)
	}
	for _, files := range idx {
		sort.Strings(files)
	}
	return idx, nil
}

// Duplicates returns one entry for every file of dirB whose normalised name
// also occurs in dirA, sorted by key then by the dirB file. FileA is the
// first matching dirA file.
func Duplicates(dirA, dirB string) ([]Duplicate, error) {
	a, err := indexByName(dirA)
	if err != nil {
		return nil, err
	}
	b, err := indexByName(dirB)
	if err != nil {
		return nil, err
	}
	dups := []Duplicate{}
	for key, filesB := range b {
		filesA, ok := a[key]
		if !ok {
			continue
		}
		for _, fileB := range filesB {
			dups = append(dups, Duplicate{Key: key, FileA: filesA[0], FileB: fileB})
		}
	}
	sort.Slice(dups, func(i, j int) bool {
		if dups[i].Key != dups[j].Key {
			return dups[i].Key < dups[j].Key
		}
		return dups[i].FileB < dups[j].FileB
	})
	return dups, nil
}

// RemoveDuplicates deletes from dirB every file that Duplicates reports.
// dirA is only read. With dryRun nothing is deleted. A file that cannot be
// removed is recorded and the rest are still processed.
func RemoveDuplicates(dirA, dirB string, dryRun bool) (*RemoveResult, error) {
	if same, err := sameDir(dirA, dirB); err != nil {
		return nil, err
	} else if same {
		return nil, fmt.Errorf("refusing to deduplicate %s against itself", dirA)
	}

	dups, err := Duplicates(dirA, dirB)
	if err != nil {
		return nil, err
	}
	res := &RemoveResult{DryRun: dryRun, Duplicates: dups, Removed: []string{}, Failed: []Failure{}}
	if dryRun || len(dups) == 0 {
		return res, nil
	}

	unlock, err := harvest.LockDir(dirB)
	if err != nil {
		return nil, err
	}
	defer unlock()

	for _, d := range dups {
		if err := os.Remove(filepath.Join(dirB, d.FileB)); err != nil {
			slog.Warn("removing duplicate", "file", d.FileB, "error", err)
			res.Failed = append(res.Failed, Failure{File: d.FileB, Error: err.Error()})
			continue
		}
		res.Removed = append(res.Removed, d.FileB)
	}
	slog.Info("removed duplicates", "dir", dirB, "removed", len(res.Removed), "failed", len(res.Failed))
	return res, nil
}

func sameDir(a, b string) (bool, error) {
	sa, errA := os.Stat(a)
	sb, errB := os.Stat(b)
	if errA != nil || errB != nil {
		// A missing directory is handled as empty by Duplicates.
		if errA != nil && !os.IsNotExist(errA) {
			return false, fmt.Errorf("reading %s: %w", a, errA)
		}
		if errB != nil && !os.IsNotExist(errB) {
			return false, fmt.Errorf("reading %s: %w", b, errB)
		}
		return false, nil
	}
	return os.SameFile(sa, sb), nil
}
