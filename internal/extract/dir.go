package extract

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

// Failure records a file that could not be processed.
type Failure struct {
	File  string `json:"file"`
	Error string `json:"error"`
}

// DirResult summarises a directory extraction.
type DirResult struct {
	Extracted   int       `json:"extracted"`
	Copied      int       `json:"copied"`
	Definitions int       `json:"definitions"`
	Files       []string  `json:"files"`
	Failures    []Failure `json:"failures"`
}

// DirOptions tune Dir.
type DirOptions struct {
	// Workers bounds concurrent source extractions.
	Workers int
}

type pkgFiles struct {
	name        string
	sources     []string
	nodeJSON    []string
	otherJSON   []string
	descModules []string
}

// Dir walks a download root holding one directory per package. From each
// package it copies *.node.json files, copies other JSON files that look
// like node definitions, and extracts a record from every .node.js or
// .node.ts source. Records are written to outDir. Failures are collected
// per file and never stop the walk.
func Dir(ctx context.Context, root, outDir string, opts DirOptions) (*DirResult, error) {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	pkgs, err := scanPackages(root)
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(outDir, nodeschema.DirPerm); err != nil {
		return nil, fmt.Errorf("creating %s: %w", outDir, err)
	}

	res := &DirResult{Files: []string{}, Failures: []Failure{}}
	w := &dirWriter{outDir: outDir, taken: make(map[string]bool), res: res}

	for _, pkg := range pkgs {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		w.copyNodeJSON(root, pkg)
		w.copyDefinitions(root, pkg)

		sets := collectPackageSets(root, pkg)

		eg, egCtx := errgroup.WithContext(ctx)
		eg.SetLimit(opts.Workers)
		seen := make(map[string]bool)
		for _, src := range pkg.sources {
			stem := nodeStem(src)
			if seen[stem] {
				slog.Debug("skipping duplicate node source", "file", src)
				continue
			}
			seen[stem] = true
			eg.Go(func() error {
				if egCtx.Err() != nil {
					return egCtx.Err()
				}
				w.extractSource(root, pkg, src, sets)
				return nil
			})
		}
		if err := eg.Wait(); err != nil {
			return nil, err
		}
	}

	sort.Strings(res.Files)
	sort.Slice(res.Failures, func(i, j int) bool { return res.Failures[i].File < res.Failures[j].File })
	return res, nil
}

// scanPackages groups the interesting files of root by package directory.
func scanPackages(root string) ([]*pkgFiles, error) {
	byName := make(map[string]*pkgFiles)
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if d.Name() == "node_modules" || strings.HasSuffix(d.Name(), ".tmp") {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		pkgName, _, nested := strings.Cut(rel, "/")
		if !nested {
			return nil
		}
		pkg := byName[pkgName]
		if pkg == nil {
			pkg = &pkgFiles{name: pkgName}
			byName[pkgName] = pkg
		}

		name := d.Name()
		lower := strings.ToLower(rel)
		switch {
		case strings.HasSuffix(name, ".d.ts"), strings.HasSuffix(name, ".map"):
		case strings.HasSuffix(name, ".node.json"):
			pkg.nodeJSON = append(pkg.nodeJSON, rel)
		case strings.HasSuffix(name, ".node.js"), strings.HasSuffix(name, ".node.ts"):
			pkg.sources = append(pkg.sources, rel)
		case strings.HasSuffix(name, ".json"):
			if name != "package.json" && name != "package_info.json" && !strings.HasPrefix(name, "tsconfig") {
				pkg.otherJSON = append(pkg.otherJSON, rel)
			}
		case strings.HasSuffix(name, ".js"), strings.HasSuffix(name, ".ts"):
			if strings.Contains(lower, "description") {
				pkg.descModules = append(pkg.descModules, rel)
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walking %s: %w", root, err)
	}

	names := make([]string, 0, len(byName))
	for n := range byName {
		names = append(names, n)
	}
	sort.Strings(names)
	out := make([]*pkgFiles, 0, len(names))
	for _, n := range names {
		out = append(out, byName[n])
	}
	return out, nil
}

// collectPackageSets gathers the property sets a package's description
// modules export. Modules that fail to parse are skipped.
func collectPackageSets(root string, pkg *pkgFiles) Sets {
	sets := make(Sets)
	for _, rel := range pkg.descModules {
		src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
		if err != nil {
			slog.Warn("reading description module", "file", rel, "error", err)
			continue
		}
		found, err := CollectSets(LanguageFor(rel), src, sets)
		if err != nil {
			slog.Warn("parsing description module", "file", rel, "error", err)
			continue
		}
		sets.Merge(found)
	}
	return sets
}

func nodeStem(rel string) string {
	base := filepath.Base(filepath.FromSlash(rel))
	for _, suffix := range []string{".node.json", ".node.js", ".node.ts"} {
		if strings.HasSuffix(base, suffix) {
			return strings.TrimSuffix(base, suffix)
		}
	}
	return strings.TrimSuffix(base, filepath.Ext(base))
}

type dirWriter struct {
	outDir string
	mu     sync.Mutex
	taken  map[string]bool
	res    *DirResult
}

// claim reserves an output file name, prefixing the package name on
// collision.
func (w *dirWriter) claim(pkg, file string) string {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.taken[file] {
		file = pkg + "_" + file
	}
	w.taken[file] = true
	return filepath.Join(w.outDir, file)
}

// done records a written output file.
func (w *dirWriter) done(path string, counter *int) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.res.Files = append(w.res.Files, filepath.Base(path))
	*counter++
}

func (w *dirWriter) fail(rel string, err error) {
	slog.Warn("extraction failed", "file", rel, "error", err)
	w.mu.Lock()
	defer w.mu.Unlock()
	w.res.Failures = append(w.res.Failures, Failure{File: rel, Error: err.Error()})
}

func (w *dirWriter) copyNodeJSON(root string, pkg *pkgFiles) {
	for _, rel := range pkg.nodeJSON {
		dst := w.claim(pkg.name, nodeStem(rel)+".json")
		if err := copyFile(filepath.Join(root, filepath.FromSlash(rel)), dst); err != nil {
			w.fail(rel, err)
			continue
		}
		w.done(dst, &w.res.Copied)
	}
}

func (w *dirWriter) copyDefinitions(root string, pkg *pkgFiles) {
	for _, rel := range pkg.otherJSON {
		src := filepath.Join(root, filepath.FromSlash(rel))
		ok, err := IsNodeDefinitionFile(src)
		if err != nil {
			slog.Debug("skipping unreadable json", "file", rel, "error", err)
			continue
		}
		if !ok {
			continue
		}
		dst := w.claim(pkg.name, strings.ReplaceAll(rel, "/", "_"))
		if err := copyFile(src, dst); err != nil {
			w.fail(rel, err)
			continue
		}
		w.done(dst, &w.res.Definitions)
	}
}

func (w *dirWriter) extractSource(root string, pkg *pkgFiles, rel string, sets Sets) {
	src, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	if err != nil {
		w.fail(rel, err)
		return
	}
	rec, err := Default(LanguageFor(rel), sets).Extract(src)
	if err != nil {
		w.fail(rel, err)
		return
	}
	if rec.Name == "" {
		rec.Name = nodeStem(rel)
	}
	rec.SourceFile = rel

	dst := w.claim(pkg.name, nodeschema.FileName(rec.Name))
	if err := nodeschema.WriteFile(dst, rec); err != nil {
		w.fail(rel, err)
		return
	}
	w.done(dst, &w.res.Extracted)
	slog.Debug("extracted node", "file", rel, "name", rec.Name, "properties", len(rec.Properties))
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, nodeschema.FilePerm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
