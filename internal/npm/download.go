package npm

import (
	"archive/tar"
	"compress/gzip"
	"context"
	"crypto/sha1"
	"crypto/sha512"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"hash"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

const (
	packageInfoFile = "package_info.json"
	tmpSuffix       = ".tmp"
	// maxEntrySize bounds a single extracted file.
	maxEntrySize = 64 << 20
)

// FileSet classifies the files of an unpacked package. Paths are relative
// to the package root.
type FileSet struct {
	PackageJSON string   `json:"packageJson,omitempty"`
	Nodes       []string `json:"nodeFiles"`
	Credentials []string `json:"credentialFiles"`
	TypeScript  []string `json:"typescriptFiles"`
	JSON        []string `json:"jsonFiles"`
	All         []string `json:"allFiles"`
}

// PackageInfo describes a downloaded and unpacked package.
type PackageInfo struct {
	Name          string          `json:"name"`
	Version       string          `json:"version"`
	Description   string          `json:"description"`
	Keywords      []string        `json:"keywords,omitempty"`
	Repository    json.RawMessage `json:"repository,omitempty"`
	ExtractedPath string          `json:"extractedPath"`
	Files         FileSet         `json:"files"`
	N8n           *N8nMeta        `json:"n8n,omitempty"`
	PackageJSON   json.RawMessage `json:"packageJson,omitempty"`
	DownloadedAt  time.Time       `json:"downloadedAt"`
}

// Download resolves a version of name, downloads its tarball, verifies it,
// and unpacks it into destRoot/SafeName(name). The package directory is
// replaced atomically: a failed download or extraction leaves any previous
// copy untouched and no partial directory behind.
func (c *Client) Download(ctx context.Context, name, version, destRoot string) (*PackageInfo, error) {
	p, err := c.Packument(ctx, name)
	if err != nil {
		return nil, err
	}
	resolved, err := ResolveVersion(p, version)
	if err != nil {
		return nil, err
	}
	meta := p.Versions[resolved]
	if meta.Dist.Tarball == "" {
		return nil, fmt.Errorf("%w for %s@%s", ErrNoTarball, name, resolved)
	}

	if err := os.MkdirAll(destRoot, nodeschema.DirPerm); err != nil {
		return nil, fmt.Errorf("creating %s: %w", destRoot, err)
	}

	archive, err := c.fetchTarball(ctx, meta.Dist, destRoot)
	if err != nil {
		return nil, fmt.Errorf("downloading %s@%s: %w", name, resolved, err)
	}
	defer os.Remove(archive)

	pkgDir := filepath.Join(destRoot, SafeName(name))
	tmpDir := pkgDir + tmpSuffix
	_ = os.RemoveAll(tmpDir)

	if err := ExtractTarGz(archive, tmpDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("extracting %s@%s: %w", name, resolved, err)
	}

	info, err := describe(tmpDir, p, meta)
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, err
	}
	// Saved info points at the final directory, not the staging one.
	rel, err := filepath.Rel(tmpDir, packageRoot(tmpDir))
	if err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, err
	}
	info.ExtractedPath = filepath.Join(pkgDir, rel)
	if err := nodeschema.WriteFile(filepath.Join(tmpDir, packageInfoFile), info); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, err
	}

	// Atomic swap.
	if err := os.RemoveAll(pkgDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("removing previous %s: %w", pkgDir, err)
	}
	if err := os.Rename(tmpDir, pkgDir); err != nil {
		_ = os.RemoveAll(tmpDir)
		return nil, fmt.Errorf("finalizing %s: %w", pkgDir, err)
	}

	slog.Info("downloaded package", "package", name, "version", resolved, "nodes", len(info.Files.Nodes))
	return info, nil
}

// fetchTarball streams the tarball into a temp file in dir, verifying its
// integrity on the way, and returns the temp file path.
func (c *Client) fetchTarball(ctx context.Context, dist Dist, dir string) (string, error) {
	resp, err := c.http.Stream(ctx, dist.Tarball, nil)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	f, err := os.CreateTemp(dir, ".download-*.tgz")
	if err != nil {
		return "", fmt.Errorf("creating download file: %w", err)
	}
	path := f.Name()

	h, expected, err := integrityHash(dist)
	if err != nil {
		f.Close()
		os.Remove(path)
		return "", err
	}

	var w io.Writer = f
	if h != nil {
		w = io.MultiWriter(f, h)
	}
	n, copyErr := io.Copy(w, resp.Body)
	closeErr := f.Close()
	if copyErr != nil {
		os.Remove(path)
		return "", fmt.Errorf("reading download stream: %w", copyErr)
	}
	if closeErr != nil {
		os.Remove(path)
		return "", fmt.Errorf("writing download: %w", closeErr)
	}
	slog.Debug("downloaded tarball", "url", dist.Tarball, "bytes", n)

	if h != nil {
		if actual := h.Sum(nil); !equalDigest(actual, expected) {
			os.Remove(path)
			return "", fmt.Errorf("checksum mismatch for %s", filepath.Base(dist.Tarball))
		}
	}
	return path, nil
}

// integrityHash picks the strongest digest the registry published:
// an SRI sha512 integrity string, else the legacy sha1 shasum.
func integrityHash(dist Dist) (hash.Hash, []byte, error) {
	if algo, b64, ok := strings.Cut(dist.Integrity, "-"); ok && algo == "sha512" {
		want, err := base64.StdEncoding.DecodeString(b64)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding integrity %q: %w", dist.Integrity, err)
		}
		return sha512.New(), want, nil
	}
	if dist.Shasum != "" {
		want, err := hex.DecodeString(dist.Shasum)
		if err != nil {
			return nil, nil, fmt.Errorf("decoding shasum %q: %w", dist.Shasum, err)
		}
		return sha1.New(), want, nil
	}
	return nil, nil, nil
}

func equalDigest(a, b []byte) bool {
	return hex.EncodeToString(a) == hex.EncodeToString(b)
}

// ExtractTarGz unpacks a gzip-compressed tarball into destDir. Entries that
// would land outside destDir are rejected; links and devices are skipped.
func ExtractTarGz(archivePath, destDir string) error {
	f, err := os.Open(archivePath)
	if err != nil {
		return fmt.Errorf("opening archive: %w", err)
	}
	defer f.Close()

	gz, err := gzip.NewReader(f)
	if err != nil {
		return fmt.Errorf("creating gzip reader: %w", err)
	}
	defer gz.Close()

	if err := os.MkdirAll(destDir, nodeschema.DirPerm); err != nil {
		return fmt.Errorf("creating %s: %w", destDir, err)
	}

	tr := tar.NewReader(gz)
	for {
		hdr, err := tr.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("reading tar entry: %w", err)
		}

		target, err := safeJoin(destDir, hdr.Name)
		if err != nil {
			return err
		}

		switch hdr.Typeflag {
		case tar.TypeDir:
			if err := os.MkdirAll(target, nodeschema.DirPerm); err != nil {
				return fmt.Errorf("creating %s: %w", hdr.Name, err)
			}
		case tar.TypeReg:
			if hdr.Size > maxEntrySize {
				return fmt.Errorf("tar entry %s too large (%d bytes)", hdr.Name, hdr.Size)
			}
			if err := writeEntry(target, tr); err != nil {
				return fmt.Errorf("extracting %s: %w", hdr.Name, err)
			}
		default:
			slog.Debug("skipping tar entry", "name", hdr.Name, "type", hdr.Typeflag)
		}
	}
}

func safeJoin(root, name string) (string, error) {
	if filepath.IsAbs(name) || strings.HasPrefix(name, "/") {
		return "", fmt.Errorf("tar entry %q escapes destination", name)
	}
	target := filepath.Join(root, filepath.FromSlash(name))
	rel, err := filepath.Rel(root, target)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("tar entry %q escapes destination", name)
	}
	return target, nil
}

func writeEntry(target string, r io.Reader) error {
	if err := os.MkdirAll(filepath.Dir(target), nodeschema.DirPerm); err != nil {
		return err
	}
	out, err := os.OpenFile(target, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, nodeschema.FilePerm)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, io.LimitReader(r, maxEntrySize)); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// packageRoot returns the "package" subdirectory npm tarballs use, or dir
// itself when the tarball had no such prefix.
func packageRoot(dir string) string {
	sub := filepath.Join(dir, "package")
	if st, err := os.Stat(sub); err == nil && st.IsDir() {
		return sub
	}
	return dir
}

// Classify walks an unpacked package and sorts its files by kind.
func Classify(root string) (FileSet, error) {
	fs := FileSet{Nodes: []string{}, Credentials: []string{}, TypeScript: []string{}, JSON: []string{}, All: []string{}}
	err := filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if d.Name() == "node_modules" {
				return filepath.SkipDir
			}
			return nil
		}
		rel, err := filepath.Rel(root, path)
		if err != nil {
			return nil
		}
		rel = filepath.ToSlash(rel)
		fs.All = append(fs.All, rel)

		name := d.Name()
		switch {
		case name == "package.json":
			if fs.PackageJSON == "" || strings.Count(rel, "/") < strings.Count(fs.PackageJSON, "/") {
				fs.PackageJSON = rel
			}
		case strings.HasSuffix(name, ".node.ts"), strings.HasSuffix(name, ".node.js"):
			fs.Nodes = append(fs.Nodes, rel)
		case strings.HasSuffix(name, ".credentials.ts"), strings.HasSuffix(name, ".credentials.js"):
			fs.Credentials = append(fs.Credentials, rel)
		case strings.HasSuffix(name, ".ts"):
			fs.TypeScript = append(fs.TypeScript, rel)
		case strings.HasSuffix(name, ".json"):
			fs.JSON = append(fs.JSON, rel)
		}
		return nil
	})
	if err != nil {
		return fs, fmt.Errorf("walking %s: %w", root, err)
	}
	return fs, nil
}

func describe(dir string, p *Packument, meta VersionMeta) (*PackageInfo, error) {
	root := packageRoot(dir)
	files, err := Classify(root)
	if err != nil {
		return nil, err
	}
	info := &PackageInfo{
		Name:         p.Name,
		Version:      meta.Version,
		Description:  p.Description,
		Keywords:     p.Keywords,
		Repository:   p.Repository,
		Files:        files,
		N8n:          meta.N8n,
		DownloadedAt: time.Now().UTC(),
	}
	if info.Version == "" {
		info.Version = p.DistTags["latest"]
	}
	if files.PackageJSON != "" {
		data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(files.PackageJSON)))
		if err != nil || !json.Valid(data) {
			slog.Warn("unreadable package.json", "package", p.Name, "error", err)
		} else {
			info.PackageJSON = data
		}
	}
	return info, nil
}

// ReadPackageInfo loads the package_info.json written by Download.
func ReadPackageInfo(pkgDir string) (*PackageInfo, error) {
	data, err := os.ReadFile(filepath.Join(pkgDir, packageInfoFile))
	if err != nil {
		return nil, fmt.Errorf("reading package info: %w", err)
	}
	var info PackageInfo
	if err := json.Unmarshal(data, &info); err != nil {
		return nil, fmt.Errorf("parsing package info: %w", err)
	}
	return &info, nil
}
