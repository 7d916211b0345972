package npm

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

// SummaryFile is written into the download root after a batch.
const SummaryFile = "download_summary.json"

// PackageSummary is the per-package line of a batch summary.
type PackageSummary struct {
	Name          string `json:"name"`
	Version       string `json:"version"`
	ExtractedPath string `json:"extractedPath"`
	NodeFiles     int    `json:"nodeFiles"`
	Credentials   int    `json:"credentialFiles"`
	TotalFiles    int    `json:"totalFiles"`
}

// Failure records a package that could not be downloaded.
type Failure struct {
	Name  string `json:"name"`
	Error string `json:"error"`
}

// Summary reports the outcome of DownloadAll.
type Summary struct {
	RunID        string           `json:"runId"`
	DownloadedAt time.Time        `json:"downloadedAt"`
	Total        int              `json:"totalPackages"`
	Packages     []PackageSummary `json:"packages"`
	Failed       []Failure        `json:"failed"`
}

// DownloadAll downloads every package with at most workers in flight.
// A failing package never aborts the batch; it is recorded in Failed.
// Packages and Failed keep the order of names.
func (c *Client) DownloadAll(ctx context.Context, names []string, version, destRoot string, workers int) (*Summary, error) {
	if workers < 1 {
		workers = 1
	}

	type outcome struct {
		info *PackageInfo
		err  error
	}
	results := make([]outcome, len(names))

	var mu sync.Mutex
	done := 0

	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(workers)
	for i, name := range names {
		eg.Go(func() error {
			info, err := c.Download(egCtx, name, version, destRoot)
			results[i] = outcome{info: info, err: err}

			mu.Lock()
			done++
			n := done
			mu.Unlock()
			if err != nil {
				slog.Warn("package download failed", "package", name, "progress", fmt.Sprintf("%d/%d", n, len(names)), "error", err)
			} else {
				slog.Info("package ready", "package", name, "progress", fmt.Sprintf("%d/%d", n, len(names)))
			}
			return nil
		})
	}
	_ = eg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s := &Summary{
		RunID:        uuid.NewString(),
		DownloadedAt: time.Now().UTC(),
		Total:        len(names),
		Packages:     []PackageSummary{},
		Failed:       []Failure{},
	}
	for i, r := range results {
		if r.err != nil {
			s.Failed = append(s.Failed, Failure{Name: names[i], Error: r.err.Error()})
			continue
		}
		s.Packages = append(s.Packages, PackageSummary{
			Name:          r.info.Name,
			Version:       r.info.Version,
			ExtractedPath: r.info.ExtractedPath,
			NodeFiles:     len(r.info.Files.Nodes),
			Credentials:   len(r.info.Files.Credentials),
			TotalFiles:    len(r.info.Files.All),
		})
	}
	return s, nil
}

// WriteSummary stores s as download_summary.json under destRoot.
func WriteSummary(destRoot string, s *Summary) error {
	return nodeschema.WriteFile(filepath.Join(destRoot, SummaryFile), s)
}
