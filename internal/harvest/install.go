package harvest

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/n8n"
)

// DefaultCheckEvery is how many installs pass between node-count checks.
const DefaultCheckEvery = 5

// Installer installs community packages and counts node types.
// *n8n.Client satisfies it.
type Installer interface {
	InstallPackage(ctx context.Context, name string) (*n8n.InstallResult, error)
	CountNodeTypes(ctx context.Context) (int, error)
}

// InstallFailure records a package that could not be installed.
type InstallFailure struct {
	Package string `json:"package"`
	Error   string `json:"error"`
}

// Checkpoint is a node count taken after a number of install attempts.
type Checkpoint struct {
	Attempted int `json:"attempted"`
	Nodes     int `json:"nodes"`
}

// InstallReport summarises a batch install.
type InstallReport struct {
	Succeeded   []string         `json:"succeeded"`
	Failed      []InstallFailure `json:"failed"`
	NodesBefore int              `json:"nodesBefore"`
	NodesAfter  int              `json:"nodesAfter"`
	Checkpoints []Checkpoint     `json:"checkpoints,omitempty"`
}

// NodesAdded returns the change in node count, or 0 when either count is unknown.
func (r *InstallReport) NodesAdded() int {
	if r.NodesBefore < 0 || r.NodesAfter < 0 {
		return 0
	}
	return r.NodesAfter - r.NodesBefore
}

// InstallAll installs each package in order. One failure never stops the
// batch. Node types are counted before, every checkEvery attempts, and at
// the end; a count that fails is recorded as -1.
func InstallAll(ctx context.Context, inst Installer, packages []string, checkEvery int, progress io.Writer) *InstallReport {
	if checkEvery <= 0 {
		checkEvery = DefaultCheckEvery
	}
	if progress == nil {
		progress = io.Discard
	}

	report := &InstallReport{
		Succeeded: []string{},
		Failed:    []InstallFailure{},
	}
	report.NodesBefore = countNodes(ctx, inst)
	fmt.Fprintf(progress, "Node types before install: %s\n", countLabel(report.NodesBefore))

	for i, name := range packages {
		if ctx.Err() != nil {
			report.Failed = append(report.Failed, InstallFailure{Package: name, Error: ctx.Err().Error()})
			continue
		}
		fmt.Fprintf(progress, "[%d/%d] Installing %s... ", i+1, len(packages), name)
		res, err := inst.InstallPackage(ctx, name)
		if err != nil {
			fmt.Fprintln(progress, "FAILED")
			slog.Warn("install failed", "package", name, "error", err)
			report.Failed = append(report.Failed, InstallFailure{Package: name, Error: err.Error()})
		} else {
			fmt.Fprintf(progress, "ok (%d via %s)\n", res.StatusCode, res.Endpoint)
			report.Succeeded = append(report.Succeeded, name)
		}

		attempted := i + 1
		if attempted%checkEvery == 0 && attempted < len(packages) {
			n := countNodes(ctx, inst)
			report.Checkpoints = append(report.Checkpoints, Checkpoint{Attempted: attempted, Nodes: n})
			fmt.Fprintf(progress, "  node types after %d packages: %s\n", attempted, countLabel(n))
		}
	}

	report.NodesAfter = countNodes(ctx, inst)
	fmt.Fprintf(progress, "Node types after install: %s\n", countLabel(report.NodesAfter))
	return report
}

func countNodes(ctx context.Context, inst Installer) int {
	n, err := inst.CountNodeTypes(ctx)
	if err != nil {
		slog.Warn("counting node types failed", "error", err)
		return -1
	}
	return n
}

func countLabel(n int) string {
	if n < 0 {
		return "unknown"
	}
	return fmt.Sprintf("%d", n)
}

// ReadPackageList reads package names one per line. Blank lines and lines
// starting with # are ignored; duplicates keep their first position.
func ReadPackageList(r io.Reader) ([]string, error) {
	seen := make(map[string]bool)
	var names []string
	sc := bufio.NewScanner(r)
	for sc.Scan() {
		line := strings.TrimSpace(sc.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			names = append(names, line)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading package list: %w", err)
	}
	return names, nil
}
