package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/config"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/harvest"
)

// staleAfter is how old fetched records may get before commands warn.
const staleAfter = 7 * 24 * time.Hour

// Workspace layout under the output directory.
const (
	nodesDir     = "nodes"
	packagesDir  = "packages"
	extractedDir = "extracted"
	reportsDir   = "reports"

	nodeInfoFile      = "node_info.json"
	settingsFile      = "n8n_settings_full.json"
	installReportFile = "install_report.json"
)

// workspacePath returns override when set, else sub joined to the
// configured output directory.
func workspacePath(override, sub string) string {
	if override != "" {
		return override
	}
	return filepath.Join(config.Current().OutputDir, sub)
}

func printJSON(w io.Writer, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("marshaling JSON: %w", err)
	}
	fmt.Fprintln(w, string(data))
	return nil
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	if n <= 3 {
		return string(r[:n])
	}
	return string(r[:n-3]) + "..."
}

// warnIfStale prints a hint when dir holds fetched records older than
// staleAfter. Directories that were never fetched are not reported.
func warnIfStale(w io.Writer, dir string) {
	last := harvest.ReadFreshnessMarker(dir)
	if last.IsZero() || !harvest.IsStale(dir, staleAfter) {
		return
	}
	fmt.Fprintf(w, "Records in %s were fetched %s. Run 'fetch --refetch' to update them.\n",
		dir, last.Format("2006-01-02"))
}
