package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/config"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/harvest"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

var (
	installFrom       string
	installCheckEvery int
	installReportPath string
	installJSON       bool
)

var installCmd = &cobra.Command{
	Use:   "install [package...]",
	Short: "Install community packages on the n8n server",
	Long: `Install each package in order through the community-packages endpoint and
track how the node-type count changes. One failed package never stops the
batch. Requires N8N_JWT_TOKEN.`,
	Example: `  n8n-harvest install n8n-nodes-foo n8n-nodes-bar
  n8n-harvest install --from packages.txt --check-every 10`,
	RunE: runInstall,
}

func init() {
	installCmd.Flags().StringVar(&installFrom, "from", "", "Read package names from a file, one per line")
	installCmd.Flags().IntVar(&installCheckEvery, "check-every", harvest.DefaultCheckEvery, "Re-count node types after this many packages")
	installCmd.Flags().StringVar(&installReportPath, "report", "", "Report file (default <output>/install_report.json)")
	installCmd.Flags().BoolVar(&installJSON, "json", false, "Output the report as JSON")
	rootCmd.AddCommand(installCmd)
}

func runInstall(cmd *cobra.Command, args []string) error {
	packages, err := installTargets(args, installFrom)
	if err != nil {
		return err
	}
	if len(packages) == 0 {
		return fmt.Errorf("no packages to install: pass names or --from")
	}

	s := config.Current()
	if err := s.RequireToken(); err != nil {
		return err
	}
	client, err := serverClient(s)
	if err != nil {
		return err
	}

	report := harvest.InstallAll(cmd.Context(), client, packages, installCheckEvery, cmd.ErrOrStderr())

	path := workspacePath(installReportPath, installReportFile)
	if err := nodeschema.WriteFile(path, report); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if installJSON {
		return printJSON(out, report)
	}
	fmt.Fprintf(out, "Installed %d/%d packages, %d failed\n", len(report.Succeeded), len(packages), len(report.Failed))
	for _, f := range report.Failed {
		fmt.Fprintf(out, "  %s: %s\n", f.Package, f.Error)
	}
	if report.NodesBefore >= 0 && report.NodesAfter >= 0 {
		fmt.Fprintf(out, "Node types: %d -> %d (%+d)\n", report.NodesBefore, report.NodesAfter, report.NodesAdded())
	}
	fmt.Fprintf(out, "Report saved to %s\n", path)
	return nil
}

// installTargets combines positional names with names read from a file,
// keeping the first occurrence of each.
func installTargets(args []string, from string) ([]string, error) {
	names := append([]string(nil), args...)
	if from != "" {
		f, err := os.Open(from)
		if err != nil {
			return nil, fmt.Errorf("opening package list: %w", err)
		}
		defer f.Close()
		listed, err := harvest.ReadPackageList(f)
		if err != nil {
			return nil, err
		}
		names = append(names, listed...)
	}

	seen := make(map[string]bool)
	out := names[:0]
	for _, n := range names {
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		out = append(out, n)
	}
	return out, nil
}
