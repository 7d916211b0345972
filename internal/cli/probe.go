package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/config"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/n8n"
)

var (
	probePaths []string
	probeOnly  bool
	probeJSON  bool
)

var probeCmd = &cobra.Command{
	Use:   "probe",
	Short: "Check which community-package endpoints the server exposes",
	Long: `GET each candidate endpoint once and report the status, the response shape
and any keys that mention community packages. A failing endpoint never stops
the others.`,
	RunE: runProbe,
}

func init() {
	probeCmd.Flags().StringSliceVar(&probePaths, "path", nil, "Additional path to probe (repeatable)")
	probeCmd.Flags().BoolVar(&probeOnly, "only", false, "Probe only the paths given with --path")
	probeCmd.Flags().BoolVar(&probeJSON, "json", false, "Output results as JSON")
	rootCmd.AddCommand(probeCmd)
}

func runProbe(cmd *cobra.Command, args []string) error {
	client, err := serverClient(config.Current())
	if err != nil {
		return err
	}

	paths := probeTargets(n8n.DefaultProbePaths, probePaths, probeOnly)
	if len(paths) == 0 {
		return fmt.Errorf("nothing to probe: pass --path")
	}
	results := client.Probe(cmd.Context(), paths)

	out := cmd.OutOrStdout()
	if probeJSON {
		return printJSON(out, results)
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PATH\tSTATUS\tOUTCOME\tDETAIL")
	for _, r := range results {
		status := "-"
		if r.StatusCode != 0 {
			status = fmt.Sprintf("%d", r.StatusCode)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", r.Path, status, r.Outcome, probeDetail(r))
	}
	return w.Flush()
}

// probeTargets merges the default and extra paths, dropping repeats.
func probeTargets(defaults, extra []string, only bool) []string {
	var paths []string
	seen := make(map[string]bool)
	add := func(p string) {
		p = strings.TrimSpace(p)
		if p == "" {
			return
		}
		if !strings.HasPrefix(p, "/") {
			p = "/" + p
		}
		if !seen[p] {
			seen[p] = true
			paths = append(paths, p)
		}
	}
	if !only {
		for _, p := range defaults {
			add(p)
		}
	}
	for _, p := range extra {
		add(p)
	}
	return paths
}

func probeDetail(r n8n.ProbeResult) string {
	switch {
	case r.Error != "":
		return truncate(r.Error, 60)
	case len(r.Mentions) > 0:
		return r.Shape + "; mentions " + strings.Join(r.Mentions, ", ")
	}
	return r.Shape
}
