package cli

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/report"
)

var (
	analyzeFormat string
	analyzeOut    string
	analyzeNoSave bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [dir]",
	Short: "Classify the records in a directory and write a report",
	Long: `Count official, LangChain and community nodes, AI-related nodes, tools and
triggers, and break the LangChain nodes down by kind. The report is written
as JSON or YAML under <output>/reports and a summary table is printed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runAnalyze,
}

func init() {
	analyzeCmd.Flags().StringVar(&analyzeFormat, "format", report.FormatJSON, "Report format: json or yaml")
	analyzeCmd.Flags().StringVar(&analyzeOut, "out", "", "Report file (default <output>/reports/node_analysis.<format>)")
	analyzeCmd.Flags().BoolVar(&analyzeNoSave, "no-save", false, "Print the summary without writing a report")
	rootCmd.AddCommand(analyzeCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	dir := workspacePath("", nodesDir)
	if len(args) == 1 {
		dir = args[0]
	}

	format := strings.ToLower(analyzeFormat)
	if format == "yml" {
		format = report.FormatYAML
	}
	if format != report.FormatJSON && format != report.FormatYAML {
		return fmt.Errorf("unknown report format %q: use json or yaml", analyzeFormat)
	}

	warnIfStale(cmd.ErrOrStderr(), dir)
	rep, err := report.AnalyzeDir(dir)
	if err != nil {
		return err
	}
	if rep.Total == 0 {
		return fmt.Errorf("no records found in %s", dir)
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Analysed %d records in %s\n\n", rep.Total, dir)
	if err := rep.Render(out); err != nil {
		return fmt.Errorf("rendering report: %w", err)
	}

	if analyzeNoSave {
		return nil
	}
	path := analyzeOut
	if path == "" {
		path = filepath.Join(workspacePath("", reportsDir), "node_analysis."+format)
	}
	if err := rep.Write(path, format); err != nil {
		return err
	}
	fmt.Fprintf(out, "\nReport %s saved to %s\n", rep.RunID, path)
	return nil
}
