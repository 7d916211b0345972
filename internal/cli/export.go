package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/harvest"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

var (
	exportDir string
	exportOut string
	exportCSV string
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Write the node index for a record directory",
	Long: `Build node_info.json, one entry per record with its file name, display name
and description. --csv also writes the index as CSV.`,
	RunE: runExport,
}

func init() {
	exportCmd.Flags().StringVar(&exportDir, "dir", "", "Record directory (default <output>/nodes)")
	exportCmd.Flags().StringVar(&exportOut, "out", "", "Index file (default <output>/node_info.json)")
	exportCmd.Flags().StringVar(&exportCSV, "csv", "", "Also write the index as CSV to this path")
	rootCmd.AddCommand(exportCmd)
}

func runExport(cmd *cobra.Command, args []string) error {
	dir := workspacePath(exportDir, nodesDir)
	infos, err := harvest.Export(dir)
	if err != nil {
		return fmt.Errorf("building node index: %w", err)
	}

	out := workspacePath(exportOut, nodeInfoFile)
	if err := nodeschema.WriteFile(out, infos); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d entries to %s\n", len(infos), out)

	if exportCSV != "" {
		f, err := os.Create(exportCSV)
		if err != nil {
			return fmt.Errorf("creating %s: %w", exportCSV, err)
		}
		defer f.Close()
		if err := harvest.WriteCSV(f, infos); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Wrote CSV to %s\n", exportCSV)
	}
	return nil
}
