package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/reconcile"
)

var (
	dedupDryRun bool
	dedupJSON   bool
)

var dedupCmd = &cobra.Command{
	Use:   "dedup <keep-dir> <prune-dir>",
	Short: "Remove records from prune-dir that keep-dir already has",
	Long: `Match files by normalised name (".json" and "_schema" stripped, case
folded) and delete every match from prune-dir. keep-dir is never modified.`,
	Args: cobra.ExactArgs(2),
	RunE: runDedup,
}

func init() {
	dedupCmd.Flags().BoolVar(&dedupDryRun, "dry-run", false, "List duplicates without deleting")
	dedupCmd.Flags().BoolVar(&dedupJSON, "json", false, "Output the result as JSON")
	rootCmd.AddCommand(dedupCmd)
}

func runDedup(cmd *cobra.Command, args []string) error {
	res, err := reconcile.RemoveDuplicates(args[0], args[1], dedupDryRun)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if dedupJSON {
		return printJSON(out, res)
	}

	if len(res.Duplicates) == 0 {
		fmt.Fprintln(out, "No duplicates found.")
		return nil
	}
	for _, d := range res.Duplicates {
		fmt.Fprintf(out, "  %s <- %s\n", d.FileA, d.FileB)
	}
	if res.DryRun {
		fmt.Fprintf(out, "\n%d duplicates would be removed from %s (dry run)\n", len(res.Duplicates), args[1])
		return nil
	}
	fmt.Fprintf(out, "\nRemoved %d duplicates from %s\n", len(res.Removed), args[1])
	for _, f := range res.Failed {
		fmt.Fprintf(out, "FAILED %s: %s\n", f.File, f.Error)
	}
	if len(res.Failed) > 0 {
		return fmt.Errorf("%d files could not be removed", len(res.Failed))
	}
	return nil
}
