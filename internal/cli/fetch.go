package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/config"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/harvest"
)

var (
	fetchDir     string
	fetchReuse   bool
	fetchRefetch bool
	fetchJSON    bool
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch node-type schemas from the n8n server",
	Long: `Download every node type from {base}/types/nodes.json and write one record
file per node. When the directory already holds records you are asked whether
to reuse them; --reuse and --refetch answer the question up front.`,
	RunE: runFetch,
}

func init() {
	fetchCmd.Flags().StringVar(&fetchDir, "dir", "", "Record directory (default <output>/nodes)")
	fetchCmd.Flags().BoolVar(&fetchReuse, "reuse", false, "Keep existing records without contacting the server")
	fetchCmd.Flags().BoolVar(&fetchRefetch, "refetch", false, "Fetch again even when records exist")
	fetchCmd.Flags().BoolVar(&fetchJSON, "json", false, "Output the result as JSON")
	fetchCmd.MarkFlagsMutuallyExclusive("reuse", "refetch")
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	dir := workspacePath(fetchDir, nodesDir)
	out := cmd.OutOrStdout()

	if count := harvest.ExistingRecords(dir); count > 0 && !fetchRefetch {
		choice := harvest.ChoiceReuse
		if !fetchReuse {
			var err error
			choice, err = harvest.PromptReuse(cmd.InOrStdin(), cmd.ErrOrStderr(), dir, count)
			if err != nil {
				return err
			}
		}
		if choice == harvest.ChoiceReuse {
			fmt.Fprintf(out, "Using %d existing records in %s\n", count, dir)
			return nil
		}
	}

	s := config.Current()
	if err := s.RequireAPIKey(); err != nil {
		return err
	}
	client, err := serverClient(s)
	if err != nil {
		return err
	}

	result, err := harvest.Fetch(cmd.Context(), client, dir)
	if err != nil {
		if errors.Is(err, harvest.ErrLocked) {
			return fmt.Errorf("%w (is another fetch running?)", err)
		}
		return fmt.Errorf("fetching node types: %w", err)
	}

	if fetchJSON {
		return printJSON(out, result)
	}
	fmt.Fprintf(out, "Fetched %d node types into %s\n", result.Total, dir)
	fmt.Fprintf(out, "  created: %d\n  updated: %d\n  skipped: %d\n", result.Created, result.Updated, len(result.Skipped))
	for _, f := range result.Failed {
		fmt.Fprintf(out, "  failed: %s (%s)\n", f.File, f.Error)
	}
	return nil
}
