package cli

import (
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/lookup"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

var (
	lookupDir    string
	lookupSearch bool
	lookupLimit  int
	lookupShow   bool
	lookupJSON   bool
)

var lookupCmd = &cobra.Command{
	Use:   "lookup <display name>",
	Short: "Find the record for a node by display name",
	Long: `Resolve a display name to a record. An exact (case-insensitive) match wins;
otherwise names containing the query, or contained in it, are ranked by the
words they share with it. --search matches the query anywhere in the name,
display name or description instead.`,
	Example: `  n8n-harvest lookup "Google Sheets"
  n8n-harvest lookup --show slack
  n8n-harvest lookup --search "vector store"`,
	Args: cobra.MinimumNArgs(1),
	RunE: runLookup,
}

func init() {
	lookupCmd.Flags().StringVar(&lookupDir, "dir", "", "Record directory (default <output>/nodes)")
	lookupCmd.Flags().BoolVar(&lookupSearch, "search", false, "Substring search instead of name resolution")
	lookupCmd.Flags().IntVar(&lookupLimit, "limit", 10, "Maximum matches to print")
	lookupCmd.Flags().BoolVar(&lookupShow, "show", false, "Print the full record of the best match")
	lookupCmd.Flags().BoolVar(&lookupJSON, "json", false, "Output matches as JSON")
	rootCmd.AddCommand(lookupCmd)
}

func runLookup(cmd *cobra.Command, args []string) error {
	query := strings.Join(args, " ")
	dir := workspacePath(lookupDir, nodesDir)
	warnIfStale(cmd.ErrOrStderr(), dir)
	entries, err := nodeschema.LoadDir(dir)
	if err != nil {
		return err
	}

	var matches []lookup.Match
	if lookupSearch {
		matches = lookup.Search(entries, query)
	} else {
		matches = lookup.Resolve(entries, query)
	}
	if len(matches) == 0 {
		return fmt.Errorf("no node matches %q in %s", query, dir)
	}

	out := cmd.OutOrStdout()
	if lookupShow {
		if lookupJSON {
			return printJSON(out, matches[0].Record)
		}
		data, err := nodeschema.Marshal(matches[0].Record)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "# %s\n%s\n", matches[0].File, data)
		return nil
	}

	if lookupLimit > 0 && len(matches) > lookupLimit {
		matches = matches[:lookupLimit]
	}
	if lookupJSON {
		return printJSON(out, matches)
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DISPLAY NAME\tNAME\tFILE\tMATCH")
	for _, m := range matches {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", m.DisplayName, m.Name, m.File, matchLabel(m))
	}
	return w.Flush()
}

func matchLabel(m lookup.Match) string {
	if m.Exact {
		return "exact"
	}
	return fmt.Sprintf("fuzzy (%d)", m.Score)
}
