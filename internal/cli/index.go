package cli

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/index"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/report"
)

var (
	indexDB    string
	indexDir   string
	indexLimit int
	indexJSON  bool
)

var indexCmd = &cobra.Command{
	Use:   "index",
	Short: "Build and query a SQLite catalogue of node records",
}

var indexBuildCmd = &cobra.Command{
	Use:   "build [dir]",
	Short: "Rebuild the catalogue from a record directory",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndexBuild,
}

var indexQueryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Search the catalogue by name, display name or description",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runIndexQuery,
}

var indexShowCmd = &cobra.Command{
	Use:   "show <node name>",
	Short: "Print the stored record of a node",
	Args:  cobra.ExactArgs(1),
	RunE:  runIndexShow,
}

func init() {
	indexCmd.PersistentFlags().StringVar(&indexDB, "db", "", "Catalogue file (default <output>/"+index.DefaultFile+")")
	indexBuildCmd.Flags().StringVar(&indexDir, "dir", "", "Record directory (default <output>/nodes)")
	indexQueryCmd.Flags().IntVar(&indexLimit, "limit", 50, "Maximum rows (0 for all)")
	indexQueryCmd.Flags().BoolVar(&indexJSON, "json", false, "Output rows as JSON")

	indexCmd.AddCommand(indexBuildCmd)
	indexCmd.AddCommand(indexQueryCmd)
	indexCmd.AddCommand(indexShowCmd)
	rootCmd.AddCommand(indexCmd)
}

func openIndex(mustExist bool) (*index.Index, string, error) {
	path := workspacePath(indexDB, index.DefaultFile)
	if mustExist {
		if _, err := os.Stat(path); err != nil {
			return nil, path, fmt.Errorf("no catalogue at %s: run 'index build' first", path)
		}
	} else if err := os.MkdirAll(filepath.Dir(path), nodeschema.DirPerm); err != nil {
		return nil, path, fmt.Errorf("creating %s: %w", filepath.Dir(path), err)
	}
	ix, err := index.Open(path)
	return ix, path, err
}

func runIndexBuild(cmd *cobra.Command, args []string) error {
	dir := workspacePath(indexDir, nodesDir)
	if len(args) == 1 {
		dir = args[0]
	}
	warnIfStale(cmd.ErrOrStderr(), dir)
	ix, path, err := openIndex(false)
	if err != nil {
		return err
	}
	defer ix.Close()

	n, err := ix.Build(cmd.Context(), dir)
	if err != nil {
		return fmt.Errorf("building catalogue: %w", err)
	}
	counts, err := ix.Count(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Indexed %d records from %s into %s\n", n, dir, path)
	for _, class := range []string{report.ClassOfficial, report.ClassLangChain, report.ClassCommunity} {
		fmt.Fprintf(out, "  %-10s %d\n", class, counts[class])
	}
	return nil
}

func runIndexQuery(cmd *cobra.Command, args []string) error {
	ix, _, err := openIndex(true)
	if err != nil {
		return err
	}
	defer ix.Close()

	q := ""
	if len(args) == 1 {
		q = args[0]
	}
	rows, err := ix.Query(cmd.Context(), q, indexLimit)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if indexJSON {
		return printJSON(out, rows)
	}
	if len(rows) == 0 {
		fmt.Fprintln(out, "No matching nodes.")
		return nil
	}
	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DISPLAY NAME\tNAME\tCATEGORY\tAI\tPROPS")
	for _, r := range rows {
		ai := ""
		if r.AI {
			ai = "yes"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%d\n", r.DisplayName, r.Name, r.Category, ai, r.PropertyCount)
	}
	return w.Flush()
}

func runIndexShow(cmd *cobra.Command, args []string) error {
	ix, _, err := openIndex(true)
	if err != nil {
		return err
	}
	defer ix.Close()

	rec, err := ix.Get(cmd.Context(), args[0])
	if errors.Is(err, index.ErrNotFound) {
		return fmt.Errorf("%w (names are full node types, e.g. n8n-nodes-base.slack)", err)
	}
	if err != nil {
		return err
	}
	return printJSON(cmd.OutOrStdout(), rec)
}
