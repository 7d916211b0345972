package cli

import (
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/reconcile"
)

var (
	filesShowInvalid bool
	filesJSON        bool
)

var filesCmd = &cobra.Command{
	Use:   "files <dir>...",
	Short: "Survey record directories",
	Long: `Count the files under each directory, check that every JSON file parses,
and list file names that occur in more than one place.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runFiles,
}

func init() {
	filesCmd.Flags().BoolVar(&filesShowInvalid, "invalid", false, "List files that are not valid JSON")
	filesCmd.Flags().BoolVar(&filesJSON, "json", false, "Output the survey as JSON")
	rootCmd.AddCommand(filesCmd)
}

func runFiles(cmd *cobra.Command, args []string) error {
	rep, err := reconcile.Survey(args...)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if filesJSON {
		return printJSON(out, rep)
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "DIR\tJSON\tVALID\tINVALID\tOTHER")
	for _, d := range rep.Dirs {
		fmt.Fprintf(w, "%s\t%d\t%d\t%d\t%d\n", d.Dir, d.JSONFiles, d.Valid, d.Invalid, d.OtherFiles)
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if filesShowInvalid {
		for _, d := range rep.Dirs {
			for _, f := range d.InvalidFiles {
				fmt.Fprintf(out, "INVALID %s: %s\n", f.File, f.Error)
			}
		}
	}

	if len(rep.DuplicateNames) == 0 {
		return nil
	}
	names := make([]string, 0, len(rep.DuplicateNames))
	for n := range rep.DuplicateNames {
		names = append(names, n)
	}
	sort.Strings(names)
	fmt.Fprintf(out, "\n%d file names occur more than once:\n", len(names))
	for _, n := range names {
		fmt.Fprintf(out, "  %s\n", n)
		for _, p := range rep.DuplicateNames[n] {
			fmt.Fprintf(out, "    %s\n", p)
		}
	}
	return nil
}
