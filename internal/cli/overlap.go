package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/reconcile"
)

var (
	overlapList bool
	overlapJSON bool
)

var overlapCmd = &cobra.Command{
	Use:   "overlap <dir-a> <dir-b>",
	Short: "Compare two record directories by node name",
	Long: `Compare the node names inside the records of two directories. Reports the
shared nodes, the nodes only one side has, the overlap rate and the share of
new content in dir-b, and groups the new nodes by category.`,
	Args: cobra.ExactArgs(2),
	RunE: runOverlap,
}

func init() {
	overlapCmd.Flags().BoolVar(&overlapList, "list", false, "List every node in each group")
	overlapCmd.Flags().BoolVar(&overlapJSON, "json", false, "Output the report as JSON")
	rootCmd.AddCommand(overlapCmd)
}

// overlapCategoryOrder is the display order of categories.
var overlapCategoryOrder = []string{
	reconcile.CategoryTriggers,
	reconcile.CategoryCloud,
	reconcile.CategoryDatabases,
	reconcile.CategoryEmail,
	reconcile.CategoryOthers,
}

func runOverlap(cmd *cobra.Command, args []string) error {
	rep, err := reconcile.Overlap(args[0], args[1])
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if overlapJSON {
		return printJSON(out, rep)
	}

	fmt.Fprintf(out, "%s: %d nodes\n", args[0], rep.CountA)
	fmt.Fprintf(out, "%s: %d nodes\n", args[1], rep.CountB)
	fmt.Fprintf(out, "Shared:      %d\n", len(rep.Duplicates))
	fmt.Fprintf(out, "Only in A:   %d\n", len(rep.OnlyA))
	fmt.Fprintf(out, "Only in B:   %d\n", len(rep.OnlyB))
	fmt.Fprintf(out, "Overlap:     %.1f%%\n", rep.OverlapRate)
	fmt.Fprintf(out, "New content: %.1f%%\n", rep.NewContentRate)

	if len(rep.Categories) > 0 {
		fmt.Fprintln(out, "\nNew nodes by category:")
		for _, c := range overlapCategoryOrder {
			names := rep.Categories[c]
			if len(names) == 0 {
				continue
			}
			fmt.Fprintf(out, "  %s: %d\n", c, len(names))
			if overlapList {
				for _, n := range names {
					fmt.Fprintf(out, "    %s\n", n)
				}
			}
		}
	}

	if overlapList {
		printNodeFiles(cmd, "Shared", rep.Duplicates)
		printNodeFiles(cmd, "Only in A", rep.OnlyA)
		printNodeFiles(cmd, "Only in B", rep.OnlyB)
	}
	return nil
}

func printNodeFiles(cmd *cobra.Command, title string, files []reconcile.NodeFile) {
	if len(files) == 0 {
		return
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "\n%s:\n", title)
	for _, f := range files {
		fmt.Fprintf(out, "  %s\n", f.Node)
	}
}
