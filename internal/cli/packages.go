package cli

import (
	"fmt"
	"net/http"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/config"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/n8n"
)

var packagesJSON bool

var packagesCmd = &cobra.Command{
	Use:   "packages",
	Short: "List community packages installed on the server",
	RunE:  runPackages,
}

func init() {
	packagesCmd.Flags().BoolVar(&packagesJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(packagesCmd)
}

func runPackages(cmd *cobra.Command, args []string) error {
	s := config.Current()
	if err := s.RequireToken(); err != nil {
		return err
	}
	client, err := serverClient(s)
	if err != nil {
		return err
	}

	pkgs, err := client.InstalledPackages(cmd.Context())
	if err != nil {
		if n8n.IsStatus(err, http.StatusNotFound) {
			return fmt.Errorf("server does not expose community packages: %w", err)
		}
		return err
	}

	out := cmd.OutOrStdout()
	if packagesJSON {
		return printJSON(out, pkgs)
	}
	if len(pkgs) == 0 {
		fmt.Fprintln(out, "No community packages installed.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PACKAGE\tVERSION\tNODES")
	for _, p := range pkgs {
		fmt.Fprintf(w, "%s\t%s\t%d\n", p.PackageName, p.InstalledVersion, len(p.InstalledNodes))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d packages\n", len(pkgs))
	return nil
}
