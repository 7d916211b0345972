package cli

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/config"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/harvest"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/npm"
)

const searchResultsFile = "npm_search_results.json"

var (
	npmSearchSize int
	npmSearchAll  bool
	npmSearchSave bool
	npmSearchJSON bool

	npmDownloadDir     string
	npmDownloadVersion string
	npmDownloadFrom    string
	npmDownloadWorkers int
	npmDownloadLimit   int
	npmDownloadJSON    bool
)

var npmCmd = &cobra.Command{
	Use:   "npm",
	Short: "Search and download community node packages from the npm registry",
}

var npmSearchCmd = &cobra.Command{
	Use:   "search [term...]",
	Short: "Search the registry for n8n node packages",
	Long: `Query the registry once per term and merge the results. Each package appears
once, ordered by score. Without terms the community-node conventions are
searched. Packages that do not look like n8n node packages are dropped unless
--all is given.`,
	RunE: runNpmSearch,
}

var npmDownloadCmd = &cobra.Command{
	Use:   "download [package...]",
	Short: "Download and unpack package tarballs",
	Long: `Resolve a version of each package, download and verify its tarball, and
unpack it under <output>/packages. Without names (and without --from) the
registry is searched and every result is downloaded. A failing package never
stops the batch; download_summary.json records the outcome.`,
	Example: `  n8n-harvest npm download n8n-nodes-foo @scope/n8n-nodes-bar
  n8n-harvest npm download --version '^1.2' n8n-nodes-foo
  n8n-harvest npm download --limit 20 --workers 8`,
	RunE: runNpmDownload,
}

func init() {
	npmSearchCmd.Flags().IntVar(&npmSearchSize, "size", npm.DefaultSearchSize, "Results requested per term")
	npmSearchCmd.Flags().BoolVar(&npmSearchAll, "all", false, "Keep packages that do not look like n8n node packages")
	npmSearchCmd.Flags().BoolVar(&npmSearchSave, "save", false, "Save results to <output>/"+searchResultsFile)
	npmSearchCmd.Flags().BoolVar(&npmSearchJSON, "json", false, "Output results as JSON")

	npmDownloadCmd.Flags().StringVar(&npmDownloadDir, "dir", "", "Download root (default <output>/packages)")
	npmDownloadCmd.Flags().StringVar(&npmDownloadVersion, "version", "", "Dist-tag or semver constraint (default latest)")
	npmDownloadCmd.Flags().StringVar(&npmDownloadFrom, "from", "", "Read package names from a file, one per line")
	npmDownloadCmd.Flags().IntVar(&npmDownloadWorkers, "workers", 0, "Concurrent downloads (default from config)")
	npmDownloadCmd.Flags().IntVar(&npmDownloadLimit, "limit", 0, "Download at most this many packages")
	npmDownloadCmd.Flags().BoolVar(&npmDownloadJSON, "json", false, "Output the summary as JSON")

	npmCmd.AddCommand(npmSearchCmd)
	npmCmd.AddCommand(npmDownloadCmd)
	rootCmd.AddCommand(npmCmd)
}

func runNpmSearch(cmd *cobra.Command, args []string) error {
	client := registryClient(config.Current())
	results, err := client.Search(cmd.Context(), args, npm.SearchOptions{Size: npmSearchSize, All: npmSearchAll})
	if err != nil {
		return err
	}

	if npmSearchSave {
		path := workspacePath("", searchResultsFile)
		if err := nodeschema.WriteFile(path, results); err != nil {
			return err
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %d results to %s\n", len(results), path)
	}

	out := cmd.OutOrStdout()
	if npmSearchJSON {
		return printJSON(out, results)
	}
	if len(results) == 0 {
		fmt.Fprintln(out, "No packages found.")
		return nil
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "NAME\tVERSION\tSCORE\tDESCRIPTION")
	for _, r := range results {
		fmt.Fprintf(w, "%s\t%s\t%.3f\t%s\n", r.Name, r.Version, r.Score, truncate(r.Description, 60))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(out, "\n%d packages\n", len(results))
	return nil
}

func runNpmDownload(cmd *cobra.Command, args []string) error {
	s := config.Current()
	client := registryClient(s)

	names, err := installTargets(args, npmDownloadFrom)
	if err != nil {
		return err
	}
	if len(names) == 0 {
		results, err := client.Search(cmd.Context(), nil, npm.SearchOptions{})
		if err != nil {
			return err
		}
		for _, r := range results {
			names = append(names, r.Name)
		}
		fmt.Fprintf(cmd.ErrOrStderr(), "Found %d packages in the registry\n", len(names))
	}
	if npmDownloadLimit > 0 && len(names) > npmDownloadLimit {
		names = names[:npmDownloadLimit]
	}
	if len(names) == 0 {
		return fmt.Errorf("no packages to download")
	}

	workers := npmDownloadWorkers
	if workers <= 0 {
		workers = s.Workers
	}
	root := workspacePath(npmDownloadDir, packagesDir)
	if err := os.MkdirAll(root, nodeschema.DirPerm); err != nil {
		return fmt.Errorf("creating %s: %w", root, err)
	}
	unlock, err := harvest.LockDir(root)
	if err != nil {
		return err
	}
	defer unlock()

	summary, err := client.DownloadAll(cmd.Context(), names, npmDownloadVersion, root, workers)
	if err != nil {
		return err
	}
	if err := npm.WriteSummary(root, summary); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if npmDownloadJSON {
		return printJSON(out, summary)
	}

	w := tabwriter.NewWriter(out, 0, 0, 3, ' ', 0)
	fmt.Fprintln(w, "PACKAGE\tVERSION\tNODES\tCREDENTIALS\tFILES")
	for _, p := range summary.Packages {
		fmt.Fprintf(w, "%s\t%s\t%d\t%d\t%d\n", p.Name, p.Version, p.NodeFiles, p.Credentials, p.TotalFiles)
	}
	if err := w.Flush(); err != nil {
		return err
	}
	for _, f := range summary.Failed {
		fmt.Fprintf(out, "FAILED %s: %s\n", f.Name, f.Error)
	}
	fmt.Fprintf(out, "\nDownloaded %d/%d packages into %s\n", len(summary.Packages), summary.Total, root)
	fmt.Fprintf(out, "Summary: %s\n", filepath.Join(root, npm.SummaryFile))
	return nil
}
