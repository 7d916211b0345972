package cli

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/nodeschema"
)

var validateJSON bool

var validateCmd = &cobra.Command{
	Use:   "validate [dir]",
	Short: "Check record files against the record schema",
	Long: `Validate every record file in a directory against the embedded JSON schema:
a string name and a properties array whose items carry a name and a type.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	validateCmd.Flags().BoolVar(&validateJSON, "json", false, "Output results as JSON")
	rootCmd.AddCommand(validateCmd)
}

// fileValidation is the per-file result printed with --json.
type fileValidation struct {
	File   string                       `json:"file"`
	Valid  bool                         `json:"valid"`
	Issues []nodeschema.ValidationIssue `json:"issues,omitempty"`
	Error  string                       `json:"error,omitempty"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	dir := workspacePath("", nodesDir)
	if len(args) == 1 {
		dir = args[0]
	}
	names, err := nodeschema.ListJSON(dir)
	if err != nil {
		return err
	}

	results := make([]fileValidation, 0, len(names))
	invalid := 0
	for _, name := range names {
		fv := fileValidation{File: name}
		res, err := nodeschema.ValidateFile(filepath.Join(dir, name))
		switch {
		case err != nil:
			fv.Error = err.Error()
		default:
			fv.Valid = res.Valid
			fv.Issues = res.Issues
		}
		if !fv.Valid {
			invalid++
		}
		results = append(results, fv)
	}

	out := cmd.OutOrStdout()
	if validateJSON {
		if err := printJSON(out, results); err != nil {
			return err
		}
	} else {
		for _, r := range results {
			if r.Valid {
				continue
			}
			if r.Error != "" {
				fmt.Fprintf(out, "%s: %s\n", r.File, r.Error)
				continue
			}
			for _, is := range r.Issues {
				fmt.Fprintf(out, "%s: %s: %s\n", r.File, is.Path, is.Message)
			}
		}
		fmt.Fprintf(out, "%d/%d records valid\n", len(names)-invalid, len(names))
	}

	if invalid > 0 {
		return fmt.Errorf("%d records failed validation", invalid)
	}
	return nil
}
