package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/config"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show server version and health",
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Output as JSON")
	rootCmd.AddCommand(infoCmd)
}

func runInfo(cmd *cobra.Command, args []string) error {
	client, err := serverClient(config.Current())
	if err != nil {
		return err
	}
	info, err := client.ServerInfo(cmd.Context())
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if infoJSON {
		return printJSON(out, info)
	}

	version := info.Version
	if version == "" {
		version = "unknown"
	}
	health := "unhealthy"
	if info.Healthy() {
		health = "healthy"
	}
	fmt.Fprintf(out, "Server:  %s\n", client.BaseURL())
	fmt.Fprintf(out, "Version: %s\n", version)
	fmt.Fprintf(out, "Health:  %s (%d)\n", health, info.HealthStatus)
	return nil
}
