package cli

import (
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/branding"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/config"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/logging"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/n8n"
	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/npm"
)

var (
	buildVersion string
	buildCommit  string
	buildDate    string
)

var (
	flagBaseURL  string
	flagOutput   string
	flagLogLevel string
)

var rootCmd = &cobra.Command{
	Use:   branding.CLIName(),
	Short: branding.Description(),
	Long: branding.DisplayName() + ` harvests node-type schemas from an n8n server and the npm registry,
extracts records from community packages, and reconciles and reports on the results.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		config.Load()
		if flagBaseURL != "" {
			viper.Set(config.KeyBaseURL, flagBaseURL)
		}
		if flagOutput != "" {
			viper.Set(config.KeyOutputDir, flagOutput)
		}
		level := flagLogLevel
		if level == "" {
			level = config.Get(config.KeyLogLevel)
		}
		logging.Setup(cmd.ErrOrStderr(), logging.ResolveLevel(level))
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&flagBaseURL, "base-url", "", "n8n server base URL (overrides "+branding.EnvVar(config.KeyBaseURL)+")")
	rootCmd.PersistentFlags().StringVar(&flagOutput, "output", "", "Workspace directory for harvested files")
	rootCmd.PersistentFlags().StringVar(&flagLogLevel, "log-level", "", "Log level: debug, info, warn, error")
}

// Execute runs the root command with build info injected via ldflags.
func Execute(version, commit, date string) error {
	buildVersion = version
	buildCommit = commit
	buildDate = date
	err := rootCmd.Execute()
	if err != nil {
		rootCmd.PrintErrln("Error:", err)
	}
	return err
}

// serverClient builds an n8n client from the effective settings. The API key
// and bearer token are attached when configured.
func serverClient(s config.Settings) (*n8n.Client, error) {
	if err := s.RequireBaseURL(); err != nil {
		return nil, err
	}
	opts := []n8n.Option{
		n8n.WithTimeout(s.Timeout),
		n8n.WithRetries(s.Retries),
	}
	if s.APIKey != "" {
		opts = append(opts, n8n.WithAPIKey(s.APIKey))
	}
	if s.JWTToken != "" {
		opts = append(opts, n8n.WithToken(s.JWTToken))
	}
	return n8n.New(s.BaseURL, opts...), nil
}

func registryClient(s config.Settings) *npm.Client {
	return npm.New(s.RegistryURL,
		npm.WithTimeout(s.Timeout),
		npm.WithRetries(s.Retries),
	)
}
