// Package branding provides compile-time identity values for the CLI.
//
// branding.yaml is embedded with //go:embed so the binary name, home
// directory and environment prefix can change without touching code.
package branding

import (
	_ "embed"
	"strings"
	"sync"

	"go.yaml.in/yaml/v3"
)

//go:embed branding.yaml
var rawBranding []byte

var (
	once     sync.Once
	defaults brand
)

type brand struct {
	CLIName     string `yaml:"cli_name"`
	DisplayName string `yaml:"display_name"`
	Description string `yaml:"description"`
	HomeDir     string `yaml:"home_dir"`
	EnvPrefix   string `yaml:"env_prefix"`
	GoModule    string `yaml:"go_module"`
	RegistryURL string `yaml:"registry_url"`
	UserAgent   string `yaml:"user_agent"`
}

func load() {
	once.Do(func() {
		// Hard defaults in case the embedded file is missing or empty.
		defaults = brand{
			CLIName:     "n8n-harvest",
			DisplayName: "n8n Harvest",
			Description: "Harvest, probe, and reconcile n8n node schemas",
			HomeDir:     ".n8n-harvest",
			EnvPrefix:   "N8N",
			GoModule:    "github.com/Angelicac-Wang/n8n-AI-Agent",
			RegistryURL: "https://registry.npmjs.org",
			UserAgent:   "n8n-harvest",
		}
		_ = yaml.Unmarshal(rawBranding, &defaults)
	})
}

// CLIName returns the root command name (e.g., "n8n-harvest").
func CLIName() string { load(); return defaults.CLIName }

// DisplayName returns the human-readable product name.
func DisplayName() string { load(); return defaults.DisplayName }

// Description returns the short product description.
func Description() string { load(); return defaults.Description }

// HomeDir returns the dot-directory name under $HOME (e.g., ".n8n-harvest").
func HomeDir() string { load(); return defaults.HomeDir }

// EnvPrefix returns the environment variable prefix (e.g., "N8N").
func EnvPrefix() string { load(); return defaults.EnvPrefix }

// GoModule returns the Go module path. Not consumed at runtime.
func GoModule() string { load(); return defaults.GoModule }

// RegistryURL returns the default npm registry base URL.
func RegistryURL() string { load(); return defaults.RegistryURL }

// UserAgent returns the User-Agent sent with every outbound request.
func UserAgent() string { load(); return defaults.UserAgent }

// EnvVar returns a fully qualified env var name, e.g., EnvVar("api_key") → "N8N_API_KEY".
func EnvVar(suffix string) string {
	load()
	return defaults.EnvPrefix + "_" + strings.ToUpper(suffix)
}
