package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/branding"
	"github.com/spf13/viper"
)

const (
	fileName = "config"
	fileType = "yaml"
)

// Recognised configuration keys.
const (
	KeyBaseURL     = "base_url"
	KeyAPIKey      = "api_key"
	KeyJWTToken    = "jwt_token"
	KeyRegistryURL = "registry_url"
	KeyTimeout     = "timeout"
	KeyRetries     = "retries"
	KeyWorkers     = "workers"
	KeyOutputDir   = "output_dir"
	KeyLogLevel    = "log_level"
)

// Defaults applied when neither the config file nor the environment sets a key.
const (
	DefaultTimeout   = 30 * time.Second
	DefaultRetries   = 3
	DefaultWorkers   = 4
	DefaultOutputDir = "harvest"
)

// ErrMissingCredential is returned when a command needs a token that is not configured.
var ErrMissingCredential = errors.New("missing credential")

// ErrUnknownKey is returned by Set for keys outside Keys().
var ErrUnknownKey = errors.New("unknown config key")

// Keys returns every recognised configuration key in display order.
func Keys() []string {
	return []string{
		KeyBaseURL, KeyAPIKey, KeyJWTToken, KeyRegistryURL,
		KeyTimeout, KeyRetries, KeyWorkers, KeyOutputDir, KeyLogLevel,
	}
}

// IsSecret reports whether a key holds a credential that should be masked on display.
func IsSecret(key string) bool {
	return key == KeyAPIKey || key == KeyJWTToken
}

// Dir returns the config directory. N8N_HOME overrides ~/.n8n-harvest/.
func Dir() string {
	if v := os.Getenv(branding.EnvVar("HOME")); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", branding.HomeDir())
	}
	return filepath.Join(home, branding.HomeDir())
}

// FilePath returns the full path to the config file.
func FilePath() string {
	return filepath.Join(Dir(), fileName+"."+fileType)
}

// EnsureDir creates the config directory if it does not exist.
func EnsureDir() error {
	dir := Dir()
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}
	return nil
}

// Load initializes Viper to read from the config file and environment.
func Load() {
	viper.SetConfigFile(FilePath())
	viper.SetConfigType(fileType)
	viper.SetEnvPrefix(branding.EnvPrefix())
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	viper.SetDefault(KeyRegistryURL, branding.RegistryURL())
	viper.SetDefault(KeyTimeout, DefaultTimeout)
	viper.SetDefault(KeyRetries, DefaultRetries)
	viper.SetDefault(KeyWorkers, DefaultWorkers)
	viper.SetDefault(KeyOutputDir, DefaultOutputDir)

	// Ignore error if config file doesn't exist yet.
	_ = viper.ReadInConfig()
}

// Get returns a config value by key. Returns empty string if not set.
func Get(key string) string {
	return viper.GetString(key)
}

// Set writes a config key-value pair and saves the config file.
func Set(key, value string) error {
	if !slices.Contains(Keys(), key) {
		return fmt.Errorf("%w: %s", ErrUnknownKey, key)
	}
	if key == KeyTimeout {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration %q: %w", value, err)
		}
	}

	if err := EnsureDir(); err != nil {
		return err
	}

	viper.Set(key, value)

	configFile := FilePath()

	// Create the file if it doesn't exist.
	if _, err := os.Stat(configFile); os.IsNotExist(err) {
		f, err := os.Create(configFile)
		if err != nil {
			return fmt.Errorf("creating config file %s: %w", configFile, err)
		}
		f.Close()
	}

	// Credentials may live in the file, keep it private.
	if err := viper.WriteConfigAs(configFile); err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := os.Chmod(configFile, 0600); err != nil {
		return fmt.Errorf("restricting config file permissions: %w", err)
	}

	return nil
}

// Settings is a typed snapshot of the effective configuration.
type Settings struct {
	BaseURL     string
	APIKey      string
	JWTToken    string
	RegistryURL string
	Timeout     time.Duration
	Retries     int
	Workers     int
	OutputDir   string
	LogLevel    string
}

// Current returns the effective settings after Load.
func Current() Settings {
	s := Settings{
		BaseURL:     strings.TrimRight(viper.GetString(KeyBaseURL), "/"),
		APIKey:      viper.GetString(KeyAPIKey),
		JWTToken:    viper.GetString(KeyJWTToken),
		RegistryURL: strings.TrimRight(viper.GetString(KeyRegistryURL), "/"),
		Timeout:     viper.GetDuration(KeyTimeout),
		Retries:     viper.GetInt(KeyRetries),
		Workers:     viper.GetInt(KeyWorkers),
		OutputDir:   viper.GetString(KeyOutputDir),
		LogLevel:    viper.GetString(KeyLogLevel),
	}
	if s.Timeout <= 0 {
		s.Timeout = DefaultTimeout
	}
	if s.Retries < 1 {
		s.Retries = 1
	}
	if s.Workers < 1 {
		s.Workers = 1
	}
	if s.RegistryURL == "" {
		s.RegistryURL = branding.RegistryURL()
	}
	if s.OutputDir == "" {
		s.OutputDir = DefaultOutputDir
	}
	return s
}

// RequireBaseURL returns an error when no server URL is configured.
func (s Settings) RequireBaseURL() error {
	if s.BaseURL == "" {
		return fmt.Errorf("no server URL: pass --base-url or set %s", branding.EnvVar(KeyBaseURL))
	}
	return nil
}

// RequireAPIKey returns ErrMissingCredential when the API key is unset.
func (s Settings) RequireAPIKey() error {
	if s.APIKey == "" {
		return fmt.Errorf("%w: set %s", ErrMissingCredential, branding.EnvVar(KeyAPIKey))
	}
	return nil
}

// RequireToken returns ErrMissingCredential when the bearer token is unset.
func (s Settings) RequireToken() error {
	if s.JWTToken == "" {
		return fmt.Errorf("%w: set %s", ErrMissingCredential, branding.EnvVar(KeyJWTToken))
	}
	return nil
}

// Mask hides all but the last four characters of a secret value.
func Mask(value string) string {
	if value == "" {
		return ""
	}
	if len(value) <= 4 {
		return "****"
	}
	return "****" + value[len(value)-4:]
}
