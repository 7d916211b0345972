// Package logging configures the process-wide slog logger.
package logging

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"

	"github.com/Angelicac-Wang/n8n-AI-Agent/internal/branding"
)

// ParseLevel maps a level name to a slog.Level. The second return value is
// false when the name is not recognised, in which case LevelInfo is returned.
func ParseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	default:
		return slog.LevelInfo, false
	}
}

// ResolveLevel picks the level from an explicit flag value, then the
// N8N_LOG_LEVEL setting, then LOG_LEVEL.
func ResolveLevel(flagValue string) string {
	if flagValue != "" {
		return flagValue
	}
	v := viper.New()
	v.SetEnvPrefix(branding.EnvPrefix())
	v.AutomaticEnv()
	if s := v.GetString("LOG_LEVEL"); s != "" {
		return s
	}
	return os.Getenv("LOG_LEVEL")
}

// Setup installs a text handler writing to w as the default slog logger.
func Setup(w io.Writer, levelName string) *slog.Logger {
	level, ok := ParseLevel(levelName)
	logger := slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	if !ok {
		slog.Warn("Invalid log level, using INFO", "value", levelName)
	}
	return logger
}
