package logging

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in     string
		want   slog.Level
		wantOK bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warning", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"loud", slog.LevelInfo, false},
	}
	for _, tt := range tests {
		got, ok := ParseLevel(tt.in)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("ParseLevel(%q) = (%v, %v), want (%v, %v)", tt.in, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestResolveLevelPrecedence(t *testing.T) {
	t.Setenv("N8N_LOG_LEVEL", "warn")
	t.Setenv("LOG_LEVEL", "error")

	if got := ResolveLevel("debug"); got != "debug" {
		t.Errorf("ResolveLevel(flag) = %q, want %q", got, "debug")
	}
	if got := ResolveLevel(""); got != "warn" {
		t.Errorf("ResolveLevel(env) = %q, want %q", got, "warn")
	}

	t.Setenv("N8N_LOG_LEVEL", "")
	if got := ResolveLevel(""); got != "error" {
		t.Errorf("ResolveLevel(fallback) = %q, want %q", got, "error")
	}
}

func TestSetupFiltersBelowLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	Setup(&buf, "warn")
	slog.Info("hidden")
	slog.Warn("shown", "k", "v")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("info message should be filtered, got %q", out)
	}
	if !strings.Contains(out, "shown") || !strings.Contains(out, "k=v") {
		t.Errorf("warn message missing, got %q", out)
	}
}

func TestSetupWarnsOnInvalidLevel(t *testing.T) {
	prev := slog.Default()
	t.Cleanup(func() { slog.SetDefault(prev) })

	var buf bytes.Buffer
	Setup(&buf, "chatty")
	if !strings.Contains(buf.String(), "Invalid log level") {
		t.Errorf("expected invalid level warning, got %q", buf.String())
	}
}
