// Package cli defines the Cobra command tree for the n8n-harvest CLI. Each
// file in this package registers one top-level command (fetch, npm, extract,
// dedup, etc.) with the root command. Command implementations delegate to
// internal packages for the work and only handle flag parsing, output
// formatting and user interaction.
package cli
