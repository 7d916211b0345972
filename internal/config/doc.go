// Package config manages user-level settings stored at ~/.n8n-harvest/config.yaml.
// Values can be overridden by N8N_-prefixed environment variables, which is
// how server credentials (N8N_API_KEY, N8N_JWT_TOKEN) are normally supplied.
package config
