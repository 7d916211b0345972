// Package n8n is a small client for the REST API of an n8n server: node-type
// listing, settings, community-package management and endpoint probing.
// Requests authenticate with an API key header, a bearer token, or both.
package n8n
