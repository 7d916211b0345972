// Package httpx is the HTTP plumbing shared by the n8n and npm clients.
// Idempotent GETs are retried with exponential backoff on transport errors,
// 429 and 5xx responses; other requests are sent exactly once.
package httpx
