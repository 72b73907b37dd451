// Package http provides the HTTP REST API implementation.
//
// The HTTP server exposes endpoints for:
//   - Synchronous chat turns and async chat jobs
//   - Session history listing and deletion
//   - The currently selected model provider
//   - Health checks
//   - Prometheus metrics
package http
