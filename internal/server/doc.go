// Package server holds the runtime state shared by the MCP tool handlers and
// the HTTP surfaces around them.
//
// ServerContext carries the endpoint dispatcher, the credential state and
// the optional metrics and audit recorders. HealthChecker serves /healthz
// and /readyz; the server is ready once a credential is loaded. HTTPServer
// exposes the MCP streamable HTTP transport at /mcp next to the health
// endpoints, and MetricsServer serves Prometheus metrics on a dedicated
// address.
package server
