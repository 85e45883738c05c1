// Package resources provides MCP resources for exposing session data.
// Resources are read-only data sources that MCP clients can fetch, such as
// the authorization state of the running server and the operations it
// currently exposes.
package resources
