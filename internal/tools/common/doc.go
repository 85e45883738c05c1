// Package common provides shared wrappers for MCP tool handlers.
package common
