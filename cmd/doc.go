// Package cmd implements the command-line interface for taskbridge.
//
// This package provides the following commands:
//   - serve: Start the MCP server exposing Google Tasks tools
//   - auth login: Run the interactive Google authorization and store the credential
//   - auth status: Show the stored credential without revealing tokens
//   - tools: Print a markdown table of the available tools
//   - version: Display version information
//
// All commands read the layered configuration of internal/config; the
// --config flag names an optional TOML file.
package cmd
