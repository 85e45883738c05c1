// Package tasks_tools exposes the Google Tasks endpoint table as MCP tools.
//
// One tool is registered per endpoint definition, named after the operation
// with dots replaced by underscores (tasks.list becomes tasks_list). Every
// parameter of the definition becomes a typed tool argument; insert, update
// and patch operations additionally take a "body" object holding the
// resource. In read-only mode only non-mutating operations are registered.
//
// The "reauthorize" tool reruns the interactive Google authorization and is
// always available.
//
// Failures are returned as error results, never as Go errors, so the client
// sees the message.
package tasks_tools
