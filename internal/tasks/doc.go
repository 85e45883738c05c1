// Package tasks is a thin client for the Google Tasks API (tasks/v1).
//
// Every method takes a context and returns the API's own resource types, so
// results pass through to callers untouched. Errors keep the underlying
// *googleapi.Error reachable with errors.As, which is what the auth layer
// classifies.
//
// ListAllTasks is the one composite call: it walks every task list in turn
// and collects their tasks, recording lists that fail instead of aborting.
package tasks
