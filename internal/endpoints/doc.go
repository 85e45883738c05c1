// Package endpoints declares the closed set of Google Tasks operations exposed
// as tools and dispatches tool invocations to them.
//
// Each Definition states which parameters an operation requires and whether
// it takes a free-form JSON body. The Dispatcher resolves an invocation by
// tool name, rejects it before any remote call when a required parameter is
// missing, runs the operation through the auth-repairing executor and renders
// the result as text.
//
// The "reauthorize" tool is handled by the Dispatcher itself. It never goes
// through the executor because it is the repair mechanism.
package endpoints
