package endpoints

import "fmt"

// ValidationError reports an invocation rejected before any remote call.
type ValidationError struct {
	Tool   string
	Param  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid parameter %q for tool %s: %s", e.Param, e.Tool, e.Reason)
	}
	return fmt.Sprintf("missing required parameter %q for tool %s", e.Param, e.Tool)
}

// NotFoundError reports an invocation of an unknown tool.
type NotFoundError struct {
	Tool string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("unknown tool: %s", e.Tool)
}
