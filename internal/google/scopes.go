package google

import tasks "google.golang.org/api/tasks/v1"

// DefaultOAuthScopes are the scopes requested when the configuration does not
// name any. Full Tasks access is needed for the mutating endpoints.
var DefaultOAuthScopes = []string{
	tasks.TasksScope,
}

// ReadOnlyOAuthScopes grant read access to task lists and tasks only. They are
// the default in read-only mode.
var ReadOnlyOAuthScopes = []string{
	tasks.TasksReadonlyScope,
}
