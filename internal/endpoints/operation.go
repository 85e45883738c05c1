package endpoints

import "strings"

// Operation identifies one remote operation.
type Operation int

// The supported operations. The set is closed; the registry covers each one.
const (
	TaskListsList Operation = iota + 1
	TaskListsGet
	TaskListsInsert
	TaskListsUpdate
	TaskListsPatch
	TaskListsDelete
	TasksList
	TasksGet
	TasksInsert
	TasksUpdate
	TasksPatch
	TasksDelete
	TasksMove
	TasksClear
	TasksListAll
)

var operationNames = map[Operation]string{
	TaskListsList:   "tasklists.list",
	TaskListsGet:    "tasklists.get",
	TaskListsInsert: "tasklists.insert",
	TaskListsUpdate: "tasklists.update",
	TaskListsPatch:  "tasklists.patch",
	TaskListsDelete: "tasklists.delete",
	TasksList:       "tasks.list",
	TasksGet:        "tasks.get",
	TasksInsert:     "tasks.insert",
	TasksUpdate:     "tasks.update",
	TasksPatch:      "tasks.patch",
	TasksDelete:     "tasks.delete",
	TasksMove:       "tasks.move",
	TasksClear:      "tasks.clear",
	TasksListAll:    "tasks.listAll",
}

// String returns the dotted operation name, e.g. "tasks.move".
func (o Operation) String() string {
	if name, ok := operationNames[o]; ok {
		return name
	}
	return "unknown"
}

// ToolName returns the flat tool name, e.g. "tasks_move".
func (o Operation) ToolName() string {
	return ToolName(o.String())
}

// Valid reports whether o is one of the declared operations.
func (o Operation) Valid() bool {
	_, ok := operationNames[o]
	return ok
}

// ToolName normalizes a dotted operation name to a flat tool name.
func ToolName(operation string) string {
	return strings.ReplaceAll(operation, ".", "_")
}
