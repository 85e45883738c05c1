package endpoints

import (
	"context"
	"fmt"

	gtasks "google.golang.org/api/tasks/v1"

	"github.com/teemow/taskbridge/internal/tasks"
)

// Parameter names as they appear in tool arguments.
const (
	ParamTaskList            = "tasklist"
	ParamTask                = "task"
	ParamParent              = "parent"
	ParamPrevious            = "previous"
	ParamDestinationTaskList = "destinationTasklist"
	ParamMaxResults          = "maxResults"
	ParamPageToken           = "pageToken"
	ParamShowCompleted       = "showCompleted"
	ParamShowDeleted         = "showDeleted"
	ParamShowHidden          = "showHidden"
	ParamShowAssigned        = "showAssigned"
	ParamDueMin              = "dueMin"
	ParamDueMax              = "dueMax"
	ParamCompletedMin        = "completedMin"
	ParamCompletedMax        = "completedMax"
	ParamUpdatedMin          = "updatedMin"
)

var (
	taskListParam = ParamSpec{Name: ParamTaskList, Kind: KindString, Required: true, Description: "Task list ID"}
	taskParam     = ParamSpec{Name: ParamTask, Kind: KindString, Required: true, Description: "Task ID"}

	pageParams = []ParamSpec{
		{Name: ParamMaxResults, Kind: KindNumber, Description: "Maximum number of results per page"},
		{Name: ParamPageToken, Kind: KindString, Description: "Token of the page to return"},
	}

	filterParams = []ParamSpec{
		{Name: ParamShowCompleted, Kind: KindBool, Description: "Include completed tasks (default true)"},
		{Name: ParamShowDeleted, Kind: KindBool, Description: "Include deleted tasks (default false)"},
		{Name: ParamShowHidden, Kind: KindBool, Description: "Include hidden tasks (default false)"},
		{Name: ParamShowAssigned, Kind: KindBool, Description: "Include tasks assigned from Docs or Chat (default false)"},
		{Name: ParamDueMin, Kind: KindString, Description: "Lower bound for due date (RFC 3339)"},
		{Name: ParamDueMax, Kind: KindString, Description: "Upper bound for due date (RFC 3339)"},
		{Name: ParamCompletedMin, Kind: KindString, Description: "Lower bound for completion date (RFC 3339)"},
		{Name: ParamCompletedMax, Kind: KindString, Description: "Upper bound for completion date (RFC 3339)"},
		{Name: ParamUpdatedMin, Kind: KindString, Description: "Lower bound for last modification time (RFC 3339)"},
	}
)

const (
	taskListBody = "Task list resource as JSON, e.g. {\"title\": \"Groceries\"}"
	taskBody     = "Task resource as JSON, e.g. {\"title\": \"Buy milk\", \"notes\": \"2 liters\", \"due\": \"2025-01-31T00:00:00Z\", \"status\": \"needsAction\"}"
)

func params(groups ...[]ParamSpec) []ParamSpec {
	var out []ParamSpec
	for _, g := range groups {
		out = append(out, g...)
	}
	return out
}

func pageOptions(p Params) tasks.PageOptions {
	return tasks.PageOptions{
		MaxResults: p.Int64(ParamMaxResults),
		PageToken:  p.String(ParamPageToken),
	}
}

func listOptions(p Params) tasks.ListOptions {
	return tasks.ListOptions{
		PageOptions:   pageOptions(p),
		ShowCompleted: p.Bool(ParamShowCompleted),
		ShowDeleted:   p.Bool(ParamShowDeleted),
		ShowHidden:    p.Bool(ParamShowHidden),
		ShowAssigned:  p.Bool(ParamShowAssigned),
		DueMin:        p.String(ParamDueMin),
		DueMax:        p.String(ParamDueMax),
		CompletedMin:  p.String(ParamCompletedMin),
		CompletedMax:  p.String(ParamCompletedMax),
		UpdatedMin:    p.String(ParamUpdatedMin),
	}
}

func positionOptions(p Params) tasks.PositionOptions {
	return tasks.PositionOptions{
		Parent:              p.String(ParamParent),
		Previous:            p.String(ParamPrevious),
		DestinationTaskList: p.String(ParamDestinationTaskList),
	}
}

func data(v any, err error) (Response, error) {
	if err != nil {
		return Response{}, err
	}
	return Response{Data: v}, nil
}

func raw(msg string, err error) (Response, error) {
	if err != nil {
		return Response{}, err
	}
	return Response{Raw: msg}, nil
}

// TasksDefinitions returns the Google Tasks operation table.
func TasksDefinitions() []Definition {
	return []Definition{
		{
			Op:          TaskListsList,
			Description: "List the user's task lists",
			Params:      params(pageParams),
			ReadOnly:    true,
			Invoke: func(ctx context.Context, api API, p Params, _ map[string]any) (Response, error) {
				return data(api.ListTaskLists(ctx, pageOptions(p)))
			},
		},
		{
			Op:          TaskListsGet,
			Description: "Get a task list",
			Params:      []ParamSpec{taskListParam},
			ReadOnly:    true,
			Invoke: func(ctx context.Context, api API, p Params, _ map[string]any) (Response, error) {
				return data(api.GetTaskList(ctx, p.String(ParamTaskList)))
			},
		},
		{
			Op:              TaskListsInsert,
			Description:     "Create a task list",
			UsesBody:        true,
			BodyDescription: taskListBody,
			Invoke: func(ctx context.Context, api API, _ Params, body map[string]any) (Response, error) {
				tl, err := decodeBody[gtasks.TaskList](TaskListsInsert.ToolName(), body)
				if err != nil {
					return Response{}, err
				}
				return data(api.InsertTaskList(ctx, tl))
			},
		},
		{
			Op:              TaskListsUpdate,
			Description:     "Replace a task list",
			Params:          []ParamSpec{taskListParam},
			UsesBody:        true,
			BodyDescription: taskListBody,
			Invoke: func(ctx context.Context, api API, p Params, body map[string]any) (Response, error) {
				tl, err := decodeBody[gtasks.TaskList](TaskListsUpdate.ToolName(), body)
				if err != nil {
					return Response{}, err
				}
				return data(api.UpdateTaskList(ctx, p.String(ParamTaskList), tl))
			},
		},
		{
			Op:              TaskListsPatch,
			Description:     "Update the given fields of a task list",
			Params:          []ParamSpec{taskListParam},
			UsesBody:        true,
			BodyDescription: taskListBody,
			Invoke: func(ctx context.Context, api API, p Params, body map[string]any) (Response, error) {
				tl, err := decodeBody[gtasks.TaskList](TaskListsPatch.ToolName(), body)
				if err != nil {
					return Response{}, err
				}
				return data(api.PatchTaskList(ctx, p.String(ParamTaskList), tl))
			},
		},
		{
			Op:          TaskListsDelete,
			Description: "Delete a task list and all of its tasks",
			Params:      []ParamSpec{taskListParam},
			Invoke: func(ctx context.Context, api API, p Params, _ map[string]any) (Response, error) {
				id := p.String(ParamTaskList)
				return raw(fmt.Sprintf("Task list %s deleted.", id), api.DeleteTaskList(ctx, id))
			},
		},
		{
			Op:          TasksList,
			Description: "List the tasks of a task list",
			Params:      params([]ParamSpec{taskListParam}, pageParams, filterParams),
			ReadOnly:    true,
			Invoke: func(ctx context.Context, api API, p Params, _ map[string]any) (Response, error) {
				return data(api.ListTasks(ctx, p.String(ParamTaskList), listOptions(p)))
			},
		},
		{
			Op:          TasksGet,
			Description: "Get a task",
			Params:      []ParamSpec{taskListParam, taskParam},
			ReadOnly:    true,
			Invoke: func(ctx context.Context, api API, p Params, _ map[string]any) (Response, error) {
				return data(api.GetTask(ctx, p.String(ParamTaskList), p.String(ParamTask)))
			},
		},
		{
			Op:          TasksInsert,
			Description: "Create a task, optionally as a subtask or after a sibling",
			Params: []ParamSpec{
				taskListParam,
				{Name: ParamParent, Kind: KindString, Description: "Parent task ID; omit for a top-level task"},
				{Name: ParamPrevious, Kind: KindString, Description: "Sibling task ID to insert after; omit to insert first"},
			},
			UsesBody:        true,
			BodyDescription: taskBody,
			Invoke: func(ctx context.Context, api API, p Params, body map[string]any) (Response, error) {
				t, err := decodeBody[gtasks.Task](TasksInsert.ToolName(), body)
				if err != nil {
					return Response{}, err
				}
				return data(api.InsertTask(ctx, p.String(ParamTaskList), t, positionOptions(p)))
			},
		},
		{
			Op:              TasksUpdate,
			Description:     "Replace a task",
			Params:          []ParamSpec{taskListParam, taskParam},
			UsesBody:        true,
			BodyDescription: taskBody,
			Invoke: func(ctx context.Context, api API, p Params, body map[string]any) (Response, error) {
				t, err := decodeBody[gtasks.Task](TasksUpdate.ToolName(), body)
				if err != nil {
					return Response{}, err
				}
				return data(api.UpdateTask(ctx, p.String(ParamTaskList), p.String(ParamTask), t))
			},
		},
		{
			Op:              TasksPatch,
			Description:     "Update the given fields of a task, e.g. {\"status\": \"completed\"} to complete it",
			Params:          []ParamSpec{taskListParam, taskParam},
			UsesBody:        true,
			BodyDescription: taskBody,
			Invoke: func(ctx context.Context, api API, p Params, body map[string]any) (Response, error) {
				t, err := decodeBody[gtasks.Task](TasksPatch.ToolName(), body)
				if err != nil {
					return Response{}, err
				}
				return data(api.PatchTask(ctx, p.String(ParamTaskList), p.String(ParamTask), t))
			},
		},
		{
			Op:          TasksDelete,
			Description: "Delete a task",
			Params:      []ParamSpec{taskListParam, taskParam},
			Invoke: func(ctx context.Context, api API, p Params, _ map[string]any) (Response, error) {
				id := p.String(ParamTask)
				return raw(fmt.Sprintf("Task %s deleted.", id), api.DeleteTask(ctx, p.String(ParamTaskList), id))
			},
		},
		{
			Op:          TasksMove,
			Description: "Move a task to another position, parent or task list",
			Params: []ParamSpec{
				taskListParam,
				taskParam,
				{Name: ParamParent, Kind: KindString, Description: "New parent task ID; omit to move to the top level"},
				{Name: ParamPrevious, Kind: KindString, Description: "Sibling task ID to move after; omit to move first"},
				{Name: ParamDestinationTaskList, Kind: KindString, Description: "Task list ID to move the task to"},
			},
			Invoke: func(ctx context.Context, api API, p Params, _ map[string]any) (Response, error) {
				return data(api.MoveTask(ctx, p.String(ParamTaskList), p.String(ParamTask), positionOptions(p)))
			},
		},
		{
			Op:          TasksClear,
			Description: "Clear all completed tasks from a task list",
			Params:      []ParamSpec{taskListParam},
			Invoke: func(ctx context.Context, api API, p Params, _ map[string]any) (Response, error) {
				id := p.String(ParamTaskList)
				return raw(fmt.Sprintf("Completed tasks cleared from task list %s.", id), api.ClearCompleted(ctx, id))
			},
		},
		{
			Op:          TasksListAll,
			Description: "List the tasks of every task list. Lists that fail to load are reported and skipped",
			Params:      filterParams,
			ReadOnly:    true,
			Invoke: func(ctx context.Context, api API, p Params, _ map[string]any) (Response, error) {
				return data(api.ListAllTasks(ctx, listOptions(p)))
			},
		},
	}
}

// DefaultRegistry returns the registry of all Google Tasks operations.
func DefaultRegistry() *Registry {
	r, err := NewRegistry(TasksDefinitions())
	if err != nil {
		panic(err)
	}
	return r
}
