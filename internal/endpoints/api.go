package endpoints

import (
	"context"

	gtasks "google.golang.org/api/tasks/v1"

	"github.com/teemow/taskbridge/internal/tasks"
)

// API is the remote capability the operations call. *tasks.Client
// implements it.
type API interface {
	ListTaskLists(ctx context.Context, opts tasks.PageOptions) (*gtasks.TaskLists, error)
	GetTaskList(ctx context.Context, taskListID string) (*gtasks.TaskList, error)
	InsertTaskList(ctx context.Context, tl *gtasks.TaskList) (*gtasks.TaskList, error)
	UpdateTaskList(ctx context.Context, taskListID string, tl *gtasks.TaskList) (*gtasks.TaskList, error)
	PatchTaskList(ctx context.Context, taskListID string, tl *gtasks.TaskList) (*gtasks.TaskList, error)
	DeleteTaskList(ctx context.Context, taskListID string) error

	ListTasks(ctx context.Context, taskListID string, opts tasks.ListOptions) (*gtasks.Tasks, error)
	GetTask(ctx context.Context, taskListID, taskID string) (*gtasks.Task, error)
	InsertTask(ctx context.Context, taskListID string, t *gtasks.Task, pos tasks.PositionOptions) (*gtasks.Task, error)
	UpdateTask(ctx context.Context, taskListID, taskID string, t *gtasks.Task) (*gtasks.Task, error)
	PatchTask(ctx context.Context, taskListID, taskID string, t *gtasks.Task) (*gtasks.Task, error)
	DeleteTask(ctx context.Context, taskListID, taskID string) error
	MoveTask(ctx context.Context, taskListID, taskID string, pos tasks.PositionOptions) (*gtasks.Task, error)
	ClearCompleted(ctx context.Context, taskListID string) error

	ListAllTasks(ctx context.Context, opts tasks.ListOptions) (*tasks.AllTasks, error)
}

var _ API = (*tasks.Client)(nil)
