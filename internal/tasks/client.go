package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"google.golang.org/api/option"
	tasks "google.golang.org/api/tasks/v1"

	"github.com/teemow/taskbridge/internal/logging"
)

// Client wraps the Google Tasks service.
type Client struct {
	svc    *tasks.Service
	logger *slog.Logger
}

// NewClient creates a Tasks client that sends requests through httpClient,
// which is expected to attach credentials. Extra options are passed to the
// generated service, e.g. option.WithEndpoint in tests.
func NewClient(ctx context.Context, httpClient *http.Client, logger *slog.Logger, opts ...option.ClientOption) (*Client, error) {
	if logger == nil {
		logger = slog.Default()
	}

	opts = append([]option.ClientOption{option.WithHTTPClient(httpClient)}, opts...)
	svc, err := tasks.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Tasks service: %w", err)
	}

	return &Client{
		svc:    svc,
		logger: logging.WithService(logger, "tasks"),
	}, nil
}

// PageOptions selects a page of a list call.
type PageOptions struct {
	MaxResults int64
	PageToken  string
}

// ListOptions filters a tasks.list call. Time bounds are RFC 3339 timestamps.
type ListOptions struct {
	PageOptions
	ShowCompleted *bool
	ShowDeleted   *bool
	ShowHidden    *bool
	ShowAssigned  *bool
	DueMin        string
	DueMax        string
	CompletedMin  string
	CompletedMax  string
	UpdatedMin    string
}

// PositionOptions places a task when inserting or moving it.
type PositionOptions struct {
	// Parent makes the task a subtask. Empty means top level.
	Parent string
	// Previous is the sibling to place the task after. Empty means first.
	Previous string
	// DestinationTaskList moves the task to another list (move only).
	DestinationTaskList string
}

// ListTaskLists returns one page of the user's task lists.
func (c *Client) ListTaskLists(ctx context.Context, opts PageOptions) (*tasks.TaskLists, error) {
	call := c.svc.Tasklists.List().Context(ctx)
	if opts.MaxResults > 0 {
		call = call.MaxResults(opts.MaxResults)
	}
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}

	result, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list task lists: %w", err)
	}
	return result, nil
}

// GetTaskList retrieves a task list by ID.
func (c *Client) GetTaskList(ctx context.Context, taskListID string) (*tasks.TaskList, error) {
	tl, err := c.svc.Tasklists.Get(taskListID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get task list: %w", err)
	}
	return tl, nil
}

// InsertTaskList creates a task list.
func (c *Client) InsertTaskList(ctx context.Context, tl *tasks.TaskList) (*tasks.TaskList, error) {
	created, err := c.svc.Tasklists.Insert(tl).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create task list: %w", err)
	}
	return created, nil
}

// UpdateTaskList replaces a task list.
func (c *Client) UpdateTaskList(ctx context.Context, taskListID string, tl *tasks.TaskList) (*tasks.TaskList, error) {
	updated, err := c.svc.Tasklists.Update(taskListID, tl).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update task list: %w", err)
	}
	return updated, nil
}

// PatchTaskList updates the fields set in tl.
func (c *Client) PatchTaskList(ctx context.Context, taskListID string, tl *tasks.TaskList) (*tasks.TaskList, error) {
	patched, err := c.svc.Tasklists.Patch(taskListID, tl).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to patch task list: %w", err)
	}
	return patched, nil
}

// DeleteTaskList deletes a task list and all its tasks.
func (c *Client) DeleteTaskList(ctx context.Context, taskListID string) error {
	if err := c.svc.Tasklists.Delete(taskListID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete task list: %w", err)
	}
	return nil
}

func (c *Client) listCall(ctx context.Context, taskListID string, opts ListOptions) *tasks.TasksListCall {
	call := c.svc.Tasks.List(taskListID).Context(ctx)
	if opts.MaxResults > 0 {
		call = call.MaxResults(opts.MaxResults)
	}
	if opts.PageToken != "" {
		call = call.PageToken(opts.PageToken)
	}
	if opts.ShowCompleted != nil {
		call = call.ShowCompleted(*opts.ShowCompleted)
	}
	if opts.ShowDeleted != nil {
		call = call.ShowDeleted(*opts.ShowDeleted)
	}
	if opts.ShowHidden != nil {
		call = call.ShowHidden(*opts.ShowHidden)
	}
	if opts.ShowAssigned != nil {
		call = call.ShowAssigned(*opts.ShowAssigned)
	}
	if opts.DueMin != "" {
		call = call.DueMin(opts.DueMin)
	}
	if opts.DueMax != "" {
		call = call.DueMax(opts.DueMax)
	}
	if opts.CompletedMin != "" {
		call = call.CompletedMin(opts.CompletedMin)
	}
	if opts.CompletedMax != "" {
		call = call.CompletedMax(opts.CompletedMax)
	}
	if opts.UpdatedMin != "" {
		call = call.UpdatedMin(opts.UpdatedMin)
	}
	return call
}

// ListTasks returns one page of tasks in a task list.
func (c *Client) ListTasks(ctx context.Context, taskListID string, opts ListOptions) (*tasks.Tasks, error) {
	result, err := c.listCall(ctx, taskListID, opts).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	return result, nil
}

// GetTask retrieves a task by ID.
func (c *Client) GetTask(ctx context.Context, taskListID, taskID string) (*tasks.Task, error) {
	t, err := c.svc.Tasks.Get(taskListID, taskID).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return t, nil
}

// InsertTask creates a task, optionally as a subtask or after a sibling.
func (c *Client) InsertTask(ctx context.Context, taskListID string, t *tasks.Task, pos PositionOptions) (*tasks.Task, error) {
	call := c.svc.Tasks.Insert(taskListID, t).Context(ctx)
	if pos.Parent != "" {
		call = call.Parent(pos.Parent)
	}
	if pos.Previous != "" {
		call = call.Previous(pos.Previous)
	}

	created, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to create task: %w", err)
	}
	return created, nil
}

// UpdateTask replaces a task.
func (c *Client) UpdateTask(ctx context.Context, taskListID, taskID string, t *tasks.Task) (*tasks.Task, error) {
	updated, err := c.svc.Tasks.Update(taskListID, taskID, t).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to update task: %w", err)
	}
	return updated, nil
}

// PatchTask updates the fields set in t.
func (c *Client) PatchTask(ctx context.Context, taskListID, taskID string, t *tasks.Task) (*tasks.Task, error) {
	patched, err := c.svc.Tasks.Patch(taskListID, taskID, t).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("failed to patch task: %w", err)
	}
	return patched, nil
}

// DeleteTask deletes a task.
func (c *Client) DeleteTask(ctx context.Context, taskListID, taskID string) error {
	if err := c.svc.Tasks.Delete(taskListID, taskID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	return nil
}

// MoveTask changes a task's parent, position or list.
func (c *Client) MoveTask(ctx context.Context, taskListID, taskID string, pos PositionOptions) (*tasks.Task, error) {
	call := c.svc.Tasks.Move(taskListID, taskID).Context(ctx)
	if pos.Parent != "" {
		call = call.Parent(pos.Parent)
	}
	if pos.Previous != "" {
		call = call.Previous(pos.Previous)
	}
	if pos.DestinationTaskList != "" {
		call = call.DestinationTasklist(pos.DestinationTaskList)
	}

	moved, err := call.Do()
	if err != nil {
		return nil, fmt.Errorf("failed to move task: %w", err)
	}
	return moved, nil
}

// ClearCompleted hides all completed tasks of a task list.
func (c *Client) ClearCompleted(ctx context.Context, taskListID string) error {
	if err := c.svc.Tasks.Clear(taskListID).Context(ctx).Do(); err != nil {
		return fmt.Errorf("failed to clear completed tasks: %w", err)
	}
	return nil
}
