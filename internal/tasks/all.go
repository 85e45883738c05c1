package tasks

import (
	"context"
	"fmt"

	tasks "google.golang.org/api/tasks/v1"

	"github.com/teemow/taskbridge/internal/logging"
)

// TaskListContents is the content of one task list in an AllTasks result.
type TaskListContents struct {
	ID    string        `json:"id"`
	Title string        `json:"title"`
	Tasks []*tasks.Task `json:"tasks"`
}

// ListFailure records a task list whose tasks could not be fetched.
type ListFailure struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Error string `json:"error"`
}

// AllTasks is the result of ListAllTasks.
type AllTasks struct {
	Lists  []TaskListContents `json:"lists"`
	Failed []ListFailure      `json:"failed,omitempty"`
}

// ListAllTasks fetches every task list and then, one list at a time, all of
// its tasks across pages. A list whose tasks cannot be fetched is logged and
// reported in Failed; the remaining lists are still returned. Only a failure
// to enumerate the task lists themselves fails the call.
func (c *Client) ListAllTasks(ctx context.Context, opts ListOptions) (*AllTasks, error) {
	var lists []*tasks.TaskList
	err := c.svc.Tasklists.List().Context(ctx).MaxResults(100).Pages(ctx, func(page *tasks.TaskLists) error {
		lists = append(lists, page.Items...)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list task lists: %w", err)
	}

	result := &AllTasks{Lists: make([]TaskListContents, 0, len(lists))}
	for _, tl := range lists {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var items []*tasks.Task
		listOpts := opts
		listOpts.PageToken = ""
		err := c.listCall(ctx, tl.Id, listOpts).Pages(ctx, func(page *tasks.Tasks) error {
			items = append(items, page.Items...)
			return nil
		})
		if err != nil {
			c.logger.Warn("skipping task list that failed to load",
				logging.Operation("tasks.listAll"), logging.TaskList(tl.Id), logging.Err(err))
			result.Failed = append(result.Failed, ListFailure{ID: tl.Id, Title: tl.Title, Error: err.Error()})
			continue
		}

		if items == nil {
			items = []*tasks.Task{}
		}
		result.Lists = append(result.Lists, TaskListContents{ID: tl.Id, Title: tl.Title, Tasks: items})
	}
	return result, nil
}
