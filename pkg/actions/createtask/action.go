// Package createtask implements the create_task workflow action.
package createtask

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
)

// ErrMissingTitle is returned when the task has no title.
var ErrMissingTitle = errors.New("missing task title")

// Action creates a follow-up task linked to the triggering resource.
type Action struct {
	Title    string
	Assignee string
	DueDate  string
	Fields   map[string]any

	tasks protocol.TaskCreator
}

func NewAction(params map[string]any, tasks protocol.TaskCreator) (*Action, error) {
	title, _ := params["title"].(string)
	if title == "" {
		return nil, ErrMissingTitle
	}

	assignee, _ := params["assignee"].(string)
	dueDate, _ := params["due_date"].(string)

	fields := map[string]any{}
	if extra, ok := params["fields"].(map[string]any); ok {
		fields = extra
	}

	return &Action{
		Title:    title,
		Assignee: assignee,
		DueDate:  dueDate,
		Fields:   fields,
		tasks:    tasks,
	}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", models.ActionCreateTask)

	fields := make(map[string]any, len(a.Fields)+2)
	for k, v := range a.Fields {
		fields[k] = v
	}

	fields["resource_type"] = executionCtx.ResourceType
	fields["resource_id"] = executionCtx.ResourceID

	taskID, err := a.tasks.CreateTask(ctx, a.Title, a.Assignee, a.DueDate, fields)
	if err != nil {
		return nil, fmt.Errorf("task creation failed: %w", err)
	}

	logger.InfoContext(ctx, "Created task",
		"task_id", taskID, "assignee", a.Assignee, "resource_id", executionCtx.ResourceID)

	return map[string]any{"task_id": taskID}, nil
}
