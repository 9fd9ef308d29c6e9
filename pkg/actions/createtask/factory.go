package createtask

import (
	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
)

type Factory struct {
	tasks protocol.TaskCreator
}

func NewFactory(tasks protocol.TaskCreator) *Factory {
	return &Factory{tasks: tasks}
}

func (*Factory) ID() models.ActionType {
	return models.ActionCreateTask
}

func (f *Factory) Create(params map[string]any) (protocol.Action, error) {
	if params == nil {
		params = map[string]any{}
	}

	return NewAction(params, f.tasks)
}

func (f *Factory) ParamsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Task title. Supports templating, e.g. Review {{ticket.number}}.",
				"minLength":   1,
			},
			"assignee": map[string]any{
				"type":        "string",
				"description": "Agent the task is assigned to",
			},
			"due_date": map[string]any{
				"type":        "string",
				"description": "Due date, ISO 8601 or relative like +2d",
			},
			"fields": map[string]any{
				"type":        "object",
				"description": "Extra fields copied onto the task",
			},
		},
		"required": []string{"title"},
	}
}
