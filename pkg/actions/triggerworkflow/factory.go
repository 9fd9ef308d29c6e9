package triggerworkflow

import (
	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
)

type Factory struct {
	triggerer protocol.WorkflowTriggerer
}

func NewFactory(triggerer protocol.WorkflowTriggerer) *Factory {
	return &Factory{triggerer: triggerer}
}

func (*Factory) ID() models.ActionType {
	return models.ActionTriggerWorkflow
}

func (f *Factory) Create(params map[string]any) (protocol.Action, error) {
	if params == nil {
		params = map[string]any{}
	}

	return NewAction(params, f.triggerer)
}

func (f *Factory) ParamsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"workflow_id": map[string]any{
				"type":        "string",
				"description": "Workflow to start. Must not be the defining workflow itself.",
				"minLength":   1,
			},
		},
		"required": []string{"workflow_id"},
	}
}
