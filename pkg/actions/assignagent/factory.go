package assignagent

import (
	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
)

type Factory struct {
	resources protocol.ResourceService
	directory protocol.AgentDirectory
}

func NewFactory(resources protocol.ResourceService, directory protocol.AgentDirectory) *Factory {
	return &Factory{resources: resources, directory: directory}
}

func (*Factory) ID() models.ActionType {
	return models.ActionAssignAgent
}

func (f *Factory) Create(params map[string]any) (protocol.Action, error) {
	if params == nil {
		params = map[string]any{}
	}

	return NewAction(params, f.resources, f.directory)
}

func (f *Factory) ParamsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"agent_id": map[string]any{
				"type":        "string",
				"description": "Assign this specific agent. Takes precedence over strategy.",
			},
			"strategy": map[string]any{
				"type":        "string",
				"description": "Agent selection strategy when agent_id is not set",
				"default":     DefaultStrategy,
				"enum":        []string{"round_robin"},
			},
			"department": map[string]any{
				"type":        "string",
				"description": "Restrict selection to agents of this department",
			},
		},
	}
}
