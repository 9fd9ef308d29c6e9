package escalate

import (
	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
)

type Factory struct {
	resources protocol.ResourceService
	notifier  protocol.Notifier
}

func NewFactory(resources protocol.ResourceService, notifier protocol.Notifier) *Factory {
	return &Factory{resources: resources, notifier: notifier}
}

func (*Factory) ID() models.ActionType {
	return models.ActionEscalate
}

func (f *Factory) Create(params map[string]any) (protocol.Action, error) {
	if params == nil {
		params = map[string]any{}
	}

	return NewAction(params, f.resources, f.notifier)
}

func (f *Factory) ParamsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"to": map[string]any{
				"type":        "string",
				"description": "Group or tier to hand the resource to",
				"minLength":   1,
			},
			"reason": map[string]any{
				"type":        "string",
				"description": "Why the resource is being escalated. Supports templating.",
			},
			"notify": map[string]any{
				"type":        "boolean",
				"description": "Notify the target group",
				"default":     true,
			},
			"message": map[string]any{
				"type":        "string",
				"description": "Notification text sent to the target group",
			},
		},
		"required": []string{"to"},
	}
}
