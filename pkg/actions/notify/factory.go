package notify

import (
	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
)

// Factory builds notification actions. One instance serves one action type so
// that send_notification and send_email register independently.
type Factory struct {
	actionType models.ActionType
	notifier   protocol.Notifier
}

func NewNotificationFactory(notifier protocol.Notifier) *Factory {
	return &Factory{actionType: models.ActionSendNotification, notifier: notifier}
}

func NewEmailFactory(notifier protocol.Notifier) *Factory {
	return &Factory{actionType: models.ActionSendEmail, notifier: notifier}
}

func (f *Factory) ID() models.ActionType {
	return f.actionType
}

func (f *Factory) Create(params map[string]any) (protocol.Action, error) {
	if params == nil {
		params = map[string]any{}
	}

	return NewAction(f.actionType, params, f.notifier)
}

func (f *Factory) ParamsSchema() map[string]any {
	properties := map[string]any{
		"recipients": map[string]any{
			"type":        "array",
			"description": "Recipient identifiers (agent IDs, group IDs, or addresses)",
			"items":       map[string]any{"type": "string"},
			"minItems":    1,
		},
		"message": map[string]any{
			"type":        "string",
			"description": "Message body. Supports templating, e.g. {{ticket.title}}.",
		},
		"subject": map[string]any{
			"type":        "string",
			"description": "Optional subject line prepended to the message",
		},
		"priority": map[string]any{
			"type": "string",
			"enum": []string{"low", "normal", "high", "urgent"},
		},
	}

	if f.actionType == models.ActionSendNotification {
		properties["channels"] = map[string]any{
			"type":        "array",
			"description": "Delivery channels",
			"items": map[string]any{
				"type": "string",
				"enum": []string{"in_app", "email", "sms", "chat"},
			},
		}
	}

	return map[string]any{
		"type":       "object",
		"properties": properties,
		"required":   []string{"recipients", "message"},
	}
}
