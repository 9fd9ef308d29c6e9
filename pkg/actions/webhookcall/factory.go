package webhookcall

import (
	"net/http"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
)

type Factory struct {
	sender Sender
}

func NewFactory(sender Sender) *Factory {
	return &Factory{sender: sender}
}

func (*Factory) ID() models.ActionType {
	return models.ActionWebhookCall
}

func (f *Factory) Create(params map[string]any) (protocol.Action, error) {
	if params == nil {
		params = map[string]any{}
	}

	return NewAction(params, f.sender)
}

func (f *Factory) ParamsSchema() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"url": map[string]any{
				"type":        "string",
				"description": "Target URL",
				"format":      "uri",
				"minLength":   1,
			},
			"method": map[string]any{
				"type":    "string",
				"default": http.MethodPost,
				"enum":    []string{http.MethodPost, http.MethodPut, http.MethodPatch},
			},
			"secret": map[string]any{
				"type":        "string",
				"description": "HMAC secret used to sign the request body",
			},
			"headers": map[string]any{
				"type":        "object",
				"description": "Extra request headers",
			},
			"payload": map[string]any{
				"type":        "object",
				"description": "Request body. Defaults to the triggering resource reference.",
			},
		},
		"required": []string{"url"},
	}
}
