package updatefield

import (
	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
)

// Factory builds field-update actions. One instance serves one action type;
// the type fixes which resource field it writes and which parameter key
// carries the value.
type Factory struct {
	actionType  models.ActionType
	field       string
	paramKey    string
	appendValue bool
	valueEnum   []string

	resources protocol.ResourceService
}

func NewPriorityFactory(resources protocol.ResourceService) *Factory {
	return &Factory{
		actionType: models.ActionUpdatePriority,
		field:      "priority",
		paramKey:   "priority",
		valueEnum:  []string{"low", "normal", "high", "urgent"},
		resources:  resources,
	}
}

func NewStatusFactory(resources protocol.ResourceService) *Factory {
	return &Factory{
		actionType: models.ActionUpdateStatus,
		field:      "state",
		paramKey:   "status",
		resources:  resources,
	}
}

func NewTagFactory(resources protocol.ResourceService) *Factory {
	return &Factory{
		actionType:  models.ActionAddTag,
		field:       "tags",
		paramKey:    "tag",
		appendValue: true,
		resources:   resources,
	}
}

func (f *Factory) ID() models.ActionType {
	return f.actionType
}

func (f *Factory) Create(params map[string]any) (protocol.Action, error) {
	if params == nil {
		params = map[string]any{}
	}

	return NewAction(f.actionType, f.field, f.paramKey, f.appendValue, params, f.resources)
}

func (f *Factory) ParamsSchema() map[string]any {
	valueSchema := map[string]any{
		"type":        "string",
		"description": "Value to write",
		"minLength":   1,
	}
	if len(f.valueEnum) > 0 {
		valueSchema["enum"] = f.valueEnum
	} else {
		valueSchema["description"] = "Value to write. Supports templating, e.g. {{ticket.group}}."
	}

	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			f.paramKey: valueSchema,
		},
		"required": []string{f.paramKey},
	}
}
