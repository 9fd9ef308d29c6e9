// Package updatefield implements the update_priority, update_status and
// add_tag workflow actions, all of which mutate one field of the triggering
// resource.
package updatefield

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
)

// ErrMissingValue is returned when the action has no value to write.
var ErrMissingValue = errors.New("missing value")

// Action writes Value to Field of the triggering resource. When Append is
// set the existing field is treated as a list and Value is added to it,
// skipping duplicates.
type Action struct {
	Type   models.ActionType
	Field  string
	Value  string
	Append bool

	resources protocol.ResourceService
}

func NewAction(actionType models.ActionType, field, paramKey string, appendValue bool, params map[string]any, resources protocol.ResourceService) (*Action, error) {
	value, _ := params[paramKey].(string)
	if value == "" {
		// Older workflow definitions use a generic key.
		value, _ = params["value"].(string)
	}

	if value == "" {
		return nil, fmt.Errorf("%w: %q", ErrMissingValue, paramKey)
	}

	return &Action{
		Type:      actionType,
		Field:     field,
		Value:     value,
		Append:    appendValue,
		resources: resources,
	}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", a.Type)

	newValue := any(a.Value)

	if a.Append {
		current, err := a.resources.GetField(ctx, executionCtx.ResourceID, a.Field)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", a.Field, err)
		}

		merged, changed := appendUnique(current, a.Value)
		if !changed {
			logger.InfoContext(ctx, "Value already present, nothing to do",
				"field", a.Field, "value", a.Value, "resource_id", executionCtx.ResourceID)

			return map[string]any{"field": a.Field, "value": merged, "changed": false}, nil
		}

		newValue = merged
	}

	err := a.resources.UpdateField(ctx, executionCtx.ResourceID, a.Field, newValue)
	if err != nil {
		return nil, fmt.Errorf("failed to update %s: %w", a.Field, err)
	}

	logger.InfoContext(ctx, "Updated resource field",
		"field", a.Field, "value", newValue, "resource_id", executionCtx.ResourceID)

	return map[string]any{"field": a.Field, "value": newValue, "changed": true}, nil
}

func appendUnique(current any, value string) ([]string, bool) {
	var tags []string

	switch v := current.(type) {
	case []string:
		tags = v
	case []any:
		for _, item := range v {
			if s, ok := item.(string); ok {
				tags = append(tags, s)
			}
		}
	case string:
		if v != "" {
			tags = []string{v}
		}
	}

	for _, tag := range tags {
		if tag == value {
			return tags, false
		}
	}

	return append(tags, value), true
}
