// Package registry holds the action factories the executor builds actions
// from, and validates action parameters against each factory's JSON schema.
package registry

import (
	"fmt"
	"log/slog"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
	"github.com/xeipuuv/gojsonschema"
)

type Registry struct {
	logger          *slog.Logger
	actionFactories map[models.ActionType]protocol.ActionFactory
}

func NewRegistry(logger *slog.Logger) *Registry {
	return &Registry{
		logger:          logger.With("module", "registry"),
		actionFactories: make(map[models.ActionType]protocol.ActionFactory),
	}
}

func (r *Registry) RegisterAction(factory protocol.ActionFactory) {
	r.actionFactories[factory.ID()] = factory
}

// CreateAction builds an action of the given type from already-rendered
// parameters.
func (r *Registry) CreateAction(actionType models.ActionType, params map[string]any) (protocol.Action, error) {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return nil, fmt.Errorf("action type %q not registered", actionType)
	}

	return factory.Create(params)
}

// KnownActionType reports whether a factory is registered for the type.
func (r *Registry) KnownActionType(actionType models.ActionType) bool {
	_, ok := r.actionFactories[actionType]

	return ok
}

// ActionTypes returns the registered action types, for catalogs and
// diagnostics.
func (r *Registry) ActionTypes() []models.ActionType {
	types := make([]models.ActionType, 0, len(r.actionFactories))
	for actionType := range r.actionFactories {
		types = append(types, actionType)
	}

	return types
}

// ValidateActionParams checks raw (unrendered) parameters against the
// factory's JSON schema. Returns one message per violation; an unknown type
// is itself a violation.
func (r *Registry) ValidateActionParams(actionType models.ActionType, params map[string]any) []string {
	factory, ok := r.actionFactories[actionType]
	if !ok {
		return []string{fmt.Sprintf("unknown action type %q", actionType)}
	}

	schema := factory.ParamsSchema()
	if schema == nil {
		return nil
	}

	if params == nil {
		params = map[string]any{}
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewGoLoader(schema),
		gojsonschema.NewGoLoader(params),
	)
	if err != nil {
		r.logger.Warn("Action params schema validation failed to run",
			"action_type", actionType, "error", err)

		return []string{fmt.Sprintf("params validation failed: %v", err)}
	}

	if result.Valid() {
		return nil
	}

	messages := make([]string, 0, len(result.Errors()))
	for _, violation := range result.Errors() {
		messages = append(messages, violation.String())
	}

	return messages
}

// HealthCheck reports whether any actions are registered.
func (r *Registry) HealthCheck() (string, bool) {
	if len(r.actionFactories) == 0 {
		return "No action factories registered", false
	}

	return fmt.Sprintf("%d action factories registered", len(r.actionFactories)), true
}
