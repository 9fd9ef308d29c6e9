package workflow

import (
	"github.com/deskflow/deskflow/pkg/models"
)

// Matches decides whether a trigger fires for an event. The event type must
// match exactly; an empty condition list matches unconditionally; otherwise
// the trigger-level logical operator folds the condition results.
func Matches(trigger *models.WorkflowTrigger, eventType models.TriggerType, snapshot models.ResourceSnapshot) bool {
	if trigger == nil || trigger.Type != eventType {
		return false
	}

	if len(trigger.Conditions) == 0 {
		return true
	}

	if trigger.LogicalOperator == models.LogicalOr {
		for _, condition := range trigger.Conditions {
			if EvaluateCondition(condition, snapshot) {
				return true
			}
		}

		return false
	}

	// AND is the default for an unset operator.
	for _, condition := range trigger.Conditions {
		if !EvaluateCondition(condition, snapshot) {
			return false
		}
	}

	return true
}
