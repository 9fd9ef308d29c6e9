package workflow

import (
	"testing"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestMatchesEventTypeGate(t *testing.T) {
	trigger := &models.WorkflowTrigger{Type: models.TriggerTicketCreated}

	assert.True(t, Matches(trigger, models.TriggerTicketCreated, models.ResourceSnapshot{}))
	assert.False(t, Matches(trigger, models.TriggerTicketUpdated, models.ResourceSnapshot{}))
}

func TestMatchesUnconditionalTrigger(t *testing.T) {
	trigger := &models.WorkflowTrigger{Type: models.TriggerSLABreach, Conditions: []*models.WorkflowCondition{}}

	assert.True(t, Matches(trigger, models.TriggerSLABreach, models.ResourceSnapshot{"anything": "goes"}))
	assert.True(t, Matches(trigger, models.TriggerSLABreach, nil))
}

func TestMatchesLogicalOperators(t *testing.T) {
	conditions := []*models.WorkflowCondition{
		{Field: "priority", Operator: models.OperatorEquals, Value: "high"},
		{Field: "tier", Operator: models.OperatorEquals, Value: "enterprise"},
	}

	snapshot := models.ResourceSnapshot{"priority": "high", "tier": "standard"}

	andTrigger := &models.WorkflowTrigger{
		Type:            models.TriggerTicketCreated,
		Conditions:      conditions,
		LogicalOperator: models.LogicalAnd,
	}
	orTrigger := &models.WorkflowTrigger{
		Type:            models.TriggerTicketCreated,
		Conditions:      conditions,
		LogicalOperator: models.LogicalOr,
	}

	assert.False(t, Matches(andTrigger, models.TriggerTicketCreated, snapshot))
	assert.True(t, Matches(orTrigger, models.TriggerTicketCreated, snapshot))

	bothHold := models.ResourceSnapshot{"priority": "high", "tier": "enterprise"}
	assert.True(t, Matches(andTrigger, models.TriggerTicketCreated, bothHold))

	neitherHolds := models.ResourceSnapshot{"priority": "low", "tier": "standard"}
	assert.False(t, Matches(orTrigger, models.TriggerTicketCreated, neitherHolds))
}

func TestMatchesDefaultsToAnd(t *testing.T) {
	trigger := &models.WorkflowTrigger{
		Type: models.TriggerTicketCreated,
		Conditions: []*models.WorkflowCondition{
			{Field: "priority", Operator: models.OperatorEquals, Value: "high"},
			{Field: "tier", Operator: models.OperatorEquals, Value: "enterprise"},
		},
	}

	assert.False(t, Matches(trigger, models.TriggerTicketCreated,
		models.ResourceSnapshot{"priority": "high", "tier": "standard"}))
}

func TestMatchesIgnoresPerConditionOperator(t *testing.T) {
	// Condition-level operators are stored metadata only. The trigger-level
	// operator governs combination.
	trigger := &models.WorkflowTrigger{
		Type:            models.TriggerTicketCreated,
		LogicalOperator: models.LogicalAnd,
		Conditions: []*models.WorkflowCondition{
			{Field: "priority", Operator: models.OperatorEquals, Value: "high", LogicalOperator: models.LogicalOr},
			{Field: "tier", Operator: models.OperatorEquals, Value: "enterprise", LogicalOperator: models.LogicalOr},
		},
	}

	assert.False(t, Matches(trigger, models.TriggerTicketCreated,
		models.ResourceSnapshot{"priority": "high", "tier": "standard"}))
}
