package workflow

import (
	"testing"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/stretchr/testify/assert"
)

func TestEvaluateCondition(t *testing.T) {
	snapshot := models.ResourceSnapshot{
		"priority": "high",
		"tier":     "standard",
		"score":    float64(7),
		"count":    "12",
		"tags":     []any{"vip", "billing"},
		"title":    "Printer on fire",
		"note":     "",
		"customer": map[string]any{
			"name": "ACME",
			"plan": map[string]any{"tier": "enterprise"},
		},
	}

	tests := []struct {
		name      string
		condition models.WorkflowCondition
		want      bool
	}{
		{
			name:      "equals match",
			condition: models.WorkflowCondition{Field: "priority", Operator: models.OperatorEquals, Value: "high"},
			want:      true,
		},
		{
			name:      "equals mismatch",
			condition: models.WorkflowCondition{Field: "priority", Operator: models.OperatorEquals, Value: "low"},
			want:      false,
		},
		{
			name:      "equals numeric value against numeric field",
			condition: models.WorkflowCondition{Field: "score", Operator: models.OperatorEquals, Value: 7},
			want:      true,
		},
		{
			name:      "numeric string is not coerced for equality",
			condition: models.WorkflowCondition{Field: "count", Operator: models.OperatorEquals, Value: 12},
			want:      false,
		},
		{
			name:      "not equals",
			condition: models.WorkflowCondition{Field: "tier", Operator: models.OperatorNotEquals, Value: "enterprise"},
			want:      true,
		},
		{
			name:      "dotted path lookup",
			condition: models.WorkflowCondition{Field: "customer.plan.tier", Operator: models.OperatorEquals, Value: "enterprise"},
			want:      true,
		},
		{
			name:      "contains substring",
			condition: models.WorkflowCondition{Field: "title", Operator: models.OperatorContains, Value: "fire"},
			want:      true,
		},
		{
			name:      "contains collection membership",
			condition: models.WorkflowCondition{Field: "tags", Operator: models.OperatorContains, Value: "vip"},
			want:      true,
		},
		{
			name:      "contains missing member",
			condition: models.WorkflowCondition{Field: "tags", Operator: models.OperatorContains, Value: "sales"},
			want:      false,
		},
		{
			name:      "greater than",
			condition: models.WorkflowCondition{Field: "score", Operator: models.OperatorGreaterThan, Value: 5},
			want:      true,
		},
		{
			name:      "greater than accepts numeric strings",
			condition: models.WorkflowCondition{Field: "count", Operator: models.OperatorGreaterThan, Value: 10},
			want:      true,
		},
		{
			name:      "less than non-numeric is false",
			condition: models.WorkflowCondition{Field: "priority", Operator: models.OperatorLessThan, Value: 3},
			want:      false,
		},
		{
			name:      "is empty on empty string",
			condition: models.WorkflowCondition{Field: "note", Operator: models.OperatorIsEmpty},
			want:      true,
		},
		{
			name:      "is not empty",
			condition: models.WorkflowCondition{Field: "tags", Operator: models.OperatorIsNotEmpty},
			want:      true,
		},
		{
			name:      "missing field equals is false",
			condition: models.WorkflowCondition{Field: "assignee", Operator: models.OperatorEquals, Value: "high"},
			want:      false,
		},
		{
			name:      "missing field is_empty is true",
			condition: models.WorkflowCondition{Field: "assignee", Operator: models.OperatorIsEmpty},
			want:      true,
		},
		{
			name:      "missing field is_not_empty is false",
			condition: models.WorkflowCondition{Field: "assignee", Operator: models.OperatorIsNotEmpty},
			want:      false,
		},
		{
			name:      "unknown operator is false",
			condition: models.WorkflowCondition{Field: "priority", Operator: "matches_regex", Value: ".*"},
			want:      false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, EvaluateCondition(&tt.condition, snapshot))
		})
	}
}

func TestEvaluateConditionEmptySnapshot(t *testing.T) {
	condition := &models.WorkflowCondition{Field: "priority", Operator: models.OperatorEquals, Value: "high"}
	assert.False(t, EvaluateCondition(condition, models.ResourceSnapshot{}))

	condition.Operator = models.OperatorIsEmpty
	assert.True(t, EvaluateCondition(condition, models.ResourceSnapshot{}))
}
