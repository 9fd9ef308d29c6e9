package services

import (
	"fmt"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/robfig/cron/v3"
)

// Validate checks a workflow definition and returns every problem found.
// Used by Create, Update, and the dry-run validate endpoint. An empty result
// means the definition is acceptable.
func (s *Workflow) Validate(wf *models.Workflow) []ValidationIssue {
	var issues []ValidationIssue

	if wf.Name == "" {
		issues = append(issues, ValidationIssue{Field: "name", Message: "name is required"})
	}

	if wf.Priority < 0 {
		issues = append(issues, ValidationIssue{Field: "priority", Message: "priority must not be negative"})
	}

	issues = append(issues, s.validateTrigger(wf.Trigger)...)
	issues = append(issues, s.validateActions(wf)...)

	return issues
}

func (s *Workflow) validateTrigger(trigger *models.WorkflowTrigger) []ValidationIssue {
	if trigger == nil {
		return []ValidationIssue{{Field: "trigger", Message: "trigger is required"}}
	}

	var issues []ValidationIssue

	if !knownTriggerType(trigger.Type) {
		issues = append(issues, ValidationIssue{
			Field:   "trigger.type",
			Message: fmt.Sprintf("unknown trigger type %q", trigger.Type),
		})
	}

	if trigger.LogicalOperator != "" &&
		trigger.LogicalOperator != models.LogicalAnd &&
		trigger.LogicalOperator != models.LogicalOr {
		issues = append(issues, ValidationIssue{
			Field:   "trigger.logical_operator",
			Message: fmt.Sprintf("logical operator must be AND or OR, got %q", trigger.LogicalOperator),
		})
	}

	if trigger.Type == models.TriggerTimeBased {
		if trigger.Schedule == "" {
			issues = append(issues, ValidationIssue{
				Field:   "trigger.schedule",
				Message: "time.based triggers require a cron schedule",
			})
		} else if _, err := cron.ParseStandard(trigger.Schedule); err != nil {
			issues = append(issues, ValidationIssue{
				Field:   "trigger.schedule",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	} else if trigger.Schedule != "" {
		issues = append(issues, ValidationIssue{
			Field:   "trigger.schedule",
			Message: fmt.Sprintf("schedule is only valid for %s triggers", models.TriggerTimeBased),
		})
	}

	for i, condition := range trigger.Conditions {
		if condition.Field == "" {
			issues = append(issues, ValidationIssue{
				Field:   fmt.Sprintf("trigger.conditions[%d].field", i),
				Message: "field is required",
			})
		}

		if !models.KnownOperator(condition.Operator) {
			issues = append(issues, ValidationIssue{
				Field:   fmt.Sprintf("trigger.conditions[%d].operator", i),
				Message: fmt.Sprintf("unknown operator %q", condition.Operator),
			})
		}
	}

	return issues
}

func (s *Workflow) validateActions(wf *models.Workflow) []ValidationIssue {
	if len(wf.Actions) == 0 {
		return []ValidationIssue{{Field: "actions", Message: "at least one action is required"}}
	}

	var issues []ValidationIssue

	for i, action := range wf.Actions {
		prefix := fmt.Sprintf("actions[%d]", i)

		if action.DelaySeconds < 0 {
			issues = append(issues, ValidationIssue{
				Field:   prefix + ".delay_seconds",
				Message: "delay must not be negative",
			})
		}

		if !s.registry.KnownActionType(action.Type) {
			issues = append(issues, ValidationIssue{
				Field:   prefix + ".type",
				Message: fmt.Sprintf("unknown action type %q", action.Type),
			})

			continue
		}

		for _, message := range s.registry.ValidateActionParams(action.Type, action.Params) {
			issues = append(issues, ValidationIssue{Field: prefix + ".params", Message: message})
		}

		if action.Type == models.ActionTriggerWorkflow {
			if target, _ := action.Params["workflow_id"].(string); target != "" && target == wf.ID {
				issues = append(issues, ValidationIssue{
					Field:   prefix + ".params.workflow_id",
					Message: "workflow cannot trigger itself",
				})
			}
		}
	}

	return issues
}

func knownTriggerType(triggerType models.TriggerType) bool {
	for _, known := range models.TriggerTypes() {
		if triggerType == known {
			return true
		}
	}

	return false
}
