// Package web provides the HTTP handlers and request/response types of the
// workflow management API.
package web

import "github.com/deskflow/deskflow/pkg/models"

// WorkflowRequest is the body of create, full-update, and dry-run validate
// requests. Identifiers and counters are never accepted from the client.
type WorkflowRequest struct {
	Name        string           `json:"name"        validate:"required,min=3"`
	Description string           `json:"description"`
	Trigger     *TriggerRequest  `json:"trigger"     validate:"required"`
	Actions     []*ActionRequest `json:"actions"     validate:"required,min=1,dive"`
	Priority    int              `json:"priority"    validate:"min=0"`
	Status      string           `json:"status"      validate:"omitempty,oneof=active inactive"`
}

type TriggerRequest struct {
	Type            string              `json:"type"             validate:"required"`
	Conditions      []*ConditionRequest `json:"conditions"       validate:"dive"`
	LogicalOperator string              `json:"logical_operator" validate:"omitempty,oneof=AND OR"`
	Schedule        string              `json:"schedule"`
}

type ConditionRequest struct {
	Field           string `json:"field"    validate:"required"`
	Operator        string `json:"operator" validate:"required"`
	Value           any    `json:"value"`
	LogicalOperator string `json:"logical_operator" validate:"omitempty,oneof=AND OR"`
}

// ActionRequest leaves Enabled as a pointer so an omitted field defaults to
// enabled rather than silently disabling the action.
type ActionRequest struct {
	Type         string         `json:"type"          validate:"required"`
	Params       map[string]any `json:"params"`
	DelaySeconds int            `json:"delay_seconds" validate:"min=0"`
	Enabled      *bool          `json:"enabled"`
}

// ExecuteWorkflowRequest is the body of a manual execution request.
type ExecuteWorkflowRequest struct {
	ResourceType string         `json:"resource_type" validate:"required"`
	ResourceID   string         `json:"resource_id"   validate:"required"`
	Resource     map[string]any `json:"resource"`
}

// WebhookRequest is the body of a webhook registration.
type WebhookRequest struct {
	Name              string            `json:"name"                validate:"required,min=3"`
	URL               string            `json:"url"                 validate:"required,url"`
	Events            []string          `json:"events"              validate:"required,min=1"`
	Active            *bool             `json:"active"`
	Secret            string            `json:"secret"`
	Headers           map[string]string `json:"headers"`
	MaxRetries        int               `json:"max_retries"         validate:"min=0,max=10"`
	RetryDelaySeconds int               `json:"retry_delay_seconds" validate:"min=0,max=300"`
}

// ToModel builds the domain workflow the service layer validates and stores.
func (r *WorkflowRequest) ToModel() *models.Workflow {
	wf := &models.Workflow{
		Name:        r.Name,
		Description: r.Description,
		Priority:    r.Priority,
		Status:      models.WorkflowStatus(r.Status),
	}

	if r.Trigger != nil {
		trigger := &models.WorkflowTrigger{
			Type:            models.TriggerType(r.Trigger.Type),
			LogicalOperator: models.LogicalOperator(r.Trigger.LogicalOperator),
			Schedule:        r.Trigger.Schedule,
		}

		for _, condition := range r.Trigger.Conditions {
			trigger.Conditions = append(trigger.Conditions, &models.WorkflowCondition{
				Field:           condition.Field,
				Operator:        models.ConditionOperator(condition.Operator),
				Value:           condition.Value,
				LogicalOperator: models.LogicalOperator(condition.LogicalOperator),
			})
		}

		wf.Trigger = trigger
	}

	for _, action := range r.Actions {
		enabled := true
		if action.Enabled != nil {
			enabled = *action.Enabled
		}

		wf.Actions = append(wf.Actions, &models.WorkflowAction{
			Type:         models.ActionType(action.Type),
			Params:       action.Params,
			DelaySeconds: action.DelaySeconds,
			Enabled:      enabled,
		})
	}

	return wf
}

// ToModel builds the domain webhook. A missing active flag defaults to
// active.
func (r *WebhookRequest) ToModel() *models.Webhook {
	active := true
	if r.Active != nil {
		active = *r.Active
	}

	return &models.Webhook{
		Name:              r.Name,
		URL:               r.URL,
		Events:            r.Events,
		Active:            active,
		Secret:            r.Secret,
		Headers:           r.Headers,
		MaxRetries:        r.MaxRetries,
		RetryDelaySeconds: r.RetryDelaySeconds,
	}
}
