package models

// ActionType identifies one effect a workflow can perform when triggered.
type ActionType string

const (
	ActionAssignAgent      ActionType = "assign_agent"
	ActionSendNotification ActionType = "send_notification"
	ActionSendEmail        ActionType = "send_email"
	ActionUpdatePriority   ActionType = "update_priority"
	ActionUpdateStatus     ActionType = "update_status"
	ActionAddTag           ActionType = "add_tag"
	ActionEscalate         ActionType = "escalate"
	ActionCreateTask       ActionType = "create_task"
	ActionWebhookCall      ActionType = "webhook_call"
	ActionTriggerWorkflow  ActionType = "trigger_workflow"
)

// WorkflowAction is one declared effect. DelaySeconds postpones the action
// relative to the start of the run, not cumulatively behind earlier actions.
// Disabled actions are skipped but still recorded in the execution history.
type WorkflowAction struct {
	ID           string         `json:"id"`
	Type         ActionType     `json:"type"   validate:"required"`
	Params       map[string]any `json:"params"`
	DelaySeconds int            `json:"delay_seconds,omitempty"`
	Enabled      bool           `json:"enabled"`
}
