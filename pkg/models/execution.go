package models

import "time"

// ExecutionStatus is the outcome of a workflow run or of a single action.
type ExecutionStatus string

const (
	ExecutionStatusPending ExecutionStatus = "pending"
	ExecutionStatusSuccess ExecutionStatus = "success"
	ExecutionStatusFailed  ExecutionStatus = "failed"
	ExecutionStatusSkipped ExecutionStatus = "skipped"
)

// ExecutedAction records the outcome of one action within an execution.
// ExecutedAt is the moment the action actually fired, which for delayed
// actions is later than the execution's StartedAt.
type ExecutedAction struct {
	ActionID   string          `json:"action_id"`
	Type       ActionType      `json:"type"`
	Status     ExecutionStatus `json:"status"`
	Error      string          `json:"error,omitempty"`
	ExecutedAt time.Time       `json:"executed_at"`
}

// WorkflowExecution is the append-only history record of one workflow run for
// one triggering resource event. It is finalized exactly once: status becomes
// success only when every attempted (enabled) action succeeded.
type WorkflowExecution struct {
	ID              string            `json:"id"`
	WorkflowID      string            `json:"workflow_id"`
	TenantID        string            `json:"tenant_id"`
	EventType       TriggerType       `json:"event_type"`
	ResourceType    string            `json:"resource_type"`
	ResourceID      string            `json:"resource_id"`
	Status          ExecutionStatus   `json:"status"`
	StartedAt       time.Time         `json:"started_at"`
	CompletedAt     *time.Time        `json:"completed_at,omitempty"`
	ExecutedActions []*ExecutedAction `json:"executed_actions"`
	Error           string            `json:"error,omitempty"`
}
