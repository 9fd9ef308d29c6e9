// Package models defines the core domain models for the helpdesk workflow automation engine.
package models

import "time"

// WorkflowStatus represents the lifecycle state of a workflow.
type WorkflowStatus string

const (
	WorkflowStatusActive   WorkflowStatus = "active"   // Matched against incoming events
	WorkflowStatusInactive WorkflowStatus = "inactive" // Kept, never dispatched
)

// Workflow is a tenant-owned automation rule: a trigger predicate plus an
// ordered list of actions. Priority is ascending: lower numbers are dispatched
// first when several workflows match the same event.
type Workflow struct {
	ID          string           `json:"id"`
	TenantID    string           `json:"tenant_id"   validate:"required"`
	Name        string           `json:"name"        validate:"required,min=3"`
	Description string           `json:"description"`
	Status      WorkflowStatus   `json:"status"`
	Trigger     *WorkflowTrigger `json:"trigger"     validate:"required"`
	Actions     []*WorkflowAction `json:"actions"`
	Priority    int              `json:"priority"`

	// Running execution counters. Mutated only through
	// WorkflowRepository.RecordExecution after a run completes.
	ExecutionCount int     `json:"execution_count"`
	SuccessCount   int     `json:"success_count"`
	SuccessRate    float64 `json:"success_rate"`

	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastExecutedAt *time.Time `json:"last_executed_at,omitempty"`
}

// IsActive reports whether the workflow participates in event dispatch.
func (w *Workflow) IsActive() bool {
	return w.Status == WorkflowStatusActive
}
