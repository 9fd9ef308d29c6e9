package protocol

import "context"

// The interfaces below are the engine's view of the rest of the helpdesk.
// Ticket storage, notification fan-out and task management live in other
// services; the engine only needs these narrow contracts.

// ResourceService reads and mutates fields of a resource (ticket, article)
// by dotted path.
type ResourceService interface {
	GetField(ctx context.Context, resourceID, path string) (any, error)
	UpdateField(ctx context.Context, resourceID, path string, value any) error
}

// NotificationResult reports per-channel delivery acceptance.
type NotificationResult struct {
	Sent       bool            `json:"sent"`
	PerChannel map[string]bool `json:"per_channel,omitempty"`
}

// Notifier delivers a message to recipients over one or more channels.
type Notifier interface {
	Send(ctx context.Context, recipients []string, channels []string, message string, priority string) (*NotificationResult, error)
}

// AgentDirectory selects an agent for assignment. Strategy is
// implementation-defined ("round_robin" at minimum) and scoped to a
// department.
type AgentDirectory interface {
	NextAgent(ctx context.Context, department, strategy string) (string, error)
}

// TaskCreator creates a follow-up task record in the task service.
type TaskCreator interface {
	CreateTask(ctx context.Context, title, assignee, dueDate string, fields map[string]any) (string, error)
}

// WorkflowTriggerer starts another workflow by ID, bypassing trigger
// matching. Implemented by the dispatcher; used by trigger_workflow actions.
type WorkflowTriggerer interface {
	TriggerWorkflow(ctx context.Context, tenantID, workflowID string, resourceType, resourceID string, resource map[string]any) error
}
