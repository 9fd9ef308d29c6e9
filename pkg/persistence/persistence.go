// Package persistence provides the data storage abstraction for workflows,
// executions, and registered webhooks.
package persistence

import (
	"context"
	"time"

	"github.com/deskflow/deskflow/pkg/models"
)

type Persistence interface {
	WorkflowRepository() WorkflowRepository
	ExecutionRepository() ExecutionRepository
	WebhookRepository() WebhookRepository

	HealthCheck(ctx context.Context) error
	Close(ctx context.Context) error
}

// WorkflowRepository stores workflow definitions per tenant.
//
// RecordExecution is the single write path for the running counters
// (execution_count, success_count, success_rate, last_executed_at) and must be
// atomic under concurrent executions of the same workflow.
type WorkflowRepository interface {
	List(ctx context.Context, tenantID string) ([]*models.Workflow, error)
	ListActive(ctx context.Context, tenantID string) ([]*models.Workflow, error)
	// ListScheduled returns active time-based workflows across all tenants,
	// used by the scheduler to register cron entries.
	ListScheduled(ctx context.Context) ([]*models.Workflow, error)
	GetByID(ctx context.Context, id string) (*models.Workflow, error)
	Save(ctx context.Context, workflow *models.Workflow) error
	Delete(ctx context.Context, id string) error
	RecordExecution(ctx context.Context, workflowID string, success bool, at time.Time) error
}

// ListExecutionsOptions paginates execution history queries.
type ListExecutionsOptions struct {
	Limit  int
	Offset int
}

// ExecutionRepository stores the append-only execution history. Listing is
// most-recent-first. Deleting a workflow does not delete its history.
type ExecutionRepository interface {
	Save(ctx context.Context, execution *models.WorkflowExecution) error
	GetByID(ctx context.Context, id string) (*models.WorkflowExecution, error)
	ListByWorkflow(ctx context.Context, workflowID string, opts ListExecutionsOptions) ([]*models.WorkflowExecution, int, error)
}

// WebhookRepository stores tenant-registered webhooks. RecordDelivery must be
// atomic for the same reasons as WorkflowRepository.RecordExecution.
type WebhookRepository interface {
	List(ctx context.Context, tenantID string) ([]*models.Webhook, error)
	ListActiveForEvent(ctx context.Context, tenantID, eventType string) ([]*models.Webhook, error)
	GetByID(ctx context.Context, id string) (*models.Webhook, error)
	Save(ctx context.Context, webhook *models.Webhook) error
	Delete(ctx context.Context, id string) error
	RecordDelivery(ctx context.Context, webhookID string, success bool, at time.Time) error
}
