package services

import (
	"context"
	"fmt"
	"time"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
	"github.com/deskflow/deskflow/pkg/registry"
	"github.com/deskflow/deskflow/pkg/workflow"
	"github.com/google/uuid"
)

// Workflow is the management service for workflow definitions. All operations
// are tenant-scoped: an ID belonging to another tenant behaves as not found.
type Workflow struct {
	persistence persistence.Persistence
	registry    *registry.Registry
	dispatcher  *workflow.Dispatcher
}

func NewWorkflow(p persistence.Persistence, registry *registry.Registry, dispatcher *workflow.Dispatcher) *Workflow {
	return &Workflow{
		persistence: p,
		registry:    registry,
		dispatcher:  dispatcher,
	}
}

// HealthCheck checks the health of the persistence layer.
func (s *Workflow) HealthCheck(ctx context.Context) (string, bool) {
	err := s.persistence.HealthCheck(ctx)
	if err != nil {
		return "Persistence layer is unhealthy: " + err.Error(), false
	}

	return "Persistence layer is healthy", true
}

// List returns all workflows of the tenant, active and inactive.
func (s *Workflow) List(ctx context.Context, tenantID string) ([]*models.Workflow, error) {
	return s.persistence.WorkflowRepository().List(ctx, tenantID)
}

// Get returns one workflow of the tenant.
func (s *Workflow) Get(ctx context.Context, tenantID, id string) (*models.Workflow, error) {
	wf, err := s.persistence.WorkflowRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if wf.TenantID != tenantID {
		return nil, persistence.NewStoreError("get", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	return wf, nil
}

// Create validates and persists a new workflow. Counters start at zero and
// the workflow starts active unless the definition says otherwise.
func (s *Workflow) Create(ctx context.Context, tenantID string, wf *models.Workflow) (*models.Workflow, error) {
	wf.ID = uuid.New().String()
	wf.TenantID = tenantID
	wf.ExecutionCount = 0
	wf.SuccessCount = 0
	wf.SuccessRate = 0
	wf.LastExecutedAt = nil

	if wf.Status == "" {
		wf.Status = models.WorkflowStatusActive
	}

	now := time.Now().UTC()
	wf.CreatedAt = now
	wf.UpdatedAt = now

	assignNestedIDs(wf)

	issues := s.Validate(wf)
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	err := s.persistence.WorkflowRepository().Save(ctx, wf)
	if err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	return wf, nil
}

// Update replaces the trigger, actions and metadata of an existing workflow.
// Execution counters and creation time are preserved.
func (s *Workflow) Update(ctx context.Context, tenantID, id string, updated *models.Workflow) (*models.Workflow, error) {
	existing, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	updated.ID = existing.ID
	updated.TenantID = existing.TenantID
	updated.ExecutionCount = existing.ExecutionCount
	updated.SuccessCount = existing.SuccessCount
	updated.SuccessRate = existing.SuccessRate
	updated.LastExecutedAt = existing.LastExecutedAt
	updated.CreatedAt = existing.CreatedAt
	updated.UpdatedAt = time.Now().UTC()

	if updated.Status == "" {
		updated.Status = existing.Status
	}

	assignNestedIDs(updated)

	issues := s.Validate(updated)
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	err = s.persistence.WorkflowRepository().Save(ctx, updated)
	if err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	return updated, nil
}

// Toggle flips a workflow between active and inactive. Deactivation stops
// future dispatch only; in-flight executions run to completion.
func (s *Workflow) Toggle(ctx context.Context, tenantID, id string) (*models.Workflow, error) {
	wf, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	if wf.IsActive() {
		wf.Status = models.WorkflowStatusInactive
	} else {
		wf.Status = models.WorkflowStatusActive
	}

	wf.UpdatedAt = time.Now().UTC()

	err = s.persistence.WorkflowRepository().Save(ctx, wf)
	if err != nil {
		return nil, fmt.Errorf("failed to save workflow: %w", err)
	}

	return wf, nil
}

// Delete removes the definition. Execution history is retained.
func (s *Workflow) Delete(ctx context.Context, tenantID, id string) error {
	_, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return s.persistence.WorkflowRepository().Delete(ctx, id)
}

// Execute runs a workflow manually against a resource, bypassing trigger
// matching. The run happens asynchronously; Execute returns once dispatched.
func (s *Workflow) Execute(ctx context.Context, tenantID, id, resourceType, resourceID string, resource map[string]any) error {
	wf, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	if !wf.IsActive() {
		return ErrWorkflowInactive
	}

	return s.dispatcher.TriggerWorkflow(ctx, tenantID, id, resourceType, resourceID, resource)
}

// assignNestedIDs gives conditions and actions stable identifiers so the
// execution history can refer back to them.
func assignNestedIDs(wf *models.Workflow) {
	if wf.Trigger != nil {
		for _, condition := range wf.Trigger.Conditions {
			if condition.ID == "" {
				condition.ID = uuid.New().String()
			}
		}
	}

	for _, action := range wf.Actions {
		if action.ID == "" {
			action.ID = uuid.New().String()
		}
	}
}

// ListExecutions returns the paginated execution history, most recent first.
func (s *Workflow) ListExecutions(ctx context.Context, tenantID, id string, limit, offset int) ([]*models.WorkflowExecution, int, error) {
	_, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, 0, err
	}

	return s.persistence.ExecutionRepository().ListByWorkflow(ctx, id, persistence.ListExecutionsOptions{
		Limit:  limit,
		Offset: offset,
	})
}
