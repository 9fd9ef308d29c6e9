package file

import (
	"context"
	"sort"
	"time"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
)

const workflowKind = "workflows"

// WorkflowRepository stores workflow definitions as JSON files.
type WorkflowRepository struct {
	store *Persistence
}

func (r *WorkflowRepository) List(ctx context.Context, tenantID string) ([]*models.Workflow, error) {
	ids, err := r.store.listIDs(workflowKind)
	if err != nil {
		return nil, persistence.NewStoreError("List", "workflow", "", err)
	}

	workflows := make([]*models.Workflow, 0, len(ids))

	for _, id := range ids {
		workflow, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if tenantID == "" || workflow.TenantID == tenantID {
			workflows = append(workflows, workflow)
		}
	}

	// Stable dispatch order for equal priorities follows creation time.
	sort.SliceStable(workflows, func(i, j int) bool {
		return workflows[i].CreatedAt.Before(workflows[j].CreatedAt)
	})

	return workflows, nil
}

func (r *WorkflowRepository) ListActive(ctx context.Context, tenantID string) ([]*models.Workflow, error) {
	all, err := r.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	active := make([]*models.Workflow, 0, len(all))

	for _, workflow := range all {
		if workflow.IsActive() {
			active = append(active, workflow)
		}
	}

	return active, nil
}

func (r *WorkflowRepository) ListScheduled(ctx context.Context) ([]*models.Workflow, error) {
	all, err := r.ListActive(ctx, "")
	if err != nil {
		return nil, err
	}

	scheduled := make([]*models.Workflow, 0)

	for _, workflow := range all {
		if workflow.Trigger != nil && workflow.Trigger.Type == models.TriggerTimeBased && workflow.Trigger.Schedule != "" {
			scheduled = append(scheduled, workflow)
		}
	}

	return scheduled, nil
}

func (r *WorkflowRepository) GetByID(_ context.Context, id string) (*models.Workflow, error) {
	var workflow models.Workflow

	found, err := r.store.readEntity(workflowKind, id, &workflow)
	if err != nil {
		return nil, persistence.NewStoreError("GetByID", "workflow", id, err)
	}

	if !found {
		return nil, persistence.NewStoreError("GetByID", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	return &workflow, nil
}

func (r *WorkflowRepository) Save(_ context.Context, workflow *models.Workflow) error {
	if err := r.store.writeEntity(workflowKind, workflow.ID, workflow); err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	found, err := r.store.deleteEntity(workflowKind, id)
	if err != nil {
		return persistence.NewStoreError("Delete", "workflow", id, err)
	}

	if !found {
		return persistence.NewStoreError("Delete", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

// RecordExecution bumps the running counters under the store mutex so
// concurrent executions of the same workflow never lose an update.
func (r *WorkflowRepository) RecordExecution(ctx context.Context, workflowID string, success bool, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	workflow, err := r.GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	workflow.ExecutionCount++
	if success {
		workflow.SuccessCount++
	}

	workflow.SuccessRate = float64(workflow.SuccessCount) / float64(workflow.ExecutionCount) * 100
	workflow.LastExecutedAt = &at

	return r.Save(ctx, workflow)
}
