package file

import (
	"context"
	"sort"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
)

const executionKind = "executions"

// ExecutionRepository stores execution history records as JSON files.
type ExecutionRepository struct {
	store *Persistence
}

func (r *ExecutionRepository) Save(_ context.Context, execution *models.WorkflowExecution) error {
	if err := r.store.writeEntity(executionKind, execution.ID, execution); err != nil {
		return persistence.NewStoreError("Save", "execution", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(_ context.Context, id string) (*models.WorkflowExecution, error) {
	var execution models.WorkflowExecution

	found, err := r.store.readEntity(executionKind, id, &execution)
	if err != nil {
		return nil, persistence.NewStoreError("GetByID", "execution", id, err)
	}

	if !found {
		return nil, persistence.NewStoreError("GetByID", "execution", id, persistence.ErrExecutionNotFound)
	}

	return &execution, nil
}

// ListByWorkflow returns the workflow's executions most-recent-first along
// with the total count before pagination.
func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, opts persistence.ListExecutionsOptions) ([]*models.WorkflowExecution, int, error) {
	ids, err := r.store.listIDs(executionKind)
	if err != nil {
		return nil, 0, persistence.NewStoreError("ListByWorkflow", "execution", workflowID, err)
	}

	matching := make([]*models.WorkflowExecution, 0)

	for _, id := range ids {
		execution, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, 0, err
		}

		if execution.WorkflowID == workflowID {
			matching = append(matching, execution)
		}
	}

	sort.SliceStable(matching, func(i, j int) bool {
		return matching[i].StartedAt.After(matching[j].StartedAt)
	})

	total := len(matching)

	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	start := opts.Offset
	if start > total {
		start = total
	}

	end := start + opts.Limit
	if end > total {
		end = total
	}

	return matching[start:end], total, nil
}
