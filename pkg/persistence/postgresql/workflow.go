package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
)

// WorkflowRepository handles workflow-related database operations.
type WorkflowRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const workflowColumns = `
	id
  , tenant_id
  , name
  , description
  , status
  , trigger
  , actions
  , priority
  , execution_count
  , success_count
  , success_rate
  , created_at
  , updated_at
  , last_executed_at
`

func (r *WorkflowRepository) List(ctx context.Context, tenantID string) ([]*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + `
		FROM workflows
		WHERE tenant_id = $1
		ORDER BY created_at ASC`

	return r.queryWorkflows(ctx, query, tenantID)
}

func (r *WorkflowRepository) ListActive(ctx context.Context, tenantID string) ([]*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + `
		FROM workflows
		WHERE tenant_id = $1 AND status = $2
		ORDER BY created_at ASC`

	return r.queryWorkflows(ctx, query, tenantID, string(models.WorkflowStatusActive))
}

func (r *WorkflowRepository) ListScheduled(ctx context.Context) ([]*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + `
		FROM workflows
		WHERE status = $1
		  AND trigger->>'type' = $2
		  AND COALESCE(trigger->>'schedule', '') <> ''
		ORDER BY created_at ASC`

	return r.queryWorkflows(ctx, query, string(models.WorkflowStatusActive), string(models.TriggerTimeBased))
}

func (r *WorkflowRepository) queryWorkflows(ctx context.Context, query string, args ...any) ([]*models.Workflow, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query workflows: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	workflows := make([]*models.Workflow, 0)

	for rows.Next() {
		workflow, err := scanWorkflow(rows)
		if err != nil {
			return nil, err
		}

		workflows = append(workflows, workflow)
	}

	return workflows, rows.Err()
}

func (r *WorkflowRepository) GetByID(ctx context.Context, id string) (*models.Workflow, error) {
	query := `SELECT ` + workflowColumns + ` FROM workflows WHERE id = $1`

	workflow, err := scanWorkflow(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", "workflow", id, persistence.ErrWorkflowNotFound)
		}

		return nil, persistence.NewStoreError("GetByID", "workflow", id, err)
	}

	return workflow, nil
}

func (r *WorkflowRepository) Save(ctx context.Context, workflow *models.Workflow) error {
	triggerJSON, err := json.Marshal(workflow.Trigger)
	if err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	actionsJSON, err := json.Marshal(workflow.Actions)
	if err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	query := `
		INSERT INTO workflows (` + workflowColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			description = EXCLUDED.description,
			status = EXCLUDED.status,
			trigger = EXCLUDED.trigger,
			actions = EXCLUDED.actions,
			priority = EXCLUDED.priority,
			updated_at = EXCLUDED.updated_at
	`

	_, err = r.db.ExecContext(ctx, query,
		workflow.ID,
		workflow.TenantID,
		workflow.Name,
		workflow.Description,
		string(workflow.Status),
		triggerJSON,
		actionsJSON,
		workflow.Priority,
		workflow.ExecutionCount,
		workflow.SuccessCount,
		workflow.SuccessRate,
		workflow.CreatedAt,
		workflow.UpdatedAt,
		workflow.LastExecutedAt,
	)
	if err != nil {
		return persistence.NewStoreError("Save", "workflow", workflow.ID, err)
	}

	return nil
}

func (r *WorkflowRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM workflows WHERE id = $1`, id)
	if err != nil {
		return persistence.NewStoreError("Delete", "workflow", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("Delete", "workflow", id, err)
	}

	if affected == 0 {
		return persistence.NewStoreError("Delete", "workflow", id, persistence.ErrWorkflowNotFound)
	}

	return nil
}

// RecordExecution bumps the running counters in a single UPDATE so concurrent
// executions of the same workflow never lose an increment. All column
// references on the right-hand side read the pre-update row.
func (r *WorkflowRepository) RecordExecution(ctx context.Context, workflowID string, success bool, at time.Time) error {
	query := `
		UPDATE workflows
		SET execution_count = execution_count + 1,
			success_count = success_count + CASE WHEN $2 THEN 1 ELSE 0 END,
			success_rate = (success_count + CASE WHEN $2 THEN 1 ELSE 0 END)::double precision
				/ (execution_count + 1) * 100,
			last_executed_at = $3,
			updated_at = $3
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, workflowID, success, at)
	if err != nil {
		return persistence.NewStoreError("RecordExecution", "workflow", workflowID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("RecordExecution", "workflow", workflowID, err)
	}

	if affected == 0 {
		return persistence.NewStoreError("RecordExecution", "workflow", workflowID, persistence.ErrWorkflowNotFound)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*models.Workflow, error) {
	var (
		workflow       models.Workflow
		status         string
		triggerJSON    []byte
		actionsJSON    []byte
		lastExecutedAt sql.NullTime
	)

	err := row.Scan(
		&workflow.ID,
		&workflow.TenantID,
		&workflow.Name,
		&workflow.Description,
		&status,
		&triggerJSON,
		&actionsJSON,
		&workflow.Priority,
		&workflow.ExecutionCount,
		&workflow.SuccessCount,
		&workflow.SuccessRate,
		&workflow.CreatedAt,
		&workflow.UpdatedAt,
		&lastExecutedAt,
	)
	if err != nil {
		return nil, err
	}

	workflow.Status = models.WorkflowStatus(status)

	if err := json.Unmarshal(triggerJSON, &workflow.Trigger); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow trigger: %w", err)
	}

	if err := json.Unmarshal(actionsJSON, &workflow.Actions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal workflow actions: %w", err)
	}

	if lastExecutedAt.Valid {
		workflow.LastExecutedAt = &lastExecutedAt.Time
	}

	return &workflow, nil
}
