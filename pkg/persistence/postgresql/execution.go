package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
)

// ExecutionRepository handles execution history database operations.
type ExecutionRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const executionColumns = `
	id
  , workflow_id
  , tenant_id
  , event_type
  , resource_type
  , resource_id
  , status
  , started_at
  , completed_at
  , executed_actions
  , error
`

func (r *ExecutionRepository) Save(ctx context.Context, execution *models.WorkflowExecution) error {
	actionsJSON, err := json.Marshal(execution.ExecutedActions)
	if err != nil {
		return persistence.NewStoreError("Save", "execution", execution.ID, err)
	}

	query := `
		INSERT INTO workflow_executions (` + executionColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		ON CONFLICT (id) DO UPDATE SET
			status = EXCLUDED.status,
			completed_at = EXCLUDED.completed_at,
			executed_actions = EXCLUDED.executed_actions,
			error = EXCLUDED.error
	`

	_, err = r.db.ExecContext(ctx, query,
		execution.ID,
		execution.WorkflowID,
		execution.TenantID,
		string(execution.EventType),
		execution.ResourceType,
		execution.ResourceID,
		string(execution.Status),
		execution.StartedAt,
		execution.CompletedAt,
		actionsJSON,
		execution.Error,
	)
	if err != nil {
		return persistence.NewStoreError("Save", "execution", execution.ID, err)
	}

	return nil
}

func (r *ExecutionRepository) GetByID(ctx context.Context, id string) (*models.WorkflowExecution, error) {
	query := `SELECT ` + executionColumns + ` FROM workflow_executions WHERE id = $1`

	execution, err := scanExecution(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", "execution", id, persistence.ErrExecutionNotFound)
		}

		return nil, persistence.NewStoreError("GetByID", "execution", id, err)
	}

	return execution, nil
}

func (r *ExecutionRepository) ListByWorkflow(ctx context.Context, workflowID string, opts persistence.ListExecutionsOptions) ([]*models.WorkflowExecution, int, error) {
	if opts.Limit <= 0 {
		opts.Limit = 20
	}

	var total int

	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM workflow_executions WHERE workflow_id = $1`, workflowID).Scan(&total)
	if err != nil {
		return nil, 0, persistence.NewStoreError("ListByWorkflow", "execution", workflowID, err)
	}

	query := `SELECT ` + executionColumns + `
		FROM workflow_executions
		WHERE workflow_id = $1
		ORDER BY started_at DESC
		LIMIT $2 OFFSET $3`

	rows, err := r.db.QueryContext(ctx, query, workflowID, opts.Limit, opts.Offset)
	if err != nil {
		return nil, 0, persistence.NewStoreError("ListByWorkflow", "execution", workflowID, err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	executions := make([]*models.WorkflowExecution, 0)

	for rows.Next() {
		execution, err := scanExecution(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("failed to scan execution: %w", err)
		}

		executions = append(executions, execution)
	}

	return executions, total, rows.Err()
}

func scanExecution(row rowScanner) (*models.WorkflowExecution, error) {
	var (
		execution   models.WorkflowExecution
		eventType   string
		status      string
		completedAt sql.NullTime
		actionsJSON []byte
	)

	err := row.Scan(
		&execution.ID,
		&execution.WorkflowID,
		&execution.TenantID,
		&eventType,
		&execution.ResourceType,
		&execution.ResourceID,
		&status,
		&execution.StartedAt,
		&completedAt,
		&actionsJSON,
		&execution.Error,
	)
	if err != nil {
		return nil, err
	}

	execution.EventType = models.TriggerType(eventType)
	execution.Status = models.ExecutionStatus(status)

	if completedAt.Valid {
		execution.CompletedAt = &completedAt.Time
	}

	if err := json.Unmarshal(actionsJSON, &execution.ExecutedActions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal executed actions: %w", err)
	}

	return &execution, nil
}
