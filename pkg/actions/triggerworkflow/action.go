// Package triggerworkflow implements the trigger_workflow workflow action.
package triggerworkflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
)

var (
	// ErrMissingWorkflowID is returned when the action does not name a
	// workflow to start.
	ErrMissingWorkflowID = errors.New("missing workflow_id")
	// ErrSelfReference is returned when a workflow tries to trigger itself.
	ErrSelfReference = errors.New("workflow cannot trigger itself")
)

// Action starts another workflow against the same resource, bypassing trigger
// matching. Self-references are rejected again at execution time in case the
// stored definition predates that validation.
type Action struct {
	WorkflowID string

	triggerer protocol.WorkflowTriggerer
}

func NewAction(params map[string]any, triggerer protocol.WorkflowTriggerer) (*Action, error) {
	workflowID, _ := params["workflow_id"].(string)
	if workflowID == "" {
		return nil, ErrMissingWorkflowID
	}

	return &Action{WorkflowID: workflowID, triggerer: triggerer}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", models.ActionTriggerWorkflow)

	if a.WorkflowID == executionCtx.WorkflowID {
		return nil, ErrSelfReference
	}

	err := a.triggerer.TriggerWorkflow(ctx,
		executionCtx.TenantID,
		a.WorkflowID,
		executionCtx.ResourceType,
		executionCtx.ResourceID,
		executionCtx.Resource)
	if err != nil {
		return nil, fmt.Errorf("failed to trigger workflow %s: %w", a.WorkflowID, err)
	}

	logger.InfoContext(ctx, "Triggered workflow", "target_workflow_id", a.WorkflowID)

	return map[string]any{"workflow_id": a.WorkflowID}, nil
}
