package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/otelhelper"
	"github.com/deskflow/deskflow/pkg/persistence"
	"github.com/deskflow/deskflow/pkg/registry"
	"github.com/deskflow/deskflow/pkg/template"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// Executor runs a workflow's action list for one triggering event and writes
// the execution history record.
//
// Actions run concurrently, each in its own goroutine: an action with
// delay_seconds N fires N seconds after the run started, not N seconds after
// the previous action finished. Execute returns once every action has
// reported, so callers that must not block dispatch it on a goroutine.
type Executor struct {
	workflows  persistence.WorkflowRepository
	executions persistence.ExecutionRepository
	registry   *registry.Registry
	clock      clockwork.Clock
	logger     *slog.Logger
}

func NewExecutor(
	workflows persistence.WorkflowRepository,
	executions persistence.ExecutionRepository,
	registry *registry.Registry,
	logger *slog.Logger,
) *Executor {
	return &Executor{
		workflows:  workflows,
		executions: executions,
		registry:   registry,
		clock:      clockwork.NewRealClock(),
		logger:     logger.With("module", "workflow_executor"),
	}
}

// WithClock replaces the wall clock, for deterministic delay tests.
func (e *Executor) WithClock(clock clockwork.Clock) *Executor {
	e.clock = clock

	return e
}

// Execute runs every action of the workflow against the event's resource
// snapshot and returns the finalized execution record. A failing action never
// aborts its siblings; the execution is a success only when every enabled
// action succeeded.
func (e *Executor) Execute(
	ctx context.Context,
	wf *models.Workflow,
	eventType models.TriggerType,
	resourceType, resourceID string,
	snapshot models.ResourceSnapshot,
) (*models.WorkflowExecution, error) {
	ctx, span := otel.Tracer("deskflow").Start(ctx, "workflow.execute")
	defer span.End()

	span.SetAttributes(
		attribute.String(otelhelper.WorkflowIDKey, wf.ID),
		attribute.String(otelhelper.TenantIDKey, wf.TenantID),
		attribute.String(otelhelper.TriggerTypeKey, string(eventType)),
	)

	startedAt := e.clock.Now().UTC()

	execution := &models.WorkflowExecution{
		ID:              uuid.New().String(),
		WorkflowID:      wf.ID,
		TenantID:        wf.TenantID,
		EventType:       eventType,
		ResourceType:    resourceType,
		ResourceID:      resourceID,
		Status:          models.ExecutionStatusPending,
		StartedAt:       startedAt,
		ExecutedActions: make([]*models.ExecutedAction, len(wf.Actions)),
	}

	logger := e.logger.With("workflow_id", wf.ID, "execution_id", execution.ID)

	err := e.executions.Save(ctx, execution)
	if err != nil {
		otelhelper.SetError(span, err, attribute.String(otelhelper.ExecutionIDKey, execution.ID))

		return nil, fmt.Errorf("failed to create execution record: %w", err)
	}

	logger.InfoContext(ctx, "Starting workflow execution",
		"event_type", eventType, "resource_id", resourceID, "actions", len(wf.Actions))

	var wg sync.WaitGroup

	for i, action := range wf.Actions {
		if !action.Enabled {
			execution.ExecutedActions[i] = &models.ExecutedAction{
				ActionID:   action.ID,
				Type:       action.Type,
				Status:     models.ExecutionStatusSkipped,
				ExecutedAt: e.clock.Now().UTC(),
			}

			continue
		}

		wg.Add(1)

		go func(i int, action *models.WorkflowAction) {
			defer wg.Done()

			execution.ExecutedActions[i] = e.runAction(ctx, execution, action, snapshot, logger)
		}(i, action)
	}

	wg.Wait()

	completedAt := e.clock.Now().UTC()
	execution.CompletedAt = &completedAt
	execution.Status = finalStatus(execution.ExecutedActions)

	err = e.executions.Save(ctx, execution)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to finalize execution record", "error", err)
	}

	success := execution.Status == models.ExecutionStatusSuccess

	err = e.workflows.RecordExecution(ctx, wf.ID, success, completedAt)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to update workflow statistics", "error", err)
	}

	logger.InfoContext(ctx, "Workflow execution finished",
		"status", execution.Status, "duration", completedAt.Sub(startedAt))

	return execution, nil
}

// runAction waits out the action's delay, builds it from rendered parameters
// and fires it. The returned record always carries the moment the action
// actually ran.
func (e *Executor) runAction(
	ctx context.Context,
	execution *models.WorkflowExecution,
	action *models.WorkflowAction,
	snapshot models.ResourceSnapshot,
	logger *slog.Logger,
) *models.ExecutedAction {
	record := &models.ExecutedAction{
		ActionID: action.ID,
		Type:     action.Type,
	}

	if action.DelaySeconds > 0 {
		select {
		case <-ctx.Done():
			record.Status = models.ExecutionStatusFailed
			record.Error = ctx.Err().Error()
			record.ExecutedAt = e.clock.Now().UTC()

			return record
		case <-e.clock.After(time.Duration(action.DelaySeconds) * time.Second):
		}
	}

	record.ExecutedAt = e.clock.Now().UTC()

	executionCtx := models.ExecutionContext{
		ExecutionID:  execution.ID,
		WorkflowID:   execution.WorkflowID,
		TenantID:     execution.TenantID,
		EventType:    execution.EventType,
		ResourceType: execution.ResourceType,
		ResourceID:   execution.ResourceID,
		Resource:     snapshot,
	}
	executionCtx.Params = template.RenderParams(action.Params, executionCtx)

	impl, err := e.registry.CreateAction(action.Type, executionCtx.Params)
	if err != nil {
		record.Status = models.ExecutionStatusFailed
		record.Error = err.Error()

		logger.WarnContext(ctx, "Action construction failed",
			"action_id", action.ID, "action_type", action.Type, "error", err)

		return record
	}

	_, err = impl.Execute(ctx, executionCtx, logger)
	if err != nil {
		record.Status = models.ExecutionStatusFailed
		record.Error = err.Error()

		logger.WarnContext(ctx, "Action failed",
			"action_id", action.ID, "action_type", action.Type, "error", err)

		return record
	}

	record.Status = models.ExecutionStatusSuccess

	return record
}

func finalStatus(actions []*models.ExecutedAction) models.ExecutionStatus {
	for _, action := range actions {
		if action != nil && action.Status == models.ExecutionStatusFailed {
			return models.ExecutionStatusFailed
		}
	}

	return models.ExecutionStatusSuccess
}
