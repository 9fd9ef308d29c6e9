package workflow

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"sync"

	"github.com/deskflow/deskflow/pkg/events"
	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
)

// Dispatcher connects domain events to workflow executions. For each event it
// loads the tenant's active workflows, matches their triggers against the
// resource snapshot, and hands matches to the executor in priority order
// (lower priority number first, insertion order on ties).
//
// Dispatch is asynchronous: OnEvent returns once matching executions are
// launched, never waiting for delayed actions. Deactivating a workflow stops
// future dispatch only; launched executions run to completion.
type Dispatcher struct {
	workflows persistence.WorkflowRepository
	executor  *Executor
	logger    *slog.Logger

	wg sync.WaitGroup
}

func NewDispatcher(workflows persistence.WorkflowRepository, executor *Executor, logger *slog.Logger) *Dispatcher {
	return &Dispatcher{
		workflows: workflows,
		executor:  executor,
		logger:    logger.With("module", "workflow_dispatcher"),
	}
}

// OnEvent matches and launches all active workflows of the tenant whose
// trigger fires for this event. Matching errors are logged, not returned to
// the event producer.
func (d *Dispatcher) OnEvent(
	ctx context.Context,
	tenantID string,
	eventType models.TriggerType,
	resourceType, resourceID string,
	snapshot models.ResourceSnapshot,
) {
	logger := d.logger.With("tenant_id", tenantID, "event_type", eventType, "resource_id", resourceID)

	active, err := d.workflows.ListActive(ctx, tenantID)
	if err != nil {
		logger.ErrorContext(ctx, "Failed to list active workflows", "error", err)

		return
	}

	var matched []*models.Workflow

	for _, wf := range active {
		if Matches(wf.Trigger, eventType, snapshot) {
			matched = append(matched, wf)
		}
	}

	if len(matched) == 0 {
		return
	}

	orderForDispatch(matched)

	logger.InfoContext(ctx, "Dispatching workflows", "matched", len(matched))

	for _, wf := range matched {
		d.launch(ctx, wf, eventType, resourceType, resourceID, snapshot)
	}
}

// HandleEvent adapts OnEvent to the event bus message shape. Scheduler ticks
// name the workflow that owns the cron entry in metadata; those are dispatched
// to that workflow alone so one tick never fans out to every time-based
// workflow.
func (d *Dispatcher) HandleEvent(ctx context.Context, event *events.ResourceEvent) {
	if event.Type == models.TriggerTimeBased {
		if workflowID, ok := event.Metadata["workflow_id"].(string); ok && workflowID != "" {
			d.dispatchScheduled(ctx, event, workflowID)

			return
		}
	}

	d.OnEvent(ctx, event.TenantID, event.Type, event.ResourceType, event.ResourceID, event.Resource)
}

func (d *Dispatcher) dispatchScheduled(ctx context.Context, event *events.ResourceEvent, workflowID string) {
	wf, err := d.workflows.GetByID(ctx, workflowID)
	if err != nil {
		d.logger.ErrorContext(ctx, "Scheduled workflow no longer exists", "workflow_id", workflowID, "error", err)

		return
	}

	if wf.TenantID != event.TenantID || !wf.IsActive() {
		return
	}

	if !Matches(wf.Trigger, event.Type, event.Resource) {
		return
	}

	d.launch(ctx, wf, event.Type, event.ResourceType, event.ResourceID, event.Resource)
}

// TriggerWorkflow starts one workflow directly, bypassing trigger matching.
// Used for manual execution and trigger_workflow actions. Inactive workflows
// are rejected.
func (d *Dispatcher) TriggerWorkflow(
	ctx context.Context,
	tenantID, workflowID string,
	resourceType, resourceID string,
	resource map[string]any,
) error {
	wf, err := d.workflows.GetByID(ctx, workflowID)
	if err != nil {
		return err
	}

	if wf.TenantID != tenantID {
		return persistence.NewStoreError("trigger", "workflow", workflowID, persistence.ErrWorkflowNotFound)
	}

	if !wf.IsActive() {
		return fmt.Errorf("workflow %s is inactive", workflowID)
	}

	d.launch(ctx, wf, models.TriggerManual, resourceType, resourceID, models.ResourceSnapshot(resource))

	return nil
}

// orderForDispatch sorts matched workflows into launch order: lower priority
// number first, insertion order preserved on ties.
func orderForDispatch(matched []*models.Workflow) {
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Priority < matched[j].Priority
	})
}

// Wait blocks until every launched execution has finished. Used on shutdown.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}

func (d *Dispatcher) launch(
	ctx context.Context,
	wf *models.Workflow,
	eventType models.TriggerType,
	resourceType, resourceID string,
	snapshot models.ResourceSnapshot,
) {
	d.wg.Add(1)

	go func() {
		defer d.wg.Done()

		_, err := d.executor.Execute(ctx, wf, eventType, resourceType, resourceID, snapshot)
		if err != nil {
			d.logger.ErrorContext(ctx, "Workflow execution failed to start",
				"workflow_id", wf.ID, "error", err)
		}
	}()
}
