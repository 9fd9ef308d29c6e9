// Package schedule fires time-based workflow triggers from cron expressions.
package schedule

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/deskflow/deskflow/pkg/eventbus"
	"github.com/deskflow/deskflow/pkg/events"
	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
)

// DefaultRefreshInterval is how often the receiver re-reads scheduled
// workflows to pick up definition changes.
const DefaultRefreshInterval = time.Minute

// Receiver registers a cron entry per active time-based workflow and publishes
// a trigger event on each tick. Workflows created, updated, or deactivated
// after startup are picked up on the next refresh.
type Receiver struct {
	workflows persistence.WorkflowRepository
	eventBus  eventbus.EventBus
	logger    *slog.Logger
	refresh   time.Duration

	cron   *cron.Cron
	mu     sync.Mutex
	jobs   map[string]cron.EntryID // workflow ID to cron entry
	specs  map[string]string       // workflow ID to registered schedule
	cancel context.CancelFunc
}

func NewReceiver(workflows persistence.WorkflowRepository, eventBus eventbus.EventBus, logger *slog.Logger) *Receiver {
	return &Receiver{
		workflows: workflows,
		eventBus:  eventBus,
		logger:    logger.With("module", "schedule_receiver"),
		refresh:   DefaultRefreshInterval,
		jobs:      make(map[string]cron.EntryID),
		specs:     make(map[string]string),
	}
}

// WithRefreshInterval overrides how often schedules are re-synced.
func (r *Receiver) WithRefreshInterval(interval time.Duration) *Receiver {
	r.refresh = interval

	return r
}

func (r *Receiver) Start(ctx context.Context) error {
	ctx, r.cancel = context.WithCancel(ctx)

	r.cron = cron.New(cron.WithChain(
		cron.SkipIfStillRunning(cron.DefaultLogger),
		cron.Recover(cron.DefaultLogger),
	))

	if err := r.sync(ctx); err != nil {
		return err
	}

	r.cron.Start()

	go r.refreshLoop(ctx)

	r.logger.Info("Schedule receiver started", "refresh_interval", r.refresh)

	return nil
}

func (r *Receiver) Stop(_ context.Context) error {
	if r.cancel != nil {
		r.cancel()
	}

	if r.cron != nil {
		<-r.cron.Stop().Done()
	}

	r.mu.Lock()
	r.jobs = make(map[string]cron.EntryID)
	r.specs = make(map[string]string)
	r.mu.Unlock()

	r.logger.Info("Schedule receiver stopped")

	return nil
}

// ScheduledCount reports how many workflows currently hold a cron entry.
func (r *Receiver) ScheduledCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.jobs)
}

func (r *Receiver) refreshLoop(ctx context.Context) {
	ticker := time.NewTicker(r.refresh)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.sync(ctx); err != nil {
				r.logger.Error("Failed to refresh schedules", "error", err)
			}
		}
	}
}

// sync reconciles cron entries against the stored scheduled workflows.
func (r *Receiver) sync(ctx context.Context) error {
	scheduled, err := r.workflows.ListScheduled(ctx)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]bool, len(scheduled))

	for _, workflow := range scheduled {
		seen[workflow.ID] = true

		if r.specs[workflow.ID] == workflow.Trigger.Schedule {
			continue
		}

		if entryID, ok := r.jobs[workflow.ID]; ok {
			r.cron.Remove(entryID)
		}

		entryID, err := r.cron.AddFunc(workflow.Trigger.Schedule, r.tick(ctx, workflow))
		if err != nil {
			r.logger.Error("Skipping workflow with invalid schedule",
				"workflow_id", workflow.ID, "schedule", workflow.Trigger.Schedule, "error", err)

			continue
		}

		r.jobs[workflow.ID] = entryID
		r.specs[workflow.ID] = workflow.Trigger.Schedule
		r.logger.Info("Registered schedule", "workflow_id", workflow.ID, "schedule", workflow.Trigger.Schedule)
	}

	for id, entryID := range r.jobs {
		if !seen[id] {
			r.cron.Remove(entryID)
			delete(r.jobs, id)
			delete(r.specs, id)
			r.logger.Info("Unregistered schedule", "workflow_id", id)
		}
	}

	return nil
}

func (r *Receiver) tick(ctx context.Context, workflow *models.Workflow) func() {
	tenantID := workflow.TenantID
	workflowID := workflow.ID
	schedule := workflow.Trigger.Schedule

	return func() {
		now := time.Now().UTC()

		event := &events.ResourceEvent{
			Type:         models.TriggerTimeBased,
			TenantID:     tenantID,
			ResourceType: "schedule",
			ResourceID:   workflowID,
			Resource: models.ResourceSnapshot{
				"workflow_id": workflowID,
				"schedule":    schedule,
				"fired_at":    now.Format(time.RFC3339),
			},
			Timestamp: now,
			Metadata:  map[string]any{"workflow_id": workflowID},
		}

		if err := r.eventBus.Publish(ctx, event); err != nil {
			r.logger.Error("Failed to publish schedule event", "workflow_id", workflowID, "error", err)
		}
	}
}
