package schedule_test

import (
	"context"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/deskflow/deskflow/pkg/eventbus"
	"github.com/deskflow/deskflow/pkg/events"
	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence/file"
	"github.com/deskflow/deskflow/pkg/receivers/schedule"
)

type captureBus struct {
	mu     sync.Mutex
	events []*events.ResourceEvent
}

func (b *captureBus) Publish(_ context.Context, event *events.ResourceEvent) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.events = append(b.events, event)

	return nil
}

func (b *captureBus) Subscribe(context.Context, eventbus.Handler) error {
	return nil
}

func (b *captureBus) Close() error { return nil }

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func scheduledWorkflow(schedule string, status models.WorkflowStatus) *models.Workflow {
	now := time.Now().UTC()

	return &models.Workflow{
		ID:       uuid.New().String(),
		TenantID: "tenant-1",
		Name:     "nightly report",
		Status:   status,
		Trigger: &models.WorkflowTrigger{
			Type:     models.TriggerTimeBased,
			Schedule: schedule,
		},
		Actions: []*models.WorkflowAction{{
			ID:      uuid.New().String(),
			Type:    models.ActionSendNotification,
			Params:  map[string]any{"recipients": []any{"agent-1"}, "message": "ping"},
			Enabled: true,
		}},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func TestSyncRegistersOnlyActiveScheduledWorkflows(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	active := scheduledWorkflow("*/5 * * * *", models.WorkflowStatusActive)
	inactive := scheduledWorkflow("*/5 * * * *", models.WorkflowStatusInactive)

	eventBased := scheduledWorkflow("", models.WorkflowStatusActive)
	eventBased.Trigger.Type = models.TriggerTicketCreated

	for _, wf := range []*models.Workflow{active, inactive, eventBased} {
		require.NoError(t, p.WorkflowRepository().Save(ctx, wf))
	}

	receiver := schedule.NewReceiver(p.WorkflowRepository(), &captureBus{}, testLogger())
	require.NoError(t, receiver.Start(ctx))

	defer func() { _ = receiver.Stop(ctx) }()

	assert.Equal(t, 1, receiver.ScheduledCount())
}

func TestSyncPicksUpDefinitionChanges(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	receiver := schedule.NewReceiver(p.WorkflowRepository(), &captureBus{}, testLogger()).
		WithRefreshInterval(20 * time.Millisecond)
	require.NoError(t, receiver.Start(ctx))

	defer func() { _ = receiver.Stop(ctx) }()

	assert.Equal(t, 0, receiver.ScheduledCount())

	wf := scheduledWorkflow("0 9 * * 1", models.WorkflowStatusActive)
	require.NoError(t, p.WorkflowRepository().Save(ctx, wf))

	assert.Eventually(t, func() bool {
		return receiver.ScheduledCount() == 1
	}, 2*time.Second, 10*time.Millisecond)

	wf.Status = models.WorkflowStatusInactive
	require.NoError(t, p.WorkflowRepository().Save(ctx, wf))

	assert.Eventually(t, func() bool {
		return receiver.ScheduledCount() == 0
	}, 2*time.Second, 10*time.Millisecond)
}

func TestSyncSkipsInvalidCronExpression(t *testing.T) {
	p := file.NewPersistence(t.TempDir())
	ctx := context.Background()

	broken := scheduledWorkflow("not a cron", models.WorkflowStatusActive)
	require.NoError(t, p.WorkflowRepository().Save(ctx, broken))

	receiver := schedule.NewReceiver(p.WorkflowRepository(), &captureBus{}, testLogger())
	require.NoError(t, receiver.Start(ctx))

	defer func() { _ = receiver.Stop(ctx) }()

	assert.Equal(t, 0, receiver.ScheduledCount())
}
