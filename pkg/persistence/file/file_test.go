package file

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestPersistence(t *testing.T) *Persistence {
	t.Helper()

	return NewPersistence(t.TempDir())
}

func testWorkflow(tenantID string) *models.Workflow {
	return &models.Workflow{
		ID:       uuid.New().String(),
		TenantID: tenantID,
		Name:     "High priority auto-assign",
		Status:   models.WorkflowStatusActive,
		Trigger: &models.WorkflowTrigger{
			Type:            models.TriggerTicketCreated,
			LogicalOperator: models.LogicalAnd,
		},
		Actions: []*models.WorkflowAction{
			{ID: "a1", Type: models.ActionAssignAgent, Enabled: true},
		},
		CreatedAt: time.Now().UTC(),
	}
}

func TestWorkflowRepositoryRoundTrip(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)
	repo := p.WorkflowRepository()

	workflow := testWorkflow("tenant-1")
	require.NoError(t, repo.Save(ctx, workflow))

	loaded, err := repo.GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, workflow.Name, loaded.Name)
	assert.Equal(t, models.TriggerTicketCreated, loaded.Trigger.Type)
	require.Len(t, loaded.Actions, 1)
	assert.Equal(t, models.ActionAssignAgent, loaded.Actions[0].Type)

	require.NoError(t, repo.Delete(ctx, workflow.ID))

	_, err = repo.GetByID(ctx, workflow.ID)
	assert.True(t, persistence.IsWorkflowNotFound(err))
}

func TestWorkflowRepositoryListScopedByTenant(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)
	repo := p.WorkflowRepository()

	wfA := testWorkflow("tenant-a")
	wfB := testWorkflow("tenant-b")
	inactive := testWorkflow("tenant-a")
	inactive.Status = models.WorkflowStatusInactive

	require.NoError(t, repo.Save(ctx, wfA))
	require.NoError(t, repo.Save(ctx, wfB))
	require.NoError(t, repo.Save(ctx, inactive))

	all, err := repo.List(ctx, "tenant-a")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	active, err := repo.ListActive(ctx, "tenant-a")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Equal(t, wfA.ID, active[0].ID)
}

func TestRecordExecutionConcurrentIncrements(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)
	repo := p.WorkflowRepository()

	workflow := testWorkflow("tenant-1")
	require.NoError(t, repo.Save(ctx, workflow))

	const runs = 20

	var wg sync.WaitGroup

	for i := range runs {
		wg.Add(1)

		go func(success bool) {
			defer wg.Done()

			assert.NoError(t, repo.RecordExecution(ctx, workflow.ID, success, time.Now()))
		}(i%2 == 0)
	}

	wg.Wait()

	loaded, err := repo.GetByID(ctx, workflow.ID)
	require.NoError(t, err)
	assert.Equal(t, runs, loaded.ExecutionCount)
	assert.Equal(t, runs/2, loaded.SuccessCount)
	assert.InDelta(t, 50.0, loaded.SuccessRate, 0.001)
	assert.NotNil(t, loaded.LastExecutedAt)
}

func TestExecutionRepositoryPagination(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)
	repo := p.ExecutionRepository()

	base := time.Now().UTC()

	for i := range 5 {
		execution := &models.WorkflowExecution{
			ID:         uuid.New().String(),
			WorkflowID: "wf-1",
			TenantID:   "tenant-1",
			Status:     models.ExecutionStatusSuccess,
			StartedAt:  base.Add(time.Duration(i) * time.Minute),
		}
		require.NoError(t, repo.Save(ctx, execution))
	}

	page, total, err := repo.ListByWorkflow(ctx, "wf-1", persistence.ListExecutionsOptions{Limit: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, page, 2)
	// Most recent first.
	assert.True(t, page[0].StartedAt.After(page[1].StartedAt))

	rest, _, err := repo.ListByWorkflow(ctx, "wf-1", persistence.ListExecutionsOptions{Limit: 10, Offset: 4})
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestWebhookRepositoryDeliveryCounters(t *testing.T) {
	ctx := context.Background()
	p := newTestPersistence(t)
	repo := p.WebhookRepository()

	webhook := &models.Webhook{
		ID:       uuid.New().String(),
		TenantID: "tenant-1",
		Name:     "Ops endpoint",
		URL:      "https://ops.example.com/hooks",
		Events:   []string{"sla.breach"},
		Active:   true,
	}
	require.NoError(t, repo.Save(ctx, webhook))

	require.NoError(t, repo.RecordDelivery(ctx, webhook.ID, true, time.Now()))
	require.NoError(t, repo.RecordDelivery(ctx, webhook.ID, false, time.Now()))

	loaded, err := repo.GetByID(ctx, webhook.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.SuccessCount)
	assert.Equal(t, 1, loaded.FailureCount)
	assert.NotNil(t, loaded.LastTriggeredAt)

	matching, err := repo.ListActiveForEvent(ctx, "tenant-1", "sla.breach")
	require.NoError(t, err)
	assert.Len(t, matching, 1)

	none, err := repo.ListActiveForEvent(ctx, "tenant-1", "ticket.created")
	require.NoError(t, err)
	assert.Empty(t, none)
}
