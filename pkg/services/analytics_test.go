package services

import (
	"context"
	"testing"
	"time"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnalyticsAggregation(t *testing.T) {
	ctx := context.Background()
	service, p := newWorkflowService(t)

	created, err := service.Create(ctx, "tenant-1", validDefinition())
	require.NoError(t, err)

	day1 := time.Date(2026, 8, 29, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 8, 30, 10, 0, 0, 0, time.UTC)

	histories := []struct {
		startedAt time.Time
		status    models.ExecutionStatus
		action    models.ExecutionStatus
	}{
		{day1, models.ExecutionStatusSuccess, models.ExecutionStatusSuccess},
		{day1, models.ExecutionStatusFailed, models.ExecutionStatusFailed},
		{day2, models.ExecutionStatusSuccess, models.ExecutionStatusSuccess},
	}

	for _, h := range histories {
		execution := &models.WorkflowExecution{
			ID:         uuid.New().String(),
			WorkflowID: created.ID,
			TenantID:   "tenant-1",
			EventType:  models.TriggerTicketCreated,
			Status:     h.status,
			StartedAt:  h.startedAt,
			ExecutedActions: []*models.ExecutedAction{
				{ActionID: created.Actions[0].ID, Type: models.ActionSendNotification, Status: h.action, ExecutedAt: h.startedAt},
				{ActionID: "disabled", Type: models.ActionAddTag, Status: models.ExecutionStatusSkipped, ExecutedAt: h.startedAt},
			},
		}
		require.NoError(t, p.ExecutionRepository().Save(ctx, execution))
		require.NoError(t, p.WorkflowRepository().RecordExecution(ctx, created.ID, h.status == models.ExecutionStatusSuccess, h.startedAt))
	}

	analytics, err := service.Analytics(ctx, "tenant-1", created.ID)
	require.NoError(t, err)

	assert.Equal(t, 3, analytics.ExecutionCount)
	assert.Equal(t, 2, analytics.SuccessCount)
	assert.Equal(t, 1, analytics.FailureCount)
	assert.InDelta(t, 66.66, analytics.SuccessRate, 0.1)

	notifyStats := analytics.ActionStats[string(models.ActionSendNotification)]
	require.NotNil(t, notifyStats)
	assert.Equal(t, 3, notifyStats.Attempted)
	assert.Equal(t, 2, notifyStats.Succeeded)
	assert.InDelta(t, 66.66, notifyStats.SuccessRate, 0.1)

	tagStats := analytics.ActionStats[string(models.ActionAddTag)]
	require.NotNil(t, tagStats)
	assert.Equal(t, 0, tagStats.Attempted)
	assert.Equal(t, 3, tagStats.Skipped)

	require.Len(t, analytics.Trend, 2)
	assert.Equal(t, TrendPoint{Date: "2026-08-29", Executions: 2, Successes: 1}, analytics.Trend[0])
	assert.Equal(t, TrendPoint{Date: "2026-08-30", Executions: 1, Successes: 1}, analytics.Trend[1])
}
