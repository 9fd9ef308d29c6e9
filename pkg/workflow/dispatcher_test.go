package workflow

import (
	"context"
	"testing"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDispatcherFixture(t *testing.T) (*Dispatcher, *engineFixture) {
	t.Helper()

	fixture := newEngineFixture(t)
	dispatcher := NewDispatcher(fixture.persistence.WorkflowRepository(), fixture.executor, testLogger())

	return dispatcher, fixture
}

func executionCount(t *testing.T, fixture *engineFixture, workflowID string) int {
	t.Helper()

	_, total, err := fixture.persistence.ExecutionRepository().ListByWorkflow(
		context.Background(), workflowID, persistence.ListExecutionsOptions{})
	require.NoError(t, err)

	return total
}

func TestOrderForDispatchPriorityAscending(t *testing.T) {
	urgent := &models.Workflow{ID: "urgent", Priority: 0}
	followUp := &models.Workflow{ID: "follow-up", Priority: 10}
	firstDefault := &models.Workflow{ID: "first-default", Priority: 5}
	secondDefault := &models.Workflow{ID: "second-default", Priority: 5}

	matched := []*models.Workflow{followUp, firstDefault, secondDefault, urgent}
	orderForDispatch(matched)

	ids := make([]string, len(matched))
	for i, wf := range matched {
		ids[i] = wf.ID
	}

	// Lower priority number launches first; equal priorities keep their
	// insertion order.
	assert.Equal(t, []string{"urgent", "first-default", "second-default", "follow-up"}, ids)
}

func TestOnEventDispatchesMatchingWorkflows(t *testing.T) {
	ctx := context.Background()
	dispatcher, fixture := newDispatcherFixture(t)

	matching := fixture.saveWorkflow(t, &models.Workflow{
		Name:   "High priority alert",
		Status: models.WorkflowStatusActive,
		Trigger: &models.WorkflowTrigger{
			Type: models.TriggerTicketCreated,
			Conditions: []*models.WorkflowCondition{
				{Field: "priority", Operator: models.OperatorEquals, Value: "high"},
			},
		},
		Actions: []*models.WorkflowAction{notifyAction(true, 0)},
	})

	nonMatching := fixture.saveWorkflow(t, &models.Workflow{
		Name:   "Enterprise only",
		Status: models.WorkflowStatusActive,
		Trigger: &models.WorkflowTrigger{
			Type: models.TriggerTicketCreated,
			Conditions: []*models.WorkflowCondition{
				{Field: "tier", Operator: models.OperatorEquals, Value: "enterprise"},
			},
		},
		Actions: []*models.WorkflowAction{notifyAction(true, 0)},
	})

	wrongEvent := fixture.saveWorkflow(t, &models.Workflow{
		Name:    "SLA watcher",
		Status:  models.WorkflowStatusActive,
		Trigger: &models.WorkflowTrigger{Type: models.TriggerSLABreach},
		Actions: []*models.WorkflowAction{notifyAction(true, 0)},
	})

	inactive := fixture.saveWorkflow(t, &models.Workflow{
		Name:    "Disabled duplicate",
		Status:  models.WorkflowStatusInactive,
		Trigger: &models.WorkflowTrigger{Type: models.TriggerTicketCreated},
		Actions: []*models.WorkflowAction{notifyAction(true, 0)},
	})

	dispatcher.OnEvent(ctx, "tenant-1", models.TriggerTicketCreated, "ticket", "T-1",
		models.ResourceSnapshot{"priority": "high", "tier": "standard"})
	dispatcher.Wait()

	assert.Equal(t, 1, executionCount(t, fixture, matching.ID))
	assert.Equal(t, 0, executionCount(t, fixture, nonMatching.ID))
	assert.Equal(t, 0, executionCount(t, fixture, wrongEvent.ID))
	assert.Equal(t, 0, executionCount(t, fixture, inactive.ID))
}

func TestOnEventTenantIsolation(t *testing.T) {
	ctx := context.Background()
	dispatcher, fixture := newDispatcherFixture(t)

	otherTenant := fixture.saveWorkflow(t, &models.Workflow{
		TenantID: "tenant-2",
		Name:     "Other tenant's workflow",
		Status:   models.WorkflowStatusActive,
		Trigger:  &models.WorkflowTrigger{Type: models.TriggerTicketCreated},
		Actions:  []*models.WorkflowAction{notifyAction(true, 0)},
	})

	dispatcher.OnEvent(ctx, "tenant-1", models.TriggerTicketCreated, "ticket", "T-1", models.ResourceSnapshot{})
	dispatcher.Wait()

	assert.Equal(t, 0, executionCount(t, fixture, otherTenant.ID))
}

func TestTriggerWorkflowBypassesMatching(t *testing.T) {
	ctx := context.Background()
	dispatcher, fixture := newDispatcherFixture(t)

	wf := fixture.saveWorkflow(t, &models.Workflow{
		Name:   "Manually runnable",
		Status: models.WorkflowStatusActive,
		Trigger: &models.WorkflowTrigger{
			Type: models.TriggerTicketCreated,
			Conditions: []*models.WorkflowCondition{
				{Field: "priority", Operator: models.OperatorEquals, Value: "never-matches"},
			},
		},
		Actions: []*models.WorkflowAction{notifyAction(true, 0)},
	})

	err := dispatcher.TriggerWorkflow(ctx, "tenant-1", wf.ID, "ticket", "T-1", map[string]any{"priority": "low"})
	require.NoError(t, err)
	dispatcher.Wait()

	assert.Equal(t, 1, executionCount(t, fixture, wf.ID))
}

func TestTriggerWorkflowRejectsInactive(t *testing.T) {
	ctx := context.Background()
	dispatcher, fixture := newDispatcherFixture(t)

	wf := fixture.saveWorkflow(t, &models.Workflow{
		Name:    "Paused",
		Status:  models.WorkflowStatusInactive,
		Trigger: &models.WorkflowTrigger{Type: models.TriggerTicketCreated},
		Actions: []*models.WorkflowAction{notifyAction(true, 0)},
	})

	err := dispatcher.TriggerWorkflow(ctx, "tenant-1", wf.ID, "ticket", "T-1", nil)
	require.Error(t, err)
	assert.Equal(t, 0, executionCount(t, fixture, wf.ID))
}

func TestTriggerWorkflowWrongTenant(t *testing.T) {
	ctx := context.Background()
	dispatcher, fixture := newDispatcherFixture(t)

	wf := fixture.saveWorkflow(t, &models.Workflow{
		TenantID: "tenant-2",
		Name:     "Not yours",
		Status:   models.WorkflowStatusActive,
		Trigger:  &models.WorkflowTrigger{Type: models.TriggerTicketCreated},
		Actions:  []*models.WorkflowAction{notifyAction(true, 0)},
	})

	err := dispatcher.TriggerWorkflow(ctx, "tenant-1", wf.ID, "ticket", "T-1", nil)
	require.Error(t, err)
}
