package template

import (
	"testing"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testExecutionContext() models.ExecutionContext {
	return models.ExecutionContext{
		ExecutionID:  "exec-1",
		WorkflowID:   "wf-1",
		TenantID:     "tenant-1",
		EventType:    models.TriggerTicketCreated,
		ResourceType: "ticket",
		ResourceID:   "T-42",
		Resource: models.ResourceSnapshot{
			"id":       "T-42",
			"priority": "high",
			"customer": map[string]any{"tier": "enterprise"},
		},
	}
}

func TestRenderPlainStringPassesThrough(t *testing.T) {
	out, err := Render("no templates here", nil)
	require.NoError(t, err)
	assert.Equal(t, "no templates here", out)
}

func TestRenderParamsResolvesTicketFields(t *testing.T) {
	params := map[string]any{
		"message":    "Ticket {{.ticket.id}} is {{.ticket.priority}} priority",
		"tier":       "{{.ticket.customer.tier}}",
		"recipients": []any{"agent-7", "{{.workflow.tenant_id}}-oncall"},
		"nested": map[string]any{
			"event": "{{.event.type}}",
		},
		"count": 3,
	}

	out := RenderParams(params, testExecutionContext())

	assert.Equal(t, "Ticket T-42 is high priority", out["message"])
	assert.Equal(t, "enterprise", out["tier"])
	assert.Equal(t, []any{"agent-7", "tenant-1-oncall"}, out["recipients"])
	assert.Equal(t, "ticket.created", out["nested"].(map[string]any)["event"])
	assert.Equal(t, 3, out["count"])
}

func TestRenderMissingPathYieldsEmpty(t *testing.T) {
	out := RenderParams(map[string]any{"v": "{{.ticket.nope}}"}, testExecutionContext())
	assert.Equal(t, "", out["v"])
}

func TestRenderCoercesScalars(t *testing.T) {
	data := map[string]any{"n": 30, "flag": true}

	num, err := Render("{{.n}}", data)
	require.NoError(t, err)
	assert.Equal(t, float64(30), num)

	b, err := Render("{{.flag}}", data)
	require.NoError(t, err)
	assert.Equal(t, true, b)
}

func TestRenderInvalidTemplateKeptVerbatim(t *testing.T) {
	out := RenderParams(map[string]any{"v": "{{.unclosed"}, testExecutionContext())
	assert.Equal(t, "{{.unclosed", out["v"])
}
