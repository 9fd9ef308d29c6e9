package web_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/deskflow/deskflow/pkg/actions/notify"
	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
	"github.com/deskflow/deskflow/pkg/persistence/file"
	"github.com/deskflow/deskflow/pkg/protocol"
	"github.com/deskflow/deskflow/pkg/registry"
	"github.com/deskflow/deskflow/pkg/services"
	"github.com/deskflow/deskflow/pkg/web"
	"github.com/deskflow/deskflow/pkg/webhook"
	"github.com/deskflow/deskflow/pkg/workflow"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type acceptAllNotifier struct{}

func (acceptAllNotifier) Send(context.Context, []string, []string, string, string) (*protocol.NotificationResult, error) {
	return &protocol.NotificationResult{Sent: true}, nil
}

func setupTestApp(t *testing.T) (*fiber.App, *file.Persistence) {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	p := file.NewPersistence(t.TempDir())

	reg := registry.NewRegistry(logger)
	reg.RegisterAction(notify.NewNotificationFactory(acceptAllNotifier{}))

	executor := workflow.NewExecutor(p.WorkflowRepository(), p.ExecutionRepository(), reg, logger)
	dispatcher := workflow.NewDispatcher(p.WorkflowRepository(), executor, logger)
	deliverer := webhook.NewDeliverer(p.WebhookRepository(), logger)

	workflowService := services.NewWorkflow(p, reg, dispatcher)
	webhookService := services.NewWebhook(p, deliverer)

	handlers := web.NewAPIHandlers(workflowService, webhookService, validator.New())

	app := fiber.New()
	handlers.RegisterRoutes(app)

	return app, p
}

func doRequest(t *testing.T, app *fiber.App, method, path, tenant string, body any) *http.Response {
	t.Helper()

	var reader io.Reader

	if body != nil {
		encoded, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(encoded)
	}

	req := httptest.NewRequest(method, path, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if tenant != "" {
		req.Header.Set(web.TenantHeader, tenant)
	}

	resp, err := app.Test(req)
	require.NoError(t, err)

	return resp
}

func decodeBody(t *testing.T, resp *http.Response, out any) {
	t.Helper()

	defer resp.Body.Close()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(out))
}

func validWorkflowBody() web.WorkflowRequest {
	return web.WorkflowRequest{
		Name: "Notify support",
		Trigger: &web.TriggerRequest{
			Type: "ticket.created",
			Conditions: []*web.ConditionRequest{
				{Field: "priority", Operator: "equals", Value: "high"},
			},
			LogicalOperator: "AND",
		},
		Actions: []*web.ActionRequest{
			{
				Type:   "send_notification",
				Params: map[string]any{"recipients": []any{"agent-1"}, "message": "heads up"},
			},
		},
	}
}

func TestCreateWorkflowEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/workflows", "tenant-1", validWorkflowBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow

	decodeBody(t, resp, &created)
	assert.NotEmpty(t, created.ID)
	assert.Equal(t, "tenant-1", created.TenantID)
	assert.Equal(t, models.WorkflowStatusActive, created.Status)
	assert.True(t, created.Actions[0].Enabled)
}

func TestCreateWorkflowRequiresTenantHeader(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/workflows", "", validWorkflowBody())
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func TestCreateWorkflowReturnsIssueList(t *testing.T) {
	app, _ := setupTestApp(t)

	body := validWorkflowBody()
	body.Actions[0].Type = "launch_rocket"

	resp := doRequest(t, app, http.MethodPost, "/workflows", "tenant-1", body)
	require.Equal(t, http.StatusBadRequest, resp.StatusCode)

	var payload struct {
		Type   string                      `json:"type"`
		Errors []services.ValidationIssue `json:"errors"`
	}

	decodeBody(t, resp, &payload)
	assert.Equal(t, "validation_error", payload.Type)
	require.NotEmpty(t, payload.Errors)
	assert.Equal(t, "actions[0].type", payload.Errors[0].Field)
}

func TestWorkflowLifecycleEndpoints(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/workflows", "tenant-1", validWorkflowBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow

	decodeBody(t, resp, &created)

	resp = doRequest(t, app, http.MethodGet, "/workflows/"+created.ID, "tenant-1", nil)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp = doRequest(t, app, http.MethodPatch, "/workflows/"+created.ID+"/toggle", "tenant-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var toggled models.Workflow

	decodeBody(t, resp, &toggled)
	assert.Equal(t, models.WorkflowStatusInactive, toggled.Status)

	// Another tenant sees nothing.
	resp = doRequest(t, app, http.MethodGet, "/workflows/"+created.ID, "tenant-2", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = doRequest(t, app, http.MethodDelete, "/workflows/"+created.ID, "tenant-1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp = doRequest(t, app, http.MethodGet, "/workflows/"+created.ID, "tenant-1", nil)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestExecuteWorkflowEndpoint(t *testing.T) {
	app, p := setupTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/workflows", "tenant-1", validWorkflowBody())
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Workflow

	decodeBody(t, resp, &created)

	resp = doRequest(t, app, http.MethodPost, "/workflows/"+created.ID+"/execute", "tenant-1",
		web.ExecuteWorkflowRequest{
			ResourceType: "ticket",
			ResourceID:   "T-1",
			Resource:     map[string]any{"priority": "low"},
		})
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	// Dispatch is asynchronous; poll the history briefly.
	assert.Eventually(t, func() bool {
		_, total, err := p.ExecutionRepository().ListByWorkflow(context.Background(), created.ID,
			persistence.ListExecutionsOptions{})

		return err == nil && total == 1
	}, 2*time.Second, 10*time.Millisecond)
}

func TestValidateEndpointDryRun(t *testing.T) {
	app, _ := setupTestApp(t)

	body := validWorkflowBody()
	body.Name = ""

	resp := doRequest(t, app, http.MethodPost, "/workflows/validate", "tenant-1", body)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Valid  bool                        `json:"valid"`
		Errors []services.ValidationIssue `json:"errors"`
	}

	decodeBody(t, resp, &payload)
	assert.False(t, payload.Valid)
	assert.NotEmpty(t, payload.Errors)

	resp = doRequest(t, app, http.MethodGet, "/workflows", "tenant-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var listed struct {
		Count int `json:"count"`
	}

	decodeBody(t, resp, &listed)
	assert.Zero(t, listed.Count)
}

func TestTemplatesEndpoint(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := doRequest(t, app, http.MethodGet, "/workflows/templates", "", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var payload struct {
		Count     int                         `json:"count"`
		Templates []services.WorkflowTemplate `json:"templates"`
	}

	decodeBody(t, resp, &payload)
	assert.Positive(t, payload.Count)
	assert.NotEmpty(t, payload.Templates[0].Actions)
}

func TestWebhookEndpoints(t *testing.T) {
	app, _ := setupTestApp(t)

	resp := doRequest(t, app, http.MethodPost, "/webhooks", "tenant-1", web.WebhookRequest{
		Name:   "Ops endpoint",
		URL:    "https://ops.example.com/hooks",
		Events: []string{"sla.breach"},
	})
	require.Equal(t, http.StatusCreated, resp.StatusCode)

	var created models.Webhook

	decodeBody(t, resp, &created)
	assert.True(t, created.Active)
	assert.Equal(t, models.DefaultWebhookMaxRetries, created.MaxRetries)

	resp = doRequest(t, app, http.MethodPatch, "/webhooks/"+created.ID+"/toggle", "tenant-1", nil)
	require.Equal(t, http.StatusOK, resp.StatusCode)

	var toggled models.Webhook

	decodeBody(t, resp, &toggled)
	assert.False(t, toggled.Active)

	resp = doRequest(t, app, http.MethodDelete, "/webhooks/"+created.ID, "tenant-1", nil)
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)
}
