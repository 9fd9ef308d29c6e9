package web

import (
	"net/http"
	"strconv"
	"time"

	"github.com/deskflow/deskflow/pkg/services"
	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
)

// TenantHeader carries the caller's tenant. Authentication happens upstream;
// by the time a request reaches this API the header is trusted.
const TenantHeader = "X-Tenant-ID"

type APIHandlers struct {
	workflowService *services.Workflow
	webhookService  *services.Webhook
	validator       *validator.Validate
}

func NewAPIHandlers(
	workflowService *services.Workflow,
	webhookService *services.Webhook,
	validator *validator.Validate,
) *APIHandlers {
	return &APIHandlers{
		workflowService: workflowService,
		webhookService:  webhookService,
		validator:       validator,
	}
}

// RegisterRoutes mounts every endpoint on the app. The static template
// catalog route must precede the :id routes.
func (h *APIHandlers) RegisterRoutes(app *fiber.App) {
	app.Get("/health", h.HealthCheck)

	app.Get("/workflows/templates", h.GetTemplates)
	app.Get("/workflows", h.ListWorkflows)
	app.Post("/workflows", h.CreateWorkflow)
	app.Post("/workflows/validate", h.ValidateWorkflow)
	app.Get("/workflows/:id", h.GetWorkflow)
	app.Put("/workflows/:id", h.UpdateWorkflow)
	app.Patch("/workflows/:id/toggle", h.ToggleWorkflow)
	app.Delete("/workflows/:id", h.DeleteWorkflow)
	app.Post("/workflows/:id/execute", h.ExecuteWorkflow)
	app.Get("/workflows/:id/executions", h.ListExecutions)
	app.Get("/workflows/:id/analytics", h.GetAnalytics)

	app.Get("/webhooks", h.ListWebhooks)
	app.Post("/webhooks", h.CreateWebhook)
	app.Get("/webhooks/:id", h.GetWebhook)
	app.Patch("/webhooks/:id/toggle", h.ToggleWebhook)
	app.Post("/webhooks/:id/test", h.TestWebhook)
	app.Delete("/webhooks/:id", h.DeleteWebhook)
}

func tenantID(c fiber.Ctx) string {
	return c.Get(TenantHeader)
}

func (h *APIHandlers) ListWorkflows(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	workflows, err := h.workflowService.List(c.Context(), tenant)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"workflows": workflows,
		"count":     len(workflows),
	})
}

func (h *APIHandlers) GetTemplates(c fiber.Ctx) error {
	templates := services.Templates()

	return c.JSON(fiber.Map{
		"templates": templates,
		"count":     len(templates),
	})
}

func (h *APIHandlers) GetWorkflow(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	wf, err := h.workflowService.Get(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(wf)
}

func (h *APIHandlers) CreateWorkflow(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	var req WorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.workflowService.Create(c.Context(), tenant, req.ToModel())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) UpdateWorkflow(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	var req WorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	updated, err := h.workflowService.Update(c.Context(), tenant, c.Params("id"), req.ToModel())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(updated)
}

func (h *APIHandlers) ToggleWorkflow(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	toggled, err := h.workflowService.Toggle(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(toggled)
}

func (h *APIHandlers) DeleteWorkflow(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	err := h.workflowService.Delete(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) ExecuteWorkflow(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	var req ExecuteWorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	err := h.workflowService.Execute(c.Context(), tenant, c.Params("id"), req.ResourceType, req.ResourceID, req.Resource)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"status": "dispatched",
	})
}

func (h *APIHandlers) ListExecutions(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	limit, offset, err := parsePagination(c)
	if err != nil {
		return badRequest(c, "Invalid pagination parameters: "+err.Error())
	}

	executions, total, err := h.workflowService.ListExecutions(c.Context(), tenant, c.Params("id"), limit, offset)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"executions": executions,
		"total":      total,
		"pagination": fiber.Map{
			"limit":  limit,
			"offset": offset,
		},
	})
}

func (h *APIHandlers) GetAnalytics(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	analytics, err := h.workflowService.Analytics(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(analytics)
}

// ValidateWorkflow dry-runs validation without persisting anything.
func (h *APIHandlers) ValidateWorkflow(c fiber.Ctx) error {
	var req WorkflowRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	issues := h.workflowService.Validate(req.ToModel())

	return c.JSON(fiber.Map{
		"valid":  len(issues) == 0,
		"errors": issues,
	})
}

func (h *APIHandlers) ListWebhooks(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	webhooks, err := h.webhookService.List(c.Context(), tenant)
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"webhooks": webhooks,
		"count":    len(webhooks),
	})
}

func (h *APIHandlers) GetWebhook(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	wh, err := h.webhookService.Get(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(wh)
}

func (h *APIHandlers) CreateWebhook(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	var req WebhookRequest
	if err := c.Bind().JSON(&req); err != nil {
		return badRequest(c, "Invalid JSON format")
	}

	if err := h.validator.Struct(req); err != nil {
		return badRequest(c, err.Error())
	}

	created, err := h.webhookService.Create(c.Context(), tenant, req.ToModel())
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.Status(fiber.StatusCreated).JSON(created)
}

func (h *APIHandlers) ToggleWebhook(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	toggled, err := h.webhookService.Toggle(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(toggled)
}

func (h *APIHandlers) TestWebhook(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	delivered, err := h.webhookService.Test(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.JSON(fiber.Map{
		"delivered": delivered,
	})
}

func (h *APIHandlers) DeleteWebhook(c fiber.Ctx) error {
	tenant := tenantID(c)
	if tenant == "" {
		return badRequest(c, "X-Tenant-ID header is required")
	}

	err := h.webhookService.Delete(c.Context(), tenant, c.Params("id"))
	if err != nil {
		return handleServiceError(c, err)
	}

	return c.SendStatus(fiber.StatusNoContent)
}

func (h *APIHandlers) HealthCheck(c fiber.Ctx) error {
	repositoryCheck, repOK := h.workflowService.HealthCheck(c.Context())

	status := "unhealthy"
	httpStatus := http.StatusInternalServerError

	if repOK {
		status = "healthy"
		httpStatus = http.StatusOK
	}

	return c.Status(httpStatus).JSON(fiber.Map{
		"status": status,
		"checkers": fiber.Map{
			"repository": repositoryCheck,
		},
		"timestamp": time.Now().UTC(),
	})
}

func parsePagination(c fiber.Ctx) (limit, offset int, err error) {
	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err = strconv.Atoi(limitStr)
		if err != nil {
			return 0, 0, err
		}
	}

	if offsetStr := c.Query("offset"); offsetStr != "" {
		offset, err = strconv.Atoi(offsetStr)
		if err != nil {
			return 0, 0, err
		}
	}

	return limit, offset, nil
}
