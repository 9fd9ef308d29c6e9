// Package main provides the Deskflow management API server.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v3"
	"github.com/gofiber/fiber/v3/middleware/cors"
	"github.com/gofiber/fiber/v3/middleware/healthcheck"
	"github.com/gofiber/fiber/v3/middleware/logger"

	"github.com/deskflow/deskflow/pkg/cmd"
	"github.com/deskflow/deskflow/pkg/helpdesk"
	"github.com/deskflow/deskflow/pkg/persistence"
	"github.com/deskflow/deskflow/pkg/services"
	"github.com/deskflow/deskflow/pkg/web"
	"github.com/deskflow/deskflow/pkg/webhook"
	"github.com/deskflow/deskflow/pkg/workflow"
)

type API struct {
	logger        *slog.Logger
	persistence   persistence.Persistence
	helpdeskURL   string
	helpdeskToken string
	validate      *validator.Validate
}

func NewAPI(logger *slog.Logger, persistence persistence.Persistence, helpdeskURL, helpdeskToken string) *API {
	return &API{
		logger:        logger,
		persistence:   persistence,
		helpdeskURL:   helpdeskURL,
		helpdeskToken: helpdeskToken,
		validate:      validator.New(validator.WithRequiredStructEnabled()),
	}
}

// App assembles the full service stack behind the HTTP handlers. The API
// embeds its own executor so manual executions run in-process instead of
// round-tripping through the event bus.
func (a *API) App() (*fiber.App, *workflow.Dispatcher) {
	client := helpdesk.NewClient(a.helpdeskURL, a.helpdeskToken, a.logger)
	deliverer := webhook.NewDeliverer(a.persistence.WebhookRepository(), a.logger)
	registry := cmd.NewRegistry(a.logger, client, deliverer)

	executor := workflow.NewExecutor(
		a.persistence.WorkflowRepository(),
		a.persistence.ExecutionRepository(),
		registry,
		a.logger,
	)
	dispatcher := workflow.NewDispatcher(a.persistence.WorkflowRepository(), executor, a.logger)
	cmd.RegisterTriggerWorkflow(registry, dispatcher)

	workflowService := services.NewWorkflow(a.persistence, registry, dispatcher)
	webhookService := services.NewWebhook(a.persistence, deliverer)

	handlers := web.NewAPIHandlers(workflowService, webhookService, a.validate)

	app := fiber.New()
	app.Use(cors.New())
	app.Use(logger.New(logger.Config{
		DisableColors: true,
	}))

	app.Get(healthcheck.DefaultLivenessEndpoint, healthcheck.NewHealthChecker())
	app.Get(healthcheck.DefaultReadinessEndpoint, healthcheck.NewHealthChecker())

	app.Get("/", func(c fiber.Ctx) error {
		return c.SendString("Deskflow API")
	})

	handlers.RegisterRoutes(app)

	return app, dispatcher
}

func (a *API) Start(ctx context.Context, port int) error {
	app, dispatcher := a.App()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	errCh := make(chan error, 1)

	go func() {
		errCh <- app.Listen(":" + strconv.Itoa(port))
	}()

	select {
	case err := <-errCh:
		return err
	case sig := <-stop:
		a.logger.InfoContext(ctx, "Shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	if err := app.Shutdown(); err != nil {
		a.logger.ErrorContext(ctx, "Failed to shut down HTTP server", "error", err)
	}

	// Launched manual executions finish before exit.
	dispatcher.Wait()

	return nil
}
