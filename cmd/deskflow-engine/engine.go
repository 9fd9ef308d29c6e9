// Package main provides the Deskflow workflow engine daemon. It consumes
// helpdesk events from the bus, dispatches matching workflows, fans events out
// to registered webhooks, and fires time-based triggers.
package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/deskflow/deskflow/pkg/cmd"
	"github.com/deskflow/deskflow/pkg/eventbus"
	"github.com/deskflow/deskflow/pkg/events"
	"github.com/deskflow/deskflow/pkg/helpdesk"
	"github.com/deskflow/deskflow/pkg/otelhelper"
	"github.com/deskflow/deskflow/pkg/persistence"
	"github.com/deskflow/deskflow/pkg/receivers/queue"
	"github.com/deskflow/deskflow/pkg/receivers/schedule"
	"github.com/deskflow/deskflow/pkg/webhook"
	"github.com/deskflow/deskflow/pkg/workflow"
)

type Engine struct {
	logger        *slog.Logger
	persistence   persistence.Persistence
	eventBus      eventbus.EventBus
	helpdeskURL   string
	helpdeskToken string
	redisAddr     string
	redisQueue    string
}

func NewEngine(
	logger *slog.Logger,
	persistence persistence.Persistence,
	eventBus eventbus.EventBus,
	helpdeskURL, helpdeskToken string,
	redisAddr, redisQueue string,
) *Engine {
	return &Engine{
		logger:        logger,
		persistence:   persistence,
		eventBus:      eventBus,
		helpdeskURL:   helpdeskURL,
		helpdeskToken: helpdeskToken,
		redisAddr:     redisAddr,
		redisQueue:    redisQueue,
	}
}

// Run blocks until the context is cancelled or a termination signal arrives.
func (e *Engine) Run(ctx context.Context) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	if _, err := otelhelper.NewTracer(ctx, "deskflow-engine"); err != nil {
		e.logger.WarnContext(ctx, "Tracing disabled", "error", err)
	}

	client := helpdesk.NewClient(e.helpdeskURL, e.helpdeskToken, e.logger)
	deliverer := webhook.NewDeliverer(e.persistence.WebhookRepository(), e.logger)
	registry := cmd.NewRegistry(e.logger, client, deliverer)

	executor := workflow.NewExecutor(
		e.persistence.WorkflowRepository(),
		e.persistence.ExecutionRepository(),
		registry,
		e.logger,
	)
	dispatcher := workflow.NewDispatcher(e.persistence.WorkflowRepository(), executor, e.logger)
	cmd.RegisterTriggerWorkflow(registry, dispatcher)

	err := e.eventBus.Subscribe(ctx, func(ctx context.Context, event *events.ResourceEvent) error {
		e.handleEvent(ctx, dispatcher, deliverer, event)

		return nil
	})
	if err != nil {
		return err
	}

	scheduler := schedule.NewReceiver(e.persistence.WorkflowRepository(), e.eventBus, e.logger)
	if err := scheduler.Start(ctx); err != nil {
		return err
	}

	var queueReceiver *queue.Receiver

	if e.redisAddr != "" {
		queueReceiver, err = queue.NewReceiver(queue.Config{
			Addr:  e.redisAddr,
			Queue: e.redisQueue,
		}, e.eventBus, e.logger)
		if err != nil {
			return err
		}

		if err := queueReceiver.Start(ctx); err != nil {
			return err
		}
	}

	e.logger.InfoContext(ctx, "Engine started")

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		e.logger.InfoContext(ctx, "Shutting down", "signal", sig.String())
	case <-ctx.Done():
	}

	if queueReceiver != nil {
		if err := queueReceiver.Stop(ctx); err != nil {
			e.logger.Error("Failed to stop queue receiver", "error", err)
		}
	}

	if err := scheduler.Stop(ctx); err != nil {
		e.logger.Error("Failed to stop schedule receiver", "error", err)
	}

	// In-flight executions, including delayed actions, run to completion.
	dispatcher.Wait()

	return nil
}

// handleEvent feeds one bus event to both consumers: workflow dispatch and
// webhook fan-out. Scheduler ticks stay internal and are not forwarded to
// webhooks.
func (e *Engine) handleEvent(
	ctx context.Context,
	dispatcher *workflow.Dispatcher,
	deliverer *webhook.Deliverer,
	event *events.ResourceEvent,
) {
	dispatcher.HandleEvent(ctx, event)

	if event.ResourceType == "schedule" {
		return
	}

	deliverer.TriggerWebhooks(ctx, event.TenantID, string(event.Type), map[string]any{
		"resource_type": event.ResourceType,
		"resource_id":   event.ResourceID,
		"resource":      event.Resource,
	})
}
