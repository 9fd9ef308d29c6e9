// Package escalate implements the escalate workflow action: hand the resource
// to a higher tier and tell that tier about it.
package escalate

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
)

// ErrMissingTarget is returned when the action does not name an escalation
// target.
var ErrMissingTarget = errors.New("missing escalation target")

// Action moves the resource to the target group and optionally notifies it.
type Action struct {
	To      string
	Reason  string
	Notify  bool
	Message string

	resources protocol.ResourceService
	notifier  protocol.Notifier
}

func NewAction(params map[string]any, resources protocol.ResourceService, notifier protocol.Notifier) (*Action, error) {
	to, _ := params["to"].(string)
	if to == "" {
		return nil, ErrMissingTarget
	}

	reason, _ := params["reason"].(string)

	notify := true
	if v, ok := params["notify"].(bool); ok {
		notify = v
	}

	message, _ := params["message"].(string)
	if message == "" {
		message = "Ticket escalated"
	}

	return &Action{
		To:        to,
		Reason:    reason,
		Notify:    notify,
		Message:   message,
		resources: resources,
		notifier:  notifier,
	}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", models.ActionEscalate)

	err := a.resources.UpdateField(ctx, executionCtx.ResourceID, "group", a.To)
	if err != nil {
		return nil, fmt.Errorf("failed to move resource to %s: %w", a.To, err)
	}

	result := map[string]any{"to": a.To, "notified": false}

	if a.Notify {
		message := a.Message
		if a.Reason != "" {
			message = fmt.Sprintf("%s: %s", a.Message, a.Reason)
		}

		_, err := a.notifier.Send(ctx, []string{a.To}, []string{"in_app"}, message, "high")
		if err != nil {
			// The handover already happened. Report the notification
			// failure without undoing it.
			return result, fmt.Errorf("escalated but notification failed: %w", err)
		}

		result["notified"] = true
	}

	logger.InfoContext(ctx, "Escalated resource",
		"to", a.To, "resource_id", executionCtx.ResourceID, "notified", result["notified"])

	return result, nil
}
