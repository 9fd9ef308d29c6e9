// Package notify implements the send_notification and send_email workflow
// actions on top of the shared notification service.
package notify

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
)

var (
	// ErrNoRecipients is returned when the action names nobody to notify.
	ErrNoRecipients = errors.New("no recipients configured")
	// ErrEmptyMessage is returned when there is nothing to send.
	ErrEmptyMessage = errors.New("empty message")
)

// Action sends a message to recipients. The channel set distinguishes
// send_notification (configurable) from send_email (always email).
type Action struct {
	Type       models.ActionType
	Recipients []string
	Channels   []string
	Message    string
	Subject    string
	Priority   string

	notifier protocol.Notifier
}

func NewAction(actionType models.ActionType, params map[string]any, notifier protocol.Notifier) (*Action, error) {
	recipients := stringSlice(params["recipients"])
	if len(recipients) == 0 {
		return nil, ErrNoRecipients
	}

	message, _ := params["message"].(string)
	if message == "" {
		message, _ = params["body"].(string)
	}

	if message == "" {
		return nil, ErrEmptyMessage
	}

	channels := stringSlice(params["channels"])
	if actionType == models.ActionSendEmail {
		channels = []string{"email"}
	} else if len(channels) == 0 {
		channels = []string{"in_app"}
	}

	subject, _ := params["subject"].(string)
	priority, _ := params["priority"].(string)

	return &Action{
		Type:       actionType,
		Recipients: recipients,
		Channels:   channels,
		Message:    message,
		Subject:    subject,
		Priority:   priority,
		notifier:   notifier,
	}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", a.Type)

	message := a.Message
	if a.Subject != "" {
		message = a.Subject + "\n\n" + message
	}

	result, err := a.notifier.Send(ctx, a.Recipients, a.Channels, message, a.Priority)
	if err != nil {
		return nil, fmt.Errorf("notification delivery failed: %w", err)
	}

	logger.InfoContext(ctx, "Notification sent",
		"recipients", len(a.Recipients),
		"channels", a.Channels,
		"resource_id", executionCtx.ResourceID)

	return result, nil
}

func stringSlice(value any) []string {
	switch v := value.(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))

		for _, item := range v {
			if s, ok := item.(string); ok && s != "" {
				out = append(out, s)
			}
		}

		return out
	case string:
		if v == "" {
			return nil
		}

		return []string{v}
	default:
		return nil
	}
}
