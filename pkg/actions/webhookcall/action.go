// Package webhookcall implements the webhook_call workflow action: a one-off
// signed HTTP call to an arbitrary URL, outside the registered webhook
// subscriptions.
package webhookcall

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/deskflow/deskflow/pkg/models"
)

// ErrMissingURL is returned when the action has no target URL.
var ErrMissingURL = errors.New("missing webhook URL")

// Sender performs the signed HTTP delivery. Satisfied by webhook.Deliverer.
type Sender interface {
	DeliverAdHoc(ctx context.Context, url, method, secret string, headers map[string]string, payload map[string]any) error
}

// Action posts the action payload to URL. Unlike registered webhooks the call
// is attempted once; a failed call fails the action.
type Action struct {
	URL     string
	Method  string
	Secret  string
	Headers map[string]string
	Payload map[string]any

	sender Sender
}

func NewAction(params map[string]any, sender Sender) (*Action, error) {
	url, _ := params["url"].(string)
	if url == "" {
		return nil, ErrMissingURL
	}

	method, _ := params["method"].(string)
	if method == "" {
		method = http.MethodPost
	}

	secret, _ := params["secret"].(string)

	headers := make(map[string]string)

	if headersConfig, ok := params["headers"].(map[string]any); ok {
		for k, v := range headersConfig {
			if s, ok := v.(string); ok {
				headers[k] = s
			}
		}
	}

	payload := map[string]any{}
	if p, ok := params["payload"].(map[string]any); ok {
		payload = p
	}

	return &Action{
		URL:     url,
		Method:  strings.ToUpper(method),
		Secret:  secret,
		Headers: headers,
		Payload: payload,
		sender:  sender,
	}, nil
}

func (a *Action) Execute(ctx context.Context, executionCtx models.ExecutionContext, logger *slog.Logger) (any, error) {
	logger = logger.With("action_type", models.ActionWebhookCall)

	payload := a.Payload
	if len(payload) == 0 {
		payload = map[string]any{
			"resource_type": executionCtx.ResourceType,
			"resource_id":   executionCtx.ResourceID,
			"event_type":    executionCtx.EventType,
		}
	}

	err := a.sender.DeliverAdHoc(ctx, a.URL, a.Method, a.Secret, a.Headers, payload)
	if err != nil {
		return nil, fmt.Errorf("webhook call failed: %w", err)
	}

	logger.InfoContext(ctx, "Webhook call delivered", "url", a.URL, "method", a.Method)

	return map[string]any{"url": a.URL, "delivered": true}, nil
}
