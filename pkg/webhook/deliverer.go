// Package webhook delivers signed event envelopes to tenant-registered HTTP
// endpoints with bounded, fixed-delay retries.
package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
	"github.com/jonboulle/clockwork"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body, computed
// with the webhook's secret.
const SignatureHeader = "X-Deskflow-Signature"

const defaultRequestTimeout = 30 * time.Second

// Envelope is the JSON body POSTed to webhook endpoints.
type Envelope struct {
	Event     string         `json:"event"`
	Timestamp time.Time      `json:"timestamp"`
	Data      map[string]any `json:"data"`
	WebhookID string         `json:"webhook_id"`
}

// Deliverer sends envelopes and maintains per-webhook delivery counters.
// Delivery is fire-and-forget towards the domain: failures are counted and
// logged, never propagated to the triggering event.
type Deliverer struct {
	httpClient *http.Client
	webhooks   persistence.WebhookRepository
	clock      clockwork.Clock
	logger     *slog.Logger
}

func NewDeliverer(webhooks persistence.WebhookRepository, logger *slog.Logger) *Deliverer {
	return &Deliverer{
		httpClient: &http.Client{Timeout: defaultRequestTimeout},
		webhooks:   webhooks,
		clock:      clockwork.NewRealClock(),
		logger:     logger.With("module", "webhook_deliverer"),
	}
}

// WithClock replaces the clock, for deterministic retry timing in tests.
func (d *Deliverer) WithClock(clock clockwork.Clock) *Deliverer {
	d.clock = clock

	return d
}

// WithHTTPClient replaces the HTTP client.
func (d *Deliverer) WithHTTPClient(client *http.Client) *Deliverer {
	d.httpClient = client

	return d
}

// TriggerWebhooks fans an event out to every active webhook of the tenant
// subscribed to eventType, concurrently, and waits for all outcomes. One
// endpoint failing never affects the others.
func (d *Deliverer) TriggerWebhooks(ctx context.Context, tenantID, eventType string, payload map[string]any) {
	webhooks, err := d.webhooks.ListActiveForEvent(ctx, tenantID, eventType)
	if err != nil {
		d.logger.ErrorContext(ctx, "Failed to list webhooks for event",
			"tenant_id", tenantID, "event_type", eventType, "error", err)

		return
	}

	if len(webhooks) == 0 {
		return
	}

	tracer := otel.Tracer("deskflow/webhook")
	ctx, span := tracer.Start(ctx, "webhook.trigger")
	span.SetAttributes(
		attribute.String("event_type", eventType),
		attribute.Int("webhook_count", len(webhooks)),
	)
	defer span.End()

	var wg sync.WaitGroup

	for _, wh := range webhooks {
		wg.Add(1)

		go func(wh *models.Webhook) {
			defer wg.Done()

			d.Deliver(ctx, wh, eventType, payload)
		}(wh)
	}

	wg.Wait()
}

// Deliver sends one event to one registered webhook, retrying up to
// MaxRetries attempts with a fixed RetryDelaySeconds wait between attempts.
// Exactly one counter increment happens per call regardless of attempts.
func (d *Deliverer) Deliver(ctx context.Context, wh *models.Webhook, eventType string, payload map[string]any) bool {
	maxRetries := wh.MaxRetries
	if maxRetries <= 0 {
		maxRetries = models.DefaultWebhookMaxRetries
	}

	retryDelay := wh.RetryDelaySeconds
	if retryDelay <= 0 {
		retryDelay = models.DefaultWebhookRetryDelaySeconds
	}

	envelope := Envelope{
		Event:     eventType,
		Timestamp: d.clock.Now().UTC(),
		Data:      payload,
		WebhookID: wh.ID,
	}

	logger := d.logger.With("webhook_id", wh.ID, "url", wh.URL, "event_type", eventType)

	var lastErr error

attempts:
	for attempt := 1; attempt <= maxRetries; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				lastErr = ctx.Err()

				break attempts
			case <-d.clock.After(time.Duration(retryDelay) * time.Second):
			}
		}

		err := d.post(ctx, wh.URL, wh.Secret, wh.Headers, envelope)
		if err == nil {
			if recordErr := d.webhooks.RecordDelivery(ctx, wh.ID, true, d.clock.Now()); recordErr != nil {
				logger.WarnContext(ctx, "Failed to record webhook delivery", "error", recordErr)
			}

			return true
		}

		lastErr = err

		logger.WarnContext(ctx, "Webhook delivery attempt failed",
			"attempt", attempt, "max_retries", maxRetries, "error", err)
	}

	logger.ErrorContext(ctx, "Webhook delivery failed after retries", "error", lastErr)

	if recordErr := d.webhooks.RecordDelivery(ctx, wh.ID, false, d.clock.Now()); recordErr != nil {
		logger.WarnContext(ctx, "Failed to record webhook failure", "error", recordErr)
	}

	return false
}

// DeliverAdHoc POSTs a payload to an arbitrary URL the way webhook_call
// actions request it: single attempt, optional signing, no registered
// webhook and no counters.
func (d *Deliverer) DeliverAdHoc(ctx context.Context, url, method, secret string, headers map[string]string, payload map[string]any) error {
	if method == "" {
		method = http.MethodPost
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook payload: %w", err)
	}

	return d.send(ctx, method, url, secret, headers, body)
}

func (d *Deliverer) post(ctx context.Context, url, secret string, headers map[string]string, envelope Envelope) error {
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal webhook envelope: %w", err)
	}

	return d.send(ctx, http.MethodPost, url, secret, headers, body)
}

func (d *Deliverer) send(ctx context.Context, method, url, secret string, headers map[string]string, body []byte) error {
	req, err := http.NewRequestWithContext(ctx, method, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create webhook request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")

	for key, value := range headers {
		req.Header.Set(key, value)
	}

	if secret != "" {
		req.Header.Set(SignatureHeader, Sign(secret, body))
	}

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("webhook request failed: %w", err)
	}

	defer func() {
		if err := resp.Body.Close(); err != nil {
			d.logger.Warn("failed to close webhook response body", "error", err)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("webhook endpoint returned status %d", resp.StatusCode)
	}

	return nil
}

// Sign computes the hex HMAC-SHA256 of body with the given secret.
func Sign(secret string, body []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)

	return hex.EncodeToString(mac.Sum(nil))
}
