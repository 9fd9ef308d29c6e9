package services

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
	"github.com/deskflow/deskflow/pkg/webhook"
	"github.com/google/uuid"
)

// TestEventType is the synthetic event type sent by the test endpoint.
const TestEventType = "webhook.test"

// Webhook is the management service for the tenant webhook registry.
type Webhook struct {
	persistence persistence.Persistence
	deliverer   *webhook.Deliverer
}

func NewWebhook(p persistence.Persistence, deliverer *webhook.Deliverer) *Webhook {
	return &Webhook{persistence: p, deliverer: deliverer}
}

// List returns all webhooks of the tenant.
func (s *Webhook) List(ctx context.Context, tenantID string) ([]*models.Webhook, error) {
	return s.persistence.WebhookRepository().List(ctx, tenantID)
}

// Get returns one webhook of the tenant.
func (s *Webhook) Get(ctx context.Context, tenantID, id string) (*models.Webhook, error) {
	wh, err := s.persistence.WebhookRepository().GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if wh.TenantID != tenantID {
		return nil, persistence.NewStoreError("get", "webhook", id, persistence.ErrWebhookNotFound)
	}

	return wh, nil
}

// Create validates and registers a new webhook. Retry settings fall back to
// the defaults and delivery counters start at zero.
func (s *Webhook) Create(ctx context.Context, tenantID string, wh *models.Webhook) (*models.Webhook, error) {
	issues := validateWebhook(wh)
	if len(issues) > 0 {
		return nil, &ValidationError{Issues: issues}
	}

	wh.ID = uuid.New().String()
	wh.TenantID = tenantID
	wh.SuccessCount = 0
	wh.FailureCount = 0
	wh.LastTriggeredAt = nil
	wh.CreatedAt = time.Now().UTC()

	if wh.MaxRetries <= 0 {
		wh.MaxRetries = models.DefaultWebhookMaxRetries
	}

	if wh.RetryDelaySeconds <= 0 {
		wh.RetryDelaySeconds = models.DefaultWebhookRetryDelaySeconds
	}

	err := s.persistence.WebhookRepository().Save(ctx, wh)
	if err != nil {
		return nil, fmt.Errorf("failed to save webhook: %w", err)
	}

	return wh, nil
}

// Toggle flips a webhook between active and inactive.
func (s *Webhook) Toggle(ctx context.Context, tenantID, id string) (*models.Webhook, error) {
	wh, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return nil, err
	}

	wh.Active = !wh.Active

	err = s.persistence.WebhookRepository().Save(ctx, wh)
	if err != nil {
		return nil, fmt.Errorf("failed to save webhook: %w", err)
	}

	return wh, nil
}

// Delete removes a webhook registration.
func (s *Webhook) Delete(ctx context.Context, tenantID, id string) error {
	_, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return err
	}

	return s.persistence.WebhookRepository().Delete(ctx, id)
}

// Test sends a synthetic event through the normal delivery path, retries and
// counters included, and reports whether the endpoint accepted it.
func (s *Webhook) Test(ctx context.Context, tenantID, id string) (bool, error) {
	wh, err := s.Get(ctx, tenantID, id)
	if err != nil {
		return false, err
	}

	payload := map[string]any{
		"test":       true,
		"webhook_id": wh.ID,
		"message":    "Test delivery from the workflow engine",
	}

	return s.deliverer.Deliver(ctx, wh, TestEventType, payload), nil
}

func validateWebhook(wh *models.Webhook) []ValidationIssue {
	var issues []ValidationIssue

	if wh.Name == "" {
		issues = append(issues, ValidationIssue{Field: "name", Message: "name is required"})
	}

	parsed, err := url.Parse(wh.URL)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		issues = append(issues, ValidationIssue{Field: "url", Message: "a valid absolute URL is required"})
	} else if parsed.Scheme != "http" && parsed.Scheme != "https" {
		issues = append(issues, ValidationIssue{Field: "url", Message: "URL scheme must be http or https"})
	}

	if len(wh.Events) == 0 {
		issues = append(issues, ValidationIssue{Field: "events", Message: "at least one event subscription is required"})
	}

	for i, event := range wh.Events {
		if event == "*" {
			continue
		}

		if !knownTriggerType(models.TriggerType(event)) {
			issues = append(issues, ValidationIssue{
				Field:   fmt.Sprintf("events[%d]", i),
				Message: fmt.Sprintf("unknown event type %q", event),
			})
		}
	}

	return issues
}
