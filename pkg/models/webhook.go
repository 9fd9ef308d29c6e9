package models

import "time"

const (
	DefaultWebhookMaxRetries        = 3
	DefaultWebhookRetryDelaySeconds = 5
)

// Webhook is a tenant-registered HTTP endpoint that receives signed event
// envelopes for the event types it subscribes to. Delivery counters are
// monotonic: exactly one increment per triggering event, never per attempt.
type Webhook struct {
	ID                string            `json:"id"`
	TenantID          string            `json:"tenant_id" validate:"required"`
	Name              string            `json:"name"      validate:"required,min=3"`
	URL               string            `json:"url"       validate:"required,url"`
	Events            []string          `json:"events"    validate:"required,min=1"`
	Active            bool              `json:"active"`
	Secret            string            `json:"secret,omitempty"`
	Headers           map[string]string `json:"headers,omitempty"`
	MaxRetries        int               `json:"max_retries"`
	RetryDelaySeconds int               `json:"retry_delay_seconds"`
	SuccessCount      int               `json:"success_count"`
	FailureCount      int               `json:"failure_count"`
	CreatedAt         time.Time         `json:"created_at"`
	LastTriggeredAt   *time.Time        `json:"last_triggered_at,omitempty"`
}

// SubscribesTo reports whether the webhook is subscribed to the given event
// type. A literal "*" subscription matches everything.
func (w *Webhook) SubscribesTo(eventType string) bool {
	for _, e := range w.Events {
		if e == eventType || e == "*" {
			return true
		}
	}

	return false
}
