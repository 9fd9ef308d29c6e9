package postgresql

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
)

// WebhookRepository handles registered webhook database operations.
type WebhookRepository struct {
	db     *sql.DB
	logger *slog.Logger
}

const webhookColumns = `
	id
  , tenant_id
  , name
  , url
  , events
  , active
  , secret
  , headers
  , max_retries
  , retry_delay_seconds
  , success_count
  , failure_count
  , created_at
  , last_triggered_at
`

func (r *WebhookRepository) List(ctx context.Context, tenantID string) ([]*models.Webhook, error) {
	query := `SELECT ` + webhookColumns + `
		FROM webhooks
		WHERE tenant_id = $1
		ORDER BY created_at ASC`

	return r.queryWebhooks(ctx, query, tenantID)
}

// ListActiveForEvent matches subscriptions in SQL: the events JSONB array
// must contain the event type or the "*" wildcard.
func (r *WebhookRepository) ListActiveForEvent(ctx context.Context, tenantID, eventType string) ([]*models.Webhook, error) {
	query := `SELECT ` + webhookColumns + `
		FROM webhooks
		WHERE tenant_id = $1
		  AND active = TRUE
		  AND (events @> to_jsonb($2::text) OR events @> '"*"'::jsonb)
		ORDER BY created_at ASC`

	return r.queryWebhooks(ctx, query, tenantID, eventType)
}

func (r *WebhookRepository) queryWebhooks(ctx context.Context, query string, args ...any) ([]*models.Webhook, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query webhooks: %w", err)
	}

	defer func() {
		if err := rows.Close(); err != nil {
			r.logger.ErrorContext(ctx, "failed to close rows", "error", err)
		}
	}()

	webhooks := make([]*models.Webhook, 0)

	for rows.Next() {
		webhook, err := scanWebhook(rows)
		if err != nil {
			return nil, err
		}

		webhooks = append(webhooks, webhook)
	}

	return webhooks, rows.Err()
}

func (r *WebhookRepository) GetByID(ctx context.Context, id string) (*models.Webhook, error) {
	query := `SELECT ` + webhookColumns + ` FROM webhooks WHERE id = $1`

	webhook, err := scanWebhook(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, persistence.NewStoreError("GetByID", "webhook", id, persistence.ErrWebhookNotFound)
		}

		return nil, persistence.NewStoreError("GetByID", "webhook", id, err)
	}

	return webhook, nil
}

func (r *WebhookRepository) Save(ctx context.Context, webhook *models.Webhook) error {
	eventsJSON, err := json.Marshal(webhook.Events)
	if err != nil {
		return persistence.NewStoreError("Save", "webhook", webhook.ID, err)
	}

	headersJSON, err := json.Marshal(webhook.Headers)
	if err != nil {
		return persistence.NewStoreError("Save", "webhook", webhook.ID, err)
	}

	query := `
		INSERT INTO webhooks (` + webhookColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			url = EXCLUDED.url,
			events = EXCLUDED.events,
			active = EXCLUDED.active,
			secret = EXCLUDED.secret,
			headers = EXCLUDED.headers,
			max_retries = EXCLUDED.max_retries,
			retry_delay_seconds = EXCLUDED.retry_delay_seconds
	`

	_, err = r.db.ExecContext(ctx, query,
		webhook.ID,
		webhook.TenantID,
		webhook.Name,
		webhook.URL,
		eventsJSON,
		webhook.Active,
		webhook.Secret,
		headersJSON,
		webhook.MaxRetries,
		webhook.RetryDelaySeconds,
		webhook.SuccessCount,
		webhook.FailureCount,
		webhook.CreatedAt,
		webhook.LastTriggeredAt,
	)
	if err != nil {
		return persistence.NewStoreError("Save", "webhook", webhook.ID, err)
	}

	return nil
}

func (r *WebhookRepository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM webhooks WHERE id = $1`, id)
	if err != nil {
		return persistence.NewStoreError("Delete", "webhook", id, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("Delete", "webhook", id, err)
	}

	if affected == 0 {
		return persistence.NewStoreError("Delete", "webhook", id, persistence.ErrWebhookNotFound)
	}

	return nil
}

// RecordDelivery increments one counter per triggering event in a single
// atomic UPDATE.
func (r *WebhookRepository) RecordDelivery(ctx context.Context, webhookID string, success bool, at time.Time) error {
	query := `
		UPDATE webhooks
		SET success_count = success_count + CASE WHEN $2 THEN 1 ELSE 0 END,
			failure_count = failure_count + CASE WHEN $2 THEN 0 ELSE 1 END,
			last_triggered_at = CASE WHEN $2 THEN $3 ELSE last_triggered_at END
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, webhookID, success, at)
	if err != nil {
		return persistence.NewStoreError("RecordDelivery", "webhook", webhookID, err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return persistence.NewStoreError("RecordDelivery", "webhook", webhookID, err)
	}

	if affected == 0 {
		return persistence.NewStoreError("RecordDelivery", "webhook", webhookID, persistence.ErrWebhookNotFound)
	}

	return nil
}

func scanWebhook(row rowScanner) (*models.Webhook, error) {
	var (
		webhook         models.Webhook
		eventsJSON      []byte
		headersJSON     []byte
		lastTriggeredAt sql.NullTime
	)

	err := row.Scan(
		&webhook.ID,
		&webhook.TenantID,
		&webhook.Name,
		&webhook.URL,
		&eventsJSON,
		&webhook.Active,
		&webhook.Secret,
		&headersJSON,
		&webhook.MaxRetries,
		&webhook.RetryDelaySeconds,
		&webhook.SuccessCount,
		&webhook.FailureCount,
		&webhook.CreatedAt,
		&lastTriggeredAt,
	)
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal(eventsJSON, &webhook.Events); err != nil {
		return nil, fmt.Errorf("failed to unmarshal webhook events: %w", err)
	}

	if err := json.Unmarshal(headersJSON, &webhook.Headers); err != nil {
		return nil, fmt.Errorf("failed to unmarshal webhook headers: %w", err)
	}

	if lastTriggeredAt.Valid {
		webhook.LastTriggeredAt = &lastTriggeredAt.Time
	}

	return &webhook, nil
}
