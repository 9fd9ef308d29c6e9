package file

import (
	"context"
	"sort"
	"time"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence"
)

const webhookKind = "webhooks"

// WebhookRepository stores registered webhooks as JSON files.
type WebhookRepository struct {
	store *Persistence
}

func (r *WebhookRepository) List(ctx context.Context, tenantID string) ([]*models.Webhook, error) {
	ids, err := r.store.listIDs(webhookKind)
	if err != nil {
		return nil, persistence.NewStoreError("List", "webhook", "", err)
	}

	webhooks := make([]*models.Webhook, 0, len(ids))

	for _, id := range ids {
		webhook, err := r.GetByID(ctx, id)
		if err != nil {
			return nil, err
		}

		if tenantID == "" || webhook.TenantID == tenantID {
			webhooks = append(webhooks, webhook)
		}
	}

	sort.SliceStable(webhooks, func(i, j int) bool {
		return webhooks[i].CreatedAt.Before(webhooks[j].CreatedAt)
	})

	return webhooks, nil
}

func (r *WebhookRepository) ListActiveForEvent(ctx context.Context, tenantID, eventType string) ([]*models.Webhook, error) {
	all, err := r.List(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	matching := make([]*models.Webhook, 0, len(all))

	for _, webhook := range all {
		if webhook.Active && webhook.SubscribesTo(eventType) {
			matching = append(matching, webhook)
		}
	}

	return matching, nil
}

func (r *WebhookRepository) GetByID(_ context.Context, id string) (*models.Webhook, error) {
	var webhook models.Webhook

	found, err := r.store.readEntity(webhookKind, id, &webhook)
	if err != nil {
		return nil, persistence.NewStoreError("GetByID", "webhook", id, err)
	}

	if !found {
		return nil, persistence.NewStoreError("GetByID", "webhook", id, persistence.ErrWebhookNotFound)
	}

	return &webhook, nil
}

func (r *WebhookRepository) Save(_ context.Context, webhook *models.Webhook) error {
	if err := r.store.writeEntity(webhookKind, webhook.ID, webhook); err != nil {
		return persistence.NewStoreError("Save", "webhook", webhook.ID, err)
	}

	return nil
}

func (r *WebhookRepository) Delete(ctx context.Context, id string) error {
	found, err := r.store.deleteEntity(webhookKind, id)
	if err != nil {
		return persistence.NewStoreError("Delete", "webhook", id, err)
	}

	if !found {
		return persistence.NewStoreError("Delete", "webhook", id, persistence.ErrWebhookNotFound)
	}

	return nil
}

// RecordDelivery increments exactly one counter per triggering event, under
// the store mutex.
func (r *WebhookRepository) RecordDelivery(ctx context.Context, webhookID string, success bool, at time.Time) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()

	webhook, err := r.GetByID(ctx, webhookID)
	if err != nil {
		return err
	}

	if success {
		webhook.SuccessCount++
		webhook.LastTriggeredAt = &at
	} else {
		webhook.FailureCount++
	}

	return r.Save(ctx, webhook)
}
