package services

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/persistence/file"
	"github.com/deskflow/deskflow/pkg/webhook"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newWebhookService(t *testing.T) (*Webhook, *file.Persistence) {
	t.Helper()

	p := file.NewPersistence(t.TempDir())
	deliverer := webhook.NewDeliverer(p.WebhookRepository(), testLogger())

	return NewWebhook(p, deliverer), p
}

func TestWebhookCreateDefaults(t *testing.T) {
	ctx := context.Background()
	service, _ := newWebhookService(t)

	created, err := service.Create(ctx, "tenant-1", &models.Webhook{
		Name:   "Billing sync",
		URL:    "https://billing.example.com/hooks",
		Events: []string{"ticket.created", "*"},
		Active: true,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, created.ID)
	assert.Equal(t, models.DefaultWebhookMaxRetries, created.MaxRetries)
	assert.Equal(t, models.DefaultWebhookRetryDelaySeconds, created.RetryDelaySeconds)
	assert.Zero(t, created.SuccessCount)
}

func TestWebhookCreateValidation(t *testing.T) {
	ctx := context.Background()
	service, _ := newWebhookService(t)

	_, err := service.Create(ctx, "tenant-1", &models.Webhook{
		URL:    "not-a-url",
		Events: []string{"ticket.exploded"},
	})
	require.Error(t, err)
	assert.True(t, IsValidationError(err))
}

func TestWebhookToggleAndTenantScope(t *testing.T) {
	ctx := context.Background()
	service, _ := newWebhookService(t)

	created, err := service.Create(ctx, "tenant-1", &models.Webhook{
		Name:   "Ops hook",
		URL:    "https://ops.example.com/hooks",
		Events: []string{"sla.breach"},
		Active: true,
	})
	require.NoError(t, err)

	toggled, err := service.Toggle(ctx, "tenant-1", created.ID)
	require.NoError(t, err)
	assert.False(t, toggled.Active)

	_, err = service.Toggle(ctx, "tenant-2", created.ID)
	assert.True(t, IsNotFound(err))
}

func TestWebhookTestDelivery(t *testing.T) {
	ctx := context.Background()
	service, p := newWebhookService(t)

	var gotContentType string

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotContentType = r.Header.Get("Content-Type")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	created, err := service.Create(ctx, "tenant-1", &models.Webhook{
		Name:   "Test target",
		URL:    server.URL,
		Events: []string{"ticket.created"},
		Active: true,
	})
	require.NoError(t, err)

	ok, err := service.Test(ctx, "tenant-1", created.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "application/json", gotContentType)

	loaded, err := p.WebhookRepository().GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, loaded.SuccessCount)
}
