package notify

import (
	"context"
	"io"
	"log/slog"
	"testing"

	"github.com/deskflow/deskflow/pkg/models"
	"github.com/deskflow/deskflow/pkg/protocol"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeNotifier struct {
	recipients []string
	channels   []string
	message    string
}

func (f *fakeNotifier) Send(_ context.Context, recipients, channels []string, message, _ string) (*protocol.NotificationResult, error) {
	f.recipients = recipients
	f.channels = channels
	f.message = message

	return &protocol.NotificationResult{Sent: true}, nil
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestSendNotificationDefaultsToInApp(t *testing.T) {
	notifier := &fakeNotifier{}

	action, err := NewNotificationFactory(notifier).Create(map[string]any{
		"recipients": []any{"agent-1", "agent-2"},
		"message":    "SLA at risk",
	})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), models.ExecutionContext{}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"agent-1", "agent-2"}, notifier.recipients)
	assert.Equal(t, []string{"in_app"}, notifier.channels)
}

func TestSendEmailForcesEmailChannel(t *testing.T) {
	notifier := &fakeNotifier{}

	action, err := NewEmailFactory(notifier).Create(map[string]any{
		"recipients": []any{"customer@example.com"},
		"subject":    "Your ticket was updated",
		"message":    "We are on it.",
		"channels":   []any{"sms"},
	})
	require.NoError(t, err)

	_, err = action.Execute(context.Background(), models.ExecutionContext{}, testLogger())
	require.NoError(t, err)

	assert.Equal(t, []string{"email"}, notifier.channels)
	assert.Equal(t, "Your ticket was updated\n\nWe are on it.", notifier.message)
}

func TestSendNotificationRequiresRecipients(t *testing.T) {
	_, err := NewNotificationFactory(&fakeNotifier{}).Create(map[string]any{"message": "hello"})
	require.ErrorIs(t, err, ErrNoRecipients)
}
