// Package eventbus carries domain events between the helpdesk services and
// the workflow engine.
package eventbus

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/deskflow/deskflow/pkg/events"
)

// Handler processes one domain event. Returning an error nacks the message.
type Handler func(ctx context.Context, event *events.ResourceEvent) error

type EventBus interface {
	Publish(ctx context.Context, event *events.ResourceEvent) error
	Subscribe(ctx context.Context, handler Handler) error
	Close() error
}

// WatermillEventBus is the single EventBus implementation; the channel
// (in-memory or Kafka) decides the delivery scope.
type WatermillEventBus struct {
	publisher  message.Publisher
	subscriber message.Subscriber
	logger     *slog.Logger
}

func NewWatermillEventBus(publisher message.Publisher, subscriber message.Subscriber, logger *slog.Logger) *WatermillEventBus {
	return &WatermillEventBus{
		publisher:  publisher,
		subscriber: subscriber,
		logger:     logger.With("module", "eventbus"),
	}
}

// Publish serializes the event onto the domain events topic. The resource ID
// keys the message so events of one resource stay ordered per partition.
func (b *WatermillEventBus) Publish(_ context.Context, event *events.ResourceEvent) error {
	if event.ID == "" {
		event.ID = watermill.NewULID()
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}

	msg := message.NewMessage(watermill.NewUUID(), payload)
	msg.Metadata.Set(events.EventKeyMetadataKey, event.ResourceID)
	msg.Metadata.Set(events.EventTypeMetadataKey, string(event.Type))

	return b.publisher.Publish(events.Topic, msg)
}

// Subscribe consumes the domain events topic and feeds each decoded event to
// the handler. Malformed payloads are acked and dropped: redelivery cannot
// fix them.
func (b *WatermillEventBus) Subscribe(ctx context.Context, handler Handler) error {
	messages, err := b.subscriber.Subscribe(ctx, events.Topic)
	if err != nil {
		return err
	}

	go func() {
		for msg := range messages {
			var event events.ResourceEvent

			err := json.Unmarshal(msg.Payload, &event)
			if err != nil {
				b.logger.Error("Dropping malformed event", "message_id", msg.UUID, "error", err)
				msg.Ack()

				continue
			}

			err = handler(ctx, &event)
			if err != nil {
				b.logger.Error("Event handler failed", "message_id", msg.UUID, "event_type", event.Type, "error", err)
				msg.Nack()

				continue
			}

			msg.Ack()
		}
	}()

	return nil
}

func (b *WatermillEventBus) Close() error {
	err := b.publisher.Close()
	if err != nil {
		return err
	}

	return b.subscriber.Close()
}
