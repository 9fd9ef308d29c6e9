// Package events defines the domain event envelope carried on the event bus.
package events

import (
	"time"

	"github.com/deskflow/deskflow/pkg/models"
)

// Topic is the event bus topic for helpdesk domain events.
const Topic = "deskflow.events"

const EventKeyMetadataKey = "key"
const EventTypeMetadataKey = "event_type"

// ResourceEvent is the envelope raised by the ticket/SLA/article services when
// something happened to a resource. The Resource field is the point-in-time
// snapshot used for condition evaluation; the engine never re-reads the
// resource during matching.
type ResourceEvent struct {
	ID           string                  `json:"id"`
	Type         models.TriggerType      `json:"type"`
	TenantID     string                  `json:"tenant_id"`
	ResourceType string                  `json:"resource_type"`
	ResourceID   string                  `json:"resource_id"`
	Resource     models.ResourceSnapshot `json:"resource"`
	Timestamp    time.Time               `json:"timestamp"`
	Metadata     map[string]any          `json:"metadata,omitempty"`
}

// GetType identifies the event on the bus. Trigger types double as event
// types so workflows subscribe by their trigger's type directly.
func (e ResourceEvent) GetType() models.TriggerType {
	return e.Type
}
