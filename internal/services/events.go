package services

import (
	"encoding/json"
	"time"

	"go.uber.org/zap"
)

// Routing keys of the marketplace events.
const (
	EventUserRegistered     = "user.registered"
	EventAccountProvisioned = "account.provisioned"
	EventProductCreated     = "product.created"
	EventProductUpdated     = "product.updated"
	EventProductDeleted     = "product.deleted"
	EventAdvicePublished    = "advice.published"
)

// EventPublisher sends an encoded event. *rabbitmq.Client satisfies it.
type EventPublisher interface {
	Publish(routingKey string, body []byte) error
}

// Event is the JSON payload published for every state change.
type Event struct {
	Type       string    `json:"type"`
	EntityID   string    `json:"entityId"`
	ActorID    string    `json:"actorId,omitempty"`
	Role       string    `json:"role,omitempty"`
	OccurredAt time.Time `json:"occurredAt"`
}

// emit publishes best-effort: the write already succeeded, so a broker
// failure is logged and never surfaced to the caller. A nil publisher
// disables publication.
func emit(pub EventPublisher, log *zap.Logger, evt Event) {
	if pub == nil {
		return
	}
	evt.OccurredAt = time.Now().UTC()
	body, err := json.Marshal(evt)
	if err != nil {
		log.Warn("failed to marshal event", zap.String("type", evt.Type), zap.Error(err))
		return
	}
	if err := pub.Publish(evt.Type, body); err != nil {
		log.Warn("failed to publish event",
			zap.String("type", evt.Type),
			zap.String("entity_id", evt.EntityID),
			zap.Error(err),
		)
	}
}
