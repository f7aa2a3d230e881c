package services

import (
	"context"
	"encoding/json"
	"log"
)

const (
	TopicPropertyCreated = "property.created"
	TopicPropertyDeleted = "property.deleted"
	TopicPaymentUpdated  = "payment.updated"
	TopicSessionChanged  = "session.changed"
)

// EventPublisher forwards domain events to an external sink. Callers log
// publish failures and carry on.
type EventPublisher interface {
	Publish(ctx context.Context, topic string, payload any) error
}

// LogPublisher writes events to the process log.
type LogPublisher struct{}

func (LogPublisher) Publish(_ context.Context, topic string, payload any) error {
	encoded, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	log.Printf("event %s: %s", topic, encoded)
	return nil
}

func publishEvent(ctx context.Context, publisher EventPublisher, topic string, payload any) {
	if publisher == nil {
		return
	}
	if err := publisher.Publish(ctx, topic, payload); err != nil {
		log.Printf("events: publish %s failed: %v", topic, err)
	}
}
