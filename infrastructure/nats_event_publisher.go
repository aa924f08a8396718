package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// StreamName is the JetStream stream holding arena events
const StreamName = "arena_events"

// MessagePublisher sends raw payloads to a subject
type MessagePublisher interface {
	Publish(ctx context.Context, subject string, data []byte) error
}

// EventEnvelope is the wire format of an event on NATS
type EventEnvelope struct {
	EventID       string          `json:"eventId"`
	EventType     string          `json:"eventType"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"sourceService"`
	Message       string          `json:"message"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventPublisher forwards bus events to NATS subjects
type NATSEventPublisher struct {
	client        MessagePublisher
	subjectMapper *EventSubjectMapper
	source        string
	now           func() time.Time
}

// NewNATSEventPublisher creates a new NATS event publisher
func NewNATSEventPublisher(client MessagePublisher, subjectMapper *EventSubjectMapper, source string) *NATSEventPublisher {
	return &NATSEventPublisher{
		client:        client,
		subjectMapper: subjectMapper,
		source:        source,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

// Publish wraps event in an envelope and publishes it on its subject
func (p *NATSEventPublisher) Publish(ctx context.Context, event events.Event) error {
	payload, err := json.Marshal(eventPayload(event))
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := EventEnvelope{
		EventID:       uuid.NewString(),
		EventType:     string(event.Type()),
		Timestamp:     p.now(),
		SourceService: p.source,
		Message:       event.Message(),
		Payload:       payload,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	subject := p.subjectMapper.MapEventToSubject(event)
	if err := p.client.Publish(ctx, subject, data); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Successfully published event to NATS")
	return nil
}

// Handle is an events.Handler that logs publish failures instead of returning them
func (p *NATSEventPublisher) Handle(ctx context.Context, event events.Event) {
	if err := p.Publish(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to forward event to NATS")
	}
}

// eventPayload flattens error values, which do not marshal on their own
func eventPayload(event events.Event) any {
	if rejected, ok := event.(events.OperationRejectedEvent); ok {
		reason := ""
		if rejected.Err != nil {
			reason = rejected.Err.Error()
		}
		return struct {
			UserID    string `json:"userId"`
			Operation string `json:"operation"`
			MatchID   string `json:"matchId,omitempty"`
			Reason    string `json:"reason"`
		}{rejected.UserID, rejected.Operation, rejected.MatchID, reason}
	}
	return event
}
