package infrastructure

import (
	"encoding/json"
	"fmt"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"
)

// DecodeEnvelope turns a NATS message back into the match event it carries.
// Only match lifecycle events are decodable; other envelopes return an error.
func DecodeEnvelope(data []byte) (events.Event, error) {
	var envelope EventEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to unmarshal event envelope: %w", err)
	}

	var event events.Event
	var err error
	switch events.EventType(envelope.EventType) {
	case events.EventTypeMatchCreated:
		event, err = decodePayload[events.MatchCreatedEvent](envelope.Payload)
	case events.EventTypeMatchJoined:
		event, err = decodePayload[events.MatchJoinedEvent](envelope.Payload)
	case events.EventTypeMatchSettled:
		event, err = decodePayload[events.MatchSettledEvent](envelope.Payload)
	case events.EventTypeMatchDisputed:
		event, err = decodePayload[events.MatchDisputedEvent](envelope.Payload)
	case events.EventTypeDisputeReported:
		event, err = decodePayload[events.DisputeReportedEvent](envelope.Payload)
	case events.EventTypeSettlementRecovered:
		event, err = decodePayload[events.SettlementRecoveredEvent](envelope.Payload)
	default:
		return nil, fmt.Errorf("unsupported event type %q", envelope.EventType)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s payload: %w", envelope.EventType, err)
	}
	return event, nil
}

func decodePayload[T events.Event](payload json.RawMessage) (events.Event, error) {
	var event T
	if err := json.Unmarshal(payload, &event); err != nil {
		return nil, err
	}
	return event, nil
}
