package infrastructure

import (
	"fmt"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"
)

// SubjectPrefix roots every subject the arena publishes
const SubjectPrefix = "arena"

var subjectsByType = map[events.EventType]string{
	events.EventTypeAccountRegistered:   SubjectPrefix + ".accounts.registered",
	events.EventTypeBalanceChange:       SubjectPrefix + ".accounts.balance_changed",
	events.EventTypeMatchCreated:        SubjectPrefix + ".matches.created",
	events.EventTypeMatchJoined:         SubjectPrefix + ".matches.joined",
	events.EventTypeMatchSettled:        SubjectPrefix + ".matches.settled",
	events.EventTypeMatchDisputed:       SubjectPrefix + ".matches.disputed",
	events.EventTypeDisputeReported:     SubjectPrefix + ".matches.dispute_reported",
	events.EventTypeEscrowRefunded:      SubjectPrefix + ".escrow.refunded",
	events.EventTypeOperationRejected:   SubjectPrefix + ".operations.rejected",
	events.EventTypeSettlementRecovered: SubjectPrefix + ".matches.settlement_recovered",
}

// EventSubjectMapper handles mapping between domain events and NATS subjects
type EventSubjectMapper struct{}

// NewEventSubjectMapper creates a new event subject mapper
func NewEventSubjectMapper() *EventSubjectMapper {
	return &EventSubjectMapper{}
}

// MapEventToSubject converts a domain event to its NATS subject
func (m *EventSubjectMapper) MapEventToSubject(event events.Event) string {
	if subject, ok := subjectsByType[event.Type()]; ok {
		return subject
	}
	return fmt.Sprintf("%s.unknown.%s", SubjectPrefix, event.Type())
}

// MapSubjectToEventType converts a NATS subject back to an event type
func (m *EventSubjectMapper) MapSubjectToEventType(subject string) events.EventType {
	for eventType, s := range subjectsByType {
		if s == subject {
			return eventType
		}
	}
	return events.EventType(subject)
}

// StreamSubjects returns the subject filter for the arena stream
func (m *EventSubjectMapper) StreamSubjects() []string {
	return []string{SubjectPrefix + ".>"}
}
