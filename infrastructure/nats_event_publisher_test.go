package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type publishedMessage struct {
	subject string
	data    []byte
}

// MockMessagePublisher records published payloads
type MockMessagePublisher struct {
	mu           sync.Mutex
	Messages     []publishedMessage
	PublishError error
}

func (m *MockMessagePublisher) Publish(_ context.Context, subject string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.PublishError != nil {
		return m.PublishError
	}
	m.Messages = append(m.Messages, publishedMessage{subject: subject, data: data})
	return nil
}

func TestEventSubjectMapper(t *testing.T) {
	mapper := NewEventSubjectMapper()

	tests := []struct {
		event   events.Event
		subject string
	}{
		{events.MatchCreatedEvent{}, "arena.matches.created"},
		{events.MatchSettledEvent{}, "arena.matches.settled"},
		{events.BalanceChangeEvent{}, "arena.accounts.balance_changed"},
		{events.EscrowRefundedEvent{}, "arena.escrow.refunded"},
		{events.OperationRejectedEvent{}, "arena.operations.rejected"},
	}
	for _, tt := range tests {
		t.Run(string(tt.event.Type()), func(t *testing.T) {
			subject := mapper.MapEventToSubject(tt.event)
			assert.Equal(t, tt.subject, subject)
			assert.Equal(t, tt.event.Type(), mapper.MapSubjectToEventType(subject))
		})
	}

	assert.Equal(t, []string{"arena.>"}, mapper.StreamSubjects())
}

func TestNATSEventPublisher_Publish(t *testing.T) {
	client := &MockMessagePublisher{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), "arena-test")

	err := publisher.Publish(context.Background(), events.MatchSettledEvent{
		MatchID:  "m1",
		WinnerID: "alice",
		LoserID:  "bob",
		EntryFee: 10,
		Payout:   16,
		Fee:      4,
	})
	require.NoError(t, err)
	require.Len(t, client.Messages, 1)
	assert.Equal(t, "arena.matches.settled", client.Messages[0].subject)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(client.Messages[0].data, &envelope))
	assert.NotEmpty(t, envelope.EventID)
	assert.Equal(t, "match_settled", envelope.EventType)
	assert.Equal(t, "arena-test", envelope.SourceService)
	assert.Equal(t, "Victory! You won ₹16", envelope.Message)

	var payload events.MatchSettledEvent
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "alice", payload.WinnerID)
	assert.Equal(t, int64(16), payload.Payout)
}

func TestNATSEventPublisher_RejectionCarriesReason(t *testing.T) {
	client := &MockMessagePublisher{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), "arena-test")

	err := publisher.Publish(context.Background(), events.OperationRejectedEvent{
		UserID:    "carol",
		Operation: "create_match",
		Err:       entities.ErrInsufficientFunds,
	})
	require.NoError(t, err)

	var envelope EventEnvelope
	require.NoError(t, json.Unmarshal(client.Messages[0].data, &envelope))

	var payload map[string]string
	require.NoError(t, json.Unmarshal(envelope.Payload, &payload))
	assert.Equal(t, "insufficient funds", payload["reason"])
	assert.Equal(t, "Insufficient funds", envelope.Message)
}

func TestNATSEventPublisher_PublishError(t *testing.T) {
	client := &MockMessagePublisher{PublishError: errors.New("no responders")}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), "arena-test")

	err := publisher.Publish(context.Background(), events.MatchCreatedEvent{MatchID: "m1"})
	assert.ErrorContains(t, err, "no responders")

	assert.NotPanics(t, func() {
		publisher.Handle(context.Background(), events.MatchCreatedEvent{MatchID: "m1"})
	})
}

type sentMessage struct {
	channelID string
	content   string
}

type fakeMessenger struct {
	mu   sync.Mutex
	sent []sentMessage
	err  error
}

func (f *fakeMessenger) ChannelMessageSend(channelID string, content string, _ ...discordgo.RequestOption) (*discordgo.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.err != nil {
		return nil, f.err
	}
	f.sent = append(f.sent, sentMessage{channelID: channelID, content: content})
	return &discordgo.Message{ChannelID: channelID, Content: content}, nil
}

func TestDiscordNotifier_Handle(t *testing.T) {
	messenger := &fakeMessenger{}
	notifier := NewDiscordNotifier(messenger, "chan-1")
	ctx := context.Background()

	notifier.Handle(ctx, events.MatchCreatedEvent{MatchID: "m1", CreatorName: "alice", EntryFee: 25})
	notifier.Handle(ctx, events.MatchSettledEvent{MatchID: "m1", WinnerID: "123", Payout: 40})
	notifier.Handle(ctx, events.BalanceChangeEvent{AccountID: "alice"})

	require.Len(t, messenger.sent, 2)
	assert.Equal(t, "chan-1", messenger.sent[0].channelID)
	assert.Contains(t, messenger.sent[0].content, "**alice** opened a ₹25 match")
	assert.Contains(t, messenger.sent[1].content, "<@123> won ₹40")
}

func TestDiscordNotifier_SendFailureIsLogged(t *testing.T) {
	notifier := NewDiscordNotifier(&fakeMessenger{err: errors.New("rate limited")}, "chan-1")
	assert.NotPanics(t, func() {
		notifier.Handle(context.Background(), events.MatchDisputedEvent{MatchID: "m1"})
	})
}

func TestDecodeEnvelope_RoundTrip(t *testing.T) {
	client := &MockMessagePublisher{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), "arena-test")

	original := events.MatchJoinedEvent{
		MatchID:     "m1",
		Player1ID:   "alice",
		Player1Name: "Alice",
		Player2ID:   "bob",
		Player2Name: "Bob",
		EntryFee:    10,
	}
	require.NoError(t, publisher.Publish(context.Background(), original))

	decoded, err := DecodeEnvelope(client.Messages[0].data)
	require.NoError(t, err)
	assert.Equal(t, original, decoded)
}

func TestDecodeEnvelope_Unsupported(t *testing.T) {
	client := &MockMessagePublisher{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), "arena-test")
	require.NoError(t, publisher.Publish(context.Background(), events.BalanceChangeEvent{AccountID: "alice"}))

	_, err := DecodeEnvelope(client.Messages[0].data)
	assert.ErrorContains(t, err, "unsupported event type")

	_, err = DecodeEnvelope([]byte("{"))
	assert.ErrorContains(t, err, "failed to unmarshal event envelope")
}

func TestDiscordNotifier_HandleMessage(t *testing.T) {
	client := &MockMessagePublisher{}
	publisher := NewNATSEventPublisher(client, NewEventSubjectMapper(), "arena-test")
	require.NoError(t, publisher.Publish(context.Background(), events.SettlementRecoveredEvent{MatchID: "m1", WinnerID: "42", Payout: 16}))
	require.NoError(t, publisher.Publish(context.Background(), events.AccountRegisteredEvent{AccountID: "alice"}))

	messenger := &fakeMessenger{}
	notifier := NewDiscordNotifier(messenger, "chan-1")

	require.NoError(t, notifier.HandleMessage(context.Background(), client.Messages[0].data))
	require.NoError(t, notifier.HandleMessage(context.Background(), client.Messages[1].data))
	require.Len(t, messenger.sent, 1)
	assert.Contains(t, messenger.sent[0].content, "<@42> won ₹16")

	messenger.err = errors.New("discord down")
	assert.ErrorContains(t, notifier.HandleMessage(context.Background(), client.Messages[0].data), "discord down")
}
