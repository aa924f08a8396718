package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventDeliveryIntegration(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan MatchSettledEvent, 1)
	mainBus.Subscribe(EventTypeMatchSettled, func(ctx context.Context, event Event) {
		if settled, ok := event.(MatchSettledEvent); ok {
			eventReceived <- settled
		} else {
			t.Errorf("Expected MatchSettledEvent, got %T", event)
		}
	})

	testEvent := MatchSettledEvent{MatchID: "m1", WinnerID: "alice", LoserID: "bob", EntryFee: 10, Payout: 16, Fee: 4}
	transactionalBus.Publish(testEvent)
	assert.Equal(t, 1, transactionalBus.Pending())

	transactionalBus.Flush(context.Background())
	assert.Equal(t, 0, transactionalBus.Pending())

	select {
	case received := <-eventReceived:
		assert.Equal(t, testEvent, received)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestMultipleEventsDelivery(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	received := make(chan BalanceChangeEvent, 3)
	var wg sync.WaitGroup
	wg.Add(3)
	mainBus.Subscribe(EventTypeBalanceChange, func(ctx context.Context, event Event) {
		defer wg.Done()
		received <- event.(BalanceChangeEvent)
	})

	for _, id := range []string{"a", "b", "c"} {
		transactionalBus.Publish(BalanceChangeEvent{AccountID: id, OldBalance: 100, NewBalance: 90, ChangeAmount: -10, TransactionType: entities.TransactionTypeEntryFee})
	}
	transactionalBus.Flush(context.Background())
	wg.Wait()
	close(received)

	ids := map[string]bool{}
	for e := range received {
		ids[e.AccountID] = true
	}
	assert.Equal(t, map[string]bool{"a": true, "b": true, "c": true}, ids)
}

func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan Event, 1)
	mainBus.SubscribeAll(func(ctx context.Context, event Event) {
		eventReceived <- event
	})

	transactionalBus.Publish(MatchCreatedEvent{MatchID: "m1", CreatorID: "alice", EntryFee: 10})
	transactionalBus.Discard()
	transactionalBus.Flush(context.Background())

	select {
	case e := <-eventReceived:
		t.Fatalf("Event %s was received despite being discarded", e.Type())
	case <-time.After(100 * time.Millisecond):
	}
}

func TestBus_SubscribeAllAndPanicIsolation(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(2)
	bus.Subscribe(EventTypeMatchJoined, func(ctx context.Context, event Event) {
		defer wg.Done()
		panic("boom")
	})

	got := make(chan EventType, 1)
	bus.SubscribeAll(func(ctx context.Context, event Event) {
		defer wg.Done()
		got <- event.Type()
	})

	bus.Emit(context.Background(), MatchJoinedEvent{MatchID: "m1"})
	wg.Wait()

	require.Len(t, got, 1)
	assert.Equal(t, EventTypeMatchJoined, <-got)
}

func TestEventMessages(t *testing.T) {
	assert.Equal(t, "Victory! You won ₹16", MatchSettledEvent{Payout: 16}.Message())
	assert.Contains(t, MatchSettledEvent{}.LoserMessage(), "Defeat")
	assert.Equal(t, "Match created! Your ₹10 match is now open for others to join", MatchCreatedEvent{EntryFee: 10}.Message())
	assert.Equal(t, "You joined a ₹25 match against Alice", MatchJoinedEvent{EntryFee: 25, Player1Name: "Alice"}.Message())
	assert.Contains(t, BalanceChangeEvent{TransactionType: entities.TransactionTypeTopUp, ChangeAmount: 50}.Message(), "Funds added!")

	wrapped := errors.Join(errors.New("reserve failed"), entities.ErrInsufficientFunds)
	assert.Equal(t, "Insufficient funds", OperationRejectedEvent{Err: wrapped}.Message())
	assert.Equal(t, "Match not found", OperationRejectedEvent{Err: entities.ErrNotFound}.Message())
	assert.Equal(t, "Match full", OperationRejectedEvent{Err: entities.ErrAlreadyFull}.Message())
	assert.Equal(t, "Operation failed", OperationRejectedEvent{}.Message())
}
