package events

import (
	"errors"
	"fmt"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeAccountRegistered   EventType = "account_registered"
	EventTypeBalanceChange       EventType = "balance_change"
	EventTypeMatchCreated        EventType = "match_created"
	EventTypeMatchJoined         EventType = "match_joined"
	EventTypeMatchSettled        EventType = "match_settled"
	EventTypeMatchDisputed       EventType = "match_disputed"
	EventTypeDisputeReported     EventType = "dispute_reported"
	EventTypeEscrowRefunded      EventType = "escrow_refunded"
	EventTypeOperationRejected   EventType = "operation_rejected"
	EventTypeSettlementRecovered EventType = "settlement_recovered"
)

// Event is the base interface for all events. Message is the human-readable
// notification shown to the affected users.
type Event interface {
	Type() EventType
	Message() string
}

// AccountRegisteredEvent is emitted when a wallet is opened with its starting balance
type AccountRegisteredEvent struct {
	AccountID      string
	Username       string
	InitialBalance int64
}

func (e AccountRegisteredEvent) Type() EventType { return EventTypeAccountRegistered }

func (e AccountRegisteredEvent) Message() string {
	return fmt.Sprintf("Welcome %s! Your wallet starts with ₹%d", e.Username, e.InitialBalance)
}

// BalanceChangeEvent represents a balance change that was applied
type BalanceChangeEvent struct {
	AccountID       string
	OldBalance      int64
	NewBalance      int64
	ChangeAmount    int64
	TransactionType entities.TransactionType
	MatchID         string
}

func (e BalanceChangeEvent) Type() EventType { return EventTypeBalanceChange }

func (e BalanceChangeEvent) Message() string {
	if e.TransactionType == entities.TransactionTypeTopUp {
		return fmt.Sprintf("Funds added! ₹%d credited to your wallet", e.ChangeAmount)
	}
	return fmt.Sprintf("Balance updated: ₹%d → ₹%d", e.OldBalance, e.NewBalance)
}

// MatchCreatedEvent is emitted once a match is open and its creator's fee is escrowed
type MatchCreatedEvent struct {
	MatchID     string
	CreatorID   string
	CreatorName string
	EntryFee    int64
}

func (e MatchCreatedEvent) Type() EventType { return EventTypeMatchCreated }

func (e MatchCreatedEvent) Message() string {
	return fmt.Sprintf("Match created! Your ₹%d match is now open for others to join", e.EntryFee)
}

// MatchJoinedEvent is emitted when a second player takes the open seat
type MatchJoinedEvent struct {
	MatchID     string
	Player1ID   string
	Player1Name string
	Player2ID   string
	Player2Name string
	EntryFee    int64
}

func (e MatchJoinedEvent) Type() EventType { return EventTypeMatchJoined }

func (e MatchJoinedEvent) Message() string {
	return fmt.Sprintf("You joined a ₹%d match against %s", e.EntryFee, e.Player1Name)
}

// MatchSettledEvent is emitted after the winner has been paid
type MatchSettledEvent struct {
	MatchID  string
	WinnerID string
	LoserID  string
	EntryFee int64
	Payout   int64
	Fee      int64
}

func (e MatchSettledEvent) Type() EventType { return EventTypeMatchSettled }

func (e MatchSettledEvent) Message() string {
	return fmt.Sprintf("Victory! You won ₹%d", e.Payout)
}

// LoserMessage is the notification shown to the losing player
func (e MatchSettledEvent) LoserMessage() string {
	return "Defeat. Better luck next time!"
}

// MatchDisputedEvent is emitted when a match enters the disputed state
type MatchDisputedEvent struct {
	MatchID    string
	ReporterID string
	Reason     string
}

func (e MatchDisputedEvent) Type() EventType { return EventTypeMatchDisputed }

func (e MatchDisputedEvent) Message() string {
	return fmt.Sprintf("Result disputed for match %s; funds stay in escrow pending review", e.MatchID)
}

// DisputeReportedEvent is emitted when a conflicting report arrives after the
// match already reached a terminal state
type DisputeReportedEvent struct {
	MatchID        string
	ReporterID     string
	ReportedWinner string
	RecordedWinner string
	Status         entities.MatchStatus
}

func (e DisputeReportedEvent) Type() EventType { return EventTypeDisputeReported }

func (e DisputeReportedEvent) Message() string {
	return fmt.Sprintf("Result disputed: %s reported %s but the match is %s", e.ReporterID, e.ReportedWinner, e.Status)
}

// EscrowRefundedEvent is emitted when a reserved entry fee is returned by a compensating credit
type EscrowRefundedEvent struct {
	MatchID   string
	AccountID string
	Amount    int64
	Reason    string
}

func (e EscrowRefundedEvent) Type() EventType { return EventTypeEscrowRefunded }

func (e EscrowRefundedEvent) Message() string {
	return fmt.Sprintf("₹%d entry fee refunded: %s", e.Amount, e.Reason)
}

// OperationRejectedEvent reports a user-facing failure such as insufficient funds
type OperationRejectedEvent struct {
	UserID    string
	Operation string
	MatchID   string
	Err       error
}

func (e OperationRejectedEvent) Type() EventType { return EventTypeOperationRejected }

func (e OperationRejectedEvent) Message() string {
	switch {
	case e.Err == nil:
		return "Operation failed"
	case errors.Is(e.Err, entities.ErrInsufficientFunds):
		return "Insufficient funds"
	case errors.Is(e.Err, entities.ErrNotFound):
		return "Match not found"
	case errors.Is(e.Err, entities.ErrAlreadyFull):
		return "Match full"
	case errors.Is(e.Err, entities.ErrConflict):
		return "You cannot join your own match"
	case errors.Is(e.Err, entities.ErrInvalidEntryFee):
		return "Invalid entry fee"
	case errors.Is(e.Err, entities.ErrNotParticipant):
		return "Only match participants can do that"
	default:
		return e.Err.Error()
	}
}

// SettlementRecoveredEvent is emitted when the reconciler completes a pending payout
type SettlementRecoveredEvent struct {
	MatchID  string
	WinnerID string
	LoserID  string
	Payout   int64
	Fee      int64
}

func (e SettlementRecoveredEvent) Type() EventType { return EventTypeSettlementRecovered }

func (e SettlementRecoveredEvent) Message() string {
	return fmt.Sprintf("Victory! You won ₹%d", e.Payout)
}
