package entities

import (
	"errors"
	"fmt"
)

// Error kinds surfaced by the arena. Callers match them with errors.Is.
var (
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrInvalidEntryFee   = errors.New("invalid entry fee")
	ErrNotFound          = errors.New("not found")
	ErrAlreadyFull       = errors.New("match already full")
	ErrConflict          = errors.New("cannot join your own match")
	ErrInvalidState      = errors.New("invalid match state for requested transition")
	ErrNotParticipant    = errors.New("not a participant in this match")

	ErrInvalidAmount     = errors.New("invalid amount")
	ErrAccountExists     = errors.New("account already exists")
	ErrSettlementPending = errors.New("match settled but payout is pending")
)

// ResultConflictError is returned when a result report arrives for a match that
// is no longer in progress. It unwraps to ErrInvalidState.
type ResultConflictError struct {
	MatchID        string
	ReporterID     string
	ReportedWinner string
	Status         MatchStatus
	RecordedWinner string

	// DisputeRaised is true when the report disagreed with the recorded outcome
	// and was escalated instead of being treated as a replay.
	DisputeRaised bool
}

func (e *ResultConflictError) Error() string {
	if e.DisputeRaised {
		return fmt.Sprintf("match %s is %s: conflicting result from %s raised a dispute", e.MatchID, e.Status, e.ReporterID)
	}
	return fmt.Sprintf("match %s is %s: result already recorded", e.MatchID, e.Status)
}

func (e *ResultConflictError) Unwrap() error {
	return ErrInvalidState
}
