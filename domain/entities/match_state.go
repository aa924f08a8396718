package entities

import (
	"fmt"
	"time"
)

// MatchTransition names an edge of the match state machine
type MatchTransition string

const (
	TransitionJoin    MatchTransition = "join"
	TransitionSettle  MatchTransition = "settle"
	TransitionDispute MatchTransition = "dispute"
)

var matchTransitions = map[MatchStatus]map[MatchTransition]MatchStatus{
	MatchStatusOpen: {
		TransitionJoin: MatchStatusInProgress,
	},
	MatchStatusInProgress: {
		TransitionSettle:  MatchStatusCompleted,
		TransitionDispute: MatchStatusDisputed,
	},
}

// NextStatus returns the status reached by applying t in from
func NextStatus(from MatchStatus, t MatchTransition) (MatchStatus, error) {
	to, ok := matchTransitions[from][t]
	if !ok {
		return "", fmt.Errorf("%w: cannot %s a match that is %s", ErrInvalidState, t, from)
	}
	return to, nil
}

// CanTransition reports whether a single legal transition leads from one status to another
func CanTransition(from, to MatchStatus) bool {
	for _, next := range matchTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// ValidateEntryFee checks a proposed entry fee against the platform minimum
func ValidateEntryFee(entryFee, minimum int64) error {
	if entryFee <= 0 || entryFee < minimum {
		return fmt.Errorf("%w: %d is below the minimum of %d", ErrInvalidEntryFee, entryFee, minimum)
	}
	return nil
}

// ValidateJoin checks whether joinerID may take the open seat
func (m *Match) ValidateJoin(joinerID string) error {
	if m.Status != MatchStatusOpen || m.Player2ID != nil {
		return ErrAlreadyFull
	}
	if m.Player1ID == joinerID {
		return ErrConflict
	}
	return nil
}

// ValidateReporter checks that only a participant reports on the match
func (m *Match) ValidateReporter(reporterID string) error {
	if !m.IsParticipant(reporterID) {
		return ErrNotParticipant
	}
	return nil
}

// ValidateSettle checks that the match can be completed with winnerID
func (m *Match) ValidateSettle(winnerID string) error {
	if m.Status != MatchStatusInProgress {
		return fmt.Errorf("%w: match %s is %s", ErrInvalidState, m.ID, m.Status)
	}
	if !m.IsParticipant(winnerID) {
		return fmt.Errorf("%w: winner %s", ErrNotParticipant, winnerID)
	}
	return nil
}

// ValidateDispute checks that the match can be flagged as disputed
func (m *Match) ValidateDispute() error {
	if m.Status != MatchStatusInProgress {
		return fmt.Errorf("%w: match %s is %s", ErrInvalidState, m.ID, m.Status)
	}
	return nil
}

// ApplyJoin seats the joiner and starts the match
func (m *Match) ApplyJoin(joiner Identity, now time.Time) error {
	if err := m.ValidateJoin(joiner.UserID); err != nil {
		return err
	}
	next, err := NextStatus(m.Status, TransitionJoin)
	if err != nil {
		return err
	}

	id := joiner.UserID
	m.Player2ID = &id
	m.Player2Name = joiner.Username
	m.Player2Avatar = joiner.AvatarURL
	m.Status = next
	m.touch(now)
	return nil
}

// ApplySettle completes the match and marks its payout as pending
func (m *Match) ApplySettle(winnerID string, prize Prize, now time.Time) error {
	if err := m.ValidateSettle(winnerID); err != nil {
		return err
	}
	next, err := NextStatus(m.Status, TransitionSettle)
	if err != nil {
		return err
	}

	winner := winnerID
	m.WinnerID = &winner
	m.Status = next
	m.PayoutStatus = PayoutStatusPending
	m.Payout = prize.Payout
	m.PlatformFee = prize.Fee
	m.touch(now)
	return nil
}

// ApplyDispute moves the match to the terminal disputed state
func (m *Match) ApplyDispute(now time.Time) error {
	if err := m.ValidateDispute(); err != nil {
		return err
	}
	next, err := NextStatus(m.Status, TransitionDispute)
	if err != nil {
		return err
	}

	m.Status = next
	m.touch(now)
	return nil
}

// CheckInvariants verifies the field combinations allowed for the current status
func (m *Match) CheckInvariants() error {
	if m.EntryFee <= 0 {
		return fmt.Errorf("match %s: entry fee %d is not positive", m.ID, m.EntryFee)
	}
	if m.UpdatedAt.Before(m.CreatedAt) {
		return fmt.Errorf("match %s: updatedAt precedes createdAt", m.ID)
	}

	switch m.Status {
	case MatchStatusOpen:
		if m.Player2ID != nil || m.WinnerID != nil {
			return fmt.Errorf("match %s: open match has a second player or winner", m.ID)
		}
	case MatchStatusInProgress, MatchStatusDisputed:
		if m.Player2ID == nil || *m.Player2ID == m.Player1ID {
			return fmt.Errorf("match %s: %s match needs two distinct players", m.ID, m.Status)
		}
		if m.WinnerID != nil {
			return fmt.Errorf("match %s: %s match has a winner", m.ID, m.Status)
		}
	case MatchStatusCompleted:
		if m.WinnerID == nil || !m.IsParticipant(*m.WinnerID) {
			return fmt.Errorf("match %s: completed match winner is not a participant", m.ID)
		}
	default:
		return fmt.Errorf("match %s: unknown status %q", m.ID, m.Status)
	}
	return nil
}

// touch keeps UpdatedAt monotonically non-decreasing
func (m *Match) touch(now time.Time) {
	if now.After(m.UpdatedAt) {
		m.UpdatedAt = now
	}
}
