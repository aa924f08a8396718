package entities

import "time"

// MatchStatus represents where a match is in its lifecycle
type MatchStatus string

const (
	MatchStatusOpen       MatchStatus = "open"
	MatchStatusInProgress MatchStatus = "in-progress"
	MatchStatusCompleted  MatchStatus = "completed"
	MatchStatusDisputed   MatchStatus = "disputed"
)

// IsTerminal reports whether no further transition can leave this status
func (s MatchStatus) IsTerminal() bool {
	return s == MatchStatusCompleted || s == MatchStatusDisputed
}

// PayoutStatus tracks the ledger effects that follow a settlement
type PayoutStatus string

const (
	PayoutStatusNone    PayoutStatus = "none"
	PayoutStatusPending PayoutStatus = "pending"
	PayoutStatusPaid    PayoutStatus = "paid"
)

// Match is a two-player contest with escrowed entry fees
type Match struct {
	ID            string       `json:"id"`
	EntryFee      int64        `json:"entryFee"`
	Player1ID     string       `json:"player1Id"`
	Player1Name   string       `json:"player1Name"`
	Player1Avatar string       `json:"player1Avatar,omitempty"`
	Player2ID     *string      `json:"player2Id,omitempty"`
	Player2Name   string       `json:"player2Name,omitempty"`
	Player2Avatar string       `json:"player2Avatar,omitempty"`
	Status        MatchStatus  `json:"status"`
	WinnerID      *string      `json:"winnerId,omitempty"`
	PayoutStatus  PayoutStatus `json:"payoutStatus"`
	Payout        int64        `json:"payout,omitempty"`
	PlatformFee   int64        `json:"platformFee,omitempty"`
	CreatedAt     time.Time    `json:"createdAt"`
	UpdatedAt     time.Time    `json:"updatedAt"`
}

// IsParticipant checks if a user is one of the match players
func (m *Match) IsParticipant(userID string) bool {
	if userID == "" {
		return false
	}
	return m.Player1ID == userID || (m.Player2ID != nil && *m.Player2ID == userID)
}

// GetOpponent returns the other player's id, or "" when userID is not a participant
func (m *Match) GetOpponent(userID string) string {
	switch {
	case m.Player2ID == nil:
		return ""
	case m.Player1ID == userID:
		return *m.Player2ID
	case *m.Player2ID == userID:
		return m.Player1ID
	}
	return ""
}

// Winner returns the winner id or ""
func (m *Match) Winner() string {
	if m.WinnerID == nil {
		return ""
	}
	return *m.WinnerID
}

// Player2 returns the joined player's id or ""
func (m *Match) Player2() string {
	if m.Player2ID == nil {
		return ""
	}
	return *m.Player2ID
}

// EscrowedAmount is the total stake currently held for this match
func (m *Match) EscrowedAmount() int64 {
	switch m.Status {
	case MatchStatusOpen:
		return m.EntryFee
	case MatchStatusInProgress, MatchStatusDisputed:
		return 2 * m.EntryFee
	}
	return 0
}
