package entities

import "time"

// Identity is the acting principal supplied by the authentication layer
type Identity struct {
	UserID    string
	Username  string
	AvatarURL string
}

// Account holds a user's wallet balance and match statistics
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	AvatarURL    string    `json:"avatarUrl,omitempty"`
	Balance      int64     `json:"balance"`
	TotalMatches int64     `json:"totalMatches"`
	Wins         int64     `json:"wins"`
	Losses       int64     `json:"losses"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

// CanAfford checks if the account balance covers amount
func (a *Account) CanAfford(amount int64) bool {
	return a.Balance >= amount
}

// WinRate returns wins over total matches, or 0 before the first match
func (a *Account) WinRate() float64 {
	if a.TotalMatches == 0 {
		return 0
	}
	return float64(a.Wins) / float64(a.TotalMatches)
}

// LedgerOp identifies a single balance mutation. Applying the same ID twice
// to an account is a no-op, which makes compensations and payouts retryable.
type LedgerOp struct {
	ID      string
	Type    TransactionType
	MatchID string
}
