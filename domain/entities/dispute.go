package entities

import "time"

// DisputeReport records a participant's disagreement with a match outcome
type DisputeReport struct {
	MatchID        string      `json:"matchId"`
	ReporterID     string      `json:"reporterId"`
	ReportedWinner string      `json:"reportedWinner,omitempty"`
	RecordedWinner string      `json:"recordedWinner,omitempty"`
	StatusAtReport MatchStatus `json:"statusAtReport"`
	Reason         string      `json:"reason,omitempty"`
	CreatedAt      time.Time   `json:"createdAt"`
}

// FeeEntry is the platform's retained share of a settled match
type FeeEntry struct {
	MatchID   string    `json:"matchId"`
	Amount    int64     `json:"amount"`
	Pool      int64     `json:"pool"`
	CreatedAt time.Time `json:"createdAt"`
}
