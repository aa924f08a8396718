package entities

import "sort"

// LeaderboardEntry is one ranked row of the leaderboard projection
type LeaderboardEntry struct {
	Rank         int     `json:"rank"`
	AccountID    string  `json:"accountId"`
	Username     string  `json:"username"`
	AvatarURL    string  `json:"avatarUrl,omitempty"`
	Wins         int64   `json:"wins"`
	Losses       int64   `json:"losses"`
	TotalMatches int64   `json:"totalMatches"`
	WinRate      float64 `json:"winRate"`
}

// RankAccounts orders accounts by wins, then win rate, then username and
// returns at most limit entries. A non-positive limit returns all of them.
func RankAccounts(accounts []*Account, limit int) []LeaderboardEntry {
	sorted := make([]*Account, len(accounts))
	copy(sorted, accounts)

	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i], sorted[j]
		if a.Wins != b.Wins {
			return a.Wins > b.Wins
		}
		if ar, br := a.WinRate(), b.WinRate(); ar != br {
			return ar > br
		}
		if a.Username != b.Username {
			return a.Username < b.Username
		}
		return a.ID < b.ID
	})

	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}

	entries := make([]LeaderboardEntry, len(sorted))
	for i, a := range sorted {
		entries[i] = LeaderboardEntry{
			Rank:         i + 1,
			AccountID:    a.ID,
			Username:     a.Username,
			AvatarURL:    a.AvatarURL,
			Wins:         a.Wins,
			Losses:       a.Losses,
			TotalMatches: a.TotalMatches,
			WinRate:      a.WinRate(),
		}
	}
	return entries
}

// PlatformStats summarises the arena for operators
type PlatformStats struct {
	TotalAccounts   int                 `json:"totalAccounts"`
	TotalBalance    int64               `json:"totalBalance"`
	MatchesByStatus map[MatchStatus]int `json:"matchesByStatus"`
	EscrowHeld      int64               `json:"escrowHeld"`
	FeesCollected   int64               `json:"feesCollected"`
	PendingPayouts  int                 `json:"pendingPayouts"`
	DisputedMatches int                 `json:"disputedMatches"`
	DisputeReports  int                 `json:"disputeReports"`
}
