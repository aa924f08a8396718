package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRankAccounts(t *testing.T) {
	accounts := []*Account{
		{ID: "u1", Username: "zed", Wins: 3, Losses: 3, TotalMatches: 6},
		{ID: "u2", Username: "amy", Wins: 5, Losses: 5, TotalMatches: 10},
		{ID: "u3", Username: "bea", Wins: 3, Losses: 1, TotalMatches: 4},
		{ID: "u4", Username: "cal", Wins: 0, Losses: 0, TotalMatches: 0},
		{ID: "u5", Username: "abe", Wins: 3, Losses: 3, TotalMatches: 6},
	}

	entries := RankAccounts(accounts, 0)
	require.Len(t, entries, 5)

	ids := make([]string, len(entries))
	for i, e := range entries {
		ids[i] = e.AccountID
		assert.Equal(t, i+1, e.Rank)
	}
	assert.Equal(t, []string{"u2", "u3", "u5", "u1", "u4"}, ids)
	assert.InDelta(t, 0.75, entries[1].WinRate, 1e-9)
	assert.Equal(t, float64(0), entries[4].WinRate)

	// Input order is untouched
	assert.Equal(t, "u1", accounts[0].ID)
}

func TestRankAccounts_Limit(t *testing.T) {
	accounts := []*Account{
		{ID: "a", Wins: 1, TotalMatches: 1},
		{ID: "b", Wins: 2, TotalMatches: 2},
		{ID: "c", Wins: 3, TotalMatches: 3},
	}

	entries := RankAccounts(accounts, 2)
	require.Len(t, entries, 2)
	assert.Equal(t, "c", entries[0].AccountID)
	assert.Equal(t, "b", entries[1].AccountID)

	assert.Empty(t, RankAccounts(nil, 10))
}
