package repository_test

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/repository"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/repository/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMatchRegistry_Create(t *testing.T) {
	ctx := context.Background()
	repos, _ := testutil.NewMemoryRepositories(t, 10)

	t.Run("opens match", func(t *testing.T) {
		match, err := repos.Matches.Create(ctx, testutil.CreateTestIdentity("alice"), 50)
		require.NoError(t, err)
		assert.NotEmpty(t, match.ID)
		assert.Equal(t, entities.MatchStatusOpen, match.Status)
		assert.Equal(t, entities.PayoutStatusNone, match.PayoutStatus)
		assert.Equal(t, "player-alice", match.Player1Name)
		assert.Nil(t, match.Player2ID)
		assert.NoError(t, match.CheckInvariants())

		stored, err := repos.Matches.Get(ctx, match.ID)
		require.NoError(t, err)
		assert.Equal(t, match.ID, stored.ID)
	})

	t.Run("fee below minimum", func(t *testing.T) {
		_, err := repos.Matches.Create(ctx, testutil.CreateTestIdentity("alice"), 9)
		assert.ErrorIs(t, err, entities.ErrInvalidEntryFee)
	})
}

func TestMatchRegistry_Lifecycle(t *testing.T) {
	ctx := context.Background()
	repos, _ := testutil.NewMemoryRepositories(t, 10)

	match, err := repos.Matches.Create(ctx, testutil.CreateTestIdentity("alice"), 50)
	require.NoError(t, err)

	_, err = repos.Matches.Join(ctx, match.ID, testutil.CreateTestIdentity("alice"))
	assert.ErrorIs(t, err, entities.ErrConflict)

	joined, err := repos.Matches.Join(ctx, match.ID, testutil.CreateTestIdentity("bob"))
	require.NoError(t, err)
	assert.Equal(t, entities.MatchStatusInProgress, joined.Status)
	assert.Equal(t, "bob", joined.Player2())

	_, err = repos.Matches.Join(ctx, match.ID, testutil.CreateTestIdentity("carol"))
	assert.ErrorIs(t, err, entities.ErrAlreadyFull)

	_, err = repos.Matches.Settle(ctx, match.ID, "carol", entities.CalculatePrize(50, 20))
	assert.ErrorIs(t, err, entities.ErrNotParticipant)

	_, _, err = repos.Matches.MarkPaid(ctx, match.ID)
	assert.ErrorIs(t, err, entities.ErrInvalidState)

	settled, err := repos.Matches.Settle(ctx, match.ID, "bob", entities.CalculatePrize(50, 20))
	require.NoError(t, err)
	assert.Equal(t, entities.MatchStatusCompleted, settled.Status)
	assert.Equal(t, entities.PayoutStatusPending, settled.PayoutStatus)
	assert.Equal(t, int64(80), settled.Payout)
	assert.Equal(t, int64(20), settled.PlatformFee)
	assert.NoError(t, settled.CheckInvariants())

	pending, err := repos.Matches.ListPendingPayouts(ctx)
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, match.ID, pending[0].ID)

	_, err = repos.Matches.Settle(ctx, match.ID, "alice", entities.CalculatePrize(50, 20))
	assert.ErrorIs(t, err, entities.ErrInvalidState)

	_, err = repos.Matches.FlagDispute(ctx, match.ID)
	assert.ErrorIs(t, err, entities.ErrInvalidState)

	for i := 0; i < 2; i++ {
		paid, marked, err := repos.Matches.MarkPaid(ctx, match.ID)
		require.NoError(t, err)
		assert.Equal(t, entities.PayoutStatusPaid, paid.PayoutStatus)
		assert.Equal(t, i == 0, marked, "only the first call marks the match paid")
	}

	pending, err = repos.Matches.ListPendingPayouts(ctx)
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestMatchRegistry_FlagDispute(t *testing.T) {
	ctx := context.Background()
	repos, _ := testutil.NewMemoryRepositories(t, 10)

	match, err := repos.Matches.Create(ctx, testutil.CreateTestIdentity("alice"), 10)
	require.NoError(t, err)

	_, err = repos.Matches.FlagDispute(ctx, match.ID)
	assert.ErrorIs(t, err, entities.ErrInvalidState)

	_, err = repos.Matches.Join(ctx, match.ID, testutil.CreateTestIdentity("bob"))
	require.NoError(t, err)

	disputed, err := repos.Matches.FlagDispute(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.MatchStatusDisputed, disputed.Status)
	assert.Nil(t, disputed.WinnerID)

	_, err = repos.Matches.Settle(ctx, match.ID, "bob", entities.CalculatePrize(10, 20))
	assert.ErrorIs(t, err, entities.ErrInvalidState)
}

func TestMatchRegistry_RefusesToStoreCorruptMatch(t *testing.T) {
	ctx := context.Background()
	repos, store := testutil.NewMemoryRepositories(t, 10)

	bob := "bob"
	now := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	corrupt := entities.Match{
		ID:           "broken",
		EntryFee:     0,
		Player1ID:    "alice",
		Player2ID:    &bob,
		Status:       entities.MatchStatusInProgress,
		PayoutStatus: entities.PayoutStatusNone,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	data, err := json.Marshal(corrupt)
	require.NoError(t, err)
	_, err = store.Put(ctx, "match/broken", data)
	require.NoError(t, err)

	_, err = repos.Matches.Settle(ctx, "broken", "alice", entities.CalculatePrize(10, 20))
	assert.ErrorIs(t, err, repository.ErrCorruptMatch)

	stored, err := repos.Matches.Get(ctx, "broken")
	require.NoError(t, err)
	assert.Equal(t, entities.MatchStatusInProgress, stored.Status)
	assert.Nil(t, stored.WinnerID)
}

func TestMatchRegistry_ConcurrentJoinSingleWinner(t *testing.T) {
	ctx := context.Background()
	repos, _ := testutil.NewMemoryRepositories(t, 10)

	match, err := repos.Matches.Create(ctx, testutil.CreateTestIdentity("alice"), 10)
	require.NoError(t, err)

	const joiners = 12
	var wg sync.WaitGroup
	results := make([]error, joiners)
	for i := 0; i < joiners; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = repos.Matches.Join(ctx, match.ID, testutil.CreateTestIdentity(fmt.Sprintf("joiner-%d", i)))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.ErrorIs(t, err, entities.ErrAlreadyFull)
	}
	assert.Equal(t, 1, wins)

	stored, err := repos.Matches.Get(ctx, match.ID)
	require.NoError(t, err)
	assert.Equal(t, entities.MatchStatusInProgress, stored.Status)
	assert.NoError(t, stored.CheckInvariants())
}

func TestMatchRegistry_Listings(t *testing.T) {
	ctx := context.Background()
	repos, _ := testutil.NewMemoryRepositories(t, 10)

	first, err := repos.Matches.Create(ctx, testutil.CreateTestIdentity("alice"), 10)
	require.NoError(t, err)
	second, err := repos.Matches.Create(ctx, testutil.CreateTestIdentity("bob"), 20)
	require.NoError(t, err)
	third, err := repos.Matches.Create(ctx, testutil.CreateTestIdentity("carol"), 30)
	require.NoError(t, err)

	_, err = repos.Matches.Join(ctx, third.ID, testutil.CreateTestIdentity("alice"))
	require.NoError(t, err)

	open, err := repos.Matches.ListOpen(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, open, 1)
	assert.Equal(t, second.ID, open[0].ID)

	mine, err := repos.Matches.ListForUser(ctx, "alice")
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, third.ID, mine[0].ID)
	assert.Equal(t, first.ID, mine[1].ID)

	all, err := repos.Matches.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFeeLedgerAndDisputes(t *testing.T) {
	ctx := context.Background()
	repos, _ := testutil.NewMemoryRepositories(t, 10)

	require.NoError(t, repos.Fees.Record(ctx, &entities.FeeEntry{MatchID: "m1", Amount: 20, Pool: 100}))
	require.NoError(t, repos.Fees.Record(ctx, &entities.FeeEntry{MatchID: "m1", Amount: 999, Pool: 100}))
	require.NoError(t, repos.Fees.Record(ctx, &entities.FeeEntry{MatchID: "m2", Amount: 4, Pool: 20}))

	total, err := repos.Fees.Total(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(24), total)

	report := &entities.DisputeReport{MatchID: "m1", ReporterID: "alice", ReportedWinner: "alice", RecordedWinner: "bob"}
	require.NoError(t, repos.Disputes.Record(ctx, report))
	require.NoError(t, repos.Disputes.Record(ctx, report))
	require.NoError(t, repos.Disputes.Record(ctx, &entities.DisputeReport{MatchID: "m10", ReporterID: "carol"}))

	byMatch, err := repos.Disputes.GetByMatch(ctx, "m1")
	require.NoError(t, err)
	require.Len(t, byMatch, 1)
	assert.Equal(t, "bob", byMatch[0].RecordedWinner)

	all, err := repos.Disputes.List(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}
