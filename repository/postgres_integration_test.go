package repository_test

import (
	"context"
	"testing"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/database/testutil"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/repository"
	repotestutil "github.com/LuckyYaduvanshi5/clash-cash-arena/repository/testutil"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage/pgstore"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRepositories_Postgres(t *testing.T) {
	testDB := testutil.SetupTestDatabase(t)
	ctx := context.Background()

	repos := repository.NewRepositories(pgstore.New(testDB.DB), 10, repository.Options{})

	_, err := repos.Accounts.Register(ctx, repotestutil.CreateTestIdentity("alice"), 100)
	require.NoError(t, err)
	_, err = repos.Accounts.Register(ctx, repotestutil.CreateTestIdentity("bob"), 100)
	require.NoError(t, err)

	match, err := repos.Matches.Create(ctx, repotestutil.CreateTestIdentity("alice"), 40)
	require.NoError(t, err)
	_, err = repos.Accounts.Reserve(ctx, "alice", 40, entities.LedgerOp{ID: "a", Type: entities.TransactionTypeEntryFee, MatchID: match.ID})
	require.NoError(t, err)

	_, err = repos.Matches.Join(ctx, match.ID, repotestutil.CreateTestIdentity("bob"))
	require.NoError(t, err)

	settled, err := repos.Matches.Settle(ctx, match.ID, "alice", entities.CalculatePrize(40, 20))
	require.NoError(t, err)
	assert.Equal(t, entities.PayoutStatusPending, settled.PayoutStatus)

	_, err = repos.Accounts.Reserve(ctx, "bob", 101, entities.LedgerOp{ID: "b", Type: entities.TransactionTypeEntryFee})
	assert.ErrorIs(t, err, entities.ErrInsufficientFunds)

	history, err := repos.Accounts.History(ctx, "alice", 10)
	require.NoError(t, err)
	assert.Len(t, history, 2)

	accounts, err := repos.Accounts.List(ctx)
	require.NoError(t, err)
	assert.Len(t, accounts, 2)
}
