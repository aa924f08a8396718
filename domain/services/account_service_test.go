package services

import (
	"context"
	"sync"
	"testing"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/testhelpers"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/repository/testutil"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestAccountService_GetOrRegister(t *testing.T) {
	ctx := context.Background()
	a := newArena(t, storage.NewMemoryStore())
	identity := testutil.CreateTestIdentity("newcomer")

	account, err := a.accounts.GetOrRegister(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, int64(100), account.Balance)
	assert.Equal(t, "player-newcomer", account.Username)

	_, err = a.accounts.AddFunds(ctx, "newcomer", 50)
	require.NoError(t, err)

	again, err := a.accounts.GetOrRegister(ctx, identity)
	require.NoError(t, err)
	assert.Equal(t, int64(150), again.Balance)

	registered := a.emitter.OfType(events.EventTypeAccountRegistered)
	require.Len(t, registered, 1)
	assert.Contains(t, registered[0].Message(), "₹100")
}

func TestAccountService_GetOrRegister_Concurrent(t *testing.T) {
	ctx := context.Background()
	a := newArena(t, storage.NewMemoryStore())
	identity := testutil.CreateTestIdentity("racer")

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			account, err := a.accounts.GetOrRegister(ctx, identity)
			assert.NoError(t, err)
			if account != nil {
				assert.Equal(t, int64(100), account.Balance)
			}
		}()
	}
	wg.Wait()

	assert.Len(t, a.emitter.OfType(events.EventTypeAccountRegistered), 1)
}

func TestAccountService_AddFunds(t *testing.T) {
	ctx := context.Background()
	a := newArena(t, storage.NewMemoryStore())
	a.player(t, "alice", 100)

	tests := []struct {
		name    string
		account string
		amount  int64
		wantErr error
		balance int64
	}{
		{name: "below minimum", account: "alice", amount: 9, wantErr: entities.ErrInvalidAmount, balance: 100},
		{name: "negative", account: "alice", amount: -50, wantErr: entities.ErrInvalidAmount, balance: 100},
		{name: "unknown account", account: "ghost", amount: 20, wantErr: entities.ErrNotFound},
		{name: "minimum top-up", account: "alice", amount: 10, balance: 110},
		{name: "large top-up", account: "alice", amount: 500, balance: 610},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			account, err := a.accounts.AddFunds(ctx, tt.account, tt.amount)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				if tt.balance > 0 {
					assert.Equal(t, tt.balance, a.balance(t, tt.account))
				}
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.balance, account.Balance)
		})
	}

	changes := a.emitter.OfType(events.EventTypeBalanceChange)
	require.Len(t, changes, 2)
	assert.Equal(t, "Funds added! ₹10 credited to your wallet", changes[0].Message())
}

func TestAccountService_History(t *testing.T) {
	ctx := context.Background()
	a := newArena(t, storage.NewMemoryStore())
	alice := a.player(t, "alice", 100)
	bob := a.player(t, "bob", 100)

	match, err := a.settlement.CreateMatch(ctx, alice, 10)
	require.NoError(t, err)
	_, err = a.settlement.JoinMatch(ctx, match.ID, bob)
	require.NoError(t, err)
	_, err = a.settlement.SubmitResult(ctx, match.ID, "alice", "alice")
	require.NoError(t, err)

	history, err := a.accounts.History(ctx, "alice", 0)
	require.NoError(t, err)
	require.Len(t, history, 3)
	assert.Equal(t, entities.TransactionTypeMatchPayout, history[0].TransactionType)
	assert.Equal(t, match.ID, history[0].MatchID)
	assert.Equal(t, entities.TransactionTypeEntryFee, history[1].TransactionType)
	assert.Equal(t, entities.TransactionTypeInitial, history[2].TransactionType)
	for _, h := range history {
		assert.NoError(t, h.Validate())
	}

	_, err = a.accounts.History(ctx, "ghost", 10)
	assert.ErrorIs(t, err, entities.ErrNotFound)
}

func TestLeaderboardService_Top(t *testing.T) {
	ctx := context.Background()
	factory := new(testhelpers.MockUnitOfWorkFactory)
	uow := new(testhelpers.MockUnitOfWork)
	accounts := new(testhelpers.MockAccountStore)
	uow.SetRepositories(accounts, nil, nil, nil, nil)
	factory.On("Create").Return(uow)

	accounts.On("List", ctx).Return([]*entities.Account{
		{ID: "1", Username: "zed", Wins: 3, TotalMatches: 4},
		{ID: "2", Username: "amy", Wins: 3, TotalMatches: 3},
		{ID: "3", Username: "bob", Wins: 5, TotalMatches: 10},
		{ID: "4", Username: "cat"},
	}, nil)

	top, err := NewLeaderboardService(factory).Top(ctx, 3)
	require.NoError(t, err)
	require.Len(t, top, 3)
	assert.Equal(t, "bob", top[0].Username)
	assert.Equal(t, "amy", top[1].Username)
	assert.Equal(t, "zed", top[2].Username)
	assert.Equal(t, 3, top[2].Rank)

	accounts.AssertCalled(t, "List", mock.Anything)
}
