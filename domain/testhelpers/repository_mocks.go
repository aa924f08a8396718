package testhelpers

import (
	"context"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/interfaces"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"

	"github.com/stretchr/testify/mock"
)

// MockAccountStore is a mock implementation of AccountStore
type MockAccountStore struct {
	mock.Mock
}

func (m *MockAccountStore) Get(ctx context.Context, accountID string) (*entities.Account, error) {
	args := m.Called(ctx, accountID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountStore) Register(ctx context.Context, identity entities.Identity, startingBalance int64) (*entities.Account, error) {
	args := m.Called(ctx, identity, startingBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Account), args.Error(1)
}

func (m *MockAccountStore) Reserve(ctx context.Context, accountID string, amount int64, op entities.LedgerOp) (*entities.BalanceHistory, error) {
	args := m.Called(ctx, accountID, amount, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BalanceHistory), args.Error(1)
}

func (m *MockAccountStore) Credit(ctx context.Context, accountID string, amount int64, op entities.LedgerOp) (*entities.BalanceHistory, error) {
	args := m.Called(ctx, accountID, amount, op)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.BalanceHistory), args.Error(1)
}

func (m *MockAccountStore) RecordOutcome(ctx context.Context, accountID string, won bool, opID string) error {
	args := m.Called(ctx, accountID, won, opID)
	return args.Error(0)
}

func (m *MockAccountStore) List(ctx context.Context) ([]*entities.Account, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Account), args.Error(1)
}

func (m *MockAccountStore) History(ctx context.Context, accountID string, limit int) ([]*entities.BalanceHistory, error) {
	args := m.Called(ctx, accountID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.BalanceHistory), args.Error(1)
}

// MockMatchRegistry is a mock implementation of MatchRegistry
type MockMatchRegistry struct {
	mock.Mock
}

func (m *MockMatchRegistry) match(args mock.Arguments) (*entities.Match, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Match), args.Error(1)
}

func (m *MockMatchRegistry) matches(args mock.Arguments) ([]*entities.Match, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Match), args.Error(1)
}

func (m *MockMatchRegistry) Create(ctx context.Context, creator entities.Identity, entryFee int64) (*entities.Match, error) {
	return m.match(m.Called(ctx, creator, entryFee))
}

func (m *MockMatchRegistry) Join(ctx context.Context, matchID string, joiner entities.Identity) (*entities.Match, error) {
	return m.match(m.Called(ctx, matchID, joiner))
}

func (m *MockMatchRegistry) Settle(ctx context.Context, matchID string, winnerID string, prize entities.Prize) (*entities.Match, error) {
	return m.match(m.Called(ctx, matchID, winnerID, prize))
}

func (m *MockMatchRegistry) FlagDispute(ctx context.Context, matchID string) (*entities.Match, error) {
	return m.match(m.Called(ctx, matchID))
}

func (m *MockMatchRegistry) MarkPaid(ctx context.Context, matchID string) (*entities.Match, bool, error) {
	args := m.Called(ctx, matchID)
	var match *entities.Match
	if v := args.Get(0); v != nil {
		match = v.(*entities.Match)
	}
	return match, args.Bool(1), args.Error(2)
}

func (m *MockMatchRegistry) Get(ctx context.Context, matchID string) (*entities.Match, error) {
	return m.match(m.Called(ctx, matchID))
}

func (m *MockMatchRegistry) ListOpen(ctx context.Context, excludingCreator string) ([]*entities.Match, error) {
	return m.matches(m.Called(ctx, excludingCreator))
}

func (m *MockMatchRegistry) ListForUser(ctx context.Context, userID string) ([]*entities.Match, error) {
	return m.matches(m.Called(ctx, userID))
}

func (m *MockMatchRegistry) ListPendingPayouts(ctx context.Context) ([]*entities.Match, error) {
	return m.matches(m.Called(ctx))
}

func (m *MockMatchRegistry) List(ctx context.Context) ([]*entities.Match, error) {
	return m.matches(m.Called(ctx))
}

// MockFeeLedger is a mock implementation of FeeLedger
type MockFeeLedger struct {
	mock.Mock
}

func (m *MockFeeLedger) Record(ctx context.Context, entry *entities.FeeEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockFeeLedger) Total(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

// MockDisputeRepository is a mock implementation of DisputeRepository
type MockDisputeRepository struct {
	mock.Mock
}

func (m *MockDisputeRepository) Record(ctx context.Context, report *entities.DisputeReport) error {
	args := m.Called(ctx, report)
	return args.Error(0)
}

func (m *MockDisputeRepository) GetByMatch(ctx context.Context, matchID string) ([]*entities.DisputeReport, error) {
	args := m.Called(ctx, matchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DisputeReport), args.Error(1)
}

func (m *MockDisputeRepository) List(ctx context.Context) ([]*entities.DisputeReport, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.DisputeReport), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// MockUnitOfWork is a mock implementation of UnitOfWork
type MockUnitOfWork struct {
	mock.Mock
	accounts  interfaces.AccountStore
	matches   interfaces.MatchRegistry
	fees      interfaces.FeeLedger
	disputes  interfaces.DisputeRepository
	publisher interfaces.EventPublisher
}

// SetRepositories wires the repositories returned by the accessors
func (m *MockUnitOfWork) SetRepositories(accounts interfaces.AccountStore, matches interfaces.MatchRegistry, fees interfaces.FeeLedger, disputes interfaces.DisputeRepository, publisher interfaces.EventPublisher) {
	m.accounts = accounts
	m.matches = matches
	m.fees = fees
	m.disputes = disputes
	m.publisher = publisher
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) AccountStore() interfaces.AccountStore           { return m.accounts }
func (m *MockUnitOfWork) MatchRegistry() interfaces.MatchRegistry         { return m.matches }
func (m *MockUnitOfWork) FeeLedger() interfaces.FeeLedger                 { return m.fees }
func (m *MockUnitOfWork) DisputeRepository() interfaces.DisputeRepository { return m.disputes }
func (m *MockUnitOfWork) EventBus() interfaces.EventPublisher             { return m.publisher }

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() interfaces.UnitOfWork {
	args := m.Called()
	return args.Get(0).(interfaces.UnitOfWork)
}
