package testhelpers

import (
	"context"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"

	"github.com/stretchr/testify/mock"
)

// MockSettlementService is a mock implementation of SettlementService
type MockSettlementService struct {
	mock.Mock
}

func (m *MockSettlementService) matchResult(args mock.Arguments) (*entities.Match, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Match), args.Error(1)
}

func (m *MockSettlementService) matchesResult(args mock.Arguments) ([]*entities.Match, error) {
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*entities.Match), args.Error(1)
}

func (m *MockSettlementService) CreateMatch(ctx context.Context, creator entities.Identity, entryFee int64) (*entities.Match, error) {
	return m.matchResult(m.Called(ctx, creator, entryFee))
}

func (m *MockSettlementService) JoinMatch(ctx context.Context, matchID string, joiner entities.Identity) (*entities.Match, error) {
	return m.matchResult(m.Called(ctx, matchID, joiner))
}

func (m *MockSettlementService) SubmitResult(ctx context.Context, matchID, submitterID, winnerID string) (*entities.Match, error) {
	return m.matchResult(m.Called(ctx, matchID, submitterID, winnerID))
}

func (m *MockSettlementService) FlagDispute(ctx context.Context, matchID, reporterID, reason string) (*entities.Match, error) {
	return m.matchResult(m.Called(ctx, matchID, reporterID, reason))
}

func (m *MockSettlementService) GetMatch(ctx context.Context, matchID string) (*entities.Match, error) {
	return m.matchResult(m.Called(ctx, matchID))
}

func (m *MockSettlementService) ListOpenMatches(ctx context.Context, userID string) ([]*entities.Match, error) {
	return m.matchesResult(m.Called(ctx, userID))
}

func (m *MockSettlementService) ListUserMatches(ctx context.Context, userID string) ([]*entities.Match, error) {
	return m.matchesResult(m.Called(ctx, userID))
}

func (m *MockSettlementService) ReconcilePendingPayouts(ctx context.Context) (int, error) {
	args := m.Called(ctx)
	return args.Int(0), args.Error(1)
}
