package services

import (
	"context"
	"fmt"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/interfaces"
)

const defaultLeaderboardLimit = 50

type leaderboardService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewLeaderboardService creates a read-only ranking over account statistics
func NewLeaderboardService(uowFactory interfaces.UnitOfWorkFactory) interfaces.LeaderboardService {
	return &leaderboardService{uowFactory: uowFactory}
}

func (s *leaderboardService) Top(ctx context.Context, limit int) ([]entities.LeaderboardEntry, error) {
	if limit <= 0 {
		limit = defaultLeaderboardLimit
	}

	accounts, err := s.uowFactory.Create().AccountStore().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return entities.RankAccounts(accounts, limit), nil
}
