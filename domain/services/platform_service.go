package services

import (
	"context"
	"fmt"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/interfaces"
)

type platformService struct {
	uowFactory interfaces.UnitOfWorkFactory
}

// NewPlatformService creates the operator statistics service
func NewPlatformService(uowFactory interfaces.UnitOfWorkFactory) interfaces.PlatformService {
	return &platformService{uowFactory: uowFactory}
}

// Stats aggregates a snapshot of balances, escrow, fees and disputes
func (s *platformService) Stats(ctx context.Context) (*entities.PlatformStats, error) {
	uow := s.uowFactory.Create()

	accounts, err := uow.AccountStore().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	matches, err := uow.MatchRegistry().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}
	fees, err := uow.FeeLedger().Total(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to total fees: %w", err)
	}
	reports, err := uow.DisputeRepository().List(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list disputes: %w", err)
	}

	stats := &entities.PlatformStats{
		TotalAccounts:   len(accounts),
		MatchesByStatus: make(map[entities.MatchStatus]int),
		FeesCollected:   fees,
		DisputeReports:  len(reports),
	}
	for _, a := range accounts {
		stats.TotalBalance += a.Balance
	}
	for _, m := range matches {
		stats.MatchesByStatus[m.Status]++
		stats.EscrowHeld += m.EscrowedAmount()
		if m.Status == entities.MatchStatusDisputed {
			stats.DisputedMatches++
		}
		if m.PayoutStatus == entities.PayoutStatusPending {
			stats.PendingPayouts++
		}
	}
	return stats, nil
}
