package services

import (
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/interfaces"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"
)

// publishBalanceChange queues the event for an applied balance change. A nil
// entry means the change was a replay and has already been announced.
func publishBalanceChange(uow interfaces.UnitOfWork, entry *entities.BalanceHistory, matchID string) {
	if entry == nil {
		return
	}
	if entry.MatchID != "" {
		matchID = entry.MatchID
	}
	uow.EventBus().Publish(events.BalanceChangeEvent{
		AccountID:       entry.AccountID,
		OldBalance:      entry.BalanceBefore,
		NewBalance:      entry.BalanceAfter,
		ChangeAmount:    entry.ChangeAmount,
		TransactionType: entry.TransactionType,
		MatchID:         matchID,
	})
}
