package interfaces

import (
	"context"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"
)

// EventPublisher queues events raised by an operation
type EventPublisher interface {
	Publish(event events.Event)
}

// SettlementService drives match lifecycle transitions together with their wallet effects
type SettlementService interface {
	// CreateMatch escrows the creator's entry fee and opens a match
	CreateMatch(ctx context.Context, creator entities.Identity, entryFee int64) (*entities.Match, error)

	// JoinMatch escrows the joiner's entry fee and starts the match
	JoinMatch(ctx context.Context, matchID string, joiner entities.Identity) (*entities.Match, error)

	// SubmitResult settles the match for winnerID and pays out the prize
	SubmitResult(ctx context.Context, matchID, submitterID, winnerID string) (*entities.Match, error)

	// FlagDispute lets a participant mark an in-progress match as disputed
	FlagDispute(ctx context.Context, matchID, reporterID, reason string) (*entities.Match, error)

	// GetMatch returns a match by id
	GetMatch(ctx context.Context, matchID string) (*entities.Match, error)

	// ListOpenMatches returns open matches the user could join
	ListOpenMatches(ctx context.Context, userID string) ([]*entities.Match, error)

	// ListUserMatches returns the user's matches
	ListUserMatches(ctx context.Context, userID string) ([]*entities.Match, error)

	// ReconcilePendingPayouts retries payouts for completed matches that were not fully paid
	ReconcilePendingPayouts(ctx context.Context) (int, error)
}

// AccountService manages wallets outside of match play
type AccountService interface {
	// GetOrRegister returns the caller's account, opening it on first use
	GetOrRegister(ctx context.Context, identity entities.Identity) (*entities.Account, error)

	// GetAccount returns an account by id
	GetAccount(ctx context.Context, accountID string) (*entities.Account, error)

	// AddFunds tops up a wallet
	AddFunds(ctx context.Context, accountID string, amount int64) (*entities.Account, error)

	// History returns recent balance changes
	History(ctx context.Context, accountID string, limit int) ([]*entities.BalanceHistory, error)
}

// LeaderboardService ranks players by settled results
type LeaderboardService interface {
	Top(ctx context.Context, limit int) ([]entities.LeaderboardEntry, error)
}

// PlatformService reports operator statistics
type PlatformService interface {
	Stats(ctx context.Context) (*entities.PlatformStats, error)
}
