package interfaces

import (
	"context"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
)

// AccountStore owns wallet balances and match statistics.
// Every operation on one account is linearizable.
type AccountStore interface {
	// Get returns the account or entities.ErrNotFound
	Get(ctx context.Context, accountID string) (*entities.Account, error)

	// Register opens an account with the starting balance, or fails with entities.ErrAccountExists
	Register(ctx context.Context, identity entities.Identity, startingBalance int64) (*entities.Account, error)

	// Reserve debits amount if the balance covers it, otherwise fails with entities.ErrInsufficientFunds.
	// Replaying an applied op returns a nil entry and no error.
	Reserve(ctx context.Context, accountID string, amount int64, op entities.LedgerOp) (*entities.BalanceHistory, error)

	// Credit adds amount to the balance
	Credit(ctx context.Context, accountID string, amount int64, op entities.LedgerOp) (*entities.BalanceHistory, error)

	// RecordOutcome increments total matches and either wins or losses
	RecordOutcome(ctx context.Context, accountID string, won bool, opID string) error

	// List returns a snapshot of all accounts
	List(ctx context.Context) ([]*entities.Account, error)

	// History returns the most recent balance changes for an account, newest first
	History(ctx context.Context, accountID string, limit int) ([]*entities.BalanceHistory, error)
}

// MatchRegistry owns match records. Transitions are compare-and-set on the stored record.
type MatchRegistry interface {
	// Create opens a match for creator, or fails with entities.ErrInvalidEntryFee
	Create(ctx context.Context, creator entities.Identity, entryFee int64) (*entities.Match, error)

	// Join seats joiner in an open match
	Join(ctx context.Context, matchID string, joiner entities.Identity) (*entities.Match, error)

	// Settle completes an in-progress match with winnerID and marks the payout pending
	Settle(ctx context.Context, matchID string, winnerID string, prize entities.Prize) (*entities.Match, error)

	// FlagDispute moves an in-progress match to disputed
	FlagDispute(ctx context.Context, matchID string) (*entities.Match, error)

	// MarkPaid records that a completed match's payout has been applied.
	// marked is false when the match was already paid.
	MarkPaid(ctx context.Context, matchID string) (match *entities.Match, marked bool, err error)

	// Get returns the match or entities.ErrNotFound
	Get(ctx context.Context, matchID string) (*entities.Match, error)

	// ListOpen returns open matches not created by excludingCreator, newest first
	ListOpen(ctx context.Context, excludingCreator string) ([]*entities.Match, error)

	// ListForUser returns matches userID takes part in, newest first
	ListForUser(ctx context.Context, userID string) ([]*entities.Match, error)

	// ListPendingPayouts returns completed matches whose payout has not been applied
	ListPendingPayouts(ctx context.Context) ([]*entities.Match, error)

	// List returns every match
	List(ctx context.Context) ([]*entities.Match, error)
}

// FeeLedger records the platform fee retained by each settled match
type FeeLedger interface {
	// Record stores the fee for a match; recording the same match twice keeps the first entry
	Record(ctx context.Context, entry *entities.FeeEntry) error

	// Total returns the sum of all recorded fees
	Total(ctx context.Context) (int64, error)
}

// DisputeRepository stores dispute reports raised by match participants
type DisputeRepository interface {
	// Record stores a report; a participant's first report on a match is kept
	Record(ctx context.Context, report *entities.DisputeReport) error

	// GetByMatch returns every report for a match
	GetByMatch(ctx context.Context, matchID string) ([]*entities.DisputeReport, error)

	// List returns all reports
	List(ctx context.Context) ([]*entities.DisputeReport, error)
}

// UnitOfWork scopes one service operation. Repositories write through to the
// store immediately; events published on EventBus are released by Commit and
// dropped by Rollback.
type UnitOfWork interface {
	Begin(ctx context.Context) error
	Commit() error
	Rollback() error

	AccountStore() AccountStore
	MatchRegistry() MatchRegistry
	FeeLedger() FeeLedger
	DisputeRepository() DisputeRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory creates a fresh UnitOfWork per operation
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
