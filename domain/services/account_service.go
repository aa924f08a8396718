package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/config"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/interfaces"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

const (
	defaultHistoryLimit = 20
	maxHistoryLimit     = 100
)

type accountService struct {
	uowFactory interfaces.UnitOfWorkFactory
	config     *config.Config
	newOpID    func() string
}

// NewAccountService creates a new account service
func NewAccountService(uowFactory interfaces.UnitOfWorkFactory, cfg *config.Config) interfaces.AccountService {
	return &accountService{
		uowFactory: uowFactory,
		config:     cfg,
		newOpID:    uuid.NewString,
	}
}

// GetOrRegister returns the caller's account, opening it with the starting balance on first use
func (s *accountService) GetOrRegister(ctx context.Context, identity entities.Identity) (*entities.Account, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	account, err := uow.AccountStore().Get(ctx, identity.UserID)
	if err == nil {
		return account, nil
	}
	if !errors.Is(err, entities.ErrNotFound) {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}

	account, err = uow.AccountStore().Register(ctx, identity, s.config.StartingBalance)
	if errors.Is(err, entities.ErrAccountExists) {
		// Another request registered the same user first
		return uow.AccountStore().Get(ctx, identity.UserID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register account: %w", err)
	}

	uow.EventBus().Publish(events.AccountRegisteredEvent{
		AccountID:      account.ID,
		Username:       account.Username,
		InitialBalance: account.Balance,
	})
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit unit of work: %w", err)
	}

	log.WithFields(log.Fields{
		"accountID": account.ID,
		"username":  account.Username,
		"balance":   account.Balance,
	}).Info("Registered new account")
	return account, nil
}

func (s *accountService) GetAccount(ctx context.Context, accountID string) (*entities.Account, error) {
	return s.uowFactory.Create().AccountStore().Get(ctx, accountID)
}

// AddFunds credits an external top-up of at least the configured minimum
func (s *accountService) AddFunds(ctx context.Context, accountID string, amount int64) (*entities.Account, error) {
	if amount < s.config.MinTopUp || amount <= 0 {
		return nil, fmt.Errorf("%w: top-up must be at least %d", entities.ErrInvalidAmount, s.config.MinTopUp)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	op := entities.LedgerOp{ID: "topup/" + s.newOpID(), Type: entities.TransactionTypeTopUp}
	entry, err := uow.AccountStore().Credit(ctx, accountID, amount, op)
	if err != nil {
		return nil, err
	}
	publishBalanceChange(uow, entry, "")

	account, err := uow.AccountStore().Get(ctx, accountID)
	if err != nil {
		return nil, fmt.Errorf("failed to reload account: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit unit of work: %w", err)
	}
	return account, nil
}

// History returns recent balance changes; limit is clamped to [1, 100]
func (s *accountService) History(ctx context.Context, accountID string, limit int) ([]*entities.BalanceHistory, error) {
	if limit <= 0 {
		limit = defaultHistoryLimit
	}
	if limit > maxHistoryLimit {
		limit = maxHistoryLimit
	}

	accounts := s.uowFactory.Create().AccountStore()
	if _, err := accounts.Get(ctx, accountID); err != nil {
		return nil, err
	}
	return accounts.History(ctx, accountID, limit)
}
