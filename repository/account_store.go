package repository

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sort"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage"

	log "github.com/sirupsen/logrus"
)

// recentOpsWindow bounds how many applied operation ids an account document
// carries inline. Older ids are answered by their durable marker record.
const recentOpsWindow = 64

type accountDocument struct {
	entities.Account
	RecentOps []string `json:"recentOps,omitempty"`

	// PendingOps holds applied ids whose marker is not yet written. An id
	// leaves this list only after its marker exists.
	PendingOps []string `json:"pendingOps,omitempty"`
}

func (d *accountDocument) applied(opID string) bool {
	return opID != "" && (slices.Contains(d.RecentOps, opID) || slices.Contains(d.PendingOps, opID))
}

func (d *accountDocument) remember(opID string) {
	if opID == "" {
		return
	}
	d.RecentOps = append(d.RecentOps, opID)
	if len(d.RecentOps) > recentOpsWindow {
		d.RecentOps = d.RecentOps[len(d.RecentOps)-recentOpsWindow:]
	}
	d.PendingOps = append(d.PendingOps, opID)
}

// opMarker is the durable proof that an operation was applied to an account
type opMarker struct {
	AccountID   string    `json:"accountId"`
	OperationID string    `json:"operationId"`
	AppliedAt   time.Time `json:"appliedAt"`
}

// AccountStore implements interfaces.AccountStore over a storage.Store
type AccountStore struct {
	store storage.Store
	opts  Options
}

// NewAccountStore creates an account store
func NewAccountStore(store storage.Store, opts Options) *AccountStore {
	return &AccountStore{store: store, opts: opts.withDefaults()}
}

// Get returns the account or entities.ErrNotFound
func (s *AccountStore) Get(ctx context.Context, accountID string) (*entities.Account, error) {
	doc, _, err := load[accountDocument](ctx, s.store, key(kindAccount, accountID))
	if err != nil {
		return nil, err
	}
	return &doc.Account, nil
}

// Register opens a new account holding startingBalance
func (s *AccountStore) Register(ctx context.Context, identity entities.Identity, startingBalance int64) (*entities.Account, error) {
	if identity.UserID == "" {
		return nil, fmt.Errorf("%w: user id is required", entities.ErrInvalidAmount)
	}

	now := s.opts.Now()
	opID := "register:" + identity.UserID
	doc := &accountDocument{
		Account: entities.Account{
			ID:        identity.UserID,
			Username:  identity.Username,
			AvatarURL: identity.AvatarURL,
			Balance:   startingBalance,
			CreatedAt: now,
			UpdatedAt: now,
		},
	}
	doc.RecentOps = []string{opID}

	err := insert(ctx, s.store, key(kindAccount, identity.UserID), doc)
	if errors.Is(err, storage.ErrVersionConflict) {
		return nil, entities.ErrAccountExists
	}
	if err != nil {
		return nil, fmt.Errorf("failed to register account %s: %w", identity.UserID, err)
	}

	s.recordHistory(ctx, &entities.BalanceHistory{
		OperationID:     opID,
		AccountID:       identity.UserID,
		BalanceBefore:   0,
		BalanceAfter:    startingBalance,
		ChangeAmount:    startingBalance,
		TransactionType: entities.TransactionTypeInitial,
		CreatedAt:       now,
	})

	return &doc.Account, nil
}

// Reserve debits amount when the balance covers it. The balance is never taken below zero.
func (s *AccountStore) Reserve(ctx context.Context, accountID string, amount int64, op entities.LedgerOp) (*entities.BalanceHistory, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: reserve amount must be positive", entities.ErrInvalidAmount)
	}
	return s.applyBalanceChange(ctx, accountID, -amount, op)
}

// Credit adds amount to the balance. Replaying an already applied op is a
// no-op and returns a nil history entry.
func (s *AccountStore) Credit(ctx context.Context, accountID string, amount int64, op entities.LedgerOp) (*entities.BalanceHistory, error) {
	if amount <= 0 {
		return nil, fmt.Errorf("%w: credit amount must be positive", entities.ErrInvalidAmount)
	}
	return s.applyBalanceChange(ctx, accountID, amount, op)
}

func (s *AccountStore) applyBalanceChange(ctx context.Context, accountID string, delta int64, op entities.LedgerOp) (*entities.BalanceHistory, error) {
	var entry *entities.BalanceHistory

	applied, err := s.applyOnce(ctx, accountID, op.ID, func(doc *accountDocument) error {
		entry = nil
		before := doc.Balance
		if before+delta < 0 {
			return fmt.Errorf("%w: balance %d, need %d", entities.ErrInsufficientFunds, before, -delta)
		}

		now := s.opts.Now()
		doc.Balance = before + delta
		doc.UpdatedAt = now

		entry = &entities.BalanceHistory{
			OperationID:     op.ID,
			AccountID:       accountID,
			BalanceBefore:   before,
			BalanceAfter:    doc.Balance,
			ChangeAmount:    delta,
			TransactionType: op.Type,
			MatchID:         op.MatchID,
			CreatedAt:       now,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	if !applied {
		return nil, nil
	}

	s.recordHistory(ctx, entry)
	return entry, nil
}

// RecordOutcome increments total matches and wins or losses once per opID
func (s *AccountStore) RecordOutcome(ctx context.Context, accountID string, won bool, opID string) error {
	_, err := s.applyOnce(ctx, accountID, opID, func(doc *accountDocument) error {
		doc.TotalMatches++
		if won {
			doc.Wins++
		} else {
			doc.Losses++
		}
		doc.UpdatedAt = s.opts.Now()
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record outcome for account %s: %w", accountID, err)
	}
	return nil
}

// applyOnce runs change against the account unless opID was applied before,
// and reports whether this call applied it. An id is recognised from the
// inline window, the pending list, or its marker record, in that order.
func (s *AccountStore) applyOnce(ctx context.Context, accountID, opID string, change func(doc *accountDocument) error) (bool, error) {
	var applied, pending bool
	_, err := update(ctx, s.store, s.opts, kindAccount, key(kindAccount, accountID), func(doc *accountDocument) error {
		applied = false
		pending = opID != "" && slices.Contains(doc.PendingOps, opID)
		if doc.applied(opID) {
			return errSkipWrite
		}
		if opID != "" {
			seen, err := s.hasMarker(ctx, accountID, opID)
			if err != nil {
				return err
			}
			if seen {
				return errSkipWrite
			}
		}
		if err := change(doc); err != nil {
			return err
		}
		doc.remember(opID)
		applied = true
		return nil
	})
	if err != nil {
		return false, err
	}

	if !applied {
		log.WithFields(log.Fields{
			"accountID": accountID,
			"opID":      opID,
		}).Debug("Ledger operation already applied")
		if pending {
			s.settleMarker(ctx, accountID, opID)
		}
		return false, nil
	}

	if opID != "" {
		s.settleMarker(ctx, accountID, opID)
	}
	return true, nil
}

func (s *AccountStore) hasMarker(ctx context.Context, accountID, opID string) (bool, error) {
	_, err := s.store.Get(ctx, key(kindOp, accountID, opID))
	if errors.Is(err, storage.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check operation %s: %w", opID, err)
	}
	return true, nil
}

// settleMarker writes the durable marker for an applied op and then drops the
// op from the pending list. On failure the op stays pending, which keeps it
// recognised, and a replay of the same op retries the settle.
func (s *AccountStore) settleMarker(ctx context.Context, accountID, opID string) {
	fields := log.Fields{"accountID": accountID, "opID": opID}

	marker := &opMarker{AccountID: accountID, OperationID: opID, AppliedAt: s.opts.Now()}
	if err := insert(ctx, s.store, key(kindOp, accountID, opID), marker); err != nil &&
		!errors.Is(err, storage.ErrVersionConflict) {
		fields["error"] = err
		log.WithFields(fields).Warn("Failed to write operation marker, keeping it pending")
		return
	}

	_, err := update(ctx, s.store, s.opts, kindAccount, key(kindAccount, accountID), func(doc *accountDocument) error {
		i := slices.Index(doc.PendingOps, opID)
		if i < 0 {
			return errSkipWrite
		}
		doc.PendingOps = slices.Delete(doc.PendingOps, i, i+1)
		return nil
	})
	if err != nil {
		fields["error"] = err
		log.WithFields(fields).Warn("Failed to release pending operation")
	}
}

// List returns a snapshot of all accounts
func (s *AccountStore) List(ctx context.Context) ([]*entities.Account, error) {
	docs, err := loadAll[accountDocument](ctx, s.store, prefix(kindAccount))
	if err != nil {
		return nil, err
	}

	accounts := make([]*entities.Account, len(docs))
	for i, doc := range docs {
		accounts[i] = &doc.Account
	}
	return accounts, nil
}

// History returns up to limit balance changes, newest first
func (s *AccountStore) History(ctx context.Context, accountID string, limit int) ([]*entities.BalanceHistory, error) {
	entries, err := loadAll[entities.BalanceHistory](ctx, s.store, prefix(kindHistory, accountID))
	if err != nil {
		return nil, err
	}

	sort.SliceStable(entries, func(i, j int) bool {
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// recordHistory writes the audit entry for an applied change. The balance is
// already committed at this point, so a failure here is logged, not returned.
func (s *AccountStore) recordHistory(ctx context.Context, entry *entities.BalanceHistory) {
	if entry.OperationID == "" {
		return
	}
	if err := insert(ctx, s.store, key(kindHistory, entry.AccountID, entry.OperationID), entry); err != nil &&
		!errors.Is(err, storage.ErrVersionConflict) {
		log.WithFields(log.Fields{
			"accountID": entry.AccountID,
			"opID":      entry.OperationID,
			"error":     err,
		}).Warn("Failed to record balance history")
	}
}
