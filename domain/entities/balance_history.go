package entities

import (
	"errors"
	"time"
)

// BalanceHistory is one applied balance change on an account
type BalanceHistory struct {
	OperationID     string          `json:"operationId"`
	AccountID       string          `json:"accountId"`
	BalanceBefore   int64           `json:"balanceBefore"`
	BalanceAfter    int64           `json:"balanceAfter"`
	ChangeAmount    int64           `json:"changeAmount"`
	TransactionType TransactionType `json:"transactionType"`
	MatchID         string          `json:"matchId,omitempty"`
	CreatedAt       time.Time       `json:"createdAt"`
}

// IsPositiveChange returns true if the change amount is positive
func (bh *BalanceHistory) IsPositiveChange() bool {
	return bh.ChangeAmount > 0
}

// Description returns a human-readable label for the change
func (bh *BalanceHistory) Description() string {
	switch bh.TransactionType {
	case TransactionTypeInitial:
		return "Starting balance"
	case TransactionTypeTopUp:
		return "Funds added"
	case TransactionTypeEntryFee:
		return "Match entry fee"
	case TransactionTypeEntryRefund:
		return "Entry fee refunded"
	case TransactionTypeMatchPayout:
		return "Match winnings"
	default:
		return string(bh.TransactionType)
	}
}

// Validate checks that the entry is arithmetically consistent
func (bh *BalanceHistory) Validate() error {
	if bh.AccountID == "" {
		return errors.New("account id is required")
	}
	if bh.BalanceAfter != bh.BalanceBefore+bh.ChangeAmount {
		return errors.New("balance after does not equal balance before plus change")
	}
	if bh.BalanceAfter < 0 {
		return errors.New("balance after cannot be negative")
	}
	if bh.TransactionType.IsDebit() != (bh.ChangeAmount < 0) {
		return errors.New("change direction does not match transaction type")
	}
	return nil
}
