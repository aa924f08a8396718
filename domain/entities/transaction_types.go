package entities

// TransactionType represents the reason for a balance change
type TransactionType string

const (
	TransactionTypeInitial     TransactionType = "initial"
	TransactionTypeTopUp       TransactionType = "top_up"
	TransactionTypeEntryFee    TransactionType = "entry_fee"
	TransactionTypeEntryRefund TransactionType = "entry_refund"
	TransactionTypeMatchPayout TransactionType = "match_payout"
)

// IsDebit returns true if the transaction moves funds out of an account
func (tt TransactionType) IsDebit() bool {
	return tt == TransactionTypeEntryFee
}

// IsMatchRelated returns true if the transaction belongs to a match lifecycle
func (tt TransactionType) IsMatchRelated() bool {
	return tt == TransactionTypeEntryFee ||
		tt == TransactionTypeEntryRefund ||
		tt == TransactionTypeMatchPayout
}

// String returns the string representation of the transaction type
func (tt TransactionType) String() string {
	return string(tt)
}
