package entities

// Prize is the split of a settled match's pool
type Prize struct {
	Pool   int64
	Payout int64
	Fee    int64
}

// CalculatePrize splits both entry fees between the winner and the platform.
// The payout is floored so the fee absorbs any remainder.
func CalculatePrize(entryFee, feePercent int64) Prize {
	pool := entryFee * 2
	payout := pool * (100 - feePercent) / 100
	return Prize{
		Pool:   pool,
		Payout: payout,
		Fee:    pool - payout,
	}
}
