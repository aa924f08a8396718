package entities

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCalculatePrize(t *testing.T) {
	tests := []struct {
		name       string
		entryFee   int64
		feePercent int64
		want       Prize
	}{
		{"ten rupee match", 10, 20, Prize{Pool: 20, Payout: 16, Fee: 4}},
		{"payout is floored", 13, 20, Prize{Pool: 26, Payout: 20, Fee: 6}},
		{"odd pool", 11, 20, Prize{Pool: 22, Payout: 17, Fee: 5}},
		{"no platform fee", 50, 0, Prize{Pool: 100, Payout: 100, Fee: 0}},
		{"large stake", 1_000_000, 20, Prize{Pool: 2_000_000, Payout: 1_600_000, Fee: 400_000}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := CalculatePrize(tt.entryFee, tt.feePercent)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, got.Pool, got.Payout+got.Fee)
		})
	}
}
