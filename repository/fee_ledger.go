package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage"
)

// FeeLedger keeps one fee entry per settled match
type FeeLedger struct {
	store storage.Store
}

func NewFeeLedger(store storage.Store) *FeeLedger {
	return &FeeLedger{store: store}
}

// Record stores entry unless the match already has one
func (l *FeeLedger) Record(ctx context.Context, entry *entities.FeeEntry) error {
	err := insert(ctx, l.store, key(kindFee, entry.MatchID), entry)
	if err != nil && !errors.Is(err, storage.ErrVersionConflict) {
		return fmt.Errorf("failed to record fee for match %s: %w", entry.MatchID, err)
	}
	return nil
}

func (l *FeeLedger) Total(ctx context.Context) (int64, error) {
	entries, err := loadAll[entities.FeeEntry](ctx, l.store, prefix(kindFee))
	if err != nil {
		return 0, err
	}

	var total int64
	for _, e := range entries {
		total += e.Amount
	}
	return total, nil
}
