package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage"
)

// DisputeRepository stores at most one report per match and reporter
type DisputeRepository struct {
	store storage.Store
}

func NewDisputeRepository(store storage.Store) *DisputeRepository {
	return &DisputeRepository{store: store}
}

func (r *DisputeRepository) Record(ctx context.Context, report *entities.DisputeReport) error {
	err := insert(ctx, r.store, key(kindDispute, report.MatchID, report.ReporterID), report)
	if err != nil && !errors.Is(err, storage.ErrVersionConflict) {
		return fmt.Errorf("failed to record dispute for match %s: %w", report.MatchID, err)
	}
	return nil
}

func (r *DisputeRepository) GetByMatch(ctx context.Context, matchID string) ([]*entities.DisputeReport, error) {
	return loadAll[entities.DisputeReport](ctx, r.store, prefix(kindDispute, matchID))
}

func (r *DisputeRepository) List(ctx context.Context) ([]*entities.DisputeReport, error) {
	return loadAll[entities.DisputeReport](ctx, r.store, prefix(kindDispute))
}
