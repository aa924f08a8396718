package repository

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/storage"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// ErrCorruptMatch is returned when a mutation would store a match that breaks its invariants
var ErrCorruptMatch = errors.New("match document violates invariants")

// MatchRegistry implements interfaces.MatchRegistry. Every transition is a
// compare-and-swap on the stored match, so at most one racing caller wins it.
type MatchRegistry struct {
	store       storage.Store
	opts        Options
	minEntryFee int64
	newID       func() string
}

// NewMatchRegistry creates a match registry enforcing minEntryFee
func NewMatchRegistry(store storage.Store, minEntryFee int64, opts Options) *MatchRegistry {
	return &MatchRegistry{
		store:       store,
		opts:        opts.withDefaults(),
		minEntryFee: minEntryFee,
		newID:       uuid.NewString,
	}
}

func (r *MatchRegistry) Create(ctx context.Context, creator entities.Identity, entryFee int64) (*entities.Match, error) {
	if err := entities.ValidateEntryFee(entryFee, r.minEntryFee); err != nil {
		return nil, err
	}

	now := r.opts.Now()
	match := &entities.Match{
		ID:            r.newID(),
		EntryFee:      entryFee,
		Player1ID:     creator.UserID,
		Player1Name:   creator.Username,
		Player1Avatar: creator.AvatarURL,
		Status:        entities.MatchStatusOpen,
		PayoutStatus:  entities.PayoutStatusNone,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := insert(ctx, r.store, key(kindMatch, match.ID), match); err != nil {
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	log.WithFields(log.Fields{
		"matchID":  match.ID,
		"creator":  creator.UserID,
		"entryFee": entryFee,
	}).Debug("Match created")
	return match, nil
}

func (r *MatchRegistry) Join(ctx context.Context, matchID string, joiner entities.Identity) (*entities.Match, error) {
	return r.updateMatch(ctx, matchID, func(m *entities.Match) error {
		return m.ApplyJoin(joiner, r.opts.Now())
	})
}

func (r *MatchRegistry) Settle(ctx context.Context, matchID, winnerID string, prize entities.Prize) (*entities.Match, error) {
	return r.updateMatch(ctx, matchID, func(m *entities.Match) error {
		return m.ApplySettle(winnerID, prize, r.opts.Now())
	})
}

func (r *MatchRegistry) FlagDispute(ctx context.Context, matchID string) (*entities.Match, error) {
	return r.updateMatch(ctx, matchID, func(m *entities.Match) error {
		return m.ApplyDispute(r.opts.Now())
	})
}

// MarkPaid moves a pending payout to paid. It is idempotent for matches that
// are already paid; marked reports whether this call made the change.
func (r *MatchRegistry) MarkPaid(ctx context.Context, matchID string) (*entities.Match, bool, error) {
	var marked bool
	match, err := r.updateMatch(ctx, matchID, func(m *entities.Match) error {
		marked = false
		switch m.PayoutStatus {
		case entities.PayoutStatusPaid:
			return errSkipWrite
		case entities.PayoutStatusPending:
			m.PayoutStatus = entities.PayoutStatusPaid
			marked = true
			return nil
		}
		return fmt.Errorf("%w: match %s has no pending payout", entities.ErrInvalidState, m.ID)
	})
	if err != nil {
		return nil, false, err
	}
	return match, marked, nil
}

// updateMatch applies mutate under compare-and-swap and refuses to store a
// document that takes an illegal status edge or breaks the match invariants
func (r *MatchRegistry) updateMatch(ctx context.Context, matchID string, mutate func(m *entities.Match) error) (*entities.Match, error) {
	return update(ctx, r.store, r.opts, kindMatch, key(kindMatch, matchID), func(m *entities.Match) error {
		from := m.Status
		if err := mutate(m); err != nil {
			return err
		}
		if m.Status != from && !entities.CanTransition(from, m.Status) {
			return fmt.Errorf("%w: %s to %s is not a legal transition", entities.ErrInvalidState, from, m.Status)
		}
		if err := m.CheckInvariants(); err != nil {
			return fmt.Errorf("%w: %v", ErrCorruptMatch, err)
		}
		return nil
	})
}

func (r *MatchRegistry) Get(ctx context.Context, matchID string) (*entities.Match, error) {
	m, _, err := load[entities.Match](ctx, r.store, key(kindMatch, matchID))
	return m, err
}

func (r *MatchRegistry) ListOpen(ctx context.Context, excludingCreator string) ([]*entities.Match, error) {
	return r.filter(ctx, func(m *entities.Match) bool {
		return m.Status == entities.MatchStatusOpen && m.Player1ID != excludingCreator
	})
}

func (r *MatchRegistry) ListForUser(ctx context.Context, userID string) ([]*entities.Match, error) {
	return r.filter(ctx, func(m *entities.Match) bool {
		return m.IsParticipant(userID)
	})
}

func (r *MatchRegistry) ListPendingPayouts(ctx context.Context) ([]*entities.Match, error) {
	return r.filter(ctx, func(m *entities.Match) bool {
		return m.Status == entities.MatchStatusCompleted && m.PayoutStatus == entities.PayoutStatusPending
	})
}

func (r *MatchRegistry) List(ctx context.Context) ([]*entities.Match, error) {
	return r.filter(ctx, func(*entities.Match) bool { return true })
}

// filter returns matching records newest first
func (r *MatchRegistry) filter(ctx context.Context, keep func(*entities.Match) bool) ([]*entities.Match, error) {
	all, err := loadAll[entities.Match](ctx, r.store, prefix(kindMatch))
	if err != nil {
		return nil, err
	}

	matches := make([]*entities.Match, 0, len(all))
	for _, m := range all {
		if keep(m) {
			matches = append(matches, m)
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if !matches[i].CreatedAt.Equal(matches[j].CreatedAt) {
			return matches[i].CreatedAt.After(matches[j].CreatedAt)
		}
		return matches[i].ID < matches[j].ID
	})
	return matches, nil
}
