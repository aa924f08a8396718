package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/config"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/entities"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/interfaces"
	"github.com/LuckyYaduvanshi5/clash-cash-arena/events"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// refundAttempts bounds retries of a compensating credit
const refundAttempts = 5

type settlementService struct {
	uowFactory interfaces.UnitOfWorkFactory
	config     *config.Config
	newOpID    func() string
	newBackOff func() backoff.BackOff
	now        func() time.Time
}

// NewSettlementService creates the match escrow and settlement engine
func NewSettlementService(uowFactory interfaces.UnitOfWorkFactory, cfg *config.Config) interfaces.SettlementService {
	return &settlementService{
		uowFactory: uowFactory,
		config:     cfg,
		newOpID:    uuid.NewString,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 50 * time.Millisecond
			b.MaxInterval = time.Second
			return b
		},
		now: func() time.Time { return time.Now().UTC() },
	}
}

// CreateMatch reserves the creator's entry fee and then opens the match. A
// failed create is compensated by refunding the reservation.
func (s *settlementService) CreateMatch(ctx context.Context, creator entities.Identity, entryFee int64) (*entities.Match, error) {
	if err := entities.ValidateEntryFee(entryFee, s.config.MinEntryFee); err != nil {
		s.reject(ctx, creator.UserID, "create_match", "", err)
		return nil, err
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	op := entities.LedgerOp{ID: "escrow/" + s.newOpID(), Type: entities.TransactionTypeEntryFee}
	entry, err := uow.AccountStore().Reserve(ctx, creator.UserID, entryFee, op)
	if err != nil {
		s.reject(ctx, creator.UserID, "create_match", "", err)
		return nil, err
	}

	match, err := uow.MatchRegistry().Create(ctx, creator, entryFee)
	if err != nil {
		err = s.compensate(ctx, uow.AccountStore(), creator.UserID, entryFee, op, err)
		s.reject(ctx, creator.UserID, "create_match", "", err)
		return nil, err
	}

	publishBalanceChange(uow, entry, match.ID)
	uow.EventBus().Publish(events.MatchCreatedEvent{
		MatchID:     match.ID,
		CreatorID:   creator.UserID,
		CreatorName: creator.Username,
		EntryFee:    entryFee,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit unit of work: %w", err)
	}

	log.WithFields(log.Fields{
		"matchID":  match.ID,
		"creator":  creator.UserID,
		"entryFee": entryFee,
	}).Info("Match created")
	return match, nil
}

// JoinMatch reserves the joiner's entry fee before the atomic join. Losing the
// join to another player refunds the reservation before the error returns.
func (s *settlementService) JoinMatch(ctx context.Context, matchID string, joiner entities.Identity) (*entities.Match, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	match, err := uow.MatchRegistry().Get(ctx, matchID)
	if err != nil {
		s.reject(ctx, joiner.UserID, "join_match", matchID, err)
		return nil, err
	}

	// Fail fast on a visibly full or own match; the registry re-checks atomically below
	if err := match.ValidateJoin(joiner.UserID); err != nil {
		s.reject(ctx, joiner.UserID, "join_match", matchID, err)
		return nil, err
	}

	op := entities.LedgerOp{ID: "escrow/" + s.newOpID(), Type: entities.TransactionTypeEntryFee, MatchID: matchID}
	entry, err := uow.AccountStore().Reserve(ctx, joiner.UserID, match.EntryFee, op)
	if err != nil {
		s.reject(ctx, joiner.UserID, "join_match", matchID, err)
		return nil, err
	}

	joined, err := uow.MatchRegistry().Join(ctx, matchID, joiner)
	if err != nil {
		err = s.compensate(ctx, uow.AccountStore(), joiner.UserID, match.EntryFee, op, err)
		s.reject(ctx, joiner.UserID, "join_match", matchID, err)
		return nil, err
	}

	publishBalanceChange(uow, entry, matchID)
	uow.EventBus().Publish(events.MatchJoinedEvent{
		MatchID:     joined.ID,
		Player1ID:   joined.Player1ID,
		Player1Name: joined.Player1Name,
		Player2ID:   joiner.UserID,
		Player2Name: joiner.Username,
		EntryFee:    joined.EntryFee,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit unit of work: %w", err)
	}

	log.WithFields(log.Fields{
		"matchID": matchID,
		"player1": joined.Player1ID,
		"player2": joiner.UserID,
	}).Info("Match joined")
	return joined, nil
}

// SubmitResult settles the match for winnerID and pays out the prize. When the
// ledger effects cannot all be applied the match stays Completed with a pending
// payout and ErrSettlementPending is returned alongside it.
func (s *settlementService) SubmitResult(ctx context.Context, matchID, submitterID, winnerID string) (*entities.Match, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	match, err := uow.MatchRegistry().Get(ctx, matchID)
	if err != nil {
		s.reject(ctx, submitterID, "submit_result", matchID, err)
		return nil, err
	}
	if err := match.ValidateReporter(submitterID); err != nil {
		s.reject(ctx, submitterID, "submit_result", matchID, err)
		return nil, err
	}

	prize := entities.CalculatePrize(match.EntryFee, s.config.PlatformFeePercent)
	settled, err := uow.MatchRegistry().Settle(ctx, matchID, winnerID, prize)
	if errors.Is(err, entities.ErrInvalidState) {
		return nil, s.resolveConflictingResult(ctx, uow, err, matchID, submitterID, winnerID)
	}
	if err != nil {
		s.reject(ctx, submitterID, "submit_result", matchID, err)
		return nil, err
	}

	paid, marked, err := s.payout(ctx, uow, settled)
	if err != nil {
		log.WithFields(log.Fields{
			"matchID":  matchID,
			"winnerID": winnerID,
			"error":    err,
		}).Warn("Settlement recorded but payout is pending")
		return settled, fmt.Errorf("%w: %v", entities.ErrSettlementPending, err)
	}
	if marked {
		uow.EventBus().Publish(events.MatchSettledEvent{
			MatchID:  paid.ID,
			WinnerID: paid.Winner(),
			LoserID:  paid.GetOpponent(paid.Winner()),
			EntryFee: paid.EntryFee,
			Payout:   paid.Payout,
			Fee:      paid.PlatformFee,
		})
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit unit of work: %w", err)
	}

	log.WithFields(log.Fields{
		"matchID":  matchID,
		"winnerID": winnerID,
		"payout":   paid.Payout,
		"fee":      paid.PlatformFee,
	}).Info("Match settled")
	return paid, nil
}

// resolveConflictingResult handles a report that lost the settle check. A
// report disagreeing with the recorded outcome raises a dispute; a replay of
// the recorded winner only finishes any pending payout.
func (s *settlementService) resolveConflictingResult(ctx context.Context, uow interfaces.UnitOfWork, settleErr error, matchID, reporterID, reportedWinner string) error {
	current, err := uow.MatchRegistry().Get(ctx, matchID)
	if err != nil {
		return err
	}

	conflict := &entities.ResultConflictError{
		MatchID:        matchID,
		ReporterID:     reporterID,
		ReportedWinner: reportedWinner,
		Status:         current.Status,
		RecordedWinner: current.Winner(),
	}

	switch current.Status {
	case entities.MatchStatusCompleted:
		if current.Winner() == reportedWinner {
			if current.PayoutStatus == entities.PayoutStatusPending {
				paid, marked, err := s.payout(ctx, uow, current)
				if err != nil {
					log.WithFields(log.Fields{
						"matchID": matchID,
						"error":   err,
					}).Warn("Payout still pending after replayed result")
					return conflict
				}
				if marked {
					publishRecovered(uow, paid)
				}
				if err := uow.Commit(); err != nil {
					return fmt.Errorf("failed to commit unit of work: %w", err)
				}
			}
			return conflict
		}

	case entities.MatchStatusDisputed:

	case entities.MatchStatusInProgress:
		// The settle that beat this report is not visible yet; treat the disagreement as a dispute
		if _, err := uow.MatchRegistry().FlagDispute(ctx, matchID); err != nil && !errors.Is(err, entities.ErrInvalidState) {
			return err
		}
		conflict.Status = entities.MatchStatusDisputed

	default:
		s.reject(ctx, reporterID, "submit_result", matchID, settleErr)
		return settleErr
	}

	report := &entities.DisputeReport{
		MatchID:        matchID,
		ReporterID:     reporterID,
		ReportedWinner: reportedWinner,
		RecordedWinner: current.Winner(),
		StatusAtReport: current.Status,
		Reason:         "conflicting result report",
		CreatedAt:      s.now(),
	}
	if err := uow.DisputeRepository().Record(ctx, report); err != nil {
		return errors.Join(conflict, err)
	}

	conflict.DisputeRaised = true
	uow.EventBus().Publish(events.DisputeReportedEvent{
		MatchID:        matchID,
		ReporterID:     reporterID,
		ReportedWinner: reportedWinner,
		RecordedWinner: current.Winner(),
		Status:         conflict.Status,
	})
	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit unit of work: %w", err)
	}

	log.WithFields(log.Fields{
		"matchID":        matchID,
		"reporterID":     reporterID,
		"reportedWinner": reportedWinner,
		"recordedWinner": current.Winner(),
		"status":         current.Status,
	}).Warn("Conflicting result report raised a dispute")
	return conflict
}

// FlagDispute lets a participant move an in-progress match to Disputed. Escrow stays held.
func (s *settlementService) FlagDispute(ctx context.Context, matchID, reporterID, reason string) (*entities.Match, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	match, err := uow.MatchRegistry().Get(ctx, matchID)
	if err != nil {
		s.reject(ctx, reporterID, "flag_dispute", matchID, err)
		return nil, err
	}
	if err := match.ValidateReporter(reporterID); err != nil {
		s.reject(ctx, reporterID, "flag_dispute", matchID, err)
		return nil, err
	}

	disputed, err := uow.MatchRegistry().FlagDispute(ctx, matchID)
	if err != nil {
		s.reject(ctx, reporterID, "flag_dispute", matchID, err)
		return nil, err
	}

	report := &entities.DisputeReport{
		MatchID:        matchID,
		ReporterID:     reporterID,
		StatusAtReport: entities.MatchStatusInProgress,
		Reason:         reason,
		CreatedAt:      s.now(),
	}
	if err := uow.DisputeRepository().Record(ctx, report); err != nil {
		log.WithFields(log.Fields{
			"matchID": matchID,
			"error":   err,
		}).Error("Failed to record dispute report")
	}

	uow.EventBus().Publish(events.MatchDisputedEvent{
		MatchID:    matchID,
		ReporterID: reporterID,
		Reason:     reason,
	})
	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit unit of work: %w", err)
	}

	log.WithFields(log.Fields{
		"matchID":    matchID,
		"reporterID": reporterID,
	}).Info("Match flagged as disputed")
	return disputed, nil
}

func (s *settlementService) GetMatch(ctx context.Context, matchID string) (*entities.Match, error) {
	return s.uowFactory.Create().MatchRegistry().Get(ctx, matchID)
}

func (s *settlementService) ListOpenMatches(ctx context.Context, userID string) ([]*entities.Match, error) {
	return s.uowFactory.Create().MatchRegistry().ListOpen(ctx, userID)
}

func (s *settlementService) ListUserMatches(ctx context.Context, userID string) ([]*entities.Match, error) {
	return s.uowFactory.Create().MatchRegistry().ListForUser(ctx, userID)
}

// ReconcilePendingPayouts finishes the ledger effects of every Completed match
// whose payout is still pending. It returns how many were completed.
func (s *settlementService) ReconcilePendingPayouts(ctx context.Context) (int, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin unit of work: %w", err)
	}
	defer uow.Rollback()

	pending, err := uow.MatchRegistry().ListPendingPayouts(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to list pending payouts: %w", err)
	}

	var errs []error
	recovered := 0
	for _, match := range pending {
		paid, marked, err := s.payout(ctx, uow, match)
		if err != nil {
			log.WithFields(log.Fields{
				"matchID": match.ID,
				"error":   err,
			}).Warn("Pending payout could not be completed")
			errs = append(errs, fmt.Errorf("match %s: %w", match.ID, err))
			continue
		}

		if !marked {
			// A concurrent settlement finished this payout first
			continue
		}
		publishRecovered(uow, paid)
		recovered++
	}

	if err := uow.Commit(); err != nil {
		return recovered, fmt.Errorf("failed to commit unit of work: %w", err)
	}

	if recovered > 0 {
		log.WithField("recovered", recovered).Info("Reconciled pending payouts")
	}
	return recovered, errors.Join(errs...)
}

// payout applies the ledger effects of a settled match. Every step carries an
// operation id derived from the match, so running it again after a partial
// failure never pays twice. marked is false when another run had already
// marked the match paid; callers announce the settlement only when it is true.
func (s *settlementService) payout(ctx context.Context, uow interfaces.UnitOfWork, match *entities.Match) (paid *entities.Match, marked bool, err error) {
	winnerID := match.Winner()
	loserID := match.GetOpponent(winnerID)
	accounts := uow.AccountStore()

	var entry *entities.BalanceHistory
	if match.Payout > 0 {
		op := entities.LedgerOp{ID: "payout/" + match.ID, Type: entities.TransactionTypeMatchPayout, MatchID: match.ID}
		entry, err = accounts.Credit(ctx, winnerID, match.Payout, op)
		if err != nil {
			return nil, false, fmt.Errorf("failed to credit payout: %w", err)
		}
	}

	if err := accounts.RecordOutcome(ctx, winnerID, true, "outcome/"+match.ID); err != nil {
		return nil, false, err
	}
	if err := accounts.RecordOutcome(ctx, loserID, false, "outcome/"+match.ID); err != nil {
		return nil, false, err
	}

	if err := uow.FeeLedger().Record(ctx, &entities.FeeEntry{
		MatchID:   match.ID,
		Amount:    match.PlatformFee,
		Pool:      match.EntryFee * 2,
		CreatedAt: s.now(),
	}); err != nil {
		return nil, false, err
	}

	paid, marked, err = uow.MatchRegistry().MarkPaid(ctx, match.ID)
	if err != nil {
		return nil, false, fmt.Errorf("failed to mark payout paid: %w", err)
	}

	publishBalanceChange(uow, entry, match.ID)
	return paid, marked, nil
}

func publishRecovered(uow interfaces.UnitOfWork, paid *entities.Match) {
	uow.EventBus().Publish(events.SettlementRecoveredEvent{
		MatchID:  paid.ID,
		WinnerID: paid.Winner(),
		LoserID:  paid.GetOpponent(paid.Winner()),
		Payout:   paid.Payout,
		Fee:      paid.PlatformFee,
	})
}

// compensate refunds a reservation after a later step failed. The refund is
// idempotent, so it is retried with backoff until it lands or attempts run
// out. The returned error always matches cause.
func (s *settlementService) compensate(ctx context.Context, accounts interfaces.AccountStore, accountID string, amount int64, reserved entities.LedgerOp, cause error) error {
	refund := entities.LedgerOp{
		ID:      "refund/" + reserved.ID,
		Type:    entities.TransactionTypeEntryRefund,
		MatchID: reserved.MatchID,
	}

	// The refund must run even if the caller has gone away
	ctx = context.WithoutCancel(ctx)
	operation := func() error {
		_, err := accounts.Credit(ctx, accountID, amount, refund)
		if errors.Is(err, entities.ErrNotFound) || errors.Is(err, entities.ErrInvalidAmount) {
			return backoff.Permanent(err)
		}
		return err
	}

	b := backoff.WithContext(backoff.WithMaxRetries(s.newBackOff(), refundAttempts), ctx)
	if err := backoff.Retry(operation, b); err != nil {
		log.WithFields(log.Fields{
			"accountID": accountID,
			"matchID":   reserved.MatchID,
			"opID":      refund.ID,
			"amount":    amount,
			"cause":     cause,
			"error":     err,
		}).Error("Compensating refund failed")
		return errors.Join(cause, fmt.Errorf("failed to refund reservation %s: %w", reserved.ID, err))
	}

	log.WithFields(log.Fields{
		"accountID": accountID,
		"matchID":   reserved.MatchID,
		"opID":      refund.ID,
		"amount":    amount,
		"cause":     cause,
	}).Warn("Refunded reservation after failed step")

	s.notify(ctx, events.EscrowRefundedEvent{
		MatchID:   reserved.MatchID,
		AccountID: accountID,
		Amount:    amount,
		Reason:    rejectionReason(cause),
	})
	return cause
}

// reject reports a user-facing failure outside the failed operation's unit of work
func (s *settlementService) reject(ctx context.Context, userID, operation, matchID string, err error) {
	log.WithFields(log.Fields{
		"userID":    userID,
		"operation": operation,
		"matchID":   matchID,
		"error":     err,
	}).Debug("Operation rejected")

	s.notify(ctx, events.OperationRejectedEvent{
		UserID:    userID,
		Operation: operation,
		MatchID:   matchID,
		Err:       err,
	})
}

// notify publishes events in their own unit of work so they survive the
// rollback of the operation that raised them
func (s *settlementService) notify(ctx context.Context, evts ...events.Event) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		log.WithError(err).Warn("Failed to begin notification unit of work")
		return
	}
	for _, e := range evts {
		uow.EventBus().Publish(e)
	}
	if err := uow.Commit(); err != nil {
		log.WithError(err).Warn("Failed to publish notifications")
	}
}

func rejectionReason(err error) string {
	return events.OperationRejectedEvent{Err: err}.Message()
}
