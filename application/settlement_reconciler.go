package application

import (
	"context"
	"fmt"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/interfaces"

	"github.com/go-co-op/gocron/v2"
	log "github.com/sirupsen/logrus"
)

// ReconcileRecorder receives the outcome of each reconcile run
type ReconcileRecorder interface {
	RecordReconcileRun(recovered int, err error)
}

// SettlementReconciler periodically completes payouts that a crash or a
// storage failure left pending
type SettlementReconciler struct {
	settlement interfaces.SettlementService
	recorder   ReconcileRecorder
	interval   time.Duration
}

// NewSettlementReconciler creates a reconciler running every interval
func NewSettlementReconciler(settlement interfaces.SettlementService, recorder ReconcileRecorder, interval time.Duration) *SettlementReconciler {
	return &SettlementReconciler{
		settlement: settlement,
		recorder:   recorder,
		interval:   interval,
	}
}

// Start schedules the reconcile job, running it once immediately. The
// returned func stops the scheduler and waits for a running pass to finish.
func (r *SettlementReconciler) Start(ctx context.Context) (func(), error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}

	_, err = scheduler.NewJob(
		gocron.DurationJob(r.interval),
		gocron.NewTask(func() { r.RunOnce(ctx) }),
		gocron.WithName("settlement-reconciler"),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
		gocron.WithStartAt(gocron.WithStartImmediately()),
	)
	if err != nil {
		_ = scheduler.Shutdown()
		return nil, fmt.Errorf("failed to schedule reconcile job: %w", err)
	}

	scheduler.Start()
	log.WithField("interval", r.interval).Info("Settlement reconciler started")

	return func() {
		if err := scheduler.Shutdown(); err != nil {
			log.WithError(err).Warn("Settlement reconciler did not shut down cleanly")
			return
		}
		log.Info("Settlement reconciler stopped")
	}, nil
}

// RunOnce performs a single reconcile pass
func (r *SettlementReconciler) RunOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}

	recovered, err := r.settlement.ReconcilePendingPayouts(ctx)
	if r.recorder != nil {
		r.recorder.RecordReconcileRun(recovered, err)
	}
	if err != nil {
		log.WithFields(log.Fields{
			"recovered": recovered,
			"error":     err,
		}).Error("Settlement reconcile pass failed")
	}
	return recovered
}
