package application

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/LuckyYaduvanshi5/clash-cash-arena/domain/testhelpers"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type recordedRun struct {
	recovered int
	err       error
}

type recordingRecorder struct {
	mu   sync.Mutex
	runs []recordedRun
}

func (r *recordingRecorder) RecordReconcileRun(recovered int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.runs = append(r.runs, recordedRun{recovered: recovered, err: err})
}

func TestSettlementReconciler_RunOnce(t *testing.T) {
	settlement := new(testhelpers.MockSettlementService)
	settlement.On("ReconcilePendingPayouts", mock.Anything).Return(2, nil).Once()
	recorder := &recordingRecorder{}
	reconciler := NewSettlementReconciler(settlement, recorder, time.Minute)

	assert.Equal(t, 2, reconciler.RunOnce(context.Background()))
	require.Len(t, recorder.runs, 1)
	assert.Equal(t, 2, recorder.runs[0].recovered)
	assert.NoError(t, recorder.runs[0].err)
	settlement.AssertExpectations(t)
}

func TestSettlementReconciler_RunOnceRecordsFailure(t *testing.T) {
	boom := errors.New("store unavailable")
	settlement := new(testhelpers.MockSettlementService)
	settlement.On("ReconcilePendingPayouts", mock.Anything).Return(1, boom).Once()
	recorder := &recordingRecorder{}
	reconciler := NewSettlementReconciler(settlement, recorder, time.Minute)

	assert.Equal(t, 1, reconciler.RunOnce(context.Background()))
	require.Len(t, recorder.runs, 1)
	assert.ErrorIs(t, recorder.runs[0].err, boom)
}

func TestSettlementReconciler_SkipsCancelledContext(t *testing.T) {
	settlement := new(testhelpers.MockSettlementService)
	reconciler := NewSettlementReconciler(settlement, nil, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.Equal(t, 0, reconciler.RunOnce(ctx))
	settlement.AssertNotCalled(t, "ReconcilePendingPayouts", mock.Anything)
}

func TestSettlementReconciler_StartRunsImmediately(t *testing.T) {
	ran := make(chan struct{}, 1)
	settlement := new(testhelpers.MockSettlementService)
	settlement.On("ReconcilePendingPayouts", mock.Anything).Return(0, nil).Run(func(mock.Arguments) {
		select {
		case ran <- struct{}{}:
		default:
		}
	})
	reconciler := NewSettlementReconciler(settlement, nil, time.Hour)

	stop, err := reconciler.Start(context.Background())
	require.NoError(t, err)
	defer stop()

	select {
	case <-ran:
	case <-time.After(2 * time.Second):
		t.Fatal("reconcile pass did not run on start")
	}
}
