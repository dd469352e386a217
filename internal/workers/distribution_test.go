package workers

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"rescueconnect/internal/domain"
	"rescueconnect/internal/metrics"
	mock_workers "rescueconnect/internal/workers/mocks"
	"rescueconnect/pkg/e"
)

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func newTestPool(source JobSource, runner JobRunner) *DistributionPool {
	p := NewDistributionPool(source, runner, newTestLogger(), 1)
	p.Backoff = time.Millisecond
	p.PopTimeout = 10 * time.Millisecond
	return p
}

func TestDistributionPool_Process_RetriesUntilSuccess(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner := mock_workers.NewMockJobRunner(ctrl)
	p := newTestPool(mock_workers.NewMockJobSource(ctrl), runner)

	job := domain.DistributionJob{AlertID: uuid.New()}
	gomock.InOrder(
		runner.EXPECT().Distribute(gomock.Any(), job).Return(domain.DistributionResult{}, e.ErrDependencyUnavailable),
		runner.EXPECT().Distribute(gomock.Any(), job).Return(domain.DistributionResult{}, e.ErrDependencyUnavailable),
		runner.EXPECT().Distribute(gomock.Any(), job).Return(domain.DistributionResult{AlertID: job.AlertID}, nil),
	)

	before := testutil.ToFloat64(metrics.DistributionDropped)
	p.process(context.Background(), job)

	if got := testutil.ToFloat64(metrics.DistributionDropped); got != before {
		t.Fatalf("job must not be dropped, dropped counter moved %v -> %v", before, got)
	}
}

func TestDistributionPool_Process_DropsAfterMaxAttempts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner := mock_workers.NewMockJobRunner(ctrl)
	p := newTestPool(mock_workers.NewMockJobSource(ctrl), runner)

	runner.EXPECT().
		Distribute(gomock.Any(), gomock.Any()).
		Return(domain.DistributionResult{}, errors.New("boom")).
		Times(p.MaxAttempts)

	before := testutil.ToFloat64(metrics.DistributionDropped)
	p.process(context.Background(), domain.DistributionJob{AlertID: uuid.New()})

	if got := testutil.ToFloat64(metrics.DistributionDropped); got != before+1 {
		t.Fatalf("expected dropped counter %v, got %v", before+1, got)
	}
}

func TestDistributionPool_Process_StopsOnCancel(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	runner := mock_workers.NewMockJobRunner(ctrl)
	p := newTestPool(mock_workers.NewMockJobSource(ctrl), runner)
	p.Backoff = time.Hour

	ctx, cancel := context.WithCancel(context.Background())
	runner.EXPECT().
		Distribute(gomock.Any(), gomock.Any()).
		DoAndReturn(func(context.Context, domain.DistributionJob) (domain.DistributionResult, error) {
			cancel()
			return domain.DistributionResult{}, errors.New("boom")
		}).
		Times(1)

	done := make(chan struct{})
	go func() {
		p.process(ctx, domain.DistributionJob{AlertID: uuid.New()})
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("process did not return after cancel")
	}
}

func TestDistributionPool_Run_DrainsQueueAndStops(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	source := mock_workers.NewMockJobSource(ctrl)
	runner := mock_workers.NewMockJobRunner(ctrl)
	p := newTestPool(source, runner)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	job := domain.DistributionJob{AlertID: uuid.New()}
	gomock.InOrder(
		source.EXPECT().BRPop(gomock.Any(), p.PopTimeout).Return(domain.DistributionJob{}, e.ErrQueueEmpty),
		source.EXPECT().BRPop(gomock.Any(), p.PopTimeout).Return(job, nil),
	)
	source.EXPECT().
		BRPop(gomock.Any(), p.PopTimeout).
		DoAndReturn(func(ctx context.Context, _ time.Duration) (domain.DistributionJob, error) {
			<-ctx.Done()
			return domain.DistributionJob{}, ctx.Err()
		}).
		AnyTimes()

	runner.EXPECT().
		Distribute(gomock.Any(), job).
		DoAndReturn(func(context.Context, domain.DistributionJob) (domain.DistributionResult, error) {
			cancel()
			return domain.DistributionResult{AlertID: job.AlertID}, nil
		}).
		Times(1)

	done := make(chan struct{})
	go func() {
		p.Run(ctx)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("pool did not stop")
	}
}
