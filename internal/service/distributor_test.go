package service_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"rescueconnect/internal/domain"
	"rescueconnect/internal/service"
	mock_service "rescueconnect/internal/service/mocks"
	"rescueconnect/pkg/e"
)

func TestDistributor_UnionsNearbyAndExplicit_NoDuplicates(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	agencies := mock_service.NewMockAgencyRepository(ctrl)
	d := service.NewDistributor(agencies, newTestLogger())

	creator := uuid.New()
	near1, near2, explicitOnly := uuid.New(), uuid.New(), uuid.New()
	job := domain.DistributionJob{
		AlertID:     uuid.New(),
		CreatedBy:   creator,
		Coordinates: domain.Coordinates{0, 0},
		RadiusKM:    10,
		Recipients:  []uuid.UUID{near2, explicitOnly},
	}

	agencies.EXPECT().
		FindNearby(gomock.Any(), job.Coordinates, 10.0, creator).
		Return([]uuid.UUID{near1, near2}, nil).
		Times(1)

	agencies.EXPECT().
		AddVisibleAlert(gomock.Any(), job.AlertID, []uuid.UUID{near1, near2, explicitOnly}).
		Return(int64(3), nil).
		Times(1)

	res, err := d.Distribute(context.Background(), job)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Nearby != 2 || res.Recipients != 3 || res.Added != 3 {
		t.Fatalf("unexpected result: %+v", res)
	}
}

func TestDistributor_NoRecipients_SkipsFanOut(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	agencies := mock_service.NewMockAgencyRepository(ctrl)
	d := service.NewDistributor(agencies, newTestLogger())

	agencies.EXPECT().
		FindNearby(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, nil).
		Times(1)

	res, err := d.Distribute(context.Background(), domain.DistributionJob{AlertID: uuid.New(), RadiusKM: 1})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if res.Recipients != 0 {
		t.Fatalf("expected no recipients, got %+v", res)
	}
}

func TestDistributor_ProximityFailure_DependencyUnavailable(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	agencies := mock_service.NewMockAgencyRepository(ctrl)
	d := service.NewDistributor(agencies, newTestLogger())

	cause := errors.New("connection refused")
	agencies.EXPECT().
		FindNearby(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, cause).
		Times(1)

	_, err := d.Distribute(context.Background(), domain.DistributionJob{AlertID: uuid.New(), RadiusKM: 1})
	if !errors.Is(err, e.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
	if !errors.Is(err, cause) {
		t.Fatalf("expected cause to be kept, got %v", err)
	}
}

func TestDistributor_FanOutFailure_DependencyUnavailable(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	agencies := mock_service.NewMockAgencyRepository(ctrl)
	d := service.NewDistributor(agencies, newTestLogger())

	agencies.EXPECT().
		FindNearby(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return([]uuid.UUID{uuid.New()}, nil).
		Times(1)
	agencies.EXPECT().
		AddVisibleAlert(gomock.Any(), gomock.Any(), gomock.Any()).
		Return(int64(0), errors.New("timeout")).
		Times(1)

	_, err := d.Distribute(context.Background(), domain.DistributionJob{AlertID: uuid.New(), RadiusKM: 1})
	if !errors.Is(err, e.ErrDependencyUnavailable) {
		t.Fatalf("expected ErrDependencyUnavailable, got %v", err)
	}
}

func TestQueueDispatcher_Enqueued_NoFallback(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	queue := mock_service.NewMockDistributionQueue(ctrl)
	fallback := mock_service.NewMockDispatcher(ctrl)
	d := service.NewQueueDispatcher(queue, fallback, newTestLogger())

	job := domain.DistributionJob{AlertID: uuid.New()}
	queue.EXPECT().Enqueue(gomock.Any(), job).Return(nil).Times(1)

	if err := d.Dispatch(context.Background(), job); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestQueueDispatcher_EnqueueFails_FallsBack(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	queue := mock_service.NewMockDistributionQueue(ctrl)
	fallback := mock_service.NewMockDispatcher(ctrl)
	d := service.NewQueueDispatcher(queue, fallback, newTestLogger())

	job := domain.DistributionJob{AlertID: uuid.New()}
	gomock.InOrder(
		queue.EXPECT().Enqueue(gomock.Any(), job).Return(e.ErrDependencyUnavailable),
		fallback.EXPECT().Dispatch(gomock.Any(), job).Return(nil),
	)

	if err := d.Dispatch(context.Background(), job); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
}

func TestInlineDispatcher_SurvivesCanceledRequest(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	agencies := mock_service.NewMockAgencyRepository(ctrl)
	d := service.NewInlineDispatcher(service.NewDistributor(agencies, newTestLogger()), time.Second)

	ctx, cancel := context.WithCancel(context.Background())

	var ctxErr error
	agencies.EXPECT().
		FindNearby(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ domain.Coordinates, _ float64, _ uuid.UUID) ([]uuid.UUID, error) {
			ctxErr = ctx.Err()
			return nil, nil
		}).
		Times(1)

	if err := d.Dispatch(ctx, domain.DistributionJob{AlertID: uuid.New(), RadiusKM: 1}); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	cancel()
	d.Wait()

	if ctxErr != nil {
		t.Fatalf("distribution context must not inherit request cancellation, got %v", ctxErr)
	}
}

func TestInlineDispatcher_ReturnsBeforeSlowDistribution(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	alerts := mock_service.NewMockAlertRepository(ctrl)
	agencies := mock_service.NewMockAgencyRepository(ctrl)
	dispatcher := service.NewInlineDispatcher(service.NewDistributor(agencies, newTestLogger()), 5*time.Second)
	svc := service.NewAlertService(alerts, dispatcher, newTestLogger())

	release := make(chan struct{})
	alerts.EXPECT().Create(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	agencies.EXPECT().
		FindNearby(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		DoAndReturn(func(ctx context.Context, _ domain.Coordinates, _ float64, _ uuid.UUID) ([]uuid.UUID, error) {
			select {
			case <-release:
			case <-time.After(2 * time.Second):
			}
			return nil, nil
		}).
		Times(1)

	creator := uuid.New()
	start := time.Now()
	if _, err := svc.Create(context.Background(), domain.Actor{AgencyID: creator}, creator, validCreateRequest()); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if elapsed := time.Since(start); elapsed > 500*time.Millisecond {
		t.Fatalf("create waited for distribution: %s", elapsed)
	}

	close(release)
	dispatcher.Wait()
}

// Alert creation must succeed and the alert stay retrievable when fan-out breaks.
func TestAlertService_InlineDistributionFailure_AlertRetrievable(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	alerts := mock_service.NewMockAlertRepository(ctrl)
	agencies := mock_service.NewMockAgencyRepository(ctrl)
	dispatcher := service.NewInlineDispatcher(service.NewDistributor(agencies, newTestLogger()), time.Second)
	svc := service.NewAlertService(alerts, dispatcher, newTestLogger())

	var stored *domain.Alert
	alerts.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *domain.Alert) error {
			stored = a
			return nil
		}).
		Times(1)
	agencies.EXPECT().
		FindNearby(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).
		Return(nil, errors.New("directory unavailable")).
		Times(1)

	creator := uuid.New()
	created, err := svc.Create(context.Background(), domain.Actor{AgencyID: creator}, creator, validCreateRequest())
	if err != nil {
		t.Fatalf("create must succeed, got %v", err)
	}
	dispatcher.Wait()

	alerts.EXPECT().
		Get(gomock.Any(), created.ID).
		DoAndReturn(func(_ context.Context, _ uuid.UUID) (*domain.Alert, error) { return stored, nil }).
		Times(1)

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("alert must be retrievable, got %v", err)
	}
	if got.ID != created.ID {
		t.Fatalf("unexpected alert %s", got.ID)
	}
}
