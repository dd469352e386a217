package service

import (
	"context"

	"rescueconnect/internal/domain"

	"github.com/google/uuid"
)

//go:generate mockgen -source=service.go -destination=mocks/mock.go
type AlertService interface {
	Create(ctx context.Context, actor domain.Actor, creator uuid.UUID, req domain.CreateAlertRequest) (*domain.Alert, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	Deactivate(ctx context.Context, id, requester uuid.UUID) error
	MarkRead(ctx context.Context, id, agencyID uuid.UUID) error
	UnreadCount(ctx context.Context, agencyID uuid.UUID) (int64, error)
	ListForAgency(ctx context.Context, agencyID uuid.UUID) ([]domain.AlertView, error)
	ListSentBy(ctx context.Context, agencyID uuid.UUID, actor domain.Actor) ([]domain.SentAlertView, error)
}

type AgencyService interface {
	Register(ctx context.Context, req domain.RegisterAgencyRequest) (*domain.RegisterAgencyResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Agency, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, req domain.UpdateLocationRequest, actor domain.Actor) (*domain.Agency, error)
}

// AlertRepository reads must never return an alert whose expiresAt has passed.
type AlertRepository interface {
	Create(ctx context.Context, alert *domain.Alert) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error)
	Deactivate(ctx context.Context, id uuid.UUID) error
	AddReader(ctx context.Context, id, agencyID uuid.UUID) error
	ListForAgency(ctx context.Context, agencyID uuid.UUID) ([]domain.AlertView, error)
	CountUnread(ctx context.Context, agencyID uuid.UUID) (int64, error)
	ListSentBy(ctx context.Context, agencyID uuid.UUID) ([]domain.SentAlertView, error)
	PurgeExpired(ctx context.Context) (int64, error)
}

type AgencyRepository interface {
	Create(ctx context.Context, agency *domain.Agency) error
	Get(ctx context.Context, id uuid.UUID) (*domain.Agency, error)
	UpdateLocation(ctx context.Context, id uuid.UUID, coords domain.Coordinates) error
	FindNearby(ctx context.Context, coords domain.Coordinates, radiusKm float64, exclude uuid.UUID) ([]uuid.UUID, error)
	AddVisibleAlert(ctx context.Context, alertID uuid.UUID, agencyIDs []uuid.UUID) (int64, error)
}

// Dispatcher hands a freshly stored alert over to distribution.
type Dispatcher interface {
	Dispatch(ctx context.Context, job domain.DistributionJob) error
}

type DistributionQueue interface {
	Enqueue(ctx context.Context, job domain.DistributionJob) error
}

type TokenIssuer interface {
	GenerateToken(agencyID, role string) (string, error)
}

type Service struct {
	AlertService  AlertService
	AgencyService AgencyService
}

func NewService(alertService AlertService, agencyService AgencyService) *Service {
	return &Service{
		AlertService:  alertService,
		AgencyService: agencyService,
	}
}
