package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rescueconnect/internal/domain"
	"rescueconnect/internal/metrics"
	"rescueconnect/pkg/e"
	"rescueconnect/pkg/validator"

	"github.com/google/uuid"
)

type alertService struct {
	repo       AlertRepository
	dispatcher Dispatcher
	logger     *slog.Logger
	now        func() time.Time
}

func NewAlertService(repo AlertRepository, dispatcher Dispatcher, logger *slog.Logger) AlertService {
	return &alertService{
		repo:       repo,
		dispatcher: dispatcher,
		logger:     logger,
		now:        time.Now,
	}
}

func (s *alertService) Create(ctx context.Context, actor domain.Actor, creator uuid.UUID, req domain.CreateAlertRequest) (*domain.Alert, error) {
	const op = "service.Alert.Create"

	if !actor.CanActFor(creator) {
		s.logger.Warn("alert creation refused",
			slog.String("actor_agency", actor.AgencyID.String()),
			slog.String("creator", creator.String()),
		)
		return nil, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}

	req.Normalize()
	if err := validator.ValidateStruct(&req); err != nil {
		return nil, err
	}

	now := s.now().UTC()
	alert := &domain.Alert{
		ID:          uuid.New(),
		Title:       req.Title,
		Message:     req.Message,
		Severity:    req.Severity,
		Coordinates: domain.ToCoordinates(req.Coordinates),
		RadiusKM:    req.Radius,
		CreatedBy:   creator,
		Status:      domain.AlertActive,
		Recipients:  parseRecipients(req.Recipients),
		ReadBy:      []uuid.UUID{},
		ExpiresAt:   req.ExpiresAt.UTC(),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.repo.Create(ctx, alert); err != nil {
		s.logger.Error("alert store failed", slog.String("op", op), slog.Any("error", err))
		return nil, err
	}
	metrics.AlertsCreated.WithLabelValues(string(alert.Severity)).Inc()

	s.logger.Info("alert created",
		slog.String("alert_id", alert.ID.String()),
		slog.String("created_by", creator.String()),
		slog.String("severity", string(alert.Severity)),
		slog.Float64("radius_km", alert.RadiusKM),
		slog.Int("explicit_recipients", len(alert.Recipients)),
	)

	// The alert is durable at this point; a distribution failure must not undo that.
	if err := s.dispatcher.Dispatch(ctx, domain.NewDistributionJob(alert)); err != nil {
		metrics.DispatchFailures.Inc()
		s.logger.Error("alert distribution failed",
			slog.String("alert_id", alert.ID.String()),
			slog.Any("error", err),
		)
	}

	return alert, nil
}

func (s *alertService) Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	const op = "service.Alert.Get"

	alert, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if alert.Expired(s.now()) {
		return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return alert, nil
}

func (s *alertService) Deactivate(ctx context.Context, id, requester uuid.UUID) error {
	const op = "service.Alert.Deactivate"

	alert, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	if alert.CreatedBy != requester {
		s.logger.Warn("deactivation refused",
			slog.String("alert_id", id.String()),
			slog.String("requester", requester.String()),
		)
		return fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}
	if alert.Status == domain.AlertInactive {
		return nil
	}

	if err := s.repo.Deactivate(ctx, id); err != nil {
		return err
	}
	s.logger.Info("alert deactivated", slog.String("alert_id", id.String()))
	return nil
}

func (s *alertService) MarkRead(ctx context.Context, id, agencyID uuid.UUID) error {
	if err := s.repo.AddReader(ctx, id, agencyID); err != nil {
		return err
	}
	metrics.ReadAcks.Inc()
	s.logger.Debug("alert marked as read",
		slog.String("alert_id", id.String()),
		slog.String("agency_id", agencyID.String()),
	)
	return nil
}

func (s *alertService) UnreadCount(ctx context.Context, agencyID uuid.UUID) (int64, error) {
	return s.repo.CountUnread(ctx, agencyID)
}

func (s *alertService) ListForAgency(ctx context.Context, agencyID uuid.UUID) ([]domain.AlertView, error) {
	views, err := s.repo.ListForAgency(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]domain.AlertView, 0, len(views))
	for _, v := range views {
		if v.Status != domain.AlertActive || v.Expired(now) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

func (s *alertService) ListSentBy(ctx context.Context, agencyID uuid.UUID, actor domain.Actor) ([]domain.SentAlertView, error) {
	const op = "service.Alert.ListSentBy"

	if !actor.CanActFor(agencyID) {
		return nil, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}

	views, err := s.repo.ListSentBy(ctx, agencyID)
	if err != nil {
		return nil, err
	}

	now := s.now()
	out := make([]domain.SentAlertView, 0, len(views))
	for _, v := range views {
		if v.Expired(now) {
			continue
		}
		out = append(out, v)
	}
	return out, nil
}

// parseRecipients expects ids already checked by the validator; duplicates are dropped.
func parseRecipients(ids []string) []uuid.UUID {
	out := make([]uuid.UUID, 0, len(ids))
	seen := make(map[uuid.UUID]struct{}, len(ids))
	for _, raw := range ids {
		id, err := uuid.Parse(raw)
		if err != nil {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
