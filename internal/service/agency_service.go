package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rescueconnect/internal/domain"
	"rescueconnect/pkg/e"
	"rescueconnect/pkg/validator"

	"github.com/google/uuid"
)

type agencyService struct {
	repo   AgencyRepository
	tokens TokenIssuer
	logger *slog.Logger
}

func NewAgencyService(repo AgencyRepository, tokens TokenIssuer, logger *slog.Logger) AgencyService {
	return &agencyService{
		repo:   repo,
		tokens: tokens,
		logger: logger,
	}
}

func (s *agencyService) Register(ctx context.Context, req domain.RegisterAgencyRequest) (*domain.RegisterAgencyResponse, error) {
	const op = "service.Agency.Register"

	req.Normalize()
	if err := validator.ValidateStruct(&req); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	agency := &domain.Agency{
		ID:          uuid.New(),
		Name:        req.Name,
		Coordinates: domain.ToCoordinates(req.Coordinates),
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.repo.Create(ctx, agency); err != nil {
		return nil, err
	}

	token, err := s.tokens.GenerateToken(agency.ID.String(), string(domain.RoleMember))
	if err != nil {
		return nil, fmt.Errorf("%s: issue token: %w", op, err)
	}

	s.logger.Info("agency registered",
		slog.String("agency_id", agency.ID.String()),
		slog.String("name", agency.Name),
	)
	return &domain.RegisterAgencyResponse{Agency: agency, Token: token}, nil
}

func (s *agencyService) Get(ctx context.Context, id uuid.UUID) (*domain.Agency, error) {
	return s.repo.Get(ctx, id)
}

func (s *agencyService) UpdateLocation(ctx context.Context, id uuid.UUID, req domain.UpdateLocationRequest, actor domain.Actor) (*domain.Agency, error) {
	const op = "service.Agency.UpdateLocation"

	if !actor.CanActFor(id) {
		return nil, fmt.Errorf("%s: %w", op, e.ErrForbidden)
	}
	if err := validator.ValidateStruct(&req); err != nil {
		return nil, err
	}

	if err := s.repo.UpdateLocation(ctx, id, domain.ToCoordinates(req.Coordinates)); err != nil {
		return nil, err
	}
	s.logger.Info("agency location updated",
		slog.String("agency_id", id.String()),
		slog.Any("coordinates", req.Coordinates),
	)
	return s.repo.Get(ctx, id)
}
