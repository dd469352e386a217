package service_test

import (
	"context"
	"errors"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/google/uuid"

	"rescueconnect/internal/domain"
	"rescueconnect/internal/service"
	mock_service "rescueconnect/internal/service/mocks"
	"rescueconnect/pkg/e"
)

func TestAgencyService_Register_OK_IssuesMemberToken(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockAgencyRepository(ctrl)
	tokens := mock_service.NewMockTokenIssuer(ctrl)
	svc := service.NewAgencyService(repo, tokens, newTestLogger())

	var stored *domain.Agency
	repo.EXPECT().
		Create(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, a *domain.Agency) error {
			stored = a
			return nil
		}).
		Times(1)
	tokens.EXPECT().
		GenerateToken(gomock.Any(), string(domain.RoleMember)).
		DoAndReturn(func(agencyID, _ string) (string, error) {
			if agencyID != stored.ID.String() {
				t.Fatalf("token for wrong agency: %s", agencyID)
			}
			return "signed", nil
		}).
		Times(1)

	resp, err := svc.Register(context.Background(), domain.RegisterAgencyRequest{
		Name:        "  Kherson Rescue  ",
		Coordinates: []float64{32.61, 46.63},
	})
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if resp.Token != "signed" {
		t.Fatalf("unexpected token %q", resp.Token)
	}
	if resp.Agency.Name != "Kherson Rescue" {
		t.Fatalf("expected trimmed name, got %q", resp.Agency.Name)
	}
	if resp.Agency.Coordinates.Lng() != 32.61 || resp.Agency.Coordinates.Lat() != 46.63 {
		t.Fatalf("unexpected coordinates %v", resp.Agency.Coordinates)
	}
}

func TestAgencyService_Register_Invalid(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewAgencyService(
		mock_service.NewMockAgencyRepository(ctrl),
		mock_service.NewMockTokenIssuer(ctrl),
		newTestLogger(),
	)

	_, err := svc.Register(context.Background(), domain.RegisterAgencyRequest{
		Name:        " ",
		Coordinates: []float64{181, 0},
	})
	assertValidationFields(t, err, "name", "coordinates")
}

func TestAgencyService_UpdateLocation_OtherAgency_Forbidden(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	svc := service.NewAgencyService(
		mock_service.NewMockAgencyRepository(ctrl),
		mock_service.NewMockTokenIssuer(ctrl),
		newTestLogger(),
	)

	_, err := svc.UpdateLocation(context.Background(), uuid.New(),
		domain.UpdateLocationRequest{Coordinates: []float64{1, 1}},
		domain.Actor{AgencyID: uuid.New(), Role: domain.RoleMember},
	)
	if !errors.Is(err, e.ErrForbidden) {
		t.Fatalf("expected ErrForbidden, got %v", err)
	}
}

func TestAgencyService_UpdateLocation_OK(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	repo := mock_service.NewMockAgencyRepository(ctrl)
	svc := service.NewAgencyService(repo, mock_service.NewMockTokenIssuer(ctrl), newTestLogger())

	id := uuid.New()
	gomock.InOrder(
		repo.EXPECT().UpdateLocation(gomock.Any(), id, domain.Coordinates{10, 20}).Return(nil),
		repo.EXPECT().Get(gomock.Any(), id).Return(&domain.Agency{ID: id, Coordinates: domain.Coordinates{10, 20}}, nil),
	)

	got, err := svc.UpdateLocation(context.Background(), id,
		domain.UpdateLocationRequest{Coordinates: []float64{10, 20}},
		domain.Actor{AgencyID: id},
	)
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if got.Coordinates != (domain.Coordinates{10, 20}) {
		t.Fatalf("unexpected coordinates %v", got.Coordinates)
	}
}
