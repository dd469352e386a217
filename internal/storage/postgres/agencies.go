package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rescueconnect/internal/domain"
	"rescueconnect/pkg/e"
	"rescueconnect/pkg/validator"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AgencyRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewAgencyRepo(pool *pgxpool.Pool, logger *slog.Logger) *AgencyRepo {
	return &AgencyRepo{pool: pool, logger: logger}
}

func (p *AgencyRepo) Create(ctx context.Context, agency *domain.Agency) error {
	const op = "postgres.Agency.Create"

	const query = `
		INSERT INTO agencies (id, name, geo_point, created_at, updated_at)
		VALUES ($1, $2, ST_SetSRID(ST_MakePoint($3, $4), 4326)::geography, $5, $6)
	`

	if agency.ID == uuid.Nil {
		agency.ID = uuid.New()
	}
	if agency.CreatedAt.IsZero() {
		agency.CreatedAt = time.Now().UTC()
	}
	if agency.UpdatedAt.IsZero() {
		agency.UpdatedAt = agency.CreatedAt
	}

	_, err := p.pool.Exec(ctx, query,
		agency.ID,
		agency.Name,
		agency.Coordinates.Lng(),
		agency.Coordinates.Lat(),
		agency.CreatedAt,
		agency.UpdatedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (p *AgencyRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Agency, error) {
	const op = "postgres.Agency.Get"

	const query = `
		SELECT ag.id,
		       ag.name,
		       ST_X(ag.geo_point::geometry) AS lng,
		       ST_Y(ag.geo_point::geometry) AS lat,
		       ARRAY(
		           SELECT v.alert_id
		           FROM agency_alerts v
		           JOIN alerts al ON al.id = v.alert_id
		           WHERE v.agency_id = ag.id AND al.expires_at > now()
		           ORDER BY v.added_at
		       ) AS alerts,
		       ag.created_at,
		       ag.updated_at
		FROM agencies ag
		WHERE ag.id = $1
	`

	var (
		agency   domain.Agency
		lng, lat float64
	)
	err := p.pool.QueryRow(ctx, query, id).Scan(
		&agency.ID,
		&agency.Name,
		&lng,
		&lat,
		&agency.Alerts,
		&agency.CreatedAt,
		&agency.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}
	agency.Coordinates = domain.Coordinates{lng, lat}
	return &agency, nil
}

func (p *AgencyRepo) UpdateLocation(ctx context.Context, id uuid.UUID, coords domain.Coordinates) error {
	const op = "postgres.Agency.UpdateLocation"

	const query = `
		UPDATE agencies
		SET geo_point = ST_SetSRID(ST_MakePoint($2, $3), 4326)::geography,
		    updated_at = now()
		WHERE id = $1
	`

	cmd, err := p.pool.Exec(ctx, query, id, coords.Lng(), coords.Lat())
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

// FindNearby uses spherical distance (use_spheroid = false) with the radius in metres.
func (p *AgencyRepo) FindNearby(ctx context.Context, coords domain.Coordinates, radiusKm float64, exclude uuid.UUID) ([]uuid.UUID, error) {
	const op = "postgres.Agency.FindNearby"

	if !validator.ValidLng(coords.Lng()) || !validator.ValidLat(coords.Lat()) {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}
	if radiusKm <= 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	const query = `
		SELECT id
		FROM agencies
		WHERE id <> $4
		  AND ST_DWithin(
		    geo_point,
		    ST_SetSRID(ST_MakePoint($1, $2), 4326)::geography,
		    $3 * 1000,
		    false
		  )
	`

	rows, err := p.pool.Query(ctx, query, coords.Lng(), coords.Lat(), radiusKm, exclude)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	ids := make([]uuid.UUID, 0, 8)
	for rows.Next() {
		var id uuid.UUID
		if err := rows.Scan(&id); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return ids, nil
}

// AddVisibleAlert ignores unknown agency ids and rows that already exist.
func (p *AgencyRepo) AddVisibleAlert(ctx context.Context, alertID uuid.UUID, agencyIDs []uuid.UUID) (int64, error) {
	const op = "postgres.Agency.AddVisibleAlert"

	if len(agencyIDs) == 0 {
		return 0, nil
	}

	const query = `
		INSERT INTO agency_alerts (agency_id, alert_id)
		SELECT ag.id, $1
		FROM agencies ag
		WHERE ag.id = ANY($2)
		ON CONFLICT (agency_id, alert_id) DO NOTHING
	`

	cmd, err := p.pool.Exec(ctx, query, alertID, agencyIDs)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("alert_id", alertID.String()))
		return 0, e.WrapError(ctx, op, err)
	}
	return cmd.RowsAffected(), nil
}
