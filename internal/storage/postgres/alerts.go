package postgres

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rescueconnect/internal/domain"
	"rescueconnect/pkg/e"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type AlertRepo struct {
	pool   *pgxpool.Pool
	logger *slog.Logger
}

func NewAlertRepo(pool *pgxpool.Pool, logger *slog.Logger) *AlertRepo {
	return &AlertRepo{pool: pool, logger: logger}
}

const alertColumns = `
	a.id,
	a.title,
	a.message,
	a.severity,
	ST_X(a.geo_point::geometry) AS lng,
	ST_Y(a.geo_point::geometry) AS lat,
	a.radius_km,
	a.created_by,
	a.status,
	a.recipients,
	a.read_by,
	a.expires_at,
	a.created_at,
	a.updated_at`

// addressedTo matches alerts listed explicitly for $1 or fanned out to it.
// One alert row is tested once, so the two channels never double count.
const addressedTo = `
	($1 = ANY(a.recipients)
	 OR EXISTS (SELECT 1 FROM agency_alerts v WHERE v.alert_id = a.id AND v.agency_id = $1))`

func scanAlert(row pgx.Row, alert *domain.Alert, extra ...any) error {
	var lng, lat float64
	dest := []any{
		&alert.ID,
		&alert.Title,
		&alert.Message,
		&alert.Severity,
		&lng,
		&lat,
		&alert.RadiusKM,
		&alert.CreatedBy,
		&alert.Status,
		&alert.Recipients,
		&alert.ReadBy,
		&alert.ExpiresAt,
		&alert.CreatedAt,
		&alert.UpdatedAt,
	}
	if err := row.Scan(append(dest, extra...)...); err != nil {
		return err
	}
	alert.Coordinates = domain.Coordinates{lng, lat}
	if alert.Recipients == nil {
		alert.Recipients = []uuid.UUID{}
	}
	if alert.ReadBy == nil {
		alert.ReadBy = []uuid.UUID{}
	}
	return nil
}

func (p *AlertRepo) Create(ctx context.Context, alert *domain.Alert) error {
	const op = "postgres.Alert.Create"

	const query = `
		INSERT INTO alerts (id, title, message, severity, geo_point, radius_km, created_by,
		                    status, recipients, read_by, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, ST_SetSRID(ST_MakePoint($5, $6), 4326)::geography, $7, $8,
		        $9, $10, $11, $12, $13, $14)
	`

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	now := time.Now().UTC()
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = now
	}
	if alert.UpdatedAt.IsZero() {
		alert.UpdatedAt = alert.CreatedAt
	}
	if alert.Status == "" {
		alert.Status = domain.AlertActive
	}
	if alert.Recipients == nil {
		alert.Recipients = []uuid.UUID{}
	}
	if alert.ReadBy == nil {
		alert.ReadBy = []uuid.UUID{}
	}

	_, err := p.pool.Exec(ctx, query,
		alert.ID,
		alert.Title,
		alert.Message,
		alert.Severity,
		alert.Coordinates.Lng(),
		alert.Coordinates.Lat(),
		alert.RadiusKM,
		alert.CreatedBy,
		alert.Status,
		alert.Recipients,
		alert.ReadBy,
		alert.ExpiresAt,
		alert.CreatedAt,
		alert.UpdatedAt,
	)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	return nil
}

func (p *AlertRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	const op = "postgres.Alert.Get"

	query := `SELECT ` + alertColumns + `
		FROM alerts a
		WHERE a.id = $1 AND a.expires_at > now()`

	var alert domain.Alert
	if err := scanAlert(p.pool.QueryRow(ctx, query, id), &alert); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapError(ctx, op, err)
	}
	return &alert, nil
}

func (p *AlertRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	const op = "postgres.Alert.Deactivate"

	const query = `
		UPDATE alerts
		SET status = 'inactive', updated_at = now()
		WHERE id = $1 AND expires_at > now()
	`

	cmd, err := p.pool.Exec(ctx, query, id)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

// AddReader appends agencyID to read_by in a single conditional UPDATE, so
// concurrent acknowledgements from different agencies cannot overwrite each other.
// Inactive alerts take no more acks; the call is then a no-op.
func (p *AlertRepo) AddReader(ctx context.Context, id, agencyID uuid.UUID) error {
	const op = "postgres.Alert.AddReader"

	const query = `
		UPDATE alerts
		SET read_by = array_append(read_by, $2::uuid), updated_at = now()
		WHERE id = $1 AND status = 'active' AND expires_at > now() AND NOT ($2::uuid = ANY(read_by))
	`

	cmd, err := p.pool.Exec(ctx, query, id, agencyID)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return e.WrapError(ctx, op, err)
	}
	if cmd.RowsAffected() > 0 {
		return nil
	}

	// Nothing updated: already read, inactive, or the alert is gone.
	const existsQuery = `SELECT EXISTS (SELECT 1 FROM alerts WHERE id = $1 AND expires_at > now())`
	var exists bool
	if err := p.pool.QueryRow(ctx, existsQuery, id).Scan(&exists); err != nil {
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapError(ctx, op, err)
	}
	if !exists {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

func (p *AlertRepo) ListForAgency(ctx context.Context, agencyID uuid.UUID) ([]domain.AlertView, error) {
	const op = "postgres.Alert.ListForAgency"

	query := `SELECT ` + alertColumns + `, COALESCE(c.name, '')
		FROM alerts a
		LEFT JOIN agencies c ON c.id = a.created_by
		WHERE a.status = 'active'
		  AND a.expires_at > now()
		  AND ` + addressedTo + `
		ORDER BY a.created_at DESC`

	rows, err := p.pool.Query(ctx, query, agencyID)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	views := make([]domain.AlertView, 0, 8)
	for rows.Next() {
		var v domain.AlertView
		if err := scanAlert(rows, &v.Alert, &v.Creator.Name); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		v.Creator.ID = v.CreatedBy
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	return views, nil
}

func (p *AlertRepo) CountUnread(ctx context.Context, agencyID uuid.UUID) (int64, error) {
	const op = "postgres.Alert.CountUnread"

	query := `SELECT COUNT(*)
		FROM alerts a
		WHERE a.status = 'active'
		  AND a.expires_at > now()
		  AND NOT ($1 = ANY(a.read_by))
		  AND ` + addressedTo

	var cnt int64
	if err := p.pool.QueryRow(ctx, query, agencyID).Scan(&cnt); err != nil {
		p.logger.Error("db queryrow scan failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapError(ctx, op, err)
	}
	return cnt, nil
}

func (p *AlertRepo) ListSentBy(ctx context.Context, agencyID uuid.UUID) ([]domain.SentAlertView, error) {
	const op = "postgres.Alert.ListSentBy"

	query := `SELECT ` + alertColumns + `
		FROM alerts a
		WHERE a.created_by = $1 AND a.expires_at > now()
		ORDER BY a.created_at DESC`

	rows, err := p.pool.Query(ctx, query, agencyID)
	if err != nil {
		p.logger.Error("db query failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}
	defer rows.Close()

	views := make([]domain.SentAlertView, 0, 8)
	var ids []uuid.UUID
	for rows.Next() {
		var v domain.SentAlertView
		if err := scanAlert(rows, &v.Alert); err != nil {
			p.logger.Error("row scan failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapError(ctx, op, err)
		}
		ids = append(ids, v.Alert.Recipients...)
		views = append(views, v)
	}
	if err := rows.Err(); err != nil {
		p.logger.Error("rows err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapError(ctx, op, err)
	}

	names, err := p.agencyNames(ctx, ids)
	if err != nil {
		return nil, e.WrapError(ctx, op, err)
	}
	for i := range views {
		refs := make([]domain.AgencyRef, 0, len(views[i].Alert.Recipients))
		for _, id := range views[i].Alert.Recipients {
			refs = append(refs, domain.AgencyRef{ID: id, Name: names[id]})
		}
		views[i].Recipients = refs
	}
	return views, nil
}

func (p *AlertRepo) agencyNames(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]string, error) {
	names := make(map[uuid.UUID]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	rows, err := p.pool.Query(ctx, `SELECT id, name FROM agencies WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id uuid.UUID
		var name string
		if err := rows.Scan(&id, &name); err != nil {
			return nil, err
		}
		names[id] = name
	}
	return names, rows.Err()
}

func (p *AlertRepo) PurgeExpired(ctx context.Context) (int64, error) {
	const op = "postgres.Alert.PurgeExpired"

	cmd, err := p.pool.Exec(ctx, `DELETE FROM alerts WHERE expires_at <= now()`)
	if err != nil {
		p.logger.Error("db exec failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapError(ctx, op, err)
	}
	return cmd.RowsAffected(), nil
}
