package mongodb

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
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AgencyRepo struct {
	agencies *mongo.Collection
	alerts   *mongo.Collection
	logger   *slog.Logger
}

func NewAgencyRepo(db *mongo.Database, logger *slog.Logger) *AgencyRepo {
	return &AgencyRepo{
		agencies: db.Collection(agenciesCollection),
		alerts:   db.Collection(alertsCollection),
		logger:   logger,
	}
}

func (r *AgencyRepo) Create(ctx context.Context, agency *domain.Agency) error {
	const op = "mongo.Agency.Create"

	if agency.ID == uuid.Nil {
		agency.ID = uuid.New()
	}
	if agency.CreatedAt.IsZero() {
		agency.CreatedAt = time.Now().UTC()
	}
	if agency.UpdatedAt.IsZero() {
		agency.UpdatedAt = agency.CreatedAt
	}

	doc := agencyDoc{
		ID:        agency.ID.String(),
		Name:      agency.Name,
		Location:  toGeoPoint(agency.Coordinates),
		Alerts:    []string{},
		CreatedAt: agency.CreatedAt,
		UpdatedAt: agency.UpdatedAt,
	}
	if _, err := r.agencies.InsertOne(ctx, doc); err != nil {
		r.logger.Error("insert failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapMongoError(ctx, op, err)
	}
	return nil
}

// Get lists only visible alerts that have not expired, in the order they arrived.
func (r *AgencyRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Agency, error) {
	const op = "mongo.Agency.Get"

	var doc agencyDoc
	if err := r.agencies.FindOne(ctx, bson.M{"_id": id.String()}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		r.logger.Error("find failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapMongoError(ctx, op, err)
	}

	live, err := r.liveAlerts(ctx, doc.Alerts)
	if err != nil {
		r.logger.Error("alert lookup failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapMongoError(ctx, op, err)
	}

	visible := make([]uuid.UUID, 0, len(live))
	for _, s := range doc.Alerts {
		if _, ok := live[s]; ok {
			visible = append(visible, parseID(s))
		}
	}

	return &domain.Agency{
		ID:          parseID(doc.ID),
		Name:        doc.Name,
		Coordinates: doc.Location.coordinates(),
		Alerts:      visible,
		CreatedAt:   doc.CreatedAt.UTC(),
		UpdatedAt:   doc.UpdatedAt.UTC(),
	}, nil
}

func (r *AgencyRepo) liveAlerts(ctx context.Context, ids []string) (map[string]struct{}, error) {
	live := make(map[string]struct{}, len(ids))
	if len(ids) == 0 {
		return live, nil
	}

	cursor, err := r.alerts.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}, "expires_at": notExpired()},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var ref struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&ref); err != nil {
			return nil, err
		}
		live[ref.ID] = struct{}{}
	}
	return live, cursor.Err()
}

func (r *AgencyRepo) UpdateLocation(ctx context.Context, id uuid.UUID, coords domain.Coordinates) error {
	const op = "mongo.Agency.UpdateLocation"

	res, err := r.agencies.UpdateOne(ctx,
		bson.M{"_id": id.String()},
		bson.M{"$set": bson.M{"location": toGeoPoint(coords), "updated_at": time.Now().UTC()}},
	)
	if err != nil {
		r.logger.Error("update failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return e.WrapMongoError(ctx, op, err)
	}
	if res.MatchedCount == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

// FindNearby matches on a sphere; $centerSphere takes the radius in radians.
func (r *AgencyRepo) FindNearby(ctx context.Context, coords domain.Coordinates, radiusKm float64, exclude uuid.UUID) ([]uuid.UUID, error) {
	const op = "mongo.Agency.FindNearby"

	if !validator.ValidLng(coords.Lng()) || !validator.ValidLat(coords.Lat()) {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidCoordinates)
	}
	if radiusKm <= 0 {
		return nil, fmt.Errorf("%s: %w", op, e.ErrInvalidInput)
	}

	filter := bson.M{
		"_id": bson.M{"$ne": exclude.String()},
		"location": bson.M{
			"$geoWithin": bson.M{
				"$centerSphere": bson.A{
					bson.A{coords.Lng(), coords.Lat()},
					radiusKm / earthRadiusKM,
				},
			},
		},
	}

	cursor, err := r.agencies.Find(ctx, filter, options.Find().SetProjection(bson.M{"_id": 1}))
	if err != nil {
		r.logger.Error("find failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapMongoError(ctx, op, err)
	}
	defer cursor.Close(ctx)

	ids := make([]uuid.UUID, 0, 8)
	for cursor.Next(ctx) {
		var ref struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&ref); err != nil {
			r.logger.Error("decode failed", slog.String("op", op), slog.Any("error", err))
			return nil, e.WrapMongoError(ctx, op, err)
		}
		ids = append(ids, parseID(ref.ID))
	}
	if err := cursor.Err(); err != nil {
		r.logger.Error("cursor err", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapMongoError(ctx, op, err)
	}
	return ids, nil
}

// AddVisibleAlert counts only agencies that did not already hold the alert.
func (r *AgencyRepo) AddVisibleAlert(ctx context.Context, alertID uuid.UUID, agencyIDs []uuid.UUID) (int64, error) {
	const op = "mongo.Agency.AddVisibleAlert"

	if len(agencyIDs) == 0 {
		return 0, nil
	}

	res, err := r.agencies.UpdateMany(ctx,
		bson.M{"_id": bson.M{"$in": idStrings(agencyIDs)}},
		bson.M{"$addToSet": bson.M{"alerts": alertID.String()}},
	)
	if err != nil {
		r.logger.Error("update failed", slog.String("op", op), slog.Any("error", err), slog.String("alert_id", alertID.String()))
		return 0, e.WrapMongoError(ctx, op, err)
	}
	return res.ModifiedCount, nil
}
