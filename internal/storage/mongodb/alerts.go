package mongodb

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"rescueconnect/internal/domain"
	"rescueconnect/pkg/e"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type AlertRepo struct {
	alerts   *mongo.Collection
	agencies *mongo.Collection
	logger   *slog.Logger
}

func NewAlertRepo(db *mongo.Database, logger *slog.Logger) *AlertRepo {
	return &AlertRepo{
		alerts:   db.Collection(alertsCollection),
		agencies: db.Collection(agenciesCollection),
		logger:   logger,
	}
}

func notExpired() bson.M {
	return bson.M{"$gt": time.Now().UTC()}
}

func (r *AlertRepo) Create(ctx context.Context, alert *domain.Alert) error {
	const op = "mongo.Alert.Create"

	if alert.ID == uuid.Nil {
		alert.ID = uuid.New()
	}
	if alert.CreatedAt.IsZero() {
		alert.CreatedAt = time.Now().UTC()
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

	if _, err := r.alerts.InsertOne(ctx, newAlertDoc(alert)); err != nil {
		r.logger.Error("insert failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapMongoError(ctx, op, err)
	}
	return nil
}

func (r *AlertRepo) Get(ctx context.Context, id uuid.UUID) (*domain.Alert, error) {
	const op = "mongo.Alert.Get"

	var doc alertDoc
	err := r.alerts.FindOne(ctx, bson.M{"_id": id.String(), "expires_at": notExpired()}).Decode(&doc)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%s: %w", op, e.ErrNotFound)
		}
		r.logger.Error("find failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return nil, e.WrapMongoError(ctx, op, err)
	}
	alert := doc.toDomain()
	return &alert, nil
}

func (r *AlertRepo) Deactivate(ctx context.Context, id uuid.UUID) error {
	const op = "mongo.Alert.Deactivate"

	res, err := r.alerts.UpdateOne(ctx,
		bson.M{"_id": id.String(), "expires_at": notExpired()},
		bson.M{"$set": bson.M{"status": string(domain.AlertInactive), "updated_at": time.Now().UTC()}},
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

// AddReader relies on $addToSet being atomic per document. Inactive alerts
// take no more acks; the call is then a no-op.
func (r *AlertRepo) AddReader(ctx context.Context, id, agencyID uuid.UUID) error {
	const op = "mongo.Alert.AddReader"

	res, err := r.alerts.UpdateOne(ctx,
		bson.M{
			"_id":        id.String(),
			"status":     string(domain.AlertActive),
			"expires_at": notExpired(),
			"read_by":    bson.M{"$ne": agencyID.String()},
		},
		bson.M{
			"$addToSet": bson.M{"read_by": agencyID.String()},
			"$set":      bson.M{"updated_at": time.Now().UTC()},
		},
	)
	if err != nil {
		r.logger.Error("update failed", slog.String("op", op), slog.Any("error", err), slog.String("id", id.String()))
		return e.WrapMongoError(ctx, op, err)
	}
	if res.MatchedCount > 0 {
		return nil
	}

	n, err := r.alerts.CountDocuments(ctx, bson.M{"_id": id.String(), "expires_at": notExpired()})
	if err != nil {
		r.logger.Error("count failed", slog.String("op", op), slog.Any("error", err))
		return e.WrapMongoError(ctx, op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, e.ErrNotFound)
	}
	return nil
}

// addressedTo matches alerts listed for the agency explicitly or pushed to its visible set.
func (r *AlertRepo) addressedTo(ctx context.Context, agencyID uuid.UUID) (bson.M, error) {
	var ag struct {
		Alerts []string `bson:"alerts"`
	}
	err := r.agencies.FindOne(ctx,
		bson.M{"_id": agencyID.String()},
		options.FindOne().SetProjection(bson.M{"alerts": 1}),
	).Decode(&ag)
	if err != nil && !errors.Is(err, mongo.ErrNoDocuments) {
		return nil, err
	}
	if ag.Alerts == nil {
		ag.Alerts = []string{}
	}

	return bson.M{
		"status":     string(domain.AlertActive),
		"expires_at": notExpired(),
		"$or": bson.A{
			bson.M{"recipients": agencyID.String()},
			bson.M{"_id": bson.M{"$in": ag.Alerts}},
		},
	}, nil
}

func (r *AlertRepo) ListForAgency(ctx context.Context, agencyID uuid.UUID) ([]domain.AlertView, error) {
	const op = "mongo.Alert.ListForAgency"

	filter, err := r.addressedTo(ctx, agencyID)
	if err != nil {
		r.logger.Error("agency lookup failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapMongoError(ctx, op, err)
	}

	docs, err := r.find(ctx, filter)
	if err != nil {
		r.logger.Error("find failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapMongoError(ctx, op, err)
	}

	creators := make([]string, 0, len(docs))
	for _, d := range docs {
		creators = append(creators, d.CreatedBy)
	}
	names, err := r.agencyNames(ctx, creators)
	if err != nil {
		r.logger.Error("name lookup failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapMongoError(ctx, op, err)
	}

	views := make([]domain.AlertView, 0, len(docs))
	for _, d := range docs {
		a := d.toDomain()
		views = append(views, domain.AlertView{
			Alert:   a,
			Creator: domain.AgencyRef{ID: a.CreatedBy, Name: names[d.CreatedBy]},
		})
	}
	return views, nil
}

func (r *AlertRepo) CountUnread(ctx context.Context, agencyID uuid.UUID) (int64, error) {
	const op = "mongo.Alert.CountUnread"

	filter, err := r.addressedTo(ctx, agencyID)
	if err != nil {
		r.logger.Error("agency lookup failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapMongoError(ctx, op, err)
	}
	filter["read_by"] = bson.M{"$ne": agencyID.String()}

	n, err := r.alerts.CountDocuments(ctx, filter)
	if err != nil {
		r.logger.Error("count failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapMongoError(ctx, op, err)
	}
	return n, nil
}

func (r *AlertRepo) ListSentBy(ctx context.Context, agencyID uuid.UUID) ([]domain.SentAlertView, error) {
	const op = "mongo.Alert.ListSentBy"

	docs, err := r.find(ctx, bson.M{"created_by": agencyID.String(), "expires_at": notExpired()})
	if err != nil {
		r.logger.Error("find failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapMongoError(ctx, op, err)
	}

	var ids []string
	for _, d := range docs {
		ids = append(ids, d.Recipients...)
	}
	names, err := r.agencyNames(ctx, ids)
	if err != nil {
		r.logger.Error("name lookup failed", slog.String("op", op), slog.Any("error", err))
		return nil, e.WrapMongoError(ctx, op, err)
	}

	views := make([]domain.SentAlertView, 0, len(docs))
	for _, d := range docs {
		v := domain.SentAlertView{Alert: d.toDomain()}
		v.Recipients = make([]domain.AgencyRef, 0, len(v.Alert.Recipients))
		for _, id := range v.Alert.Recipients {
			v.Recipients = append(v.Recipients, domain.AgencyRef{ID: id, Name: names[id.String()]})
		}
		views = append(views, v)
	}
	return views, nil
}

// PurgeExpired deletes expired alerts and then drops ids that no longer
// resolve from agency visible sets, including ones the TTL monitor removed.
func (r *AlertRepo) PurgeExpired(ctx context.Context) (int64, error) {
	const op = "mongo.Alert.PurgeExpired"

	res, err := r.alerts.DeleteMany(ctx, bson.M{"expires_at": bson.M{"$lte": time.Now().UTC()}})
	if err != nil {
		r.logger.Error("delete failed", slog.String("op", op), slog.Any("error", err))
		return 0, e.WrapMongoError(ctx, op, err)
	}

	pruned, err := r.pruneVisible(ctx)
	if err != nil {
		r.logger.Error("visible set prune failed", slog.String("op", op), slog.Any("error", err))
		return res.DeletedCount, e.WrapMongoError(ctx, op, err)
	}
	if pruned > 0 {
		r.logger.Debug("pruned visible sets", slog.String("op", op), slog.Int("dangling", pruned))
	}
	return res.DeletedCount, nil
}

func (r *AlertRepo) pruneVisible(ctx context.Context) (int, error) {
	raw, err := r.agencies.Distinct(ctx, "alerts", bson.M{})
	if err != nil {
		return 0, err
	}
	if len(raw) == 0 {
		return 0, nil
	}

	referenced := make([]string, 0, len(raw))
	for _, v := range raw {
		if s, ok := v.(string); ok {
			referenced = append(referenced, s)
		}
	}

	cursor, err := r.alerts.Find(ctx,
		bson.M{"_id": bson.M{"$in": referenced}},
		options.Find().SetProjection(bson.M{"_id": 1}),
	)
	if err != nil {
		return 0, err
	}
	defer cursor.Close(ctx)

	existing := make(map[string]struct{}, len(referenced))
	for cursor.Next(ctx) {
		var ref struct {
			ID string `bson:"_id"`
		}
		if err := cursor.Decode(&ref); err != nil {
			return 0, err
		}
		existing[ref.ID] = struct{}{}
	}
	if err := cursor.Err(); err != nil {
		return 0, err
	}

	dangling := make([]string, 0, len(referenced)-len(existing))
	for _, id := range referenced {
		if _, ok := existing[id]; !ok {
			dangling = append(dangling, id)
		}
	}
	if len(dangling) == 0 {
		return 0, nil
	}

	_, err = r.agencies.UpdateMany(ctx,
		bson.M{"alerts": bson.M{"$in": dangling}},
		bson.M{"$pull": bson.M{"alerts": bson.M{"$in": dangling}}},
	)
	if err != nil {
		return 0, err
	}
	return len(dangling), nil
}

func (r *AlertRepo) find(ctx context.Context, filter bson.M) ([]alertDoc, error) {
	cursor, err := r.alerts.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	docs := make([]alertDoc, 0, 8)
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func (r *AlertRepo) agencyNames(ctx context.Context, ids []string) (map[string]string, error) {
	names := make(map[string]string, len(ids))
	if len(ids) == 0 {
		return names, nil
	}

	cursor, err := r.agencies.Find(ctx,
		bson.M{"_id": bson.M{"$in": ids}},
		options.Find().SetProjection(bson.M{"name": 1}),
	)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	for cursor.Next(ctx) {
		var ref struct {
			ID   string `bson:"_id"`
			Name string `bson:"name"`
		}
		if err := cursor.Decode(&ref); err != nil {
			return nil, err
		}
		names[ref.ID] = ref.Name
	}
	return names, cursor.Err()
}
