package mongodb

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"rescueconnect/internal/config"
	"rescueconnect/internal/service"
	"rescueconnect/pkg/e"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const (
	agenciesCollection = "agencies"
	alertsCollection   = "alerts"
)

var (
	_ service.AlertRepository  = (*AlertRepo)(nil)
	_ service.AgencyRepository = (*AgencyRepo)(nil)
)

type MongoDB struct {
	Client   *mongo.Client
	Database *mongo.Database
	Alert    *AlertRepo
	Agency   *AgencyRepo
	logger   *slog.Logger
}

func NewMongoDB(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*MongoDB, error) {
	ctx, cancel := context.WithTimeout(ctx, cfg.Mongo.Timeout)
	defer cancel()

	logger.Info("Connecting to MongoDB", slog.String("database", cfg.Mongo.Database))

	clientOptions := options.Client().
		ApplyURI(cfg.Mongo.URI).
		SetMaxPoolSize(100).
		SetMinPoolSize(5).
		SetMaxConnIdleTime(30 * time.Second).
		SetTimeout(cfg.Mongo.Timeout)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		logger.Error("Failed to connect to MongoDB", slog.String("error", err.Error()))
		return nil, e.Wrap("storage.mongo.NewMongoDB.Connect", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		logger.Error("Failed to ping MongoDB", slog.String("error", err.Error()))
		_ = client.Disconnect(context.Background())
		return nil, e.Wrap("storage.mongo.NewMongoDB.Ping", err)
	}

	db := client.Database(cfg.Mongo.Database)
	if err := EnsureIndexes(ctx, db); err != nil {
		logger.Error("Failed to create indexes", slog.String("error", err.Error()))
		_ = client.Disconnect(context.Background())
		return nil, e.Wrap("storage.mongo.NewMongoDB.EnsureIndexes", err)
	}
	logger.Info("Connected to MongoDB successfully")

	m := New(db, logger)
	m.Client = client
	return m, nil
}

// New wraps an existing database; it does not create indexes.
func New(db *mongo.Database, logger *slog.Logger) *MongoDB {
	return &MongoDB{
		Client:   db.Client(),
		Database: db,
		Alert:    NewAlertRepo(db, logger),
		Agency:   NewAgencyRepo(db, logger),
		logger:   logger,
	}
}

// EnsureIndexes uses bson.D so compound key order is kept.
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	agencyIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{Keys: bson.D{{Key: "alerts", Value: 1}}},
	}
	if _, err := db.Collection(agenciesCollection).Indexes().CreateMany(ctx, agencyIndexes); err != nil {
		return fmt.Errorf("agencies indexes: %w", err)
	}

	alertIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "location", Value: "2dsphere"}}},
		{
			// expired alerts are removed by the server as well as by the reaper
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
		{
			Keys: bson.D{
				{Key: "created_by", Value: 1},
				{Key: "created_at", Value: -1},
			},
		},
		{Keys: bson.D{{Key: "recipients", Value: 1}}},
	}
	if _, err := db.Collection(alertsCollection).Indexes().CreateMany(ctx, alertIndexes); err != nil {
		return fmt.Errorf("alerts indexes: %w", err)
	}
	return nil
}

func (m *MongoDB) Alerts() service.AlertRepository    { return m.Alert }
func (m *MongoDB) Agencies() service.AgencyRepository { return m.Agency }

func (m *MongoDB) Close(ctx context.Context) error {
	if err := m.Client.Disconnect(ctx); err != nil {
		return e.Wrap("storage.mongo.Close", err)
	}
	m.logger.Info("Disconnected from MongoDB")
	return nil
}
