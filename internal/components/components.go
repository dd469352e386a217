package components

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"rescueconnect/internal/api"
	"rescueconnect/internal/api/handlers/http/system"
	"rescueconnect/internal/config"
	"rescueconnect/internal/redis"
	"rescueconnect/internal/service"
	"rescueconnect/internal/storage/mongodb"
	"rescueconnect/internal/storage/postgres"
	"rescueconnect/internal/workers"
	"rescueconnect/pkg/auth"
	"rescueconnect/pkg/logger"

	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const inlineDistributionTimeout = 10 * time.Second

type Store interface {
	Alerts() service.AlertRepository
	Agencies() service.AgencyRepository
	Close(ctx context.Context) error
}

// Runner is a background loop that returns once ctx is canceled.
type Runner interface {
	Run(ctx context.Context)
}

type Components struct {
	logger     *slog.Logger
	HttpServer *api.Server
	Store      Store
	Redis      *redis.Redis
	Workers    []Runner
	inline     *service.InlineDispatcher
}

func InitComponents(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Components, error) {
	checks := make(map[string]system.Check)

	store, err := initStore(ctx, cfg, logger, checks)
	if err != nil {
		return nil, err
	}

	c := &Components{logger: logger, Store: store}

	distributor := service.NewDistributor(store.Agencies(), logger)
	c.inline = service.NewInlineDispatcher(distributor, inlineDistributionTimeout)
	var dispatcher service.Dispatcher = c.inline

	if cfg.Distribution.Mode == config.DistributionQueue {
		logger.Info("Initializing Redis")
		redisClient, err := redis.NewRedis(ctx, cfg, logger)
		if err != nil {
			_ = store.Close(ctx)
			return nil, fmt.Errorf("failed to init redis: %w", err)
		}
		c.Redis = redisClient
		checks["redis"] = func(ctx context.Context) error { return redisClient.Client.Ping(ctx).Err() }

		queue := redis.NewDistributionQueue(redisClient.Client, cfg.Distribution.QueueKey)
		dispatcher = service.NewQueueDispatcher(queue, dispatcher, logger)
		c.Workers = append(c.Workers, workers.NewDistributionPool(queue, distributor, logger, cfg.Distribution.Workers))
	}

	c.Workers = append(c.Workers, workers.NewReaper(store.Alerts(), cfg.Reaper.Interval, logger))

	jwtManager := auth.NewJWTManager(cfg.JWT.Secret, cfg.JWT.TTL)

	alertSvc := service.NewAlertService(store.Alerts(), dispatcher, logger)
	agencySvc := service.NewAgencyService(store.Agencies(), jwtManager, logger)
	srv := service.NewService(alertSvc, agencySvc)

	c.HttpServer = api.NewServer(cfg, logger, srv, jwtManager, checks)
	logger.Info("Initialized server",
		slog.String("storage", cfg.Storage),
		slog.String("distribution_mode", cfg.Distribution.Mode),
	)

	return c, nil
}

func initStore(ctx context.Context, cfg *config.Config, logger *slog.Logger, checks map[string]system.Check) (Store, error) {
	switch cfg.Storage {
	case config.StorageMongo:
		logger.Info("Initializing MongoDB")
		m, err := mongodb.NewMongoDB(ctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to init mongo", slog.Any("error", err))
			return nil, fmt.Errorf("failed to init mongo: %w", err)
		}
		checks["mongo"] = func(ctx context.Context) error { return m.Client.Ping(ctx, readpref.Primary()) }
		return m, nil
	default:
		logger.Info("Initializing Postgres")
		pg, err := postgres.NewPostgres(ctx, cfg, logger)
		if err != nil {
			logger.Error("Failed to init postgres", slog.Any("error", err))
			return nil, fmt.Errorf("failed to init postgres: %w", err)
		}
		checks["postgres"] = pg.Pool.Ping
		return pg, nil
	}
}

func SetupLogger(env string) *slog.Logger {
	switch env {
	case "local":
		return logger.SetupPrettySlog()
	case "dev":
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelDebug,
			}),
		)
	default:
		return slog.New(
			slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
				Level: slog.LevelInfo,
			}),
		)
	}
}

func (c *Components) ShutdownAll(ctx context.Context) {
	start := time.Now()
	c.logger.Info("Component shutdown started")

	// In-flight inline fan-outs still need the store.
	c.inline.Wait()

	if err := c.Store.Close(ctx); err != nil {
		c.logger.Error("Storage close failed", slog.String("err", err.Error()))
	}
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			c.logger.Error("Redis close failed", slog.String("err", err.Error()))
		}
	}

	c.logger.Info("All components stopped",
		slog.Duration("latency", time.Since(start)))
}
