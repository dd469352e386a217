package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const (
	StoragePostgres = "postgres"
	StorageMongo    = "mongo"

	DistributionQueue  = "queue"
	DistributionInline = "inline"
)

type Config struct {
	Env          string             `json:"env"`
	Http         HttpConfig         `json:"http"`
	Storage      string             `json:"storage"`
	Postgres     PostgresConfig     `json:"postgres"`
	Mongo        MongoConfig        `json:"mongo"`
	Redis        RedisConfig        `json:"redis"`
	JWT          JWTConfig          `json:"jwt"`
	Distribution DistributionConfig `json:"distribution"`
	Reaper       ReaperConfig       `json:"reaper"`
	RateLimit    RateLimitConfig    `json:"rate_limit"`
}

type HttpConfig struct {
	Port            string        `json:"port"`
	ReadTimeout     time.Duration `json:"read_timeout"`
	WriteTimeout    time.Duration `json:"write_timeout"`
	ShutdownTimeout time.Duration `json:"shutdown_timeout"`
}

type PostgresConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	Database string `json:"database"`
	User     string `json:"user"`
	Password string `json:"password,omitempty"`
	SSLMode  string `json:"ssl_mode"`

	MaxConns        int32
	MinConns        int32
	MaxConnLifetime time.Duration
}

type MongoConfig struct {
	URI      string        `json:"uri"`
	Database string        `json:"database"`
	Timeout  time.Duration `json:"timeout"`
}

type RedisConfig struct {
	Addr     string `json:"addr"`
	Password string `json:"password,omitempty"`
	DB       int    `json:"db"`
	PoolSize int    `json:"pool_size"`
}

type JWTConfig struct {
	Secret string        `json:"-"`
	TTL    time.Duration `json:"ttl"`
}

type DistributionConfig struct {
	Mode     string `json:"mode"`
	Workers  int    `json:"workers"`
	QueueKey string `json:"queue_key"`
}

type ReaperConfig struct {
	Interval time.Duration `json:"interval"`
}

type RateLimitConfig struct {
	RPS   int `json:"rps"`
	Burst int `json:"burst"`
}

func LoadConfig() (*Config, error) {
	stdLogger := slog.New(slog.NewTextHandler(os.Stdout, nil))

	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		stdLogger.Warn(".env load warning", slog.Any("error", err))
	}

	cfg := &Config{
		Env: getEnv("ENV", "local"),
		Http: HttpConfig{
			Port:            getEnv("HTTP_PORT", ":8080"),
			ReadTimeout:     getEnvDuration("HTTP_READ_TIMEOUT", 10*time.Second),
			WriteTimeout:    getEnvDuration("HTTP_WRITE_TIMEOUT", 10*time.Second),
			ShutdownTimeout: getEnvDuration("HTTP_SHUTDOWN_TIMEOUT", 10*time.Second),
		},
		Storage: getEnv("STORAGE_DRIVER", StoragePostgres),
		Postgres: PostgresConfig{
			Host:            getEnv("POSTGRES_HOST", "pg-local"),
			Port:            getEnvInt("POSTGRES_PORT", 5432),
			Database:        getEnv("POSTGRES_DB", "rescueconnect"),
			User:            getEnv("POSTGRES_USER", "postgres"),
			Password:        getEnv("POSTGRES_PASSWORD", "postgres"),
			SSLMode:         getEnv("POSTGRES_SSL_MODE", "disable"),
			MaxConns:        int32(getEnvInt("POSTGRES_MAX_CONNS", 20)),
			MinConns:        1,
			MaxConnLifetime: 1 * time.Hour,
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://mongo-local:27017"),
			Database: getEnv("MONGO_DB", "rescueconnect"),
			Timeout:  getEnvDuration("MONGO_TIMEOUT", 10*time.Second),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "redis-local:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
			PoolSize: getEnvInt("REDIS_POOL_SIZE", 20),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", ""),
			TTL:    getEnvDuration("JWT_TTL", 24*time.Hour),
		},
		Distribution: DistributionConfig{
			Mode:     getEnv("DISTRIBUTION_MODE", DistributionQueue),
			Workers:  getEnvInt("DISTRIBUTION_WORKERS", 4),
			QueueKey: getEnv("DISTRIBUTION_QUEUE_KEY", "alerts:distribution"),
		},
		Reaper: ReaperConfig{
			Interval: getEnvDuration("REAPER_INTERVAL", time.Minute),
		},
		RateLimit: RateLimitConfig{
			RPS:   getEnvInt("RATE_LIMIT_RPS", 10),
			Burst: getEnvInt("RATE_LIMIT_BURST", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	stdLogger.Info("Config loaded successfully",
		slog.String("env", cfg.Env),
		slog.String("http_port", cfg.Http.Port),
		slog.String("storage", cfg.Storage),
		slog.String("redis_addr", cfg.Redis.Addr),
		slog.String("distribution_mode", cfg.Distribution.Mode))

	return cfg, nil
}

func (c *Config) Validate() error {
	if c.Http.Port == "" || c.Http.Port[0] != ':' {
		return errors.New("HTTP_PORT must start with ':' like ':8080'")
	}

	switch c.Storage {
	case StoragePostgres:
		if c.Postgres.Host == "" {
			return errors.New("POSTGRES_HOST required")
		}
	case StorageMongo:
		if c.Mongo.URI == "" {
			return errors.New("MONGO_URI required")
		}
	default:
		return fmt.Errorf("STORAGE_DRIVER must be %q or %q, got %q", StoragePostgres, StorageMongo, c.Storage)
	}

	switch c.Distribution.Mode {
	case DistributionQueue:
		if c.Distribution.Workers < 1 {
			return errors.New("DISTRIBUTION_WORKERS must be at least 1")
		}
	case DistributionInline:
	default:
		return fmt.Errorf("DISTRIBUTION_MODE must be %q or %q, got %q", DistributionQueue, DistributionInline, c.Distribution.Mode)
	}

	if c.JWT.Secret == "" {
		return errors.New("JWT_SECRET required")
	}
	if c.Reaper.Interval <= 0 {
		return errors.New("REAPER_INTERVAL must be positive")
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getEnvInt(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return def
}
