package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Http.Port)
	assert.Equal(t, StoragePostgres, cfg.Storage)
	assert.Equal(t, DistributionQueue, cfg.Distribution.Mode)
	assert.Equal(t, 4, cfg.Distribution.Workers)
	assert.Equal(t, time.Minute, cfg.Reaper.Interval)
	assert.Equal(t, 24*time.Hour, cfg.JWT.TTL)
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("STORAGE_DRIVER", StorageMongo)
	t.Setenv("DISTRIBUTION_MODE", DistributionInline)
	t.Setenv("REAPER_INTERVAL", "30s")
	t.Setenv("RATE_LIMIT_RPS", "not-a-number")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, StorageMongo, cfg.Storage)
	assert.Equal(t, DistributionInline, cfg.Distribution.Mode)
	assert.Equal(t, 30*time.Second, cfg.Reaper.Interval)
	assert.Equal(t, 10, cfg.RateLimit.RPS)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("JWT_SECRET", "")

	_, err := LoadConfig()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Http:         HttpConfig{Port: ":8080"},
			Storage:      StoragePostgres,
			Postgres:     PostgresConfig{Host: "db"},
			JWT:          JWTConfig{Secret: "x"},
			Distribution: DistributionConfig{Mode: DistributionQueue, Workers: 1},
			Reaper:       ReaperConfig{Interval: time.Second},
		}
	}

	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"port without colon", func(c *Config) { c.Http.Port = "8080" }},
		{"unknown storage", func(c *Config) { c.Storage = "sqlite" }},
		{"mongo without uri", func(c *Config) { c.Storage = StorageMongo }},
		{"no workers", func(c *Config) { c.Distribution.Workers = 0 }},
		{"unknown mode", func(c *Config) { c.Distribution.Mode = "kafka" }},
		{"zero reaper interval", func(c *Config) { c.Reaper.Interval = 0 }},
	}

	require.NoError(t, valid().Validate())
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := valid()
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}
