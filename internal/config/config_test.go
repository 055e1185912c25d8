package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewMemoryDefaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("POSTGRES_USER", "")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("RABBITMQ_URL", "")
	t.Setenv("SWEEP_INTERVAL", "")
	t.Setenv("TIMEZONE", "UTC")
	t.Setenv("LOG_LEVEL", "")

	cfg, err := New()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Store.Driver)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.False(t, cfg.Redis.Enabled())
	assert.False(t, cfg.RabbitMQ.Enabled())
	assert.Equal(t, "deskgo.reservation.events", cfg.RabbitMQ.Queue)
	assert.True(t, cfg.Sweep.Enabled)
	assert.Equal(t, time.Minute, cfg.Sweep.Interval)
	assert.Equal(t, 10, cfg.RateLimit.Limit)
	assert.Equal(t, time.UTC, cfg.Location)
	assert.Equal(t, slog.LevelInfo, cfg.LogLevel)
}

func TestNewPostgresRequiresCredentials(t *testing.T) {
	t.Setenv("STORE_DRIVER", "postgres")
	t.Setenv("POSTGRES_USER", "")

	_, err := New()
	assert.ErrorContains(t, err, "POSTGRES_USER")

	t.Setenv("POSTGRES_USER", "desk")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "deskgo")
	t.Setenv("POSTGRES_HOST", "db")
	t.Setenv("POSTGRES_PORT", "6543")

	cfg, err := New()
	require.NoError(t, err)
	assert.Equal(t, "postgres://desk:secret@db:6543/deskgo?sslmode=disable", cfg.Postgres.DSN())
}

func TestNewRejectsBadValues(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")

	for key, val := range map[string]string{
		"SERVER_PORT":    "http",
		"STORE_DRIVER":   "mysql",
		"SWEEP_INTERVAL": "-1m",
		"SWEEP_ENABLED":  "maybe",
		"TIMEZONE":       "Mars/Olympus",
		"LOG_LEVEL":      "loud",
	} {
		t.Run(key, func(t *testing.T) {
			t.Setenv(key, val)

			_, err := New()
			assert.Error(t, err)
		})
	}
}
