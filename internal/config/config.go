package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	Server    ServerConfig
	Store     StoreConfig
	Postgres  PostgresConfig
	Redis     RedisConfig
	RabbitMQ  RabbitMQConfig
	Sweep     SweepConfig
	RateLimit RateLimitConfig
	Location  *time.Location
	LogLevel  slog.Level
}

type ServerConfig struct {
	Host string
	Port int
}

type StoreConfig struct {
	Driver string
}

type PostgresConfig struct {
	User     string
	Password string
	Name     string
	Host     string
	Port     int
	SSLMode  string
	MaxConns int32
}

// DSN is the pgx connection string.
func (c PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User,
		c.Password,
		c.Host,
		c.Port,
		c.Name,
		c.SSLMode,
	)
}

// RedisConfig with an empty Addr disables caching, rate limiting,
// idempotency keys, the sweep lock and the live seat feed.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// RabbitMQConfig with an empty URL disables event publishing to the broker.
type RabbitMQConfig struct {
	URL   string
	Queue string
}

func (c RabbitMQConfig) Enabled() bool { return c.URL != "" }

type SweepConfig struct {
	Enabled  bool
	Interval time.Duration
}

type RateLimitConfig struct {
	Limit  int
	Window time.Duration
}

func New() (*Config, error) {
	const op = "config.New"

	_ = godotenv.Load()

	serverPort, err := intEnv("SERVER_PORT", 8080)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	serverCfg := ServerConfig{
		Host: stringEnv("SERVER_HOST", "localhost"),
		Port: serverPort,
	}

	driver := strings.ToLower(stringEnv("STORE_DRIVER", DriverPostgres))
	if driver != DriverPostgres && driver != DriverMemory {
		return nil, fmt.Errorf("%s: invalid STORE_DRIVER %q", op, driver)
	}

	postgresCfg, err := postgresConfig(driver == DriverPostgres)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisDB, err := intEnv("REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	redisCfg := RedisConfig{
		Addr:     os.Getenv("REDIS_ADDR"),
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}

	rabbitCfg := RabbitMQConfig{
		URL:   os.Getenv("RABBITMQ_URL"),
		Queue: stringEnv("RABBITMQ_QUEUE", "deskgo.reservation.events"),
	}

	sweepEnabled, err := boolEnv("SWEEP_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	sweepInterval, err := durationEnv("SWEEP_INTERVAL", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rateLimit, err := intEnv("RESERVATION_RATE_LIMIT", 10)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rateWindow, err := durationEnv("RESERVATION_RATE_WINDOW", time.Minute)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	loc, err := time.LoadLocation(stringEnv("TIMEZONE", "Local"))
	if err != nil {
		return nil, fmt.Errorf("%s: invalid TIMEZONE: %w", op, err)
	}

	var level slog.Level
	if err := level.UnmarshalText([]byte(stringEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("%s: invalid LOG_LEVEL: %w", op, err)
	}

	return &Config{
		Server:   serverCfg,
		Store:    StoreConfig{Driver: driver},
		Postgres: postgresCfg,
		Redis:    redisCfg,
		RabbitMQ: rabbitCfg,
		Sweep: SweepConfig{
			Enabled:  sweepEnabled,
			Interval: sweepInterval,
		},
		RateLimit: RateLimitConfig{
			Limit:  rateLimit,
			Window: rateWindow,
		},
		Location: loc,
		LogLevel: level,
	}, nil
}

// postgresConfig reads POSTGRES_*. Credentials are only required when the
// postgres driver is selected.
func postgresConfig(required bool) (PostgresConfig, error) {
	port, err := intEnv("POSTGRES_PORT", 5432)
	if err != nil {
		return PostgresConfig{}, err
	}

	maxConns, err := intEnv("POSTGRES_MAX_CONNS", 0)
	if err != nil {
		return PostgresConfig{}, err
	}

	cfg := PostgresConfig{
		User:     os.Getenv("POSTGRES_USER"),
		Password: os.Getenv("POSTGRES_PASSWORD"),
		Name:     os.Getenv("POSTGRES_DB"),
		Host:     stringEnv("POSTGRES_HOST", "localhost"),
		Port:     port,
		SSLMode:  stringEnv("POSTGRES_SSLMODE", "disable"),
		MaxConns: int32(maxConns),
	}

	if !required {
		return cfg, nil
	}

	if cfg.User == "" {
		return cfg, fmt.Errorf("missing POSTGRES_USER")
	}

	if cfg.Password == "" {
		return cfg, fmt.Errorf("missing POSTGRES_PASSWORD")
	}

	if cfg.Name == "" {
		return cfg, fmt.Errorf("missing POSTGRES_DB")
	}

	return cfg, nil
}

func stringEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func intEnv(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	return n, nil
}

func boolEnv(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}

	return b, nil
}

func durationEnv(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}

	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}

	if d <= 0 {
		return 0, fmt.Errorf("invalid %s: must be positive", key)
	}

	return d, nil
}
